// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spvbin

import (
	"bufio"
	"fmt"
	"io"

	"github.com/gogpu/naga/spirv"
)

// Disassemble writes m as spvasm-style text. Debug names are shown as
// comments on the defining line.
func Disassemble(w io.Writer, m *Module) error {
	insts, err := m.Instructions()
	if err != nil {
		return err
	}
	names, err := m.Names()
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	h := m.Header()
	fmt.Fprintf(bw, "; SPIR-V\n")
	fmt.Fprintf(bw, "; Version: %s\n", h.VersionString())
	fmt.Fprintf(bw, "; Generator: 0x%08X\n", h.Generator)
	fmt.Fprintf(bw, "; Bound: %d\n", h.Bound)
	fmt.Fprintf(bw, "; Schema: %d\n\n", h.Schema)

	for _, inst := range insts {
		line := formatInstruction(inst)
		if id, ok := resultID(inst); ok && names[id] != "" {
			line += " ; " + names[id]
		}
		fmt.Fprintln(bw, line)
	}
	return bw.Flush()
}

func id(n uint32) string {
	return fmt.Sprintf("%%%d", n)
}

func ids(ops []uint32) string {
	s := ""
	for _, op := range ops {
		s += " " + id(op)
	}
	return s
}

func literals(ops []uint32) string {
	s := ""
	for _, op := range ops {
		s += fmt.Sprintf(" %d", op)
	}
	return s
}

const indent = "               "

// minOperands guards the fixed operand reads in formatInstruction.
var minOperands = map[spirv.OpCode]int{
	spirv.OpCapability: 1, spirv.OpExtInstImport: 1, spirv.OpString: 1,
	spirv.OpMemoryModel: 2, spirv.OpEntryPoint: 2, spirv.OpExecutionMode: 2,
	spirv.OpName: 1, spirv.OpMemberName: 2, spirv.OpDecorate: 2, spirv.OpMemberDecorate: 3,
	spirv.OpTypeVoid: 1, spirv.OpTypeBool: 1, opTypeSampler: 1, spirv.OpLabel: 1,
	spirv.OpTypeInt: 1, spirv.OpTypeFloat: 1, spirv.OpTypeVector: 3, spirv.OpTypeMatrix: 3,
	opTypeImage: 3, spirv.OpTypePointer: 3, opTypeSampledImage: 1, spirv.OpTypeArray: 1,
	spirv.OpTypeRuntimeArray: 1, spirv.OpTypeStruct: 1, spirv.OpTypeFunction: 1,
	spirv.OpConstant: 2, opSpecConstant: 2, spirv.OpVariable: 3, spirv.OpFunction: 4,
	spirv.OpCompositeExtract: 3, spirv.OpVectorShuffle: 4,
}

//nolint:gocyclo,cyclop,funlen // one case per opcode family
func formatInstruction(inst Instruction) string {
	name := OpcodeName(inst.Opcode)
	ops := inst.Operands
	defines := func(result uint32, rest string) string {
		r := id(result)
		pad := len(indent) - len(r) - 3
		if pad < 0 {
			pad = 0
		}
		return fmt.Sprintf("%*s%s = %s%s", pad, "", r, name, rest)
	}

	op := inst.Opcode
	if len(ops) < minOperands[op] {
		op = spirv.OpNop
	}

	switch op {
	case spirv.OpCapability:
		return fmt.Sprintf("%s%s %s", indent, name, lookup(capabilityNames, ops[0]))

	case spirv.OpExtInstImport, spirv.OpString:
		str, _ := inst.String(1)
		return defines(ops[0], fmt.Sprintf(" %q", str))

	case spirv.OpExtension, opSourceExtension, opModuleProcessed:
		str, _ := inst.String(0)
		return fmt.Sprintf("%s%s %q", indent, name, str)

	case spirv.OpMemoryModel:
		addrModels := map[uint32]string{0: "Logical", 1: "Physical32", 2: "Physical64", 5348: "PhysicalStorageBuffer64"}
		memModels := map[uint32]string{0: "Simple", 1: "GLSL450", 2: "OpenCL", 3: "Vulkan"}
		return fmt.Sprintf("%s%s %s %s", indent, name, lookup(addrModels, ops[0]), lookup(memModels, ops[1]))

	case spirv.OpEntryPoint:
		str, n := inst.String(2)
		return fmt.Sprintf("%s%s %s %s %q%s", indent, name,
			ExecutionModelName(spirv.ExecutionModel(ops[0])), id(ops[1]), str, ids(ops[2+n:]))

	case spirv.OpExecutionMode:
		return fmt.Sprintf("%s%s %s %s%s", indent, name, id(ops[0]),
			lookup(executionModeNames, ops[1]), literals(ops[2:]))

	case spirv.OpName:
		str, _ := inst.String(1)
		return fmt.Sprintf("%s%s %s %q", indent, name, id(ops[0]), str)

	case spirv.OpMemberName:
		str, _ := inst.String(2)
		return fmt.Sprintf("%s%s %s %d %q", indent, name, id(ops[0]), ops[1], str)

	case spirv.OpDecorate:
		dec := spirv.Decoration(ops[1])
		if dec == spirv.DecorationBuiltIn && len(ops) > 2 {
			return fmt.Sprintf("%s%s %s %s %s", indent, name, id(ops[0]), DecorationName(dec), lookup(builtinNames, ops[2]))
		}
		return fmt.Sprintf("%s%s %s %s%s", indent, name, id(ops[0]), DecorationName(dec), literals(ops[2:]))

	case spirv.OpMemberDecorate:
		return fmt.Sprintf("%s%s %s %d %s%s", indent, name, id(ops[0]), ops[1],
			DecorationName(spirv.Decoration(ops[2])), literals(ops[3:]))

	case spirv.OpTypeVoid, spirv.OpTypeBool, opTypeSampler, spirv.OpLabel:
		return defines(ops[0], "")

	case spirv.OpTypeInt, spirv.OpTypeFloat:
		return defines(ops[0], literals(ops[1:]))

	case spirv.OpTypeVector, spirv.OpTypeMatrix:
		return defines(ops[0], fmt.Sprintf(" %s %d", id(ops[1]), ops[2]))

	case opTypeImage:
		return defines(ops[0], fmt.Sprintf(" %s %s%s", id(ops[1]), lookup(dimNames, ops[2]), literals(ops[3:])))

	case spirv.OpTypePointer:
		return defines(ops[0], fmt.Sprintf(" %s %s", StorageClassName(spirv.StorageClass(ops[1])), id(ops[2])))

	case opTypeSampledImage, spirv.OpTypeArray, spirv.OpTypeRuntimeArray, spirv.OpTypeStruct, spirv.OpTypeFunction:
		return defines(ops[0], ids(ops[1:]))

	case spirv.OpConstant, opSpecConstant:
		return defines(ops[1], fmt.Sprintf(" %s%s", id(ops[0]), literals(ops[2:])))

	case spirv.OpVariable:
		return defines(ops[1], fmt.Sprintf(" %s %s%s", id(ops[0]), StorageClassName(spirv.StorageClass(ops[2])), ids(ops[3:])))

	case spirv.OpFunction:
		return defines(ops[1], fmt.Sprintf(" %s %d %s", id(ops[0]), ops[2], id(ops[3])))

	case spirv.OpCompositeExtract:
		return defines(ops[1], fmt.Sprintf(" %s %s%s", id(ops[0]), id(ops[2]), literals(ops[3:])))

	case spirv.OpVectorShuffle:
		return defines(ops[1], fmt.Sprintf(" %s%s%s", id(ops[0]), ids(ops[2:4]), literals(ops[4:])))
	}

	if hasNoResult(inst.Opcode) || len(ops) < 2 {
		return indent + name + ids(ops)
	}
	return defines(ops[1], " "+id(ops[0])+ids(ops[2:]))
}
