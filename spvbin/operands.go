// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spvbin

import "github.com/gogpu/naga/spirv"

// imageOperandMask gives the operand index of the Image Operands mask for
// image instructions. Everything before and after the mask is an ID.
var imageOperandMask = map[spirv.OpCode]int{
	87: 4, // OpImageSampleImplicitLod
	88: 4, // OpImageSampleExplicitLod
	89: 5, // OpImageSampleDrefImplicitLod
	90: 5, // OpImageSampleDrefExplicitLod
	91: 4, // OpImageSampleProjImplicitLod
	92: 4, // OpImageSampleProjExplicitLod
	93: 5, // OpImageSampleProjDrefImplicitLod
	94: 5, // OpImageSampleProjDrefExplicitLod
	95: 4, // OpImageFetch
	96: 5, // OpImageGather
	97: 5, // OpImageDrefGather
	98: 4, // OpImageRead
	99: 3, // OpImageWrite
}

// idOperands returns the operands of inst that can hold IDs. Literal
// operands are left out so that a literal value equal to some ID does not
// keep that object alive.
func idOperands(inst Instruction) []uint32 {
	ops := inst.Operands
	switch inst.Opcode {
	case spirv.OpName, spirv.OpMemberName, spirv.OpDecorate, spirv.OpMemberDecorate,
		opDecorateString, opMemberDecorateString, spirv.OpExecutionMode,
		spirv.OpCapability, spirv.OpExtension, spirv.OpMemoryModel, spirv.OpSource,
		opSourceContinued, opSourceExtension, opModuleProcessed, spirv.OpString,
		spirv.OpExtInstImport, opTypeOpaque, opTypeForwardPointer, opNoLine:
		return nil

	case spirv.OpEntryPoint:
		if len(ops) < 2 {
			return nil
		}
		_, n := inst.String(2)
		return append([]uint32{ops[1]}, ops[min(2+n, len(ops)):]...)

	case opExecutionModeID:
		return tail(ops, 2)
	case opDecorateID:
		return tail(ops, 2)

	case opLine:
		return head(ops, 1)

	case spirv.OpTypeInt, spirv.OpTypeFloat:
		return head(ops, 1)
	case spirv.OpTypeVector, spirv.OpTypeMatrix:
		return head(ops, 2)
	case opTypeImage:
		return head(ops, 2)
	case spirv.OpTypePointer:
		if len(ops) < 3 {
			return head(ops, 1)
		}
		return []uint32{ops[0], ops[2]}

	case spirv.OpConstant, opSpecConstant, opConstantSampler:
		return head(ops, 2)
	case opSpecConstantOp:
		if len(ops) < 3 {
			return ops
		}
		return append([]uint32{ops[0], ops[1]}, ops[3:]...)

	case spirv.OpVariable:
		if len(ops) < 3 {
			return ops
		}
		return append([]uint32{ops[0], ops[1]}, ops[3:]...)
	case spirv.OpFunction:
		if len(ops) < 4 {
			return head(ops, 2)
		}
		return []uint32{ops[0], ops[1], ops[3]}

	case spirv.OpExtInst:
		if len(ops) < 4 {
			return ops
		}
		return append([]uint32{ops[0], ops[1], ops[2]}, ops[4:]...)

	case spirv.OpCompositeExtract:
		return head(ops, 3)
	case opCompositeInsert, spirv.OpVectorShuffle:
		return head(ops, 4)

	case spirv.OpSelectionMerge:
		return head(ops, 1)
	case spirv.OpLoopMerge:
		return head(ops, 2)
	case spirv.OpBranchConditional:
		return head(ops, 3)
	case spirv.OpSwitch:
		return head(ops, 2)

	case spirv.OpLoad:
		return head(ops, 3)
	case spirv.OpStore, opCopyMemory:
		return head(ops, 2)
	case opCopyMemorySized:
		return head(ops, 3)

	case opGroupMemberDecorate:
		out := append([]uint32(nil), head(ops, 1)...)
		for i := 1; i < len(ops); i += 2 {
			out = append(out, ops[i])
		}
		return out
	}

	if mask, ok := imageOperandMask[inst.Opcode]; ok && len(ops) > mask {
		return append(append([]uint32(nil), ops[:mask]...), ops[mask+1:]...)
	}
	return ops
}

func head(ops []uint32, n int) []uint32 {
	return ops[:min(n, len(ops))]
}

func tail(ops []uint32, n int) []uint32 {
	return ops[min(n, len(ops)):]
}

// resultID returns the ID an instruction defines, if any, for instructions
// that may appear at module scope.
func resultID(inst Instruction) (uint32, bool) {
	ops := inst.Operands
	switch inst.Opcode {
	case spirv.OpTypeVoid, spirv.OpTypeBool, spirv.OpTypeInt, spirv.OpTypeFloat,
		spirv.OpTypeVector, spirv.OpTypeMatrix, opTypeImage, opTypeSampler,
		opTypeSampledImage, spirv.OpTypeArray, spirv.OpTypeRuntimeArray,
		spirv.OpTypeStruct, opTypeOpaque, spirv.OpTypePointer, spirv.OpTypeFunction:
		if len(ops) >= 1 {
			return ops[0], true
		}
	case spirv.OpConstant, spirv.OpConstantComposite, spirv.OpConstantNull,
		opConstantTrue, opConstantFalse, opConstantSampler, opSpecConstantTrue,
		opSpecConstantFalse, opSpecConstant, opSpecConstantComp, opSpecConstantOp,
		spirv.OpVariable, opUndef, spirv.OpFunction:
		if len(ops) >= 2 {
			return ops[1], true
		}
	}
	return 0, false
}

// isAnnotation reports whether inst only describes its first operand.
func isAnnotation(op spirv.OpCode) bool {
	switch op {
	case spirv.OpName, spirv.OpMemberName, spirv.OpDecorate, spirv.OpMemberDecorate,
		opDecorateID, opDecorateString, opMemberDecorateString, opTypeForwardPointer:
		return true
	}
	return false
}

// hasNoResult lists function-body instructions that define no ID.
func hasNoResult(op spirv.OpCode) bool {
	switch op {
	case spirv.OpStore, opCopyMemory, opCopyMemorySized, spirv.OpBranch,
		spirv.OpBranchConditional, spirv.OpSwitch, spirv.OpReturn, spirv.OpReturnValue,
		spirv.OpKill, spirv.OpUnreachable, spirv.OpSelectionMerge, spirv.OpLoopMerge,
		opLine, opNoLine, spirv.OpFunctionEnd, opImageWrite, spirv.OpNop,
		opEmitVertex, opEndPrimitive, opEmitStreamVertex, opEndStreamPrimitive,
		spirv.OpControlBarrier, spirv.OpMemoryBarrier, spirv.OpAtomicStore,
		opTerminateInvocation, opDemoteToHelper:
		return true
	}
	return false
}
