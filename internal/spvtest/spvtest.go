// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package spvtest assembles small SPIR-V fixtures for tests, including the
// image and sampler types that naga's ModuleBuilder does not expose.
package spvtest

import "github.com/gogpu/naga/spirv"

// Assembler writes instructions word by word.
type Assembler struct {
	words []uint32
	next  uint32
}

// New returns an assembler positioned after a SPIR-V 1.0 header.
func New() *Assembler {
	return &Assembler{
		words: []uint32{spirv.MagicNumber, 0x00010000, 0, 0, 0},
		next:  1,
	}
}

// ID allocates a fresh result ID.
func (a *Assembler) ID() uint32 {
	id := a.next
	a.next++
	return id
}

// Op appends one instruction.
func (a *Assembler) Op(op spirv.OpCode, operands ...uint32) {
	a.words = append(a.words, uint32(len(operands)+1)<<16|uint32(op))
	a.words = append(a.words, operands...)
}

// OpStr appends an instruction whose operands are prefix, the literal s,
// then suffix.
func (a *Assembler) OpStr(op spirv.OpCode, prefix []uint32, s string, suffix ...uint32) {
	ops := append(append([]uint32(nil), prefix...), String(s)...)
	a.Op(op, append(ops, suffix...)...)
}

// Words returns the module with the ID bound filled in.
func (a *Assembler) Words() []uint32 {
	out := append([]uint32(nil), a.words...)
	out[3] = a.next
	return out
}

// String encodes s as a nul-terminated, word-padded literal.
func String(s string) []uint32 {
	b := append([]byte(s), 0)
	for len(b)%4 != 0 {
		b = append(b, 0)
	}
	out := make([]uint32, len(b)/4)
	for i := range out {
		out[i] = uint32(b[i*4]) | uint32(b[i*4+1])<<8 | uint32(b[i*4+2])<<16 | uint32(b[i*4+3])<<24
	}
	return out
}

// Opcodes naga/spirv keeps internal.
const (
	OpTypeImage        spirv.OpCode = 25
	OpTypeSampler      spirv.OpCode = 26
	OpTypeSampledImage spirv.OpCode = 27
)

// Sampler describes one combined sampler2D variable.
type Sampler struct {
	Name    string
	Set     uint32
	Binding uint32
	// Unused leaves the variable unreferenced by main.
	Unused bool
}

// Buffer describes one uniform block with a single float member.
type Buffer struct {
	Name    string
	Set     uint32
	Binding uint32
}

// Fragment assembles a fragment shader whose main loads every used
// sampler and buffer.
func Fragment(samplers []Sampler, buffers []Buffer) []uint32 {
	a := New()
	main := a.ID()
	void, fnType := a.ID(), a.ID()
	f32, image, sampled, ptrSampled := a.ID(), a.ID(), a.ID(), a.ID()

	samplerVars := make([]uint32, len(samplers))
	for i := range samplers {
		samplerVars[i] = a.ID()
	}
	blockTypes := make([]uint32, len(buffers))
	blockPtrs := make([]uint32, len(buffers))
	blockVars := make([]uint32, len(buffers))
	for i := range buffers {
		blockTypes[i], blockPtrs[i], blockVars[i] = a.ID(), a.ID(), a.ID()
	}

	a.Op(spirv.OpCapability, uint32(spirv.CapabilityShader))
	a.Op(spirv.OpMemoryModel, uint32(spirv.AddressingModelLogical), uint32(spirv.MemoryModelGLSL450))
	a.OpStr(spirv.OpEntryPoint, []uint32{uint32(spirv.ExecutionModelFragment), main}, "main")
	a.Op(spirv.OpExecutionMode, main, uint32(spirv.ExecutionModeOriginUpperLeft))

	a.OpStr(spirv.OpName, []uint32{main}, "main")
	for i, s := range samplers {
		a.OpStr(spirv.OpName, []uint32{samplerVars[i]}, s.Name)
	}
	for i, b := range buffers {
		a.OpStr(spirv.OpName, []uint32{blockTypes[i]}, b.Name+"Block")
		a.OpStr(spirv.OpName, []uint32{blockVars[i]}, b.Name)
	}

	for i, s := range samplers {
		a.Op(spirv.OpDecorate, samplerVars[i], uint32(spirv.DecorationDescriptorSet), s.Set)
		a.Op(spirv.OpDecorate, samplerVars[i], uint32(spirv.DecorationBinding), s.Binding)
	}
	for i, b := range buffers {
		a.Op(spirv.OpDecorate, blockTypes[i], uint32(spirv.DecorationBlock))
		a.Op(spirv.OpMemberDecorate, blockTypes[i], 0, uint32(spirv.DecorationOffset), 0)
		a.Op(spirv.OpDecorate, blockVars[i], uint32(spirv.DecorationDescriptorSet), b.Set)
		a.Op(spirv.OpDecorate, blockVars[i], uint32(spirv.DecorationBinding), b.Binding)
	}

	a.Op(spirv.OpTypeVoid, void)
	a.Op(spirv.OpTypeFunction, fnType, void)
	a.Op(spirv.OpTypeFloat, f32, 32)
	// Dim 2D, not depth, not arrayed, single-sampled, sampled, unknown format.
	a.Op(OpTypeImage, image, f32, 1, 0, 0, 0, 1, 0)
	a.Op(OpTypeSampledImage, sampled, image)
	a.Op(spirv.OpTypePointer, ptrSampled, uint32(spirv.StorageClassUniformConstant), sampled)
	for i := range buffers {
		a.Op(spirv.OpTypeStruct, blockTypes[i], f32)
		a.Op(spirv.OpTypePointer, blockPtrs[i], uint32(spirv.StorageClassUniform), blockTypes[i])
	}
	for _, v := range samplerVars {
		a.Op(spirv.OpVariable, ptrSampled, v, uint32(spirv.StorageClassUniformConstant))
	}
	for i, v := range blockVars {
		a.Op(spirv.OpVariable, blockPtrs[i], v, uint32(spirv.StorageClassUniform))
	}

	a.Op(spirv.OpFunction, void, main, uint32(spirv.FunctionControlNone), fnType)
	a.Op(spirv.OpLabel, a.ID())
	for i, s := range samplers {
		if !s.Unused {
			a.Op(spirv.OpLoad, sampled, a.ID(), samplerVars[i])
		}
	}
	for i, v := range blockVars {
		a.Op(spirv.OpLoad, blockTypes[i], a.ID(), v)
	}
	a.Op(spirv.OpReturn)
	a.Op(spirv.OpFunctionEnd)
	return a.Words()
}
