// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spvbin

import (
	"fmt"

	"github.com/gogpu/naga/spirv"
)

// ResourceKind classifies a shader resource variable.
type ResourceKind uint8

const (
	// SampledImage is a combined image and sampler (sampler2D and friends).
	SampledImage ResourceKind = iota
	// SeparateImage is an image without a sampler.
	SeparateImage
	// SeparateSampler is a sampler without an image.
	SeparateSampler
	// UniformBuffer is a Block-decorated struct in Uniform storage.
	UniformBuffer
	// StorageBuffer is a buffer in StorageBuffer storage, or a
	// BufferBlock-decorated struct in Uniform storage.
	StorageBuffer
)

// String returns the resource kind name.
func (k ResourceKind) String() string {
	switch k {
	case SampledImage:
		return "sampled image"
	case SeparateImage:
		return "separate image"
	case SeparateSampler:
		return "separate sampler"
	case UniformBuffer:
		return "uniform buffer"
	case StorageBuffer:
		return "storage buffer"
	default:
		return fmt.Sprintf("ResourceKind(%d)", k)
	}
}

// IsSampler reports whether resources of this kind live in texture or
// sampler slots.
func (k ResourceKind) IsSampler() bool {
	return k == SampledImage || k == SeparateImage || k == SeparateSampler
}

// Resource is one global resource variable.
type Resource struct {
	ID   uint32
	Name string
	Kind ResourceKind
	// Set and Binding are the DescriptorSet and Binding decorations.
	Set     uint32
	Binding uint32
	// HasBinding is false when the variable carries no Binding decoration.
	HasBinding bool
}

// Resources reflects the module's sampler, image and buffer variables in
// declaration order.
func (m *Module) Resources() ([]Resource, error) {
	insts, err := m.Instructions()
	if err != nil {
		return nil, err
	}

	names := make(map[uint32]string)
	decos := make(map[uint32]map[spirv.Decoration]uint32)
	typeOps := make(map[uint32]Instruction)
	var vars []Instruction

scan:
	for _, inst := range insts {
		ops := inst.Operands
		switch inst.Opcode {
		case spirv.OpName:
			if len(ops) >= 2 {
				names[ops[0]], _ = inst.String(1)
			}
		case spirv.OpDecorate:
			if len(ops) >= 2 {
				d := decos[ops[0]]
				if d == nil {
					d = make(map[spirv.Decoration]uint32)
					decos[ops[0]] = d
				}
				var v uint32
				if len(ops) >= 3 {
					v = ops[2]
				}
				d[spirv.Decoration(ops[1])] = v
			}
		case spirv.OpVariable:
			if len(ops) >= 3 && !isFunctionStorage(ops[2]) {
				vars = append(vars, inst)
			}
		case spirv.OpFunction:
			// Module-scope declarations end at the first function.
			break scan
		default:
			if id, ok := resultID(inst); ok && len(ops) > 0 && ops[0] == id {
				typeOps[id] = inst
			}
		}
	}

	var res []Resource
	for _, v := range vars {
		ptr, ok := typeOps[v.Operands[0]]
		if !ok || ptr.Opcode != spirv.OpTypePointer || len(ptr.Operands) < 3 {
			continue
		}
		storage := spirv.StorageClass(v.Operands[2])
		pointee := stripArrays(typeOps, ptr.Operands[2])

		var kind ResourceKind
		switch storage {
		case spirv.StorageClassUniformConstant:
			switch typeOps[pointee].Opcode {
			case opTypeSampledImage:
				kind = SampledImage
			case opTypeImage:
				kind = SeparateImage
			case opTypeSampler:
				kind = SeparateSampler
			default:
				continue
			}
		case spirv.StorageClassUniform:
			d := decos[pointee]
			if _, ok := d[decorationBufferBlock]; ok {
				kind = StorageBuffer
			} else if _, ok := d[spirv.DecorationBlock]; ok {
				kind = UniformBuffer
			} else {
				continue
			}
		case spirv.StorageClassStorageBuffer:
			kind = StorageBuffer
		default:
			continue
		}

		id := v.Operands[1]
		r := Resource{ID: id, Name: names[id], Kind: kind}
		if d := decos[id]; d != nil {
			r.Set = d[spirv.DecorationDescriptorSet]
			r.Binding, r.HasBinding = d[spirv.DecorationBinding]
		}
		res = append(res, r)
	}
	return res, nil
}

func isFunctionStorage(sc uint32) bool {
	return spirv.StorageClass(sc) == spirv.StorageClassFunction
}

func stripArrays(types map[uint32]Instruction, id uint32) uint32 {
	for {
		t, ok := types[id]
		if !ok || (t.Opcode != spirv.OpTypeArray && t.Opcode != spirv.OpTypeRuntimeArray) || len(t.Operands) < 2 {
			return id
		}
		id = t.Operands[1]
	}
}

// WithDecoration returns a copy of m in which the literal of decoration dec
// on target is value. An existing OpDecorate is rewritten in place; when
// there is none, a new one is inserted with the other annotations.
func (m *Module) WithDecoration(target uint32, dec spirv.Decoration, value uint32) (*Module, error) {
	insts, err := m.Instructions()
	if err != nil {
		return nil, err
	}
	insertAt := -1
	for _, inst := range insts {
		ops := inst.Operands
		if inst.Opcode == spirv.OpDecorate && len(ops) >= 3 && ops[0] == target && spirv.Decoration(ops[1]) == dec {
			c := m.Clone()
			c.words[inst.Offset+3] = value
			return c, nil
		}
		if insertAt < 0 && startsDeclarations(inst) {
			insertAt = inst.Offset
		}
	}
	if insertAt < 0 {
		insertAt = len(m.words)
	}
	words := make([]uint32, 0, len(m.words)+4)
	words = append(words, m.words[:insertAt]...)
	words = append(words, encodeWord(spirv.OpDecorate, 4), target, uint32(dec), value)
	words = append(words, m.words[insertAt:]...)
	return &Module{words: words}, nil
}

// startsDeclarations reports whether inst belongs after the annotation
// section, so that a new decoration can be placed before it.
func startsDeclarations(inst Instruction) bool {
	switch inst.Opcode {
	case spirv.OpDecorate, spirv.OpMemberDecorate, opDecorateID, opDecorateString,
		opMemberDecorateString, opDecorationGroup, opGroupDecorate, opGroupMemberDecorate:
		return false
	}
	_, ok := resultID(inst)
	return ok || inst.Opcode == opTypeForwardPointer
}
