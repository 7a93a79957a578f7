// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spvbin

import (
	"fmt"

	"github.com/gogpu/naga/spirv"
)

// span is an inclusive instruction index range defining one object.
type span struct {
	first, last int
}

// StripDeadObjects returns a copy of m without the module-scope functions,
// types, constants and global variables that no entry point reaches, along
// with the debug names and decorations attached to them.
//
// Reachability starts from every OpEntryPoint (function and interface) and
// follows ID operands through definitions and function bodies. The ID bound
// in the header is left unchanged.
func StripDeadObjects(m *Module) (*Module, error) {
	insts, err := m.Instructions()
	if err != nil {
		return nil, err
	}

	defs := make(map[uint32]span)
	owner := make(map[uint32]uint32) // function-local ID -> enclosing function
	var roots []uint32

	for i := 0; i < len(insts); i++ {
		inst := insts[i]
		switch inst.Opcode {
		case spirv.OpFunction:
			fn, ok := resultID(inst)
			if !ok {
				return nil, report(fmt.Errorf("%w: truncated OpFunction at word %d", ErrInvalidModule, inst.Offset))
			}
			end := i + 1
			for ; end < len(insts) && insts[end].Opcode != spirv.OpFunctionEnd; end++ {
				if id, ok := localResult(insts[end]); ok {
					owner[id] = fn
				}
			}
			if end == len(insts) {
				return nil, report(fmt.Errorf("%w: function %%%d has no OpFunctionEnd", ErrInvalidModule, fn))
			}
			defs[fn] = span{i, end}
			i = end
			continue
		case spirv.OpEntryPoint, opExecutionModeID, opDecorateID,
			opDecorationGroup, opGroupDecorate, opGroupMemberDecorate:
			roots = append(roots, idOperands(inst)...)
		}
		if id, ok := resultID(inst); ok {
			defs[id] = span{i, i}
		}
	}

	live := make(map[uint32]bool, len(defs))
	work := roots
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if live[id] {
			continue
		}
		s, ok := defs[id]
		if !ok {
			continue
		}
		live[id] = true
		for _, inst := range insts[s.first : s.last+1] {
			for _, ref := range idOperands(inst) {
				if _, ok := defs[ref]; ok && !live[ref] {
					work = append(work, ref)
				}
			}
		}
	}

	keep := func(id uint32) bool {
		if fn, ok := owner[id]; ok {
			return live[fn]
		}
		if _, ok := defs[id]; ok {
			return live[id]
		}
		return true
	}

	out := make([]uint32, 0, len(m.words))
	out = append(out, m.words[:HeaderWords]...)
	for i := 0; i < len(insts); i++ {
		inst := insts[i]
		if inst.Opcode == spirv.OpFunction {
			fn, _ := resultID(inst)
			s := defs[fn]
			if live[fn] {
				end := insts[s.last]
				out = append(out, m.words[inst.Offset:end.Offset+end.WordCount()]...)
			}
			i = s.last
			continue
		}
		if id, ok := resultID(inst); ok && !live[id] {
			continue
		}
		if isAnnotation(inst.Opcode) && len(inst.Operands) > 0 && !keep(inst.Operands[0]) {
			continue
		}
		out = append(out, m.words[inst.Offset:inst.Offset+inst.WordCount()]...)
	}
	return &Module{words: out}, nil
}

func localResult(inst Instruction) (uint32, bool) {
	if inst.Opcode == spirv.OpLabel {
		if len(inst.Operands) == 0 {
			return 0, false
		}
		return inst.Operands[0], true
	}
	if hasNoResult(inst.Opcode) || len(inst.Operands) < 2 {
		return 0, false
	}
	return inst.Operands[1], true
}
