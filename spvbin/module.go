// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package spvbin

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/bits"
	"strings"
	"sync/atomic"

	"github.com/gogpu/naga/spirv"
)

// HeaderWords is the number of words in a SPIR-V module header.
const HeaderWords = 5

// ErrInvalidModule is returned for binaries that are not well-formed SPIR-V.
var ErrInvalidModule = errors.New("spvbin: invalid module")

// Opcodes not re-exported by naga/spirv.
const (
	opUndef                spirv.OpCode = 1
	opSourceContinued      spirv.OpCode = 2
	opSourceExtension      spirv.OpCode = 4
	opLine                 spirv.OpCode = 8
	opTypeImage            spirv.OpCode = 25
	opTypeSampler          spirv.OpCode = 26
	opTypeSampledImage     spirv.OpCode = 27
	opTypeOpaque           spirv.OpCode = 31
	opTypeForwardPointer   spirv.OpCode = 39
	opConstantTrue         spirv.OpCode = 41
	opConstantFalse        spirv.OpCode = 42
	opConstantSampler      spirv.OpCode = 45
	opSpecConstantTrue     spirv.OpCode = 48
	opSpecConstantFalse    spirv.OpCode = 49
	opSpecConstant         spirv.OpCode = 50
	opSpecConstantComp     spirv.OpCode = 51
	opSpecConstantOp       spirv.OpCode = 52
	opCopyMemory           spirv.OpCode = 63
	opCopyMemorySized      spirv.OpCode = 64
	opDecorationGroup      spirv.OpCode = 73
	opGroupDecorate        spirv.OpCode = 74
	opGroupMemberDecorate  spirv.OpCode = 75
	opCompositeInsert      spirv.OpCode = 82
	opImageSampleImplicit  spirv.OpCode = 87
	opImageWrite           spirv.OpCode = 99
	opEmitVertex           spirv.OpCode = 218
	opEndPrimitive         spirv.OpCode = 219
	opEmitStreamVertex     spirv.OpCode = 220
	opEndStreamPrimitive   spirv.OpCode = 221
	opNoLine               spirv.OpCode = 317
	opModuleProcessed      spirv.OpCode = 330
	opExecutionModeID      spirv.OpCode = 331
	opDecorateID           spirv.OpCode = 332
	opTerminateInvocation  spirv.OpCode = 4416
	opDemoteToHelper       spirv.OpCode = 5380
	opDecorateString       spirv.OpCode = 5632
	opMemberDecorateString spirv.OpCode = 5633
)

// Decorations not re-exported by naga/spirv.
const (
	decorationBufferBlock spirv.Decoration = 3
)

// Header is the decoded five-word module header.
type Header struct {
	Magic     uint32
	Version   uint32
	Generator uint32
	Bound     uint32
	Schema    uint32
}

// VersionString renders the version word as "major.minor".
func (h Header) VersionString() string {
	return fmt.Sprintf("%d.%d", (h.Version>>16)&0xFF, (h.Version>>8)&0xFF)
}

// Instruction is one decoded instruction. Operands aliases the module's
// words and must not be retained across module mutation.
type Instruction struct {
	Opcode   spirv.OpCode
	Operands []uint32
	// Offset is the word offset of the instruction within the module.
	Offset int
}

// WordCount returns the instruction length including the opcode word.
func (i Instruction) WordCount() int {
	return len(i.Operands) + 1
}

// String decodes a literal string starting at operand index start and
// returns it with the number of operand words it occupies.
func (i Instruction) String(start int) (string, int) {
	if start >= len(i.Operands) {
		return "", 0
	}
	return decodeString(i.Operands[start:])
}

// Module is a SPIR-V binary held as little-endian-ordered 32-bit words.
type Module struct {
	words []uint32
}

// FromWords validates the header and copies words into a new module.
func FromWords(words []uint32) (*Module, error) {
	if len(words) < HeaderWords {
		return nil, report(fmt.Errorf("%w: %d words is shorter than the header", ErrInvalidModule, len(words)))
	}
	if words[0] != spirv.MagicNumber {
		return nil, report(fmt.Errorf("%w: bad magic 0x%08X", ErrInvalidModule, words[0]))
	}
	m := &Module{words: make([]uint32, len(words))}
	copy(m.words, words)
	return m, nil
}

// FromBytes decodes a binary in either byte order.
func FromBytes(data []byte) (*Module, error) {
	if len(data)%4 != 0 {
		return nil, report(fmt.Errorf("%w: length %d is not a multiple of 4", ErrInvalidModule, len(data)))
	}
	if len(data) < HeaderWords*4 {
		return nil, report(fmt.Errorf("%w: %d bytes is shorter than the header", ErrInvalidModule, len(data)))
	}
	swap := false
	switch binary.LittleEndian.Uint32(data) {
	case spirv.MagicNumber:
	case bits.ReverseBytes32(spirv.MagicNumber):
		swap = true
	default:
		return nil, report(fmt.Errorf("%w: bad magic 0x%08X", ErrInvalidModule, binary.LittleEndian.Uint32(data)))
	}
	words := make([]uint32, len(data)/4)
	for i := range words {
		w := binary.LittleEndian.Uint32(data[i*4:])
		if swap {
			w = bits.ReverseBytes32(w)
		}
		words[i] = w
	}
	return &Module{words: words}, nil
}

// Words returns the module words. The slice must not be modified.
func (m *Module) Words() []uint32 {
	return m.words
}

// Len returns the module size in words.
func (m *Module) Len() int {
	return len(m.words)
}

// Bytes encodes the module in little-endian byte order.
func (m *Module) Bytes() []byte {
	out := make([]byte, len(m.words)*4)
	for i, w := range m.words {
		binary.LittleEndian.PutUint32(out[i*4:], w)
	}
	return out
}

// Clone returns a deep copy.
func (m *Module) Clone() *Module {
	c := &Module{words: make([]uint32, len(m.words))}
	copy(c.words, m.words)
	return c
}

// Header returns the decoded header.
func (m *Module) Header() Header {
	return Header{
		Magic:     m.words[0],
		Version:   m.words[1],
		Generator: m.words[2],
		Bound:     m.words[3],
		Schema:    m.words[4],
	}
}

// Instructions decodes the instruction stream.
func (m *Module) Instructions() ([]Instruction, error) {
	insts := make([]Instruction, 0, len(m.words)/4)
	for off := HeaderWords; off < len(m.words); {
		word := m.words[off]
		count := int(word >> 16)
		op := spirv.OpCode(word & 0xFFFF)
		if count == 0 {
			return nil, report(fmt.Errorf("%w: zero word count for %s at word %d", ErrInvalidModule, OpcodeName(op), off))
		}
		if off+count > len(m.words) {
			return nil, report(fmt.Errorf("%w: %s at word %d overruns the module", ErrInvalidModule, OpcodeName(op), off))
		}
		insts = append(insts, Instruction{
			Opcode:   op,
			Operands: m.words[off+1 : off+count],
			Offset:   off,
		})
		off += count
	}
	return insts, nil
}

// Names maps result IDs to their OpName strings.
func (m *Module) Names() (map[uint32]string, error) {
	insts, err := m.Instructions()
	if err != nil {
		return nil, err
	}
	names := make(map[uint32]string)
	for _, inst := range insts {
		if inst.Opcode == spirv.OpName && len(inst.Operands) >= 2 {
			names[inst.Operands[0]], _ = inst.String(1)
		}
	}
	return names, nil
}

// EntryPoint describes one OpEntryPoint.
type EntryPoint struct {
	Model    spirv.ExecutionModel
	Function uint32
	Name     string
	// Interface lists the IDs of the entry point's interface variables.
	Interface []uint32
}

// EntryPoints returns the module's entry points in declaration order.
func (m *Module) EntryPoints() ([]EntryPoint, error) {
	insts, err := m.Instructions()
	if err != nil {
		return nil, err
	}
	var eps []EntryPoint
	for _, inst := range insts {
		if inst.Opcode != spirv.OpEntryPoint || len(inst.Operands) < 3 {
			continue
		}
		name, n := inst.String(2)
		ep := EntryPoint{
			Model:    spirv.ExecutionModel(inst.Operands[0]),
			Function: inst.Operands[1],
			Name:     name,
		}
		ep.Interface = append(ep.Interface, inst.Operands[2+n:]...)
		eps = append(eps, ep)
	}
	return eps, nil
}

func encodeWord(op spirv.OpCode, count int) uint32 {
	return uint32(count)<<16 | uint32(op)
}

func decodeString(words []uint32) (string, int) {
	var sb strings.Builder
	for i, w := range words {
		for shift := 0; shift < 32; shift += 8 {
			b := byte(w >> shift)
			if b == 0 {
				return sb.String(), i + 1
			}
			sb.WriteByte(b)
		}
	}
	return sb.String(), len(words)
}

// errorHandler receives malformed-module reports. It is installed once per
// process by the hosting application and only read afterwards.
var errorHandler atomic.Pointer[func(string)]

// RegisterErrorHandler installs the process-wide handler that receives a
// message for every malformed module this package encounters. Only the
// first registration takes effect; the result reports whether h was
// installed. Register before starting concurrent work.
func RegisterErrorHandler(h func(msg string)) bool {
	if h == nil {
		return false
	}
	return errorHandler.CompareAndSwap(nil, &h)
}

func report(err error) error {
	if h := errorHandler.Load(); h != nil {
		(*h)(err.Error())
	}
	return err
}
