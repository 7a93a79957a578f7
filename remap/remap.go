// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package remap assigns Metal argument slots to the samplers and buffers a
// SPIR-V module references.
//
// Samplers are numbered densely across every sampler interface block the
// stage can see: engine blocks in binding-point order first, then the
// material's own block. Texture, sampler and buffer slots of a sampler all
// receive that number. Uniform buffers keep their SPIR-V binding.
package remap

import (
	"errors"
	"fmt"

	"github.com/gogpu/shaderpipe/material"
	"github.com/gogpu/shaderpipe/spvbin"
	"github.com/gogpu/shaderpipe/target"
	"github.com/gogpu/shaderpipe/translate"
)

// ErrUnregisteredResource reports a sampler the index map does not know.
var ErrUnregisteredResource = errors.New("remap: sampler has no binding index")

// IndexMap is an insertion-ordered map from sampler name to a dense binding
// index. The zero value is an empty map ready to use.
type IndexMap struct {
	names   []string
	indices map[string]uint32
}

// Add registers name at the next index. A name that is already present
// keeps its first index. Add reports whether name was new.
func (m *IndexMap) Add(name string) bool {
	if _, ok := m.indices[name]; ok {
		return false
	}
	if m.indices == nil {
		m.indices = make(map[string]uint32)
	}
	m.indices[name] = uint32(len(m.names))
	m.names = append(m.names, name)
	return true
}

// Index returns the binding index of name.
func (m *IndexMap) Index(name string) (uint32, bool) {
	if m == nil {
		return 0, false
	}
	i, ok := m.indices[name]
	return i, ok
}

// Len returns the number of registered names.
func (m *IndexMap) Len() int {
	return len(m.names)
}

// Names returns the registered names in index order.
func (m *IndexMap) Names() []string {
	return append([]string(nil), m.names...)
}

func (m *IndexMap) addBlock(b *material.SamplerInterfaceBlock, stage target.Stage) {
	if !b.VisibleTo(stage.ShaderStage()) {
		return
	}
	for _, s := range b.Samplers {
		m.Add(s.Name)
	}
}

// BuildIndexMap numbers the samplers visible to stage.
//
// Surface materials see the library's blocks for every binding point
// except the per-material-instance one, in binding-point order. The
// material's own block always comes last.
func BuildIndexMap(desc *material.Descriptor, stage target.Stage, variant material.Variant) *IndexMap {
	m := &IndexMap{}
	if desc == nil {
		return m
	}
	if desc.Domain == material.Surface {
		lib := desc.Lib()
		for _, point := range material.BindingPoints() {
			if point == material.PerMaterialInstance {
				continue
			}
			m.addBlock(lib.SamplerInterfaceBlock(point, variant), stage)
		}
	}
	m.addBlock(desc.Samplers, stage)
	return m
}

// Bindings returns the Metal slots for every sampled image and uniform
// buffer in module. Sampled images are looked up in index by name; a
// missing name fails with [ErrUnregisteredResource]. Uniform buffers use
// their own binding for all slots. Other resources are left alone.
func Bindings(module *spvbin.Module, stage target.Stage, index *IndexMap) ([]translate.ResourceBinding, error) {
	res, err := module.Resources()
	if err != nil {
		return nil, fmt.Errorf("remap: %w", err)
	}

	var out []translate.ResourceBinding
	for _, r := range res {
		b := translate.ResourceBinding{
			Name:    r.Name,
			Stage:   stage,
			Set:     r.Set,
			Binding: r.Binding,
		}
		switch r.Kind {
		case spvbin.SampledImage:
			slot, ok := index.Index(r.Name)
			if !ok {
				return nil, fmt.Errorf("%w: %q (set %d, binding %d)", ErrUnregisteredResource, r.Name, r.Set, r.Binding)
			}
			b.Buffer, b.Texture, b.Sampler = slot, slot, slot
		case spvbin.UniformBuffer:
			b.Buffer, b.Texture, b.Sampler = r.Binding, r.Binding, r.Binding
		default:
			continue
		}
		out = append(out, b)
	}
	return out, nil
}
