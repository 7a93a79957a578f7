// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package material

import (
	"sync"

	"github.com/gogpu/gputypes"
)

// Blocks is a fixed [Library]: one block per binding point, optionally
// restricted to variants carrying a flag.
type Blocks struct {
	entries map[BindingPoint]blockEntry
}

type blockEntry struct {
	block    *SamplerInterfaceBlock
	requires Variant
}

// NewBlocks returns an empty library.
func NewBlocks() *Blocks {
	return &Blocks{entries: make(map[BindingPoint]blockEntry)}
}

// Set binds block at point for every variant that has all bits of
// requires. A zero requires matches every variant.
func (b *Blocks) Set(point BindingPoint, block *SamplerInterfaceBlock, requires Variant) *Blocks {
	b.entries[point] = blockEntry{block: block, requires: requires}
	return b
}

// SamplerInterfaceBlock implements [Library].
func (b *Blocks) SamplerInterfaceBlock(point BindingPoint, variant Variant) *SamplerInterfaceBlock {
	e, ok := b.entries[point]
	if !ok || !variant.Has(e.requires) {
		return nil
	}
	return e.block
}

var standard = sync.OnceValue(func() *Blocks {
	perView := &SamplerInterfaceBlock{
		Name:   "Light",
		Stages: gputypes.ShaderStageFragment,
		Samplers: []SamplerInfo{
			{Name: "light_shadowMap", Dimension: gputypes.TextureViewDimension2DArray, SampleType: gputypes.TextureSampleTypeDepth},
			{Name: "light_iblDFG", Dimension: gputypes.TextureViewDimension2D, SampleType: gputypes.TextureSampleTypeFloat},
			{Name: "light_iblSpecular", Dimension: gputypes.TextureViewDimensionCube, SampleType: gputypes.TextureSampleTypeFloat},
			{Name: "light_ssao", Dimension: gputypes.TextureViewDimension2DArray, SampleType: gputypes.TextureSampleTypeFloat},
			{Name: "light_ssr", Dimension: gputypes.TextureViewDimension2D, SampleType: gputypes.TextureSampleTypeFloat},
			{Name: "light_structure", Dimension: gputypes.TextureViewDimension2D, SampleType: gputypes.TextureSampleTypeUnfilterableFloat},
		},
	}
	morphing := &SamplerInterfaceBlock{
		Name:   "MorphTargetBuffer",
		Stages: gputypes.ShaderStageVertex,
		Samplers: []SamplerInfo{
			{Name: "morphTargetBuffer_positions", Dimension: gputypes.TextureViewDimension2DArray, SampleType: gputypes.TextureSampleTypeFloat},
			{Name: "morphTargetBuffer_tangents", Dimension: gputypes.TextureViewDimension2DArray, SampleType: gputypes.TextureSampleTypeSint},
		},
	}
	return NewBlocks().
		Set(PerView, perView, 0).
		Set(PerRenderableMorphing, morphing, VariantSkinning)
})

// Standard returns the engine's built-in sampler blocks: lighting samplers
// for fragment shaders on every variant and morph target buffers for
// vertex shaders on skinned variants.
func Standard() Library {
	return standard()
}
