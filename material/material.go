// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package material describes the parts of a material that shader
// post-processing depends on: its domain, the sampler interface blocks
// visible to each stage and the framebuffer-fetch subpass table.
package material

import (
	"fmt"
	"strings"

	"github.com/gogpu/gputypes"
)

// Domain is the kind of material being compiled.
type Domain uint8

const (
	// Surface materials shade geometry and see the engine's per-view and
	// per-renderable sampler blocks.
	Surface Domain = iota
	// PostProcess materials only see their own samplers.
	PostProcess
)

// String returns the domain name.
func (d Domain) String() string {
	switch d {
	case Surface:
		return "surface"
	case PostProcess:
		return "postprocess"
	default:
		return fmt.Sprintf("Domain(%d)", d)
	}
}

// ParseDomain accepts "surface" or "postprocess".
func ParseDomain(s string) (Domain, error) {
	switch strings.ToLower(strings.ReplaceAll(s, "_", "")) {
	case "surface", "":
		return Surface, nil
	case "postprocess":
		return PostProcess, nil
	}
	return 0, fmt.Errorf("material: unknown domain %q", s)
}

// BindingPoint identifies a sampler interface block slot. Binding points
// are ordered; that order fixes the binding indices assigned to samplers.
type BindingPoint uint8

const (
	PerView BindingPoint = iota
	PerRenderableMorphing
	PerMaterialInstance

	bindingPointCount
)

// BindingPoints returns every binding point in enum order.
func BindingPoints() []BindingPoint {
	out := make([]BindingPoint, bindingPointCount)
	for i := range out {
		out[i] = BindingPoint(i)
	}
	return out
}

// String returns the binding point name.
func (p BindingPoint) String() string {
	switch p {
	case PerView:
		return "perView"
	case PerRenderableMorphing:
		return "perRenderableMorphing"
	case PerMaterialInstance:
		return "perMaterialInstance"
	default:
		return fmt.Sprintf("BindingPoint(%d)", p)
	}
}

// ParseBindingPoint is the inverse of [BindingPoint.String], ignoring case.
func ParseBindingPoint(s string) (BindingPoint, error) {
	for _, p := range BindingPoints() {
		if strings.EqualFold(p.String(), s) {
			return p, nil
		}
	}
	return 0, fmt.Errorf("material: unknown binding point %q", s)
}

// Variant is a bit set selecting a shader variant. Some engine sampler
// blocks only exist for certain variants.
type Variant uint8

const (
	VariantDirectionalLighting Variant = 1 << iota
	VariantDynamicLighting
	VariantShadowReceiver
	VariantSkinning
	VariantDepth
	VariantFog
)

// Has reports whether every bit of flag is set in v.
func (v Variant) Has(flag Variant) bool {
	return v&flag == flag
}

// SamplerInfo is one sampler declared by an interface block.
type SamplerInfo struct {
	Name        string // uniform name in generated shader code
	Dimension   gputypes.TextureViewDimension
	SampleType  gputypes.TextureSampleType
	Multisample bool
}

// SamplerInterfaceBlock is an ordered group of samplers together with the
// stages that can see them.
type SamplerInterfaceBlock struct {
	Name     string
	Stages   gputypes.ShaderStages
	Samplers []SamplerInfo
}

// VisibleTo reports whether the block's samplers are declared in stage.
func (b *SamplerInterfaceBlock) VisibleTo(stage gputypes.ShaderStage) bool {
	return b != nil && stage != gputypes.ShaderStageNone && b.Stages.Contains(stage)
}

// SamplerNames returns the sampler names in declaration order.
func (b *SamplerInterfaceBlock) SamplerNames() []string {
	if b == nil {
		return nil
	}
	names := make([]string, len(b.Samplers))
	for i, s := range b.Samplers {
		names[i] = s.Name
	}
	return names
}

// SubpassRemap maps a subpass input attachment to the color output
// location it reads back through framebuffer fetch.
type SubpassRemap struct {
	Index    uint32
	Location uint32
}

// Library supplies the engine's sampler interface blocks.
type Library interface {
	// SamplerInterfaceBlock returns the block bound at point for variant,
	// or nil when the variant has none.
	SamplerInterfaceBlock(point BindingPoint, variant Variant) *SamplerInterfaceBlock
}

// Descriptor is the material information read during post-processing.
type Descriptor struct {
	Domain Domain

	// Samplers is the material's own block; its samplers are assigned the
	// highest binding indices.
	Samplers *SamplerInterfaceBlock

	// Subpasses lists framebuffer-fetch remaps for ES fragment shaders.
	Subpasses []SubpassRemap

	// Library provides engine blocks. Nil means [Standard].
	Library Library
}

// Lib returns the descriptor's library, defaulting to [Standard].
func (d *Descriptor) Lib() Library {
	if d == nil || d.Library == nil {
		return Standard()
	}
	return d.Library
}
