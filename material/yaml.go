// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package material

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gogpu/gputypes"
	"gopkg.in/yaml.v3"
)

// File layout:
//
//	domain: surface
//	samplers:
//	  name: MaterialParams
//	  stages: [vertex, fragment]
//	  samplers:
//	    - {name: materialParams_albedo, dimension: 2d, type: float}
//	subpasses:
//	  - {index: 0, location: 0}
//	library:
//	  - point: perView
//	    requires: [shadowReceiver]
//	    block: {...}
type fileDescriptor struct {
	Domain    string         `yaml:"domain"`
	Samplers  *fileBlock     `yaml:"samplers"`
	Subpasses []SubpassRemap `yaml:"subpasses"`
	Library   []fileLibEntry `yaml:"library"`
}

type fileBlock struct {
	Name     string        `yaml:"name"`
	Stages   []string      `yaml:"stages"`
	Samplers []fileSampler `yaml:"samplers"`
}

type fileSampler struct {
	Name        string `yaml:"name"`
	Dimension   string `yaml:"dimension"`
	Type        string `yaml:"type"`
	Multisample bool   `yaml:"multisample"`
}

type fileLibEntry struct {
	Point    string    `yaml:"point"`
	Requires []string  `yaml:"requires"`
	Block    fileBlock `yaml:"block"`
}

// Load reads a YAML material descriptor. When the file declares a library
// it replaces [Standard]; otherwise the descriptor uses the standard
// blocks.
func Load(r io.Reader) (*Descriptor, error) {
	var f fileDescriptor
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("material: %w", err)
	}

	domain, err := ParseDomain(f.Domain)
	if err != nil {
		return nil, err
	}
	d := &Descriptor{Domain: domain, Subpasses: f.Subpasses}

	if f.Samplers != nil {
		if d.Samplers, err = f.Samplers.build(); err != nil {
			return nil, err
		}
	} else {
		d.Samplers = &SamplerInterfaceBlock{Name: "MaterialParams", Stages: gputypes.ShaderStagesVertexFragment}
	}

	if len(f.Library) > 0 {
		lib := NewBlocks()
		for i, e := range f.Library {
			point, err := ParseBindingPoint(e.Point)
			if err != nil {
				return nil, fmt.Errorf("material: library[%d]: %w", i, err)
			}
			var requires Variant
			for _, name := range e.Requires {
				v, err := parseVariant(name)
				if err != nil {
					return nil, fmt.Errorf("material: library[%d]: %w", i, err)
				}
				requires |= v
			}
			block, err := e.Block.build()
			if err != nil {
				return nil, fmt.Errorf("material: library[%d]: %w", i, err)
			}
			lib.Set(point, block, requires)
		}
		d.Library = lib
	}
	return d, nil
}

// LoadFile is [Load] on the named file.
func LoadFile(path string) (*Descriptor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("material: %w", err)
	}
	defer f.Close()
	return Load(f)
}

func (b *fileBlock) build() (*SamplerInterfaceBlock, error) {
	out := &SamplerInterfaceBlock{Name: b.Name}
	if len(b.Stages) == 0 {
		out.Stages = gputypes.ShaderStagesVertexFragment
	}
	for _, s := range b.Stages {
		stage, err := parseStage(s)
		if err != nil {
			return nil, err
		}
		out.Stages |= stage
	}
	for _, s := range b.Samplers {
		if s.Name == "" {
			return nil, fmt.Errorf("material: block %q: sampler without a name", b.Name)
		}
		dim, err := parseDimension(s.Dimension)
		if err != nil {
			return nil, err
		}
		st, err := parseSampleType(s.Type)
		if err != nil {
			return nil, err
		}
		out.Samplers = append(out.Samplers, SamplerInfo{
			Name:        s.Name,
			Dimension:   dim,
			SampleType:  st,
			Multisample: s.Multisample,
		})
	}
	return out, nil
}

func parseStage(s string) (gputypes.ShaderStage, error) {
	switch strings.ToLower(s) {
	case "vertex", "vert":
		return gputypes.ShaderStageVertex, nil
	case "fragment", "frag":
		return gputypes.ShaderStageFragment, nil
	case "compute", "comp":
		return gputypes.ShaderStageCompute, nil
	}
	return 0, fmt.Errorf("material: unknown stage %q", s)
}

func parseDimension(s string) (gputypes.TextureViewDimension, error) {
	switch strings.ToLower(s) {
	case "", "2d":
		return gputypes.TextureViewDimension2D, nil
	case "1d":
		return gputypes.TextureViewDimension1D, nil
	case "2darray", "2d_array":
		return gputypes.TextureViewDimension2DArray, nil
	case "cube":
		return gputypes.TextureViewDimensionCube, nil
	case "cubearray", "cube_array":
		return gputypes.TextureViewDimensionCubeArray, nil
	case "3d":
		return gputypes.TextureViewDimension3D, nil
	}
	return 0, fmt.Errorf("material: unknown sampler dimension %q", s)
}

func parseSampleType(s string) (gputypes.TextureSampleType, error) {
	switch strings.ToLower(s) {
	case "", "float":
		return gputypes.TextureSampleTypeFloat, nil
	case "unfilterable", "unfilterablefloat":
		return gputypes.TextureSampleTypeUnfilterableFloat, nil
	case "depth", "shadow":
		return gputypes.TextureSampleTypeDepth, nil
	case "int", "sint":
		return gputypes.TextureSampleTypeSint, nil
	case "uint":
		return gputypes.TextureSampleTypeUint, nil
	}
	return 0, fmt.Errorf("material: unknown sample type %q", s)
}

func parseVariant(s string) (Variant, error) {
	switch strings.ToLower(s) {
	case "directionallighting":
		return VariantDirectionalLighting, nil
	case "dynamiclighting":
		return VariantDynamicLighting, nil
	case "shadowreceiver":
		return VariantShadowReceiver, nil
	case "skinning":
		return VariantSkinning, nil
	case "depth":
		return VariantDepth, nil
	case "fog":
		return VariantFog, nil
	}
	return 0, fmt.Errorf("material: unknown variant flag %q", s)
}

// ParseVariant reads a comma-separated list of variant flag names.
func ParseVariant(s string) (Variant, error) {
	var v Variant
	for _, name := range strings.Split(s, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		f, err := parseVariant(name)
		if err != nil {
			return 0, err
		}
		v |= f
	}
	return v, nil
}
