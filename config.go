// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderpipe

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/shaderpipe/material"
	"github.com/gogpu/shaderpipe/target"
)

// Outputs is a set of requested output forms.
type Outputs uint8

const (
	OutputGLSL Outputs = 1 << iota
	OutputSPIRV
	OutputMSL
)

// Has reports whether every output in o is requested.
func (r Outputs) Has(o Outputs) bool {
	return r&o == o
}

// String lists the outputs, e.g. "glsl|msl".
func (r Outputs) String() string {
	var parts []string
	if r.Has(OutputGLSL) {
		parts = append(parts, "glsl")
	}
	if r.Has(OutputSPIRV) {
		parts = append(parts, "spirv")
	}
	if r.Has(OutputMSL) {
		parts = append(parts, "msl")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// ParseOutputs parses a comma-separated list of "glsl", "spirv" and
// "msl".
func ParseOutputs(s string) (Outputs, error) {
	var out Outputs
	for _, f := range strings.Split(s, ",") {
		switch strings.ToLower(strings.TrimSpace(f)) {
		case "":
		case "glsl":
			out |= OutputGLSL
		case "spirv", "spv":
			out |= OutputSPIRV
		case "msl", "metal":
			out |= OutputMSL
		default:
			return 0, fmt.Errorf("shaderpipe: unknown output %q", f)
		}
	}
	return out, nil
}

// Config describes one compilation request.
type Config struct {
	Stage        target.Stage
	Model        target.ShaderModel
	API          target.API
	Language     target.Language
	Optimization target.Optimization
	Outputs      Outputs

	FramebufferFetch bool
	DebugInfo        bool

	// Variant selects the engine's sampler interface blocks.
	Variant material.Variant

	// Material is required for MSL output.
	Material *material.Descriptor
}

// Validate reports settings the pipeline cannot honor as an *Error of
// kind ErrConfiguration.
func (c *Config) Validate() error {
	var err error
	switch {
	case c.Stage == 0:
		err = errors.New("missing shader stage")
	case !c.Stage.Valid():
		err = fmt.Errorf("unsupported shader stage %s", c.Stage)
	case c.Model != target.Mobile && c.Model != target.Desktop:
		err = fmt.Errorf("unsupported shader model %s", c.Model)
	case c.API < target.OpenGL || c.API > target.Metal:
		err = fmt.Errorf("unsupported API %s", c.API)
	case c.Language != target.GLSL && c.Language != target.SPIRV:
		err = fmt.Errorf("unsupported language %s", c.Language)
	case c.Optimization > target.OptimizePerformance:
		err = fmt.Errorf("unsupported optimization level %s", c.Optimization)
	case c.Outputs.Has(OutputMSL) && c.Language != target.SPIRV:
		err = errors.New("MSL output needs the SPIR-V language")
	case c.Outputs.Has(OutputMSL) && c.Material == nil:
		err = errors.New("MSL output needs a material descriptor")
	}
	if err != nil {
		return &Error{Kind: ErrConfiguration, Stage: c.Stage, Err: err}
	}
	return nil
}

func (c *Config) descriptor() target.Descriptor {
	return target.Descriptor{API: c.API, Model: c.Model, Stage: c.Stage}
}

func (c *Config) domain() material.Domain {
	if c.Material == nil {
		return material.Surface
	}
	return c.Material.Domain
}

func (c *Config) subpasses() []material.SubpassRemap {
	if c.Material == nil {
		return nil
	}
	return c.Material.Subpasses
}
