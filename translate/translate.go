// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package translate converts SPIR-V modules back to source languages.
//
// The translation engine is external and sits behind [GLSLTranslator] and
// [MSLTranslator]. [SPIRVCross] drives the spirv-cross command-line tool.
// This package also derives the translator options for a shader model and
// stage.
package translate

import (
	"context"
	"fmt"

	"github.com/gogpu/shaderpipe/material"
	"github.com/gogpu/shaderpipe/spvbin"
	"github.com/gogpu/shaderpipe/target"
)

// Precision is a GLSL default precision qualifier.
type Precision uint8

const (
	Lowp Precision = iota
	Mediump
	Highp
)

// String returns the GLSL qualifier.
func (p Precision) String() string {
	switch p {
	case Lowp:
		return "lowp"
	case Mediump:
		return "mediump"
	case Highp:
		return "highp"
	default:
		return fmt.Sprintf("Precision(%d)", p)
	}
}

// PackingHeader enables packing built-ins on desktop GL when the driver
// has them.
const PackingHeader = "#extension GL_ARB_shading_language_packing : enable"

// GLSLOptions controls back-translation to GLSL.
type GLSLOptions struct {
	ES      bool
	Version int
	// Enable420Pack allows GL_ARB_shading_language_420pack constructs.
	Enable420Pack  bool
	FloatPrecision Precision
	IntPrecision   Precision
	// HeaderLines are emitted right after the #version line.
	HeaderLines []string
	// FramebufferFetch maps subpass inputs to the color outputs read
	// through EXT_shader_framebuffer_fetch.
	FramebufferFetch []material.SubpassRemap
}

// GLSLOptionsFor returns the back-translation options for a shader model
// and stage. Framebuffer-fetch remaps only apply to ES fragment shaders.
func GLSLOptionsFor(model target.ShaderModel, stage target.Stage, subpasses []material.SubpassRemap) GLSLOptions {
	opts := GLSLOptions{
		ES:      model.ES(),
		Version: model.GLSLVersion(),
	}
	opts.Enable420Pack = opts.Version >= 420
	if opts.ES {
		opts.FloatPrecision, opts.IntPrecision = Mediump, Mediump
	} else {
		opts.FloatPrecision, opts.IntPrecision = Highp, Highp
		opts.HeaderLines = []string{PackingHeader}
	}
	if stage == target.Fragment && opts.ES && len(subpasses) > 0 {
		opts.FramebufferFetch = append([]material.SubpassRemap(nil), subpasses...)
	}
	return opts
}

// Platform is the Apple platform an MSL shader is compiled for.
type Platform uint8

const (
	IOS Platform = iota
	MacOS
)

// String returns the platform name.
func (p Platform) String() string {
	if p == IOS {
		return "iOS"
	}
	return "macOS"
}

// MSLVersion is a Metal Shading Language version.
type MSLVersion struct {
	Major, Minor int
}

// Encoded returns the version in spirv-cross form, 20300 for 2.3.
func (v MSLVersion) Encoded() int {
	return v.Major*10000 + v.Minor*100
}

// String formats v as "major.minor".
func (v MSLVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ResourceBinding places one descriptor binding into Metal argument
// slots. Texture, Sampler and Buffer are the [[texture(n)]],
// [[sampler(n)]] and [[buffer(n)]] indices.
type ResourceBinding struct {
	// Name is the resource variable name, for diagnostics.
	Name    string
	Stage   target.Stage
	Set     uint32
	Binding uint32
	Buffer  uint32
	Texture uint32
	Sampler uint32
}

// MSLOptions controls cross-compilation to MSL.
type MSLOptions struct {
	Platform Platform
	Version  MSLVersion

	// FramebufferFetch reads subpass inputs through framebuffer fetch.
	FramebufferFetch bool
	Bindings         []ResourceBinding
}

// MSLOptionsFor returns the cross-compilation options for a shader model.
// Mobile targets iOS with MSL 2.0 and desktop targets macOS with MSL 2.2.
// Framebuffer fetch needs MSL 2.3 on macOS.
func MSLOptionsFor(model target.ShaderModel, framebufferFetch bool) MSLOptions {
	opts := MSLOptions{Platform: IOS, Version: MSLVersion{2, 0}}
	if model == target.Desktop {
		opts.Platform, opts.Version = MacOS, MSLVersion{2, 2}
	}
	if framebufferFetch {
		opts.FramebufferFetch = true
		if model == target.Desktop {
			opts.Version = MSLVersion{2, 3}
		}
	}
	return opts
}

// GLSLTranslator converts a SPIR-V module to GLSL source.
type GLSLTranslator interface {
	TranslateGLSL(ctx context.Context, m *spvbin.Module, opts GLSLOptions) (string, error)
}

// MSLTranslator converts a SPIR-V module to MSL source.
type MSLTranslator interface {
	TranslateMSL(ctx context.Context, m *spvbin.Module, opts MSLOptions) (string, error)
}
