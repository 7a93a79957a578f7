// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"context"
	"strings"

	"github.com/gogpu/shaderpipe/glsl"
	"github.com/gogpu/shaderpipe/material"
	"github.com/gogpu/shaderpipe/target"
)

// DefaultLodBias is the bias expression surface fragment shaders sample
// with.
const DefaultLodBias = "frameUniforms.lodBias"

// Adapter runs a Compiler for the pipeline.
type Adapter struct {
	Compiler Compiler

	// LodBias is the expression passed as the bias argument of texture()
	// calls. Empty means DefaultLodBias.
	LodBias string
}

// NewAdapter returns an adapter for c with the default bias expression.
func NewAdapter(c Compiler) *Adapter {
	return &Adapter{Compiler: c, LodBias: DefaultLodBias}
}

// Prepare rewrites src before parsing. Surface fragment shaders get the
// LOD bias appended to every two-argument texture() call, provided the
// bias expression's root identifier is declared at file scope. It returns
// the source and the number of calls rewritten.
func (a *Adapter) Prepare(src string, stage target.Stage, domain material.Domain) (string, int) {
	if stage != target.Fragment || domain != material.Surface {
		return src, 0
	}
	bias := a.LodBias
	if bias == "" {
		bias = DefaultLodBias
	}
	if !glsl.DeclaresGlobal(src, biasRoot(bias)) {
		return src, 0
	}
	return glsl.InjectLodBias(src, bias)
}

// biasRoot returns the leading identifier of a bias expression.
func biasRoot(expr string) string {
	if i := strings.IndexAny(expr, ".[("); i >= 0 {
		return strings.TrimSpace(expr[:i])
	}
	return strings.TrimSpace(expr)
}

// Load parses and links src. Linking always runs, since lowering needs
// the finalized types even for a single stage.
func (a *Adapter) Load(ctx context.Context, src string, s Settings) (Program, error) {
	prog, err := a.Compiler.Parse(ctx, src, s)
	if err != nil {
		return nil, diagnose(PhaseParse, err)
	}
	if err := prog.Link(ctx); err != nil {
		return nil, diagnose(PhaseLink, err)
	}
	return prog, nil
}

// Preprocess expands src.
func (a *Adapter) Preprocess(ctx context.Context, src string, s Settings) (string, error) {
	out, err := a.Compiler.Preprocess(ctx, src, s)
	if err != nil {
		return "", diagnose(PhasePreprocess, err)
	}
	return out, nil
}
