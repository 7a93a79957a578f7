// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"context"
	"fmt"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/shaderpipe/spvbin"
	"github.com/gogpu/shaderpipe/target"
)

// Naga compiles WGSL in process. WGSL has no preprocessor, so Preprocess
// returns its input.
type Naga struct {
	// SPIRVVersion is the version of the lowered module. The zero value
	// means SPIR-V 1.0.
	SPIRVVersion spirv.Version
}

// NewNaga returns a WGSL compiler that emits SPIR-V 1.0.
func NewNaga() *Naga {
	return &Naga{SPIRVVersion: spirv.Version1_0}
}

// Preprocess implements [Compiler].
func (n *Naga) Preprocess(ctx context.Context, src string, _ Settings) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return src, nil
}

// Parse implements [Compiler]. It fails when src has no entry point for
// the requested stage.
func (n *Naga) Parse(ctx context.Context, src string, s Settings) (Program, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	ast, err := naga.Parse(src)
	if err != nil {
		return nil, &Diagnostic{Phase: PhaseParse, Log: err.Error(), Err: err}
	}
	module, err := naga.LowerWithSource(ast, src)
	if err != nil {
		return nil, &Diagnostic{Phase: PhaseParse, Log: err.Error(), Err: err}
	}

	want := irStage(s.Stage)
	found := false
	for _, ep := range module.EntryPoints {
		if ep.Stage == want {
			found = true
			break
		}
	}
	if !found {
		return nil, &Diagnostic{Phase: PhaseParse, Err: fmt.Errorf("no %s entry point", s.Stage)}
	}

	version := n.SPIRVVersion
	if version == (spirv.Version{}) {
		version = spirv.Version1_0
	}
	return &nagaProgram{module: module, settings: s, version: version}, nil
}

func irStage(s target.Stage) ir.ShaderStage {
	if s == target.Vertex {
		return ir.StageVertex
	}
	return ir.StageFragment
}

type nagaProgram struct {
	module   *ir.Module
	settings Settings
	version  spirv.Version
	linked   bool
}

func (p *nagaProgram) Link(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	errs, err := naga.Validate(p.module)
	if err != nil {
		return &Diagnostic{Phase: PhaseLink, Err: err}
	}
	if len(errs) > 0 {
		lines := make([]string, len(errs))
		for i, e := range errs {
			lines[i] = e.Error()
		}
		return &Diagnostic{
			Phase: PhaseLink,
			Log:   strings.Join(lines, "\n"),
			Err:   fmt.Errorf("%d validation errors", len(errs)),
		}
	}
	p.linked = true
	return nil
}

func (p *nagaProgram) Lower(ctx context.Context) (*spvbin.Module, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !p.linked {
		return nil, &Diagnostic{Phase: PhaseLower, Err: fmt.Errorf("program is not linked")}
	}
	data, err := naga.GenerateSPIRV(p.module, spirv.Options{
		Version: p.version,
		Debug:   p.settings.DebugInfo,
	})
	if err != nil {
		return nil, &Diagnostic{Phase: PhaseLower, Err: err}
	}
	m, err := spvbin.FromBytes(data)
	if err != nil {
		return nil, &Diagnostic{Phase: PhaseLower, Err: err}
	}
	return m, nil
}
