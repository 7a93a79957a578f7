// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package frontend adapts shading-language compilers to the pipeline.
//
// A [Compiler] parses source into a [Program], which is linked and then
// lowered to a SPIR-V module. Two compilers are provided: [Glslang] drives
// the glslangValidator executable for GLSL, and [Naga] compiles WGSL in
// process. The [Adapter] wraps either one with the source preparation
// every request goes through.
package frontend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gogpu/shaderpipe/spvbin"
	"github.com/gogpu/shaderpipe/target"
)

// Rules selects the semantic rule sets the parser enforces.
type Rules uint8

const (
	// RulesSPIRV enforces the rules for code that will be lowered to
	// SPIR-V.
	RulesSPIRV Rules = 1 << iota
	// RulesVulkan enforces Vulkan semantics, which subpass inputs need.
	RulesVulkan
)

// Has reports whether every rule in f is set.
func (r Rules) Has(f Rules) bool {
	return r&f == f
}

// String lists the set rules, e.g. "spirv|vulkan".
func (r Rules) String() string {
	var parts []string
	if r.Has(RulesSPIRV) {
		parts = append(parts, "spirv")
	}
	if r.Has(RulesVulkan) {
		parts = append(parts, "vulkan")
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, "|")
}

// Settings configures one parse.
type Settings struct {
	Stage target.Stage

	// Version is assumed for sources without a #version directive.
	Version int
	ES      bool

	Rules     Rules
	Client    target.API
	DebugInfo bool
}

// SettingsFor derives parser settings from a compilation target.
// Framebuffer fetch always turns on Vulkan rules.
func SettingsFor(stage target.Stage, model target.ShaderModel, api target.API, lang target.Language, framebufferFetch bool) Settings {
	s := Settings{
		Stage:   stage,
		Version: model.ParserVersion(),
		ES:      model.ES(),
		Client:  api,
	}
	if lang == target.SPIRV {
		s.Rules |= RulesSPIRV
	}
	if api == target.Vulkan || api == target.Metal || framebufferFetch {
		s.Rules |= RulesVulkan
	}
	return s
}

// Compiler is a shading-language front end.
type Compiler interface {
	// Preprocess expands macros and includes without parsing.
	Preprocess(ctx context.Context, src string, s Settings) (string, error)
	// Parse checks src and returns a program ready to link.
	Parse(ctx context.Context, src string, s Settings) (Program, error)
}

// Program is a parsed single-stage program.
type Program interface {
	// Link finalizes the program. It must succeed before Lower is called.
	Link(ctx context.Context) error
	// Lower produces a SPIR-V module, with debug information when the
	// parse settings ask for it.
	Lower(ctx context.Context) (*spvbin.Module, error)
}

// Phase names the front-end step that failed.
type Phase uint8

const (
	PhasePreprocess Phase = iota + 1
	PhaseParse
	PhaseLink
	PhaseLower
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhasePreprocess:
		return "preprocess"
	case PhaseParse:
		return "parse"
	case PhaseLink:
		return "link"
	case PhaseLower:
		return "lower"
	default:
		return fmt.Sprintf("Phase(%d)", p)
	}
}

// Diagnostic is a front-end failure with the compiler's info log.
type Diagnostic struct {
	Phase Phase
	Log   string
	Err   error
}

// Error implements the error interface.
func (d *Diagnostic) Error() string {
	msg := d.Phase.String() + " failed"
	if d.Err != nil {
		msg += ": " + d.Err.Error()
	}
	if log := strings.TrimSpace(d.Log); log != "" {
		msg += "\n" + log
	}
	return msg
}

// Unwrap returns the underlying error.
func (d *Diagnostic) Unwrap() error {
	return d.Err
}

// diagnose returns err as a *Diagnostic, labelling plain errors with
// phase.
func diagnose(phase Phase, err error) *Diagnostic {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d
	}
	return &Diagnostic{Phase: phase, Err: err}
}
