// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderpipe

import (
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shaderpipe/frontend"
	"github.com/gogpu/shaderpipe/material"
	"github.com/gogpu/shaderpipe/target"
)

func TestOutputs(t *testing.T) {
	tests := []struct {
		in   string
		want Outputs
		str  string
	}{
		{"glsl", OutputGLSL, "glsl"},
		{"spirv,msl", OutputSPIRV | OutputMSL, "spirv|msl"},
		{" SPV , Metal ,glsl", OutputGLSL | OutputSPIRV | OutputMSL, "glsl|spirv|msl"},
		{"", 0, "none"},
		{"glsl,,glsl", OutputGLSL, "glsl"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseOutputs(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.str, got.String())
		})
	}

	_, err := ParseOutputs("glsl,hlsl")
	assert.ErrorContains(t, err, `"hlsl"`)

	all := OutputGLSL | OutputMSL
	assert.True(t, all.Has(OutputMSL))
	assert.False(t, all.Has(OutputMSL|OutputSPIRV))
}

func TestConfigValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Stage:        target.Fragment,
			Model:        target.Mobile,
			API:          target.Metal,
			Language:     target.SPIRV,
			Optimization: target.OptimizePerformance,
			Outputs:      OutputMSL | OutputGLSL,
			Material:     &material.Descriptor{},
		}
	}
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing stage", func(c *Config) { c.Stage = 0 }, "missing shader stage"},
		{"bad stage", func(c *Config) { c.Stage = 9 }, "unsupported shader stage"},
		{"bad model", func(c *Config) { c.Model = 7 }, "unsupported shader model"},
		{"bad api", func(c *Config) { c.API = 42 }, "unsupported API"},
		{"bad language", func(c *Config) { c.Language = 8 }, "unsupported language"},
		{"bad level", func(c *Config) { c.Optimization = 99 }, "unsupported optimization level"},
		{"opengl through spirv", func(c *Config) { c.API, c.Outputs = target.OpenGL, OutputGLSL }, ""},
		{"msl from glsl", func(c *Config) { c.API, c.Language = target.OpenGL, target.GLSL }, "needs the SPIR-V language"},
		{"msl without material", func(c *Config) { c.Material = nil }, "needs a material descriptor"},
		{"no material without msl", func(c *Config) { c.Material, c.Outputs = nil, OutputSPIRV }, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsKind(err, ErrConfiguration))
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	assert.Equal(t, material.Surface, cfg.domain())
	assert.Nil(t, cfg.subpasses())

	cfg.Material = &material.Descriptor{
		Domain:    material.PostProcess,
		Subpasses: []material.SubpassRemap{{Index: 0, Location: 2}},
	}
	assert.Equal(t, material.PostProcess, cfg.domain())
	assert.Len(t, cfg.subpasses(), 1)
}

func TestError(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  *Error
		want string
	}{
		{&Error{Kind: ErrLink, Stage: target.Vertex, Err: cause}, "shaderpipe: vertex LinkError: boom"},
		{&Error{Kind: ErrOptimizer}, "shaderpipe: OptimizerFailure"},
		{&Error{Kind: ErrorKind(42), Stage: target.Fragment}, "shaderpipe: fragment Unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.err.Error())
	}

	wrapped := fmt.Errorf("compile: %w", &Error{Kind: ErrBindingResolution, Err: cause})
	assert.True(t, IsKind(wrapped, ErrBindingResolution))
	assert.False(t, IsKind(wrapped, ErrParse))
	assert.ErrorIs(t, wrapped, cause)
	assert.False(t, IsKind(cause, ErrParse))
}

func TestFrontendError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"preprocess", &frontend.Diagnostic{Phase: frontend.PhasePreprocess}, ErrParse},
		{"parse", &frontend.Diagnostic{Phase: frontend.PhaseParse}, ErrParse},
		{"link", &frontend.Diagnostic{Phase: frontend.PhaseLink, Log: "undefined main"}, ErrLink},
		{"lower", &frontend.Diagnostic{Phase: frontend.PhaseLower}, ErrLowering},
		{"plain", errors.New("no such file"), ErrLowering},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := frontendError(target.Fragment, ErrLowering, tt.err)
			assert.Equal(t, tt.want, e.Kind)
			assert.Equal(t, target.Fragment, e.Stage)
			assert.ErrorIs(t, e, tt.err)
		})
	}

	e := frontendError(target.Vertex, ErrParse, &frontend.Diagnostic{Phase: frontend.PhaseLink, Log: "undefined main"})
	assert.Equal(t, "undefined main", e.Log)
}

func TestResultNil(t *testing.T) {
	var r *Result
	_, ok := r.GLSL()
	assert.False(t, ok)
	_, ok = r.SPIRV()
	assert.False(t, ok)
	_, ok = r.MSL()
	assert.False(t, ok)
	assert.False(t, r.Has(OutputGLSL))
	assert.Equal(t, Outputs(0), r.Outputs())
}

func TestResultSlots(t *testing.T) {
	r := &Result{}
	r.setGLSL("")
	text, ok := r.GLSL()
	assert.True(t, ok)
	assert.Empty(t, text)
	_, ok = r.MSL()
	assert.False(t, ok)
	assert.Equal(t, OutputGLSL, r.Outputs())
}

func TestSetLogger(t *testing.T) {
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))

	logs := captureLogs(t)
	Logger().Info("hello")
	assert.Contains(t, logs.String(), "hello")

	SetLogger(nil)
	assert.NotNil(t, Logger())
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}
