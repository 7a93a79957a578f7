// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderpipe

import "github.com/gogpu/shaderpipe/spvbin"

// Result holds the outputs of one compilation. A slot is present only
// when it was requested and produced.
type Result struct {
	glsl   string
	spirv  *spvbin.Module
	msl    string
	filled Outputs
}

// GLSL returns the GLSL output.
func (r *Result) GLSL() (string, bool) {
	if r == nil || !r.filled.Has(OutputGLSL) {
		return "", false
	}
	return r.glsl, true
}

// SPIRV returns the SPIR-V output.
func (r *Result) SPIRV() (*spvbin.Module, bool) {
	if r == nil || !r.filled.Has(OutputSPIRV) {
		return nil, false
	}
	return r.spirv, true
}

// MSL returns the MSL output.
func (r *Result) MSL() (string, bool) {
	if r == nil || !r.filled.Has(OutputMSL) {
		return "", false
	}
	return r.msl, true
}

// Has reports whether every slot in o is present.
func (r *Result) Has(o Outputs) bool {
	return r != nil && r.filled.Has(o)
}

// Outputs returns the set of present slots.
func (r *Result) Outputs() Outputs {
	if r == nil {
		return 0
	}
	return r.filled
}

func (r *Result) setGLSL(s string) {
	r.glsl = s
	r.filled |= OutputGLSL
}

func (r *Result) setSPIRV(m *spvbin.Module) {
	r.spirv = m
	r.filled |= OutputSPIRV
}

func (r *Result) setMSL(s string) {
	r.msl = s
	r.filled |= OutputMSL
}
