// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package optimizer plans and runs SPIR-V optimization.
//
// The pass sequences for each optimization level are kept in a declarative
// table (see [Plan]); the transformations themselves run in an external
// [Optimizer] such as spirv-opt. [Run] executes a plan and always finishes
// with a dead-object sweep over module-scope functions, types and
// variables.
package optimizer

import (
	"context"
	"errors"
	"fmt"

	"github.com/gogpu/shaderpipe/spvbin"
)

// ErrPassFailed reports that the external optimizer rejected the pass
// sequence. The module returned alongside it is the last good one.
var ErrPassFailed = errors.New("optimizer: pass sequence failed")

// Optimizer runs an ordered pass list over a module and returns the
// transformed module. Diagnostics go to sink as they are produced.
type Optimizer interface {
	Optimize(ctx context.Context, m *spvbin.Module, passes []Pass, sink func(Message)) (*spvbin.Module, error)
}

// Run executes passes with opt and strips dead module-scope objects from
// the result.
//
// If the optimizer fails, Run keeps m as the last good module, still strips
// it, and returns the stripped module together with an error wrapping
// ErrPassFailed. Any other error means no usable module was produced.
func Run(ctx context.Context, opt Optimizer, m *spvbin.Module, passes []Pass, sink func(Message)) (*spvbin.Module, error) {
	if sink == nil {
		sink = func(Message) {}
	}

	var passErr error
	out := m
	if len(passes) > 0 {
		optimized, err := opt.Optimize(ctx, m, passes, sink)
		switch {
		case err != nil:
			passErr = fmt.Errorf("%w: %w", ErrPassFailed, err)
		case optimized == nil:
			passErr = fmt.Errorf("%w: optimizer returned no module", ErrPassFailed)
		default:
			out = optimized
		}
	}

	stripped, err := spvbin.StripDeadObjects(out)
	if err != nil {
		return nil, fmt.Errorf("optimizer: dead object sweep: %w", err)
	}
	return stripped, passErr
}
