// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package optimizer

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/shaderpipe/target"
)

// ErrNoPlan is returned for optimization levels that run no passes.
var ErrNoPlan = errors.New("optimizer: level has no pass plan")

// condition restricts a step to some targets.
type condition uint8

const (
	always condition = iota
	// MergeReturn crashes AMD OpenGL drivers on macOS.
	unlessDesktopOpenGL
	unlessDesktop
	// Metal has no relaxed precision but does support half math.
	metalOnly
)

func (c condition) holds(d target.Descriptor) bool {
	switch c {
	case unlessDesktopOpenGL:
		return d.Model != target.Desktop || d.API != target.OpenGL
	case unlessDesktop:
		return d.Model != target.Desktop
	case metalOnly:
		return d.API == target.Metal
	default:
		return true
	}
}

type step struct {
	pass Pass
	when condition
}

func steps(passes ...Pass) []step {
	out := make([]step, len(passes))
	for i, p := range passes {
		out[i] = step{pass: p}
	}
	return out
}

func concat(parts ...[]step) []step {
	return slices.Concat(parts...)
}

var plans = map[target.Optimization][]step{
	target.OptimizePerformance: concat(
		steps(WrapOpKill, DeadBranchElim),
		[]step{{MergeReturn, unlessDesktopOpenGL}},
		steps(
			InlineExhaustive,
			AggressiveDCE,
			PrivateToLocal,
			LocalSingleBlockLoadStoreElim,
			LocalSingleStoreElim,
			AggressiveDCE,
			ScalarReplacement,
			LocalAccessChainConvert,
			LocalSingleBlockLoadStoreElim,
			LocalSingleStoreElim,
			AggressiveDCE,
			LocalMultiStoreElim,
			AggressiveDCE,
			CCP,
			AggressiveDCE,
			RedundancyElimination,
			CombineAccessChains,
			Simplification,
			VectorDCE,
			DeadInsertElim,
			DeadBranchElim,
			Simplification,
			IfConversion,
			CopyPropagateArrays,
			ReduceLoadSize,
			AggressiveDCE,
			BlockMerge,
			RedundancyElimination,
			DeadBranchElim,
			BlockMerge,
			Simplification,
		),
		[]step{
			{ConvertRelaxedToHalf, metalOnly},
			{Simplification, metalOnly},
			{RedundancyElimination, metalOnly},
			{AggressiveDCE, metalOnly},
		},
	),

	target.OptimizeSize: concat(
		steps(WrapOpKill, DeadBranchElim),
		[]step{{MergeReturn, unlessDesktop}},
		steps(
			InlineExhaustive,
			EliminateDeadFunctions,
			PrivateToLocal,
			ScalarReplacementUnbounded,
			LocalMultiStoreElim,
			CCP,
			LoopUnroll,
			DeadBranchElim,
			Simplification,
			ScalarReplacementUnbounded,
			LocalSingleStoreElim,
			IfConversion,
			Simplification,
			AggressiveDCE,
			DeadBranchElim,
			BlockMerge,
			LocalAccessChainConvert,
			LocalSingleBlockLoadStoreElim,
			AggressiveDCE,
			CopyPropagateArrays,
			VectorDCE,
			DeadInsertElim,
			LocalSingleStoreElim,
			BlockMerge,
			LocalMultiStoreElim,
			RedundancyElimination,
			Simplification,
			AggressiveDCE,
			CFGCleanup,
		),
	),
}

// forbidden lists passes a level must never schedule.
var forbidden = map[target.Optimization][]Pass{
	target.OptimizeSize: {EliminateDeadMembers},
}

// Plan returns the ordered passes for level on the given target. The
// result is a fresh slice the caller may modify.
func Plan(level target.Optimization, d target.Descriptor) ([]Pass, error) {
	table, ok := plans[level]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoPlan, level)
	}
	out := make([]Pass, 0, len(table))
	for _, s := range table {
		if s.when.holds(d) {
			out = append(out, s.pass)
		}
	}
	for _, p := range forbidden[level] {
		if slices.Contains(out, p) {
			return nil, fmt.Errorf("optimizer: %s plan schedules forbidden pass %s", level, p)
		}
	}
	return out, nil
}
