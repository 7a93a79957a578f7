// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package optimizer

import "fmt"

// Pass is one named SPIR-V transformation run by the external optimizer.
type Pass uint8

const (
	WrapOpKill Pass = iota
	DeadBranchElim
	MergeReturn
	InlineExhaustive
	EliminateDeadFunctions
	AggressiveDCE
	PrivateToLocal
	LocalSingleBlockLoadStoreElim
	LocalSingleStoreElim
	// ScalarReplacement splits composites up to the default size limit.
	ScalarReplacement
	// ScalarReplacementUnbounded splits composites of any size.
	ScalarReplacementUnbounded
	LocalAccessChainConvert
	LocalMultiStoreElim
	CCP
	RedundancyElimination
	CombineAccessChains
	Simplification
	VectorDCE
	DeadInsertElim
	IfConversion
	CopyPropagateArrays
	ReduceLoadSize
	BlockMerge
	// LoopUnroll fully unrolls loops with known trip counts.
	LoopUnroll
	CFGCleanup
	ConvertRelaxedToHalf
	// EliminateDeadMembers removes unused struct members. It changes
	// uniform block layout and is never scheduled.
	EliminateDeadMembers

	passCount
)

var passInfo = [passCount]struct {
	name string
	flag string
}{
	WrapOpKill:                    {"WrapOpKill", "--wrap-opkill"},
	DeadBranchElim:                {"DeadBranchElim", "--eliminate-dead-branches"},
	MergeReturn:                   {"MergeReturn", "--merge-return"},
	InlineExhaustive:              {"InlineExhaustive", "--inline-entry-points-exhaustive"},
	EliminateDeadFunctions:        {"EliminateDeadFunctions", "--eliminate-dead-functions"},
	AggressiveDCE:                 {"AggressiveDCE", "--eliminate-dead-code-aggressive"},
	PrivateToLocal:                {"PrivateToLocal", "--private-to-local"},
	LocalSingleBlockLoadStoreElim: {"LocalSingleBlockLoadStoreElim", "--eliminate-local-single-block"},
	LocalSingleStoreElim:          {"LocalSingleStoreElim", "--eliminate-local-single-store"},
	ScalarReplacement:             {"ScalarReplacement", "--scalar-replacement=100"},
	ScalarReplacementUnbounded:    {"ScalarReplacement(0)", "--scalar-replacement=0"},
	LocalAccessChainConvert:       {"LocalAccessChainConvert", "--convert-local-access-chains"},
	LocalMultiStoreElim:           {"LocalMultiStoreElim", "--eliminate-local-multi-store"},
	CCP:                           {"CCP", "--ccp"},
	RedundancyElimination:         {"RedundancyElimination", "--redundancy-elimination"},
	CombineAccessChains:           {"CombineAccessChains", "--combine-access-chains"},
	Simplification:                {"Simplification", "--simplify-instructions"},
	VectorDCE:                     {"VectorDCE", "--vector-dce"},
	DeadInsertElim:                {"DeadInsertElim", "--eliminate-dead-inserts"},
	IfConversion:                  {"IfConversion", "--if-conversion"},
	CopyPropagateArrays:           {"CopyPropagateArrays", "--copy-propagate-arrays"},
	ReduceLoadSize:                {"ReduceLoadSize", "--reduce-load-size"},
	BlockMerge:                    {"BlockMerge", "--merge-blocks"},
	LoopUnroll:                    {"LoopUnroll", "--loop-unroll"},
	CFGCleanup:                    {"CFGCleanup", "--cfg-cleanup"},
	ConvertRelaxedToHalf:          {"ConvertRelaxedToHalf", "--convert-relaxed-to-half"},
	EliminateDeadMembers:          {"EliminateDeadMembers", "--eliminate-dead-members"},
}

// String returns the pass name.
func (p Pass) String() string {
	if p < passCount {
		return passInfo[p].name
	}
	return fmt.Sprintf("Pass(%d)", p)
}

// Flag returns the spirv-opt command-line flag that schedules p.
func (p Pass) Flag() string {
	if p < passCount {
		return passInfo[p].flag
	}
	return ""
}
