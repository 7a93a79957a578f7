// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package optimizer

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/gogpu/shaderpipe/spvbin"
)

// SpirvOpt runs passes through the spirv-opt command-line tool.
type SpirvOpt struct {
	// Bin is the executable name or path.
	Bin string
	// TargetEnv is passed as --target-env.
	TargetEnv string
}

// NewSpirvOpt returns an optimizer that uses spirv-opt from PATH and
// targets SPIR-V 1.0.
func NewSpirvOpt() *SpirvOpt {
	return &SpirvOpt{Bin: "spirv-opt", TargetEnv: "spv1.0"}
}

// Args returns the command line for passes, without the executable.
func (o *SpirvOpt) Args(passes []Pass) []string {
	env := o.TargetEnv
	if env == "" {
		env = "spv1.0"
	}
	args := make([]string, 0, len(passes)+4)
	args = append(args, "--target-env="+env)
	for _, p := range passes {
		args = append(args, p.Flag())
	}
	return append(args, "-o", "-", "-")
}

// Optimize implements [Optimizer].
func (o *SpirvOpt) Optimize(ctx context.Context, m *spvbin.Module, passes []Pass, sink func(Message)) (*spvbin.Module, error) {
	cmd := exec.CommandContext(ctx, o.Bin, o.Args(passes)...)
	cmd.Stdin = bytes.NewReader(m.Bytes())
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	sc := bufio.NewScanner(&stderr)
	for sc.Scan() {
		if line := sc.Text(); line != "" && sink != nil {
			sink(ParseMessage(line))
		}
	}
	if runErr != nil {
		return nil, fmt.Errorf("failed to run %v: %w", cmd.Args, runErr)
	}

	out, err := spvbin.FromBytes(stdout.Bytes())
	if err != nil {
		return nil, fmt.Errorf("spirv-opt output: %w", err)
	}
	return out, nil
}
