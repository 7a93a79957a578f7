// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package translate

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/gogpu/naga/spirv"

	"github.com/gogpu/shaderpipe/spvbin"
)

// SPIRVCross cross-compiles SPIR-V with the spirv-cross tool.
type SPIRVCross struct {
	Bin string
}

// NewSPIRVCross returns a translator that runs spirv-cross from PATH.
func NewSPIRVCross() *SPIRVCross { return &SPIRVCross{Bin: "spirv-cross"} }

// GLSLArgs returns the command line for a GLSL translation.
func GLSLArgs(opts GLSLOptions) []string {
	args := []string{"--version", strconv.Itoa(opts.Version)}
	if opts.ES {
		args = append(args, "--es")
		if opts.FloatPrecision == Highp {
			args = append(args, "--glsl-es-default-float-precision-highp")
		}
		if opts.IntPrecision == Highp {
			args = append(args, "--glsl-es-default-int-precision-highp")
		}
	} else {
		args = append(args, "--no-es")
	}
	if !opts.Enable420Pack {
		args = append(args, "--no-420pack-extension")
	}
	for _, r := range opts.FramebufferFetch {
		args = append(args, "--glsl-remap-ext-framebuffer-fetch",
			strconv.FormatUint(uint64(r.Index), 10), strconv.FormatUint(uint64(r.Location), 10))
	}
	return append(args, "-")
}

// MSLArgs returns the command line for an MSL translation. Binding
// indices are carried by the module's decorations, see [ApplyBindings].
func MSLArgs(opts MSLOptions) []string {
	args := []string{"--msl", "--msl-version", strconv.Itoa(opts.Version.Encoded())}
	if opts.Platform == IOS {
		args = append(args, "--msl-ios")
	}
	if opts.FramebufferFetch {
		args = append(args, "--msl-framebuffer-fetch")
	}
	return append(args, "--msl-decoration-binding", "-")
}

// TranslateGLSL implements [GLSLTranslator].
func (c *SPIRVCross) TranslateGLSL(ctx context.Context, m *spvbin.Module, opts GLSLOptions) (string, error) {
	out, err := c.run(ctx, m, GLSLArgs(opts))
	if err != nil {
		return "", err
	}
	return InsertHeaderLines(out, opts.HeaderLines), nil
}

// TranslateMSL implements [MSLTranslator].
func (c *SPIRVCross) TranslateMSL(ctx context.Context, m *spvbin.Module, opts MSLOptions) (string, error) {
	bound, err := ApplyBindings(m, opts.Bindings)
	if err != nil {
		return "", err
	}
	return c.run(ctx, bound, MSLArgs(opts))
}

func (c *SPIRVCross) run(ctx context.Context, m *spvbin.Module, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Bin, args...)
	cmd.Stdin = bytes.NewReader(m.Bytes())
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("failed to run %v: %w: %s", cmd.Args, err, msg)
		}
		return "", fmt.Errorf("failed to run %v: %w", cmd.Args, err)
	}
	return string(out), nil
}

// ApplyBindings rewrites the Binding decoration of every resource named by
// bindings so that the decoration holds its Metal slot: the texture index
// for samplers and images, the buffer index otherwise. Resources are
// matched by descriptor set and binding in the original module.
func ApplyBindings(m *spvbin.Module, bindings []ResourceBinding) (*spvbin.Module, error) {
	if len(bindings) == 0 {
		return m, nil
	}
	res, err := m.Resources()
	if err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}
	type key struct{ set, binding uint32 }
	slots := make(map[key]ResourceBinding, len(bindings))
	for _, b := range bindings {
		slots[key{b.Set, b.Binding}] = b
	}

	out := m
	for _, r := range res {
		if !r.HasBinding {
			continue
		}
		b, ok := slots[key{r.Set, r.Binding}]
		if !ok {
			continue
		}
		slot := b.Buffer
		if r.Kind.IsSampler() {
			slot = b.Texture
		}
		if slot == r.Binding {
			continue
		}
		if out, err = out.WithDecoration(r.ID, spirv.DecorationBinding, slot); err != nil {
			return nil, fmt.Errorf("translate: %w", err)
		}
	}
	return out, nil
}

// InsertHeaderLines places lines right after the #version directive, or
// at the top when src has none.
func InsertHeaderLines(src string, lines []string) string {
	if len(lines) == 0 {
		return src
	}
	header := strings.Join(lines, "\n") + "\n"
	if strings.HasPrefix(src, "#version") {
		nl := strings.IndexByte(src, '\n')
		if nl < 0 {
			return src + "\n" + header
		}
		return src[:nl+1] + header + src[nl+1:]
	}
	return header + src
}
