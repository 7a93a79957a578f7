// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package frontend

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"

	"github.com/gogpu/shaderpipe/spvbin"
	"github.com/gogpu/shaderpipe/target"
)

// Glslang compiles GLSL with the glslangValidator tool. The source is
// passed on stdin, so includes are not resolved.
type Glslang struct {
	Bin string
}

// NewGlslang returns a compiler that runs glslangValidator from PATH.
func NewGlslang() *Glslang {
	return &Glslang{Bin: "glslangValidator"}
}

func stageName(s target.Stage) string {
	if s == target.Vertex {
		return "vert"
	}
	return "frag"
}

// baseArgs selects the stage and the default version. glslang assumes
// 100 es unless told otherwise.
func baseArgs(s Settings) []string {
	args := []string{"--stdin", "-S", stageName(s.Stage)}
	if !s.ES {
		args = append(args, "-d")
	}
	return args
}

// targetEnv maps the rule set to a --target-env value, or "" when the
// parse needs no SPIR-V rules.
func targetEnv(s Settings) string {
	switch {
	case s.Rules.Has(RulesVulkan):
		return "vulkan1.0"
	case s.Rules.Has(RulesSPIRV):
		return "opengl"
	default:
		return ""
	}
}

// ruleArgs selects the SPIR-V mode matching the target rules, or nil when
// the source is checked under plain GLSL rules.
func ruleArgs(s Settings) []string {
	switch env := targetEnv(s); env {
	case "":
		return nil
	case "opengl":
		return []string{"-G", "--target-env", env}
	default:
		return []string{"-V", "--target-env", env}
	}
}

// ruleMacros predefines what the target rules define. -E cannot be
// combined with -V or -G, which always link.
func ruleMacros(s Settings) []string {
	switch targetEnv(s) {
	case "vulkan1.0":
		return []string{"--define-macro", "VULKAN=100"}
	case "opengl":
		return []string{"--define-macro", "GL_SPIRV=100"}
	default:
		return nil
	}
}

// PreprocessArgs returns the command line for a preprocess-only run.
func PreprocessArgs(s Settings) []string {
	args := append(baseArgs(s), ruleMacros(s)...)
	return append(args, "-E")
}

// ParseArgs returns the command line that validates the source under the
// target rules. With link set, the program is also linked. Under target
// rules the generated binary is discarded.
func ParseArgs(s Settings, link bool) []string {
	args := baseArgs(s)
	rules := ruleArgs(s)
	args = append(args, rules...)
	if link {
		args = append(args, "-l")
	}
	if rules != nil {
		args = append(args, "-o", os.DevNull)
	}
	return args
}

// LowerArgs returns the command line that writes SPIR-V to out. Sources
// without target rules are lowered for Vulkan 1.0.
func LowerArgs(s Settings, out string) []string {
	args := baseArgs(s)
	if rules := ruleArgs(s); rules != nil {
		args = append(args, rules...)
	} else {
		args = append(args, "-V", "--target-env", "vulkan1.0")
	}
	if s.DebugInfo {
		args = append(args, "-g")
	}
	return append(args, "-o", out)
}

// run executes the tool with src on stdin and returns its stdout. The
// tool prints its info log to stdout, so on failure the log is carried
// in the returned *Diagnostic.
func (g *Glslang) run(ctx context.Context, phase Phase, src string, args []string) (string, error) {
	cmd := exec.CommandContext(ctx, g.Bin, args...)
	cmd.Stdin = bytes.NewBufferString(src)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", &Diagnostic{
			Phase: phase,
			Log:   stdout.String() + stderr.String(),
			Err:   fmt.Errorf("failed to run %v: %w", cmd.Args, err),
		}
	}
	return stdout.String(), nil
}

// Preprocess implements [Compiler].
func (g *Glslang) Preprocess(ctx context.Context, src string, s Settings) (string, error) {
	return g.run(ctx, PhasePreprocess, src, PreprocessArgs(s))
}

// Parse implements [Compiler].
func (g *Glslang) Parse(ctx context.Context, src string, s Settings) (Program, error) {
	if _, err := g.run(ctx, PhaseParse, src, ParseArgs(s, false)); err != nil {
		return nil, err
	}
	return &glslangProgram{g: g, src: src, settings: s}, nil
}

type glslangProgram struct {
	g        *Glslang
	src      string
	settings Settings
	linked   bool
}

func (p *glslangProgram) Link(ctx context.Context) error {
	if _, err := p.g.run(ctx, PhaseLink, p.src, ParseArgs(p.settings, true)); err != nil {
		return err
	}
	p.linked = true
	return nil
}

func (p *glslangProgram) Lower(ctx context.Context) (*spvbin.Module, error) {
	if !p.linked {
		return nil, &Diagnostic{Phase: PhaseLower, Err: fmt.Errorf("program is not linked")}
	}

	f, err := os.CreateTemp("", "shaderpipe-*.spv")
	if err != nil {
		return nil, fmt.Errorf("glslang: %w", err)
	}
	out := f.Name()
	f.Close()
	defer os.Remove(out)

	if _, err := p.g.run(ctx, PhaseLower, p.src, LowerArgs(p.settings, out)); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(out)
	if err != nil {
		return nil, fmt.Errorf("glslang: %w", err)
	}
	m, err := spvbin.FromBytes(data)
	if err != nil {
		return nil, &Diagnostic{Phase: PhaseLower, Err: err}
	}
	return m, nil
}
