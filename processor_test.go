// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderpipe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gogpu/shaderpipe/frontend"
	"github.com/gogpu/shaderpipe/internal/spvtest"
	"github.com/gogpu/shaderpipe/material"
	"github.com/gogpu/shaderpipe/optimizer"
	"github.com/gogpu/shaderpipe/spvbin"
	"github.com/gogpu/shaderpipe/target"
	"github.com/gogpu/shaderpipe/translate"
)

// fakeCompiler lowers every source to a fixed module. Its preprocessor
// expands object-like #define macros.
type fakeCompiler struct {
	words    []uint32
	parseErr error
	linkErr  error

	mu     sync.Mutex
	parsed []string
}

var defineLine = regexp.MustCompile(`(?m)^#define[ \t]+(\w+)[ \t]+(.*)$`)

func (f *fakeCompiler) Preprocess(_ context.Context, src string, _ frontend.Settings) (string, error) {
	macros := make(map[string]string)
	out := defineLine.ReplaceAllStringFunc(src, func(line string) string {
		m := defineLine.FindStringSubmatch(line)
		macros[m[1]] = m[2]
		return ""
	})
	for name, value := range macros {
		out = regexp.MustCompile(`\b`+regexp.QuoteMeta(name)+`\b`).ReplaceAllString(out, value)
	}
	return out, nil
}

func (f *fakeCompiler) Parse(_ context.Context, src string, _ frontend.Settings) (frontend.Program, error) {
	f.mu.Lock()
	f.parsed = append(f.parsed, src)
	f.mu.Unlock()
	if f.parseErr != nil {
		return nil, f.parseErr
	}
	return &fakeProgram{f: f}, nil
}

func (f *fakeCompiler) parses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.parsed)
}

type fakeProgram struct{ f *fakeCompiler }

func (p *fakeProgram) Link(context.Context) error { return p.f.linkErr }

func (p *fakeProgram) Lower(context.Context) (*spvbin.Module, error) {
	return spvbin.FromWords(p.f.words)
}

// fakeOptimizer returns a copy of its input, or fails after emitting
// messages.
type fakeOptimizer struct {
	err      error
	messages []optimizer.Message
	passes   []optimizer.Pass
}

func (o *fakeOptimizer) Optimize(_ context.Context, m *spvbin.Module, passes []optimizer.Pass, sink func(optimizer.Message)) (*spvbin.Module, error) {
	o.passes = passes
	for _, msg := range o.messages {
		sink(msg)
	}
	if o.err != nil {
		return nil, o.err
	}
	return m.Clone(), nil
}

const (
	translatedGLSL = "#version 300 es\nprecision mediump float;\nstruct Params { float scale; };\nout vec4 color;\n" +
		"void main() {\n    Params p;\n    p.scale = 1.0;\n    color = vec4(p.scale);\n}\n"
	minifiedGLSL = "#version 300 es\nprecision mediump float;struct Params{float a;};out vec4 color;" +
		"void main(){Params p;p.a=1.0;color=vec4(p.a);}"
	translatedMSL = "#include <metal_stdlib>\nusing namespace metal;\n\nfragment float4 main0() {\n    return float4(1.0);\n}\n"
	minifiedMSL   = "#include <metal_stdlib>\nusing namespace metal;fragment float4 main0(){return float4(1.0);}"
)

// fakeTranslator records the options it receives.
type fakeTranslator struct {
	glslOpts *translate.GLSLOptions
	mslOpts  *translate.MSLOptions
	err      error
}

func (t *fakeTranslator) TranslateGLSL(_ context.Context, _ *spvbin.Module, opts translate.GLSLOptions) (string, error) {
	t.glslOpts = &opts
	return translatedGLSL, t.err
}

func (t *fakeTranslator) TranslateMSL(_ context.Context, _ *spvbin.Module, opts translate.MSLOptions) (string, error) {
	t.mslOpts = &opts
	return translatedMSL, t.err
}

type fixture struct {
	compiler   *fakeCompiler
	optimizer  *fakeOptimizer
	translator *fakeTranslator
	processor  *Processor
}

func newFixture(t *testing.T, words []uint32, mutate ...func(*Options)) *fixture {
	t.Helper()
	f := &fixture{
		compiler:   &fakeCompiler{words: words},
		optimizer:  &fakeOptimizer{},
		translator: &fakeTranslator{},
	}
	opts := Options{
		Compiler:       f.compiler,
		Optimizer:      f.optimizer,
		GLSLTranslator: f.translator,
		MSLTranslator:  f.translator,
	}
	for _, m := range mutate {
		m(&opts)
	}
	f.processor = NewProcessor(opts)
	return f
}

func singleSampler() []uint32 {
	return spvtest.Fragment([]spvtest.Sampler{{Name: "uSampler", Set: 0, Binding: 3}}, nil)
}

// ownSamplers is a surface material whose engine library is empty.
func ownSamplers(names ...string) *material.Descriptor {
	block := &material.SamplerInterfaceBlock{Name: "MaterialParams", Stages: gputypes.ShaderStagesVertexFragment}
	for _, n := range names {
		block.Samplers = append(block.Samplers, material.SamplerInfo{Name: n})
	}
	return &material.Descriptor{Domain: material.Surface, Samplers: block, Library: material.NewBlocks()}
}

func vulkan(level target.Optimization, outputs Outputs) Config {
	return Config{
		Stage:        target.Fragment,
		Model:        target.Mobile,
		API:          target.Vulkan,
		Language:     target.SPIRV,
		Optimization: level,
		Outputs:      outputs,
	}
}

func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { SetLogger(nil) })
	return &buf
}

func resourceNames(t *testing.T, m *spvbin.Module) []string {
	t.Helper()
	res, err := m.Resources()
	require.NoError(t, err)
	var names []string
	for _, r := range res {
		names = append(names, r.Name)
	}
	return names
}

func TestProcessGLSLPassThrough(t *testing.T) {
	src := "#version 300 es\n// keep me\nvoid main()   {  }\n"
	for _, level := range []target.Optimization{
		target.OptimizeNone, target.OptimizePreprocess, target.OptimizeSize, target.OptimizePerformance,
	} {
		t.Run(level.String(), func(t *testing.T) {
			f := newFixture(t, nil)
			cfg := Config{
				Stage:        target.Vertex,
				Model:        target.Desktop,
				API:          target.OpenGL,
				Language:     target.GLSL,
				Optimization: level,
				Outputs:      OutputGLSL,
			}
			res, err := f.processor.Process(context.Background(), src, cfg)
			require.NoError(t, err)
			got, ok := res.GLSL()
			require.True(t, ok)
			assert.Equal(t, src, got)
			assert.Equal(t, OutputGLSL, res.Outputs())
			assert.Empty(t, f.compiler.parses())
		})
	}
}

func TestProcessPassThroughEchoesSource(t *testing.T) {
	logs := captureLogs(t)
	f := newFixture(t, nil, func(o *Options) { o.PrintShaders = true })
	cfg := Config{Stage: target.Fragment, Model: target.Mobile, API: target.OpenGL, Language: target.GLSL, Outputs: OutputGLSL}
	_, err := f.processor.Process(context.Background(), "void main(){}", cfg)
	require.NoError(t, err)
	assert.Contains(t, logs.String(), "void main(){}")
}

func TestProcessParseFailure(t *testing.T) {
	f := newFixture(t, singleSampler())
	f.compiler.parseErr = &frontend.Diagnostic{Phase: frontend.PhaseParse, Log: "ERROR: 0:3: '' : syntax error, unexpected end of file"}

	res, err := f.processor.Process(context.Background(), "void main() {", vulkan(target.OptimizePerformance, OutputSPIRV|OutputGLSL))
	assert.Nil(t, res)
	assert.False(t, res.Has(OutputSPIRV))
	require.True(t, IsKind(err, ErrParse))

	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, target.Fragment, perr.Stage)
	assert.NotEmpty(t, perr.Log)
	assert.Contains(t, err.Error(), "syntax error")
}

func TestProcessLinkFailure(t *testing.T) {
	f := newFixture(t, singleSampler())
	f.compiler.linkErr = &frontend.Diagnostic{Phase: frontend.PhaseLink, Log: "ERROR: Linking fragment stage: Missing entry point"}

	res, err := f.processor.Process(context.Background(), "", vulkan(target.OptimizeNone, OutputSPIRV))
	assert.Nil(t, res)
	assert.True(t, IsKind(err, ErrLink))
}

func TestProcessNoneRequiresSPIRV(t *testing.T) {
	ctx := context.Background()

	t.Run("configuration error", func(t *testing.T) {
		f := newFixture(t, singleSampler())
		res, err := f.processor.Process(ctx, "void main() {}", vulkan(target.OptimizeNone, OutputGLSL))
		assert.Nil(t, res)
		assert.True(t, IsKind(err, ErrConfiguration))
	})

	t.Run("legacy empty success", func(t *testing.T) {
		logs := captureLogs(t)
		f := newFixture(t, singleSampler(), func(o *Options) { o.AllowEmptyNone = true })
		res, err := f.processor.Process(ctx, "void main() {}", vulkan(target.OptimizeNone, OutputGLSL))
		require.NoError(t, err)
		assert.Equal(t, Outputs(0), res.Outputs())
		assert.Contains(t, logs.String(), "optimization level none")
	})
}

func TestProcessNone(t *testing.T) {
	src := "struct Params { float scale; };\nvoid main() {\n    Params p;\n    p.scale = 1.0;\n}\n"
	f := newFixture(t, singleSampler())
	cfg := vulkan(target.OptimizeNone, OutputSPIRV|OutputGLSL|OutputMSL)
	cfg.Material = ownSamplers("uSampler")

	res, err := f.processor.Process(context.Background(), src, cfg)
	require.NoError(t, err)

	m, ok := res.SPIRV()
	require.True(t, ok)
	assert.Equal(t, singleSampler(), m.Words())

	text, ok := res.GLSL()
	require.True(t, ok)
	assert.Equal(t, "struct Params{float scale;};void main(){Params p;p.scale=1.0;}", text)

	msl, ok := res.MSL()
	require.True(t, ok)
	assert.Equal(t, minifiedMSL, msl)
	assert.Empty(t, f.optimizer.passes)
	assert.Nil(t, f.translator.glslOpts)
}

func TestProcessPreprocessExpandsMacros(t *testing.T) {
	src := "#define X 1\nvoid main() { gl_FragColor = vec4(X); }\n"
	ctx := context.Background()

	t.Run("glsl only", func(t *testing.T) {
		f := newFixture(t, singleSampler())
		res, err := f.processor.Process(ctx, src, vulkan(target.OptimizePreprocess, OutputGLSL))
		require.NoError(t, err)
		text, ok := res.GLSL()
		require.True(t, ok)
		assert.Equal(t, "void main(){gl_FragColor=vec4(1);}", text)
		assert.NotContains(t, text, "X")
		assert.False(t, res.Has(OutputSPIRV))
		assert.Len(t, f.compiler.parses(), 1)
	})

	t.Run("with spirv", func(t *testing.T) {
		f := newFixture(t, singleSampler())
		cfg := Config{
			Stage:        target.Fragment,
			Model:        target.Mobile,
			API:          target.OpenGL,
			Language:     target.GLSL,
			Optimization: target.OptimizePreprocess,
			Outputs:      OutputGLSL | OutputSPIRV,
		}
		res, err := f.processor.Process(ctx, src, cfg)
		require.NoError(t, err)
		assert.True(t, res.Has(OutputGLSL|OutputSPIRV))

		parses := f.compiler.parses()
		require.Len(t, parses, 2)
		assert.Equal(t, src, parses[0])
		assert.Equal(t, "\nvoid main() { gl_FragColor = vec4(1); }\n", parses[1])
	})
}

func TestProcessOptimizedGLSL(t *testing.T) {
	tests := []struct {
		name   string
		model  target.ShaderModel
		api    target.API
		es     bool
		header []string
	}{
		{"mobile vulkan", target.Mobile, target.Vulkan, true, nil},
		{"desktop vulkan", target.Desktop, target.Vulkan, false, []string{translate.PackingHeader}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, singleSampler())
			cfg := vulkan(target.OptimizeSize, OutputGLSL)
			cfg.Model, cfg.API = tt.model, tt.api
			cfg.Material = &material.Descriptor{Subpasses: []material.SubpassRemap{{Index: 0, Location: 1}}}

			res, err := f.processor.Process(context.Background(), "void main() {}", cfg)
			require.NoError(t, err)
			text, ok := res.GLSL()
			require.True(t, ok)
			assert.Equal(t, minifiedGLSL, text)
			assert.False(t, res.Has(OutputSPIRV))

			require.NotNil(t, f.translator.glslOpts)
			opts := f.translator.glslOpts
			assert.Equal(t, tt.es, opts.ES)
			assert.Equal(t, tt.model.GLSLVersion(), opts.Version)
			assert.False(t, opts.Enable420Pack)
			assert.Equal(t, tt.header, opts.HeaderLines)
			if tt.es {
				assert.Equal(t, translate.Mediump, opts.FloatPrecision)
				assert.Equal(t, []material.SubpassRemap{{Index: 0, Location: 1}}, opts.FramebufferFetch)
			} else {
				assert.Equal(t, translate.Highp, opts.FloatPrecision)
				assert.Empty(t, opts.FramebufferFetch)
			}
		})
	}
}

func TestProcessPassPlanByTarget(t *testing.T) {
	tests := []struct {
		api      target.API
		lang     target.Language
		wantHalf bool
	}{
		{target.Metal, target.SPIRV, true},
		{target.Vulkan, target.SPIRV, false},
		{target.OpenGL, target.SPIRV, false},
		{target.OpenGL, target.GLSL, false},
	}
	for _, tt := range tests {
		t.Run(tt.api.String()+"/"+tt.lang.String(), func(t *testing.T) {
			f := newFixture(t, singleSampler())
			cfg := vulkan(target.OptimizePerformance, OutputSPIRV)
			cfg.API, cfg.Language = tt.api, tt.lang

			_, err := f.processor.Process(context.Background(), "void main() {}", cfg)
			require.NoError(t, err)
			want, err := optimizer.Plan(target.OptimizePerformance, cfg.descriptor())
			require.NoError(t, err)
			assert.Equal(t, want, f.optimizer.passes)
			assert.Equal(t, tt.wantHalf, slices.Contains(f.optimizer.passes, optimizer.ConvertRelaxedToHalf))
		})
	}
}

func TestProcessOpenGLThroughSPIRV(t *testing.T) {
	f := newFixture(t, singleSampler())
	cfg := Config{
		Stage:        target.Fragment,
		Model:        target.Desktop,
		API:          target.OpenGL,
		Language:     target.SPIRV,
		Optimization: target.OptimizePerformance,
		Outputs:      OutputGLSL,
	}

	res, err := f.processor.Process(context.Background(), "void main() {}", cfg)
	require.NoError(t, err)
	text, ok := res.GLSL()
	require.True(t, ok)
	assert.Equal(t, minifiedGLSL, text)
	assert.False(t, res.Has(OutputSPIRV))

	assert.NotEmpty(t, f.optimizer.passes)
	assert.NotContains(t, f.optimizer.passes, optimizer.MergeReturn)

	require.NotNil(t, f.translator.glslOpts)
	opts := f.translator.glslOpts
	assert.False(t, opts.ES)
	assert.Equal(t, target.Desktop.GLSLVersion(), opts.Version)
	assert.Equal(t, []string{translate.PackingHeader}, opts.HeaderLines)
}

func TestProcessSizePlanKeepsStructMembers(t *testing.T) {
	for _, api := range []target.API{target.OpenGL, target.Vulkan, target.Metal} {
		f := newFixture(t, singleSampler())
		cfg := vulkan(target.OptimizeSize, OutputSPIRV)
		cfg.API = api
		_, err := f.processor.Process(context.Background(), "void main() {}", cfg)
		require.NoError(t, err)
		assert.NotEmpty(t, f.optimizer.passes)
		assert.NotContains(t, f.optimizer.passes, optimizer.EliminateDeadMembers)
	}
}

func TestProcessSweepsDeadObjects(t *testing.T) {
	words := spvtest.Fragment([]spvtest.Sampler{
		{Name: "used", Binding: 0},
		{Name: "unused", Binding: 1, Unused: true},
	}, nil)

	t.Run("after optimization", func(t *testing.T) {
		f := newFixture(t, words)
		res, err := f.processor.Process(context.Background(), "", vulkan(target.OptimizePerformance, OutputSPIRV))
		require.NoError(t, err)
		m, _ := res.SPIRV()
		assert.Equal(t, []string{"used"}, resourceNames(t, m))
	})

	t.Run("after optimizer failure", func(t *testing.T) {
		logs := captureLogs(t)
		f := newFixture(t, words)
		f.optimizer.err = errors.New("exit status 1")
		res, err := f.processor.Process(context.Background(), "", vulkan(target.OptimizeSize, OutputSPIRV))
		require.NoError(t, err)
		m, ok := res.SPIRV()
		require.True(t, ok)
		assert.Equal(t, []string{"used"}, resourceNames(t, m))
		assert.Contains(t, logs.String(), "SPIR-V optimizer pass failed")
	})

	t.Run("not at level none", func(t *testing.T) {
		f := newFixture(t, words)
		res, err := f.processor.Process(context.Background(), "", vulkan(target.OptimizeNone, OutputSPIRV))
		require.NoError(t, err)
		m, _ := res.SPIRV()
		assert.Equal(t, []string{"used", "unused"}, resourceNames(t, m))
	})
}

func TestProcessOptimizerMessages(t *testing.T) {
	messages := []optimizer.Message{
		{Level: optimizer.LevelWarning, Text: "relaxed-precision-warning"},
		{Level: optimizer.LevelError, Text: "invalid-id-error"},
	}
	tests := []struct {
		release     bool
		wantWarning bool
	}{
		{release: false, wantWarning: true},
		{release: true, wantWarning: false},
	}
	for _, tt := range tests {
		logs := captureLogs(t)
		f := newFixture(t, singleSampler(), func(o *Options) { o.ReleaseMessages = tt.release })
		f.optimizer.messages = messages
		_, err := f.processor.Process(context.Background(), "", vulkan(target.OptimizeSize, OutputSPIRV))
		require.NoError(t, err)
		assert.Equal(t, tt.wantWarning, strings.Contains(logs.String(), "relaxed-precision-warning"))
		assert.Contains(t, logs.String(), "invalid-id-error")
	}
}

func TestProcessMSLBindings(t *testing.T) {
	f := newFixture(t, singleSampler())
	cfg := vulkan(target.OptimizePerformance, OutputMSL)
	cfg.API = target.Metal
	cfg.Material = ownSamplers("uSampler")

	res, err := f.processor.Process(context.Background(), "void main() {}", cfg)
	require.NoError(t, err)
	msl, ok := res.MSL()
	require.True(t, ok)
	assert.Equal(t, minifiedMSL, msl)

	require.NotNil(t, f.translator.mslOpts)
	opts := f.translator.mslOpts
	assert.Equal(t, translate.IOS, opts.Platform)
	assert.Equal(t, translate.MSLVersion{Major: 2, Minor: 0}, opts.Version)
	assert.Equal(t, []translate.ResourceBinding{{
		Name:    "uSampler",
		Stage:   target.Fragment,
		Set:     0,
		Binding: 3,
		Buffer:  0,
		Texture: 0,
		Sampler: 0,
	}}, opts.Bindings)
}

func TestProcessMSLBindingsAreDense(t *testing.T) {
	words := spvtest.Fragment(
		[]spvtest.Sampler{
			{Name: "materialParams_c", Binding: 7},
			{Name: "light_iblDFG", Binding: 2},
			{Name: "materialParams_a", Binding: 5},
		},
		[]spvtest.Buffer{{Name: "frameUniforms", Binding: 4}},
	)
	f := newFixture(t, words)
	cfg := vulkan(target.OptimizeNone, OutputSPIRV|OutputMSL)
	cfg.API = target.Metal
	cfg.Material = &material.Descriptor{
		Domain: material.Surface,
		Samplers: &material.SamplerInterfaceBlock{
			Name:   "MaterialParams",
			Stages: gputypes.ShaderStageFragment,
			Samplers: []material.SamplerInfo{
				{Name: "materialParams_a"}, {Name: "materialParams_b"}, {Name: "materialParams_c"},
			},
		},
	}

	_, err := f.processor.Process(context.Background(), "", cfg)
	require.NoError(t, err)

	slots := make(map[string]uint32)
	for _, b := range f.translator.mslOpts.Bindings {
		assert.Equal(t, b.Texture, b.Sampler, b.Name)
		assert.Equal(t, b.Texture, b.Buffer, b.Name)
		slots[b.Name] = b.Texture
	}
	// Six lighting samplers come first, then the material's own.
	assert.Equal(t, map[string]uint32{
		"light_iblDFG":     1,
		"materialParams_a": 6,
		"materialParams_c": 8,
		"frameUniforms":    4,
	}, slots)
}

func TestProcessUnregisteredSampler(t *testing.T) {
	f := newFixture(t, singleSampler())
	cfg := vulkan(target.OptimizeSize, OutputSPIRV|OutputGLSL|OutputMSL)
	cfg.API = target.Metal
	cfg.Material = ownSamplers("somethingElse")

	res, err := f.processor.Process(context.Background(), "void main() {}", cfg)
	require.Error(t, err)
	assert.True(t, IsKind(err, ErrBindingResolution))
	require.NotNil(t, res)
	assert.True(t, res.Has(OutputSPIRV|OutputGLSL))
	_, ok := res.MSL()
	assert.False(t, ok)
	assert.Nil(t, f.translator.mslOpts)
}

func TestProcessTranslationFailure(t *testing.T) {
	f := newFixture(t, singleSampler())
	f.translator.err = errors.New("spirv-cross crashed")
	res, err := f.processor.Process(context.Background(), "", vulkan(target.OptimizeSize, OutputSPIRV|OutputGLSL))
	assert.Nil(t, res)
	assert.True(t, IsKind(err, ErrLowering))
}

func TestProcessLodBias(t *testing.T) {
	src := "uniform FrameUniforms { float lodBias; } frameUniforms;\nuniform sampler2D s;\n" +
		"void main() { gl_FragColor = texture(s, vec2(0.5)); }\n"
	tests := []struct {
		name   string
		stage  target.Stage
		domain material.Domain
		biased bool
	}{
		{"surface fragment", target.Fragment, material.Surface, true},
		{"surface vertex", target.Vertex, material.Surface, false},
		{"post process fragment", target.Fragment, material.PostProcess, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, singleSampler())
			cfg := vulkan(target.OptimizeNone, OutputSPIRV)
			cfg.Stage = tt.stage
			cfg.Material = &material.Descriptor{Domain: tt.domain}

			_, err := f.processor.Process(context.Background(), src, cfg)
			require.NoError(t, err)
			parses := f.compiler.parses()
			require.Len(t, parses, 1)
			assert.Equal(t, tt.biased, strings.Contains(parses[0], "vec2(0.5), frameUniforms.lodBias)"))
		})
	}
}

func TestProcessInvalidConfig(t *testing.T) {
	f := newFixture(t, singleSampler())
	cfg := vulkan(target.OptimizeNone, OutputSPIRV|OutputMSL)
	cfg.API = target.Metal
	res, err := f.processor.Process(context.Background(), "", cfg)
	assert.Nil(t, res)
	assert.True(t, IsKind(err, ErrConfiguration))
	assert.Empty(t, f.compiler.parses())
}

const triangleWGSL = `
struct VertexOutput {
    @builtin(position) position: vec4<f32>,
    @location(0) color: vec4<f32>,
}

@vertex
fn vs_main(@builtin(vertex_index) idx: u32) -> VertexOutput {
    var out: VertexOutput;
    var pos = array<vec2<f32>, 3>(
        vec2<f32>(0.0, 0.5),
        vec2<f32>(-0.5, -0.5),
        vec2<f32>(0.5, -0.5)
    );
    out.position = vec4<f32>(pos[idx], 0.0, 1.0);
    out.color = vec4<f32>(1.0, 0.0, 0.0, 1.0);
    return out;
}

@fragment
fn fs_main(@location(0) color: vec4<f32>) -> @location(0) vec4<f32> {
    return color;
}
`

func nagaProcessor() *Processor {
	tr := &fakeTranslator{}
	return NewProcessor(Options{
		Compiler:       frontend.NewNaga(),
		Optimizer:      &fakeOptimizer{},
		GLSLTranslator: tr,
		MSLTranslator:  tr,
	})
}

func TestProcessWGSL(t *testing.T) {
	res, err := nagaProcessor().Process(context.Background(), triangleWGSL, vulkan(target.OptimizePerformance, OutputSPIRV))
	require.NoError(t, err)
	m, ok := res.SPIRV()
	require.True(t, ok)
	eps, err := m.EntryPoints()
	require.NoError(t, err)
	var names []string
	for _, ep := range eps {
		names = append(names, ep.Name)
	}
	assert.ElementsMatch(t, []string{"vs_main", "fs_main"}, names)
}

func TestProcessWGSLSyntaxError(t *testing.T) {
	res, err := nagaProcessor().Process(context.Background(), "@fragment\nfn fs_main() -> @location(0) vec4<f32> {\n", vulkan(target.OptimizeNone, OutputSPIRV))
	assert.Nil(t, res)
	require.True(t, IsKind(err, ErrParse))
	var perr *Error
	require.ErrorAs(t, err, &perr)
	assert.NotEmpty(t, perr.Log)
}

func TestProcessConcurrent(t *testing.T) {
	p := nagaProcessor()
	cfg := vulkan(target.OptimizeNone, OutputSPIRV)
	ref, err := p.Process(context.Background(), triangleWGSL, cfg)
	require.NoError(t, err)
	want, _ := ref.SPIRV()

	const workers = 8
	results := make([]*Result, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], errs[i] = p.Process(context.Background(), triangleWGSL, cfg)
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		got, ok := results[i].SPIRV()
		require.True(t, ok)
		assert.Equal(t, want.Words(), got.Words())
	}
}
