// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package shaderpipe

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/gogpu/shaderpipe/frontend"
	"github.com/gogpu/shaderpipe/glsl"
	"github.com/gogpu/shaderpipe/optimizer"
	"github.com/gogpu/shaderpipe/remap"
	"github.com/gogpu/shaderpipe/spvbin"
	"github.com/gogpu/shaderpipe/target"
	"github.com/gogpu/shaderpipe/translate"
)

// Options configures a Processor. Nil collaborators are replaced by the
// defaults from DefaultOptions.
type Options struct {
	Compiler       frontend.Compiler
	Optimizer      optimizer.Optimizer
	GLSLTranslator translate.GLSLTranslator
	MSLTranslator  translate.MSLTranslator

	// PrintShaders logs every final GLSL output at info level.
	PrintShaders bool

	// ReleaseMessages drops optimizer warnings, info and debug messages.
	ReleaseMessages bool

	// AllowEmptyNone makes level none without a SPIR-V request succeed
	// with no outputs instead of failing.
	AllowEmptyNone bool

	// LodBias is the bias expression for surface fragment shaders.
	LodBias string
}

// DefaultOptions returns options that drive glslangValidator, spirv-opt
// and spirv-cross from PATH.
func DefaultOptions() Options {
	cross := translate.NewSPIRVCross()
	return Options{
		Compiler:        frontend.NewGlslang(),
		Optimizer:       optimizer.NewSpirvOpt(),
		GLSLTranslator:  cross,
		MSLTranslator:   cross,
		ReleaseMessages: optimizer.Release,
		LodBias:         frontend.DefaultLodBias,
	}
}

// Processor runs the post-processing pipeline. It holds no per-request
// state, so one Processor may serve concurrent Process calls.
type Processor struct {
	opts    Options
	adapter *frontend.Adapter
}

var registerOnce sync.Once

// NewProcessor returns a processor for opts. The first call also routes
// malformed-module reports from spvbin to the package logger.
func NewProcessor(opts Options) *Processor {
	registerOnce.Do(func() {
		spvbin.RegisterErrorHandler(func(msg string) {
			Logger().Error("malformed SPIR-V module", "err", msg)
		})
	})

	def := DefaultOptions()
	if opts.Compiler == nil {
		opts.Compiler = def.Compiler
	}
	if opts.Optimizer == nil {
		opts.Optimizer = def.Optimizer
	}
	if opts.GLSLTranslator == nil {
		opts.GLSLTranslator = def.GLSLTranslator
	}
	if opts.MSLTranslator == nil {
		opts.MSLTranslator = def.MSLTranslator
	}
	adapter := frontend.NewAdapter(opts.Compiler)
	if opts.LodBias != "" {
		adapter.LodBias = opts.LodBias
	}
	return &Processor{opts: opts, adapter: adapter}
}

// Compile runs src through a processor built from DefaultOptions.
func Compile(ctx context.Context, src string, cfg Config) (*Result, error) {
	return NewProcessor(DefaultOptions()).Process(ctx, src, cfg)
}

// request carries the state of one Process call.
type request struct {
	cfg      Config
	settings frontend.Settings
	log      *slog.Logger
	res      *Result

	// mslErr is a failure confined to the MSL slot.
	mslErr error
}

// Process compiles src for cfg.
//
// GLSL sources that need no SPIR-V are returned as is. Everything else is
// parsed and linked, then handled by the optimization level. Failures that
// only affect the MSL output are returned together with the other
// outputs.
func (p *Processor) Process(ctx context.Context, src string, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &request{
		cfg: cfg,
		log: Logger().With("stage", cfg.Stage.String()),
		res: &Result{},
	}

	if cfg.Language == target.GLSL && !cfg.Outputs.Has(OutputSPIRV) {
		r.res.setGLSL(src)
		if p.opts.PrintShaders {
			r.log.Info("shader", "glsl", src)
		}
		return r.res, nil
	}

	r.settings = frontend.SettingsFor(cfg.Stage, cfg.Model, cfg.API, cfg.Language, cfg.FramebufferFetch)
	r.settings.DebugInfo = cfg.DebugInfo

	prepared, n := p.adapter.Prepare(src, cfg.Stage, cfg.domain())
	if n > 0 {
		r.log.Debug("applied texture LOD bias", "calls", n)
	}
	prog, err := p.adapter.Load(ctx, prepared, r.settings)
	if err != nil {
		return nil, frontendError(cfg.Stage, ErrParse, err)
	}

	switch cfg.Optimization {
	case target.OptimizeNone:
		err = p.none(ctx, r, prog, prepared)
	case target.OptimizePreprocess:
		err = p.preprocess(ctx, r, prepared)
	default:
		err = p.optimize(ctx, r, prog)
	}
	if err != nil {
		return nil, err
	}

	p.finish(ctx, r)
	if r.mslErr != nil {
		return r.res, r.mslErr
	}
	return r.res, nil
}

// none lowers the program without optimizing it.
func (p *Processor) none(ctx context.Context, r *request, prog frontend.Program, prepared string) error {
	if !r.cfg.Outputs.Has(OutputSPIRV) {
		const msg = "post-processor invoked with optimization level none and no SPIR-V output"
		if p.opts.AllowEmptyNone {
			r.log.Error(msg)
			return nil
		}
		return &Error{Kind: ErrConfiguration, Stage: r.cfg.Stage, Err: errors.New(msg)}
	}

	m, err := prog.Lower(ctx)
	if err != nil {
		return frontendError(r.cfg.Stage, ErrLowering, err)
	}
	r.res.setSPIRV(m)
	if r.cfg.Outputs.Has(OutputMSL) {
		p.emitMSL(ctx, r, m)
	}
	if r.cfg.Outputs.Has(OutputGLSL) {
		r.res.setGLSL(prepared)
	}
	return nil
}

// preprocess expands macros for the GLSL output and lowers the expanded
// text when a module is requested.
func (p *Processor) preprocess(ctx context.Context, r *request, prepared string) error {
	expanded, err := p.adapter.Preprocess(ctx, prepared, r.settings)
	if err != nil {
		return frontendError(r.cfg.Stage, ErrParse, err)
	}
	if r.cfg.Outputs.Has(OutputGLSL) {
		r.res.setGLSL(expanded)
	}
	if !r.cfg.Outputs.Has(OutputSPIRV) && !r.cfg.Outputs.Has(OutputMSL) {
		return nil
	}

	prog, err := p.adapter.Load(ctx, expanded, r.settings)
	if err != nil {
		return frontendError(r.cfg.Stage, ErrParse, err)
	}
	m, err := prog.Lower(ctx)
	if err != nil {
		return frontendError(r.cfg.Stage, ErrLowering, err)
	}
	if r.cfg.Outputs.Has(OutputSPIRV) {
		r.res.setSPIRV(m)
	}
	if r.cfg.Outputs.Has(OutputMSL) {
		p.emitMSL(ctx, r, m)
	}
	return nil
}

// optimize lowers the program, runs the level's pass plan and translates
// the result back to GLSL when asked.
func (p *Processor) optimize(ctx context.Context, r *request, prog frontend.Program) error {
	m, err := prog.Lower(ctx)
	if err != nil {
		return frontendError(r.cfg.Stage, ErrLowering, err)
	}

	passes, err := optimizer.Plan(r.cfg.Optimization, r.cfg.descriptor())
	if err != nil {
		return &Error{Kind: ErrOptimizer, Stage: r.cfg.Stage, Err: err}
	}
	r.log.Debug("running optimizer", "level", r.cfg.Optimization.String(), "passes", len(passes))

	sink := optimizer.Filter(func(msg optimizer.Message) {
		r.log.Log(ctx, messageLevel(msg.Level), msg.String())
	}, p.opts.ReleaseMessages)
	optimized, err := optimizer.Run(ctx, p.opts.Optimizer, m, passes, sink)
	switch {
	case errors.Is(err, optimizer.ErrPassFailed):
		r.log.Error("SPIR-V optimizer pass failed", "err", err)
	case err != nil:
		return &Error{Kind: ErrOptimizer, Stage: r.cfg.Stage, Err: err}
	}
	m = optimized

	if r.cfg.Outputs.Has(OutputSPIRV) {
		r.res.setSPIRV(m)
	}
	if r.cfg.Outputs.Has(OutputMSL) {
		p.emitMSL(ctx, r, m)
	}
	if r.cfg.Outputs.Has(OutputGLSL) {
		opts := translate.GLSLOptionsFor(r.cfg.Model, r.cfg.Stage, r.cfg.subpasses())
		text, err := p.opts.GLSLTranslator.TranslateGLSL(ctx, m, opts)
		if err != nil {
			return &Error{Kind: ErrLowering, Stage: r.cfg.Stage, Err: err}
		}
		r.res.setGLSL(text)
	}
	return nil
}

// emitMSL fills the MSL slot. Failures are recorded on r and leave the
// other outputs alone.
func (p *Processor) emitMSL(ctx context.Context, r *request, m *spvbin.Module) {
	index := remap.BuildIndexMap(r.cfg.Material, r.cfg.Stage, r.cfg.Variant)
	bindings, err := remap.Bindings(m, r.cfg.Stage, index)
	if err != nil {
		r.mslErr = &Error{Kind: ErrBindingResolution, Stage: r.cfg.Stage, Err: err}
		r.log.Error("MSL binding resolution failed", "err", err)
		return
	}

	opts := translate.MSLOptionsFor(r.cfg.Model, r.cfg.FramebufferFetch)
	opts.Bindings = bindings
	text, err := p.opts.MSLTranslator.TranslateMSL(ctx, m, opts)
	if err != nil {
		r.mslErr = &Error{Kind: ErrLowering, Stage: r.cfg.Stage, Err: err}
		r.log.Error("MSL translation failed", "err", err)
		return
	}
	r.res.setMSL(glsl.RemoveWhitespace(text))
}

// finish minifies the GLSL output and logs the results.
func (p *Processor) finish(ctx context.Context, r *request) {
	if text, ok := r.res.GLSL(); ok {
		text = glsl.RemoveWhitespace(text)
		if r.cfg.Optimization != target.OptimizeNone {
			text = glsl.RenameStructFields(text)
		}
		r.res.setGLSL(text)
		if p.opts.PrintShaders {
			r.log.Info("shader", "glsl", text)
		}
	}

	if m, ok := r.res.SPIRV(); ok && r.log.Enabled(ctx, slog.LevelDebug) {
		var buf bytes.Buffer
		if err := spvbin.Disassemble(&buf, m); err == nil {
			r.log.Debug("SPIR-V output", "disassembly", buf.String())
		}
	}
}

func messageLevel(l optimizer.Level) slog.Level {
	switch l {
	case optimizer.LevelWarning:
		return slog.LevelWarn
	case optimizer.LevelInfo:
		return slog.LevelInfo
	case optimizer.LevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelError
	}
}
