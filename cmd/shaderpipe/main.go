// Command shaderpipe post-processes shaders for OpenGL, Vulkan and Metal.
//
// Usage:
//
//	shaderpipe [options] <input>...
//
// Examples:
//
//	shaderpipe -out spirv shader.frag > shader.spv
//	shaderpipe -O size -out glsl,spirv -o build shader.vert shader.frag
//	shaderpipe -api metal -out msl -material lit.yaml shader.frag
//	shaderpipe -wgsl -stage fragment -o build shader.wgsl
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/gogpu/shaderpipe"
	"github.com/gogpu/shaderpipe/frontend"
	"github.com/gogpu/shaderpipe/material"
	"github.com/gogpu/shaderpipe/spvbin"
	"github.com/gogpu/shaderpipe/target"
)

var (
	output       = flag.String("o", "", "output directory (default: stdout, single input only)")
	stage        = flag.String("stage", "", "shader stage: vertex or fragment (default: from file extension)")
	model        = flag.String("model", "mobile", "shader model: mobile or desktop")
	api          = flag.String("api", "vulkan", "target API: opengl, vulkan or metal")
	lang         = flag.String("lang", "spirv", "target language: glsl or spirv")
	level        = flag.String("O", "performance", "optimization: none, preprocess, size or performance")
	outputs      = flag.String("out", "spirv", "comma-separated outputs: glsl, spirv, msl")
	materialFile = flag.String("material", "", "YAML material descriptor")
	variant      = flag.String("variant", "", "comma-separated variant flags")
	fbFetch      = flag.Bool("fbfetch", false, "read subpass inputs through framebuffer fetch")
	debug        = flag.Bool("g", false, "emit debug info")
	wgsl         = flag.Bool("wgsl", false, "compile WGSL in process instead of GLSL through glslangValidator")
	printShaders = flag.Bool("print", false, "log the final GLSL")
	verbose      = flag.Bool("v", false, "verbose logging")
	jobs         = flag.Int("j", runtime.NumCPU(), "number of files compiled in parallel")
	disasm       = flag.Bool("S", false, "write SPIR-V as disassembly text")
	version      = flag.Bool("version", false, "print version")
)

const shaderpipeVersion = "0.1.0-dev"

func main() {
	flag.Usage = usage
	flag.Parse()

	if *version {
		fmt.Printf("shaderpipe version %s\n", shaderpipeVersion)
		return
	}

	inputs := flag.Args()
	if len(inputs) == 0 {
		color.Red("Error: no input file specified")
		usage()
		os.Exit(2)
	}
	if *output == "" && len(inputs) > 1 {
		color.Red("Error: -o is required with more than one input")
		os.Exit(2)
	}

	logLevel := slog.LevelWarn
	if *verbose {
		logLevel = slog.LevelDebug
	}
	shaderpipe.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	base, err := baseConfig()
	if err != nil {
		color.Red("Error: %v", err)
		os.Exit(2)
	}

	opts := shaderpipe.DefaultOptions()
	opts.PrintShaders = *printShaders
	if *wgsl {
		opts.Compiler = frontend.NewNaga()
	}
	p := shaderpipe.NewProcessor(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if !compileAll(ctx, p, base, inputs) {
		os.Exit(1)
	}
}

// baseConfig builds the configuration shared by every input. The stage is
// filled in per file.
func baseConfig() (shaderpipe.Config, error) {
	var cfg shaderpipe.Config
	var err error
	if cfg.Model, err = target.ParseShaderModel(*model); err != nil {
		return cfg, err
	}
	if cfg.API, err = target.ParseAPI(*api); err != nil {
		return cfg, err
	}
	if cfg.Language, err = target.ParseLanguage(*lang); err != nil {
		return cfg, err
	}
	if cfg.Optimization, err = target.ParseOptimization(*level); err != nil {
		return cfg, err
	}
	if cfg.Outputs, err = shaderpipe.ParseOutputs(*outputs); err != nil {
		return cfg, err
	}
	if cfg.Variant, err = material.ParseVariant(*variant); err != nil {
		return cfg, err
	}
	if *materialFile != "" {
		if cfg.Material, err = material.LoadFile(*materialFile); err != nil {
			return cfg, err
		}
	}
	cfg.FramebufferFetch = *fbFetch
	cfg.DebugInfo = *debug
	return cfg, nil
}

// compileAll compiles inputs with at most -j in flight and reports whether
// all of them succeeded.
func compileAll(ctx context.Context, p *shaderpipe.Processor, base shaderpipe.Config, inputs []string) bool {
	sem := make(chan struct{}, max(*jobs, 1))
	failed := make([]error, len(inputs))
	var wg sync.WaitGroup
	for i, path := range inputs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			failed[i] = compileFile(ctx, p, base, path)
		}()
	}
	wg.Wait()

	ok := true
	for i, err := range failed {
		if err != nil {
			report(inputs[i], err)
			ok = false
		} else if *output != "" {
			color.Green("compiled %s", inputs[i])
		}
	}
	return ok
}

func compileFile(ctx context.Context, p *shaderpipe.Processor, base shaderpipe.Config, path string) error {
	source, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	cfg := base
	if *stage != "" {
		cfg.Stage, err = target.ParseStage(*stage)
	} else {
		cfg.Stage, err = stageFromPath(path)
	}
	if err != nil {
		return err
	}

	res, err := p.Process(ctx, string(source), cfg)
	if res == nil {
		return err
	}
	if werr := writeResult(path, res); werr != nil {
		return errors.Join(err, werr)
	}
	return err
}

// stageFromPath infers the stage from extensions such as .vert, .frag,
// .vs or .fs, looking through a trailing .glsl or .wgsl.
func stageFromPath(path string) (target.Stage, error) {
	name := filepath.Base(path)
	for _, ext := range []string{".glsl", ".wgsl"} {
		name = strings.TrimSuffix(name, ext)
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".vert", ".vs":
		return target.Vertex, nil
	case ".frag", ".fs":
		return target.Fragment, nil
	}
	return 0, fmt.Errorf("cannot infer shader stage of %s; use -stage", path)
}

// outputPath names the file for one output form inside dir.
func outputPath(dir, input string, o shaderpipe.Outputs) string {
	base := filepath.Base(input)
	var ext string
	switch o {
	case shaderpipe.OutputGLSL:
		ext = ".glsl"
	case shaderpipe.OutputSPIRV:
		ext = ".spv"
		if *disasm {
			ext = ".spvasm"
		}
	case shaderpipe.OutputMSL:
		ext = ".metal"
	}
	return filepath.Join(dir, base+ext)
}

func writeResult(input string, res *shaderpipe.Result) error {
	if *output != "" {
		if err := os.MkdirAll(*output, 0o755); err != nil {
			return err
		}
	}

	var errs []error
	if text, ok := res.GLSL(); ok {
		errs = append(errs, emit(input, shaderpipe.OutputGLSL, func(w io.Writer) error {
			_, err := io.WriteString(w, text)
			return err
		}))
	}
	if m, ok := res.SPIRV(); ok {
		errs = append(errs, emit(input, shaderpipe.OutputSPIRV, func(w io.Writer) error {
			return writeSPIRV(w, m)
		}))
	}
	if text, ok := res.MSL(); ok {
		errs = append(errs, emit(input, shaderpipe.OutputMSL, func(w io.Writer) error {
			_, err := io.WriteString(w, text)
			return err
		}))
	}
	return errors.Join(errs...)
}

func writeSPIRV(w io.Writer, m *spvbin.Module) error {
	if *disasm {
		return spvbin.Disassemble(w, m)
	}
	if f, ok := w.(*os.File); ok && f == os.Stdout && term.IsTerminal(int(f.Fd())) {
		return errors.New("refusing to write binary SPIR-V to a terminal; redirect stdout or use -S")
	}
	_, err := w.Write(m.Bytes())
	return err
}

func emit(input string, o shaderpipe.Outputs, write func(io.Writer) error) error {
	if *output == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(outputPath(*output, input, o))
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func report(path string, err error) {
	red := color.New(color.FgRed, color.Bold).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Fprintf(os.Stderr, "%s %s: %v\n", red("error:"), bold(path), err)
	var perr *shaderpipe.Error
	if errors.As(err, &perr) && perr.Log != "" {
		for _, line := range strings.Split(strings.TrimSpace(perr.Log), "\n") {
			fmt.Fprintf(os.Stderr, "  %s\n", dim(line))
		}
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: shaderpipe [options] <input>...\n\n")
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
	fmt.Fprintf(os.Stderr, "\nExamples:\n")
	fmt.Fprintf(os.Stderr, "  shaderpipe shader.frag > shader.spv                 Optimized SPIR-V to stdout\n")
	fmt.Fprintf(os.Stderr, "  shaderpipe -out glsl,spirv -o build a.vert a.frag   Several files into build/\n")
	fmt.Fprintf(os.Stderr, "  shaderpipe -api metal -out msl -material m.yaml a.frag\n")
	fmt.Fprintf(os.Stderr, "  shaderpipe -wgsl -stage fragment -S shader.wgsl     WGSL through naga, as text\n")
}
