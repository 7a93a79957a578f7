// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package shaderpipe post-processes shader source for several graphics
// APIs at once.
//
// A single source compiles to any combination of three outputs:
//   - GLSL: native source, either passed through, preprocessed, or
//     optimized and translated back from SPIR-V
//   - SPIR-V: the lowered module, optionally optimized
//   - MSL: Metal source with sampler bindings renumbered for Metal slots
//
// The work happens in the subpackages: [frontend] parses and lowers,
// [optimizer] plans and runs spirv-opt passes, [remap] assigns Metal
// binding slots, [translate] cross-compiles, and [glsl] minifies the
// text outputs. A [Processor] ties them together per [Config].
//
// Example usage:
//
//	p := shaderpipe.NewProcessor(shaderpipe.DefaultOptions())
//	res, err := p.Process(ctx, source, shaderpipe.Config{
//	    Stage:        target.Fragment,
//	    Model:        target.Mobile,
//	    API:          target.Vulkan,
//	    Language:     target.SPIRV,
//	    Optimization: target.OptimizePerformance,
//	    Outputs:      shaderpipe.OutputSPIRV | shaderpipe.OutputGLSL,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	spv, _ := res.SPIRV()
//
// WGSL sources compile without external tools through [frontend.Naga]:
//
//	opts := shaderpipe.DefaultOptions()
//	opts.Compiler = frontend.NewNaga()
package shaderpipe
