// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package spvbin provides word-level access to SPIR-V binary modules.
//
// It does not build or optimize shaders. It offers the handful of binary
// operations a post-processing pipeline needs between external tools:
//
//   - decoding a module from bytes or words, in either byte order
//   - iterating instructions and reading debug names
//   - reflecting combined samplers, images and uniform blocks with their
//     descriptor set and binding decorations
//   - rewriting decorations such as Binding
//   - removing top-level objects no entry point can reach ([StripDeadObjects])
//   - disassembling to readable text ([Disassemble])
//
// Opcode, decoration and storage class values come from
// github.com/gogpu/naga/spirv.
package spvbin
