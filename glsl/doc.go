// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

// Package glsl finalizes shader source text.
//
// All transformations work on a token stream produced by [Lexer], a
// participle lexer for C-family shading languages, so they apply equally to
// GLSL and to MSL output:
//
//   - [RemoveWhitespace] strips comments and redundant blanks.
//   - [RenameStructFields] shortens the member names of plain structs.
//   - [InjectLodBias] adds a bias argument to texture() calls.
//
// None of them parse the language; each is conservative and leaves text it
// cannot safely handle unchanged.
package glsl
