// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "strings"

// InjectLodBias appends bias as a third argument to every texture() call
// that has exactly two arguments, and returns the rewritten source with
// the number of calls changed. Calls spelled as member accesses, text
// inside comments or directives, and calls on samplers whose texture()
// overloads take no bias are left alone.
func InjectLodBias(src, bias string) (string, int) {
	tokens, err := Tokenize(src)
	if err != nil {
		return src, 0
	}
	unbiased := unbiasedSamplers(tokens)

	type call struct {
		parens  int // paren depth just inside the call
		commas  int
		sampler string
	}
	var (
		stack   []call
		parens  int
		inserts = make(map[int]bool) // token index of a closing paren
		prev    Token
	)
	for i, t := range tokens {
		if t.trivia() || t.Kind == Directive {
			continue
		}
		switch {
		case t.is(Punct, "("):
			parens++
			if prev.is(Ident, "texture") && !precededByDot(tokens, i) {
				stack = append(stack, call{parens: parens, sampler: firstArgument(tokens, i)})
			}
		case t.is(Punct, ","):
			if n := len(stack); n > 0 && stack[n-1].parens == parens {
				stack[n-1].commas++
			}
		case t.is(Punct, ")"):
			if n := len(stack); n > 0 && stack[n-1].parens == parens {
				if c := stack[n-1]; c.commas == 1 && !unbiased[c.sampler] {
					inserts[i] = true
				}
				stack = stack[:n-1]
			}
			parens--
		}
		prev = t
	}
	if len(inserts) == 0 {
		return src, 0
	}

	out := make([]Token, 0, len(tokens)+3*len(inserts))
	for i, t := range tokens {
		if inserts[i] {
			out = append(out, Token{Kind: Punct, Text: ","}, Token{Kind: Whitespace, Text: " "}, Token{Kind: Ident, Text: bias})
		}
		out = append(out, t)
	}
	return join(out), len(inserts)
}

// precededByDot reports whether the identifier before the paren at i is a
// member access.
func precededByDot(tokens []Token, i int) bool {
	seen := 0
	for j := i - 1; j >= 0; j-- {
		t := tokens[j]
		if t.trivia() {
			continue
		}
		seen++
		if seen == 2 {
			return t.is(Punct, ".")
		}
	}
	return false
}

// firstArgument returns the identifier that is the whole first argument of
// the call opened at i, or "" when the argument is an expression.
func firstArgument(tokens []Token, i int) string {
	var args []Token
	for j := i + 1; j < len(tokens) && len(args) < 2; j++ {
		if !tokens[j].trivia() {
			args = append(args, tokens[j])
		}
	}
	if len(args) == 2 && args[0].Kind == Ident && args[1].is(Punct, ",") {
		return args[0].Text
	}
	return ""
}

// biasFree reports whether no texture() overload of the sampler type typ
// accepts a bias argument.
func biasFree(typ string) bool {
	if !strings.Contains(typ, "sampler") {
		return false
	}
	return strings.HasSuffix(typ, "2DArrayShadow") || strings.HasSuffix(typ, "CubeArrayShadow") ||
		strings.Contains(typ, "MS") ||
		strings.Contains(typ, "Buffer") || strings.Contains(typ, "Rect")
}

// unbiasedSamplers collects the names declared with a bias-free sampler
// type, at any scope.
func unbiasedSamplers(tokens []Token) map[string]bool {
	names := make(map[string]bool)
	var prev Token
	for _, t := range tokens {
		if t.trivia() {
			continue
		}
		if t.Kind == Ident && prev.Kind == Ident && biasFree(prev.Text) {
			names[t.Text] = true
		}
		prev = t
	}
	return names
}

// DeclaresGlobal reports whether name occurs at file scope in src, outside
// comments and directives. Block instance names and global variables
// qualify; identifiers used only inside function bodies do not.
func DeclaresGlobal(src, name string) bool {
	tokens, err := Tokenize(src)
	if err != nil {
		return false
	}
	depth := 0
	for _, t := range tokens {
		switch {
		case t.is(Punct, "{"):
			depth++
		case t.is(Punct, "}"):
			depth--
		case depth == 0 && t.is(Ident, name):
			return true
		}
	}
	return false
}
