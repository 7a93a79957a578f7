// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Lexer tokenizes GLSL and other C-family shading languages. Preprocessor
// directives are single tokens running to the end of the line, including
// backslash continuations and any block comment that starts on the line.
var Lexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "Directive", Pattern: `#(?:\\\r?\n|"(?:\\.|[^"\\\n])*"|//[^\n]*|/\*(?s:.*?)\*/|[^\n])*`},
	{Name: "Newline", Pattern: `\r?\n`},
	{Name: "Whitespace", Pattern: `[ \t\f\v\r]+`},
	{Name: "Number", Pattern: `(?:0[xX][0-9a-fA-F]+|(?:[0-9]+\.[0-9]*|\.[0-9]+|[0-9]+)(?:[eE][+-]?[0-9]+)?)[uUfFlLhH]*`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"`},
	{Name: "Punct", Pattern: `<<=|>>=|\+\+|--|<<|>>|<=|>=|==|!=|&&|\|\||\^\^|\+=|-=|\*=|/=|%=|&=|\|=|\^=|[-+*/%<>=!~&|^?:;,.(){}\[\]]`},
	{Name: "Other", Pattern: `.`},
})

// Kind classifies a token.
type Kind uint8

const (
	Comment Kind = iota
	Directive
	Newline
	Whitespace
	Number
	Ident
	String
	Punct
	Other
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case Comment:
		return "Comment"
	case Directive:
		return "Directive"
	case Newline:
		return "Newline"
	case Whitespace:
		return "Whitespace"
	case Number:
		return "Number"
	case Ident:
		return "Ident"
	case String:
		return "String"
	case Punct:
		return "Punct"
	case Other:
		return "Other"
	default:
		return fmt.Sprintf("Kind(%d)", k)
	}
}

// Token is one lexeme. Concatenating the Text of every token returned by
// [Tokenize] reproduces the input.
type Token struct {
	Kind Kind
	Text string
}

func (t Token) is(kind Kind, text string) bool {
	return t.Kind == kind && t.Text == text
}

// trivia reports whether t carries no meaning for the compiler.
func (t Token) trivia() bool {
	return t.Kind == Comment || t.Kind == Newline || t.Kind == Whitespace
}

// wordLike reports whether t fuses with an adjacent word-like token.
func (t Token) wordLike() bool {
	return t.Kind == Ident || t.Kind == Number || t.Kind == String
}

var kinds = func() map[lexer.TokenType]Kind {
	byName := map[string]Kind{
		"Comment": Comment, "Directive": Directive, "Newline": Newline,
		"Whitespace": Whitespace, "Number": Number, "Ident": Ident,
		"String": String, "Punct": Punct, "Other": Other,
	}
	out := make(map[lexer.TokenType]Kind, len(byName))
	for name, tt := range Lexer.Symbols() {
		if k, ok := byName[name]; ok {
			out[tt] = k
		}
	}
	return out
}()

// Tokenize splits src into tokens.
func Tokenize(src string) ([]Token, error) {
	lex, err := Lexer.LexString("", src)
	if err != nil {
		return nil, err
	}
	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		return nil, fmt.Errorf("glsl: %w", err)
	}
	out := make([]Token, 0, len(raw))
	for _, t := range raw {
		if t.EOF() {
			break
		}
		out = append(out, Token{Kind: kinds[t.Type], Text: t.Value})
	}
	return out, nil
}

func join(tokens []Token) string {
	var sb strings.Builder
	for _, t := range tokens {
		sb.WriteString(t.Text)
	}
	return sb.String()
}
