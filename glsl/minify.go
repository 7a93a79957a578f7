// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import "strings"

// operators lists every multi-character punctuator the lexer knows, plus
// the comment openers, for the fusion check in needsSpace.
var operators = []string{
	"<<=", ">>=", "++", "--", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||", "^^",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=", "//", "/*",
}

// needsSpace reports whether printing b right after a would lex
// differently from the pair a, b.
func needsSpace(a, b Token) bool {
	if a.wordLike() && b.wordLike() {
		return true
	}
	if a.Kind == Number && strings.HasPrefix(b.Text, ".") {
		return true
	}
	if a.is(Punct, ".") && b.Kind == Number {
		return true
	}
	if a.Kind != Punct || b.Kind != Punct {
		return false
	}
	joined := a.Text + b.Text[:1]
	for _, op := range operators {
		if strings.HasPrefix(op, joined) {
			return true
		}
	}
	return false
}

// RemoveWhitespace strips comments and every whitespace run that does not
// separate two tokens. Preprocessor directives keep a line of their own.
// The result lexes to the same token sequence as src, and applying
// RemoveWhitespace again leaves it unchanged.
//
// Text that cannot be tokenized is returned as is.
func RemoveWhitespace(src string) string {
	tokens, err := Tokenize(src)
	if err != nil {
		return src
	}

	var sb strings.Builder
	sb.Grow(len(src))
	var prev Token
	havePrev := false
	for _, t := range tokens {
		switch {
		case t.trivia():
			continue
		case t.Kind == Directive:
			if sb.Len() > 0 && !strings.HasSuffix(sb.String(), "\n") {
				sb.WriteByte('\n')
			}
			sb.WriteString(compactDirective(t.Text))
			sb.WriteByte('\n')
			havePrev = false
		default:
			if havePrev && needsSpace(prev, t) {
				sb.WriteByte(' ')
			}
			sb.WriteString(t.Text)
			prev, havePrev = t, true
		}
	}
	return sb.String()
}

// compactDirective drops comments from a directive and collapses blank
// runs inside it. Directives continued over several lines are kept
// verbatim apart from comments and trailing blanks.
func compactDirective(d string) string {
	d = strings.TrimRight(stripDirectiveComments(d), " \t\r\f\v")
	if strings.Contains(d, "\\\n") || strings.Contains(d, "\\\r\n") || strings.Contains(d, `"`) {
		return d
	}
	fields := strings.Fields(d[1:])
	return "#" + strings.Join(fields, " ")
}

// stripDirectiveComments replaces each block comment in d with a space
// and cuts a line comment off together with everything after it. Quoted
// text is left alone.
func stripDirectiveComments(d string) string {
	if !strings.Contains(d, "/") {
		return d
	}
	var sb strings.Builder
	for i := 0; i < len(d); i++ {
		switch c := d[i]; {
		case c == '"':
			end := i + 1
			for end < len(d) && d[end] != '"' && d[end] != '\n' {
				if d[end] == '\\' {
					end++
				}
				end++
			}
			end = min(end+1, len(d))
			sb.WriteString(d[i:end])
			i = end - 1
		case strings.HasPrefix(d[i:], "//"):
			return sb.String()
		case strings.HasPrefix(d[i:], "/*"):
			closing := strings.Index(d[i+2:], "*/")
			if closing < 0 {
				return sb.String()
			}
			sb.WriteByte(' ')
			i += 2 + closing + 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
