// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"regexp"
	"strings"
)

var (
	swizzleShaped = regexp.MustCompile(`^(?:[xyzw]{1,4}|[rgba]{1,4}|[stpq]{1,4})$`)
	identInText   = regexp.MustCompile(`[A-Za-z_][A-Za-z0-9_]*`)
)

// builtinMembers are the fields of built-in structs whose names do not
// carry the gl_ prefix.
var builtinMembers = []string{"near", "far", "diff"}

// aggregate is a struct or interface block body.
type aggregate struct {
	name    string
	members []int    // positions of member declarator names
	refs    []string // other identifiers in the body, type names included
	block   bool
}

// unit is the significant token stream of a translation unit.
type unit struct {
	tokens []Token
	sig    []int
}

func (u *unit) at(k int) Token {
	if k < 0 || k >= len(u.sig) {
		return Token{Kind: Other}
	}
	return u.tokens[u.sig[k]]
}

func (u *unit) set(k int, text string) {
	u.tokens[u.sig[k]].Text = text
}

// body reads the members of the aggregate whose opening brace is at open.
// It returns the position of the closing brace, or -1 when the body is
// unterminated or nests braces.
func (u *unit) body(open int) (members []int, refs []string, end int) {
	brackets := 0
	for k := open + 1; k < len(u.sig); k++ {
		t := u.at(k)
		switch {
		case t.is(Punct, "}"):
			return members, refs, k
		case t.is(Punct, "{"):
			return nil, nil, -1
		case t.is(Punct, "["):
			brackets++
		case t.is(Punct, "]"):
			brackets--
		case t.Kind == Ident:
			next := u.at(u.skipBrackets(k + 1))
			if brackets == 0 && (next.is(Punct, ";") || next.is(Punct, ",")) {
				members = append(members, k)
			} else {
				refs = append(refs, t.Text)
			}
		}
	}
	return nil, nil, -1
}

// skipBrackets returns the position after the run of bracketed array
// dimensions starting at k, or k when there is none.
func (u *unit) skipBrackets(k int) int {
	for u.at(k).is(Punct, "[") {
		depth := 0
		for ; k < len(u.sig); k++ {
			if u.at(k).is(Punct, "[") {
				depth++
			} else if u.at(k).is(Punct, "]") {
				depth--
				if depth == 0 {
					break
				}
			}
		}
		k++
	}
	return k
}

// scan finds every struct and interface block, and the identifiers named
// by global declarations with a storage qualifier.
func (u *unit) scan() (aggs []*aggregate, roots []string, ok bool) {
	braces, parens, stmt := 0, 0, 0
	qualified, funcBody := false, false
	depth := make([]int, len(u.sig))

	for k := range u.sig {
		depth[k] = braces
		t := u.at(k)

		if t.is(Ident, "struct") {
			agg := &aggregate{}
			open := k + 1
			if name := u.at(k + 1); name.Kind == Ident {
				agg.name = name.Text
				open = k + 2
			}
			if u.at(open).is(Punct, "{") {
				var end int
				agg.members, agg.refs, end = u.body(open)
				if end < 0 {
					return nil, nil, false
				}
				aggs = append(aggs, agg)
			}
		}

		switch {
		case t.Kind == Ident && braces == 0 && parens == 0 && isStorageQualifier(t.Text):
			qualified = true
		case t.is(Punct, "("):
			parens++
		case t.is(Punct, ")"):
			parens--
		case t.is(Punct, "{"):
			if braces == 0 {
				prev := u.at(k - 1)
				funcBody = prev.is(Punct, ")")
				if qualified && prev.Kind == Ident && prev.Text != "struct" && !u.at(k-2).is(Ident, "struct") {
					members, refs, end := u.body(k)
					if end < 0 {
						return nil, nil, false
					}
					aggs = append(aggs, &aggregate{name: prev.Text, members: members, refs: refs, block: true})
					roots = append(roots, refs...)
				}
			}
			braces++
		case t.is(Punct, "}"):
			braces--
			if braces == 0 && funcBody {
				stmt, qualified, funcBody = k+1, false, false
			}
		case t.is(Punct, ";") && braces == 0:
			if qualified {
				for j := stmt; j < k; j++ {
					if depth[j] == 0 && u.at(j).Kind == Ident {
						roots = append(roots, u.at(j).Text)
					}
				}
			}
			stmt, qualified = k+1, false
		}
	}
	return aggs, roots, braces == 0
}

// RenameStructFields gives the members of plain structs short generated
// names and rewrites every member access to match.
//
// A struct is left alone when its type reaches a uniform, buffer or stage
// input/output declaration, directly or through other structs, since the
// member names are then part of the shader interface. Member names shared
// with an interface block, an anonymous struct or a kept struct are never
// renamed, nor are names that look like a vector swizzle or that occur in a
// preprocessor directive. Generated names avoid every identifier already
// in src and every reserved word.
//
// Text that cannot be analyzed is returned unchanged.
func RenameStructFields(src string) string {
	tokens, err := Tokenize(src)
	if err != nil {
		return src
	}
	u := &unit{tokens: tokens}
	used := make(map[string]bool)
	inDirectives := make(map[string]bool)
	for i, t := range tokens {
		switch t.Kind {
		case Ident:
			used[t.Text] = true
			u.sig = append(u.sig, i)
		case Directive:
			for _, id := range identInText.FindAllString(t.Text, -1) {
				used[id] = true
				inDirectives[id] = true
			}
		case Comment, Newline, Whitespace:
		default:
			u.sig = append(u.sig, i)
		}
	}

	aggs, roots, ok := u.scan()
	if !ok || len(aggs) == 0 {
		return src
	}

	structs := make(map[string]*aggregate)
	for _, a := range aggs {
		if !a.block && a.name != "" {
			if prev, dup := structs[a.name]; dup {
				// Same name declared in two scopes: treat the pair as one
				// type for reachability.
				a.refs = append(a.refs, prev.refs...)
			}
			structs[a.name] = a
		}
	}

	kept := make(map[string]bool)
	for queue := roots; len(queue) > 0; {
		name := queue[len(queue)-1]
		queue = queue[:len(queue)-1]
		s, isStruct := structs[name]
		if kept[name] || !isStruct {
			continue
		}
		kept[name] = true
		queue = append(queue, s.refs...)
	}

	blocked := make(map[string]bool)
	for _, name := range builtinMembers {
		blocked[name] = true
	}
	for _, a := range aggs {
		if a.block || a.name == "" || kept[a.name] {
			for _, k := range a.members {
				blocked[u.at(k).Text] = true
			}
		}
	}

	renames := make(map[string]string)
	var gen nameGenerator
	for _, a := range aggs {
		if a.block || a.name == "" || kept[a.name] {
			continue
		}
		for _, k := range a.members {
			old := u.at(k).Text
			if _, done := renames[old]; done || blocked[old] || inDirectives[old] ||
				IsReserved(old) || swizzleShaped.MatchString(old) {
				continue
			}
			renames[old] = gen.next(used)
		}
	}
	if len(renames) == 0 {
		return src
	}

	for _, a := range aggs {
		if a.block || a.name == "" || kept[a.name] {
			continue
		}
		for _, k := range a.members {
			if n, ok := renames[u.at(k).Text]; ok {
				u.set(k, n)
			}
		}
	}
	for k := range u.sig {
		if !u.at(k).is(Punct, ".") {
			continue
		}
		if obj := u.at(k - 1); obj.Kind == Ident && strings.HasPrefix(obj.Text, "gl_") {
			continue
		}
		if field := u.at(k + 1); field.Kind == Ident {
			if n, ok := renames[field.Text]; ok {
				u.set(k+1, n)
			}
		}
	}
	return join(u.tokens)
}

// nameGenerator yields a, b, ..., z, aa, ab, ... skipping taken names.
type nameGenerator struct {
	n int
}

func (g *nameGenerator) next(used map[string]bool) string {
	for {
		name := shortName(g.n)
		g.n++
		if !used[name] && !IsReserved(name) {
			used[name] = true
			return name
		}
	}
}

func shortName(n int) string {
	var buf [8]byte
	i := len(buf)
	for {
		i--
		buf[i] = byte('a' + n%26)
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	return string(buf[i:])
}
