// Copyright 2025 The GoGPU Authors
// SPDX-License-Identifier: MIT

package glsl

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fragmentSource = `#version 300 es
// comment
precision mediump float;
uniform sampler2D uSampler;   /* block */
in vec2 vUv;
out vec4 fragColor;
void main() {
    fragColor = texture(uSampler, vUv) * 2.0;
}
`

func TestTokenizeRoundTrip(t *testing.T) {
	srcs := []string{
		fragmentSource,
		"#define M(a) \\\n  (a)\nfloat v = M(1);",
		"x = 1.5e-3f + .25 + 0x1Fu; s = \"str\"; @",
		"a /* unterminated",
	}
	for _, src := range srcs {
		tokens, err := Tokenize(src)
		require.NoError(t, err)
		assert.Equal(t, src, join(tokens))
	}
}

func TestTokenizeKinds(t *testing.T) {
	tokens, err := Tokenize("#define X 1\nfoo.bar += 1.5e3; // c")
	require.NoError(t, err)
	var kinds []Kind
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []Kind{
		Directive, Newline, Ident, Punct, Ident, Whitespace, Punct, Whitespace, Number, Punct, Whitespace, Comment,
	}, kinds)
	assert.Equal(t, "+=", tokens[6].Text)
	assert.Equal(t, "Directive", Directive.String())
}

func TestRemoveWhitespace(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "fragment shader",
			src:  fragmentSource,
			want: "#version 300 es\nprecision mediump float;uniform sampler2D uSampler;in vec2 vUv;out vec4 fragColor;" +
				"void main(){fragColor=texture(uSampler,vUv)*2.0;}",
		},
		{name: "prefix increment", src: "a + ++b", want: "a+ ++b"},
		{name: "negative literal", src: "x - -1", want: "x- -1"},
		{name: "division by deref", src: "a / *p", want: "a/ *p"},
		{name: "postfix then plus", src: "i++ + j", want: "i+++j"},
		{name: "comment between words", src: "return/**/x;", want: "return x;"},
		{name: "member access", src: "x . y", want: "x.y"},
		{name: "nested template", src: "vector<vector<int> > v;", want: "vector<vector<int> >v;"},
		{
			name: "directives keep their lines",
			src:  "void f();\n  #ifdef X\nint y;\n#endif\n",
			want: "void f();\n#ifdef X\nint y;\n#endif\n",
		},
		{name: "directive blanks", src: "#  define   X   1  \nX", want: "#define X 1\nX"},
		{name: "directive block comment", src: "#define X 1 /* two\nlines */\nvoid main(){}\n", want: "#define X 1\nvoid main(){}"},
		{name: "directive inner comment", src: "#if A /* x */ && B // tail\nint y;\n#endif\n", want: "#if A && B\nint y;\n#endif\n"},
		{name: "quoted directive", src: "#include \"a  b.h\"\nint x;", want: "#include \"a  b.h\"\nint x;"},
		{
			name: "continued directive",
			src:  "#define M(a) \\\n  (a)\nfloat v = M(1);",
			want: "#define M(a) \\\n  (a)\nfloat v=M(1);",
		},
		{
			name: "metal",
			src:  "kernel void f(device float* a [[buffer(0)]]) {\n  a[0] = 1.0;\n}\n",
			want: "kernel void f(device float*a[[buffer(0)]]){a[0]=1.0;}",
		},
		{name: "empty", src: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RemoveWhitespace(tt.src))
		})
	}
}

func TestRemoveWhitespaceIdempotent(t *testing.T) {
	srcs := []string{
		fragmentSource,
		"a + ++b; x - -1; a / *p; i++ + j; 1 .x; a. 5",
		"#define M(a) \\\n  (a)\n# pragma  once\nfloat v = M(1);\n#endif",
		"#define X 1 /* two\nlines */\nvoid main() { int lines = X; }\n",
		"vector<vector<int> > v; a<<=b; c< <d; e& &f;",
	}
	for _, src := range srcs {
		once := RemoveWhitespace(src)
		assert.Equal(t, once, RemoveWhitespace(once), src)
	}
}

func TestRemoveWhitespacePreservesTokens(t *testing.T) {
	src := "a + ++b; x - -1; y = a / *p; i++ + j; c< <d; e& &f; g = 1 .5;"
	want, err := Tokenize(src)
	require.NoError(t, err)
	got, err := Tokenize(RemoveWhitespace(src))
	require.NoError(t, err)
	assert.Equal(t, meaningful(want), meaningful(got))
}

func TestRemoveWhitespaceMultilineDirectiveComment(t *testing.T) {
	src := "#define X 1 /* two\nlines */\nvoid main() { float lines = X; }\n"
	tokens, err := Tokenize(src)
	require.NoError(t, err)
	require.Equal(t, Directive, tokens[0].Kind)
	assert.Equal(t, "#define X 1 /* two\nlines */", tokens[0].Text)

	got, err := Tokenize(RemoveWhitespace(src))
	require.NoError(t, err)
	assert.Equal(t, []string{"#define X 1", "void", "main", "(", ")", "{", "float", "lines", "=", "X", ";", "}"}, meaningful(got))
}

func meaningful(tokens []Token) []string {
	var out []string
	for _, t := range tokens {
		if !t.trivia() {
			out = append(out, t.Text)
		}
	}
	return out
}
