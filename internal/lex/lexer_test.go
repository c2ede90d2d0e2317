package lex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func kindsOf(toks []Token) []Kind {
	kinds := make([]Kind, len(toks))
	for i := range toks {
		kinds[i] = toks[i].Kind
	}
	return kinds
}

func Test_Tokenize_basicShapes(t *testing.T) {
	toks, diags := Tokenize([]byte(`cube(10, center=true);`))

	assert := assert.New(t)
	assert.Empty(diags)
	assert.Equal(
		[]Kind{Identifier, Punctuation, Number, Punctuation, Identifier, Operator, Identifier, Punctuation, Punctuation, EOF},
		kindsOf(toks),
	)
}

func Test_Tokenize_twoCharOperatorsPreferred(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  []string
	}{
		{"eq", "a==b", []string{"a", "==", "b"}},
		{"ne", "a!=b", []string{"a", "!=", "b"}},
		{"le", "a<=b", []string{"a", "<=", "b"}},
		{"ge", "a>=b", []string{"a", ">=", "b"}},
		{"and", "a&&b", []string{"a", "&&", "b"}},
		{"or", "a||b", []string{"a", "||", "b"}},
		{"singleLt", "a<b", []string{"a", "<", "b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			toks, diags := Tokenize([]byte(tc.input))
			assert := assert.New(t)
			assert.Empty(diags)

			var got []string
			for _, tok := range toks {
				if tok.Kind == EOF {
					continue
				}
				got = append(got, tok.Text)
			}
			assert.Equal(tc.want, got)
		})
	}
}

func Test_Tokenize_numbers(t *testing.T) {
	testCases := []struct {
		input string
		want  float64
	}{
		{"10", 10},
		{"3.14", 3.14},
		{"1e3", 1000},
		{"1.5e-2", 0.015},
		{"2E+1", 20},
	}

	for _, tc := range testCases {
		toks, diags := Tokenize([]byte(tc.input))
		assert.Empty(t, diags)
		assert.Equal(t, Number, toks[0].Kind)
		assert.InDelta(t, tc.want, toks[0].NumVal, 1e-9)
	}
}

func Test_Tokenize_stringEscapes(t *testing.T) {
	toks, diags := Tokenize([]byte(`"a\nb\tc\\d\"e"`))
	assert.Empty(t, diags)
	assert.Equal(t, "a\nb\tc\\d\"e", toks[0].Text)
}

func Test_Tokenize_unknownEscapeIsLiteral(t *testing.T) {
	toks, diags := Tokenize([]byte(`"a\qb"`))
	assert.Empty(t, diags)
	assert.Equal(t, "aqb", toks[0].Text)
}

func Test_Tokenize_unterminatedString(t *testing.T) {
	_, diags := Tokenize([]byte(`"abc`))
	assert.Len(t, diags, 1)
	assert.Equal(t, "syntax_error", string(diags[0].Code))
}

func Test_Tokenize_blockCommentDoesNotNest(t *testing.T) {
	toks, diags := Tokenize([]byte(`/* a /* b */ c */ cube(1);`))
	assert.Empty(t, diags)
	// the comment closes at the FIRST "*/", leaving "c */ cube(1);" as code.
	assert.Equal(t, Identifier, toks[0].Kind)
	assert.Equal(t, "c", toks[0].Text)
}

func Test_Tokenize_unterminatedBlockComment(t *testing.T) {
	_, diags := Tokenize([]byte(`/* never closes`))
	assert.Len(t, diags, 1)
	assert.Equal(t, "syntax_error", string(diags[0].Code))
}

func Test_Tokenize_lineCommentToEOL(t *testing.T) {
	toks, diags := Tokenize([]byte("cube(1); // trailing\nsphere(2);"))
	assert.Empty(t, diags)
	var idents []string
	for _, tok := range toks {
		if tok.Kind == Identifier {
			idents = append(idents, tok.Text)
		}
	}
	assert.Equal(t, []string{"cube", "sphere"}, idents)
}

func Test_Tokenize_trueFalseUndefAreIdentifiers(t *testing.T) {
	toks, _ := Tokenize([]byte("true false undef"))
	assert.Equal(t, Identifier, toks[0].Kind)
	assert.Equal(t, Identifier, toks[1].Kind)
	assert.Equal(t, Identifier, toks[2].Kind)
}

func Test_Tokenize_keywordsRecognized(t *testing.T) {
	toks, _ := Tokenize([]byte("module function if else for intersection_for let echo assert import include use"))
	for _, tok := range toks {
		if tok.Kind == EOF {
			continue
		}
		assert.Equal(t, Keyword, tok.Kind, "expected %q to be a keyword", tok.Text)
	}
}

func Test_Tokenize_modifierGlyphs(t *testing.T) {
	toks, _ := Tokenize([]byte(`!#%*cube(1);`))
	assert.Equal(t, Modifier, toks[0].Kind)
	assert.Equal(t, Modifier, toks[1].Kind)
	assert.Equal(t, Modifier, toks[2].Kind)
	assert.Equal(t, Operator, toks[3].Kind) // '*' is always an operator token
}

func Test_Tokenize_dollarIdentifiers(t *testing.T) {
	toks, _ := Tokenize([]byte(`$fn = 16;`))
	assert.Equal(t, Identifier, toks[0].Kind)
	assert.Equal(t, "$fn", toks[0].Text)
}

func Test_Tokenize_unknownByteBecomesPunctuation(t *testing.T) {
	toks, _ := Tokenize([]byte("@"))
	assert.Equal(t, Punctuation, toks[0].Kind)
	assert.Equal(t, "@", toks[0].Text)
}

func Test_Tokenize_tracksLineAndColumn(t *testing.T) {
	toks, _ := Tokenize([]byte("cube(1);\n  sphere(2);"))
	var sphereTok Token
	for _, tok := range toks {
		if tok.Text == "sphere" {
			sphereTok = tok
		}
	}
	assert.Equal(t, 2, sphereTok.Line)
	assert.Equal(t, 3, sphereTok.Column)
}
