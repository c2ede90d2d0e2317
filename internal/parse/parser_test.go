package parse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/scadkernel/internal/syntax"
)

func Test_Parse_primitiveCall(t *testing.T) {
	tree, diags := Parse([]byte(`cube(10, center=true);`))

	assert := assert.New(t)
	assert.Empty(diags)
	assert.Len(tree.Nodes, 1)

	prim, ok := tree.Nodes[0].(*syntax.Primitive)
	assert.True(ok)
	assert.Equal("cube", prim.Op)
	assert.Len(prim.Params, 2)
	assert.Equal("", prim.Params[0].Name)
	assert.Equal("center", prim.Params[1].Name)
}

func Test_Parse_transformWithChildren(t *testing.T) {
	tree, diags := Parse([]byte(`translate([1,2,3]) cube(1);`))

	assert := assert.New(t)
	assert.Empty(diags)
	assert.Len(tree.Nodes, 1)

	tr, ok := tree.Nodes[0].(*syntax.Transform)
	assert.True(ok)
	assert.Equal("translate", tr.Op)
	assert.Len(tr.Children, 1)
	_, isPrim := tr.Children[0].(*syntax.Primitive)
	assert.True(isPrim)
}

func Test_Parse_booleanBlock(t *testing.T) {
	tree, diags := Parse([]byte(`union() { cube(1); sphere(1); }`))

	assert := assert.New(t)
	assert.Empty(diags)
	b, ok := tree.Nodes[0].(*syntax.Boolean)
	assert.True(ok)
	assert.Equal("union", b.Op)
	assert.Len(b.Children, 2)
}

func Test_Parse_moduleCallIsNotBuiltin(t *testing.T) {
	tree, diags := Parse([]byte(`bracket(10);`))

	assert := assert.New(t)
	assert.Empty(diags)
	_, ok := tree.Nodes[0].(*syntax.ModuleCall)
	assert.True(ok)
}

func Test_Parse_moduleAndFunctionDef(t *testing.T) {
	tree, diags := Parse([]byte(`
		module bracket(w=10) { cube([w, 1, 1]); }
		function twice(x) = x * 2;
	`))

	assert := assert.New(t)
	assert.Empty(diags)
	assert.Len(tree.Nodes, 2)

	mod, ok := tree.Nodes[0].(*syntax.ModuleDef)
	assert.True(ok)
	assert.Equal("bracket", mod.Name)
	assert.Len(mod.Params, 1)
	assert.NotNil(mod.Params[0].Default)

	fn, ok := tree.Nodes[1].(*syntax.FunctionDef)
	assert.True(ok)
	assert.Equal("twice", fn.Name)
}

func Test_Parse_ifElse(t *testing.T) {
	tree, diags := Parse([]byte(`if (x > 0) cube(1); else sphere(1);`))

	assert := assert.New(t)
	assert.Empty(diags)
	ifStmt, ok := tree.Nodes[0].(*syntax.If)
	assert.True(ok)
	assert.Len(ifStmt.Then, 1)
	assert.Len(ifStmt.Else, 1)
}

func Test_Parse_forOverRange(t *testing.T) {
	tree, diags := Parse([]byte(`for (i = [0:2:10]) cube(i);`))

	assert := assert.New(t)
	assert.Empty(diags)
	f, ok := tree.Nodes[0].(*syntax.For)
	assert.True(ok)
	assert.Equal("i", f.Var)
	rng, ok := f.Range.(*syntax.RangeExpr)
	assert.True(ok)
	assert.NotNil(rng.Step)
}

func Test_Parse_letStatement(t *testing.T) {
	tree, diags := Parse([]byte(`let (x = 1, y = 2) cube(x + y);`))

	assert := assert.New(t)
	assert.Empty(diags)
	l, ok := tree.Nodes[0].(*syntax.Let)
	assert.True(ok)
	assert.Len(l.Bindings, 2)
	assert.Equal("x", l.Bindings[0].Name)
}

func Test_Parse_echoAndAssert(t *testing.T) {
	tree, diags := Parse([]byte(`echo("hi", 1+1); assert(1 < 2, "nope");`))

	assert := assert.New(t)
	assert.Empty(diags)
	e, ok := tree.Nodes[0].(*syntax.Echo)
	assert.True(ok)
	assert.Len(e.Values, 2)

	a, ok := tree.Nodes[1].(*syntax.Assert)
	assert.True(ok)
	assert.NotNil(a.Message)
}

func Test_Parse_importForms(t *testing.T) {
	tree, diags := Parse([]byte(`include <lib/gears.scad>; use "helpers.scad"; import "mesh.stl";`))

	assert := assert.New(t)
	assert.Empty(diags)
	assert.Len(tree.Nodes, 3)

	inc := tree.Nodes[0].(*syntax.Import)
	assert.Equal("include", inc.Kind)
	assert.Equal("lib/gears.scad", inc.Filename)

	use := tree.Nodes[1].(*syntax.Import)
	assert.Equal("use", use.Kind)
	assert.Equal("helpers.scad", use.Filename)
}

func Test_Parse_modifierGlyphs(t *testing.T) {
	tree, diags := Parse([]byte(`!cube(1); #sphere(1); %cylinder(1,1,1); *cube(2);`))

	assert := assert.New(t)
	assert.Empty(diags)
	assert.Len(tree.Nodes, 4)
	for i, want := range []string{"!", "#", "%", "*"} {
		mod, ok := tree.Nodes[i].(*syntax.Modifier)
		assert.True(ok, "node %d should be a Modifier", i)
		assert.Equal(want, mod.Kind)
	}
}

func Test_Parse_starIsMultiplicationInExpressionPosition(t *testing.T) {
	tree, diags := Parse([]byte(`x = 2 * 3;`))

	assert := assert.New(t)
	assert.Empty(diags)
	asn, ok := tree.Nodes[0].(*syntax.Assignment)
	assert.True(ok)
	bin, ok := asn.Expr.(*syntax.Binary)
	assert.True(ok)
	assert.Equal("*", bin.Op)
}

func Test_Parse_expressionPrecedence(t *testing.T) {
	tree, diags := Parse([]byte(`x = 1 + 2 * 3 == 7 && true;`))

	assert := assert.New(t)
	assert.Empty(diags)
	asn := tree.Nodes[0].(*syntax.Assignment)

	top, ok := asn.Expr.(*syntax.Binary)
	assert.True(ok)
	assert.Equal("&&", top.Op)

	eq, ok := top.L.(*syntax.Binary)
	assert.True(ok)
	assert.Equal("==", eq.Op)

	add, ok := eq.L.(*syntax.Binary)
	assert.True(ok)
	assert.Equal("+", add.Op)

	mul, ok := add.R.(*syntax.Binary)
	assert.True(ok)
	assert.Equal("*", mul.Op)
}

func Test_Parse_ternary(t *testing.T) {
	tree, diags := Parse([]byte(`x = a ? 1 : 2;`))

	assert := assert.New(t)
	assert.Empty(diags)
	asn := tree.Nodes[0].(*syntax.Assignment)
	tern, ok := asn.Expr.(*syntax.Ternary)
	assert.True(ok)
	assert.NotNil(tern.Cond)
}

func Test_Parse_vectorVsRangeDisambiguation(t *testing.T) {
	testCases := []struct {
		name     string
		input    string
		wantKind string
	}{
		{"twoElemVector", "x = [1, 2];", "vector"},
		{"twoElemRange", "x = [1:2];", "range"},
		{"threeElemRange", "x = [1:0.5:2];", "range"},
		{"threeElemVector", "x = [1, 2, 3];", "vector"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tree, diags := Parse([]byte(tc.input))
			assert.Empty(t, diags)
			asn := tree.Nodes[0].(*syntax.Assignment)
			switch tc.wantKind {
			case "vector":
				_, ok := asn.Expr.(*syntax.VectorLit)
				assert.True(t, ok)
			case "range":
				_, ok := asn.Expr.(*syntax.RangeExpr)
				assert.True(t, ok)
			}
		})
	}
}

func Test_Parse_listComprehension(t *testing.T) {
	tree, diags := Parse([]byte(`x = [for (i = [0:10]) if (i % 2 == 0) i * i];`))

	assert := assert.New(t)
	assert.Empty(diags)
	asn := tree.Nodes[0].(*syntax.Assignment)
	lc, ok := asn.Expr.(*syntax.ListComprehension)
	assert.True(ok)
	assert.Len(lc.Generators, 1)
	assert.Equal("i", lc.Generators[0].Var)
	assert.NotNil(lc.Guard)
}

func Test_Parse_nestedListComprehensionGenerators(t *testing.T) {
	tree, diags := Parse([]byte(`x = [for (i = [0:1]) for (j = [0:1]) i + j];`))

	assert := assert.New(t)
	assert.Empty(diags)
	asn := tree.Nodes[0].(*syntax.Assignment)
	lc := asn.Expr.(*syntax.ListComprehension)
	assert.Len(lc.Generators, 2)
}

func Test_Parse_childrenCall(t *testing.T) {
	tree, diags := Parse([]byte(`module wrap() { color("red") children(); } `))

	assert := assert.New(t)
	assert.Empty(diags)
	mod := tree.Nodes[0].(*syntax.ModuleDef)
	tr := mod.Body[0].(*syntax.Transform)
	_, ok := tr.Children[0].(*syntax.ChildrenCall)
	assert.True(ok)
}

func Test_Parse_emptyVector(t *testing.T) {
	tree, diags := Parse([]byte(`x = [];`))

	assert.Empty(t, diags)
	asn := tree.Nodes[0].(*syntax.Assignment)
	vec, ok := asn.Expr.(*syntax.VectorLit)
	assert.True(t, ok)
	assert.Empty(t, vec.Elements)
}

func Test_Parse_functionCallExpression(t *testing.T) {
	tree, diags := Parse([]byte(`x = sin(45) + len(v);`))

	assert.Empty(t, diags)
	asn := tree.Nodes[0].(*syntax.Assignment)
	bin := asn.Expr.(*syntax.Binary)
	left, ok := bin.L.(*syntax.Call)
	assert.True(t, ok)
	assert.Equal(t, "sin", left.Name)
}

func Test_Parse_unaryOperators(t *testing.T) {
	tree, diags := Parse([]byte(`x = -y; z = !w;`))

	assert.Empty(t, diags)
	asn1 := tree.Nodes[0].(*syntax.Assignment)
	u1, ok := asn1.Expr.(*syntax.Unary)
	assert.True(t, ok)
	assert.Equal(t, "-", u1.Op)

	asn2 := tree.Nodes[1].(*syntax.Assignment)
	u2, ok := asn2.Expr.(*syntax.Unary)
	assert.True(t, ok)
	assert.Equal(t, "!", u2.Op)
}

func Test_Parse_malformedArgumentRecoversWithinSameStatement(t *testing.T) {
	tree, diags := Parse([]byte("cube(@); sphere(1);"))

	assert := assert.New(t)
	assert.NotEmpty(diags)
	// one bad byte inside cube(...)'s argument list should not prevent the
	// parser from still finding both statements.
	var foundCube, foundSphere bool
	for _, n := range tree.Nodes {
		if prim, ok := n.(*syntax.Primitive); ok {
			switch prim.Op {
			case "cube":
				foundCube = true
			case "sphere":
				foundSphere = true
			}
		}
	}
	assert.True(foundCube)
	assert.True(foundSphere)
}

func Test_Parse_unexpectedTopLevelTokenResynchronizesAtSemicolon(t *testing.T) {
	tree, diags := Parse([]byte("@ ; sphere(1);"))

	assert := assert.New(t)
	assert.NotEmpty(diags)
	var foundSphere bool
	for _, n := range tree.Nodes {
		if prim, ok := n.(*syntax.Primitive); ok && prim.Op == "sphere" {
			foundSphere = true
		}
	}
	assert.True(foundSphere)
}

func Test_Parse_missingClosingBraceReportsDiagnostic(t *testing.T) {
	_, diags := Parse([]byte(`union() { cube(1);`))
	assert.True(t, diags.HasErrors())
}

func Test_Parse_intersectionForAndBoolean(t *testing.T) {
	tree, diags := Parse([]byte(`intersection_for (i = [0:3]) rotate([0,0,i*90]) cube(1);`))

	assert := assert.New(t)
	assert.Empty(diags)
	isFor, ok := tree.Nodes[0].(*syntax.IntersectionFor)
	assert.True(ok)
	assert.Len(isFor.Body, 1)
}

func Test_Parse_namedAndPositionalArgsMixed(t *testing.T) {
	tree, diags := Parse([]byte(`cylinder(h=10, 5, center=true);`))

	assert := assert.New(t)
	assert.Empty(diags)
	prim := tree.Nodes[0].(*syntax.Primitive)
	assert.Equal("h", prim.Params[0].Name)
	assert.Equal("", prim.Params[1].Name)
	assert.Equal("center", prim.Params[2].Name)
}
