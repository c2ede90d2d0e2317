package eval

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/scadkernel/internal/dispatch"
	"github.com/dekarrin/scadkernel/internal/kernel"
	"github.com/dekarrin/scadkernel/internal/parse"
	"github.com/dekarrin/scadkernel/internal/syntax"
)

func newTestEvaluator() *Evaluator {
	d := dispatch.New(kernel.NewReference())
	return New(context.Background(), d, nil)
}

func evalExprString(t *testing.T, src string) syntax.Value {
	t.Helper()
	tree, diags := parse.Parse([]byte("x = " + src + ";"))
	assert.Empty(t, diags)
	assign := tree.Nodes[0].(*syntax.Assignment)
	e := newTestEvaluator()
	return e.EvalExpr(assign.Expr, syntax.NewEnv())
}

func Test_EvalExpr_arithmeticPrecedence(t *testing.T) {
	got := evalExprString(t, "2 + 3 * 4")
	assert.Equal(t, 14.0, got.Number())
}

func Test_EvalExpr_ternary(t *testing.T) {
	got := evalExprString(t, "1 < 2 ? 10 : 20")
	assert.Equal(t, 10.0, got.Number())
}

func Test_EvalExpr_vectorArithmeticBroadcast(t *testing.T) {
	got := evalExprString(t, "[1,2,3] * 2")
	assert.Equal(t, []float64{2, 4, 6}, vecNums(got))
}

func Test_EvalExpr_logicalShortCircuitSkipsRHS(t *testing.T) {
	got := evalExprString(t, "false && (1/0 > 0)")
	assert.False(t, got.Bool())
}

func Test_EvalExpr_stringConcatenation(t *testing.T) {
	got := evalExprString(t, `"a" + "b"`)
	assert.Equal(t, "ab", got.String())
}

func Test_EvalExpr_builtinMinMax(t *testing.T) {
	assert.Equal(t, 1.0, evalExprString(t, "min(3,1,2)").Number())
	assert.Equal(t, 3.0, evalExprString(t, "max([3,1,2])").Number())
}

func Test_EvalExpr_builtinLen(t *testing.T) {
	assert.Equal(t, 3.0, evalExprString(t, "len([1,2,3])").Number())
}

func Test_EvalExpr_listComprehensionBasic(t *testing.T) {
	got := evalExprString(t, "[for (i = [0:2:6]) i*i]")
	assert.Equal(t, []float64{0, 4, 16, 36}, vecNums(got))
}

func Test_EvalExpr_listComprehensionGuard(t *testing.T) {
	got := evalExprString(t, "[for (i = [0:5]) if (i % 2 == 0) i]")
	assert.Equal(t, []float64{0, 2, 4}, vecNums(got))
}

func Test_EvalExpr_rangeReversedStepProducesNoElements(t *testing.T) {
	got := evalExprString(t, "[for (i = [5:1]) i]")
	assert.Empty(t, vecNums(got))
}

func Test_EvalExpr_unknownFunctionReportsUnknownIdentifier(t *testing.T) {
	e := newTestEvaluator()
	tree, _ := parse.Parse([]byte("x = totally_unknown_fn(1);"))
	assign := tree.Nodes[0].(*syntax.Assignment)
	e.EvalExpr(assign.Expr, syntax.NewEnv())
	assert.True(t, e.Diags.HasErrors())
}

func vecNums(v syntax.Value) []float64 {
	el := v.Elements()
	out := make([]float64, len(el))
	for i, e := range el {
		out[i] = e.Number()
	}
	return out
}

func evalSource(t *testing.T, src string) (*kernel.Handle, *Evaluator) {
	t.Helper()
	tree, diags := parse.Parse([]byte(src))
	assert.Empty(t, diags)
	e := newTestEvaluator()
	h := e.EvalTree(tree, syntax.NewEnv())
	return h, e
}

func Test_EvalTree_primitiveProducesGeometry(t *testing.T) {
	h, e := evalSource(t, "cube(2);")
	assert.NotNil(t, h)
	assert.False(t, e.Diags.HasErrors())
}

func Test_EvalTree_unionOfTwoCubesHasBothVolumes(t *testing.T) {
	h, _ := evalSource(t, "cube(1); translate([5,0,0]) cube(1);")
	mesh := kernel.NewReference().ToMesh(h)
	assert.InDelta(t, 6, mesh.Bounds.Max[0], 1e-6)
}

func Test_EvalTree_moduleDefinitionAndCall(t *testing.T) {
	h, e := evalSource(t, `
		module box(s) { cube(s); }
		box(3);
	`)
	assert.NotNil(t, h)
	assert.False(t, e.Diags.HasErrors())
}

func Test_EvalTree_moduleChildrenPassthrough(t *testing.T) {
	h, e := evalSource(t, `
		module wrapper() { translate([1,0,0]) children(); }
		wrapper() cube(1);
	`)
	assert.NotNil(t, h)
	assert.False(t, e.Diags.HasErrors())
}

func Test_EvalTree_userFunctionCall(t *testing.T) {
	h, e := evalSource(t, `
		function double(x) = x * 2;
		cube(double(2));
	`)
	assert.NotNil(t, h)
	assert.False(t, e.Diags.HasErrors())
}

func Test_EvalTree_ifElseTakesSingleBranch(t *testing.T) {
	h, _ := evalSource(t, `
		x = 1;
		if (x > 0) { cube(1); } else { sphere(1); }
	`)
	mesh := kernel.NewReference().ToMesh(h)
	assert.InDelta(t, 1, mesh.Bounds.Max[0], 1e-6)
}

func Test_EvalTree_forLoopUnionsIterations(t *testing.T) {
	h, _ := evalSource(t, `
		for (i = [0:2]) translate([i*3,0,0]) cube(1);
	`)
	mesh := kernel.NewReference().ToMesh(h)
	assert.InDelta(t, 7, mesh.Bounds.Max[0], 1e-6)
}

func Test_EvalTree_disableModifierRemovesSubtree(t *testing.T) {
	h, _ := evalSource(t, `
		cube(1);
		*translate([10,0,0]) cube(1);
	`)
	mesh := kernel.NewReference().ToMesh(h)
	assert.InDelta(t, 1, mesh.Bounds.Max[0], 1e-6)
}

func Test_EvalTree_rootBangShowsOnlyThatSubtree(t *testing.T) {
	h, _ := evalSource(t, `
		cube(1);
		!translate([10,0,0]) cube(1);
	`)
	mesh := kernel.NewReference().ToMesh(h)
	assert.InDelta(t, 11, mesh.Bounds.Max[0], 1e-6)
	assert.InDelta(t, 10, mesh.Bounds.Min[0], 1e-6)
}

func Test_EvalTree_assertFailureRecordsDiagnostic(t *testing.T) {
	_, e := evalSource(t, `assert(1 == 2, "nope");`)
	assert.True(t, e.Diags.HasErrors())
}

func Test_EvalTree_differenceRemovesVolume(t *testing.T) {
	h, _ := evalSource(t, `
		difference() {
			cube(4, center=true);
			cube(2, center=true);
		}
	`)
	assert.NotNil(t, h)
}

func Test_EvalTree_letBindsLocalsForBody(t *testing.T) {
	h, _ := evalSource(t, `
		let (s = 3) cube(s);
	`)
	mesh := kernel.NewReference().ToMesh(h)
	assert.InDelta(t, 3, mesh.Bounds.Max[0], 1e-6)
}
