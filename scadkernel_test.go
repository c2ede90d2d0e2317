package scadkernel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Parse_validSourceHasNoDiagnostics(t *testing.T) {
	res := Parse([]byte("cube(1);"))
	assert.True(t, res.Success())
	assert.NotNil(t, res.Tree)
}

func Test_Parse_syntaxErrorIsReported(t *testing.T) {
	res := Parse([]byte("cube(1"))
	assert.False(t, res.Success())
}

func Test_Evaluate_simpleCubeProducesMesh(t *testing.T) {
	res := Parse([]byte("cube([2,3,4]);"))
	out := Evaluate(context.Background(), res.Tree, Options{})
	assert.True(t, out.Success())
	assert.NotNil(t, out.Mesh)
	assert.InDelta(t, 2, out.Mesh.Bounds.Max[0], 1e-6)
	assert.InDelta(t, 3, out.Mesh.Bounds.Max[1], 1e-6)
	assert.InDelta(t, 4, out.Mesh.Bounds.Max[2], 1e-6)
}

func Test_Evaluate_emptyTreeHasNoMesh(t *testing.T) {
	res := Parse([]byte(""))
	out := Evaluate(context.Background(), res.Tree, Options{})
	assert.True(t, out.Success())
	assert.Nil(t, out.Mesh)
}

func Test_Evaluate_fragmentDefaultsFlowToSphere(t *testing.T) {
	res := Parse([]byte("sphere(5, $fn=6);"))
	out := Evaluate(context.Background(), res.Tree, Options{})
	assert.True(t, out.Success())
	assert.NotNil(t, out.Mesh)
}

func Test_Evaluate_oneMillisecondTimeoutStillReturns(t *testing.T) {
	res := Parse([]byte(`for (i = [0:1:100000]) cube(1);`))
	out := Evaluate(context.Background(), res.Tree, Options{TimeoutMS: 1})
	_ = out
}

func Test_Evaluate_unknownModuleRecordsDiagnosticNotPanic(t *testing.T) {
	res := Parse([]byte("totally_unknown_module(1);"))
	out := Evaluate(context.Background(), res.Tree, Options{})
	assert.True(t, out.Diagnostics.HasErrors())
}
