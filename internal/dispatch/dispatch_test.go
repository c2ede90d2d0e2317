package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dekarrin/scadkernel/internal/kernel"
	"github.com/dekarrin/scadkernel/internal/syntax"
)

func vecArg(name string, nums ...float64) Arg {
	el := make([]syntax.Value, len(nums))
	for i, n := range nums {
		el[i] = syntax.NumberOf(n)
	}
	return Arg{Name: name, Value: syntax.VectorOf(el)}
}

func numArg(name string, n float64) Arg {
	return Arg{Name: name, Value: syntax.NumberOf(n)}
}

func Test_Args_Resolve_positionalBeatsNamed(t *testing.T) {
	a := NewArgs([]Arg{{Value: syntax.NumberOf(5)}, numArg("r", 9)})
	v, ok := a.Resolve(0, "r")
	assert.True(t, ok)
	assert.Equal(t, 5.0, v.Number())
}

func Test_Args_Resolve_fallsBackToNamed(t *testing.T) {
	a := NewArgs([]Arg{numArg("r", 9)})
	v, ok := a.Resolve(0, "r")
	assert.True(t, ok)
	assert.Equal(t, 9.0, v.Number())
}

func Test_Args_RadiusOrDiameter_diameterHalved(t *testing.T) {
	a := NewArgs([]Arg{numArg("d", 10)})
	assert.Equal(t, 5.0, a.RadiusOrDiameter(1, 0))
}

func Test_Args_RadiusOrDiameter_radiusWinsOverDiameter(t *testing.T) {
	a := NewArgs([]Arg{numArg("r", 3), numArg("d", 10)})
	assert.Equal(t, 3.0, a.RadiusOrDiameter(1, 0))
}

func Test_Args_Vec3_scalarBroadcasts(t *testing.T) {
	a := NewArgs([]Arg{{Value: syntax.NumberOf(7)}})
	got := a.Vec3([3]float64{1, 1, 1}, 0)
	assert.Equal(t, [3]float64{7, 7, 7}, got)
}

func Test_Dispatcher_Primitive_cubeDefaultsToUnitSize(t *testing.T) {
	d := New(kernel.NewReference())
	h := d.Primitive("cube", NewArgs(nil), Fragments{Fa: 12, Fs: 2})
	assert.NotNil(t, h)
}

func Test_Dispatcher_Primitive_cylinderRShorthandSetsBothEnds(t *testing.T) {
	d := New(kernel.NewReference())
	a := NewArgs([]Arg{numArg("h", 10), numArg("r", 4)})
	h := d.Primitive("cylinder", a, Fragments{Fa: 12, Fs: 2})
	assert.NotNil(t, h)
}

func Test_Dispatcher_Boolean_unionOfNoChildrenIsEmpty(t *testing.T) {
	d := New(kernel.NewReference())
	h := d.Boolean("union", nil)
	assert.NotNil(t, h)
}

func Test_ParseColor_namedChannelOverridesVector(t *testing.T) {
	a := NewArgs([]Arg{vecArg("", 0, 0, 0), numArg("r", 1)})
	c, ok := ParseColor(a)
	assert.True(t, ok)
	assert.Equal(t, 1.0, c.R)
}

func Test_ParseColor_hexShortFormExpandsDigits(t *testing.T) {
	a := NewArgs([]Arg{{Value: syntax.StringOf("#f00")}})
	c, ok := ParseColor(a)
	assert.True(t, ok)
	assert.Equal(t, 1.0, c.R)
	assert.Equal(t, 0.0, c.G)
}

func Test_ParseColor_cssNameLookup(t *testing.T) {
	a := NewArgs([]Arg{{Value: syntax.StringOf("Blue")}})
	c, ok := ParseColor(a)
	assert.True(t, ok)
	assert.Equal(t, 1.0, c.B)
}

func Test_ParseColor_unknownNameFails(t *testing.T) {
	a := NewArgs([]Arg{{Value: syntax.StringOf("not-a-color")}})
	_, ok := ParseColor(a)
	assert.False(t, ok)
}
