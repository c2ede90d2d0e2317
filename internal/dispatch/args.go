// Package dispatch resolves a call's already-evaluated arguments against
// the language's parameter fallback chains and turns the result into a
// kernel operation: primitives (cube, sphere, ...), transforms (translate,
// scale, color, ...), and the color/modifier parsing rules that feed them.
//
// Expression evaluation itself lives in internal/eval; this package only
// ever sees already-evaluated syntax.Value arguments, never an Expr.
package dispatch

import (
	"github.com/dekarrin/scadkernel/internal/syntax"
)

// Arg is one already-evaluated call argument.
type Arg struct {
	Name  string // "" for positional
	Value syntax.Value
}

// Args splits a call's evaluated arguments into positional order and a
// name-indexed lookup, mirroring how the language resolves a mix of
// positional and named arguments against a parameter list.
type Args struct {
	Positional []syntax.Value
	Named      map[string]syntax.Value
}

// NewArgs partitions raw into Positional/Named.
func NewArgs(raw []Arg) Args {
	a := Args{Named: map[string]syntax.Value{}}
	for _, r := range raw {
		if r.Name == "" {
			a.Positional = append(a.Positional, r.Value)
		} else {
			a.Named[r.Name] = r.Value
		}
	}
	return a
}

// Resolve implements a parameter fallback chain: try positional slot pos
// first (pos < 0 skips this), then each name in names in order. Returns the
// zero Value and false if nothing matched.
func (a Args) Resolve(pos int, names ...string) (syntax.Value, bool) {
	if pos >= 0 && pos < len(a.Positional) {
		return a.Positional[pos], true
	}
	for _, n := range names {
		if v, ok := a.Named[n]; ok {
			return v, true
		}
	}
	return syntax.Undef, false
}

// Number resolves a numeric parameter, returning def if unset.
func (a Args) Number(def float64, pos int, names ...string) float64 {
	v, ok := a.Resolve(pos, names...)
	if !ok {
		return def
	}
	return v.Number()
}

// Bool resolves a boolean parameter, returning def if unset.
func (a Args) Bool(def bool, pos int, names ...string) bool {
	v, ok := a.Resolve(pos, names...)
	if !ok {
		return def
	}
	return v.Bool()
}

// String resolves a string parameter, returning def if unset.
func (a Args) String(def string, pos int, names ...string) string {
	v, ok := a.Resolve(pos, names...)
	if !ok {
		return def
	}
	return v.String()
}

// Vec3 resolves a 3-vector parameter (or a bare scalar broadcast across all
// three components, per the language's "a single number fills every axis"
// convention), returning def if unset.
func (a Args) Vec3(def [3]float64, pos int, names ...string) [3]float64 {
	v, ok := a.Resolve(pos, names...)
	if !ok {
		return def
	}
	return vec3From(v, def)
}

func vec3From(v syntax.Value, def [3]float64) [3]float64 {
	if v.Kind() == syntax.KindVector {
		el := v.Elements()
		out := def
		for i := 0; i < 3 && i < len(el); i++ {
			out[i] = el[i].Number()
		}
		return out
	}
	n := v.Number()
	return [3]float64{n, n, n}
}

// Vec2 resolves a 2-vector parameter the same way Vec3 does, for 2D
// primitives (square's size).
func (a Args) Vec2(def [2]float64, pos int, names ...string) [2]float64 {
	v, ok := a.Resolve(pos, names...)
	if !ok {
		return def
	}
	if v.Kind() == syntax.KindVector {
		el := v.Elements()
		out := def
		for i := 0; i < 2 && i < len(el); i++ {
			out[i] = el[i].Number()
		}
		return out
	}
	n := v.Number()
	return [2]float64{n, n}
}

// RadiusOrDiameter implements the shared sphere/cone/circle fallback
// chain: an explicit radius (`_positional`/`r`/`radius`) wins;
// otherwise a diameter (`d`/`diameter`) is halved; otherwise def.
func (a Args) RadiusOrDiameter(def float64, pos int) float64 {
	if v, ok := a.Resolve(pos, "r", "radius"); ok {
		return v.Number()
	}
	if v, ok := a.Resolve(-1, "d", "diameter"); ok {
		return v.Number() / 2
	}
	return def
}

// RadiusOrDiameterNamed is RadiusOrDiameter for a parameter that only ever
// appears named (cylinder's r1/r2/d1/d2).
func (a Args) RadiusOrDiameterNamed(def float64, rName, dName string) float64 {
	if v, ok := a.Resolve(-1, rName); ok {
		return v.Number()
	}
	if v, ok := a.Resolve(-1, dName); ok {
		return v.Number() / 2
	}
	return def
}

// PointList2D reads a vector-of-2-vectors parameter (circle/square outline
// literals, polygon points).
func PointList2D(v syntax.Value) [][2]float64 {
	if v.Kind() != syntax.KindVector {
		return nil
	}
	out := make([][2]float64, 0, len(v.Elements()))
	for _, e := range v.Elements() {
		el := e.Elements()
		var p [2]float64
		if len(el) > 0 {
			p[0] = el[0].Number()
		}
		if len(el) > 1 {
			p[1] = el[1].Number()
		}
		out = append(out, p)
	}
	return out
}

// PointList3D reads a vector-of-3-vectors parameter (polyhedron points).
func PointList3D(v syntax.Value) [][3]float64 {
	if v.Kind() != syntax.KindVector {
		return nil
	}
	out := make([][3]float64, 0, len(v.Elements()))
	for _, e := range v.Elements() {
		el := e.Elements()
		var p [3]float64
		for i := 0; i < 3 && i < len(el); i++ {
			p[i] = el[i].Number()
		}
		out = append(out, p)
	}
	return out
}

// IndexList reads a vector-of-vector-of-number parameter (polyhedron faces)
// into index slices.
func IndexList(v syntax.Value) [][]int {
	if v.Kind() != syntax.KindVector {
		return nil
	}
	out := make([][]int, 0, len(v.Elements()))
	for _, e := range v.Elements() {
		el := e.Elements()
		face := make([]int, len(el))
		for i, n := range el {
			face[i] = int(n.Number())
		}
		out = append(out, face)
	}
	return out
}
