// Package syntax holds the kernel's runtime value model, the scoped
// environment, and the syntax/expression trees the parser builds and the
// evaluator walks.
package syntax

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies which variant of the Value sum type is populated.
type Kind int

const (
	KindUndef Kind = iota
	KindNumber
	KindBool
	KindString
	KindVector
	KindRange
	KindGeometry
)

func (k Kind) String() string {
	switch k {
	case KindUndef:
		return "undef"
	case KindNumber:
		return "number"
	case KindBool:
		return "bool"
	case KindString:
		return "string"
	case KindVector:
		return "vector"
	case KindRange:
		return "range"
	case KindGeometry:
		return "geometry"
	default:
		return "unknown"
	}
}

// Range is the (start, step, end) triple behind a SCAD range expression.
type Range struct {
	Start float64
	Step  float64
	End   float64
}

// Value is the runtime value of any SCAD expression: a tagged sum of number,
// bool, string, undef, vector, range, and geometry-handle. Only the field(s)
// that match Kind are meaningful.
//
// Value is immutable; every operation that would "change" a Value instead
// returns a new one.
type Value struct {
	kind Kind
	num  float64
	b    bool
	s    string
	vec  []Value
	rng  Range
	// geom holds an opaque geometry handle (a kernel.Handle in practice).
	// syntax does not depend on the kernel package, so the concrete type is
	// erased to any; callers that need it back type-assert.
	geom any
}

// Undef is the singular undef value.
var Undef = Value{kind: KindUndef}

// NumberOf builds a KindNumber Value.
func NumberOf(n float64) Value { return Value{kind: KindNumber, num: n} }

// BoolOf builds a KindBool Value.
func BoolOf(b bool) Value { return Value{kind: KindBool, b: b} }

// StringOf builds a KindString Value.
func StringOf(s string) Value { return Value{kind: KindString, s: s} }

// VectorOf builds a KindVector Value from already-evaluated elements.
func VectorOf(elems []Value) Value { return Value{kind: KindVector, vec: elems} }

// RangeOf builds a KindRange Value.
func RangeOf(r Range) Value { return Value{kind: KindRange, rng: r} }

// GeometryOf wraps an opaque geometry handle (a kernel.Handle) in a Value.
func GeometryOf(h any) Value { return Value{kind: KindGeometry, geom: h} }

// Kind returns which variant of the sum type is populated.
func (v Value) Kind() Kind { return v.kind }

// IsUndef reports whether v is the undef value.
func (v Value) IsUndef() bool { return v.kind == KindUndef }

// Geometry returns the wrapped handle and whether v actually holds one.
func (v Value) Geometry() (any, bool) {
	if v.kind != KindGeometry {
		return nil, false
	}
	return v.geom, true
}

// Elements returns the vector's elements, or nil if v is not a vector.
func (v Value) Elements() []Value {
	if v.kind != KindVector {
		return nil
	}
	return v.vec
}

// RangeTriple returns the range triple, or the zero Range if v is not a
// range.
func (v Value) RangeTriple() Range {
	if v.kind != KindRange {
		return Range{}
	}
	return v.rng
}

// Number coerces v to a float64 per the language's loose-typing rules:
// strings parse (0 on failure), bools are 0/1, undef and vectors are 0.
func (v Value) Number() float64 {
	switch v.kind {
	case KindNumber:
		return v.num
	case KindBool:
		if v.b {
			return 1
		}
		return 0
	case KindString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// Bool coerces v to a boolean per the truthiness rules: false, 0, undef, and
// the empty vector are falsy; everything else is truthy.
func (v Value) Bool() bool {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.num != 0
	case KindString:
		return true
	case KindUndef:
		return false
	case KindVector:
		return len(v.vec) > 0
	case KindRange:
		return true
	case KindGeometry:
		return true
	default:
		return false
	}
}

// String renders v the way it would be echoed, matching the source tool's
// display conventions for each type.
func (v Value) String() string {
	switch v.kind {
	case KindUndef:
		return "undef"
	case KindNumber:
		return formatNumber(v.num)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindString:
		return v.s
	case KindVector:
		parts := make([]string, len(v.vec))
		for i, e := range v.vec {
			parts[i] = e.Quoted()
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case KindRange:
		if v.rng.Step == 1 {
			return fmt.Sprintf("[%s:%s]", formatNumber(v.rng.Start), formatNumber(v.rng.End))
		}
		return fmt.Sprintf("[%s:%s:%s]", formatNumber(v.rng.Start), formatNumber(v.rng.Step), formatNumber(v.rng.End))
	case KindGeometry:
		return "<geometry>"
	default:
		return "?"
	}
}

// Quoted renders v the way it appears nested inside a vector's String(),
// where strings are wrapped in double quotes.
func (v Value) Quoted() string {
	if v.kind == KindString {
		return strconv.Quote(v.s)
	}
	return v.String()
}

func formatNumber(f float64) string {
	if math.IsNaN(f) {
		return "nan"
	}
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if f == math.Trunc(f) && math.Abs(f) < 1e15 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// Equal implements EqualTo with undef made absorbing: undef == undef is
// true, undef compared with anything else is false. Numbers compare
// bit-for-bit (via ==, which on float64 treats NaN as unequal to itself,
// matching IEEE-754 rather than a "deep equal" semantics). Vectors compare
// pointwise.
func (v Value) Equal(o Value) bool {
	if v.kind == KindUndef || o.kind == KindUndef {
		return v.kind == KindUndef && o.kind == KindUndef
	}
	if v.kind == KindVector || o.kind == KindVector {
		a, b := v.Elements(), o.Elements()
		if len(a) != len(b) {
			return false
		}
		for i := range a {
			if !a[i].Equal(b[i]) {
				return false
			}
		}
		return true
	}
	if v.kind == KindString || o.kind == KindString {
		return v.String() == o.String()
	}
	if v.kind == KindBool || o.kind == KindBool {
		return v.Bool() == o.Bool()
	}
	return v.Number() == o.Number()
}

// Negate returns the componentwise numeric negation of v.
func (v Value) Negate() Value {
	if v.kind == KindVector {
		out := make([]Value, len(v.vec))
		for i, e := range v.vec {
			out[i] = e.Negate()
		}
		return VectorOf(out)
	}
	return NumberOf(-v.Number())
}

// Not returns the logical negation of v.
func (v Value) Not() Value { return BoolOf(!v.Bool()) }

// arith applies a scalar binary numeric op across (vector,vector),
// (vector,scalar), and (scalar,scalar) operand shapes, per the "+/-/* accept
// vector and scalar pairs componentwise" rule. Mismatched vector lengths
// yield undef.
func arith(a, b Value, op func(x, y float64) float64) Value {
	if a.kind == KindVector && b.kind == KindVector {
		if len(a.vec) != len(b.vec) {
			return Undef
		}
		out := make([]Value, len(a.vec))
		for i := range a.vec {
			out[i] = arith(a.vec[i], b.vec[i], op)
		}
		return VectorOf(out)
	}
	if a.kind == KindVector {
		out := make([]Value, len(a.vec))
		for i := range a.vec {
			out[i] = arith(a.vec[i], b, op)
		}
		return VectorOf(out)
	}
	if b.kind == KindVector {
		out := make([]Value, len(b.vec))
		for i := range b.vec {
			out[i] = arith(a, b.vec[i], op)
		}
		return VectorOf(out)
	}
	return NumberOf(op(a.Number(), b.Number()))
}

// Add implements '+': string concatenation when either side is a string,
// otherwise componentwise/scalar numeric addition.
func (v Value) Add(o Value) Value {
	if v.kind == KindString || o.kind == KindString {
		return StringOf(v.String() + o.String())
	}
	return arith(v, o, func(x, y float64) float64 { return x + y })
}

// Subtract implements '-'.
func (v Value) Subtract(o Value) Value {
	return arith(v, o, func(x, y float64) float64 { return x - y })
}

// Multiply implements '*'.
func (v Value) Multiply(o Value) Value {
	return arith(v, o, func(x, y float64) float64 { return x * y })
}

// Divide implements '/' as plain IEEE division, including ±Inf and NaN.
func (v Value) Divide(o Value) Value {
	return arith(v, o, func(x, y float64) float64 { return x / y })
}

// Mod implements '%' as fmod.
func (v Value) Mod(o Value) Value {
	return arith(v, o, math.Mod)
}

// LessThan, LessEqual, GreaterThan, GreaterEqual implement the relational
// operators, always numeric.
func (v Value) LessThan(o Value) Value    { return BoolOf(v.Number() < o.Number()) }
func (v Value) LessEqual(o Value) Value   { return BoolOf(v.Number() <= o.Number()) }
func (v Value) GreaterThan(o Value) Value { return BoolOf(v.Number() > o.Number()) }
func (v Value) GreaterEqual(o Value) Value {
	return BoolOf(v.Number() >= o.Number())
}

// And, Or implement the short-circuit-at-the-evaluator logical operators;
// here they just combine already-evaluated operands.
func (v Value) And(o Value) Value { return BoolOf(v.Bool() && o.Bool()) }
func (v Value) Or(o Value) Value  { return BoolOf(v.Bool() || o.Bool()) }

// Len returns the length of a vector or string, or 0 for anything else.
func (v Value) Len() int {
	switch v.kind {
	case KindVector:
		return len(v.vec)
	case KindString:
		return len([]rune(v.s))
	default:
		return 0
	}
}
