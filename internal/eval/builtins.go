package eval

import (
	"math"
	"strconv"
	"strings"

	"github.com/dekarrin/scadkernel/internal/syntax"
)

// builtinFunc is a built-in expression-position function: a fixed Go
// implementation over already-evaluated argument Values.
type builtinFunc func(e *Evaluator, args []syntax.Value) syntax.Value

func arg(args []syntax.Value, i int) syntax.Value {
	if i < len(args) {
		return args[i]
	}
	return syntax.Undef
}

var builtins map[string]builtinFunc

func init() {
	builtins = map[string]builtinFunc{
		"abs":   func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(math.Abs(arg(a, 0).Number())) },
		"ceil":  func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(math.Ceil(arg(a, 0).Number())) },
		"floor": func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(math.Floor(arg(a, 0).Number())) },
		"round": func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(math.Round(arg(a, 0).Number())) },
		"sqrt":  func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(math.Sqrt(arg(a, 0).Number())) },
		"exp":   func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(math.Exp(arg(a, 0).Number())) },
		"ln":    func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(math.Log(arg(a, 0).Number())) },
		"log":   func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(math.Log10(arg(a, 0).Number())) },
		"sign": func(e *Evaluator, a []syntax.Value) syntax.Value {
			n := arg(a, 0).Number()
			switch {
			case n > 0:
				return syntax.NumberOf(1)
			case n < 0:
				return syntax.NumberOf(-1)
			default:
				return syntax.NumberOf(0)
			}
		},
		"pow": func(e *Evaluator, a []syntax.Value) syntax.Value {
			return syntax.NumberOf(math.Pow(arg(a, 0).Number(), arg(a, 1).Number()))
		},
		"min": func(e *Evaluator, a []syntax.Value) syntax.Value { return foldNumeric(a, math.Min) },
		"max": func(e *Evaluator, a []syntax.Value) syntax.Value { return foldNumeric(a, math.Max) },

		"sin":   func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(e.trig("sin", arg(a, 0).Number(), func(r float64) float64 { return math.Sin(r) })) },
		"cos":   func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(e.trig("cos", arg(a, 0).Number(), func(r float64) float64 { return math.Cos(r) })) },
		"tan":   func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(e.trig("tan", arg(a, 0).Number(), func(r float64) float64 { return math.Tan(r) })) },
		"asin":  func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(deg(math.Asin(arg(a, 0).Number()))) },
		"acos":  func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(deg(math.Acos(arg(a, 0).Number()))) },
		"atan":  func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(deg(math.Atan(arg(a, 0).Number()))) },
		"atan2": func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(deg(math.Atan2(arg(a, 0).Number(), arg(a, 1).Number()))) },

		"norm": func(e *Evaluator, a []syntax.Value) syntax.Value {
			var sum float64
			for _, el := range arg(a, 0).Elements() {
				n := el.Number()
				sum += n * n
			}
			return syntax.NumberOf(math.Sqrt(sum))
		},
		"cross": func(e *Evaluator, a []syntax.Value) syntax.Value {
			x := arg(a, 0).Elements()
			y := arg(a, 1).Elements()
			if len(x) != 3 || len(y) != 3 {
				return syntax.Undef
			}
			return syntax.VectorOf([]syntax.Value{
				syntax.NumberOf(x[1].Number()*y[2].Number() - x[2].Number()*y[1].Number()),
				syntax.NumberOf(x[2].Number()*y[0].Number() - x[0].Number()*y[2].Number()),
				syntax.NumberOf(x[0].Number()*y[1].Number() - x[1].Number()*y[0].Number()),
			})
		},
		"concat": func(e *Evaluator, a []syntax.Value) syntax.Value {
			var out []syntax.Value
			for _, v := range a {
				out = append(out, v.Elements()...)
			}
			return syntax.VectorOf(out)
		},
		"len": func(e *Evaluator, a []syntax.Value) syntax.Value { return syntax.NumberOf(float64(arg(a, 0).Len())) },
		"str": func(e *Evaluator, a []syntax.Value) syntax.Value {
			var sb strings.Builder
			for _, v := range a {
				sb.WriteString(v.String())
			}
			return syntax.StringOf(sb.String())
		},
		"chr": func(e *Evaluator, a []syntax.Value) syntax.Value {
			return syntax.StringOf(string(rune(int(arg(a, 0).Number()))))
		},
		"ord": func(e *Evaluator, a []syntax.Value) syntax.Value {
			s := []rune(arg(a, 0).String())
			if len(s) == 0 {
				return syntax.Undef
			}
			return syntax.NumberOf(float64(s[0]))
		},
		"search": builtinSearch,
		"lookup": builtinLookup,
		"rands":  builtinRands,
	}
}

func deg(rad float64) float64 { return rad * 180 / math.Pi }

// trig memoizes a degree-mode trig call in the evaluator's trig cache,
// keyed by function name and argument, per the fragment-heavy tessellation
// loops that call these with the same handful of angles repeatedly.
func (e *Evaluator) trig(name string, degrees float64, f func(rad float64) float64) float64 {
	key := name + ":" + strconv.FormatFloat(degrees, 'f', -1, 64)
	if e.Caches != nil {
		if v, ok := e.Caches.Trig.Get(key); ok {
			return v
		}
	}
	v := f(degrees * math.Pi / 180)
	if e.Caches != nil {
		e.Caches.Trig.Add(key, v)
	}
	return v
}

func foldNumeric(a []syntax.Value, op func(x, y float64) float64) syntax.Value {
	vals := a
	if len(a) == 1 && a[0].Kind() == syntax.KindVector {
		vals = a[0].Elements()
	}
	if len(vals) == 0 {
		return syntax.Undef
	}
	acc := vals[0].Number()
	for _, v := range vals[1:] {
		acc = op(acc, v.Number())
	}
	return syntax.NumberOf(acc)
}

// builtinSearch implements the language's search(match, list[, num_returns
// [, index_col]]) builtin: finds every index in list whose element (or
// element[index_col] for a list-of-vectors haystack) equals match, up to
// num_returns matches (0 = unlimited).
func builtinSearch(e *Evaluator, a []syntax.Value) syntax.Value {
	match := arg(a, 0)
	haystack := arg(a, 1).Elements()
	numReturns := 1
	if len(a) > 2 {
		numReturns = int(a[2].Number())
	}
	indexCol := 0
	if len(a) > 3 {
		indexCol = int(a[3].Number())
	}

	elemAt := func(v syntax.Value) syntax.Value {
		if v.Kind() == syntax.KindVector {
			el := v.Elements()
			if indexCol < len(el) {
				return el[indexCol]
			}
			return syntax.Undef
		}
		return v
	}

	var found []syntax.Value
	for i, v := range haystack {
		if elemAt(v).Equal(match) {
			found = append(found, syntax.NumberOf(float64(i)))
			if numReturns > 0 && len(found) >= numReturns {
				break
			}
		}
	}
	if numReturns == 1 {
		if len(found) == 0 {
			return syntax.VectorOf(nil)
		}
		return syntax.VectorOf(found[:1])
	}
	return syntax.VectorOf(found)
}

// builtinLookup implements lookup(key, table): table is a vector of
// [key, value] pairs sorted by key; this does a linear scan and linearly
// interpolates between the two bracketing entries.
func builtinLookup(e *Evaluator, a []syntax.Value) syntax.Value {
	key := arg(a, 0).Number()
	table := arg(a, 1).Elements()
	if len(table) == 0 {
		return syntax.Undef
	}
	type pt struct{ k, v float64 }
	pts := make([]pt, 0, len(table))
	for _, row := range table {
		el := row.Elements()
		if len(el) < 2 {
			continue
		}
		pts = append(pts, pt{el[0].Number(), el[1].Number()})
	}
	if len(pts) == 0 {
		return syntax.Undef
	}
	if key <= pts[0].k {
		return syntax.NumberOf(pts[0].v)
	}
	if key >= pts[len(pts)-1].k {
		return syntax.NumberOf(pts[len(pts)-1].v)
	}
	for i := 1; i < len(pts); i++ {
		if key <= pts[i].k {
			lo, hi := pts[i-1], pts[i]
			if hi.k == lo.k {
				return syntax.NumberOf(lo.v)
			}
			t := (key - lo.k) / (hi.k - lo.k)
			return syntax.NumberOf(lo.v + t*(hi.v-lo.v))
		}
	}
	return syntax.NumberOf(pts[len(pts)-1].v)
}

// builtinRands implements rands(min, max, count[, seed]) using the
// language's documented linear congruential generator (multiplier 1664525,
// increment 1013904223, modulus 2^32), seeded deterministically from the
// seed argument (or from a fixed default when omitted), so that two
// evaluations of the same script with the same explicit seed reproduce
// identical output.
func builtinRands(e *Evaluator, a []syntax.Value) syntax.Value {
	min := arg(a, 0).Number()
	max := arg(a, 1).Number()
	count := int(arg(a, 2).Number())
	if count < 0 {
		count = 0
	}
	var state uint32 = 0x2545F491
	if len(a) > 3 {
		state = uint32(int64(a[3].Number()))
	}
	const (
		lcgA = 1664525
		lcgC = 1013904223
	)
	out := make([]syntax.Value, count)
	for i := range out {
		state = state*lcgA + lcgC
		frac := float64(state) / float64(1<<32)
		out[i] = syntax.NumberOf(min + frac*(max-min))
	}
	return syntax.VectorOf(out)
}
