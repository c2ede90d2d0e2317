// Package fragment is the single source of truth for how many tessellation
// segments a circular primitive gets. internal/dispatch calls Count here for
// every circular primitive and hands the result to the internal/kernel
// builders, which never compute their own segment count, so two primitives
// built with the same (radius, $fn, $fa, $fs) are guaranteed the same
// fragment count.
package fragment

import (
	"math"

	"github.com/dekarrin/scadkernel/internal/syntax"
)

// Defaults match the values the config/evaluator seed into the root
// environment when a script never sets $fn/$fa/$fs itself.
const (
	DefaultFn = 0.0
	DefaultFa = 12.0
	DefaultFs = 2.0
)

// Count computes the fragment count for a circular feature of the given
// radius under the three tessellation controls. When fn > 0 it fixes the
// count directly; otherwise the count is the larger of the angle-bound and
// chord-bound segment counts, floored at 5. The result is always >= 3 and a
// deterministic function of its inputs.
func Count(radius, fn, fa, fs float64) int {
	if fn > 0 {
		n := math.Floor(fn)
		if n < 3 {
			n = 3
		}
		return int(n)
	}

	var byAngle, byChord float64
	if fa > 0 {
		byAngle = math.Ceil(360 / fa)
	}
	if fs > 0 {
		byChord = math.Ceil(2 * math.Pi * math.Abs(radius) / fs)
	}

	n := math.Max(byAngle, byChord)
	if n < 5 {
		n = 5
	}
	return int(n)
}

// FromEnv reads $fn/$fa/$fs out of env and computes the fragment count for
// radius. Callers that already have the three numbers in hand should call
// Count directly; this exists for primitive builders that only have an
// environment frame.
func FromEnv(radius float64, env *syntax.Env) int {
	fn := env.Lookup("$fn").Number()
	fa := env.Lookup("$fa").Number()
	fs := env.Lookup("$fs").Number()
	return Count(radius, fn, fa, fs)
}
