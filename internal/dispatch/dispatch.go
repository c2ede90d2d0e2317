package dispatch

import (
	"github.com/dekarrin/scadkernel/internal/fragment"
	"github.com/dekarrin/scadkernel/internal/kernel"
	"github.com/dekarrin/scadkernel/internal/syntax"
)

// Fragments is the $fn/$fa/$fs triple in effect at a call site, resolved by
// the caller (the statement evaluator) from the environment before
// dispatching, with any per-call $fn/$fa/$fs named arguments already
// layered on top.
type Fragments struct{ Fn, Fa, Fs float64 }

func (f Fragments) segments(radius float64) int {
	return fragment.Count(radius, f.Fn, f.Fa, f.Fs)
}

// Dispatcher turns resolved call arguments into kernel operations. It holds
// no state beyond the kernel it drives.
type Dispatcher struct {
	K kernel.Kernel
}

// New builds a Dispatcher over the given kernel implementation.
func New(k kernel.Kernel) *Dispatcher {
	return &Dispatcher{K: k}
}

// Primitive dispatches a single built-in shape constructor by name.
func (d *Dispatcher) Primitive(op string, a Args, fr Fragments) *kernel.Handle {
	switch op {
	case "cube":
		size := a.Vec3([3]float64{1, 1, 1}, 0, "size")
		center := a.Bool(false, -1, "center")
		return d.K.Cube(kernel.Vec3{X: size[0], Y: size[1], Z: size[2]}, center)

	case "sphere":
		r := a.RadiusOrDiameter(1, 0)
		return d.K.Sphere(r, fr.segments(r))

	case "cylinder":
		h := a.Number(1, 0, "h", "height")
		r1 := a.RadiusOrDiameterNamed(1, "r1", "d1")
		r2 := a.RadiusOrDiameterNamed(1, "r2", "d2")
		// a positional/named r or d (no 1/2 suffix) sets both ends alike,
		// the shorthand for a uniform (non-frustum) cylinder.
		if v, ok := a.Resolve(1, "r", "radius"); ok {
			r1, r2 = v.Number(), v.Number()
		} else if v, ok := a.Resolve(-1, "d", "diameter"); ok {
			r1, r2 = v.Number()/2, v.Number()/2
		}
		center := a.Bool(false, -1, "center")
		seg := fr.segments(maxf(r1, r2))
		return d.K.Cylinder(h, r1, r2, seg, center)

	case "cone":
		h := a.Number(1, 0, "h", "height")
		r := a.RadiusOrDiameter(1, 1)
		center := a.Bool(false, -1, "center")
		return d.K.Cone(h, r, fr.segments(r), center)

	case "circle":
		r := a.RadiusOrDiameter(1, 0)
		return d.K.Circle(r, fr.segments(r))

	case "square":
		size := a.Vec2([2]float64{1, 1}, 0, "size")
		center := a.Bool(false, -1, "center")
		return d.K.Square(kernel.Vec2{X: size[0], Y: size[1]}, center)

	case "polygon":
		v, _ := a.Resolve(0, "points")
		pts := PointList2D(v)
		out := make([]kernel.Vec2, len(pts))
		for i, p := range pts {
			out[i] = kernel.Vec2{X: p[0], Y: p[1]}
		}
		return d.K.Polygon(out)

	case "polyhedron":
		pv, _ := a.Resolve(0, "points")
		fv, _ := a.Resolve(1, "faces", "triangles")
		pts := PointList3D(pv)
		out := make([]kernel.Vec3, len(pts))
		for i, p := range pts {
			out[i] = kernel.Vec3{X: p[0], Y: p[1], Z: p[2]}
		}
		return d.K.Polyhedron(out, IndexList(fv))

	case "text":
		s := a.String("", 0, "text")
		size := a.Number(10, -1, "size")
		return d.K.Text(s, size)

	case "surface":
		hv, _ := a.Resolve(-1, "heights")
		heights := make([][]float64, 0, len(hv.Elements()))
		for _, row := range hv.Elements() {
			r := make([]float64, 0, len(row.Elements()))
			for _, c := range row.Elements() {
				r = append(r, c.Number())
			}
			heights = append(heights, r)
		}
		cellSize := a.Number(1, -1, "cell_size")
		center := a.Bool(false, -1, "center")
		invert := a.Bool(false, -1, "invert")
		return d.K.Surface(heights, cellSize, center, invert)

	default:
		return nil
	}
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

// Transform dispatches a single affine/extrusion transform by name,
// applying it to child (the already-combined union of the call's children).
func (d *Dispatcher) Transform(op string, a Args, fr Fragments, child *kernel.Handle) *kernel.Handle {
	switch op {
	case "translate":
		v := a.Vec3([3]float64{0, 0, 0}, 0)
		return d.K.Translate(child, kernel.Vec3{X: v[0], Y: v[1], Z: v[2]})

	case "rotate":
		if ang, ok := a.Resolve(0, "a"); ok && ang.Kind() == syntax.KindNumber {
			axis := a.Vec3([3]float64{0, 0, 1}, 1, "v")
			return d.K.RotateAroundAxis(child, ang.Number(), kernel.Vec3{X: axis[0], Y: axis[1], Z: axis[2]})
		}
		v := a.Vec3([3]float64{0, 0, 0}, 0, "a")
		return d.K.Rotate(child, kernel.Vec3{X: v[0], Y: v[1], Z: v[2]})

	case "scale":
		v := a.Vec3([3]float64{1, 1, 1}, 0, "v")
		return d.K.Scale(child, kernel.Vec3{X: v[0], Y: v[1], Z: v[2]})

	case "mirror":
		v := a.Vec3([3]float64{1, 0, 0}, 0, "v")
		return d.K.Mirror(child, kernel.Vec3{X: v[0], Y: v[1], Z: v[2]})

	case "multmatrix":
		mv, _ := a.Resolve(0, "m")
		flat := make([]float64, 0, 16)
		for _, row := range mv.Elements() {
			for _, c := range row.Elements() {
				flat = append(flat, c.Number())
			}
		}
		return d.K.Multmatrix(child, kernel.MatrixFromFlat16(flat))

	case "resize":
		v := a.Vec3([3]float64{0, 0, 0}, 0, "newsize")
		autoV, _ := a.Resolve(-1, "auto")
		var auto [3]bool
		if autoV.Kind() == syntax.KindBool {
			auto = [3]bool{autoV.Bool(), autoV.Bool(), autoV.Bool()}
		} else if els := autoV.Elements(); len(els) > 0 {
			for i := 0; i < 3 && i < len(els); i++ {
				auto[i] = els[i].Bool()
			}
		}
		return d.K.Resize(child, kernel.Vec3{X: v[0], Y: v[1], Z: v[2]}, auto)

	case "color":
		c, ok := ParseColor(a)
		if !ok {
			return child
		}
		return d.K.WithColor(child, c)

	case "linear_extrude":
		height := a.Number(1, -1, "height")
		twist := a.Number(0, -1, "twist")
		scale := a.Number(1, -1, "scale")
		slices := int(a.Number(1, -1, "slices"))
		if slices < 1 {
			slices = fr.segments(1)
		}
		return d.K.LinearExtrude(child, height, twist, scale, slices)

	case "rotate_extrude":
		angle := a.Number(360, -1, "angle")
		return d.K.RotateExtrude(child, angle, fr.segments(1))

	case "projection":
		cut := a.Bool(false, -1, "cut")
		return d.K.Project3DTo2D(child, cut, 0)

	case "offset":
		delta := a.Number(0, 0, "r", "delta")
		chamfer := a.Bool(false, -1, "chamfer")
		return d.K.Offset2D(child, delta, chamfer, fr.segments(delta))

	default:
		return child
	}
}

// Boolean dispatches a CSG combination by name over an already-evaluated
// set of child handles.
func (d *Dispatcher) Boolean(op string, children []*kernel.Handle) *kernel.Handle {
	switch op {
	case "union":
		return d.K.UnionMultiple(children)
	case "difference":
		if len(children) == 0 {
			return nil
		}
		acc := children[0]
		for _, c := range children[1:] {
			acc = d.K.Subtract(acc, c)
		}
		return acc
	case "intersection":
		if len(children) == 0 {
			return nil
		}
		acc := children[0]
		for _, c := range children[1:] {
			acc = d.K.Intersect(acc, c)
		}
		return acc
	case "hull":
		return d.K.Hull(children)
	case "minkowski":
		if len(children) == 0 {
			return nil
		}
		acc := children[0]
		for _, c := range children[1:] {
			acc = d.K.Minkowski(acc, c)
		}
		return acc
	default:
		return d.K.UnionMultiple(children)
	}
}
