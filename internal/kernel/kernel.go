package kernel

import (
	"fmt"
	"math"
	"sync/atomic"

	"golang.org/x/text/width"
)

// Color is an RGBA color stamped onto a handle's side-band metadata. Channels
// are clamped to [0,1] by ColorOf.
type Color struct{ R, G, B, A float64 }

// ColorOf clamps each channel into [0,1].
func ColorOf(r, g, b, a float64) Color {
	clamp := func(x float64) float64 {
		if x < 0 {
			return 0
		}
		if x > 1 {
			return 1
		}
		return x
	}
	return Color{clamp(r), clamp(g), clamp(b), clamp(a)}
}

// Handle is an opaque, immutable geometry reference. Two handles are never
// equal by value; identity is what the evaluator tracks. is2D distinguishes
// a 2D cross-section (produced by projection/offset/the 2D primitives)
// from a solid, since several operations (extrusion, boolean) require one
// or the other.
type Handle struct {
	id       uint64
	polys    []polygon
	outline2D []Vec2 // populated only when is2D
	is2D     bool
	color    *Color
	modifier string
}

var handleCounter uint64

func newHandle(polys []polygon, is2D bool) *Handle {
	return &Handle{id: atomic.AddUint64(&handleCounter, 1), polys: polys, is2D: is2D}
}

// Mesh is the interchange format the evaluator serializes into a job result.
type Mesh struct {
	Vertices []float32
	Indices  []uint32
	Normals  []float32
	Bounds   Bounds
	Stats    Stats
	Color    *Color
	Modifier string
}

// Bounds is the axis-aligned bounding box of a Mesh's vertices.
type Bounds struct {
	Min, Max [3]float32
}

// Stats carries the summary counts callers commonly want without re-deriving
// them from the raw arrays.
type Stats struct {
	VertexCount int
	FaceCount   int
}

// Kernel is the CSG contract the statement evaluator dispatches through. It
// is declared as an interface, with Reference the only implementation, so
// that the evaluator never depends on Reference's internals directly.
type Kernel interface {
	Cube(size Vec3, center bool) *Handle
	Sphere(r float64, segments int) *Handle
	Cylinder(h, r1, r2 float64, segments int, center bool) *Handle
	Cone(h, r float64, segments int, center bool) *Handle
	Polygon(points []Vec2) *Handle
	Polyhedron(points []Vec3, faces [][]int) *Handle
	Circle(r float64, segments int) *Handle
	Square(size Vec2, center bool) *Handle
	Text(s string, size float64) *Handle
	Surface(heights [][]float64, cellSize float64, center, invert bool) *Handle

	Translate(h *Handle, v Vec3) *Handle
	Rotate(h *Handle, euler Vec3) *Handle
	RotateAroundAxis(h *Handle, angle float64, axis Vec3) *Handle
	Scale(h *Handle, v Vec3) *Handle
	Mirror(h *Handle, normal Vec3) *Handle
	Multmatrix(h *Handle, m Matrix4) *Handle
	Resize(h *Handle, newSize Vec3, auto [3]bool) *Handle
	WithColor(h *Handle, c Color) *Handle
	WithModifier(h *Handle, kind string) *Handle

	Union(a, b *Handle) *Handle
	UnionMultiple(hs []*Handle) *Handle
	Subtract(a, b *Handle) *Handle
	Intersect(a, b *Handle) *Handle
	Hull(hs []*Handle) *Handle
	Minkowski(a, b *Handle) *Handle

	LinearExtrude(h2d *Handle, height, twist, scale float64, slices int) *Handle
	RotateExtrude(h2d *Handle, angle float64, segments int) *Handle
	Project3DTo2D(h *Handle, cut bool, z float64) *Handle
	Slice3DTo2D(h *Handle, z float64) *Handle
	Offset2D(h2d *Handle, delta float64, chamfer bool, segments int) *Handle

	ToMesh(h *Handle) Mesh
	Status(h *Handle) error
}

// Reference is the kernel's one concrete implementation: a BSP-tree mesh
// boolean engine with an incremental convex-hull builder for hull() and a
// deliberately simple (not physically exact) approximation for minkowski
// and 2D offset, consistent with the contract's "implementation-defined"
// allowance for those two operations.
type Reference struct{}

// NewReference constructs the reference kernel. It is stateless: every
// method is a pure function of its arguments and the handles it is given.
func NewReference() *Reference { return &Reference{} }

func (k *Reference) Cube(size Vec3, center bool) *Handle {
	return newHandle(buildCube(size, center), false)
}

func (k *Reference) Sphere(r float64, segments int) *Handle {
	return newHandle(buildUVSphere(r, segments), false)
}

func (k *Reference) Cylinder(h, r1, r2 float64, segments int, center bool) *Handle {
	return newHandle(buildCylinder(h, r1, r2, segments, center), false)
}

func (k *Reference) Cone(h, r float64, segments int, center bool) *Handle {
	return newHandle(buildCylinder(h, r, 0, segments, center), false)
}

func (k *Reference) Polygon(points []Vec2) *Handle {
	hd := newHandle(nil, true)
	hd.outline2D = points
	return hd
}

func (k *Reference) Polyhedron(points []Vec3, faces [][]int) *Handle {
	return newHandle(buildPolyhedron(points, faces), false)
}

func (k *Reference) Circle(r float64, segments int) *Handle {
	hd := newHandle(nil, true)
	hd.outline2D = buildCircle2D(r, segments)
	return hd
}

func (k *Reference) Square(size Vec2, center bool) *Handle {
	hd := newHandle(nil, true)
	hd.outline2D = buildSquare2D(size, center)
	return hd
}

// Text approximates a string's footprint as a flat rectangle sized by
// summed glyph advances: real glyph outlines need a font/shaping library,
// which the dependency corpus does not carry, so each rune's advance is
// looked up by East Asian width class instead — wide/fullwidth runes get a
// full em, everything else gets 0.6em, matching the common monospace
// convention without depending on outline font data.
func (k *Reference) Text(s string, size float64) *Handle {
	total := 0.0
	for _, r := range s {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			total += size
		default:
			total += size * 0.6
		}
	}
	hd := newHandle(nil, true)
	hd.outline2D = buildSquare2D(Vec2{total, size}, false)
	return hd
}

// Surface builds a grid-sampled heightmap mesh, one quad per cell.
func (k *Reference) Surface(heights [][]float64, cellSize float64, center, invert bool) *Handle {
	if len(heights) == 0 {
		return newHandle(nil, false)
	}
	rows := len(heights)
	cols := len(heights[0])
	var ox, oy float64
	if center {
		ox, oy = -float64(cols)*cellSize/2, -float64(rows)*cellSize/2
	}
	h := func(r, c int) float64 {
		v := heights[r][c]
		if invert {
			return -v
		}
		return v
	}
	var polys []polygon
	for r := 0; r < rows-1; r++ {
		for c := 0; c < cols-1; c++ {
			p00 := Vec3{ox + float64(c)*cellSize, oy + float64(r)*cellSize, h(r, c)}
			p10 := Vec3{ox + float64(c+1)*cellSize, oy + float64(r)*cellSize, h(r, c+1)}
			p11 := Vec3{ox + float64(c+1)*cellSize, oy + float64(r+1)*cellSize, h(r+1, c+1)}
			p01 := Vec3{ox + float64(c)*cellSize, oy + float64(r+1)*cellSize, h(r+1, c)}
			n := p10.Sub(p00).Cross(p01.Sub(p00)).Normalize()
			verts := []vertex{{p00, n}, {p10, n}, {p11, n}, {p01, n}}
			polys = append(polys, triangulate(newPolygon(verts, nil))...)
		}
	}
	return newHandle(polys, false)
}

func (k *Reference) withTransform(h *Handle, m Matrix4, recomputeNormals bool) *Handle {
	if h == nil {
		return nil
	}
	out := newHandle(transformPolygons(h.polys, m, recomputeNormals), h.is2D)
	if h.is2D {
		out.outline2D = transform2D(h.outline2D, m)
	}
	out.color = h.color
	out.modifier = h.modifier
	return out
}

func transform2D(pts []Vec2, m Matrix4) []Vec2 {
	out := make([]Vec2, len(pts))
	for i, p := range pts {
		v := m.Apply(Vec3{p.X, p.Y, 0})
		out[i] = Vec2{v.X, v.Y}
	}
	return out
}

func (k *Reference) Translate(h *Handle, v Vec3) *Handle {
	return k.withTransform(h, Translation(v), false)
}
func (k *Reference) Rotate(h *Handle, euler Vec3) *Handle {
	return k.withTransform(h, RotationEulerXYZDegrees(euler), false)
}
func (k *Reference) RotateAroundAxis(h *Handle, angle float64, axis Vec3) *Handle {
	return k.withTransform(h, RotationAroundAxisDegrees(angle, axis), false)
}
func (k *Reference) Scale(h *Handle, v Vec3) *Handle {
	return k.withTransform(h, ScaleMatrix(v), true)
}
func (k *Reference) Mirror(h *Handle, normal Vec3) *Handle {
	return k.withTransform(h, MirrorMatrix(normal), true)
}
func (k *Reference) Multmatrix(h *Handle, m Matrix4) *Handle {
	return k.withTransform(h, m, true)
}

// Resize rescales h so its bounding box matches newSize on every axis where
// auto[i] is false and newSize[i] > 0; axes with auto[i] true are scaled by
// the same factor as the first non-auto axis, to preserve aspect ratio.
func (k *Reference) Resize(h *Handle, newSize Vec3, auto [3]bool) *Handle {
	if h == nil {
		return nil
	}
	min, max := boundsOf(h.polys)
	cur := [3]float64{max.X - min.X, max.Y - min.Y, max.Z - min.Z}
	want := [3]float64{newSize.X, newSize.Y, newSize.Z}
	factor := [3]float64{1, 1, 1}
	uniform := 1.0
	haveUniform := false
	for i := 0; i < 3; i++ {
		if !auto[i] && want[i] > 0 && cur[i] > 0 {
			factor[i] = want[i] / cur[i]
			if !haveUniform {
				uniform = factor[i]
			}
			haveUniform = true
		}
	}
	if haveUniform {
		for i := 0; i < 3; i++ {
			if auto[i] {
				factor[i] = uniform
			}
		}
	}
	return k.withTransform(h, ScaleMatrix(Vec3{factor[0], factor[1], factor[2]}), true)
}

func (k *Reference) WithColor(h *Handle, c Color) *Handle {
	if h == nil {
		return nil
	}
	out := *h
	out.id = atomic.AddUint64(&handleCounter, 1)
	out.color = &c
	return &out
}

func (k *Reference) WithModifier(h *Handle, kind string) *Handle {
	if h == nil {
		return nil
	}
	out := *h
	out.id = atomic.AddUint64(&handleCounter, 1)
	out.modifier = kind
	return &out
}

func (k *Reference) Union(a, b *Handle) *Handle {
	return k.UnionMultiple([]*Handle{a, b})
}

func (k *Reference) UnionMultiple(hs []*Handle) *Handle {
	var acc []polygon
	var firstColor *Color
	for _, h := range hs {
		if h == nil {
			continue
		}
		if firstColor == nil {
			firstColor = h.color
		}
		if acc == nil {
			acc = h.polys
			continue
		}
		acc = csgUnion(acc, h.polys)
	}
	out := newHandle(acc, false)
	out.color = firstColor
	return out
}

func (k *Reference) Subtract(a, b *Handle) *Handle {
	if a == nil {
		return nil
	}
	if b == nil {
		return a
	}
	out := newHandle(csgSubtract(a.polys, b.polys), false)
	out.color = a.color
	return out
}

func (k *Reference) Intersect(a, b *Handle) *Handle {
	if a == nil || b == nil {
		return newHandle(nil, false)
	}
	out := newHandle(csgIntersect(a.polys, b.polys), false)
	out.color = a.color
	return out
}

// Hull computes the 3D convex hull of every vertex across all input handles,
// incrementally: start from a tetrahedron and add points one at a time,
// removing faces the new point can see and re-triangulating the resulting
// hole (the standard incremental hull construction).
func (k *Reference) Hull(hs []*Handle) *Handle {
	var pts []Vec3
	var firstColor *Color
	for _, h := range hs {
		if h == nil {
			continue
		}
		if firstColor == nil {
			firstColor = h.color
		}
		for _, p := range h.polys {
			for _, v := range p.Verts {
				pts = append(pts, v.Pos)
			}
		}
	}
	out := newHandle(incrementalHull(pts), false)
	out.color = firstColor
	return out
}

// Minkowski sums two handles by, for every vertex pair (p in a, q in b),
// emitting the translated copy of b's hull by p, then taking the union and
// finally the convex hull of the result. This is an approximation — the
// contract documents minkowski as implementation-defined — that is exact
// when both operands are themselves convex, and a conservative
// (slightly-larger) superset otherwise.
func (k *Reference) Minkowski(a, b *Handle) *Handle {
	if a == nil || b == nil {
		return newHandle(nil, false)
	}
	var acc []polygon
	for _, v := range uniqueVerts(a.polys) {
		shifted := transformPolygons(b.polys, Translation(v), false)
		if acc == nil {
			acc = shifted
		} else {
			acc = append(acc, shifted...)
		}
	}
	var pts []Vec3
	for _, p := range acc {
		for _, v := range p.Verts {
			pts = append(pts, v.Pos)
		}
	}
	out := newHandle(incrementalHull(pts), false)
	out.color = a.color
	return out
}

func uniqueVerts(polys []polygon) []Vec3 {
	seen := map[Vec3]bool{}
	var out []Vec3
	for _, p := range polys {
		for _, v := range p.Verts {
			if !seen[v.Pos] {
				seen[v.Pos] = true
				out = append(out, v.Pos)
			}
		}
	}
	return out
}

func (k *Reference) LinearExtrude(h2d *Handle, height, twist, scale float64, slices int) *Handle {
	if h2d == nil {
		return newHandle(nil, false)
	}
	return newHandle(extrudePolygon2D(h2d.outline2D, height, twist, scale, slices), false)
}

func (k *Reference) RotateExtrude(h2d *Handle, angle float64, segments int) *Handle {
	if h2d == nil {
		return newHandle(nil, false)
	}
	return newHandle(revolvePolygon2D(h2d.outline2D, angle, segments), false)
}

// Project3DTo2D drops a solid to a flat 2D outline: if cut, by slicing the
// plane z=zVal; otherwise by flattening every vertex to z=0 and taking the
// convex hull of the footprint (an orthographic-shadow approximation; an
// exact concave silhouette needs 2D boolean union, out of scope here).
func (k *Reference) Project3DTo2D(h *Handle, cut bool, z float64) *Handle {
	if cut {
		return k.Slice3DTo2D(h, z)
	}
	if h == nil {
		return newHandle(nil, true)
	}
	var pts []Vec3
	for _, p := range h.polys {
		for _, v := range p.Verts {
			pts = append(pts, Vec3{v.Pos.X, v.Pos.Y, 0})
		}
	}
	hullPolys := incrementalHull(pts)
	out := newHandle(nil, true)
	out.outline2D = footprintOutline(hullPolys)
	return out
}

// Slice3DTo2D intersects h with the plane z=zVal and returns the convex
// hull of the intersection points as a 2D outline.
func (k *Reference) Slice3DTo2D(h *Handle, zVal float64) *Handle {
	out := newHandle(nil, true)
	if h == nil {
		return out
	}
	pl := plane{Normal: Vec3{0, 0, 1}, W: zVal}
	var pts []Vec2
	for _, p := range h.polys {
		n := len(p.Verts)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			vi, vj := p.Verts[i], p.Verts[j]
			_, di := pl.classify(vi.Pos)
			_, dj := pl.classify(vj.Pos)
			if (di >= 0) != (dj >= 0) {
				t := di / (di - dj)
				ip := vi.Pos.Lerp(vj.Pos, t)
				pts = append(pts, Vec2{ip.X, ip.Y})
			}
		}
	}
	out.outline2D = convexHull2D(pts)
	return out
}

// Offset2D grows or shrinks a 2D outline by moving each vertex delta along
// the average of its two adjacent edge normals. chamfer and segments are not
// used: there is no separate round or miter join and no arc insertion. A
// handle with no 2D outline (including a 3D solid) yields an empty 2D
// handle; nothing is projected or re-extruded.
func (k *Reference) Offset2D(h2d *Handle, delta float64, chamfer bool, segments int) *Handle {
	out := newHandle(nil, true)
	if h2d == nil || len(h2d.outline2D) < 3 {
		return out
	}
	out.outline2D = offsetOutline(h2d.outline2D, delta)
	return out
}

func (k *Reference) ToMesh(h *Handle) Mesh {
	if h == nil {
		return Mesh{}
	}
	var polys []polygon
	for _, p := range h.polys {
		polys = append(polys, triangulate(p)...)
	}
	var verts []float32
	var norms []float32
	var idx []uint32
	var n uint32
	for _, p := range polys {
		if len(p.Verts) != 3 {
			continue
		}
		for _, v := range p.Verts {
			verts = append(verts, float32(v.Pos.X), float32(v.Pos.Y), float32(v.Pos.Z))
			normal := v.Normal
			if normal == (Vec3{}) {
				normal = p.Plane.Normal
			}
			norms = append(norms, float32(normal.X), float32(normal.Y), float32(normal.Z))
			idx = append(idx, n)
			n++
		}
	}
	min, max := boundsOf(polys)
	mesh := Mesh{
		Vertices: verts,
		Indices:  idx,
		Normals:  norms,
		Bounds: Bounds{
			Min: [3]float32{float32(min.X), float32(min.Y), float32(min.Z)},
			Max: [3]float32{float32(max.X), float32(max.Y), float32(max.Z)},
		},
		Stats: Stats{VertexCount: len(verts) / 3, FaceCount: len(idx) / 3},
		Color: h.color,
	}
	if h.modifier != "" {
		mesh.Modifier = h.modifier
	}
	return mesh
}

// Status reports whether h's mesh looks manifold: every edge must be shared
// by exactly two triangles (once in each winding direction). This is a
// necessary, not sufficient, manifold check.
func (k *Reference) Status(h *Handle) error {
	if h == nil {
		return nil
	}
	type edgeKey struct{ a, b Vec3 }
	counts := map[edgeKey]int{}
	for _, p := range h.polys {
		tris := triangulate(p)
		for _, t := range tris {
			n := len(t.Verts)
			for i := 0; i < n; i++ {
				j := (i + 1) % n
				a, b := t.Verts[i].Pos, t.Verts[j].Pos
				counts[edgeKey{a, b}]++
			}
		}
	}
	for e, c := range counts {
		twin := edgeKey{e.b, e.a}
		if counts[twin] != c {
			return fmt.Errorf("non-manifold edge between %v and %v", e.a, e.b)
		}
	}
	return nil
}

func footprintOutline(polys []polygon) []Vec2 {
	var pts []Vec2
	for _, p := range polys {
		for _, v := range p.Verts {
			pts = append(pts, Vec2{v.Pos.X, v.Pos.Y})
		}
	}
	return convexHull2D(pts)
}

func offsetOutline(outline []Vec2, delta float64) []Vec2 {
	n := len(outline)
	normals := make([]Vec2, n)
	for i := range outline {
		j := (i + 1) % n
		dx, dy := outline[j].X-outline[i].X, outline[j].Y-outline[i].Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			continue
		}
		normals[i] = Vec2{dy / l, -dx / l}
	}
	out := make([]Vec2, n)
	for i := range outline {
		prev := (i - 1 + n) % n
		avg := Vec2{(normals[prev].X + normals[i].X) / 2, (normals[prev].Y + normals[i].Y) / 2}
		l := math.Hypot(avg.X, avg.Y)
		if l == 0 {
			out[i] = outline[i]
			continue
		}
		avg = Vec2{avg.X / l, avg.Y / l}
		out[i] = Vec2{outline[i].X + avg.X*delta, outline[i].Y + avg.Y*delta}
	}
	return out
}
