package kernel

import "math"

// This file implements solid-geometry boolean operations over triangle soups
// using a BSP tree of convex polygon fragments, the same construction used
// by the well-known csg.js/OpenSCAD-adjacent lineage of CSG libraries: split
// polygons against each other's planes until every fragment lies cleanly in
// front of or behind every plane it's tested against, then recombine.

const planeEpsilon = 1e-7

type planeSide int

const (
	coplanar planeSide = iota
	front
	back
	spanning
)

// plane is the half-space boundary ax+by+cz=w, normal (a,b,c).
type plane struct {
	Normal Vec3
	W      float64
}

func planeFromPoints(a, b, c Vec3) plane {
	n := b.Sub(a).Cross(c.Sub(a)).Normalize()
	return plane{Normal: n, W: n.Dot(a)}
}

func (p plane) flip() plane { return plane{Normal: p.Normal.Neg(), W: -p.W} }

func (p plane) classify(v Vec3) (planeSide, float64) {
	d := p.Normal.Dot(v) - p.W
	switch {
	case d < -planeEpsilon:
		return back, d
	case d > planeEpsilon:
		return front, d
	default:
		return coplanar, d
	}
}

// vertex is a triangle fragment corner: position plus interpolated normal.
type vertex struct {
	Pos    Vec3
	Normal Vec3
}

func (v vertex) lerp(o vertex, t float64) vertex {
	return vertex{Pos: v.Pos.Lerp(o.Pos, t), Normal: v.Normal.Lerp(o.Normal, t).Normalize()}
}
func (v vertex) flip() vertex { return vertex{Pos: v.Pos, Normal: v.Normal.Neg()} }

// polygon is a convex, planar polygon fragment — a triangle at the leaves of
// every primitive builder, but CSG splitting can grow or shrink its vertex
// count.
type polygon struct {
	Verts []vertex
	Plane plane
	Color *Color
}

func newPolygon(verts []vertex, color *Color) polygon {
	p := polygon{Verts: verts, Color: color}
	if len(verts) >= 3 {
		p.Plane = planeFromPoints(verts[0].Pos, verts[1].Pos, verts[2].Pos)
	}
	return p
}

func (p polygon) flip() polygon {
	out := make([]vertex, len(p.Verts))
	for i, v := range p.Verts {
		out[len(p.Verts)-1-i] = v.flip()
	}
	return polygon{Verts: out, Plane: p.Plane.flip(), Color: p.Color}
}

// splitPolygon classifies poly against pl, appending results into the four
// output slices: coplanar fragments go to coplanarFront/Back by which way
// their shared normal points relative to pl, spanning polygons are clipped
// into a front part and a back part.
func splitPolygon(pl plane, poly polygon, coplanarFront, coplanarBack, frontOut, backOut *[]polygon) {
	types := make([]planeSide, len(poly.Verts))
	var polyType planeSide
	for i, v := range poly.Verts {
		t, _ := pl.classify(v.Pos)
		types[i] = t
		polyType |= t
	}

	switch polyType {
	case coplanar:
		if pl.Normal.Dot(poly.Plane.Normal) > 0 {
			*coplanarFront = append(*coplanarFront, poly)
		} else {
			*coplanarBack = append(*coplanarBack, poly)
		}
	case front:
		*frontOut = append(*frontOut, poly)
	case back:
		*backOut = append(*backOut, poly)
	default: // spanning
		var f, b []vertex
		n := len(poly.Verts)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			ti, vi := types[i], poly.Verts[i]
			tj, vj := types[j], poly.Verts[j]
			if ti != back {
				f = append(f, vi)
			}
			if ti != front {
				b = append(b, vi)
			}
			if (ti == front && tj == back) || (ti == back && tj == front) {
				_, di := pl.classify(vi.Pos)
				_, dj := pl.classify(vj.Pos)
				t := di / (di - dj)
				iv := vi.lerp(vj, t)
				f = append(f, iv)
				b = append(b, iv)
			}
		}
		if len(f) >= 3 {
			*frontOut = append(*frontOut, newPolygon(f, poly.Color))
		}
		if len(b) >= 3 {
			*backOut = append(*backOut, newPolygon(b, poly.Color))
		}
	}
}

// bspNode is one node of the BSP tree: a splitting plane, the polygons lying
// in that plane, and front/back subtrees.
type bspNode struct {
	Plane    *plane
	Front    *bspNode
	Back     *bspNode
	Polygons []polygon
}

func newBSPNode(polys []polygon) *bspNode {
	n := &bspNode{}
	if len(polys) > 0 {
		n.build(polys)
	}
	return n
}

func (n *bspNode) clone() *bspNode {
	if n == nil {
		return nil
	}
	c := &bspNode{Polygons: append([]polygon(nil), n.Polygons...)}
	if n.Plane != nil {
		p := *n.Plane
		c.Plane = &p
	}
	c.Front = n.Front.clone()
	c.Back = n.Back.clone()
	return c
}

// invert flips the solid/empty sense of the entire tree in place: every
// plane and polygon normal reverses, and front/back subtrees swap. Used to
// implement subtract and intersect in terms of union.
func (n *bspNode) invert() {
	if n == nil {
		return
	}
	for i := range n.Polygons {
		n.Polygons[i] = n.Polygons[i].flip()
	}
	if n.Plane != nil {
		f := n.Plane.flip()
		n.Plane = &f
	}
	n.Front.invert()
	n.Back.invert()
	n.Front, n.Back = n.Back, n.Front
}

// clipPolygons removes the portions of polys that lie inside the solid
// represented by n.
func (n *bspNode) clipPolygons(polys []polygon) []polygon {
	if n.Plane == nil {
		return append([]polygon(nil), polys...)
	}
	var pf, pb []polygon
	for _, p := range polys {
		var cf, cb []polygon
		splitPolygon(*n.Plane, p, &cf, &cb, &pf, &pb)
		pf = append(pf, cf...)
		pb = append(pb, cb...)
	}
	if n.Front != nil {
		pf = n.Front.clipPolygons(pf)
	}
	if n.Back != nil {
		pb = n.Back.clipPolygons(pb)
	} else {
		pb = nil
	}
	return append(pf, pb...)
}

// clipTo removes, from every polygon in n, the portions that lie inside the
// solid represented by other.
func (n *bspNode) clipTo(other *bspNode) {
	if n == nil {
		return
	}
	n.Polygons = other.clipPolygons(n.Polygons)
	n.Front.clipTo(other)
	n.Back.clipTo(other)
}

func (n *bspNode) allPolygons() []polygon {
	if n == nil {
		return nil
	}
	out := append([]polygon(nil), n.Polygons...)
	out = append(out, n.Front.allPolygons()...)
	out = append(out, n.Back.allPolygons()...)
	return out
}

func (n *bspNode) build(polys []polygon) {
	if len(polys) == 0 {
		return
	}
	if n.Plane == nil {
		p := polys[0].Plane
		n.Plane = &p
	}
	var frontP, backP []polygon
	n.Polygons = append(n.Polygons, polys[0])
	for _, poly := range polys[1:] {
		var cf, cb []polygon
		splitPolygon(*n.Plane, poly, &n.Polygons, &n.Polygons, &cf, &cb)
		frontP = append(frontP, cf...)
		backP = append(backP, cb...)
	}
	if len(frontP) > 0 {
		if n.Front == nil {
			n.Front = &bspNode{}
		}
		n.Front.build(frontP)
	}
	if len(backP) > 0 {
		if n.Back == nil {
			n.Back = &bspNode{}
		}
		n.Back.build(backP)
	}
}

// csgUnion, csgSubtract, and csgIntersect implement the three boolean
// primitives per the classic BSP formulation: subtract/intersect are
// expressed as union with one or both operands inverted.
func csgUnion(a, b []polygon) []polygon {
	na, nb := newBSPNode(a), newBSPNode(b)
	na.clipTo(nb)
	nb.clipTo(na)
	nb.invert()
	nb.clipTo(na)
	nb.invert()
	na.build(nb.allPolygons())
	return na.allPolygons()
}

func csgSubtract(a, b []polygon) []polygon {
	na, nb := newBSPNode(a), newBSPNode(b)
	na.invert()
	na.clipTo(nb)
	nb.clipTo(na)
	nb.invert()
	nb.clipTo(na)
	nb.invert()
	na.build(nb.allPolygons())
	na.invert()
	return na.allPolygons()
}

func csgIntersect(a, b []polygon) []polygon {
	na, nb := newBSPNode(a), newBSPNode(b)
	na.invert()
	nb.clipTo(na)
	nb.invert()
	na.clipTo(nb)
	nb.clipTo(na)
	na.build(nb.allPolygons())
	na.invert()
	return na.allPolygons()
}

// triangulate fan-splits an arbitrary (convex, as produced by splitPolygon)
// polygon into triangles for output / further CSG input.
func triangulate(p polygon) []polygon {
	if len(p.Verts) <= 3 {
		return []polygon{p}
	}
	var out []polygon
	for i := 1; i < len(p.Verts)-1; i++ {
		tri := []vertex{p.Verts[0], p.Verts[i], p.Verts[i+1]}
		out = append(out, newPolygon(tri, p.Color))
	}
	return out
}

// transformPolygons applies m to every vertex position. Normals are carried
// through by m's linear part (ApplyDirection), except when
// recomputeNormals is set (Scale, Mirror, and any other non-similarity
// transform) — there the per-vertex normal is replaced by the fragment's own
// recomputed face normal, since componentwise scaling does not preserve
// normal direction under a simple linear map.
func transformPolygons(polys []polygon, m Matrix4, recomputeNormals bool) []polygon {
	out := make([]polygon, len(polys))
	for i, p := range polys {
		verts := make([]vertex, len(p.Verts))
		for j, v := range p.Verts {
			verts[j] = vertex{Pos: m.Apply(v.Pos), Normal: m.ApplyDirection(v.Normal).Normalize()}
		}
		np := newPolygon(verts, p.Color)
		if recomputeNormals && len(verts) >= 3 {
			fn := np.Plane.Normal
			for j := range verts {
				verts[j].Normal = fn
			}
			np = newPolygon(verts, p.Color)
		}
		out[i] = np
	}
	return out
}

func boundsOf(polys []polygon) (min, max Vec3) {
	if len(polys) == 0 {
		return Vec3{}, Vec3{}
	}
	min = Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	max = Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, p := range polys {
		for _, v := range p.Verts {
			min.X, max.X = math.Min(min.X, v.Pos.X), math.Max(max.X, v.Pos.X)
			min.Y, max.Y = math.Min(min.Y, v.Pos.Y), math.Max(max.Y, v.Pos.Y)
			min.Z, max.Z = math.Min(min.Z, v.Pos.Z), math.Max(max.Z, v.Pos.Z)
		}
	}
	return min, max
}
