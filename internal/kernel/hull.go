package kernel

import (
	"math"
	"sort"
)

// incrementalHull computes the 3D convex hull of pts as a triangle mesh,
// using the standard incremental algorithm: build a seed tetrahedron from
// four non-coplanar points, then add the remaining points one at a time,
// removing every face the new point is in front of and re-triangulating the
// resulting boundary ("horizon") as a fan from the new point.
func incrementalHull(pts []Vec3) []polygon {
	pts = dedupVec3(pts)
	if len(pts) < 4 {
		return degenerateHull(pts)
	}

	tet, rest, ok := seedTetrahedron(pts)
	if !ok {
		return degenerateHull(pts)
	}

	faces := tet
	for _, p := range rest {
		faces = addPointToHull(faces, p)
	}
	return faces
}

func dedupVec3(pts []Vec3) []Vec3 {
	seen := map[Vec3]bool{}
	var out []Vec3
	for _, p := range pts {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

// degenerateHull handles the <4-point / coplanar-input cases by falling back
// to a flat fan triangulation (0, 1, or 2 points: empty; 3+ coplanar points:
// a single fan face plus its mirror, so the result is visible from either
// side).
func degenerateHull(pts []Vec3) []polygon {
	if len(pts) < 3 {
		return nil
	}
	n := pts[1].Sub(pts[0]).Cross(pts[2].Sub(pts[0]))
	if n.Length() == 0 {
		return nil
	}
	n = n.Normalize()
	verts := make([]vertex, len(pts))
	for i, p := range pts {
		verts[i] = vertex{Pos: p, Normal: n}
	}
	face := newPolygon(verts, nil)
	tris := triangulate(face)
	return append(tris, triangulate(face.flip())...)
}

type hullFace struct {
	a, b, c Vec3
	pl      plane
}

func newHullFace(a, b, c Vec3) hullFace {
	return hullFace{a, b, c, planeFromPoints(a, b, c)}
}

// seedTetrahedron picks four non-coplanar points from pts, builds the four
// outward-facing triangle faces of the tetrahedron they form, and returns
// the remaining points to add.
func seedTetrahedron(pts []Vec3) ([]polygon, []Vec3, bool) {
	p0, p1 := pts[0], pts[1]
	i2 := -1
	for i := 2; i < len(pts); i++ {
		if p1.Sub(p0).Cross(pts[i].Sub(p0)).Length() > 1e-9 {
			i2 = i
			break
		}
	}
	if i2 < 0 {
		return nil, nil, false
	}
	p2 := pts[i2]
	n := p1.Sub(p0).Cross(p2.Sub(p0)).Normalize()
	i3 := -1
	for i := 2; i < len(pts); i++ {
		if i == i2 {
			continue
		}
		if math.Abs(n.Dot(pts[i].Sub(p0))) > 1e-9 {
			i3 = i
			break
		}
	}
	if i3 < 0 {
		return nil, nil, false
	}
	p3 := pts[i3]
	centroid := p0.Add(p1).Add(p2).Add(p3).Scale(0.25)

	orient := func(a, b, c Vec3) hullFace {
		f := newHullFace(a, b, c)
		if _, d := f.pl.classify(centroid); d > 0 {
			f = newHullFace(a, c, b)
		}
		return f
	}
	tetFaces := []hullFace{
		orient(p0, p1, p2),
		orient(p0, p1, p3),
		orient(p0, p2, p3),
		orient(p1, p2, p3),
	}

	var rest []Vec3
	used := map[Vec3]bool{p0: true, p1: true, p2: true, p3: true}
	for _, p := range pts {
		if !used[p] {
			rest = append(rest, p)
		}
	}
	return facesToPolygons(tetFaces), rest, true
}

func facesToPolygons(faces []hullFace) []polygon {
	out := make([]polygon, len(faces))
	for i, f := range faces {
		n := f.pl.Normal
		verts := []vertex{{Pos: f.a, Normal: n}, {Pos: f.b, Normal: n}, {Pos: f.c, Normal: n}}
		out[i] = newPolygon(verts, nil)
	}
	return out
}

// addPointToHull adds p to the hull represented by faces: faces p can see
// (p is in front of their plane) are removed, the edges on the boundary of
// the resulting hole are collected, and one new face per boundary edge is
// added as a triangle to p.
func addPointToHull(faces []polygon, p Vec3) []polygon {
	var kept []polygon
	var visible []polygon
	for _, f := range faces {
		_, d := f.Plane.classify(p)
		if d > 1e-9 {
			visible = append(visible, f)
		} else {
			kept = append(kept, f)
		}
	}
	if len(visible) == 0 {
		return faces
	}

	type edge struct{ a, b Vec3 }
	count := map[edge]int{}
	for _, f := range visible {
		n := len(f.Verts)
		for i := 0; i < n; i++ {
			j := (i + 1) % n
			count[edge{f.Verts[i].Pos, f.Verts[j].Pos}]++
		}
	}
	// An edge is on the silhouette boundary iff its reverse doesn't also
	// appear among the visible faces' edges.
	for e := range count {
		rev := edge{e.b, e.a}
		if count[rev] > 0 {
			continue
		}
		verts := []vertex{{Pos: e.a}, {Pos: e.b}, {Pos: p}}
		n := verts[1].Pos.Sub(verts[0].Pos).Cross(verts[2].Pos.Sub(verts[0].Pos)).Normalize()
		for i := range verts {
			verts[i].Normal = n
		}
		kept = append(kept, newPolygon(verts, nil))
	}
	return kept
}

// convexHull2D computes the 2D convex hull of pts via the monotone chain
// (Andrew's) algorithm, returning vertices in counter-clockwise order.
func convexHull2D(pts []Vec2) []Vec2 {
	pts = dedupVec2(pts)
	if len(pts) < 3 {
		return pts
	}
	sort.Slice(pts, func(i, j int) bool {
		if pts[i].X != pts[j].X {
			return pts[i].X < pts[j].X
		}
		return pts[i].Y < pts[j].Y
	})

	cross := func(o, a, b Vec2) float64 {
		return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
	}

	n := len(pts)
	hull := make([]Vec2, 0, 2*n)
	for _, p := range pts {
		for len(hull) >= 2 && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	lower := len(hull) + 1
	for i := n - 2; i >= 0; i-- {
		p := pts[i]
		for len(hull) >= lower && cross(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}
	return hull[:len(hull)-1]
}

func dedupVec2(pts []Vec2) []Vec2 {
	seen := map[Vec2]bool{}
	var out []Vec2
	for _, p := range pts {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}
