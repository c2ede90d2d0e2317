package kernel

import "math"

// buildCube returns the 12-triangle box polygon set for an axis-aligned
// cube of the given size, optionally centered at the origin.
func buildCube(size Vec3, center bool) []polygon {
	var origin Vec3
	if center {
		origin = size.Scale(-0.5)
	}
	corner := func(x, y, z float64) Vec3 {
		return Vec3{origin.X + x*size.X, origin.Y + y*size.Y, origin.Z + z*size.Z}
	}
	faces := []struct {
		normal Vec3
		verts  [4]Vec3
	}{
		{Vec3{-1, 0, 0}, [4]Vec3{corner(0, 0, 0), corner(0, 0, 1), corner(0, 1, 1), corner(0, 1, 0)}},
		{Vec3{1, 0, 0}, [4]Vec3{corner(1, 0, 0), corner(1, 1, 0), corner(1, 1, 1), corner(1, 0, 1)}},
		{Vec3{0, -1, 0}, [4]Vec3{corner(0, 0, 0), corner(1, 0, 0), corner(1, 0, 1), corner(0, 0, 1)}},
		{Vec3{0, 1, 0}, [4]Vec3{corner(0, 1, 0), corner(0, 1, 1), corner(1, 1, 1), corner(1, 1, 0)}},
		{Vec3{0, 0, -1}, [4]Vec3{corner(0, 0, 0), corner(0, 1, 0), corner(1, 1, 0), corner(1, 0, 0)}},
		{Vec3{0, 0, 1}, [4]Vec3{corner(0, 0, 1), corner(1, 0, 1), corner(1, 1, 1), corner(0, 1, 1)}},
	}
	var out []polygon
	for _, f := range faces {
		verts := make([]vertex, 4)
		for i, p := range f.verts {
			verts[i] = vertex{Pos: p, Normal: f.normal}
		}
		out = append(out, triangulate(newPolygon(verts, nil))...)
	}
	return out
}

// buildUVSphere builds a UV sphere with `segments` longitude divisions and
// segments/2 (at least 2) latitude bands, so pole count and band count are a
// deterministic function of segments alone, per the fragment-calculator
// contract.
func buildUVSphere(radius float64, segments int) []polygon {
	if segments < 3 {
		segments = 3
	}
	lat := segments / 2
	if lat < 2 {
		lat = 2
	}
	pos := func(latI, lonI int) Vec3 {
		theta := math.Pi * float64(latI) / float64(lat)
		phi := 2 * math.Pi * float64(lonI) / float64(segments)
		sy, cy := math.Sin(theta), math.Cos(theta)
		return Vec3{radius * sy * math.Cos(phi), radius * sy * math.Sin(phi), radius * cy}
	}
	var out []polygon
	for i := 0; i < lat; i++ {
		for j := 0; j < segments; j++ {
			p0 := pos(i, j)
			p1 := pos(i+1, j)
			p2 := pos(i+1, (j+1)%segments)
			p3 := pos(i, (j+1)%segments)
			verts := []vertex{
				{Pos: p0, Normal: p0.Normalize()},
				{Pos: p1, Normal: p1.Normalize()},
				{Pos: p2, Normal: p2.Normalize()},
				{Pos: p3, Normal: p3.Normalize()},
			}
			out = append(out, triangulate(newPolygon(verts, nil))...)
		}
	}
	return out
}

// buildCylinder builds a (possibly frustum-shaped, r1 != r2) cylinder along
// the Z axis with `segments` sides.
func buildCylinder(h, r1, r2 float64, segments int, center bool) []polygon {
	if segments < 3 {
		segments = 3
	}
	z0, z1 := 0.0, h
	if center {
		z0, z1 = -h/2, h/2
	}
	ring := func(r, z float64) []Vec3 {
		pts := make([]Vec3, segments)
		for i := 0; i < segments; i++ {
			a := 2 * math.Pi * float64(i) / float64(segments)
			pts[i] = Vec3{r * math.Cos(a), r * math.Sin(a), z}
		}
		return pts
	}
	bottom := ring(r1, z0)
	top := ring(r2, z1)

	var out []polygon
	slope := math.Atan2(r1-r2, h)
	for i := 0; i < segments; i++ {
		j := (i + 1) % segments
		b0, b1 := bottom[i], bottom[j]
		t0, t1 := top[i], top[j]
		mid := (2*math.Pi*(float64(i)+0.5))/float64(segments)
		n := Vec3{math.Cos(mid) * math.Cos(slope), math.Sin(mid) * math.Cos(slope), math.Sin(slope)}
		verts := []vertex{
			{Pos: b0, Normal: n}, {Pos: b1, Normal: n}, {Pos: t1, Normal: n}, {Pos: t0, Normal: n},
		}
		out = append(out, triangulate(newPolygon(verts, nil))...)
	}
	if r1 > 0 {
		out = append(out, fanCap(bottom, z0, Vec3{0, 0, -1}, true)...)
	}
	if r2 > 0 {
		out = append(out, fanCap(top, z1, Vec3{0, 0, 1}, false)...)
	}
	return out
}

func fanCap(ring []Vec3, z float64, normal Vec3, reverse bool) []polygon {
	verts := make([]vertex, len(ring))
	for i, p := range ring {
		verts[i] = vertex{Pos: Vec3{p.X, p.Y, z}, Normal: normal}
	}
	if reverse {
		for i, j := 0, len(verts)-1; i < j; i, j = i+1, j-1 {
			verts[i], verts[j] = verts[j], verts[i]
		}
	}
	return triangulate(newPolygon(verts, nil))
}

// buildPolyhedron builds a mesh directly from an explicit point/face list,
// per-face normals computed from vertex winding.
func buildPolyhedron(points []Vec3, faces [][]int) []polygon {
	var out []polygon
	for _, face := range faces {
		if len(face) < 3 {
			continue
		}
		verts := make([]vertex, len(face))
		for i, idx := range face {
			if idx < 0 || idx >= len(points) {
				return out
			}
			verts[i] = vertex{Pos: points[idx]}
		}
		n := verts[1].Pos.Sub(verts[0].Pos).Cross(verts[2].Pos.Sub(verts[0].Pos)).Normalize()
		for i := range verts {
			verts[i].Normal = n
		}
		out = append(out, triangulate(newPolygon(verts, nil))...)
	}
	return out
}

// extrudePolygon2D linearly extrudes a flat XY polygon (z=0) to the given
// height, applying twist (degrees, linear interpolation top to bottom) and
// scale (final cross-section scale factor) across `slices` layers.
func extrudePolygon2D(outline []Vec2, height, twistDeg, scaleFactor float64, slices int) []polygon {
	if slices < 1 {
		slices = 1
	}
	n := len(outline)
	if n < 3 {
		return nil
	}
	layer := func(i int) []Vec3 {
		t := float64(i) / float64(slices)
		z := t * height
		s := 1 + (scaleFactor-1)*t
		theta := twistDeg * t * math.Pi / 180
		ct, st := math.Cos(theta), math.Sin(theta)
		pts := make([]Vec3, n)
		for j, p := range outline {
			x, y := p.X*s, p.Y*s
			pts[j] = Vec3{x*ct - y*st, x*st + y*ct, z}
		}
		return pts
	}

	var out []polygon
	bottom := layer(0)
	top := layer(slices)
	out = append(out, fanCap(bottom, 0, Vec3{0, 0, -1}, true)...)
	out = append(out, fanCap(top, height, Vec3{0, 0, 1}, false)...)

	prev := bottom
	for i := 1; i <= slices; i++ {
		cur := layer(i)
		for j := 0; j < n; j++ {
			k := (j + 1) % n
			verts := []vertex{{Pos: prev[j]}, {Pos: prev[k]}, {Pos: cur[k]}, {Pos: cur[j]}}
			nrm := verts[1].Pos.Sub(verts[0].Pos).Cross(verts[3].Pos.Sub(verts[0].Pos)).Normalize()
			for vi := range verts {
				verts[vi].Normal = nrm
			}
			out = append(out, triangulate(newPolygon(verts, nil))...)
		}
		prev = cur
	}
	return out
}

// revolvePolygon2D rotates a flat XY polygon (treated as a profile in the
// X>=0 half-plane) around the Z axis by angleDeg, using `segments` steps.
func revolvePolygon2D(outline []Vec2, angleDeg float64, segments int) []polygon {
	if segments < 3 {
		segments = 3
	}
	n := len(outline)
	if n < 3 {
		return nil
	}
	steps := segments
	full := angleDeg >= 360
	ringAt := func(step int) []Vec3 {
		a := angleDeg * float64(step) / float64(steps) * math.Pi / 180
		ca, sa := math.Cos(a), math.Sin(a)
		pts := make([]Vec3, n)
		for i, p := range outline {
			pts[i] = Vec3{p.X * ca, p.X * sa, p.Y}
		}
		return pts
	}

	var out []polygon
	for s := 0; s < steps; s++ {
		a := ringAt(s)
		b := ringAt(s + 1)
		for j := 0; j < n; j++ {
			k := (j + 1) % n
			verts := []vertex{{Pos: a[j]}, {Pos: a[k]}, {Pos: b[k]}, {Pos: b[j]}}
			nrm := verts[1].Pos.Sub(verts[0].Pos).Cross(verts[3].Pos.Sub(verts[0].Pos)).Normalize()
			for vi := range verts {
				verts[vi].Normal = nrm
			}
			out = append(out, triangulate(newPolygon(verts, nil))...)
		}
	}
	if !full {
		startCap := ringAt(0)
		endCap := ringAt(steps)
		out = append(out, fanCap(startCap, 0, Vec3{0, -1, 0}, true)...)
		out = append(out, fanCap(endCap, 0, Vec3{0, 1, 0}, false)...)
	}
	return out
}

// buildCircle2D returns a regular polygon approximating a circle of radius r
// with the given segment count, as a flat outline for extrusion/projection.
func buildCircle2D(r float64, segments int) []Vec2 {
	if segments < 3 {
		segments = 3
	}
	pts := make([]Vec2, segments)
	for i := 0; i < segments; i++ {
		a := 2 * math.Pi * float64(i) / float64(segments)
		pts[i] = Vec2{r * math.Cos(a), r * math.Sin(a)}
	}
	return pts
}

// buildSquare2D returns a rectangle outline, optionally centered.
func buildSquare2D(size Vec2, center bool) []Vec2 {
	var ox, oy float64
	if center {
		ox, oy = -size.X/2, -size.Y/2
	}
	return []Vec2{
		{ox, oy}, {ox + size.X, oy}, {ox + size.X, oy + size.Y}, {ox, oy + size.Y},
	}
}
