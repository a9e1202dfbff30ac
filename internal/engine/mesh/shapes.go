package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/arscene/pkg/math"
)

// Quad returns a w×h rectangle in the XY plane facing +Z, centered on the origin.
// V runs top to bottom so image rows map without flipping.
func Quad(w, h float32) *Mesh {
	hw, hh := w/2, h/2
	n := [3]float32{0, 0, 1}
	m := &Mesh{
		Vertices: []Vertex{
			{Position: [3]float32{-hw, -hh, 0}, Normal: n, TexCoord: [2]float32{0, 1}},
			{Position: [3]float32{hw, -hh, 0}, Normal: n, TexCoord: [2]float32{1, 1}},
			{Position: [3]float32{hw, hh, 0}, Normal: n, TexCoord: [2]float32{1, 0}},
			{Position: [3]float32{-hw, hh, 0}, Normal: n, TexCoord: [2]float32{0, 0}},
		},
		Indices: []uint32{0, 1, 2, 0, 2, 3},
	}
	m.computeBounds()
	return m
}

// Box returns an axis-aligned box of the given size centered on the origin.
func Box(w, h, d float32) *Mesh {
	hx, hy, hz := w/2, h/2, d/2
	faces := []struct {
		n       [3]float32
		corners [4][3]float32
	}{
		{[3]float32{0, 0, 1}, [4][3]float32{{-hx, -hy, hz}, {hx, -hy, hz}, {hx, hy, hz}, {-hx, hy, hz}}},
		{[3]float32{0, 0, -1}, [4][3]float32{{hx, -hy, -hz}, {-hx, -hy, -hz}, {-hx, hy, -hz}, {hx, hy, -hz}}},
		{[3]float32{1, 0, 0}, [4][3]float32{{hx, -hy, hz}, {hx, -hy, -hz}, {hx, hy, -hz}, {hx, hy, hz}}},
		{[3]float32{-1, 0, 0}, [4][3]float32{{-hx, -hy, -hz}, {-hx, -hy, hz}, {-hx, hy, hz}, {-hx, hy, -hz}}},
		{[3]float32{0, 1, 0}, [4][3]float32{{-hx, hy, hz}, {hx, hy, hz}, {hx, hy, -hz}, {-hx, hy, -hz}}},
		{[3]float32{0, -1, 0}, [4][3]float32{{-hx, -hy, -hz}, {hx, -hy, -hz}, {hx, -hy, hz}, {-hx, -hy, hz}}},
	}
	uvs := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	m := &Mesh{}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for i, c := range f.corners {
			m.Vertices = append(m.Vertices, Vertex{Position: c, Normal: f.n, TexCoord: uvs[i]})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	m.computeBounds()
	return m
}

// Cylinder returns an upright capped cylinder centered on the origin.
func Cylinder(radius, height float32, segments int) *Mesh {
	if segments < 3 {
		segments = 3
	}
	hh := height / 2
	m := &Mesh{}

	// side
	for i := 0; i <= segments; i++ {
		a := math.Tau * float32(i) / float32(segments)
		s, c := math32.Sincos(a)
		n := [3]float32{s, 0, c}
		u := float32(i) / float32(segments)
		m.Vertices = append(m.Vertices,
			Vertex{Position: [3]float32{radius * s, -hh, radius * c}, Normal: n, TexCoord: [2]float32{u, 1}},
			Vertex{Position: [3]float32{radius * s, hh, radius * c}, Normal: n, TexCoord: [2]float32{u, 0}},
		)
	}
	for i := 0; i < segments; i++ {
		b := uint32(i * 2)
		m.Indices = append(m.Indices, b, b+2, b+3, b, b+3, b+1)
	}

	// caps
	for _, y := range []float32{hh, -hh} {
		n := [3]float32{0, 1, 0}
		if y < 0 {
			n[1] = -1
		}
		center := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, Vertex{Position: [3]float32{0, y, 0}, Normal: n, TexCoord: [2]float32{0.5, 0.5}})
		for i := 0; i <= segments; i++ {
			a := math.Tau * float32(i) / float32(segments)
			s, c := math32.Sincos(a)
			m.Vertices = append(m.Vertices, Vertex{
				Position: [3]float32{radius * s, y, radius * c},
				Normal:   n,
				TexCoord: [2]float32{0.5 + s/2, 0.5 + c/2},
			})
		}
		for i := uint32(0); i < uint32(segments); i++ {
			if y > 0 {
				m.Indices = append(m.Indices, center, center+1+i, center+2+i)
			} else {
				m.Indices = append(m.Indices, center, center+2+i, center+1+i)
			}
		}
	}
	m.computeBounds()
	return m
}

// Triangle returns a flat triangle facing +Z pointing toward +X, used as a play glyph.
func Triangle(size float32) *Mesh {
	h := size / 2
	n := [3]float32{0, 0, 1}
	m := &Mesh{
		Vertices: []Vertex{
			{Position: [3]float32{-h * 0.8, -h, 0}, Normal: n},
			{Position: [3]float32{h, 0, 0}, Normal: n},
			{Position: [3]float32{-h * 0.8, h, 0}, Normal: n},
		},
		Indices: []uint32{0, 1, 2},
	}
	m.computeBounds()
	return m
}

// Frame returns four bars surrounding a w×h opening in the XY plane.
func Frame(w, h, thickness, depth float32) []*Mesh {
	hw, hh := w/2, h/2
	outerW := w + 2*thickness
	bars := []struct {
		w, h   float32
		offset math.Vec3
	}{
		{outerW, thickness, math.Vec3{Y: hh + thickness/2}},
		{outerW, thickness, math.Vec3{Y: -hh - thickness/2}},
		{thickness, h, math.Vec3{X: -hw - thickness/2}},
		{thickness, h, math.Vec3{X: hw + thickness/2}},
	}
	out := make([]*Mesh, 0, len(bars))
	for _, b := range bars {
		bar := Box(b.w, b.h, depth)
		bar.Apply(math.TranslateVec(b.offset))
		out = append(out, bar)
	}
	return out
}
