// Package mesh holds CPU-side triangle meshes and the procedural shapes the
// asset loader builds placeholders from.
package mesh

import (
	"github.com/chewxy/math32"

	"github.com/Faultbox/arscene/pkg/formats"
	"github.com/Faultbox/arscene/pkg/math"
)

// Vertex is one mesh vertex as uploaded to the GPU.
type Vertex struct {
	Position [3]float32
	Normal   [3]float32
	TexCoord [2]float32
}

// Mesh is an indexed triangle list.
type Mesh struct {
	Vertices []Vertex
	Indices  []uint32
	Bounds   Bounds
}

// Bounds is an axis-aligned bounding box.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// EmptyBounds returns bounds that any Extend call will overwrite.
func EmptyBounds() Bounds {
	return Bounds{
		Min: [3]float32{math32.MaxFloat32, math32.MaxFloat32, math32.MaxFloat32},
		Max: [3]float32{-math32.MaxFloat32, -math32.MaxFloat32, -math32.MaxFloat32},
	}
}

// IsEmpty reports whether nothing was added to b.
func (b Bounds) IsEmpty() bool {
	return b.Min[0] > b.Max[0]
}

// Extend grows b to include p.
func (b *Bounds) Extend(p [3]float32) {
	for i := 0; i < 3; i++ {
		b.Min[i] = math32.Min(b.Min[i], p[i])
		b.Max[i] = math32.Max(b.Max[i], p[i])
	}
}

// Union returns the bounds covering both.
func (b Bounds) Union(o Bounds) Bounds {
	if b.IsEmpty() {
		return o
	}
	if o.IsEmpty() {
		return b
	}
	b.Extend(o.Min)
	b.Extend(o.Max)
	return b
}

// Center returns the box center.
func (b Bounds) Center() math.Vec3 {
	return math.FromArray(b.Min).Add(math.FromArray(b.Max)).Scale(0.5)
}

// Size returns the box extents.
func (b Bounds) Size() math.Vec3 {
	return math.FromArray(b.Max).Sub(math.FromArray(b.Min))
}

// Transform returns the bounds of the box's eight corners under m.
func (b Bounds) Transform(m math.Mat4) Bounds {
	out := EmptyBounds()
	for i := 0; i < 8; i++ {
		c := [3]float32{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		out.Extend(m.TransformPoint(c))
	}
	return out
}

// computeBounds recalculates m.Bounds from the vertices.
func (m *Mesh) computeBounds() {
	m.Bounds = EmptyBounds()
	for _, v := range m.Vertices {
		m.Bounds.Extend(v.Position)
	}
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// Triangle returns the corner positions of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c [3]float32) {
	return m.Vertices[m.Indices[i*3]].Position,
		m.Vertices[m.Indices[i*3+1]].Position,
		m.Vertices[m.Indices[i*3+2]].Position
}

// Apply transforms every vertex by t in place. Normals use the rotation part.
func (m *Mesh) Apply(t math.Mat4) {
	for i := range m.Vertices {
		v := &m.Vertices[i]
		v.Position = t.TransformPoint(v.Position)
		v.Normal = math.FromArray(t.TransformDirection(v.Normal)).Normalize().Array()
	}
	m.computeBounds()
}

// FromPrimitive converts a parsed model primitive. Missing normals are
// generated from face orientation; out-of-range indices drop the triangle.
func FromPrimitive(p formats.Primitive) *Mesh {
	m := &Mesh{Vertices: make([]Vertex, len(p.Positions))}
	for i, pos := range p.Positions {
		m.Vertices[i].Position = pos
		if i < len(p.TexCoords) {
			m.Vertices[i].TexCoord = p.TexCoords[i]
		}
		if i < len(p.Normals) {
			m.Vertices[i].Normal = p.Normals[i]
		}
	}

	n := uint32(len(p.Positions))
	m.Indices = make([]uint32, 0, len(p.Indices))
	for i := 0; i+2 < len(p.Indices); i += 3 {
		a, b, c := p.Indices[i], p.Indices[i+1], p.Indices[i+2]
		if a >= n || b >= n || c >= n {
			continue
		}
		m.Indices = append(m.Indices, a, b, c)
	}

	if len(p.Normals) != len(p.Positions) {
		m.generateNormals()
	}
	m.computeBounds()
	return m
}

// generateNormals accumulates area-weighted face normals per vertex.
func (m *Mesh) generateNormals() {
	acc := make([]math.Vec3, len(m.Vertices))
	for i := 0; i < m.TriangleCount(); i++ {
		ia, ib, ic := m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]
		a := math.FromArray(m.Vertices[ia].Position)
		b := math.FromArray(m.Vertices[ib].Position)
		c := math.FromArray(m.Vertices[ic].Position)
		n := b.Sub(a).Cross(c.Sub(a))
		acc[ia] = acc[ia].Add(n)
		acc[ib] = acc[ib].Add(n)
		acc[ic] = acc[ic].Add(n)
	}
	for i := range m.Vertices {
		n := acc[i].Normalize()
		if n == (math.Vec3{}) {
			n = math.Vec3{Y: 1}
		}
		m.Vertices[i].Normal = n.Array()
	}
}

// FitTransform returns the transform that recenters b on the origin and scales
// it uniformly so its largest dimension equals target.
func FitTransform(b Bounds, target float32) math.Mat4 {
	if b.IsEmpty() {
		return math.Identity()
	}
	size := b.Size()
	largest := math32.Max(size.X, math32.Max(size.Y, size.Z))
	s := float32(1)
	if largest > 1e-6 {
		s = target / largest
	}
	c := b.Center()
	return math.Scale(s, s, s).Mul(math.Translate(-c.X, -c.Y, -c.Z))
}
