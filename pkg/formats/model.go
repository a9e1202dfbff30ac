// Package formats provides parsers for the 3D model formats experiences reference.
//
// Every parser produces the same Model value: a flat list of triangle primitives
// with transforms already baked in, so the engine never sees format specifics.
package formats

import (
	"bytes"
	"errors"
	"image"
	"path"
	"strings"

	_ "image/jpeg" // embedded glTF textures
	_ "image/png"
)

// Model format errors.
var (
	ErrUnknownModelFormat = errors.New("unknown model format")
	ErrEmptyModel         = errors.New("model has no triangles")
)

// ModelFormat identifies a model encoding.
type ModelFormat int

// Known model formats.
const (
	FormatUnknown ModelFormat = iota
	FormatGLB
	FormatGLTF
	FormatOBJ
)

func (f ModelFormat) String() string {
	switch f {
	case FormatGLB:
		return "glb"
	case FormatGLTF:
		return "gltf"
	case FormatOBJ:
		return "obj"
	default:
		return "unknown"
	}
}

// Primitive is one triangle list with a single material.
type Primitive struct {
	Positions [][3]float32
	Normals   [][3]float32 // nil when the source has none
	TexCoords [][2]float32 // nil when the source has none
	Indices   []uint32

	BaseColor [4]float32
	Texture   image.Image // base color texture, optional
}

// Model is a parsed, flattened model.
type Model struct {
	Format     ModelFormat
	Primitives []Primitive
}

// Bounds returns the axis-aligned bounds over all primitives.
func (m *Model) Bounds() (min, max [3]float32) {
	first := true
	for _, p := range m.Primitives {
		for _, v := range p.Positions {
			if first {
				min, max = v, v
				first = false
				continue
			}
			for i := 0; i < 3; i++ {
				if v[i] < min[i] {
					min[i] = v[i]
				}
				if v[i] > max[i] {
					max[i] = v[i]
				}
			}
		}
	}
	return min, max
}

// TriangleCount returns the total number of triangles.
func (m *Model) TriangleCount() int {
	n := 0
	for _, p := range m.Primitives {
		n += len(p.Indices) / 3
	}
	return n
}

// DetectModelFormat sniffs the encoding from magic bytes, then from the name and MIME hints.
func DetectModelFormat(data []byte, name, mime string) ModelFormat {
	if bytes.HasPrefix(data, []byte("glTF")) {
		return FormatGLB
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".glb":
		return FormatGLB
	case ".gltf":
		return FormatGLTF
	case ".obj":
		return FormatOBJ
	}
	switch strings.ToLower(mime) {
	case "model/gltf-binary":
		return FormatGLB
	case "model/gltf+json":
		return FormatGLTF
	case "model/obj", "text/x-wavefront-obj":
		return FormatOBJ
	}
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if bytes.HasPrefix(trimmed, []byte("{")) && bytes.Contains(data, []byte(`"asset"`)) {
		return FormatGLTF
	}
	return FormatUnknown
}

// ParseModel parses data in the given format.
func ParseModel(data []byte, format ModelFormat) (*Model, error) {
	var (
		m   *Model
		err error
	)
	switch format {
	case FormatGLB, FormatGLTF:
		m, err = ParseGLTF(data)
	case FormatOBJ:
		m, err = ParseOBJ(data)
	default:
		return nil, ErrUnknownModelFormat
	}
	if err != nil {
		return nil, err
	}
	if m.TriangleCount() == 0 {
		return nil, ErrEmptyModel
	}
	return m, nil
}
