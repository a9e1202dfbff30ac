// Wavefront OBJ parser. Material libraries are not fetched; every face uses
// the default color.
package formats

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// OBJ format errors.
var (
	ErrInvalidOBJFace  = errors.New("invalid OBJ face")
	ErrInvalidOBJIndex = errors.New("OBJ index out of range")
)

var defaultColor = [4]float32{0.8, 0.8, 0.8, 1}

// objCorner is one face corner: position, texcoord and normal indices (0-based, -1 if absent).
type objCorner [3]int

// ParseOBJ parses a Wavefront OBJ file. Polygons are fan-triangulated.
func ParseOBJ(data []byte) (*Model, error) {
	var (
		positions [][3]float32
		texcoords [][2]float32
		normals   [][3]float32
	)

	prim := Primitive{BaseColor: defaultColor}
	remap := make(map[objCorner]uint32)
	hasUV, hasNormal := false, false

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			positions = append(positions, [3]float32{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			texcoords = append(texcoords, [2]float32{v[0], 1 - v[1]})
		case "vn":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			normals = append(normals, [3]float32{v[0], v[1], v[2]})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: %w: need at least 3 vertices", lineNo, ErrInvalidOBJFace)
			}
			corners := make([]uint32, 0, len(fields)-1)
			for _, f := range fields[1:] {
				c, err := parseCorner(f, len(positions), len(texcoords), len(normals))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx, ok := remap[c]
				if !ok {
					idx = uint32(len(prim.Positions))
					remap[c] = idx
					prim.Positions = append(prim.Positions, positions[c[0]])
					var uv [2]float32
					if c[1] >= 0 {
						uv = texcoords[c[1]]
						hasUV = true
					}
					prim.TexCoords = append(prim.TexCoords, uv)
					var n [3]float32
					if c[2] >= 0 {
						n = normals[c[2]]
						hasNormal = true
					}
					prim.Normals = append(prim.Normals, n)
				}
				corners = append(corners, idx)
			}
			for i := 1; i+1 < len(corners); i++ {
				prim.Indices = append(prim.Indices, corners[0], corners[i], corners[i+1])
			}
		}
		// o, g, s, usemtl, mtllib and friends are ignored
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read OBJ: %w", err)
	}

	if !hasUV {
		prim.TexCoords = nil
	}
	if !hasNormal {
		prim.Normals = nil
	}
	return &Model{Format: FormatOBJ, Primitives: []Primitive{prim}}, nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("expected %d values, got %d", n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		f, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, err
		}
		out[i] = float32(f)
	}
	return out, nil
}

// parseCorner parses "v", "v/vt", "v//vn" or "v/vt/vn". Negative indices count from the end.
func parseCorner(s string, nv, nt, nn int) (objCorner, error) {
	c := objCorner{-1, -1, -1}
	parts := strings.Split(s, "/")
	if len(parts) > 3 || parts[0] == "" {
		return c, fmt.Errorf("%w: %q", ErrInvalidOBJFace, s)
	}
	limits := [3]int{nv, nt, nn}
	for i, p := range parts {
		if p == "" {
			continue
		}
		v, err := strconv.Atoi(p)
		if err != nil {
			return c, fmt.Errorf("%w: %q", ErrInvalidOBJFace, s)
		}
		switch {
		case v > 0:
			v--
		case v < 0:
			v += limits[i]
		default:
			return c, fmt.Errorf("%w: zero index in %q", ErrInvalidOBJIndex, s)
		}
		if v < 0 || v >= limits[i] {
			return c, fmt.Errorf("%w: %q", ErrInvalidOBJIndex, s)
		}
		c[i] = v
	}
	return c, nil
}
