// glTF 2.0 loader built on qmuntal/gltf. Handles GLB and glTF JSON with embedded
// (data URI) buffers; external buffer files are not resolved.
package formats

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"

	"github.com/Faultbox/arscene/pkg/math"
)

// ErrInvalidGLTF reports a document whose references do not resolve or whose
// node graph is not a tree.
var ErrInvalidGLTF = errors.New("invalid glTF document")

const maxZeroAccessorBytes = 64 << 20

// ParseGLTF decodes a glTF or GLB document and flattens the default scene.
func ParseGLTF(data []byte) (*Model, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decode glTF: %w", err)
	}
	if err := checkRefs(doc); err != nil {
		return nil, err
	}

	format := FormatGLTF
	if bytes.HasPrefix(data, []byte("glTF")) {
		format = FormatGLB
	}
	m := &Model{Format: format}
	textures := make(map[*gltf.Image]image.Image)

	// A node has at most one parent, so reaching one twice means a cycle or
	// a shared subtree.
	visited := make(map[*gltf.Node]bool, len(doc.Nodes))
	var visit func(n *gltf.Node, parent math.Mat4) error
	visit = func(n *gltf.Node, parent math.Mat4) error {
		if visited[n] {
			return fmt.Errorf("%w: node %q reached twice", ErrInvalidGLTF, n.Name)
		}
		visited[n] = true
		world := parent.Mul(nodeMatrix(n))
		if n.Mesh != nil {
			mesh := doc.Meshes[*n.Mesh]
			for pi, p := range mesh.Primitives {
				prim, ok, err := readPrimitive(doc, p, world, textures)
				if err != nil {
					return fmt.Errorf("mesh %q primitive %d: %w", mesh.Name, pi, err)
				}
				if ok {
					m.Primitives = append(m.Primitives, prim)
				}
			}
		}
		for _, c := range n.Children {
			if err := visit(doc.Nodes[c], world); err != nil {
				return err
			}
		}
		return nil
	}

	roots, err := rootNodes(doc)
	if err != nil {
		return nil, err
	}
	for _, n := range roots {
		if err := visit(n, math.Identity()); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidGLTF, fmt.Sprintf(format, args...))
}

func inRange(i, n int) bool { return i >= 0 && i < n }

// checkRefs validates every index the traversal follows, so a malformed
// document fails with ErrInvalidGLTF instead of indexing out of range.
func checkRefs(doc *gltf.Document) error {
	if doc.Scene != nil && !inRange(int(*doc.Scene), len(doc.Scenes)) {
		return invalid("scene %d of %d", *doc.Scene, len(doc.Scenes))
	}
	for si, sc := range doc.Scenes {
		if sc == nil {
			return invalid("scene %d is null", si)
		}
		for _, n := range sc.Nodes {
			if !inRange(int(n), len(doc.Nodes)) {
				return invalid("scene %d: node %d of %d", si, n, len(doc.Nodes))
			}
		}
	}
	for ni, n := range doc.Nodes {
		if n == nil {
			return invalid("node %d is null", ni)
		}
		for _, c := range n.Children {
			if !inRange(int(c), len(doc.Nodes)) {
				return invalid("node %d: child %d of %d", ni, c, len(doc.Nodes))
			}
			if int(c) == ni {
				return invalid("node %d is its own child", ni)
			}
		}
		if n.Mesh != nil && !inRange(int(*n.Mesh), len(doc.Meshes)) {
			return invalid("node %d: mesh %d of %d", ni, *n.Mesh, len(doc.Meshes))
		}
	}
	for mi, m := range doc.Meshes {
		if m == nil {
			return invalid("mesh %d is null", mi)
		}
		for pi, p := range m.Primitives {
			if p == nil {
				return invalid("mesh %d primitive %d is null", mi, pi)
			}
			for name, a := range p.Attributes {
				if !inRange(int(a), len(doc.Accessors)) {
					return invalid("mesh %d primitive %d: %s accessor %d of %d", mi, pi, name, a, len(doc.Accessors))
				}
			}
			if p.Indices != nil && !inRange(int(*p.Indices), len(doc.Accessors)) {
				return invalid("mesh %d primitive %d: index accessor %d of %d", mi, pi, *p.Indices, len(doc.Accessors))
			}
			if p.Material != nil && !inRange(int(*p.Material), len(doc.Materials)) {
				return invalid("mesh %d primitive %d: material %d of %d", mi, pi, *p.Material, len(doc.Materials))
			}
		}
	}
	for bi, b := range doc.Buffers {
		if b == nil {
			return invalid("buffer %d is null", bi)
		}
	}
	for vi, bv := range doc.BufferViews {
		if bv == nil {
			return invalid("buffer view %d is null", vi)
		}
		if !inRange(int(bv.Buffer), len(doc.Buffers)) {
			return invalid("buffer view %d: buffer %d of %d", vi, bv.Buffer, len(doc.Buffers))
		}
		end := int(bv.ByteOffset) + int(bv.ByteLength)
		if end > len(doc.Buffers[bv.Buffer].Data) {
			return invalid("buffer view %d: bytes %d..%d outside buffer %d", vi, bv.ByteOffset, end, bv.Buffer)
		}
	}
	for ai, a := range doc.Accessors {
		if a == nil {
			return invalid("accessor %d is null", ai)
		}
		if sp := a.Sparse; sp != nil {
			if !inRange(int(sp.Indices.BufferView), len(doc.BufferViews)) || !inRange(int(sp.Values.BufferView), len(doc.BufferViews)) {
				return invalid("accessor %d: sparse buffer view out of range", ai)
			}
		}
		elem := int(a.ComponentType.ByteSize()) * int(a.Type.Components())
		if a.BufferView == nil {
			// Zero-filled on read.
			if int(a.Count)*elem > maxZeroAccessorBytes {
				return invalid("accessor %d: %d elements without a buffer view", ai, a.Count)
			}
			continue
		}
		if !inRange(int(*a.BufferView), len(doc.BufferViews)) {
			return invalid("accessor %d: buffer view %d of %d", ai, *a.BufferView, len(doc.BufferViews))
		}
		bv := doc.BufferViews[*a.BufferView]
		need := int(a.ByteOffset)
		if a.Count > 0 {
			step := int(bv.ByteStride)
			if step == 0 {
				step = elem
			}
			need += step*(int(a.Count)-1) + elem
		}
		if need > int(bv.ByteLength) {
			return invalid("accessor %d: %d bytes needed, buffer view has %d", ai, need, bv.ByteLength)
		}
	}
	for mi, m := range doc.Materials {
		if m == nil {
			return invalid("material %d is null", mi)
		}
		pbr := m.PBRMetallicRoughness
		if pbr == nil || pbr.BaseColorTexture == nil {
			continue
		}
		if !inRange(int(pbr.BaseColorTexture.Index), len(doc.Textures)) {
			return invalid("material %d: texture %d of %d", mi, pbr.BaseColorTexture.Index, len(doc.Textures))
		}
	}
	for ti, t := range doc.Textures {
		if t == nil {
			return invalid("texture %d is null", ti)
		}
		if t.Source != nil && !inRange(int(*t.Source), len(doc.Images)) {
			return invalid("texture %d: image %d of %d", ti, *t.Source, len(doc.Images))
		}
	}
	for ii, img := range doc.Images {
		if img == nil {
			return invalid("image %d is null", ii)
		}
		if img.BufferView != nil && !inRange(int(*img.BufferView), len(doc.BufferViews)) {
			return invalid("image %d: buffer view %d of %d", ii, *img.BufferView, len(doc.BufferViews))
		}
	}
	return nil
}

// rootNodes returns the default scene's nodes, or every parentless node when no scene is set.
func rootNodes(doc *gltf.Document) ([]*gltf.Node, error) {
	if len(doc.Scenes) > 0 {
		scene := doc.Scenes[0]
		if doc.Scene != nil {
			scene = doc.Scenes[*doc.Scene]
		}
		roots := make([]*gltf.Node, 0, len(scene.Nodes))
		for _, i := range scene.Nodes {
			roots = append(roots, doc.Nodes[i])
		}
		return roots, nil
	}

	isChild := make(map[*gltf.Node]bool)
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			isChild[doc.Nodes[c]] = true
		}
	}
	var roots []*gltf.Node
	for _, n := range doc.Nodes {
		if !isChild[n] {
			roots = append(roots, n)
		}
	}
	if len(roots) == 0 && len(doc.Nodes) > 0 {
		return nil, invalid("no scene and no root nodes")
	}
	return roots, nil
}

// nodeMatrix returns the local transform, treating zero-valued fields as glTF defaults.
func nodeMatrix(n *gltf.Node) math.Mat4 {
	var m math.Mat4
	zero := true
	for i := range n.Matrix {
		m[i] = float32(n.Matrix[i])
		if m[i] != 0 {
			zero = false
		}
	}
	if !zero && m != math.Identity() {
		return m
	}

	t := math.Translate(float32(n.Translation[0]), float32(n.Translation[1]), float32(n.Translation[2]))
	r := math.Quat{
		X: float32(n.Rotation[0]),
		Y: float32(n.Rotation[1]),
		Z: float32(n.Rotation[2]),
		W: float32(n.Rotation[3]),
	}.ToMat4()
	sx, sy, sz := float32(n.Scale[0]), float32(n.Scale[1]), float32(n.Scale[2])
	if sx == 0 && sy == 0 && sz == 0 {
		sx, sy, sz = 1, 1, 1
	}
	return t.Mul(r).Mul(math.Scale(sx, sy, sz))
}

func readPrimitive(doc *gltf.Document, p *gltf.Primitive, world math.Mat4, textures map[*gltf.Image]image.Image) (Primitive, bool, error) {
	out := Primitive{BaseColor: [4]float32{1, 1, 1, 1}}
	if p.Mode != gltf.PrimitiveTriangles {
		return out, false, nil
	}
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return out, false, nil
	}

	positions, err := modeler.ReadPosition(doc, doc.Accessors[posIdx], nil)
	if err != nil {
		return out, false, fmt.Errorf("read positions: %w", err)
	}
	out.Positions = make([][3]float32, len(positions))
	for i, v := range positions {
		out.Positions[i] = world.TransformPoint(v)
	}

	if idx, ok := p.Attributes[gltf.NORMAL]; ok {
		normals, err := modeler.ReadNormal(doc, doc.Accessors[idx], nil)
		if err != nil {
			return out, false, fmt.Errorf("read normals: %w", err)
		}
		// Rotation part only; models are rescaled uniformly afterwards.
		out.Normals = make([][3]float32, len(normals))
		for i, n := range normals {
			out.Normals[i] = math.FromArray(world.TransformDirection(n)).Normalize().Array()
		}
	}

	if idx, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		uvs, err := modeler.ReadTextureCoord(doc, doc.Accessors[idx], nil)
		if err != nil {
			return out, false, fmt.Errorf("read texcoords: %w", err)
		}
		out.TexCoords = uvs
	}

	if p.Indices != nil {
		indices, err := modeler.ReadIndices(doc, doc.Accessors[*p.Indices], nil)
		if err != nil {
			return out, false, fmt.Errorf("read indices: %w", err)
		}
		out.Indices = indices
	} else {
		out.Indices = make([]uint32, len(out.Positions))
		for i := range out.Indices {
			out.Indices[i] = uint32(i)
		}
	}

	if p.Material != nil {
		readMaterial(doc, doc.Materials[*p.Material], &out, textures)
	}
	return out, true, nil
}

// readMaterial copies the base color factor and texture. Texture failures are
// not fatal; the primitive keeps its flat color.
func readMaterial(doc *gltf.Document, mat *gltf.Material, out *Primitive, textures map[*gltf.Image]image.Image) {
	pbr := mat.PBRMetallicRoughness
	if pbr == nil {
		return
	}
	if f := pbr.BaseColorFactor; f != nil {
		out.BaseColor = [4]float32{float32(f[0]), float32(f[1]), float32(f[2]), float32(f[3])}
	}
	if pbr.BaseColorTexture == nil {
		return
	}
	tex := doc.Textures[pbr.BaseColorTexture.Index]
	if tex.Source == nil {
		return
	}
	img := doc.Images[*tex.Source]
	if decoded, ok := textures[img]; ok {
		out.Texture = decoded
		return
	}

	var raw []byte
	switch {
	case img.BufferView != nil:
		bv := doc.BufferViews[*img.BufferView]
		buf := doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if int(end) > len(buf) {
			return
		}
		raw = buf[bv.ByteOffset:end]
	case strings.HasPrefix(img.URI, "data:"):
		data, err := img.MarshalData()
		if err != nil {
			return
		}
		raw = data
	default:
		return
	}

	decoded, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return
	}
	textures[img] = decoded
	out.Texture = decoded
}
