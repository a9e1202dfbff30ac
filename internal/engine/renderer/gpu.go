package renderer

import (
	"image"
	"unsafe"

	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/arscene/internal/engine/mesh"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/pkg/math"
)

// gpuMesh is an uploaded indexed mesh.
type gpuMesh struct {
	vao, vbo, ebo uint32
	count         int32
}

func uploadMesh(m *mesh.Mesh) *gpuMesh {
	g := &gpuMesh{count: int32(len(m.Indices))}
	if len(m.Vertices) == 0 || len(m.Indices) == 0 {
		return g
	}

	gl.GenVertexArrays(1, &g.vao)
	gl.BindVertexArray(g.vao)

	gl.GenBuffers(1, &g.vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, g.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(m.Vertices)*int(unsafe.Sizeof(mesh.Vertex{})), gl.Ptr(m.Vertices), gl.STATIC_DRAW)

	gl.GenBuffers(1, &g.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, g.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(m.Indices)*4, gl.Ptr(m.Indices), gl.STATIC_DRAW)

	// Vertex: Position(12) + Normal(12) + TexCoord(8) = 32 bytes
	stride := int32(unsafe.Sizeof(mesh.Vertex{}))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, stride, 0)
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointerWithOffset(1, 3, gl.FLOAT, false, stride, 12)
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointerWithOffset(2, 2, gl.FLOAT, false, stride, 24)

	gl.BindVertexArray(0)
	return g
}

func (g *gpuMesh) draw() {
	if g.vao == 0 {
		return
	}
	gl.BindVertexArray(g.vao)
	gl.DrawElementsWithOffset(gl.TRIANGLES, g.count, gl.UNSIGNED_INT, 0)
}

func (g *gpuMesh) release() {
	if g.vao != 0 {
		gl.DeleteVertexArrays(1, &g.vao)
	}
	if g.vbo != 0 {
		gl.DeleteBuffers(1, &g.vbo)
	}
	if g.ebo != 0 {
		gl.DeleteBuffers(1, &g.ebo)
	}
	*g = gpuMesh{}
}

// uploadTexture creates a mipmapped RGBA texture from img.
func uploadTexture(img *image.RGBA) uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	gl.BindTexture(gl.TEXTURE_2D, tex)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	texImage(img, false)
	gl.GenerateMipmap(gl.TEXTURE_2D)
	return tex
}

// texImage uploads img into the bound texture, reusing storage when sub is
// set and the size is unchanged.
func texImage(img *image.RGBA, sub bool) {
	b := img.Bounds()
	gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, int32(img.Stride/4))
	pix := gl.Ptr(img.Pix[img.PixOffset(b.Min.X, b.Min.Y):])
	if sub {
		gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(b.Dx()), int32(b.Dy()), gl.RGBA, gl.UNSIGNED_BYTE, pix)
	} else {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, pix)
	}
	gl.PixelStorei(gl.UNPACK_ROW_LENGTH, 0)
}

// hasTransparency reports whether any pixel of img is not fully opaque.
func hasTransparency(img *image.RGBA) bool {
	if img == nil {
		return false
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		row := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X, y)]
		for i := 3; i < len(row); i += 4 {
			if row[i] != 0xff {
				return true
			}
		}
	}
	return false
}

// gpuPart is one uploaded content part.
type gpuPart struct {
	mesh      *gpuMesh
	texture   uint32
	material  scene.Material
	transform math.Mat4
	blend     bool
}

// gpuNode holds the uploaded content of one node.
type gpuNode struct {
	content *scene.Content
	parts   []gpuPart
}

// uploadContent uploads every part of c. Textures shared between parts are
// uploaded once.
func uploadContent(c *scene.Content) *gpuNode {
	g := &gpuNode{content: c, parts: make([]gpuPart, 0, len(c.Parts))}
	textures := make(map[*image.RGBA]uint32)
	for _, p := range c.Parts {
		gp := gpuPart{
			mesh:      uploadMesh(p.Mesh),
			material:  p.Material,
			transform: p.Transform,
		}
		if img := p.Material.Texture; img != nil {
			tex, ok := textures[img]
			if !ok {
				tex = uploadTexture(img)
				textures[img] = tex
			}
			gp.texture = tex
			gp.blend = hasTransparency(img)
		}
		g.parts = append(g.parts, gp)
	}
	return g
}

func (g *gpuNode) release() {
	seen := make(map[uint32]bool)
	for i := range g.parts {
		p := &g.parts[i]
		p.mesh.release()
		if p.texture != 0 && !seen[p.texture] {
			seen[p.texture] = true
			gl.DeleteTextures(1, &p.texture)
		}
	}
	g.parts = nil
}
