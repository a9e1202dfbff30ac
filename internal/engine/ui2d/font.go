package ui2d

import (
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	firstGlyph   = 32
	lastGlyph    = 126
	atlasColumns = 16
	fallback     = '?'
)

// Font is a fixed-width bitmap font baked into a texture atlas.
type Font struct {
	atlas         *image.RGBA
	glyphW        int
	glyphH        int
	texture       uint32
	uploadPending bool
}

// NewFont bakes the printable ASCII range of the 7x13 face. The GL texture is
// created on first use.
func NewFont() *Font {
	face := basicfont.Face7x13
	gw, gh := face.Advance, face.Height
	rows := (lastGlyph - firstGlyph + atlasColumns) / atlasColumns
	atlas := image.NewRGBA(image.Rect(0, 0, atlasColumns*gw, rows*gh))

	d := font.Drawer{Dst: atlas, Src: image.White, Face: face}
	for r := rune(firstGlyph); r <= lastGlyph; r++ {
		i := int(r - firstGlyph)
		x, y := (i%atlasColumns)*gw, (i/atlasColumns)*gh
		d.Dot = fixed.P(x, y+face.Ascent)
		d.DrawString(string(r))
	}
	return &Font{atlas: atlas, glyphW: gw, glyphH: gh, uploadPending: true}
}

// GlyphSize returns the cell size in pixels at scale 1.
func (f *Font) GlyphSize() (int, int) { return f.glyphW, f.glyphH }

// GlyphUV returns the atlas rectangle of r. Runes outside the baked range
// use '?'.
func (f *Font) GlyphUV(r rune) (u0, v0, u1, v1 float32) {
	if r < firstGlyph || r > lastGlyph {
		r = fallback
	}
	i := int(r - firstGlyph)
	b := f.atlas.Bounds()
	x, y := (i%atlasColumns)*f.glyphW, (i/atlasColumns)*f.glyphH
	return float32(x) / float32(b.Dx()), float32(y) / float32(b.Dy()),
		float32(x+f.glyphW) / float32(b.Dx()), float32(y+f.glyphH) / float32(b.Dy())
}

// MeasureText returns the size of text drawn at scale. Lines are split on
// '\n'.
func (f *Font) MeasureText(text string, scale float32) (float32, float32) {
	lines, longest, cur := 1, 0, 0
	for _, r := range text {
		if r == '\n' {
			lines++
			cur = 0
			continue
		}
		cur++
		longest = max(longest, cur)
	}
	return float32(longest*f.glyphW) * scale, float32(lines*f.glyphH) * scale
}

// TextureID returns the atlas texture, uploading it on first call.
func (f *Font) TextureID() uint32 {
	if f.uploadPending {
		f.uploadPending = false
		gl.GenTextures(1, &f.texture)
		gl.BindTexture(gl.TEXTURE_2D, f.texture)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		b := f.atlas.Bounds()
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(b.Dx()), int32(b.Dy()), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(f.atlas.Pix))
	}
	return f.texture
}

// Close deletes the texture.
func (f *Font) Close() {
	if f.texture != 0 {
		gl.DeleteTextures(1, &f.texture)
		f.texture = 0
	}
}
