package loader

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
	"golang.org/x/text/unicode/norm"

	"github.com/Faultbox/arscene/internal/engine/mesh"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/pkg/experience"
	"github.com/Faultbox/arscene/pkg/math"
)

// Sign raster layout, in pixels.
const (
	SignWidth    = 512
	SignHeight   = 256
	SignMaxWidth = 460
	signFontSize = 28
)

const emptyMessage = "(empty message)"

var (
	signBackground = color.RGBA{R: 250, G: 248, B: 240, A: 255}
	signInk        = color.RGBA{R: 32, G: 32, B: 40, A: 255}
	postColor      = [4]float32{0.35, 0.27, 0.2, 1}
)

// signText picks what the sign shows: the message, else the asset name,
// else a fixed fallback.
func signText(a experience.Asset) string {
	for _, s := range []string{a.TextContent, a.Name} {
		if s = strings.TrimSpace(norm.NFC.String(s)); s != "" {
			return s
		}
	}
	return emptyMessage
}

// WrapLines breaks text greedily: a word joins the current line while the
// line's measured width stays under maxWidth, otherwise it starts a new line.
// Explicit newlines always break. A single word that does not fit is split by
// runes.
func WrapLines(text string, maxWidth int, measure func(string) int) []string {
	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			for _, piece := range splitLongWord(w, maxWidth, measure) {
				candidate := piece
				if line != "" {
					candidate = line + " " + piece
				}
				if line == "" || measure(candidate) < maxWidth {
					line = candidate
					continue
				}
				lines = append(lines, line)
				line = piece
			}
		}
		lines = append(lines, line)
	}
	return lines
}

func splitLongWord(w string, maxWidth int, measure func(string) int) []string {
	if measure(w) < maxWidth {
		return []string{w}
	}
	var out []string
	start := 0
	for i := range w {
		if i > start && measure(w[start:i+runeLen(w[i:])]) >= maxWidth {
			out = append(out, w[start:i])
			start = i
		}
	}
	return append(out, w[start:])
}

func runeLen(s string) int {
	_, n := utf8.DecodeRuneInString(s)
	return n
}

// renderSign rasterizes text onto the sign canvas. Lines that do not fit
// vertically are dropped.
func (l *Loader) renderSign(text string) (*image.RGBA, []string, error) {
	face, err := opentype.NewFace(l.font, &opentype.FaceOptions{
		Size:    signFontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("sign font face: %w", err)
	}
	defer face.Close()

	measure := func(s string) int { return font.MeasureString(face, s).Ceil() }
	lines := WrapLines(text, SignMaxWidth, measure)

	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil()
	if lineHeight <= 0 {
		lineHeight = signFontSize
	}
	maxLines := (SignHeight - 2*16) / lineHeight
	if len(lines) > maxLines {
		lines = lines[:maxLines]
	}

	img := image.NewRGBA(image.Rect(0, 0, SignWidth, SignHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(signBackground), image.Point{}, draw.Src)

	d := &font.Drawer{Dst: img, Src: image.NewUniform(signInk), Face: face}
	top := (SignHeight - len(lines)*lineHeight) / 2
	for i, line := range lines {
		x := (SignWidth - measure(line)) / 2
		y := top + i*lineHeight + metrics.Ascent.Ceil()
		d.Dot = fixed.P(x, y)
		d.DrawString(line)
	}
	return img, lines, nil
}

// buildMessage mounts the text raster on a panel atop a post.
func (l *Loader) buildMessage(_ context.Context, _ string, a experience.Asset) (*scene.Content, error) {
	tex, _, err := l.renderSign(signText(a))
	if err != nil {
		return nil, err
	}

	const w = Footprint
	const h = Footprint * SignHeight / SignWidth
	const (
		postH      = 0.5
		postRadius = 0.04
	)

	return scene.NewContent(
		scene.Part{
			Name:      "face",
			Mesh:      mesh.Quad(w, h),
			Material:  scene.Material{Color: [4]float32{1, 1, 1, 1}, Texture: tex, Unlit: true},
			Transform: math.Identity(),
		},
		scene.Part{
			Name:      "board",
			Mesh:      mesh.Box(w+0.06, h+0.06, 0.04),
			Material:  scene.Material{Color: postColor, CastShadow: true, ReceiveShadow: true},
			Transform: math.Translate(0, 0, -0.025),
		},
		scene.Part{
			Name:      "post",
			Mesh:      mesh.Cylinder(postRadius, postH, 12),
			Material:  scene.Material{Color: postColor, CastShadow: true},
			Transform: math.Translate(0, -h/2-postH/2, -0.025),
		},
	), nil
}
