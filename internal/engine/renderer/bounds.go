package renderer

import (
	"github.com/go-gl/gl/v4.1-core/gl"

	"github.com/Faultbox/arscene/internal/engine/debug"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/pkg/math"
)

var (
	boundsColor    = [4]float32{1, 1, 1, 0.35}
	selectionColor = [4]float32{1, 0.8, 0.2, 0.9}
)

func (r *Renderer) createLineBuffers() {
	gl.GenVertexArrays(1, &r.linesVAO)
	gl.BindVertexArray(r.linesVAO)
	gl.GenBuffers(1, &r.linesVBO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.linesVBO)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 12, 0)
	gl.EnableVertexAttribArray(0)
	gl.BindVertexArray(0)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}

// drawBounds outlines the world bounds of every node with content. The
// selected node is drawn last in its own color.
func (r *Renderer) drawBounds(s Scene, nodes []*scene.Node, viewProj math.Mat4) {
	selected := s.Selected()
	r.lineVerts = r.lineVerts[:0]
	var sel []float32
	for _, n := range nodes {
		if n.Content == nil {
			continue
		}
		b := n.Content.Bounds.Transform(n.WorldMatrix())
		if n.Index == selected {
			sel = debug.AppendBoundsLines(nil, b, debug.BoundsPadding)
			continue
		}
		r.lineVerts = debug.AppendBoundsLines(r.lineVerts, b, debug.BoundsPadding)
	}
	plain := len(r.lineVerts)
	r.lineVerts = append(r.lineVerts, sel...)
	if len(r.lineVerts) == 0 {
		return
	}

	r.lines.Use()
	r.lines.SetMat4("uViewProj", viewProj)
	gl.BindVertexArray(r.linesVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.linesVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(r.lineVerts)*4, gl.Ptr(r.lineVerts), gl.STREAM_DRAW)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	if plain > 0 {
		r.lines.SetVec4("uColor", boundsColor)
		gl.DrawArrays(gl.LINES, 0, int32(plain/3))
	}
	if len(sel) > 0 {
		r.lines.SetVec4("uColor", selectionColor)
		gl.DrawArrays(gl.LINES, int32(plain/3), int32(len(sel)/3))
	}
	gl.Disable(gl.BLEND)
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)
}
