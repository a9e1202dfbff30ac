// Package renderer draws a mounted scene: the camera backdrop, the node
// contents lit by the sun and the shadows they cast on an invisible floor.
package renderer

import (
	"fmt"
	"image"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"

	"github.com/Faultbox/arscene/internal/engine/camera"
	"github.com/Faultbox/arscene/internal/engine/framebuffer"
	"github.com/Faultbox/arscene/internal/engine/lighting"
	"github.com/Faultbox/arscene/internal/engine/mesh"
	"github.com/Faultbox/arscene/internal/engine/renderer/shaders"
	"github.com/Faultbox/arscene/internal/engine/scene"
	"github.com/Faultbox/arscene/internal/engine/shader"
	"github.com/Faultbox/arscene/internal/engine/shadow"
	"github.com/Faultbox/arscene/pkg/math"
)

// Scene is what the renderer reads each frame. *engine.Engine implements it.
type Scene interface {
	Nodes() []*scene.Node
	Generation() uint64
	Selected() int
	Background() (*image.RGBA, uint64, bool)
	Controls() *camera.OrbitControls
}

// Config holds renderer settings.
type Config struct {
	Width, Height    int
	Shadows          bool
	ShadowResolution int32
	SunAzimuth       float32 // degrees
	SunElevation     float32 // degrees
	FloorOpacity     float32
	ClearColor       [4]float32 // shown until the first camera frame
	ShowBounds       bool       // outline node bounding boxes
}

// Renderer handles all OpenGL rendering.
// It must be created after the GL context and used on the frame thread.
type Renderer struct {
	cfg Config
	log *zap.Logger

	scene      *shader.Program
	floor      *shader.Program
	depth      *shader.Program
	background *shader.Program
	lines      *shader.Program

	shadowMap *shadow.Map
	sun       lighting.Sun
	lights    *lighting.PointLightBuffer

	emptyVAO  uint32 // attribute-less draws
	floorMesh *gpuMesh
	floorSize mesh.Bounds

	bgTex  uint32
	bgSeq  uint64
	bgSize image.Point

	generation uint64
	nodes      map[int]*gpuNode

	capture *framebuffer.Framebuffer
	items   []drawItem

	linesVAO  uint32
	linesVBO  uint32
	lineVerts []float32
}

// New creates a renderer.
// IMPORTANT: Must be called AFTER OpenGL context is created!
func New(cfg Config, log *zap.Logger) (*Renderer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("initialize OpenGL: %w", err)
	}
	log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))),
	)

	if cfg.FloorOpacity <= 0 {
		cfg.FloorOpacity = 0.45
	}
	r := &Renderer{
		cfg:    cfg,
		log:    log,
		sun:    lighting.NewSun(cfg.SunAzimuth, cfg.SunElevation),
		lights: lighting.NewPointLightBuffer(),
		nodes:  make(map[int]*gpuNode),
	}

	var err error
	if r.scene, err = shader.New("scene", shaders.SceneVertexShader, shaders.SceneFragmentShader); err != nil {
		return nil, err
	}
	if r.floor, err = shader.New("floor", shaders.SceneVertexShader, shaders.FloorFragmentShader); err != nil {
		return nil, err
	}
	if r.depth, err = shader.New("shadow", shaders.ShadowVertexShader, shaders.ShadowFragmentShader); err != nil {
		return nil, err
	}
	if r.background, err = shader.New("background", shaders.BackgroundVertexShader, shaders.BackgroundFragmentShader); err != nil {
		return nil, err
	}
	if cfg.ShowBounds {
		if r.lines, err = shader.New("lines", shaders.LinesVertexShader, shaders.LinesFragmentShader); err != nil {
			return nil, err
		}
		r.createLineBuffers()
	}

	if cfg.Shadows {
		r.shadowMap, err = shadow.NewMap(cfg.ShadowResolution)
		if err != nil {
			log.Warn("shadows disabled", zap.Error(err))
			r.cfg.Shadows = false
		}
	}

	gl.GenVertexArrays(1, &r.emptyVAO)
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)
	r.Resize(cfg.Width, cfg.Height)
	return r, nil
}

// Close releases every GL resource.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	r.releaseNodes()
	if r.floorMesh != nil {
		r.floorMesh.release()
	}
	if r.bgTex != 0 {
		gl.DeleteTextures(1, &r.bgTex)
	}
	if r.emptyVAO != 0 {
		gl.DeleteVertexArrays(1, &r.emptyVAO)
	}
	if r.linesVAO != 0 {
		gl.DeleteVertexArrays(1, &r.linesVAO)
		gl.DeleteBuffers(1, &r.linesVBO)
	}
	if r.capture != nil {
		r.capture.Destroy()
	}
	r.shadowMap.Destroy()
	for _, p := range []*shader.Program{r.scene, r.floor, r.depth, r.background, r.lines} {
		p.Delete()
	}
}

// Resize handles a drawable size change.
func (r *Renderer) Resize(width, height int) {
	r.cfg.Width, r.cfg.Height = width, height
	gl.Viewport(0, 0, int32(width), int32(height))
	r.log.Debug("renderer resized", zap.Int("width", width), zap.Int("height", height))
}

// Render draws s into the default framebuffer.
func (r *Renderer) Render(s Scene) {
	r.render(s, 0, int32(r.cfg.Width), int32(r.cfg.Height))
}

// Clear fills the default framebuffer with the clear color, for frames
// without a scene.
func (r *Renderer) Clear() {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(r.cfg.Width), int32(r.cfg.Height))
	c := r.cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Capture renders s offscreen at the drawable size and reads it back.
func (r *Renderer) Capture(s Scene) (*image.RGBA, error) {
	w, h := int32(r.cfg.Width), int32(r.cfg.Height)
	if r.capture == nil {
		fb, err := framebuffer.New(w, h)
		if err != nil {
			return nil, err
		}
		r.capture = fb
	}
	r.capture.Resize(w, h)
	restore := r.capture.Bind()
	r.render(s, r.capture.FBO(), w, h)
	img := r.capture.Image()
	restore()
	return img, nil
}

func (r *Renderer) render(s Scene, target uint32, w, h int32) {
	r.sync(s)

	gl.BindFramebuffer(gl.FRAMEBUFFER, target)
	gl.Viewport(0, 0, w, h)
	c := r.cfg.ClearColor
	gl.ClearColor(c[0], c[1], c[2], c[3])
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if r.bgTex != 0 {
		r.drawBackground(float32(w), float32(h))
	}

	nodes := s.Nodes()
	r.collect(s, nodes)

	lightVP := math.Identity()
	if r.cfg.Shadows {
		lightVP = shadow.DirectionalLightMatrix(r.sun.Direction, shadow.CasterBounds(worldBounds(nodes), r.floorSize))
		r.drawShadows(lightVP, target)
	}

	viewProj := s.Controls().ViewProjection()
	r.drawNodes(viewProj, lightVP)
	if r.cfg.Shadows {
		r.drawFloor(viewProj, lightVP)
	}
	if r.cfg.ShowBounds {
		r.drawBounds(s, nodes, viewProj)
	}
	gl.BindVertexArray(0)
}

// sync brings GPU state in line with the scene: a new generation drops every
// uploaded node, newly attached content is uploaded and a new camera frame
// replaces the backdrop texture.
func (r *Renderer) sync(s Scene) {
	if gen := s.Generation(); gen != r.generation {
		r.releaseNodes()
		r.generation = gen
	}

	nodes := s.Nodes()
	for _, n := range nodes {
		if n.Content == nil {
			continue
		}
		if g, ok := r.nodes[n.Index]; ok && g.content == n.Content {
			continue
		}
		r.nodes[n.Index] = uploadContent(n.Content)
	}

	floor := FloorExtent(nodes)
	if r.floorMesh == nil || floor != r.floorSize {
		if r.floorMesh != nil {
			r.floorMesh.release()
		}
		size := floor.Size()
		m := mesh.Quad(size.X, size.Z)
		m.Apply(math.RotateX(-math.Tau / 4))
		r.floorMesh = uploadMesh(m)
		r.floorSize = floor
	}

	img, seq, ok := s.Background()
	switch {
	case !ok:
		if r.bgTex != 0 {
			gl.DeleteTextures(1, &r.bgTex)
			r.bgTex, r.bgSeq = 0, 0
		}
	case seq != r.bgSeq || r.bgTex == 0:
		r.uploadBackground(img)
		r.bgSeq = seq
	}
}

func (r *Renderer) uploadBackground(img *image.RGBA) {
	size := img.Bounds().Size()
	if r.bgTex == 0 {
		gl.GenTextures(1, &r.bgTex)
		gl.BindTexture(gl.TEXTURE_2D, r.bgTex)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
		r.bgSize = image.Point{}
	}
	gl.BindTexture(gl.TEXTURE_2D, r.bgTex)
	texImage(img, size == r.bgSize)
	r.bgSize = size
}

func (r *Renderer) releaseNodes() {
	for i, g := range r.nodes {
		g.release()
		delete(r.nodes, i)
	}
}

// collect builds the sorted draw list and the point lights for this frame.
func (r *Renderer) collect(s Scene, nodes []*scene.Node) {
	eye := s.Controls().Position()
	r.items = r.items[:0]
	r.lights.Clear()
	for _, n := range nodes {
		g, ok := r.nodes[n.Index]
		if !ok {
			continue
		}
		world := n.WorldMatrix()
		if n.Index == s.Selected() {
			r.lights.AddLight(lighting.SelectionGlow(n.WorldPosition()))
		}
		for i := range g.parts {
			p := &g.parts[i]
			model := world.Mul(p.transform)
			d := model.Translation().Sub(eye)
			r.items = append(r.items, drawItem{node: n, part: p, model: model, depth: d.Dot(d)})
		}
	}
	sortDrawItems(r.items)
}

func (r *Renderer) drawBackground(w, h float32) {
	scale, offset := CoverFit(float32(r.bgSize.X), float32(r.bgSize.Y), w, h)
	gl.Disable(gl.DEPTH_TEST)
	r.background.Use()
	r.background.SetInt("uFrame", 0)
	gl.Uniform2f(r.background.Uniform("uUVScale"), scale[0], scale[1])
	gl.Uniform2f(r.background.Uniform("uUVOffset"), offset[0], offset[1])
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, r.bgTex)
	gl.BindVertexArray(r.emptyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.Enable(gl.DEPTH_TEST)
}

func (r *Renderer) drawShadows(lightVP math.Mat4, target uint32) {
	r.shadowMap.Begin()
	r.depth.Use()
	r.depth.SetMat4("uLightViewProj", lightVP)
	for _, it := range r.items {
		if !it.part.material.CastShadow {
			continue
		}
		r.depth.SetMat4("uModel", it.model)
		it.part.mesh.draw()
	}
	r.shadowMap.End(target)
}

func (r *Renderer) drawNodes(viewProj, lightVP math.Mat4) {
	p := r.scene
	p.Use()
	p.SetMat4("uViewProj", viewProj)
	p.SetMat4("uLightViewProj", lightVP)
	p.SetVec3("uSunDir", r.sun.Direction.Array())
	p.SetVec3("uSunColor", r.sun.Color)
	p.SetVec3("uAmbient", r.sun.Ambient)
	p.SetInt("uPointLightCount", int32(r.lights.Count()))
	p.SetVec3Array("uPointLightPos", r.lights.Positions())
	p.SetVec3Array("uPointLightColor", r.lights.Colors())
	p.SetFloatArray("uPointLightRange", r.lights.Ranges())
	p.SetInt("uTexture", 0)
	p.SetInt("uShadowMap", 1)
	p.SetBool("uShadows", r.cfg.Shadows)
	if r.cfg.Shadows {
		r.shadowMap.BindTexture(gl.TEXTURE1)
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	for _, it := range r.items {
		m := it.part.material
		if it.transparent() {
			gl.Enable(gl.BLEND)
			gl.DepthMask(false)
		} else {
			gl.Disable(gl.BLEND)
			gl.DepthMask(true)
		}
		p.SetMat4("uModel", it.model)
		p.SetVec4("uColor", m.Color)
		p.SetVec3("uEmissive", m.Emissive)
		p.SetBool("uUnlit", m.Unlit)
		p.SetFloat("uHighlight", math.Clamp(it.node.Scale-1, 0, 1))
		p.SetBool("uUseTexture", it.part.texture != 0)
		gl.ActiveTexture(gl.TEXTURE0)
		gl.BindTexture(gl.TEXTURE_2D, it.part.texture)
		it.part.mesh.draw()
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
}

func (r *Renderer) drawFloor(viewProj, lightVP math.Mat4) {
	p := r.floor
	p.Use()
	p.SetMat4("uModel", math.Identity())
	p.SetMat4("uViewProj", viewProj)
	p.SetMat4("uLightViewProj", lightVP)
	p.SetFloat("uOpacity", r.cfg.FloorOpacity)
	p.SetInt("uShadowMap", 1)
	r.shadowMap.BindTexture(gl.TEXTURE1)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	r.floorMesh.draw()
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.ActiveTexture(gl.TEXTURE0)
}
