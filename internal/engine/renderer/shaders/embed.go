// Package shaders provides embedded GLSL shader sources.
package shaders

import _ "embed"

// SceneVertexShader transforms node parts and the floor.
//
//go:embed scene.vert
var SceneVertexShader string

// SceneFragmentShader shades node parts with the sun, point lights and shadows.
//
//go:embed scene.frag
var SceneFragmentShader string

// FloorFragmentShader draws only the shadow falling on the floor.
//
//go:embed floor.frag
var FloorFragmentShader string

// ShadowVertexShader renders depth from the sun.
//
//go:embed shadow.vert
var ShadowVertexShader string

// ShadowFragmentShader is the empty depth-pass fragment stage.
//
//go:embed shadow.frag
var ShadowFragmentShader string

// BackgroundVertexShader emits a fullscreen triangle pair.
//
//go:embed background.vert
var BackgroundVertexShader string

// BackgroundFragmentShader samples the camera frame.
//
//go:embed background.frag
var BackgroundFragmentShader string

// LinesVertexShader transforms world-space line lists.
//
//go:embed lines.vert
var LinesVertexShader string

// LinesFragmentShader fills lines with a flat color.
//
//go:embed lines.frag
var LinesFragmentShader string
