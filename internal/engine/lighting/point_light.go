package lighting

import "github.com/Faultbox/arscene/pkg/math"

// MaxPointLights is the size of the point light arrays in the scene shader.
const MaxPointLights = 4

// PointLight is a local light with linear falloff to zero at Range.
type PointLight struct {
	Position  [3]float32
	Color     [3]float32 // 0-1
	Range     float32
	Intensity float32
}

// PointLightBuffer collects the point lights of one frame for upload.
type PointLightBuffer struct {
	Lights []PointLight
}

// NewPointLightBuffer creates an empty buffer.
func NewPointLightBuffer() *PointLightBuffer {
	return &PointLightBuffer{Lights: make([]PointLight, 0, MaxPointLights)}
}

// Clear removes all lights.
func (b *PointLightBuffer) Clear() {
	b.Lights = b.Lights[:0]
}

// Count returns the number of lights.
func (b *PointLightBuffer) Count() int { return len(b.Lights) }

// AddLight appends a light, clamping its color and range. It returns false
// when the buffer is full.
func (b *PointLightBuffer) AddLight(l PointLight) bool {
	if len(b.Lights) >= MaxPointLights {
		return false
	}
	for i := range l.Color {
		l.Color[i] = math.Clamp(l.Color[i], 0, 1)
	}
	if l.Range <= 0 {
		l.Range = 1
	}
	b.Lights = append(b.Lights, l)
	return true
}

// Positions returns positions packed as [x0 y0 z0 x1 ...], padded to
// MaxPointLights.
func (b *PointLightBuffer) Positions() []float32 {
	out := make([]float32, MaxPointLights*3)
	for i, l := range b.Lights {
		copy(out[i*3:], l.Position[:])
	}
	return out
}

// Colors returns colors premultiplied by intensity, packed like Positions.
func (b *PointLightBuffer) Colors() []float32 {
	out := make([]float32, MaxPointLights*3)
	for i, l := range b.Lights {
		for c := 0; c < 3; c++ {
			out[i*3+c] = l.Color[c] * l.Intensity
		}
	}
	return out
}

// Ranges returns the light ranges padded to MaxPointLights.
func (b *PointLightBuffer) Ranges() []float32 {
	out := make([]float32, MaxPointLights)
	for i, l := range b.Lights {
		out[i] = l.Range
	}
	return out
}

// SelectionGlow is the accent light hovering above a selected node.
func SelectionGlow(pos math.Vec3) PointLight {
	return PointLight{
		Position:  pos.Add(math.Vec3{Y: 1.2}).Array(),
		Color:     [3]float32{0.55, 0.75, 1.0},
		Range:     3,
		Intensity: 1.4,
	}
}
