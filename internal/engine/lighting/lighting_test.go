package lighting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Faultbox/arscene/pkg/math"
)

func TestSunDirection(t *testing.T) {
	tests := []struct {
		name          string
		azimuth, elev float32
		want          math.Vec3
	}{
		{"zenith", 0, 90, math.Vec3{Y: 1}},
		{"south horizon", 0, 1, math.Vec3{X: 0, Y: 0.017452, Z: 0.999848}},
		{"east 45", 90, 45, math.Vec3{X: 0.707107, Y: 0.707107}},
		{"below horizon clamps", 0, -30, math.Vec3{X: 0, Y: 0.017452, Z: 0.999848}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SunDirection(tt.azimuth, tt.elev)
			assert.InDelta(t, tt.want.X, got.X, 1e-4)
			assert.InDelta(t, tt.want.Y, got.Y, 1e-4)
			assert.InDelta(t, tt.want.Z, got.Z, 1e-4)
			assert.InDelta(t, 1, got.Length(), 1e-5)
		})
	}
}

func TestPointLightBuffer(t *testing.T) {
	b := NewPointLightBuffer()
	for i := 0; i < MaxPointLights; i++ {
		assert.True(t, b.AddLight(PointLight{Position: [3]float32{float32(i), 0, 0}, Color: [3]float32{2, -1, 0.5}, Intensity: 2}))
	}
	assert.False(t, b.AddLight(PointLight{}), "full")
	assert.Equal(t, MaxPointLights, b.Count())

	colors := b.Colors()
	assert.Equal(t, []float32{2, 0, 1}, colors[:3], "clamped then scaled")
	assert.Equal(t, float32(3), b.Positions()[9])
	assert.Equal(t, float32(1), b.Ranges()[0], "non-positive range defaults")

	b.Clear()
	assert.Zero(t, b.Count())
	assert.Len(t, b.Positions(), MaxPointLights*3)
}

func TestSelectionGlowAboveNode(t *testing.T) {
	l := SelectionGlow(math.Vec3{X: 1, Y: 1, Z: -2})
	assert.Equal(t, [3]float32{1, 2.2, -2}, l.Position)
	assert.Greater(t, l.Range, float32(0))
}
