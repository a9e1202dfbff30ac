package math

import "github.com/chewxy/math32"

// Tau is a full turn in radians.
const Tau = 2 * math32.Pi

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates between a and b.
func Lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// WrapAngle maps an angle in radians into [0, 2π).
func WrapAngle(a float32) float32 {
	a = math32.Mod(a, Tau)
	if a < 0 {
		a += Tau
	}
	if a >= Tau {
		a = 0
	}
	return a
}

// ExpDecay returns the fraction of the remaining distance to cover this frame
// when approaching a target at the given rate (1/s).
func ExpDecay(rate, dt float32) float32 {
	if rate <= 0 || dt <= 0 {
		return 0
	}
	return 1 - math32.Exp(-rate*dt)
}

// Radians converts degrees to radians.
func Radians(deg float32) float32 {
	return deg * math32.Pi / 180
}

// Degrees converts radians to degrees.
func Degrees(rad float32) float32 {
	return rad * 180 / math32.Pi
}
