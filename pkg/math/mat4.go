package math

import "github.com/chewxy/math32"

// Mat4 is a 4x4 matrix in column-major order, ready for glUniformMatrix4fv.
// Element (row r, column c) lives at index c*4+r.
type Mat4 [16]float32

// Identity returns an identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective returns a right-handed perspective projection.
// fovY is in radians, aspect is width/height.
func Perspective(fovY, aspect, near, far float32) Mat4 {
	f := 1 / math32.Tan(fovY/2)
	nf := 1 / (near - far)

	var m Mat4
	m[0] = f / aspect
	m[5] = f
	m[10] = (far + near) * nf
	m[11] = -1
	m[14] = 2 * far * near * nf
	return m
}

// Ortho returns an orthographic projection.
func Ortho(left, right, bottom, top, near, far float32) Mat4 {
	m := Identity()
	m[0] = 2 / (right - left)
	m[5] = 2 / (top - bottom)
	m[10] = -2 / (far - near)
	m[12] = -(right + left) / (right - left)
	m[13] = -(top + bottom) / (top - bottom)
	m[14] = -(far + near) / (far - near)
	return m
}

// LookAt returns a view matrix looking from eye toward center.
func LookAt(eye, center, up Vec3) Mat4 {
	f := center.Sub(eye).Normalize()
	s := f.Cross(up).Normalize()
	u := s.Cross(f)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// Translate returns a translation matrix.
func Translate(x, y, z float32) Mat4 {
	m := Identity()
	m[12], m[13], m[14] = x, y, z
	return m
}

// TranslateVec is Translate for a Vec3.
func TranslateVec(v Vec3) Mat4 {
	return Translate(v.X, v.Y, v.Z)
}

// Scale returns a scale matrix.
func Scale(x, y, z float32) Mat4 {
	m := Identity()
	m[0], m[5], m[10] = x, y, z
	return m
}

// RotateX returns a rotation around the X axis (radians).
func RotateX(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[5], m[6] = c, s
	m[9], m[10] = -s, c
	return m
}

// RotateY returns a rotation around the Y axis (radians).
func RotateY(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[0], m[2] = c, -s
	m[8], m[10] = s, c
	return m
}

// RotateZ returns a rotation around the Z axis (radians).
func RotateZ(angle float32) Mat4 {
	s, c := math32.Sincos(angle)
	m := Identity()
	m[0], m[1] = c, s
	m[4], m[5] = -s, c
	return m
}

// TRS composes translation, yaw and uniform scale, the transform every scene node uses.
func TRS(pos Vec3, yaw, scale float32) Mat4 {
	return TranslateVec(pos).Mul(RotateY(yaw)).Mul(Scale(scale, scale, scale))
}

// Mul returns m * other.
func (m Mat4) Mul(other Mat4) Mat4 {
	var out Mat4
	for c := 0; c < 4; c++ {
		for r := 0; r < 4; r++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+r] * other[c*4+k]
			}
			out[c*4+r] = sum
		}
	}
	return out
}

// TransformPoint transforms a point (w=1), applying the perspective divide when needed.
func (m Mat4) TransformPoint(p [3]float32) [3]float32 {
	v := m.MulVec4(Vec4{p[0], p[1], p[2], 1})
	if v[3] != 0 && v[3] != 1 {
		return [3]float32{v[0] / v[3], v[1] / v[3], v[2] / v[3]}
	}
	return [3]float32{v[0], v[1], v[2]}
}

// TransformVec3 transforms a Vec3 point.
func (m Mat4) TransformVec3(v Vec3) Vec3 {
	return FromArray(m.TransformPoint(v.Array()))
}

// TransformDirection transforms a direction, ignoring translation.
func (m Mat4) TransformDirection(d [3]float32) [3]float32 {
	v := m.MulVec4(Vec4{d[0], d[1], d[2], 0})
	return [3]float32{v[0], v[1], v[2]}
}

// Translation returns the translation column.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[12], m[13], m[14]}
}

// Ptr returns a pointer to the first element for GL uniform calls.
func (m *Mat4) Ptr() *float32 {
	return &m[0]
}

// Vec4 is a 4-component vector.
type Vec4 [4]float32

// MulVec4 multiplies the matrix by a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	var out Vec4
	for r := 0; r < 4; r++ {
		out[r] = m[r]*v[0] + m[4+r]*v[1] + m[8+r]*v[2] + m[12+r]*v[3]
	}
	return out
}

// Inverse returns the inverse of m, or identity if m is singular.
func (m Mat4) Inverse() Mat4 {
	// Laplace expansion using 2x2 sub-determinants of the top and bottom row pairs.
	a00, a01, a02, a03 := m[0], m[4], m[8], m[12]
	a10, a11, a12, a13 := m[1], m[5], m[9], m[13]
	a20, a21, a22, a23 := m[2], m[6], m[10], m[14]
	a30, a31, a32, a33 := m[3], m[7], m[11], m[15]

	s0 := a00*a11 - a10*a01
	s1 := a00*a12 - a10*a02
	s2 := a00*a13 - a10*a03
	s3 := a01*a12 - a11*a02
	s4 := a01*a13 - a11*a03
	s5 := a02*a13 - a12*a03

	c5 := a22*a33 - a32*a23
	c4 := a21*a33 - a31*a23
	c3 := a21*a32 - a31*a22
	c2 := a20*a33 - a30*a23
	c1 := a20*a32 - a30*a22
	c0 := a20*a31 - a30*a21

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Identity()
	}
	inv := 1 / det

	b00 := (a11*c5 - a12*c4 + a13*c3) * inv
	b01 := (-a01*c5 + a02*c4 - a03*c3) * inv
	b02 := (a31*s5 - a32*s4 + a33*s3) * inv
	b03 := (-a21*s5 + a22*s4 - a23*s3) * inv

	b10 := (-a10*c5 + a12*c2 - a13*c1) * inv
	b11 := (a00*c5 - a02*c2 + a03*c1) * inv
	b12 := (-a30*s5 + a32*s2 - a33*s1) * inv
	b13 := (a20*s5 - a22*s2 + a23*s1) * inv

	b20 := (a10*c4 - a11*c2 + a13*c0) * inv
	b21 := (-a00*c4 + a01*c2 - a03*c0) * inv
	b22 := (a30*s4 - a31*s2 + a33*s0) * inv
	b23 := (-a20*s4 + a21*s2 - a23*s0) * inv

	b30 := (-a10*c3 + a11*c1 - a12*c0) * inv
	b31 := (a00*c3 - a01*c1 + a02*c0) * inv
	b32 := (-a30*s3 + a31*s1 - a32*s0) * inv
	b33 := (a20*s3 - a21*s1 + a22*s0) * inv

	// b_rc is row r, column c; store column-major.
	return Mat4{
		b00, b10, b20, b30,
		b01, b11, b21, b31,
		b02, b12, b22, b32,
		b03, b13, b23, b33,
	}
}
