package common

import (
	"github.com/chewxy/math32"
)

// Identity resets a 4x4 matrix (flat slice) to the identity matrix.
// The matrix is stored in column-major order.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	for i := range m {
		m[i] = 0
	}
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// ClipCorrection is the matrix that maps OpenGL clip depth [-1, 1] into the
// WebGPU range [0, 1], written column-major. Its rows are
// [1,0,0,0] [0,1,0,0] [0,0,-1,1] [0,0,0,1].
var ClipCorrection = [16]float32{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, -1, 0,
	0, 0, 1, 1,
}

// Mul4 multiplies two 4x4 matrices and stores the result in out.
// All matrices are stored in column-major order. Result: out = a * b
//
// Parameters:
//   - out: destination slice (must be at least 16 elements, may alias a or b)
//   - a: left-hand matrix (16 elements)
//   - b: right-hand matrix (16 elements)
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			buf[col*4+row] = sum
		}
	}
	copy(out, buf[:])
}

// Invert4 computes the inverse of a 4x4 column-major matrix with the cofactor
// method. A zero, NaN or infinite determinant counts as singular: out is left
// untouched and false is returned.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - m: source matrix (16 elements, column-major)
//
// Returns:
//   - bool: true if the matrix was inverted, false if singular
func Invert4(out, m []float32) bool {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 || math32.IsNaN(det) || math32.IsInf(det, 0) {
		return false
	}
	inv := 1 / det

	var r [16]float32
	r[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * inv
	r[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * inv
	r[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * inv
	r[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * inv

	r[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * inv
	r[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * inv
	r[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * inv
	r[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * inv

	r[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * inv
	r[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * inv
	r[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * inv
	r[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * inv

	r[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * inv
	r[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * inv
	r[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * inv
	r[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * inv

	for _, v := range r {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	copy(out, r[:])
	return true
}

// LookAtLH builds a left-handed view matrix: the camera sits at eye and its
// +Z axis points at target. A degenerate basis (eye == target, or up parallel
// to the view direction) yields a singular matrix.
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - eye: camera position in world space
//   - target: point the camera looks at
//   - up: world up vector
func LookAtLH(out []float32, eye, target, up [3]float32) {
	z := Normalize(Sub3(target, eye))
	x := Normalize(Cross(up, z))
	y := Cross(z, x)

	out[0], out[4], out[8], out[12] = x[0], x[1], x[2], -Dot(x, eye)
	out[1], out[5], out[9], out[13] = y[0], y[1], y[2], -Dot(y, eye)
	out[2], out[6], out[10], out[14] = z[0], z[1], z[2], -Dot(z, eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// Cross returns a × b.
func Cross(a, b [3]float32) [3]float32 {
	return [3]float32{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

// Dot returns a · b.
func Dot(a, b [3]float32) float32 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Sub3 returns a - b.
func Sub3(a, b [3]float32) [3]float32 {
	return [3]float32{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Length returns the Euclidean length of v.
func Length(v [3]float32) float32 {
	return math32.Sqrt(Dot(v, v))
}

// Normalize returns v scaled to unit length. A zero vector is returned as-is.
//
// Parameters:
//   - v: the vector to normalize
//
// Returns:
//   - [3]float32: the unit vector, or the zero vector
func Normalize(v [3]float32) [3]float32 {
	l := Length(v)
	if l == 0 {
		return v
	}
	return [3]float32{v[0] / l, v[1] / l, v[2] / l}
}

// DegToRad converts an angle in degrees to radians.
func DegToRad(deg float32) float32 {
	return deg * math32.Pi / 180
}

// Finite reports whether every element of m is neither NaN nor infinite.
func Finite(m []float32) bool {
	for _, v := range m {
		if math32.IsNaN(v) || math32.IsInf(v, 0) {
			return false
		}
	}
	return true
}
