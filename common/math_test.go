package common

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertMatrixInDelta(t *testing.T, want, got []float32, delta float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "element %d", i)
	}
}

func TestMul4Identity(t *testing.T) {
	var id [16]float32
	Identity(id[:])
	m := [16]float32{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	var out [16]float32
	Mul4(out[:], id[:], m[:])
	assert.Equal(t, m, out)

	Mul4(out[:], m[:], id[:])
	assert.Equal(t, m, out)
}

func TestMul4Translation(t *testing.T) {
	// translate by (1,2,3) then scale by 2: T * S applied to origin gives (1,2,3)
	translate := [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 1, 2, 3, 1}
	scale := [16]float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 1}

	var out [16]float32
	Mul4(out[:], translate[:], scale[:])
	assert.Equal(t, [16]float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 1, 2, 3, 1}, out)
}

func TestMul4Aliased(t *testing.T) {
	a := [16]float32{2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 2, 0, 0, 0, 0, 1}
	Mul4(a[:], a[:], a[:])
	assert.Equal(t, [16]float32{4, 0, 0, 0, 0, 4, 0, 0, 0, 0, 4, 0, 0, 0, 0, 1}, a)
}

func TestInvert4RoundTrip(t *testing.T) {
	m := [16]float32{
		2, 0, 0, 0,
		0, 3, 0, 0,
		0, 0, 4, 0,
		5, -6, 7, 1,
	}
	var inv, prod, id [16]float32
	require.True(t, Invert4(inv[:], m[:]))

	Mul4(prod[:], m[:], inv[:])
	Identity(id[:])
	assertMatrixInDelta(t, id[:], prod[:], 1e-5)
}

func TestInvert4Singular(t *testing.T) {
	tests := []struct {
		name string
		m    [16]float32
	}{
		{name: "zero", m: [16]float32{}},
		{name: "duplicate columns", m: [16]float32{1, 2, 3, 4, 1, 2, 3, 4, 0, 0, 1, 0, 0, 0, 0, 1}},
		{name: "nan", m: [16]float32{math32.NaN(), 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}},
		{name: "inf", m: [16]float32{math32.Inf(1), 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := [16]float32{9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9, 9}
			before := out
			assert.False(t, Invert4(out[:], tt.m[:]))
			assert.Equal(t, before, out)
		})
	}
}

func TestLookAtLHForwardIsPositiveZ(t *testing.T) {
	var view [16]float32
	eye := [3]float32{0, 2, -12}
	LookAtLH(view[:], eye, [3]float32{0, 2, -11}, [3]float32{0, 1, 0})

	// the eye maps to the origin of view space
	x := view[0]*eye[0] + view[4]*eye[1] + view[8]*eye[2] + view[12]
	y := view[1]*eye[0] + view[5]*eye[1] + view[9]*eye[2] + view[13]
	z := view[2]*eye[0] + view[6]*eye[1] + view[10]*eye[2] + view[14]
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)
	assert.InDelta(t, 0, z, 1e-6)

	// a point in front of the eye lands on +Z
	p := [3]float32{0, 2, -7}
	pz := view[2]*p[0] + view[6]*p[1] + view[10]*p[2] + view[14]
	assert.InDelta(t, 5, pz, 1e-5)

	// world +X stays +X for a camera looking down +Z with +Y up
	assert.InDelta(t, 1, view[0], 1e-6)
}

func TestLookAtLHDegenerateIsSingular(t *testing.T) {
	var view, inv [16]float32
	LookAtLH(view[:], [3]float32{0, 0, 0}, [3]float32{0, 5, 0}, [3]float32{0, 1, 0})
	assert.False(t, Invert4(inv[:], view[:]))
}

func TestClipCorrectionMapsDepth(t *testing.T) {
	// z' = w - z for a point with w = 1
	zNear := ClipCorrection[10]*-1 + ClipCorrection[14]*1
	zFar := ClipCorrection[10]*1 + ClipCorrection[14]*1
	assert.InDelta(t, 2, zNear, 1e-6)
	assert.InDelta(t, 0, zFar, 1e-6)
	assert.Equal(t, float32(1), ClipCorrection[15])
}

func TestVectorHelpers(t *testing.T) {
	assert.Equal(t, [3]float32{0, 0, 1}, Cross([3]float32{1, 0, 0}, [3]float32{0, 1, 0}))
	assert.Equal(t, float32(32), Dot([3]float32{1, 2, 3}, [3]float32{4, 5, 6}))
	assert.InDelta(t, 5, Length([3]float32{3, 4, 0}), 1e-6)

	n := Normalize([3]float32{0, 3, 4})
	assert.InDelta(t, 1, Length(n), 1e-6)
	assert.Equal(t, [3]float32{}, Normalize([3]float32{}))

	assert.InDelta(t, math32.Pi/2, DegToRad(90), 1e-6)
	assert.True(t, Finite([]float32{1, 2, 3}))
	assert.False(t, Finite([]float32{1, math32.NaN()}))
}
