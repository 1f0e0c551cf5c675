package camera

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-rt/common"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertVec3InDelta(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	for i := range want {
		assert.InDelta(t, want[i], got[i], delta, "component %d", i)
	}
}

func TestNewCameraDefaults(t *testing.T) {
	c := NewCamera()

	assert.Equal(t, mgl32.Vec3{0, 2, -12}, c.Position())
	assert.Equal(t, mgl32.Vec3{0, 0, 1}, c.Direction())
	assert.Equal(t, float32(45), c.Fov())
	assert.Equal(t, float32(1), c.Near())
	assert.Equal(t, float32(100), c.Far())
	assert.Zero(t, c.Yaw())
	assert.Zero(t, c.Pitch())

	require.NotNil(t, c.BindGroupProvider())
	assert.True(t, strings.HasPrefix(c.BindGroupProvider().Label(), "camera_"))
}

func TestNewCameraUniqueLabels(t *testing.T) {
	a := NewCamera()
	b := NewCamera()
	assert.NotEqual(t, a.BindGroupProvider().Label(), b.BindGroupProvider().Label())
}

func TestNewCameraOptions(t *testing.T) {
	c := NewCamera(
		WithPosition(1, 2, 3),
		WithDirection(0, 0, -4),
		WithFov(60),
		WithNear(0.5),
		WithFar(50),
	)
	assert.Equal(t, mgl32.Vec3{1, 2, 3}, c.Position())
	assert.Equal(t, mgl32.Vec3{0, 0, -1}, c.Direction())
	assert.Equal(t, float32(60), c.Fov())
	assert.Equal(t, float32(0.5), c.Near())
	assert.Equal(t, float32(50), c.Far())
}

func TestSetDirectionNormalizesAndIgnoresZero(t *testing.T) {
	c := NewCamera()
	c.SetDirection(mgl32.Vec3{3, 0, 4})
	assertVec3InDelta(t, mgl32.Vec3{0.6, 0, 0.8}, c.Direction(), 1e-6)

	c.SetDirection(mgl32.Vec3{})
	assertVec3InDelta(t, mgl32.Vec3{0.6, 0, 0.8}, c.Direction(), 1e-6)
}

func TestCalcViewDefaultCamera(t *testing.T) {
	view := NewCamera().CalcView()

	want := mgl32.Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, -1, 0,
		0, 2, -11, 1,
	}
	for i := range want {
		assert.InDelta(t, want[i], view[i], 1e-5, "element %d", i)
	}
}

func TestCalcViewPanicsWhenLookingStraightUp(t *testing.T) {
	c := NewCamera(WithDirection(0, 1, 0))
	assert.Panics(t, func() { c.CalcView() })
}

func TestCalcProjReinvertsToPerspective(t *testing.T) {
	c := NewCamera()
	inv := c.CalcProj(800, 600)
	require.True(t, common.Finite(inv[:]))

	var proj mgl32.Mat4
	require.True(t, common.Invert4(proj[:], inv[:]))

	want := mgl32.Perspective(mgl32.DegToRad(45), 800.0/600.0, 1, 100)
	for i := range want {
		assert.InDelta(t, want[i], proj[i], 1e-3, "element %d", i)
	}
	assert.InDelta(t, 4.0/3.0, proj[5]/proj[0], 1e-4)
	assert.InDelta(t, -1, proj[11], 1e-5)
}

func TestCalcProjFiniteAcrossFov(t *testing.T) {
	for _, fov := range []float32{1, 30, 45, 90, 120, 179} {
		c := NewCamera(WithFov(fov), WithNear(0.1), WithFar(1000))
		inv := c.CalcProj(1280, 720)
		assert.True(t, common.Finite(inv[:]), "fov %v", fov)

		var back [16]float32
		assert.True(t, common.Invert4(back[:], inv[:]), "fov %v", fov)
	}
}

func TestCalcProjPanicsWhenSingular(t *testing.T) {
	tests := []struct {
		name          string
		cam           Camera
		width, height uint32
	}{
		{name: "near equals far", cam: NewCamera(WithNear(5), WithFar(5)), width: 800, height: 600},
		{name: "zero fov", cam: NewCamera(WithFov(0)), width: 800, height: 600},
		{name: "negative fov", cam: NewCamera(WithFov(-45)), width: 800, height: 600},
		{name: "zero height", cam: NewCamera(), width: 800, height: 0},
		{name: "zero width", cam: NewCamera(), width: 0, height: 600},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Panics(t, func() { tt.cam.CalcProj(tt.width, tt.height) })
		})
	}
}
