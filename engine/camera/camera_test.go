package camera_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dmajster/college-project-computer-graphics/engine/camera"
)

// transformPoint applies a column-major 4x4 matrix to a point, returning the
// homogeneous clip-space coordinates.
func transformPoint(m [16]float32, x, y, z float32) (cx, cy, cz, cw float32) {
	cx = m[0]*x + m[4]*y + m[8]*z + m[12]
	cy = m[1]*x + m[5]*y + m[9]*z + m[13]
	cz = m[2]*x + m[6]*y + m[10]*z + m[14]
	cw = m[3]*x + m[7]*y + m[11]*z + m[15]
	return
}

func TestNewCameraDefaults(t *testing.T) {
	cam := camera.NewCamera()

	x, y, z := cam.Position()
	assert.Zero(t, x)
	assert.Zero(t, y)
	assert.Zero(t, z)
	assert.InDelta(t, float64(45.0*math32.Pi/180.0), float64(cam.Fov()), 1e-6)
	assert.Equal(t, float32(1.0), cam.Aspect())
}

func TestViewProjectionCentersTarget(t *testing.T) {
	cam := camera.NewCamera(
		camera.WithPosition(0, 0, 10),
		camera.WithTarget(0, 0, 0),
	)

	// A point on the view axis projects to the center of the screen.
	cx, cy, _, cw := transformPoint(cam.ViewProjectionMatrix(), 0, 0, 0)
	assert.InDelta(t, 0, float64(cx), 1e-5)
	assert.InDelta(t, 0, float64(cy), 1e-5)
	assert.Greater(t, cw, float32(0))
}

func TestViewProjectionDepthRange(t *testing.T) {
	cam := camera.NewCamera(
		camera.WithPosition(0, 0, 0),
		camera.WithTarget(0, 0, -1),
		camera.WithNear(1),
		camera.WithFar(100),
	)

	vp := cam.ViewProjectionMatrix()

	// Depth maps to [0, 1] across the near and far planes.
	_, _, nz, nw := transformPoint(vp, 0, 0, -1)
	assert.InDelta(t, 0, float64(nz/nw), 1e-5)

	_, _, fz, fw := transformPoint(vp, 0, 0, -100)
	assert.InDelta(t, 1, float64(fz/fw), 1e-4)
}

func TestSetAspectRebuildsProjection(t *testing.T) {
	cam := camera.NewCamera()
	before := cam.ProjectionMatrix()

	cam.SetAspect(16.0 / 9.0)
	after := cam.ProjectionMatrix()

	require.NotEqual(t, before, after)
	// Widening the aspect shrinks the horizontal scale only.
	assert.InDelta(t, float64(before[0]/(16.0/9.0)), float64(after[0]), 1e-5)
	assert.Equal(t, before[5], after[5])
}

func TestSetPositionRebuildsView(t *testing.T) {
	cam := camera.NewCamera(camera.WithTarget(0, 0, -1))
	before := cam.ViewMatrix()

	cam.SetPosition(5, 0, 0)
	assert.NotEqual(t, before, cam.ViewMatrix())
}
