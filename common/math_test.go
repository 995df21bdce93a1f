package common_test

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dmajster/college-project-computer-graphics/common"
)

func TestIdentity(t *testing.T) {
	m := make([]float32, 16)
	for i := range m {
		m[i] = 7
	}

	common.Identity(m)

	for i, v := range m {
		if i == 0 || i == 5 || i == 10 || i == 15 {
			assert.Equal(t, float32(1), v, "diagonal element %d", i)
		} else {
			assert.Zero(t, v, "off-diagonal element %d", i)
		}
	}
}

func TestMul4Identity(t *testing.T) {
	var a, id, out [16]float32
	common.BuildModelMatrix(a[:], 1, 2, 3, 0.4, 0.5, 0.6, 2, 2, 2)
	common.Identity(id[:])

	common.Mul4(out[:], a[:], id[:])
	assert.Equal(t, a, out)

	common.Mul4(out[:], id[:], a[:])
	assert.Equal(t, a, out)
}

func TestMul4Aliasing(t *testing.T) {
	var a, b, want [16]float32
	common.Translation(a[:], 1, 0, 0)
	common.Translation(b[:], 0, 2, 0)
	common.Mul4(want[:], a[:], b[:])

	// out aliasing a must produce the same result.
	common.Mul4(a[:], a[:], b[:])
	assert.Equal(t, want, a)
}

func TestTranslationComposes(t *testing.T) {
	var a, b, out [16]float32
	common.Translation(a[:], 1, 2, 3)
	common.Translation(b[:], 10, 20, 30)

	common.Mul4(out[:], a[:], b[:])
	assert.Equal(t, float32(11), out[12])
	assert.Equal(t, float32(22), out[13])
	assert.Equal(t, float32(33), out[14])
}

func TestBuildModelMatrixNoRotation(t *testing.T) {
	var m [16]float32
	common.BuildModelMatrix(m[:], 5, 6, 7, 0, 0, 0, 2, 3, 4)

	// Pure scale on the diagonal, translation in the last column.
	assert.Equal(t, float32(2), m[0])
	assert.Equal(t, float32(3), m[5])
	assert.Equal(t, float32(4), m[10])
	assert.Equal(t, float32(5), m[12])
	assert.Equal(t, float32(6), m[13])
	assert.Equal(t, float32(7), m[14])
	assert.Equal(t, float32(1), m[15])
}

func TestBuildModelMatrixYaw(t *testing.T) {
	var m [16]float32
	common.BuildModelMatrix(m[:], 0, 0, 0, 0, math32.Pi/2, 0, 1, 1, 1)

	// A quarter turn around Y maps +X to -Z.
	x := [3]float32{m[0], m[1], m[2]}
	assert.InDelta(t, 0, float64(x[0]), 1e-6)
	assert.InDelta(t, 0, float64(x[1]), 1e-6)
	assert.InDelta(t, -1, float64(x[2]), 1e-6)
}

func TestPerspectiveDepthZeroToOne(t *testing.T) {
	var p [16]float32
	common.Perspective(p[:], math32.Pi/2, 1, 1, 100)

	// Near plane point (0,0,-near) maps to depth 0, far plane to depth 1.
	nearZ := p[10]*(-1) + p[14]
	nearW := p[11] * (-1)
	assert.InDelta(t, 0, float64(nearZ/nearW), 1e-6)

	farZ := p[10]*(-100) + p[14]
	farW := p[11] * (-100)
	assert.InDelta(t, 1, float64(farZ/farW), 1e-5)
}

func TestLookAtOrigin(t *testing.T) {
	var v [16]float32
	common.LookAt(v[:], 0, 0, 5, 0, 0, 0, 0, 1, 0)

	// The eye maps to the view-space origin.
	x := v[0]*0 + v[4]*0 + v[8]*5 + v[12]
	y := v[1]*0 + v[5]*0 + v[9]*5 + v[13]
	z := v[2]*0 + v[6]*0 + v[10]*5 + v[14]
	assert.InDelta(t, 0, float64(x), 1e-6)
	assert.InDelta(t, 0, float64(y), 1e-6)
	assert.InDelta(t, 0, float64(z), 1e-6)
}

func TestSliceToBytes(t *testing.T) {
	floats := []float32{1.0, 2.0}
	b := common.SliceToBytes(floats)
	require.Len(t, b, 8)
	// 1.0f is 0x3F800000 little-endian.
	assert.Equal(t, []byte{0, 0, 128, 63}, b[:4])

	indices := []uint16{0x0102}
	assert.Equal(t, []byte{2, 1}, common.SliceToBytes(indices))

	assert.Nil(t, common.SliceToBytes([]float32(nil)))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 5, common.Coalesce(0, 0, 5, 7))
	assert.Equal(t, "a", common.Coalesce("", "a"))
	assert.Zero(t, common.Coalesce(0, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 5, common.Clamp(7, 0, 5))
	assert.Equal(t, 0, common.Clamp(-1, 0, 5))
	assert.Equal(t, 3, common.Clamp(3, 0, 5))
}
