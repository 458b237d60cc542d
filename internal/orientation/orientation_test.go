package orientation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapAngle(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{0, 0},
		{179, 179},
		{180, 180},
		{181, -179},
		{-179, -179},
		{-180, 180},
		{-181, 179},
		{360, 0},
		{-360, 0},
		{540, 180},
		{-540, 180},
		{721, 1},
		{-721, -1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, WrapAngle(tt.in), "wrap(%v)", tt.in)
	}
}

func TestTiltFromAccelLevel(t *testing.T) {
	// Gravity straight down the sensor Z axis: no tilt.
	pose := TiltFromAccel(0, 0, 1)
	assert.InDelta(t, 0, pose.Pitch, 1e-12)
	assert.InDelta(t, 0, pose.Roll, 1e-12)
	assert.Zero(t, pose.Yaw)
}

func TestTiltFromAccelAxes(t *testing.T) {
	// Gravity fully along X: 90° pitch.
	pose := TiltFromAccel(-1, 0, 0)
	assert.InDelta(t, 90, pose.Pitch, 1e-9)

	// Gravity fully along Y: 90° roll.
	pose = TiltFromAccel(0, 1, 0)
	assert.InDelta(t, 90, pose.Roll, 1e-9)

	// 45° roll.
	pose = TiltFromAccel(0, 1, 1)
	assert.InDelta(t, 45, pose.Roll, 1e-9)
}
