package orientation

import (
	"math"
)

// Pose is the canonical representation of head orientation, in degrees.
type Pose struct {
	Pitch float64 `json:"pitch"` // up/down (nodding)
	Yaw   float64 `json:"yaw"`   // left/right (head turns)
	Roll  float64 `json:"roll"`  // tilting
}

// WrapAngle normalizes a into (-180, 180]. Exactly -180 maps to 180.
func WrapAngle(a float64) float64 {
	for a > 180 {
		a -= 360
	}
	for a < -180 {
		a += 360
	}
	if a == -180 {
		return 180
	}
	return a
}

// TiltFromAccel computes pitch and roll from accelerometer data only.
// Yaw is unobservable from gravity (rotation about the vertical axis
// does not change the measured gravity vector) and is returned as 0.
//
// Uses simple tilt formulas:
//
//	pitch = atan2(-ax, sqrt(ay² + az²))
//	roll  = atan2(ay, az)
func TiltFromAccel(ax, ay, az float64) Pose {
	pitchRad := math.Atan2(-ax, math.Sqrt(ay*ay+az*az))
	rollRad := math.Atan2(ay, az)

	return Pose{
		Pitch: pitchRad * 180.0 / math.Pi,
		Roll:  rollRad * 180.0 / math.Pi,
		Yaw:   0,
	}
}
