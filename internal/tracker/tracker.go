// Package tracker maintains the head-orientation estimate: gyroscope
// bias calibration followed by complementary-filter fusion of gyro
// integration and accelerometer tilt.
package tracker

import (
	"math"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/relabs-tech/head_tracker/internal/imu"
	"github.com/relabs-tech/head_tracker/internal/orientation"
)

// DefaultCalibrationTarget is the number of stationary samples
// collected before the gyro bias is estimated.
const DefaultCalibrationTarget = 500

// movementThreshold is the bias-corrected rate, in deg/s, below which
// an axis counts as still.
const movementThreshold = 0.5

// fusionAlpha weights gyro integration against accelerometer tilt in
// the complementary filter.
const fusionAlpha = 0.96

// Scales amplifies small physical rotations into a larger apparent
// range per axis. The values are empirical UX constants tuned on the
// device, not derived from any physical model.
type Scales struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// DefaultScales are the tuned per-axis amplification factors.
var DefaultScales = Scales{Pitch: 3.0, Yaw: 60.0, Roll: 1.0}

// Bias is the estimated constant offset of the gyroscope, in deg/s.
type Bias struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HeadTracker owns calibration and orientation state for one sensor
// stream. It is not safe for concurrent use: only the ingestion loop
// may call its methods; concurrent readers need external
// synchronization or a copied snapshot.
type HeadTracker struct {
	target int
	scales Scales

	calSamples [3][]float64
	calibrated bool
	bias       Bias
	biasStdDev Bias

	pitch, yaw, roll             float64
	zeroPitch, zeroYaw, zeroRoll float64

	// Zero means unset: the first Update after calibration only
	// primes the clock instead of integrating over an undefined
	// interval.
	lastUpdate time.Time
}

// New returns an uncalibrated tracker. A target of 0 selects
// DefaultCalibrationTarget; zero-valued scales select DefaultScales.
func New(target int, scales Scales) *HeadTracker {
	if target <= 0 {
		target = DefaultCalibrationTarget
	}
	if scales == (Scales{}) {
		scales = DefaultScales
	}
	return &HeadTracker{target: target, scales: scales}
}

// Calibrate accumulates one stationary sample toward the bias
// estimate and reports whether the tracker is calibrated afterwards.
// On the sample that reaches the target count, the per-axis bias is
// set to the arithmetic mean of everything accumulated, the
// orientation is zeroed, and the tracker switches to tracking mode.
// Once calibrated, further calls are no-ops returning true.
func (t *HeadTracker) Calibrate(s imu.Sample) bool {
	if t.calibrated {
		return true
	}

	t.calSamples[0] = append(t.calSamples[0], s.Gx)
	t.calSamples[1] = append(t.calSamples[1], s.Gy)
	t.calSamples[2] = append(t.calSamples[2], s.Gz)

	if len(t.calSamples[0]) < t.target {
		return false
	}

	t.bias = Bias{
		X: stat.Mean(t.calSamples[0], nil),
		Y: stat.Mean(t.calSamples[1], nil),
		Z: stat.Mean(t.calSamples[2], nil),
	}
	// Spread of the stationary readings, kept as a quality figure: a
	// large value means the glasses were moving during calibration.
	t.biasStdDev = Bias{
		X: stat.StdDev(t.calSamples[0], nil),
		Y: stat.StdDev(t.calSamples[1], nil),
		Z: stat.StdDev(t.calSamples[2], nil),
	}

	t.calibrated = true
	t.pitch, t.yaw, t.roll = 0, 0, 0
	t.lastUpdate = time.Time{}
	return true
}

// ResetCalibration discards the bias estimate and returns the tracker
// to calibration mode. Valid in either mode.
func (t *HeadTracker) ResetCalibration() {
	t.calSamples = [3][]float64{}
	t.calibrated = false
	t.bias = Bias{}
	t.biasStdDev = Bias{}
}

// IsCalibrated reports whether the bias estimate is in place.
func (t *HeadTracker) IsCalibrated() bool { return t.calibrated }

// CalibrationProgress returns the calibration completion percentage.
func (t *HeadTracker) CalibrationProgress() float64 {
	return float64(len(t.calSamples[0])) / float64(t.target) * 100
}

// CalibrationCount returns how many calibration samples have been
// accumulated so far.
func (t *HeadTracker) CalibrationCount() int { return len(t.calSamples[0]) }

// CalibrationTarget returns the configured sample target.
func (t *HeadTracker) CalibrationTarget() int { return t.target }

// GyroBias returns the estimated gyro bias. Zero until calibrated.
func (t *HeadTracker) GyroBias() Bias { return t.bias }

// GyroBiasStdDev returns the per-axis standard deviation of the
// calibration samples, a quality figure for the bias estimate.
func (t *HeadTracker) GyroBiasStdDev() Bias { return t.biasStdDev }

// Update advances the orientation estimate with one sample taken at
// time now. It is a no-op before calibration completes. The first
// call after calibration records now and returns; subsequent calls
// integrate the bias-corrected gyro rates over the elapsed interval
// and blend in accelerometer tilt where gravity is observable.
func (t *HeadTracker) Update(s imu.Sample, now time.Time) {
	if !t.calibrated {
		return
	}
	if t.lastUpdate.IsZero() {
		t.lastUpdate = now
		return
	}

	dt := now.Sub(t.lastUpdate).Seconds()
	t.lastUpdate = now

	gx := s.Gx - t.bias.X
	gy := s.Gy - t.bias.Y
	gz := s.Gz - t.bias.Z

	// Gyro integration: accurate short-term, drifts long-term.
	pitchGyro := t.pitch + gx*dt
	yawGyro := t.yaw + gy*dt
	rollGyro := t.roll + gz*dt

	accMag := math.Sqrt(s.Ax*s.Ax + s.Ay*s.Ay + s.Az*s.Az)
	if accMag > 0.01 {
		tilt := orientation.TiltFromAccel(s.Ax, s.Ay, s.Az)

		t.pitch = fusionAlpha*pitchGyro + (1-fusionAlpha)*tilt.Pitch
		t.roll = fusionAlpha*rollGyro + (1-fusionAlpha)*tilt.Roll
		// Gravity cannot observe rotation about the vertical axis;
		// yaw stays gyro-only and will drift.
		t.yaw = yawGyro
	} else {
		// Near free-fall, the tilt estimate is meaningless.
		t.pitch = pitchGyro
		t.yaw = yawGyro
		t.roll = rollGyro
	}

	t.pitch = orientation.WrapAngle(t.pitch)
	t.yaw = orientation.WrapAngle(t.yaw)
	t.roll = orientation.WrapAngle(t.roll)
}

// ZeroView makes the current orientation the zero reference that
// RelativeOrientation is reported against. Calibration is unaffected.
func (t *HeadTracker) ZeroView() {
	t.zeroPitch = t.pitch
	t.zeroYaw = t.yaw
	t.zeroRoll = t.roll
}

// AbsoluteOrientation returns the unscaled orientation estimate.
func (t *HeadTracker) AbsoluteOrientation() orientation.Pose {
	return orientation.Pose{Pitch: t.pitch, Yaw: t.yaw, Roll: t.roll}
}

// RelativeOrientation returns the orientation relative to the zero
// reference, amplified by the per-axis UX scales and wrapped.
func (t *HeadTracker) RelativeOrientation() orientation.Pose {
	return orientation.Pose{
		Pitch: orientation.WrapAngle((t.pitch - t.zeroPitch) * t.scales.Pitch),
		Yaw:   orientation.WrapAngle((t.yaw - t.zeroYaw) * t.scales.Yaw),
		Roll:  orientation.WrapAngle((t.roll - t.zeroRoll) * t.scales.Roll),
	}
}

// MovementDescription labels the head movement in s from its
// bias-corrected gyro rates. Axes below the threshold are still;
// simultaneous movements are combined with " + ".
func (t *HeadTracker) MovementDescription(s imu.Sample) string {
	gx := s.Gx - t.bias.X
	gy := s.Gy - t.bias.Y
	gz := s.Gz - t.bias.Z

	var movements []string
	if math.Abs(gx) > movementThreshold {
		if gx > 0 {
			movements = append(movements, "NODDING UP")
		} else {
			movements = append(movements, "NODDING DOWN")
		}
	}
	if math.Abs(gy) > movementThreshold {
		if gy > 0 {
			movements = append(movements, "TURNING RIGHT")
		} else {
			movements = append(movements, "TURNING LEFT")
		}
	}
	if math.Abs(gz) > movementThreshold {
		if gz > 0 {
			movements = append(movements, "TILTING RIGHT")
		} else {
			movements = append(movements, "TILTING LEFT")
		}
	}

	if len(movements) == 0 {
		return "STATIONARY"
	}
	return strings.Join(movements, " + ")
}
