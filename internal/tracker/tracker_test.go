package tracker

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/head_tracker/internal/imu"
)

var baseTime = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

// calibrate feeds target copies of s so the tracker leaves
// calibration mode.
func calibrate(t *testing.T, ht *HeadTracker, s imu.Sample) {
	t.Helper()
	for i := 0; i < ht.CalibrationTarget(); i++ {
		ht.Calibrate(s)
	}
	require.True(t, ht.IsCalibrated())
}

func TestCalibrationDeterminism(t *testing.T) {
	ht := New(500, DefaultScales)
	s := imu.Sample{Gx: 2.0, Gy: -1.5, Gz: 0.25, Az: 1}

	for i := 0; i < 499; i++ {
		assert.False(t, ht.Calibrate(s))
	}
	assert.False(t, ht.IsCalibrated())
	assert.InDelta(t, 99.8, ht.CalibrationProgress(), 1e-9)

	// The 500th sample completes calibration exactly once.
	assert.True(t, ht.Calibrate(s))
	assert.True(t, ht.IsCalibrated())
	assert.Equal(t, 100.0, ht.CalibrationProgress())

	bias := ht.GyroBias()
	assert.InDelta(t, 2.0, bias.X, 1e-12)
	assert.InDelta(t, -1.5, bias.Y, 1e-12)
	assert.InDelta(t, 0.25, bias.Z, 1e-12)

	// A constant feed has zero spread.
	stddev := ht.GyroBiasStdDev()
	assert.InDelta(t, 0, stddev.X, 1e-12)
	assert.InDelta(t, 0, stddev.Y, 1e-12)
	assert.InDelta(t, 0, stddev.Z, 1e-12)

	// Further samples are no-ops.
	assert.True(t, ht.Calibrate(imu.Sample{Gx: 100}))
	assert.InDelta(t, 2.0, ht.GyroBias().X, 1e-12)
}

func TestCalibrationMeanOfVaryingSamples(t *testing.T) {
	ht := New(4, DefaultScales)
	for _, gx := range []float64{1, 2, 3, 6} {
		ht.Calibrate(imu.Sample{Gx: gx})
	}
	require.True(t, ht.IsCalibrated())
	assert.InDelta(t, 3.0, ht.GyroBias().X, 1e-12)
	assert.Greater(t, ht.GyroBiasStdDev().X, 0.0)
}

func TestResetCalibration(t *testing.T) {
	ht := New(10, DefaultScales)
	calibrate(t, ht, imu.Sample{Gx: 1})

	ht.ResetCalibration()
	assert.False(t, ht.IsCalibrated())
	assert.Equal(t, 0.0, ht.CalibrationProgress())
	assert.Equal(t, Bias{}, ht.GyroBias())

	// A full second cycle works and measures the new feed.
	calibrate(t, ht, imu.Sample{Gx: -4})
	assert.InDelta(t, -4.0, ht.GyroBias().X, 1e-12)
}

func TestUpdateIsNoOpBeforeCalibration(t *testing.T) {
	ht := New(10, DefaultScales)
	ht.Update(imu.Sample{Gx: 1000, Az: 1}, baseTime)
	assert.Equal(t, 0.0, ht.AbsoluteOrientation().Pitch)
}

func TestFirstUpdatePrimesClock(t *testing.T) {
	ht := New(10, DefaultScales)
	calibrate(t, ht, imu.Sample{})

	// First post-calibration update must not integrate: there is no
	// defined interval yet.
	ht.Update(imu.Sample{Gx: 1000}, baseTime)
	assert.Equal(t, 0.0, ht.AbsoluteOrientation().Pitch)

	// The second update integrates from the primed timestamp.
	ht.Update(imu.Sample{Gx: 10}, baseTime.Add(100*time.Millisecond))
	assert.InDelta(t, 1.0, ht.AbsoluteOrientation().Pitch, 1e-9)
}

func TestPureGyroIntegrationNearFreeFall(t *testing.T) {
	ht := New(10, DefaultScales)
	calibrate(t, ht, imu.Sample{})

	// All accelerometer axes near zero: the tilt estimate is skipped
	// and every axis integrates the gyro alone.
	s := imu.Sample{Gx: 10, Gy: -20, Gz: 5}
	ht.Update(s, baseTime)
	ht.Update(s, baseTime.Add(time.Second))

	pose := ht.AbsoluteOrientation()
	assert.InDelta(t, 10, pose.Pitch, 1e-9)
	assert.InDelta(t, -20, pose.Yaw, 1e-9)
	assert.InDelta(t, 5, pose.Roll, 1e-9)
}

func TestBiasCorrection(t *testing.T) {
	ht := New(10, DefaultScales)
	calibrate(t, ht, imu.Sample{Gx: 2})

	// A sample matching the bias is stationary: nothing integrates.
	s := imu.Sample{Gx: 2}
	ht.Update(s, baseTime)
	ht.Update(s, baseTime.Add(time.Second))
	assert.InDelta(t, 0, ht.AbsoluteOrientation().Pitch, 1e-12)
}

func TestYawIsGyroOnly(t *testing.T) {
	ht := New(10, DefaultScales)
	calibrate(t, ht, imu.Sample{})

	// With gravity present the accelerometer corrects pitch and roll
	// but never yaw.
	s := imu.Sample{Gy: 10, Az: 1}
	ht.Update(s, baseTime)
	ht.Update(s, baseTime.Add(time.Second))

	pose := ht.AbsoluteOrientation()
	assert.InDelta(t, 10, pose.Yaw, 1e-9)
	assert.InDelta(t, 0, pose.Pitch, 1e-9)
	assert.InDelta(t, 0, pose.Roll, 1e-9)
}

func TestGravityAlignedStability(t *testing.T) {
	ht := New(10, DefaultScales)
	calibrate(t, ht, imu.Sample{})

	// Kick the estimate away from level with a burst of rotation.
	ht.Update(imu.Sample{}, baseTime)
	now := baseTime.Add(100 * time.Millisecond)
	ht.Update(imu.Sample{Gx: 100, Gz: 100, Az: 1}, now)
	require.NotZero(t, ht.AbsoluteOrientation().Pitch)

	// Stationary, gravity-aligned samples must pull pitch and roll
	// back toward zero and never diverge.
	still := imu.Sample{Az: 1}
	for i := 0; i < 1000; i++ {
		now = now.Add(10 * time.Millisecond)
		ht.Update(still, now)

		pose := ht.AbsoluteOrientation()
		assert.LessOrEqual(t, math.Abs(pose.Pitch), 10.0)
		assert.LessOrEqual(t, math.Abs(pose.Roll), 10.0)
	}

	pose := ht.AbsoluteOrientation()
	assert.InDelta(t, 0, pose.Pitch, 1e-9)
	assert.InDelta(t, 0, pose.Roll, 1e-9)
}

func TestAngleWrapDuringIntegration(t *testing.T) {
	ht := New(10, DefaultScales)
	calibrate(t, ht, imu.Sample{})

	// 190°/s for one second in free fall crosses the 180° boundary.
	s := imu.Sample{Gy: 190}
	ht.Update(s, baseTime)
	ht.Update(s, baseTime.Add(time.Second))
	assert.InDelta(t, -170, ht.AbsoluteOrientation().Yaw, 1e-9)
}

func TestZeroView(t *testing.T) {
	ht := New(10, Scales{Pitch: 1, Yaw: 1, Roll: 1})
	calibrate(t, ht, imu.Sample{})

	ht.Update(imu.Sample{}, baseTime)
	ht.Update(imu.Sample{Gx: 30, Gy: 40, Gz: 50}, baseTime.Add(time.Second))

	ht.ZeroView()
	rel := ht.RelativeOrientation()
	assert.Equal(t, 0.0, rel.Pitch)
	assert.Equal(t, 0.0, rel.Yaw)
	assert.Equal(t, 0.0, rel.Roll)

	// Motion on a single axis moves only that axis.
	ht.Update(imu.Sample{Gy: 10}, baseTime.Add(2*time.Second))
	rel = ht.RelativeOrientation()
	assert.InDelta(t, 0, rel.Pitch, 1e-9)
	assert.InDelta(t, 10, rel.Yaw, 1e-9)
	assert.InDelta(t, 0, rel.Roll, 1e-9)
}

func TestRelativeOrientationScales(t *testing.T) {
	ht := New(10, Scales{Pitch: 3, Yaw: 60, Roll: 1})
	calibrate(t, ht, imu.Sample{})

	ht.Update(imu.Sample{}, baseTime)
	ht.Update(imu.Sample{Gx: 2, Gy: 2, Gz: 2}, baseTime.Add(time.Second))

	rel := ht.RelativeOrientation()
	assert.InDelta(t, 6, rel.Pitch, 1e-9)
	assert.InDelta(t, 120, rel.Yaw, 1e-9)
	assert.InDelta(t, 2, rel.Roll, 1e-9)
}

func TestRelativeOrientationWraps(t *testing.T) {
	ht := New(10, Scales{Pitch: 1, Yaw: 60, Roll: 1})
	calibrate(t, ht, imu.Sample{})

	// 4° of yaw amplified by 60 is 240°, which wraps to -120°.
	ht.Update(imu.Sample{}, baseTime)
	ht.Update(imu.Sample{Gy: 4}, baseTime.Add(time.Second))
	assert.InDelta(t, -120, ht.RelativeOrientation().Yaw, 1e-9)
}

func TestMovementDescription(t *testing.T) {
	ht := New(10, DefaultScales)

	tests := []struct {
		name   string
		sample imu.Sample
		want   string
	}{
		{"stationary", imu.Sample{}, "STATIONARY"},
		{"below threshold", imu.Sample{Gx: 0.4, Gy: -0.4, Gz: 0.4}, "STATIONARY"},
		{"nod up", imu.Sample{Gx: 2}, "NODDING UP"},
		{"nod down", imu.Sample{Gx: -2}, "NODDING DOWN"},
		{"turn right", imu.Sample{Gy: 2}, "TURNING RIGHT"},
		{"turn left", imu.Sample{Gy: -2}, "TURNING LEFT"},
		{"tilt right", imu.Sample{Gz: 2}, "TILTING RIGHT"},
		{"tilt left", imu.Sample{Gz: -2}, "TILTING LEFT"},
		{"combined", imu.Sample{Gx: 2, Gy: -2, Gz: 1}, "NODDING UP + TURNING LEFT + TILTING RIGHT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ht.MovementDescription(tt.sample))
		})
	}
}

func TestMovementDescriptionUsesBias(t *testing.T) {
	ht := New(10, DefaultScales)
	calibrate(t, ht, imu.Sample{Gx: 2})

	// Raw gx equal to the bias reads as no movement.
	assert.Equal(t, "STATIONARY", ht.MovementDescription(imu.Sample{Gx: 2}))
	assert.Equal(t, "NODDING DOWN", ht.MovementDescription(imu.Sample{Gx: 1}))
}

func TestDefaultsApplied(t *testing.T) {
	ht := New(0, Scales{})
	assert.Equal(t, DefaultCalibrationTarget, ht.CalibrationTarget())

	calibrate(t, ht, imu.Sample{})
	ht.Update(imu.Sample{}, baseTime)
	ht.Update(imu.Sample{Gy: 1}, baseTime.Add(time.Second))
	assert.InDelta(t, 60, ht.RelativeOrientation().Yaw, 1e-9)
}
