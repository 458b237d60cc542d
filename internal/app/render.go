package app

import (
	"fmt"
	"strings"

	"github.com/relabs-tech/head_tracker/internal/imu"
	"github.com/relabs-tech/head_tracker/internal/tracker"
)

const rule = "============================================================"

func clearScreen() {
	fmt.Print("\033[2J\033[H")
}

// orientationBar renders value as a position marker on a fixed-width
// bar centered at zero, clamping at ±maxVal.
func orientationBar(value, maxVal float64) string {
	normalized := value / maxVal
	if normalized > 1 {
		normalized = 1
	}
	if normalized < -1 {
		normalized = -1
	}

	const barLength = 20
	center := barLength / 2
	pos := center + int(normalized*float64(center-1))

	bar := []rune(strings.Repeat("-", barLength))
	bar[center] = '|'
	bar[pos] = '●'
	return string(bar)
}

func showStartupInstructions() {
	fmt.Println("Starting XREAL One Pro head tracking...")
	fmt.Println(rule)
	fmt.Println("INSTRUCTIONS:")
	fmt.Println("1. Place glasses on a FLAT, STABLE surface")
	fmt.Println("2. Keep them COMPLETELY STILL during calibration")
	fmt.Println("3. After calibration, put on glasses and move around!")
	fmt.Println("4. Press 't' to zero view, 'r' to recalibrate, 'q' to quit")
	fmt.Println(rule)
}

func showCalibrationProgress(ht *tracker.HeadTracker, s imu.Sample) {
	clearScreen()
	fmt.Println(rule)
	fmt.Println("           XREAL ONE PRO HEAD TRACKING")
	fmt.Println(rule)
	fmt.Println("\nCALIBRATING GYROSCOPE...")
	fmt.Println("Keep glasses STATIONARY for calibration")
	fmt.Printf("Progress: %.1f%% (%d/%d)\n",
		ht.CalibrationProgress(), ht.CalibrationCount(), ht.CalibrationTarget())
	fmt.Println("\nCurrent readings:")
	fmt.Printf("  Gx: %+6.2f  Gy: %+6.2f  Gz: %+6.2f\n", s.Gx, s.Gy, s.Gz)
	fmt.Println(rule)
}

func showCalibrationComplete(ht *tracker.HeadTracker) {
	bias := ht.GyroBias()
	stddev := ht.GyroBiasStdDev()

	clearScreen()
	fmt.Println(rule)
	fmt.Println("CALIBRATION COMPLETE!")
	fmt.Println(rule)
	fmt.Println("Gyroscope bias values:")
	fmt.Printf("  Bias X: %+6.2f (σ %.3f)\n", bias.X, stddev.X)
	fmt.Printf("  Bias Y: %+6.2f (σ %.3f)\n", bias.Y, stddev.Y)
	fmt.Printf("  Bias Z: %+6.2f (σ %.3f)\n", bias.Z, stddev.Z)
	fmt.Println("\nHead tracking is now active!")
	fmt.Println("Move your head around to test...")
	fmt.Println(rule)
}

func showTracking(ht *tracker.HeadTracker, s imu.Sample, messageCount int, rate float64) {
	rel := ht.RelativeOrientation()
	bias := ht.GyroBias()

	clearScreen()
	fmt.Println(rule)
	fmt.Println("           XREAL ONE PRO HEAD TRACKING")
	fmt.Println(rule)
	fmt.Printf("Rate: %.1fHz | Message: %06d\n", rate, messageCount)
	fmt.Printf("Movement: %s\n\n", ht.MovementDescription(s))

	fmt.Printf("PITCH (Up/Down):    %+6.1f° %s\n", rel.Pitch, orientationBar(rel.Pitch, 90))
	fmt.Printf("YAW (Left/Right):   %+6.1f° %s\n", rel.Yaw, orientationBar(rel.Yaw, 90))
	fmt.Printf("ROLL (Tilt):        %+6.1f° %s\n\n", rel.Roll, orientationBar(rel.Roll, 90))

	fmt.Println("Raw Gyroscope:")
	fmt.Printf("  Gx: %+6.2f  Gy: %+6.2f  Gz: %+6.2f\n\n", s.Gx, s.Gy, s.Gz)
	fmt.Println("Calibrated Gyroscope:")
	fmt.Printf("  Gx: %+6.2f  Gy: %+6.2f  Gz: %+6.2f\n\n",
		s.Gx-bias.X, s.Gy-bias.Y, s.Gz-bias.Z)
	fmt.Println("Accelerometer:")
	fmt.Printf("  Ax: %+6.3f  Ay: %+6.3f  Az: %+6.3f\n\n", s.Ax, s.Ay, s.Az)

	fmt.Println("Type 't' to zero view | 'r' to recalibrate | 'q' or Ctrl+C to quit")
}

func showMessage(title, message string) {
	clearScreen()
	fmt.Println(rule)
	fmt.Println(title)
	fmt.Println(rule)
	fmt.Println(message)
	fmt.Println(rule)
}
