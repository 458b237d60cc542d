package imu

import "fmt"

// Sample is one decoded IMU reading from the glasses.
// Gyro rates are in deg/s, accelerations in g.
type Sample struct {
	Gx float64 `json:"gx"` // gyro X (pitch rate)
	Gy float64 `json:"gy"` // gyro Y (yaw rate)
	Gz float64 `json:"gz"` // gyro Z (roll rate)

	Ax float64 `json:"ax"` // accel
	Ay float64 `json:"ay"`
	Az float64 `json:"az"`
}

func (s Sample) String() string {
	return fmt.Sprintf("Gx=%.3f, Gy=%.3f, Gz=%.3f | Ax=%.3f, Ay=%.3f, Az=%.3f",
		s.Gx, s.Gy, s.Gz, s.Ax, s.Ay, s.Az)
}
