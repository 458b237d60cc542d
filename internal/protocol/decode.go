package protocol

import (
	"bytes"
	"encoding/binary"
	"math"

	"github.com/relabs-tech/head_tracker/internal/imu"
)

// Decode validates a complete frame and extracts the IMU sample from
// it. The second return is false for any frame that is not a
// well-formed sensor message: too short, wrong payload marker, or
// non-finite values. Malformed frames are expected noise on this
// stream and are simply skipped by callers.
func Decode(frame []byte) (imu.Sample, bool) {
	if len(frame) < len(startMarker)+sessionIDLen+len(endMarker)+tailLen {
		return imu.Sample{}, false
	}

	// Strip start marker + session id from the front, end marker +
	// trailing metadata from the back.
	payload := frame[len(startMarker)+sessionIDLen : len(frame)-len(endMarker)-tailLen]

	if !bytes.HasSuffix(payload, sensorMsgMarker) {
		// Some other message kind, not a sensor report.
		return imu.Sample{}, false
	}

	if len(payload) < dataStartOffset+dataEndOffset+valueWindowLen {
		return imu.Sample{}, false
	}
	window := payload[dataStartOffset : len(payload)-dataEndOffset]

	var v [6]float64
	for i := range v {
		bits := binary.LittleEndian.Uint32(window[i*4:])
		f := float64(math.Float32frombits(bits))
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return imu.Sample{}, false
		}
		v[i] = f
	}

	// Axis order on the wire: accel first, then gyro reversed.
	return imu.Sample{
		Ax: v[0], Ay: v[1], Az: v[2],
		Gz: v[3], Gy: v[4], Gx: v[5],
	}, true
}
