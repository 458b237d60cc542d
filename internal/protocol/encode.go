package protocol

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/relabs-tech/head_tracker/internal/imu"
)

// AppendFrame appends a canonical sensor frame carrying s to dst and
// returns the extended slice. The layout mirrors what the glasses
// emit: start marker, session id, 20-byte preamble (timestamp plus
// static fields), the six float32 values, 20 bytes of date info, the
// sensor-message marker, 31 bytes of trailing metadata, end marker.
// Frames built here decode back to s via Decode; the simulator uses
// this to serve protocol-correct streams.
func AppendFrame(dst []byte, s imu.Sample, sessionID uint64, ts time.Time) []byte {
	dst = append(dst, startMarker...)

	var u64 [8]byte
	binary.LittleEndian.PutUint64(u64[:], sessionID)
	dst = append(dst, u64[:]...)

	// Preamble: microsecond timestamp, then static padding.
	binary.LittleEndian.PutUint64(u64[:], uint64(ts.UnixMicro()))
	dst = append(dst, u64[:]...)
	dst = append(dst, make([]byte, dataStartOffset-8)...)

	for _, v := range []float64{s.Ax, s.Ay, s.Az, s.Gz, s.Gy, s.Gx} {
		var u32 [4]byte
		binary.LittleEndian.PutUint32(u32[:], math.Float32bits(float32(v)))
		dst = append(dst, u32[:]...)
	}

	dst = append(dst, make([]byte, dataEndOffset-len(sensorMsgMarker))...)
	dst = append(dst, sensorMsgMarker...)
	dst = append(dst, make([]byte, tailLen)...)
	return append(dst, endMarker...)
}
