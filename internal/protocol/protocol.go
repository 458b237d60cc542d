// Package protocol implements the framed IMU stream spoken by the
// XREAL One Pro glasses over their TCP debug port.
//
// Every message is delimited by a fixed start and end marker. Sensor
// messages additionally carry a sensor-message marker at the end of
// their payload; other message kinds on the same stream are skipped.
package protocol

import "bytes"

var (
	// startMarker opens every message on the stream.
	startMarker = []byte{0x28, 0x36, 0x00, 0x00, 0x00, 0x80}

	// endMarker closes every message.
	endMarker = []byte{
		0x00, 0x00, 0x00, 0xcf, 0xf7, 0x53, 0xe3, 0xa5, 0x9b, 0x00,
		0x00, 0xdb, 0x34, 0xb6, 0xd7, 0x82, 0xde, 0x1b, 0x43,
	}

	// sensorMsgMarker terminates the payload of IMU sensor messages.
	sensorMsgMarker = []byte{0x00, 0x40, 0x1f, 0x00, 0x00, 0x40}
)

const (
	sessionIDLen = 8  // opaque session id after the start marker
	tailLen      = 31 // trailing metadata before the end marker

	dataStartOffset = 20 // timestamp(8) + invariant(2) + static(10)
	dataEndOffset   = 26 // date info(20) + sensor-message marker(6)

	valueWindowLen = 24 // six little-endian float32
)

// Framer splits an arbitrary byte stream into complete messages.
// It keeps unmatched bytes buffered between Feed calls, so the caller
// may deliver chunks of any size at any boundary.
type Framer struct {
	buf []byte
}

// Feed appends chunk to the internal buffer and returns every complete
// frame found so far, in stream order. Each returned frame spans from a
// start marker through the end of the following end marker, inclusive.
//
// Resynchronization is first-occurrence-wins: bytes before the first
// start marker are skipped, never interpreted. The stream carries no
// checksum, so a stray marker inside corrupted data can misframe; the
// decoder's structural checks are the only recovery.
func (f *Framer) Feed(chunk []byte) [][]byte {
	f.buf = append(f.buf, chunk...)

	var frames [][]byte
	for {
		start := bytes.Index(f.buf, startMarker)
		if start == -1 {
			// No message can begin in the buffered bytes. Keep only a
			// tail that could still be a marker prefix so garbage input
			// cannot grow the buffer without bound.
			if tail := len(startMarker) - 1; len(f.buf) > tail {
				f.buf = append(f.buf[:0], f.buf[len(f.buf)-tail:]...)
			}
			return frames
		}

		end := bytes.Index(f.buf[start:], endMarker)
		if end == -1 {
			// Message still incomplete; drop the skipped prefix and
			// wait for more data.
			f.buf = append(f.buf[:0], f.buf[start:]...)
			return frames
		}

		frameEnd := start + end + len(endMarker)
		frame := make([]byte, frameEnd-start)
		copy(frame, f.buf[start:frameEnd])
		frames = append(frames, frame)

		f.buf = append(f.buf[:0], f.buf[frameEnd:]...)
	}
}

// Reset discards any buffered bytes, e.g. when a connection is torn
// down and the next session must not see a stale partial frame.
func (f *Framer) Reset() {
	f.buf = f.buf[:0]
}
