package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/head_tracker/internal/imu"
	"github.com/relabs-tech/head_tracker/internal/protocol"
	"github.com/relabs-tech/head_tracker/internal/transport"
)

// readEvent is one scripted result of a mockStream.Read call.
type readEvent struct {
	chunk []byte
	err   error
}

// mockStream plays back a scripted sequence of chunks and errors,
// ending with a clean close.
type mockStream struct {
	script []readEvent
	closed bool
}

func (m *mockStream) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(m.script) == 0 {
		return nil, transport.ErrClosed
	}
	ev := m.script[0]
	m.script = m.script[1:]
	return ev.chunk, ev.err
}

func (m *mockStream) Close() error {
	m.closed = true
	return nil
}

func frameFor(s imu.Sample) []byte {
	return protocol.AppendFrame(nil, s, 1, time.Unix(1700000000, 0))
}

func collect(t *testing.T, mock *mockStream) []imu.Sample {
	t.Helper()

	var got []imu.Sample
	err := Ingest(context.Background(), mock, func(s imu.Sample) {
		got = append(got, s)
	})
	require.NoError(t, err)
	return got
}

func TestIngestDecodesAcrossChunks(t *testing.T) {
	want := []imu.Sample{
		{Gx: 1, Ay: 0.5, Az: 1},
		{Gy: -2.5, Az: 1},
	}

	// Two frames split at an arbitrary byte boundary.
	var stream []byte
	stream = append(stream, frameFor(want[0])...)
	stream = append(stream, frameFor(want[1])...)

	mock := &mockStream{script: []readEvent{
		{chunk: stream[:37]},
		{chunk: stream[37:]},
	}}
	assert.Equal(t, want, collect(t, mock))
}

func TestIngestRetriesOnTimeout(t *testing.T) {
	want := imu.Sample{Gz: 3, Az: 1}
	frame := frameFor(want)

	// A timeout between two halves of one frame must not disturb
	// framing.
	mock := &mockStream{script: []readEvent{
		{chunk: frame[:50]},
		{err: transport.ErrTimeout},
		{chunk: frame[50:]},
	}}
	assert.Equal(t, []imu.Sample{want}, collect(t, mock))
}

func TestIngestStopsOnClose(t *testing.T) {
	mock := &mockStream{}
	err := Ingest(context.Background(), mock, func(imu.Sample) {
		t.Fatal("no samples expected")
	})
	assert.NoError(t, err)
}

func TestIngestStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	mock := &mockStream{script: []readEvent{{chunk: frameFor(imu.Sample{Az: 1})}}}
	err := Ingest(ctx, mock, func(imu.Sample) {
		t.Fatal("no samples expected after cancellation")
	})
	assert.NoError(t, err)
}

func TestIngestSkipsLeadingNoise(t *testing.T) {
	want := imu.Sample{Gx: 4, Az: 1}

	var stream []byte
	stream = append(stream, 0x13, 0x37)
	stream = append(stream, frameFor(want)...)

	mock := &mockStream{script: []readEvent{{chunk: stream}}}
	assert.Equal(t, []imu.Sample{want}, collect(t, mock))
}
