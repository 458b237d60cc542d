package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"
)

const readChunkSize = 4096

// TCPStream reads the glasses' debug port over TCP.
type TCPStream struct {
	conn    net.Conn
	timeout time.Duration
	buf     []byte
}

// DialTCP connects to addr (host:port). A connection that cannot be
// established is reported as ErrRefused; there is nothing to retry at
// this layer.
func DialTCP(addr string, timeout time.Duration) (*TCPStream, error) {
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrRefused, addr, err)
	}
	return &TCPStream{
		conn:    conn,
		timeout: timeout,
		buf:     make([]byte, readChunkSize),
	}, nil
}

// Read returns the next chunk of raw bytes. A read deadline bounds
// each call so the ingestion loop can observe cancellation between
// chunks even when the device goes quiet.
func (s *TCPStream) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := s.conn.SetReadDeadline(time.Now().Add(s.timeout)); err != nil {
		return nil, fmt.Errorf("set read deadline: %w", err)
	}

	n, err := s.conn.Read(s.buf)
	if n > 0 {
		return s.buf[:n], nil
	}
	if err == nil {
		return nil, nil
	}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout():
		return nil, ErrTimeout
	case errors.Is(err, io.EOF):
		return nil, ErrClosed
	default:
		return nil, fmt.Errorf("%w: %v", ErrClosed, err)
	}
}

// Close closes the underlying connection. Safe to call from another
// goroutine to unblock a pending Read.
func (s *TCPStream) Close() error {
	return s.conn.Close()
}
