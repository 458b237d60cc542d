// Package transport delivers the raw byte stream from the glasses.
// It only reads; the protocol has no client-to-device traffic.
package transport

import (
	"context"
	"errors"
)

// Error taxonomy for the ingestion loop. Timeouts are retryable (the
// loop keeps waiting for more bytes); the other two are terminal.
var (
	ErrTimeout = errors.New("transport: read timeout")
	ErrClosed  = errors.New("transport: connection closed")
	ErrRefused = errors.New("transport: connection refused")
)

// Stream is a source of raw byte chunks. Read blocks until data
// arrives, the configured timeout elapses (ErrTimeout), the peer goes
// away (ErrClosed), or ctx is canceled. The returned slice is only
// valid until the next Read.
type Stream interface {
	Read(ctx context.Context) ([]byte, error)
	Close() error
}
