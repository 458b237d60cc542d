package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/relabs-tech/head_tracker/internal/config"
	"github.com/relabs-tech/head_tracker/internal/imu"
	"github.com/relabs-tech/head_tracker/internal/protocol"
	"github.com/relabs-tech/head_tracker/internal/transport"
)

// openStream connects to the glasses using the configured transport.
func openStream(cfg *config.Config) (transport.Stream, error) {
	switch cfg.Transport {
	case "serial":
		log.Printf("opening serial port %s at %d baud", cfg.SerialPort, cfg.SerialBaud)
		return transport.OpenSerial(cfg.SerialPort, cfg.SerialBaud)
	default:
		log.Printf("connecting to %s...", cfg.DeviceAddr)
		return transport.DialTCP(cfg.DeviceAddr, time.Duration(cfg.ReadTimeoutMS)*time.Millisecond)
	}
}

// Ingest drives the framing pipeline: it reads chunks from the
// stream, frames and decodes them, and calls handle for every valid
// sample, in stream order. Each chunk is processed to completion
// before the next read, so handle never runs concurrently with
// itself.
//
// Timeouts are retryable and only logged; the loop returns nil when
// the device closes the connection, and the read error otherwise.
// Cancellation is observed between chunks.
func Ingest(ctx context.Context, stream transport.Stream, handle func(imu.Sample)) error {
	var framer protocol.Framer

	for {
		chunk, err := stream.Read(ctx)
		if err != nil {
			switch {
			case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
				return nil
			case errors.Is(err, transport.ErrTimeout):
				log.Println("ingest: read timeout, retrying")
				continue
			case errors.Is(err, transport.ErrClosed):
				log.Println("ingest: connection closed by device")
				return nil
			default:
				return err
			}
		}

		for _, frame := range framer.Feed(chunk) {
			if sample, ok := protocol.Decode(frame); ok {
				handle(sample)
			}
		}
	}
}
