package transport

import (
	"context"
	"errors"
	"fmt"
	"io"

	serial "github.com/jacobsa/go-serial/serial"
)

// SerialStream reads the same framed protocol over a UART bridge,
// for bench setups where the glasses' stream is mirrored to a serial
// port instead of TCP.
type SerialStream struct {
	port io.ReadWriteCloser
	buf  []byte
}

// OpenSerial opens the named port at the given baud rate.
func OpenSerial(portName string, baudRate uint) (*SerialStream, error) {
	opts := serial.OpenOptions{
		PortName:        portName,
		BaudRate:        baudRate,
		DataBits:        8,
		StopBits:        1,
		MinimumReadSize: 1,
		ParityMode:      serial.PARITY_NONE,
	}

	port, err := serial.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrRefused, portName, err)
	}
	return &SerialStream{port: port, buf: make([]byte, readChunkSize)}, nil
}

// Read returns the next chunk. Serial reads block until at least one
// byte arrives; cancel by closing the port from another goroutine.
func (s *SerialStream) Read(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := s.port.Read(s.buf)
	if n > 0 {
		return s.buf[:n], nil
	}
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("%w: %v", ErrClosed, err)
	}
	return nil, nil
}

// Close closes the serial port.
func (s *SerialStream) Close() error {
	return s.port.Close()
}
