package app

import (
	"context"
	"errors"
	"log"
	"math"
	"net"
	"time"

	"github.com/relabs-tech/head_tracker/internal/config"
	"github.com/relabs-tech/head_tracker/internal/imu"
	"github.com/relabs-tech/head_tracker/internal/protocol"
)

// mockSample generates the synthetic motion served by the simulator:
// a stationary phase long enough for clients to calibrate, then
// smooth sinusoidal head movement.
func mockSample(elapsed time.Duration, stationary time.Duration) imu.Sample {
	if elapsed < stationary {
		return imu.Sample{Az: 1}
	}

	t := (elapsed - stationary).Seconds()
	return imu.Sample{
		Gx: 8 * math.Sin(t),
		Gy: 5 * math.Cos(t*0.7),
		Gz: 3 * math.Sin(t*0.4),
		Ax: 0.05 * math.Sin(t*0.9),
		Ay: 0.05 * math.Cos(t*1.1),
		Az: 1,
	}
}

// RunSimulator serves protocol-correct sensor frames over TCP so the
// tracker, console and tests can run without the glasses. Every
// client gets its own session starting with a stationary calibration
// phase.
func RunSimulator(ctx context.Context) error {
	cfg := config.Get()

	listener, err := net.Listen("tcp", cfg.SimulatorAddr)
	if err != nil {
		return err
	}
	defer listener.Close()
	go func() {
		<-ctx.Done()
		listener.Close()
	}()

	log.Printf("simulator: listening on %s, %d Hz, %ds stationary phase",
		cfg.SimulatorAddr, cfg.SimulatorRateHz, cfg.SimulatorStationarySecs)

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("simulator: accept error: %v", err)
			continue
		}
		go serveClient(ctx, conn, cfg)
	}
}

func serveClient(ctx context.Context, conn net.Conn, cfg *config.Config) {
	defer conn.Close()
	log.Printf("simulator: client connected from %s", conn.RemoteAddr())

	sessionID := uint64(time.Now().UnixNano())
	stationary := time.Duration(cfg.SimulatorStationarySecs) * time.Second
	interval := time.Second / time.Duration(cfg.SimulatorRateHz)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	buf := make([]byte, 0, 256)

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s := mockSample(now.Sub(start), stationary)
			buf = protocol.AppendFrame(buf[:0], s, sessionID, now)
			if _, err := conn.Write(buf); err != nil {
				log.Printf("simulator: client %s gone: %v", conn.RemoteAddr(), err)
				return
			}
		}
	}
}
