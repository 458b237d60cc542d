package app

import (
	"bufio"
	"context"
	"log"
	"os"
	"strings"
	"time"

	"github.com/relabs-tech/head_tracker/internal/config"
	"github.com/relabs-tech/head_tracker/internal/imu"
	"github.com/relabs-tech/head_tracker/internal/tracker"
)

// readKeys feeds lowercase single-character commands typed on stdin
// into the returned channel. Lines are used instead of raw terminal
// input so the console also works when stdin is not a TTY.
func readKeys() <-chan rune {
	keys := make(chan rune, 8)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := strings.TrimSpace(strings.ToLower(scanner.Text()))
			if line == "" {
				continue
			}
			select {
			case keys <- rune(line[0]):
			default:
			}
		}
		close(keys)
	}()
	return keys
}

// RunConsole is the interactive console head-tracking app: it talks
// to the glasses directly (no MQTT) and renders calibration and
// tracking screens, with t/r/q keyboard commands.
func RunConsole(ctx context.Context) error {
	cfg := config.Get()

	showStartupInstructions()

	stream, err := openStream(cfg)
	if err != nil {
		return err
	}
	defer stream.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-ctx.Done()
		stream.Close()
	}()

	ht := tracker.New(cfg.CalibrationTarget, tracker.Scales{
		Pitch: cfg.PitchScale,
		Yaw:   cfg.YawScale,
		Roll:  cfg.RollScale,
	})

	keys := readKeys()
	messageCount := 0
	startTime := time.Now()

	return Ingest(ctx, stream, func(s imu.Sample) {
		select {
		case key := <-keys:
			switch key {
			case 't':
				ht.ZeroView()
				showMessage("VIEW ZEROED!", "Current orientation is now the reference point")
			case 'r':
				ht.ResetCalibration()
				showMessage("CALIBRATION RESET!", "Please recalibrate...")
			case 'q':
				cancel()
				return
			default:
				showMessage("KEYBOARD COMMANDS",
					"t - Zero view\nr - Recalibrate gyroscope\nq - Quit program")
			}
		default:
		}

		messageCount++
		rate := float64(messageCount) / time.Since(startTime).Seconds()

		if !ht.IsCalibrated() {
			if ht.Calibrate(s) {
				showCalibrationComplete(ht)
				return
			}
			if messageCount%50 == 0 {
				showCalibrationProgress(ht, s)
			}
			return
		}

		ht.Update(s, time.Now())
		if messageCount%10 == 0 {
			showTracking(ht, s, messageCount, rate)
		}
	})
}

// RunRawConsole dumps every decoded sample, the raw-output mode used
// to eyeball the stream without any tracking state.
func RunRawConsole(ctx context.Context) error {
	cfg := config.Get()

	stream, err := openStream(cfg)
	if err != nil {
		return err
	}
	defer stream.Close()
	go func() {
		<-ctx.Done()
		stream.Close()
	}()

	messageCount := 0
	startTime := time.Now()
	return Ingest(ctx, stream, func(s imu.Sample) {
		messageCount++
		rate := float64(messageCount) / time.Since(startTime).Seconds()
		log.Printf("[%06d] %.1fHz | %s", messageCount, rate, s)
	})
}
