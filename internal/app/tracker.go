package app

import (
	"context"
	"encoding/json"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/head_tracker/internal/config"
	"github.com/relabs-tech/head_tracker/internal/imu"
	"github.com/relabs-tech/head_tracker/internal/tracker"
)

// Status is the calibration/tracking state published alongside poses.
type Status struct {
	Calibrated bool         `json:"calibrated"`
	Progress   float64      `json:"progress"`
	Bias       tracker.Bias `json:"bias"`
	BiasStdDev tracker.Bias `json:"bias_stddev"`
	Movement   string       `json:"movement"`
}

// Command is a presentation-to-core command received over MQTT or the
// web socket.
type Command struct {
	Action string `json:"action"` // "zero" or "reset"
}

// RunTracker is the headless ingestion service: it reads the glasses'
// stream, runs calibration and fusion, and publishes orientation over
// MQTT. It subscribes to the command topic for zero/reset requests,
// which are applied between samples so the tracker keeps a single
// writer.
func RunTracker(ctx context.Context) error {
	cfg := config.Get()

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDTracker)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("tracker: connected to MQTT broker at %s", cfg.MQTTBroker)

	// Commands are queued here and drained by the ingestion loop, so
	// the MQTT callback goroutine never touches tracker state.
	commands := make(chan string, 8)
	token := client.Subscribe(cfg.TopicCommand, 0, func(_ mqtt.Client, msg mqtt.Message) {
		var cmd Command
		if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
			log.Printf("tracker: command unmarshal error: %v", err)
			return
		}
		select {
		case commands <- cmd.Action:
		default:
			log.Printf("tracker: command queue full, dropping %q", cmd.Action)
		}
	})
	token.Wait()
	if token.Error() != nil {
		return token.Error()
	}
	log.Printf("tracker: subscribed to %s", cfg.TopicCommand)

	stream, err := openStream(cfg)
	if err != nil {
		return err
	}
	defer stream.Close()

	// Closing the stream from here unblocks a pending read when the
	// context is canceled.
	go func() {
		<-ctx.Done()
		stream.Close()
	}()

	ht := tracker.New(cfg.CalibrationTarget, tracker.Scales{
		Pitch: cfg.PitchScale,
		Yaw:   cfg.YawScale,
		Roll:  cfg.RollScale,
	})

	publish := func(topic string, v any) {
		payload, err := json.Marshal(v)
		if err != nil {
			log.Printf("tracker: json marshal error (%s): %v", topic, err)
			return
		}
		if t := client.Publish(topic, 0, true, payload); t.Wait() && t.Error() != nil {
			log.Printf("tracker: MQTT publish error (%s): %v", topic, t.Error())
		}
	}

	messageCount := 0
	log.Println("tracker: calibrating, keep the glasses stationary")

	return Ingest(ctx, stream, func(s imu.Sample) {
		// Apply any queued presentation commands first.
	drain:
		for {
			select {
			case action := <-commands:
				switch action {
				case "zero":
					ht.ZeroView()
					log.Println("tracker: view zeroed")
				case "reset":
					ht.ResetCalibration()
					log.Println("tracker: calibration reset")
				default:
					log.Printf("tracker: unknown command %q", action)
				}
			default:
				break drain
			}
		}

		messageCount++

		if !ht.IsCalibrated() {
			if ht.Calibrate(s) {
				bias := ht.GyroBias()
				log.Printf("tracker: calibration complete, bias X=%+.3f Y=%+.3f Z=%+.3f",
					bias.X, bias.Y, bias.Z)
			} else if messageCount%50 == 0 {
				log.Printf("tracker: calibrating %.1f%%", ht.CalibrationProgress())
			}
			if messageCount%10 == 0 {
				publish(cfg.TopicStatus, Status{
					Calibrated: ht.IsCalibrated(),
					Progress:   ht.CalibrationProgress(),
					Bias:       ht.GyroBias(),
					BiasStdDev: ht.GyroBiasStdDev(),
					Movement:   "CALIBRATING",
				})
			}
			return
		}

		ht.Update(s, time.Now())

		publish(cfg.TopicPose, ht.AbsoluteOrientation())
		publish(cfg.TopicPoseRelative, ht.RelativeOrientation())

		if messageCount%10 == 0 {
			publish(cfg.TopicSample, s)
			publish(cfg.TopicMovement, ht.MovementDescription(s))
			publish(cfg.TopicStatus, Status{
				Calibrated: true,
				Progress:   100,
				Bias:       ht.GyroBias(),
				BiasStdDev: ht.GyroBiasStdDev(),
				Movement:   ht.MovementDescription(s),
			})
		}
	})
}
