// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text


package app

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/gorilla/websocket"

	"github.com/relabs-tech/head_tracker/internal/config"
	"github.com/relabs-tech/head_tracker/internal/orientation"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for local development
	},
}

// webState holds the latest data received from MQTT for the HTTP and
// websocket handlers.
type webState struct {
	mu sync.RWMutex

	pose     orientation.Pose
	havePose bool

	relative orientation.Pose
	haveRel  bool

	status     Status
	haveStatus bool
}

// wsUpdate is one message pushed to the browser.
type wsUpdate struct {
	Pose     orientation.Pose `json:"pose"`
	Relative orientation.Pose `json:"relative"`
	Status   Status           `json:"status"`
}

// RunWeb serves the 3D head visualization: a JSON API, a websocket
// pushing poses to the browser, and the static viewer page. Zero and
// reset requests from the page are forwarded to the tracker's MQTT
// command topic.
func RunWeb(ctx context.Context) error {
	cfg := config.Get()
	state := &webState{}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDWeb)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return token.Error()
	}
	defer client.Disconnect(250)
	log.Printf("web: connected to MQTT broker at %s", cfg.MQTTBroker)

	subscribe := func(topic string, handler mqtt.MessageHandler) error {
		token := client.Subscribe(topic, 0, handler)
		token.Wait()
		if token.Error() != nil {
			return token.Error()
		}
		log.Printf("web: subscribed to %s", topic)
		return nil
	}

	if err := subscribe(cfg.TopicPose, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("web: pose unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.pose = p
		state.havePose = true
		state.mu.Unlock()
	}); err != nil {
		return err
	}

	if err := subscribe(cfg.TopicPoseRelative, func(_ mqtt.Client, msg mqtt.Message) {
		var p orientation.Pose
		if err := json.Unmarshal(msg.Payload(), &p); err != nil {
			log.Printf("web: relative pose unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.relative = p
		state.haveRel = true
		state.mu.Unlock()
	}); err != nil {
		return err
	}

	if err := subscribe(cfg.TopicStatus, func(_ mqtt.Client, msg mqtt.Message) {
		var st Status
		if err := json.Unmarshal(msg.Payload(), &st); err != nil {
			log.Printf("web: status unmarshal error: %v", err)
			return
		}
		state.mu.Lock()
		state.status = st
		state.haveStatus = true
		state.mu.Unlock()
	}); err != nil {
		return err
	}

	mux := http.NewServeMux()

	mux.HandleFunc("/api/orientation", func(w http.ResponseWriter, r *http.Request) {
		state.mu.RLock()
		defer state.mu.RUnlock()

		if !state.havePose {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.relative); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	mux.HandleFunc("/api/status", func(w http.ResponseWriter, r *http.Request) {
		state.mu.RLock()
		defer state.mu.RUnlock()

		if !state.haveStatus {
			http.Error(w, "no data yet", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(state.status); err != nil {
			log.Printf("web: json encode error: %v", err)
		}
	})

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("web: websocket upgrade error: %v", err)
			return
		}
		defer conn.Close()
		log.Printf("web: websocket client connected from %s", r.RemoteAddr)

		// Reader: zero/reset commands from the page go back out to
		// the tracker over MQTT.
		go func() {
			for {
				var cmd Command
				if err := conn.ReadJSON(&cmd); err != nil {
					return
				}
				if cmd.Action != "zero" && cmd.Action != "reset" {
					log.Printf("web: ignoring unknown command %q", cmd.Action)
					continue
				}
				payload, _ := json.Marshal(cmd)
				client.Publish(cfg.TopicCommand, 0, false, payload)
				log.Printf("web: forwarded %q command", cmd.Action)
			}
		}()

		// Writer: push the latest pose at a fixed rate.
		ticker := time.NewTicker(33 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			state.mu.RLock()
			update := wsUpdate{
				Pose:     state.pose,
				Relative: state.relative,
				Status:   state.status,
			}
			have := state.havePose
			state.mu.RUnlock()

			if !have {
				continue
			}
			if err := conn.WriteJSON(update); err != nil {
				return
			}
		}
	})

	mux.Handle("/", http.FileServer(http.Dir(cfg.WebStaticDir)))

	server := &http.Server{Addr: cfg.WebAddr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("web: server listening on %s", cfg.WebAddr)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}
