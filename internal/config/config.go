package config

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
)

// Config holds all application configuration values.
type Config struct {
	// Transport
	Transport     string // "tcp" or "serial"
	DeviceAddr    string // host:port of the glasses' debug port
	ReadTimeoutMS int
	SerialPort    string
	SerialBaud    uint

	// Tracking
	CalibrationTarget int
	PitchScale        float64
	YawScale          float64
	RollScale         float64

	// MQTT
	MQTTBroker          string
	MQTTClientIDTracker string
	MQTTClientIDConsole string
	MQTTClientIDWeb     string
	TopicPose           string
	TopicPoseRelative   string
	TopicSample         string
	TopicMovement       string
	TopicStatus         string
	TopicCommand        string

	// Web server
	WebAddr      string
	WebStaticDir string

	// Simulator
	SimulatorAddr           string
	SimulatorRateHz         int
	SimulatorStationarySecs int
}

// Default returns the configuration used when no file overrides it.
// The device address and timeout match the glasses' fixed link-local
// endpoint.
func Default() *Config {
	return &Config{
		Transport:     "tcp",
		DeviceAddr:    "169.254.2.1:52998",
		ReadTimeoutMS: 5000,
		SerialPort:    "/dev/ttyUSB0",
		SerialBaud:    921600,

		CalibrationTarget: 500,
		PitchScale:        3.0,
		YawScale:          60.0,
		RollScale:         1.0,

		MQTTBroker:          "tcp://localhost:1883",
		MQTTClientIDTracker: "head-tracker-producer",
		MQTTClientIDConsole: "head-tracker-console",
		MQTTClientIDWeb:     "head-tracker-web",
		TopicPose:           "headtracker/pose",
		TopicPoseRelative:   "headtracker/pose/relative",
		TopicSample:         "headtracker/sample",
		TopicMovement:       "headtracker/movement",
		TopicStatus:         "headtracker/status",
		TopicCommand:        "headtracker/command",

		WebAddr:      ":8080",
		WebStaticDir: "web",

		SimulatorAddr:           ":52998",
		SimulatorRateHz:         120,
		SimulatorStationarySecs: 6,
	}
}

// Package-level singleton, initialized once by InitGlobal and read
// through Get. The mutex allows concurrent readers across goroutines.
var (
	globalConfig *Config
	configOnce   sync.Once
	configMu     sync.RWMutex
)

// Load reads the configuration file and returns a Config struct with
// defaults applied for any key the file does not set.
func Load(configPath string) (*Config, error) {
	file, err := os.Open(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	cfg := Default()
	scanner := bufio.NewScanner(file)
	lineNum := 0

	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		// Skip empty lines and comments
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		// Parse KEY=VALUE
		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid config line %d: %q", lineNum, line)
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if err := cfg.setValue(key, value); err != nil {
			return nil, fmt.Errorf("config line %d: %w", lineNum, err)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// setValue sets a config value based on the key.
func (c *Config) setValue(key, value string) error {
	switch key {
	// Transport
	case "TRANSPORT":
		if value != "tcp" && value != "serial" {
			return fmt.Errorf("TRANSPORT must be \"tcp\" or \"serial\", got %q", value)
		}
		c.Transport = value
	case "DEVICE_ADDR":
		c.DeviceAddr = value
	case "READ_TIMEOUT_MS":
		ms, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid READ_TIMEOUT_MS %q: %w", value, err)
		}
		if ms <= 0 {
			return fmt.Errorf("READ_TIMEOUT_MS must be positive, got %d", ms)
		}
		c.ReadTimeoutMS = ms
	case "SERIAL_PORT":
		c.SerialPort = value
	case "SERIAL_BAUD":
		baud, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return fmt.Errorf("invalid SERIAL_BAUD %q: %w", value, err)
		}
		c.SerialBaud = uint(baud)

	// Tracking
	case "CALIBRATION_TARGET":
		target, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid CALIBRATION_TARGET %q: %w", value, err)
		}
		if target <= 0 {
			return fmt.Errorf("CALIBRATION_TARGET must be positive, got %d", target)
		}
		c.CalibrationTarget = target
	case "PITCH_SCALE":
		scale, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid PITCH_SCALE %q: %w", value, err)
		}
		c.PitchScale = scale
	case "YAW_SCALE":
		scale, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid YAW_SCALE %q: %w", value, err)
		}
		c.YawScale = scale
	case "ROLL_SCALE":
		scale, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("invalid ROLL_SCALE %q: %w", value, err)
		}
		c.RollScale = scale

	// MQTT
	case "MQTT_BROKER":
		c.MQTTBroker = value
	case "MQTT_CLIENT_ID_TRACKER":
		c.MQTTClientIDTracker = value
	case "MQTT_CLIENT_ID_CONSOLE":
		c.MQTTClientIDConsole = value
	case "MQTT_CLIENT_ID_WEB":
		c.MQTTClientIDWeb = value
	case "TOPIC_POSE":
		c.TopicPose = value
	case "TOPIC_POSE_RELATIVE":
		c.TopicPoseRelative = value
	case "TOPIC_SAMPLE":
		c.TopicSample = value
	case "TOPIC_MOVEMENT":
		c.TopicMovement = value
	case "TOPIC_STATUS":
		c.TopicStatus = value
	case "TOPIC_COMMAND":
		c.TopicCommand = value

	// Web server
	case "WEB_ADDR":
		c.WebAddr = value
	case "WEB_STATIC_DIR":
		c.WebStaticDir = value

	// Simulator
	case "SIMULATOR_ADDR":
		c.SimulatorAddr = value
	case "SIMULATOR_RATE_HZ":
		rate, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SIMULATOR_RATE_HZ %q: %w", value, err)
		}
		if rate <= 0 {
			return fmt.Errorf("SIMULATOR_RATE_HZ must be positive, got %d", rate)
		}
		c.SimulatorRateHz = rate
	case "SIMULATOR_STATIONARY_SECS":
		secs, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid SIMULATOR_STATIONARY_SECS %q: %w", value, err)
		}
		c.SimulatorStationarySecs = secs

	default:
		return fmt.Errorf("unknown config key: %q", key)
	}

	return nil
}

// validate checks that all required fields are set.
func (c *Config) validate() error {
	if c.DeviceAddr == "" && c.Transport == "tcp" {
		return fmt.Errorf("DEVICE_ADDR is required")
	}
	if c.SerialPort == "" && c.Transport == "serial" {
		return fmt.Errorf("SERIAL_PORT is required")
	}
	if c.MQTTBroker == "" {
		return fmt.Errorf("MQTT_BROKER is required")
	}
	return nil
}

// InitGlobal initializes the global configuration from file. A
// missing file is not an error: the defaults are used so every app
// runs against a stock setup with no config at all.
func InitGlobal(configPath string) error {
	var err error
	configOnce.Do(func() {
		configMu.Lock()
		defer configMu.Unlock()
		if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
			globalConfig = Default()
			return
		}
		globalConfig, err = Load(configPath)
	})
	return err
}

// Get returns the global configuration instance. InitGlobal must be
// called first, or this will return nil.
func Get() *Config {
	configMu.RLock()
	defer configMu.RUnlock()
	return globalConfig
}
