package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "head_tracker.conf")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
# comment line
TRANSPORT=serial
SERIAL_PORT=/dev/ttyACM0
SERIAL_BAUD=115200
CALIBRATION_TARGET=100
YAW_SCALE=10.5
MQTT_BROKER=tcp://broker:1883
WEB_ADDR=:9090
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "serial", cfg.Transport)
	assert.Equal(t, "/dev/ttyACM0", cfg.SerialPort)
	assert.Equal(t, uint(115200), cfg.SerialBaud)
	assert.Equal(t, 100, cfg.CalibrationTarget)
	assert.Equal(t, 10.5, cfg.YawScale)
	assert.Equal(t, "tcp://broker:1883", cfg.MQTTBroker)
	assert.Equal(t, ":9090", cfg.WebAddr)

	// Untouched keys keep their defaults.
	assert.Equal(t, "169.254.2.1:52998", cfg.DeviceAddr)
	assert.Equal(t, 3.0, cfg.PitchScale)
	assert.Equal(t, "headtracker/command", cfg.TopicCommand)
}

func TestLoadRejectsUnknownKey(t *testing.T) {
	path := writeConfig(t, "NO_SUCH_KEY=1\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "NO_SUCH_KEY")
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"bad transport", "TRANSPORT=udp"},
		{"bad timeout", "READ_TIMEOUT_MS=zero"},
		{"negative timeout", "READ_TIMEOUT_MS=-5"},
		{"bad target", "CALIBRATION_TARGET=0"},
		{"bad scale", "PITCH_SCALE=big"},
		{"bad rate", "SIMULATOR_RATE_HZ=0"},
		{"malformed line", "JUST_A_KEY"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.line+"\n"))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.conf"))
	assert.Error(t, err)
}

func TestDefaultValidates(t *testing.T) {
	assert.NoError(t, Default().validate())
}
