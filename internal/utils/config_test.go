package utils_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/benmeehan/fleet-monitor/internal/constants"
	"github.com/benmeehan/fleet-monitor/internal/utils"
	"github.com/benmeehan/fleet-monitor/pkg/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestLoadConfig_Defaults tests that omitted keys get their defaults.
func TestLoadConfig_Defaults(t *testing.T) {
	// Setup
	path := writeConfig(t, `
server:
  base_url: http://127.0.0.1:5000
stream:
  websocket:
    url: ws://127.0.0.1:5000/events
`)

	// Execute
	config, err := utils.LoadConfig(path, file.NewFileService())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "/fleet", config.Server.FleetPath)
	assert.Equal(t, "/container-command", config.Server.ContainerCommandPath)
	assert.Equal(t, "/device-command", config.Server.DeviceCommandPath)
	assert.Equal(t, 10*time.Second, config.Server.RequestTimeout)
	assert.Equal(t, constants.TransportWebsocket, config.Stream.Transport)
	assert.Equal(t, "event_stream", config.Stream.EventName)
	assert.Equal(t, 5*time.Second, config.Stream.Websocket.ReconnectDelay)
	assert.Equal(t, constants.DefaultReconcilerWorkers, config.Reconciler.Workers)
	assert.False(t, config.Reconciler.TrackDeviceOnline)
	assert.Equal(t, ":8090", config.Services.API.ListenAddress)
	assert.Equal(t, "info", config.Logging.Level)
	assert.Equal(t, "json", config.Logging.Format)
}

// TestLoadConfig_Values tests decoding of explicit values.
func TestLoadConfig_Values(t *testing.T) {
	// Setup
	path := writeConfig(t, `
server:
  base_url: https://fleet.example.com
  request_timeout: 3s
stream:
  transport: mqtt
  mqtt:
    broker: tcp://broker:1883
    topic: fleet/events
    qos: 2
reconciler:
  workers: 3
  track_device_online: true
services:
  render:
    enabled: true
    interval: 250ms
`)

	// Execute
	config, err := utils.LoadConfig(path, file.NewFileService())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, config.Server.RequestTimeout)
	assert.Equal(t, "tcp://broker:1883", config.Stream.MQTT.Broker)
	assert.Equal(t, 2, config.Stream.MQTT.QOS)
	assert.Equal(t, "fleet-monitor", config.Stream.MQTT.ClientID)
	assert.Equal(t, 3, config.Reconciler.Workers)
	assert.True(t, config.Reconciler.TrackDeviceOnline)
	assert.True(t, config.Services.Render.Enabled)
	assert.Equal(t, 250*time.Millisecond, config.Services.Render.Interval)
}

// TestLoadConfig_EnvOverrides tests that environment variables take precedence over the file.
func TestLoadConfig_EnvOverrides(t *testing.T) {
	// Setup
	path := writeConfig(t, `
server:
  base_url: http://127.0.0.1:5000
stream:
  transport: websocket
  websocket:
    url: ws://127.0.0.1:5000/events
`)
	t.Setenv("FLEET_SERVER_URL", "http://fleet:8080")
	t.Setenv("FLEET_WEBSOCKET_URL", "ws://fleet:8080/events")
	t.Setenv("LOG_LEVEL", "debug")

	// Execute
	config, err := utils.LoadConfig(path, file.NewFileService())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "http://fleet:8080", config.Server.BaseURL)
	assert.Equal(t, "ws://fleet:8080/events", config.Stream.Websocket.URL)
	assert.Equal(t, "debug", config.Logging.Level)

	// Switching transport without the matching settings is rejected
	t.Setenv("FLEET_STREAM_TRANSPORT", "mqtt")
	t.Setenv("FLEET_MQTT_BROKER", "tcp://mqtt:1883")

	_, err = utils.LoadConfig(path, file.NewFileService())

	assert.ErrorContains(t, err, "stream.mqtt.topic")
}

// TestValidate tests rejection of unusable configurations.
func TestValidate(t *testing.T) {
	valid := func() *utils.Config {
		c := &utils.Config{}
		c.Server.BaseURL = "http://127.0.0.1:5000"
		c.Stream.Transport = constants.TransportReplay
		c.Stream.Replay.File = "fleet.json"
		c.Reconciler.Workers = 1
		return c
	}

	cases := []struct {
		name   string
		mutate func(c *utils.Config)
		errMsg string
	}{
		{"valid", func(c *utils.Config) {}, ""},
		{"missing base url", func(c *utils.Config) { c.Server.BaseURL = "" }, "server.base_url is required"},
		{"relative base url", func(c *utils.Config) { c.Server.BaseURL = "fleet" }, "server.base_url"},
		{"unknown transport", func(c *utils.Config) { c.Stream.Transport = "udp" }, `unknown stream transport "udp"`},
		{"websocket without url", func(c *utils.Config) { c.Stream.Transport = constants.TransportWebsocket }, "stream.websocket.url"},
		{"replay without file", func(c *utils.Config) { c.Stream.Replay.File = "" }, "stream.replay.file"},
		{"bad qos", func(c *utils.Config) {
			c.Stream.Transport = constants.TransportMQTT
			c.Stream.MQTT.Broker = "tcp://broker:1883"
			c.Stream.MQTT.Topic = "fleet/events"
			c.Stream.MQTT.QOS = 3
		}, "qos must be 0, 1 or 2"},
		{"no workers", func(c *utils.Config) { c.Reconciler.Workers = 0 }, "reconciler.workers must be positive"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := valid()
			tc.mutate(c)

			err := c.Validate()

			if tc.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.errMsg)
		})
	}
}

// TestLoadConfig_MissingFile tests the error for a missing configuration file.
func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := utils.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), file.NewFileService())

	assert.Error(t, err)
}
