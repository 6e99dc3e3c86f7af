package utils

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/benmeehan/fleet-monitor/internal/constants"
	"github.com/benmeehan/fleet-monitor/pkg/file"
	"github.com/joho/godotenv"
)

// Config represents the structure of the configuration file.
type Config struct {
	Server struct {
		BaseURL              string        `yaml:"base_url"`               // Control-plane server address, e.g. http://127.0.0.1:5000
		FleetPath            string        `yaml:"fleet_path"`             // Path returning the full fleet snapshot
		ContainerCommandPath string        `yaml:"container_command_path"` // Path of the container-command channel
		DeviceCommandPath    string        `yaml:"device_command_path"`    // Path of the device-command channel
		RequestTimeout       time.Duration `yaml:"request_timeout"`        // Timeout of a single request
	} `yaml:"server"`

	Stream struct {
		Transport string `yaml:"transport"`  // websocket, mqtt or replay
		EventName string `yaml:"event_name"` // Name of the event carrying fleet snapshots
		Bootstrap bool   `yaml:"bootstrap"`  // Fetch the full fleet before subscribing

		Websocket struct {
			URL            string        `yaml:"url"`             // Event stream websocket URL
			ReconnectDelay time.Duration `yaml:"reconnect_delay"` // Delay before redialing a dropped connection
		} `yaml:"websocket"`

		MQTT struct {
			Broker        string `yaml:"broker"`         // MQTT broker address
			ClientID      string `yaml:"client_id"`      // MQTT client ID prefix
			Topic         string `yaml:"topic"`          // Topic carrying fleet snapshots
			QOS           int    `yaml:"qos"`            // MQTT QoS level for the subscription
			CACertificate string `yaml:"ca_certificate"` // Path to the CA certificate, empty for plain TCP
		} `yaml:"mqtt"`

		Replay struct {
			File     string        `yaml:"file"`     // JSON file holding one snapshot or an array of snapshots
			Interval time.Duration `yaml:"interval"` // Delay between replayed snapshots
		} `yaml:"replay"`
	} `yaml:"stream"`

	Reconciler struct {
		Workers           int  `yaml:"workers"`             // Concurrent container updates per device
		TrackDeviceOnline bool `yaml:"track_device_online"` // Drive the device status indicator from "online"
	} `yaml:"reconciler"`

	Services struct {
		Render struct {
			Enabled  bool          `yaml:"enabled"`  // Enable/disable the terminal view
			Interval time.Duration `yaml:"interval"` // Interval between redraws
		} `yaml:"render"`

		API struct {
			Enabled       bool   `yaml:"enabled"`        // Enable/disable the HTTP view and command API
			ListenAddress string `yaml:"listen_address"` // Address the API listens on
		} `yaml:"api"`
	} `yaml:"services"`

	Logging struct {
		Level  string `yaml:"level"`  // zerolog level name
		Format string `yaml:"format"` // json or console
	} `yaml:"logging"`
}

// LoadConfig loads the YAML configuration from the specified file, applies
// environment overrides (optionally read from a .env file) and fills defaults.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	if err := fileClient.ReadYamlFile(filename, &config); err != nil {
		return nil, err
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}
	config.applyEnv()
	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	c.Server.BaseURL = Coalesce(os.Getenv("FLEET_SERVER_URL"), c.Server.BaseURL)
	c.Stream.Transport = Coalesce(os.Getenv("FLEET_STREAM_TRANSPORT"), c.Stream.Transport)
	c.Stream.Websocket.URL = Coalesce(os.Getenv("FLEET_WEBSOCKET_URL"), c.Stream.Websocket.URL)
	c.Stream.MQTT.Broker = Coalesce(os.Getenv("FLEET_MQTT_BROKER"), c.Stream.MQTT.Broker)
	c.Logging.Level = Coalesce(os.Getenv("LOG_LEVEL"), c.Logging.Level)
}

func (c *Config) applyDefaults() {
	c.Server.FleetPath = Coalesce(c.Server.FleetPath, constants.DefaultFleetPath)
	c.Server.ContainerCommandPath = Coalesce(c.Server.ContainerCommandPath, constants.DefaultContainerCommandPath)
	c.Server.DeviceCommandPath = Coalesce(c.Server.DeviceCommandPath, constants.DefaultDeviceCommandPath)
	c.Server.RequestTimeout = Coalesce(c.Server.RequestTimeout, constants.DefaultRequestTimeout*time.Second)

	c.Stream.Transport = Coalesce(c.Stream.Transport, constants.TransportWebsocket)
	c.Stream.EventName = Coalesce(c.Stream.EventName, constants.DefaultEventName)
	c.Stream.Websocket.ReconnectDelay = Coalesce(c.Stream.Websocket.ReconnectDelay, constants.DefaultReconnectDelay*time.Second)
	c.Stream.MQTT.ClientID = Coalesce(c.Stream.MQTT.ClientID, "fleet-monitor")
	c.Stream.Replay.Interval = Coalesce(c.Stream.Replay.Interval, constants.DefaultReplayInterval*time.Second)

	c.Reconciler.Workers = Coalesce(c.Reconciler.Workers, constants.DefaultReconcilerWorkers)

	c.Services.Render.Interval = Coalesce(c.Services.Render.Interval, constants.DefaultRenderInterval*time.Second)
	c.Services.API.ListenAddress = Coalesce(c.Services.API.ListenAddress, constants.DefaultAPIListenAddress)

	c.Logging.Level = Coalesce(c.Logging.Level, "info")
	c.Logging.Format = Coalesce(c.Logging.Format, "json")
}

// Validate checks that the configuration can drive the monitor.
func (c *Config) Validate() error {
	if c.Server.BaseURL == "" {
		return errors.New("server.base_url is required")
	}
	if _, err := url.ParseRequestURI(c.Server.BaseURL); err != nil {
		return fmt.Errorf("server.base_url: %w", err)
	}

	switch c.Stream.Transport {
	case constants.TransportWebsocket:
		if c.Stream.Websocket.URL == "" {
			return errors.New("stream.websocket.url is required for the websocket transport")
		}
	case constants.TransportMQTT:
		if c.Stream.MQTT.Broker == "" || c.Stream.MQTT.Topic == "" {
			return errors.New("stream.mqtt.broker and stream.mqtt.topic are required for the mqtt transport")
		}
		if c.Stream.MQTT.QOS < 0 || c.Stream.MQTT.QOS > 2 {
			return fmt.Errorf("stream.mqtt.qos must be 0, 1 or 2, got %d", c.Stream.MQTT.QOS)
		}
	case constants.TransportReplay:
		if c.Stream.Replay.File == "" {
			return errors.New("stream.replay.file is required for the replay transport")
		}
	default:
		return fmt.Errorf("unknown stream transport %q", c.Stream.Transport)
	}

	if c.Reconciler.Workers < 1 {
		return fmt.Errorf("reconciler.workers must be positive, got %d", c.Reconciler.Workers)
	}
	return nil
}
