package service_registry

import (
	"fmt"

	"github.com/benmeehan/fleet-monitor/internal/constants"
	"github.com/benmeehan/fleet-monitor/internal/utils"
	"github.com/benmeehan/fleet-monitor/pkg/eventsource"
	"github.com/benmeehan/fleet-monitor/pkg/mqtt"
	"github.com/google/uuid"
)

// newSource builds the event source selected by stream.transport.
func (sr *ServiceRegistry) newSource(config *utils.Config) (eventsource.Source, error) {
	stream := config.Stream

	switch stream.Transport {
	case constants.TransportWebsocket:
		return eventsource.NewWebsocketSource(stream.Websocket.URL, nil, stream.Websocket.ReconnectDelay, sr.Logger), nil

	case constants.TransportMQTT:
		// Generate a unique MQTT Client ID by appending a UUID
		clientID := stream.MQTT.ClientID + "-" + uuid.New().String()
		sr.Logger.Info().Msgf("Using MQTT Client ID: %s", clientID)

		mqttClient := mqtt.NewMqttService(sr.fileClient, sr.Logger)
		if err := mqttClient.Initialize(stream.MQTT.Broker, clientID, stream.MQTT.CACertificate); err != nil {
			return nil, fmt.Errorf("failed to initialize MQTT connection: %w", err)
		}
		sr.mqttClient = mqttClient
		return eventsource.NewMQTTSource(mqttClient, stream.MQTT.Topic, stream.MQTT.QOS, sr.Logger), nil

	case constants.TransportReplay:
		return eventsource.NewReplaySource(stream.Replay.File, stream.Replay.Interval, sr.fileClient, sr.Logger), nil

	default:
		return nil, fmt.Errorf("unknown stream transport %q", stream.Transport)
	}
}
