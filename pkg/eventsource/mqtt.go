package eventsource

import (
	"context"
	"fmt"

	"github.com/benmeehan/fleet-monitor/pkg/mqtt"
	MQTT "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// MQTTSource delivers every message published on a topic as an event.
type MQTTSource struct {
	mqttClient mqtt.MQTTClient
	topic      string
	qos        int
	logger     zerolog.Logger
}

// NewMQTTSource creates a source subscribed to topic.
func NewMQTTSource(mqttClient mqtt.MQTTClient, topic string, qos int, logger zerolog.Logger) *MQTTSource {
	return &MQTTSource{
		mqttClient: mqttClient,
		topic:      topic,
		qos:        qos,
		logger:     logger,
	}
}

// Run subscribes to the topic and delivers messages until ctx is cancelled.
// Messages are handed to handle one at a time, in arrival order. The subscription
// is issued again every time the client reconnects to the broker.
func (s *MQTTSource) Run(ctx context.Context, handle Handler) error {
	frames := make(chan []byte, 64)
	callback := func(_ MQTT.Client, msg MQTT.Message) {
		select {
		case frames <- msg.Payload():
		case <-ctx.Done():
		}
	}

	if err := s.subscribe(callback); err != nil {
		return err
	}
	removeHook := s.mqttClient.OnConnect(func() {
		if ctx.Err() != nil {
			return
		}
		s.logger.Info().Str("topic", s.topic).Msg("Reconnected to MQTT broker, subscribing again")
		_ = s.subscribe(callback)
	})
	defer removeHook()

	for {
		select {
		case data := <-frames:
			handle(ParseFrame(data))
		case <-ctx.Done():
			token := s.mqttClient.Unsubscribe(s.topic)
			token.Wait()
			if err := token.Error(); err != nil {
				s.logger.Error().Err(err).Str("topic", s.topic).Msg("Failed to unsubscribe from MQTT topic")
				return err
			}
			return nil
		}
	}
}

func (s *MQTTSource) subscribe(callback MQTT.MessageHandler) error {
	token := s.mqttClient.Subscribe(s.topic, byte(s.qos), callback)
	token.Wait()
	if err := token.Error(); err != nil {
		s.logger.Error().Err(err).Str("topic", s.topic).Msg("Failed to subscribe to MQTT topic")
		return fmt.Errorf("failed to subscribe to %s: %w", s.topic, err)
	}
	s.logger.Info().Str("topic", s.topic).Msg("Successfully subscribed to MQTT topic")
	return nil
}
