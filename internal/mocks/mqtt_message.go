package mocks

// MockMessage is an MQTT.Message carrying one event stream frame on a topic.
type MockMessage struct {
	topic   string
	payload []byte
	qos     byte
}

// NewMockMessage creates a QoS 1 message delivering frame on topic.
func NewMockMessage(topic string, frame []byte) *MockMessage {
	return &MockMessage{topic: topic, payload: frame, qos: 1}
}

func (m *MockMessage) Topic() string     { return m.topic }
func (m *MockMessage) Payload() []byte   { return m.payload }
func (m *MockMessage) Qos() byte         { return m.qos }
func (m *MockMessage) Duplicate() bool   { return false }
func (m *MockMessage) Retained() bool    { return false }
func (m *MockMessage) MessageID() uint16 { return 1 }

// Ack is a no-op: the sources never acknowledge manually.
func (m *MockMessage) Ack() {}
