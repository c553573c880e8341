package models

// InboundMessage is one (topic, payload) pair delivered by the transport.
type InboundMessage struct {
	Topic   string
	Payload []byte
}
