package core

import (
	"log"
	"time"

	"github.com/nats-io/nats.go"
)

// NATSBroker encapsulates a NATS connection used to fan engine events out
// to external consumers (dashboards, analytics).
type NATSBroker struct {
	Conn *nats.Conn
}

// NewNATSBroker creates a new NATSBroker connected to the provided URL.
func NewNATSBroker(url string) (*NATSBroker, error) {
	nc, err := nats.Connect(url,
		nats.Timeout(10*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &NATSBroker{Conn: nc}, nil
}

// Publish sends data on the provided subject.
func (b *NATSBroker) Publish(subject string, data []byte) error {
	return b.Conn.Publish(subject, data)
}

// Subscribe registers a callback for a specific subject.
func (b *NATSBroker) Subscribe(subject string, cb nats.MsgHandler) error {
	_, err := b.Conn.Subscribe(subject, cb)
	return err
}

// Close gracefully closes the connection.
func (b *NATSBroker) Close() {
	b.Conn.Close()
}

// Sink adapts the broker into an engine EventSink publishing JSON payloads
// on "bond.*" / "agent.*" subjects. Publish failures are logged, never
// propagated: observers must not stall the engine.
func (b *NATSBroker) Sink() EventSink {
	return func(subject string, payload interface{}) {
		if err := b.Publish(subject, EncodeJSON(payload)); err != nil {
			log.Printf("NATS publish failed for %s: %v", subject, err)
		}
	}
}
