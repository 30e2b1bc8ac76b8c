package broker

import (
	"log"

	"github.com/nats-io/nats.go"
)

// Producer publishes entity events to NATS.
type Producer struct {
	conn *nats.Conn
}

// NewProducer connects to the NATS server at url.
func NewProducer(url string) (*Producer, error) {
	conn, err := nats.Connect(url,
		nats.Name("emotion-notepad-producer"),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}
	log.Println("NATS producer initialized")
	return &Producer{conn: conn}, nil
}

// Publish sends value to subject. Failures are logged, not returned; an
// unreachable broker must not fail the originating request.
func (p *Producer) Publish(subject string, value []byte) {
	if p == nil || p.conn == nil {
		log.Println("NATS producer is not initialized")
		return
	}
	if err := p.conn.Publish(subject, value); err != nil {
		log.Printf("Failed to publish message to %s: %v", subject, err)
	}
}

// Close drains and closes the connection.
func (p *Producer) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		log.Printf("Failed to drain NATS connection: %v", err)
	}
}
