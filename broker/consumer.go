package broker

import (
	"log"

	"github.com/nats-io/nats.go"
)

// Consumer subscribes to a set of subjects and exposes received messages
// on a channel.
type Consumer struct {
	conn     *nats.Conn
	subs     []*nats.Subscription
	messages chan *nats.Msg
}

// NewConsumer connects to NATS at url and subscribes to subjects as part
// of queue group.
func NewConsumer(url string, subjects []string, group string) (*Consumer, error) {
	conn, err := nats.Connect(url,
		nats.Name("emotion-notepad-"+group),
		nats.MaxReconnects(-1),
	)
	if err != nil {
		return nil, err
	}

	c := &Consumer{
		conn:     conn,
		messages: make(chan *nats.Msg, 256),
	}

	for _, subject := range subjects {
		sub, err := conn.QueueSubscribe(subject, group, func(msg *nats.Msg) {
			select {
			case c.messages <- msg:
			default:
				log.Printf("Warning: consumer channel full, discarding message on %s", msg.Subject)
			}
		})
		if err != nil {
			c.Close()
			return nil, err
		}
		c.subs = append(c.subs, sub)
	}

	log.Printf("NATS consumer started, listening on subjects: %v", subjects)
	return c, nil
}

// Messages returns the channel of received messages.
func (c *Consumer) Messages() chan *nats.Msg {
	return c.messages
}

// Close unsubscribes and closes the connection.
func (c *Consumer) Close() {
	for _, sub := range c.subs {
		if err := sub.Unsubscribe(); err != nil {
			log.Printf("Failed to unsubscribe: %v", err)
		}
	}
	if c.conn != nil {
		c.conn.Close()
	}
}
