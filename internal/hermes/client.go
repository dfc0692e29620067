package hermes

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
)

// ReplyHandler answers a request. The returned value is JSON-encoded and sent
// back to the requester.
type ReplyHandler func(subject string, data []byte) interface{}

type Client interface {
	Publish(subject string, data interface{}) error
	Reply(subject string, handler ReplyHandler) error
	Close()
}

type NATSClient struct {
	conn   *nats.Conn
	logger *slog.Logger

	mu   sync.Mutex
	subs []*nats.Subscription
}

func NewNATSClient(url string, logger *slog.Logger) (*NATSClient, error) {
	nc, err := nats.Connect(url,
		nats.Name("ranker"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(60),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			logger.Info("nats reconnected", "url", c.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	return &NATSClient{conn: nc, logger: logger}, nil
}

func (c *NATSClient) Publish(subject string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.conn.Publish(subject, payload)
}

// Reply subscribes to subject in the "ranker" queue group so that several
// instances share the request load.
func (c *NATSClient) Reply(subject string, handler ReplyHandler) error {
	sub, err := c.conn.QueueSubscribe(subject, "ranker", func(msg *nats.Msg) {
		if msg.Reply == "" {
			c.logger.Warn("dropping request without reply subject", "subject", msg.Subject)
			return
		}
		payload, err := json.Marshal(handler(msg.Subject, msg.Data))
		if err != nil {
			c.logger.Error("failed to encode reply", "subject", msg.Subject, "error", err)
			return
		}
		if err := msg.Respond(payload); err != nil {
			c.logger.Warn("failed to send reply", "subject", msg.Subject, "error", err)
		}
	})
	if err != nil {
		return err
	}
	c.track(sub)
	return nil
}

func (c *NATSClient) track(sub *nats.Subscription) {
	c.mu.Lock()
	c.subs = append(c.subs, sub)
	c.mu.Unlock()
}

func (c *NATSClient) Close() {
	c.mu.Lock()
	for _, sub := range c.subs {
		_ = sub.Unsubscribe()
	}
	c.subs = nil
	c.mu.Unlock()
	_ = c.conn.Drain()
}
