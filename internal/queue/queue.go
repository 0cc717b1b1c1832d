// Package queue is a thin RabbitMQ client used to request pipeline runs from
// other hosts. Messages carry an account email; the consumer side lives in
// the CLI's queue mode.
package queue

import (
	"context"
	"net/url"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"quotereel/manager-go/internal/utils"
)

// UploadRequests is the queue the pipeline consumer listens on.
const UploadRequests = "upload_requests"

type Client struct {
	conn *amqp.Connection
	ch   *amqp.Channel

	mu       sync.Mutex
	declared map[string]bool
}

// Message is one received delivery. Ack or Nack exactly once.
type Message struct {
	Body     []byte
	delivery amqp.Delivery
}

func New(rawURL string) (*Client, error) {
	utils.Info("queue connect", "url", redactURL(rawURL))
	conn, err := amqp.Dial(rawURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return &Client{conn: conn, ch: ch, declared: map[string]bool{}}, nil
}

func redactURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return "<invalid url>"
	}
	if parsed.User == nil {
		return parsed.String()
	}
	username := parsed.User.Username()
	if _, hasPassword := parsed.User.Password(); hasPassword {
		parsed.User = url.UserPassword(username, "REDACTED")
	} else {
		parsed.User = url.User(username)
	}
	return parsed.String()
}

func (c *Client) Close() {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// ensureQueue declares a durable queue once per client. Declaration is
// idempotent on the broker side; the map just avoids repeating the round trip
// on every poll.
func (c *Client) ensureQueue(name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.declared[name] {
		return nil
	}
	utils.Debug("queue declare", "queue", name)
	if _, err := c.ch.QueueDeclare(name, true, false, false, false, nil); err != nil {
		return err
	}
	c.declared[name] = true
	return nil
}

func (c *Client) Publish(ctx context.Context, queueName string, payload []byte) error {
	utils.Info("queue publish", "queue", queueName, "bytes", len(payload))
	if err := c.ensureQueue(queueName); err != nil {
		return err
	}
	return c.ch.PublishWithContext(ctx, "", queueName, false, false, amqp.Publishing{
		ContentType: "application/json",
		Body:        payload,
	})
}

// Pop fetches a single message without blocking. A nil message means the
// queue is empty.
func (c *Client) Pop(queueName string) (*Message, error) {
	if err := c.ensureQueue(queueName); err != nil {
		return nil, err
	}
	delivery, ok, err := c.ch.Get(queueName, false)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	utils.Info("queue received", "queue", queueName, "bytes", len(delivery.Body))
	return &Message{Body: delivery.Body, delivery: delivery}, nil
}

func (m *Message) Ack() error {
	if m == nil {
		return nil
	}
	return m.delivery.Ack(false)
}

func (m *Message) Nack(requeue bool) error {
	if m == nil {
		return nil
	}
	return m.delivery.Nack(false, requeue)
}
