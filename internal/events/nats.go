package events

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"hospital-capacity-backend/internal/config"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// SubjectCapacityReported is the subject the durable consumer subscribes to
const SubjectCapacityReported = "hospital.capacity.reported"

// Client holds the NATS connection and its JetStream handle
type Client struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	stream string
}

// Connect establishes the NATS connection and ensures the JetStream stream
// exists. Stream creation is idempotent.
func Connect(cfg *config.Config) (*Client, error) {
	nc, err := nats.Connect(cfg.NATS.URL,
		nats.Name("hospital-capacity-service"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Printf("NATS disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", cfg.NATS.URL, err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	client := &Client{conn: nc, js: js, stream: cfg.NATS.Stream}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}

	log.Printf("Connected to NATS at %s (stream %s)", cfg.NATS.URL, cfg.NATS.Stream)
	return client, nil
}

func (c *Client) ensureStream(ctx context.Context) error {
	_, err := c.js.Stream(ctx, c.stream)
	if err == nil {
		return nil
	}
	if !errors.Is(err, jetstream.ErrStreamNotFound) {
		return fmt.Errorf("failed to check stream %s: %w", c.stream, err)
	}

	log.Printf("Stream %s not found, creating", c.stream)
	_, err = c.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:     c.stream,
		Subjects: []string{"hospital.capacity.*", "hospital.*"},
		Storage:  jetstream.FileStorage,
	})
	if err != nil {
		return fmt.Errorf("failed to create stream %s: %w", c.stream, err)
	}
	return nil
}

// IsConnected reports whether the underlying connection is up
func (c *Client) IsConnected() bool {
	return c != nil && c.conn != nil && c.conn.IsConnected()
}

// Close drains and closes the connection
func (c *Client) Close() {
	if c == nil || c.conn == nil {
		return
	}
	if err := c.conn.Drain(); err != nil {
		log.Printf("Error draining NATS connection: %v", err)
	}
}
