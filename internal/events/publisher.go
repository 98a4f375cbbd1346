package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
)

// Publisher delivers domain events to the JetStream stream, wrapping each
// payload in the standard envelope. Delivery is best effort: a failed publish
// is reported to the caller but never retried here.
type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// Publish wraps payload in an envelope with a fresh event ID and publishes
// it. When NATS is not connected (optional in dev), the event is dropped with
// a warning instead of failing the caller.
func (p *Publisher) Publish(ctx context.Context, subject string, payload interface{}) error {
	if p.client == nil || p.client.js == nil {
		log.Printf("JetStream not connected, dropping event on %s", subject)
		return nil
	}

	envelope := Envelope{
		EventName: subject,
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}

	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to encode event for %s: %w", subject, err)
	}

	if _, err := p.client.js.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", subject, err)
	}

	return nil
}
