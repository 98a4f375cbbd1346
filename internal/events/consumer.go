package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"hospital-capacity-backend/internal/models"
	"hospital-capacity-backend/internal/observability"
	"hospital-capacity-backend/internal/service"

	"github.com/nats-io/nats.go/jetstream"
)

// CapacityIngester is the slice of the ingestion coordinator the consumer
// invokes for each accepted message.
type CapacityIngester interface {
	ProcessCapacityUpdate(ctx context.Context, hospital service.HospitalData, capacity *service.CapacityData, meta service.ReportMeta) error
}

// Consumer reads hospital.capacity.reported messages from a named durable
// JetStream consumer, one message at a time, with manual acknowledgment.
//
// Disposition policy: a message that can never succeed (malformed JSON,
// failed validation) is terminally rejected so it is not redelivered; any
// other processing failure is negatively acknowledged for redelivery. No
// redelivery cap is set.
type Consumer struct {
	client   *Client
	durable  string
	ingester CapacityIngester
	metrics  *observability.Metrics
}

func NewConsumer(client *Client, durable string, ingester CapacityIngester, metrics *observability.Metrics) *Consumer {
	return &Consumer{
		client:   client,
		durable:  durable,
		ingester: ingester,
		metrics:  metrics,
	}
}

// Run consumes messages until the context is canceled. Each message is fully
// processed (transaction plus publish attempt) before the next is fetched.
func (c *Consumer) Run(ctx context.Context) error {
	if c.client == nil || c.client.js == nil {
		return fmt.Errorf("JetStream not connected, cannot consume")
	}

	cons, err := c.client.js.CreateOrUpdateConsumer(ctx, c.client.stream, jetstream.ConsumerConfig{
		Durable:       c.durable,
		FilterSubject: SubjectCapacityReported,
		AckPolicy:     jetstream.AckExplicitPolicy,
	})
	if err != nil {
		return fmt.Errorf("failed to create durable consumer %s: %w", c.durable, err)
	}

	iter, err := cons.Messages(jetstream.PullMaxMessages(1))
	if err != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", SubjectCapacityReported, err)
	}

	go func() {
		<-ctx.Done()
		iter.Stop()
	}()

	log.Printf("Consuming %s as durable %s", SubjectCapacityReported, c.durable)

	for {
		msg, err := iter.Next()
		if err != nil {
			if errors.Is(err, jetstream.ErrMsgIteratorClosed) || ctx.Err() != nil {
				log.Println("Consumer stopped")
				return nil
			}
			return fmt.Errorf("failed to fetch next message: %w", err)
		}
		c.handleMessage(ctx, msg)
	}
}

func (c *Consumer) handleMessage(ctx context.Context, msg jetstream.Msg) {
	report, err := decodeCapacityReport(msg.Data())
	if err != nil {
		log.Printf("Dropping malformed capacity report: %v", err)
		c.metrics.DroppedInvalid.Inc()
		c.terminate(msg)
		return
	}

	hospital, capacity, meta := report.toIngestionInput()

	err = c.ingester.ProcessCapacityUpdate(ctx, hospital, capacity, meta)
	switch {
	case err == nil:
		if ackErr := msg.Ack(); ackErr != nil {
			log.Printf("Failed to ack message: %v", ackErr)
		}
		c.metrics.ConsumerMessages.WithLabelValues("ack").Inc()
	case errors.Is(err, service.ErrValidation):
		// Poison message, a retry can never succeed.
		log.Printf("Dropping invalid capacity report for %q: %v", report.HospitalID, err)
		c.terminate(msg)
	default:
		// Transient failure, let JetStream redeliver. Re-processing is
		// idempotent, so a publish failure after commit is retried the
		// same way.
		log.Printf("Failed to process capacity report for %q, requesting redelivery: %v", report.HospitalID, err)
		if nakErr := msg.Nak(); nakErr != nil {
			log.Printf("Failed to nak message: %v", nakErr)
		}
		c.metrics.ConsumerMessages.WithLabelValues("nak").Inc()
	}
}

func (c *Consumer) terminate(msg jetstream.Msg) {
	if err := msg.Term(); err != nil {
		log.Printf("Failed to terminate message: %v", err)
	}
	c.metrics.ConsumerMessages.WithLabelValues("term").Inc()
}

// capacityReport is the wire shape of a reported message payload
type capacityReport struct {
	HospitalID   string                `json:"hospital_id"`
	Name         string                `json:"name"`
	Location     *service.Location     `json:"location"`
	City         string                `json:"city"`
	District     *string               `json:"district"`
	Address      *string               `json:"address"`
	Capabilities models.JSONMap        `json:"capabilities"`
	Capacity     *service.CapacityData `json:"capacity"`
	UpdatedAt    string                `json:"updated_at"`
	Source       string                `json:"source"`
}

// decodeCapacityReport accepts either the standard envelope or a bare
// payload. A missing location is malformed: there is no way to place the
// hospital, so the message can never be ingested.
func decodeCapacityReport(data []byte) (*capacityReport, error) {
	body := data
	var envelope struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil && len(envelope.Payload) > 0 && string(envelope.Payload) != "null" {
		body = envelope.Payload
	}

	var report capacityReport
	if err := json.Unmarshal(body, &report); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if report.Location == nil {
		return nil, fmt.Errorf("location is required")
	}
	return &report, nil
}

func (r *capacityReport) toIngestionInput() (service.HospitalData, *service.CapacityData, service.ReportMeta) {
	hospital := service.HospitalData{
		ID:           r.HospitalID,
		Name:         r.Name,
		City:         r.City,
		District:     r.District,
		Address:      r.Address,
		Lat:          r.Location.Lat,
		Lon:          r.Location.Lon,
		Capabilities: r.Capabilities,
	}

	updatedAt := time.Now().UTC()
	if r.UpdatedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, r.UpdatedAt); err == nil {
			updatedAt = parsed
		}
	}

	source := r.Source
	if source == "" {
		source = "stream-consumer"
	}

	return hospital, r.Capacity, service.ReportMeta{UpdatedAt: updatedAt, Source: source}
}
