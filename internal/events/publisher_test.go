package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishWithoutConnectionDropsSilently(t *testing.T) {
	pub := NewPublisher(nil)
	assert.NoError(t, pub.Publish(context.Background(), "hospital.capacity.updated", map[string]string{"k": "v"}))
}

func TestEnvelopeWireFormat(t *testing.T) {
	envelope := Envelope{
		EventName: "hospital.capacity.updated",
		EventID:   uuid.NewString(),
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Payload:   map[string]string{"hospital_id": "hosp-1"},
	}

	data, err := json.Marshal(envelope)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "event_name")
	assert.Contains(t, decoded, "event_id")
	assert.Contains(t, decoded, "timestamp")
	assert.Contains(t, decoded, "payload")

	_, err = uuid.Parse(envelope.EventID)
	assert.NoError(t, err)
}
