package events

import "time"

// Envelope is the JSON wire format shared by consumed and published events
type Envelope struct {
	EventName string      `json:"event_name"`
	EventID   string      `json:"event_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}
