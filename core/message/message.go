// Package message defines the wire-level Message type and the Channel
// configuration it flows through.
package message

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a persisted message.
type Status string

const (
	StatusPending    Status = "PENDING"
	StatusProcessing Status = "PROCESSING"
	StatusSent       Status = "SENT"
	StatusFiltered   Status = "FILTERED"
	StatusError      Status = "ERROR"
)

// Message is one unit of work flowing through a channel.
type Message struct {
	ID        uuid.UUID
	ChannelID uuid.UUID
	Content   string
	Metadata  map[string]string
	Origin    string
	Timestamp time.Time
}

// New builds a Message with a fresh ID and the current timestamp.
func New(channelID uuid.UUID, content, origin string) Message {
	return Message{
		ID:        uuid.New(),
		ChannelID: channelID,
		Content:   content,
		Metadata:  make(map[string]string),
		Origin:    origin,
		Timestamp: time.Now(),
	}
}

// MetricUpdate is a point-in-time status event broadcast to admin
// subscribers as a message moves through the pipeline.
type MetricUpdate struct {
	ChannelID string
	MessageID string
	Status    Status
	Timestamp time.Time
}
