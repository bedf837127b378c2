package source

import (
	"context"

	"github.com/conduithq/conduit/core/message"
	"github.com/google/uuid"
)

// Test submits a single fixed payload and returns, used for channel
// definitions created for manual injection/testing (the reference
// implementation's test_source).
type Test struct {
	PayloadType string
	Payload     string
	ChannelID   uuid.UUID
}

func NewTest(payloadType, payload string, channelID uuid.UUID) *Test {
	return &Test{PayloadType: payloadType, Payload: payload, ChannelID: channelID}
}

func (t *Test) Run(ctx context.Context, sink Sink) error {
	msg := message.New(t.ChannelID, t.Payload, "test_source:"+t.PayloadType)
	reply := sink.Submit(ctx, msg)
	_, err := reply.Wait(ctx)
	return err
}
