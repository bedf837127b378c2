package processor

import (
	"context"
	"encoding/json"

	"github.com/conduithq/conduit/core/hl7"
	"github.com/conduithq/conduit/core/message"
)

// HL7Flattener rewrites the message content from raw HL7 to its
// segment-name -> fields JSON flattening.
type HL7Flattener struct{}

func NewHL7Flattener() *HL7Flattener {
	return &HL7Flattener{}
}

func (p *HL7Flattener) Process(ctx context.Context, msg *message.Message) (bool, error) {
	parsed := hl7.Parse(msg.Content)
	b, err := json.Marshal(parsed)
	if err != nil {
		return false, err
	}
	msg.Content = string(b)
	return false, nil
}
