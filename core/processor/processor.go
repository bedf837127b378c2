// Package processor implements the ordered pipeline stages a channel can
// run a message through before fan-out to its destinations: a Lua script
// transform, a JSON field mapper, a Lua boolean filter, and an HL7
// flattener.
package processor

import (
	"context"
	"fmt"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/sandbox"
)

// Processor runs one pipeline stage against a message, optionally
// rewriting its content in place. filtered=true short-circuits the
// remainder of the pipeline without being treated as an error.
type Processor interface {
	Process(ctx context.Context, msg *message.Message) (filtered bool, err error)
}

// New builds the concrete Processor for cfg, sharing engine across every
// script-backed stage in a channel's pipeline.
func New(cfg message.ProcessorConfig, engine *sandbox.Engine) (Processor, error) {
	switch cfg.Type {
	case message.ProcessorLua:
		return NewLua(cfg.Code, engine), nil
	case message.ProcessorMapper:
		return NewMapper(cfg.Mappings), nil
	case message.ProcessorFilter:
		return NewFilter(cfg.Condition, engine), nil
	case message.ProcessorHL7:
		return NewHL7Flattener(), nil
	case message.ProcessorRouter:
		return nil, fmt.Errorf("processor type %q is not implemented", cfg.Type)
	default:
		return nil, fmt.Errorf("unknown processor type %q", cfg.Type)
	}
}
