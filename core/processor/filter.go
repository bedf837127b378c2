package processor

import (
	"context"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/sandbox"
)

// Filter evaluates a Lua boolean condition against the message; a false
// result marks the message Filtered and stops the pipeline.
type Filter struct {
	condition string
	engine    *sandbox.Engine
}

func NewFilter(condition string, engine *sandbox.Engine) *Filter {
	return &Filter{condition: condition, engine: engine}
}

func (p *Filter) Process(ctx context.Context, msg *message.Message) (bool, error) {
	pass, err := p.engine.RunFilter(ctx, p.condition, sandbox.ScriptMessage{
		ID:      msg.ID.String(),
		Content: msg.Content,
		Origin:  msg.Origin,
	})
	if err != nil {
		return false, err
	}
	return !pass, nil
}
