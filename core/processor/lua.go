package processor

import (
	"context"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/sandbox"
)

// Lua runs a channel-defined Lua script against the message, rewriting
// its content to the script's return value.
type Lua struct {
	code   string
	engine *sandbox.Engine
}

func NewLua(code string, engine *sandbox.Engine) *Lua {
	return &Lua{code: code, engine: engine}
}

func (p *Lua) Process(ctx context.Context, msg *message.Message) (bool, error) {
	out, err := p.engine.RunTransform(ctx, p.code, sandbox.ScriptMessage{
		ID:      msg.ID.String(),
		Content: msg.Content,
		Origin:  msg.Origin,
	})
	if err != nil {
		return false, err
	}
	msg.Content = out
	return false, nil
}
