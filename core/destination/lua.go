package destination

import (
	"context"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/sandbox"
)

// Lua runs a channel-defined script for side effects only (the reference
// LuaDestination discards the script's return value, unlike the Lua
// processor which rewrites message content with it).
type Lua struct {
	code   string
	engine *sandbox.Engine
}

func NewLua(code string, engine *sandbox.Engine) *Lua {
	return &Lua{code: code, engine: engine}
}

func (l *Lua) Send(ctx context.Context, msg *message.Message) error {
	_, err := l.engine.RunTransform(ctx, l.code, sandbox.ScriptMessage{
		ID:      msg.ID.String(),
		Content: msg.Content,
		Origin:  msg.Origin,
	})
	return err
}
