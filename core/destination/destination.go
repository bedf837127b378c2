// Package destination implements the channel pipeline's outbound senders:
// HTTP, file, database, TCP/MLLP, and script destinations, each grounded
// on the corresponding sender in the reference implementation's
// engine/destinations package.
package destination

import (
	"context"
	"fmt"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/sandbox"
	"github.com/conduithq/conduit/core/storage"
)

// Destination delivers a message to one configured outbound target.
type Destination interface {
	Send(ctx context.Context, msg *message.Message) error
}

// Deps carries the shared collaborators a destination factory may need.
// Only the fields relevant to a given DestinationType are read.
type Deps struct {
	StorageBackend storage.Backend // file_writer
	Sandbox        *sandbox.Engine // lua_script
	ChannelName    string
}

// New builds the Destination described by cfg.
func New(cfg message.DestinationConfig, deps Deps) (Destination, error) {
	switch cfg.Type {
	case message.DestinationHTTP:
		return NewHTTP(cfg.URL, cfg.Method), nil
	case message.DestinationFile:
		backend := deps.StorageBackend
		if backend == nil {
			backend = storage.NewLocalBackend(cfg.FilePath)
		}
		return NewFile(cfg, deps.ChannelName, backend), nil
	case message.DestinationDatabase:
		return NewDatabase(cfg)
	case message.DestinationTCP:
		return NewTCP(cfg.Host, cfg.Port, deps.ChannelName), nil
	case message.DestinationLua:
		if deps.Sandbox == nil {
			return nil, fmt.Errorf("lua destination %q requires a sandbox engine", cfg.ID)
		}
		return NewLua(cfg.Code, deps.Sandbox), nil
	default:
		return nil, fmt.Errorf("unknown destination type %q", cfg.Type)
	}
}
