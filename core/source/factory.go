package source

import (
	"fmt"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/store"
)

// New builds the Source described by cfg for the given channel. ms may be
// nil, meaning ingest persistence is disabled for this channel.
func New(channelID string, cfg message.SourceConfig, ms store.MessageStore) (Source, error) {
	id, err := parseChannelID(channelID)
	if err != nil {
		return nil, err
	}

	switch cfg.Type {
	case message.SourceHTTP:
		h := NewHTTP(cfg.Port, cfg.Path, id)
		h.MessageStore = ms
		return h, nil
	case message.SourceTCP:
		t := NewTCP(cfg.Port, id)
		t.MessageStore = ms
		return t, nil
	case message.SourceFile:
		f := NewFile(cfg.FilePath, cfg.Pattern, id)
		f.MessageStore = ms
		return f, nil
	case message.SourceDatabase:
		d := NewDatabase(cfg.URL, cfg.Query, cfg.IntervalMs, id)
		d.MessageStore = ms
		return d, nil
	case message.SourceTest:
		return NewTest(cfg.PayloadType, cfg.Payload, id), nil
	default:
		return nil, fmt.Errorf("unknown source type %q", cfg.Type)
	}
}
