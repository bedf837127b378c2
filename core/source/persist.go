package source

import (
	"context"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/store"
)

// persistIngest saves msg as a fresh PENDING record before it is handed to
// the sink, so that a crash between ingest and pipeline dequeue leaves a
// row recover_pending_messages can re-inject at the next boot (spec.md
// §4.5). A nil store is a valid "persistence disabled" configuration and
// is a no-op.
func persistIngest(ctx context.Context, ms store.MessageStore, msg message.Message) error {
	if ms == nil {
		return nil
	}
	return ms.Save(ctx, &store.PersistedMessage{
		ID:        msg.ID,
		ChannelID: msg.ChannelID,
		Content:   msg.Content,
		Origin:    msg.Origin,
		Status:    message.StatusPending,
	})
}
