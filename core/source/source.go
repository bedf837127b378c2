// Package source implements the channel pipeline's inbound listeners:
// HTTP, TCP/MLLP, file, database-poll, and test sources, each grounded on
// the corresponding listener in the reference implementation's
// engine/listeners package.
package source

import (
	"context"

	"github.com/conduithq/conduit/core/message"
)

// Reply is handed back to a Source on Submit so sources that need a
// synchronous result (HTTP) can wait for the message to finish its trip
// through the pipeline; sources that don't care (TCP, file, database
// poll) may discard it.
type Reply interface {
	Wait(ctx context.Context) (message.Status, error)
}

// Sink accepts one message for pipeline processing and returns a Reply
// that resolves once the message reaches a terminal status.
type Sink interface {
	Submit(ctx context.Context, msg message.Message) Reply
}

// Source runs until ctx is canceled, pushing messages it receives into
// sink.
type Source interface {
	Run(ctx context.Context, sink Sink) error
}
