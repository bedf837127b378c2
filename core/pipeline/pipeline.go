// Package pipeline runs one channel's message lifecycle: dedup check,
// the channel's ordered processor chain, fan-out to every destination,
// and error-destination routing on a terminal failure. Grounded on the
// reference implementation's engine/pipeline/processor.rs.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/conduithq/conduit/core/destination"
	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/processor"
	"github.com/conduithq/conduit/core/source"
	"github.com/conduithq/conduit/core/store"
	"github.com/conduithq/conduit/pkg/broadcast"
	"github.com/google/uuid"
)

// queueCapacity bounds the number of messages a channel may have
// buffered between its source and its pipeline worker before Submit
// blocks the caller.
const queueCapacity = 100

// Pipeline is a channel's Sink: it queues submitted messages and
// processes them one at a time in Run.
type Pipeline struct {
	ChannelID        uuid.UUID
	ChannelName      string
	Processors       []processor.Processor
	Destinations     []destination.Destination
	ErrorDestination destination.Destination

	MessageStore store.MessageStore
	DedupStore   store.DedupStore
	Logs         store.LogBuffer
	Metrics      broadcast.Broadcaster[message.MetricUpdate]

	queue chan job
}

type job struct {
	msg   message.Message
	reply *reply
}

// reply resolves once a message reaches a terminal status.
type reply struct {
	done   chan struct{}
	status message.Status
	err    error
}

func newReply() *reply { return &reply{done: make(chan struct{})} }

func (r *reply) resolve(status message.Status, err error) {
	r.status = status
	r.err = err
	close(r.done)
}

func (r *reply) Wait(ctx context.Context) (message.Status, error) {
	select {
	case <-r.done:
		return r.status, r.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

var _ source.Sink = (*Pipeline)(nil)
var _ source.Reply = (*reply)(nil)

func New(channelID uuid.UUID, channelName string) *Pipeline {
	return &Pipeline{
		ChannelID:   channelID,
		ChannelName: channelName,
		queue:       make(chan job, queueCapacity),
	}
}

// Submit enqueues msg for processing, blocking the caller if the queue is
// at capacity, and returns a Reply that resolves once the message
// finishes its trip through the pipeline.
func (p *Pipeline) Submit(ctx context.Context, msg message.Message) source.Reply {
	r := newReply()

	select {
	case p.queue <- job{msg: msg, reply: r}:
	case <-ctx.Done():
		r.resolve("", ctx.Err())
	}

	return r
}

// Run drains the queue until ctx is canceled.
func (p *Pipeline) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case j := <-p.queue:
			p.processOne(ctx, j)
		}
	}
}

func (p *Pipeline) processOne(ctx context.Context, j job) {
	start := time.Now()
	msg := j.msg

	if p.DedupStore != nil {
		dup, err := p.DedupStore.IsDuplicate(ctx, p.ChannelID, msg.Content)
		if err != nil {
			p.log("WARN", fmt.Sprintf("deduplication check failed: %v, proceeding", err))
		} else if dup {
			p.log("INFO", fmt.Sprintf("[Channel: %s] message %s is a duplicate, skipping", p.ChannelName, msg.ID))
			p.updateStatus(ctx, msg.ID, message.StatusFiltered, "duplicate message", time.Since(start))
			p.emitMetric(ctx, msg.ID, message.StatusFiltered)
			j.reply.resolve(message.StatusFiltered, nil)
			return
		} else {
			_ = p.DedupStore.MarkProcessed(ctx, p.ChannelID, msg.Content)
		}
	}

	p.updateStatus(ctx, msg.ID, message.StatusProcessing, "", 0)
	p.emitMetric(ctx, msg.ID, message.StatusProcessing)
	p.log("INFO", fmt.Sprintf("[Channel: %s] processing message %s (origin: %s)", p.ChannelName, msg.ID, originOf(msg)))

	for _, proc := range p.Processors {
		filtered, err := proc.Process(ctx, &msg)
		if err != nil {
			errMsg := fmt.Sprintf("processor failed: %v", err)
			p.log("ERROR", errMsg)
			p.fail(ctx, &msg, j.reply, errMsg, time.Since(start))
			return
		}
		if filtered {
			p.log("INFO", fmt.Sprintf("[Channel: %s] message %s FILTERED", p.ChannelName, msg.ID))
			p.updateStatus(ctx, msg.ID, message.StatusFiltered, "", time.Since(start))
			p.emitMetric(ctx, msg.ID, message.StatusFiltered)
			j.reply.resolve(message.StatusFiltered, nil)
			return
		}
	}

	for _, dest := range p.Destinations {
		if err := dest.Send(ctx, &msg); err != nil {
			p.log("ERROR", fmt.Sprintf("[Channel: %s] destination failed: %v", p.ChannelName, err))
		}
	}

	p.updateStatus(ctx, msg.ID, message.StatusSent, "", time.Since(start))
	p.emitMetric(ctx, msg.ID, message.StatusSent)
	j.reply.resolve(message.StatusSent, nil)

	p.log("INFO", fmt.Sprintf("[Channel: %s] message %s processed in %s", p.ChannelName, msg.ID, time.Since(start)))
}

// fail marks msg as terminally ERROR, resolves its reply, and makes a
// best-effort, non-blocking delivery to the channel's error destination
// if one is configured -- the DLQ path the reference implementation's
// own comments admit it never wired.
func (p *Pipeline) fail(ctx context.Context, msg *message.Message, r *reply, errMsg string, duration time.Duration) {
	p.updateStatus(ctx, msg.ID, message.StatusError, errMsg, duration)
	p.emitMetric(ctx, msg.ID, message.StatusError)
	r.resolve(message.StatusError, fmt.Errorf("%s", errMsg))

	if p.ErrorDestination == nil {
		return
	}
	if err := p.ErrorDestination.Send(ctx, msg); err != nil {
		p.log("ERROR", fmt.Sprintf("[Channel: %s] error-destination delivery failed: %v", p.ChannelName, err))
	}
}

func (p *Pipeline) updateStatus(ctx context.Context, id uuid.UUID, status message.Status, errMsg string, duration time.Duration) {
	if p.MessageStore == nil {
		return
	}
	_ = p.MessageStore.UpdateStatus(ctx, id, status, errMsg, duration)
}

func (p *Pipeline) emitMetric(ctx context.Context, msgID uuid.UUID, status message.Status) {
	if p.Metrics == nil {
		return
	}
	p.Metrics.Broadcast(ctx, broadcast.Message[message.MetricUpdate]{Data: message.MetricUpdate{
		ChannelID: p.ChannelID.String(),
		MessageID: msgID.String(),
		Status:    status,
		Timestamp: time.Now(),
	}})
}

func (p *Pipeline) log(level, msg string) {
	if p.Logs == nil {
		return
	}
	p.Logs.Push(store.LogEntry{
		Timestamp: time.Now(),
		ChannelID: p.ChannelID,
		Level:     level,
		Message:   msg,
	})
}

func originOf(msg message.Message) string {
	if msg.Origin == "" {
		return "unknown"
	}
	return msg.Origin
}
