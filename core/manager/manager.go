// Package manager implements ChannelManager: the registry that starts,
// stops, redeploys, and routes admin operations to running channels.
// Grounded on the reference implementation's engine/manager.rs and on the
// corpus's core/command package -- each public operation is modeled as a
// typed command dispatched through a small synchronous bus, centralizing
// the registry's "insertion under a short-held lock" rule in one place
// instead of repeating ad-hoc locking at every method.
package manager

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/conduithq/conduit/core/channel"
	"github.com/conduithq/conduit/core/command"
	"github.com/conduithq/conduit/core/destination"
	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/pipeline"
	"github.com/conduithq/conduit/core/processor"
	"github.com/conduithq/conduit/core/sandbox"
	"github.com/conduithq/conduit/core/storage"
	"github.com/conduithq/conduit/core/store"
	"github.com/conduithq/conduit/pkg/broadcast"
	"github.com/google/uuid"
)

// injectTimeout bounds how long InjectMessage waits for a synchronous
// outcome before reporting a timeout, matching the reference
// implementation's inject_message contract.
const injectTimeout = 30 * time.Second

var (
	// ErrChannelNotFound is returned for operations against an id with no
	// running (or, for Delete, no persisted) channel.
	ErrChannelNotFound = errors.New("channel not found")

	// ErrMessageStoreUnavailable is returned by RetryMessage when the
	// manager has no MessageStore configured to load the original record.
	ErrMessageStoreUnavailable = errors.New("message store unavailable")
)

// runningChannel is one entry in the manager's registry.
type runningChannel struct {
	supervisor *channel.Supervisor
	pipeline   *pipeline.Pipeline
	config     message.Channel
}

// ChannelManager owns the registry of running channels and the shared
// collaborators every channel's pipeline is wired against.
type ChannelManager struct {
	ChannelStore   store.ChannelStore
	MessageStore   store.MessageStore
	DedupStore     store.DedupStore
	Logs           store.LogBuffer
	Metrics        broadcast.Broadcaster[message.MetricUpdate]
	Sandbox        *sandbox.Engine
	StorageBackend storage.Backend

	logger *slog.Logger

	mu       sync.Mutex
	channels map[uuid.UUID]*runningChannel

	handlers map[string]command.Handler
}

// Option configures a ChannelManager at construction time.
type Option func(*ChannelManager)

// WithLogger overrides the manager's logger (default: discard).
func WithLogger(logger *slog.Logger) Option {
	return func(m *ChannelManager) { m.logger = logger }
}

// New builds an empty ChannelManager with no channels running.
func New(opts ...Option) *ChannelManager {
	m := &ChannelManager{
		channels: make(map[uuid.UUID]*runningChannel),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.handlers = map[string]command.Handler{
		command.GetCommandName(&startChannelCommand{}): command.NewHandlerFunc(m.handleStart),
		command.GetCommandName(&stopChannelCommand{}):   command.NewHandlerFunc(m.handleStop),
		command.GetCommandName(&deleteChannelCommand{}): command.NewHandlerFunc(m.handleDelete),
		command.GetCommandName(&injectMessageCommand{}): command.NewHandlerFunc(m.handleInject),
		command.GetCommandName(&retryMessageCommand{}):  command.NewHandlerFunc(m.handleRetry),
	}
	return m
}

func (m *ChannelManager) dispatch(ctx context.Context, cmd any) error {
	name := command.GetCommandName(cmd)
	h, ok := m.handlers[name]
	if !ok {
		return fmt.Errorf("no handler registered for command %s", name)
	}
	return h.Handle(ctx, cmd)
}

// StartChannel persists cfg, tears down any previous instance running
// under the same id, and starts a fresh supervised instance.
func (m *ChannelManager) StartChannel(ctx context.Context, cfg message.Channel) error {
	return m.dispatch(ctx, &startChannelCommand{Config: cfg})
}

// StopChannel tears down the running channel identified by id.
func (m *ChannelManager) StopChannel(ctx context.Context, id uuid.UUID) error {
	return m.dispatch(ctx, &stopChannelCommand{ChannelID: id})
}

// DeleteChannel stops the channel (if running) and removes its persisted
// configuration.
func (m *ChannelManager) DeleteChannel(ctx context.Context, id uuid.UUID) error {
	return m.dispatch(ctx, &deleteChannelCommand{ChannelID: id})
}

// InjectMessage submits payload to the running channel identified by id
// as a synchronous test injection, waiting up to injectTimeout for the
// message to reach a terminal status.
func (m *ChannelManager) InjectMessage(ctx context.Context, id uuid.UUID, payload string) (message.Status, error) {
	cmd := &injectMessageCommand{ChannelID: id, Payload: payload}
	if err := m.dispatch(ctx, cmd); err != nil {
		return "", err
	}
	return cmd.status, cmd.err
}

// RetryMessage reloads a previously persisted message, increments its
// retry count, resets its status to PENDING, and resubmits it to its
// channel's running pipeline, preserving the original message id.
func (m *ChannelManager) RetryMessage(ctx context.Context, messageID uuid.UUID) error {
	return m.dispatch(ctx, &retryMessageCommand{MessageID: messageID})
}

// Channels returns the ids of every currently running channel.
func (m *ChannelManager) Channels() []uuid.UUID {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make([]uuid.UUID, 0, len(m.channels))
	for id := range m.channels {
		ids = append(ids, id)
	}
	return ids
}

// Stats reports the supervisor stats for a running channel.
func (m *ChannelManager) Stats(id uuid.UUID) (channel.Stats, error) {
	m.mu.Lock()
	entry, ok := m.channels[id]
	m.mu.Unlock()
	if !ok {
		return channel.Stats{}, fmt.Errorf("channel %s: %w", id, ErrChannelNotFound)
	}
	return entry.supervisor.Stats(), nil
}

// ShutdownAll stops every running channel, each bounded by its own
// supervisor drain timeout.
func (m *ChannelManager) ShutdownAll() {
	m.mu.Lock()
	entries := make([]*runningChannel, 0, len(m.channels))
	for id, entry := range m.channels {
		entries = append(entries, entry)
		delete(m.channels, id)
	}
	m.mu.Unlock()

	var wg sync.WaitGroup
	for _, entry := range entries {
		wg.Add(1)
		go func(e *runningChannel) {
			defer wg.Done()
			if err := e.supervisor.Stop(); err != nil {
				m.logger.Error("channel shutdown failed", slog.String("channel", e.config.Name), slog.String("error", err.Error()))
			}
		}(entry)
	}
	wg.Wait()
}

func (m *ChannelManager) buildPipeline(cfg message.Channel) (*pipeline.Pipeline, error) {
	procs := make([]processor.Processor, 0, len(cfg.Processors))
	for _, pc := range cfg.Processors {
		p, err := processor.New(pc, m.Sandbox)
		if err != nil {
			return nil, fmt.Errorf("build processor %q: %w", pc.Name, err)
		}
		procs = append(procs, p)
	}

	deps := destination.Deps{StorageBackend: m.StorageBackend, Sandbox: m.Sandbox, ChannelName: cfg.Name}

	dests := make([]destination.Destination, 0, len(cfg.Destinations))
	for _, dc := range cfg.Destinations {
		d, err := destination.New(dc, deps)
		if err != nil {
			return nil, fmt.Errorf("build destination %q: %w", dc.Name, err)
		}
		dests = append(dests, d)
	}

	var errDest destination.Destination
	if cfg.ErrorDestination != nil {
		d, err := destination.New(*cfg.ErrorDestination, deps)
		if err != nil {
			return nil, fmt.Errorf("build error destination: %w", err)
		}
		errDest = d
	}

	pl := pipeline.New(cfg.ID, cfg.Name)
	pl.Processors = procs
	pl.Destinations = dests
	pl.ErrorDestination = errDest
	pl.MessageStore = m.MessageStore
	pl.DedupStore = m.DedupStore
	pl.Logs = m.Logs
	pl.Metrics = m.Metrics

	return pl, nil
}
