// Package channel couples one channel's source and pipeline into a single
// supervised unit. Grounded on the reference implementation's
// engine/channel/supervisor.rs composition rule: if any of {listener
// exits, processor exits, shutdown signal received} fires, the supervisor
// initiates teardown, but the three triggers unwind differently.
package channel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/conduithq/conduit/core/pipeline"
	"github.com/conduithq/conduit/core/source"
	"github.com/conduithq/conduit/pkg/async"
	"github.com/google/uuid"
)

// defaultDrainTimeout is how long the processor is given to finish
// in-flight work after a shutdown signal before it is aborted outright.
const defaultDrainTimeout = 5 * time.Second

// State is the lifecycle state of a Supervisor.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Stats reports a Supervisor's observable state for admin/healthcheck use.
type Stats struct {
	State        State
	StartedAt    time.Time
	ListenerErr  error
	ProcessorErr error
}

// Supervisor owns a channel's listener (Source) and processor (Pipeline)
// subtasks and enforces the teardown composition rule between them.
type Supervisor struct {
	ChannelID    uuid.UUID
	ChannelName  string
	Source       source.Source
	Pipeline     *pipeline.Pipeline
	DrainTimeout time.Duration

	logger *slog.Logger

	state     atomic.Int32
	startedAt atomic.Int64

	mu      sync.Mutex
	cancel  context.CancelFunc
	stopped chan struct{}

	errMu        sync.Mutex
	listenerErr  error
	processorErr error
}

// Option configures a Supervisor at construction time.
type Option func(*Supervisor)

// WithLogger overrides the supervisor's logger (default: discard).
func WithLogger(logger *slog.Logger) Option {
	return func(s *Supervisor) { s.logger = logger }
}

// WithDrainTimeout overrides the shutdown drain window (default 5s,
// matching the reference implementation and spec's timeout table).
func WithDrainTimeout(d time.Duration) Option {
	return func(s *Supervisor) { s.DrainTimeout = d }
}

// New builds a Supervisor coupling src and pl for one channel.
func New(channelID uuid.UUID, channelName string, src source.Source, pl *pipeline.Pipeline, opts ...Option) *Supervisor {
	s := &Supervisor{
		ChannelID:    channelID,
		ChannelName:  channelName,
		Source:       src,
		Pipeline:     pl,
		DrainTimeout: defaultDrainTimeout,
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var (
	// ErrAlreadyRunning is returned by Start when the supervisor is already active.
	ErrAlreadyRunning = errors.New("channel supervisor already running")

	// ErrNotRunning is returned by Stop when the supervisor has not been started.
	ErrNotRunning = errors.New("channel supervisor not running")
)

// Start runs the supervisor until ctx is canceled or one of the two
// subtasks exits. It blocks; callers typically invoke it in its own
// goroutine and use Stop to request shutdown.
func (s *Supervisor) Start(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyRunning
	}
	defer s.state.Store(int32(StateStopped))

	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.stopped = make(chan struct{})
	s.mu.Unlock()
	defer close(s.stopped)
	defer cancel()

	listenerCtx, cancelListener := context.WithCancel(ctx)
	processorCtx, cancelProcessor := context.WithCancel(context.Background())
	defer cancelListener()
	defer cancelProcessor()

	listenerFuture := async.Exec[source.Sink](listenerCtx, s.Pipeline, s.Source.Run)
	processorFuture := async.Exec(processorCtx, struct{}{}, func(ctx context.Context, _ struct{}) error {
		return s.Pipeline.Run(ctx)
	})

	listenerDone := make(chan error, 1)
	processorDone := make(chan error, 1)
	go func() { listenerDone <- listenerFuture.Await() }()
	go func() { processorDone <- processorFuture.Await() }()

	s.startedAt.Store(time.Now().Unix())
	s.logger.InfoContext(ctx, "channel supervisor started",
		slog.String("channel_id", s.ChannelID.String()),
		slog.String("channel", s.ChannelName))

	var listenerErr, processorErr error

	select {
	case <-ctx.Done():
		s.logger.InfoContext(ctx, "shutdown signal received, aborting listener",
			slog.String("channel", s.ChannelName))
		cancelListener()
		listenerErr = listenerFuture.Await()

		if err := processorFuture.AwaitWithTimeout(s.drainTimeout()); errors.Is(err, async.ErrTimeout) {
			s.logger.WarnContext(ctx, "drain timeout exceeded, aborting processor",
				slog.String("channel", s.ChannelName), slog.Duration("timeout", s.drainTimeout()))
			cancelProcessor()
			processorErr = processorFuture.Await()
		} else {
			processorErr = err
		}

	case listenerErr = <-listenerDone:
		s.logger.WarnContext(ctx, "listener exited, aborting processor",
			slog.String("channel", s.ChannelName), slog.Any("error", listenerErr))
		cancelProcessor()
		processorErr = processorFuture.Await()

	case processorErr = <-processorDone:
		s.logger.ErrorContext(ctx, "processor exited unexpectedly, aborting listener",
			slog.String("channel", s.ChannelName), slog.Any("error", processorErr))
		cancelListener()
		listenerErr = listenerFuture.Await()
	}

	s.errMu.Lock()
	s.listenerErr, s.processorErr = listenerErr, processorErr
	s.errMu.Unlock()

	if listenerErr != nil && !errors.Is(listenerErr, context.Canceled) {
		return fmt.Errorf("channel %s: listener: %w", s.ChannelName, listenerErr)
	}
	if processorErr != nil && !errors.Is(processorErr, context.Canceled) {
		return fmt.Errorf("channel %s: processor: %w", s.ChannelName, processorErr)
	}
	return nil
}

// Stop requests shutdown and waits for Start to return, up to the
// supervisor's drain timeout plus a small grace margin.
func (s *Supervisor) Stop() error {
	s.mu.Lock()
	cancel, stopped := s.cancel, s.stopped
	s.mu.Unlock()

	if cancel == nil || stopped == nil {
		return ErrNotRunning
	}

	cancel()

	select {
	case <-stopped:
		return nil
	case <-time.After(s.drainTimeout() + time.Second):
		return fmt.Errorf("channel %s: shutdown timeout exceeded", s.ChannelName)
	}
}

// Run adapts Start to the errgroup.Go signature.
func (s *Supervisor) Run(ctx context.Context) func() error {
	return func() error { return s.Start(ctx) }
}

// Stats reports the supervisor's current lifecycle state.
func (s *Supervisor) Stats() Stats {
	started := s.startedAt.Load()
	var startedAt time.Time
	if started > 0 {
		startedAt = time.Unix(started, 0)
	}

	s.errMu.Lock()
	listenerErr, processorErr := s.listenerErr, s.processorErr
	s.errMu.Unlock()

	return Stats{
		State:        State(s.state.Load()),
		StartedAt:    startedAt,
		ListenerErr:  listenerErr,
		ProcessorErr: processorErr,
	}
}

// Healthcheck reports an error if the supervisor is not in the running state.
func (s *Supervisor) Healthcheck(ctx context.Context) error {
	if State(s.state.Load()) != StateRunning {
		return fmt.Errorf("channel %s: supervisor not running", s.ChannelName)
	}
	return nil
}

func (s *Supervisor) drainTimeout() time.Duration {
	if s.DrainTimeout <= 0 {
		return defaultDrainTimeout
	}
	return s.DrainTimeout
}
