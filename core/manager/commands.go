package manager

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/conduithq/conduit/core/channel"
	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/source"
	"github.com/google/uuid"
)

// startChannelCommand persists cfg and (re)starts a supervised instance.
type startChannelCommand struct {
	Config message.Channel
}

// stopChannelCommand tears down a running channel without touching its
// persisted configuration.
type stopChannelCommand struct {
	ChannelID uuid.UUID
}

// deleteChannelCommand stops a running channel and removes its
// persisted configuration.
type deleteChannelCommand struct {
	ChannelID uuid.UUID
}

// injectMessageCommand submits a manual test payload to a running
// channel's pipeline. status/err are filled in by the handler -- command
// dispatch in this package is purely synchronous (no transport hop), so
// writing the outcome back onto the command the caller already holds a
// pointer to is safe and avoids a throwaway result channel.
type injectMessageCommand struct {
	ChannelID uuid.UUID
	Payload   string

	status message.Status
	err    error
}

// retryMessageCommand reloads and resubmits a previously persisted
// message, preserving its original id.
type retryMessageCommand struct {
	MessageID uuid.UUID
}

func (m *ChannelManager) handleStart(ctx context.Context, cmd *startChannelCommand) error {
	cfg := cmd.Config

	if m.ChannelStore != nil {
		if err := m.ChannelStore.Save(ctx, &cfg); err != nil {
			return fmt.Errorf("persist channel %q: %w", cfg.Name, err)
		}
	}

	if m.DedupStore != nil {
		if err := m.DedupStore.ClearChannel(ctx, cfg.ID); err != nil {
			m.logger.Warn("failed to clear dedup cache on redeploy",
				slog.String("channel", cfg.Name), slog.String("error", err.Error()))
		}
	}

	src, err := source.New(cfg.ID.String(), cfg.Source, m.MessageStore)
	if err != nil {
		return fmt.Errorf("build source for %q: %w", cfg.Name, err)
	}

	pl, err := m.buildPipeline(cfg)
	if err != nil {
		return fmt.Errorf("build pipeline for %q: %w", cfg.Name, err)
	}

	sup := channel.New(cfg.ID, cfg.Name, src, pl, channel.WithLogger(m.logger))

	m.mu.Lock()
	prev, hadPrev := m.channels[cfg.ID]
	m.channels[cfg.ID] = &runningChannel{supervisor: sup, pipeline: pl, config: cfg}
	m.mu.Unlock()

	if hadPrev {
		if err := prev.supervisor.Stop(); err != nil {
			m.logger.Warn("previous channel instance did not shut down cleanly",
				slog.String("channel", cfg.Name), slog.String("error", err.Error()))
		}
	}

	go func() {
		if err := sup.Start(context.Background()); err != nil {
			m.logger.Error("channel supervisor exited", slog.String("channel", cfg.Name), slog.String("error", err.Error()))
		}
	}()

	m.logger.Info("channel started", slog.String("channel", cfg.Name), slog.String("channel_id", cfg.ID.String()))
	return nil
}

func (m *ChannelManager) handleStop(ctx context.Context, cmd *stopChannelCommand) error {
	m.mu.Lock()
	entry, ok := m.channels[cmd.ChannelID]
	if ok {
		delete(m.channels, cmd.ChannelID)
	}
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("channel %s: %w", cmd.ChannelID, ErrChannelNotFound)
	}

	if err := entry.supervisor.Stop(); err != nil {
		return fmt.Errorf("stop channel %q: %w", entry.config.Name, err)
	}

	m.logger.Info("channel stopped", slog.String("channel", entry.config.Name))
	return nil
}

func (m *ChannelManager) handleDelete(ctx context.Context, cmd *deleteChannelCommand) error {
	m.mu.Lock()
	entry, ok := m.channels[cmd.ChannelID]
	if ok {
		delete(m.channels, cmd.ChannelID)
	}
	m.mu.Unlock()

	if ok {
		if err := entry.supervisor.Stop(); err != nil {
			m.logger.Warn("channel did not shut down cleanly before delete",
				slog.String("channel", entry.config.Name), slog.String("error", err.Error()))
		}
	}

	if m.ChannelStore != nil {
		if err := m.ChannelStore.Delete(ctx, cmd.ChannelID); err != nil {
			return fmt.Errorf("delete channel %s: %w", cmd.ChannelID, err)
		}
	} else if !ok {
		return fmt.Errorf("channel %s: %w", cmd.ChannelID, ErrChannelNotFound)
	}

	m.logger.Info("channel deleted", slog.String("channel_id", cmd.ChannelID.String()))
	return nil
}

func (m *ChannelManager) handleInject(ctx context.Context, cmd *injectMessageCommand) error {
	m.mu.Lock()
	entry, ok := m.channels[cmd.ChannelID]
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("channel %s: %w", cmd.ChannelID, ErrChannelNotFound)
	}

	msg := message.New(cmd.ChannelID, cmd.Payload, "Manual Injection")

	waitCtx, cancel := context.WithTimeout(ctx, injectTimeout)
	defer cancel()

	reply := entry.pipeline.Submit(waitCtx, msg)
	cmd.status, cmd.err = reply.Wait(waitCtx)
	return nil
}

func (m *ChannelManager) handleRetry(ctx context.Context, cmd *retryMessageCommand) error {
	return m.resubmitForRetry(ctx, cmd.MessageID, message.StatusPending, "RETRY_API")
}

// resubmitForRetry loads a persisted message, increments its retry count,
// resets it to status, and resubmits it to its channel's running
// pipeline with origin, preserving the original message id. Shared by
// the admin API's manual retry (status PENDING, origin "RETRY_API") and
// the scheduled retry worker (status PROCESSING, origin "retry_worker"),
// which the reference implementation's retry_message and retry_worker
// paths treat distinctly.
func (m *ChannelManager) resubmitForRetry(ctx context.Context, messageID uuid.UUID, status message.Status, origin string) error {
	if m.MessageStore == nil {
		return ErrMessageStoreUnavailable
	}

	pm, err := m.MessageStore.Get(ctx, messageID)
	if err != nil {
		return fmt.Errorf("load message %s: %w", messageID, err)
	}

	if err := m.MessageStore.IncrementRetry(ctx, messageID); err != nil {
		return fmt.Errorf("increment retry for message %s: %w", messageID, err)
	}
	if err := m.MessageStore.UpdateStatus(ctx, messageID, status, "", 0); err != nil {
		return fmt.Errorf("reset status for message %s: %w", messageID, err)
	}

	m.mu.Lock()
	entry, ok := m.channels[pm.ChannelID]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("channel %s: %w", pm.ChannelID, ErrChannelNotFound)
	}

	msg := message.Message{
		ID:        pm.ID,
		ChannelID: pm.ChannelID,
		Content:   pm.Content,
		Metadata:  make(map[string]string),
		Origin:    origin,
		Timestamp: time.Now(),
	}
	entry.pipeline.Submit(ctx, msg)
	return nil
}
