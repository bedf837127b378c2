package manager

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/conduithq/conduit/core/message"
	"github.com/conduithq/conduit/core/queue"
)

// retryCheckInterval matches the reference implementation's retry worker,
// which polls for ERROR messages once a minute.
const retryCheckInterval = 60 * time.Second

// dedupCleanupInterval matches the reference implementation's dedup-cache
// cleanup sweep, run once an hour.
const dedupCleanupInterval = time.Hour

const (
	retryWorkerTaskName  = "conduit_retry_worker"
	dedupCleanupTaskName = "conduit_dedup_cleanup"
)

// BackgroundJobs builds a queue.Service running the retry worker and the
// dedup-cache cleanup sweep as periodic jobs, grounded on the reference
// implementation's engine/retry_worker.rs polling loop. The returned
// service's own task queue (queue.MemoryStorage) is independent of
// MessageStore/DedupStore -- it only carries the two trigger tasks, never
// message payloads.
func (m *ChannelManager) BackgroundJobs() (*queue.Service, error) {
	storage := queue.NewMemoryStorage()

	cfg := queue.DefaultConfig()
	cfg.CheckInterval = retryCheckInterval
	cfg.PollInterval = time.Second
	cfg.Queues = []string{queue.DefaultQueueName}

	svc, err := queue.NewServiceFromConfig(cfg, storage, queue.WithServiceLogger(m.logger))
	if err != nil {
		return nil, fmt.Errorf("build background job service: %w", err)
	}

	retryHandler := queue.NewPeriodicTaskHandler(retryWorkerTaskName, func(ctx context.Context) error {
		return m.retryDueMessages(ctx)
	})
	dedupHandler := queue.NewPeriodicTaskHandler(dedupCleanupTaskName, func(ctx context.Context) error {
		return m.cleanupExpiredDedup(ctx)
	})

	if err := svc.RegisterHandlers(retryHandler, dedupHandler); err != nil {
		return nil, fmt.Errorf("register background job handlers: %w", err)
	}
	if err := svc.AddScheduledTask(retryWorkerTaskName, queue.EveryInterval(retryCheckInterval)); err != nil {
		return nil, fmt.Errorf("schedule retry worker: %w", err)
	}
	if err := svc.AddScheduledTask(dedupCleanupTaskName, queue.EveryInterval(dedupCleanupInterval)); err != nil {
		return nil, fmt.Errorf("schedule dedup cleanup: %w", err)
	}

	return svc, nil
}

// RecoverPendingMessages re-injects every message left in PENDING or
// PROCESSING status -- the set a prior process instance never finished
// -- into its channel's running pipeline with origin "RECOVERY". Channels
// that aren't currently running are left untouched; their messages stay
// recoverable on a later call (e.g. once an operator redeploys them).
// Called once at boot, after every configured channel has been started.
func (m *ChannelManager) RecoverPendingMessages(ctx context.Context) error {
	if m.MessageStore == nil {
		return nil
	}

	pending, err := m.MessageStore.GetPending(ctx)
	if err != nil {
		return fmt.Errorf("list pending messages: %w", err)
	}

	for _, pm := range pending {
		m.mu.Lock()
		entry, running := m.channels[pm.ChannelID]
		m.mu.Unlock()
		if !running {
			m.logger.WarnContext(ctx, "pending message found for a channel that isn't running, leaving for later recovery",
				slog.String("message_id", pm.ID.String()), slog.String("channel_id", pm.ChannelID.String()))
			continue
		}

		msg := message.Message{
			ID:        pm.ID,
			ChannelID: pm.ChannelID,
			Content:   pm.Content,
			Metadata:  make(map[string]string),
			Origin:    "RECOVERY",
			Timestamp: time.Now(),
		}
		entry.pipeline.Submit(ctx, msg)

		m.logger.InfoContext(ctx, "recovered in-flight message",
			slog.String("message_id", pm.ID.String()), slog.String("channel_id", pm.ChannelID.String()))
	}

	return nil
}

// retryDueMessages scans every message currently in ERROR status and
// resubmits the ones whose exponential backoff window has elapsed:
// next_retry = updated_at + 2^retry_count minutes, matching
// engine/retry_worker.rs exactly.
func (m *ChannelManager) retryDueMessages(ctx context.Context) error {
	if m.MessageStore == nil {
		return nil
	}

	errored, err := m.MessageStore.ListErrored(ctx)
	if err != nil {
		return fmt.Errorf("list errored messages: %w", err)
	}

	now := time.Now()
	for _, pm := range errored {
		backoff := time.Duration(math.Pow(2, float64(pm.RetryCount))) * time.Minute
		nextRetry := pm.UpdatedAt.Add(backoff)
		if now.Before(nextRetry) {
			continue
		}

		m.mu.Lock()
		_, running := m.channels[pm.ChannelID]
		m.mu.Unlock()
		if !running {
			continue
		}

		if err := m.resubmitForRetry(ctx, pm.ID, message.StatusProcessing, "retry_worker"); err != nil {
			m.logger.ErrorContext(ctx, "retry worker failed to resubmit message",
				slog.String("message_id", pm.ID.String()),
				slog.String("channel_id", pm.ChannelID.String()),
				slog.String("error", err.Error()))
			continue
		}

		m.logger.InfoContext(ctx, "retry worker resubmitted message",
			slog.String("message_id", pm.ID.String()),
			slog.Int("attempt", pm.RetryCount+1))
	}

	return nil
}

// cleanupExpiredDedup purges expired entries from the dedup cache so it
// doesn't grow unbounded, matching the reference implementation's periodic
// sweep over storage/deduplication.rs's processed_ids table.
func (m *ChannelManager) cleanupExpiredDedup(ctx context.Context) error {
	if m.DedupStore == nil {
		return nil
	}

	removed, err := m.DedupStore.CleanupExpired(ctx)
	if err != nil {
		return fmt.Errorf("cleanup expired dedup entries: %w", err)
	}

	if removed > 0 {
		m.logger.InfoContext(ctx, "dedup cleanup removed expired entries", slog.Int64("count", removed))
	}

	return nil
}
