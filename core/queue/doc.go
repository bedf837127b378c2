// Package queue provides a comprehensive job queue system with workers, scheduling,
// and priority-based task processing. It supports both immediate task execution
// and scheduled task processing with configurable retry mechanisms and error handling.
//
// # Features
//
//   - Task enqueueing with priority support
//   - Background workers with concurrent processing
//   - Periodic task scheduling with interval, hourly, daily, weekly and monthly schedules
//   - Per-task retry budgets, with a dead letter queue for tasks that use them up
//   - In-memory storage for testing and development
//   - Extensible repository interface for custom storage backends
//   - Graceful shutdown with proper cleanup
//   - Comprehensive error handling and logging
//
// # Basic Usage
//
// Create a queue system with enqueuer, worker, and scheduler:
//
//	import "github.com/conduithq/conduit/core/queue"
//
//	// Create storage (in-memory for development)
//	storage := queue.NewMemoryStorage()
//
//	// Create enqueuer for adding tasks
//	enqueuer, err := queue.NewEnqueuer(storage,
//		queue.WithDefaultQueue("email_queue"),
//		queue.WithDefaultPriority(queue.PriorityHigh),
//	)
//
//	// Create worker for processing tasks
//	worker, err := queue.NewWorker(storage,
//		queue.WithQueues("email_queue"),
//		queue.WithMaxConcurrentTasks(5),
//	)
//
//	// Register task handler
//	worker.RegisterHandler(queue.NewTaskHandler(handleEmailTask))
//
//	// Start worker
//	ctx := context.Background()
//	go worker.Start(ctx)
//
//	// Enqueue tasks
//	err = enqueuer.Enqueue(ctx, EmailPayload{
//		To:      "user@example.com",
//		Subject: "Welcome!",
//		Body:    "Welcome to our service!",
//	})
//
// # Task Types and Handlers
//
// A handler built with NewTaskHandler is registered under the package-qualified
// name of its payload type (for example "main.EmailPayload"). Enqueue gives a
// task that same name unless WithTaskName overrides it, so the payload type
// routes the task to its handler:
//
//	type EmailPayload struct {
//		To      string `json:"to"`
//		Subject string `json:"subject"`
//		Body    string `json:"body"`
//	}
//
//	type ImageProcessPayload struct {
//		ImageURL string `json:"image_url"`
//		Width    int    `json:"width"`
//		Height   int    `json:"height"`
//	}
//
//	// Task handler functions receive the decoded payload
//	func handleEmailTask(ctx context.Context, payload EmailPayload) error {
//		return emailService.Send(payload.To, payload.Subject, payload.Body)
//	}
//
//	func handleImageProcess(ctx context.Context, payload ImageProcessPayload) error {
//		return imageProcessor.Resize(payload.ImageURL, payload.Width, payload.Height)
//	}
//
// # Priority-Based Processing
//
// Use different priority levels for task processing:
//
//	// High priority tasks (processed first)
//	enqueuer.Enqueue(ctx, CriticalPayload{...},
//		queue.WithPriority(queue.PriorityMax),
//	)
//
//	// Normal priority tasks
//	enqueuer.Enqueue(ctx, StandardPayload{...},
//		queue.WithPriority(queue.PriorityDefault),
//	)
//
//	// Low priority tasks (processed last)
//	enqueuer.Enqueue(ctx, CleanupPayload{...},
//		queue.WithPriority(queue.PriorityLow),
//	)
//
// # Scheduled Tasks
//
// Register periodic tasks with one of the built-in schedules. Periodic tasks
// carry no payload; a handler made with NewPeriodicTaskHandler under the same
// name runs them:
//
//	// Create scheduler
//	scheduler, err := queue.NewScheduler(storage,
//		queue.WithSchedulerLogger(logger),
//	)
//
//	// Schedule daily reports at 9 AM
//	scheduler.AddTask("daily_report", queue.DailyAt(9, 0),
//		queue.WithTaskQueue("reports"),
//		queue.WithTaskPriority(queue.PriorityHigh),
//	)
//
//	// Schedule weekly cleanup at 2 AM on Mondays
//	scheduler.AddTask("weekly_cleanup", queue.WeeklyOn(time.Monday, 2, 0))
//
//	worker.RegisterHandlers(
//		queue.NewPeriodicTaskHandler("daily_report", generateDailyReport),
//		queue.NewPeriodicTaskHandler("weekly_cleanup", runWeeklyCleanup),
//	)
//
//	// Start scheduler
//	go scheduler.Start(ctx)
//
// # Retry Mechanisms
//
// Each task has a retry budget (3 unless WithMaxRetries sets another). A task
// whose handler fails goes back to pending until the budget is used up, and is
// then moved to the dead letter queue. MemoryStorage delays each retry by
// 30 seconds times the retry count.
//
//	enqueuer.Enqueue(ctx, JobPayload{...}, queue.WithMaxRetries(5))
//
//	// Handle task with retry logic
//	func handleRetryableTask(ctx context.Context, payload JobPayload) error {
//		if err := performOperation(payload); err != nil {
//			log.Warn("Task failed, will retry", "error", err)
//			return err // Will be retried automatically
//		}
//		return nil
//	}
//
// # Multiple Queues
//
// Set up different queues for different task types:
//
//	// Email queue worker
//	emailWorker, _ := queue.NewWorker(storage,
//		queue.WithQueues("email"),
//		queue.WithMaxConcurrentTasks(10),
//	)
//	emailWorker.RegisterHandlers(
//		queue.NewTaskHandler(handleWelcomeEmail),
//		queue.NewTaskHandler(handleNotification),
//	)
//
//	// Image processing queue worker
//	imageWorker, _ := queue.NewWorker(storage,
//		queue.WithQueues("images"),
//		queue.WithMaxConcurrentTasks(3), // CPU intensive, fewer workers
//	)
//	imageWorker.RegisterHandlers(
//		queue.NewTaskHandler(handleImageResize),
//		queue.NewTaskHandler(handleThumbnail),
//	)
//
//	// Analytics queue worker
//	analyticsWorker, _ := queue.NewWorker(storage,
//		queue.WithQueues("analytics"),
//		queue.WithMaxConcurrentTasks(2),
//	)
//	analyticsWorker.RegisterHandler(queue.NewTaskHandler(handleEventTracking))
//
//	// Start all workers
//	go emailWorker.Start(ctx)
//	go imageWorker.Start(ctx)
//	go analyticsWorker.Start(ctx)
//
// # Error Handling
//
// The worker recovers a panicking handler and records the panic as a task
// failure. Handlers report everything else through their returned error:
//
//	func handleTaskWithErrorHandling(ctx context.Context, payload JobPayload) error {
//		// Check context cancellation
//		select {
//		case <-ctx.Done():
//			return fmt.Errorf("task cancelled: %w", ctx.Err())
//		default:
//		}
//
//		// Process task
//		if err := processJob(payload); err != nil {
//			log.Error("Task processing failed",
//				"job_id", payload.ID,
//				"error", err,
//			)
//			return err
//		}
//
//		log.Info("Task completed successfully", "job_id", payload.ID)
//		return nil
//	}
//
// # Graceful Shutdown
//
// Stop cancels a component and waits, up to its shutdown timeout, for the work
// already in progress:
//
//	func runQueueSystem(ctx context.Context) error {
//		// Create components
//		storage := queue.NewMemoryStorage()
//		worker, _ := queue.NewWorker(storage,
//			queue.WithShutdownTimeout(30*time.Second),
//		)
//		scheduler, _ := queue.NewScheduler(storage)
//
//		go worker.Start(ctx)
//		go scheduler.Start(ctx)
//
//		// Wait for shutdown signal
//		<-ctx.Done()
//
//		log.Info("Shutting down queue system...")
//		if err := worker.Stop(); err != nil {
//			return err
//		}
//		if err := scheduler.Stop(); err != nil {
//			return err
//		}
//
//		log.Info("Queue system shutdown complete")
//		return nil
//	}
//
// # Custom Storage Backend
//
// Implement the Storage interface (CreateTask, ClaimTask, CompleteTask,
// FailTask, MoveToDLQ, ExtendLock and GetPendingTaskByName) for production use:
//
//	type PostgreSQLStorage struct {
//		db *sql.DB
//	}
//
//	func (s *PostgreSQLStorage) CreateTask(ctx context.Context, task *queue.Task) error {
//		query := `INSERT INTO tasks (id, queue, task_type, task_name, priority, payload, created_at)
//		         VALUES ($1, $2, $3, $4, $5, $6, $7)`
//		_, err := s.db.ExecContext(ctx, query,
//			task.ID, task.Queue, task.TaskType, task.TaskName, task.Priority, task.Payload, task.CreatedAt)
//		return err
//	}
//
//	func (s *PostgreSQLStorage) ClaimTask(ctx context.Context, workerID uuid.UUID, queues []string, lockDuration time.Duration) (*queue.Task, error) {
//		// Select the highest-priority pending task in queues whose scheduled_at
//		// has passed, lock it for lockDuration, and return it; return
//		// queue.ErrNoTaskToClaim when there is none.
//	}
//
//	// ... the remaining Storage methods
//
//	// Use custom storage
//	storage := &PostgreSQLStorage{db: database}
//	worker, _ := queue.NewWorker(storage)
//
// # Monitoring and Metrics
//
// Worker, Scheduler and MemoryStorage expose Stats and Healthcheck:
//
//	stats := worker.Stats()
//	recordGauge("queue_tasks_processed", stats.TasksProcessed)
//	recordGauge("queue_tasks_failed", stats.TasksFailed)
//	recordGauge("queue_tasks_active", stats.ActiveTasks)
//
//	if err := worker.Healthcheck(ctx); errors.Is(err, queue.ErrWorkerOverloaded) {
//		log.Warn("all worker slots are busy")
//	}
//
// # Best Practices
//
//   - Use appropriate queue names for different task types
//   - Set concurrency based on task characteristics (CPU vs I/O bound)
//   - Implement proper error handling and logging in task handlers
//   - Use priority levels to ensure critical tasks are processed first
//   - Configure retry policies based on task failure patterns
//   - Implement graceful shutdown to avoid losing in-progress tasks
//   - Monitor queue depth and processing metrics
//   - Use scheduled tasks for recurring operations
//   - Keep task payloads small and serialize efficiently
//   - Handle context cancellation properly in long-running tasks
package queue
