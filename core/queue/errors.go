package queue

import "errors"

// Sentinel errors returned across the enqueuer, worker, and scheduler.
// Use errors.Is to check for these in caller code.
var (
	// ErrRepositoryNil is returned by constructors when the storage
	// dependency is nil.
	ErrRepositoryNil = errors.New("queue: repository is nil")

	// ErrPayloadNil is returned by Enqueue when the task payload is nil.
	ErrPayloadNil = errors.New("queue: payload is nil")

	// ErrInvalidPriority is returned when a task priority falls outside
	// the valid 0-100 range.
	ErrInvalidPriority = errors.New("queue: invalid priority")

	// ErrNoTaskToClaim is returned by storage when no pending task is
	// available to claim for the requested queues.
	ErrNoTaskToClaim = errors.New("queue: no task to claim")

	// ErrTaskAlreadyRegistered is returned by Scheduler.AddTask when a
	// periodic task with the same name is already registered.
	ErrTaskAlreadyRegistered = errors.New("queue: task already registered")

	// ErrSchedulerNotConfigured is returned by Scheduler.Start when no
	// periodic tasks have been registered.
	ErrSchedulerNotConfigured = errors.New("queue: scheduler has no registered tasks")

	// ErrSchedulerNotRunning is joined into Healthcheck failures when the
	// scheduler is not currently running.
	ErrSchedulerNotRunning = errors.New("queue: scheduler not running")

	// ErrNoTasksRegistered is joined into Healthcheck failures when the
	// scheduler has no registered periodic tasks.
	ErrNoTasksRegistered = errors.New("queue: no tasks registered")

	// ErrServiceAlreadyRunning is returned by Service.Start/Run when the
	// service has already been started.
	ErrServiceAlreadyRunning = errors.New("queue: service already running")

	// ErrServiceNotConfiguring is returned by Service methods that mutate
	// registration state (RegisterHandler, AddScheduledTask) once the
	// service has left its pre-start configuration phase.
	ErrServiceNotConfiguring = errors.New("queue: service is not in configuration phase")

	// ErrNoHandlers is returned by Worker.Start when no task handlers have
	// been registered.
	ErrNoHandlers = errors.New("queue: no handlers registered")

	// ErrHandlerNotFound is returned when a claimed task's type has no
	// registered handler.
	ErrHandlerNotFound = errors.New("queue: no handler registered for task type")

	// ErrWorkerNotRunning is joined into Healthcheck failures when the
	// worker is not currently running.
	ErrWorkerNotRunning = errors.New("queue: worker not running")

	// ErrWorkerOverloaded is joined into Healthcheck failures when the
	// worker is processing at or above its configured concurrency limit.
	ErrWorkerOverloaded = errors.New("queue: worker at max concurrency")

	// ErrHealthcheckFailed is the root error joined into every Healthcheck
	// failure, so callers can match on it regardless of the specific cause.
	ErrHealthcheckFailed = errors.New("queue: healthcheck failed")
)
