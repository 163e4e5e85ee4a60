package driven

import (
	"context"

	"github.com/cobalt-labs/tubechat-core/internal/core/domain"
)

// TaskFilter narrows ListTasks results.
type TaskFilter struct {
	Status domain.TaskStatus
	Type   domain.TaskType
	Limit  int
}

// TaskQueue queues channel indexing jobs for background workers.
type TaskQueue interface {
	// Enqueue adds a task to the queue for processing
	Enqueue(ctx context.Context, task *domain.Task) error

	// Dequeue retrieves the next available task, blocking until one arrives
	// or the context is cancelled
	Dequeue(ctx context.Context) (*domain.Task, error)

	// DequeueWithTimeout retrieves the next available task, waiting up to
	// timeout seconds. Returns nil, nil when no task is available.
	DequeueWithTimeout(ctx context.Context, timeout int) (*domain.Task, error)

	// Ack acknowledges successful completion of a task
	Ack(ctx context.Context, taskID string) error

	// Nack indicates task processing failed; the task is retried with
	// backoff until its attempts are exhausted
	Nack(ctx context.Context, taskID string, reason string) error

	// GetTask retrieves a task by ID. Returns nil, nil when unknown.
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)

	// ListTasks retrieves tasks matching the filter
	ListTasks(ctx context.Context, filter TaskFilter) ([]*domain.Task, error)

	// Ping verifies the queue backend is reachable
	Ping(ctx context.Context) error
}
