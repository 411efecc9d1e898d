package task

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// TaskStatus represents the current state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusProcessing TaskStatus = "processing"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusFailed     TaskStatus = "failed"
)

// Task type constants
const (
	// TaskTypeTranslation looks up and stores a missing reference translation.
	TaskTypeTranslation = "translation"
)

// ErrNotRehydrated is returned when a task loaded from storage is executed
// before a factory rebuilt it.
var ErrNotRehydrated = errors.New("stored task has no execution function")

// Task represents a unit of background work to be processed
type Task interface {
	// ID returns the task's unique identifier
	ID() uuid.UUID

	// Type returns the task type identifier
	Type() string

	// Payload returns the task data as a byte slice
	Payload() []byte

	// Status returns the current task status
	Status() TaskStatus

	// Execute runs the task logic
	Execute(ctx context.Context) error
}

// TaskQueueReader provides read-only access to the task channel
// allowing workers to consume tasks without the ability to enqueue
type TaskQueueReader interface {
	// GetChannel returns a read-only channel for consuming tasks
	GetChannel() <-chan Task
}

// TaskQueueWriter provides write access to the task queue
// allowing services to enqueue tasks for processing
type TaskQueueWriter interface {
	// Enqueue adds a task to the queue for processing
	// Returns an error if the queue is full or closed
	Enqueue(task Task) error

	// Close closes the task queue, preventing further task submission
	Close()
}

// TaskStore defines the interface for persisting tasks
type TaskStore interface {
	// SaveTask persists a task in the pending state.
	SaveTask(ctx context.Context, task Task) error

	// UpdateTaskStatus updates the status of a task
	UpdateTaskStatus(ctx context.Context, taskID uuid.UUID, status TaskStatus, errorMsg string) error

	// GetPendingTasks retrieves all tasks with "pending" status, oldest first.
	GetPendingTasks(ctx context.Context) ([]Task, error)

	// GetProcessingTasks retrieves tasks with "processing" status
	// If olderThan is non-zero, only returns tasks that have been in this state
	// longer than the specified duration
	GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]Task, error)
}

// Rebuilder turns a persisted payload back into an executable task.
type Rebuilder func(id uuid.UUID, payload []byte) (Task, error)

// StoredTask is a task as loaded from a TaskStore. It carries the persisted
// fields only; the runner rebuilds it through the factory registered for
// its type before executing it.
type StoredTask struct {
	id           uuid.UUID
	taskType     string
	payload      []byte
	status       TaskStatus
	errorMessage string
	createdAt    time.Time
	updatedAt    time.Time
}

// NewStoredTask creates a StoredTask from persisted fields.
func NewStoredTask(
	id uuid.UUID,
	taskType string,
	payload []byte,
	status TaskStatus,
	errorMessage string,
	createdAt, updatedAt time.Time,
) *StoredTask {
	return &StoredTask{
		id:           id,
		taskType:     taskType,
		payload:      payload,
		status:       status,
		errorMessage: errorMessage,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
	}
}

// ID implements Task.
func (t *StoredTask) ID() uuid.UUID { return t.id }

// Type implements Task.
func (t *StoredTask) Type() string { return t.taskType }

// Payload implements Task.
func (t *StoredTask) Payload() []byte { return t.payload }

// Status implements Task.
func (t *StoredTask) Status() TaskStatus { return t.status }

// ErrorMessage returns the last recorded failure, if any.
func (t *StoredTask) ErrorMessage() string { return t.errorMessage }

// CreatedAt returns when the task was first saved.
func (t *StoredTask) CreatedAt() time.Time { return t.createdAt }

// UpdatedAt returns when the task status last changed.
func (t *StoredTask) UpdatedAt() time.Time { return t.updatedAt }

// Execute always fails; stored tasks must be rebuilt first.
func (t *StoredTask) Execute(context.Context) error {
	return ErrNotRehydrated
}
