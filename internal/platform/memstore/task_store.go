package memstore

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/palabras/palabras-api/internal/platform/logger"
	"github.com/palabras/palabras-api/internal/task"
)

type taskRow struct {
	taskType  string
	payload   []byte
	status    task.TaskStatus
	errorMsg  string
	createdAt time.Time
	updatedAt time.Time
}

// TaskStore is an in-memory task.TaskStore. Tasks do not survive a restart,
// so recovery only covers tasks interrupted inside one process.
type TaskStore struct {
	mu     sync.Mutex
	rows   map[uuid.UUID]*taskRow
	now    func() time.Time
	logger *slog.Logger
}

var _ task.TaskStore = (*TaskStore)(nil)

// NewTaskStore returns an empty task store using the clock of db.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{
		rows:   make(map[uuid.UUID]*taskRow),
		now:    db.now,
		logger: db.logger.With(slog.String("component", "task_store")),
	}
}

// SaveTask implements task.TaskStore.
func (s *TaskStore) SaveTask(ctx context.Context, t task.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	s.rows[t.ID()] = &taskRow{
		taskType:  t.Type(),
		payload:   append([]byte(nil), t.Payload()...),
		status:    task.TaskStatusPending,
		createdAt: now,
		updatedAt: now,
	}
	return nil
}

// UpdateTaskStatus implements task.TaskStore. Unknown IDs are a no-op.
func (s *TaskStore) UpdateTaskStatus(
	ctx context.Context,
	taskID uuid.UUID,
	status task.TaskStatus,
	errorMsg string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[taskID]
	if !ok {
		logger.FromContextOrDefault(ctx, s.logger).Warn("no task found with ID to update status",
			slog.String("task_id", taskID.String()))
		return nil
	}
	row.status = status
	row.errorMsg = errorMsg
	row.updatedAt = s.now().UTC()
	return nil
}

// GetPendingTasks implements task.TaskStore.
func (s *TaskStore) GetPendingTasks(ctx context.Context) ([]task.Task, error) {
	return s.byStatus(task.TaskStatusPending, 0), nil
}

// GetProcessingTasks implements task.TaskStore.
func (s *TaskStore) GetProcessingTasks(ctx context.Context, olderThan time.Duration) ([]task.Task, error) {
	return s.byStatus(task.TaskStatusProcessing, olderThan), nil
}

func (s *TaskStore) byStatus(status task.TaskStatus, olderThan time.Duration) []task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().UTC().Add(-olderThan)
	var out []*task.StoredTask
	for id, row := range s.rows {
		if row.status != status {
			continue
		}
		if olderThan > 0 && !row.updatedAt.Before(cutoff) {
			continue
		}
		out = append(out, task.NewStoredTask(
			id, row.taskType, append([]byte(nil), row.payload...),
			row.status, row.errorMsg, row.createdAt, row.updatedAt))
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt().Before(out[j].CreatedAt())
	})

	tasks := make([]task.Task, len(out))
	for i, t := range out {
		tasks[i] = t
	}
	return tasks
}
