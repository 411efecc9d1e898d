package task

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

func setupTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// fakeTask records its executions and returns err.
type fakeTask struct {
	id      uuid.UUID
	payload []byte
	err     error
	block   bool

	mu    sync.Mutex
	runs  int
	start chan struct{}
}

func newFakeTask(payload string) *fakeTask {
	return &fakeTask{id: uuid.New(), payload: []byte(payload), start: make(chan struct{}, 1)}
}

func (t *fakeTask) ID() uuid.UUID      { return t.id }
func (t *fakeTask) Type() string       { return "fake" }
func (t *fakeTask) Payload() []byte    { return t.payload }
func (t *fakeTask) Status() TaskStatus { return TaskStatusPending }

func (t *fakeTask) Execute(ctx context.Context) error {
	t.mu.Lock()
	t.runs++
	t.mu.Unlock()
	select {
	case t.start <- struct{}{}:
	default:
	}
	if t.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return t.err
}

func (t *fakeTask) Runs() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.runs
}

type storedRow struct {
	taskType string
	payload  []byte
	status   TaskStatus
	errMsg   string
	created  time.Time
	updated  time.Time
}

// fakeStore is an in-memory TaskStore that signals every status change.
type fakeStore struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*storedRow
	changes chan TaskStatus
	saveErr error
	now     func() time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		rows:    make(map[uuid.UUID]*storedRow),
		changes: make(chan TaskStatus, 64),
		now:     time.Now,
	}
}

func (s *fakeStore) put(id uuid.UUID, taskType string, payload []byte, status TaskStatus, updated time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[id] = &storedRow{taskType: taskType, payload: payload, status: status, created: updated, updated: updated}
}

func (s *fakeStore) SaveTask(_ context.Context, task Task) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.put(task.ID(), task.Type(), task.Payload(), TaskStatusPending, s.now())
	return nil
}

func (s *fakeStore) UpdateTaskStatus(_ context.Context, id uuid.UUID, status TaskStatus, errMsg string) error {
	s.mu.Lock()
	row, ok := s.rows[id]
	if !ok {
		s.mu.Unlock()
		return errors.New("task not found")
	}
	row.status = status
	row.errMsg = errMsg
	row.updated = s.now()
	s.mu.Unlock()

	select {
	case s.changes <- status:
	default:
	}
	return nil
}

func (s *fakeStore) byStatus(status TaskStatus, olderThan time.Duration) []Task {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Task
	for id, row := range s.rows {
		if row.status != status {
			continue
		}
		if olderThan > 0 && s.now().Sub(row.updated) < olderThan {
			continue
		}
		out = append(out, NewStoredTask(id, row.taskType, row.payload, row.status, row.errMsg, row.created, row.updated))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].(*StoredTask).CreatedAt().Before(out[j].(*StoredTask).CreatedAt())
	})
	return out
}

func (s *fakeStore) GetPendingTasks(context.Context) ([]Task, error) {
	return s.byStatus(TaskStatusPending, 0), nil
}

func (s *fakeStore) GetProcessingTasks(_ context.Context, olderThan time.Duration) ([]Task, error) {
	return s.byStatus(TaskStatusProcessing, olderThan), nil
}

func (s *fakeStore) status(id uuid.UUID) (TaskStatus, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[id]
	if !ok {
		return "", ""
	}
	return row.status, row.errMsg
}

// waitFor blocks until the store records want or the timeout expires.
func (s *fakeStore) waitFor(want TaskStatus, timeout time.Duration) bool {
	deadline := time.After(timeout)
	for {
		select {
		case got := <-s.changes:
			if got == want {
				return true
			}
		case <-deadline:
			return false
		}
	}
}
