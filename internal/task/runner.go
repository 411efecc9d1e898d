package task

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// TaskRunnerConfig holds configuration for the task runner
type TaskRunnerConfig struct {
	// WorkerCount determines how many concurrent workers process tasks
	WorkerCount int

	// QueueSize determines the buffer size for the in-memory task queue
	QueueSize int

	// StuckTaskAge defines how long a task can be in processing state
	// before it's considered stuck and reset
	StuckTaskAge time.Duration

	// StuckTaskCheckInterval defines how often to check for stuck tasks
	// If zero, defaults to 5 minutes
	StuckTaskCheckInterval time.Duration
}

// DefaultTaskRunnerConfig returns a TaskRunnerConfig with reasonable defaults
func DefaultTaskRunnerConfig() TaskRunnerConfig {
	return TaskRunnerConfig{
		WorkerCount:            2,
		QueueSize:              100,
		StuckTaskAge:           30 * time.Minute,
		StuckTaskCheckInterval: 5 * time.Minute,
	}
}

// TaskRunner persists submitted tasks, feeds them to a worker pool and
// records their outcome.
type TaskRunner struct {
	store     TaskStore
	queue     *TaskQueue
	pool      *WorkerPool
	config    TaskRunnerConfig
	logger    *slog.Logger
	factories map[string]Rebuilder

	errHandler func(task Task, err error)

	ctx        context.Context
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
	stopOnce   sync.Once
}

// NewTaskRunner creates a new TaskRunner
func NewTaskRunner(store TaskStore, config TaskRunnerConfig, logger *slog.Logger) *TaskRunner {
	if store == nil {
		panic("store cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if config.StuckTaskCheckInterval == 0 {
		config.StuckTaskCheckInterval = 5 * time.Minute
	}
	logger = logger.With(slog.String("component", "task_runner"))

	queue := NewTaskQueue(config.QueueSize, logger)
	pool := NewWorkerPool(queue, WorkerPoolConfig{WorkerCount: config.WorkerCount}, logger)
	ctx, cancel := context.WithCancel(context.Background())

	r := &TaskRunner{
		store:      store,
		queue:      queue,
		pool:       pool,
		config:     config,
		logger:     logger,
		factories:  make(map[string]Rebuilder),
		ctx:        ctx,
		cancelFunc: cancel,
		errHandler: func(Task, error) {},
	}
	pool.SetProcessFunc(r.processTask)
	return r
}

// SetErrorHandler allows setting a custom error handler function
func (r *TaskRunner) SetErrorHandler(handler func(task Task, err error)) {
	r.errHandler = handler
}

// RegisterFactory makes tasks of taskType recoverable after a restart.
// It must be called before Start.
func (r *TaskRunner) RegisterFactory(taskType string, rebuild Rebuilder) {
	r.factories[taskType] = rebuild
}

// Submit persists the task and adds it to the queue. A task that was saved
// but could not be queued stays pending and is picked up by Recover.
func (r *TaskRunner) Submit(ctx context.Context, task Task) error {
	if err := r.store.SaveTask(ctx, task); err != nil {
		return fmt.Errorf("failed to save task: %w", err)
	}

	if err := r.queue.Enqueue(task); err != nil {
		return fmt.Errorf("failed to enqueue task: %w", err)
	}
	return nil
}

// Start recovers unfinished tasks and starts the workers.
func (r *TaskRunner) Start(ctx context.Context) error {
	if err := r.Recover(ctx); err != nil {
		return fmt.Errorf("failed to recover tasks: %w", err)
	}

	r.pool.Start()

	r.wg.Add(1)
	go r.stuckTaskMonitor()

	return nil
}

// Stop gracefully shuts down the task runner. In-flight tasks see their
// context cancelled; queued tasks remain pending in the store.
func (r *TaskRunner) Stop() {
	r.stopOnce.Do(func() {
		r.cancelFunc()
		r.wg.Wait()
		r.pool.Stop()
		r.queue.Close()
	})
}

// Recover loads unfinished tasks from the store and queues them again.
// Tasks left in the processing state by a crash are reset to pending first.
func (r *TaskRunner) Recover(ctx context.Context) error {
	pendingTasks, err := r.store.GetPendingTasks(ctx)
	if err != nil {
		return fmt.Errorf("failed to get pending tasks: %w", err)
	}

	processingTasks, err := r.store.GetProcessingTasks(ctx, 0)
	if err != nil {
		return fmt.Errorf("failed to get processing tasks: %w", err)
	}

	r.logger.Info("recovering unfinished tasks",
		slog.Int("pending_count", len(pendingTasks)),
		slog.Int("processing_count", len(processingTasks)))

	for _, task := range pendingTasks {
		r.requeue(ctx, task)
	}

	for _, task := range processingTasks {
		if err := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusPending, "reset after recovery"); err != nil {
			r.logger.Error("failed to reset processing task status",
				slog.String("task_id", task.ID().String()),
				slog.String("error", err.Error()))
			continue
		}
		r.requeue(ctx, task)
	}

	return nil
}

// requeue rebuilds a stored task and puts it back on the queue.
func (r *TaskRunner) requeue(ctx context.Context, task Task) {
	log := r.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()))

	rebuilt, err := r.rehydrate(task)
	if err != nil {
		log.Error("failed to rebuild stored task", slog.String("error", err.Error()))
		if updateErr := r.store.UpdateTaskStatus(ctx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to mark task as failed", slog.String("error", updateErr.Error()))
		}
		return
	}

	if err := r.queue.Enqueue(rebuilt); err != nil {
		log.Error("failed to requeue task", slog.String("error", err.Error()))
	}
}

func (r *TaskRunner) rehydrate(task Task) (Task, error) {
	stored, ok := task.(*StoredTask)
	if !ok {
		return task, nil
	}

	rebuild, ok := r.factories[stored.Type()]
	if !ok {
		return nil, fmt.Errorf("no factory registered for task type %q", stored.Type())
	}
	return rebuild(stored.ID(), stored.Payload())
}

// processTask handles execution of a single task
func (r *TaskRunner) processTask(ctx context.Context, task Task, workerID int) {
	log := r.logger.With(
		slog.String("task_id", task.ID().String()),
		slog.String("task_type", task.Type()),
		slog.Int("worker_id", workerID))

	// Status writes must land even when shutdown cancels the task itself.
	storeCtx := context.WithoutCancel(ctx)

	if err := r.store.UpdateTaskStatus(storeCtx, task.ID(), TaskStatusProcessing, ""); err != nil {
		log.Error("failed to update task status to processing", slog.String("error", err.Error()))
		return
	}

	log.Info("processing task")

	if err := task.Execute(ctx); err != nil {
		if ctx.Err() != nil {
			// Interrupted by shutdown: leave it for the next Recover.
			log.Warn("task interrupted by shutdown", slog.String("error", err.Error()))
			if updateErr := r.store.UpdateTaskStatus(storeCtx, task.ID(), TaskStatusPending, "interrupted by shutdown"); updateErr != nil {
				log.Error("failed to reset interrupted task", slog.String("error", updateErr.Error()))
			}
			return
		}

		log.Error("task execution failed", slog.String("error", err.Error()))
		if updateErr := r.store.UpdateTaskStatus(storeCtx, task.ID(), TaskStatusFailed, err.Error()); updateErr != nil {
			log.Error("failed to update task status to failed", slog.String("error", updateErr.Error()))
		}
		r.errHandler(task, err)
		return
	}

	log.Info("task completed successfully")
	if err := r.store.UpdateTaskStatus(storeCtx, task.ID(), TaskStatusCompleted, ""); err != nil {
		log.Error("failed to update task status to completed", slog.String("error", err.Error()))
	}
}

// stuckTaskMonitor periodically checks for tasks that have been in "processing"
// state for too long and resets them
func (r *TaskRunner) stuckTaskMonitor() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.StuckTaskCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return

		case <-ticker.C:
			stuckTasks, err := r.store.GetProcessingTasks(r.ctx, r.config.StuckTaskAge)
			if err != nil {
				r.logger.Error("failed to check for stuck tasks", slog.String("error", err.Error()))
				continue
			}

			if len(stuckTasks) > 0 {
				r.logger.Info("found stuck tasks", slog.Int("count", len(stuckTasks)))
			}

			for _, task := range stuckTasks {
				if err := r.store.UpdateTaskStatus(r.ctx, task.ID(), TaskStatusPending,
					"reset after being stuck in processing state"); err != nil {
					r.logger.Error("failed to reset stuck task status",
						slog.String("task_id", task.ID().String()),
						slog.String("error", err.Error()))
					continue
				}
				r.requeue(r.ctx, task)
			}
		}
	}
}
