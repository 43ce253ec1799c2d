// Package task runs long-lived user tasks in the background and keeps their
// status, logs and result around until they are cleaned up.
package task

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"resource2code/model"
)

var ErrTaskNotFound = errors.New("task not found")

const DefaultLogBuffer = 100

// Task is a unit of background work. Run must stop sending on logs once it
// returns. Cancel may be called concurrently with Run.
type Task interface {
	Run(ctx context.Context, logs chan<- model.TaskLog) (model.TaskResult, error)
	Cancel()
}

type record struct {
	task   Task
	status model.TaskStatus
	logs   []model.TaskLog
	result model.TaskResult
	cancel context.CancelFunc
}

type Manager struct {
	mu        sync.Mutex
	tasks     map[string]*record
	logBuffer int
	logger    *zap.Logger
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	stopOnce  sync.Once
	cleaning  bool
}

func NewManager(logger *zap.Logger, logBuffer int) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	if logBuffer <= 0 {
		logBuffer = DefaultLogBuffer
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Manager{
		tasks:     map[string]*record{},
		logBuffer: logBuffer,
		logger:    logger.Named("task"),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Execute registers t as Pending and starts it in the background.
func (m *Manager) Execute(t Task) string {
	id := uuid.NewString()
	ctx, cancel := context.WithCancel(m.ctx)
	rec := &record{task: t, status: model.TaskPending, result: model.EmptyResult(), cancel: cancel}

	m.mu.Lock()
	m.tasks[id] = rec
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(ctx, id, rec)
	m.logger.Info("task scheduled", zap.String("task_id", id))
	return id
}

func (m *Manager) run(ctx context.Context, id string, rec *record) {
	defer m.wg.Done()
	defer rec.cancel()

	logs := make(chan model.TaskLog, m.logBuffer)
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		for entry := range logs {
			m.mu.Lock()
			rec.logs = append(rec.logs, entry)
			m.mu.Unlock()
		}
	}()

	m.mu.Lock()
	if rec.status == model.TaskPending {
		rec.status = model.TaskRunning
	}
	m.mu.Unlock()

	result, err := rec.task.Run(ctx, logs)
	close(logs)
	<-drained

	m.mu.Lock()
	defer m.mu.Unlock()
	switch {
	case rec.status == model.TaskCancelled:
		rec.logs = append(rec.logs, model.NewTaskLog(model.LogWarn, "task cancelled"))
		m.logger.Info("task cancelled", zap.String("task_id", id))
	case err != nil:
		rec.status = model.TaskFailed
		rec.logs = append(rec.logs, model.NewTaskLog(model.LogError, fmt.Sprintf("task failed: %v", err)))
		m.logger.Warn("task failed", zap.String("task_id", id), zap.Error(err))
	default:
		rec.status = model.TaskCompleted
		rec.result = result
		rec.logs = append(rec.logs, model.NewTaskLog(model.LogInfo, "task completed"))
		m.logger.Info("task completed", zap.String("task_id", id))
	}
}

// Cancel marks the task Cancelled and asks it to stop. The status stays
// Cancelled whatever the task returns afterwards.
func (m *Manager) Cancel(id string) error {
	m.mu.Lock()
	rec, ok := m.tasks[id]
	if !ok {
		m.mu.Unlock()
		return fmt.Errorf("%s: %w", id, ErrTaskNotFound)
	}
	if rec.status.Finished() {
		m.mu.Unlock()
		return nil
	}
	rec.status = model.TaskCancelled
	m.mu.Unlock()

	rec.task.Cancel()
	rec.cancel()
	return nil
}

// Finished is false for unknown ids.
func (m *Manager) Finished(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.tasks[id]
	return ok && rec.status.Finished()
}

func (m *Manager) Status(id string) (model.TaskStatus, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.tasks[id]
	if !ok {
		return "", false
	}
	return rec.status, true
}

// Logs returns a copy of the task's log so far.
func (m *Manager) Logs(id string) ([]model.TaskLog, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.tasks[id]
	if !ok {
		return nil, false
	}
	out := make([]model.TaskLog, len(rec.logs))
	copy(out, rec.logs)
	return out, true
}

// Result is Empty until the task completes.
func (m *Manager) Result(id string) (model.TaskResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.tasks[id]
	if !ok {
		return model.TaskResult{}, false
	}
	return rec.result, true
}

// StartCleanup drops finished tasks every interval until Stop.
func (m *Manager) StartCleanup(interval time.Duration) {
	if interval <= 0 {
		return
	}
	m.mu.Lock()
	if m.cleaning {
		m.mu.Unlock()
		return
	}
	m.cleaning = true
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := m.removeFinished(); n > 0 {
					m.logger.Debug("removed finished tasks", zap.Int("count", n))
				}
			case <-m.ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) removeFinished() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, rec := range m.tasks {
		if rec.status.Finished() {
			delete(m.tasks, id)
			removed++
		}
	}
	return removed
}

// Stop cancels every running task, stops cleanup and waits for the
// background goroutines to return.
func (m *Manager) Stop() {
	m.stopOnce.Do(func() {
		m.mu.Lock()
		var running []*record
		for _, rec := range m.tasks {
			if !rec.status.Finished() {
				rec.status = model.TaskCancelled
				running = append(running, rec)
			}
		}
		m.mu.Unlock()
		for _, rec := range running {
			rec.task.Cancel()
		}
		m.cancel()
		m.wg.Wait()
	})
}

// Emit sends entry unless ctx is done first.
func Emit(ctx context.Context, logs chan<- model.TaskLog, entry model.TaskLog) error {
	select {
	case logs <- entry:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
