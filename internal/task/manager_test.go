package task

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"resource2code/model"
)

type fakeTask struct {
	release   chan struct{}
	result    model.TaskResult
	err       error
	messages  []string
	cancelled atomic.Bool
}

func newFakeTask(messages ...string) *fakeTask {
	return &fakeTask{release: make(chan struct{}), result: model.EmptyResult(), messages: messages}
}

func (f *fakeTask) Run(ctx context.Context, logs chan<- model.TaskLog) (model.TaskResult, error) {
	for _, msg := range f.messages {
		if err := Emit(ctx, logs, model.NewTaskLog(model.LogInfo, msg)); err != nil {
			return model.TaskResult{}, err
		}
	}
	select {
	case <-f.release:
	case <-ctx.Done():
		return model.TaskResult{}, ctx.Err()
	}
	return f.result, f.err
}

func (f *fakeTask) Cancel() { f.cancelled.Store(true) }

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m := NewManager(zaptest.NewLogger(t), 0)
	t.Cleanup(m.Stop)
	return m
}

func waitFinished(t *testing.T, m *Manager, id string) {
	t.Helper()
	require.Eventually(t, func() bool { return m.Finished(id) }, 2*time.Second, 5*time.Millisecond)
}

func messages(logs []model.TaskLog) []string {
	out := make([]string, 0, len(logs))
	for _, l := range logs {
		out = append(out, l.Message)
	}
	return out
}

func TestExecuteCompletes(t *testing.T) {
	m := newTestManager(t)
	task := newFakeTask("starting", "working")
	files := []model.CodeFile{{Name: "a.go", Path: "/src/a.go", Content: "package a"}}
	task.result = model.CodeGenResult(files)

	id := m.Execute(task)
	require.NotEmpty(t, id)
	assert.False(t, m.Finished(id))

	result, ok := m.Result(id)
	require.True(t, ok)
	assert.Equal(t, model.ResultEmpty, result.Type)

	close(task.release)
	waitFinished(t, m, id)

	status, _ := m.Status(id)
	assert.Equal(t, model.TaskCompleted, status)
	result, _ = m.Result(id)
	assert.Equal(t, model.CodeGenResult(files), result)

	logs, ok := m.Logs(id)
	require.True(t, ok)
	assert.Equal(t, []string{"starting", "working", "task completed"}, messages(logs))
	assert.Equal(t, model.LogInfo, logs[len(logs)-1].Level)
}

func TestExecuteFails(t *testing.T) {
	m := newTestManager(t)
	task := newFakeTask()
	task.err = errors.New("unsupported question")
	close(task.release)

	id := m.Execute(task)
	waitFinished(t, m, id)

	status, _ := m.Status(id)
	assert.Equal(t, model.TaskFailed, status)
	logs, _ := m.Logs(id)
	require.NotEmpty(t, logs)
	last := logs[len(logs)-1]
	assert.Equal(t, "task failed: unsupported question", last.Message)
	assert.Equal(t, model.LogError, last.Level)
	result, _ := m.Result(id)
	assert.Equal(t, model.ResultEmpty, result.Type)
}

func TestCancelKeepsCancelledStatus(t *testing.T) {
	m := newTestManager(t)
	task := newFakeTask("starting")

	id := m.Execute(task)
	require.Eventually(t, func() bool {
		logs, _ := m.Logs(id)
		return len(logs) == 1
	}, 2*time.Second, 5*time.Millisecond)

	require.NoError(t, m.Cancel(id))
	assert.True(t, task.cancelled.Load())
	assert.True(t, m.Finished(id))

	require.Eventually(t, func() bool {
		logs, _ := m.Logs(id)
		return len(logs) == 2
	}, 2*time.Second, 5*time.Millisecond)
	status, _ := m.Status(id)
	assert.Equal(t, model.TaskCancelled, status)
	logs, _ := m.Logs(id)
	assert.Equal(t, model.LogWarn, logs[1].Level)
}

func TestCancelUnknownTask(t *testing.T) {
	m := newTestManager(t)
	assert.ErrorIs(t, m.Cancel("missing"), ErrTaskNotFound)
	assert.False(t, m.Finished("missing"))
	_, ok := m.Logs("missing")
	assert.False(t, ok)
	_, ok = m.Result("missing")
	assert.False(t, ok)
}

func TestLogsReturnsCopy(t *testing.T) {
	m := newTestManager(t)
	task := newFakeTask("one")
	close(task.release)
	id := m.Execute(task)
	waitFinished(t, m, id)

	logs, _ := m.Logs(id)
	logs[0].Message = "changed"
	again, _ := m.Logs(id)
	assert.Equal(t, "one", again[0].Message)
}

func TestRemoveFinished(t *testing.T) {
	m := newTestManager(t)
	done := newFakeTask()
	close(done.release)
	running := newFakeTask()

	doneID := m.Execute(done)
	runningID := m.Execute(running)
	waitFinished(t, m, doneID)

	assert.Equal(t, 1, m.removeFinished())
	_, ok := m.Status(doneID)
	assert.False(t, ok)
	_, ok = m.Status(runningID)
	assert.True(t, ok)

	close(running.release)
}

func TestStartCleanupRemovesFinishedTasks(t *testing.T) {
	m := newTestManager(t)
	task := newFakeTask()
	close(task.release)
	id := m.Execute(task)
	waitFinished(t, m, id)

	m.StartCleanup(10 * time.Millisecond)
	require.Eventually(t, func() bool {
		_, ok := m.Status(id)
		return !ok
	}, 2*time.Second, 5*time.Millisecond)
}

func TestStopCancelsRunningTasks(t *testing.T) {
	m := NewManager(zaptest.NewLogger(t), 1)
	task := newFakeTask()
	id := m.Execute(task)

	m.Stop()
	assert.True(t, task.cancelled.Load())
	status, _ := m.Status(id)
	assert.Equal(t, model.TaskCancelled, status)
}
