package client

import (
	"context"
	"time"

	"resource2code/model"
)

// TaskService submits questions to the code-generation backend and manages
// the generated files.
type TaskService struct {
	caller
}

func NewTaskService(inv Invoker, notify Notifier) *TaskService {
	return &TaskService{caller: newCaller(inv, notify)}
}

// Ask starts a code-generation task and returns its id.
func (s *TaskService) Ask(ctx context.Context, req model.CodeGenRequest) (string, error) {
	var id model.ID
	if err := s.call(ctx, "ask question", "failed to submit question", model.CmdProcessQuestion, map[string]any{"request": req}, &id); err != nil {
		return "", err
	}
	return id.String(), nil
}

func (s *TaskService) Cancel(ctx context.Context, taskID string) error {
	return s.call(ctx, "cancel task", "failed to cancel task", model.CmdCancelTask, taskArgs(taskID), nil)
}

func (s *TaskService) Finished(ctx context.Context, taskID string) (bool, error) {
	var done bool
	err := s.call(ctx, "task status", "failed to read task status", model.CmdTaskFinished, taskArgs(taskID), &done)
	return done, err
}

// Logs returns nil when the backend no longer knows the task.
func (s *TaskService) Logs(ctx context.Context, taskID string) ([]model.TaskLog, error) {
	var logs []model.TaskLog
	err := s.call(ctx, "task logs", "failed to read task logs", model.CmdTaskLogs, taskArgs(taskID), &logs)
	return logs, err
}

// Result returns nil when the backend no longer knows the task.
func (s *TaskService) Result(ctx context.Context, taskID string) (*model.TaskResult, error) {
	var result *model.TaskResult
	err := s.call(ctx, "task result", "failed to read task result", model.CmdTaskResult, taskArgs(taskID), &result)
	return result, err
}

// Wait polls until the task finishes or ctx is done.
func (s *TaskService) Wait(ctx context.Context, taskID string, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		done, err := s.Finished(ctx, taskID)
		if err != nil || done {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// SaveFile writes file.Content to file.Path and reports whether the file
// was newly created.
func (s *TaskService) SaveFile(ctx context.Context, file model.CodeFile) (bool, error) {
	var created bool
	err := s.call(ctx, "save file", "failed to save "+file.Path, model.CmdSaveFile, map[string]any{"file": file}, &created)
	return created, err
}

func (s *TaskService) FileExists(ctx context.Context, path string) (bool, error) {
	var exists bool
	err := s.call(ctx, "file exists", "failed to check "+path, model.CmdFileExists, map[string]any{"filePath": path}, &exists)
	return exists, err
}

func (s *TaskService) FileSystem(ctx context.Context, path string) ([]model.FileNode, error) {
	var tree []model.FileNode
	err := s.call(ctx, "file system", "failed to read directory "+path, model.CmdGetFileSystem, map[string]any{"path": path}, &tree)
	return tree, err
}

func taskArgs(taskID string) map[string]any {
	return map[string]any{"taskId": taskID}
}
