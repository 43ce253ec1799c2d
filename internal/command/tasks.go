package command

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"go.uber.org/zap"

	"resource2code/model"
)

var errNoTasks = &Error{Kind: KindOther, Err: errors.New("task execution is not configured")}

type questionArgs struct {
	Request model.CodeGenRequest `json:"request"`
}

func (s *Service) processQuestion(ctx context.Context, raw json.RawMessage) (any, error) {
	var args questionArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("request.question", args.Request.Question); err != nil {
		return nil, err
	}
	if args.Request.AutoDetectDir && strings.TrimSpace(args.Request.CurrentSrcDir) == "" {
		return nil, invalid("request.currentSrcDir is required when autoDetectDir is set")
	}
	if s.tasks == nil || s.newTask == nil {
		return nil, errNoTasks
	}
	id := s.tasks.Execute(s.newTask(args.Request))
	s.logger.Info("accepted user question", zap.String("task_id", id), zap.Int("resources", len(args.Request.Resources)))
	return id, nil
}

func (s *Service) taskID(raw json.RawMessage) (string, error) {
	var args taskArgs
	if err := decodeArgs(raw, &args); err != nil {
		return "", err
	}
	if err := required("taskId", args.TaskID); err != nil {
		return "", err
	}
	if s.tasks == nil {
		return "", errNoTasks
	}
	return args.TaskID, nil
}

func (s *Service) cancelTask(_ context.Context, raw json.RawMessage) (any, error) {
	id, err := s.taskID(raw)
	if err != nil {
		return nil, err
	}
	return nil, s.tasks.Cancel(id)
}

// taskFinished is false for unknown ids.
func (s *Service) taskFinished(_ context.Context, raw json.RawMessage) (any, error) {
	id, err := s.taskID(raw)
	if err != nil {
		return nil, err
	}
	return s.tasks.Finished(id), nil
}

func (s *Service) taskLogs(_ context.Context, raw json.RawMessage) (any, error) {
	id, err := s.taskID(raw)
	if err != nil {
		return nil, err
	}
	logs, ok := s.tasks.Logs(id)
	if !ok {
		return nil, nil
	}
	return logs, nil
}

func (s *Service) taskResult(_ context.Context, raw json.RawMessage) (any, error) {
	id, err := s.taskID(raw)
	if err != nil {
		return nil, err
	}
	result, ok := s.tasks.Result(id)
	if !ok {
		return nil, nil
	}
	return result, nil
}
