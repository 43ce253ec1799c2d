package codegen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"

	"go.uber.org/zap"

	"resource2code/internal/files"
	"resource2code/internal/llm"
	"resource2code/internal/task"
	"resource2code/model"
)

const MaxAttempts = 3

var (
	ErrCancelled           = errors.New("task cancelled")
	ErrUnsupportedQuestion = errors.New("unsupported question type")
)

type ConfigReader interface {
	GetConfig(ctx context.Context, key string) (string, bool, error)
}

// Deps are shared by every code-generation task.
type Deps struct {
	Agents  llm.Builder
	Context *ContextBuilder
	Config  ConfigReader
	Logger  *zap.Logger
}

type fileReply struct {
	FilePath    string `json:"filePath"`
	FileContent string `json:"fileContent"`
}

// Task answers one CodeGenRequest. It implements task.Task.
type Task struct {
	deps      Deps
	req       model.CodeGenRequest
	cancelled atomic.Bool
}

var _ task.Task = (*Task)(nil)

func NewTask(deps Deps, req model.CodeGenRequest) *Task {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	deps.Logger = deps.Logger.Named("codegen")
	return &Task{deps: deps, req: req}
}

func (t *Task) Cancel() { t.cancelled.Store(true) }

func (t *Task) checkCancelled() error {
	if t.cancelled.Load() {
		return ErrCancelled
	}
	return nil
}

func (t *Task) log(ctx context.Context, logs chan<- model.TaskLog, level model.TaskLogLevel, msg string) error {
	if err := t.checkCancelled(); err != nil {
		return err
	}
	return task.Emit(ctx, logs, model.NewTaskLog(level, msg))
}

func (t *Task) Run(ctx context.Context, logs chan<- model.TaskLog) (model.TaskResult, error) {
	if err := t.checkCancelled(); err != nil {
		return model.TaskResult{}, err
	}
	if err := t.log(ctx, logs, model.LogInfo, "starting code generation task"); err != nil {
		return model.TaskResult{}, err
	}

	if err := t.log(ctx, logs, model.LogInfo, "analysing question intent"); err != nil {
		return model.TaskResult{}, err
	}
	intentAgent, err := t.deps.Agents.Build(ctx, "")
	if err != nil {
		return model.TaskResult{}, err
	}
	intent, err := AnalyzeIntent(ctx, intentAgent, t.req.Question)
	if err != nil {
		return model.TaskResult{}, err
	}
	if intent != IntentCodeGen {
		return model.TaskResult{}, fmt.Errorf("%w: %s", ErrUnsupportedQuestion, intent)
	}

	if err := t.log(ctx, logs, model.LogInfo, "building context for the question"); err != nil {
		return model.TaskResult{}, err
	}
	prompt, err := t.deps.Context.Build(ctx, t.req)
	if err != nil {
		return model.TaskResult{}, err
	}
	if err := t.log(ctx, logs, model.LogInfo, "context built"); err != nil {
		return model.TaskResult{}, err
	}

	agent, err := t.deps.Agents.Build(ctx, GenerateFilesPrompt)
	if err != nil {
		return model.TaskResult{}, err
	}
	for attempt := 1; ; attempt++ {
		reply, err := t.query(ctx, logs, agent, prompt)
		if err != nil {
			return model.TaskResult{}, err
		}
		result, err := t.parseReply(ctx, reply)
		if err == nil {
			return result, nil
		}
		t.deps.Logger.Warn("malformed LLM reply", zap.Int("attempt", attempt), zap.Error(err))
		if attempt >= MaxAttempts {
			return model.TaskResult{}, err
		}
		msg := fmt.Sprintf("LLM reply was malformed, retrying (%d/%d)", attempt, MaxAttempts)
		if err := t.log(ctx, logs, model.LogWarn, msg); err != nil {
			return model.TaskResult{}, err
		}
	}
}

func (t *Task) query(ctx context.Context, logs chan<- model.TaskLog, agent llm.Agent, prompt string) (string, error) {
	if err := t.log(ctx, logs, model.LogInfo, "submitting question to the LLM"); err != nil {
		return "", err
	}
	reply, err := agent.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	if err := t.log(ctx, logs, model.LogInfo, "LLM answered"); err != nil {
		return "", err
	}
	return reply, nil
}

func (t *Task) parseReply(ctx context.Context, reply string) (model.TaskResult, error) {
	raw, ok := llm.ExtractJSON(reply)
	if !ok {
		return model.TaskResult{}, fmt.Errorf("LLM reply contains no JSON: %s", reply)
	}
	var replies []fileReply
	if err := json.Unmarshal([]byte(raw), &replies); err != nil {
		return model.TaskResult{}, fmt.Errorf("decode LLM reply: %w", err)
	}
	root, err := t.rootSourcePath(ctx)
	if err != nil {
		return model.TaskResult{}, err
	}
	out := make([]model.CodeFile, 0, len(replies))
	for _, r := range replies {
		out = append(out, model.CodeFile{
			Name:    fileName(r.FilePath),
			Path:    files.MergePaths(root, r.FilePath),
			Content: r.FileContent,
		})
	}
	return model.CodeGenResult(out), nil
}

func (t *Task) rootSourcePath(ctx context.Context) (string, error) {
	if t.deps.Config == nil {
		return "", nil
	}
	root, _, err := t.deps.Config.GetConfig(ctx, model.ConfigRootSourcePath)
	if err != nil {
		return "", fmt.Errorf("load root source path: %w", err)
	}
	return root, nil
}

func fileName(path string) string {
	if path == "" {
		return "unknown"
	}
	base := filepath.Base(filepath.FromSlash(path))
	if base == "." || base == string(filepath.Separator) {
		return "unknown"
	}
	return base
}
