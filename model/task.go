package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type TaskStatus string

const (
	TaskPending   TaskStatus = "Pending"
	TaskRunning   TaskStatus = "Running"
	TaskCompleted TaskStatus = "Completed"
	TaskCancelled TaskStatus = "Cancelled"
	TaskFailed    TaskStatus = "Failed"
)

func (s TaskStatus) Finished() bool {
	switch s {
	case TaskCompleted, TaskCancelled, TaskFailed:
		return true
	default:
		return false
	}
}

type TaskLogLevel string

const (
	LogWarn  TaskLogLevel = "Warn"
	LogInfo  TaskLogLevel = "Info"
	LogError TaskLogLevel = "Error"
)

// TaskLog is one entry of a task's append-only log. Timestamp is in
// milliseconds since the Unix epoch.
type TaskLog struct {
	Timestamp int64        `json:"timestamp"`
	Message   string       `json:"message"`
	Level     TaskLogLevel `json:"level"`
}

func NewTaskLog(level TaskLogLevel, message string) TaskLog {
	return TaskLog{Timestamp: time.Now().UnixMilli(), Message: message, Level: level}
}

type CodeFile struct {
	Name    string `json:"name"`
	Path    string `json:"path"`
	Content string `json:"content"`
	Applied *bool  `json:"applied,omitempty"`
}

type TaskResultType string

const (
	ResultCodeGen TaskResultType = "CodeGen"
	ResultEmpty   TaskResultType = "Empty"
)

// TaskResult is a tagged variant encoded as {"type": ..., "data": ...}.
// Files is only meaningful for the CodeGen variant.
type TaskResult struct {
	Type  TaskResultType
	Files []CodeFile
}

func EmptyResult() TaskResult {
	return TaskResult{Type: ResultEmpty}
}

func CodeGenResult(files []CodeFile) TaskResult {
	if files == nil {
		files = []CodeFile{}
	}
	return TaskResult{Type: ResultCodeGen, Files: files}
}

type codeGenData struct {
	Files []CodeFile `json:"files"`
}

type taskResultEnvelope struct {
	Type TaskResultType  `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func (r TaskResult) MarshalJSON() ([]byte, error) {
	switch r.Type {
	case ResultCodeGen:
		files := r.Files
		if files == nil {
			files = []CodeFile{}
		}
		data, err := json.Marshal(codeGenData{Files: files})
		if err != nil {
			return nil, err
		}
		return json.Marshal(taskResultEnvelope{Type: r.Type, Data: data})
	case ResultEmpty, "":
		return json.Marshal(taskResultEnvelope{Type: ResultEmpty})
	default:
		return nil, fmt.Errorf("unknown task result type %q", r.Type)
	}
}

func (r *TaskResult) UnmarshalJSON(data []byte) error {
	var env taskResultEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	switch env.Type {
	case ResultCodeGen:
		var payload codeGenData
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, &payload); err != nil {
				return fmt.Errorf("decode CodeGen result: %w", err)
			}
		}
		*r = CodeGenResult(payload.Files)
	case ResultEmpty:
		*r = EmptyResult()
	default:
		return fmt.Errorf("unknown task result type %q", env.Type)
	}
	return nil
}

type ResourceType string

const (
	ResourceTable ResourceType = "table"
	ResourceFile  ResourceType = "file"
)

// ResourceMeta references something the user attached to a question. For
// tables Data holds the data source id and Name the table; for files Name is
// the path.
type ResourceMeta struct {
	ResourceType ResourceType `json:"resourceType"`
	Name         string       `json:"name"`
	Data         string       `json:"data"`
}

type CodeGenRequest struct {
	Question      string         `json:"question"`
	SampleIDs     []string       `json:"sampleIds"`
	Resources     []ResourceMeta `json:"resources"`
	AutoDetectDir bool           `json:"autoDetectDir"`
	CurrentSrcDir string         `json:"currentSrcDir"`
}

// FileNode is one entry of a directory tree. ID is the absolute path.
type FileNode struct {
	ID       string     `json:"id"`
	Label    string     `json:"label"`
	IsFolder bool       `json:"isFolder"`
	Children []FileNode `json:"children"`
	ParentID *string    `json:"parentId,omitempty"`
}
