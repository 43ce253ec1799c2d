package command

import (
	"context"

	"go.uber.org/zap"

	"resource2code/internal/bus"
	"resource2code/internal/task"
	"resource2code/model"
)

type DataSourceStore interface {
	ListDataSources(ctx context.Context) ([]model.DataSource, error)
	CreateDataSource(ctx context.Context, ds model.DataSource) (string, error)
	GetDataSource(ctx context.Context, id string) (model.DataSource, error)
	UpdateDataSource(ctx context.Context, ds model.DataSource) (bool, error)
	DeleteDataSource(ctx context.Context, id string) (bool, error)
}

type RuleStore interface {
	ListRules(ctx context.Context) ([]model.Rule, error)
	CreateRule(ctx context.Context, rule model.Rule) (string, error)
	GetRule(ctx context.Context, id string) (model.Rule, error)
	UpdateRule(ctx context.Context, rule model.Rule) (bool, error)
	DeleteRule(ctx context.Context, id string) (bool, error)
}

type ConfigStore interface {
	GetConfig(ctx context.Context, key string) (string, bool, error)
	SetConfig(ctx context.Context, key, value string) (bool, error)
	DeleteConfig(ctx context.Context, key string) (bool, error)
}

// Store is implemented by storage.Repository.
type Store interface {
	DataSourceStore
	RuleStore
	ConfigStore
}

type SchemaService interface {
	ListTables(ctx context.Context, dataSourceID string) ([]string, error)
	ListTablesOf(ctx context.Context, ds model.DataSource) ([]string, error)
	TableSchema(ctx context.Context, dataSourceID, table string) (string, error)
}

// TaskRunner is implemented by task.Manager.
type TaskRunner interface {
	Execute(t task.Task) string
	Cancel(id string) error
	Finished(id string) bool
	Logs(id string) ([]model.TaskLog, bool)
	Result(id string) (model.TaskResult, bool)
}

type TaskFactory func(req model.CodeGenRequest) task.Task

type Options struct {
	Store     Store
	Schemas   SchemaService
	Tasks     TaskRunner
	NewTask   TaskFactory
	Publisher bus.Publisher
	Logger    *zap.Logger
}

// Service holds the collaborators of every command handler.
type Service struct {
	store     Store
	schemas   SchemaService
	tasks     TaskRunner
	newTask   TaskFactory
	publisher bus.Publisher
	logger    *zap.Logger
}

func NewService(opts Options) *Service {
	if opts.Publisher == nil {
		opts.Publisher = bus.NopPublisher{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		store:     opts.Store,
		schemas:   opts.Schemas,
		tasks:     opts.Tasks,
		newTask:   opts.NewTask,
		publisher: opts.Publisher,
		logger:    opts.Logger.Named("command"),
	}
}

// Register adds every backend command to r, plus the legacy spelling of
// is_file_existed.
func (s *Service) Register(r *Registry) {
	r.Register(model.CmdGetAllDataSources, s.listDataSources)
	r.Register(model.CmdCreateDataSource, s.createDataSource)
	r.Register(model.CmdGetDataSource, s.getDataSource)
	r.Register(model.CmdUpdateDataSource, s.updateDataSource)
	r.Register(model.CmdDeleteDataSource, s.deleteDataSource)

	r.Register(model.CmdGetAllSamples, s.listRules)
	r.Register(model.CmdCreateSample, s.createRule)
	r.Register(model.CmdGetSample, s.getRule)
	r.Register(model.CmdUpdateSample, s.updateRule)
	r.Register(model.CmdDeleteSample, s.deleteRule)

	r.Register(model.CmdGetTables, s.getTables)
	r.Register(model.CmdGetTableSchema, s.getTableSchema)

	r.Register(model.CmdGetConfig, s.getConfig)
	r.Register(model.CmdSetConfig, s.setConfig)
	r.Register(model.CmdDeleteConfig, s.deleteConfig)

	r.Register(model.CmdProcessQuestion, s.processQuestion)
	r.Register(model.CmdCancelTask, s.cancelTask)
	r.Register(model.CmdTaskFinished, s.taskFinished)
	r.Register(model.CmdTaskLogs, s.taskLogs)
	r.Register(model.CmdTaskResult, s.taskResult)

	r.Register(model.CmdSaveFile, s.saveFile)
	r.Register(model.CmdFileExists, s.fileExists)
	r.Register(model.CmdFileExistsLegacy, s.fileExists)
	r.Register(model.CmdGetFileSystem, s.fileSystem)
}

// publish never fails the command; delivery problems are only logged.
func (s *Service) publish(subject, id string) {
	if err := s.publisher.Publish(subject, bus.NewEvent(id)); err != nil {
		s.logger.Warn("failed to publish event", zap.String("subject", subject), zap.String("id", id), zap.Error(err))
	}
}
