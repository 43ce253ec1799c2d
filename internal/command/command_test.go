package command

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	dbconnector "resource2code"
	"resource2code/internal/bus"
	"resource2code/internal/connections"
	"resource2code/internal/storage"
	"resource2code/internal/task"
	"resource2code/model"
)

type recordingPublisher struct {
	mu       sync.Mutex
	subjects []string
	events   []bus.Event
	err      error
}

func (p *recordingPublisher) Publish(subject string, payload any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subjects = append(p.subjects, subject)
	if ev, ok := payload.(bus.Event); ok {
		p.events = append(p.events, ev)
	}
	return p.err
}

func (p *recordingPublisher) Close() {}

type fakeSchemas struct {
	tables []string
	ddl    string
	err    error
	lastID string
}

func (f *fakeSchemas) ListTables(_ context.Context, id string) ([]string, error) {
	f.lastID = id
	return f.tables, f.err
}

func (f *fakeSchemas) ListTablesOf(_ context.Context, ds model.DataSource) ([]string, error) {
	f.lastID = "inline:" + ds.Name
	return f.tables, f.err
}

func (f *fakeSchemas) TableSchema(_ context.Context, id, table string) (string, error) {
	f.lastID = id
	return f.ddl, f.err
}

type instantTask struct {
	result model.TaskResult
}

func (t instantTask) Run(context.Context, chan<- model.TaskLog) (model.TaskResult, error) {
	return t.result, nil
}

func (instantTask) Cancel() {}

type fixture struct {
	registry  *Registry
	publisher *recordingPublisher
	schemas   *fakeSchemas
	tasks     *task.Manager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := zaptest.NewLogger(t)
	store, err := storage.Open(storage.Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "cmd.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	tasks := task.NewManager(logger, 0)
	t.Cleanup(tasks.Stop)

	f := &fixture{
		registry:  NewRegistry(),
		publisher: &recordingPublisher{},
		schemas:   &fakeSchemas{},
		tasks:     tasks,
	}
	NewService(Options{
		Store:   storage.NewRepository(store, nil),
		Schemas: f.schemas,
		Tasks:   tasks,
		NewTask: func(req model.CodeGenRequest) task.Task {
			return instantTask{result: model.CodeGenResult([]model.CodeFile{{Name: "a.go", Path: "a.go", Content: req.Question}})}
		},
		Publisher: f.publisher,
		Logger:    logger,
	}).Register(f.registry)
	return f
}

func (f *fixture) call(t *testing.T, name string, args any, out any) error {
	t.Helper()
	var raw json.RawMessage
	if args != nil {
		b, err := json.Marshal(args)
		require.NoError(t, err)
		raw = b
	}
	res, err := f.registry.Dispatch(context.Background(), name, raw)
	if err != nil {
		return err
	}
	if out != nil {
		b, err := json.Marshal(res)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(b, out))
	}
	return nil
}

func TestRegistryNamesAndUnknown(t *testing.T) {
	f := newFixture(t)
	names := f.registry.Names()
	assert.Contains(t, names, model.CmdGetAllDataSources)
	assert.Contains(t, names, model.CmdGetFileSystem)
	assert.Len(t, names, 24)
	assert.Contains(t, names, model.CmdFileExistsLegacy)

	_, err := f.registry.Dispatch(context.Background(), "nope", nil)
	assert.ErrorIs(t, err, ErrUnknownCommand)
	assert.Equal(t, KindNotFound, Classify(err))
}

func TestDataSourceCommands(t *testing.T) {
	f := newFixture(t)

	var list []model.DataSource
	require.NoError(t, f.call(t, model.CmdGetAllDataSources, nil, &list))
	assert.NotNil(t, list)
	assert.Empty(t, list)

	ds := model.DataSource{Name: "mysql-1", DBType: model.DBTypeMySQL, Host: "localhost", Port: 3306, Username: "root", Password: "x"}
	var id string
	require.NoError(t, f.call(t, model.CmdCreateDataSource, map[string]any{"ds": ds}, &id))
	require.NotEmpty(t, id)

	var got model.DataSource
	require.NoError(t, f.call(t, model.CmdGetDataSource, map[string]any{"id": id}, &got))
	assert.Equal(t, "mysql-1", got.Name)

	got.Port = 3307
	var ok bool
	require.NoError(t, f.call(t, model.CmdUpdateDataSource, map[string]any{"ds": got}, &ok))
	assert.True(t, ok)

	missing := got
	missing.ID = "missing"
	require.NoError(t, f.call(t, model.CmdUpdateDataSource, map[string]any{"ds": missing}, &ok))
	assert.False(t, ok)

	require.NoError(t, f.call(t, model.CmdDeleteDataSource, map[string]any{"id": id}, &ok))
	assert.True(t, ok)
	require.NoError(t, f.call(t, model.CmdDeleteDataSource, map[string]any{"id": id}, &ok))
	assert.False(t, ok)

	err := f.call(t, model.CmdGetDataSource, map[string]any{"id": id}, &got)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Equal(t, KindNotFound, Classify(err))

	assert.Equal(t, []string{"datasource.created", "datasource.updated", "datasource.deleted"}, f.publisher.subjects)
	require.Len(t, f.publisher.events, 3)
	assert.Equal(t, id, f.publisher.events[0].ID)
}

func TestNumericIDArgument(t *testing.T) {
	f := newFixture(t)
	var ok bool
	require.NoError(t, f.call(t, model.CmdDeleteDataSource, map[string]any{"id": 42}, &ok))
	assert.False(t, ok)
}

func TestRuleCommands(t *testing.T) {
	f := newFixture(t)

	var id string
	require.NoError(t, f.call(t, model.CmdCreateSample, map[string]any{"cs": model.Rule{Name: "naming", Content: "camelCase"}}, &id))

	var rules []model.Rule
	require.NoError(t, f.call(t, model.CmdGetAllSamples, nil, &rules))
	require.Len(t, rules, 1)
	assert.Equal(t, id, rules[0].ID)

	var ok bool
	require.NoError(t, f.call(t, model.CmdUpdateSample, map[string]any{"cs": model.Rule{ID: id, Name: "naming", Content: "snake_case"}}, &ok))
	assert.True(t, ok)

	var rule model.Rule
	require.NoError(t, f.call(t, model.CmdGetSample, map[string]any{"id": id}, &rule))
	assert.Equal(t, "snake_case", rule.Content)

	require.NoError(t, f.call(t, model.CmdDeleteSample, map[string]any{"id": id}, &ok))
	assert.True(t, ok)
	assert.Equal(t, []string{"sample.created", "sample.updated", "sample.deleted"}, f.publisher.subjects)
}

func TestPublishFailureDoesNotFailCommand(t *testing.T) {
	f := newFixture(t)
	f.publisher.err = errors.New("nats down")

	var id string
	require.NoError(t, f.call(t, model.CmdCreateSample, map[string]any{"cs": model.Rule{Name: "r"}}, &id))
	assert.NotEmpty(t, id)
}

func TestStrictArguments(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.Dispatch(context.Background(), model.CmdGetDataSource, json.RawMessage(`{"id":"1","extra":true}`))
	assert.ErrorIs(t, err, ErrInvalidArgs)
	assert.Equal(t, KindInvalidInput, Classify(err))

	_, err = f.registry.Dispatch(context.Background(), model.CmdGetDataSource, json.RawMessage(`{"id":"1"} {}`))
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = f.registry.Dispatch(context.Background(), model.CmdGetAllDataSources, json.RawMessage(`{"unexpected":1}`))
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = f.registry.Dispatch(context.Background(), model.CmdGetDataSource, nil)
	assert.ErrorIs(t, err, ErrInvalidArgs)

	_, err = f.registry.Dispatch(context.Background(), model.CmdCreateDataSource, json.RawMessage(`{"ds":{"name":" "}}`))
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestTableCommands(t *testing.T) {
	f := newFixture(t)
	f.schemas.tables = []string{"users"}
	f.schemas.ddl = "CREATE TABLE users (id int);"

	var tables []string
	require.NoError(t, f.call(t, model.CmdGetTables, map[string]any{"id": "ds-1"}, &tables))
	assert.Equal(t, []string{"users"}, tables)
	assert.Equal(t, "ds-1", f.schemas.lastID)

	require.NoError(t, f.call(t, model.CmdGetTables, map[string]any{"ds": model.DataSource{Name: "draft", DBType: model.DBTypeSQLite}}, &tables))
	assert.Equal(t, "inline:draft", f.schemas.lastID)

	assert.ErrorIs(t, f.call(t, model.CmdGetTables, map[string]any{}, nil), ErrInvalidArgs)

	var ddl string
	require.NoError(t, f.call(t, model.CmdGetTableSchema, map[string]any{"id": "ds-1", "table": "users"}, &ddl))
	assert.Equal(t, "CREATE TABLE users (id int);", ddl)

	f.schemas.err = dbconnector.ErrTableNotFound
	err := f.call(t, model.CmdGetTableSchema, map[string]any{"id": "ds-1", "table": "nope"}, nil)
	assert.Equal(t, KindNotFound, Classify(err))

	f.schemas.err = connections.ErrNotFound
	err = f.call(t, model.CmdGetTables, map[string]any{"id": "gone"}, nil)
	assert.Equal(t, KindNotFound, Classify(err))

	f.schemas.err = errors.New("dial tcp: connection refused")
	err = f.call(t, model.CmdGetTables, map[string]any{"id": "ds-1"}, nil)
	assert.Equal(t, KindDatabase, Classify(err))
}

func TestConnectorValidationIsInvalidInput(t *testing.T) {
	logger := zaptest.NewLogger(t)
	dir := t.TempDir()
	store, err := storage.Open(storage.Config{Driver: "sqlite", Path: filepath.Join(dir, "cmd.db")}, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	repo := storage.NewRepository(store, nil)

	reg := NewRegistry()
	NewService(Options{
		Store:   repo,
		Schemas: connections.NewSchemas(connections.NewResolver(repo), nil),
		Logger:  logger,
	}).Register(reg)

	target := filepath.Join(dir, "target.db")
	id, err := repo.CreateDataSource(context.Background(), model.DataSource{Name: "local", DBType: model.DBTypeSQLite, Database: &target})
	require.NoError(t, err)

	args, err := json.Marshal(map[string]any{"id": id, "table": "a;b"})
	require.NoError(t, err)
	_, err = reg.Dispatch(context.Background(), model.CmdGetTableSchema, args)
	require.Error(t, err)
	assert.ErrorIs(t, err, dbconnector.ErrInvalidConfig)
	assert.Equal(t, KindInvalidInput, Classify(err))

	extra := "a=%zz"
	args, err = json.Marshal(map[string]any{"ds": model.DataSource{Name: "draft", DBType: model.DBTypeSQLite, Database: &target, ExtraParams: &extra}})
	require.NoError(t, err)
	_, err = reg.Dispatch(context.Background(), model.CmdGetTables, args)
	assert.Equal(t, KindInvalidInput, Classify(err))
}

func TestConfigCommands(t *testing.T) {
	f := newFixture(t)

	var value *string
	require.NoError(t, f.call(t, model.CmdGetConfig, map[string]any{"key": "root_source_path"}, &value))
	assert.Nil(t, value)

	var ok bool
	require.NoError(t, f.call(t, model.CmdSetConfig, map[string]any{"key": "root_source_path", "value": "/src"}, &ok))
	assert.True(t, ok)

	require.NoError(t, f.call(t, model.CmdGetConfig, map[string]any{"key": "root_source_path"}, &value))
	require.NotNil(t, value)
	assert.Equal(t, "/src", *value)

	require.NoError(t, f.call(t, model.CmdDeleteConfig, map[string]any{"key": "root_source_path"}, &ok))
	assert.True(t, ok)
}

func TestTaskCommands(t *testing.T) {
	f := newFixture(t)

	var id string
	require.NoError(t, f.call(t, model.CmdProcessQuestion, map[string]any{"request": model.CodeGenRequest{Question: "make it"}}, &id))
	require.NotEmpty(t, id)

	require.Eventually(t, func() bool {
		res, err := f.registry.Dispatch(context.Background(), model.CmdTaskFinished, json.RawMessage(`{"taskId":"`+id+`"}`))
		return err == nil && res == true
	}, 2*time.Second, 5*time.Millisecond)

	var result model.TaskResult
	require.NoError(t, f.call(t, model.CmdTaskResult, map[string]any{"taskId": id}, &result))
	require.Equal(t, model.ResultCodeGen, result.Type)
	assert.Equal(t, "make it", result.Files[0].Content)

	var logs []model.TaskLog
	require.NoError(t, f.call(t, model.CmdTaskLogs, map[string]any{"taskId": id}, &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "task completed", logs[0].Message)

	var missingLogs []model.TaskLog
	require.NoError(t, f.call(t, model.CmdTaskLogs, map[string]any{"taskId": "missing"}, &missingLogs))
	assert.Nil(t, missingLogs)

	var finished bool
	require.NoError(t, f.call(t, model.CmdTaskFinished, map[string]any{"taskId": "missing"}, &finished))
	assert.False(t, finished)

	err := f.call(t, model.CmdCancelTask, map[string]any{"taskId": "missing"}, nil)
	assert.ErrorIs(t, err, task.ErrTaskNotFound)

	err = f.call(t, model.CmdProcessQuestion, map[string]any{"request": model.CodeGenRequest{Question: "q", AutoDetectDir: true}}, nil)
	assert.ErrorIs(t, err, ErrInvalidArgs)
}

func TestFileCommands(t *testing.T) {
	f := newFixture(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "pkg", "a.go")

	var created bool
	file := model.CodeFile{Name: "a.go", Path: path, Content: "package pkg\n"}
	require.NoError(t, f.call(t, model.CmdSaveFile, map[string]any{"file": file}, &created))
	assert.True(t, created)
	require.NoError(t, f.call(t, model.CmdSaveFile, map[string]any{"file": file}, &created))
	assert.False(t, created)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package pkg\n", string(content))

	var exists bool
	require.NoError(t, f.call(t, model.CmdFileExists, map[string]any{"filePath": path}, &exists))
	assert.True(t, exists)

	exists = false
	require.NoError(t, f.call(t, model.CmdFileExistsLegacy, map[string]any{"filePath": path}, &exists))
	assert.True(t, exists)

	var tree []model.FileNode
	require.NoError(t, f.call(t, model.CmdGetFileSystem, map[string]any{"path": dir}, &tree))
	require.Len(t, tree, 1)
	assert.True(t, tree[0].IsFolder)
	require.Len(t, tree[0].Children, 1)
	assert.Equal(t, "pkg", tree[0].Children[0].Label)

	err = f.call(t, model.CmdGetFileSystem, map[string]any{"path": filepath.Join(dir, "missing")}, nil)
	assert.Equal(t, KindInvalidInput, Classify(err))
}
