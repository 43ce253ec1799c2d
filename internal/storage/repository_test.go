package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"resource2code/internal/crypto"
	"resource2code/model"
)

func newTestRepo(t *testing.T, enc crypto.Encryptor) *Repository {
	t.Helper()
	store, err := Open(Config{Driver: "sqlite", Path: filepath.Join(t.TempDir(), "test.db")}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return NewRepository(store, enc)
}

func strPtr(s string) *string { return &s }

func TestDataSourceLifecycle(t *testing.T) {
	repo := newTestRepo(t, nil)
	ctx := context.Background()

	list, err := repo.ListDataSources(ctx)
	require.NoError(t, err)
	assert.NotNil(t, list)
	assert.Empty(t, list)

	input := model.DataSource{Name: "mysql-1", DBType: model.DBTypeMySQL, Host: "localhost", Port: 3306, Username: "root", Password: "x", Database: strPtr("shop")}
	id, err := repo.CreateDataSource(ctx, input)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.GetDataSource(ctx, id)
	require.NoError(t, err)
	input.ID = id
	assert.Equal(t, input, got)

	got.Port = 3307
	got.ExtraParams = strPtr("charset=utf8mb4")
	ok, err := repo.UpdateDataSource(ctx, got)
	require.NoError(t, err)
	assert.True(t, ok)

	reloaded, err := repo.GetDataSource(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, 3307, reloaded.Port)
	assert.Equal(t, "charset=utf8mb4", reloaded.ExtraParamsValue())

	deleted, err := repo.DeleteDataSource(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.GetDataSource(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDataSourceMissingRows(t *testing.T) {
	repo := newTestRepo(t, nil)
	ctx := context.Background()

	ok, err := repo.UpdateDataSource(ctx, model.DataSource{ID: "missing", Name: "x", DBType: model.DBTypeMySQL})
	require.NoError(t, err)
	assert.False(t, ok)

	deleted, err := repo.DeleteDataSource(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestDataSourcePasswordEncryptedAtRest(t *testing.T) {
	enc, err := crypto.NewAesGcmEncryptor([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)
	repo := newTestRepo(t, enc)
	ctx := context.Background()

	id, err := repo.CreateDataSource(ctx, model.DataSource{Name: "pg", DBType: model.DBTypePostgres, Password: "hunter2"})
	require.NoError(t, err)

	var rec dataSourceRecord
	require.NoError(t, repo.Store.DB.Where("id = ?", id).Take(&rec).Error)
	assert.NotEqual(t, "hunter2", rec.Password)

	got, err := repo.GetDataSource(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got.Password)
}

func TestRuleLifecycle(t *testing.T) {
	repo := newTestRepo(t, nil)
	ctx := context.Background()

	rules, err := repo.ListRules(ctx)
	require.NoError(t, err)
	assert.Empty(t, rules)

	id, err := repo.CreateRule(ctx, model.Rule{Name: "naming", Content: "use camelCase"})
	require.NoError(t, err)

	got, err := repo.GetRule(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, model.Rule{ID: id, Name: "naming", Content: "use camelCase"}, got)

	ok, err := repo.UpdateRule(ctx, model.Rule{ID: id, Name: "naming", Content: "use snake_case"})
	require.NoError(t, err)
	assert.True(t, ok)

	rules, err = repo.ListRules(ctx)
	require.NoError(t, err)
	require.Len(t, rules, 1)
	assert.Equal(t, "use snake_case", rules[0].Content)

	deleted, err := repo.DeleteRule(ctx, id)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, err = repo.GetRule(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestConfigUpsert(t *testing.T) {
	repo := newTestRepo(t, nil)
	ctx := context.Background()

	_, found, err := repo.GetConfig(ctx, model.ConfigRootSourcePath)
	require.NoError(t, err)
	assert.False(t, found)

	ok, err := repo.SetConfig(ctx, model.ConfigRootSourcePath, "/src")
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = repo.SetConfig(ctx, model.ConfigRootSourcePath, "/workspace/src")
	require.NoError(t, err)

	value, found, err := repo.GetConfig(ctx, model.ConfigRootSourcePath)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "/workspace/src", value)

	deleted, err := repo.DeleteConfig(ctx, model.ConfigRootSourcePath)
	require.NoError(t, err)
	assert.True(t, deleted)
	deleted, err = repo.DeleteConfig(ctx, model.ConfigRootSourcePath)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"}, zaptest.NewLogger(t))
	assert.Error(t, err)
	_, err = Open(Config{Driver: "postgres"}, zaptest.NewLogger(t))
	assert.Error(t, err)
}
