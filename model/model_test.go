package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDBType(t *testing.T) {
	tests := []struct {
		in    string
		want  DBType
		known bool
	}{
		{"mysql", DBTypeMySQL, true},
		{"PostgreSQL", DBTypePostgres, true},
		{" mssql ", DBTypeSQLServer, true},
		{"sqlite", DBTypeSQLite, true},
		{"oracle", DBType("oracle"), false},
		{"", DBTypeUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseDBType(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.known, got.Known())
		})
	}
}

func TestDataSourceDecodesAliasedType(t *testing.T) {
	var ds DataSource
	require.NoError(t, json.Unmarshal([]byte(`{"id":"","name":"pg","dbType":"postgresql","host":"db","port":5432,"username":"u","password":"p"}`), &ds))
	assert.Equal(t, DBTypePostgres, ds.DBType)
	assert.Nil(t, ds.Database)
	assert.Equal(t, "", ds.DatabaseName())
}

func TestIDAcceptsNumberAndString(t *testing.T) {
	var fromNumber, fromString ID
	require.NoError(t, json.Unmarshal([]byte(`1`), &fromNumber))
	require.NoError(t, json.Unmarshal([]byte(`"1"`), &fromString))
	assert.Equal(t, fromString, fromNumber)
	assert.Equal(t, "1", fromNumber.String())

	var bad ID
	assert.Error(t, json.Unmarshal([]byte(`null`), &bad))
	assert.Error(t, json.Unmarshal([]byte(`true`), &bad))
}

func TestTaskResultTaggedEncoding(t *testing.T) {
	data, err := json.Marshal(CodeGenResult([]CodeFile{{Name: "a.go", Path: "/src/a.go", Content: "package a"}}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"CodeGen","data":{"files":[{"name":"a.go","path":"/src/a.go","content":"package a"}]}}`, string(data))

	empty, err := json.Marshal(EmptyResult())
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"Empty"}`, string(empty))

	var decoded TaskResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, ResultCodeGen, decoded.Type)
	require.Len(t, decoded.Files, 1)
	assert.Equal(t, "a.go", decoded.Files[0].Name)
}

func TestTaskResultRejectsUnknownType(t *testing.T) {
	var r TaskResult
	assert.Error(t, json.Unmarshal([]byte(`{"type":"Mystery","data":{}}`), &r))
}

func TestTaskStatusFinished(t *testing.T) {
	assert.False(t, TaskPending.Finished())
	assert.False(t, TaskRunning.Finished())
	assert.True(t, TaskCompleted.Finished())
	assert.True(t, TaskCancelled.Finished())
	assert.True(t, TaskFailed.Finished())
}
