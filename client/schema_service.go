package client

import (
	"context"

	"resource2code/model"
)

type SchemaService struct {
	caller
}

func NewSchemaService(inv Invoker, notify Notifier) *SchemaService {
	return &SchemaService{caller: newCaller(inv, notify)}
}

// Tables lists the tables of a stored data source.
func (s *SchemaService) Tables(ctx context.Context, dataSourceID string) ([]string, error) {
	var out []string
	if err := s.call(ctx, "list tables", "failed to list tables", model.CmdGetTables, map[string]any{"id": dataSourceID}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// TablesOf connects with an unsaved profile, which doubles as a connection
// test.
func (s *SchemaService) TablesOf(ctx context.Context, ds model.DataSource) ([]string, error) {
	var out []string
	if err := s.call(ctx, "list tables", "failed to connect to data source", model.CmdGetTables, map[string]any{"ds": ds}, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

// TableSchema returns the CREATE TABLE text of table.
func (s *SchemaService) TableSchema(ctx context.Context, dataSourceID, table string) (string, error) {
	var out string
	err := s.call(ctx, "get table schema", "failed to load schema of "+table, model.CmdGetTableSchema,
		map[string]any{"id": dataSourceID, "table": table}, &out)
	return out, err
}
