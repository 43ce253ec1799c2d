package connections

import (
	"context"
	"fmt"
	"strings"

	dbconnector "resource2code"
	"resource2code/model"
)

// Schemas answers table questions about stored data sources by opening a
// short-lived connector per call.
type Schemas struct {
	resolver Resolver
	factory  dbconnector.Factory
}

// NewSchemas uses dbconnector.NewConnector when factory is nil.
func NewSchemas(resolver Resolver, factory dbconnector.Factory) *Schemas {
	return &Schemas{resolver: resolver, factory: factory}
}

func (s *Schemas) ListTables(ctx context.Context, dataSourceID string) ([]string, error) {
	cfg, err := s.resolve(ctx, dataSourceID)
	if err != nil {
		return nil, err
	}
	return dbconnector.ListTables(ctx, s.factory, cfg)
}

// ListTablesOf lists tables for an unsaved profile, used to test a data
// source before it is stored.
func (s *Schemas) ListTablesOf(ctx context.Context, ds model.DataSource) ([]string, error) {
	if !ds.DBType.Known() {
		return nil, fmt.Errorf("unsupported database type %q: %w", string(ds.DBType), ErrInvalidInput)
	}
	return dbconnector.ListTables(ctx, s.factory, dbconnector.ConfigFromDataSource(ds))
}

// TableSchema returns the CREATE TABLE text of table in the data source.
func (s *Schemas) TableSchema(ctx context.Context, dataSourceID, table string) (string, error) {
	if strings.TrimSpace(table) == "" {
		return "", fmt.Errorf("table name is required: %w", ErrInvalidInput)
	}
	cfg, err := s.resolve(ctx, dataSourceID)
	if err != nil {
		return "", err
	}
	return dbconnector.TableSchemaText(ctx, s.factory, cfg, table)
}

func (s *Schemas) resolve(ctx context.Context, dataSourceID string) (dbconnector.ConnectionConfig, error) {
	if s == nil || s.resolver == nil {
		return dbconnector.ConnectionConfig{}, ErrNotConfigured
	}
	return s.resolver.Resolve(ctx, dataSourceID)
}
