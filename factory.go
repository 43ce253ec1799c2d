// file: factory.go
package dbconnector

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"resource2code/model"
)

// Factory opens a connector for a configuration. NewConnector is the
// production implementation; tests substitute fakes.
type Factory func(cfg ConnectionConfig) (DbConnector, error)

func NewConnector(cfg ConnectionConfig) (DbConnector, error) {
	if strings.TrimSpace(cfg.Type) == "" {
		return nil, fmt.Errorf("connection type is required: %w", ErrInvalidConfig)
	}
	switch model.ParseDBType(cfg.Type) {
	case model.DBTypeMySQL:
		return newMySQLConnector(cfg)
	case model.DBTypePostgres:
		return newPostgresConnector(cfg)
	case model.DBTypeSQLServer:
		return newMSSQLConnector(cfg)
	case model.DBTypeSQLite:
		return newSQLiteConnector(cfg)
	default:
		return nil, fmt.Errorf("unsupported database type %q: %w", cfg.Type, ErrInvalidConfig)
	}
}

// ConfigFromDataSource maps a stored profile onto a connector configuration.
func ConfigFromDataSource(ds model.DataSource) ConnectionConfig {
	return ConnectionConfig{
		Type:        string(ds.DBType),
		Host:        ds.Host,
		Port:        ds.Port,
		User:        ds.Username,
		Password:    ds.Password,
		Database:    ds.DatabaseName(),
		ExtraParams: ds.ExtraParamsValue(),
	}
}

// ListTables opens a short-lived connection and lists the tables of cfg.
func ListTables(ctx context.Context, factory Factory, cfg ConnectionConfig) ([]string, error) {
	conn, err := open(ctx, factory, cfg)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	return conn.ListTables(ctx)
}

// TableSchemaText opens a short-lived connection and returns the DDL of table.
func TableSchemaText(ctx context.Context, factory Factory, cfg ConnectionConfig, table string) (string, error) {
	conn, err := open(ctx, factory, cfg)
	if err != nil {
		return "", err
	}
	defer conn.Close()
	return conn.TableDDL(ctx, table)
}

func open(ctx context.Context, factory Factory, cfg ConnectionConfig) (DbConnector, error) {
	if factory == nil {
		factory = NewConnector
	}
	conn, err := factory(cfg)
	if err != nil {
		return nil, err
	}
	if err := conn.TestConnection(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func openDatabase(driverName, dsn string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}
	return db, nil
}
