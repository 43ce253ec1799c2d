package connections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	dbconnector "resource2code"
	"resource2code/internal/storage"
	"resource2code/model"
)

// Resolver turns a stored data source id into connector settings.
type Resolver interface {
	Resolve(ctx context.Context, dataSourceID string) (dbconnector.ConnectionConfig, error)
}

type Store interface {
	GetDataSource(ctx context.Context, id string) (model.DataSource, error)
}

type resolver struct {
	store Store
}

func NewResolver(store Store) Resolver {
	return &resolver{store: store}
}

func (r *resolver) Resolve(ctx context.Context, dataSourceID string) (dbconnector.ConnectionConfig, error) {
	if strings.TrimSpace(dataSourceID) == "" {
		return dbconnector.ConnectionConfig{}, fmt.Errorf("data source id is required: %w", ErrInvalidInput)
	}
	if r.store == nil {
		return dbconnector.ConnectionConfig{}, ErrNotConfigured
	}
	ds, err := r.store.GetDataSource(ctx, dataSourceID)
	if errors.Is(err, storage.ErrNotFound) {
		return dbconnector.ConnectionConfig{}, fmt.Errorf("%s: %w", dataSourceID, ErrNotFound)
	}
	if err != nil {
		return dbconnector.ConnectionConfig{}, err
	}
	if !ds.DBType.Known() {
		return dbconnector.ConnectionConfig{}, fmt.Errorf("data source %s has unsupported type %q: %w", dataSourceID, string(ds.DBType), ErrInvalidInput)
	}
	return dbconnector.ConfigFromDataSource(ds), nil
}
