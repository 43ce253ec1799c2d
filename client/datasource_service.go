package client

import (
	"context"
	"fmt"

	"resource2code/model"
)

type DataSourceService struct {
	caller
}

func NewDataSourceService(inv Invoker, notify Notifier) *DataSourceService {
	return &DataSourceService{caller: newCaller(inv, notify)}
}

// List never returns a nil slice on success.
func (s *DataSourceService) List(ctx context.Context) ([]model.DataSource, error) {
	var out []model.DataSource
	if err := s.call(ctx, "list data sources", "failed to list data sources", model.CmdGetAllDataSources, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.DataSource{}
	}
	return out, nil
}

// Create stores ds under a backend-assigned id and returns ds with that id.
// Any id already set on ds is ignored and DBType aliases are normalized, so
// the result matches what Find returns later.
func (s *DataSourceService) Create(ctx context.Context, ds model.DataSource) (model.DataSource, error) {
	const op, prefix = "create data source", "failed to create data source"
	ds.ID = ""
	ds.DBType = model.ParseDBType(string(ds.DBType))
	var id model.ID
	if err := s.call(ctx, op, prefix, model.CmdCreateDataSource, map[string]any{"ds": ds}, &id); err != nil {
		return model.DataSource{}, err
	}
	if id == "" {
		return model.DataSource{}, s.fail(op, prefix, model.CmdCreateDataSource, errEmptyID)
	}
	ds.ID = id.String()
	return ds, nil
}

func (s *DataSourceService) Find(ctx context.Context, id string) (model.DataSource, error) {
	var out model.DataSource
	if err := s.call(ctx, "find data source", "failed to find data source", model.CmdGetDataSource, map[string]any{"id": id}, &out); err != nil {
		return model.DataSource{}, err
	}
	return out, nil
}

// Update returns ds when the backend applied it and nil when no stored
// record matched.
func (s *DataSourceService) Update(ctx context.Context, ds model.DataSource) (*model.DataSource, error) {
	var ok bool
	if err := s.call(ctx, "update data source", "failed to update data source", model.CmdUpdateDataSource, map[string]any{"ds": ds}, &ok); err != nil {
		return nil, err
	}
	if !ok {
		s.notify.Notify(fmt.Sprintf("data source %s was not updated", ds.ID))
		return nil, nil
	}
	return &ds, nil
}

// Delete reports whether a record was removed.
func (s *DataSourceService) Delete(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := s.call(ctx, "delete data source", "failed to delete data source", model.CmdDeleteDataSource, map[string]any{"id": id}, &ok); err != nil {
		return false, err
	}
	if !ok {
		s.notify.Notify(fmt.Sprintf("data source %s was not deleted", id))
	}
	return ok, nil
}
