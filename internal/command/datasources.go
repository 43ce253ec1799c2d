package command

import (
	"context"
	"encoding/json"

	"resource2code/internal/bus"
	"resource2code/model"
)

type dataSourceArgs struct {
	DS model.DataSource `json:"ds"`
}

func (s *Service) listDataSources(ctx context.Context, raw json.RawMessage) (any, error) {
	if err := decodeArgs(raw, &struct{}{}); err != nil {
		return nil, err
	}
	list, err := s.store.ListDataSources(ctx)
	if err != nil {
		return nil, databaseError(err)
	}
	return list, nil
}

func (s *Service) createDataSource(ctx context.Context, raw json.RawMessage) (any, error) {
	var args dataSourceArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("ds.name", args.DS.Name); err != nil {
		return nil, err
	}
	id, err := s.store.CreateDataSource(ctx, args.DS)
	if err != nil {
		return nil, databaseError(err)
	}
	s.publish(bus.SubjectDataSourceCreated, id)
	return id, nil
}

func (s *Service) getDataSource(ctx context.Context, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("id", args.ID.String()); err != nil {
		return nil, err
	}
	ds, err := s.store.GetDataSource(ctx, args.ID.String())
	if err != nil {
		return nil, databaseError(err)
	}
	return ds, nil
}

func (s *Service) updateDataSource(ctx context.Context, raw json.RawMessage) (any, error) {
	var args dataSourceArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("ds.id", args.DS.ID); err != nil {
		return nil, err
	}
	if err := required("ds.name", args.DS.Name); err != nil {
		return nil, err
	}
	ok, err := s.store.UpdateDataSource(ctx, args.DS)
	if err != nil {
		return nil, databaseError(err)
	}
	if ok {
		s.publish(bus.SubjectDataSourceUpdated, args.DS.ID)
	}
	return ok, nil
}

func (s *Service) deleteDataSource(ctx context.Context, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("id", args.ID.String()); err != nil {
		return nil, err
	}
	ok, err := s.store.DeleteDataSource(ctx, args.ID.String())
	if err != nil {
		return nil, databaseError(err)
	}
	if ok {
		s.publish(bus.SubjectDataSourceDeleted, args.ID.String())
	}
	return ok, nil
}
