package command

import (
	"context"
	"encoding/json"
)

// getConfig returns null for a missing key.
func (s *Service) getConfig(ctx context.Context, raw json.RawMessage) (any, error) {
	var args keyArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("key", args.Key); err != nil {
		return nil, err
	}
	value, found, err := s.store.GetConfig(ctx, args.Key)
	if err != nil {
		return nil, databaseError(err)
	}
	if !found {
		return nil, nil
	}
	return value, nil
}

func (s *Service) setConfig(ctx context.Context, raw json.RawMessage) (any, error) {
	var args setConfigArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("key", args.Key); err != nil {
		return nil, err
	}
	ok, err := s.store.SetConfig(ctx, args.Key, args.Value)
	if err != nil {
		return nil, databaseError(err)
	}
	return ok, nil
}

func (s *Service) deleteConfig(ctx context.Context, raw json.RawMessage) (any, error) {
	var args keyArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("key", args.Key); err != nil {
		return nil, err
	}
	ok, err := s.store.DeleteConfig(ctx, args.Key)
	if err != nil {
		return nil, databaseError(err)
	}
	return ok, nil
}
