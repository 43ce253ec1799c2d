package client

import (
	"context"

	"resource2code/model"
)

type ConfigService struct {
	caller
}

func NewConfigService(inv Invoker, notify Notifier) *ConfigService {
	return &ConfigService{caller: newCaller(inv, notify)}
}

// Get reports whether key is set.
func (s *ConfigService) Get(ctx context.Context, key string) (string, bool, error) {
	var out *string
	if err := s.call(ctx, "get config", "failed to read setting "+key, model.CmdGetConfig, map[string]any{"key": key}, &out); err != nil {
		return "", false, err
	}
	if out == nil {
		return "", false, nil
	}
	return *out, true, nil
}

func (s *ConfigService) Set(ctx context.Context, key, value string) (bool, error) {
	var ok bool
	err := s.call(ctx, "set config", "failed to save setting "+key, model.CmdSetConfig, map[string]any{"key": key, "value": value}, &ok)
	return ok, err
}

func (s *ConfigService) Delete(ctx context.Context, key string) (bool, error) {
	var ok bool
	err := s.call(ctx, "delete config", "failed to delete setting "+key, model.CmdDeleteConfig, map[string]any{"key": key}, &ok)
	return ok, err
}
