package client

import (
	"context"
	"fmt"

	"resource2code/model"
)

// RuleService manages code rules, stored by the backend as code samples.
type RuleService struct {
	caller
}

func NewRuleService(inv Invoker, notify Notifier) *RuleService {
	return &RuleService{caller: newCaller(inv, notify)}
}

func (s *RuleService) List(ctx context.Context) ([]model.Rule, error) {
	var out []model.Rule
	if err := s.call(ctx, "list rules", "failed to list rules", model.CmdGetAllSamples, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Rule{}
	}
	return out, nil
}

func (s *RuleService) Create(ctx context.Context, rule model.Rule) (model.Rule, error) {
	const op, prefix = "create rule", "failed to create rule"
	rule.ID = ""
	var id model.ID
	if err := s.call(ctx, op, prefix, model.CmdCreateSample, map[string]any{"cs": rule}, &id); err != nil {
		return model.Rule{}, err
	}
	if id == "" {
		return model.Rule{}, s.fail(op, prefix, model.CmdCreateSample, errEmptyID)
	}
	rule.ID = id.String()
	return rule, nil
}

func (s *RuleService) Find(ctx context.Context, id string) (model.Rule, error) {
	var out model.Rule
	if err := s.call(ctx, "find rule", "failed to find rule", model.CmdGetSample, map[string]any{"id": id}, &out); err != nil {
		return model.Rule{}, err
	}
	return out, nil
}

func (s *RuleService) Update(ctx context.Context, rule model.Rule) (*model.Rule, error) {
	var ok bool
	if err := s.call(ctx, "update rule", "failed to update rule", model.CmdUpdateSample, map[string]any{"cs": rule}, &ok); err != nil {
		return nil, err
	}
	if !ok {
		s.notify.Notify(fmt.Sprintf("rule %s was not updated", rule.ID))
		return nil, nil
	}
	return &rule, nil
}

func (s *RuleService) Delete(ctx context.Context, id string) (bool, error) {
	var ok bool
	if err := s.call(ctx, "delete rule", "failed to delete rule", model.CmdDeleteSample, map[string]any{"id": id}, &ok); err != nil {
		return false, err
	}
	if !ok {
		s.notify.Notify(fmt.Sprintf("rule %s was not deleted", id))
	}
	return ok, nil
}
