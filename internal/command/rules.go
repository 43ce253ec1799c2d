package command

import (
	"context"
	"encoding/json"

	"resource2code/internal/bus"
	"resource2code/model"
)

// Rules travel as "cs" (code sample) on the wire.
type ruleArgs struct {
	Rule model.Rule `json:"cs"`
}

func (s *Service) listRules(ctx context.Context, raw json.RawMessage) (any, error) {
	if err := decodeArgs(raw, &struct{}{}); err != nil {
		return nil, err
	}
	rules, err := s.store.ListRules(ctx)
	if err != nil {
		return nil, databaseError(err)
	}
	return rules, nil
}

func (s *Service) createRule(ctx context.Context, raw json.RawMessage) (any, error) {
	var args ruleArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("cs.name", args.Rule.Name); err != nil {
		return nil, err
	}
	id, err := s.store.CreateRule(ctx, args.Rule)
	if err != nil {
		return nil, databaseError(err)
	}
	s.publish(bus.SubjectSampleCreated, id)
	return id, nil
}

func (s *Service) getRule(ctx context.Context, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("id", args.ID.String()); err != nil {
		return nil, err
	}
	rule, err := s.store.GetRule(ctx, args.ID.String())
	if err != nil {
		return nil, databaseError(err)
	}
	return rule, nil
}

func (s *Service) updateRule(ctx context.Context, raw json.RawMessage) (any, error) {
	var args ruleArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("cs.id", args.Rule.ID); err != nil {
		return nil, err
	}
	ok, err := s.store.UpdateRule(ctx, args.Rule)
	if err != nil {
		return nil, databaseError(err)
	}
	if ok {
		s.publish(bus.SubjectSampleUpdated, args.Rule.ID)
	}
	return ok, nil
}

func (s *Service) deleteRule(ctx context.Context, raw json.RawMessage) (any, error) {
	var args idArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("id", args.ID.String()); err != nil {
		return nil, err
	}
	ok, err := s.store.DeleteRule(ctx, args.ID.String())
	if err != nil {
		return nil, databaseError(err)
	}
	if ok {
		s.publish(bus.SubjectSampleDeleted, args.ID.String())
	}
	return ok, nil
}
