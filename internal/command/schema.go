package command

import (
	"context"
	"encoding/json"
	"errors"

	"resource2code/model"
)

var errNoSchemas = &Error{Kind: KindOther, Err: errors.New("schema inspection is not configured")}

type tablesArgs struct {
	DS *model.DataSource `json:"ds,omitempty"`
	ID model.ID          `json:"id"`
}

type tableSchemaArgs struct {
	ID    model.ID `json:"id"`
	Table string   `json:"table"`
}

// getTables accepts either an unsaved profile as "ds" or a stored id.
func (s *Service) getTables(ctx context.Context, raw json.RawMessage) (any, error) {
	var args tablesArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if s.schemas == nil {
		return nil, errNoSchemas
	}
	var (
		tables []string
		err    error
	)
	switch {
	case args.DS != nil && args.ID != "":
		return nil, invalid("pass either ds or id, not both")
	case args.DS != nil:
		tables, err = s.schemas.ListTablesOf(ctx, *args.DS)
	case args.ID != "":
		tables, err = s.schemas.ListTables(ctx, args.ID.String())
	default:
		return nil, invalid("ds or id is required")
	}
	if err != nil {
		return nil, databaseError(err)
	}
	if tables == nil {
		tables = []string{}
	}
	return tables, nil
}

func (s *Service) getTableSchema(ctx context.Context, raw json.RawMessage) (any, error) {
	var args tableSchemaArgs
	if err := decodeArgs(raw, &args); err != nil {
		return nil, err
	}
	if err := required("id", args.ID.String()); err != nil {
		return nil, err
	}
	if err := required("table", args.Table); err != nil {
		return nil, err
	}
	if s.schemas == nil {
		return nil, errNoSchemas
	}
	ddl, err := s.schemas.TableSchema(ctx, args.ID.String(), args.Table)
	if err != nil {
		return nil, databaseError(err)
	}
	return ddl, nil
}
