package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"resource2code/client"
	"resource2code/model"
)

type dataSourceLister interface {
	List(ctx context.Context) ([]model.DataSource, error)
}

type ruleReader interface {
	List(ctx context.Context) ([]model.Rule, error)
	Find(ctx context.Context, id string) (model.Rule, error)
}

type schemaReader interface {
	Tables(ctx context.Context, dataSourceID string) ([]string, error)
	TableSchema(ctx context.Context, dataSourceID, table string) (string, error)
}

type toolset struct {
	dataSources dataSourceLister
	rules       ruleReader
	schemas     schemaReader
}

func newToolset(ds dataSourceLister, rules ruleReader, schemas schemaReader) *toolset {
	return &toolset{dataSources: ds, rules: rules, schemas: schemas}
}

func (t *toolset) register(s *server.MCPServer) {
	s.AddTool(mcp.NewTool("list_datasources",
		mcp.WithDescription("Lists the stored database connections. Passwords are omitted."),
	), t.listDataSources)

	s.AddTool(mcp.NewTool("list_tables",
		mcp.WithDescription("Lists the tables of a stored data source"),
		mcp.WithString("datasource_id", mcp.Required(), mcp.Description("Id returned by list_datasources")),
	), t.listTables)

	s.AddTool(mcp.NewTool("get_table_schema",
		mcp.WithDescription("Returns the CREATE TABLE statement of a table"),
		mcp.WithString("datasource_id", mcp.Required(), mcp.Description("Id returned by list_datasources")),
		mcp.WithString("table", mcp.Required(), mcp.Description("Table name as returned by list_tables")),
	), t.tableSchema)

	s.AddTool(mcp.NewTool("list_rules",
		mcp.WithDescription("Lists the stored coding rules and code samples"),
	), t.listRules)

	s.AddTool(mcp.NewTool("get_rule",
		mcp.WithDescription("Returns one coding rule or code sample"),
		mcp.WithString("id", mcp.Required()),
	), t.getRule)
}

type dataSourceSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	DBType   string `json:"dbType"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database,omitempty"`
}

func (t *toolset) listDataSources(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list, err := t.dataSources.List(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	out := make([]dataSourceSummary, 0, len(list))
	for _, ds := range list {
		out = append(out, dataSourceSummary{
			ID:       ds.ID,
			Name:     ds.Name,
			DBType:   ds.DBType.String(),
			Host:     ds.Host,
			Port:     ds.Port,
			Database: ds.DatabaseName(),
		})
	}
	return jsonResult(out)
}

func (t *toolset) listTables(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("datasource_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	tables, err := t.schemas.Tables(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(tables)
}

func (t *toolset) tableSchema(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("datasource_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	table, err := req.RequireString("table")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ddl, err := t.schemas.TableSchema(ctx, id, table)
	if err != nil {
		return errorResult(err), nil
	}
	return mcp.NewToolResultText(ddl), nil
}

func (t *toolset) listRules(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	rules, err := t.rules.List(ctx)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(rules)
}

func (t *toolset) getRule(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rule, err := t.rules.Find(ctx, id)
	if err != nil {
		return errorResult(err), nil
	}
	return jsonResult(rule)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

// errorResult reports backend failures as tool errors so the assistant sees
// them instead of a protocol error.
func errorResult(err error) *mcp.CallToolResult {
	if errors.Is(err, model.ErrNotFound) {
		return mcp.NewToolResultError("not found: " + err.Error())
	}
	var callErr *client.CallError
	if errors.As(err, &callErr) {
		return mcp.NewToolResultError(callErr.Err.Error())
	}
	return mcp.NewToolResultError(err.Error())
}
