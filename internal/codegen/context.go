// Package codegen turns a user question and the resources attached to it
// into generated source files.
package codegen

import (
	"context"
	"fmt"
	"os"
	"strings"

	"resource2code/internal/files"
	"resource2code/model"
)

type RuleSource interface {
	GetRule(ctx context.Context, id string) (model.Rule, error)
}

type SchemaSource interface {
	TableSchema(ctx context.Context, dataSourceID, table string) (string, error)
}

// ContextBuilder assembles the prompt sent to the code-generation agent.
type ContextBuilder struct {
	Rules    RuleSource
	Schemas  SchemaSource
	ReadFile func(path string) ([]byte, error)
}

func NewContextBuilder(rules RuleSource, schemas SchemaSource) *ContextBuilder {
	return &ContextBuilder{Rules: rules, Schemas: schemas, ReadFile: os.ReadFile}
}

// Build renders the question, then each referenced rule, then each
// resource, then the directory outline when requested.
func (b *ContextBuilder) Build(ctx context.Context, req model.CodeGenRequest) (string, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# User question: %q\n\n", req.Question)

	for _, id := range req.SampleIDs {
		if b.Rules == nil {
			return "", fmt.Errorf("rule %s: no rule source configured", id)
		}
		rule, err := b.Rules.GetRule(ctx, id)
		if err != nil {
			return "", fmt.Errorf("load rule %s: %w", id, err)
		}
		writeSection(&sb, "## Referenced code sample: "+rule.Name, rule.Content)
	}

	for _, res := range req.Resources {
		if err := b.writeResource(ctx, &sb, res); err != nil {
			return "", err
		}
	}

	if req.AutoDetectDir {
		if outline := files.DirectoryOutline(req.CurrentSrcDir); outline != "" {
			sb.WriteString("# Current source directory structure:\n")
			sb.WriteString(outline)
		}
	}
	return sb.String(), nil
}

func (b *ContextBuilder) writeResource(ctx context.Context, sb *strings.Builder, res model.ResourceMeta) error {
	switch res.ResourceType {
	case model.ResourceTable:
		if b.Schemas == nil {
			return fmt.Errorf("table %s: no schema source configured", res.Name)
		}
		ddl, err := b.Schemas.TableSchema(ctx, res.Data, res.Name)
		if err != nil {
			return fmt.Errorf("load schema of table %s: %w", res.Name, err)
		}
		writeSection(sb, "## Referenced table schema: "+res.Name, ddl)
	case model.ResourceFile:
		read := b.ReadFile
		if read == nil {
			read = os.ReadFile
		}
		content, err := read(res.Name)
		if err != nil {
			return fmt.Errorf("read file %s: %w", res.Name, err)
		}
		writeSection(sb, "## Referenced file: "+res.Name, string(content))
	default:
		return fmt.Errorf("unsupported resource type %q", res.ResourceType)
	}
	return nil
}

func writeSection(sb *strings.Builder, title, body string) {
	sb.WriteString(title)
	sb.WriteString("\n```\n")
	sb.WriteString(strings.TrimRight(body, "\n"))
	sb.WriteString("\n```\n\n")
}
