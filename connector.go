// file: connector.go
package dbconnector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
)

var (
	ErrTableNotFound = errors.New("table not found")

	// ErrInvalidConfig marks connection settings or identifiers rejected
	// before anything is sent to the database.
	ErrInvalidConfig = errors.New("invalid connection input")
)

// DbConnector inspects the schema of a single user database.
type DbConnector interface {
	TestConnection(ctx context.Context) error

	ListTables(ctx context.Context) ([]string, error)

	DescribeTable(ctx context.Context, table string) (*TableSchema, error)

	// TableDDL returns a CREATE TABLE statement for table, including index
	// definitions where the dialect keeps them separate.
	TableDDL(ctx context.Context, table string) (string, error)

	Close() error
}

type ConnectionConfig struct {
	Type        string // mysql | postgres | sqlserver | sqlite
	Host        string
	Port        int
	User        string
	Password    string
	Database    string // file path for sqlite
	SSLMode     string
	ExtraParams string // k=v&k=v, appended to the driver DSN
}

type ColumnInfo struct {
	Name     string
	Type     string
	Nullable bool
	IsPK     bool
}

type IndexInfo struct {
	Name    string
	Columns []string
	Unique  bool
	Primary bool
}

type TableSchema struct {
	Table   string
	Columns []ColumnInfo
	Indexes []IndexInfo
}

type baseConnector struct {
	cfg ConnectionConfig
	db  *sql.DB
}

func (b *baseConnector) Close() error {
	if b.db == nil {
		return nil
	}
	return b.db.Close()
}

// queryStrings runs a query returning a single text column.
func (b *baseConnector) queryStrings(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	results := []string{}
	for rows.Next() {
		var value string
		if err := rows.Scan(&value); err != nil {
			return nil, err
		}
		results = append(results, value)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_$]*$`)

func splitIdentifier(ident string) ([]string, error) {
	trimmed := strings.TrimSpace(ident)
	if trimmed == "" {
		return nil, fmt.Errorf("identifier is empty: %w", ErrInvalidConfig)
	}
	parts := strings.Split(trimmed, ".")
	for _, part := range parts {
		if part == "" {
			return nil, fmt.Errorf("identifier contains empty segment: %w", ErrInvalidConfig)
		}
		if !identPattern.MatchString(part) {
			return nil, fmt.Errorf("identifier segment %q is invalid: %w", part, ErrInvalidConfig)
		}
	}
	return parts, nil
}

func quoteQualified(ident string, maxSegments int, quote func(string) string) (string, []string, error) {
	parts, err := splitIdentifier(ident)
	if err != nil {
		return "", nil, err
	}
	if maxSegments > 0 && len(parts) > maxSegments {
		return "", nil, fmt.Errorf("identifier %q has too many segments: %w", ident, ErrInvalidConfig)
	}
	quoted := make([]string, len(parts))
	for i, part := range parts {
		quoted[i] = quote(part)
	}
	return strings.Join(quoted, "."), parts, nil
}

func quoteList(names []string, quote func(string) string) (string, error) {
	if len(names) == 0 {
		return "", fmt.Errorf("no columns provided: %w", ErrInvalidConfig)
	}
	quoted := make([]string, len(names))
	for i, name := range names {
		parts, err := splitIdentifier(name)
		if err != nil || len(parts) != 1 {
			return "", fmt.Errorf("invalid column name %q: %w", name, ErrInvalidConfig)
		}
		quoted[i] = quote(name)
	}
	return strings.Join(quoted, ", "), nil
}

func doubleQuote(s string) string { return `"` + s + `"` }

// parseExtraParams validates a k=v&k=v string. Keys keep their first value.
func parseExtraParams(raw string) (url.Values, error) {
	raw = strings.TrimPrefix(strings.TrimSpace(raw), "?")
	if raw == "" {
		return url.Values{}, nil
	}
	values, err := url.ParseQuery(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid extra params: %v: %w", err, ErrInvalidConfig)
	}
	return values, nil
}

func sortedKeys(values url.Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func ensureSlice[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func sortIndexColumns(indexes []IndexInfo) []IndexInfo {
	for i := range indexes {
		indexes[i].Columns = ensureSlice(indexes[i].Columns)
	}
	sort.SliceStable(indexes, func(i, j int) bool {
		return indexes[i].Name < indexes[j].Name
	})
	return indexes
}

// renderCreateTable builds DDL for dialects that cannot hand it back
// directly. quote is applied to every identifier.
func renderCreateTable(qualifiedName string, schema TableSchema, quote func(string) string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", qualifiedName)
	lines := make([]string, 0, len(schema.Columns)+1)
	pk := []string{}
	for _, col := range schema.Columns {
		line := fmt.Sprintf("    %s %s", quote(col.Name), strings.ToUpper(col.Type))
		if !col.Nullable {
			line += " NOT NULL"
		}
		lines = append(lines, line)
		if col.IsPK {
			pk = append(pk, quote(col.Name))
		}
	}
	if len(pk) > 0 {
		lines = append(lines, fmt.Sprintf("    PRIMARY KEY (%s)", strings.Join(pk, ", ")))
	}
	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);")
	for _, idx := range schema.Indexes {
		if idx.Primary || len(idx.Columns) == 0 {
			continue
		}
		cols, err := quoteList(idx.Columns, quote)
		if err != nil {
			// expression indexes have no plain column list
			continue
		}
		kind := "INDEX"
		if idx.Unique {
			kind = "UNIQUE INDEX"
		}
		fmt.Fprintf(&b, "\nCREATE %s %s ON %s (%s);", kind, quote(idx.Name), qualifiedName, cols)
	}
	return b.String()
}
