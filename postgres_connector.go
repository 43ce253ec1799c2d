// file: postgres_connector.go
package dbconnector

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

const pgUndefinedTable = "42P01"

type PostgresConnector struct {
	baseConnector
}

func newPostgresConnector(cfg ConnectionConfig) (*PostgresConnector, error) {
	dsn, err := postgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := openDatabase("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres connection: %w", err)
	}
	return &PostgresConnector{baseConnector{cfg: cfg, db: db}}, nil
}

func postgresDSN(cfg ConnectionConfig) (string, error) {
	if cfg.Port == 0 {
		cfg.Port = 5432
	}
	extra, err := parseExtraParams(cfg.ExtraParams)
	if err != nil {
		return "", err
	}
	sslMode := strings.ToLower(strings.TrimSpace(cfg.SSLMode))
	if sslMode == "" {
		sslMode = extra.Get("sslmode")
	}
	if sslMode == "" {
		sslMode = "disable"
	}
	pairs := []string{
		"host=" + pqValue(cfg.Host),
		fmt.Sprintf("port=%d", cfg.Port),
		"user=" + pqValue(cfg.User),
		"password=" + pqValue(cfg.Password),
		"dbname=" + pqValue(cfg.Database),
		"sslmode=" + pqValue(sslMode),
	}
	for _, key := range sortedKeys(extra) {
		if key == "sslmode" {
			continue
		}
		// Keys are written unquoted into the key=value DSN.
		if !identPattern.MatchString(key) {
			return "", fmt.Errorf("invalid extra param name %q: %w", key, ErrInvalidConfig)
		}
		pairs = append(pairs, key+"="+pqValue(extra.Get(key)))
	}
	return strings.Join(pairs, " "), nil
}

// pqValue quotes a value for the key=value connection string syntax.
func pqValue(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v)
	return "'" + escaped + "'"
}

func (c *PostgresConnector) TestConnection(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping postgres: %w", err)
	}
	return nil
}

func (c *PostgresConnector) ListTables(ctx context.Context) ([]string, error) {
	tables, err := c.queryStrings(ctx, "SELECT table_name FROM information_schema.tables WHERE table_schema = current_schema() AND table_type = 'BASE TABLE' ORDER BY table_name")
	if err != nil {
		return nil, fmt.Errorf("list postgres tables: %w", err)
	}
	return tables, nil
}

func (c *PostgresConnector) DescribeTable(ctx context.Context, table string) (*TableSchema, error) {
	_, parts, err := quoteQualified(table, 2, doubleQuote)
	if err != nil {
		return nil, fmt.Errorf("invalid postgres table: %w", err)
	}
	relation := strings.Join(parts, ".")
	rows, err := c.db.QueryContext(ctx, `SELECT a.attname, format_type(a.atttypid, a.atttypmod), NOT a.attnotnull, COALESCE(a.attnum = ANY(i.indkey), false)
FROM pg_attribute a
LEFT JOIN pg_index i ON i.indrelid = a.attrelid AND i.indisprimary
WHERE a.attrelid = $1::regclass AND a.attnum > 0 AND NOT a.attisdropped
ORDER BY a.attnum`, relation)
	if err != nil {
		return nil, c.wrapTableErr(table, "query postgres columns", err)
	}
	defer rows.Close()
	columns := []ColumnInfo{}
	for rows.Next() {
		var col ColumnInfo
		if err := rows.Scan(&col.Name, &col.Type, &col.Nullable, &col.IsPK); err != nil {
			return nil, c.wrapTableErr(table, "scan postgres column", err)
		}
		columns = append(columns, col)
	}
	if err := rows.Err(); err != nil {
		return nil, c.wrapTableErr(table, "iterate postgres columns", err)
	}

	idxRows, err := c.db.QueryContext(ctx, `SELECT i.relname, ix.indisunique, ix.indisprimary, array_agg(a.attname ORDER BY x.n)
FROM pg_index ix
JOIN pg_class i ON i.oid = ix.indexrelid
JOIN LATERAL unnest(ix.indkey) WITH ORDINALITY AS x(attnum, n) ON true
JOIN pg_attribute a ON a.attrelid = ix.indrelid AND a.attnum = x.attnum
WHERE ix.indrelid = $1::regclass
GROUP BY i.relname, ix.indisunique, ix.indisprimary
ORDER BY i.relname`, relation)
	if err != nil {
		return nil, fmt.Errorf("query postgres indexes: %w", err)
	}
	defer idxRows.Close()
	indexes := []IndexInfo{}
	for idxRows.Next() {
		var idx IndexInfo
		if err := idxRows.Scan(&idx.Name, &idx.Unique, &idx.Primary, pq.Array(&idx.Columns)); err != nil {
			return nil, fmt.Errorf("scan postgres index: %w", err)
		}
		indexes = append(indexes, idx)
	}
	if err := idxRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate postgres indexes: %w", err)
	}
	return &TableSchema{Table: table, Columns: columns, Indexes: sortIndexColumns(indexes)}, nil
}

func (c *PostgresConnector) TableDDL(ctx context.Context, table string) (string, error) {
	quoted, _, err := quoteQualified(table, 2, doubleQuote)
	if err != nil {
		return "", fmt.Errorf("invalid postgres table: %w", err)
	}
	schema, err := c.DescribeTable(ctx, table)
	if err != nil {
		return "", err
	}
	return renderCreateTable(quoted, *schema, doubleQuote), nil
}

func (c *PostgresConnector) wrapTableErr(table, action string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pgUndefinedTable {
		return fmt.Errorf("postgres table %q: %w", table, ErrTableNotFound)
	}
	return fmt.Errorf("%s: %w", action, err)
}
