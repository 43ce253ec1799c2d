// file: sqlite_connector.go
package dbconnector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type SQLiteConnector struct {
	baseConnector
}

func newSQLiteConnector(cfg ConnectionConfig) (*SQLiteConnector, error) {
	dsn, err := sqliteDSN(cfg)
	if err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	db, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	return &SQLiteConnector{baseConnector{cfg: cfg, db: db}}, nil
}

func sqliteDSN(cfg ConnectionConfig) (string, error) {
	path := strings.TrimPrefix(strings.TrimSpace(cfg.Database), "sqlite://")
	if path == "" {
		return "", fmt.Errorf("sqlite database path is required: %w", ErrInvalidConfig)
	}
	extra, err := parseExtraParams(cfg.ExtraParams)
	if err != nil {
		return "", err
	}
	if len(extra) == 0 {
		return path, nil
	}
	return path + "?" + extra.Encode(), nil
}

func (c *SQLiteConnector) TestConnection(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping sqlite: %w", err)
	}
	return nil
}

func (c *SQLiteConnector) ListTables(ctx context.Context) ([]string, error) {
	tables, err := c.queryStrings(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list sqlite tables: %w", err)
	}
	return tables, nil
}

func (c *SQLiteConnector) TableDDL(ctx context.Context, table string) (string, error) {
	if _, _, err := quoteQualified(table, 1, doubleQuote); err != nil {
		return "", fmt.Errorf("invalid sqlite table: %w", err)
	}
	var ddl string
	err := c.db.QueryRowContext(ctx, "SELECT sql FROM sqlite_master WHERE type = 'table' AND name = ?", table).Scan(&ddl)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("sqlite table %q: %w", table, ErrTableNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("query sqlite table sql: %w", err)
	}
	indexes, err := c.queryStrings(ctx, "SELECT sql FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND sql IS NOT NULL ORDER BY name", table)
	if err != nil {
		return "", fmt.Errorf("query sqlite index sql: %w", err)
	}
	parts := append([]string{strings.TrimSuffix(ddl, ";") + ";"}, indexes...)
	for i := 1; i < len(parts); i++ {
		parts[i] = strings.TrimSuffix(parts[i], ";") + ";"
	}
	return strings.Join(parts, "\n"), nil
}

func (c *SQLiteConnector) DescribeTable(ctx context.Context, table string) (*TableSchema, error) {
	quoted, _, err := quoteQualified(table, 1, doubleQuote)
	if err != nil {
		return nil, fmt.Errorf("invalid sqlite table: %w", err)
	}
	rows, err := c.db.QueryContext(ctx, "SELECT name, type, \"notnull\", pk FROM pragma_table_info(?) ORDER BY cid", table)
	if err != nil {
		return nil, fmt.Errorf("query sqlite columns: %w", err)
	}
	defer rows.Close()
	columns := []ColumnInfo{}
	for rows.Next() {
		var name, colType string
		var notNull, pk int
		if err := rows.Scan(&name, &colType, &notNull, &pk); err != nil {
			return nil, fmt.Errorf("scan sqlite column: %w", err)
		}
		columns = append(columns, ColumnInfo{Name: name, Type: colType, Nullable: notNull == 0, IsPK: pk > 0})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sqlite columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("sqlite table %q: %w", table, ErrTableNotFound)
	}

	idxRows, err := c.db.QueryContext(ctx, "SELECT il.name, il.\"unique\", il.origin = 'pk', ii.name FROM pragma_index_list(?) AS il JOIN pragma_index_info(il.name) AS ii ORDER BY il.name, ii.seqno", table)
	if err != nil {
		return nil, fmt.Errorf("query sqlite indexes of %s: %w", quoted, err)
	}
	defer idxRows.Close()
	indexMap := map[string]*IndexInfo{}
	order := []string{}
	for idxRows.Next() {
		var name string
		var unique, primary bool
		var column sql.NullString
		if err := idxRows.Scan(&name, &unique, &primary, &column); err != nil {
			return nil, fmt.Errorf("scan sqlite index: %w", err)
		}
		idx, ok := indexMap[name]
		if !ok {
			idx = &IndexInfo{Name: name, Unique: unique, Primary: primary}
			indexMap[name] = idx
			order = append(order, name)
		}
		if column.Valid {
			idx.Columns = append(idx.Columns, column.String)
		}
	}
	if err := idxRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sqlite indexes: %w", err)
	}
	indexes := make([]IndexInfo, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *indexMap[name])
	}
	return &TableSchema{Table: table, Columns: columns, Indexes: sortIndexColumns(indexes)}, nil
}
