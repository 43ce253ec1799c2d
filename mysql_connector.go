// file: mysql_connector.go
package dbconnector

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

const mysqlErrNoSuchTable = 1146

type MySQLConnector struct {
	baseConnector
}

func newMySQLConnector(cfg ConnectionConfig) (*MySQLConnector, error) {
	dsn, err := mysqlDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := openDatabase("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mysql connection: %w", err)
	}
	return &MySQLConnector{baseConnector{cfg: cfg, db: db}}, nil
}

func mysqlDSN(cfg ConnectionConfig) (string, error) {
	if cfg.Port == 0 {
		cfg.Port = 3306
	}
	extra, err := parseExtraParams(cfg.ExtraParams)
	if err != nil {
		return "", err
	}
	mc := mysql.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Database
	mc.ParseTime = true
	switch sslMode := strings.ToLower(strings.TrimSpace(cfg.SSLMode)); sslMode {
	case "":
	case "disable":
		mc.TLSConfig = "false"
	default:
		mc.TLSConfig = "true"
	}
	if len(extra) > 0 {
		mc.Params = map[string]string{}
		for _, key := range sortedKeys(extra) {
			mc.Params[key] = extra.Get(key)
		}
	}
	return mc.FormatDSN(), nil
}

func (c *MySQLConnector) TestConnection(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mysql: %w", err)
	}
	return nil
}

func (c *MySQLConnector) ListTables(ctx context.Context) ([]string, error) {
	tables, err := c.queryStrings(ctx, "SELECT table_name FROM information_schema.tables WHERE table_schema = DATABASE() AND table_type = 'BASE TABLE' ORDER BY table_name")
	if err != nil {
		return nil, fmt.Errorf("list mysql tables: %w", err)
	}
	return tables, nil
}

func (c *MySQLConnector) TableDDL(ctx context.Context, table string) (string, error) {
	quoted, _, err := quoteQualified(table, 1, backtick)
	if err != nil {
		return "", fmt.Errorf("invalid mysql table: %w", err)
	}
	var name, ddl string
	err = c.db.QueryRowContext(ctx, "SHOW CREATE TABLE "+quoted).Scan(&name, &ddl)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.Is(err, sql.ErrNoRows) || (errors.As(err, &myErr) && myErr.Number == mysqlErrNoSuchTable) {
			return "", fmt.Errorf("mysql table %q: %w", table, ErrTableNotFound)
		}
		return "", fmt.Errorf("show mysql create table: %w", err)
	}
	return ddl, nil
}

func (c *MySQLConnector) DescribeTable(ctx context.Context, table string) (*TableSchema, error) {
	if _, _, err := quoteQualified(table, 1, backtick); err != nil {
		return nil, fmt.Errorf("invalid mysql table: %w", err)
	}
	rows, err := c.db.QueryContext(ctx, "SELECT column_name, column_type, is_nullable, column_key FROM information_schema.columns WHERE table_schema = DATABASE() AND table_name = ? ORDER BY ordinal_position", table)
	if err != nil {
		return nil, fmt.Errorf("query mysql columns: %w", err)
	}
	defer rows.Close()
	columns := []ColumnInfo{}
	for rows.Next() {
		var name, dataType, isNullable, key string
		if err := rows.Scan(&name, &dataType, &isNullable, &key); err != nil {
			return nil, fmt.Errorf("scan mysql column: %w", err)
		}
		columns = append(columns, ColumnInfo{
			Name:     name,
			Type:     dataType,
			Nullable: strings.EqualFold(isNullable, "YES"),
			IsPK:     strings.EqualFold(key, "PRI"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mysql columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("mysql table %q: %w", table, ErrTableNotFound)
	}

	idxRows, err := c.db.QueryContext(ctx, "SELECT index_name, non_unique, column_name FROM information_schema.statistics WHERE table_schema = DATABASE() AND table_name = ? ORDER BY index_name, seq_in_index", table)
	if err != nil {
		return nil, fmt.Errorf("query mysql indexes: %w", err)
	}
	defer idxRows.Close()
	indexMap := map[string]*IndexInfo{}
	order := []string{}
	for idxRows.Next() {
		var name, column string
		var nonUnique int
		if err := idxRows.Scan(&name, &nonUnique, &column); err != nil {
			return nil, fmt.Errorf("scan mysql index: %w", err)
		}
		idx, ok := indexMap[name]
		if !ok {
			idx = &IndexInfo{Name: name, Unique: nonUnique == 0, Primary: name == "PRIMARY"}
			indexMap[name] = idx
			order = append(order, name)
		}
		idx.Columns = append(idx.Columns, column)
	}
	if err := idxRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mysql indexes: %w", err)
	}
	indexes := make([]IndexInfo, 0, len(order))
	for _, name := range order {
		indexes = append(indexes, *indexMap[name])
	}
	return &TableSchema{Table: table, Columns: columns, Indexes: sortIndexColumns(indexes)}, nil
}

func backtick(s string) string { return "`" + s + "`" }
