// file: mssql_connector.go
package dbconnector

import (
	"context"
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	_ "github.com/microsoft/go-mssqldb"
)

type MSSQLConnector struct {
	baseConnector
}

func newMSSQLConnector(cfg ConnectionConfig) (*MSSQLConnector, error) {
	dsn, err := mssqlDSN(cfg)
	if err != nil {
		return nil, err
	}
	db, err := openDatabase("sqlserver", dsn)
	if err != nil {
		return nil, fmt.Errorf("open mssql connection: %w", err)
	}
	return &MSSQLConnector{baseConnector{cfg: cfg, db: db}}, nil
}

func mssqlDSN(cfg ConnectionConfig) (string, error) {
	if cfg.Port == 0 {
		cfg.Port = 1433
	}
	query, err := parseExtraParams(cfg.ExtraParams)
	if err != nil {
		return "", err
	}
	if cfg.Database != "" {
		query.Set("database", cfg.Database)
	}
	if query.Get("encrypt") == "" {
		switch strings.ToLower(strings.TrimSpace(cfg.SSLMode)) {
		case "disable":
			query.Set("encrypt", "disable")
		case "":
			// matches the desktop behaviour of trusting self-signed certs
			query.Set("encrypt", "true")
			query.Set("TrustServerCertificate", "true")
		default:
			query.Set("encrypt", "true")
		}
	}
	u := &url.URL{
		Scheme:   "sqlserver",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

func (c *MSSQLConnector) TestConnection(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping mssql: %w", err)
	}
	return nil
}

func (c *MSSQLConnector) ListTables(ctx context.Context) ([]string, error) {
	tables, err := c.queryStrings(ctx, "SELECT TABLE_SCHEMA + '.' + TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_TYPE = 'BASE TABLE' AND TABLE_CATALOG = DB_NAME() ORDER BY TABLE_SCHEMA, TABLE_NAME")
	if err != nil {
		return nil, fmt.Errorf("list mssql tables: %w", err)
	}
	return tables, nil
}

func (c *MSSQLConnector) DescribeTable(ctx context.Context, table string) (*TableSchema, error) {
	schema, name, err := parseMSSQLTable(table)
	if err != nil {
		return nil, err
	}
	rows, err := c.db.QueryContext(ctx, "SELECT COLUMN_NAME, DATA_TYPE, IS_NULLABLE, CHARACTER_MAXIMUM_LENGTH, NUMERIC_PRECISION, NUMERIC_SCALE FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_CATALOG = DB_NAME() AND TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2 ORDER BY ORDINAL_POSITION", schema, name)
	if err != nil {
		return nil, fmt.Errorf("query mssql columns: %w", err)
	}
	defer rows.Close()
	columns := []ColumnInfo{}
	for rows.Next() {
		var colName, dataType, isNullable string
		var maxLen, precision, scale sql.NullInt64
		if err := rows.Scan(&colName, &dataType, &isNullable, &maxLen, &precision, &scale); err != nil {
			return nil, fmt.Errorf("scan mssql column: %w", err)
		}
		columns = append(columns, ColumnInfo{
			Name:     colName,
			Type:     mssqlColumnType(dataType, maxLen, precision, scale),
			Nullable: strings.EqualFold(isNullable, "YES"),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mssql columns: %w", err)
	}
	if len(columns) == 0 {
		return nil, fmt.Errorf("mssql table %q: %w", table, ErrTableNotFound)
	}

	idxRows, err := c.db.QueryContext(ctx, "SELECT i.name, i.is_unique, i.is_primary_key, c.name FROM sys.indexes i JOIN sys.index_columns ic ON i.object_id = ic.object_id AND i.index_id = ic.index_id JOIN sys.columns c ON ic.object_id = c.object_id AND ic.column_id = c.column_id JOIN sys.tables t ON i.object_id = t.object_id JOIN sys.schemas s ON t.schema_id = s.schema_id WHERE t.name = @p1 AND s.name = @p2 AND i.is_hypothetical = 0 AND i.type_desc <> 'HEAP' AND ic.is_included_column = 0 ORDER BY i.name, ic.key_ordinal", name, schema)
	if err != nil {
		return nil, fmt.Errorf("query mssql indexes: %w", err)
	}
	defer idxRows.Close()
	indexMap := map[string]*IndexInfo{}
	order := []string{}
	for idxRows.Next() {
		var idxName, col string
		var unique, primary bool
		if err := idxRows.Scan(&idxName, &unique, &primary, &col); err != nil {
			return nil, fmt.Errorf("scan mssql index: %w", err)
		}
		idx, ok := indexMap[idxName]
		if !ok {
			idx = &IndexInfo{Name: idxName, Unique: unique, Primary: primary}
			indexMap[idxName] = idx
			order = append(order, idxName)
		}
		idx.Columns = append(idx.Columns, col)
	}
	if err := idxRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate mssql indexes: %w", err)
	}
	indexes := make([]IndexInfo, 0, len(order))
	for _, idxName := range order {
		idx := *indexMap[idxName]
		if idx.Primary {
			markPrimaryKey(columns, idx.Columns)
		}
		indexes = append(indexes, idx)
	}
	return &TableSchema{Table: table, Columns: columns, Indexes: sortIndexColumns(indexes)}, nil
}

func (c *MSSQLConnector) TableDDL(ctx context.Context, table string) (string, error) {
	quoted, err := quoteMSSQLTable(table)
	if err != nil {
		return "", err
	}
	if !strings.Contains(table, ".") {
		quoted = "[dbo]." + quoted
	}
	schema, err := c.DescribeTable(ctx, table)
	if err != nil {
		return "", err
	}
	return renderCreateTable(quoted, *schema, bracket), nil
}

func mssqlColumnType(dataType string, maxLen, precision, scale sql.NullInt64) string {
	switch strings.ToLower(dataType) {
	case "varchar", "nvarchar", "char", "nchar", "varbinary", "binary":
		if !maxLen.Valid {
			return dataType
		}
		if maxLen.Int64 == -1 {
			return dataType + "(MAX)"
		}
		return fmt.Sprintf("%s(%d)", dataType, maxLen.Int64)
	case "decimal", "numeric":
		if precision.Valid && scale.Valid {
			return fmt.Sprintf("%s(%d,%d)", dataType, precision.Int64, scale.Int64)
		}
	}
	return dataType
}

func markPrimaryKey(columns []ColumnInfo, keyColumns []string) {
	for _, key := range keyColumns {
		for i := range columns {
			if columns[i].Name == key {
				columns[i].IsPK = true
			}
		}
	}
}

func bracket(s string) string { return "[" + s + "]" }

func parseMSSQLTable(table string) (string, string, error) {
	_, parts, err := quoteQualified(table, 2, bracket)
	if err != nil {
		return "", "", fmt.Errorf("invalid mssql table: %w", err)
	}
	if len(parts) == 1 {
		return "dbo", parts[0], nil
	}
	return parts[0], parts[1], nil
}

func quoteMSSQLTable(table string) (string, error) {
	quoted, _, err := quoteQualified(table, 2, bracket)
	if err != nil {
		return "", fmt.Errorf("invalid mssql table: %w", err)
	}
	return quoted, nil
}
