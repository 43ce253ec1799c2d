package dbconnector

import (
	"database/sql"
	"net/url"
	"testing"
)

func TestParseMSSQLTable(t *testing.T) {
	schema, name, err := parseMSSQLTable("sales.orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema != "sales" || name != "orders" {
		t.Fatalf("unexpected result: %s %s", schema, name)
	}
}

func TestParseMSSQLTableDefaultSchema(t *testing.T) {
	schema, name, err := parseMSSQLTable("orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema != "dbo" || name != "orders" {
		t.Fatalf("unexpected result: %s %s", schema, name)
	}
}

func TestQuoteMSSQLTable(t *testing.T) {
	quoted, err := quoteMSSQLTable("sales.orders")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quoted != "[sales].[orders]" {
		t.Fatalf("unexpected quote: %s", quoted)
	}
}

func TestMSSQLDSN(t *testing.T) {
	dsn, err := mssqlDSN(ConnectionConfig{Host: "sql", User: "sa", Password: "p@ss", Database: "erp", ExtraParams: "app name=r2c"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	u, err := url.Parse(dsn)
	if err != nil {
		t.Fatalf("dsn is not a url: %v", err)
	}
	if u.Host != "sql:1433" {
		t.Fatalf("unexpected host: %s", u.Host)
	}
	if pass, _ := u.User.Password(); pass != "p@ss" {
		t.Fatalf("password not preserved: %q", pass)
	}
	q := u.Query()
	if q.Get("database") != "erp" || q.Get("encrypt") != "true" || q.Get("app name") != "r2c" {
		t.Fatalf("unexpected query: %v", q)
	}
}

func TestMSSQLColumnType(t *testing.T) {
	tests := []struct {
		dataType  string
		maxLen    sql.NullInt64
		precision sql.NullInt64
		scale     sql.NullInt64
		want      string
	}{
		{dataType: "nvarchar", maxLen: sql.NullInt64{Int64: -1, Valid: true}, want: "nvarchar(MAX)"},
		{dataType: "varchar", maxLen: sql.NullInt64{Int64: 50, Valid: true}, want: "varchar(50)"},
		{dataType: "decimal", precision: sql.NullInt64{Int64: 10, Valid: true}, scale: sql.NullInt64{Int64: 2, Valid: true}, want: "decimal(10,2)"},
		{dataType: "int", precision: sql.NullInt64{Int64: 10, Valid: true}, scale: sql.NullInt64{Int64: 0, Valid: true}, want: "int"},
	}
	for _, tt := range tests {
		if got := mssqlColumnType(tt.dataType, tt.maxLen, tt.precision, tt.scale); got != tt.want {
			t.Fatalf("mssqlColumnType(%s) = %s, want %s", tt.dataType, got, tt.want)
		}
	}
}
