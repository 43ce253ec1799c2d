package dbconnector

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"resource2code/model"
)

func TestQuoteQualified(t *testing.T) {
	quoted, parts, err := quoteQualified("public.users", 2, doubleQuote)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quoted != "\"public\".\"users\"" {
		t.Fatalf("unexpected quoted value: %s", quoted)
	}
	if !reflect.DeepEqual(parts, []string{"public", "users"}) {
		t.Fatalf("unexpected parts: %#v", parts)
	}
}

func TestQuoteQualifiedTooManySegments(t *testing.T) {
	_, _, err := quoteQualified("a.b.c", 2, func(s string) string { return s })
	if err == nil {
		t.Fatalf("expected error for too many segments")
	}
}

func TestQuoteQualifiedRejectsInjection(t *testing.T) {
	_, _, err := quoteQualified("users; DROP TABLE users", 1, backtick)
	if err == nil {
		t.Fatalf("expected error for invalid identifier")
	}
}

func TestQuoteList(t *testing.T) {
	out, err := quoteList([]string{"id", "name"}, backtick)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "`id`, `name`" {
		t.Fatalf("unexpected output: %s", out)
	}
}

func TestParseExtraParams(t *testing.T) {
	values, err := parseExtraParams("?charset=utf8mb4&timeout=5s")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if values.Get("charset") != "utf8mb4" || values.Get("timeout") != "5s" {
		t.Fatalf("unexpected values: %#v", values)
	}
	if _, err := parseExtraParams("a=%zz"); err == nil {
		t.Fatalf("expected error for malformed params")
	}
}

func TestValidationErrorsAreInvalidConfig(t *testing.T) {
	cases := map[string]func() error{
		"bad identifier": func() error {
			_, _, err := quoteQualified("a;b", 2, doubleQuote)
			return err
		},
		"too many segments": func() error {
			_, _, err := quoteQualified("a.b.c", 2, doubleQuote)
			return err
		},
		"malformed extra params": func() error {
			_, err := parseExtraParams("a=%zz")
			return err
		},
		"missing type": func() error {
			_, err := NewConnector(ConnectionConfig{})
			return err
		},
		"unsupported type": func() error {
			_, err := NewConnector(ConnectionConfig{Type: "clickhouse"})
			return err
		},
	}
	for name, run := range cases {
		t.Run(name, func(t *testing.T) {
			if err := run(); !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestPostgresDSNRejectsUnsafeParamNames(t *testing.T) {
	_, err := postgresDSN(ConnectionConfig{Host: "db", ExtraParams: "x host=evil"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
	_, err = postgresDSN(ConnectionConfig{Host: "db", ExtraParams: "a%3Db=1"})
	if !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig for key containing '=', got %v", err)
	}
}

func TestRenderCreateTable(t *testing.T) {
	schema := TableSchema{
		Columns: []ColumnInfo{
			{Name: "id", Type: "integer", IsPK: true},
			{Name: "email", Type: "character varying(255)"},
			{Name: "note", Type: "text", Nullable: true},
		},
		Indexes: []IndexInfo{
			{Name: "users_pkey", Columns: []string{"id"}, Unique: true, Primary: true},
			{Name: "users_email_key", Columns: []string{"email"}, Unique: true},
		},
	}
	ddl := renderCreateTable(`"users"`, schema, doubleQuote)
	want := "CREATE TABLE \"users\" (\n" +
		"    \"id\" INTEGER NOT NULL,\n" +
		"    \"email\" CHARACTER VARYING(255) NOT NULL,\n" +
		"    \"note\" TEXT,\n" +
		"    PRIMARY KEY (\"id\")\n" +
		");\n" +
		"CREATE UNIQUE INDEX \"users_email_key\" ON \"users\" (\"email\");"
	if ddl != want {
		t.Fatalf("unexpected ddl:\n%s", ddl)
	}
}

func TestMySQLDSNIncludesExtraParams(t *testing.T) {
	dsn, err := mysqlDSN(ConnectionConfig{Host: "db", User: "root", Password: "x", Database: "app", ExtraParams: "charset=utf8mb4"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(dsn, "root:x@tcp(db:3306)/app?") {
		t.Fatalf("unexpected dsn: %s", dsn)
	}
	if !strings.Contains(dsn, "charset=utf8mb4") || !strings.Contains(dsn, "parseTime=true") {
		t.Fatalf("missing params in dsn: %s", dsn)
	}
}

func TestPostgresDSNQuotesValues(t *testing.T) {
	dsn, err := postgresDSN(ConnectionConfig{Host: "db", User: "app", Password: "p w'd", Database: "app", ExtraParams: "sslmode=require&connect_timeout=5"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `host=db port=5432 user=app password='p w\'d' dbname=app sslmode=require connect_timeout=5`
	if dsn != want {
		t.Fatalf("unexpected dsn: %s", dsn)
	}
}

func TestConfigFromDataSource(t *testing.T) {
	db := "shop"
	extra := "charset=utf8"
	cfg := ConfigFromDataSource(model.DataSource{
		DBType: model.DBTypeMySQL, Host: "h", Port: 3307, Username: "u", Password: "p",
		Database: &db, ExtraParams: &extra,
	})
	want := ConnectionConfig{Type: "mysql", Host: "h", Port: 3307, User: "u", Password: "p", Database: "shop", ExtraParams: "charset=utf8"}
	if cfg != want {
		t.Fatalf("unexpected config: %#v", cfg)
	}
}

func TestNewConnectorRejectsUnsupported(t *testing.T) {
	if _, err := NewConnector(ConnectionConfig{}); err == nil {
		t.Fatalf("expected error for empty type")
	}
	if _, err := NewConnector(ConnectionConfig{Type: "clickhouse"}); err == nil {
		t.Fatalf("expected error for unsupported type")
	}
}
