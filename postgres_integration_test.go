//go:build integration

package dbconnector

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startPostgres(t *testing.T) ConnectionConfig {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode (requires Docker)")
	}
	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_DB":       "shop",
			"POSTGRES_USER":     "r2c",
			"POSTGRES_PASSWORD": "secret",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("container port: %v", err)
	}

	pool, err := pgxpool.New(ctx, fmt.Sprintf("postgres://r2c:secret@%s:%s/shop?sslmode=disable", host, port.Port()))
	if err != nil {
		t.Fatalf("connect pool: %v", err)
	}
	defer pool.Close()
	for _, stmt := range []string{
		"CREATE TABLE customers (id serial PRIMARY KEY, email varchar(255) NOT NULL, note text)",
		"CREATE UNIQUE INDEX customers_email_key ON customers (email)",
	} {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("seed %q: %v", stmt, err)
		}
	}

	portNum, _ := strconv.Atoi(port.Port())
	return ConnectionConfig{Type: "postgres", Host: host, Port: portNum, User: "r2c", Password: "secret", Database: "shop"}
}

func TestPostgresConnectorAgainstContainer(t *testing.T) {
	cfg := startPostgres(t)
	ctx := context.Background()

	tables, err := ListTables(ctx, NewConnector, cfg)
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	if len(tables) != 1 || tables[0] != "customers" {
		t.Fatalf("unexpected tables: %v", tables)
	}

	ddl, err := TableSchemaText(ctx, NewConnector, cfg, "customers")
	if err != nil {
		t.Fatalf("table schema: %v", err)
	}
	for _, fragment := range []string{
		`CREATE TABLE "customers"`,
		`"email" CHARACTER VARYING(255) NOT NULL`,
		`PRIMARY KEY ("id")`,
		`CREATE UNIQUE INDEX "customers_email_key" ON "customers" ("email");`,
	} {
		if !strings.Contains(ddl, fragment) {
			t.Fatalf("ddl missing %q:\n%s", fragment, ddl)
		}
	}

	_, err = TableSchemaText(ctx, NewConnector, cfg, "missing")
	if !errors.Is(err, ErrTableNotFound) {
		t.Fatalf("expected ErrTableNotFound, got %v", err)
	}
}
