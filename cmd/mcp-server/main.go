// Command mcp-server exposes the backend's data sources, table schemas and
// rules as MCP tools so an assistant can pull them into its context.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"resource2code/client"
	"resource2code/internal/gateway"
)

const version = "0.1.0"

type settings struct {
	BackendURL string        `env:"BACKEND_URL" env-default:"http://localhost:8080"`
	Transport  string        `env:"MCP_TRANSPORT" env-default:"stdio"`
	Addr       string        `env:"MCP_ADDR" env-default:":8090"`
	Timeout    time.Duration `env:"BACKEND_TIMEOUT" env-default:"30s"`
}

func main() {
	// stdout carries the stdio transport, so logs go to stderr.
	logConfig := zap.NewProductionConfig()
	logConfig.OutputPaths = []string{"stderr"}
	logger, err := logConfig.Build()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	var cfg settings
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		logger.Fatal("failed to read environment", zap.Error(err))
	}

	inv := gateway.NewHTTPInvoker(cfg.BackendURL, cfg.Timeout)
	notify := client.LogNotifier{Logger: logger.Named("backend")}
	tools := newToolset(
		client.NewDataSourceService(inv, notify),
		client.NewRuleService(inv, notify),
		client.NewSchemaService(inv, notify),
	)

	mcpServer := server.NewMCPServer("resource2code", version, server.WithToolCapabilities(true))
	tools.register(mcpServer)

	switch cfg.Transport {
	case "stdio":
		logger.Info("serving MCP over stdio", zap.String("backend", cfg.BackendURL))
		if err := server.ServeStdio(mcpServer); err != nil {
			logger.Fatal("stdio server error", zap.Error(err))
		}
	case "http":
		serveHTTP(mcpServer, cfg.Addr, logger)
	default:
		logger.Fatal("unknown MCP transport", zap.String("transport", cfg.Transport))
	}
}

func serveHTTP(mcpServer *server.MCPServer, addr string, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(mcpServer, server.WithStateLess(true)))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr <- srv.Shutdown(ctx)
	}()

	logger.Info("serving MCP over streamable HTTP", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server error", zap.Error(err))
	}
	if err := <-shutdownErr; err != nil {
		logger.Fatal("shutdown error", zap.Error(err))
	}
}
