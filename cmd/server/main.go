// Command server runs the resource2code backend: the command gateway over
// the data source, rule and settings store, schema inspection and the
// code-generation task manager.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"resource2code/internal/bus"
	"resource2code/internal/codegen"
	"resource2code/internal/command"
	"resource2code/internal/config"
	"resource2code/internal/connections"
	"resource2code/internal/crypto"
	"resource2code/internal/gateway"
	"resource2code/internal/llm"
	"resource2code/internal/storage"
	"resource2code/internal/task"
	"resource2code/model"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logConfig := zap.NewProductionConfig()
	if cfg.IsLocal() {
		logConfig = zap.NewDevelopmentConfig()
	}
	logConfig.Level = level
	return logConfig.Build()
}

// components is everything run needs besides the HTTP server.
type components struct {
	store     *storage.Store
	publisher bus.Publisher
	tasks     *task.Manager
	registry  *command.Registry
}

func (c *components) close() {
	c.tasks.Stop()
	c.publisher.Close()
	_ = c.store.Close()
}

func build(cfg *config.Config, logger *zap.Logger) (*components, error) {
	store, err := storage.Open(storage.Config{
		Driver: cfg.Database.Driver,
		Path:   cfg.Database.Path,
		DSN:    cfg.Database.DSN,
	}, logger)
	if err != nil {
		return nil, err
	}
	enc, err := crypto.FromKey(cfg.EncryptionKey)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("encryption key: %w", err)
	}
	repo := storage.NewRepository(store, enc)

	publisher, err := bus.Connect(cfg.NATSURL, logger)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	tasks := task.NewManager(logger, cfg.Tasks.LogBuffer)
	tasks.StartCleanup(cfg.Tasks.CleanupInterval)

	schemas := connections.NewSchemas(connections.NewResolver(repo), nil)
	deps := codegen.Deps{
		Agents:  llm.NewConfigBuilder(repo, logger),
		Context: codegen.NewContextBuilder(repo, schemas),
		Config:  repo,
		Logger:  logger,
	}

	registry := command.NewRegistry()
	command.NewService(command.Options{
		Store:   repo,
		Schemas: schemas,
		Tasks:   tasks,
		NewTask: func(req model.CodeGenRequest) task.Task {
			return codegen.NewTask(deps, req)
		},
		Publisher: publisher,
		Logger:    logger,
	}).Register(registry)

	return &components{store: store, publisher: publisher, tasks: tasks, registry: registry}, nil
}

func run(cfg *config.Config, logger *zap.Logger) error {
	c, err := build(cfg, logger)
	if err != nil {
		return err
	}
	defer c.close()

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           gateway.NewServer(c.registry, logger, cfg.RequestTimeout).Routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdownErr := make(chan error, 1)
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownErr <- server.Shutdown(ctx)
	}()

	logger.Info("resource2code backend listening",
		zap.String("addr", cfg.Addr()),
		zap.String("env", cfg.Env),
		zap.Int("commands", len(c.registry.Names())),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}
	if err := <-shutdownErr; err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}
	return nil
}
