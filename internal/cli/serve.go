package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	otelapi "go.opentelemetry.io/otel"

	"toolbelt-mcp/internal/config"
	"toolbelt-mcp/internal/gemini"
	"toolbelt-mcp/internal/github"
	toolotel "toolbelt-mcp/internal/otel"
	"toolbelt-mcp/internal/secrets"
	"toolbelt-mcp/internal/server"
	"toolbelt-mcp/internal/session"
	"toolbelt-mcp/internal/tool"
	"toolbelt-mcp/internal/tools"
)

// NewServeCmd creates the "serve" subcommand.
func NewServeCmd(version string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP HTTP server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, version)
		},
	}

	cmd.Flags().StringP("port", "p", "", "Listen port (overrides config)")
	cmd.Flags().String("sqlite-path", "", "Path to the secret store database (default: ~/.toolbelt-mcp/toolbelt.db)")
	cmd.Flags().String("config", "", "Path to toolbelt.yaml")
	cmd.Flags().Duration("idle-ttl", 0, "Close sessions idle longer than this (overrides config)")
	cmd.Flags().Int64("max-body", 0, "Max request body size in bytes (overrides config)")

	return cmd
}

func runServe(cmd *cobra.Command, version string) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(configPath)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}
	applyServeFlags(cmd, &cfg)
	if err := cfg.Validate(); err != nil {
		return exitError(exitValidation, "%v", err)
	}

	storePath := strings.TrimSpace(cfg.SQLitePath)
	if storePath == "" {
		storePath, err = secrets.DefaultPath()
		if err != nil {
			return exitError(exitRuntime, "resolving secret store path: %v", err)
		}
	}
	store, err := secrets.NewSQLiteStore(secrets.SQLiteConfig{Path: storePath})
	if err != nil {
		return exitError(exitRuntime, "opening secret store: %v", err)
	}
	defer func() {
		_ = store.Close()
	}()

	toolObserver, err := toolotel.NewToolObserver(
		otelapi.GetMeterProvider().Meter("toolbelt/tool"),
		otelapi.GetTracerProvider().Tracer("toolbelt/tool"),
	)
	if err != nil {
		return exitError(exitRuntime, "initializing tool observability: %v", err)
	}
	tool.SetObserver(toolObserver)
	defer tool.SetObserver(nil)

	reg := tool.NewRegistry()
	tools.RegisterAll(reg, tools.Deps{
		Secrets:      store,
		Gemini:       gemini.New(cfg.GeminiBaseURL, cfg.GeminiModel, nil),
		Github:       github.New(cfg.GithubAPIURL, nil),
		Logger:       logger,
		UploadBranch: cfg.UploadBranch,
		UploadDir:    cfg.UploadDir,
	})
	engine := tool.NewEngine(reg, logger)

	srv := server.New(server.Config{
		Port:         cfg.Port,
		MaxBodyBytes: cfg.MaxBodyBytes,
		Version:      version,
	}, reg, engine, logger)

	sweeper, err := session.NewSweeper(srv.Sessions(), cfg.SweepSchedule, cfg.IdleTTL(), logger)
	if err != nil {
		return exitError(exitValidation, "%v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Router(),
		ReadHeaderTimeout: cfg.HeaderTimeout(),
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", httpServer.Addr, "version", version, "store", storePath)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		// Closing sessions first ends the SSE streams so the HTTP
		// drain below can complete.
		if err := srv.Sessions().Shutdown(shutdownCtx); err != nil {
			logger.Warn("session shutdown incomplete", "error", err)
		}
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return exitError(exitRuntime, "shutdown error: %v", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return exitError(exitRuntime, "server error: %v", err)
		}
		return nil
	}
}

func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	if port, _ := cmd.Flags().GetString("port"); port != "" {
		cfg.Port = port
	}
	if path, _ := cmd.Flags().GetString("sqlite-path"); path != "" {
		cfg.SQLitePath = path
	}
	if ttl, _ := cmd.Flags().GetDuration("idle-ttl"); ttl > 0 {
		cfg.SessionIdleTTL = ttl.String()
	}
	if maxBody, _ := cmd.Flags().GetInt64("max-body"); maxBody > 0 {
		cfg.MaxBodyBytes = maxBody
	}
}
