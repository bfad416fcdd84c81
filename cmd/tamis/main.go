// CLAUDE:SUMMARY Entry point for the tamis service — config file, sqlite run history, HTTP API or MCP stdio.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/tamis"
	"github.com/hazyhaar/tamis/dbopen"
	"github.com/hazyhaar/tamis/langid"
	"github.com/hazyhaar/tamis/runlog"
)

func main() {
	mcpTransport := env("MCP_TRANSPORT", "")
	logLevel := env("LOG_LEVEL", "info")

	// Logging.
	var lvl slog.Level
	switch logLevel {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logOut := os.Stdout
	if mcpTransport == "stdio" {
		// stdio MCP owns stdout; logs go to stderr.
		logOut = os.Stderr
	}
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)

	// Config: first argument, else tamis.yaml. A missing default file means defaults.
	cfgPath := "tamis.yaml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := tamis.LoadConfig(cfgPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && len(os.Args) <= 1 {
			slog.Info("no config file, using defaults", "path", cfgPath)
			cfg = tamis.DefaultConfig()
		} else {
			slog.Error("config", "error", err)
			os.Exit(1)
		}
	}

	// Signal context.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Run history DB.
	db, err := dbopen.Open(cfg.DBPath, dbopen.WithMkdirAll())
	if err != nil {
		slog.Error("run db", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store := runlog.NewStore(db)
	if err := store.Init(); err != nil {
		slog.Error("run db init", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	opts := []tamis.ServiceOption{tamis.WithRunLog(store)}
	if wantsDetector(cfg) {
		// Lingua loads per-language models; skip it when every profile
		// relies on the heuristic.
		opts = append(opts, tamis.WithDetector(langid.New()))
	}

	svc, err := tamis.NewService(cfg, logger, opts...)
	if err != nil {
		slog.Error("service", "error", err)
		os.Exit(1)
	}

	// MCP over stdio — for agent hosts that spawn the binary.
	if mcpTransport == "stdio" {
		srv := mcp.NewServer(&mcp.Implementation{
			Name:    "tamis",
			Version: "1.0.0",
		}, nil)
		svc.RegisterMCP(srv)

		slog.Info("mcp stdio starting")
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			slog.Error("mcp stdio", "error", err)
			os.Exit(1)
		}
		return
	}

	// HTTP server.
	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           tamis.NewRouter(svc),
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", cfg.Listen)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func wantsDetector(cfg *tamis.Config) bool {
	for _, p := range cfg.Profiles {
		if p.StrictLanguage {
			return true
		}
	}
	return false
}
