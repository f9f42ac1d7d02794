// Command glyphs-mcp serves read-only dataset tools over MCP stdio.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/jwulff/glyphs/internal/config"
	"github.com/jwulff/glyphs/internal/journal"
	"github.com/jwulff/glyphs/internal/mcpserver"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "glyphs-mcp:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	// stdout is the protocol stream.
	logger := setupLogger(cfg.Level())

	var j mcpserver.Journal
	if _, err := os.Stat(cfg.JournalPath); err == nil {
		store, err := journal.Open(cfg.JournalPath)
		if err != nil {
			logger.Warn("journal unavailable", "path", cfg.JournalPath, "error", err)
		} else {
			defer store.Close()
			j = store
		}
	}

	logger.Info("glyphs-mcp starting", "version", version, "ledger", cfg.LedgerPath)
	if err := mcpserver.New(cfg, j, logger, version).ServeStdio(); err != nil {
		logger.Error("server stopped", "error", err)
		return err
	}
	return nil
}

func setupLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
