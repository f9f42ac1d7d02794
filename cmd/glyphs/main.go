// Command glyphs is the terminal capture tool: draw the glyph shown, press s
// to save it into the dataset, c to skip, q to quit.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/jwulff/glyphs/internal/app"
	"github.com/jwulff/glyphs/internal/capture"
	"github.com/jwulff/glyphs/internal/config"
	"github.com/jwulff/glyphs/internal/journal"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "glyphs:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(config.DefaultFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// stdout belongs to the renderer.
	logFile, err := os.OpenFile(cfg.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log: %w", err)
	}
	defer logFile.Close()
	logger := setupLogger(logFile, cfg.Level())
	slog.SetDefault(logger)

	opts := []capture.Option{capture.WithLogger(logger)}
	store, err := journal.Open(cfg.JournalPath)
	if err != nil {
		logger.Warn("journal unavailable", "path", cfg.JournalPath, "error", err)
	} else {
		defer store.Close()
		opts = append(opts, capture.WithRecorder(store))
	}

	preview := app.NewPreview(cfg.CanvasSize)
	opts = append(opts, capture.WithSurface(preview))

	sess, err := capture.Open(cfg, opts...)
	if err != nil {
		logger.Error("startup failed", "error", err)
		return err
	}

	p := tea.NewProgram(app.New(sess, preview), tea.WithAltScreen(), tea.WithMouseCellMotion())
	final, runErr := p.Run()

	// The model closes the session on q; this covers every other exit.
	closeErr := sess.Close()
	if m, ok := final.(app.Model); ok && m.CloseErr() != nil {
		closeErr = errors.Join(closeErr, m.CloseErr())
	}
	if runErr != nil {
		logger.Error("ui exited", "error", runErr)
		return errors.Join(runErr, closeErr)
	}
	return closeErr
}

func setupLogger(w *os.File, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	handler := slog.NewJSONHandler(w, opts)
	return slog.New(handler)
}
