// Package mcpserver exposes the glyph dataset over MCP: ledger and disk
// statistics, the save journal, and classification of saved images. All
// tools are read-only.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/png"
	"log/slog"
	"os"
	"time"

	"github.com/jwulff/glyphs/internal/capture"
	"github.com/jwulff/glyphs/internal/classifier"
	"github.com/jwulff/glyphs/internal/config"
	"github.com/jwulff/glyphs/internal/journal"
	"github.com/jwulff/glyphs/internal/ledger"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const defaultRecentLimit = 10

// Journal is the part of the save journal the tools read.
type Journal interface {
	Recent(category string, limit int) ([]journal.Entry, error)
	Stats() ([]journal.CategoryStat, error)
}

// Server wires the dataset tools onto an MCP server.
type Server struct {
	cfg     *config.Config
	journal Journal
	log     *slog.Logger
	mcp     *server.MCPServer
}

// New registers every tool. j may be nil, in which case journal-backed
// fields are omitted and recent_saves reports an error.
func New(cfg *config.Config, j Journal, log *slog.Logger, version string) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:     cfg,
		journal: j,
		log:     log,
		mcp: server.NewMCPServer("glyphs", version,
			server.WithToolCapabilities(false),
			server.WithRecovery(),
		),
	}

	s.mcp.AddTool(mcp.NewTool("dataset_stats",
		mcp.WithDescription("Per-category ledger counts, files on disk and journal totals, plus the category the capture tool will ask for next."),
	), s.handleDatasetStats)

	s.mcp.AddTool(mcp.NewTool("recent_saves",
		mcp.WithDescription("Most recent saved glyphs from the journal, newest first."),
		mcp.WithString("category", mcp.Description("Only this category. Empty for all.")),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return. Default 10.")),
	), s.handleRecentSaves)

	s.mcp.AddTool(mcp.NewTool("classify_glyph",
		mcp.WithDescription("Run the glyph classifier on an image file and return labels ranked by probability."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Image file to classify.")),
		mcp.WithString("weights", mcp.Description("Raw float32 weight file. Defaults to the configured weights_path.")),
	), s.handleClassifyGlyph)

	return s
}

// MCP returns the underlying server.
func (s *Server) MCP() *server.MCPServer { return s.mcp }

// ServeStdio serves until stdin closes.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// CategoryStats is one row of dataset_stats.
type CategoryStats struct {
	Category  string     `json:"category"`
	Ledger    int        `json:"ledger"`
	OnDisk    int        `json:"on_disk"`
	Journal   int        `json:"journal_saves,omitempty"`
	LastSaved *time.Time `json:"last_saved,omitempty"`
	Drift     bool       `json:"drift,omitempty"`
}

// DatasetStats is the dataset_stats result.
type DatasetStats struct {
	Total        int             `json:"total"`
	NextCategory string          `json:"next_category"`
	Categories   []CategoryStats `json:"categories"`
	Other        map[string]int  `json:"other,omitempty"`
}

func (s *Server) datasetStats() (*DatasetStats, error) {
	l, err := ledger.Load(s.cfg.LedgerPath)
	if err != nil {
		return nil, err
	}

	var logged map[string]journal.CategoryStat
	if s.journal != nil {
		stats, err := s.journal.Stats()
		if err != nil {
			s.log.Warn("journal stats failed", "error", err)
		}
		logged = make(map[string]journal.CategoryStat, len(stats))
		for _, st := range stats {
			logged[st.Category] = st
		}
	}

	out := &DatasetStats{Total: l.Total()}
	if n := len(s.cfg.Categories); n > 0 {
		out.NextCategory = s.cfg.Categories[l.Total()%n]
	}

	inCycle := make(map[string]bool, len(s.cfg.Categories))
	for _, c := range s.cfg.Categories {
		inCycle[c] = true
		onDisk, err := capture.CountArtifacts(s.cfg.DatasetDir, c)
		if err != nil {
			return nil, err
		}
		row := CategoryStats{
			Category: c,
			Ledger:   l.Count(c),
			OnDisk:   onDisk,
			Drift:    onDisk != l.Count(c),
		}
		if st, ok := logged[c]; ok {
			row.Journal = st.Saves
			last := st.LastSaved
			row.LastSaved = &last
		}
		out.Categories = append(out.Categories, row)
	}
	for _, name := range l.Names() {
		if !inCycle[name] {
			if out.Other == nil {
				out.Other = make(map[string]int)
			}
			out.Other[name] = l.Count(name)
		}
	}
	return out, nil
}

func (s *Server) handleDatasetStats(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stats, err := s.datasetStats()
	if err != nil {
		s.log.Error("dataset_stats failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(stats)
}

func (s *Server) handleRecentSaves(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.journal == nil {
		return mcp.NewToolResultError("no journal configured"), nil
	}
	limit := req.GetInt("limit", defaultRecentLimit)
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	entries, err := s.journal.Recent(req.GetString("category", ""), limit)
	if err != nil {
		s.log.Error("recent_saves failed", "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return jsonResult(entries)
}

// Classification is the classify_glyph result.
type Classification struct {
	Path        string                  `json:"path"`
	Predictions []classifier.Prediction `json:"predictions"`
}

func (s *Server) handleClassifyGlyph(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	weights := req.GetString("weights", s.cfg.WeightsPath)

	preds, err := classify(path, weights)
	if err != nil {
		s.log.Error("classify_glyph failed", "path", path, "error", err)
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.log.Info("classified glyph", "path", path, "label", preds[0].Label)
	return jsonResult(Classification{Path: path, Predictions: preds})
}

func classify(path, weights string) ([]classifier.Prediction, error) {
	net := classifier.New()
	if err := net.LoadWeightsFile(weights); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return net.Predict(img)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
