// Package capture drives the draw-and-save cycle that builds the glyph
// dataset. A Session owns the ledger, the active category and the canvas;
// the windowing layer feeds it pointer and button events through Handler.
package capture

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/jwulff/glyphs/internal/canvas"
	"github.com/jwulff/glyphs/internal/config"
	"github.com/jwulff/glyphs/internal/ledger"
)

// Session is one capture run. All methods are safe for concurrent use; they
// are serialized on a single mutex so the ledger has exactly one writer.
type Session struct {
	mu sync.Mutex

	cfg      *config.Config
	ledger   *ledger.Ledger
	canvas   *canvas.Canvas
	surface  Surface
	recorder Recorder
	log      *slog.Logger
	now      func() time.Time

	current  string
	drift    []Drift
	released bool
}

// Snapshot is a read-only view of the session for status displays. Drift is
// the startup audit: categories whose ledger count differs from the files on
// disk.
type Snapshot struct {
	Category  string
	NextIndex int
	Total     int
	Counts    map[string]int
	Drift     []Drift
}

// Option configures a Session.
type Option func(*Session)

// WithSurface mirrors drawing onto s.
func WithSurface(s Surface) Option { return func(x *Session) { x.surface = s } }

// WithRecorder reports every saved artifact to r.
func WithRecorder(r Recorder) Option { return func(x *Session) { x.recorder = r } }

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option { return func(x *Session) { x.log = l } }

// WithClock overrides the time source used to stamp artifacts.
func WithClock(now func() time.Time) Option { return func(x *Session) { x.now = now } }

// Open loads the ledger at cfg.LedgerPath and selects the first category.
// A missing or malformed ledger fails with ErrConfig. A missing reference
// image is logged and leaves the session without an active category.
func Open(cfg *config.Config, opts ...Option) (*Session, error) {
	if len(cfg.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories configured", ErrConfig)
	}

	l, err := ledger.Load(cfg.LedgerPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfig, err)
	}

	s := &Session{
		cfg:     cfg,
		ledger:  l,
		canvas:  canvas.New(cfg.CanvasSize),
		surface: NopSurface{},
		log:     slog.Default(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}

	// Cycle categories missing from the document start at zero.
	for _, c := range cfg.Categories {
		l.Set(c, l.Count(c))
	}
	s.log.Info("ledger loaded", "path", cfg.LedgerPath, "total", l.Total())

	drift, err := Audit(cfg.DatasetDir, cfg.Categories, l.Counts())
	if err != nil {
		s.log.Warn("dataset audit failed", "error", err)
	}
	s.drift = drift
	for _, d := range drift {
		s.log.Warn("ledger disagrees with dataset",
			"category", d.Category, "ledger", d.Ledger, "on_disk", d.OnDisk)
	}

	s.selectNext()
	return s, nil
}

// SelectNext picks cycle[total mod len(cycle)] and shows its reference
// image. It returns an ErrMissingAsset error when the image cannot be
// loaded, in which case no category is active.
func (s *Session) SelectNext() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selectNext()
}

func (s *Session) selectNext() error {
	category := s.cfg.Categories[s.ledger.Total()%len(s.cfg.Categories)]

	img, err := loadReference(s.referencePath(category))
	if err != nil {
		s.current = ""
		s.surface.ShowReference("", nil)
		err = fmt.Errorf("%w: %s: %w", ErrMissingAsset, category, err)
		s.log.Warn("no category selected", "category", category, "error", err)
		return err
	}

	s.current = category
	s.surface.ShowReference(category, img)
	s.log.Debug("category selected", "category", category, "total", s.ledger.Total())
	return nil
}

func (s *Session) referencePath(category string) string {
	return filepath.Join(s.cfg.ReferenceDir, strings.ToUpper(category)+".png")
}

func loadReference(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

// Stroke stamps the brush at canvas coordinate (x, y).
func (s *Session) Stroke(x, y int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.canvas.Stamp(x, y, s.cfg.BrushRadius)
	s.surface.Stamp(x, y, s.cfg.BrushRadius)
}

// Clear discards the drawing and advances to the next category without
// saving.
func (s *Session) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clear()
}

func (s *Session) clear() error {
	s.canvas.Clear()
	s.surface.Reset()
	return s.selectNext()
}

// Save writes the drawing as the next artifact of the active category,
// advances the ledger, persists it and moves on to the next category.
//
// Either the file exists and the ledger counts it, or neither happened:
// any failure returns an ErrIO error with the ledger and disk unchanged.
func (s *Session) Save() (Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == "" {
		s.log.Warn("save ignored", "error", ErrNoCategorySelected)
		return Artifact{}, ErrNoCategorySelected
	}

	category := s.current
	index := s.ledger.Count(category)
	folder := filepath.Join(s.cfg.DatasetDir, category)
	path := filepath.Join(folder, ArtifactName(index))

	if err := os.MkdirAll(folder, 0o755); err != nil {
		return Artifact{}, s.saveFailed(category, fmt.Errorf("create folder: %w", err))
	}

	size, err := writeArtifact(path, s.canvas.Downsample(s.cfg.ImageSize))
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			err = fmt.Errorf("%s already exists: %w", path, err)
		}
		return Artifact{}, s.saveFailed(category, fmt.Errorf("write image: %w", err))
	}

	s.ledger.Set(category, index+1)
	if err := s.ledger.Persist(); err != nil {
		s.ledger.Set(category, index)
		if rmErr := os.Remove(path); rmErr != nil {
			s.log.Error("rollback failed", "path", path, "error", rmErr)
		}
		return Artifact{}, s.saveFailed(category, fmt.Errorf("persist ledger: %w", err))
	}

	a := Artifact{
		Category: category,
		Index:    index,
		Path:     path,
		Size:     size,
		SavedAt:  s.now().UTC(),
	}
	s.log.Info("saved glyph", "category", category, "path", path, "total", s.ledger.Total())

	if s.recorder != nil {
		if err := s.recorder.Record(a); err != nil {
			s.log.Warn("journal record failed", "path", path, "error", err)
		}
	}

	// The save stands even if the next reference is missing; selectNext
	// has logged it and Snapshot reports no category.
	_ = s.clear()
	return a, nil
}

func (s *Session) saveFailed(category string, err error) error {
	err = fmt.Errorf("%w: %s: %w", ErrIO, category, err)
	s.log.Error("save failed", "error", err)
	return err
}

// Close persists the ledger and releases the surface. It may be called more
// than once; every call persists, only the first releases.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.ledger.Persist()
	if !s.released {
		s.surface.Release()
		s.released = true
	}
	if err != nil {
		return fmt.Errorf("%w: persist ledger: %w", ErrIO, err)
	}
	s.log.Info("session closed", "total", s.ledger.Total())
	return nil
}

// Snapshot returns the current category, counts and next file index.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Category: s.current,
		Total:    s.ledger.Total(),
		Counts:   s.ledger.Counts(),
		Drift:    slices.Clone(s.drift),
	}
	if s.current != "" {
		snap.NextIndex = s.ledger.Count(s.current)
	}
	return snap
}

// Categories returns the cycle order.
func (s *Session) Categories() []string {
	return append([]string(nil), s.cfg.Categories...)
}

// CanvasSize returns the raster edge length in pixels.
func (s *Session) CanvasSize() int { return s.cfg.CanvasSize }

// OnDrag implements Handler.
func (s *Session) OnDrag(x, y int) { s.Stroke(x, y) }

// OnSave implements Handler.
func (s *Session) OnSave() error {
	_, err := s.Save()
	return err
}

// OnClear implements Handler.
func (s *Session) OnClear() error { return s.Clear() }

// OnClose implements Handler.
func (s *Session) OnClose() error { return s.Close() }

var _ Handler = (*Session)(nil)
