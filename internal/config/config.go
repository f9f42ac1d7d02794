// Package config holds the capture tool settings and loads them from YAML.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the optional config file looked up in the working directory.
const DefaultFile = "glyphs.yml"

// Config holds all capture settings.
type Config struct {
	CanvasSize   int      `yaml:"canvas_size"`
	ImageSize    int      `yaml:"image_size"`
	BrushRadius  int      `yaml:"brush_radius"`
	Categories   []string `yaml:"categories"`
	DatasetDir   string   `yaml:"dataset_dir"`
	ReferenceDir string   `yaml:"reference_dir"`
	LedgerPath   string   `yaml:"ledger_path"`
	JournalPath  string   `yaml:"journal_path"`
	WeightsPath  string   `yaml:"weights_path"`
	LogPath      string   `yaml:"log_path"`
	LogLevel     string   `yaml:"log_level"`
}

// Default returns the settings the capture tool ships with.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.CanvasSize <= 0 {
		c.CanvasSize = 600
	}
	if c.ImageSize <= 0 {
		c.ImageSize = 64
	}
	if c.BrushRadius <= 0 {
		c.BrushRadius = 30
	}
	if len(c.Categories) == 0 {
		c.Categories = []string{"air", "earth", "fire", "water"}
	}
	if c.DatasetDir == "" {
		c.DatasetDir = filepath.Join("dataset", "own_dataset")
	}
	if c.ReferenceDir == "" {
		c.ReferenceDir = filepath.Join(c.DatasetDir, "Ground_Truth")
	}
	if c.LedgerPath == "" {
		c.LedgerPath = "element_counts.yml"
	}
	if c.JournalPath == "" {
		c.JournalPath = "glyphs.sqlite"
	}
	if c.WeightsPath == "" {
		c.WeightsPath = "glyph_classifier.bin"
	}
	if c.LogPath == "" {
		c.LogPath = "glyphs.log"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// LoadFile reads a YAML config file and fills unset fields with defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return &cfg, nil
}

// Load reads path if it exists and falls back to Default otherwise.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Level parses LogLevel. Unknown names mean info.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}
