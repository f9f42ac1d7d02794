package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDefault(t *testing.T) {
	c := Default()
	if c.CanvasSize != 600 || c.ImageSize != 64 || c.BrushRadius != 30 {
		t.Errorf("sizes = %d/%d/%d, want 600/64/30", c.CanvasSize, c.ImageSize, c.BrushRadius)
	}
	want := []string{"air", "earth", "fire", "water"}
	if diff := cmp.Diff(want, c.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if c.ReferenceDir != filepath.Join("dataset", "own_dataset", "Ground_Truth") {
		t.Errorf("ReferenceDir = %q", c.ReferenceDir)
	}
}

func TestLoadFileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glyphs.yml")
	data := "image_size: 28\ndataset_dir: data\ncategories: [a, b]\n"
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if c.ImageSize != 28 {
		t.Errorf("ImageSize = %d, want 28", c.ImageSize)
	}
	if c.CanvasSize != 600 {
		t.Errorf("CanvasSize = %d, want default 600", c.CanvasSize)
	}
	if c.ReferenceDir != filepath.Join("data", "Ground_Truth") {
		t.Errorf("ReferenceDir = %q, want it under the dataset dir", c.ReferenceDir)
	}
	if diff := cmp.Diff([]string{"a", "b"}, c.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFallsBack(t *testing.T) {
	c, err := Load(filepath.Join(t.TempDir(), "absent.yml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.LedgerPath != "element_counts.yml" {
		t.Errorf("LedgerPath = %q", c.LedgerPath)
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "glyphs.yml")
	if err := os.WriteFile(path, []byte("canvas_size: [1, 2"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"loud", slog.LevelInfo},
	}
	for _, tt := range tests {
		c := &Config{LogLevel: tt.in}
		if got := c.Level(); got != tt.want {
			t.Errorf("Level(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
