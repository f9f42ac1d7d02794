package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// Artifact describes one saved drawing.
type Artifact struct {
	Category string
	Index    int
	Path     string
	Size     int64
	SavedAt  time.Time
}

// Recorder is notified after each successful save. A failing Recorder never
// undoes the save.
type Recorder interface {
	Record(a Artifact) error
}

// ArtifactName returns the file name for the index-th drawing of a category.
func ArtifactName(index int) string {
	return fmt.Sprintf("img_%04d.png", index)
}

// writeArtifact encodes img next to path and links it into place. It fails
// rather than replace an existing file.
func writeArtifact(path string, img image.Image) (int64, error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := png.Encode(tmp, img); err != nil {
		tmp.Close()
		return 0, fmt.Errorf("encode png: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return 0, err
	}
	info, err := tmp.Stat()
	if err != nil {
		tmp.Close()
		return 0, err
	}
	if err := tmp.Close(); err != nil {
		return 0, err
	}

	if err := os.Link(tmpName, path); err != nil {
		return 0, err
	}
	return info.Size(), nil
}
