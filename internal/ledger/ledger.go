// Package ledger keeps the per-category save counts in a YAML document.
//
// The document is a flat mapping of category name to count:
//
//	air: 2
//	earth: 2
//	fire: 2
//	water: 2
//
// Every write replaces the whole document. Entries the caller never touches
// are preserved as loaded.
package ledger

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is returned when the document exists but cannot be used.
var ErrInvalid = errors.New("invalid ledger document")

// Ledger is the in-memory copy of the count document.
type Ledger struct {
	path   string
	counts map[string]int
}

// Load reads the document at path. The file must exist.
func Load(path string) (*Ledger, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrInvalid, path)
	}

	// Decoding straight into int would truncate 2.5 to 2.
	var nodes map[string]yaml.Node
	if err := yaml.Unmarshal(data, &nodes); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}

	counts := make(map[string]int, len(nodes))
	sum := 0
	for name, node := range nodes {
		if node.Kind != yaml.ScalarNode || node.ShortTag() != "!!int" {
			return nil, fmt.Errorf("%w: count for %q is not an integer: %q", ErrInvalid, name, node.Value)
		}
		var n int
		if err := node.Decode(&n); err != nil {
			return nil, fmt.Errorf("%w: count for %q: %v", ErrInvalid, name, err)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative count %d for %q", ErrInvalid, n, name)
		}
		if n > math.MaxInt-sum {
			return nil, fmt.Errorf("%w: total overflows at %q", ErrInvalid, name)
		}
		sum += n
		counts[name] = n
	}

	return &Ledger{path: path, counts: counts}, nil
}

// Count returns the count for category, zero if it has no entry.
func (l *Ledger) Count(category string) int {
	return l.counts[category]
}

// Total returns the sum of every entry in the document.
func (l *Ledger) Total() int {
	total := 0
	for _, n := range l.counts {
		total += n
	}
	return total
}

// Counts returns a copy of all entries.
func (l *Ledger) Counts() map[string]int {
	return maps.Clone(l.counts)
}

// Names returns the entry names in sorted order.
func (l *Ledger) Names() []string {
	return slices.Sorted(maps.Keys(l.counts))
}

// Set overwrites the count for category.
func (l *Ledger) Set(category string, n int) {
	l.counts[category] = n
}

// Persist writes the full document. The new content goes to a temporary file
// in the same directory which then replaces the old document.
func (l *Ledger) Persist() error {
	data, err := yaml.Marshal(l.counts)
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	dir := filepath.Dir(l.path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(l.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp ledger: %w", err)
	}
	tmpName := tmp.Name()

	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("chmod ledger: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("sync ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmpName, l.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
