package ledger

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func writeLedger(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "element_counts.yml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write ledger: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeLedger(t, "air: 2\nearth: 1\nfire: 0\nwater: 4\n")

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if l.Total() != 7 {
		t.Errorf("Total = %d, want 7", l.Total())
	}
	if l.Count("water") != 4 {
		t.Errorf("Count(water) = %d, want 4", l.Count("water"))
	}
	if l.Count("time") != 0 {
		t.Errorf("Count(time) = %d, want 0 for a missing entry", l.Count("time"))
	}
	if diff := cmp.Diff([]string{"air", "earth", "fire", "water"}, l.Names()); diff != "" {
		t.Errorf("Names mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("err = %v, want fs.ErrNotExist", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", ""},
		{"blank", "  \n"},
		{"not a mapping", "- air\n- fire\n"},
		{"not a number", "air: lots\n"},
		{"negative", "air: -1\n"},
		{"broken", "air: [1\n"},
		{"fraction", "air: 2.5\nearth: 1\n"},
		{"float", "air: 3.0\n"},
		{"quoted", "air: \"2\"\n"},
		{"nested", "air:\n  count: 2\n"},
		{"null", "air:\n"},
		{"total overflows", "air: 9223372036854775807\nearth: 2\n"},
		{"beyond int64", "air: 9223372036854775808\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeLedger(t, tt.content))
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("err = %v, want ErrInvalid", err)
			}
		})
	}
}

func TestPersistRoundTrip(t *testing.T) {
	path := writeLedger(t, "air: 2\nearth: 2\nfire: 2\nwater: 2\nlegacy: 5\n")

	l, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	l.Set("air", l.Count("air")+1)
	l.Set("fire", 7)
	if err := l.Persist(); err != nil {
		t.Fatalf("Persist: %v", err)
	}

	reopened, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	want := map[string]int{"air": 3, "earth": 2, "fire": 7, "water": 2, "legacy": 5}
	if diff := cmp.Diff(want, reopened.Counts()); diff != "" {
		t.Errorf("counts mismatch (-want +got):\n%s", diff)
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the ledger", len(entries))
	}
}

func TestCountsIsCopy(t *testing.T) {
	l, err := Load(writeLedger(t, "air: 1\n"))
	if err != nil {
		t.Fatal(err)
	}
	c := l.Counts()
	c["air"] = 99
	if l.Count("air") != 1 {
		t.Error("mutating Counts() leaked into the ledger")
	}
}
