// Package journal keeps an append-only SQLite record of saved glyphs.
package journal

import "time"

// Entry is one saved artifact.
type Entry struct {
	ID       int64     `json:"id"`
	Category string    `json:"category"`
	Index    int       `json:"index"`
	Path     string    `json:"path"`
	Size     int64     `json:"size"`
	SavedAt  time.Time `json:"saved_at"`
}

// CategoryStat summarizes the saves of one category.
type CategoryStat struct {
	Category  string
	Saves     int
	LastSaved time.Time
}
