package capture

import (
	"fmt"
	"path/filepath"
)

// Drift is a category whose ledger count disagrees with the files on disk.
type Drift struct {
	Category string
	Ledger   int
	OnDisk   int
}

// Audit counts the img_*.png files in each category folder under datasetDir
// and reports every category where that number differs from counts. A
// missing folder counts as empty.
func Audit(datasetDir string, categories []string, counts map[string]int) ([]Drift, error) {
	var drift []Drift
	for _, category := range categories {
		n, err := CountArtifacts(datasetDir, category)
		if err != nil {
			return nil, err
		}
		if n != counts[category] {
			drift = append(drift, Drift{
				Category: category,
				Ledger:   counts[category],
				OnDisk:   n,
			})
		}
	}
	return drift, nil
}

// CountArtifacts returns the number of img_*.png files saved for category.
func CountArtifacts(datasetDir, category string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(datasetDir, category, "img_*.png"))
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", category, err)
	}
	return len(matches), nil
}
