package capture

import "errors"

var (
	// ErrConfig means the ledger document is missing or unusable. Fatal at startup.
	ErrConfig = errors.New("ledger config error")

	// ErrNoCategorySelected means Save was called with no active category.
	ErrNoCategorySelected = errors.New("no category selected")

	// ErrIO means the artifact could not be written. The ledger is unchanged.
	ErrIO = errors.New("save failed")

	// ErrMissingAsset means the reference image for a category is absent.
	ErrMissingAsset = errors.New("reference image missing")
)
