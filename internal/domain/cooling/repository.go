package cooling

import (
	"context"
)

// Repository defines persistence operations of the sample inventory.
// Ids outside [MinID, MaxID] cannot exist: lookups report NotFound and
// CreateSample reports a Validation error.
type Repository interface {
	// ListSampleKinds returns the labels of all sample kinds, sorted ascending.
	ListSampleKinds(ctx context.Context) ([]string, error)

	// FindSampleByID retrieves a sample. Returns a NotFound error if absent.
	FindSampleByID(ctx context.Context, sampleID int) (*Sample, error)

	// CreateSample registers a new sample of the given kind with an
	// expiration date computed from the kind's validity window.
	// Unknown kind is a Validation error, a used id is a Conflict.
	CreateSample(ctx context.Context, sampleID, sampleKindID int) error

	// ClearTray removes all Place rows of the tray and then every sample
	// that was placed in it. Returns a NotFound error if the tray is unknown.
	ClearTray(ctx context.Context, trayID int) (ClearTrayResult, error)
}
