// Package cooling provides the sample inventory of the cooled tray storage.
// Samples are placed into trays through Place rows; each sample belongs to a
// SampleKind which defines how long it stays valid after registration.
package cooling

import (
	"math"
	"time"
)

// Ids are stored in INT columns.
const (
	MinID = math.MinInt32
	MaxID = math.MaxInt32
)

// ValidID reports whether id fits the id columns of the store.
func ValidID(id int) bool {
	return id >= MinID && id <= MaxID
}

// SampleKind is read-only reference data describing a category of sample.
type SampleKind struct {
	ID            int    `db:"samplekindid" json:"sampleKindId"`
	Text          string `db:"text" json:"text"`
	ValidNoOfDays int    `db:"validnoofdays" json:"validNoOfDays"`
}

// Sample is a tracked specimen. It is never updated in place.
type Sample struct {
	ID           int `db:"sampleid" json:"sampleId"`
	SampleKindID int `db:"samplekindid" json:"sampleKindId"`

	// ExpirationDate is a calendar date, stored at UTC midnight.
	ExpirationDate time.Time `db:"expirationdate" json:"expirationDate"`
}

// NewSample builds a sample that expires validNoOfDays after createdAt.
func NewSample(sampleID, sampleKindID int, createdAt time.Time, validNoOfDays int) *Sample {
	return &Sample{
		ID:             sampleID,
		SampleKindID:   sampleKindID,
		ExpirationDate: ExpirationDate(createdAt, validNoOfDays),
	}
}

// Tray is a storage container holding samples via Place rows.
type Tray struct {
	ID       int `db:"trayid" json:"trayId"`
	Capacity int `db:"capacity" json:"capacity"`
}

// Place links a sample to the slot it occupies in a tray.
type Place struct {
	TrayID   int `db:"trayid" json:"trayId"`
	PlaceNo  int `db:"placeno" json:"placeNo"`
	SampleID int `db:"sampleid" json:"sampleId"`
}

// ExpirationDate returns the calendar date validNoOfDays after the date of
// createdAt. The date is taken in createdAt's own location, so a sample
// registered at 23:30 local time counts from that local day.
func ExpirationDate(createdAt time.Time, validNoOfDays int) time.Time {
	return DateOf(createdAt).AddDate(0, 0, validNoOfDays)
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ClearTrayResult reports what a tray clearing removed.
type ClearTrayResult struct {
	TrayID        int   `json:"trayId"`
	PlacesRemoved int64 `json:"placesRemoved"`

	// DeletedSamples were removed from the sample table.
	DeletedSamples []int `json:"deletedSamples"`

	// MissingSamples were placed in the tray but had no sample row left.
	MissingSamples []int `json:"missingSamples"`
}
