package dto

import (
	"time"

	"coolstore/internal/domain/cooling"
)

// CreateSampleRequest is the body of POST /samples.
type CreateSampleRequest struct {
	SampleID     *int `json:"sampleId" binding:"required"`
	SampleKindID *int `json:"sampleKindId" binding:"required"`
}

// SampleResponse is the API shape of a sample.
type SampleResponse struct {
	SampleID       int    `json:"sampleId"`
	SampleKindID   int    `json:"sampleKindId"`
	ExpirationDate string `json:"expirationDate"` // YYYY-MM-DD
}

// FromSample converts domain model to response.
func FromSample(s *cooling.Sample) SampleResponse {
	return SampleResponse{
		SampleID:       s.ID,
		SampleKindID:   s.SampleKindID,
		ExpirationDate: s.ExpirationDate.Format(time.DateOnly),
	}
}

// ClearTrayResponse reports the outcome of clearing a tray.
type ClearTrayResponse struct {
	TrayID         int   `json:"trayId"`
	PlacesRemoved  int64 `json:"placesRemoved"`
	DeletedSamples []int `json:"deletedSamples"`
	MissingSamples []int `json:"missingSamples"`
}

// FromClearTrayResult converts domain result to response.
func FromClearTrayResult(r cooling.ClearTrayResult) ClearTrayResponse {
	resp := ClearTrayResponse{
		TrayID:         r.TrayID,
		PlacesRemoved:  r.PlacesRemoved,
		DeletedSamples: r.DeletedSamples,
		MissingSamples: r.MissingSamples,
	}
	if resp.DeletedSamples == nil {
		resp.DeletedSamples = []int{}
	}
	if resp.MissingSamples == nil {
		resp.MissingSamples = []int{}
	}
	return resp
}
