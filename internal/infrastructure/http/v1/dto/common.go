// Package dto provides Data Transfer Objects for API requests/responses.
package dto

// IDResponse is returned by create endpoints.
type IDResponse struct {
	ID string `json:"id"`
}

// ListResponse wraps a plain list.
type ListResponse[T any] struct {
	Items []T `json:"items"`
	Count int `json:"count"`
}

// NewListResponse creates a list response; nil items render as [].
func NewListResponse[T any](items []T) ListResponse[T] {
	if items == nil {
		items = []T{}
	}
	return ListResponse[T]{Items: items, Count: len(items)}
}
