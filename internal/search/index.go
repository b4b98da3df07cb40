// Package search mirrors searchable entities into a text index once their
// transaction commits, and answers ranked id queries against it.
package search

import (
	"context"
	"math"
)

//go:generate mockgen -source=index.go -destination=mocks/mock_index.go -package=mocks

// Index is an external full-text index holding documents keyed by (index, id).
type Index interface {
	// Add inserts or replaces the document id in index with fields as its body.
	Add(ctx context.Context, index string, id uint, fields map[string]interface{}) error
	// Remove deletes the document id from index. Removing a missing document is not an error.
	Remove(ctx context.Context, index string, id uint) error
	// Query returns one page of matching ids, best match first, and the total number of matches.
	Query(ctx context.Context, index, text string, page, perPage int) ([]uint, int64, error)
}

// pageOffset returns how many matches precede page, or false when page cannot exist.
func pageOffset(page, perPage int) (int, bool) {
	if page < 1 || perPage < 1 || page-1 > math.MaxInt/perPage {
		return 0, false
	}
	return (page - 1) * perPage, true
}

// NopIndex is used when search is disabled.
type NopIndex struct{}

func (NopIndex) Add(context.Context, string, uint, map[string]interface{}) error { return nil }

func (NopIndex) Remove(context.Context, string, uint) error { return nil }

func (NopIndex) Query(context.Context, string, string, int, int) ([]uint, int64, error) {
	return nil, 0, nil
}
