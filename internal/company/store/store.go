// Package store keeps the companies most recently returned by search, keyed by
// D-U-N-S number.
package store

import (
	"context"

	"partnersearch/internal/company/models"
)

// DefaultRecentLimit caps the recently-searched listing.
const DefaultRecentLimit = 50

// Store persists searched company profiles.
type Store interface {
	// Upsert inserts the company or replaces the stored profile with the same duns.
	Upsert(ctx context.Context, company models.Company) error
	// ListRecent returns up to limit companies ordered by LastUpdated, newest first.
	ListRecent(ctx context.Context, limit int) ([]models.Company, error)
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultRecentLimit
	}
	return limit
}
