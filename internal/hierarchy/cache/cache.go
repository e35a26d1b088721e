// Package cache holds short-lived hierarchy lookups and export artifacts.
//
// Misses are reported as sentinel.ErrNotFound. Neither cache is a source of
// truth: entries expire and callers fall back to the upstream lookup.
package cache

import (
	"context"
	"time"

	"partnersearch/internal/company/models"
)

// HierarchyCache caches hierarchy envelopes by D-U-N-S number.
type HierarchyCache interface {
	Get(ctx context.Context, duns string) (*models.Envelope, error)
	Set(ctx context.Context, env *models.Envelope, ttl time.Duration) error
}

// Artifact is an encoded export waiting to be downloaded.
type Artifact struct {
	ID          string    `json:"id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Data        []byte    `json:"data"`
	CreatedAt   time.Time `json:"created_at"`
}

// ArtifactStore keeps export artifacts for one download within a TTL.
type ArtifactStore interface {
	Put(ctx context.Context, a *Artifact, ttl time.Duration) error
	// Take returns the artifact and removes it.
	Take(ctx context.Context, id string) (*Artifact, error)
}
