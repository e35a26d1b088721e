// Package service loads corporate hierarchies, projects them into tree views
// and produces spreadsheet exports.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"golang.org/x/sync/singleflight"

	"partnersearch/internal/audit"
	"partnersearch/internal/company/models"
	"partnersearch/internal/dnb"
	"partnersearch/internal/hierarchy"
	"partnersearch/internal/hierarchy/cache"
	"partnersearch/pkg/domain"
	dErrors "partnersearch/pkg/domain-errors"
	"partnersearch/pkg/platform/sentinel"
)

var tracer = otel.Tracer("partnersearch/hierarchy")

const (
	defaultHierarchyTTL = 15 * time.Minute
	defaultLinkTTL      = 5 * time.Minute
)

type AuditPublisher interface {
	Emit(ctx context.Context, e audit.Event) error
}

// Service orchestrates hierarchy lookups and exports.
type Service struct {
	client       dnb.Client
	cache        cache.HierarchyCache
	artifacts    cache.ArtifactStore
	hierarchyTTL time.Duration
	linkTTL      time.Duration
	audit        AuditPublisher
	metrics      *Metrics
	logger       *slog.Logger
	now          func() time.Time
	newID        func() string
	fetches      singleflight.Group
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithHierarchyCache replaces the in-memory cache. A ttl <= 0 disables caching.
func WithHierarchyCache(c cache.HierarchyCache, ttl time.Duration) Option {
	return func(s *Service) {
		s.cache = c
		s.hierarchyTTL = ttl
	}
}

func WithArtifactStore(a cache.ArtifactStore, ttl time.Duration) Option {
	return func(s *Service) {
		s.artifacts = a
		s.linkTTL = ttl
	}
}

func WithAuditPublisher(p AuditPublisher) Option {
	return func(s *Service) {
		s.audit = p
	}
}

func WithMetrics(m *Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func withIDGenerator(gen func() string) Option {
	return func(s *Service) {
		s.newID = gen
	}
}

// New constructs a Service backed by client. Without options it caches in
// memory and audits nothing.
func New(client dnb.Client, opts ...Option) *Service {
	s := &Service{
		client:       client,
		hierarchyTTL: defaultHierarchyTTL,
		linkTTL:      defaultLinkTTL,
		logger:       slog.Default(),
		now:          time.Now,
		newID:        newArtifactID,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.cache == nil {
		s.cache = cache.NewInMemoryHierarchyCache(s.now)
	}
	if s.artifacts == nil {
		s.artifacts = cache.NewInMemoryArtifactStore(s.now)
	}
	return s
}

// Get returns the hierarchy envelope for duns, reading through the cache.
// Concurrent calls for the same duns share one upstream fetch.
func (s *Service) Get(ctx context.Context, rawDUNS string) (*models.Envelope, error) {
	duns, err := domain.ParseDUNS(rawDUNS)
	if err != nil {
		return nil, err
	}
	ctx, span := tracer.Start(ctx, "hierarchy.Get")
	defer span.End()
	span.SetAttributes(attribute.String("duns", duns.String()))

	if env, ok := s.cached(ctx, duns.String()); ok {
		span.SetAttributes(attribute.Bool("cache_hit", true))
		return env, nil
	}

	v, err, shared := s.fetches.Do(duns.String(), func() (any, error) {
		return s.fetch(context.WithoutCancel(ctx), duns.String())
	})
	if shared {
		s.metrics.sharedFetch()
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return v.(*models.Envelope), nil
}

func (s *Service) cached(ctx context.Context, duns string) (*models.Envelope, bool) {
	if s.hierarchyTTL <= 0 {
		return nil, false
	}
	env, err := s.cache.Get(ctx, duns)
	switch {
	case err == nil:
		s.metrics.cacheLookup("hit")
		return env, true
	case errors.Is(err, sentinel.ErrNotFound):
		s.metrics.cacheLookup("miss")
	default:
		s.metrics.cacheLookup("error")
		s.logger.WarnContext(ctx, "hierarchy cache read failed", "error", err, "duns", duns)
	}
	return nil, false
}

func (s *Service) fetch(ctx context.Context, duns string) (*models.Envelope, error) {
	env, err := s.client.Hierarchy(ctx, duns)
	if err != nil {
		return nil, s.translate(ctx, err, duns)
	}
	if env == nil || env.Hierarchy == nil {
		return nil, dErrors.New(dErrors.CodeMissingHierarchy, "no corporate hierarchy available for duns "+duns)
	}
	if env.DataSource == "" {
		env.DataSource = models.DefaultDataSource
	}
	if s.hierarchyTTL > 0 {
		if err := s.cache.Set(ctx, env, s.hierarchyTTL); err != nil {
			s.logger.WarnContext(ctx, "hierarchy cache write failed", "error", err, "duns", duns)
		}
	}
	return env, nil
}

// translate maps upstream sentinel errors onto domain codes.
func (s *Service) translate(ctx context.Context, err error, duns string) error {
	if _, ok := dErrors.From(err); ok {
		return err
	}
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeMissingHierarchy, "no corporate hierarchy available for duns "+duns)
	case errors.Is(err, sentinel.ErrRateLimited):
		return dErrors.Wrap(err, dErrors.CodeUpstreamRateLimited, "D&B API rate limit reached, retry later")
	case errors.Is(err, sentinel.ErrUnavailable):
		s.logger.ErrorContext(ctx, "D&B API unavailable", "error", err, "duns", duns)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "D&B API is unavailable")
	default:
		s.logger.ErrorContext(ctx, "hierarchy lookup failed", "error", err, "duns", duns)
		return dErrors.Wrap(err, dErrors.CodeInternal, "hierarchy lookup failed")
	}
}

// Tree returns the interactive tree projection for duns.
func (s *Service) Tree(ctx context.Context, rawDUNS string, mode hierarchy.ViewMode, term string) (*hierarchy.TreeView, error) {
	env, err := s.Get(ctx, rawDUNS)
	if err != nil {
		return nil, err
	}
	view := hierarchy.BuildTree(env.DUNS, env.Hierarchy, mode, term)
	return &view, nil
}
