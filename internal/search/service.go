// Package search runs unified company searches and keeps the
// recently-searched list.
package search

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"partnersearch/internal/company/models"
	"partnersearch/internal/company/store"
	"partnersearch/internal/dnb"
	dErrors "partnersearch/pkg/domain-errors"
	"partnersearch/pkg/platform/sentinel"
	"partnersearch/pkg/platform/tx"
)

const (
	maxFieldLength = 200
	maxDUNSLength  = 16
)

type Service struct {
	client dnb.Client
	store  store.Store
	tx     tx.Runner
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithTxRunner wraps the upsert of a result page in one transaction.
func WithTxRunner(r tx.Runner) Option {
	return func(s *Service) {
		s.tx = r
	}
}

func New(client dnb.Client, companies store.Store, opts ...Option) *Service {
	s := &Service{
		client: client,
		store:  companies,
		tx:     tx.NoopRunner{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Normalize trims every text criterion.
func Normalize(c dnb.Criteria) dnb.Criteria {
	for _, f := range []*string{
		&c.DUNS, &c.LocalIdentifier, &c.CompanyName, &c.Address, &c.City,
		&c.PostalCode, &c.State, &c.Country, &c.Continent, &c.PhoneFax,
	} {
		*f = strings.TrimSpace(*f)
	}
	return c
}

// Validate requires at least one criterion and caps field lengths.
func Validate(c dnb.Criteria) error {
	if !c.Specified() {
		return dErrors.New(dErrors.CodeValidation, "at least one search criterion is required")
	}
	if len(c.DUNS) > maxDUNSLength {
		return dErrors.New(dErrors.CodeValidation, "duns is too long")
	}
	for name, v := range c.Applied() {
		if s, ok := v.(string); ok && utf8.RuneCountInString(s) > maxFieldLength {
			return dErrors.New(dErrors.CodeValidation, name+" is too long")
		}
	}
	return nil
}

// Search queries D&B, stamps each result with the criteria that produced it
// and records the results as recently searched. Recording failures are logged
// and do not fail the search.
func (s *Service) Search(ctx context.Context, criteria dnb.Criteria) ([]models.Company, error) {
	criteria = Normalize(criteria)
	if err := Validate(criteria); err != nil {
		return nil, err
	}

	results, err := s.client.Search(ctx, criteria)
	if err != nil {
		return nil, s.translate(ctx, err)
	}
	if results == nil {
		results = []models.Company{}
	}
	applied := criteria.Applied()
	for i := range results {
		results[i].SearchCriteria = applied
	}

	if len(results) > 0 {
		err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
			for _, c := range results {
				if err := s.store.Upsert(ctx, c); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to record searched companies", "error", err, "count", len(results))
		}
	}

	s.logger.InfoContext(ctx, "unified search completed", "criteria", applied, "count", len(results))
	return results, nil
}

// Recent lists recently searched companies, newest first. Store failures are
// logged and yield an empty list.
func (s *Service) Recent(ctx context.Context, limit int) []models.Company {
	companies, err := s.store.ListRecent(ctx, limit)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list cached companies", "error", err)
		return []models.Company{}
	}
	if companies == nil {
		return []models.Company{}
	}
	return companies
}

func (s *Service) translate(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrRateLimited):
		return dErrors.Wrap(err, dErrors.CodeUpstreamRateLimited, "D&B API rate limit reached, retry later")
	case errors.Is(err, sentinel.ErrUnavailable):
		s.logger.ErrorContext(ctx, "D&B API unavailable", "error", err)
		return dErrors.Wrap(err, dErrors.CodeUnavailable, "D&B API is unavailable")
	default:
		s.logger.ErrorContext(ctx, "search failed", "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "search failed")
	}
}
