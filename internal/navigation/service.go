package navigation

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"partnersearch/internal/company/models"
	"partnersearch/internal/dnb"
	"partnersearch/internal/hierarchy"
	"partnersearch/pkg/domain"
	dErrors "partnersearch/pkg/domain-errors"
)

type HierarchyLoader interface {
	Get(ctx context.Context, duns string) (*models.Envelope, error)
}

type CompanySearcher interface {
	Search(ctx context.Context, criteria dnb.Criteria) ([]models.Company, error)
}

// Service drives each user's navigation state.
type Service struct {
	loader   HierarchyLoader
	searcher CompanySearcher
	store    *Store
	logger   *slog.Logger
	now      func() time.Time
	newToken func() string
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func NewService(loader HierarchyLoader, searcher CompanySearcher, store *Store, opts ...Option) *Service {
	s := &Service{
		loader:   loader,
		searcher: searcher,
		store:    store,
		logger:   slog.Default(),
		now:      time.Now,
		newToken: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) State(_ context.Context, user string) State {
	return s.store.Get(user)
}

// Select makes company current and loads its hierarchy.
func (s *Service) Select(ctx context.Context, user string, company models.Company) State {
	token := s.newToken()
	state := s.store.Dispatch(user, Select{Company: company, Token: token})
	if !state.Loading {
		return state
	}
	return s.load(ctx, user, token, company)
}

// NavigateTo looks duns up, pushes the current position and selects the
// result. Nothing is pushed when the company cannot be found.
func (s *Service) NavigateTo(ctx context.Context, user, rawDUNS string) (State, error) {
	duns, err := domain.ParseDUNS(rawDUNS)
	if err != nil {
		return s.store.Get(user), err
	}
	results, err := s.searcher.Search(ctx, dnb.Criteria{DUNS: duns.String(), ExactMatch: true})
	if err != nil {
		state := s.store.Dispatch(user, Notify{Message: fmt.Sprintf("Navigation to DUNS %s failed", duns)})
		return state, err
	}
	var target *models.Company
	for i := range results {
		if results[i].DUNS == duns.String() {
			target = &results[i]
			break
		}
	}
	if target == nil {
		msg := fmt.Sprintf("No information found for DUNS %s", duns)
		s.store.Dispatch(user, Notify{Message: msg})
		return s.store.Get(user), dErrors.New(dErrors.CodeNotFound, msg)
	}

	token := s.newToken()
	s.store.Dispatch(user, NavigateTo{Company: *target, Token: token, At: s.now()})
	return s.load(ctx, user, token, *target), nil
}

func (s *Service) load(ctx context.Context, user, token string, company models.Company) State {
	env, err := s.loader.Get(ctx, company.DUNS)
	if err != nil {
		s.logger.WarnContext(ctx, "hierarchy fetch failed during navigation",
			"error", err,
			"duns", company.DUNS,
			"user", user,
		)
		return s.store.Dispatch(user, HierarchyFailed{Token: token, Notice: failureNotice(err, company)})
	}
	return s.store.Dispatch(user, HierarchyLoaded{Token: token, Envelope: env})
}

func failureNotice(err error, company models.Company) string {
	name := company.CompanyName
	if name == "" {
		name = "DUNS " + company.DUNS
	}
	switch {
	case dErrors.HasCode(err, dErrors.CodeMissingHierarchy):
		return "No corporate hierarchy available for " + name
	case dErrors.HasCode(err, dErrors.CodeUnavailable), dErrors.HasCode(err, dErrors.CodeUpstreamRateLimited):
		return "D&B is currently unavailable; hierarchy for " + name + " could not be loaded"
	default:
		return "Hierarchy for " + name + " could not be loaded"
	}
}

func (s *Service) Back(_ context.Context, user string) State {
	return s.store.Dispatch(user, Back{})
}

func (s *Service) ToggleView(_ context.Context, user string) State {
	return s.store.Dispatch(user, ToggleView{})
}

func (s *Service) SetView(_ context.Context, user string, mode string) (State, error) {
	m, ok := hierarchy.ParseViewMode(mode)
	if !ok {
		return s.store.Get(user), dErrors.New(dErrors.CodeInvalidInput, "mode must be one of: full, downward")
	}
	return s.store.Dispatch(user, SetView{Mode: m}), nil
}

func (s *Service) Clear(_ context.Context, user string) State {
	return s.store.Dispatch(user, ClearSelection{})
}
