package search

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"partnersearch/internal/company/models"
	"partnersearch/internal/company/store"
	"partnersearch/internal/dnb"
	"partnersearch/internal/dnb/mocks"
	dErrors "partnersearch/pkg/domain-errors"
	"partnersearch/pkg/platform/sentinel"
)

type failingStore struct{ err error }

func (f failingStore) Upsert(context.Context, models.Company) error { return f.err }
func (f failingStore) ListRecent(context.Context, int) ([]models.Company, error) {
	return nil, f.err
}

type countingRunner struct{ calls int }

func (r *countingRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	r.calls++
	return fn(ctx)
}

type SearchServiceSuite struct {
	suite.Suite
	store   *store.InMemoryStore
	runner  *countingRunner
	service *Service
	logger  *slog.Logger
}

func TestSearchServiceSuite(t *testing.T) {
	suite.Run(t, new(SearchServiceSuite))
}

func (s *SearchServiceSuite) SetupTest() {
	s.store = store.NewInMemory()
	s.runner = &countingRunner{}
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.service = New(dnb.NewMockClient(nil), s.store, WithLogger(s.logger), WithTxRunner(s.runner))
}

func (s *SearchServiceSuite) TestValidation() {
	s.Run("no criteria", func() {
		_, err := s.service.Search(context.Background(), dnb.Criteria{CompanyName: "   "})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("field too long", func() {
		_, err := s.service.Search(context.Background(), dnb.Criteria{CompanyName: strings.Repeat("a", maxFieldLength+1)})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		s.Contains(err.Error(), "company_name")
	})

	s.Run("has_phone alone is a criterion", func() {
		yes := true
		s.NoError(Validate(dnb.Criteria{HasPhone: &yes}))
	})
}

func (s *SearchServiceSuite) TestSearchStampsAndRecords() {
	results, err := s.service.Search(context.Background(), dnb.Criteria{CompanyName: "  apple "})
	s.Require().NoError(err)
	s.Require().Len(results, 1)
	s.Equal("804735132", results[0].DUNS)
	s.Equal(map[string]any{"company_name": "apple", "exact_match": false}, results[0].SearchCriteria)

	s.Equal(1, s.runner.calls)
	recent := s.service.Recent(context.Background(), 10)
	s.Require().Len(recent, 1)
	s.Equal("apple", recent[0].SearchCriteria["company_name"])
}

func (s *SearchServiceSuite) TestNoResults() {
	results, err := s.service.Search(context.Background(), dnb.Criteria{CompanyName: "no such company"})
	s.Require().NoError(err)
	s.NotNil(results)
	s.Empty(results)
	s.Zero(s.runner.calls)
}

func (s *SearchServiceSuite) TestStoreFailures() {
	svc := New(dnb.NewMockClient(nil), failingStore{err: errors.New("db down")}, WithLogger(s.logger))

	results, err := svc.Search(context.Background(), dnb.Criteria{Country: "united states"})
	s.Require().NoError(err)
	s.Len(results, 4)

	recent := svc.Recent(context.Background(), 50)
	s.NotNil(recent)
	s.Empty(recent)
}

func (s *SearchServiceSuite) TestUpstreamErrors() {
	ctrl := gomock.NewController(s.T())
	client := mocks.NewMockClient(ctrl)
	svc := New(client, s.store, WithLogger(s.logger))

	client.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrUnavailable)
	_, err := svc.Search(context.Background(), dnb.Criteria{DUNS: "804735132"})
	s.True(dErrors.HasCode(err, dErrors.CodeUnavailable))

	client.EXPECT().Search(gomock.Any(), gomock.Any()).Return(nil, sentinel.ErrRateLimited)
	_, err = svc.Search(context.Background(), dnb.Criteria{DUNS: "804735132"})
	s.True(dErrors.HasCode(err, dErrors.CodeUpstreamRateLimited))
}
