//go:build integration

package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"partnersearch/internal/company/models"
	"partnersearch/internal/company/store"
	"partnersearch/pkg/platform/tx"
	"partnersearch/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
	s.Require().NoError(s.store.EnsureSchema(context.Background()))
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "cached_companies"))
}

func (s *PostgresStoreSuite) TestUpsertRoundTripsDocument() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)
	c := models.Company{
		DUNS:        "804735132",
		CompanyName: "Apple Inc.",
		Address:     &models.Address{City: "Cupertino", Country: "United States"},
		RegistrationNumbers: []models.RegistrationNumber{
			{Type: "Federal Taxpayer Identification Number (US)", Number: "942404110", IsPreferred: true},
		},
		EmployeeCount:  models.Int(164000),
		LastUpdated:    now,
		DataSource:     "Mock Data",
		SearchCriteria: map[string]any{"company_name": "apple", "exact_match": false},
	}
	s.Require().NoError(s.store.Upsert(ctx, c))

	c.CompanyName = "Apple"
	c.LastUpdated = now.Add(time.Second)
	s.Require().NoError(s.store.Upsert(ctx, c))

	got, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal("Apple", got[0].CompanyName)
	s.Equal("Cupertino", got[0].Address.City)
	s.Equal(164000, *got[0].EmployeeCount)
	s.True(got[0].LastUpdated.Equal(c.LastUpdated))
}

func (s *PostgresStoreSuite) TestListRecentOrdersAndLimits() {
	ctx := context.Background()
	base := time.Now().UTC().Truncate(time.Second)
	for i, duns := range []string{"100000001", "100000002", "100000003"} {
		s.Require().NoError(s.store.Upsert(ctx, models.Company{
			DUNS:        duns,
			CompanyName: duns,
			LastUpdated: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	got, err := s.store.ListRecent(ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("100000003", got[0].DUNS)
	s.Equal("100000002", got[1].DUNS)
}

func (s *PostgresStoreSuite) TestUpsertRollsBackWithTransaction() {
	ctx := context.Background()
	runner := tx.NewPostgresRunner(s.postgres.DB)
	boom := errors.New("boom")

	err := runner.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.store.Upsert(ctx, models.Company{DUNS: "200000001", CompanyName: "x", LastUpdated: time.Now()}); err != nil {
			return err
		}
		return boom
	})
	s.ErrorIs(err, boom)

	got, err := s.store.ListRecent(ctx, 10)
	s.Require().NoError(err)
	s.Empty(got)
}
