package dnb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"partnersearch/internal/company/models"
	"partnersearch/pkg/platform/sentinel"
)

type MockClientSuite struct {
	suite.Suite
	client *MockClient
}

func TestMockClientSuite(t *testing.T) {
	suite.Run(t, new(MockClientSuite))
}

func (s *MockClientSuite) SetupTest() {
	s.client = NewMockClient(nil)
}

func (s *MockClientSuite) search(c Criteria) []string {
	results, err := s.client.Search(context.Background(), c)
	s.Require().NoError(err)
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.DUNS
	}
	return out
}

func yes() *bool { v := true; return &v }

func (s *MockClientSuite) TestSearchPriority() {
	s.Run("duns exact match", func() {
		s.Equal([]string{"832563616"}, s.search(Criteria{DUNS: "832563616"}))
	})

	s.Run("non matching duns falls through to name", func() {
		s.Equal([]string{"804735132"}, s.search(Criteria{DUNS: "000000000", CompanyName: "apple"}))
	})

	s.Run("local identifier beats company name", func() {
		s.Equal([]string{"001234567"}, s.search(Criteria{LocalIdentifier: "1144442", CompanyName: "apple"}))
	})

	s.Run("company name is case-insensitive", func() {
		s.Equal([]string{"313046411"}, s.search(Criteria{CompanyName: "GOOGLE"}))
	})

	s.Run("geography matches any of continent, country, city", func() {
		s.Len(s.search(Criteria{Continent: "North America"}), 4)
		s.Equal([]string{"804735132"}, s.search(Criteria{City: "cupertino"}))
		s.Empty(s.search(Criteria{Continent: "north america"}), "continent match is exact")
	})

	s.Run("phone fax substring", func() {
		s.Equal([]string{"001234567"}, s.search(Criteria{PhoneFax: "882-8080"}))
	})

	s.Run("has phone", func() {
		s.Len(s.search(Criteria{HasPhone: yes()}), 4)
	})

	s.Run("no criteria matches nothing", func() {
		s.Empty(s.search(Criteria{}))
	})
}

func (s *MockClientSuite) TestHierarchy() {
	ctx := context.Background()

	s.Run("apple has a full hierarchy", func() {
		env, err := s.client.Hierarchy(ctx, "804735132")
		s.Require().NoError(err)
		s.Equal(MockDataSource, env.DataSource)
		s.Len(env.Hierarchy.Subsidiaries, 2)
		s.Len(env.Hierarchy.FamilyTreeMembers, 3)
	})

	s.Run("tesla has no hierarchy", func() {
		_, err := s.client.Hierarchy(ctx, "832563616")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("unknown duns", func() {
		_, err := s.client.Hierarchy(ctx, "123456789")
		s.ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("results are fresh copies", func() {
		first, err := s.client.Hierarchy(ctx, "804735132")
		s.Require().NoError(err)
		first.Hierarchy.Subsidiaries[0].PrimaryName = "changed"

		second, err := s.client.Hierarchy(ctx, "804735132")
		s.Require().NoError(err)
		s.Equal("Apple Retail, Inc.", second.Hierarchy.Subsidiaries[0].PrimaryName)
	})
}

func TestCriteria(t *testing.T) {
	t.Run("specified", func(t *testing.T) {
		assert.False(t, Criteria{}.Specified())
		assert.False(t, Criteria{CompanyName: "   ", ExactMatch: true}.Specified())
		assert.True(t, Criteria{City: "Paris"}.Specified())
		assert.True(t, Criteria{HasFax: yes()}.Specified())
	})

	t.Run("applied omits unset criteria", func(t *testing.T) {
		applied := Criteria{CompanyName: "Apple", HasPhone: yes()}.Applied()
		assert.Equal(t, map[string]any{"company_name": "Apple", "has_phone": true, "exact_match": false}, applied)
	})
}

func TestMatchesWithoutAddress(t *testing.T) {
	co := &models.Company{DUNS: "1", CompanyName: "No Address Ltd"}
	require.False(t, Matches(Criteria{Country: "France"}, co))
}
