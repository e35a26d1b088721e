package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnersearch/internal/company/models"
)

func company(duns string, updated time.Time) models.Company {
	return models.Company{DUNS: duns, CompanyName: "Company " + duns, LastUpdated: updated}
}

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("upsert replaces by duns", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Upsert(ctx, company("1", base)))
		updated := company("1", base.Add(time.Minute))
		updated.CompanyName = "Renamed"
		require.NoError(t, s.Upsert(ctx, updated))

		got, err := s.ListRecent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "Renamed", got[0].CompanyName)
	})

	t.Run("lists newest first", func(t *testing.T) {
		s := NewInMemory()
		require.NoError(t, s.Upsert(ctx, company("old", base)))
		require.NoError(t, s.Upsert(ctx, company("new", base.Add(time.Hour))))
		require.NoError(t, s.Upsert(ctx, company("mid", base.Add(time.Minute))))

		got, err := s.ListRecent(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, []string{"new", "mid", "old"}, dunsOf(got))
	})

	t.Run("applies limit and default cap", func(t *testing.T) {
		s := NewInMemory()
		for i := 0; i < DefaultRecentLimit+5; i++ {
			require.NoError(t, s.Upsert(ctx, company(fmt.Sprintf("%09d", i), base.Add(time.Duration(i)*time.Second))))
		}

		got, err := s.ListRecent(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, got, 3)

		got, err = s.ListRecent(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, got, DefaultRecentLimit)
	})

	t.Run("empty store lists nothing", func(t *testing.T) {
		got, err := NewInMemory().ListRecent(ctx, 5)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func dunsOf(cs []models.Company) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.DUNS)
	}
	return out
}
