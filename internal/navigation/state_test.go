package navigation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"partnersearch/internal/company/models"
	"partnersearch/internal/hierarchy"
)

func co(duns, name string) models.Company {
	return models.Company{DUNS: duns, CompanyName: name}
}

func env(duns string) *models.Envelope {
	return &models.Envelope{DUNS: duns, Hierarchy: &models.Hierarchy{}}
}

func TestReduceSelect(t *testing.T) {
	s := Reduce(Initial(), Select{Company: co("804735132", "Apple Inc."), Token: "t1"})
	assert.True(t, s.Loading)
	assert.Equal(t, "t1", s.Pending)
	assert.Nil(t, s.Hierarchy)
	assert.Empty(t, s.History)

	s = Reduce(s, HierarchyLoaded{Token: "t1", Envelope: env("804735132")})
	assert.False(t, s.Loading)
	assert.Empty(t, s.Pending)
	require.NotNil(t, s.Hierarchy)

	t.Run("company without duns does not load", func(t *testing.T) {
		s := Reduce(Initial(), Select{Company: co("", "Unknown"), Token: "t2"})
		assert.False(t, s.Loading)
		assert.Empty(t, s.Pending)
	})

	t.Run("selection resets the view", func(t *testing.T) {
		s := Reduce(Reduce(Initial(), ToggleView{}), Select{Company: co("1", "x"), Token: "t"})
		assert.Equal(t, hierarchy.ViewFull, s.View)
	})
}

func TestReduceDiscardsStaleResponses(t *testing.T) {
	s := Reduce(Initial(), Select{Company: co("A", "A"), Token: "a"})
	s = Reduce(s, Select{Company: co("B", "B"), Token: "b"})

	stale := Reduce(s, HierarchyLoaded{Token: "a", Envelope: env("A")})
	assert.Equal(t, s, stale)

	staleFailure := Reduce(s, HierarchyFailed{Token: "a", Notice: "boom"})
	assert.Equal(t, s, staleFailure)

	s = Reduce(s, HierarchyLoaded{Token: "b", Envelope: env("B")})
	assert.Equal(t, "B", s.Hierarchy.DUNS)
	assert.Equal(t, "B", s.Selected.DUNS)

	again := Reduce(s, HierarchyLoaded{Token: "b", Envelope: env("X")})
	assert.Equal(t, "B", again.Hierarchy.DUNS, "a response is applied at most once")
}

func TestReduceFailureNeverLeavesLoading(t *testing.T) {
	s := Reduce(Initial(), Select{Company: co("A", "A"), Token: "a"})
	s = Reduce(s, HierarchyFailed{Token: "a", Notice: "D&B is currently unavailable"})
	assert.False(t, s.Loading)
	assert.Nil(t, s.Hierarchy)
	assert.Equal(t, "D&B is currently unavailable", s.Notice)
	assert.Equal(t, "A", s.Selected.DUNS)
}

func TestReduceHistory(t *testing.T) {
	at := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

	s := Reduce(Initial(), Select{Company: co("A", "A"), Token: "a"})
	s = Reduce(s, HierarchyLoaded{Token: "a", Envelope: env("A")})
	s = Reduce(s, NavigateTo{Company: co("B", "B"), Token: "b", At: at})
	s = Reduce(s, HierarchyLoaded{Token: "b", Envelope: env("B")})
	s = Reduce(s, NavigateTo{Company: co("C", "C"), Token: "c", At: at.Add(time.Minute)})

	require.Len(t, s.History, 2)
	assert.Equal(t, "A", s.History[0].Company.DUNS)
	assert.Equal(t, "A", s.History[0].Hierarchy.DUNS)
	assert.Equal(t, at, s.History[0].Timestamp)
	assert.Equal(t, "B", s.History[1].Company.DUNS)

	s = Reduce(s, Back{})
	assert.Equal(t, "B", s.Selected.DUNS)
	assert.Equal(t, "B", s.Hierarchy.DUNS)
	assert.False(t, s.Loading)
	assert.Len(t, s.History, 1)

	late := Reduce(s, HierarchyLoaded{Token: "c", Envelope: env("C")})
	assert.Equal(t, "B", late.Hierarchy.DUNS, "fetch started before Back is stale")

	s = Reduce(s, Back{})
	assert.Equal(t, "A", s.Selected.DUNS)
	assert.False(t, s.CanGoBack())

	unchanged := Reduce(s, Back{})
	assert.Equal(t, s, unchanged)
}

func TestReduceDoesNotMutateInput(t *testing.T) {
	s := Reduce(Initial(), NavigateTo{Company: co("A", "A"), Token: "a"})
	s = Reduce(s, NavigateTo{Company: co("B", "B"), Token: "b"})
	before := len(s.History)

	_ = Reduce(s, NavigateTo{Company: co("C", "C"), Token: "c"})
	_ = Reduce(s, Back{})
	assert.Len(t, s.History, before)
}

func TestReduceViewAndClear(t *testing.T) {
	s := Reduce(Initial(), ToggleView{})
	assert.Equal(t, hierarchy.ViewDownward, s.View)
	s = Reduce(s, ToggleView{})
	assert.Equal(t, hierarchy.ViewFull, s.View)
	s = Reduce(s, SetView{Mode: hierarchy.ViewDownward})
	assert.Equal(t, hierarchy.ViewDownward, s.View)

	s = Reduce(s, NavigateTo{Company: co("A", "A"), Token: "a"})
	s = Reduce(s, ClearSelection{})
	assert.Nil(t, s.Selected)
	assert.False(t, s.Loading)
	assert.Len(t, s.History, 1, "clearing keeps the back stack")

	s = Reduce(s, Notify{Message: "hello"})
	assert.Equal(t, "hello", s.Notice)
}
