package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddressOneLine(t *testing.T) {
	tests := []struct {
		name     string
		address  *Address
		expected string
	}{
		{"nil address", nil, ""},
		{"all parts", &Address{Street: "One Apple Park Way", City: "Cupertino", Country: "United States"}, "One Apple Park Way, Cupertino, United States"},
		{"missing street", &Address{City: "Culver City", Country: "United States"}, "Culver City, United States"},
		{"missing middle part", &Address{Street: "1 Tesla Road", Country: "United States"}, "1 Tesla Road, United States"},
		{"state and postal code ignored", &Address{State: "CA", PostalCode: "95014"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.address.OneLine())
		})
	}
}

func TestCompanyNationalIDs(t *testing.T) {
	c := Company{RegistrationNumbers: []RegistrationNumber{
		{Type: "Federal Tax ID", Number: "94-2404110"},
		{Type: "State Registration", Number: "C0806592"},
	}}
	assert.Equal(t, "Federal Tax ID: 94-2404110; State Registration: C0806592", c.NationalIDs())
	assert.Empty(t, (&Company{}).NationalIDs())
}

func TestNodeLevel(t *testing.T) {
	t.Run("absent level differs from zero", func(t *testing.T) {
		var n Node
		require.NoError(t, json.Unmarshal([]byte(`{"duns":"1","primaryName":"A"}`), &n))
		assert.Nil(t, n.HierarchyLevel)
		assert.Equal(t, 7, n.LevelOr(7))

		require.NoError(t, json.Unmarshal([]byte(`{"duns":"1","primaryName":"A","hierarchyLevel":0}`), &n))
		require.NotNil(t, n.HierarchyLevel)
		assert.Equal(t, 0, n.LevelOr(7))
	})
}

func TestHierarchySize(t *testing.T) {
	var nilHierarchy *Hierarchy
	assert.Zero(t, nilHierarchy.Size())

	h := &Hierarchy{
		GlobalUltimate: &Node{DUNS: "1"},
		Parent:         &Node{DUNS: "2"},
		Subsidiaries:   []Node{{DUNS: "3"}},
	}
	assert.Equal(t, 3, h.Size())
}
