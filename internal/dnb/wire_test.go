package dnb

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const familyTreeFixture = `{
  "globalUltimateDuns": "100000001",
  "familyTreeMembers": [
    {
      "duns": "100000001",
      "primaryName": "Global Holdings",
      "primaryAddress": {"addressLocality": {"name": "New York"}, "addressCountry": {"name": "United States"}},
      "corporateLinkage": {
        "hierarchyLevel": 1,
        "familytreeRolesPlayed": [{"description": "Global Ultimate", "dnbCode": 12775}]
      }
    },
    {
      "duns": "200000002",
      "primaryName": "Domestic Holdings",
      "corporateLinkage": {
        "hierarchyLevel": 2,
        "familytreeRolesPlayed": [{"description": "Domestic Ultimate", "dnbCode": 12774}, {"description": "Parent/Headquarters", "dnbCode": 12773}],
        "globalUltimate": {"duns": "100000001"},
        "parent": {"duns": "100000001"}
      }
    },
    {
      "duns": "300000003",
      "primaryName": "Subject Co",
      "corporateLinkage": {
        "hierarchyLevel": 3,
        "familytreeRolesPlayed": [{"description": "Subsidiary", "dnbCode": 9159}],
        "globalUltimate": {"duns": "100000001"},
        "domesticUltimate": {"duns": "200000002"},
        "parent": {"duns": "200000002"}
      }
    },
    {
      "duns": "400000004",
      "primaryName": "Subject Sub",
      "corporateLinkage": {
        "hierarchyLevel": 4,
        "familytreeRolesPlayed": [{"description": "Subsidiary", "dnbCode": 9159}],
        "parent": {"duns": "300000003"}
      }
    },
    {
      "duns": "500000005",
      "primaryName": "Subject Branch",
      "corporateLinkage": {
        "hierarchyLevel": 4,
        "familytreeRolesPlayed": [{"description": "Branch", "dnbCode": 9141}],
        "headQuarter": {"duns": "300000003"}
      }
    }
  ]
}`

func TestBuildHierarchy(t *testing.T) {
	var resp familyTreeResponse
	require.NoError(t, json.Unmarshal([]byte(familyTreeFixture), &resp))

	h := BuildHierarchy("300000003", resp.FamilyTreeMembers)

	require.NotNil(t, h.GlobalUltimate)
	assert.Equal(t, "100000001", h.GlobalUltimate.DUNS)
	assert.Equal(t, "Global Holdings", h.GlobalUltimate.PrimaryName)
	assert.Equal(t, "New York, United States", h.GlobalUltimate.Address.OneLine())

	require.NotNil(t, h.DomesticUltimate)
	assert.Equal(t, "200000002", h.DomesticUltimate.DUNS)

	require.NotNil(t, h.Parent)
	assert.Equal(t, "200000002", h.Parent.DUNS)

	require.Len(t, h.Subsidiaries, 2)
	assert.Equal(t, "400000004", h.Subsidiaries[0].DUNS)
	assert.Equal(t, "SUB", h.Subsidiaries[0].RelationshipCode)
	assert.Equal(t, 4, *h.Subsidiaries[0].HierarchyLevel)
	assert.Equal(t, "BR", h.Subsidiaries[1].RelationshipCode)

	require.Len(t, h.FamilyTreeMembers, 5)
	assert.Equal(t, "HQ", h.FamilyTreeMembers[0].RelationshipCode)
}

func TestBuildHierarchySubjectMissing(t *testing.T) {
	var resp familyTreeResponse
	require.NoError(t, json.Unmarshal([]byte(familyTreeFixture), &resp))

	h := BuildHierarchy("999999999", resp.FamilyTreeMembers)

	require.NotNil(t, h.GlobalUltimate, "falls back to the member playing the role")
	assert.Equal(t, "100000001", h.GlobalUltimate.DUNS)
	assert.Equal(t, "200000002", h.DomesticUltimate.DUNS)
	assert.Nil(t, h.Parent)
	assert.Empty(t, h.Subsidiaries)
}
