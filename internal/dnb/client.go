//go:generate mockgen -source=client.go -destination=mocks/mocks.go -package=mocks Client

// Package dnb talks to the D&B Direct Plus API, or to an in-process data set
// standing in for it.
package dnb

import (
	"context"
	"strings"

	"partnersearch/internal/company/models"
)

// Client looks up companies and their corporate families.
//
// Hierarchy returns sentinel.ErrNotFound when D&B has no family tree for the
// D-U-N-S number and sentinel.ErrUnavailable when the API cannot be reached.
type Client interface {
	Search(ctx context.Context, criteria Criteria) ([]models.Company, error)
	Hierarchy(ctx context.Context, duns string) (*models.Envelope, error)
}

// Criteria is a unified company search request. Empty strings and nil flags
// mean "not specified".
type Criteria struct {
	DUNS            string `json:"duns,omitempty"`
	LocalIdentifier string `json:"local_identifier,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`
	Address         string `json:"address,omitempty"`
	City            string `json:"city,omitempty"`
	PostalCode      string `json:"postal_code,omitempty"`
	State           string `json:"state,omitempty"`
	Country         string `json:"country,omitempty"`
	Continent       string `json:"continent,omitempty"`
	PhoneFax        string `json:"phone_fax,omitempty"`
	HasPhone        *bool  `json:"has_phone,omitempty"`
	HasFax          *bool  `json:"has_fax,omitempty"`
	ExactMatch      bool   `json:"exact_match"`
}

// Specified reports whether at least one search criterion is set.
func (c Criteria) Specified() bool {
	for _, v := range c.textFields() {
		if strings.TrimSpace(v.value) != "" {
			return true
		}
	}
	return c.HasPhone != nil || c.HasFax != nil
}

// Applied returns the criteria that were set, keyed by their JSON names. It is
// stored on search results so the recently-searched list shows why a company
// matched.
func (c Criteria) Applied() map[string]any {
	out := map[string]any{"exact_match": c.ExactMatch}
	for _, v := range c.textFields() {
		if v.value != "" {
			out[v.name] = v.value
		}
	}
	if c.HasPhone != nil {
		out["has_phone"] = *c.HasPhone
	}
	if c.HasFax != nil {
		out["has_fax"] = *c.HasFax
	}
	return out
}

type namedField struct {
	name  string
	value string
}

func (c Criteria) textFields() []namedField {
	return []namedField{
		{"duns", c.DUNS},
		{"local_identifier", c.LocalIdentifier},
		{"company_name", c.CompanyName},
		{"address", c.Address},
		{"city", c.City},
		{"postal_code", c.PostalCode},
		{"state", c.State},
		{"country", c.Country},
		{"continent", c.Continent},
		{"phone_fax", c.PhoneFax},
	}
}
