// Package models holds the company and corporate-hierarchy data model shared by
// search, hierarchy and navigation.
package models

import (
	"strings"
	"time"
)

const DefaultDataSource = "D&B API"

type Address struct {
	Street          string   `json:"street,omitempty"`
	AdditionalLines []string `json:"additional_lines,omitempty"`
	City            string   `json:"city,omitempty"`
	State           string   `json:"state,omitempty"`
	PostalCode      string   `json:"postal_code,omitempty"`
	Country         string   `json:"country,omitempty"`
	Continent       string   `json:"continent,omitempty"`
	Latitude        *float64 `json:"latitude,omitempty"`
	Longitude       *float64 `json:"longitude,omitempty"`
}

// OneLine renders street, city and country joined by ", ", skipping empty parts.
func (a *Address) OneLine() string {
	if a == nil {
		return ""
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{a.Street, a.City, a.Country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type RegistrationNumber struct {
	Type        string `json:"type"`
	Number      string `json:"number"`
	IsPreferred bool   `json:"is_preferred"`
	Class       string `json:"class,omitempty"`
	Location    string `json:"location,omitempty"`
}

type RankingInfo struct {
	ConfidenceCode int    `json:"confidence_code"`
	MatchQuality   string `json:"match_quality,omitempty"`
}

// Company is a business entity profile as returned by search.
type Company struct {
	ID                    string               `json:"id"`
	DUNS                  string               `json:"duns"`
	CompanyName           string               `json:"company_name"`
	LegalName             string               `json:"legal_name,omitempty"`
	BusinessType          string               `json:"business_type,omitempty"`
	OperatingStatus       string               `json:"operating_status,omitempty"`
	Address               *Address             `json:"address,omitempty"`
	MailingAddress        *Address             `json:"mailing_address,omitempty"`
	Phone                 string               `json:"phone,omitempty"`
	Fax                   string               `json:"fax,omitempty"`
	Email                 string               `json:"email,omitempty"`
	Website               string               `json:"website,omitempty"`
	PrimarySICCode        string               `json:"primary_sic_code,omitempty"`
	PrimarySICDescription string               `json:"primary_sic_description,omitempty"`
	NAICSCode             string               `json:"naics_code,omitempty"`
	NAICSDescription      string               `json:"naics_description,omitempty"`
	Industry              string               `json:"industry,omitempty"`
	EmployeeCount         *int                 `json:"employee_count,omitempty"`
	AnnualRevenue         string               `json:"annual_revenue,omitempty"`
	YearStarted           *int                 `json:"year_started,omitempty"`
	LegalForm             string               `json:"legal_form,omitempty"`
	RegistrationNumbers   []RegistrationNumber `json:"registration_numbers"`
	RankingInfo           *RankingInfo         `json:"ranking_info,omitempty"`
	CorporateHierarchy    *Hierarchy           `json:"corporate_hierarchy,omitempty"`
	LastUpdated           time.Time            `json:"last_updated"`
	DataSource            string               `json:"data_source"`
	SearchCriteria        map[string]any       `json:"search_criteria,omitempty"`
}

// NationalIDs renders registration numbers as "<type>: <number>" joined by "; ".
func (c *Company) NationalIDs() string {
	ids := make([]string, 0, len(c.RegistrationNumbers))
	for _, r := range c.RegistrationNumbers {
		ids = append(ids, r.Type+": "+r.Number)
	}
	return strings.Join(ids, "; ")
}

// Node is a reference to an entity inside a corporate hierarchy role.
// HierarchyLevel is nil when the source did not report a level; nil and 0 differ.
type Node struct {
	DUNS                    string   `json:"duns"`
	PrimaryName             string   `json:"primaryName"`
	LegalName               string   `json:"legalName,omitempty"`
	OperatingStatus         string   `json:"operatingStatus,omitempty"`
	Address                 *Address `json:"address,omitempty"`
	Phone                   string   `json:"phone,omitempty"`
	Email                   string   `json:"email,omitempty"`
	Website                 string   `json:"website,omitempty"`
	RelationshipCode        string   `json:"relationshipCode,omitempty"`
	RelationshipDescription string   `json:"relationshipDescription,omitempty"`
	HierarchyLevel          *int     `json:"hierarchyLevel,omitempty"`
	Industry                string   `json:"industry,omitempty"`
	EmployeeCount           *int     `json:"employeeCount,omitempty"`
	SalesVolume             string   `json:"salesVolume,omitempty"`
	YearStarted             *int     `json:"yearStarted,omitempty"`
	LegalForm               string   `json:"legalForm,omitempty"`
	NationalIDs             string   `json:"nationalIds,omitempty"`
}

// LevelOr returns the node's level, or def when none was reported.
func (n *Node) LevelOr(def int) int {
	if n == nil || n.HierarchyLevel == nil {
		return def
	}
	return *n.HierarchyLevel
}

// Hierarchy is a company's corporate family: optional upward roles plus ordered
// subsidiaries and family tree members.
type Hierarchy struct {
	GlobalUltimate    *Node  `json:"globalUltimate,omitempty"`
	DomesticUltimate  *Node  `json:"domesticUltimate,omitempty"`
	Parent            *Node  `json:"parent,omitempty"`
	Subsidiaries      []Node `json:"subsidiaries"`
	FamilyTreeMembers []Node `json:"familyTreeMembers"`
}

// Size counts role and list entries, including duplicates.
func (h *Hierarchy) Size() int {
	if h == nil {
		return 0
	}
	n := len(h.Subsidiaries) + len(h.FamilyTreeMembers)
	for _, role := range []*Node{h.GlobalUltimate, h.DomesticUltimate, h.Parent} {
		if role != nil {
			n++
		}
	}
	return n
}

// Envelope is the hierarchy lookup response for one D-U-N-S number.
type Envelope struct {
	DUNS        string     `json:"duns"`
	Hierarchy   *Hierarchy `json:"hierarchy"`
	DataSource  string     `json:"data_source"`
	LastUpdated time.Time  `json:"last_updated"`
}

// Int returns a pointer to v, for building optional fields.
func Int(v int) *int {
	return &v
}
