package dnb

import (
	"strings"

	"partnersearch/internal/company/models"
)

// D&B family tree role codes (familytreeRolesPlayed.dnbCode).
const (
	roleGlobalUltimate   = 12775
	roleDomesticUltimate = 12774
	roleSubsidiary       = 9159
	roleBranch           = 9141
)

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expiresIn"`
}

type searchRequest struct {
	DUNS                   string `json:"duns,omitempty"`
	RegistrationNumber     string `json:"registrationNumber,omitempty"`
	SearchTerm             string `json:"searchTerm,omitempty"`
	StreetAddressLine1     string `json:"streetAddressLine1,omitempty"`
	AddressLocality        string `json:"addressLocality,omitempty"`
	AddressRegion          string `json:"addressRegion,omitempty"`
	PostalCode             string `json:"postalCode,omitempty"`
	CountryISOAlpha2Code   string `json:"countryISOAlpha2Code,omitempty"`
	TelephoneNumber        string `json:"telephoneNumber,omitempty"`
	IsTelephoneDisclosed   *bool  `json:"isTelephoneDisclosed,omitempty"`
	PageSize               int    `json:"pageSize,omitempty"`
	ExactMatchOnSearchTerm bool   `json:"isExactMatchSearchTerm,omitempty"`
}

func newSearchRequest(c Criteria) searchRequest {
	req := searchRequest{
		DUNS:                   c.DUNS,
		RegistrationNumber:     c.LocalIdentifier,
		SearchTerm:             c.CompanyName,
		StreetAddressLine1:     c.Address,
		AddressLocality:        c.City,
		AddressRegion:          c.State,
		PostalCode:             c.PostalCode,
		TelephoneNumber:        c.PhoneFax,
		IsTelephoneDisclosed:   c.HasPhone,
		PageSize:               50,
		ExactMatchOnSearchTerm: c.ExactMatch,
	}
	// criteria search only filters on ISO codes; free-text country names are
	// matched client side
	if len(c.Country) == 2 {
		req.CountryISOAlpha2Code = strings.ToUpper(c.Country)
	}
	return req
}

type searchResponse struct {
	SearchCandidates []struct {
		DisplaySequence int          `json:"displaySequence"`
		Organization    organization `json:"organization"`
	} `json:"searchCandidates"`
}

type organization struct {
	DUNS              string `json:"duns"`
	PrimaryName       string `json:"primaryName"`
	DunsControlStatus struct {
		OperatingStatus struct {
			Description string `json:"description"`
		} `json:"operatingStatus"`
	} `json:"dunsControlStatus"`
	PrimaryAddress *wireAddress `json:"primaryAddress"`
	MailingAddress *wireAddress `json:"mailingAddress"`
	Telephone      []struct {
		TelephoneNumber string `json:"telephoneNumber"`
	} `json:"telephone"`
	WebsiteAddress []struct {
		URL string `json:"url"`
	} `json:"websiteAddress"`
	PrimaryIndustryCode struct {
		USSicV4            string `json:"usSicV4"`
		USSicV4Description string `json:"usSicV4Description"`
	} `json:"primaryIndustryCode"`
	RegistrationNumbers []struct {
		RegistrationNumber            string `json:"registrationNumber"`
		TypeDescription               string `json:"typeDescription"`
		IsPreferredRegistrationNumber bool   `json:"isPreferredRegistrationNumber"`
	} `json:"registrationNumbers"`
	CorporateLinkage linkage `json:"corporateLinkage"`
	IsStandalone     bool    `json:"isStandalone"`
}

type wireAddress struct {
	StreetAddress struct {
		Line1 string `json:"line1"`
		Line2 string `json:"line2"`
	} `json:"streetAddress"`
	AddressLocality struct {
		Name string `json:"name"`
	} `json:"addressLocality"`
	AddressRegion struct {
		Name            string `json:"name"`
		AbbreviatedName string `json:"abbreviatedName"`
	} `json:"addressRegion"`
	PostalCode     string `json:"postalCode"`
	AddressCountry struct {
		Name          string `json:"name"`
		ISOAlpha2Code string `json:"isoAlpha2Code"`
	} `json:"addressCountry"`
	ContinentalRegion struct {
		Name string `json:"name"`
	} `json:"continentalRegion"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type linkage struct {
	HierarchyLevel        *int         `json:"hierarchyLevel"`
	FamilytreeRolesPlayed []role       `json:"familytreeRolesPlayed"`
	GlobalUltimate        *linkedParty `json:"globalUltimate"`
	DomesticUltimate      *linkedParty `json:"domesticUltimate"`
	Parent                *linkedParty `json:"parent"`
	Headquarter           *linkedParty `json:"headQuarter"`
}

type role struct {
	Description string `json:"description"`
	DnbCode     int    `json:"dnbCode"`
}

type linkedParty struct {
	DUNS        string `json:"duns"`
	PrimaryName string `json:"primaryName"`
}

type familyTreeResponse struct {
	GlobalUltimateDUNS string             `json:"globalUltimateDuns"`
	FamilyTreeMembers  []familyTreeMember `json:"familyTreeMembers"`
}

type familyTreeMember struct {
	DUNS              string `json:"duns"`
	PrimaryName       string `json:"primaryName"`
	DunsControlStatus struct {
		OperatingStatus struct {
			Description string `json:"description"`
		} `json:"operatingStatus"`
	} `json:"dunsControlStatus"`
	PrimaryAddress   *wireAddress `json:"primaryAddress"`
	CorporateLinkage linkage      `json:"corporateLinkage"`
}

func (a *wireAddress) toModel() *models.Address {
	if a == nil {
		return nil
	}
	out := &models.Address{
		Street:     a.StreetAddress.Line1,
		City:       a.AddressLocality.Name,
		State:      a.AddressRegion.AbbreviatedName,
		PostalCode: a.PostalCode,
		Country:    a.AddressCountry.Name,
		Continent:  a.ContinentalRegion.Name,
		Latitude:   a.Latitude,
		Longitude:  a.Longitude,
	}
	if out.State == "" {
		out.State = a.AddressRegion.Name
	}
	if a.StreetAddress.Line2 != "" {
		out.AdditionalLines = []string{a.StreetAddress.Line2}
	}
	return out
}

func (o *organization) toCompany() models.Company {
	c := models.Company{
		DUNS:                  o.DUNS,
		CompanyName:           o.PrimaryName,
		LegalName:             o.PrimaryName,
		OperatingStatus:       o.DunsControlStatus.OperatingStatus.Description,
		Address:               o.PrimaryAddress.toModel(),
		MailingAddress:        o.MailingAddress.toModel(),
		PrimarySICCode:        o.PrimaryIndustryCode.USSicV4,
		PrimarySICDescription: o.PrimaryIndustryCode.USSicV4Description,
		Industry:              o.PrimaryIndustryCode.USSicV4Description,
		DataSource:            models.DefaultDataSource,
		RegistrationNumbers:   []models.RegistrationNumber{},
	}
	if len(o.Telephone) > 0 {
		c.Phone = o.Telephone[0].TelephoneNumber
	}
	if len(o.WebsiteAddress) > 0 {
		c.Website = o.WebsiteAddress[0].URL
	}
	for _, r := range o.RegistrationNumbers {
		c.RegistrationNumbers = append(c.RegistrationNumbers, models.RegistrationNumber{
			Type:        r.TypeDescription,
			Number:      r.RegistrationNumber,
			IsPreferred: r.IsPreferredRegistrationNumber,
		})
	}
	if o.IsStandalone {
		c.BusinessType = "Single Location"
	} else if roles := roleDescriptions(o.CorporateLinkage.FamilytreeRolesPlayed); roles != "" {
		c.BusinessType = roles
	}
	return c
}

func roleDescriptions(roles []role) string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		if r.Description != "" {
			out = append(out, r.Description)
		}
	}
	return strings.Join(out, ", ")
}

func hasRole(roles []role, code int) bool {
	for _, r := range roles {
		if r.DnbCode == code {
			return true
		}
	}
	return false
}

func (m *familyTreeMember) parentDUNS() string {
	if p := m.CorporateLinkage.Parent; p != nil && p.DUNS != "" {
		return p.DUNS
	}
	if hq := m.CorporateLinkage.Headquarter; hq != nil {
		return hq.DUNS
	}
	return ""
}

// relationshipCode classifies a member: the tree root is "HQ", branches "BR",
// anything else with a parent "SUB".
func (m *familyTreeMember) relationshipCode() string {
	switch {
	case m.CorporateLinkage.HierarchyLevel != nil && *m.CorporateLinkage.HierarchyLevel == 1:
		return "HQ"
	case hasRole(m.CorporateLinkage.FamilytreeRolesPlayed, roleBranch):
		return "BR"
	case hasRole(m.CorporateLinkage.FamilytreeRolesPlayed, roleSubsidiary), m.parentDUNS() != "":
		return "SUB"
	}
	return ""
}

func (m *familyTreeMember) toNode() models.Node {
	return models.Node{
		DUNS:                    m.DUNS,
		PrimaryName:             m.PrimaryName,
		LegalName:               m.PrimaryName,
		OperatingStatus:         m.DunsControlStatus.OperatingStatus.Description,
		Address:                 m.PrimaryAddress.toModel(),
		RelationshipCode:        m.relationshipCode(),
		RelationshipDescription: roleDescriptions(m.CorporateLinkage.FamilytreeRolesPlayed),
		HierarchyLevel:          m.CorporateLinkage.HierarchyLevel,
	}
}

// BuildHierarchy maps a D&B family tree to the hierarchy of subject.
//
// Upward roles come from the subject's own linkage, resolved against the
// member list so they carry names and addresses; a role member is used as a
// fallback when the subject is not in the list. Subsidiaries are the members
// whose parent is the subject. Every member, subject included, is a family
// tree member with its D&B (tree-root relative) level.
func BuildHierarchy(subject string, members []familyTreeMember) *models.Hierarchy {
	h := &models.Hierarchy{
		Subsidiaries:      []models.Node{},
		FamilyTreeMembers: make([]models.Node, 0, len(members)),
	}
	byDUNS := make(map[string]*familyTreeMember, len(members))
	var self *familyTreeMember
	for i := range members {
		m := &members[i]
		byDUNS[m.DUNS] = m
		if m.DUNS == subject {
			self = m
		}
	}

	resolve := func(p *linkedParty) *models.Node {
		if p == nil || p.DUNS == "" {
			return nil
		}
		if m, ok := byDUNS[p.DUNS]; ok {
			n := m.toNode()
			return &n
		}
		return &models.Node{DUNS: p.DUNS, PrimaryName: p.PrimaryName}
	}
	byRole := func(code int) *models.Node {
		for i := range members {
			if hasRole(members[i].CorporateLinkage.FamilytreeRolesPlayed, code) {
				n := members[i].toNode()
				return &n
			}
		}
		return nil
	}

	if self != nil {
		h.GlobalUltimate = resolve(self.CorporateLinkage.GlobalUltimate)
		h.DomesticUltimate = resolve(self.CorporateLinkage.DomesticUltimate)
		parent := self.CorporateLinkage.Parent
		if parent == nil {
			parent = self.CorporateLinkage.Headquarter
		}
		h.Parent = resolve(parent)
		if h.Parent != nil {
			h.Parent.RelationshipCode = "PAR"
		}
	}
	if h.GlobalUltimate == nil {
		h.GlobalUltimate = byRole(roleGlobalUltimate)
	}
	if h.DomesticUltimate == nil {
		h.DomesticUltimate = byRole(roleDomesticUltimate)
	}

	for i := range members {
		m := &members[i]
		n := m.toNode()
		h.FamilyTreeMembers = append(h.FamilyTreeMembers, n)
		if m.DUNS != subject && m.parentDUNS() == subject {
			if n.RelationshipDescription == "" {
				n.RelationshipDescription = "Subsidiary"
			}
			h.Subsidiaries = append(h.Subsidiaries, n)
		}
	}
	return h
}
