package dnb

import (
	"context"
	"time"

	"github.com/google/uuid"

	"partnersearch/internal/company/models"
	"partnersearch/pkg/platform/sentinel"
)

const MockDataSource = "Mock Data"

// MockClient serves a fixed data set of four companies. It is the default
// client when no D&B credentials are configured.
type MockClient struct {
	now func() time.Time
}

func NewMockClient(now func() time.Time) *MockClient {
	if now == nil {
		now = time.Now
	}
	return &MockClient{now: now}
}

// MockDUNS lists the D-U-N-S numbers of the data set in search order.
var MockDUNS = []string{"804735132", "001234567", "313046411", "832563616"}

func (c *MockClient) Search(ctx context.Context, criteria Criteria) ([]models.Company, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	results := make([]models.Company, 0, len(MockDUNS))
	for _, duns := range MockDUNS {
		co := c.company(duns)
		if Matches(criteria, co) {
			results = append(results, *co)
		}
	}
	return results, nil
}

func (c *MockClient) Hierarchy(ctx context.Context, duns string) (*models.Envelope, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	co := c.company(duns)
	if co == nil || co.CorporateHierarchy == nil {
		return nil, sentinel.ErrNotFound
	}
	return &models.Envelope{
		DUNS:        duns,
		Hierarchy:   co.CorporateHierarchy,
		DataSource:  MockDataSource,
		LastUpdated: c.now().UTC(),
	}, nil
}

// company builds a fresh copy of a mock company, or nil if duns is unknown.
func (c *MockClient) company(duns string) *models.Company {
	build, ok := mockCompanies[duns]
	if !ok {
		return nil
	}
	co := build()
	co.ID = uuid.NewString()
	co.DataSource = MockDataSource
	co.LastUpdated = c.now().UTC()
	return co
}

func float(v float64) *float64 { return &v }

func usAddress(street, city, state, postal string) *models.Address {
	return &models.Address{
		Street:     street,
		City:       city,
		State:      state,
		PostalCode: postal,
		Country:    "United States",
		Continent:  "North America",
	}
}

var mockCompanies = map[string]func() *models.Company{
	"804735132": func() *models.Company {
		addr := usAddress("One Apple Park Way", "Cupertino", "CA", "95014")
		addr.Latitude, addr.Longitude = float(37.3349), float(-122.0090)
		apple := models.Node{
			DUNS:            "804735132",
			PrimaryName:     "Apple Inc.",
			LegalName:       "Apple Inc.",
			OperatingStatus: "Active",
			Address:         &models.Address{Street: "One Apple Park Way", City: "Cupertino", State: "CA", Country: "United States"},
			Phone:           "+1 408-996-1010",
		}
		domestic := apple
		return &models.Company{
			DUNS:                  "804735132",
			CompanyName:           "Apple Inc.",
			LegalName:             "Apple Inc.",
			BusinessType:          "Single Location",
			OperatingStatus:       "Active",
			Address:               addr,
			Phone:                 "+1 408-996-1010",
			Website:               "https://www.apple.com",
			Email:                 "contact@apple.com",
			PrimarySICCode:        "3571",
			PrimarySICDescription: "Electronic Computers",
			NAICSCode:             "334111",
			NAICSDescription:      "Electronic Computer Manufacturing",
			Industry:              "Technology Hardware",
			EmployeeCount:         models.Int(164000),
			AnnualRevenue:         "$394.3B USD",
			YearStarted:           models.Int(1976),
			LegalForm:             "Corporation",
			RegistrationNumbers: []models.RegistrationNumber{
				{Type: "Federal Tax ID", Number: "94-2404110", IsPreferred: true},
				{Type: "State Registration", Number: "C0806592", Location: "California"},
			},
			RankingInfo: &models.RankingInfo{ConfidenceCode: 10, MatchQuality: "Excellent"},
			CorporateHierarchy: &models.Hierarchy{
				GlobalUltimate:   &apple,
				DomesticUltimate: &domestic,
				Subsidiaries: []models.Node{
					{
						DUNS:                    "804735133",
						PrimaryName:             "Apple Retail, Inc.",
						LegalName:               "Apple Retail, Inc.",
						OperatingStatus:         "Active",
						Address:                 &models.Address{City: "Cupertino", State: "CA", Country: "United States"},
						RelationshipCode:        "SUB",
						RelationshipDescription: "Wholly Owned Subsidiary",
						HierarchyLevel:          models.Int(2),
					},
					{
						DUNS:                    "804735134",
						PrimaryName:             "Beats Electronics LLC",
						LegalName:               "Beats Electronics LLC",
						OperatingStatus:         "Active",
						Address:                 &models.Address{City: "Culver City", State: "CA", Country: "United States"},
						RelationshipCode:        "SUB",
						RelationshipDescription: "Wholly Owned Subsidiary",
						HierarchyLevel:          models.Int(2),
					},
				},
				FamilyTreeMembers: []models.Node{
					{DUNS: "804735132", PrimaryName: "Apple Inc.", HierarchyLevel: models.Int(1), RelationshipCode: "HQ"},
					{DUNS: "804735133", PrimaryName: "Apple Retail, Inc.", HierarchyLevel: models.Int(2), RelationshipCode: "SUB"},
					{DUNS: "804735134", PrimaryName: "Beats Electronics LLC", HierarchyLevel: models.Int(2), RelationshipCode: "SUB"},
				},
			},
		}
	},
	"001234567": func() *models.Company {
		return &models.Company{
			DUNS:                  "001234567",
			CompanyName:           "Microsoft Corporation",
			LegalName:             "Microsoft Corporation",
			BusinessType:          "Headquarters",
			OperatingStatus:       "Active",
			Address:               usAddress("One Microsoft Way", "Redmond", "WA", "98052"),
			Phone:                 "+1 425-882-8080",
			Website:               "https://www.microsoft.com",
			PrimarySICCode:        "7372",
			PrimarySICDescription: "Prepackaged Software",
			Industry:              "Software",
			EmployeeCount:         models.Int(221000),
			AnnualRevenue:         "$211.9B USD",
			YearStarted:           models.Int(1975),
			LegalForm:             "Corporation",
			RegistrationNumbers: []models.RegistrationNumber{
				{Type: "Federal Tax ID", Number: "91-1144442", IsPreferred: true},
			},
			RankingInfo: &models.RankingInfo{ConfidenceCode: 10},
			CorporateHierarchy: &models.Hierarchy{
				GlobalUltimate: &models.Node{DUNS: "001234567", PrimaryName: "Microsoft Corporation", OperatingStatus: "Active"},
				Subsidiaries: []models.Node{
					{DUNS: "001234568", PrimaryName: "LinkedIn Corporation", OperatingStatus: "Active", RelationshipCode: "SUB", HierarchyLevel: models.Int(2)},
				},
			},
		}
	},
	"313046411": func() *models.Company {
		return &models.Company{
			DUNS:                  "313046411",
			CompanyName:           "Google LLC",
			LegalName:             "Google LLC",
			BusinessType:          "Subsidiary",
			OperatingStatus:       "Active",
			Address:               usAddress("1600 Amphitheatre Parkway", "Mountain View", "CA", "94043"),
			Phone:                 "+1 650-253-0000",
			Website:               "https://www.google.com",
			PrimarySICCode:        "7375",
			PrimarySICDescription: "Information Retrieval Services",
			Industry:              "Internet Services",
			EmployeeCount:         models.Int(190234),
			AnnualRevenue:         "$307.4B USD",
			YearStarted:           models.Int(1998),
			LegalForm:             "LLC",
			RegistrationNumbers: []models.RegistrationNumber{
				{Type: "Federal Tax ID", Number: "77-0493581", IsPreferred: true},
			},
			RankingInfo: &models.RankingInfo{ConfidenceCode: 10},
			CorporateHierarchy: &models.Hierarchy{
				GlobalUltimate: &models.Node{DUNS: "080442732", PrimaryName: "Alphabet Inc.", OperatingStatus: "Active"},
				Parent:         &models.Node{DUNS: "080442732", PrimaryName: "Alphabet Inc.", RelationshipCode: "PAR"},
			},
		}
	},
	"832563616": func() *models.Company {
		return &models.Company{
			DUNS:                  "832563616",
			CompanyName:           "Tesla, Inc.",
			LegalName:             "Tesla, Inc.",
			BusinessType:          "Headquarters",
			OperatingStatus:       "Active",
			Address:               usAddress("1 Tesla Road", "Austin", "TX", "78725"),
			Phone:                 "+1 512-516-8177",
			Website:               "https://www.tesla.com",
			PrimarySICCode:        "3711",
			PrimarySICDescription: "Motor Vehicles & Passenger Car Bodies",
			Industry:              "Automotive Manufacturing",
			EmployeeCount:         models.Int(127855),
			AnnualRevenue:         "$96.8B USD",
			YearStarted:           models.Int(2003),
			LegalForm:             "Corporation",
			RegistrationNumbers: []models.RegistrationNumber{
				{Type: "Federal Tax ID", Number: "91-2197729", IsPreferred: true},
			},
			RankingInfo: &models.RankingInfo{ConfidenceCode: 9},
		}
	},
}
