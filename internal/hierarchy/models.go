// Package hierarchy flattens a company's corporate family into export rows and
// derives the view models for the interactive family tree.
package hierarchy

// EntityType tags the role an export row was derived from.
type EntityType string

const (
	EntityCurrent          EntityType = "Current Company"
	EntityGlobalUltimate   EntityType = "Global Ultimate"
	EntityDomesticUltimate EntityType = "Domestic Ultimate"
	EntityParent           EntityType = "Parent Direct"
	EntitySubsidiary       EntityType = "Subsidiary"
	EntityFamilyMember     EntityType = "Family Tree Member"
)

// Relationship codes reported by D&B and used as export fallbacks.
const (
	RelationshipCurrent    = "Current Entity"
	RelationshipGlobal     = "GUP"
	RelationshipDomestic   = "DUP"
	RelationshipParent     = "PAR"
	RelationshipSubsidiary = "SUB"
	RelationshipHQ         = "HQ"
)

const expandMarker = "+"

// ExportRow is one denormalised spreadsheet row.
type ExportRow struct {
	Level                   int        `json:"level"`
	Expand                  string     `json:"expand"`
	EntityType              EntityType `json:"entity_type"`
	DUNS                    string     `json:"duns"`
	Name                    string     `json:"name"`
	LegalName               string     `json:"legal_name"`
	OperatingStatus         string     `json:"operating_status"`
	Address                 string     `json:"address"`
	Phone                   string     `json:"phone"`
	Email                   string     `json:"email"`
	Website                 string     `json:"website"`
	Industry                string     `json:"industry"`
	EmployeeCount           *int       `json:"employee_count,omitempty"`
	SalesVolume             string     `json:"sales_volume"`
	YearStarted             *int       `json:"year_started,omitempty"`
	LegalForm               string     `json:"legal_form"`
	NationalIDs             string     `json:"national_ids"`
	Relationship            string     `json:"relationship"`
	RelationshipDescription string     `json:"relationship_description"`
}
