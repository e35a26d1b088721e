package hierarchy

import (
	"sort"

	"partnersearch/internal/company/models"
	dErrors "partnersearch/pkg/domain-errors"
)

const (
	currentDescription    = "Selected Company"
	globalDescription     = "Global Ultimate Parent"
	domesticDescription   = "Domestic Ultimate Parent"
	parentDescription     = "Parent Direct"
	subsidiaryDescription = "Wholly Owned Subsidiary"
)

// rowIndex accumulates rows in insertion order and remembers every duns seen.
type rowIndex struct {
	rows []ExportRow
	seen map[string]struct{}
}

func newRowIndex(capacity int) *rowIndex {
	return &rowIndex{
		rows: make([]ExportRow, 0, capacity),
		seen: make(map[string]struct{}, capacity),
	}
}

func (ix *rowIndex) has(duns string) bool {
	_, ok := ix.seen[duns]
	return ok
}

// add appends row unless its duns is already present.
func (ix *rowIndex) add(row ExportRow) bool {
	if ix.has(row.DUNS) {
		return false
	}
	ix.seen[row.DUNS] = struct{}{}
	ix.rows = append(ix.rows, row)
	return true
}

// Flatten turns the current company and its hierarchy into export rows.
//
// Rows are emitted in precedence order (current, global ultimate, domestic
// ultimate, parent, subsidiaries, family tree members), each duns at most once,
// then stably sorted by level. Levels are taken from the source data as-is;
// upward roles are always -1 and the current company always 0.
func Flatten(current *models.Company, h *models.Hierarchy) ([]ExportRow, error) {
	if current == nil {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "no company selected")
	}
	if h == nil {
		h = &models.Hierarchy{}
	}

	ix := newRowIndex(h.Size() + 1)
	ix.add(currentRow(current))

	if gu := h.GlobalUltimate; gu != nil {
		ix.add(upwardRow(gu, EntityGlobalUltimate, RelationshipGlobal, globalDescription))
	}
	if du := h.DomesticUltimate; du != nil {
		ix.add(upwardRow(du, EntityDomesticUltimate, RelationshipDomestic, domesticDescription))
	}
	if p := h.Parent; p != nil {
		ix.add(upwardRow(p, EntityParent,
			orDefault(p.RelationshipCode, RelationshipParent),
			orDefault(p.RelationshipDescription, parentDescription)))
	}

	// Subsidiaries go through the same duns index as every other row, so one
	// repeating the ultimates, the parent or an earlier subsidiary is dropped.
	// A reported level of 0 is kept as is.
	for i := range h.Subsidiaries {
		sub := &h.Subsidiaries[i]
		row := nodeRow(sub, sub.LevelOr(1), EntitySubsidiary)
		row.Relationship = orDefault(sub.RelationshipCode, RelationshipSubsidiary)
		row.RelationshipDescription = orDefault(sub.RelationshipDescription, subsidiaryDescription)
		ix.add(row)
	}

	for i := range h.FamilyTreeMembers {
		m := &h.FamilyTreeMembers[i]
		row := nodeRow(m, m.LevelOr(0), EntityFamilyMember)
		row.Relationship = m.RelationshipCode
		row.RelationshipDescription = m.RelationshipDescription
		ix.add(row)
	}

	rows := ix.rows
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Level < rows[j].Level })
	return rows, nil
}

func currentRow(c *models.Company) ExportRow {
	return ExportRow{
		Level:                   0,
		Expand:                  expandMarker,
		EntityType:              EntityCurrent,
		DUNS:                    c.DUNS,
		Name:                    c.CompanyName,
		LegalName:               c.LegalName,
		OperatingStatus:         c.OperatingStatus,
		Address:                 c.Address.OneLine(),
		Phone:                   c.Phone,
		Email:                   c.Email,
		Website:                 c.Website,
		Industry:                c.Industry,
		EmployeeCount:           c.EmployeeCount,
		SalesVolume:             c.AnnualRevenue,
		YearStarted:             c.YearStarted,
		LegalForm:               c.LegalForm,
		NationalIDs:             c.NationalIDs(),
		Relationship:            RelationshipCurrent,
		RelationshipDescription: currentDescription,
	}
}

// upwardRow carries identity and contact fields only.
func upwardRow(n *models.Node, entity EntityType, code, description string) ExportRow {
	return ExportRow{
		Level:                   -1,
		Expand:                  expandMarker,
		EntityType:              entity,
		DUNS:                    n.DUNS,
		Name:                    n.PrimaryName,
		LegalName:               n.LegalName,
		OperatingStatus:         n.OperatingStatus,
		Address:                 n.Address.OneLine(),
		Phone:                   n.Phone,
		Email:                   n.Email,
		Website:                 n.Website,
		Relationship:            code,
		RelationshipDescription: description,
	}
}

func nodeRow(n *models.Node, level int, entity EntityType) ExportRow {
	return ExportRow{
		Level:           level,
		Expand:          expandMarker,
		EntityType:      entity,
		DUNS:            n.DUNS,
		Name:            n.PrimaryName,
		LegalName:       n.LegalName,
		OperatingStatus: n.OperatingStatus,
		Address:         n.Address.OneLine(),
		Phone:           n.Phone,
		Email:           n.Email,
		Website:         n.Website,
		Industry:        n.Industry,
		EmployeeCount:   n.EmployeeCount,
		SalesVolume:     n.SalesVolume,
		YearStarted:     n.YearStarted,
		LegalForm:       n.LegalForm,
		NationalIDs:     n.NationalIDs,
	}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
