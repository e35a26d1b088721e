package hierarchy

import (
	"strings"

	"partnersearch/internal/company/models"
	pkgstrings "partnersearch/pkg/platform/strings"
)

// DownwardSubset keeps the family tree members strictly below the current
// company: TreeCentric level of at least DownwardMinLevel with a "SUB"
// relationship. Members without a level never qualify. The result may be empty.
func DownwardSubset(members []models.Node) []models.Node {
	out := make([]models.Node, 0, len(members))
	for _, m := range members {
		if m.HierarchyLevel == nil || *m.HierarchyLevel < DownwardMinLevel {
			continue
		}
		if m.RelationshipCode != RelationshipSubsidiary {
			continue
		}
		out = append(out, m)
	}
	return out
}

// Filter narrows members to those whose primary name or duns contains term,
// ignoring case. A blank term returns members unchanged.
func Filter(members []models.Node, term string) []models.Node {
	term = strings.TrimSpace(term)
	if term == "" {
		return members
	}
	out := make([]models.Node, 0, len(members))
	for _, m := range members {
		if pkgstrings.FoldContains(m.PrimaryName, term) || pkgstrings.FoldContains(m.DUNS, term) {
			out = append(out, m)
		}
	}
	return out
}

// ViewMode selects the family tree projection.
type ViewMode string

const (
	ViewFull     ViewMode = "full"
	ViewDownward ViewMode = "downward"
)

// ParseViewMode defaults to ViewFull for an empty value.
func ParseViewMode(s string) (ViewMode, bool) {
	switch ViewMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ViewFull:
		return ViewFull, true
	case ViewDownward:
		return ViewDownward, true
	default:
		return "", false
	}
}

// TreeMember is a family tree node annotated with its ExportCentric level.
type TreeMember struct {
	models.Node
	ExportLevel *int `json:"export_level,omitempty"`
}

// TreeView is the interactive tree projection of a hierarchy.
type TreeView struct {
	DUNS        string       `json:"duns"`
	Mode        ViewMode     `json:"mode"`
	LevelScheme string       `json:"level_scheme"`
	Query       string       `json:"query,omitempty"`
	Members     []TreeMember `json:"members"`
	Total       int          `json:"total"`
	Empty       bool         `json:"empty"`
}

// BuildTree projects h's family tree members for mode, then applies the free
// text filter.
func BuildTree(duns string, h *models.Hierarchy, mode ViewMode, term string) TreeView {
	var members []models.Node
	if h != nil {
		members = h.FamilyTreeMembers
	}
	if mode == ViewDownward {
		members = DownwardSubset(members)
	}
	members = Filter(members, term)

	view := TreeView{
		DUNS:        duns,
		Mode:        mode,
		LevelScheme: TreeCentric.String(),
		Query:       strings.TrimSpace(term),
		Members:     make([]TreeMember, 0, len(members)),
		Total:       len(members),
		Empty:       len(members) == 0,
	}
	for _, m := range members {
		tm := TreeMember{Node: m}
		if m.HierarchyLevel != nil {
			lvl := Convert(*m.HierarchyLevel, TreeCentric, ExportCentric)
			tm.ExportLevel = &lvl
		}
		view.Members = append(view.Members, tm)
	}
	return view
}
