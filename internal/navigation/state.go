// Package navigation tracks each user's position in the corporate hierarchy:
// the selected company, its loaded hierarchy, the tree view mode and a back
// stack of previous positions.
//
// State changes go through Reduce, a pure function. Hierarchy fetches carry a
// request token; a response whose token is not the pending one is stale and
// is ignored.
package navigation

import (
	"time"

	"partnersearch/internal/company/models"
	"partnersearch/internal/hierarchy"
)

// Snapshot is one entry of the back stack.
type Snapshot struct {
	Company   *models.Company  `json:"company"`
	Hierarchy *models.Envelope `json:"hierarchy"`
	Timestamp time.Time        `json:"timestamp"`
}

type State struct {
	Selected  *models.Company    `json:"selected"`
	Hierarchy *models.Envelope   `json:"hierarchy"`
	Loading   bool               `json:"loading"`
	Notice    string             `json:"notice,omitempty"`
	View      hierarchy.ViewMode `json:"view"`
	History   []Snapshot         `json:"history"`
	Pending   string             `json:"-"`
}

// Initial is the state of a user who has not selected anything yet.
func Initial() State {
	return State{View: hierarchy.ViewFull, History: []Snapshot{}}
}

func (s State) CanGoBack() bool {
	return len(s.History) > 0
}

// Action is a state transition understood by Reduce.
type Action interface {
	isAction()
}

// Select makes Company current without touching the back stack. A company
// with a duns starts a hierarchy fetch identified by Token.
type Select struct {
	Company models.Company
	Token   string
}

// NavigateTo pushes the current position and then selects Company.
type NavigateTo struct {
	Company models.Company
	Token   string
	At      time.Time
}

type HierarchyLoaded struct {
	Token    string
	Envelope *models.Envelope
}

type HierarchyFailed struct {
	Token  string
	Notice string
}

// Back pops the most recent snapshot. Any fetch in flight becomes stale.
type Back struct{}

type ToggleView struct{}

// SetView switches to an explicit tree mode.
type SetView struct {
	Mode hierarchy.ViewMode
}

// ClearSelection returns to the results list; the back stack is kept.
type ClearSelection struct{}

// Notify shows a message without changing the selection.
type Notify struct {
	Message string
}

func (Select) isAction()          {}
func (NavigateTo) isAction()      {}
func (HierarchyLoaded) isAction() {}
func (HierarchyFailed) isAction() {}
func (Back) isAction()            {}
func (ToggleView) isAction()      {}
func (SetView) isAction()         {}
func (ClearSelection) isAction()  {}
func (Notify) isAction()          {}

// Reduce returns the state after applying a. The input state is not modified.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Select:
		return selectCompany(s, a.Company, a.Token)

	case NavigateTo:
		next := selectCompany(s, a.Company, a.Token)
		next.History = push(s.History, Snapshot{Company: s.Selected, Hierarchy: s.Hierarchy, Timestamp: a.At})
		return next

	case HierarchyLoaded:
		if !s.Loading || a.Token != s.Pending {
			return s
		}
		s.Hierarchy = a.Envelope
		s.Loading = false
		s.Pending = ""
		return s

	case HierarchyFailed:
		if !s.Loading || a.Token != s.Pending {
			return s
		}
		s.Hierarchy = nil
		s.Loading = false
		s.Pending = ""
		s.Notice = a.Notice
		return s

	case Back:
		if len(s.History) == 0 {
			return s
		}
		prev := s.History[len(s.History)-1]
		s.History = append([]Snapshot{}, s.History[:len(s.History)-1]...)
		s.Selected = prev.Company
		s.Hierarchy = prev.Hierarchy
		s.Loading = false
		s.Pending = ""
		s.Notice = ""
		s.View = hierarchy.ViewFull
		return s

	case ToggleView:
		if s.View == hierarchy.ViewDownward {
			s.View = hierarchy.ViewFull
		} else {
			s.View = hierarchy.ViewDownward
		}
		return s

	case SetView:
		s.View = a.Mode
		return s

	case ClearSelection:
		s.Selected = nil
		s.Hierarchy = nil
		s.Loading = false
		s.Pending = ""
		s.Notice = ""
		s.View = hierarchy.ViewFull
		return s

	case Notify:
		s.Notice = a.Message
		return s

	default:
		return s
	}
}

func selectCompany(s State, c models.Company, token string) State {
	s.Selected = &c
	s.Hierarchy = nil
	s.Notice = ""
	s.View = hierarchy.ViewFull
	if c.DUNS != "" {
		s.Loading = true
		s.Pending = token
	} else {
		s.Loading = false
		s.Pending = ""
	}
	return s
}

func push(history []Snapshot, snap Snapshot) []Snapshot {
	out := make([]Snapshot, 0, len(history)+1)
	out = append(out, history...)
	return append(out, snap)
}
