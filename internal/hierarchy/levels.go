package hierarchy

import "fmt"

// LevelScheme names a hierarchy level numbering convention.
//
// ExportCentric puts the current company at level 0, its owners at negative
// levels and its subsidiaries at positive levels. TreeCentric is the numbering
// D&B family trees use: the current company (or tree root) sits at level 1 and
// direct subsidiaries at level 2.
type LevelScheme int

const (
	ExportCentric LevelScheme = iota
	TreeCentric
)

// DownwardMinLevel is the first TreeCentric level below the current company.
const DownwardMinLevel = 2

func (s LevelScheme) String() string {
	switch s {
	case ExportCentric:
		return "export"
	case TreeCentric:
		return "tree"
	default:
		return fmt.Sprintf("LevelScheme(%d)", int(s))
	}
}

// currentLevel is the level the current company occupies in s.
func (s LevelScheme) currentLevel() int {
	if s == TreeCentric {
		return 1
	}
	return 0
}

// Convert re-expresses level from one scheme in another.
func Convert(level int, from, to LevelScheme) int {
	return level - from.currentLevel() + to.currentLevel()
}

// ParseLevelScheme accepts "export" or "tree".
func ParseLevelScheme(s string) (LevelScheme, error) {
	switch s {
	case "export":
		return ExportCentric, nil
	case "tree":
		return TreeCentric, nil
	default:
		return 0, fmt.Errorf("unknown level scheme %q", s)
	}
}
