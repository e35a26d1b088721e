package dnb

import (
	"strings"

	"partnersearch/internal/company/models"
	pkgstrings "partnersearch/pkg/platform/strings"
)

// Matches applies the unified search rules to one company. The first
// criterion that is set decides, in this order: D-U-N-S (exact), local
// identifier (substring of any registration number), company name
// (case-insensitive substring), geography (continent exact, country or city
// case-insensitive substring), phone/fax (substring of phone), phone presence.
// A D-U-N-S that does not match falls through to the next criterion.
func Matches(c Criteria, co *models.Company) bool {
	if c.DUNS != "" && c.DUNS == co.DUNS {
		return true
	}
	switch {
	case c.LocalIdentifier != "":
		for _, reg := range co.RegistrationNumbers {
			if strings.Contains(reg.Number, c.LocalIdentifier) {
				return true
			}
		}
		return false
	case c.CompanyName != "":
		return pkgstrings.FoldContains(co.CompanyName, c.CompanyName)
	case c.Continent != "" || c.Country != "" || c.City != "":
		a := co.Address
		if a == nil {
			return false
		}
		return (c.Continent != "" && c.Continent == a.Continent) ||
			(c.Country != "" && pkgstrings.FoldContains(a.Country, c.Country)) ||
			(c.City != "" && pkgstrings.FoldContains(a.City, c.City))
	case c.PhoneFax != "":
		return co.Phone != "" && strings.Contains(co.Phone, c.PhoneFax)
	case c.HasPhone != nil && *c.HasPhone:
		return co.Phone != ""
	}
	return false
}
