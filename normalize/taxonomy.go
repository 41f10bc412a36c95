// ABOUTME: Business-code taxonomy mapping codes to categories and brand policies
// ABOUTME: Ordered rule list, first match wins; unmatched codes fall back to general
package normalize

import (
	"regexp"
	"strings"

	"github.com/redpdv/redpdv/models"
)

// CategoryGeneral is the fallback for codes no rule matches.
const CategoryGeneral = "general"

// TaxonomyRule pairs a code pattern with the category and brand policy it
// implies. Rules are evaluated in order and several patterns overlap, so
// order is load-bearing.
type TaxonomyRule struct {
	Pattern  *regexp.Regexp
	Category string
	Policy   models.BrandPolicy
}

// taxonomyRules classifies wholesale business codes. EXISTENTE_* rules
// must come before the broad EXISTENTE prefix.
var taxonomyRules = []TaxonomyRule{
	{
		Pattern:  regexp.MustCompile(`^EXISTENTE_VF`),
		Category: "existente_vf",
		Policy:   models.BrandPolicy{Blocked: []string{"lowi"}},
	},
	{
		Pattern:  regexp.MustCompile(`^EXISTENTE_LOWI`),
		Category: "existente_lowi",
		Policy:   models.BrandPolicy{Allowed: []string{"lowi"}},
	},
	{
		Pattern:  regexp.MustCompile(`^EXISTENTE`),
		Category: "existente",
		Policy:   models.BrandPolicy{Conditional: []string{"lowi"}},
	},
	{
		Pattern:  regexp.MustCompile(`^MIGRACION`),
		Category: "migracion",
		Policy:   models.BrandPolicy{Conditional: []string{"lowi"}},
	},
	{
		Pattern:  regexp.MustCompile(`^SILBO`),
		Category: "silbo_directo",
		Policy:   models.BrandPolicy{Allowed: []string{"silbo"}},
	},
	{
		Pattern:  regexp.MustCompile(`^CAPTACION`),
		Category: "captacion",
	},
}

// ClassifyCode resolves a business code to its category and brand policy.
// Unknown and empty codes get the general category with no restrictions.
func ClassifyCode(code string) (string, models.BrandPolicy) {
	code = strings.ToUpper(strings.TrimSpace(code))
	for _, rule := range taxonomyRules {
		if rule.Pattern.MatchString(code) {
			return rule.Category, rule.Policy
		}
	}
	return CategoryGeneral, models.BrandPolicy{}
}
