// ABOUTME: Brand policy filtering with a terminating fallback chain
// ABOUTME: Guarantees a distributor with a channel type never ends up brandless
package normalize

import (
	"github.com/redpdv/redpdv/models"
)

// DefaultBrand is the last resort of the fallback chain.
const DefaultBrand = "silbo"

// channelDefaultBrands maps a channel type to the brands it carries by
// default when the requested set filters down to nothing.
var channelDefaultBrands = map[string][]string{
	"tienda":    {"silbo", "lowi"},
	"estanco":   {"silbo"},
	"locutorio": {"silbo", "lowi"},
	"kiosco":    {"silbo"},
}

// FilterBrands applies a brand policy to the requested brand list.
// Allowed non-nil restricts to that list; otherwise blocked brands are
// removed. When filtering leaves nothing, the chain falls back to the
// first allowed brand, then the channel defaults minus blocked, then
// ["silbo"]. The result is never empty.
func FilterBrands(requested []string, policy models.BrandPolicy, channelType string) []string {
	var filtered []string
	if policy.Allowed != nil {
		allowed := toSet(policy.Allowed)
		for _, b := range requested {
			if allowed[b] {
				filtered = append(filtered, b)
			}
		}
	} else if len(policy.Blocked) > 0 {
		blocked := toSet(policy.Blocked)
		for _, b := range requested {
			if !blocked[b] {
				filtered = append(filtered, b)
			}
		}
	} else {
		filtered = append(filtered, requested...)
	}

	if len(filtered) > 0 {
		return dedupe(filtered)
	}

	if len(policy.Allowed) > 0 {
		return []string{policy.Allowed[0]}
	}

	if defaults, ok := channelDefaultBrands[channelType]; ok {
		blocked := toSet(policy.Blocked)
		var out []string
		for _, b := range defaults {
			if !blocked[b] {
				out = append(out, b)
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	return []string{DefaultBrand}
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, v := range list {
		set[v] = true
	}
	return set
}

func dedupe(list []string) []string {
	seen := make(map[string]bool, len(list))
	out := list[:0]
	for _, v := range list {
		if !seen[v] {
			seen[v] = true
			out = append(out, v)
		}
	}
	return out
}
