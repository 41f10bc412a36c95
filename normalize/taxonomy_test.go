// ABOUTME: Tests for taxonomy classification and brand policy filtering
// ABOUTME: Verifies rule ordering, the fallback chain, and non-empty guarantees
package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/redpdv/redpdv/models"
)

func TestClassifyCodeRuleOrder(t *testing.T) {
	tests := []struct {
		code     string
		category string
	}{
		{"EXISTENTE_VF_221", "existente_vf"},
		{"EXISTENTE_LOWI_03", "existente_lowi"},
		{"EXISTENTE_OTRO", "existente"},
		{"MIGRACION_NORTE", "migracion"},
		{"SILBO_DIRECTO_1", "silbo_directo"},
		{"CAPTACION_2024", "captacion"},
		{"ALGO_RARO", CategoryGeneral},
		{"", CategoryGeneral},
	}

	for _, tt := range tests {
		category, _ := ClassifyCode(tt.code)
		assert.Equal(t, tt.category, category, "code %q", tt.code)
	}
}

func TestClassifyCodeCaseInsensitive(t *testing.T) {
	category, policy := ClassifyCode("existente_vf_9")
	assert.Equal(t, "existente_vf", category)
	assert.Equal(t, []string{"lowi"}, policy.Blocked)
}

func TestClassifyCodeGeneralHasNoRestrictions(t *testing.T) {
	_, policy := ClassifyCode("XYZ")
	assert.Nil(t, policy.Allowed)
	assert.Empty(t, policy.Blocked)
	assert.Empty(t, policy.Conditional)
}

func TestFilterBrandsAllowList(t *testing.T) {
	policy := models.BrandPolicy{Allowed: []string{"lowi"}}
	assert.Equal(t, []string{"lowi"}, FilterBrands([]string{"silbo", "lowi"}, policy, "tienda"))
}

func TestFilterBrandsBlockList(t *testing.T) {
	policy := models.BrandPolicy{Blocked: []string{"lowi"}}
	assert.Equal(t, []string{"silbo"}, FilterBrands([]string{"silbo", "lowi"}, policy, "tienda"))
}

func TestFilterBrandsFallbackToFirstAllowed(t *testing.T) {
	policy := models.BrandPolicy{Allowed: []string{"lowi"}}
	assert.Equal(t, []string{"lowi"}, FilterBrands([]string{"silbo"}, policy, "tienda"))
}

func TestFilterBrandsFallbackToChannelDefaults(t *testing.T) {
	policy := models.BrandPolicy{Blocked: []string{"lowi"}}
	got := FilterBrands(nil, policy, "tienda")
	assert.Equal(t, []string{"silbo"}, got, "channel defaults minus blocked")
}

func TestFilterBrandsTerminalFallback(t *testing.T) {
	got := FilterBrands(nil, models.BrandPolicy{}, "canal_desconocido")
	assert.Equal(t, []string{DefaultBrand}, got)
}

func TestFilterBrandsDeduplicates(t *testing.T) {
	got := FilterBrands([]string{"silbo", "silbo", "lowi"}, models.BrandPolicy{}, "tienda")
	assert.Equal(t, []string{"silbo", "lowi"}, got)
}
