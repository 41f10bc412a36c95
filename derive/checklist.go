// ABOUTME: Fiscal and contact data-quality checklist evaluation for distributors
// ABOUTME: Six boolean format/presence checks plus the weighted completion score
package derive

import (
	"math"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/nyaruka/phonenumbers"

	"github.com/redpdv/redpdv/models"
)

var validate = validator.New()

var (
	// Spanish NIF (8 digits + control letter) or CIF (letter + 7 digits + control).
	taxIDPattern      = regexp.MustCompile(`^[0-9]{8}[A-Za-z]$|^[A-Za-z][0-9]{7}[0-9A-Za-z]$`)
	postalCodePattern = regexp.MustCompile(`^[0-9]{5}$`)
)

// Checklist evaluates the six data-quality checks against the
// distributor's current fields.
func Checklist(d models.Distributor) models.Checklist {
	return models.Checklist{
		TaxID:         taxIDPattern.MatchString(strings.TrimSpace(d.TaxID)),
		FiscalName:    strings.TrimSpace(d.FiscalName) != "",
		FiscalAddress: strings.TrimSpace(d.FiscalAddress) != "",
		Email:         validEmail(d.Email),
		Phone:         validPhone(d.Phone),
		PostalCode:    postalCodePattern.MatchString(strings.TrimSpace(d.PostalCode)),
	}
}

func validEmail(email string) bool {
	email = strings.TrimSpace(email)
	if email == "" {
		return false
	}
	return validate.Var(email, "email") == nil
}

func validPhone(phone string) bool {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false
	}
	num, err := phonenumbers.Parse(phone, "ES")
	if err != nil {
		return false
	}
	return phonenumbers.IsValidNumber(num)
}

// Completion scores how filled-in a distributor record is: ten
// equally-weighted conditions, rounded to two decimals, clamped to [0,1].
func Completion(d models.Distributor) float64 {
	checks := Checklist(d)

	conditions := []bool{
		strings.TrimSpace(d.Name) != "",
		strings.TrimSpace(d.ContactName) != "",
		strings.TrimSpace(d.Province) != "",
		strings.TrimSpace(d.City) != "",
		checks.TaxID,
		checks.FiscalName,
		checks.Email,
		checks.Phone,
		len(d.Brands) > 0,
		d.Status == models.StatusActive,
	}

	met := 0
	for _, ok := range conditions {
		if ok {
			met++
		}
	}

	score := math.Round(float64(met)/float64(len(conditions))*100) / 100
	return math.Min(1, math.Max(0, score))
}
