// ABOUTME: Candidate normalization into the canonical pipeline entity shape
// ABOUTME: Validates stage, derives taxonomy from the channel code, maps legacy names
package normalize

import (
	"encoding/json"
	"time"

	"github.com/redpdv/redpdv/models"
)

// Candidate converts an arbitrary or legacy-shaped record into a
// canonical pipeline candidate. Total and idempotent.
func Candidate(raw interface{}, now time.Time) models.Candidate {
	m := asMap(raw)

	var c models.Candidate
	if blob, err := json.Marshal(m); err == nil {
		_ = json.Unmarshal(blob, &c)
	}

	if c.ID == "" {
		c.ID = str(m, "id")
	}
	if c.Name == "" {
		c.Name = str(m, "nombre", "razon_social")
	}
	if c.TaxID == "" {
		c.TaxID = str(m, "cif", "nif")
	}
	if c.ChannelCode == "" {
		c.ChannelCode = str(m, "codigo_canal")
	}
	if c.Notes == "" {
		c.Notes = str(m, "notas", "observaciones")
	}

	if contact := subMap(m, "contacto"); contact != nil {
		if c.Contact.Name == "" {
			c.Contact.Name = str(contact, "name", "nombre")
		}
		if c.Contact.Phone == "" {
			c.Contact.Phone = str(contact, "phone", "telefono")
		}
		if c.Contact.Email == "" {
			c.Contact.Email = str(contact, "email")
		}
	}

	valid := false
	for _, stage := range models.Stages {
		if c.Stage == stage {
			valid = true
			break
		}
	}
	if !valid {
		c.Stage = models.StageNew
	}

	if c.Position < 0 {
		c.Position = 0
	}

	c.Category, c.BrandPolicy = ClassifyCode(c.ChannelCode)

	if c.CreatedAt.IsZero() {
		c.CreatedAt = now.UTC()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	return c
}
