// ABOUTME: Distributor normalization into the canonical entity shape
// ABOUTME: Accepts legacy Spanish field names, derives taxonomy/brand/checklist metadata
package normalize

import (
	"encoding/json"
	"time"

	"github.com/redpdv/redpdv/derive"
	"github.com/redpdv/redpdv/models"
)

// Distributor converts an arbitrary or legacy-shaped record into a
// canonical distributor. Total and idempotent: malformed fields resolve
// to defaults, and normalizing a normalized value is a fixed point.
func Distributor(raw interface{}, now time.Time) models.Distributor {
	m := asMap(raw)

	// Canonical fields first: a well-shaped record decodes directly,
	// including cached derived values like priority drivers.
	var d models.Distributor
	if blob, err := json.Marshal(m); err == nil {
		_ = json.Unmarshal(blob, &d)
	}

	// Legacy aliases fill whatever the canonical pass left empty.
	if d.ID == "" {
		d.ID = str(m, "id")
	}
	if d.Name == "" {
		d.Name = str(m, "nombre_pdv", "nombre")
	}
	if d.Code == "" {
		d.Code = str(m, "codigo_cliente", "codigo")
	}
	if d.ChannelType == "" {
		d.ChannelType = str(m, "canal", "tipo_canal")
	}
	if d.Address == "" {
		d.Address = str(m, "direccion")
	}
	if d.City == "" {
		d.City = str(m, "ciudad", "poblacion")
	}
	if d.Province == "" {
		d.Province = str(m, "provincia")
	}
	if d.PostalCode == "" {
		d.PostalCode = str(m, "codigo_postal", "cp")
	}
	if d.Phone == "" {
		d.Phone = str(m, "telefono")
	}
	if d.Email == "" {
		d.Email = str(m, "correo")
	}
	if d.ContactName == "" {
		d.ContactName = str(m, "persona_contacto", "contacto")
	}
	if d.TaxID == "" {
		d.TaxID = str(m, "cif", "nif")
	}
	if d.FiscalName == "" {
		d.FiscalName = str(m, "razon_social")
	}
	if d.FiscalAddress == "" {
		d.FiscalAddress = str(m, "direccion_fiscal")
	}
	if d.SalesYTD == 0 {
		if n, ok := num(m, "ventas_ytd"); ok {
			d.SalesYTD = n
		}
	}
	if brands := strList(m, "marcas"); len(d.Brands) == 0 && brands != nil {
		d.Brands = brands
	}

	switch d.Status {
	case models.StatusActive, models.StatusPending, models.StatusBlocked:
	default:
		d.Status = models.StatusPending
	}

	d.Category, d.BrandPolicy = ClassifyCode(d.Code)
	d.Brands = FilterBrands(d.Brands, d.BrandPolicy, d.ChannelType)

	d.Checklist = derive.Checklist(d)
	d.ChecklistComplete = d.Checklist.All()
	d.Completion = derive.Completion(d)
	d.PriorityLevel = derive.PriorityLevel(d.PriorityScore)

	if d.CreatedAt.IsZero() {
		if t, ok := timeField(m, "fecha_alta"); ok {
			d.CreatedAt = t
		} else {
			d.CreatedAt = now.UTC()
		}
	}
	if d.UpdatedAt.IsZero() {
		d.UpdatedAt = d.CreatedAt
	}

	return d
}
