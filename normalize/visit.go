// ABOUTME: Visit and sale normalization into canonical entity shapes
// ABOUTME: Validates the result state, enforces single linkage, recomputes reminders
package normalize

import (
	"encoding/json"
	"time"

	"github.com/redpdv/redpdv/derive"
	"github.com/redpdv/redpdv/models"
)

// Visit converts an arbitrary or legacy-shaped record into a canonical
// visit. Total and idempotent; the reminder's scheduled_at is always
// recomputed from the current date and offset.
func Visit(raw interface{}, now time.Time) models.Visit {
	m := asMap(raw)

	var v models.Visit
	if blob, err := json.Marshal(m); err == nil {
		_ = json.Unmarshal(blob, &v)
	}

	if v.ID == "" {
		v.ID = str(m, "id")
	}
	if v.DistributorID == "" {
		v.DistributorID = str(m, "distribuidor_id")
	}
	if v.CandidateID == "" {
		v.CandidateID = str(m, "candidato_id")
	}
	if v.Type == "" {
		v.Type = str(m, "tipo")
	}
	if v.Objective == "" {
		v.Objective = str(m, "objetivo")
	}
	if v.Summary == "" {
		v.Summary = str(m, "resumen")
	}
	if v.NextSteps == "" {
		v.NextSteps = str(m, "proximos_pasos")
	}
	if v.DurationMinutes == 0 {
		if n, ok := num(m, "duracion"); ok {
			v.DurationMinutes = n
		}
	}

	// A visit links to at most one entity; the distributor wins when
	// stored data carries both.
	if v.DistributorID != "" && v.CandidateID != "" {
		v.CandidateID = ""
	}

	if v.Date.IsZero() {
		if t, ok := timeField(m, "fecha"); ok {
			v.Date = t
		} else {
			v.Date = now.UTC()
		}
	}

	switch v.Result {
	case models.ResultPendiente, models.ResultCompletada, models.ResultReprogramar, models.ResultCancelada:
	default:
		v.Result = models.ResultPendiente
	}

	// Reminders are on unless the record says otherwise.
	if r := subMap(m, "reminder"); r != nil {
		if _, present := r["enabled"]; !present {
			v.Reminder.Enabled = true
		}
	} else {
		v.Reminder.Enabled = true
	}
	derive.RescheduleReminder(&v, now)

	if v.CreatedAt.IsZero() {
		v.CreatedAt = now.UTC()
	}
	if v.UpdatedAt.IsZero() {
		v.UpdatedAt = v.CreatedAt
	}

	return v
}

// Sale converts an arbitrary or legacy-shaped record into a canonical
// sale. Operations default to a single operation.
func Sale(raw interface{}, now time.Time) models.Sale {
	m := asMap(raw)

	var s models.Sale
	if blob, err := json.Marshal(m); err == nil {
		_ = json.Unmarshal(blob, &s)
	}

	if s.ID == "" {
		s.ID = str(m, "id")
	}
	if s.DistributorID == "" {
		s.DistributorID = str(m, "distribuidor_id")
	}
	if s.Brand == "" {
		s.Brand = str(m, "marca")
	}
	if s.Family == "" {
		s.Family = str(m, "familia")
	}
	if s.Notes == "" {
		s.Notes = str(m, "notas")
	}
	if s.Operations == 0 {
		if n, ok := num(m, "operaciones"); ok {
			s.Operations = n
		}
	}
	if s.Operations <= 0 {
		s.Operations = 1
	}

	if s.Date.IsZero() {
		if t, ok := timeField(m, "fecha"); ok {
			s.Date = t
		} else {
			s.Date = now.UTC()
		}
	}

	if s.CreatedAt.IsZero() {
		s.CreatedAt = now.UTC()
	}
	if s.UpdatedAt.IsZero() {
		s.UpdatedAt = s.CreatedAt
	}

	return s
}
