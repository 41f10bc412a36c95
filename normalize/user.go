// ABOUTME: User and preferences normalization
// ABOUTME: Fills operator defaults; preferences default to Spanish-locale settings
package normalize

import (
	"encoding/json"
	"time"

	"github.com/redpdv/redpdv/models"
)

// User converts an arbitrary record into a canonical operator profile.
func User(raw interface{}, now time.Time) models.User {
	m := asMap(raw)

	var u models.User
	if blob, err := json.Marshal(m); err == nil {
		_ = json.Unmarshal(blob, &u)
	}

	if u.ID == "" {
		u.ID = str(m, "id")
	}
	if u.Name == "" {
		u.Name = str(m, "nombre")
	}
	if u.Name == "" {
		u.Name = "Operador"
	}
	if u.Role == "" {
		u.Role = "comercial"
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now.UTC()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}

	return u
}

// Preferences converts an arbitrary record into canonical app settings.
// Notifications default to enabled when the field is absent.
func Preferences(raw interface{}) models.Preferences {
	m := asMap(raw)

	var p models.Preferences
	if blob, err := json.Marshal(m); err == nil {
		_ = json.Unmarshal(blob, &p)
	}

	if p.Theme == "" {
		p.Theme = "light"
	}
	if p.Language == "" {
		p.Language = "es"
	}
	if _, present := m["notifications_enabled"]; !present {
		p.NotificationsEnabled = true
	}

	return p
}
