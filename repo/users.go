// ABOUTME: User and preferences repositories
// ABOUTME: Local-only collections; guarantees at least one operator always exists
package repo

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/normalize"
	"github.com/redpdv/redpdv/store"
)

// Users owns the operator profiles. The remote backend has no users
// table; the collection lives only in the local store.
type Users struct {
	mu    sync.Mutex
	store *store.Store
	items []models.User
	nowFn func() time.Time
}

// NewUsers loads the persisted users and seeds a default operator when
// the collection comes up empty; at least one user must always exist.
func NewUsers(s *store.Store) *Users {
	r := &Users{store: s, nowFn: time.Now}

	var raw []map[string]interface{}
	if s.LoadJSON(keyUsers, store.SchemaVersion, &raw) {
		now := r.nowFn()
		for _, record := range raw {
			r.items = append(r.items, normalize.User(record, now))
		}
	}
	if len(r.items) == 0 {
		seed := normalize.User(nil, r.nowFn())
		seed.ID = uuid.NewString()
		r.items = []models.User{seed}
		r.persistLocked()
	}
	return r
}

// List returns a copy of the collection.
func (r *Users) List() []models.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.User(nil), r.items...)
}

// Get returns the user with the given id.
func (r *Users) Get(id string) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.items {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Add normalizes and commits a new user.
func (r *Users) Add(raw interface{}) models.User {
	now := r.nowFn()
	u := normalize.User(raw, now)
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.CreatedAt = now.UTC()
	u.UpdatedAt = now.UTC()

	r.mu.Lock()
	r.items = append(r.items, u)
	r.persistLocked()
	r.mu.Unlock()
	return u
}

// Update overlays patch onto the stored user.
func (r *Users) Update(id string, patch interface{}) (models.User, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID != id {
			continue
		}
		now := r.nowFn()
		u := normalize.User(merge(r.items[i], patch), now)
		u.ID = id
		u.CreatedAt = r.items[i].CreatedAt
		u.UpdatedAt = now.UTC()
		r.items[i] = u
		r.persistLocked()
		return u, true
	}
	return models.User{}, false
}

// Delete removes a user, refusing to remove the last one.
func (r *Users) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) <= 1 {
		return false
	}
	kept := r.items[:0]
	found := false
	for _, u := range r.items {
		if u.ID == id {
			found = true
			continue
		}
		kept = append(kept, u)
	}
	if !found {
		return false
	}
	r.items = kept
	r.persistLocked()
	return true
}

func (r *Users) persistLocked() {
	if err := r.store.SaveJSON(keyUsers, store.SchemaVersion, r.items); err != nil {
		log.Printf("repo: failed to persist users: %v", err)
	}
}

// PreferencesStore owns the app-wide settings singleton.
type PreferencesStore struct {
	mu    sync.Mutex
	store *store.Store
	prefs models.Preferences
}

// NewPreferences loads stored settings, falling back to defaults.
func NewPreferences(s *store.Store) *PreferencesStore {
	r := &PreferencesStore{store: s}

	var raw map[string]interface{}
	if s.LoadJSON(keyPreferences, store.SchemaVersion, &raw) {
		r.prefs = normalize.Preferences(raw)
	} else {
		r.prefs = normalize.Preferences(nil)
	}
	return r
}

// Get returns the current preferences.
func (r *PreferencesStore) Get() models.Preferences {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.prefs
}

// Set overlays patch onto the stored preferences and persists.
func (r *PreferencesStore) Set(patch interface{}) models.Preferences {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.prefs = normalize.Preferences(merge(r.prefs, patch))
	if err := r.store.SaveJSON(keyPreferences, store.SchemaVersion, r.prefs); err != nil {
		log.Printf("repo: failed to persist preferences: %v", err)
	}
	return r.prefs
}
