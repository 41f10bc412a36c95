// ABOUTME: Visit repository with reminder recomputation on every write
// ABOUTME: Supports cascade removal when a linked distributor or candidate goes away
package repo

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/normalize"
	"github.com/redpdv/redpdv/queue"
	"github.com/redpdv/redpdv/remote"
	"github.com/redpdv/redpdv/store"
)

// Visits owns the visit collection.
type Visits struct {
	mu       sync.Mutex
	store    *store.Store
	durable  durability
	items    []models.Visit
	onChange func()
	nowFn    func() time.Time
}

// NewVisits loads and re-normalizes the persisted collection; reminder
// schedules come out recomputed rather than trusted.
func NewVisits(s *store.Store, backend remote.Backend, q *queue.Queue, notifier queue.Notifier) *Visits {
	r := &Visits{
		store:   s,
		durable: durability{backend: backend, queue: q, notifier: notifier},
		nowFn:   time.Now,
	}

	var raw []map[string]interface{}
	if s.LoadJSON(keyVisits, store.SchemaVersion, &raw) {
		now := r.nowFn()
		for _, record := range raw {
			r.items = append(r.items, normalize.Visit(record, now))
		}
	}
	return r
}

// OnChange registers a hook run after every committed mutation.
func (r *Visits) OnChange(fn func()) { r.onChange = fn }

// List returns a copy of the collection.
func (r *Visits) List() []models.Visit {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Visit(nil), r.items...)
}

// Get returns the visit with the given id.
func (r *Visits) Get(id string) (models.Visit, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.items {
		if v.ID == id {
			return v, true
		}
	}
	return models.Visit{}, false
}

// Add normalizes raw, commits locally, and attempts remote durability.
func (r *Visits) Add(ctx context.Context, raw interface{}) models.Visit {
	now := r.nowFn()
	v := normalize.Visit(raw, now)
	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	v.CreatedAt = now.UTC()
	v.UpdatedAt = now.UTC()

	r.mu.Lock()
	r.items = append(r.items, v)
	r.persistLocked()
	r.mu.Unlock()
	r.changed()

	r.durable.create(ctx, models.TableVisits, v)
	return v
}

// Update overlays patch onto the stored record and re-normalizes, which
// reschedules the reminder whenever the date or offset moved.
func (r *Visits) Update(ctx context.Context, id string, patch interface{}) (models.Visit, bool) {
	r.mu.Lock()
	idx := -1
	for i := range r.items {
		if r.items[i].ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		r.mu.Unlock()
		return models.Visit{}, false
	}

	now := r.nowFn()
	v := normalize.Visit(merge(r.items[idx], patch), now)
	v.ID = id
	v.CreatedAt = r.items[idx].CreatedAt
	v.UpdatedAt = now.UTC()
	r.items[idx] = v
	r.persistLocked()
	r.mu.Unlock()
	r.changed()

	r.durable.update(ctx, models.TableVisits, id, v)
	return v, true
}

// Delete removes the visit.
func (r *Visits) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()
	kept := r.items[:0]
	found := false
	for _, v := range r.items {
		if v.ID == id {
			found = true
			continue
		}
		kept = append(kept, v)
	}
	r.items = kept
	if found {
		r.persistLocked()
	}
	r.mu.Unlock()
	if !found {
		return false
	}
	r.changed()

	r.durable.delete(ctx, models.TableVisits, id)
	return true
}

// DeleteLinked removes every visit tied to the given distributor or
// candidate id; used for cascade deletes.
func (r *Visits) DeleteLinked(ctx context.Context, distributorID, candidateID string) int {
	r.mu.Lock()
	kept := r.items[:0]
	var removed []string
	for _, v := range r.items {
		if (distributorID != "" && v.DistributorID == distributorID) ||
			(candidateID != "" && v.CandidateID == candidateID) {
			removed = append(removed, v.ID)
			continue
		}
		kept = append(kept, v)
	}
	r.items = kept
	if len(removed) > 0 {
		r.persistLocked()
	}
	r.mu.Unlock()
	if len(removed) == 0 {
		return 0
	}
	r.changed()

	for _, id := range removed {
		r.durable.delete(ctx, models.TableVisits, id)
	}
	return len(removed)
}

func (r *Visits) persistLocked() {
	if err := r.store.SaveJSON(keyVisits, store.SchemaVersion, r.items); err != nil {
		log.Printf("repo: failed to persist visits: %v", err)
	}
}

func (r *Visits) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}
