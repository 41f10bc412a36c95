// ABOUTME: Distributor repository with optimistic local commits
// ABOUTME: Owns the distributors collection and its persisted key
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

// Distributors owns the distributor collection.
type Distributors struct {
	mu       sync.Mutex
	store    *store.Store
	durable  durability
	items    []models.Distributor
	onChange func()
	nowFn    func() time.Time
}

// NewDistributors loads the persisted collection, re-normalizing every
// record so legacy-shaped stored data comes out canonical.
func NewDistributors(s *store.Store, backend remote.Backend, q *queue.Queue, notifier queue.Notifier) *Distributors {
	r := &Distributors{
		store:   s,
		durable: durability{backend: backend, queue: q, notifier: notifier},
		nowFn:   time.Now,
	}

	var raw []map[string]interface{}
	if s.LoadJSON(keyDistributors, store.SchemaVersion, &raw) {
		now := r.nowFn()
		for _, record := range raw {
			r.items = append(r.items, normalize.Distributor(record, now))
		}
	}
	return r
}

// OnChange registers a hook run after every committed mutation.
func (r *Distributors) OnChange(fn func()) { r.onChange = fn }

// List returns a copy of the collection.
func (r *Distributors) List() []models.Distributor {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Distributor(nil), r.items...)
}

// Get returns the distributor with the given id.
func (r *Distributors) Get(id string) (models.Distributor, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.items {
		if d.ID == id {
			return d, true
		}
	}
	return models.Distributor{}, false
}

// Add normalizes raw, commits it locally, and attempts remote
// durability. The returned distributor is already visible to readers
// before any network round-trip finishes.
func (r *Distributors) Add(ctx context.Context, raw interface{}) models.Distributor {
	now := r.nowFn()
	d := normalize.Distributor(raw, now)
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = now.UTC()
	d.UpdatedAt = now.UTC()

	r.mu.Lock()
	r.items = append(r.items, d)
	r.persistLocked()
	r.mu.Unlock()
	r.changed()

	r.durable.create(ctx, models.TableDistributors, d)
	return d
}

// Update overlays patch onto the stored record, re-normalizes, and
// commits. Returns false when the id is unknown.
func (r *Distributors) Update(ctx context.Context, id string, patch interface{}) (models.Distributor, bool) {
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
		return models.Distributor{}, false
	}

	now := r.nowFn()
	d := normalize.Distributor(merge(r.items[idx], patch), now)
	d.ID = id
	d.CreatedAt = r.items[idx].CreatedAt
	d.UpdatedAt = now.UTC()
	r.items[idx] = d
	r.persistLocked()
	r.mu.Unlock()
	r.changed()

	r.durable.update(ctx, models.TableDistributors, id, d)
	return d, true
}

// Delete removes the distributor. The caller (aggregate state) cascades
// the removal of its visits and sales.
func (r *Distributors) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()
	kept := r.items[:0]
	found := false
	for _, d := range r.items {
		if d.ID == id {
			found = true
			continue
		}
		kept = append(kept, d)
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

	r.durable.delete(ctx, models.TableDistributors, id)
	return true
}

// SetPriority writes the recomputed priority triple back onto the cached
// record. This is a derived-value refresh: persisted locally, never sent
// to the remote.
func (r *Distributors) SetPriority(id string, score int, level string, drivers models.PriorityDrivers) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id {
			r.items[i].PriorityScore = score
			r.items[i].PriorityLevel = level
			r.items[i].PriorityDrivers = drivers
			r.persistLocked()
			return true
		}
	}
	return false
}

func (r *Distributors) persistLocked() {
	if err := r.store.SaveJSON(keyDistributors, store.SchemaVersion, r.items); err != nil {
		log.Printf("repo: failed to persist distributors: %v", err)
	}
}

func (r *Distributors) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}
