// ABOUTME: Sale repository for per-distributor sales events
// ABOUTME: Feeds the priority recomputation through its change hook
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

// Sales owns the sale collection.
type Sales struct {
	mu       sync.Mutex
	store    *store.Store
	durable  durability
	items    []models.Sale
	onChange func()
	nowFn    func() time.Time
}

// NewSales loads and re-normalizes the persisted collection.
func NewSales(s *store.Store, backend remote.Backend, q *queue.Queue, notifier queue.Notifier) *Sales {
	r := &Sales{
		store:   s,
		durable: durability{backend: backend, queue: q, notifier: notifier},
		nowFn:   time.Now,
	}

	var raw []map[string]interface{}
	if s.LoadJSON(keySales, store.SchemaVersion, &raw) {
		now := r.nowFn()
		for _, record := range raw {
			r.items = append(r.items, normalize.Sale(record, now))
		}
	}
	return r
}

// OnChange registers a hook run after every committed mutation.
func (r *Sales) OnChange(fn func()) { r.onChange = fn }

// List returns a copy of the collection.
func (r *Sales) List() []models.Sale {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Sale(nil), r.items...)
}

// ByDistributor returns the sales belonging to one distributor.
func (r *Sales) ByDistributor(distributorID string) []models.Sale {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Sale
	for _, s := range r.items {
		if s.DistributorID == distributorID {
			out = append(out, s)
		}
	}
	return out
}

// Add normalizes raw, commits locally, and attempts remote durability.
func (r *Sales) Add(ctx context.Context, raw interface{}) models.Sale {
	now := r.nowFn()
	s := normalize.Sale(raw, now)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.CreatedAt = now.UTC()
	s.UpdatedAt = now.UTC()

	r.mu.Lock()
	r.items = append(r.items, s)
	r.persistLocked()
	r.mu.Unlock()
	r.changed()

	r.durable.create(ctx, models.TableSales, s)
	return s
}

// Update overlays patch onto the stored record and re-normalizes.
func (r *Sales) Update(ctx context.Context, id string, patch interface{}) (models.Sale, bool) {
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
		return models.Sale{}, false
	}

	now := r.nowFn()
	s := normalize.Sale(merge(r.items[idx], patch), now)
	s.ID = id
	s.CreatedAt = r.items[idx].CreatedAt
	s.UpdatedAt = now.UTC()
	r.items[idx] = s
	r.persistLocked()
	r.mu.Unlock()
	r.changed()

	r.durable.update(ctx, models.TableSales, id, s)
	return s, true
}

// Delete removes the sale.
func (r *Sales) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()
	kept := r.items[:0]
	found := false
	for _, s := range r.items {
		if s.ID == id {
			found = true
			continue
		}
		kept = append(kept, s)
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

	r.durable.delete(ctx, models.TableSales, id)
	return true
}

// DeleteByDistributor removes every sale for the given distributor;
// used for cascade deletes.
func (r *Sales) DeleteByDistributor(ctx context.Context, distributorID string) int {
	r.mu.Lock()
	kept := r.items[:0]
	var removed []string
	for _, s := range r.items {
		if s.DistributorID == distributorID {
			removed = append(removed, s.ID)
			continue
		}
		kept = append(kept, s)
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
		r.durable.delete(ctx, models.TableSales, id)
	}
	return len(removed)
}

func (r *Sales) persistLocked() {
	if err := r.store.SaveJSON(keySales, store.SchemaVersion, r.items); err != nil {
		log.Printf("repo: failed to persist sales: %v", err)
	}
}

func (r *Sales) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}
