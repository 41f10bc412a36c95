// ABOUTME: Candidate repository for the sales pipeline
// ABOUTME: Keeps per-stage positions contiguous through adds, moves, and deletes
package repo

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/redpdv/redpdv/derive"
	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/normalize"
	"github.com/redpdv/redpdv/queue"
	"github.com/redpdv/redpdv/remote"
	"github.com/redpdv/redpdv/store"
)

// Candidates owns the pipeline candidate collection.
type Candidates struct {
	mu       sync.Mutex
	store    *store.Store
	durable  durability
	items    []models.Candidate
	onChange func()
	nowFn    func() time.Time
}

// NewCandidates loads and re-normalizes the persisted collection, then
// reindexes every stage so the contiguity invariant holds even for data
// written by older versions.
func NewCandidates(s *store.Store, backend remote.Backend, q *queue.Queue, notifier queue.Notifier) *Candidates {
	r := &Candidates{
		store:   s,
		durable: durability{backend: backend, queue: q, notifier: notifier},
		nowFn:   time.Now,
	}

	var raw []map[string]interface{}
	if s.LoadJSON(keyCandidates, store.SchemaVersion, &raw) {
		now := r.nowFn()
		for _, record := range raw {
			r.items = append(r.items, normalize.Candidate(record, now))
		}
		for _, stage := range models.Stages {
			derive.ReindexStage(r.items, stage)
		}
	}
	return r
}

// OnChange registers a hook run after every committed mutation.
func (r *Candidates) OnChange(fn func()) { r.onChange = fn }

// List returns a copy of the collection.
func (r *Candidates) List() []models.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Candidate(nil), r.items...)
}

// Get returns the candidate with the given id.
func (r *Candidates) Get(id string) (models.Candidate, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.items {
		if c.ID == id {
			return c, true
		}
	}
	return models.Candidate{}, false
}

// ByStage returns the candidates in a stage ordered by position.
func (r *Candidates) ByStage(stage string) []models.Candidate {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Candidate
	for pos := 0; ; pos++ {
		found := false
		for _, c := range r.items {
			if c.Stage == stage && c.Position == pos {
				out = append(out, c)
				found = true
				break
			}
		}
		if !found {
			return out
		}
	}
}

// Add appends a new candidate at the end of its stage.
func (r *Candidates) Add(ctx context.Context, raw interface{}) models.Candidate {
	now := r.nowFn()
	c := normalize.Candidate(raw, now)
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	c.CreatedAt = now.UTC()
	c.UpdatedAt = now.UTC()

	r.mu.Lock()
	c.Position = derive.NextPosition(r.items, c.Stage)
	r.items = append(r.items, c)
	r.persistLocked()
	r.mu.Unlock()
	r.changed()

	r.durable.create(ctx, models.TableCandidates, c)
	return c
}

// Update overlays patch onto the stored record and re-normalizes. Stage
// changes through Update are treated as a move to the end of the target
// stage.
func (r *Candidates) Update(ctx context.Context, id string, patch interface{}) (models.Candidate, bool) {
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
		return models.Candidate{}, false
	}

	now := r.nowFn()
	before := r.items[idx]
	c := normalize.Candidate(merge(before, patch), now)
	c.ID = id
	c.CreatedAt = before.CreatedAt
	c.UpdatedAt = now.UTC()

	if c.Stage != before.Stage {
		// Reinstate the old stage first so MoveCandidate reindexes it.
		target := c.Stage
		c.Stage = before.Stage
		c.Position = before.Position
		r.items[idx] = c
		derive.MoveCandidate(r.items, id, target, derive.NextPosition(r.items, target))
	} else {
		r.items[idx] = c
	}
	r.persistLocked()
	updated := r.items[idx]
	r.mu.Unlock()
	r.changed()

	r.durable.update(ctx, models.TableCandidates, id, updated)
	return updated, true
}

// Move relocates a candidate to a stage and position, reindexing both
// affected stages. Every candidate whose stage or position changed gets
// a remote update so the board order survives on the backend.
func (r *Candidates) Move(ctx context.Context, id, stage string, position int) bool {
	r.mu.Lock()
	before := make(map[string][2]interface{}, len(r.items))
	for _, c := range r.items {
		before[c.ID] = [2]interface{}{c.Stage, c.Position}
	}

	found := false
	for i := range r.items {
		if r.items[i].ID == id {
			found = true
			break
		}
	}
	if !found {
		r.mu.Unlock()
		return false
	}

	now := r.nowFn().UTC()
	derive.MoveCandidate(r.items, id, stage, position)

	var touched []models.Candidate
	for i := range r.items {
		prev := before[r.items[i].ID]
		if prev[0] != r.items[i].Stage || prev[1] != r.items[i].Position {
			r.items[i].UpdatedAt = now
			touched = append(touched, r.items[i])
		}
	}
	r.persistLocked()
	r.mu.Unlock()
	r.changed()

	for _, c := range touched {
		r.durable.update(ctx, models.TableCandidates, c.ID, c)
	}
	return true
}

// Delete removes the candidate and closes the gap in its stage. The
// caller cascades the removal of its visits.
func (r *Candidates) Delete(ctx context.Context, id string) bool {
	r.mu.Lock()
	n := len(r.items)
	r.items = derive.RemoveCandidate(r.items, id)
	removed := len(r.items) < n
	if removed {
		r.persistLocked()
	}
	r.mu.Unlock()
	if !removed {
		return false
	}
	r.changed()

	r.durable.delete(ctx, models.TableCandidates, id)
	return true
}

func (r *Candidates) persistLocked() {
	if err := r.store.SaveJSON(keyCandidates, store.SchemaVersion, r.items); err != nil {
		log.Printf("repo: failed to persist candidates: %v", err)
	}
}

func (r *Candidates) changed() {
	if r.onChange != nil {
		r.onChange()
	}
}
