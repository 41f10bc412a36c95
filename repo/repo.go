// ABOUTME: Shared plumbing for the entity repositories
// ABOUTME: Implements the optimistic-update durability attempt and record merging
package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/queue"
	"github.com/redpdv/redpdv/remote"
)

// Storage keys, one collection per key.
const (
	keyDistributors = "distributors"
	keyCandidates   = "candidates"
	keyVisits       = "visits"
	keySales        = "sales"
	keyUsers        = "users"
	keyPreferences  = "preferences"
)

// durability is phase two of every mutation: the local commit has
// already landed, and this attempts the remote write. Failure or a known
// offline state turns into a queue entry; the caller never sees an
// error from this phase.
type durability struct {
	backend  remote.Backend
	queue    *queue.Queue
	notifier queue.Notifier
}

func (d durability) create(ctx context.Context, table string, entity interface{}) {
	d.attempt(ctx, models.OpCreate, table, entity, func(data json.RawMessage) error {
		return d.backend.Insert(ctx, table, data)
	})
}

func (d durability) update(ctx context.Context, table, id string, entity interface{}) {
	d.attempt(ctx, models.OpUpdate, table, entity, func(data json.RawMessage) error {
		return d.backend.Update(ctx, table, id, data)
	})
}

func (d durability) delete(ctx context.Context, table, id string) {
	d.attempt(ctx, models.OpDelete, table, map[string]string{"id": id}, func(json.RawMessage) error {
		return d.backend.Delete(ctx, table, id)
	})
}

func (d durability) attempt(ctx context.Context, opType, table string, entity interface{}, call func(json.RawMessage) error) {
	data, err := json.Marshal(entity)
	if err != nil {
		log.Printf("repo: cannot encode %s %s payload: %v", opType, table, err)
		return
	}

	if !d.queue.Online() {
		d.enqueue(opType, table, data)
		return
	}

	if err := call(data); err != nil {
		log.Printf("repo: remote %s %s failed, queuing: %v", opType, table, err)
		d.enqueue(opType, table, data)
		return
	}

	if d.notifier != nil {
		d.notifier.Notify(queue.LevelSuccess, fmt.Sprintf("Sincronizado: %s %s", opType, table))
	}
}

func (d durability) enqueue(opType, table string, data json.RawMessage) {
	if _, err := d.queue.Enqueue(opType, table, data); err != nil {
		log.Printf("repo: failed to enqueue %s %s: %v", opType, table, err)
	}
}

// merge overlays a patch onto an existing record, both seen as JSON
// objects. Patch keys win; everything else survives. Update calls run
// the result back through the normalizer.
func merge(existing interface{}, patch interface{}) map[string]interface{} {
	out := toMap(existing)
	for k, v := range toMap(patch) {
		out[k] = v
	}
	return out
}

func toMap(v interface{}) map[string]interface{} {
	if m, ok := v.(map[string]interface{}); ok {
		return m
	}
	blob, err := json.Marshal(v)
	if err != nil {
		return map[string]interface{}{}
	}
	var m map[string]interface{}
	if err := json.Unmarshal(blob, &m); err != nil {
		return map[string]interface{}{}
	}
	return m
}
