// ABOUTME: Durable sync queue for mutations pending remote confirmation
// ABOUTME: FIFO replay on reconnect with a settle delay; failed operations stay queued
package queue

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/remote"
	"github.com/redpdv/redpdv/store"
)

// Storage keys for the queue and its bookkeeping.
const (
	queueKey    = "sync_queue"
	lastSyncKey = "last_sync"
)

// DefaultSettleDelay is how long the queue waits after connectivity
// returns before replaying, so flapping links do not trigger bursts.
const DefaultSettleDelay = 2 * time.Second

// Queue records pending mutations while disconnected or after remote
// failures and replays them strictly in FIFO order. A single isSyncing
// flag prevents overlapping replay passes.
type Queue struct {
	mu        sync.Mutex
	store     *store.Store
	backend   remote.Backend
	notifier  Notifier
	ops       []models.SyncOperation
	online    bool
	isSyncing bool

	settleDelay time.Duration
	errorCount  int
	lastSync    time.Time

	entropy *ulid.MonotonicEntropy
	nowFn   func() time.Time
}

// New loads any persisted queue state and returns a queue that assumes
// connectivity until told otherwise.
func New(s *store.Store, backend remote.Backend, notifier Notifier, settleDelay time.Duration) *Queue {
	if settleDelay <= 0 {
		settleDelay = DefaultSettleDelay
	}
	if notifier == nil {
		notifier = LogNotifier{}
	}

	q := &Queue{
		store:       s,
		backend:     backend,
		notifier:    notifier,
		online:      true,
		settleDelay: settleDelay,
		entropy:     ulid.Monotonic(rand.Reader, 0),
		nowFn:       time.Now,
	}

	_ = s.LoadJSON(queueKey, store.SchemaVersion, &q.ops)
	var last string
	if s.LoadJSON(lastSyncKey, store.SchemaVersion, &last) {
		if t, err := time.Parse(time.RFC3339, last); err == nil {
			q.lastSync = t
		}
	}

	return q
}

// Enqueue records a mutation for later replay and persists the queue.
func (q *Queue) Enqueue(opType, table string, data interface{}) (models.SyncOperation, error) {
	payload, err := marshalData(data)
	if err != nil {
		return models.SyncOperation{}, fmt.Errorf("failed to encode %s %s payload: %w", opType, table, err)
	}

	q.mu.Lock()
	now := q.nowFn().UTC()
	op := models.SyncOperation{
		ID:        ulid.MustNew(ulid.Timestamp(now), q.entropy).String(),
		Type:      opType,
		Table:     table,
		Data:      payload,
		Timestamp: now,
	}
	q.ops = append(q.ops, op)
	q.persistLocked()
	pending := len(q.ops)
	q.mu.Unlock()

	q.notifier.Notify(LevelWarning, fmt.Sprintf("Guardado sin conexión (%d pendientes)", pending))
	return op, nil
}

// SetOnline tracks connectivity transitions. Coming back online arms an
// automatic replay after the settle delay when work is pending.
func (q *Queue) SetOnline(online bool) {
	q.mu.Lock()
	wasOnline := q.online
	q.online = online
	pending := len(q.ops)
	syncing := q.isSyncing
	delay := q.settleDelay
	q.mu.Unlock()

	if online && !wasOnline {
		q.notifier.Notify(LevelInfo, "Conexión restablecida")
		if pending > 0 && !syncing {
			time.AfterFunc(delay, func() {
				if err := q.Sync(context.Background()); err != nil {
					log.Printf("queue: automatic replay failed: %v", err)
				}
			})
		}
	}
	if !online && wasOnline {
		q.notifier.Notify(LevelWarning, "Sin conexión; los cambios se guardarán localmente")
	}
}

// Online reports the last known connectivity state.
func (q *Queue) Online() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.online
}

// ForceSync replays the queue on demand. It no-ops with a notification
// when there is nothing to do or the device is offline.
func (q *Queue) ForceSync(ctx context.Context) error {
	q.mu.Lock()
	online := q.online
	pending := len(q.ops)
	q.mu.Unlock()

	if !online {
		q.notifier.Notify(LevelWarning, "Sin conexión; no se puede sincronizar")
		return nil
	}
	if pending == 0 {
		q.notifier.Notify(LevelInfo, "No hay operaciones pendientes")
		return nil
	}
	return q.Sync(ctx)
}

// Sync replays the queue strictly in FIFO order. Each operation gets one
// attempt per pass; failures stay queued for the next pass rather than
// being dropped with the successes.
func (q *Queue) Sync(ctx context.Context) error {
	q.mu.Lock()
	if q.isSyncing || !q.online {
		q.mu.Unlock()
		return nil
	}
	q.isSyncing = true
	batch := append([]models.SyncOperation(nil), q.ops...)
	q.mu.Unlock()

	var failed []models.SyncOperation
	succeeded := 0
	for _, op := range batch {
		if err := q.dispatch(ctx, op); err != nil {
			log.Printf("queue: replay of %s %s %s failed: %v", op.Type, op.Table, op.ID, err)
			failed = append(failed, op)
			continue
		}
		succeeded++
	}

	q.mu.Lock()
	// Operations enqueued while this pass ran are behind the batch.
	q.ops = append(failed, q.ops[len(batch):]...)
	q.errorCount += len(failed)
	if succeeded > 0 {
		q.lastSync = q.nowFn().UTC()
		if err := q.store.SaveJSON(lastSyncKey, store.SchemaVersion, q.lastSync.Format(time.RFC3339)); err != nil {
			log.Printf("queue: failed to persist last sync time: %v", err)
		}
	}
	q.persistLocked()
	q.isSyncing = false
	q.mu.Unlock()

	switch {
	case len(failed) == 0:
		q.notifier.Notify(LevelSuccess, fmt.Sprintf("Sincronización completada (%d operaciones)", succeeded))
	case succeeded == 0:
		q.notifier.Notify(LevelError, fmt.Sprintf("Sincronización fallida (%d operaciones pendientes)", len(failed)))
	default:
		q.notifier.Notify(LevelWarning, fmt.Sprintf("Sincronización parcial: %d enviadas, %d pendientes", succeeded, len(failed)))
	}
	return nil
}

// dispatch performs the single remote attempt for one operation.
func (q *Queue) dispatch(ctx context.Context, op models.SyncOperation) error {
	switch op.Type {
	case models.OpCreate:
		return q.backend.Insert(ctx, op.Table, op.Data)
	case models.OpUpdate:
		return q.backend.Update(ctx, op.Table, dataID(op.Data), op.Data)
	case models.OpDelete:
		return q.backend.Delete(ctx, op.Table, dataID(op.Data))
	default:
		// Unknown types are dropped; there is nothing to replay.
		log.Printf("queue: dropping operation %s with unknown type %q", op.ID, op.Type)
		return nil
	}
}

// Watch polls backend connectivity until ctx is cancelled, feeding
// transitions into SetOnline.
func (q *Queue) Watch(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, interval)
			err := q.backend.Ping(pingCtx)
			cancel()
			q.SetOnline(err == nil)
		}
	}
}

// Pending returns the number of queued operations.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ops)
}

// Errors returns the cumulative count of failed replay attempts.
func (q *Queue) Errors() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.errorCount
}

// LastSync returns when a replay pass last confirmed an operation.
func (q *Queue) LastSync() time.Time {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.lastSync
}

// Snapshot returns a copy of the queued operations in replay order.
func (q *Queue) Snapshot() []models.SyncOperation {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]models.SyncOperation(nil), q.ops...)
}

func (q *Queue) persistLocked() {
	if err := q.store.SaveJSON(queueKey, store.SchemaVersion, q.ops); err != nil {
		log.Printf("queue: failed to persist queue: %v", err)
	}
}

func marshalData(data interface{}) (json.RawMessage, error) {
	if raw, ok := data.(json.RawMessage); ok {
		return raw, nil
	}
	if raw, ok := data.([]byte); ok {
		return json.RawMessage(raw), nil
	}
	return json.Marshal(data)
}

func dataID(data json.RawMessage) string {
	var probe struct {
		ID string `json:"id"`
	}
	_ = json.Unmarshal(data, &probe)
	return probe.ID
}
