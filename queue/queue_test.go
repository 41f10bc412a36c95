// ABOUTME: Tests for the sync queue
// ABOUTME: Covers persistence, FIFO replay, partial failure retention, and reconnect replay
package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/remote"
	"github.com/redpdv/redpdv/store"
)

func newTestQueue(t *testing.T) (*Queue, *remote.Fake, *store.Store) {
	t.Helper()
	s := store.NewTestStore(t)
	backend := remote.NewFake()
	q := New(s, backend, NewNotificationLog(20, nil), 10*time.Millisecond)
	return q, backend, s
}

func TestEnqueuePersistsAcrossRestart(t *testing.T) {
	q, backend, s := newTestQueue(t)

	_, err := q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": "s1"})
	require.NoError(t, err)
	_, err = q.Enqueue(models.OpDelete, models.TableVisits, map[string]string{"id": "v1"})
	require.NoError(t, err)

	reloaded := New(s, backend, nil, 0)
	require.Equal(t, 2, reloaded.Pending())

	ops := reloaded.Snapshot()
	assert.Equal(t, models.OpCreate, ops[0].Type)
	assert.Equal(t, models.TableSales, ops[0].Table)
	assert.Equal(t, models.OpDelete, ops[1].Type)
}

func TestReplayFIFOOrder(t *testing.T) {
	q, backend, _ := newTestQueue(t)

	for _, id := range []string{"a", "b", "c"} {
		_, err := q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": id})
		require.NoError(t, err)
	}

	require.NoError(t, q.Sync(context.Background()))

	calls := backend.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, "a", calls[0].ID)
	assert.Equal(t, "b", calls[1].ID)
	assert.Equal(t, "c", calls[2].ID)
	assert.Equal(t, 0, q.Pending())
	assert.False(t, q.LastSync().IsZero())
}

func TestReplayKeepsFailedSubset(t *testing.T) {
	q, backend, _ := newTestQueue(t)

	_, err := q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": "ok"})
	require.NoError(t, err)
	_, err = q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": "broken"})
	require.NoError(t, err)

	backend.FailIf(func(c remote.Call) error {
		if c.ID == "broken" {
			return errors.New("constraint violation")
		}
		return nil
	})

	require.NoError(t, q.Sync(context.Background()))

	require.Equal(t, 1, q.Pending())
	assert.Equal(t, "broken", dataID(q.Snapshot()[0].Data))
	assert.Equal(t, 1, q.Errors())
	assert.False(t, q.LastSync().IsZero(), "partial success still advances lastSync")

	// The failed operation is retried on the next pass.
	backend.FailIf(nil)
	require.NoError(t, q.Sync(context.Background()))
	assert.Equal(t, 0, q.Pending())
}

func TestAutoReplayAfterReconnect(t *testing.T) {
	q, backend, _ := newTestQueue(t)

	q.SetOnline(false)
	_, err := q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": "s1"})
	require.NoError(t, err)

	q.SetOnline(true)

	require.Eventually(t, func() bool {
		return q.Pending() == 0
	}, time.Second, 5*time.Millisecond, "queue should drain within the settle delay")

	if _, ok := backend.Row(models.TableSales, "s1"); !ok {
		t.Error("expected replayed row on the backend")
	}
}

func TestReloadedQueueDrainsOnStartupSync(t *testing.T) {
	q, backend, s := newTestQueue(t)

	// A write made while offline outlives the session that queued it.
	q.SetOnline(false)
	_, err := q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": "s1"})
	require.NoError(t, err)

	reloaded := New(s, backend, NewNotificationLog(20, nil), 10*time.Millisecond)
	require.Equal(t, 1, reloaded.Pending())

	// A fresh queue assumes online, so SetOnline(true) is not a
	// transition and arms no replay. Startup drains it explicitly.
	reloaded.SetOnline(true)
	require.NoError(t, reloaded.Sync(context.Background()))

	assert.Equal(t, 0, reloaded.Pending())
	if _, ok := backend.Row(models.TableSales, "s1"); !ok {
		t.Error("expected replayed row on the backend")
	}
}

func TestWatchFeedsConnectivityTransitions(t *testing.T) {
	q, backend, _ := newTestQueue(t)

	backend.SetOffline(true)
	q.SetOnline(false)
	_, err := q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": "s1"})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Watch(ctx, 5*time.Millisecond)

	backend.SetOffline(false)

	require.Eventually(t, func() bool {
		return q.Online() && q.Pending() == 0
	}, time.Second, 5*time.Millisecond, "watcher should notice the reconnect and drain the queue")

	backend.SetOffline(true)
	require.Eventually(t, func() bool {
		return !q.Online()
	}, time.Second, 5*time.Millisecond, "watcher should notice the drop")
}

func TestForceSyncOfflineIsNoop(t *testing.T) {
	q, backend, _ := newTestQueue(t)
	q.SetOnline(false)

	_, err := q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": "s1"})
	require.NoError(t, err)
	require.NoError(t, q.ForceSync(context.Background()))

	assert.Equal(t, 1, q.Pending())
	assert.Empty(t, backend.Calls())
}

func TestForceSyncEmptyQueueNotifies(t *testing.T) {
	s := store.NewTestStore(t)
	backend := remote.NewFake()
	notes := NewNotificationLog(20, nil)
	q := New(s, backend, notes, 0)

	require.NoError(t, q.ForceSync(context.Background()))

	recent := notes.Recent()
	require.NotEmpty(t, recent)
	assert.Equal(t, LevelInfo, recent[len(recent)-1].Level)
}

func TestSyncGuardPreventsOverlap(t *testing.T) {
	q, _, _ := newTestQueue(t)
	q.mu.Lock()
	q.isSyncing = true
	q.mu.Unlock()

	// Returns immediately without touching the queue.
	require.NoError(t, q.Sync(context.Background()))
}

func TestOperationIDsAreOrdered(t *testing.T) {
	q, _, _ := newTestQueue(t)

	a, err := q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": "1"})
	require.NoError(t, err)
	b, err := q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": "2"})
	require.NoError(t, err)

	assert.Less(t, a.ID, b.ID, "ULIDs must sort in enqueue order")
}

func TestDispatchVerbs(t *testing.T) {
	q, backend, _ := newTestQueue(t)

	_, _ = q.Enqueue(models.OpCreate, models.TableSales, map[string]string{"id": "s1"})
	_, _ = q.Enqueue(models.OpUpdate, models.TableDistributors, map[string]string{"id": "d1"})
	_, _ = q.Enqueue(models.OpDelete, models.TableVisits, map[string]string{"id": "v1"})

	require.NoError(t, q.Sync(context.Background()))

	calls := backend.Calls()
	require.Len(t, calls, 3)
	assert.Equal(t, remote.Call{Verb: "insert", Table: models.TableSales, ID: "s1"}, calls[0])
	assert.Equal(t, remote.Call{Verb: "update", Table: models.TableDistributors, ID: "d1"}, calls[1])
	assert.Equal(t, remote.Call{Verb: "delete", Table: models.TableVisits, ID: "v1"}, calls[2])
}
