// ABOUTME: Tests for the distributor repository
// ABOUTME: Covers optimistic commits, offline queuing, derived invariants, and reload
package repo

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/queue"
	"github.com/redpdv/redpdv/remote"
	"github.com/redpdv/redpdv/store"
)

type fixture struct {
	store   *store.Store
	backend *remote.Fake
	queue   *queue.Queue
	notes   *queue.NotificationLog
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	s := store.NewTestStore(t)
	backend := remote.NewFake()
	notes := queue.NewNotificationLog(50, nil)
	q := queue.New(s, backend, notes, 5*time.Millisecond)
	return &fixture{store: s, backend: backend, queue: q, notes: notes}
}

func TestAddDistributorComputesDerivedFields(t *testing.T) {
	f := newFixture(t)
	r := NewDistributors(f.store, f.backend, f.queue, f.notes)

	d := r.Add(context.Background(), map[string]interface{}{
		"nombre_pdv":     "Estanco Gran Via",
		"codigo_cliente": "EXISTENTE_VF_10",
		"canal":          "estanco",
		"cif":            "B1234567J",
		"razon_social":   "Estanco Gran Via SL",
	})

	require.NotEmpty(t, d.ID)
	assert.Equal(t, "existente_vf", d.Category)
	assert.NotContains(t, d.Brands, "lowi")
	assert.Equal(t, d.Checklist.All(), d.ChecklistComplete)

	// Phase two landed on the remote.
	if _, ok := f.backend.Row(models.TableDistributors, d.ID); !ok {
		t.Error("expected distributor row on the backend")
	}
}

func TestAddDistributorOfflineQueues(t *testing.T) {
	f := newFixture(t)
	f.queue.SetOnline(false)
	r := NewDistributors(f.store, f.backend, f.queue, f.notes)

	d := r.Add(context.Background(), map[string]interface{}{"name": "PDV Sur"})

	// Local state reflects the write immediately.
	got, ok := r.Get(d.ID)
	require.True(t, ok)
	assert.Equal(t, "PDV Sur", got.Name)

	// No remote call; one queued create instead.
	assert.Empty(t, f.backend.Calls())
	require.Equal(t, 1, f.queue.Pending())
	op := f.queue.Snapshot()[0]
	assert.Equal(t, models.OpCreate, op.Type)
	assert.Equal(t, models.TableDistributors, op.Table)
}

func TestAddDistributorRemoteFailureQueues(t *testing.T) {
	f := newFixture(t)
	f.backend.Fail(errors.New("500"))
	r := NewDistributors(f.store, f.backend, f.queue, f.notes)

	r.Add(context.Background(), map[string]interface{}{"name": "PDV Norte"})

	// The caller saw no error; the op is parked for replay.
	assert.Len(t, r.List(), 1)
	assert.Equal(t, 1, f.queue.Pending())
}

func TestUpdateDistributorRenormalizes(t *testing.T) {
	f := newFixture(t)
	r := NewDistributors(f.store, f.backend, f.queue, f.notes)

	d := r.Add(context.Background(), map[string]interface{}{"name": "PDV", "code": "CAPTACION_1"})

	updated, ok := r.Update(context.Background(), d.ID, map[string]interface{}{
		"code":   "EXISTENTE_VF_2",
		"brands": []interface{}{"silbo", "lowi"},
	})

	require.True(t, ok)
	assert.Equal(t, "existente_vf", updated.Category)
	assert.NotContains(t, updated.Brands, "lowi")
	assert.Equal(t, d.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "PDV", updated.Name, "untouched fields survive the patch")
}

func TestUpdateUnknownDistributor(t *testing.T) {
	f := newFixture(t)
	r := NewDistributors(f.store, f.backend, f.queue, f.notes)

	_, ok := r.Update(context.Background(), "missing", map[string]interface{}{"name": "x"})
	assert.False(t, ok)
}

func TestDistributorsReloadFromStore(t *testing.T) {
	f := newFixture(t)
	r := NewDistributors(f.store, f.backend, f.queue, f.notes)
	d := r.Add(context.Background(), map[string]interface{}{"name": "PDV", "code": "EXISTENTE_VF_3"})

	again := NewDistributors(f.store, f.backend, f.queue, f.notes)
	got, ok := again.Get(d.ID)
	require.True(t, ok)
	assert.Equal(t, "PDV", got.Name)
	assert.Equal(t, "existente_vf", got.Category)
}

func TestSetPriorityDoesNotTouchRemote(t *testing.T) {
	f := newFixture(t)
	r := NewDistributors(f.store, f.backend, f.queue, f.notes)
	d := r.Add(context.Background(), map[string]interface{}{"name": "PDV"})
	callsBefore := len(f.backend.Calls())

	ok := r.SetPriority(d.ID, 80, models.PriorityHigh, models.PriorityDrivers{Traffic: 0.9})

	require.True(t, ok)
	assert.Len(t, f.backend.Calls(), callsBefore, "derived refresh must not hit the backend")
	got, _ := r.Get(d.ID)
	assert.Equal(t, 80, got.PriorityScore)
	assert.Equal(t, models.PriorityHigh, got.PriorityLevel)
}

func TestDeleteDistributor(t *testing.T) {
	f := newFixture(t)
	r := NewDistributors(f.store, f.backend, f.queue, f.notes)
	d := r.Add(context.Background(), map[string]interface{}{"name": "PDV"})

	require.True(t, r.Delete(context.Background(), d.ID))
	assert.Empty(t, r.List())
	assert.False(t, r.Delete(context.Background(), d.ID))
}
