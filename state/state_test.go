// ABOUTME: Tests for the aggregate application state
// ABOUTME: Covers priority recompute triggers, cascades, summaries, and user selection
package state

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/remote"
	"github.com/redpdv/redpdv/store"
)

func newApp(t *testing.T) (*App, *remote.Fake) {
	t.Helper()
	s := store.NewTestStore(t)
	backend := remote.NewFake()
	return New(s, backend, 5*time.Millisecond), backend
}

func TestSaleMutationRecomputesPriority(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	d := app.Distributors.Add(ctx, map[string]interface{}{
		"name": "PDV Centro",
		"city": "Madrid",
	})
	before, _ := app.Distributors.Get(d.ID)

	for i := 0; i < 3; i++ {
		app.Sales.Add(ctx, map[string]interface{}{
			"distributor_id": d.ID,
			"date":           time.Now().UTC().Format("2006-01-02"),
			"operations":     4,
		})
	}

	after, _ := app.Distributors.Get(d.ID)
	assert.Greater(t, after.PriorityScore, before.PriorityScore)
	assert.Equal(t, 12, after.PriorityDrivers.SalesLast90Days)
}

func TestVisitMutationClearsStalePenalty(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	d := app.Distributors.Add(ctx, map[string]interface{}{"name": "PDV", "city": "Madrid"})
	before, _ := app.Distributors.Get(d.ID)

	app.Visits.Add(ctx, map[string]interface{}{
		"distributor_id": d.ID,
		"date":           time.Now().UTC().Format("2006-01-02"),
	})

	after, _ := app.Distributors.Get(d.ID)
	assert.Greater(t, after.PriorityScore, before.PriorityScore)
	assert.Equal(t, 0, after.PriorityDrivers.LastVisitDays)
}

func TestDeleteDistributorCascades(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	d := app.Distributors.Add(ctx, map[string]interface{}{"name": "PDV"})
	app.Visits.Add(ctx, map[string]interface{}{"distributor_id": d.ID, "date": "2025-06-01"})
	app.Sales.Add(ctx, map[string]interface{}{"distributor_id": d.ID})
	app.Sales.Add(ctx, map[string]interface{}{"distributor_id": "other"})

	require.True(t, app.DeleteDistributor(ctx, d.ID))
	assert.Empty(t, app.Visits.List())
	require.Len(t, app.Sales.List(), 1)
	assert.Equal(t, "other", app.Sales.List()[0].DistributorID)
}

func TestDeleteCandidateCascadesVisits(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	c := app.Candidates.Add(ctx, map[string]interface{}{"name": "Bar Pepe"})
	app.Visits.Add(ctx, map[string]interface{}{"candidate_id": c.ID, "date": "2025-06-01"})

	require.True(t, app.DeleteCandidate(ctx, c.ID))
	assert.Empty(t, app.Visits.List())
}

func TestStats(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	app.Distributors.Add(ctx, map[string]interface{}{"name": "A", "status": "active"})
	app.Distributors.Add(ctx, map[string]interface{}{"name": "B"})
	app.Candidates.Add(ctx, map[string]interface{}{"name": "C"})
	app.Candidates.Add(ctx, map[string]interface{}{"name": "D", "stage": models.StageApproved})
	app.Sales.Add(ctx, map[string]interface{}{
		"distributor_id": "x",
		"date":           time.Now().UTC().Format("2006-01-02"),
		"operations":     5,
	})
	app.Sales.Add(ctx, map[string]interface{}{"distributor_id": "x", "date": "2019-03-01", "operations": 9})

	st := app.Stats()
	assert.Equal(t, 2, st.Distributors)
	assert.Equal(t, 1, st.ActiveDistributors)
	assert.Equal(t, 5, st.SalesOperationsYTD, "only current-year operations count")
	assert.Equal(t, 1, st.Pipeline[models.StageNew])
	assert.Equal(t, 1, st.Pipeline[models.StageApproved])
}

func TestCallCenterRanksByScore(t *testing.T) {
	app, _ := newApp(t)
	ctx := context.Background()

	app.Distributors.Add(ctx, map[string]interface{}{"name": "Quiet", "city": "Cuenca"})
	busy := app.Distributors.Add(ctx, map[string]interface{}{"name": "Busy", "city": "Madrid"})
	app.Sales.Add(ctx, map[string]interface{}{
		"distributor_id": busy.ID,
		"date":           time.Now().UTC().Format("2006-01-02"),
		"operations":     10,
	})

	entries := app.CallCenter()
	require.Len(t, entries, 2)
	assert.Equal(t, "Busy", entries[0].Distributor.Name)
	assert.GreaterOrEqual(t, entries[0].Score, entries[1].Score)
	assert.NotZero(t, entries[0].Drivers.Traffic)
}

func TestCurrentUserDefaultsAndLogout(t *testing.T) {
	app, _ := newApp(t)

	assert.Equal(t, "Operador", app.CurrentUser().Name)

	u := app.Users.Add(map[string]interface{}{"name": "Marta"})
	require.True(t, app.SetCurrentUser(u.ID))
	assert.Equal(t, "Marta", app.CurrentUser().Name)
	assert.False(t, app.SetCurrentUser("missing"))

	// Selection survives a restart over the same store.
	fresh := New(app.Store, remote.NewFake(), 5*time.Millisecond)
	assert.Equal(t, "Marta", fresh.CurrentUser().Name)

	fresh.Logout()
	assert.Equal(t, "Operador", fresh.CurrentUser().Name)
}

func TestExportDistributorsCSV(t *testing.T) {
	app, _ := newApp(t)
	app.Distributors.Add(context.Background(), map[string]interface{}{
		"name":   "PDV, Centro",
		"code":   "CAPTACION_1",
		"city":   "Madrid",
		"status": "active",
	})

	var sb strings.Builder
	require.NoError(t, app.ExportDistributorsCSV(&sb))

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "id,name,code,category"))
	assert.Contains(t, lines[1], `"PDV, Centro"`)
	assert.Contains(t, lines[1], "captacion")
}

func TestExportSalesCSV(t *testing.T) {
	app, _ := newApp(t)
	app.Sales.Add(context.Background(), map[string]interface{}{
		"distributor_id": "d1",
		"date":           "2025-05-04",
		"brand":          "silbo",
		"operations":     3,
	})

	var sb strings.Builder
	require.NoError(t, app.ExportSalesCSV(&sb))
	assert.Contains(t, sb.String(), "d1,2025-05-04,silbo,,3,")
}
