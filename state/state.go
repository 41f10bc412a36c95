// ABOUTME: Aggregate application state composing every repository and the sync queue
// ABOUTME: Owns current-user selection, priority recompute, cascades, and summaries
package state

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/redpdv/redpdv/derive"
	"github.com/redpdv/redpdv/models"
	"github.com/redpdv/redpdv/queue"
	"github.com/redpdv/redpdv/remote"
	"github.com/redpdv/redpdv/repo"
	"github.com/redpdv/redpdv/store"
)

const keyCurrentUser = "current_user"

// App is the single aggregate the CLI and UI layers talk to. All
// mutations go through it so cascades and derived-value refreshes
// cannot be skipped.
type App struct {
	Store         *store.Store
	Queue         *queue.Queue
	Notifications *queue.NotificationLog

	Distributors *repo.Distributors
	Candidates   *repo.Candidates
	Visits       *repo.Visits
	Sales        *repo.Sales
	Users        *repo.Users
	Preferences  *repo.PreferencesStore

	currentUserID string
	nowFn         func() time.Time
}

// New wires the full application graph over one store and backend.
// Sales and visit mutations trigger a priority recompute across all
// distributors; distributor mutations do too, since territory and data
// quality feed the score.
func New(s *store.Store, backend remote.Backend, settleDelay time.Duration) *App {
	notes := queue.NewNotificationLog(100, queue.LogNotifier{})
	q := queue.New(s, backend, notes, settleDelay)

	app := &App{
		Store:         s,
		Queue:         q,
		Notifications: notes,
		Distributors:  repo.NewDistributors(s, backend, q, notes),
		Candidates:    repo.NewCandidates(s, backend, q, notes),
		Visits:        repo.NewVisits(s, backend, q, notes),
		Sales:         repo.NewSales(s, backend, q, notes),
		Users:         repo.NewUsers(s),
		Preferences:   repo.NewPreferences(s),
		nowFn:         time.Now,
	}

	app.Distributors.OnChange(app.RecomputePriorities)
	app.Sales.OnChange(app.RecomputePriorities)
	app.Visits.OnChange(app.RecomputePriorities)

	app.loadCurrentUser()
	app.RecomputePriorities()
	return app
}

// RecomputePriorities rescores every distributor against the current
// sales and visit collections. Only distributors whose (score, level,
// drivers) triple actually changed are written back.
func (a *App) RecomputePriorities() {
	now := a.nowFn()
	sales := a.Sales.List()
	visits := a.Visits.List()

	for _, d := range a.Distributors.List() {
		score, level, drivers := derive.Priority(d, sales, visits, now)
		if score == d.PriorityScore && level == d.PriorityLevel && driversEqual(drivers, d.PriorityDrivers) {
			continue
		}
		a.Distributors.SetPriority(d.ID, score, level, drivers)
	}
}

// driversEqual compares the driver breakdown field by field, ignoring
// the recompute timestamp.
func driversEqual(a, b models.PriorityDrivers) bool {
	return a.Traffic == b.Traffic &&
		a.Sales == b.Sales &&
		a.DataQuality == b.DataQuality &&
		a.SalesLast90Days == b.SalesLast90Days &&
		a.LastSaleDays == b.LastSaleDays &&
		a.LastVisitDays == b.LastVisitDays
}

// DeleteDistributor removes the distributor together with its visits
// and sales.
func (a *App) DeleteDistributor(ctx context.Context, id string) bool {
	if !a.Distributors.Delete(ctx, id) {
		return false
	}
	visits := a.Visits.DeleteLinked(ctx, id, "")
	sales := a.Sales.DeleteByDistributor(ctx, id)
	log.Printf("state: deleted distributor %s (%d visits, %d sales cascaded)", id, visits, sales)
	return true
}

// DeleteCandidate removes the candidate together with its visits.
func (a *App) DeleteCandidate(ctx context.Context, id string) bool {
	if !a.Candidates.Delete(ctx, id) {
		return false
	}
	a.Visits.DeleteLinked(ctx, "", id)
	return true
}

// CurrentUser returns the selected user, defaulting to the first one.
func (a *App) CurrentUser() models.User {
	if a.currentUserID != "" {
		if u, ok := a.Users.Get(a.currentUserID); ok {
			return u
		}
	}
	users := a.Users.List()
	return users[0]
}

// SetCurrentUser selects and persists the active user.
func (a *App) SetCurrentUser(id string) bool {
	if _, ok := a.Users.Get(id); !ok {
		return false
	}
	a.currentUserID = id
	if err := a.Store.SaveJSON(keyCurrentUser, store.SchemaVersion, id); err != nil {
		log.Printf("state: failed to persist current user: %v", err)
	}
	return true
}

// Logout clears the current-user selection; reads fall back to the
// first user until someone is selected again.
func (a *App) Logout() {
	a.currentUserID = ""
	a.Store.Delete(keyCurrentUser)
}

func (a *App) loadCurrentUser() {
	var id string
	if a.Store.LoadJSON(keyCurrentUser, store.SchemaVersion, &id) {
		if _, ok := a.Users.Get(id); ok {
			a.currentUserID = id
		}
	}
}

// Stats summarizes the local collections for the dashboard.
type Stats struct {
	Distributors       int            `json:"distributors"`
	ActiveDistributors int            `json:"active_distributors"`
	SalesOperationsYTD int            `json:"sales_operations_ytd"`
	Visits             int            `json:"visits"`
	Pipeline           map[string]int `json:"pipeline"`
}

// Stats computes totals over the local state.
func (a *App) Stats() Stats {
	st := Stats{Pipeline: map[string]int{}}
	for _, stage := range models.Stages {
		st.Pipeline[stage] = len(a.Candidates.ByStage(stage))
	}

	for _, d := range a.Distributors.List() {
		st.Distributors++
		if d.Status == models.StatusActive {
			st.ActiveDistributors++
		}
	}

	yearStart := time.Date(a.nowFn().Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	for _, s := range a.Sales.List() {
		if !s.Date.Before(yearStart) {
			st.SalesOperationsYTD += s.Operations
		}
	}

	st.Visits = len(a.Visits.List())
	return st
}

// CallCenterEntry is one row of the priority-ranked work list.
type CallCenterEntry struct {
	Distributor models.Distributor     `json:"distributor"`
	Score       int                    `json:"score"`
	Level       string                 `json:"level"`
	Drivers     models.PriorityDrivers `json:"drivers"`
}

// CallCenter ranks distributors by priority, highest first, with the
// driver breakdown so agents can see why a point of sale surfaced.
func (a *App) CallCenter() []CallCenterEntry {
	items := a.Distributors.List()
	entries := make([]CallCenterEntry, 0, len(items))
	for _, d := range items {
		entries = append(entries, CallCenterEntry{
			Distributor: d,
			Score:       d.PriorityScore,
			Level:       d.PriorityLevel,
			Drivers:     d.PriorityDrivers,
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Score > entries[j].Score
	})
	return entries
}

// SyncStatus reports the queue's health for the status command.
type SyncStatus struct {
	Online   bool      `json:"online"`
	Pending  int       `json:"pending"`
	Errors   int       `json:"errors"`
	LastSync time.Time `json:"last_sync"`
}

// SyncStatus snapshots the sync queue.
func (a *App) SyncStatus() SyncStatus {
	return SyncStatus{
		Online:   a.Queue.Online(),
		Pending:  a.Queue.Pending(),
		Errors:   a.Queue.Errors(),
		LastSync: a.Queue.LastSync(),
	}
}
