// ABOUTME: Tests for distributor priority scoring
// ABOUTME: Covers level bucketing boundaries, sales windows, and the stale-visit penalty
package derive

import (
	"testing"
	"time"

	"github.com/redpdv/redpdv/models"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func TestPriorityLevelBuckets(t *testing.T) {
	tests := []struct {
		score int
		level string
	}{
		{100, models.PriorityHigh},
		{75, models.PriorityHigh},
		{74, models.PriorityMedium},
		{50, models.PriorityMedium},
		{49, models.PriorityLow},
		{0, models.PriorityLow},
	}
	for _, tt := range tests {
		if got := PriorityLevel(tt.score); got != tt.level {
			t.Errorf("PriorityLevel(%d) = %s, want %s", tt.score, got, tt.level)
		}
	}
}

func TestPriorityHighTrafficActiveDistributor(t *testing.T) {
	d := fullDistributor()
	d.City = "Madrid"

	sales := []models.Sale{
		{ID: "s1", DistributorID: d.ID, Date: now.AddDate(0, 0, -10), Operations: 6},
		{ID: "s2", DistributorID: d.ID, Date: now.AddDate(0, 0, -40), Operations: 5},
	}
	visits := []models.Visit{
		{ID: "v1", DistributorID: d.ID, Date: now.AddDate(0, 0, -7)},
	}

	score, level, drivers := Priority(d, sales, visits, now)

	// traffic 0.95*0.40 + sales 1.0*0.35 + completion 1.0*0.25 = 0.98
	if score != 98 {
		t.Errorf("expected score 98, got %d", score)
	}
	if level != models.PriorityHigh {
		t.Errorf("expected high, got %s", level)
	}
	if drivers.SalesLast90Days != 11 {
		t.Errorf("expected 11 operations in 90 days, got %d", drivers.SalesLast90Days)
	}
	if drivers.LastVisitDays != 7 {
		t.Errorf("expected last visit 7 days ago, got %d", drivers.LastVisitDays)
	}
	if drivers.LastSaleDays != 10 {
		t.Errorf("expected last sale 10 days ago, got %d", drivers.LastSaleDays)
	}
}

func TestPriorityStaleVisitPenalty(t *testing.T) {
	d := fullDistributor()
	d.City = "Madrid"
	sales := []models.Sale{
		{ID: "s1", DistributorID: d.ID, Date: now.AddDate(0, 0, -10), Operations: 10},
	}

	recent := []models.Visit{{ID: "v1", DistributorID: d.ID, Date: now.AddDate(0, 0, -7)}}
	stale := []models.Visit{{ID: "v1", DistributorID: d.ID, Date: now.AddDate(0, 0, -120)}}

	withVisit, _, _ := Priority(d, sales, recent, now)
	withoutVisit, _, drivers := Priority(d, sales, stale, now)

	if withoutVisit >= withVisit {
		t.Errorf("expected penalty: %d should be below %d", withoutVisit, withVisit)
	}
	// 0.98 * 0.85 = 0.833
	if withoutVisit != 83 {
		t.Errorf("expected penalized score 83, got %d", withoutVisit)
	}
	if drivers.LastVisitDays != 120 {
		t.Errorf("expected last visit 120 days ago, got %d", drivers.LastVisitDays)
	}
}

func TestPrioritySalesOutsideWindowIgnored(t *testing.T) {
	d := fullDistributor()
	d.City = "Madrid"
	sales := []models.Sale{
		{ID: "s1", DistributorID: d.ID, Date: now.AddDate(0, 0, -200), Operations: 10},
	}
	_, _, drivers := Priority(d, sales, nil, now)
	if drivers.Sales != 0 {
		t.Errorf("expected no sales volume from outside the window, got %v", drivers.Sales)
	}
	if drivers.LastSaleDays != 200 {
		t.Errorf("expected last sale 200 days ago, got %d", drivers.LastSaleDays)
	}
}

func TestPriorityIgnoresOtherDistributors(t *testing.T) {
	d := fullDistributor()
	sales := []models.Sale{
		{ID: "s1", DistributorID: "someone-else", Date: now.AddDate(0, 0, -5), Operations: 10},
	}
	_, _, drivers := Priority(d, sales, nil, now)
	if drivers.Sales != 0 || drivers.SalesLast90Days != 0 {
		t.Errorf("expected other distributors' sales to be ignored, got %+v", drivers)
	}
}

func TestTerritoryFallbackFromSalesYTD(t *testing.T) {
	d := fullDistributor()
	d.City = "Villarrobledo"
	d.Province = "Albacete"

	d.SalesYTD = 120
	if got := territoryScore(d); got != 0.80 {
		t.Errorf("expected 0.80 fallback, got %v", got)
	}
	d.SalesYTD = 5
	if got := territoryScore(d); got != 0.20 {
		t.Errorf("expected 0.20 fallback, got %v", got)
	}
}
