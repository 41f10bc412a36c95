// ABOUTME: Distributor priority scoring from territory traffic, recent sales, and data quality
// ABOUTME: Produces the cached score/level/drivers triple; never authoritative on its own
package derive

import (
	"math"
	"strings"
	"time"

	"github.com/redpdv/redpdv/models"
)

// Scoring weights and windows.
const (
	weightTraffic     = 0.40
	weightSales       = 0.35
	weightDataQuality = 0.25

	salesWindowDays   = 120
	visitWindowDays   = 90
	staleVisitPenalty = 0.85

	// Recent sales volume saturates at this many operations in the window.
	salesVolumeCap = 10
)

// cityTraffic holds per-city footfall scores for the territories where the
// network concentrates. Cities not listed fall through to their province.
var cityTraffic = map[string]float64{
	"madrid":    0.95,
	"barcelona": 0.90,
	"valencia":  0.80,
	"sevilla":   0.78,
	"zaragoza":  0.70,
	"malaga":    0.72,
	"murcia":    0.62,
	"bilbao":    0.68,
	"alicante":  0.64,
	"cordoba":   0.55,
}

var provinceTraffic = map[string]float64{
	"madrid":    0.85,
	"barcelona": 0.82,
	"valencia":  0.70,
	"sevilla":   0.68,
	"zaragoza":  0.60,
	"malaga":    0.62,
	"murcia":    0.55,
	"vizcaya":   0.58,
	"alicante":  0.56,
	"cordoba":   0.48,
}

// territoryScore looks up city traffic first, then province; distributors
// outside the table are scored from their year-to-date sales instead.
func territoryScore(d models.Distributor) float64 {
	if score, ok := cityTraffic[normalizeTerritory(d.City)]; ok {
		return score
	}
	if score, ok := provinceTraffic[normalizeTerritory(d.Province)]; ok {
		return score
	}
	switch {
	case d.SalesYTD >= 100:
		return 0.80
	case d.SalesYTD >= 50:
		return 0.60
	case d.SalesYTD >= 10:
		return 0.40
	default:
		return 0.20
	}
}

func normalizeTerritory(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Priority computes the score, level, and driver breakdown for one
// distributor against the full sales and visits collections.
func Priority(d models.Distributor, sales []models.Sale, visits []models.Visit, now time.Time) (int, string, models.PriorityDrivers) {
	traffic := territoryScore(d)

	opsInWindow := 0
	ops90 := 0
	lastSaleDays := -1
	for _, s := range sales {
		if s.DistributorID != d.ID {
			continue
		}
		age := daysBetween(s.Date, now)
		if age >= 0 && age <= salesWindowDays {
			opsInWindow += s.Operations
		}
		if age >= 0 && age <= visitWindowDays {
			ops90 += s.Operations
		}
		if age >= 0 && (lastSaleDays == -1 || age < lastSaleDays) {
			lastSaleDays = age
		}
	}
	salesVolume := math.Min(float64(opsInWindow)/salesVolumeCap, 1)

	lastVisitDays := -1
	for _, v := range visits {
		if v.DistributorID != d.ID {
			continue
		}
		age := daysBetween(v.Date, now)
		if age >= 0 && (lastVisitDays == -1 || age < lastVisitDays) {
			lastVisitDays = age
		}
	}

	completion := Completion(d)

	total := traffic*weightTraffic + salesVolume*weightSales + completion*weightDataQuality
	if lastVisitDays == -1 || lastVisitDays > visitWindowDays {
		total *= staleVisitPenalty
	}

	score := int(math.Round(total * 100))
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	drivers := models.PriorityDrivers{
		Traffic:         traffic,
		Sales:           salesVolume,
		DataQuality:     completion,
		SalesLast90Days: ops90,
		LastSaleDays:    lastSaleDays,
		LastVisitDays:   lastVisitDays,
		UpdatedAt:       now.UTC(),
	}

	return score, PriorityLevel(score), drivers
}

// PriorityLevel buckets a 0-100 score: >=75 high, >=50 medium, else low.
func PriorityLevel(score int) string {
	switch {
	case score >= 75:
		return models.PriorityHigh
	case score >= 50:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
