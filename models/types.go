// ABOUTME: Data models for distribution-network entities
// ABOUTME: Defines Distributor, Candidate, Visit, Sale, User, Preferences, and SyncOperation structs
package models

import (
	"encoding/json"
	"time"
)

// Distributor status constants.
const (
	StatusActive  = "active"
	StatusPending = "pending"
	StatusBlocked = "blocked"
)

// Candidate pipeline stage constants, in pipeline order.
const (
	StageNew        = "new"
	StageContacted  = "contacted"
	StageEvaluation = "evaluation"
	StageApproved   = "approved"
	StageRejected   = "rejected"
)

// Stages lists the pipeline stages in order.
var Stages = []string{StageNew, StageContacted, StageEvaluation, StageApproved, StageRejected}

// Visit result constants.
const (
	ResultPendiente   = "pendiente"
	ResultCompletada  = "completada"
	ResultReprogramar = "reprogramar"
	ResultCancelada   = "cancelada"
)

// Priority level constants.
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Sync operation type constants.
const (
	OpCreate = "create"
	OpUpdate = "update"
	OpDelete = "delete"
)

// Remote table name constants.
const (
	TableDistributors = "distributors"
	TableCandidates   = "candidates"
	TableVisits       = "visits"
	TableSales        = "sales"
)

// BrandPolicy governs which product brands an entity may offer.
// Allowed nil means no allow-list restriction; Blocked brands are always
// excluded; Conditional brands require manual review before activation.
type BrandPolicy struct {
	Allowed     []string `json:"allowed,omitempty"`
	Blocked     []string `json:"blocked,omitempty"`
	Conditional []string `json:"conditional,omitempty"`
}

// Checklist holds the six fiscal/contact data-quality checks for a distributor.
type Checklist struct {
	TaxID         bool `json:"tax_id"`
	FiscalName    bool `json:"fiscal_name"`
	FiscalAddress bool `json:"fiscal_address"`
	Email         bool `json:"email"`
	Phone         bool `json:"phone"`
	PostalCode    bool `json:"postal_code"`
}

// All reports whether every checklist item passes.
func (c Checklist) All() bool {
	return c.TaxID && c.FiscalName && c.FiscalAddress && c.Email && c.Phone && c.PostalCode
}

// PriorityDrivers breaks a priority score down into its inputs for display.
type PriorityDrivers struct {
	Traffic         float64   `json:"traffic"`
	Sales           float64   `json:"sales"`
	DataQuality     float64   `json:"data_quality"`
	SalesLast90Days int       `json:"sales_last_90_days"`
	LastSaleDays    int       `json:"last_sale_days"`
	LastVisitDays   int       `json:"last_visit_days"`
	UpdatedAt       time.Time `json:"updated_at"`
}

type Distributor struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Code          string          `json:"code,omitempty"`
	Category      string          `json:"category"`
	BrandPolicy   BrandPolicy     `json:"brand_policy"`
	ChannelType   string          `json:"channel_type,omitempty"`
	Brands        []string        `json:"brands"`
	Status        string          `json:"status"`
	Address       string          `json:"address,omitempty"`
	City          string          `json:"city,omitempty"`
	Province      string          `json:"province,omitempty"`
	PostalCode    string          `json:"postal_code,omitempty"`
	Phone         string          `json:"phone,omitempty"`
	Email         string          `json:"email,omitempty"`
	ContactName   string          `json:"contact_name,omitempty"`
	TaxID         string          `json:"tax_id,omitempty"`
	FiscalName    string          `json:"fiscal_name,omitempty"`
	FiscalAddress string          `json:"fiscal_address,omitempty"`
	Checklist     Checklist       `json:"checklist"`
	// ChecklistComplete and Completion are derived from the entity's own
	// fields; PriorityScore/Level/Drivers also depend on the sales and
	// visits collections and are only cached here, never authoritative.
	ChecklistComplete bool            `json:"checklist_complete"`
	Completion        float64         `json:"completion"`
	SalesYTD          int             `json:"sales_ytd"`
	PriorityScore     int             `json:"priority_score"`
	PriorityLevel     string          `json:"priority_level"`
	PriorityDrivers   PriorityDrivers `json:"priority_drivers"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// CandidateContact is the contact person for a pipeline candidate.
type CandidateContact struct {
	Name  string `json:"name,omitempty"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type Candidate struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	TaxID       string           `json:"tax_id,omitempty"`
	Stage       string           `json:"stage"`
	Contact     CandidateContact `json:"contact"`
	Position    int              `json:"position"`
	ChannelCode string           `json:"channel_code,omitempty"`
	Category    string           `json:"category"`
	BrandPolicy BrandPolicy      `json:"brand_policy"`
	Priority    string           `json:"priority,omitempty"`
	Notes       string           `json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// VisitReminder is the scheduled notification attached to a visit.
// ScheduledAt is derived from the visit date and MinutesBefore; it is
// recomputed on every normalization pass and never independently stored.
type VisitReminder struct {
	Enabled         bool       `json:"enabled"`
	MinutesBefore   int        `json:"minutes_before"`
	Channel         string     `json:"channel"`
	ScheduledAt     time.Time  `json:"scheduled_at"`
	LastTriggeredAt *time.Time `json:"last_triggered_at,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

type Visit struct {
	ID              string        `json:"id"`
	DistributorID   string        `json:"distributor_id,omitempty"`
	CandidateID     string        `json:"candidate_id,omitempty"`
	Date            time.Time     `json:"date"`
	Type            string        `json:"type,omitempty"`
	Objective       string        `json:"objective,omitempty"`
	Summary         string        `json:"summary,omitempty"`
	NextSteps       string        `json:"next_steps,omitempty"`
	Result          string        `json:"result"`
	DurationMinutes int           `json:"duration_minutes,omitempty"`
	Reminder        VisitReminder `json:"reminder"`
	CreatedAt       time.Time     `json:"created_at"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

type Sale struct {
	ID            string    `json:"id"`
	DistributorID string    `json:"distributor_id"`
	Date          time.Time `json:"date"`
	Brand         string    `json:"brand,omitempty"`
	Family        string    `json:"family,omitempty"`
	Operations    int       `json:"operations"`
	Notes         string    `json:"notes,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Role      string    `json:"role,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Preferences struct {
	Theme                string `json:"theme"`
	Language             string `json:"language"`
	NotificationsEnabled bool   `json:"notifications_enabled"`
	DefaultProvince      string `json:"default_province,omitempty"`
}

// SyncOperation is a mutation waiting for remote confirmation. IDs are
// ULIDs so lexicographic order matches enqueue order.
type SyncOperation struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Table     string          `json:"table"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}
