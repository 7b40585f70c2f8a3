package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentPlan is a row of the payment_plans table.
type PaymentPlan struct {
	PlanID       string `db:"plan_id"`
	FlatID       string `db:"flat_id"`
	CustomerID   string `db:"customer_id"`
	BookingID    string `db:"booking_id"`
	CustomerName string `db:"customer_name"`
	UnitNumber   string `db:"unit_number"`
	ProjectName  string `db:"project_name"`
	Status       string `db:"status"`
	AuditFields
}

// PaymentMilestone is a row of the payment_milestones table.
type PaymentMilestone struct {
	PlanID                  string           `db:"plan_id"`
	Sequence                int              `db:"sequence"`
	Description             string           `db:"description"`
	ConstructionPhase       string           `db:"construction_phase"`
	RequiredPhasePercentage *decimal.Decimal `db:"required_phase_percentage"` // Nullable
	Amount                  decimal.Decimal  `db:"amount"`
	Status                  string           `db:"status"`
	TriggeredAt             *time.Time       `db:"triggered_at"`
}

// ConstructionProgress is a row of the construction_progress table.
type ConstructionProgress struct {
	ProgressID      string          `db:"progress_id"`
	FlatID          string          `db:"flat_id"`
	Phase           string          `db:"phase"`
	PhaseProgress   decimal.Decimal `db:"phase_progress"`
	OverallProgress decimal.Decimal `db:"overall_progress"`
	ReportedAt      time.Time       `db:"reported_at"`
	ReportedBy      string          `db:"reported_by"`
}

// DemandDraft is a row of the demand_drafts table.
type DemandDraft struct {
	DemandDraftID     string          `db:"demand_draft_id"`
	FlatID            string          `db:"flat_id"`
	CustomerID        string          `db:"customer_id"`
	BookingID         string          `db:"booking_id"`
	PlanID            string          `db:"plan_id"`
	MilestoneSequence int             `db:"milestone_sequence"`
	Title             string          `db:"title"`
	Amount            decimal.Decimal `db:"amount"`
	DueDate           time.Time       `db:"due_date"`
	Status            string          `db:"status"`
	Content           string          `db:"content"`
	AutoGenerated     bool            `db:"auto_generated"`
	AuditFields
}
