package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentPlanStatus is the lifecycle status of a flat's payment plan.
type PaymentPlanStatus string

const (
	PlanActive    PaymentPlanStatus = "ACTIVE"
	PlanCompleted PaymentPlanStatus = "COMPLETED"
	PlanCancelled PaymentPlanStatus = "CANCELLED"
)

// MilestoneStatus tracks a payment milestone from scheduling to collection.
type MilestoneStatus string

const (
	MilestonePending   MilestoneStatus = "PENDING"
	MilestoneTriggered MilestoneStatus = "TRIGGERED"
	MilestonePaid      MilestoneStatus = "PAID"
	MilestoneOverdue   MilestoneStatus = "OVERDUE"
)

// DefaultRequiredPhasePercentage applies to milestones without an explicit threshold.
var DefaultRequiredPhasePercentage = decimal.NewFromInt(100)

// Milestone is one installment of a payment plan, due once a construction phase
// reaches the required completion.
type Milestone struct {
	Sequence                int              `json:"sequence"`
	Description             string           `json:"description"`
	ConstructionPhase       string           `json:"constructionPhase"`
	RequiredPhasePercentage *decimal.Decimal `json:"requiredPhasePercentage,omitempty"`
	Amount                  decimal.Decimal  `json:"amount"`
	Status                  MilestoneStatus  `json:"status"`
	TriggeredAt             *time.Time       `json:"triggeredAt,omitempty"`
}

// RequiredPercentage returns the configured threshold or the default of 100.
func (m Milestone) RequiredPercentage() decimal.Decimal {
	if m.RequiredPhasePercentage == nil {
		return DefaultRequiredPhasePercentage
	}
	return *m.RequiredPhasePercentage
}

// IsTriggeredBy reports whether a progress update for phase at phaseProgress
// percent fires this milestone. Only PENDING milestones fire.
func (m Milestone) IsTriggeredBy(phase string, phaseProgress decimal.Decimal) bool {
	return m.Status == MilestonePending &&
		m.ConstructionPhase == phase &&
		phaseProgress.GreaterThanOrEqual(m.RequiredPercentage())
}

// PaymentPlan is the ordered milestone schedule of a booked flat.
type PaymentPlan struct {
	PlanID       string            `json:"planID"`
	FlatID       string            `json:"flatID"`
	CustomerID   string            `json:"customerID"`
	BookingID    string            `json:"bookingID"`
	CustomerName string            `json:"customerName"`
	UnitNumber   string            `json:"unitNumber"`
	ProjectName  string            `json:"projectName"`
	Status       PaymentPlanStatus `json:"status"`
	Milestones   []Milestone       `json:"milestones"`
	AuditFields
}

// TotalAmount is the sum of every milestone amount.
func (p PaymentPlan) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, m := range p.Milestones {
		total = total.Add(m.Amount)
	}
	return total
}

// PaidAmount is the sum of PAID milestone amounts.
func (p PaymentPlan) PaidAmount() decimal.Decimal {
	paid := decimal.Zero
	for _, m := range p.Milestones {
		if m.Status == MilestonePaid {
			paid = paid.Add(m.Amount)
		}
	}
	return paid
}

// OutstandingAmount is what remains to be collected on the plan.
func (p PaymentPlan) OutstandingAmount() decimal.Decimal {
	return p.TotalAmount().Sub(p.PaidAmount())
}

// ConstructionProgress is a progress report for one phase of a flat's construction.
type ConstructionProgress struct {
	ProgressID      string          `json:"progressID"`
	FlatID          string          `json:"flatID"`
	Phase           string          `json:"phase"`
	PhaseProgress   decimal.Decimal `json:"phaseProgress"`
	OverallProgress decimal.Decimal `json:"overallProgress"`
	ReportedAt      time.Time       `json:"reportedAt"`
	ReportedBy      string          `json:"reportedBy"`
}

// MilestoneFailure records a milestone whose trigger or draft generation failed.
type MilestoneFailure struct {
	Sequence int    `json:"sequence"`
	Error    string `json:"error"`
}

// ProgressOutcome reports what a construction-progress update did.
type ProgressOutcome struct {
	FlatID             string             `json:"flatID"`
	PlanID             string             `json:"planID,omitempty"`
	Skipped            bool               `json:"skipped"` // no active plan
	TriggeredSequences []int              `json:"triggeredSequences"`
	DraftsCreated      []string           `json:"draftsCreated"`
	DraftsExisting     []string           `json:"draftsExisting"`
	Failures           []MilestoneFailure `json:"failures"`
}
