package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
)

// PaymentPlanReader defines read operations for flat payment plans
type PaymentPlanReader interface {
	// FindActivePlanByFlatID retrieves the flat's ACTIVE plan with milestones ordered by
	// sequence. It returns apperrors.ErrNotFound when the flat has no active plan.
	FindActivePlanByFlatID(ctx context.Context, flatID string) (*domain.PaymentPlan, error)
}

// PaymentPlanWriter defines write operations for flat payment plans
type PaymentPlanWriter interface {
	// UpdateMilestoneStatus moves a milestone from one status to another and touches the plan.
	// It returns apperrors.ErrConflict when the milestone is not in status from.
	UpdateMilestoneStatus(ctx context.Context, planID string, sequence int, from, to domain.MilestoneStatus, userID string, now time.Time) error
}

// ConstructionProgressWriter records construction progress reports.
type ConstructionProgressWriter interface {
	RecordProgress(ctx context.Context, progress domain.ConstructionProgress) error
}

// PaymentPlanRepositoryFacade combines all payment-plan repository interfaces
type PaymentPlanRepositoryFacade interface {
	PaymentPlanReader
	PaymentPlanWriter
	ConstructionProgressWriter
}
