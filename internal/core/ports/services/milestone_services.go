package services

import (
	"context"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
)

// MilestoneSvc reacts to construction progress by triggering payment milestones
type MilestoneSvc interface {
	// OnConstructionProgress records the update, triggers every matching PENDING milestone
	// of the flat's active plan and generates its demand draft. Per-milestone failures are
	// logged and reported in the outcome; only recording and plan lookup failures are returned.
	OnConstructionProgress(ctx context.Context, progress domain.ConstructionProgress) (*domain.ProgressOutcome, error)

	// GenerateDemandDraft creates the milestone's demand draft unless one exists.
	// The boolean reports whether a new draft was created.
	GenerateDemandDraft(ctx context.Context, plan domain.PaymentPlan, milestone domain.Milestone) (*domain.DemandDraft, bool, error)

	// ListDemandDrafts returns a flat's drafts.
	ListDemandDrafts(ctx context.Context, flatID string) ([]domain.DemandDraft, error)
}
