package repositories

import (
	"context"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
)

// DemandDraftRepository persists generated demand drafts.
type DemandDraftRepository interface {
	// FindDemandDraftByMilestone returns apperrors.ErrNotFound when no draft exists for the pair.
	FindDemandDraftByMilestone(ctx context.Context, flatID string, milestoneSequence int) (*domain.DemandDraft, error)

	// SaveDemandDraft inserts the draft unless one already exists for its
	// (FlatID, MilestoneSequence). The boolean reports whether a row was inserted.
	SaveDemandDraft(ctx context.Context, draft domain.DemandDraft) (bool, error)

	// ListDemandDraftsByFlat returns a flat's drafts ordered by milestone sequence.
	ListDemandDraftsByFlat(ctx context.Context, flatID string) ([]domain.DemandDraft, error)
}
