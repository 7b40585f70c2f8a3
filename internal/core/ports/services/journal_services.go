package services

import (
	"context"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	"github.com/SscSPs/realty_erp_accounting/internal/dto"
)

// JournalValidatorSvc checks proposed entries without side effects
type JournalValidatorSvc interface {
	// ValidateEntry fails with apperrors.ErrImbalancedEntry or apperrors.ErrUnknownAccount,
	// otherwise returns the entry with totals and an entry number.
	ValidateEntry(ctx context.Context, req dto.JournalEntryRequest) (*domain.ValidatedEntry, error)
}

// JournalReaderSvc defines read operations for journal entries
type JournalReaderSvc interface {
	// GetJournalEntry retrieves an entry with its lines.
	GetJournalEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// ListJournalEntries retrieves a page of entries newest first.
	ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error)
}

// JournalDraftSvc maintains DRAFT entries
type JournalDraftSvc interface {
	// CreateJournalEntry validates and stores a DRAFT entry.
	CreateJournalEntry(ctx context.Context, req dto.JournalEntryRequest, creatorUserID string) (*domain.JournalEntry, error)

	// UpdateDraftJournalEntry re-validates and replaces a DRAFT entry's header and lines.
	UpdateDraftJournalEntry(ctx context.Context, entryID string, req dto.JournalEntryRequest, userID string) (*domain.JournalEntry, error)

	// DeleteDraftJournalEntry removes a DRAFT entry.
	DeleteDraftJournalEntry(ctx context.Context, entryID string, userID string) error
}

// JournalPostingSvc drives the DRAFT -> POSTED -> APPROVED | VOID state machine.
// Every transition fails with apperrors.ErrInvalidStateTransition from the wrong status.
type JournalPostingSvc interface {
	// PostJournalEntry applies a DRAFT entry's lines to account balances atomically.
	PostJournalEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// ApproveJournalEntry records approval of a POSTED entry.
	ApproveJournalEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error)

	// VoidJournalEntry reverses a POSTED entry's balance effect atomically and marks it VOID.
	VoidJournalEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.JournalEntry, error)
}

// JournalSvcFacade combines all journal-related service interfaces
type JournalSvcFacade interface {
	JournalValidatorSvc
	JournalReaderSvc
	JournalDraftSvc
	JournalPostingSvc
}
