package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
)

// JournalReader defines read operations for journal entry headers
type JournalReader interface {
	// FindJournalEntryByID retrieves an entry together with its lines ordered by sequence.
	FindJournalEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// FindJournalEntryByIDForUpdate is FindJournalEntryByID with the entry row locked
	// until the surrounding transaction ends.
	FindJournalEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error)

	// EntryNumberExists reports whether an entry with the given number is already stored.
	EntryNumberExists(ctx context.Context, entryNumber string) (bool, error)

	// ListJournalEntries retrieves entries (without lines) newest first using token-based pagination.
	ListJournalEntries(ctx context.Context, params domain.ListJournalEntriesParams) ([]domain.JournalEntry, *string, error)

	// ListBalanceAffectingEntries retrieves POSTED and APPROVED entry headers dated within [from, to].
	ListBalanceAffectingEntries(ctx context.Context, from, to time.Time) ([]domain.JournalEntry, error)
}

// JournalWriter defines write operations for journal entries
type JournalWriter interface {
	// SaveJournalEntry persists a new entry and all of its lines.
	SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error

	// ReplaceDraftJournalEntry overwrites a DRAFT entry's header and lines.
	// It fails with apperrors.ErrInvalidStateTransition if the stored entry is no longer DRAFT.
	ReplaceDraftJournalEntry(ctx context.Context, entry domain.JournalEntry) error

	// DeleteDraftJournalEntry removes a DRAFT entry and its lines.
	// It fails with apperrors.ErrInvalidStateTransition if the stored entry is no longer DRAFT.
	DeleteDraftJournalEntry(ctx context.Context, entryID string) error

	// UpdateJournalEntryStatus persists entry's status and audit fields, provided the
	// stored status still equals from. Otherwise it fails with apperrors.ErrInvalidStateTransition.
	UpdateJournalEntryStatus(ctx context.Context, entry domain.JournalEntry, from domain.JournalStatus) error
}

// JournalLineReader defines read operations for journal entry lines
type JournalLineReader interface {

	// ListBalanceAffectingLines retrieves the lines posted to accountID from POSTED and
	// APPROVED entries dated within [from, to], ordered by entry date, line sequence and entry number.
	ListBalanceAffectingLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error)
}

// JournalRepositoryFacade combines all journal-related repository interfaces
type JournalRepositoryFacade interface {
	JournalReader
	JournalWriter
	JournalLineReader
}
