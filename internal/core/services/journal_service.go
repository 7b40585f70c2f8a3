package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/realty_erp_accounting/internal/core/ports/services"
	"github.com/SscSPs/realty_erp_accounting/internal/dto"
	"github.com/SscSPs/realty_erp_accounting/internal/utils/accounting"
	"github.com/google/uuid"
)

// journalService implements the validator, draft maintenance and the posting/void engine.
type journalService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	journalRepo portsrepo.JournalRepositoryFacade
	accountRepo portsrepo.AccountRepositoryFacade
	validator   *journalValidator
	prefix      string
}

// JournalServiceOption is a functional option for configuring the journal service
type JournalServiceOption func(*journalService)

// WithEntryNumberPrefix sets the prefix of generated entry numbers.
func WithEntryNumberPrefix(prefix string) JournalServiceOption {
	return func(s *journalService) {
		s.prefix = prefix
	}
}

// WithJournalClock overrides the clock used for audit timestamps.
func WithJournalClock(now func() time.Time) JournalServiceOption {
	return func(s *journalService) {
		s.now = now
	}
}

// NewJournalService creates a new journal service with the provided options
func NewJournalService(
	txManager portsrepo.TransactionManager,
	journalRepo portsrepo.JournalRepositoryFacade,
	accountRepo portsrepo.AccountRepositoryFacade,
	options ...JournalServiceOption,
) portssvc.JournalSvcFacade {
	svc := &journalService{
		txManager:   txManager,
		journalRepo: journalRepo,
		accountRepo: accountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	svc.validator = &journalValidator{
		accounts: accountRepo,
		journals: journalRepo,
		numbers:  newEntryNumberGenerator(svc.prefix, journalRepo),
	}
	return svc
}

var _ portssvc.JournalSvcFacade = (*journalService)(nil)

// ValidateEntry checks a proposed entry without storing anything.
func (s *journalService) ValidateEntry(ctx context.Context, req dto.JournalEntryRequest) (*domain.ValidatedEntry, error) {
	proposal, err := req.ToProposedEntry()
	if err != nil {
		return nil, err
	}
	validated, err := s.validator.validate(ctx, proposal, "")
	if err != nil {
		s.logValidationFailure(ctx, err)
		return nil, err
	}
	return validated, nil
}

// CreateJournalEntry validates and stores a DRAFT entry. Balances are untouched until posting.
func (s *journalService) CreateJournalEntry(ctx context.Context, req dto.JournalEntryRequest, creatorUserID string) (*domain.JournalEntry, error) {
	validated, err := s.ValidateEntry(ctx, req)
	if err != nil {
		return nil, err
	}

	entry := buildEntry(uuid.NewString(), validated)
	entry.Status = domain.Draft
	entry.AuditFields = domain.NewAuditFields(creatorUserID, s.Now())

	if err := s.journalRepo.SaveJournalEntry(ctx, entry); err != nil {
		s.LogError(ctx, err, "Failed to save journal entry", slog.String("entry_number", entry.EntryNumber))
		return nil, fmt.Errorf("failed to save journal entry: %w", err)
	}

	s.LogInfo(ctx, "Journal entry created",
		slog.String("entry_id", entry.EntryID),
		slog.String("entry_number", entry.EntryNumber),
		slog.Int("line_count", len(entry.Lines)))
	return &entry, nil
}

// UpdateDraftJournalEntry re-validates the request and replaces the draft's header and lines.
func (s *journalService) UpdateDraftJournalEntry(ctx context.Context, entryID string, req dto.JournalEntryRequest, userID string) (*domain.JournalEntry, error) {
	current, err := s.GetJournalEntry(ctx, entryID)
	if err != nil {
		return nil, err
	}
	if current.Status != domain.Draft {
		return nil, fmt.Errorf("%w: entry %s is %s, only DRAFT entries can be edited",
			apperrors.ErrInvalidStateTransition, current.EntryNumber, current.Status)
	}

	proposal, err := req.ToProposedEntry()
	if err != nil {
		return nil, err
	}
	validated, err := s.validator.validate(ctx, proposal, current.EntryNumber)
	if err != nil {
		s.logValidationFailure(ctx, err)
		return nil, err
	}

	updated := buildEntry(current.EntryID, validated)
	updated.Status = domain.Draft
	updated.AuditFields = current.AuditFields
	updated.Touch(userID, s.Now())

	if err := s.journalRepo.ReplaceDraftJournalEntry(ctx, updated); err != nil {
		if !errors.Is(err, apperrors.ErrInvalidStateTransition) {
			s.LogError(ctx, err, "Failed to update draft journal entry", slog.String("entry_id", entryID))
		}
		return nil, fmt.Errorf("failed to update draft journal entry: %w", err)
	}

	s.LogInfo(ctx, "Draft journal entry updated", slog.String("entry_id", entryID))
	return &updated, nil
}

// DeleteDraftJournalEntry removes a DRAFT entry together with its lines.
func (s *journalService) DeleteDraftJournalEntry(ctx context.Context, entryID string, userID string) error {
	current, err := s.GetJournalEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if current.Status != domain.Draft {
		return fmt.Errorf("%w: entry %s is %s, only DRAFT entries can be deleted",
			apperrors.ErrInvalidStateTransition, current.EntryNumber, current.Status)
	}

	if err := s.journalRepo.DeleteDraftJournalEntry(ctx, entryID); err != nil {
		if !errors.Is(err, apperrors.ErrInvalidStateTransition) {
			s.LogError(ctx, err, "Failed to delete draft journal entry", slog.String("entry_id", entryID))
		}
		return fmt.Errorf("failed to delete draft journal entry: %w", err)
	}

	s.LogInfo(ctx, "Draft journal entry deleted", slog.String("entry_id", entryID), slog.String("deleted_by", userID))
	return nil
}

// GetJournalEntry retrieves an entry with its lines.
func (s *journalService) GetJournalEntry(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	entry, err := s.journalRepo.FindJournalEntryByID(ctx, entryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("journal entry %s: %w", entryID, err)
		}
		s.LogError(ctx, err, "Failed to find journal entry", slog.String("entry_id", entryID))
		return nil, fmt.Errorf("failed to find journal entry: %w", err)
	}
	return entry, nil
}

// ListJournalEntries retrieves a page of entries newest first.
func (s *journalService) ListJournalEntries(ctx context.Context, params dto.ListJournalEntriesParams) (*dto.ListJournalEntriesResponse, error) {
	query, err := params.ToDomain()
	if err != nil {
		return nil, err
	}
	if query.Limit <= 0 {
		query.Limit = 20
	}

	entries, nextToken, err := s.journalRepo.ListJournalEntries(ctx, query)
	if err != nil {
		s.LogError(ctx, err, "Failed to list journal entries", slog.Int("limit", query.Limit))
		return nil, fmt.Errorf("failed to list journal entries: %w", err)
	}

	resp := &dto.ListJournalEntriesResponse{
		Entries:   make([]dto.JournalEntryResponse, len(entries)),
		NextToken: nextToken,
	}
	for i := range entries {
		resp.Entries[i] = dto.ToJournalEntryResponse(&entries[i])
	}
	return resp, nil
}

// PostJournalEntry moves a DRAFT entry to POSTED and applies every line to its
// account's balance in the same transaction. Nothing is applied if any step fails.
func (s *journalService) PostJournalEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	return s.transition(ctx, entryID, domain.Posted, userID, func(txCtx context.Context, entry *domain.JournalEntry, now time.Time) error {
		if err := s.applyBalances(txCtx, entry, false, userID, now); err != nil {
			return err
		}
		entry.PostedAt = &now
		entry.PostedBy = userID
		return nil
	})
}

// ApproveJournalEntry records approval of a POSTED entry. Balances are already applied.
func (s *journalService) ApproveJournalEntry(ctx context.Context, entryID string, userID string) (*domain.JournalEntry, error) {
	return s.transition(ctx, entryID, domain.Approved, userID, func(_ context.Context, entry *domain.JournalEntry, now time.Time) error {
		entry.ApprovedAt = &now
		entry.ApprovedBy = userID
		return nil
	})
}

// VoidJournalEntry moves a POSTED entry to VOID and subtracts exactly what posting
// added from each account, in one transaction. The entry and its lines are kept.
func (s *journalService) VoidJournalEntry(ctx context.Context, entryID string, reason string, userID string) (*domain.JournalEntry, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: a void reason is required", apperrors.ErrValidation)
	}
	return s.transition(ctx, entryID, domain.Void, userID, func(txCtx context.Context, entry *domain.JournalEntry, now time.Time) error {
		if err := s.applyBalances(txCtx, entry, true, userID, now); err != nil {
			return err
		}
		entry.VoidedAt = &now
		entry.VoidedBy = userID
		entry.VoidReason = reason
		return nil
	})
}

// transition locks the entry, checks the state machine, runs apply and persists the
// new status with a compare-and-set on the previous one, all in one transaction.
func (s *journalService) transition(
	ctx context.Context,
	entryID string,
	next domain.JournalStatus,
	userID string,
	apply func(txCtx context.Context, entry *domain.JournalEntry, now time.Time) error,
) (*domain.JournalEntry, error) {
	var result *domain.JournalEntry
	now := s.Now()

	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		entry, err := s.journalRepo.FindJournalEntryByIDForUpdate(txCtx, entryID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return fmt.Errorf("journal entry %s: %w", entryID, err)
			}
			return fmt.Errorf("failed to load journal entry: %w", err)
		}

		from := entry.Status
		if !from.CanTransitionTo(next) {
			return fmt.Errorf("%w: entry %s is %s and cannot become %s",
				apperrors.ErrInvalidStateTransition, entry.EntryNumber, from, next)
		}

		if err := apply(txCtx, entry, now); err != nil {
			return err
		}

		entry.Status = next
		entry.Touch(userID, now)
		if err := s.journalRepo.UpdateJournalEntryStatus(txCtx, *entry, from); err != nil {
			return fmt.Errorf("failed to update journal entry status: %w", err)
		}
		result = entry
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, apperrors.ErrInvalidStateTransition), errors.Is(err, apperrors.ErrNotFound):
			s.LogWarn(ctx, "Journal entry transition rejected",
				slog.String("entry_id", entryID), slog.String("target_status", string(next)), slog.String("error", err.Error()))
		default:
			s.LogError(ctx, err, "Journal entry transition failed, transaction rolled back",
				slog.String("entry_id", entryID), slog.String("target_status", string(next)))
		}
		return nil, err
	}

	s.LogInfo(ctx, "Journal entry transitioned",
		slog.String("entry_id", entryID),
		slog.String("entry_number", result.EntryNumber),
		slog.String("status", string(next)))
	return result, nil
}

// applyBalances locks the entry's accounts and adds (or with reverse, subtracts)
// each line's signed effect to the account balance.
func (s *journalService) applyBalances(txCtx context.Context, entry *domain.JournalEntry, reverse bool, userID string, now time.Time) error {
	if len(entry.Lines) == 0 {
		return fmt.Errorf("%w: entry %s has no lines", apperrors.ErrValidation, entry.EntryNumber)
	}

	accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(txCtx, entry.AccountIDs())
	if err != nil {
		return fmt.Errorf("failed to lock accounts: %w", err)
	}
	if !reverse {
		for _, id := range entry.AccountIDs() {
			if acc, ok := accounts[id]; ok && !acc.IsActive {
				return fmt.Errorf("%w: account %s was deactivated", apperrors.ErrValidation, acc.Code)
			}
		}
	}

	changes, err := accounting.BalanceChanges(entry.Lines, accounts, reverse)
	if err != nil {
		return err
	}
	if err := s.accountRepo.ApplyBalanceChanges(txCtx, changes, userID, now); err != nil {
		return fmt.Errorf("failed to apply balance changes: %w", err)
	}
	return nil
}

func (s *journalService) logValidationFailure(ctx context.Context, err error) {
	if errors.Is(err, apperrors.ErrValidation) || errors.Is(err, apperrors.ErrDuplicate) {
		s.LogWarn(ctx, "Journal entry rejected", slog.String("error", err.Error()))
		return
	}
	s.LogError(ctx, err, "Journal entry validation failed")
}

// buildEntry turns a validated payload into an entry with numbered lines.
func buildEntry(entryID string, v *domain.ValidatedEntry) domain.JournalEntry {
	lines := make([]domain.JournalEntryLine, len(v.Lines))
	for i, l := range v.Lines {
		lines[i] = domain.JournalEntryLine{
			LineID:     uuid.NewString(),
			EntryID:    entryID,
			AccountID:  l.AccountID,
			Sequence:   i + 1,
			Debit:      l.Debit,
			Credit:     l.Credit,
			CostCenter: l.CostCenter,
			Memo:       l.Memo,
		}
	}
	return domain.JournalEntry{
		EntryID:     entryID,
		EntryNumber: v.EntryNumber,
		EntryDate:   v.EntryDate,
		Narration:   v.Narration,
		TotalDebit:  v.TotalDebit,
		TotalCredit: v.TotalCredit,
		Lines:       lines,
	}
}
