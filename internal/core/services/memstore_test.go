package services_test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
)

// memStore is an in-memory account and journal store whose transactions
// restore a snapshot when the unit of work fails.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]domain.Account
	entries  map[string]domain.JournalEntry

	commits   int
	rollbacks int

	// Injected failures.
	failApplyBalances error
	failStatusUpdate  error
}

type memTxKey struct{}

var (
	_ portsrepo.AccountRepositoryFacade = (*memStore)(nil)
	_ portsrepo.JournalRepositoryFacade = (*memStore)(nil)
	_ portsrepo.TransactionManager      = (*memStore)(nil)
)

func newMemStore(accounts ...domain.Account) *memStore {
	s := &memStore{
		accounts: make(map[string]domain.Account),
		entries:  make(map[string]domain.JournalEntry),
	}
	for _, a := range accounts {
		s.accounts[a.AccountID] = a
	}
	return s
}

func (s *memStore) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if ctx.Value(memTxKey{}) != nil {
		return fn(ctx)
	}

	s.mu.Lock()
	accounts, entries := s.snapshot()
	s.mu.Unlock()

	if err := fn(context.WithValue(ctx, memTxKey{}, true)); err != nil {
		s.mu.Lock()
		s.accounts, s.entries = accounts, entries
		s.rollbacks++
		s.mu.Unlock()
		return err
	}
	s.mu.Lock()
	s.commits++
	s.mu.Unlock()
	return nil
}

func (s *memStore) snapshot() (map[string]domain.Account, map[string]domain.JournalEntry) {
	accounts := make(map[string]domain.Account, len(s.accounts))
	for k, v := range s.accounts {
		accounts[k] = v
	}
	entries := make(map[string]domain.JournalEntry, len(s.entries))
	for k, v := range s.entries {
		entries[k] = copyEntry(v)
	}
	return accounts, entries
}

func copyEntry(e domain.JournalEntry) domain.JournalEntry {
	e.Lines = append([]domain.JournalEntryLine(nil), e.Lines...)
	return e
}

func (s *memStore) balance(accountID string) decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.accounts[accountID].Balance
}

func (s *memStore) status(entryID string) domain.JournalStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries[entryID].Status
}

// --- AccountRepositoryFacade ---

func (s *memStore) FindAccountByID(_ context.Context, accountID string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return &acc, nil
}

func (s *memStore) FindAccountByCode(_ context.Context, code string) (*domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, acc := range s.accounts {
		if acc.Code == code {
			return &acc, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *memStore) FindAccountsByIDs(_ context.Context, accountIDs []string) (map[string]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string]domain.Account, len(accountIDs))
	for _, id := range accountIDs {
		if acc, ok := s.accounts[id]; ok {
			out[id] = acc
		}
	}
	return out, nil
}

func (s *memStore) ListAccounts(_ context.Context, limit int, offset int) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]domain.Account, 0, len(s.accounts))
	for _, acc := range s.accounts {
		all = append(all, acc)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Code < all[j].Code })
	if offset >= len(all) {
		return []domain.Account{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *memStore) ListChildAccounts(_ context.Context, parentAccountID string) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Account
	for _, acc := range s.accounts {
		if acc.ParentAccountID == parentAccountID {
			out = append(out, acc)
		}
	}
	return out, nil
}

func (s *memStore) SaveAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.AccountID] = account
	return nil
}

func (s *memStore) UpdateAccount(_ context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[account.AccountID] = account
	return nil
}

func (s *memStore) DeactivateAccount(_ context.Context, accountID string, userID string, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	acc, ok := s.accounts[accountID]
	if !ok {
		return apperrors.ErrNotFound
	}
	acc.IsActive = false
	acc.Touch(userID, now)
	s.accounts[accountID] = acc
	return nil
}

func (s *memStore) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if ctx.Value(memTxKey{}) == nil {
		return nil, fmt.Errorf("FindAccountsByIDsForUpdate called outside a transaction")
	}
	return s.FindAccountsByIDs(ctx, accountIDs)
}

func (s *memStore) ApplyBalanceChanges(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if ctx.Value(memTxKey{}) == nil {
		return fmt.Errorf("ApplyBalanceChanges called outside a transaction")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for i, id := range ids {
		// Fail midway so rollback has partial writes to undo.
		if s.failApplyBalances != nil && i == len(ids)-1 {
			return s.failApplyBalances
		}
		acc := s.accounts[id]
		acc.Balance = acc.Balance.Add(balanceChanges[id])
		acc.Touch(userID, now)
		s.accounts[id] = acc
	}
	return nil
}

// --- JournalRepositoryFacade ---

func (s *memStore) FindJournalEntryByID(_ context.Context, entryID string) (*domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[entryID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	e = copyEntry(e)
	return &e, nil
}

func (s *memStore) FindJournalEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	if ctx.Value(memTxKey{}) == nil {
		return nil, fmt.Errorf("FindJournalEntryByIDForUpdate called outside a transaction")
	}
	return s.FindJournalEntryByID(ctx, entryID)
}

func (s *memStore) EntryNumberExists(_ context.Context, entryNumber string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		if e.EntryNumber == entryNumber {
			return true, nil
		}
	}
	return false, nil
}

func (s *memStore) ListJournalEntries(_ context.Context, params domain.ListJournalEntriesParams) ([]domain.JournalEntry, *string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.JournalEntry
	for _, e := range s.entries {
		if params.Status != "" && e.Status != params.Status {
			continue
		}
		e.Lines = nil
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntryDate.After(out[j].EntryDate) })
	return out, nil, nil
}

func (s *memStore) ListBalanceAffectingEntries(_ context.Context, from, to time.Time) ([]domain.JournalEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.JournalEntry
	for _, e := range s.entries {
		if e.Status.AffectsBalances() && !e.EntryDate.Before(from) && !e.EntryDate.After(to) {
			e.Lines = nil
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *memStore) SaveJournalEntry(_ context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.EntryID] = copyEntry(entry)
	return nil
}

func (s *memStore) ReplaceDraftJournalEntry(_ context.Context, entry domain.JournalEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.entries[entry.EntryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if current.Status != domain.Draft {
		return apperrors.ErrInvalidStateTransition
	}
	s.entries[entry.EntryID] = copyEntry(entry)
	return nil
}

func (s *memStore) DeleteDraftJournalEntry(_ context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.entries[entryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if current.Status != domain.Draft {
		return apperrors.ErrInvalidStateTransition
	}
	delete(s.entries, entryID)
	return nil
}

func (s *memStore) UpdateJournalEntryStatus(_ context.Context, entry domain.JournalEntry, from domain.JournalStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failStatusUpdate != nil {
		return s.failStatusUpdate
	}
	current, ok := s.entries[entry.EntryID]
	if !ok {
		return apperrors.ErrNotFound
	}
	if current.Status != from {
		return apperrors.ErrInvalidStateTransition
	}
	s.entries[entry.EntryID] = copyEntry(entry)
	return nil
}

func (s *memStore) ListBalanceAffectingLines(_ context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.LedgerLine
	for _, e := range s.entries {
		if !e.Status.AffectsBalances() || e.EntryDate.Before(from) || e.EntryDate.After(to) {
			continue
		}
		for _, l := range e.Lines {
			if l.AccountID != accountID {
				continue
			}
			out = append(out, domain.LedgerLine{
				EntryID:     e.EntryID,
				EntryNumber: e.EntryNumber,
				EntryDate:   e.EntryDate,
				Narration:   e.Narration,
				Sequence:    l.Sequence,
				Debit:       l.Debit,
				Credit:      l.Credit,
			})
		}
	}
	return out, nil
}
