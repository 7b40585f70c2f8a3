package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock type for the AccountRepositoryFacade interface
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	args := m.Called(ctx, parentAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ApplyBalanceChanges(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	args := m.Called(ctx, balanceChanges, userID, now)
	return args.Error(0)
}

// MockBankAccountRepository is a mock type for the BankAccountRepository interface
type MockBankAccountRepository struct {
	mock.Mock
}

var _ portsrepo.BankAccountRepository = (*MockBankAccountRepository)(nil)

func (m *MockBankAccountRepository) SaveBankAccount(ctx context.Context, bankAccount domain.BankAccount) error {
	args := m.Called(ctx, bankAccount)
	return args.Error(0)
}

func (m *MockBankAccountRepository) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	args := m.Called(ctx, bankAccountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BankAccount), args.Error(1)
}

func (m *MockBankAccountRepository) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BankAccount), args.Error(1)
}

// MockJournalRepository is a mock type for the JournalRepositoryFacade interface
type MockJournalRepository struct {
	mock.Mock
}

var _ portsrepo.JournalRepositoryFacade = (*MockJournalRepository)(nil)

func (m *MockJournalRepository) FindJournalEntryByID(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) FindJournalEntryByIDForUpdate(ctx context.Context, entryID string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, entryID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) EntryNumberExists(ctx context.Context, entryNumber string) (bool, error) {
	args := m.Called(ctx, entryNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockJournalRepository) ListJournalEntries(ctx context.Context, params domain.ListJournalEntriesParams) ([]domain.JournalEntry, *string, error) {
	args := m.Called(ctx, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.JournalEntry), next, args.Error(2)
}

func (m *MockJournalRepository) ListBalanceAffectingEntries(ctx context.Context, from, to time.Time) ([]domain.JournalEntry, error) {
	args := m.Called(ctx, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.JournalEntry), args.Error(1)
}

func (m *MockJournalRepository) SaveJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) ReplaceDraftJournalEntry(ctx context.Context, entry domain.JournalEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockJournalRepository) DeleteDraftJournalEntry(ctx context.Context, entryID string) error {
	args := m.Called(ctx, entryID)
	return args.Error(0)
}

func (m *MockJournalRepository) UpdateJournalEntryStatus(ctx context.Context, entry domain.JournalEntry, from domain.JournalStatus) error {
	args := m.Called(ctx, entry, from)
	return args.Error(0)
}

func (m *MockJournalRepository) ListBalanceAffectingLines(ctx context.Context, accountID string, from, to time.Time) ([]domain.LedgerLine, error) {
	args := m.Called(ctx, accountID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerLine), args.Error(1)
}

// MockTxManager runs fn directly, recording each call.
type MockTxManager struct {
	mock.Mock
}

var _ portsrepo.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	m.Called(ctx)
	return fn(ctx)
}

// MockPaymentPlanRepository is a mock type for the PaymentPlanRepositoryFacade interface
type MockPaymentPlanRepository struct {
	mock.Mock
}

var _ portsrepo.PaymentPlanRepositoryFacade = (*MockPaymentPlanRepository)(nil)

func (m *MockPaymentPlanRepository) FindActivePlanByFlatID(ctx context.Context, flatID string) (*domain.PaymentPlan, error) {
	args := m.Called(ctx, flatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentPlan), args.Error(1)
}

func (m *MockPaymentPlanRepository) UpdateMilestoneStatus(ctx context.Context, planID string, sequence int, from, to domain.MilestoneStatus, userID string, now time.Time) error {
	args := m.Called(ctx, planID, sequence, from, to, userID, now)
	return args.Error(0)
}

func (m *MockPaymentPlanRepository) RecordProgress(ctx context.Context, progress domain.ConstructionProgress) error {
	args := m.Called(ctx, progress)
	return args.Error(0)
}

// MockDemandDraftRepository is a mock type for the DemandDraftRepository interface
type MockDemandDraftRepository struct {
	mock.Mock
}

var _ portsrepo.DemandDraftRepository = (*MockDemandDraftRepository)(nil)

func (m *MockDemandDraftRepository) FindDemandDraftByMilestone(ctx context.Context, flatID string, milestoneSequence int) (*domain.DemandDraft, error) {
	args := m.Called(ctx, flatID, milestoneSequence)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.DemandDraft), args.Error(1)
}

func (m *MockDemandDraftRepository) SaveDemandDraft(ctx context.Context, draft domain.DemandDraft) (bool, error) {
	args := m.Called(ctx, draft)
	return args.Bool(0), args.Error(1)
}

func (m *MockDemandDraftRepository) ListDemandDraftsByFlat(ctx context.Context, flatID string) ([]domain.DemandDraft, error) {
	args := m.Called(ctx, flatID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DemandDraft), args.Error(1)
}
