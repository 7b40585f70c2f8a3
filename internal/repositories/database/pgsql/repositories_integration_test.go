package pgsql_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/SscSPs/realty_erp_accounting/internal/core/services"
	"github.com/SscSPs/realty_erp_accounting/internal/repositories/database/pgsql"
	"github.com/SscSPs/realty_erp_accounting/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const testUser = "integration-user"

type RepositoriesIntegrationSuite struct {
	suite.Suite
	ctx   context.Context
	pool  *pgxpool.Pool
	repos portsrepo.RepositoryProvider
	now   time.Time
}

func TestRepositoriesIntegration(t *testing.T) {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(RepositoriesIntegrationSuite))
}

func (s *RepositoriesIntegrationSuite) SetupSuite() {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	s.Require().NoError(database.RunMigrations(databaseURL, "file://../../../../migrations"))

	s.ctx = context.Background()
	pool, err := database.NewPgxPool(s.ctx, databaseURL, true)
	s.Require().NoError(err)
	s.pool = pool
	s.repos = pgsql.NewRepositoryProvider(pool)
	s.now = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
}

func (s *RepositoriesIntegrationSuite) TearDownSuite() {
	database.ClosePgxPool(s.pool)
}

func (s *RepositoriesIntegrationSuite) SetupTest() {
	_, err := s.pool.Exec(s.ctx, `TRUNCATE demand_drafts, construction_progress, payment_milestones, payment_plans,
		journal_entry_lines, journal_entries, bank_accounts, accounts CASCADE;`)
	s.Require().NoError(err)
}

func (s *RepositoriesIntegrationSuite) createAccount(code string, accountType domain.AccountType) domain.Account {
	acc := domain.Account{
		AccountID:      uuid.NewString(),
		Code:           code,
		Name:           "Account " + code,
		AccountType:    accountType,
		OpeningBalance: decimal.Zero,
		Balance:        decimal.Zero,
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(testUser, s.now),
	}
	s.Require().NoError(s.repos.AccountRepo.SaveAccount(s.ctx, acc))
	return acc
}

func (s *RepositoriesIntegrationSuite) newEntry(number string, date time.Time, status domain.JournalStatus, debitID, creditID string, amount decimal.Decimal) domain.JournalEntry {
	entryID := uuid.NewString()
	return domain.JournalEntry{
		EntryID:     entryID,
		EntryNumber: number,
		EntryDate:   date,
		Narration:   "entry " + number,
		TotalDebit:  amount,
		TotalCredit: amount,
		Status:      status,
		Lines: []domain.JournalEntryLine{
			{LineID: uuid.NewString(), EntryID: entryID, AccountID: debitID, Sequence: 1, Debit: amount, Credit: decimal.Zero},
			{LineID: uuid.NewString(), EntryID: entryID, AccountID: creditID, Sequence: 2, Debit: decimal.Zero, Credit: amount},
		},
		AuditFields: domain.NewAuditFields(testUser, s.now),
	}
}

func (s *RepositoriesIntegrationSuite) TestAccount_DuplicateCode() {
	s.createAccount("1000", domain.Asset)

	dup := domain.Account{
		AccountID:   uuid.NewString(),
		Code:        "1000",
		Name:        "Second cash",
		AccountType: domain.Asset,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(testUser, s.now),
	}
	err := s.repos.AccountRepo.SaveAccount(s.ctx, dup)
	s.ErrorIs(err, apperrors.ErrDuplicate)

	_, err = s.repos.AccountRepo.FindAccountByID(s.ctx, uuid.NewString())
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *RepositoriesIntegrationSuite) TestListAccounts_OrderedByCode() {
	bank := s.createAccount("1100", domain.Asset)
	cash := s.createAccount("1000", domain.Asset)
	child := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            "1110",
		Name:            "Bank current",
		AccountType:     domain.Asset,
		ParentAccountID: bank.AccountID,
		IsActive:        true,
		AuditFields:     domain.NewAuditFields(testUser, s.now),
	}
	s.Require().NoError(s.repos.AccountRepo.SaveAccount(s.ctx, child))

	accounts, err := s.repos.AccountRepo.ListAccounts(s.ctx, 10, 0)
	s.Require().NoError(err)
	s.Require().Len(accounts, 3)
	s.Equal(cash.AccountID, accounts[0].AccountID)
	s.Equal("1100", accounts[1].Code)
	s.Equal(bank.AccountID, accounts[2].ParentAccountID)

	children, err := s.repos.AccountRepo.ListChildAccounts(s.ctx, bank.AccountID)
	s.Require().NoError(err)
	s.Require().Len(children, 1)
	s.Equal(child.AccountID, children[0].AccountID)

	none, err := s.repos.AccountRepo.ListChildAccounts(s.ctx, cash.AccountID)
	s.Require().NoError(err)
	s.Empty(none)
}

func (s *RepositoriesIntegrationSuite) TestPostJournalEntry_ConcurrentPostingsSameAccount() {
	cash := domain.Account{
		AccountID:      uuid.NewString(),
		Code:           "1000",
		Name:           "Cash",
		AccountType:    domain.Asset,
		OpeningBalance: decimal.NewFromInt(1000),
		Balance:        decimal.NewFromInt(1000),
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(testUser, s.now),
	}
	s.Require().NoError(s.repos.AccountRepo.SaveAccount(s.ctx, cash))
	revenue := s.createAccount("4000", domain.Income)
	expense := s.createAccount("5000", domain.Expense)

	journalSvc := services.NewJournalService(s.repos.TxManager, s.repos.JournalRepo, s.repos.AccountRepo)

	const n = 12
	receipt := decimal.NewFromInt(100)
	payment := decimal.NewFromInt(30)
	date := time.Date(2025, 3, 5, 0, 0, 0, 0, time.UTC)
	entryIDs := make([]string, n)
	for i := 0; i < n; i++ {
		number := fmt.Sprintf("JE-20250305-%04d", i+1)
		var entry domain.JournalEntry
		if i%2 == 0 {
			entry = s.newEntry(number, date, domain.Draft, cash.AccountID, revenue.AccountID, receipt)
		} else {
			// cash on the credit line so lock requests arrive in a different line order
			entry = s.newEntry(number, date, domain.Draft, expense.AccountID, cash.AccountID, payment)
		}
		s.Require().NoError(s.repos.JournalRepo.SaveJournalEntry(s.ctx, entry))
		entryIDs[i] = entry.EntryID
	}

	var wg sync.WaitGroup
	errs := make([]error, n)
	start := make(chan struct{})
	for i, id := range entryIDs {
		wg.Add(1)
		go func(i int, id string) {
			defer wg.Done()
			<-start
			_, errs[i] = journalSvc.PostJournalEntry(s.ctx, id, testUser)
		}(i, id)
	}
	close(start)
	wg.Wait()

	for i, err := range errs {
		s.Require().NoError(err, "posting entry %d", i)
	}

	receipts := receipt.Mul(decimal.NewFromInt(n / 2))
	payments := payment.Mul(decimal.NewFromInt(n / 2))

	storedCash, err := s.repos.AccountRepo.FindAccountByID(s.ctx, cash.AccountID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(1000).Add(receipts).Sub(payments).Equal(storedCash.Balance),
		"cash balance %s", storedCash.Balance)

	storedRevenue, err := s.repos.AccountRepo.FindAccountByID(s.ctx, revenue.AccountID)
	s.Require().NoError(err)
	s.True(receipts.Equal(storedRevenue.Balance), "revenue balance %s", storedRevenue.Balance)

	storedExpense, err := s.repos.AccountRepo.FindAccountByID(s.ctx, expense.AccountID)
	s.Require().NoError(err)
	s.True(payments.Equal(storedExpense.Balance), "expense balance %s", storedExpense.Balance)

	for _, id := range entryIDs {
		entry, err := s.repos.JournalRepo.FindJournalEntryByID(s.ctx, id)
		s.Require().NoError(err)
		s.Equal(domain.Posted, entry.Status)
	}
}

func (s *RepositoriesIntegrationSuite) TestApplyBalanceChanges_RollsBackWithTransaction() {
	cash := s.createAccount("1000", domain.Asset)
	revenue := s.createAccount("4000", domain.Income)

	err := s.repos.TxManager.WithinTransaction(s.ctx, func(ctx context.Context) error {
		locked, err := s.repos.AccountRepo.FindAccountsByIDsForUpdate(ctx, []string{revenue.AccountID, cash.AccountID})
		s.Require().NoError(err)
		s.Len(locked, 2)

		changes := map[string]decimal.Decimal{
			cash.AccountID:    decimal.NewFromInt(500),
			revenue.AccountID: decimal.NewFromInt(500),
		}
		s.Require().NoError(s.repos.AccountRepo.ApplyBalanceChanges(ctx, changes, testUser, s.now))
		return apperrors.ErrValidation
	})
	s.ErrorIs(err, apperrors.ErrValidation)

	stored, err := s.repos.AccountRepo.FindAccountByID(s.ctx, cash.AccountID)
	s.Require().NoError(err)
	s.True(stored.Balance.IsZero(), "rolled back delta must not persist")

	err = s.repos.TxManager.WithinTransaction(s.ctx, func(ctx context.Context) error {
		return s.repos.AccountRepo.ApplyBalanceChanges(ctx, map[string]decimal.Decimal{cash.AccountID: decimal.NewFromInt(250)}, testUser, s.now)
	})
	s.Require().NoError(err)
	stored, err = s.repos.AccountRepo.FindAccountByID(s.ctx, cash.AccountID)
	s.Require().NoError(err)
	s.True(decimal.NewFromInt(250).Equal(stored.Balance))
}

func (s *RepositoriesIntegrationSuite) TestApplyBalanceChanges_RequiresTransaction() {
	cash := s.createAccount("1000", domain.Asset)
	err := s.repos.AccountRepo.ApplyBalanceChanges(s.ctx, map[string]decimal.Decimal{cash.AccountID: decimal.NewFromInt(1)}, testUser, s.now)
	s.ErrorIs(err, apperrors.ErrStorageFailure)
}

func (s *RepositoriesIntegrationSuite) TestJournalEntry_LifecycleAndLedgerLines() {
	cash := s.createAccount("1000", domain.Asset)
	revenue := s.createAccount("4000", domain.Income)
	date := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)

	entry := s.newEntry("JE-20250303-0001", date, domain.Draft, cash.AccountID, revenue.AccountID, decimal.NewFromInt(700))
	s.Require().NoError(s.repos.JournalRepo.SaveJournalEntry(s.ctx, entry))

	exists, err := s.repos.JournalRepo.EntryNumberExists(s.ctx, entry.EntryNumber)
	s.Require().NoError(err)
	s.True(exists)

	loaded, err := s.repos.JournalRepo.FindJournalEntryByID(s.ctx, entry.EntryID)
	s.Require().NoError(err)
	s.Require().Len(loaded.Lines, 2)
	s.Equal(1, loaded.Lines[0].Sequence)
	s.True(date.Equal(loaded.EntryDate))

	lines, err := s.repos.JournalRepo.ListBalanceAffectingLines(s.ctx, cash.AccountID, date, date)
	s.Require().NoError(err)
	s.Empty(lines, "drafts do not reach the ledger")

	posted := *loaded
	posted.Status = domain.Posted
	postedAt := s.now
	posted.PostedAt = &postedAt
	posted.PostedBy = testUser
	s.Require().NoError(s.repos.JournalRepo.UpdateJournalEntryStatus(s.ctx, posted, domain.Draft))

	// A second writer still expecting DRAFT loses.
	err = s.repos.JournalRepo.UpdateJournalEntryStatus(s.ctx, posted, domain.Draft)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	lines, err = s.repos.JournalRepo.ListBalanceAffectingLines(s.ctx, cash.AccountID, date, date)
	s.Require().NoError(err)
	s.Require().Len(lines, 1)
	s.True(decimal.NewFromInt(700).Equal(lines[0].Debit))
	s.Equal(entry.EntryNumber, lines[0].EntryNumber)

	err = s.repos.JournalRepo.DeleteDraftJournalEntry(s.ctx, entry.EntryID)
	s.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	err = s.repos.JournalRepo.DeleteDraftJournalEntry(s.ctx, uuid.NewString())
	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *RepositoriesIntegrationSuite) TestJournalEntry_ReplaceDraft() {
	cash := s.createAccount("1000", domain.Asset)
	revenue := s.createAccount("4000", domain.Income)
	date := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	entry := s.newEntry("JE-20250304-0001", date, domain.Draft, cash.AccountID, revenue.AccountID, decimal.NewFromInt(100))
	s.Require().NoError(s.repos.JournalRepo.SaveJournalEntry(s.ctx, entry))

	replacement := s.newEntry("JE-20250304-0001", date, domain.Draft, revenue.AccountID, cash.AccountID, decimal.NewFromInt(40))
	replacement.EntryID = entry.EntryID
	for i := range replacement.Lines {
		replacement.Lines[i].EntryID = entry.EntryID
	}
	s.Require().NoError(s.repos.JournalRepo.ReplaceDraftJournalEntry(s.ctx, replacement))

	stored, err := s.repos.JournalRepo.FindJournalEntryByID(s.ctx, entry.EntryID)
	s.Require().NoError(err)
	lines := stored.Lines
	s.Require().Len(lines, 2)
	s.Equal(revenue.AccountID, lines[0].AccountID)
	s.True(decimal.NewFromInt(40).Equal(lines[0].Debit))
}

func (s *RepositoriesIntegrationSuite) TestListJournalEntries_Paginates() {
	cash := s.createAccount("1000", domain.Asset)
	revenue := s.createAccount("4000", domain.Income)
	for i, number := range []string{"JE-20250301-0001", "JE-20250302-0001", "JE-20250303-0001"} {
		date := time.Date(2025, 3, i+1, 0, 0, 0, 0, time.UTC)
		s.Require().NoError(s.repos.JournalRepo.SaveJournalEntry(s.ctx,
			s.newEntry(number, date, domain.Posted, cash.AccountID, revenue.AccountID, decimal.NewFromInt(10))))
	}

	page, next, err := s.repos.JournalRepo.ListJournalEntries(s.ctx, domain.ListJournalEntriesParams{Limit: 2})
	s.Require().NoError(err)
	s.Require().Len(page, 2)
	s.Require().NotNil(next)
	s.Equal("JE-20250303-0001", page[0].EntryNumber)

	page, next, err = s.repos.JournalRepo.ListJournalEntries(s.ctx, domain.ListJournalEntriesParams{Limit: 2, NextToken: next})
	s.Require().NoError(err)
	s.Require().Len(page, 1)
	s.Nil(next)
	s.Equal("JE-20250301-0001", page[0].EntryNumber)
}

func (s *RepositoriesIntegrationSuite) TestMilestonesAndDemandDrafts() {
	planID := uuid.NewString()
	_, err := s.pool.Exec(s.ctx, `
		INSERT INTO payment_plans (plan_id, flat_id, customer_id, booking_id, customer_name, unit_number, project_name, status,
			created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, 'FLAT-101', 'CUST-1', 'BOOK-1', 'Asha Rao', 'A-101', 'Green Meadows', 'ACTIVE', $2, 'seed', $2, 'seed');`,
		planID, s.now)
	s.Require().NoError(err)
	_, err = s.pool.Exec(s.ctx, `
		INSERT INTO payment_milestones (plan_id, sequence, description, construction_phase, required_phase_percentage, amount, status)
		VALUES ($1, 1, 'Foundation', 'FOUNDATION', 80, 250000, 'PENDING'),
		       ($1, 2, 'Roof slab', 'STRUCTURE', NULL, 300000, 'PENDING');`, planID)
	s.Require().NoError(err)

	plan, err := s.repos.PaymentPlanRepo.FindActivePlanByFlatID(s.ctx, "FLAT-101")
	s.Require().NoError(err)
	s.Require().Len(plan.Milestones, 2)
	s.Nil(plan.Milestones[1].RequiredPhasePercentage)

	_, err = s.repos.PaymentPlanRepo.FindActivePlanByFlatID(s.ctx, "FLAT-404")
	s.ErrorIs(err, apperrors.ErrNotFound)

	s.Require().NoError(s.repos.PaymentPlanRepo.UpdateMilestoneStatus(s.ctx, planID, 1,
		domain.MilestonePending, domain.MilestoneTriggered, testUser, s.now))
	err = s.repos.PaymentPlanRepo.UpdateMilestoneStatus(s.ctx, planID, 1,
		domain.MilestonePending, domain.MilestoneTriggered, testUser, s.now)
	s.ErrorIs(err, apperrors.ErrConflict)

	draft := domain.DemandDraft{
		DemandDraftID:     uuid.NewString(),
		FlatID:            "FLAT-101",
		CustomerID:        "CUST-1",
		BookingID:         "BOOK-1",
		PlanID:            planID,
		MilestoneSequence: 1,
		Title:             "Demand for Foundation",
		Amount:            decimal.NewFromInt(250000),
		DueDate:           time.Date(2025, 4, 9, 0, 0, 0, 0, time.UTC),
		Status:            domain.DemandDraftDraft,
		Content:           "content",
		AutoGenerated:     true,
		AuditFields:       domain.NewAuditFields("system", s.now),
	}
	inserted, err := s.repos.DemandDraftRepo.SaveDemandDraft(s.ctx, draft)
	s.Require().NoError(err)
	s.True(inserted)

	again := draft
	again.DemandDraftID = uuid.NewString()
	inserted, err = s.repos.DemandDraftRepo.SaveDemandDraft(s.ctx, again)
	s.Require().NoError(err)
	s.False(inserted)

	drafts, err := s.repos.DemandDraftRepo.ListDemandDraftsByFlat(s.ctx, "FLAT-101")
	s.Require().NoError(err)
	require.Len(s.T(), drafts, 1)
	s.Equal(draft.DemandDraftID, drafts[0].DemandDraftID)
}
