package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portssvc "github.com/SscSPs/realty_erp_accounting/internal/core/ports/services"
	"github.com/SscSPs/realty_erp_accounting/internal/core/services"
	"github.com/SscSPs/realty_erp_accounting/internal/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

const (
	cashID     = "acc-cash"
	revenueID  = "acc-revenue"
	expenseID  = "acc-expense"
	loanID     = "acc-loan"
	inactiveID = "acc-inactive"
	testUserID = "user-1"
)

var fixedNow = time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testAccount(id, code string, t domain.AccountType, opening string) domain.Account {
	return domain.Account{
		AccountID:      id,
		Code:           code,
		Name:           code + " account",
		AccountType:    t,
		OpeningBalance: dec(opening),
		Balance:        dec(opening),
		IsActive:       true,
	}
}

func seedAccounts() []domain.Account {
	inactive := testAccount(inactiveID, "1999", domain.Asset, "0")
	inactive.IsActive = false
	return []domain.Account{
		testAccount(cashID, "1000", domain.Asset, "1000"),
		testAccount(loanID, "2000", domain.Liability, "0"),
		testAccount(revenueID, "4000", domain.Income, "0"),
		testAccount(expenseID, "5000", domain.Expense, "0"),
		inactive,
	}
}

func debit(accountID, amount string) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: accountID, Debit: dec(amount), Credit: decimal.Zero}
}

func credit(accountID, amount string) dto.JournalLineRequest {
	return dto.JournalLineRequest{AccountID: accountID, Debit: decimal.Zero, Credit: dec(amount)}
}

func entryRequest(date string, lines ...dto.JournalLineRequest) dto.JournalEntryRequest {
	return dto.JournalEntryRequest{EntryDate: date, Narration: "test entry", Lines: lines}
}

// --- Test Suite Setup ---

type JournalServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	store   *memStore
	service portssvc.JournalSvcFacade
}

func (suite *JournalServiceTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.store = newMemStore(seedAccounts()...)
	suite.service = services.NewJournalService(suite.store, suite.store, suite.store,
		services.WithJournalClock(fixedClock))
}

func TestJournalServiceTestSuite(t *testing.T) {
	suite.Run(t, new(JournalServiceTestSuite))
}

func (suite *JournalServiceTestSuite) createDraft(lines ...dto.JournalLineRequest) *domain.JournalEntry {
	entry, err := suite.service.CreateJournalEntry(suite.ctx, entryRequest("2025-01-10", lines...), testUserID)
	suite.Require().NoError(err)
	return entry
}

func (suite *JournalServiceTestSuite) postedSale(amount string) *domain.JournalEntry {
	entry := suite.createDraft(debit(cashID, amount), credit(revenueID, amount))
	posted, err := suite.service.PostJournalEntry(suite.ctx, entry.EntryID, testUserID)
	suite.Require().NoError(err)
	return posted
}

// assertBalanceInvariant checks balance == opening + net effect of every balance-affecting line.
func (suite *JournalServiceTestSuite) assertBalanceInvariant() {
	expected := map[string]decimal.Decimal{}
	for id, acc := range suite.store.accounts {
		expected[id] = acc.OpeningBalance
	}
	for _, e := range suite.store.entries {
		if !e.Status.AffectsBalances() {
			continue
		}
		for _, l := range e.Lines {
			acc := suite.store.accounts[l.AccountID]
			expected[l.AccountID] = expected[l.AccountID].Add(acc.AccountType.NetEffect(l.Debit, l.Credit))
		}
	}
	for id, acc := range suite.store.accounts {
		suite.True(expected[id].Equal(acc.Balance), "account %s: expected %s, got %s", id, expected[id], acc.Balance)
	}
}

// --- Validator ---

func (suite *JournalServiceTestSuite) TestValidateEntry_Balanced() {
	validated, err := suite.service.ValidateEntry(suite.ctx, entryRequest("2025-01-10",
		debit(cashID, "500"), credit(revenueID, "500")))

	suite.Require().NoError(err)
	suite.True(validated.TotalDebit.Equal(dec("500")))
	suite.True(validated.TotalCredit.Equal(dec("500")))
	suite.Regexp(`^JE-20250110-\d{4}$`, validated.EntryNumber)
	suite.Len(validated.Lines, 2)
	suite.Empty(suite.store.entries, "validation must not persist anything")
}

func (suite *JournalServiceTestSuite) TestValidateEntry_Imbalanced() {
	_, err := suite.service.ValidateEntry(suite.ctx, entryRequest("2025-01-10",
		debit(cashID, "100.00"), credit(revenueID, "99.98")))

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrImbalancedEntry)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestValidateEntry_WithinTolerance() {
	validated, err := suite.service.ValidateEntry(suite.ctx, entryRequest("2025-01-10",
		debit(cashID, "100.00"), credit(revenueID, "99.99")))

	suite.Require().NoError(err)
	suite.True(validated.TotalDebit.Sub(validated.TotalCredit).Equal(dec("0.01")))
}

func (suite *JournalServiceTestSuite) TestValidateEntry_UnknownAccount() {
	_, err := suite.service.ValidateEntry(suite.ctx, entryRequest("2025-01-10",
		debit(cashID, "10"), credit("acc-missing", "10")))

	suite.ErrorIs(err, apperrors.ErrUnknownAccount)
}

func (suite *JournalServiceTestSuite) TestValidateEntry_InactiveAccount() {
	_, err := suite.service.ValidateEntry(suite.ctx, entryRequest("2025-01-10",
		debit(inactiveID, "10"), credit(revenueID, "10")))

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.NotErrorIs(err, apperrors.ErrUnknownAccount)
}

func (suite *JournalServiceTestSuite) TestValidateEntry_LineRules() {
	testCases := []struct {
		name  string
		lines []dto.JournalLineRequest
	}{
		{"single line", []dto.JournalLineRequest{debit(cashID, "10")}},
		{"debit and credit on one line", []dto.JournalLineRequest{
			{AccountID: cashID, Debit: dec("10"), Credit: dec("10")},
			credit(revenueID, "0"),
		}},
		{"zero line", []dto.JournalLineRequest{debit(cashID, "0"), credit(revenueID, "0")}},
		{"negative amount", []dto.JournalLineRequest{debit(cashID, "-10"), credit(revenueID, "-10")}},
		{"missing account", []dto.JournalLineRequest{debit("", "10"), credit(revenueID, "10")}},
	}
	for _, tc := range testCases {
		suite.Run(tc.name, func() {
			_, err := suite.service.ValidateEntry(suite.ctx, entryRequest("2025-01-10", tc.lines...))
			suite.ErrorIs(err, apperrors.ErrValidation)
		})
	}
}

func (suite *JournalServiceTestSuite) TestValidateEntry_BadDate() {
	_, err := suite.service.ValidateEntry(suite.ctx, entryRequest("10/01/2025",
		debit(cashID, "10"), credit(revenueID, "10")))

	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *JournalServiceTestSuite) TestCreateJournalEntry_DuplicateNumber() {
	req := entryRequest("2025-01-10", debit(cashID, "10"), credit(revenueID, "10"))
	req.EntryNumber = "JE-MANUAL-1"
	_, err := suite.service.CreateJournalEntry(suite.ctx, req, testUserID)
	suite.Require().NoError(err)

	_, err = suite.service.CreateJournalEntry(suite.ctx, req, testUserID)
	suite.ErrorIs(err, apperrors.ErrDuplicate)
}

// --- Drafts ---

func (suite *JournalServiceTestSuite) TestCreateJournalEntry_StoresDraftWithoutTouchingBalances() {
	entry := suite.createDraft(debit(cashID, "500"), credit(revenueID, "500"))

	suite.Equal(domain.Draft, entry.Status)
	suite.Equal(testUserID, entry.CreatedBy)
	suite.Equal(fixedNow, entry.CreatedAt)
	suite.Require().Len(entry.Lines, 2)
	suite.Equal(1, entry.Lines[0].Sequence)
	suite.Equal(2, entry.Lines[1].Sequence)
	suite.True(suite.store.balance(cashID).Equal(dec("1000")))
	suite.True(suite.store.balance(revenueID).IsZero())
}

func (suite *JournalServiceTestSuite) TestUpdateDraftJournalEntry_KeepsNumber() {
	entry := suite.createDraft(debit(cashID, "500"), credit(revenueID, "500"))

	updated, err := suite.service.UpdateDraftJournalEntry(suite.ctx, entry.EntryID,
		entryRequest("2025-01-11", debit(expenseID, "75"), credit(cashID, "75")), "user-2")

	suite.Require().NoError(err)
	suite.Equal(entry.EntryNumber, updated.EntryNumber)
	suite.True(updated.TotalDebit.Equal(dec("75")))
	suite.Equal("user-2", updated.LastUpdatedBy)
	suite.Equal(testUserID, updated.CreatedBy)

	stored, err := suite.service.GetJournalEntry(suite.ctx, entry.EntryID)
	suite.Require().NoError(err)
	suite.Equal(expenseID, stored.Lines[0].AccountID)
}

func (suite *JournalServiceTestSuite) TestUpdateDraftJournalEntry_RejectsPosted() {
	posted := suite.postedSale("500")

	_, err := suite.service.UpdateDraftJournalEntry(suite.ctx, posted.EntryID,
		entryRequest("2025-01-11", debit(cashID, "1"), credit(revenueID, "1")), testUserID)

	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

func (suite *JournalServiceTestSuite) TestDeleteDraftJournalEntry() {
	entry := suite.createDraft(debit(cashID, "5"), credit(revenueID, "5"))

	suite.Require().NoError(suite.service.DeleteDraftJournalEntry(suite.ctx, entry.EntryID, testUserID))

	_, err := suite.service.GetJournalEntry(suite.ctx, entry.EntryID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestDeleteDraftJournalEntry_RejectsPosted() {
	posted := suite.postedSale("5")

	err := suite.service.DeleteDraftJournalEntry(suite.ctx, posted.EntryID, testUserID)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

// --- Posting / Void ---

func (suite *JournalServiceTestSuite) TestPostJournalEntry_AppliesBalances() {
	posted := suite.postedSale("500")

	suite.Equal(domain.Posted, posted.Status)
	suite.Equal(testUserID, posted.PostedBy)
	suite.Require().NotNil(posted.PostedAt)
	suite.Equal(fixedNow, *posted.PostedAt)
	suite.True(suite.store.balance(cashID).Equal(dec("1500")))
	suite.True(suite.store.balance(revenueID).Equal(dec("500")))
	suite.assertBalanceInvariant()
}

func (suite *JournalServiceTestSuite) TestPostJournalEntry_SignRulePerType() {
	entry := suite.createDraft(debit(expenseID, "200"), credit(loanID, "150"), credit(cashID, "50"))
	_, err := suite.service.PostJournalEntry(suite.ctx, entry.EntryID, testUserID)
	suite.Require().NoError(err)

	suite.True(suite.store.balance(expenseID).Equal(dec("200")))
	suite.True(suite.store.balance(loanID).Equal(dec("150")))
	suite.True(suite.store.balance(cashID).Equal(dec("950")))
}

func (suite *JournalServiceTestSuite) TestPostJournalEntry_Twice() {
	posted := suite.postedSale("500")

	_, err := suite.service.PostJournalEntry(suite.ctx, posted.EntryID, testUserID)

	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	suite.True(suite.store.balance(cashID).Equal(dec("1500")), "re-posting must not apply balances again")
}

func (suite *JournalServiceTestSuite) TestPostJournalEntry_NotFound() {
	_, err := suite.service.PostJournalEntry(suite.ctx, "missing", testUserID)
	suite.ErrorIs(err, apperrors.ErrNotFound)
}

func (suite *JournalServiceTestSuite) TestPostThenVoid_RestoresBalances() {
	before := map[string]decimal.Decimal{}
	for id := range suite.store.accounts {
		before[id] = suite.store.balance(id)
	}

	entry := suite.createDraft(debit(cashID, "123.45"), debit(expenseID, "10"), credit(revenueID, "133.45"))
	_, err := suite.service.PostJournalEntry(suite.ctx, entry.EntryID, testUserID)
	suite.Require().NoError(err)

	voided, err := suite.service.VoidJournalEntry(suite.ctx, entry.EntryID, "entered twice", "user-2")
	suite.Require().NoError(err)

	suite.Equal(domain.Void, voided.Status)
	suite.Equal("entered twice", voided.VoidReason)
	suite.Equal("user-2", voided.VoidedBy)
	suite.Require().NotNil(voided.VoidedAt)
	suite.Len(voided.Lines, 3, "voided entries keep their lines")
	for id, b := range before {
		suite.True(b.Equal(suite.store.balance(id)), "account %s balance changed after void", id)
	}
	suite.assertBalanceInvariant()
}

func (suite *JournalServiceTestSuite) TestVoidJournalEntry_Twice() {
	posted := suite.postedSale("500")
	_, err := suite.service.VoidJournalEntry(suite.ctx, posted.EntryID, "wrong amount", testUserID)
	suite.Require().NoError(err)

	_, err = suite.service.VoidJournalEntry(suite.ctx, posted.EntryID, "again", testUserID)

	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	suite.True(suite.store.balance(cashID).Equal(dec("1000")))
}

func (suite *JournalServiceTestSuite) TestVoidJournalEntry_DraftRejected() {
	entry := suite.createDraft(debit(cashID, "500"), credit(revenueID, "500"))

	_, err := suite.service.VoidJournalEntry(suite.ctx, entry.EntryID, "not posted", testUserID)

	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	suite.Equal(domain.Draft, suite.store.status(entry.EntryID))
	suite.True(suite.store.balance(cashID).Equal(dec("1000")))
}

func (suite *JournalServiceTestSuite) TestVoidJournalEntry_RequiresReason() {
	posted := suite.postedSale("500")

	_, err := suite.service.VoidJournalEntry(suite.ctx, posted.EntryID, "  ", testUserID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal(domain.Posted, suite.store.status(posted.EntryID))
}

func (suite *JournalServiceTestSuite) TestApproveJournalEntry() {
	posted := suite.postedSale("500")

	approved, err := suite.service.ApproveJournalEntry(suite.ctx, posted.EntryID, "approver")
	suite.Require().NoError(err)
	suite.Equal(domain.Approved, approved.Status)
	suite.Equal("approver", approved.ApprovedBy)
	suite.True(suite.store.balance(cashID).Equal(dec("1500")), "approval must not touch balances")

	_, err = suite.service.VoidJournalEntry(suite.ctx, posted.EntryID, "too late", testUserID)
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)

	_, err = suite.service.ApproveJournalEntry(suite.ctx, posted.EntryID, "approver")
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
	suite.assertBalanceInvariant()
}

func (suite *JournalServiceTestSuite) TestApproveJournalEntry_DraftRejected() {
	entry := suite.createDraft(debit(cashID, "1"), credit(revenueID, "1"))

	_, err := suite.service.ApproveJournalEntry(suite.ctx, entry.EntryID, "approver")
	suite.ErrorIs(err, apperrors.ErrInvalidStateTransition)
}

func (suite *JournalServiceTestSuite) TestPostJournalEntry_StorageFailureRollsBack() {
	entry := suite.createDraft(debit(cashID, "500"), debit(expenseID, "20"), credit(revenueID, "520"))
	suite.store.failApplyBalances = apperrors.NewStorageError("balance update failed", assert.AnError)

	_, err := suite.service.PostJournalEntry(suite.ctx, entry.EntryID, testUserID)

	suite.Require().Error(err)
	suite.ErrorIs(err, apperrors.ErrStorageFailure)
	suite.Equal(1, suite.store.rollbacks)
	suite.Equal(domain.Draft, suite.store.status(entry.EntryID))
	suite.True(suite.store.balance(cashID).Equal(dec("1000")))
	suite.True(suite.store.balance(expenseID).IsZero())
	suite.True(suite.store.balance(revenueID).IsZero())

	// The entry is still DRAFT, so a retry succeeds.
	suite.store.failApplyBalances = nil
	_, err = suite.service.PostJournalEntry(suite.ctx, entry.EntryID, testUserID)
	suite.Require().NoError(err)
	suite.True(suite.store.balance(cashID).Equal(dec("1500")))
}

func (suite *JournalServiceTestSuite) TestVoidJournalEntry_StatusFailureRollsBack() {
	posted := suite.postedSale("500")
	suite.store.failStatusUpdate = assert.AnError

	_, err := suite.service.VoidJournalEntry(suite.ctx, posted.EntryID, "reverse", testUserID)

	suite.ErrorIs(err, assert.AnError)
	suite.Equal(domain.Posted, suite.store.status(posted.EntryID))
	suite.True(suite.store.balance(cashID).Equal(dec("1500")), "reversal must be rolled back with the status change")
	suite.True(suite.store.balance(revenueID).Equal(dec("500")))
}

func (suite *JournalServiceTestSuite) TestPostJournalEntry_AccountDeactivatedAfterDraft() {
	entry := suite.createDraft(debit(cashID, "500"), credit(revenueID, "500"))
	acc := suite.store.accounts[revenueID]
	acc.IsActive = false
	suite.store.accounts[revenueID] = acc

	_, err := suite.service.PostJournalEntry(suite.ctx, entry.EntryID, testUserID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.Equal(domain.Draft, suite.store.status(entry.EntryID))
	suite.True(suite.store.balance(cashID).Equal(dec("1000")))
}

func (suite *JournalServiceTestSuite) TestBalanceInvariant_AcrossMixedHistory() {
	a := suite.postedSale("100")
	suite.postedSale("250.50")
	c := suite.createDraft(debit(expenseID, "40"), credit(cashID, "40"))
	_, err := suite.service.PostJournalEntry(suite.ctx, c.EntryID, testUserID)
	suite.Require().NoError(err)
	suite.createDraft(debit(cashID, "999"), credit(loanID, "999")) // stays DRAFT

	_, err = suite.service.VoidJournalEntry(suite.ctx, a.EntryID, "duplicate", testUserID)
	suite.Require().NoError(err)
	_, err = suite.service.ApproveJournalEntry(suite.ctx, c.EntryID, "approver")
	suite.Require().NoError(err)

	suite.True(suite.store.balance(cashID).Equal(dec("1210.50")))
	suite.True(suite.store.balance(loanID).IsZero())
	suite.assertBalanceInvariant()
}

func (suite *JournalServiceTestSuite) TestListJournalEntries_FiltersByStatus() {
	suite.postedSale("10")
	suite.createDraft(debit(cashID, "5"), credit(revenueID, "5"))

	resp, err := suite.service.ListJournalEntries(suite.ctx, dto.ListJournalEntriesParams{Status: "POSTED", Limit: 10})

	suite.Require().NoError(err)
	suite.Require().Len(resp.Entries, 1)
	suite.Equal(domain.Posted, resp.Entries[0].Status)
}

// --- Entry numbers ---

func TestCreateJournalEntry_EntryNumberExhaustion(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	journalRepo := new(MockJournalRepository)
	svc := services.NewJournalService(new(MockTxManager), journalRepo, accountRepo,
		services.WithEntryNumberPrefix("JV"))

	accounts := map[string]domain.Account{
		cashID:    testAccount(cashID, "1000", domain.Asset, "0"),
		revenueID: testAccount(revenueID, "4000", domain.Income, "0"),
	}
	accountRepo.On("FindAccountsByIDs", ctx, []string{cashID, revenueID}).Return(accounts, nil).Once()
	journalRepo.On("EntryNumberExists", ctx, mock.MatchedBy(func(n string) bool {
		return len(n) == len("JV-20250110-0000") && n[:12] == "JV-20250110-"
	})).Return(true, nil).Times(10)

	_, err := svc.CreateJournalEntry(ctx, entryRequest("2025-01-10", debit(cashID, "1"), credit(revenueID, "1")), testUserID)

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	journalRepo.AssertNotCalled(t, "SaveJournalEntry", mock.Anything, mock.Anything)
	accountRepo.AssertExpectations(t)
	journalRepo.AssertExpectations(t)
}

func TestCreateJournalEntry_SaveError(t *testing.T) {
	ctx := context.Background()
	accountRepo := new(MockAccountRepository)
	journalRepo := new(MockJournalRepository)
	svc := services.NewJournalService(new(MockTxManager), journalRepo, accountRepo)

	accounts := map[string]domain.Account{
		cashID:    testAccount(cashID, "1000", domain.Asset, "0"),
		revenueID: testAccount(revenueID, "4000", domain.Income, "0"),
	}
	accountRepo.On("FindAccountsByIDs", ctx, mock.Anything).Return(accounts, nil).Once()
	journalRepo.On("EntryNumberExists", ctx, mock.AnythingOfType("string")).Return(false, nil).Once()
	journalRepo.On("SaveJournalEntry", ctx, mock.AnythingOfType("domain.JournalEntry")).Return(assert.AnError).Once()

	entry, err := svc.CreateJournalEntry(ctx, entryRequest("2025-01-10", debit(cashID, "1"), credit(revenueID, "1")), testUserID)

	assert.Nil(t, entry)
	assert.ErrorIs(t, err, assert.AnError)
	journalRepo.AssertExpectations(t)
}
