package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/realty_erp_accounting/internal/core/ports/services"
	"github.com/SscSPs/realty_erp_accounting/internal/utils/isoweek"
	"github.com/shopspring/decimal"
)

const (
	defaultCashAccountCode  = "1000"
	openingBalanceNarration = "Opening Balance"
	trialBalancePageSize    = 500
)

// ledgerService implements the Ledger Reporter read path.
type ledgerService struct {
	BaseService
	accountRepo     portsrepo.AccountReader
	bankAccountRepo portsrepo.BankAccountRepository
	journalRepo     portsrepo.JournalRepositoryFacade
	cashAccountCode string
}

// LedgerServiceOption is a functional option for configuring the ledger service
type LedgerServiceOption func(*ledgerService)

// WithCashAccountCode sets the code of the account the cash book reads.
func WithCashAccountCode(code string) LedgerServiceOption {
	return func(s *ledgerService) {
		if code != "" {
			s.cashAccountCode = code
		}
	}
}

// WithLedgerClock overrides the clock used for report timestamps.
func WithLedgerClock(now func() time.Time) LedgerServiceOption {
	return func(s *ledgerService) {
		s.now = now
	}
}

// NewLedgerService creates a new ledger service with the provided options
func NewLedgerService(
	accountRepo portsrepo.AccountReader,
	bankAccountRepo portsrepo.BankAccountRepository,
	journalRepo portsrepo.JournalRepositoryFacade,
	options ...LedgerServiceOption,
) portssvc.LedgerSvc {
	svc := &ledgerService{
		accountRepo:     accountRepo,
		bankAccountRepo: bankAccountRepo,
		journalRepo:     journalRepo,
		cashAccountCode: defaultCashAccountCode,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.LedgerSvc = (*ledgerService)(nil)

// GetAccountLedger computes the running balance of one account over [start, end].
func (s *ledgerService) GetAccountLedger(ctx context.Context, accountID string, start, end time.Time) (*domain.Ledger, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		s.LogError(ctx, err, "Failed to load ledger account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return s.ledgerFor(ctx, *account, start, end)
}

// GetCashBook is the ledger of the account carrying the configured cash code.
func (s *ledgerService) GetCashBook(ctx context.Context, start, end time.Time) (*domain.Ledger, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, s.cashAccountCode)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: cash account code %s", apperrors.ErrAccountNotFound, s.cashAccountCode)
		}
		s.LogError(ctx, err, "Failed to load cash account", slog.String("code", s.cashAccountCode))
		return nil, fmt.Errorf("failed to load cash account: %w", err)
	}
	return s.ledgerFor(ctx, *account, start, end)
}

// GetBankBook is the ledger of the bank account's linked ledger account.
func (s *ledgerService) GetBankBook(ctx context.Context, bankAccountID string, start, end time.Time) (*domain.Ledger, error) {
	bankAccount, err := s.bankAccountRepo.FindBankAccountByID(ctx, bankAccountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: bank account %s", apperrors.ErrAccountNotFound, bankAccountID)
		}
		s.LogError(ctx, err, "Failed to load bank account", slog.String("bank_account_id", bankAccountID))
		return nil, fmt.Errorf("failed to load bank account: %w", err)
	}
	return s.GetAccountLedger(ctx, bankAccount.LedgerAccountID, start, end)
}

// ledgerFor folds the account's posted lines in [start, end] over its opening balance.
func (s *ledgerService) ledgerFor(ctx context.Context, account domain.Account, start, end time.Time) (*domain.Ledger, error) {
	start, end = domain.DateOnly(start), domain.DateOnly(end)
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date %s is before start date %s",
			apperrors.ErrValidation, end.Format("2006-01-02"), start.Format("2006-01-02"))
	}

	lines, err := s.journalRepo.ListBalanceAffectingLines(ctx, account.AccountID, start, end)
	if err != nil {
		s.LogError(ctx, err, "Failed to load ledger lines", slog.String("account_id", account.AccountID))
		return nil, fmt.Errorf("failed to load ledger lines: %w", err)
	}

	ledger := BuildLedger(account, start, end, lines)
	s.LogDebug(ctx, "Ledger computed",
		slog.String("account_id", account.AccountID),
		slog.Int("line_count", len(lines)),
		slog.String("closing_balance", ledger.ClosingBalance.String()))
	return ledger, nil
}

// BuildLedger orders lines by entry date, then line sequence, then entry number,
// and emits an opening row followed by one row per line with its running balance.
func BuildLedger(account domain.Account, start, end time.Time, lines []domain.LedgerLine) *domain.Ledger {
	ordered := make([]domain.LedgerLine, len(lines))
	copy(ordered, lines)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if !a.EntryDate.Equal(b.EntryDate) {
			return a.EntryDate.Before(b.EntryDate)
		}
		if a.Sequence != b.Sequence {
			return a.Sequence < b.Sequence
		}
		return a.EntryNumber < b.EntryNumber
	})

	running := account.OpeningBalance
	ledger := &domain.Ledger{
		Account:        account,
		StartDate:      start,
		EndDate:        end,
		OpeningBalance: running,
		TotalDebit:     decimal.Zero,
		TotalCredit:    decimal.Zero,
		Entries:        make([]domain.LedgerRow, 0, len(ordered)+1),
	}
	ledger.Entries = append(ledger.Entries, domain.LedgerRow{
		Date:      start,
		Narration: openingBalanceNarration,
		Debit:     decimal.Zero,
		Credit:    decimal.Zero,
		Balance:   running,
	})

	for _, l := range ordered {
		running = running.Add(account.AccountType.NetEffect(l.Debit, l.Credit))
		ledger.TotalDebit = ledger.TotalDebit.Add(l.Debit)
		ledger.TotalCredit = ledger.TotalCredit.Add(l.Credit)
		ledger.Entries = append(ledger.Entries, domain.LedgerRow{
			Date:        l.EntryDate,
			EntryID:     l.EntryID,
			EntryNumber: l.EntryNumber,
			Narration:   l.Narration,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Balance:     running,
		})
	}
	ledger.ClosingBalance = running
	return ledger
}

// GetWeeklyLedger aggregates POSTED and APPROVED entries dated Monday..Sunday of the ISO week.
func (s *ledgerService) GetWeeklyLedger(ctx context.Context, isoWeek, isoYear int) (*domain.WeeklySummary, error) {
	weekStart, weekEnd, err := isoweek.Range(isoYear, isoWeek)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidation, err.Error())
	}

	entries, err := s.journalRepo.ListBalanceAffectingEntries(ctx, weekStart, weekEnd)
	if err != nil {
		s.LogError(ctx, err, "Failed to load weekly entries", slog.Int("iso_year", isoYear), slog.Int("iso_week", isoWeek))
		return nil, fmt.Errorf("failed to load weekly entries: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].EntryDate.Equal(entries[j].EntryDate) {
			return entries[i].EntryDate.Before(entries[j].EntryDate)
		}
		return entries[i].EntryNumber < entries[j].EntryNumber
	})

	summary := &domain.WeeklySummary{
		ISOYear:     isoYear,
		ISOWeek:     isoWeek,
		WeekStart:   weekStart,
		WeekEnd:     weekEnd,
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
		Entries:     make([]domain.WeeklyEntry, 0, len(entries)),
	}
	for _, e := range entries {
		summary.EntryCount++
		summary.TotalDebit = summary.TotalDebit.Add(e.TotalDebit)
		summary.TotalCredit = summary.TotalCredit.Add(e.TotalCredit)
		summary.Entries = append(summary.Entries, domain.WeeklyEntry{
			EntryID:     e.EntryID,
			EntryNumber: e.EntryNumber,
			EntryDate:   e.EntryDate,
			Narration:   e.Narration,
			TotalDebit:  e.TotalDebit,
			TotalCredit: e.TotalCredit,
		})
	}
	return summary, nil
}

// GetTrialBalance places each active account's balance in the debit column when it
// sits on the account type's normal side as a debit, otherwise in the credit column.
func (s *ledgerService) GetTrialBalance(ctx context.Context) (*domain.TrialBalance, error) {
	tb := &domain.TrialBalance{
		AsOf:        s.Now(),
		Rows:        []domain.TrialBalanceRow{},
		TotalDebit:  decimal.Zero,
		TotalCredit: decimal.Zero,
	}

	for offset := 0; ; offset += trialBalancePageSize {
		page, err := s.accountRepo.ListAccounts(ctx, trialBalancePageSize, offset)
		if err != nil {
			s.LogError(ctx, err, "Failed to list accounts for trial balance", slog.Int("offset", offset))
			return nil, fmt.Errorf("failed to list accounts: %w", err)
		}
		for _, acc := range page {
			if !acc.IsActive {
				continue
			}
			row := trialBalanceRow(acc)
			tb.Rows = append(tb.Rows, row)
			tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
			tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
		}
		if len(page) < trialBalancePageSize {
			break
		}
	}

	s.LogInfo(ctx, "Trial balance generated",
		slog.Int("row_count", len(tb.Rows)),
		slog.Bool("balanced", tb.IsBalanced()))
	return tb, nil
}

func trialBalanceRow(acc domain.Account) domain.TrialBalanceRow {
	row := domain.TrialBalanceRow{
		AccountID:   acc.AccountID,
		Code:        acc.Code,
		Name:        acc.Name,
		AccountType: acc.AccountType,
		Debit:       decimal.Zero,
		Credit:      decimal.Zero,
	}
	// A debit-normal account with a negative balance is in credit, and vice versa.
	debitSide := acc.AccountType.IsDebitNormal() != acc.Balance.IsNegative()
	if debitSide {
		row.Debit = acc.Balance.Abs()
	} else {
		row.Credit = acc.Balance.Abs()
	}
	return row
}
