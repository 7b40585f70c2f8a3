package services

import (
	"context"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
)

// LedgerSvc computes ledgers and reports from posted journal lines
type LedgerSvc interface {
	// GetAccountLedger fails with apperrors.ErrAccountNotFound for an unknown account.
	GetAccountLedger(ctx context.Context, accountID string, start, end time.Time) (*domain.Ledger, error)

	// GetCashBook is the ledger of the configured cash account.
	GetCashBook(ctx context.Context, start, end time.Time) (*domain.Ledger, error)

	// GetBankBook is the ledger of the bank account's linked ledger account.
	GetBankBook(ctx context.Context, bankAccountID string, start, end time.Time) (*domain.Ledger, error)

	// GetWeeklyLedger aggregates balance-affecting entries dated within an ISO-8601 week.
	GetWeeklyLedger(ctx context.Context, isoWeek, isoYear int) (*domain.WeeklySummary, error)

	// GetTrialBalance lists active account balances in debit and credit columns.
	GetTrialBalance(ctx context.Context) (*domain.TrialBalance, error)
}
