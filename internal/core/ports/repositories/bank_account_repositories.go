package repositories

import (
	"context"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
)

// BankAccountRepository persists bank accounts and their ledger account links.
type BankAccountRepository interface {
	SaveBankAccount(ctx context.Context, bankAccount domain.BankAccount) error
	FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error)
	ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error)
}
