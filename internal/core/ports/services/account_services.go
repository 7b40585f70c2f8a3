package services

import (
	"context"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	"github.com/SscSPs/realty_erp_accounting/internal/dto"
)

// AccountReaderSvc defines read operations for the chart of accounts
type AccountReaderSvc interface {
	// GetAccountByID retrieves an account. Fails with apperrors.ErrAccountNotFound.
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)

	// GetAccountByCode retrieves an account by its human code. Fails with apperrors.ErrAccountNotFound.
	GetAccountByCode(ctx context.Context, code string) (*domain.Account, error)

	// ListAccounts retrieves a page of accounts ordered by code.
	ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error)

	// ListChildAccounts retrieves the direct children of an account.
	ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error)
}

// AccountWriterSvc defines write operations for the chart of accounts
type AccountWriterSvc interface {
	// CreateAccount registers an account with its balance initialised to the opening balance.
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)

	// UpdateAccount changes an account's name and description.
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error)

	// DeactivateAccount soft-deletes an account that has no child accounts.
	DeactivateAccount(ctx context.Context, accountID string, userID string) error
}

// BankAccountSvc manages bank accounts linked to ledger accounts
type BankAccountSvc interface {
	RegisterBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, creatorUserID string) (*domain.BankAccount, error)
	ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error)
}

// AccountSvcFacade combines all account-related service interfaces
type AccountSvcFacade interface {
	AccountReaderSvc
	AccountWriterSvc
	BankAccountSvc
}
