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

// accountService implements the Account Registry.
type accountService struct {
	BaseService
	accountRepo     portsrepo.AccountRepositoryFacade
	bankAccountRepo portsrepo.BankAccountRepository
}

// AccountServiceOption is a functional option for configuring the account service
type AccountServiceOption func(*accountService)

// WithAccountClock overrides the clock used for audit timestamps.
func WithAccountClock(now func() time.Time) AccountServiceOption {
	return func(s *accountService) {
		s.now = now
	}
}

// NewAccountService creates a new account service with the provided options
func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, bankAccountRepo portsrepo.BankAccountRepository, options ...AccountServiceOption) portssvc.AccountSvcFacade {
	svc := &accountService{
		accountRepo:     accountRepo,
		bankAccountRepo: bankAccountRepo,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.AccountSvcFacade = (*accountService)(nil)

// CreateAccount registers a new account. Codes are unique; the parent, when given, must exist and be active.
func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, fmt.Errorf("%w: account code is required", apperrors.ErrValidation)
	}
	if !req.AccountType.IsValid() {
		return nil, fmt.Errorf("%w: unknown account type %q", apperrors.ErrValidation, req.AccountType)
	}

	existing, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to look up account code", slog.String("code", code))
		return nil, fmt.Errorf("failed to check account code: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: account code %s is already used by %s", apperrors.ErrDuplicate, code, existing.AccountID)
	}

	parentID := ""
	if req.ParentAccountID != nil && strings.TrimSpace(*req.ParentAccountID) != "" {
		parentID = strings.TrimSpace(*req.ParentAccountID)
		parent, err := s.accountRepo.FindAccountByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, fmt.Errorf("%w: parent account %s does not exist", apperrors.ErrValidation, parentID)
			}
			return nil, fmt.Errorf("failed to load parent account: %w", err)
		}
		if !parent.IsActive {
			return nil, fmt.Errorf("%w: parent account %s is inactive", apperrors.ErrValidation, parentID)
		}
	}

	opening := accounting.RoundAmount(req.OpeningBalance)
	account := domain.Account{
		AccountID:       uuid.NewString(),
		Code:            code,
		Name:            strings.TrimSpace(req.Name),
		AccountType:     req.AccountType,
		ParentAccountID: parentID,
		Description:     req.Description,
		OpeningBalance:  opening,
		Balance:         opening,
		IsActive:        true,
		AuditFields:     domain.NewAuditFields(creatorUserID, s.Now()),
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Failed to save account", slog.String("account_id", account.AccountID), slog.String("code", code))
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.LogInfo(ctx, "Account created", slog.String("account_id", account.AccountID), slog.String("code", code))
	return &account, nil
}

// GetAccountByID retrieves an account by id.
func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, accountID)
		}
		s.LogError(ctx, err, "Failed to find account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// GetAccountByCode retrieves an account by its human code.
func (s *accountService) GetAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: code %s", apperrors.ErrAccountNotFound, code)
		}
		s.LogError(ctx, err, "Failed to find account by code", slog.String("code", code))
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return account, nil
}

// ListAccounts retrieves a page of accounts ordered by code.
func (s *accountService) ListAccounts(ctx context.Context, params dto.ListAccountsParams) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, params.Limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts", slog.Int("limit", params.Limit), slog.Int("offset", params.Offset))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// ListChildAccounts retrieves the direct children of an account.
func (s *accountService) ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	if _, err := s.GetAccountByID(ctx, parentAccountID); err != nil {
		return nil, err
	}
	children, err := s.accountRepo.ListChildAccounts(ctx, parentAccountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list child accounts", slog.String("account_id", parentAccountID))
		return nil, fmt.Errorf("failed to list child accounts: %w", err)
	}
	if children == nil {
		return []domain.Account{}, nil
	}
	return children, nil
}

// UpdateAccount changes an account's name and description. Type, code and balances are immutable here.
func (s *accountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: account name cannot be empty", apperrors.ErrValidation)
		}
		account.Name = name
	}
	if req.Description != nil {
		account.Description = *req.Description
	}
	account.Touch(userID, s.Now())

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	s.LogInfo(ctx, "Account updated", slog.String("account_id", accountID))
	return account, nil
}

// DeactivateAccount soft-deletes an account. Accounts with child accounts, active or not, cannot be deactivated.
func (s *accountService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return err
	}
	if !account.IsActive {
		return nil
	}

	children, err := s.accountRepo.ListChildAccounts(ctx, accountID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list child accounts", slog.String("account_id", accountID))
		return fmt.Errorf("failed to list child accounts: %w", err)
	}
	if len(children) > 0 {
		return fmt.Errorf("%w: account %s has %d child account(s), first %s", apperrors.ErrValidation, account.Code, len(children), children[0].Code)
	}

	if err := s.accountRepo.DeactivateAccount(ctx, accountID, userID, s.Now()); err != nil {
		s.LogError(ctx, err, "Failed to deactivate account", slog.String("account_id", accountID))
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	s.LogInfo(ctx, "Account deactivated", slog.String("account_id", accountID))
	return nil
}

// RegisterBankAccount links a bank account to an existing active Asset ledger account.
func (s *accountService) RegisterBankAccount(ctx context.Context, req dto.CreateBankAccountRequest, creatorUserID string) (*domain.BankAccount, error) {
	ledgerAccount, err := s.GetAccountByID(ctx, req.LedgerAccountID)
	if err != nil {
		return nil, err
	}
	if ledgerAccount.AccountType != domain.Asset {
		return nil, fmt.Errorf("%w: bank accounts must be linked to an ASSET account, %s is %s",
			apperrors.ErrValidation, ledgerAccount.Code, ledgerAccount.AccountType)
	}
	if !ledgerAccount.IsActive {
		return nil, fmt.Errorf("%w: ledger account %s is inactive", apperrors.ErrValidation, ledgerAccount.Code)
	}

	bankAccount := domain.BankAccount{
		BankAccountID:   uuid.NewString(),
		Name:            strings.TrimSpace(req.Name),
		BankName:        strings.TrimSpace(req.BankName),
		AccountNumber:   strings.TrimSpace(req.AccountNumber),
		LedgerAccountID: ledgerAccount.AccountID,
		IsActive:        true,
		AuditFields:     domain.NewAuditFields(creatorUserID, s.Now()),
	}
	if err := s.bankAccountRepo.SaveBankAccount(ctx, bankAccount); err != nil {
		s.LogError(ctx, err, "Failed to save bank account", slog.String("ledger_account_id", ledgerAccount.AccountID))
		return nil, fmt.Errorf("failed to save bank account: %w", err)
	}
	s.LogInfo(ctx, "Bank account registered", slog.String("bank_account_id", bankAccount.BankAccountID))
	return &bankAccount, nil
}

// ListBankAccounts returns all registered bank accounts.
func (s *accountService) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	accounts, err := s.bankAccountRepo.ListBankAccounts(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to list bank accounts")
		return nil, fmt.Errorf("failed to list bank accounts: %w", err)
	}
	if accounts == nil {
		return []domain.BankAccount{}, nil
	}
	return accounts, nil
}
