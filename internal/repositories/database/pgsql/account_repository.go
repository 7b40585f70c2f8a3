package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/SscSPs/realty_erp_accounting/internal/models"
	"github.com/SscSPs/realty_erp_accounting/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, code, name, account_type, parent_account_id, description,
	opening_balance, balance, is_active, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Code,
		&m.Name,
		&m.AccountType,
		&m.ParentAccountID,
		&m.Description,
		&m.OpeningBalance,
		&m.Balance,
		&m.IsActive,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	defer rows.Close()
	ms := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		ms = append(ms, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);`

	_, err := r.db(ctx).Exec(ctx, query,
		m.AccountID,
		m.Code,
		m.Name,
		m.AccountType,
		m.ParentAccountID,
		m.Description,
		m.OpeningBalance,
		m.Balance,
		m.IsActive,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	return mapError(err, "failed to save account %s", m.Code)
}

// FindAccountByID retrieves an account by its ID.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	m, err := scanAccount(r.db(ctx).QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, mapError(err, "failed to find account %s", accountID)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountByCode retrieves an account by its unique code.
func (r *PgxAccountRepository) FindAccountByCode(ctx context.Context, code string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE code = $1;`
	m, err := scanAccount(r.db(ctx).QueryRow(ctx, query, code))
	if err != nil {
		return nil, mapError(err, "failed to find account by code %s", code)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountsByIDs retrieves the accounts that exist among accountIDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	return r.findAccountsByIDs(ctx, accountIDs, false)
}

// FindAccountsByIDsForUpdate locks the rows in account_id order so concurrent
// postings touching the same accounts cannot deadlock.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if _, ok := ctx.Value(txCtxKey{}).(pgx.Tx); !ok {
		return nil, apperrors.NewStorageError("row locks require a transaction", nil)
	}
	return r.findAccountsByIDs(ctx, accountIDs, true)
}

func (r *PgxAccountRepository) findAccountsByIDs(ctx context.Context, accountIDs []string, forUpdate bool) (map[string]domain.Account, error) {
	result := make(map[string]domain.Account, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	rows, err := r.db(ctx).Query(ctx, query, accountIDs)
	if err != nil {
		return nil, mapError(err, "failed to query accounts")
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, mapError(err, "failed to scan accounts")
	}
	for _, acc := range accounts {
		result[acc.AccountID] = acc
	}
	return result, nil
}

// ListAccounts retrieves a page of accounts ordered by code.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, limit int, offset int) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY code LIMIT $1 OFFSET $2;`
	rows, err := r.db(ctx).Query(ctx, query, limit, offset)
	if err != nil {
		return nil, mapError(err, "failed to list accounts")
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, mapError(err, "failed to scan accounts")
	}
	return accounts, nil
}

// ListChildAccounts retrieves the direct children of parentAccountID ordered by code.
func (r *PgxAccountRepository) ListChildAccounts(ctx context.Context, parentAccountID string) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE parent_account_id = $1 ORDER BY code;`
	rows, err := r.db(ctx).Query(ctx, query, parentAccountID)
	if err != nil {
		return nil, mapError(err, "failed to list child accounts of %s", parentAccountID)
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, mapError(err, "failed to scan child accounts")
	}
	return accounts, nil
}

// UpdateAccount updates an account's name and description.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts
		SET name = $1, description = $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $5;`
	tag, err := r.db(ctx).Exec(ctx, query,
		account.Name, account.Description, account.LastUpdatedAt, account.LastUpdatedBy, account.AccountID)
	if err != nil {
		return mapError(err, "failed to update account %s", account.AccountID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", account.AccountID, apperrors.ErrNotFound)
	}
	return nil
}

// DeactivateAccount marks an account as inactive.
func (r *PgxAccountRepository) DeactivateAccount(ctx context.Context, accountID string, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET is_active = FALSE, last_updated_at = $1, last_updated_by = $2
		WHERE account_id = $3;`
	tag, err := r.db(ctx).Exec(ctx, query, now, userID, accountID)
	if err != nil {
		return mapError(err, "failed to deactivate account %s", accountID)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", accountID, apperrors.ErrNotFound)
	}
	return nil
}

// ApplyBalanceChanges adds each delta to the stored balance in one batch.
func (r *PgxAccountRepository) ApplyBalanceChanges(ctx context.Context, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	if len(balanceChanges) == 0 {
		return nil
	}
	if _, ok := ctx.Value(txCtxKey{}).(pgx.Tx); !ok {
		return apperrors.NewStorageError("balance changes require a transaction", nil)
	}

	ids := make([]string, 0, len(balanceChanges))
	for id := range balanceChanges {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	query := `
		UPDATE accounts
		SET balance = balance + $1, last_updated_at = $2, last_updated_by = $3
		WHERE account_id = $4;`
	batch := &pgx.Batch{}
	for _, id := range ids {
		batch.Queue(query, balanceChanges[id], now, userID, id)
	}

	br := r.db(ctx).SendBatch(ctx, batch)
	defer br.Close()
	for _, id := range ids {
		tag, err := br.Exec()
		if err != nil {
			return mapError(err, "failed to update balance of account %s", id)
		}
		if tag.RowsAffected() != 1 {
			return fmt.Errorf("%w: %s", apperrors.ErrAccountNotFound, id)
		}
	}
	return nil
}
