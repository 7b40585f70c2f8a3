package pgsql

import (
	"context"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/SscSPs/realty_erp_accounting/internal/models"
	"github.com/SscSPs/realty_erp_accounting/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const bankAccountColumns = `bank_account_id, name, bank_name, account_number, ledger_account_id, is_active,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxBankAccountRepository struct {
	BaseRepository
}

func newPgxBankAccountRepository(pool *pgxpool.Pool) portsrepo.BankAccountRepository {
	return &PgxBankAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.BankAccountRepository = (*PgxBankAccountRepository)(nil)

func scanBankAccount(row pgx.Row) (models.BankAccount, error) {
	var m models.BankAccount
	err := row.Scan(&m.BankAccountID, &m.Name, &m.BankName, &m.AccountNumber, &m.LedgerAccountID, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy)
	return m, err
}

func (r *PgxBankAccountRepository) SaveBankAccount(ctx context.Context, bankAccount domain.BankAccount) error {
	m := mapping.ToModelBankAccount(bankAccount)
	query := `INSERT INTO bank_accounts (` + bankAccountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);`
	_, err := r.db(ctx).Exec(ctx, query, m.BankAccountID, m.Name, m.BankName, m.AccountNumber, m.LedgerAccountID,
		m.IsActive, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy)
	return mapError(err, "failed to save bank account %s", m.Name)
}

func (r *PgxBankAccountRepository) FindBankAccountByID(ctx context.Context, bankAccountID string) (*domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts WHERE bank_account_id = $1;`
	m, err := scanBankAccount(r.db(ctx).QueryRow(ctx, query, bankAccountID))
	if err != nil {
		return nil, mapError(err, "failed to find bank account %s", bankAccountID)
	}
	ba := mapping.ToDomainBankAccount(m)
	return &ba, nil
}

func (r *PgxBankAccountRepository) ListBankAccounts(ctx context.Context) ([]domain.BankAccount, error) {
	query := `SELECT ` + bankAccountColumns + ` FROM bank_accounts ORDER BY name;`
	rows, err := r.db(ctx).Query(ctx, query)
	if err != nil {
		return nil, mapError(err, "failed to list bank accounts")
	}
	defer rows.Close()

	bankAccounts := []domain.BankAccount{}
	for rows.Next() {
		m, err := scanBankAccount(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan bank account")
		}
		bankAccounts = append(bankAccounts, mapping.ToDomainBankAccount(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to read bank accounts")
	}
	return bankAccounts, nil
}
