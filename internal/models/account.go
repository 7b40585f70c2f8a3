package models

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

// Account is a row of the accounts table.
type Account struct {
	AccountID       string          `db:"account_id"`
	Code            string          `db:"code"`
	Name            string          `db:"name"`
	AccountType     AccountType     `db:"account_type"`
	ParentAccountID *string         `db:"parent_account_id"` // Nullable
	Description     string          `db:"description"`
	OpeningBalance  decimal.Decimal `db:"opening_balance"`
	Balance         decimal.Decimal `db:"balance"`
	IsActive        bool            `db:"is_active"`
	AuditFields
}

// BankAccount is a row of the bank_accounts table.
type BankAccount struct {
	BankAccountID   string `db:"bank_account_id"`
	Name            string `db:"name"`
	BankName        string `db:"bank_name"`
	AccountNumber   string `db:"account_number"`
	LedgerAccountID string `db:"ledger_account_id"`
	IsActive        bool   `db:"is_active"`
	AuditFields
}
