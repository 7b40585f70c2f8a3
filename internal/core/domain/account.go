package domain

import (
	"github.com/shopspring/decimal"
)

// AccountType defines the fundamental accounting type of an account.
type AccountType string

const (
	Asset     AccountType = "ASSET"
	Liability AccountType = "LIABILITY"
	Equity    AccountType = "EQUITY"
	Income    AccountType = "INCOME"
	Expense   AccountType = "EXPENSE"
)

// IsValid reports whether t is one of the five account types.
func (t AccountType) IsValid() bool {
	switch t {
	case Asset, Liability, Equity, Income, Expense:
		return true
	}
	return false
}

// IsDebitNormal reports whether debits increase the balance of accounts of this type.
func (t AccountType) IsDebitNormal() bool {
	return t == Asset || t == Expense
}

// NetEffect returns the change a line with the given debit and credit makes to
// the balance of an account of this type.
//
// Asset and Expense: debit - credit. Liability, Equity and Income: credit - debit.
func (t AccountType) NetEffect(debit, credit decimal.Decimal) decimal.Decimal {
	if t.IsDebitNormal() {
		return debit.Sub(credit)
	}
	return credit.Sub(debit)
}

// Account is one node of the chart of accounts. The hierarchy is stored flat,
// each account pointing at its parent by id.
type Account struct {
	AccountID       string          `json:"accountID"`
	Code            string          `json:"code"` // unique, sortable human code
	Name            string          `json:"name"`
	AccountType     AccountType     `json:"accountType"`
	ParentAccountID string          `json:"parentAccountID,omitempty"` // empty for root accounts
	Description     string          `json:"description"`
	OpeningBalance  decimal.Decimal `json:"openingBalance"`
	Balance         decimal.Decimal `json:"balance"` // opening balance plus every posted line
	IsActive        bool            `json:"isActive"`
	AuditFields
}

// BankAccount maps a physical bank account to the ledger account that books its movements.
type BankAccount struct {
	BankAccountID   string `json:"bankAccountID"`
	Name            string `json:"name"`
	BankName        string `json:"bankName"`
	AccountNumber   string `json:"accountNumber"`
	LedgerAccountID string `json:"ledgerAccountID"`
	IsActive        bool   `json:"isActive"`
	AuditFields
}
