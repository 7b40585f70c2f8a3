package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus is the stored status of a journal entry.
type JournalStatus string

// JournalEntry is a row of the journal_entries table.
type JournalEntry struct {
	EntryID     string          `db:"entry_id"`
	EntryNumber string          `db:"entry_number"`
	EntryDate   time.Time       `db:"entry_date"`
	Narration   string          `db:"narration"`
	TotalDebit  decimal.Decimal `db:"total_debit"`
	TotalCredit decimal.Decimal `db:"total_credit"`
	Status      JournalStatus   `db:"status"`
	PostedAt    *time.Time      `db:"posted_at"`
	PostedBy    *string         `db:"posted_by"`
	ApprovedAt  *time.Time      `db:"approved_at"`
	ApprovedBy  *string         `db:"approved_by"`
	VoidedAt    *time.Time      `db:"voided_at"`
	VoidedBy    *string         `db:"voided_by"`
	VoidReason  *string         `db:"void_reason"`
	AuditFields
}

// JournalEntryLine is a row of the journal_entry_lines table.
type JournalEntryLine struct {
	LineID     string          `db:"line_id"`
	EntryID    string          `db:"entry_id"`
	AccountID  string          `db:"account_id"`
	Sequence   int             `db:"sequence"`
	Debit      decimal.Decimal `db:"debit"`
	Credit     decimal.Decimal `db:"credit"`
	CostCenter string          `db:"cost_center"`
	Memo       string          `db:"memo"`
}
