package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerLine is a posted journal line joined with its entry header, as read for ledgers.
type LedgerLine struct {
	EntryID     string
	EntryNumber string
	EntryDate   time.Time
	Narration   string
	Sequence    int
	Debit       decimal.Decimal
	Credit      decimal.Decimal
}

// LedgerRow is one row of an account ledger with the running balance after it.
type LedgerRow struct {
	Date        time.Time       `json:"date"`
	EntryID     string          `json:"entryID,omitempty"`
	EntryNumber string          `json:"entryNumber,omitempty"`
	Narration   string          `json:"narration"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Balance     decimal.Decimal `json:"balance"`
}

// Ledger is the running-balance statement of one account over a date range.
// Entries starts with the opening-balance row.
type Ledger struct {
	Account        Account         `json:"account"`
	StartDate      time.Time       `json:"startDate"`
	EndDate        time.Time       `json:"endDate"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	Entries        []LedgerRow     `json:"entries"`
}

// WeeklyEntry summarises one journal entry in a weekly ledger.
type WeeklyEntry struct {
	EntryID     string          `json:"entryID"`
	EntryNumber string          `json:"entryNumber"`
	EntryDate   time.Time       `json:"entryDate"`
	Narration   string          `json:"narration"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
}

// WeeklySummary aggregates balance-affecting entries dated within one ISO-8601 week.
type WeeklySummary struct {
	ISOYear     int             `json:"isoYear"`
	ISOWeek     int             `json:"isoWeek"`
	WeekStart   time.Time       `json:"weekStart"` // Monday
	WeekEnd     time.Time       `json:"weekEnd"`   // Sunday, inclusive
	EntryCount  int             `json:"entryCount"`
	TotalDebit  decimal.Decimal `json:"totalDebit"`
	TotalCredit decimal.Decimal `json:"totalCredit"`
	Entries     []WeeklyEntry   `json:"entries"`
}

// TrialBalanceRow represents a single account row in a trial balance report.
type TrialBalanceRow struct {
	AccountID   string          `json:"accountID"`
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	AccountType AccountType     `json:"accountType"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
}

// TrialBalance lists every active account's balance in its debit or credit column.
type TrialBalance struct {
	AsOf        time.Time         `json:"asOf"`
	Rows        []TrialBalanceRow `json:"rows"`
	TotalDebit  decimal.Decimal   `json:"totalDebit"`
	TotalCredit decimal.Decimal   `json:"totalCredit"`
}

// IsBalanced reports whether both columns total the same amount.
func (tb TrialBalance) IsBalanced() bool {
	return tb.TotalDebit.Equal(tb.TotalCredit)
}
