package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// JournalStatus indicates the state of a journal entry.
type JournalStatus string

const (
	Draft    JournalStatus = "DRAFT"
	Posted   JournalStatus = "POSTED"
	Approved JournalStatus = "APPROVED"
	Void     JournalStatus = "VOID"
)

// IsValid reports whether s is a known status.
func (s JournalStatus) IsValid() bool {
	switch s {
	case Draft, Posted, Approved, Void:
		return true
	}
	return false
}

// AffectsBalances reports whether lines of an entry in this status are reflected
// in account balances and ledgers.
func (s JournalStatus) AffectsBalances() bool {
	return s == Posted || s == Approved
}

// CanTransitionTo reports whether the state machine allows moving from s to next.
//
//	DRAFT -> POSTED -> APPROVED
//	           |
//	           +-> VOID
func (s JournalStatus) CanTransitionTo(next JournalStatus) bool {
	switch s {
	case Draft:
		return next == Posted
	case Posted:
		return next == Approved || next == Void
	}
	return false
}

// JournalEntry is a balanced set of debit and credit lines recorded on one date.
type JournalEntry struct {
	EntryID     string             `json:"entryID"`
	EntryNumber string             `json:"entryNumber"`
	EntryDate   time.Time          `json:"entryDate"`
	Narration   string             `json:"narration"`
	TotalDebit  decimal.Decimal    `json:"totalDebit"`
	TotalCredit decimal.Decimal    `json:"totalCredit"`
	Status      JournalStatus      `json:"status"`
	Lines       []JournalEntryLine `json:"lines,omitempty"`

	PostedAt   *time.Time `json:"postedAt,omitempty"`
	PostedBy   string     `json:"postedBy,omitempty"`
	ApprovedAt *time.Time `json:"approvedAt,omitempty"`
	ApprovedBy string     `json:"approvedBy,omitempty"`
	VoidedAt   *time.Time `json:"voidedAt,omitempty"`
	VoidedBy   string     `json:"voidedBy,omitempty"`
	VoidReason string     `json:"voidReason,omitempty"`
	AuditFields
}

// AccountIDs returns the distinct account ids referenced by the entry's lines, in line order.
func (e JournalEntry) AccountIDs() []string {
	seen := make(map[string]struct{}, len(e.Lines))
	ids := make([]string, 0, len(e.Lines))
	for _, l := range e.Lines {
		if _, ok := seen[l.AccountID]; ok {
			continue
		}
		seen[l.AccountID] = struct{}{}
		ids = append(ids, l.AccountID)
	}
	return ids
}

// JournalEntryLine is one debit or credit against a single account.
type JournalEntryLine struct {
	LineID     string          `json:"lineID"`
	EntryID    string          `json:"entryID"`
	AccountID  string          `json:"accountID"`
	Sequence   int             `json:"sequence"` // 1-based, ordering within the entry
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	CostCenter string          `json:"costCenter,omitempty"`
	Memo       string          `json:"memo,omitempty"`
}

// ProposedLine is an unvalidated journal line.
type ProposedLine struct {
	AccountID  string
	Debit      decimal.Decimal
	Credit     decimal.Decimal
	CostCenter string
	Memo       string
}

// ProposedEntry is the input to journal validation.
type ProposedEntry struct {
	EntryDate   time.Time
	Narration   string
	EntryNumber string // optional; generated when empty
	Lines       []ProposedLine
}

// ValidatedEntry is a proposal that passed validation, with computed totals and
// an entry number.
type ValidatedEntry struct {
	EntryNumber string
	EntryDate   time.Time
	Narration   string
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Lines       []ProposedLine
}

// ListJournalEntriesParams filters and pages journal entry listings.
type ListJournalEntriesParams struct {
	Status    JournalStatus
	From      *time.Time
	To        *time.Time
	Limit     int
	NextToken *string
}
