package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// JournalLineRequest is one line of a proposed journal entry.
type JournalLineRequest struct {
	AccountID  string          `json:"accountID" binding:"required"`
	Debit      decimal.Decimal `json:"debit" binding:"decimal_nonneg"`
	Credit     decimal.Decimal `json:"credit" binding:"decimal_nonneg"`
	CostCenter string          `json:"costCenter" binding:"max=64"`
	Memo       string          `json:"memo" binding:"max=255"`
}

// JournalEntryRequest is the body of validate, create and draft update calls.
type JournalEntryRequest struct {
	EntryDate   string               `json:"entryDate" binding:"required,datetime=2006-01-02"`
	Narration   string               `json:"narration" binding:"max=500"`
	EntryNumber string               `json:"entryNumber" binding:"omitempty,max=40"`
	Lines       []JournalLineRequest `json:"lines" binding:"required,min=1,dive"`
}

// ToProposedEntry converts the request into the validator's input.
func (r JournalEntryRequest) ToProposedEntry() (domain.ProposedEntry, error) {
	date, err := time.Parse(DateLayout, r.EntryDate)
	if err != nil {
		return domain.ProposedEntry{}, fmt.Errorf("%w: entryDate must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	lines := make([]domain.ProposedLine, len(r.Lines))
	for i, l := range r.Lines {
		lines[i] = domain.ProposedLine{
			AccountID:  strings.TrimSpace(l.AccountID),
			Debit:      l.Debit,
			Credit:     l.Credit,
			CostCenter: l.CostCenter,
			Memo:       l.Memo,
		}
	}
	return domain.ProposedEntry{
		EntryDate:   date,
		Narration:   strings.TrimSpace(r.Narration),
		EntryNumber: strings.TrimSpace(r.EntryNumber),
		Lines:       lines,
	}, nil
}

// VoidJournalEntryRequest carries the mandatory void reason.
type VoidJournalEntryRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// JournalLineResponse defines the data returned for a journal line.
type JournalLineResponse struct {
	LineID     string          `json:"lineID,omitempty"`
	AccountID  string          `json:"accountID"`
	Sequence   int             `json:"sequence"`
	Debit      decimal.Decimal `json:"debit"`
	Credit     decimal.Decimal `json:"credit"`
	CostCenter string          `json:"costCenter,omitempty"`
	Memo       string          `json:"memo,omitempty"`
}

// JournalEntryResponse defines the data returned for a journal entry.
type JournalEntryResponse struct {
	EntryID     string                `json:"entryID"`
	EntryNumber string                `json:"entryNumber"`
	EntryDate   string                `json:"entryDate"`
	Narration   string                `json:"narration"`
	TotalDebit  decimal.Decimal       `json:"totalDebit"`
	TotalCredit decimal.Decimal       `json:"totalCredit"`
	Status      domain.JournalStatus  `json:"status"`
	Lines       []JournalLineResponse `json:"lines,omitempty"`
	CreatedAt   time.Time             `json:"createdAt"`
	CreatedBy   string                `json:"createdBy"`
	PostedAt    *time.Time            `json:"postedAt,omitempty"`
	PostedBy    string                `json:"postedBy,omitempty"`
	ApprovedAt  *time.Time            `json:"approvedAt,omitempty"`
	ApprovedBy  string                `json:"approvedBy,omitempty"`
	VoidedAt    *time.Time            `json:"voidedAt,omitempty"`
	VoidedBy    string                `json:"voidedBy,omitempty"`
	VoidReason  string                `json:"voidReason,omitempty"`
}

// ToJournalEntryResponse converts a domain.JournalEntry to its response DTO.
func ToJournalEntryResponse(e *domain.JournalEntry) JournalEntryResponse {
	lines := make([]JournalLineResponse, len(e.Lines))
	for i, l := range e.Lines {
		lines[i] = JournalLineResponse{
			LineID:     l.LineID,
			AccountID:  l.AccountID,
			Sequence:   l.Sequence,
			Debit:      l.Debit,
			Credit:     l.Credit,
			CostCenter: l.CostCenter,
			Memo:       l.Memo,
		}
	}
	return JournalEntryResponse{
		EntryID:     e.EntryID,
		EntryNumber: e.EntryNumber,
		EntryDate:   e.EntryDate.Format(DateLayout),
		Narration:   e.Narration,
		TotalDebit:  e.TotalDebit,
		TotalCredit: e.TotalCredit,
		Status:      e.Status,
		Lines:       lines,
		CreatedAt:   e.CreatedAt,
		CreatedBy:   e.CreatedBy,
		PostedAt:    e.PostedAt,
		PostedBy:    e.PostedBy,
		ApprovedAt:  e.ApprovedAt,
		ApprovedBy:  e.ApprovedBy,
		VoidedAt:    e.VoidedAt,
		VoidedBy:    e.VoidedBy,
		VoidReason:  e.VoidReason,
	}
}

// ValidatedEntryResponse is returned by the validate endpoint.
type ValidatedEntryResponse struct {
	EntryNumber string                `json:"entryNumber"`
	EntryDate   string                `json:"entryDate"`
	Narration   string                `json:"narration"`
	TotalDebit  decimal.Decimal       `json:"totalDebit"`
	TotalCredit decimal.Decimal       `json:"totalCredit"`
	Lines       []JournalLineResponse `json:"lines"`
}

// ToValidatedEntryResponse converts a domain.ValidatedEntry to its response DTO.
func ToValidatedEntryResponse(v *domain.ValidatedEntry) ValidatedEntryResponse {
	lines := make([]JournalLineResponse, len(v.Lines))
	for i, l := range v.Lines {
		lines[i] = JournalLineResponse{
			AccountID:  l.AccountID,
			Sequence:   i + 1,
			Debit:      l.Debit,
			Credit:     l.Credit,
			CostCenter: l.CostCenter,
			Memo:       l.Memo,
		}
	}
	return ValidatedEntryResponse{
		EntryNumber: v.EntryNumber,
		EntryDate:   v.EntryDate.Format(DateLayout),
		Narration:   v.Narration,
		TotalDebit:  v.TotalDebit,
		TotalCredit: v.TotalCredit,
		Lines:       lines,
	}
}

// ListJournalEntriesParams defines query parameters for listing journal entries.
type ListJournalEntriesParams struct {
	Status    string  `form:"status" binding:"omitempty,oneof=DRAFT POSTED APPROVED VOID"`
	From      string  `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string  `form:"to" binding:"omitempty,datetime=2006-01-02"`
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string `form:"nextToken"`
}

// ToDomain converts the query into repository parameters.
func (p ListJournalEntriesParams) ToDomain() (domain.ListJournalEntriesParams, error) {
	out := domain.ListJournalEntriesParams{
		Status:    domain.JournalStatus(p.Status),
		Limit:     p.Limit,
		NextToken: p.NextToken,
	}
	if p.From != "" {
		from, err := time.Parse(DateLayout, p.From)
		if err != nil {
			return out, fmt.Errorf("%w: from must be YYYY-MM-DD", apperrors.ErrValidation)
		}
		out.From = &from
	}
	if p.To != "" {
		to, err := time.Parse(DateLayout, p.To)
		if err != nil {
			return out, fmt.Errorf("%w: to must be YYYY-MM-DD", apperrors.ErrValidation)
		}
		out.To = &to
	}
	return out, nil
}

// ListJournalEntriesResponse is a page of journal entries.
type ListJournalEntriesResponse struct {
	Entries   []JournalEntryResponse `json:"entries"`
	NextToken *string                `json:"nextToken,omitempty"`
}
