package mapping

import (
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	"github.com/SscSPs/realty_erp_accounting/internal/models"
)

// ToModelJournalEntry converts a domain JournalEntry header to a model JournalEntry
func ToModelJournalEntry(d domain.JournalEntry) models.JournalEntry {
	return models.JournalEntry{
		EntryID:     d.EntryID,
		EntryNumber: d.EntryNumber,
		EntryDate:   d.EntryDate,
		Narration:   d.Narration,
		TotalDebit:  d.TotalDebit,
		TotalCredit: d.TotalCredit,
		Status:      models.JournalStatus(d.Status),
		PostedAt:    d.PostedAt,
		PostedBy:    nullableString(d.PostedBy),
		ApprovedAt:  d.ApprovedAt,
		ApprovedBy:  nullableString(d.ApprovedBy),
		VoidedAt:    d.VoidedAt,
		VoidedBy:    nullableString(d.VoidedBy),
		VoidReason:  nullableString(d.VoidReason),
		AuditFields: ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainJournalEntry converts a model JournalEntry and its lines to a domain JournalEntry
func ToDomainJournalEntry(m models.JournalEntry, lines []models.JournalEntryLine) domain.JournalEntry {
	return domain.JournalEntry{
		EntryID:     m.EntryID,
		EntryNumber: m.EntryNumber,
		EntryDate:   m.EntryDate,
		Narration:   m.Narration,
		TotalDebit:  m.TotalDebit,
		TotalCredit: m.TotalCredit,
		Status:      domain.JournalStatus(m.Status),
		Lines:       ToDomainJournalEntryLineSlice(lines),
		PostedAt:    m.PostedAt,
		PostedBy:    derefString(m.PostedBy),
		ApprovedAt:  m.ApprovedAt,
		ApprovedBy:  derefString(m.ApprovedBy),
		VoidedAt:    m.VoidedAt,
		VoidedBy:    derefString(m.VoidedBy),
		VoidReason:  derefString(m.VoidReason),
		AuditFields: ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelJournalEntryLine converts a domain JournalEntryLine to a model JournalEntryLine
func ToModelJournalEntryLine(d domain.JournalEntryLine) models.JournalEntryLine {
	return models.JournalEntryLine{
		LineID:     d.LineID,
		EntryID:    d.EntryID,
		AccountID:  d.AccountID,
		Sequence:   d.Sequence,
		Debit:      d.Debit,
		Credit:     d.Credit,
		CostCenter: d.CostCenter,
		Memo:       d.Memo,
	}
}

// ToDomainJournalEntryLineSlice converts model lines to domain lines
func ToDomainJournalEntryLineSlice(ms []models.JournalEntryLine) []domain.JournalEntryLine {
	if ms == nil {
		return nil
	}
	ds := make([]domain.JournalEntryLine, len(ms))
	for i, m := range ms {
		ds[i] = domain.JournalEntryLine{
			LineID:     m.LineID,
			EntryID:    m.EntryID,
			AccountID:  m.AccountID,
			Sequence:   m.Sequence,
			Debit:      m.Debit,
			Credit:     m.Credit,
			CostCenter: m.CostCenter,
			Memo:       m.Memo,
		}
	}
	return ds
}
