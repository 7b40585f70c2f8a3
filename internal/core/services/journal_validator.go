package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/SscSPs/realty_erp_accounting/internal/utils/accounting"
)

// journalValidator checks proposed entries. It only reads from storage.
type journalValidator struct {
	accounts portsrepo.AccountReader
	journals portsrepo.JournalReader
	numbers  *entryNumberGenerator
}

// validate checks structure, balance and account references, then assigns an entry
// number. keepNumber is the number an edited draft already owns; it is not treated
// as a collision.
func (v *journalValidator) validate(ctx context.Context, proposal domain.ProposedEntry, keepNumber string) (*domain.ValidatedEntry, error) {
	if proposal.EntryDate.IsZero() {
		return nil, fmt.Errorf("%w: entry date is required", apperrors.ErrValidation)
	}
	if len(proposal.Lines) < 2 {
		return nil, fmt.Errorf("%w: a journal entry needs at least two lines", apperrors.ErrValidation)
	}

	lines := make([]domain.ProposedLine, len(proposal.Lines))
	for i, l := range proposal.Lines {
		if l.AccountID == "" {
			return nil, fmt.Errorf("%w: line %d has no account", apperrors.ErrValidation, i+1)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return nil, fmt.Errorf("%w: line %d has a negative amount", apperrors.ErrValidation, i+1)
		}
		l.Debit = accounting.RoundAmount(l.Debit)
		l.Credit = accounting.RoundAmount(l.Credit)
		if l.Debit.IsPositive() == l.Credit.IsPositive() {
			return nil, fmt.Errorf("%w: line %d must have exactly one of debit or credit", apperrors.ErrValidation, i+1)
		}
		lines[i] = l
	}

	totalDebit, totalCredit := accounting.SumProposedLines(lines)
	if err := accounting.CheckBalanced(totalDebit, totalCredit); err != nil {
		return nil, err
	}

	if err := v.checkAccounts(ctx, lines); err != nil {
		return nil, err
	}

	entryDate := domain.DateOnly(proposal.EntryDate)
	number, err := v.assignNumber(ctx, proposal.EntryNumber, keepNumber, entryDate)
	if err != nil {
		return nil, err
	}

	return &domain.ValidatedEntry{
		EntryNumber: number,
		EntryDate:   entryDate,
		Narration:   proposal.Narration,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
		Lines:       lines,
	}, nil
}

func (v *journalValidator) checkAccounts(ctx context.Context, lines []domain.ProposedLine) error {
	ids := make([]string, 0, len(lines))
	seen := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		if _, ok := seen[l.AccountID]; !ok {
			seen[l.AccountID] = struct{}{}
			ids = append(ids, l.AccountID)
		}
	}

	accounts, err := v.accounts.FindAccountsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load line accounts: %w", err)
	}

	var missing, inactive []string
	for _, id := range ids {
		acc, ok := accounts[id]
		switch {
		case !ok:
			missing = append(missing, id)
		case !acc.IsActive:
			inactive = append(inactive, acc.Code)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, strings.Join(missing, ", "))
	}
	if len(inactive) > 0 {
		return fmt.Errorf("%w: inactive accounts %s", apperrors.ErrValidation, strings.Join(inactive, ", "))
	}
	return nil
}

func (v *journalValidator) assignNumber(ctx context.Context, requested, keepNumber string, entryDate time.Time) (string, error) {
	if requested == "" {
		if keepNumber != "" {
			return keepNumber, nil
		}
		return v.numbers.Next(ctx, entryDate)
	}
	if requested == keepNumber {
		return requested, nil
	}
	taken, err := v.journals.EntryNumberExists(ctx, requested)
	if err != nil {
		return "", fmt.Errorf("failed to check entry number: %w", err)
	}
	if taken {
		return "", fmt.Errorf("%w: entry number %s", apperrors.ErrDuplicate, requested)
	}
	return requested, nil
}
