package accounting

import (
	"fmt"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	"github.com/shopspring/decimal"
)

// AmountScale is the number of decimal places amounts are stored with.
const AmountScale int32 = 2

// BalanceTolerance is the largest allowed difference between total debits and credits.
var BalanceTolerance = decimal.RequireFromString("0.01")

// RoundAmount rounds an amount to AmountScale decimal places.
func RoundAmount(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

// SumProposedLines totals the debit and credit columns of proposed lines.
func SumProposedLines(lines []domain.ProposedLine) (decimal.Decimal, decimal.Decimal) {
	debit, credit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// CheckBalanced fails with ErrImbalancedEntry when |debit - credit| exceeds BalanceTolerance.
func CheckBalanced(totalDebit, totalCredit decimal.Decimal) error {
	diff := totalDebit.Sub(totalCredit).Abs()
	if diff.GreaterThan(BalanceTolerance) {
		return fmt.Errorf("%w: total debit %s, total credit %s, difference %s",
			apperrors.ErrImbalancedEntry, totalDebit.StringFixed(AmountScale), totalCredit.StringFixed(AmountScale), diff.String())
	}
	return nil
}

// BalanceChanges computes the net balance change per account that applying lines
// produces, using each account's sign rule. With reverse set the changes are
// negated, which is exactly what a void must apply.
func BalanceChanges(lines []domain.JournalEntryLine, accounts map[string]domain.Account, reverse bool) (map[string]decimal.Decimal, error) {
	changes := make(map[string]decimal.Decimal, len(accounts))
	for _, line := range lines {
		acc, ok := accounts[line.AccountID]
		if !ok {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrUnknownAccount, line.AccountID)
		}
		effect := acc.AccountType.NetEffect(line.Debit, line.Credit)
		if reverse {
			effect = effect.Neg()
		}
		changes[line.AccountID] = changes[line.AccountID].Add(effect)
	}
	return changes, nil
}
