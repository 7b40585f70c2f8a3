package mapping

import (
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	"github.com/SscSPs/realty_erp_accounting/internal/models"
)

// ToModelAccount converts a domain Account to a model Account
func ToModelAccount(d domain.Account) models.Account {
	return models.Account{
		AccountID:       d.AccountID,
		Code:            d.Code,
		Name:            d.Name,
		AccountType:     models.AccountType(d.AccountType),
		ParentAccountID: nullableString(d.ParentAccountID),
		Description:     d.Description,
		OpeningBalance:  d.OpeningBalance,
		Balance:         d.Balance,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainAccount converts a model Account to a domain Account
func ToDomainAccount(m models.Account) domain.Account {
	return domain.Account{
		AccountID:       m.AccountID,
		Code:            m.Code,
		Name:            m.Name,
		AccountType:     domain.AccountType(m.AccountType),
		ParentAccountID: derefString(m.ParentAccountID),
		Description:     m.Description,
		OpeningBalance:  m.OpeningBalance,
		Balance:         m.Balance,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}

// ToDomainAccountSlice converts a slice of model Accounts to a slice of domain Accounts
func ToDomainAccountSlice(ms []models.Account) []domain.Account {
	ds := make([]domain.Account, len(ms))
	for i, m := range ms {
		ds[i] = ToDomainAccount(m)
	}
	return ds
}

// ToModelBankAccount converts a domain BankAccount to a model BankAccount
func ToModelBankAccount(d domain.BankAccount) models.BankAccount {
	return models.BankAccount{
		BankAccountID:   d.BankAccountID,
		Name:            d.Name,
		BankName:        d.BankName,
		AccountNumber:   d.AccountNumber,
		LedgerAccountID: d.LedgerAccountID,
		IsActive:        d.IsActive,
		AuditFields:     ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainBankAccount converts a model BankAccount to a domain BankAccount
func ToDomainBankAccount(m models.BankAccount) domain.BankAccount {
	return domain.BankAccount{
		BankAccountID:   m.BankAccountID,
		Name:            m.Name,
		BankName:        m.BankName,
		AccountNumber:   m.AccountNumber,
		LedgerAccountID: m.LedgerAccountID,
		IsActive:        m.IsActive,
		AuditFields:     ToDomainAuditFields(m.AuditFields),
	}
}
