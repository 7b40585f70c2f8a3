package services

import (
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/realty_erp_accounting/internal/core/ports/services"
	"github.com/SscSPs/realty_erp_accounting/internal/platform/config"
)

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	container.Account = NewAccountService(repos.AccountRepo, repos.BankAccountRepo)

	container.Journal = NewJournalService(
		repos.TxManager,
		repos.JournalRepo,
		repos.AccountRepo,
		WithEntryNumberPrefix(cfg.EntryNumberPrefix),
	)

	container.Ledger = NewLedgerService(
		repos.AccountRepo,
		repos.BankAccountRepo,
		repos.JournalRepo,
		WithCashAccountCode(cfg.CashAccountCode),
	)

	container.Milestone = NewMilestoneService(
		repos.TxManager,
		repos.PaymentPlanRepo,
		repos.DemandDraftRepo,
		WithDemandDraftDueDays(cfg.DemandDraftDueDays),
	)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.AccountSvcFacade = (*accountService)(nil)
	_ portssvc.JournalSvcFacade = (*journalService)(nil)
	_ portssvc.LedgerSvc        = (*ledgerService)(nil)
	_ portssvc.MilestoneSvc     = (*milestoneService)(nil)
)
