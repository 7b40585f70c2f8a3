package repositories

// RepositoryProvider holds all repository interfaces needed by services.
// This makes passing dependencies to the service container constructor cleaner.
type RepositoryProvider struct {
	TxManager       TransactionManager
	AccountRepo     AccountRepositoryFacade
	BankAccountRepo BankAccountRepository
	JournalRepo     JournalRepositoryFacade
	PaymentPlanRepo PaymentPlanRepositoryFacade
	DemandDraftRepo DemandDraftRepository
}
