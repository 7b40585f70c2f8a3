package pgsql

import (
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewRepositoryProvider builds every pgx-backed repository on a shared pool.
func NewRepositoryProvider(pool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:       &PgxTransactionManager{BaseRepository: BaseRepository{Pool: pool}},
		AccountRepo:     newPgxAccountRepository(pool),
		BankAccountRepo: newPgxBankAccountRepository(pool),
		JournalRepo:     newPgxJournalRepository(pool),
		PaymentPlanRepo: newPgxPaymentPlanRepository(pool),
		DemandDraftRepo: newPgxDemandDraftRepository(pool),
	}
}
