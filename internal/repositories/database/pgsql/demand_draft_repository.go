package pgsql

import (
	"context"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/SscSPs/realty_erp_accounting/internal/models"
	"github.com/SscSPs/realty_erp_accounting/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const demandDraftColumns = `demand_draft_id, flat_id, customer_id, booking_id, plan_id, milestone_sequence,
	title, amount, due_date, status, content, auto_generated,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxDemandDraftRepository struct {
	BaseRepository
}

func newPgxDemandDraftRepository(pool *pgxpool.Pool) portsrepo.DemandDraftRepository {
	return &PgxDemandDraftRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.DemandDraftRepository = (*PgxDemandDraftRepository)(nil)

func scanDemandDraft(row pgx.Row) (models.DemandDraft, error) {
	var m models.DemandDraft
	err := row.Scan(
		&m.DemandDraftID,
		&m.FlatID,
		&m.CustomerID,
		&m.BookingID,
		&m.PlanID,
		&m.MilestoneSequence,
		&m.Title,
		&m.Amount,
		&m.DueDate,
		&m.Status,
		&m.Content,
		&m.AutoGenerated,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// FindDemandDraftByMilestone returns the draft for a flat's milestone.
func (r *PgxDemandDraftRepository) FindDemandDraftByMilestone(ctx context.Context, flatID string, milestoneSequence int) (*domain.DemandDraft, error) {
	query := `SELECT ` + demandDraftColumns + ` FROM demand_drafts WHERE flat_id = $1 AND milestone_sequence = $2;`
	m, err := scanDemandDraft(r.db(ctx).QueryRow(ctx, query, flatID, milestoneSequence))
	if err != nil {
		return nil, mapError(err, "failed to find demand draft for flat %s milestone %d", flatID, milestoneSequence)
	}
	draft := mapping.ToDomainDemandDraft(m)
	return &draft, nil
}

// SaveDemandDraft inserts the draft, leaving an existing one for the same milestone untouched.
func (r *PgxDemandDraftRepository) SaveDemandDraft(ctx context.Context, draft domain.DemandDraft) (bool, error) {
	m := mapping.ToModelDemandDraft(draft)
	query := `INSERT INTO demand_drafts (` + demandDraftColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		ON CONFLICT (flat_id, milestone_sequence) DO NOTHING;`
	tag, err := r.db(ctx).Exec(ctx, query,
		m.DemandDraftID,
		m.FlatID,
		m.CustomerID,
		m.BookingID,
		m.PlanID,
		m.MilestoneSequence,
		m.Title,
		m.Amount,
		m.DueDate,
		m.Status,
		m.Content,
		m.AutoGenerated,
		m.CreatedAt,
		m.CreatedBy,
		m.LastUpdatedAt,
		m.LastUpdatedBy,
	)
	if err != nil {
		return false, mapError(err, "failed to save demand draft for flat %s milestone %d", m.FlatID, m.MilestoneSequence)
	}
	return tag.RowsAffected() == 1, nil
}

// ListDemandDraftsByFlat returns a flat's drafts ordered by milestone sequence.
func (r *PgxDemandDraftRepository) ListDemandDraftsByFlat(ctx context.Context, flatID string) ([]domain.DemandDraft, error) {
	query := `SELECT ` + demandDraftColumns + ` FROM demand_drafts WHERE flat_id = $1 ORDER BY milestone_sequence;`
	rows, err := r.db(ctx).Query(ctx, query, flatID)
	if err != nil {
		return nil, mapError(err, "failed to list demand drafts for flat %s", flatID)
	}
	defer rows.Close()

	drafts := []domain.DemandDraft{}
	for rows.Next() {
		m, err := scanDemandDraft(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan demand draft")
		}
		drafts = append(drafts, mapping.ToDomainDemandDraft(m))
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to read demand drafts for flat %s", flatID)
	}
	return drafts, nil
}
