package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	"github.com/SscSPs/realty_erp_accounting/internal/models"
	"github.com/SscSPs/realty_erp_accounting/internal/utils/mapping"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxPaymentPlanRepository struct {
	BaseRepository
}

// newPgxPaymentPlanRepository creates a new repository for payment plans and construction progress.
func newPgxPaymentPlanRepository(pool *pgxpool.Pool) portsrepo.PaymentPlanRepositoryFacade {
	return &PgxPaymentPlanRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PaymentPlanRepositoryFacade = (*PgxPaymentPlanRepository)(nil)

// FindActivePlanByFlatID loads the flat's ACTIVE plan and its milestones.
func (r *PgxPaymentPlanRepository) FindActivePlanByFlatID(ctx context.Context, flatID string) (*domain.PaymentPlan, error) {
	query := `
		SELECT plan_id, flat_id, customer_id, booking_id, customer_name, unit_number, project_name, status,
			created_at, created_by, last_updated_at, last_updated_by
		FROM payment_plans
		WHERE flat_id = $1 AND status = $2;`
	var p models.PaymentPlan
	err := r.db(ctx).QueryRow(ctx, query, flatID, string(domain.PlanActive)).Scan(
		&p.PlanID,
		&p.FlatID,
		&p.CustomerID,
		&p.BookingID,
		&p.CustomerName,
		&p.UnitNumber,
		&p.ProjectName,
		&p.Status,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	if err != nil {
		return nil, mapError(err, "failed to find active payment plan for flat %s", flatID)
	}

	milestoneQuery := `
		SELECT plan_id, sequence, description, construction_phase, required_phase_percentage, amount, status, triggered_at
		FROM payment_milestones
		WHERE plan_id = $1
		ORDER BY sequence;`
	rows, err := r.db(ctx).Query(ctx, milestoneQuery, p.PlanID)
	if err != nil {
		return nil, mapError(err, "failed to query milestones of plan %s", p.PlanID)
	}
	defer rows.Close()

	milestones := []models.PaymentMilestone{}
	for rows.Next() {
		var m models.PaymentMilestone
		if err := rows.Scan(&m.PlanID, &m.Sequence, &m.Description, &m.ConstructionPhase,
			&m.RequiredPhasePercentage, &m.Amount, &m.Status, &m.TriggeredAt); err != nil {
			return nil, mapError(err, "failed to scan milestone")
		}
		milestones = append(milestones, m)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "failed to read milestones of plan %s", p.PlanID)
	}

	plan := mapping.ToDomainPaymentPlan(p, milestones)
	return &plan, nil
}

// UpdateMilestoneStatus moves a milestone from one status to another.
// TRIGGERED stamps triggered_at.
func (r *PgxPaymentPlanRepository) UpdateMilestoneStatus(ctx context.Context, planID string, sequence int, from, to domain.MilestoneStatus, userID string, now time.Time) error {
	return r.withinTransaction(ctx, func(ctx context.Context) error {
		var triggeredAt *time.Time
		if to == domain.MilestoneTriggered {
			triggeredAt = &now
		}
		query := `
			UPDATE payment_milestones
			SET status = $1, triggered_at = COALESCE($2, triggered_at)
			WHERE plan_id = $3 AND sequence = $4 AND status = $5;`
		tag, err := r.db(ctx).Exec(ctx, query, string(to), triggeredAt, planID, sequence, string(from))
		if err != nil {
			return mapError(err, "failed to update milestone %d of plan %s", sequence, planID)
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: milestone %d of plan %s is not %s", apperrors.ErrConflict, sequence, planID, from)
		}

		_, err = r.db(ctx).Exec(ctx,
			`UPDATE payment_plans SET last_updated_at = $1, last_updated_by = $2 WHERE plan_id = $3;`,
			now, userID, planID)
		return mapError(err, "failed to touch payment plan %s", planID)
	})
}

// RecordProgress appends a construction progress report.
func (r *PgxPaymentPlanRepository) RecordProgress(ctx context.Context, progress domain.ConstructionProgress) error {
	m := mapping.ToModelConstructionProgress(progress)
	query := `
		INSERT INTO construction_progress (progress_id, flat_id, phase, phase_progress, overall_progress, reported_at, reported_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7);`
	_, err := r.db(ctx).Exec(ctx, query,
		m.ProgressID, m.FlatID, m.Phase, m.PhaseProgress, m.OverallProgress, m.ReportedAt, m.ReportedBy)
	return mapError(err, "failed to record construction progress for flat %s", m.FlatID)
}
