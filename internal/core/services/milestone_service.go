package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"text/template"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portsrepo "github.com/SscSPs/realty_erp_accounting/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/realty_erp_accounting/internal/core/ports/services"
	"github.com/SscSPs/realty_erp_accounting/internal/utils"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const defaultDemandDraftDueDays = 30

var demandDraftTemplate = template.Must(template.New("demand_draft").Parse(
	`PAYMENT DEMAND

Dear {{.CustomerName}},

Construction of {{.ProjectName}} has reached the stage "{{.Milestone}}" for unit {{.UnitNumber}}.
As per your payment plan, the installment below is now due.

Booking reference: {{.BookingID}}
Milestone:         {{.Sequence}}. {{.Milestone}}
Amount due:        {{.Amount}}
Due date:          {{.DueDate}}

Payment plan summary
  Total:       {{.PlanTotal}}
  Paid:        {{.PlanPaid}}
  Outstanding: {{.PlanOutstanding}}

Please arrange payment on or before the due date.
`))

type demandDraftContent struct {
	CustomerName    string
	ProjectName     string
	UnitNumber      string
	BookingID       string
	Sequence        int
	Milestone       string
	Amount          string
	DueDate         string
	PlanTotal       string
	PlanPaid        string
	PlanOutstanding string
}

// milestoneService turns construction progress into triggered milestones and demand drafts.
type milestoneService struct {
	BaseService
	txManager       portsrepo.TransactionManager
	paymentPlanRepo portsrepo.PaymentPlanRepositoryFacade
	demandDraftRepo portsrepo.DemandDraftRepository
	dueDays         int
}

// MilestoneServiceOption is a functional option for configuring the milestone service
type MilestoneServiceOption func(*milestoneService)

// WithDemandDraftDueDays sets how many days after generation a demand falls due.
func WithDemandDraftDueDays(days int) MilestoneServiceOption {
	return func(s *milestoneService) {
		if days > 0 {
			s.dueDays = days
		}
	}
}

// WithMilestoneClock overrides the clock used for trigger times and due dates.
func WithMilestoneClock(now func() time.Time) MilestoneServiceOption {
	return func(s *milestoneService) {
		s.now = now
	}
}

// NewMilestoneService creates a new milestone service with the provided options
func NewMilestoneService(
	txManager portsrepo.TransactionManager,
	paymentPlanRepo portsrepo.PaymentPlanRepositoryFacade,
	demandDraftRepo portsrepo.DemandDraftRepository,
	options ...MilestoneServiceOption,
) portssvc.MilestoneSvc {
	svc := &milestoneService{
		txManager:       txManager,
		paymentPlanRepo: paymentPlanRepo,
		demandDraftRepo: demandDraftRepo,
		dueDays:         defaultDemandDraftDueDays,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.MilestoneSvc = (*milestoneService)(nil)

var hundred = decimal.NewFromInt(100)

// OnConstructionProgress records the update and fires every matching milestone of the
// flat's active plan. Each milestone's trigger and draft commit or roll back together,
// and a failing milestone is logged and reported without stopping the others.
func (s *milestoneService) OnConstructionProgress(ctx context.Context, progress domain.ConstructionProgress) (*domain.ProgressOutcome, error) {
	progress.FlatID = strings.TrimSpace(progress.FlatID)
	progress.Phase = strings.TrimSpace(progress.Phase)
	if err := validateProgress(progress); err != nil {
		return nil, err
	}
	if progress.ProgressID == "" {
		progress.ProgressID = uuid.NewString()
	}
	if progress.ReportedAt.IsZero() {
		progress.ReportedAt = s.Now()
	}

	logger := s.GetLogger(ctx).With(slog.String("flat_id", progress.FlatID), slog.String("phase", progress.Phase))

	if err := s.paymentPlanRepo.RecordProgress(ctx, progress); err != nil {
		logger.Error("Failed to record construction progress", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to record construction progress: %w", err)
	}

	outcome := &domain.ProgressOutcome{
		FlatID:             progress.FlatID,
		TriggeredSequences: []int{},
		DraftsCreated:      []string{},
		DraftsExisting:     []string{},
		Failures:           []domain.MilestoneFailure{},
	}

	plan, err := s.paymentPlanRepo.FindActivePlanByFlatID(ctx, progress.FlatID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Info("No active payment plan for flat, skipping milestone evaluation")
			outcome.Skipped = true
			return outcome, nil
		}
		logger.Error("Failed to load active payment plan", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to load active payment plan: %w", err)
	}
	outcome.PlanID = plan.PlanID

	for _, milestone := range plan.Milestones {
		if !milestone.IsTriggeredBy(progress.Phase, progress.PhaseProgress) {
			continue
		}
		mLogger := logger.With(slog.Int("milestone_sequence", milestone.Sequence))

		draft, created, err := s.triggerMilestone(ctx, *plan, milestone, progress.ReportedBy)
		if err != nil {
			if errors.Is(err, apperrors.ErrConflict) {
				mLogger.Warn("Milestone already left PENDING, skipping", slog.String("error", err.Error()))
				continue
			}
			mLogger.Error("Milestone trigger failed", slog.String("error", err.Error()))
			outcome.Failures = append(outcome.Failures, domain.MilestoneFailure{
				Sequence: milestone.Sequence,
				Error:    err.Error(),
			})
			continue
		}

		outcome.TriggeredSequences = append(outcome.TriggeredSequences, milestone.Sequence)
		if created {
			outcome.DraftsCreated = append(outcome.DraftsCreated, draft.DemandDraftID)
		} else {
			outcome.DraftsExisting = append(outcome.DraftsExisting, draft.DemandDraftID)
		}
		mLogger.Info("Milestone triggered",
			slog.String("demand_draft_id", draft.DemandDraftID),
			slog.Bool("draft_created", created))
	}

	return outcome, nil
}

// triggerMilestone marks the milestone TRIGGERED and generates its draft in one transaction.
func (s *milestoneService) triggerMilestone(ctx context.Context, plan domain.PaymentPlan, milestone domain.Milestone, userID string) (*domain.DemandDraft, bool, error) {
	var (
		draft   *domain.DemandDraft
		created bool
	)
	err := s.txManager.WithinTransaction(ctx, func(txCtx context.Context) error {
		now := s.Now()
		if err := s.paymentPlanRepo.UpdateMilestoneStatus(txCtx, plan.PlanID, milestone.Sequence,
			domain.MilestonePending, domain.MilestoneTriggered, userID, now); err != nil {
			return err
		}
		milestone.Status = domain.MilestoneTriggered
		milestone.TriggeredAt = &now

		var err error
		draft, created, err = s.GenerateDemandDraft(txCtx, plan, milestone)
		return err
	})
	if err != nil {
		return nil, false, err
	}
	return draft, created, nil
}

// GenerateDemandDraft creates the milestone's draft unless one already exists for the
// (flat, milestone sequence) pair, in which case the stored draft is returned.
func (s *milestoneService) GenerateDemandDraft(ctx context.Context, plan domain.PaymentPlan, milestone domain.Milestone) (*domain.DemandDraft, bool, error) {
	existing, err := s.demandDraftRepo.FindDemandDraftByMilestone(ctx, plan.FlatID, milestone.Sequence)
	if err == nil {
		s.LogDebug(ctx, "Demand draft already exists",
			slog.String("flat_id", plan.FlatID), slog.Int("milestone_sequence", milestone.Sequence))
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to look up demand draft: %w", err)
	}

	now := s.Now()
	dueDate := domain.DateOnly(now.AddDate(0, 0, s.dueDays))
	content, err := renderDemandDraft(plan, milestone, dueDate)
	if err != nil {
		return nil, false, err
	}

	draft := domain.DemandDraft{
		DemandDraftID:     uuid.NewString(),
		FlatID:            plan.FlatID,
		CustomerID:        plan.CustomerID,
		BookingID:         plan.BookingID,
		PlanID:            plan.PlanID,
		MilestoneSequence: milestone.Sequence,
		Title:             "Demand for " + milestone.Description,
		Amount:            milestone.Amount,
		DueDate:           dueDate,
		Status:            domain.DemandDraftDraft,
		Content:           content,
		AutoGenerated:     true,
		AuditFields:       domain.NewAuditFields("system", now),
	}

	inserted, err := s.demandDraftRepo.SaveDemandDraft(ctx, draft)
	if err != nil {
		return nil, false, fmt.Errorf("failed to save demand draft: %w", err)
	}
	if !inserted {
		// Lost a race with a concurrent generator.
		existing, err := s.demandDraftRepo.FindDemandDraftByMilestone(ctx, plan.FlatID, milestone.Sequence)
		if err != nil {
			return nil, false, fmt.Errorf("failed to reload demand draft: %w", err)
		}
		return existing, false, nil
	}

	s.LogInfo(ctx, "Demand draft generated",
		slog.String("demand_draft_id", draft.DemandDraftID),
		slog.String("flat_id", plan.FlatID),
		slog.Int("milestone_sequence", milestone.Sequence),
		slog.String("amount", draft.Amount.StringFixed(2)))
	return &draft, true, nil
}

// ListDemandDrafts returns a flat's drafts ordered by milestone sequence.
func (s *milestoneService) ListDemandDrafts(ctx context.Context, flatID string) ([]domain.DemandDraft, error) {
	if strings.TrimSpace(flatID) == "" {
		return nil, fmt.Errorf("%w: flat id is required", apperrors.ErrValidation)
	}
	drafts, err := s.demandDraftRepo.ListDemandDraftsByFlat(ctx, flatID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list demand drafts", slog.String("flat_id", flatID))
		return nil, fmt.Errorf("failed to list demand drafts: %w", err)
	}
	return drafts, nil
}

func validateProgress(p domain.ConstructionProgress) error {
	if p.FlatID == "" {
		return fmt.Errorf("%w: flat id is required", apperrors.ErrValidation)
	}
	if p.Phase == "" {
		return fmt.Errorf("%w: construction phase is required", apperrors.ErrValidation)
	}
	if p.PhaseProgress.IsNegative() || p.PhaseProgress.GreaterThan(hundred) {
		return fmt.Errorf("%w: phase progress must be between 0 and 100", apperrors.ErrValidation)
	}
	if p.OverallProgress.IsNegative() || p.OverallProgress.GreaterThan(hundred) {
		return fmt.Errorf("%w: overall progress must be between 0 and 100", apperrors.ErrValidation)
	}
	return nil
}

func renderDemandDraft(plan domain.PaymentPlan, milestone domain.Milestone, dueDate time.Time) (string, error) {
	var buf bytes.Buffer
	err := demandDraftTemplate.Execute(&buf, demandDraftContent{
		CustomerName:    plan.CustomerName,
		ProjectName:     plan.ProjectName,
		UnitNumber:      plan.UnitNumber,
		BookingID:       plan.BookingID,
		Sequence:        milestone.Sequence,
		Milestone:       milestone.Description,
		Amount:          utils.FormatAmount(milestone.Amount),
		DueDate:         dueDate.Format("02 Jan 2006"),
		PlanTotal:       utils.FormatAmount(plan.TotalAmount()),
		PlanPaid:        utils.FormatAmount(plan.PaidAmount()),
		PlanOutstanding: utils.FormatAmount(plan.OutstandingAmount()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render demand draft: %w", err)
	}
	return buf.String(), nil
}
