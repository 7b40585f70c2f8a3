package mapping

import (
	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	"github.com/SscSPs/realty_erp_accounting/internal/models"
)

// ToDomainPaymentPlan converts a plan row and its milestone rows to a domain PaymentPlan
func ToDomainPaymentPlan(m models.PaymentPlan, milestones []models.PaymentMilestone) domain.PaymentPlan {
	plan := domain.PaymentPlan{
		PlanID:       m.PlanID,
		FlatID:       m.FlatID,
		CustomerID:   m.CustomerID,
		BookingID:    m.BookingID,
		CustomerName: m.CustomerName,
		UnitNumber:   m.UnitNumber,
		ProjectName:  m.ProjectName,
		Status:       domain.PaymentPlanStatus(m.Status),
		Milestones:   make([]domain.Milestone, len(milestones)),
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
	for i, ms := range milestones {
		plan.Milestones[i] = domain.Milestone{
			Sequence:                ms.Sequence,
			Description:             ms.Description,
			ConstructionPhase:       ms.ConstructionPhase,
			RequiredPhasePercentage: ms.RequiredPhasePercentage,
			Amount:                  ms.Amount,
			Status:                  domain.MilestoneStatus(ms.Status),
			TriggeredAt:             ms.TriggeredAt,
		}
	}
	return plan
}

// ToModelConstructionProgress converts a domain ConstructionProgress to its row
func ToModelConstructionProgress(d domain.ConstructionProgress) models.ConstructionProgress {
	return models.ConstructionProgress{
		ProgressID:      d.ProgressID,
		FlatID:          d.FlatID,
		Phase:           d.Phase,
		PhaseProgress:   d.PhaseProgress,
		OverallProgress: d.OverallProgress,
		ReportedAt:      d.ReportedAt,
		ReportedBy:      d.ReportedBy,
	}
}

// ToModelDemandDraft converts a domain DemandDraft to its row
func ToModelDemandDraft(d domain.DemandDraft) models.DemandDraft {
	return models.DemandDraft{
		DemandDraftID:     d.DemandDraftID,
		FlatID:            d.FlatID,
		CustomerID:        d.CustomerID,
		BookingID:         d.BookingID,
		PlanID:            d.PlanID,
		MilestoneSequence: d.MilestoneSequence,
		Title:             d.Title,
		Amount:            d.Amount,
		DueDate:           d.DueDate,
		Status:            string(d.Status),
		Content:           d.Content,
		AutoGenerated:     d.AutoGenerated,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainDemandDraft converts a demand_drafts row to a domain DemandDraft
func ToDomainDemandDraft(m models.DemandDraft) domain.DemandDraft {
	return domain.DemandDraft{
		DemandDraftID:     m.DemandDraftID,
		FlatID:            m.FlatID,
		CustomerID:        m.CustomerID,
		BookingID:         m.BookingID,
		PlanID:            m.PlanID,
		MilestoneSequence: m.MilestoneSequence,
		Title:             m.Title,
		Amount:            m.Amount,
		DueDate:           m.DueDate,
		Status:            domain.DemandDraftStatus(m.Status),
		Content:           m.Content,
		AutoGenerated:     m.AutoGenerated,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}
