package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DemandDraftStatus is the delivery status of a demand draft.
type DemandDraftStatus string

const (
	DemandDraftDraft  DemandDraftStatus = "DRAFT"
	DemandDraftReady  DemandDraftStatus = "READY"
	DemandDraftSent   DemandDraftStatus = "SENT"
	DemandDraftFailed DemandDraftStatus = "FAILED"
)

// DemandDraft is a generated, unsent payment request for one milestone of a flat.
// At most one exists per (FlatID, MilestoneSequence).
type DemandDraft struct {
	DemandDraftID     string            `json:"demandDraftID"`
	FlatID            string            `json:"flatID"`
	CustomerID        string            `json:"customerID"`
	BookingID         string            `json:"bookingID"`
	PlanID            string            `json:"planID"`
	MilestoneSequence int               `json:"milestoneSequence"`
	Title             string            `json:"title"`
	Amount            decimal.Decimal   `json:"amount"`
	DueDate           time.Time         `json:"dueDate"`
	Status            DemandDraftStatus `json:"status"`
	Content           string            `json:"content"`
	AutoGenerated     bool              `json:"autoGenerated"`
	AuditFields
}
