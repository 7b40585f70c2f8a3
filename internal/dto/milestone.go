package dto

import (
	"github.com/shopspring/decimal"
)

// ConstructionProgressRequest reports progress of one construction phase of a flat.
type ConstructionProgressRequest struct {
	Phase           string          `json:"phase" binding:"required,max=64"`
	PhaseProgress   decimal.Decimal `json:"phaseProgress" binding:"decimal_percent"`
	OverallProgress decimal.Decimal `json:"overallProgress" binding:"decimal_percent"`
}
