package dto

import (
	"fmt"
	"time"

	"github.com/SscSPs/realty_erp_accounting/internal/apperrors"
)

// LedgerRangeParams is the inclusive date range of ledger and book queries.
type LedgerRangeParams struct {
	Start string `form:"start" binding:"required,datetime=2006-01-02"`
	End   string `form:"end" binding:"required,datetime=2006-01-02"`
}

// Parse returns the range as dates.
func (p LedgerRangeParams) Parse() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, p.Start)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: start must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	end, err := time.Parse(DateLayout, p.End)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end must be YYYY-MM-DD", apperrors.ErrValidation)
	}
	return start, end, nil
}

// WeeklyLedgerParams selects an ISO-8601 week.
type WeeklyLedgerParams struct {
	Year int `form:"year" binding:"required,min=1,max=9999"`
	Week int `form:"week" binding:"required,min=1,max=53"`
}
