package handlers

import (
	"log/slog"
	"net/http"
	"time"

	portssvc "github.com/SscSPs/realty_erp_accounting/internal/core/ports/services"
	"github.com/SscSPs/realty_erp_accounting/internal/dto"
	"github.com/SscSPs/realty_erp_accounting/internal/middleware"
	"github.com/gin-gonic/gin"
)

type ledgerHandler struct {
	ledgerService portssvc.LedgerSvc
}

// RegisterLedgerRoutes registers cash book, weekly ledger and report routes.
func RegisterLedgerRoutes(rg *gin.RouterGroup, ledgerService portssvc.LedgerSvc) {
	h := &ledgerHandler{ledgerService: ledgerService}

	ledgers := rg.Group("/ledgers")
	{
		ledgers.GET("/cash-book", h.getCashBook)
		ledgers.GET("/weekly", h.getWeeklyLedger)
	}
	rg.GET("/reports/trial-balance", h.getTrialBalance)
}

// bindLedgerRange parses ?start=&end= or responds with 400.
func bindLedgerRange(c *gin.Context, logger *slog.Logger) (time.Time, time.Time, bool) {
	var params dto.LedgerRangeParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind ledger range", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return time.Time{}, time.Time{}, false
	}
	start, end, err := params.Parse()
	if err != nil {
		respondWithError(c, logger, err, "Invalid date range")
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

// getCashBook godoc
// @Summary Get the cash book
// @Description Ledger of the configured cash account
// @Tags ledgers
// @Produce  json
// @Param   start query string true "Start date (YYYY-MM-DD)"
// @Param   end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} domain.Ledger
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Cash account not configured"
// @Failure 500 {object} map[string]string "Failed to build cash book"
// @Security BearerAuth
// @Router /ledgers/cash-book [get]
func (h *ledgerHandler) getCashBook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	start, end, ok := bindLedgerRange(c, logger)
	if !ok {
		return
	}

	ledger, err := h.ledgerService.GetCashBook(c.Request.Context(), start, end)
	if err != nil {
		respondWithError(c, logger, err, "Failed to build cash book")
		return
	}
	c.JSON(http.StatusOK, ledger)
}

// getWeeklyLedger godoc
// @Summary Get a weekly ledger
// @Description Aggregates POSTED and APPROVED entries dated within an ISO-8601 week (Monday to Sunday)
// @Tags ledgers
// @Produce  json
// @Param   year query int true "ISO year"
// @Param   week query int true "ISO week number (1-53)"
// @Success 200 {object} domain.WeeklySummary
// @Failure 400 {object} map[string]string "Invalid week"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build weekly ledger"
// @Security BearerAuth
// @Router /ledgers/weekly [get]
func (h *ledgerHandler) getWeeklyLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.WeeklyLedgerParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind weekly ledger parameters", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	summary, err := h.ledgerService.GetWeeklyLedger(c.Request.Context(), params.Week, params.Year)
	if err != nil {
		respondWithError(c, logger.With(slog.Int("iso_year", params.Year), slog.Int("iso_week", params.Week)), err, "Failed to build weekly ledger")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// getTrialBalance godoc
// @Summary Get the trial balance
// @Description Current balances of all active accounts in debit and credit columns
// @Tags reports
// @Produce  json
// @Success 200 {object} domain.TrialBalance
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to build trial balance"
// @Security BearerAuth
// @Router /reports/trial-balance [get]
func (h *ledgerHandler) getTrialBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	tb, err := h.ledgerService.GetTrialBalance(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to build trial balance")
		return
	}
	c.JSON(http.StatusOK, tb)
}
