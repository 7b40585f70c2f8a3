package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/realty_erp_accounting/internal/core/domain"
	portssvc "github.com/SscSPs/realty_erp_accounting/internal/core/ports/services"
	"github.com/SscSPs/realty_erp_accounting/internal/dto"
	"github.com/SscSPs/realty_erp_accounting/internal/middleware"
	"github.com/gin-gonic/gin"
)

// milestoneHandler handles construction progress and demand draft requests.
type milestoneHandler struct {
	milestoneService portssvc.MilestoneSvc
}

// RegisterMilestoneRoutes registers flat-scoped construction progress routes.
func RegisterMilestoneRoutes(rg *gin.RouterGroup, milestoneService portssvc.MilestoneSvc) {
	h := &milestoneHandler{milestoneService: milestoneService}

	flats := rg.Group("/flats/:flatID")
	{
		flats.POST("/construction-progress", h.reportConstructionProgress)
		flats.GET("/demand-drafts", h.listDemandDrafts)
	}
}

// reportConstructionProgress godoc
// @Summary Report construction progress
// @Description Records progress of a phase and triggers every matching PENDING milestone of the flat's
// @Description active payment plan, generating one demand draft per milestone. Individual milestone
// @Description failures are reported in the outcome rather than failing the request.
// @Tags construction
// @Accept  json
// @Produce  json
// @Param   flatID path string true "Flat ID"
// @Param   progress body dto.ConstructionProgressRequest true "Progress report"
// @Success 200 {object} domain.ProgressOutcome
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to process construction progress"
// @Security BearerAuth
// @Router /flats/{flatID}/construction-progress [post]
func (h *milestoneHandler) reportConstructionProgress(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	flatID := c.Param("flatID")

	var req dto.ConstructionProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ConstructionProgress", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("flat_id", flatID), slog.String("user_id", userID))

	outcome, err := h.milestoneService.OnConstructionProgress(c.Request.Context(), domain.ConstructionProgress{
		FlatID:          flatID,
		Phase:           req.Phase,
		PhaseProgress:   req.PhaseProgress,
		OverallProgress: req.OverallProgress,
		ReportedBy:      userID,
	})
	if err != nil {
		respondWithError(c, logger, err, "Failed to process construction progress")
		return
	}

	logger.Info("Construction progress processed",
		slog.Int("triggered", len(outcome.TriggeredSequences)),
		slog.Int("failures", len(outcome.Failures)))
	c.JSON(http.StatusOK, outcome)
}

// listDemandDrafts godoc
// @Summary List demand drafts of a flat
// @Tags construction
// @Produce  json
// @Param   flatID path string true "Flat ID"
// @Success 200 {array} domain.DemandDraft
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list demand drafts"
// @Security BearerAuth
// @Router /flats/{flatID}/demand-drafts [get]
func (h *milestoneHandler) listDemandDrafts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	flatID := c.Param("flatID")

	drafts, err := h.milestoneService.ListDemandDrafts(c.Request.Context(), flatID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("flat_id", flatID)), err, "Failed to list demand drafts")
		return
	}
	c.JSON(http.StatusOK, drafts)
}
