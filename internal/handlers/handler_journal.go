package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/realty_erp_accounting/internal/core/ports/services"
	"github.com/SscSPs/realty_erp_accounting/internal/dto"
	"github.com/SscSPs/realty_erp_accounting/internal/middleware"
	"github.com/gin-gonic/gin"
)

// journalHandler handles HTTP requests related to journal entries.
type journalHandler struct {
	journalService portssvc.JournalSvcFacade
}

// newJournalHandler creates a new journalHandler.
func newJournalHandler(journalService portssvc.JournalSvcFacade) *journalHandler {
	return &journalHandler{
		journalService: journalService,
	}
}

// RegisterJournalRoutes registers journal entry routes.
func RegisterJournalRoutes(rg *gin.RouterGroup, journalService portssvc.JournalSvcFacade) {
	h := newJournalHandler(journalService)

	entries := rg.Group("/journal-entries")
	{
		entries.POST("/validate", h.validateJournalEntry)
		entries.POST("", h.createJournalEntry)
		entries.GET("", h.listJournalEntries)
		entries.GET("/:entryID", h.getJournalEntry)
		entries.PUT("/:entryID", h.updateDraftJournalEntry)
		entries.DELETE("/:entryID", h.deleteDraftJournalEntry)
		entries.POST("/:entryID/post", h.postJournalEntry)
		entries.POST("/:entryID/approve", h.approveJournalEntry)
		entries.POST("/:entryID/void", h.voidJournalEntry)
	}
}

// validateJournalEntry godoc
// @Summary Validate a journal entry
// @Description Checks balance and account references without storing anything
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.JournalEntryRequest true "Proposed entry"
// @Success 200 {object} dto.ValidatedEntryResponse
// @Failure 400 {object} map[string]string "Imbalanced entry, unknown account or invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to validate journal entry"
// @Security BearerAuth
// @Router /journal-entries/validate [post]
func (h *journalHandler) validateJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.JournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for ValidateJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	validated, err := h.journalService.ValidateEntry(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, logger, err, "Failed to validate journal entry")
		return
	}
	c.JSON(http.StatusOK, dto.ToValidatedEntryResponse(validated))
}

// createJournalEntry godoc
// @Summary Create a draft journal entry
// @Description Validates and stores a DRAFT entry. Balances are untouched until it is posted.
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entry body dto.JournalEntryRequest true "Journal entry"
// @Success 201 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Imbalanced entry, unknown account or invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Entry number already exists"
// @Failure 500 {object} map[string]string "Failed to create journal entry"
// @Security BearerAuth
// @Router /journal-entries [post]
func (h *journalHandler) createJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.JournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("creator_user_id", creatorUserID))

	entry, err := h.journalService.CreateJournalEntry(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create journal entry")
		return
	}

	logger.Info("Journal entry created successfully", slog.String("entry_id", entry.EntryID), slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusCreated, dto.ToJournalEntryResponse(entry))
}

// getJournalEntry godoc
// @Summary Get a journal entry
// @Description Retrieves an entry and its lines
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 500 {object} map[string]string "Failed to retrieve journal entry"
// @Security BearerAuth
// @Router /journal-entries/{entryID} [get]
func (h *journalHandler) getJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	entry, err := h.journalService.GetJournalEntry(c.Request.Context(), entryID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("entry_id", entryID)), err, "Failed to retrieve journal entry")
		return
	}

	logger.Debug("Journal entry retrieved successfully", slog.String("entry_id", entryID))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// listJournalEntries godoc
// @Summary List journal entries
// @Description Retrieves entries newest first using token-based pagination
// @Tags journal-entries
// @Produce  json
// @Param   status query string false "Filter by status" Enums(DRAFT, POSTED, APPROVED, VOID)
// @Param   from query string false "Earliest entry date (YYYY-MM-DD)"
// @Param   to query string false "Latest entry date (YYYY-MM-DD)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListJournalEntriesResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list journal entries"
// @Security BearerAuth
// @Router /journal-entries [get]
func (h *journalHandler) listJournalEntries(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListJournalEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListJournalEntries", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	resp, err := h.journalService.ListJournalEntries(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list journal entries")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// updateDraftJournalEntry godoc
// @Summary Replace a draft journal entry
// @Description Re-validates and replaces a DRAFT entry's header and lines
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Param   entry body dto.JournalEntryRequest true "Journal entry"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Imbalanced entry, unknown account or invalid input"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 409 {object} map[string]string "Entry is no longer a draft"
// @Failure 500 {object} map[string]string "Failed to update journal entry"
// @Security BearerAuth
// @Router /journal-entries/{entryID} [put]
func (h *journalHandler) updateDraftJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	var req dto.JournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateDraftJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("entry_id", entryID), slog.String("user_id", userID))

	entry, err := h.journalService.UpdateDraftJournalEntry(c.Request.Context(), entryID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update journal entry")
		return
	}

	logger.Info("Draft journal entry updated successfully")
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// deleteDraftJournalEntry godoc
// @Summary Delete a draft journal entry
// @Tags journal-entries
// @Param   entryID path string true "Journal entry ID"
// @Success 204 "No Content"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 409 {object} map[string]string "Entry is no longer a draft"
// @Failure 500 {object} map[string]string "Failed to delete journal entry"
// @Security BearerAuth
// @Router /journal-entries/{entryID} [delete]
func (h *journalHandler) deleteDraftJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("entry_id", entryID), slog.String("user_id", userID))

	if err := h.journalService.DeleteDraftJournalEntry(c.Request.Context(), entryID, userID); err != nil {
		respondWithError(c, logger, err, "Failed to delete journal entry")
		return
	}

	logger.Info("Draft journal entry deleted successfully")
	c.Status(http.StatusNoContent)
}

// postJournalEntry godoc
// @Summary Post a journal entry
// @Description Applies a DRAFT entry's lines to account balances atomically
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 409 {object} map[string]string "Entry is not a draft"
// @Failure 500 {object} map[string]string "Failed to post journal entry"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/post [post]
func (h *journalHandler) postJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("entry_id", entryID), slog.String("user_id", userID))

	entry, err := h.journalService.PostJournalEntry(c.Request.Context(), entryID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to post journal entry")
		return
	}

	logger.Info("Journal entry posted successfully", slog.String("entry_number", entry.EntryNumber))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// approveJournalEntry godoc
// @Summary Approve a journal entry
// @Description Records approval of a POSTED entry
// @Tags journal-entries
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 409 {object} map[string]string "Entry is not posted"
// @Failure 500 {object} map[string]string "Failed to approve journal entry"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/approve [post]
func (h *journalHandler) approveJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("entry_id", entryID), slog.String("user_id", userID))

	entry, err := h.journalService.ApproveJournalEntry(c.Request.Context(), entryID, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to approve journal entry")
		return
	}

	logger.Info("Journal entry approved successfully")
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}

// voidJournalEntry godoc
// @Summary Void a journal entry
// @Description Reverses a POSTED entry's balance effect atomically and marks it VOID
// @Tags journal-entries
// @Accept  json
// @Produce  json
// @Param   entryID path string true "Journal entry ID"
// @Param   void body dto.VoidJournalEntryRequest true "Void reason"
// @Success 200 {object} dto.JournalEntryResponse
// @Failure 400 {object} map[string]string "Missing reason"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Journal entry not found"
// @Failure 409 {object} map[string]string "Entry is not posted"
// @Failure 500 {object} map[string]string "Failed to void journal entry"
// @Security BearerAuth
// @Router /journal-entries/{entryID}/void [post]
func (h *journalHandler) voidJournalEntry(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	entryID := c.Param("entryID")

	var req dto.VoidJournalEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for VoidJournalEntry", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("entry_id", entryID), slog.String("user_id", userID))

	entry, err := h.journalService.VoidJournalEntry(c.Request.Context(), entryID, req.Reason, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to void journal entry")
		return
	}

	logger.Info("Journal entry voided successfully", slog.String("reason", req.Reason))
	c.JSON(http.StatusOK, dto.ToJournalEntryResponse(entry))
}
