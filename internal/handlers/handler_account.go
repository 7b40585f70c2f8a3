package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/realty_erp_accounting/internal/core/ports/services"
	"github.com/SscSPs/realty_erp_accounting/internal/dto"
	"github.com/SscSPs/realty_erp_accounting/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to the chart of accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
	ledgerService  portssvc.LedgerSvc
}

// newAccountHandler creates a new accountHandler.
func newAccountHandler(as portssvc.AccountSvcFacade, ls portssvc.LedgerSvc) *accountHandler {
	return &accountHandler{
		accountService: as,
		ledgerService:  ls,
	}
}

// RegisterAccountRoutes registers account and bank account routes.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, ledgerService portssvc.LedgerSvc) {
	h := newAccountHandler(accountService, ledgerService)

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:accountID", h.getAccount)
		accounts.PATCH("/:accountID", h.updateAccount)
		accounts.DELETE("/:accountID", h.deactivateAccount)
		accounts.GET("/:accountID/children", h.listChildAccounts)
		accounts.GET("/:accountID/ledger", h.getAccountLedger)
	}

	rg.GET("/account-codes/:code", h.getAccountByCode)

	bankAccounts := rg.Group("/bank-accounts")
	{
		bankAccounts.POST("", h.registerBankAccount)
		bankAccounts.GET("", h.listBankAccounts)
		bankAccounts.GET("/:bankAccountID/book", h.getBankBook)
	}
}

// createAccount godoc
// @Summary Create a new account
// @Description Registers an account in the chart of accounts. Its balance starts at the opening balance.
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.CreateAccountRequest true "Account details"
// @Success 201 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 409 {object} map[string]string "Account code already exists"
// @Failure 500 {object} map[string]string "Failed to create account"
// @Security BearerAuth
// @Router /accounts [post]
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("creator_user_id", creatorUserID))
	logger.Info("Received request to create account", slog.String("code", req.Code), slog.String("account_type", string(req.AccountType)))

	newAccount, err := h.accountService.CreateAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created successfully", slog.String("account_id", newAccount.AccountID))
	c.JSON(http.StatusCreated, dto.ToAccountResponse(newAccount))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Security BearerAuth
// @Router /accounts/{accountID} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")
	logger = logger.With(slog.String("account_id", accountID))

	account, err := h.accountService.GetAccountByID(c.Request.Context(), accountID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve account")
		return
	}

	logger.Debug("Account retrieved successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// getAccountByCode godoc
// @Summary Get an account by code
// @Tags accounts
// @Produce  json
// @Param   code path string true "Account code"
// @Success 200 {object} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve account"
// @Security BearerAuth
// @Router /account-codes/{code} [get]
func (h *accountHandler) getAccountByCode(c *gin.Context) {
	code := c.Param("code")
	logger := middleware.GetLoggerFromCtx(c.Request.Context()).With(slog.String("code", code))

	account, err := h.accountService.GetAccountByCode(c.Request.Context(), code)
	if err != nil {
		respondWithError(c, logger, err, "Failed to retrieve account")
		return
	}

	c.JSON(http.StatusOK, dto.ToAccountResponse(account))
}

// listAccounts godoc
// @Summary List accounts
// @Description Retrieves a page of accounts ordered by code
// @Tags accounts
// @Produce  json
// @Param   limit query int false "Limit" default(50)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list accounts"
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAccountsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Failed to bind query parameters for ListAccounts", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), params)
	if err != nil {
		respondWithError(c, logger, err, "Failed to list accounts")
		return
	}

	c.JSON(http.StatusOK, dto.ToListAccountResponse(accounts))
}

// listChildAccounts godoc
// @Summary List child accounts
// @Description Retrieves the direct children of an account ordered by code
// @Tags accounts
// @Produce  json
// @Param   accountID path string true "Parent account ID"
// @Success 200 {array} dto.AccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to list child accounts"
// @Security BearerAuth
// @Router /accounts/{accountID}/children [get]
func (h *accountHandler) listChildAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	children, err := h.accountService.ListChildAccounts(c.Request.Context(), accountID)
	if err != nil {
		respondWithError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to list child accounts")
		return
	}

	c.JSON(http.StatusOK, dto.ToListAccountResponse(children))
}

// updateAccount godoc
// @Summary Update an account
// @Description Changes an account's name and description
// @Tags accounts
// @Accept  json
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   account body dto.UpdateAccountRequest true "Fields to update"
// @Success 200 {object} dto.AccountResponse
// @Failure 400 {object} map[string]string "Invalid input format or validation error"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to update account"
// @Security BearerAuth
// @Router /accounts/{accountID} [patch]
func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for UpdateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("account_id", accountID), slog.String("user_id", userID))

	updated, err := h.accountService.UpdateAccount(c.Request.Context(), accountID, req, userID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to update account")
		return
	}

	logger.Info("Account updated successfully")
	c.JSON(http.StatusOK, dto.ToAccountResponse(updated))
}

// deactivateAccount godoc
// @Summary Deactivate an account
// @Description Marks an account inactive. Accounts with child accounts cannot be deactivated.
// @Tags accounts
// @Param   accountID path string true "Account ID"
// @Success 204 "No Content"
// @Failure 400 {object} map[string]string "Account has child accounts"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to deactivate account"
// @Security BearerAuth
// @Router /accounts/{accountID} [delete]
func (h *accountHandler) deactivateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("account_id", accountID), slog.String("user_id", userID))

	if err := h.accountService.DeactivateAccount(c.Request.Context(), accountID, userID); err != nil {
		respondWithError(c, logger, err, "Failed to deactivate account")
		return
	}

	logger.Info("Account deactivated successfully")
	c.Status(http.StatusNoContent)
}

// getAccountLedger godoc
// @Summary Get an account ledger
// @Description Lists POSTED and APPROVED lines of an account within a date range with a running balance
// @Tags ledgers
// @Produce  json
// @Param   accountID path string true "Account ID"
// @Param   start query string true "Start date (YYYY-MM-DD)"
// @Param   end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} domain.Ledger
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to build ledger"
// @Security BearerAuth
// @Router /accounts/{accountID}/ledger [get]
func (h *accountHandler) getAccountLedger(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	accountID := c.Param("accountID")

	start, end, ok := bindLedgerRange(c, logger)
	if !ok {
		return
	}

	ledger, err := h.ledgerService.GetAccountLedger(c.Request.Context(), accountID, start, end)
	if err != nil {
		respondWithError(c, logger.With(slog.String("account_id", accountID)), err, "Failed to build ledger")
		return
	}
	c.JSON(http.StatusOK, ledger)
}

// registerBankAccount godoc
// @Summary Register a bank account
// @Description Links a bank account to an existing Asset ledger account
// @Tags bank-accounts
// @Accept  json
// @Produce  json
// @Param   bankAccount body dto.CreateBankAccountRequest true "Bank account details"
// @Success 201 {object} domain.BankAccount
// @Failure 400 {object} map[string]string "Invalid input or ledger account is not an Asset"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to register bank account"
// @Security BearerAuth
// @Router /bank-accounts [post]
func (h *accountHandler) registerBankAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.CreateBankAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for RegisterBankAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	creatorUserID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	logger = logger.With(slog.String("creator_user_id", creatorUserID))

	bankAccount, err := h.accountService.RegisterBankAccount(c.Request.Context(), req, creatorUserID)
	if err != nil {
		respondWithError(c, logger, err, "Failed to register bank account")
		return
	}

	logger.Info("Bank account registered successfully", slog.String("bank_account_id", bankAccount.BankAccountID))
	c.JSON(http.StatusCreated, bankAccount)
}

// listBankAccounts godoc
// @Summary List bank accounts
// @Tags bank-accounts
// @Produce  json
// @Success 200 {array} domain.BankAccount
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list bank accounts"
// @Security BearerAuth
// @Router /bank-accounts [get]
func (h *accountHandler) listBankAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	bankAccounts, err := h.accountService.ListBankAccounts(c.Request.Context())
	if err != nil {
		respondWithError(c, logger, err, "Failed to list bank accounts")
		return
	}
	c.JSON(http.StatusOK, bankAccounts)
}

// getBankBook godoc
// @Summary Get a bank book
// @Description Ledger of the ledger account linked to a bank account
// @Tags ledgers
// @Produce  json
// @Param   bankAccountID path string true "Bank account ID"
// @Param   start query string true "Start date (YYYY-MM-DD)"
// @Param   end query string true "End date (YYYY-MM-DD)"
// @Success 200 {object} domain.Ledger
// @Failure 400 {object} map[string]string "Invalid date range"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Bank account not found"
// @Failure 500 {object} map[string]string "Failed to build bank book"
// @Security BearerAuth
// @Router /bank-accounts/{bankAccountID}/book [get]
func (h *accountHandler) getBankBook(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	bankAccountID := c.Param("bankAccountID")

	start, end, ok := bindLedgerRange(c, logger)
	if !ok {
		return
	}

	ledger, err := h.ledgerService.GetBankBook(c.Request.Context(), bankAccountID, start, end)
	if err != nil {
		respondWithError(c, logger.With(slog.String("bank_account_id", bankAccountID)), err, "Failed to build bank book")
		return
	}
	c.JSON(http.StatusOK, ledger)
}
