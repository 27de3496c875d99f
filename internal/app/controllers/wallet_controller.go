package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
)

// WalletController handles student wallet endpoints
type WalletController struct {
	walletService services.WalletService
}

// NewWalletController creates a new WalletController
func NewWalletController(walletService services.WalletService) *WalletController {
	return &WalletController{walletService: walletService}
}

// CreateWallet opens a wallet for a student with the configured default limits
// @Summary Create a student wallet
// @Tags student-wallets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateWalletRequest true "Student"
// @Success 201 {object} dto.APIResponse{data=models.StudentWallet}
// @Failure 404 {object} dto.ErrorResponse "Student not found"
// @Failure 409 {object} dto.ErrorResponse "Student already has a wallet"
// @Router /student-wallets [post]
func (c *WalletController) CreateWallet(ctx *gin.Context) {
	var req dto.CreateWalletRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	wallet, err := c.walletService.CreateWallet(ctx.Request.Context(), req.StudentID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(wallet))
}

// GetWallet returns a wallet with its student
// @Summary Get a student wallet
// @Tags student-wallets
// @Produce json
// @Param id path int true "Wallet ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.StudentWallet}
// @Failure 404 {object} dto.ErrorResponse "Wallet not found"
// @Router /student-wallets/{id} [get]
func (c *WalletController) GetWallet(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "wallet")
	if !ok {
		return
	}

	wallet, err := c.walletService.GetWallet(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(wallet))
}

// GetBalance returns the balance, today's spending and the low balance flag
// @Summary Get wallet balance
// @Tags student-wallets
// @Produce json
// @Param id path int true "Wallet ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.WalletBalanceResponse}
// @Failure 404 {object} dto.ErrorResponse "Wallet not found"
// @Router /student-wallets/{id}/balance [get]
func (c *WalletController) GetBalance(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "wallet")
	if !ok {
		return
	}

	balance, err := c.walletService.GetBalance(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(balance))
}

// GetTransactions lists the ledger of a wallet, newest first
// @Summary List wallet transactions
// @Tags student-wallets
// @Produce json
// @Param id path int true "Wallet ID" Format(int64) minimum(1)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=[]models.WalletTransaction,meta=dto.PageMeta}
// @Failure 404 {object} dto.ErrorResponse "Wallet not found"
// @Router /student-wallets/{id}/transactions [get]
func (c *WalletController) GetTransactions(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "wallet")
	if !ok {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	txs, pagination, err := c.walletService.GetTransactions(ctx.Request.Context(), id, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(txs, pagination))
}

// GetStatement summarizes a wallet over a date range
// @Summary Get wallet statement
// @Description Defaults to the current month. Both dates are inclusive.
// @Tags student-wallets
// @Produce json
// @Param id path int true "Wallet ID" Format(int64) minimum(1)
// @Param from query string false "Start date" Format(date)
// @Param to query string false "End date" Format(date)
// @Success 200 {object} dto.APIResponse{data=models.WalletStatement}
// @Failure 400 {object} dto.ErrorResponse "Invalid date range"
// @Failure 404 {object} dto.ErrorResponse "Wallet not found"
// @Router /student-wallets/{id}/statement [get]
func (c *WalletController) GetStatement(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "wallet")
	if !ok {
		return
	}
	var query dto.StatementQuery
	if !middleware.BindQuery(ctx, &query) {
		return
	}

	statement, err := c.walletService.GetStatement(ctx.Request.Context(), id, query.From, query.To)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(statement))
}

// Topup adds money to a wallet
// @Summary Top up a wallet
// @Tags student-wallets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Wallet ID" Format(int64) minimum(1)
// @Param request body dto.TopupRequest true "Top-up"
// @Success 201 {object} dto.APIResponse{data=models.WalletTransaction}
// @Failure 400 {object} dto.ErrorResponse "Invalid amount"
// @Failure 404 {object} dto.ErrorResponse "Wallet not found"
// @Failure 422 {object} dto.ErrorResponse "Wallet is not active"
// @Router /student-wallets/{id}/topup [post]
func (c *WalletController) Topup(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "wallet")
	if !ok {
		return
	}
	var req dto.TopupRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	entry, err := c.walletService.Topup(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(entry))
}

// Purchase spends money from a wallet
// @Summary Record a wallet purchase
// @Tags student-wallets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Wallet ID" Format(int64) minimum(1)
// @Param request body dto.PurchaseRequest true "Purchase"
// @Success 201 {object} dto.APIResponse{data=models.WalletTransaction}
// @Failure 400 {object} dto.ErrorResponse "Invalid purchase"
// @Failure 404 {object} dto.ErrorResponse "Wallet not found"
// @Failure 422 {object} dto.ErrorResponse "Inactive wallet, insufficient balance or daily limit exceeded"
// @Router /student-wallets/{id}/purchase [post]
func (c *WalletController) Purchase(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "wallet")
	if !ok {
		return
	}
	var req dto.PurchaseRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	entry, err := c.walletService.Purchase(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(entry))
}

// BulkTopup tops up many wallets, reporting each one separately
// @Summary Bulk top-up
// @Tags student-wallets
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.BulkTopupRequest true "Wallets and amounts"
// @Success 200 {object} dto.APIResponse{data=dto.BulkTopupResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Router /student-wallets/bulk-topup [post]
func (c *WalletController) BulkTopup(ctx *gin.Context) {
	var req dto.BulkTopupRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	resp, err := c.walletService.BulkTopup(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(resp))
}
