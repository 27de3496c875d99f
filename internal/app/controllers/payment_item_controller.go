package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
)

// PaymentItemController handles payment item endpoints
type PaymentItemController struct {
	paymentItemService services.PaymentItemService
}

// NewPaymentItemController creates a new PaymentItemController
func NewPaymentItemController(paymentItemService services.PaymentItemService) *PaymentItemController {
	return &PaymentItemController{paymentItemService: paymentItemService}
}

// ListPaymentItems lists payment items with schedule, enrollment, student and academic year populated
// @Summary List payment items
// @Tags payment-items
// @Produce json
// @Param status query string false "Status" Enums(pending, partial, paid, waived, overdue)
// @Param scheduleId query int false "Payment schedule ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=[]models.PaymentItem,meta=dto.PageMeta}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /payment-items [get]
func (c *PaymentItemController) ListPaymentItems(ctx *gin.Context) {
	var filter dto.PaymentItemFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}
	page, size := helpers.ParsePaginationParams(ctx)

	items, pagination, err := c.paymentItemService.ListPaymentItems(ctx.Request.Context(), &filter, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(items, pagination))
}

// GetPaymentItem returns one payment item with its transactions
// @Summary Get a payment item
// @Tags payment-items
// @Produce json
// @Param id path int true "Payment item ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.PaymentItem}
// @Failure 404 {object} dto.ErrorResponse "Payment item not found"
// @Router /payment-items/{id} [get]
func (c *PaymentItemController) GetPaymentItem(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "payment item")
	if !ok {
		return
	}

	item, err := c.paymentItemService.GetPaymentItem(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(item))
}

// ListBySchedule lists the items of one payment schedule ordered by due date
// @Summary List payment items of a schedule
// @Tags payment-items
// @Produce json
// @Param scheduleId path int true "Payment schedule ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=[]models.PaymentItem}
// @Failure 500 {object} dto.ErrorResponse "Error fetching payment items"
// @Router /payment-items/by-schedule/{scheduleId} [get]
func (c *PaymentItemController) ListBySchedule(ctx *gin.Context) {
	scheduleID, ok := pathID(ctx, "scheduleId", "payment schedule")
	if !ok {
		return
	}

	items, err := c.paymentItemService.ListBySchedule(ctx.Request.Context(), scheduleID)
	if err != nil {
		middleware.HandleAPIErrorWithPrefix(ctx, err, "Error fetching payment items: ")
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(items))
}

// UpdateStatus changes the status and paid amount of a payment item
// @Summary Update payment status
// @Description Marking an item paid without paid_amount settles it in full.
// @Tags payment-items
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment item ID" Format(int64) minimum(1)
// @Param request body dto.UpdatePaymentStatusRequest true "Status"
// @Success 200 {object} dto.APIResponse{data=models.PaymentItem}
// @Failure 400 {object} dto.ErrorResponse "Invalid status"
// @Failure 404 {object} dto.ErrorResponse "Payment item not found"
// @Failure 500 {object} dto.ErrorResponse "Error updating payment status"
// @Router /payment-items/{id}/status [put]
func (c *PaymentItemController) UpdateStatus(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "payment item")
	if !ok {
		return
	}
	var req dto.UpdatePaymentStatusRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	item, err := c.paymentItemService.UpdateStatus(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIErrorWithPrefix(ctx, err, "Error updating payment status: ")
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(item))
}
