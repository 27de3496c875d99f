package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
)

// FeeAssignmentController handles fee assignments and fee summaries
type FeeAssignmentController struct {
	assignmentService services.FeeAssignmentService
	summaryService    services.FeeSummaryService
}

// NewFeeAssignmentController creates a new FeeAssignmentController
func NewFeeAssignmentController(assignmentService services.FeeAssignmentService, summaryService services.FeeSummaryService) *FeeAssignmentController {
	return &FeeAssignmentController{assignmentService: assignmentService, summaryService: summaryService}
}

// ListFeeAssignments lists fee assignments with their fee definition populated
// @Summary List fee assignments
// @Tags fee-assignments
// @Produce json
// @Param filter query string false "Target kind" Enums(class, bus_stop, student)
// @Param entityId query int false "Target ID, requires filter"
// @Success 200 {object} dto.APIResponse{data=[]models.FeeAssignment}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /fee-assignments [get]
func (c *FeeAssignmentController) ListFeeAssignments(ctx *gin.Context) {
	var filter dto.FeeAssignmentFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	assignments, err := c.assignmentService.ListFeeAssignments(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(assignments))
}

// CreateFeeAssignment assigns a fee to a class, bus stop or student
// @Summary Create a fee assignment
// @Tags fee-assignments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFeeAssignmentRequest true "Assignment"
// @Success 201 {object} dto.APIResponse{data=models.FeeAssignment}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Fee definition or target not found"
// @Router /fee-assignments [post]
func (c *FeeAssignmentController) CreateFeeAssignment(ctx *gin.Context) {
	var req dto.CreateFeeAssignmentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fa, err := c.assignmentService.CreateFeeAssignment(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(fa))
}

// DeleteFeeAssignment removes a fee assignment
// @Summary Delete a fee assignment
// @Tags fee-assignments
// @Security BearerAuth
// @Param id path int true "Fee assignment ID" Format(int64) minimum(1)
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Fee assignment not found"
// @Router /fee-assignments/{id} [delete]
func (c *FeeAssignmentController) DeleteFeeAssignment(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "fee assignment")
	if !ok {
		return
	}

	if err := c.assignmentService.DeleteFeeAssignment(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// ClassFeeSummary aggregates the fees currently assigned to a class
// @Summary Class fee summary
// @Description Annualized revenue of a class: totals, per-student rates, fee type breakdown and installment excess.
// @Tags fee-summaries
// @Produce json
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.FeeSummaryResponse}
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id}/fee-summary [get]
func (c *FeeAssignmentController) ClassFeeSummary(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "class")
	if !ok {
		return
	}

	summary, err := c.summaryService.ClassFeeSummary(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(summary))
}

// BusStopFeeSummary aggregates the fees currently assigned to a bus stop
// @Summary Bus stop fee summary
// @Tags fee-summaries
// @Produce json
// @Param id path int true "Bus stop ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.FeeSummaryResponse}
// @Failure 404 {object} dto.ErrorResponse "Bus stop not found"
// @Router /bus-stops/{id}/fee-summary [get]
func (c *FeeAssignmentController) BusStopFeeSummary(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "bus stop")
	if !ok {
		return
	}

	summary, err := c.summaryService.BusStopFeeSummary(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(summary))
}
