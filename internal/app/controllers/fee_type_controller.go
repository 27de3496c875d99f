package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
)

// FeeTypeController handles fee type endpoints
type FeeTypeController struct {
	feeTypeService services.FeeTypeService
}

// NewFeeTypeController creates a new FeeTypeController
func NewFeeTypeController(feeTypeService services.FeeTypeService) *FeeTypeController {
	return &FeeTypeController{feeTypeService: feeTypeService}
}

// ListFeeTypes lists fee types
// @Summary List fee types
// @Tags fee-types
// @Produce json
// @Param active query bool false "Only active or inactive types"
// @Success 200 {object} dto.APIResponse{data=[]models.FeeType}
// @Failure 400 {object} dto.ErrorResponse "Invalid active parameter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /fee-types [get]
func (c *FeeTypeController) ListFeeTypes(ctx *gin.Context) {
	active, ok := queryBool(ctx, "active")
	if !ok {
		return
	}

	types, err := c.feeTypeService.ListFeeTypes(ctx.Request.Context(), active)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(types))
}

// GetFeeType returns one fee type
// @Summary Get a fee type
// @Tags fee-types
// @Produce json
// @Param id path int true "Fee type ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.FeeType}
// @Failure 400 {object} dto.ErrorResponse "Invalid fee type ID"
// @Failure 404 {object} dto.ErrorResponse "Fee type not found"
// @Router /fee-types/{id} [get]
func (c *FeeTypeController) GetFeeType(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "fee type")
	if !ok {
		return
	}

	ft, err := c.feeTypeService.GetFeeType(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(ft))
}

// CreateFeeType creates a fee type
// @Summary Create a fee type
// @Tags fee-types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateFeeTypeRequest true "Fee type"
// @Success 201 {object} dto.APIResponse{data=models.FeeType}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 403 {object} dto.ErrorResponse "Forbidden"
// @Failure 409 {object} dto.ErrorResponse "Code already exists"
// @Router /fee-types [post]
func (c *FeeTypeController) CreateFeeType(ctx *gin.Context) {
	var req dto.CreateFeeTypeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	ft, err := c.feeTypeService.CreateFeeType(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(ft))
}

// UpdateFeeType updates the name and active flag of a fee type
// @Summary Update a fee type
// @Tags fee-types
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee type ID" Format(int64) minimum(1)
// @Param request body dto.UpdateFeeTypeRequest true "Fee type"
// @Success 200 {object} dto.APIResponse{data=models.FeeType}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Fee type not found"
// @Router /fee-types/{id} [put]
func (c *FeeTypeController) UpdateFeeType(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "fee type")
	if !ok {
		return
	}
	var req dto.UpdateFeeTypeRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	ft, err := c.feeTypeService.UpdateFeeType(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(ft))
}

// DeleteFeeType deletes a fee type that no definition uses
// @Summary Delete a fee type
// @Tags fee-types
// @Security BearerAuth
// @Param id path int true "Fee type ID" Format(int64) minimum(1)
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Fee type not found"
// @Failure 409 {object} dto.ErrorResponse "Fee type in use"
// @Router /fee-types/{id} [delete]
func (c *FeeTypeController) DeleteFeeType(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "fee type")
	if !ok {
		return
	}

	if err := c.feeTypeService.DeleteFeeType(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
