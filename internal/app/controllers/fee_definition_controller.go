package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
)

// FeeDefinitionController handles fee definition endpoints
type FeeDefinitionController struct {
	feeDefinitionService services.FeeDefinitionService
}

// NewFeeDefinitionController creates a new FeeDefinitionController
func NewFeeDefinitionController(feeDefinitionService services.FeeDefinitionService) *FeeDefinitionController {
	return &FeeDefinitionController{feeDefinitionService: feeDefinitionService}
}

// ListFeeDefinitions lists fee definitions with their type populated
// @Summary List fee definitions
// @Tags fee-definitions
// @Produce json
// @Param typeId query int false "Filter by fee type"
// @Param frequency query string false "Filter by frequency" Enums(monthly, quarterly, term, yearly, one_time)
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} dto.APIResponse{data=[]models.FeeDefinition,meta=dto.PageMeta}
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Router /fee-definitions [get]
func (c *FeeDefinitionController) ListFeeDefinitions(ctx *gin.Context) {
	page, size := helpers.ParsePaginationParams(ctx)
	params := repositories.FeeDefinitionListParams{
		Frequency: ctx.Query("frequency"),
		Page:      page,
		Size:      size,
	}
	if raw := ctx.Query("typeId"); raw != "" {
		typeID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || typeID <= 0 {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid typeId parameter").WithField("typeId")
			ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		params.TypeID = &typeID
	}

	defs, pagination, err := c.feeDefinitionService.ListFeeDefinitions(ctx.Request.Context(), params)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewPagedResponse(defs, pagination))
}

// GetFeeDefinition returns one fee definition
// @Summary Get a fee definition
// @Tags fee-definitions
// @Produce json
// @Param id path int true "Fee definition ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.FeeDefinition}
// @Failure 404 {object} dto.ErrorResponse "Fee definition not found"
// @Router /fee-definitions/{id} [get]
func (c *FeeDefinitionController) GetFeeDefinition(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "fee definition")
	if !ok {
		return
	}

	fd, err := c.feeDefinitionService.GetFeeDefinition(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(fd))
}

// CreateFeeDefinition creates a fee definition
// @Summary Create a fee definition
// @Description Installments may add up to more than the base amount; the excess is reported in fee summaries.
// @Tags fee-definitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.FeeDefinitionRequest true "Fee definition"
// @Success 201 {object} dto.APIResponse{data=models.FeeDefinition}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Fee type not found"
// @Router /fee-definitions [post]
func (c *FeeDefinitionController) CreateFeeDefinition(ctx *gin.Context) {
	var req dto.FeeDefinitionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fd, err := c.feeDefinitionService.CreateFeeDefinition(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(fd))
}

// UpdateFeeDefinition replaces a fee definition
// @Summary Update a fee definition
// @Tags fee-definitions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Fee definition ID" Format(int64) minimum(1)
// @Param request body dto.FeeDefinitionRequest true "Fee definition"
// @Success 200 {object} dto.APIResponse{data=models.FeeDefinition}
// @Failure 400 {object} dto.ErrorResponse "Invalid request data"
// @Failure 404 {object} dto.ErrorResponse "Fee definition not found"
// @Router /fee-definitions/{id} [put]
func (c *FeeDefinitionController) UpdateFeeDefinition(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "fee definition")
	if !ok {
		return
	}
	var req dto.FeeDefinitionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	fd, err := c.feeDefinitionService.UpdateFeeDefinition(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(fd))
}

// DeleteFeeDefinition deletes an unused fee definition
// @Summary Delete a fee definition
// @Tags fee-definitions
// @Security BearerAuth
// @Param id path int true "Fee definition ID" Format(int64) minimum(1)
// @Success 204 "Deleted"
// @Failure 404 {object} dto.ErrorResponse "Fee definition not found"
// @Failure 409 {object} dto.ErrorResponse "Fee definition in use"
// @Router /fee-definitions/{id} [delete]
func (c *FeeDefinitionController) DeleteFeeDefinition(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "fee definition")
	if !ok {
		return
	}

	if err := c.feeDefinitionService.DeleteFeeDefinition(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
