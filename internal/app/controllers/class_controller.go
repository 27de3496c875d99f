package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/middleware"
)

// ClassController handles classes, divisions and enrollments
type ClassController struct {
	classService    services.ClassService
	divisionService services.DivisionService
}

// NewClassController creates a new ClassController
func NewClassController(classService services.ClassService, divisionService services.DivisionService) *ClassController {
	return &ClassController{classService: classService, divisionService: divisionService}
}

// ListClasses lists classes with their active headcount
// @Summary List classes
// @Tags classes
// @Produce json
// @Success 200 {object} dto.APIResponse{data=[]dto.ClassResponse}
// @Router /classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	classes, err := c.classService.ListClasses(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(classes))
}

// GetClass returns one class with its headcount
// @Summary Get a class
// @Tags classes
// @Produce json
// @Param id path int true "Class ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=dto.ClassResponse}
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Router /classes/{id} [get]
func (c *ClassController) GetClass(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "class")
	if !ok {
		return
	}

	class, err := c.classService.GetClass(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(class))
}

// ListEnrollments lists enrollments with student, class, division and academic year
// @Summary List enrollments
// @Tags enrollments
// @Produce json
// @Param classId query int false "Class ID"
// @Param divisionId query int false "Division ID"
// @Param status query string false "Enrollment status"
// @Success 200 {object} dto.APIResponse{data=[]models.Enrollment}
// @Router /enrollments [get]
func (c *ClassController) ListEnrollments(ctx *gin.Context) {
	var filter dto.EnrollmentFilter
	if !middleware.BindQuery(ctx, &filter) {
		return
	}

	enrollments, err := c.classService.ListEnrollments(ctx.Request.Context(), &filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(enrollments))
}

// ListDivisions lists divisions, optionally of one class
// @Summary List divisions
// @Tags divisions
// @Produce json
// @Param classId query int false "Class ID"
// @Success 200 {object} dto.APIResponse{data=[]models.Division}
// @Router /divisions [get]
func (c *ClassController) ListDivisions(ctx *gin.Context) {
	var classID int64
	if raw := ctx.Query("classId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			errorDetail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, "Invalid classId parameter").WithField("classId")
			ctx.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(errorDetail))
			return
		}
		classID = id
	}

	divisions, err := c.divisionService.ListDivisions(ctx.Request.Context(), classID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(divisions))
}

// GetDivision returns one division
// @Summary Get a division
// @Tags divisions
// @Produce json
// @Param id path int true "Division ID" Format(int64) minimum(1)
// @Success 200 {object} dto.APIResponse{data=models.Division}
// @Failure 404 {object} dto.ErrorResponse "Division not found"
// @Router /divisions/{id} [get]
func (c *ClassController) GetDivision(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "division")
	if !ok {
		return
	}

	division, err := c.divisionService.GetDivision(ctx.Request.Context(), id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(division))
}

// CreateDivision creates a division in a class
// @Summary Create a division
// @Tags divisions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.DivisionRequest true "Division"
// @Success 201 {object} dto.APIResponse{data=models.Division}
// @Failure 404 {object} dto.ErrorResponse "Class not found"
// @Failure 409 {object} dto.ErrorResponse "Division name taken"
// @Router /divisions [post]
func (c *ClassController) CreateDivision(ctx *gin.Context) {
	var req dto.DivisionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	division, err := c.divisionService.CreateDivision(ctx.Request.Context(), &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, dto.NewAPIResponse(division))
}

// UpdateDivision updates a division
// @Summary Update a division
// @Tags divisions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Division ID" Format(int64) minimum(1)
// @Param request body dto.DivisionRequest true "Division"
// @Success 200 {object} dto.APIResponse{data=models.Division}
// @Failure 404 {object} dto.ErrorResponse "Division not found"
// @Router /divisions/{id} [put]
func (c *ClassController) UpdateDivision(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "division")
	if !ok {
		return
	}
	var req dto.DivisionRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}

	division, err := c.divisionService.UpdateDivision(ctx.Request.Context(), id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, dto.NewAPIResponse(division))
}

// DeleteDivision deletes an empty division
// @Summary Delete a division
// @Tags divisions
// @Security BearerAuth
// @Param id path int true "Division ID" Format(int64) minimum(1)
// @Success 204 "Deleted"
// @Failure 409 {object} dto.ErrorResponse "Division has students"
// @Router /divisions/{id} [delete]
func (c *ClassController) DeleteDivision(ctx *gin.Context) {
	id, ok := pathID(ctx, "id", "division")
	if !ok {
		return
	}

	if err := c.divisionService.DeleteDivision(ctx.Request.Context(), id); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
