package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/yigit/schooladmin/internal/app/models/dto"
)

// BindJSON binds the request body into obj and writes a 400 response on failure.
// gin runs go-playground/validator on the `binding` tags during the bind.
func BindJSON(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(HandleValidationError(err)))
		return false
	}
	return true
}

// BindQuery binds query parameters into obj and writes a 400 response on failure
func BindQuery(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindQuery(obj); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponse(HandleValidationError(err)))
		return false
	}
	return true
}

// HandleValidationError turns a bind error into an error detail listing each failed field
func HandleValidationError(err error) *dto.ErrorDetail {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return dto.NewErrorDetail(dto.ErrorCodeBadRequest, "Invalid request format").WithDetails(err.Error())
	}

	fields := dto.NewFieldErrors()
	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msg := formatValidationError(fe)
		fields.Add(fe.Field(), msg)
		messages = append(messages, msg)
	}

	detail := dto.NewErrorDetail(dto.ErrorCodeValidationFailed, strings.Join(messages, "; ")).WithDetails(fields.Errors)
	if len(verrs) == 1 {
		detail = detail.WithField(verrs[0].Field())
	}
	return detail
}

// formatValidationError creates a human-readable validation error message
func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return e.Field() + " is required"
	case "min":
		return e.Field() + " must be at least " + e.Param()
	case "max":
		return e.Field() + " must be at most " + e.Param()
	case "gt":
		return e.Field() + " must be greater than " + e.Param()
	case "oneof":
		return e.Field() + " must be one of: " + e.Param()
	case "dive":
		return e.Field() + " contains an invalid item"
	default:
		return e.Field() + " validation failed: " + e.Tag()
	}
}
