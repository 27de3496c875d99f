package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// errorMapping maps a family of sentinel errors to an HTTP status and error code
type errorMapping struct {
	errs   []error
	status int
	code   dto.ErrorCode
}

var errorMappings = []errorMapping{
	{
		errs: []error{
			apperrors.ErrResourceNotFound,
			apperrors.ErrFeeTypeNotFound,
			apperrors.ErrFeeDefinitionNotFound,
			apperrors.ErrFeeAssignmentNotFound,
			apperrors.ErrPaymentItemNotFound,
			apperrors.ErrPaymentScheduleNotFound,
			apperrors.ErrClassNotFound,
			apperrors.ErrDivisionNotFound,
			apperrors.ErrBusStopNotFound,
			apperrors.ErrWalletNotFound,
		},
		status: http.StatusNotFound,
		code:   dto.ErrorCodeResourceNotFound,
	},
	{
		errs:   []error{apperrors.ErrResourceAlreadyExists, apperrors.ErrFeeTypeAlreadyExists, apperrors.ErrDivisionAlreadyExists},
		status: http.StatusConflict,
		code:   dto.ErrorCodeResourceAlreadyExists,
	},
	{
		errs:   []error{apperrors.ErrConflict, apperrors.ErrFeeTypeInUse, apperrors.ErrFeeDefinitionInUse, apperrors.ErrDivisionHasStudents},
		status: http.StatusConflict,
		code:   dto.ErrorCodeConflict,
	},
	{errs: []error{apperrors.ErrWalletInactive}, status: http.StatusUnprocessableEntity, code: dto.ErrorCodeWalletInactive},
	{errs: []error{apperrors.ErrInsufficientBalance}, status: http.StatusUnprocessableEntity, code: dto.ErrorCodeInsufficientBalance},
	{errs: []error{apperrors.ErrDailyLimitExceeded}, status: http.StatusUnprocessableEntity, code: dto.ErrorCodeDailyLimitExceeded},
	{
		errs:   []error{apperrors.ErrValidationFailed, apperrors.ErrInvalidTopupAmount, apperrors.ErrInvalidPurchaseDetails},
		status: http.StatusBadRequest,
		code:   dto.ErrorCodeValidationFailed,
	},
	{errs: []error{apperrors.ErrBadRequest}, status: http.StatusBadRequest, code: dto.ErrorCodeBadRequest},
	{errs: []error{apperrors.ErrPermissionDenied}, status: http.StatusForbidden, code: dto.ErrorCodeForbidden},
	{errs: []error{apperrors.ErrTokenExpired}, status: http.StatusUnauthorized, code: dto.ErrorCodeExpiredToken},
	{errs: []error{apperrors.ErrTokenInvalid}, status: http.StatusUnauthorized, code: dto.ErrorCodeInvalidToken},
}

// HandleAPIError writes the error response matching err
func HandleAPIError(c *gin.Context, err error) {
	HandleAPIErrorWithPrefix(c, err, "")
}

// HandleAPIErrorWithPrefix is HandleAPIError where unexpected errors are
// reported as "<prefix><error>" instead of a generic message.
func HandleAPIErrorWithPrefix(c *gin.Context, err error, prefix string) {
	status, detail := ClassifyError(err)
	if status == http.StatusInternalServerError {
		logger.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		if prefix != "" {
			detail.Message = prefix + err.Error()
		}
	}
	c.AbortWithStatusJSON(status, dto.NewErrorResponse(detail))
}

// ClassifyError returns the HTTP status and error detail for err
func ClassifyError(err error) (int, *dto.ErrorDetail) {
	for _, m := range errorMappings {
		if apperrors.Is(err, m.errs[0], m.errs[1:]...) {
			return m.status, dto.NewErrorDetail(m.code, errorMessage(err))
		}
	}
	return http.StatusInternalServerError, dto.NewErrorDetail(dto.ErrorCodeInternalServer, "Internal server error")
}

// errorMessage strips the generic sentinel prefix so clients see the specific reason
func errorMessage(err error) string {
	var custom *apperrors.CustomError
	if errors.As(err, &custom) && custom.Message != "" {
		return custom.Message
	}
	msg := err.Error()
	for _, sentinel := range []error{apperrors.ErrValidationFailed, apperrors.ErrBadRequest} {
		if trimmed, ok := strings.CutPrefix(msg, sentinel.Error()+": "); ok {
			return trimmed
		}
	}
	return msg
}
