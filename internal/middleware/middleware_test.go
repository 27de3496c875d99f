package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorDetail {
	t.Helper()
	var body struct {
		Error dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		code    dto.ErrorCode
		message string
	}{
		{"not found sentinel", apperrors.ErrWalletNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound, "wallet not found"},
		{"custom not found", apperrors.NewResourceNotFoundError("student not found"), http.StatusNotFound, dto.ErrorCodeResourceNotFound, "student not found"},
		{"duplicate", apperrors.ErrFeeTypeAlreadyExists, http.StatusConflict, dto.ErrorCodeResourceAlreadyExists, apperrors.ErrFeeTypeAlreadyExists.Error()},
		{"in use", fmt.Errorf("delete: %w", apperrors.ErrFeeTypeInUse), http.StatusConflict, dto.ErrorCodeConflict, "delete: " + apperrors.ErrFeeTypeInUse.Error()},
		{"validation", fmt.Errorf("%w: Amount must be greater than zero", apperrors.ErrValidationFailed), http.StatusBadRequest, dto.ErrorCodeValidationFailed, "Amount must be greater than zero"},
		{"insufficient", apperrors.ErrInsufficientBalance, http.StatusUnprocessableEntity, dto.ErrorCodeInsufficientBalance, "insufficient wallet balance"},
		{"daily limit", apperrors.ErrDailyLimitExceeded, http.StatusUnprocessableEntity, dto.ErrorCodeDailyLimitExceeded, "daily spending limit exceeded"},
		{"inactive", apperrors.ErrWalletInactive, http.StatusUnprocessableEntity, dto.ErrorCodeWalletInactive, "wallet is not active"},
		{"unknown", errors.New("connection refused"), http.StatusInternalServerError, dto.ErrorCodeInternalServer, "Internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, detail := ClassifyError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.code, detail.Code)
			assert.Equal(t, tt.message, detail.Message)
		})
	}
}

func TestHandleAPIErrorWithPrefix(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	HandleAPIErrorWithPrefix(c, errors.New("timeout"), "Error fetching payment items: ")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "Error fetching payment items: timeout", decodeError(t, w).Message)
}

func newAuthRouter(jwtService *auth.JWTService) *gin.Engine {
	m := NewAuthMiddleware(jwtService)
	r := gin.New()
	r.GET("/open", m.JWTAuth(), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/admin", m.JWTAuth(), m.RoleRequired(models.RoleAdmin), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetInt64(ContextUserID)})
	})
	return r
}

func TestAuthMiddleware(t *testing.T) {
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "schooladmin", AccessTokenExp: time.Hour})
	router := newAuthRouter(jwtService)

	adminToken, err := jwtService.GenerateToken(7, "admin@school.test", models.RoleAdmin)
	require.NoError(t, err)
	teacherToken, err := jwtService.GenerateToken(8, "teacher@school.test", models.RoleTeacher)
	require.NoError(t, err)

	t.Run("missing header", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeUnauthorized, decodeError(t, w).Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, dto.ErrorCodeInvalidToken, decodeError(t, w).Code)
	})

	t.Run("admin allowed", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+adminToken)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":7}`, w.Body.String())
	})

	t.Run("raw token accepted", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", adminToken)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("teacher forbidden", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+teacherToken)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, dto.ErrorCodeForbidden, decodeError(t, w).Code)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := auth.NewJWTService(auth.JWTConfig{SecretKey: "other", TokenIssuer: "schooladmin"})
		token, err := other.GenerateToken(7, "admin@school.test", models.RoleAdmin)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/open", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Header().Get(RequestIDHeader))
}

func TestBindJSONReportsFields(t *testing.T) {
	type body struct {
		Status string `json:"status" binding:"required,oneof=paid pending"`
	}
	r := gin.New()
	r.POST("/", func(c *gin.Context) {
		var b body
		if !BindJSON(c, &b) {
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"status":"lost"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeValidationFailed, detail.Code)
	assert.Equal(t, "Status", detail.Field)
	assert.Contains(t, detail.Message, "must be one of")
}
