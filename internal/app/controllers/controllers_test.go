package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/services"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubPaymentItemService struct {
	services.PaymentItemService
	listErr   error
	updateErr error
	lastReq   *dto.UpdatePaymentStatusRequest
}

func (s *stubPaymentItemService) ListBySchedule(_ context.Context, scheduleID int64) ([]*models.PaymentItem, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return []*models.PaymentItem{{ID: 1, PaymentScheduleID: scheduleID}}, nil
}

func (s *stubPaymentItemService) UpdateStatus(_ context.Context, id int64, req *dto.UpdatePaymentStatusRequest) (*models.PaymentItem, error) {
	s.lastReq = req
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	return &models.PaymentItem{ID: id, Status: models.PaymentStatus(req.Status)}, nil
}

type stubWalletService struct {
	services.WalletService
	purchaseErr error
}

func (s *stubWalletService) Purchase(_ context.Context, id int64, req *dto.PurchaseRequest) (*models.WalletTransaction, error) {
	if s.purchaseErr != nil {
		return nil, s.purchaseErr
	}
	return &models.WalletTransaction{ID: 9, WalletID: id, Amount: req.Amount, TransactionType: models.TransactionPurchase}, nil
}

type stubDivisionService struct {
	services.DivisionService
	deleteErr error
}

func (s *stubDivisionService) DeleteDivision(context.Context, int64) error {
	return s.deleteErr
}

func perform(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) dto.ErrorDetail {
	t.Helper()
	var resp struct {
		Error dto.ErrorDetail `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Error
}

func paymentRouter(svc services.PaymentItemService) *gin.Engine {
	c := NewPaymentItemController(svc)
	r := gin.New()
	r.GET("/payment-items/by-schedule/:scheduleId", c.ListBySchedule)
	r.PUT("/payment-items/:id/status", c.UpdateStatus)
	return r
}

func TestListByScheduleSuccess(t *testing.T) {
	w := perform(paymentRouter(&stubPaymentItemService{}), http.MethodGet, "/payment-items/by-schedule/7", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"payment_schedule_id":7`)
}

func TestListByScheduleServerErrorMessage(t *testing.T) {
	svc := &stubPaymentItemService{listErr: fmt.Errorf("query failed: %w", assert.AnError)}
	w := perform(paymentRouter(svc), http.MethodGet, "/payment-items/by-schedule/7", "")

	require.Equal(t, http.StatusInternalServerError, w.Code)
	detail := decodeError(t, w)
	assert.Equal(t, dto.ErrorCodeInternalServer, detail.Code)
	assert.True(t, strings.HasPrefix(detail.Message, "Error fetching payment items: "))
}

func TestListByScheduleInvalidID(t *testing.T) {
	w := perform(paymentRouter(&stubPaymentItemService{}), http.MethodGet, "/payment-items/by-schedule/abc", "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateStatus(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		serviceErr error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"paid", `{"status":"paid"}`, nil, http.StatusOK, ""},
		{"unknown status rejected by binding", `{"status":"refunded"}`, nil, http.StatusBadRequest, dto.ErrorCodeValidationFailed},
		{"missing item", `{"status":"paid"}`, apperrors.ErrPaymentItemNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
		{"overpayment", `{"status":"partial","paid_amount":9999}`,
			fmt.Errorf("%w: paid_amount exceeds the item amount", apperrors.ErrValidationFailed),
			http.StatusBadRequest, dto.ErrorCodeValidationFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubPaymentItemService{updateErr: tt.serviceErr}
			w := perform(paymentRouter(svc), http.MethodPut, "/payment-items/3/status", tt.body)

			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
			}
		})
	}
}

func TestUpdateStatusPassesPaidAmount(t *testing.T) {
	svc := &stubPaymentItemService{}
	w := perform(paymentRouter(svc), http.MethodPut, "/payment-items/3/status", `{"status":"partial","paid_amount":"120.50"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, svc.lastReq.PaidAmount)
	assert.True(t, svc.lastReq.PaidAmount.Equal(decimal.RequireFromString("120.50")))
}

func TestPurchaseErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   dto.ErrorCode
	}{
		{"insufficient balance", apperrors.ErrInsufficientBalance, http.StatusUnprocessableEntity, dto.ErrorCodeInsufficientBalance},
		{"daily limit", apperrors.ErrDailyLimitExceeded, http.StatusUnprocessableEntity, dto.ErrorCodeDailyLimitExceeded},
		{"frozen", apperrors.ErrWalletInactive, http.StatusUnprocessableEntity, dto.ErrorCodeWalletInactive},
		{"missing wallet", apperrors.ErrWalletNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewWalletController(&stubWalletService{purchaseErr: tt.err})
			r := gin.New()
			r.POST("/student-wallets/:id/purchase", c.Purchase)

			w := perform(r, http.MethodPost, "/student-wallets/5/purchase", `{"amount":"20","category":"canteen","description":"Lunch"}`)

			require.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, decodeError(t, w).Code)
		})
	}
}

func TestPurchaseCreated(t *testing.T) {
	c := NewWalletController(&stubWalletService{})
	r := gin.New()
	r.POST("/student-wallets/:id/purchase", c.Purchase)

	w := perform(r, http.MethodPost, "/student-wallets/5/purchase", `{"amount":"20","category":"canteen","description":"Lunch"}`)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"transactionType":"purchase"`)
}

func TestDeleteDivision(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"empty division", nil, http.StatusNoContent},
		{"has students", apperrors.ErrDivisionHasStudents, http.StatusConflict},
		{"missing", apperrors.ErrDivisionNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassController(nil, &stubDivisionService{deleteErr: tt.err})
			r := gin.New()
			r.DELETE("/divisions/:id", c.DeleteDivision)

			w := perform(r, http.MethodDelete, "/divisions/2", "")
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestListDivisionsRejectsBadClassID(t *testing.T) {
	c := NewClassController(nil, &stubDivisionService{})
	r := gin.New()
	r.GET("/divisions", c.ListDivisions)

	w := perform(r, http.MethodGet, "/divisions?classId=-4", "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "classId", decodeError(t, w).Field)
}
