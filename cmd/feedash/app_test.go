package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooladmin/internal/pkg/auth"
)

func fakeAPI(t *testing.T, routes map[string]string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := routes[r.Method+" "+r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"error":{"code":"RES_001","message":"Wallet not found"}}`))
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv.URL
}

func run(t *testing.T, baseURL string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	argv := append([]string{"feedash", "--config", "testdata/missing.yaml", "--quiet", "--base-url", baseURL}, args...)
	err := newApp(&out).Run(argv)
	return out.String(), err
}

func TestFeeTypesCommand(t *testing.T) {
	url := fakeAPI(t, map[string]string{
		"GET /fee-types": `{"data":[{"id":1,"code":"TUITION","name":"Tuition","active":true},{"id":2,"code":"EXAM","name":"Exam","active":false}]}`,
	})

	out, err := run(t, url, "fee-types")
	require.NoError(t, err)
	assert.Contains(t, out, "TUITION")
	assert.Contains(t, out, "Exam")
}

func TestWalletBalanceCommand(t *testing.T) {
	url := fakeAPI(t, map[string]string{
		"GET /student-wallets/7/balance": `{"data":{"walletId":"W-7","currentBalance":"40.00","dailySpendingLimit":"100.00","spentToday":"75.00","lowBalanceThreshold":"50.00","isLowBalance":true,"status":"active"}}`,
	})

	out, err := run(t, url, "wallet", "balance", "7")
	require.NoError(t, err)
	assert.Contains(t, out, "Balance: 40.00")
	assert.Contains(t, out, "Remaining today: 25.00")
	assert.Contains(t, out, "Low balance")

	_, err = run(t, url, "wallet", "balance", "8")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Wallet not found")
}

func TestWalletTopupRejectsInvalidAmount(t *testing.T) {
	url := fakeAPI(t, nil)

	_, err := run(t, url, "wallet", "topup", "--amount", "-5", "7")
	require.Error(t, err)

	_, err = run(t, url, "wallet", "topup", "--amount", "abc", "7")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid amount")
}

func TestEntityFlags(t *testing.T) {
	url := fakeAPI(t, nil)

	_, err := run(t, url, "fee-summary")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--class or --bus-stop is required")

	_, err = run(t, url, "fee-summary", "--class", "1", "--bus-stop", "2")
	require.Error(t, err)
}

func TestClassesCommand(t *testing.T) {
	admitted := time.Now().AddDate(0, 0, -3).UTC().Format(time.RFC3339)
	url := fakeAPI(t, map[string]string{
		"GET /classes":   `{"data":[{"id":1,"name":"Grade 1"}]}`,
		"GET /divisions": `{"data":[]}`,
		"GET /enrollments": `{"data":[{"id":5,"status":"active","admission_type":"new","admission_date":"` + admitted + `",` +
			`"student":{"id":9,"first_name":"Asha","last_name":"Rao","gender":"female"},"class":{"id":1,"name":"grade 1"}}]}`,
	})

	out, err := run(t, url, "classes", "--name", "GRADE 1")
	require.NoError(t, err)
	assert.Contains(t, out, "Grade 1: 1 students")
	assert.Contains(t, out, "gender: female=1")
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("JWT_ISSUER", "schooladmin")

	out, err := run(t, "http://unused", "token", "--user-id", "42", "--role", "teacher")
	require.NoError(t, err)

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", TokenIssuer: "schooladmin"})
	claims, err := jwtService.ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "TEACHER", claims.RoleType)

	_, err = run(t, "http://unused", "token", "--role", "janitor")
	require.Error(t, err)
}
