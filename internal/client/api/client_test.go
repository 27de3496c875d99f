package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositorySendsTokenAndQuery(t *testing.T) {
	var gotAuth, gotQuery, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotQuery = r.URL.RawQuery
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`{"data":[{"id":1,"code":"TUITION"}],"timestamp":"2025-01-01T00:00:00Z"}`))
	}))
	defer srv.Close()

	repo := NewRepository(Config{BaseURL: srv.URL + "/api/v1/", Token: "abc"})
	active := true
	env, err := repo.ListFeeTypes(context.Background(), &active)
	require.NoError(t, err)

	assert.Equal(t, "Bearer abc", gotAuth)
	assert.Equal(t, "/api/v1/fee-types", gotPath)
	assert.Equal(t, "active=true", gotQuery)
	assert.JSONEq(t, `[{"id":1,"code":"TUITION"}]`, string(env.Data))
}

func TestRepositoryPostsJSON(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"id":3}}`))
	}))
	defer srv.Close()

	repo := NewRepository(Config{BaseURL: srv.URL})
	_, err := repo.TopupWallet(context.Background(), 3, map[string]any{"amount": 50})
	require.NoError(t, err)
	assert.Equal(t, float64(50), body["amount"])
}

func TestRepositoryReturnsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"error":{"code":"WAL_002","message":"insufficient wallet balance"}}`))
	}))
	defer srv.Close()

	repo := NewRepository(Config{BaseURL: srv.URL})
	_, err := repo.PurchaseFromWallet(context.Background(), 1, map[string]any{})
	require.Error(t, err)

	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusUnprocessableEntity, httpErr.StatusCode)
	assert.Equal(t, "insufficient wallet balance", httpErr.Message())
	assert.Contains(t, err.Error(), "422")
}

func TestRepositoryDeleteWithEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/divisions/4", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	repo := NewRepository(Config{BaseURL: srv.URL})
	assert.NoError(t, repo.DeleteDivision(context.Background(), 4))
}

func TestStatementDates(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	repo := NewRepository(Config{BaseURL: srv.URL})
	from := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := repo.GetWalletStatement(context.Background(), 2, from, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "from=2025-03-01", gotQuery)
}

func TestHTTPErrorWithoutJSONBody(t *testing.T) {
	err := &HTTPError{StatusCode: http.StatusBadGateway, Body: []byte("<html>bad gateway</html>")}
	assert.Empty(t, err.Message())
	assert.Equal(t, "request failed with status 502", err.Error())
}
