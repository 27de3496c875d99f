package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

func activeWallet(id int64, balance, dailyLimit string) *models.StudentWallet {
	return &models.StudentWallet{
		ID:                  id,
		WalletID:            "WAL-TEST",
		StudentID:           id * 10,
		CurrentBalance:      dec(balance),
		TotalDeposits:       dec(balance),
		DailySpendingLimit:  dec(dailyLimit),
		LowBalanceThreshold: dec("50"),
		Status:              models.WalletActive,
	}
}

func newTestWalletService(repo WalletRepository) WalletService {
	return NewWalletService(repo, WalletLimits{
		MaxTopup:          dec("100000"),
		DefaultDailyLimit: dec("500"),
		DefaultLowBalance: dec("50"),
	})
}

func TestWalletTopup(t *testing.T) {
	repo := newFakeWalletRepo(activeWallet(1, "100", "500"))
	svc := newTestWalletService(repo)

	entry, err := svc.Topup(context.Background(), 1, &dto.TopupRequest{Amount: dec("250.50")})
	require.NoError(t, err)

	assert.Equal(t, models.TransactionTopup, entry.TransactionType)
	assert.True(t, dec("100").Equal(entry.BalanceBefore))
	assert.True(t, dec("350.50").Equal(entry.BalanceAfter))
	assert.True(t, strings.HasPrefix(entry.Reference, "TOP-"))
	assert.Equal(t, "Wallet top-up", entry.Description)

	w, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, dec("350.50").Equal(w.CurrentBalance))
	assert.True(t, dec("350.50").Equal(w.TotalDeposits))
}

func TestWalletTopupValidation(t *testing.T) {
	repo := newFakeWalletRepo(activeWallet(1, "0", "500"))
	svc := newTestWalletService(repo)

	tests := []struct {
		name   string
		amount string
		msg    string
	}{
		{"zero", "0", "Amount must be greater than zero"},
		{"negative", "-5", "Amount must be greater than zero"},
		{"above maximum", "100000.01", "Amount cannot exceed 100000.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Topup(context.Background(), 1, &dto.TopupRequest{Amount: dec(tt.amount)})
			require.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
	assert.Empty(t, repo.ledger)
}

func TestWalletTopupRejectsFrozenWallet(t *testing.T) {
	w := activeWallet(1, "10", "500")
	w.Status = models.WalletFrozen
	svc := newTestWalletService(newFakeWalletRepo(w))

	_, err := svc.Topup(context.Background(), 1, &dto.TopupRequest{Amount: dec("10")})
	assert.ErrorIs(t, err, apperrors.ErrWalletInactive)
}

func TestWalletPurchaseRules(t *testing.T) {
	tests := []struct {
		name      string
		balance   string
		limit     string
		spent     string
		amount    string
		category  string
		wantErr   error
		wantAfter string
	}{
		{name: "ok", balance: "100", limit: "500", amount: "40", category: "canteen", wantAfter: "60"},
		{name: "category case insensitive", balance: "100", limit: "500", amount: "40", category: "Stationery", wantAfter: "60"},
		{name: "exact balance", balance: "40", limit: "500", amount: "40", category: "canteen", wantAfter: "0"},
		{name: "insufficient balance", balance: "30", limit: "500", amount: "40", category: "canteen", wantErr: apperrors.ErrInsufficientBalance},
		{name: "daily limit reached", balance: "1000", limit: "100", spent: "80", amount: "30", category: "event", wantErr: apperrors.ErrDailyLimitExceeded},
		{name: "daily limit exactly", balance: "1000", limit: "100", spent: "70", amount: "30", category: "event", wantAfter: "970"},
		{name: "zero limit means unlimited", balance: "1000", limit: "0", spent: "900", amount: "50", category: "other", wantAfter: "950"},
		{name: "unknown category", balance: "100", limit: "500", amount: "10", category: "gaming", wantErr: apperrors.ErrValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newFakeWalletRepo(activeWallet(1, tt.balance, tt.limit))
			if tt.spent != "" {
				repo.spent[1] = dec(tt.spent)
			}
			svc := newTestWalletService(repo)

			entry, err := svc.Purchase(context.Background(), 1, &dto.PurchaseRequest{
				Amount:      dec(tt.amount),
				Category:    tt.category,
				Description: "Lunch and snacks",
			})
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, repo.ledger)
				return
			}
			require.NoError(t, err)
			assert.True(t, dec(tt.wantAfter).Equal(entry.BalanceAfter), "balance after %s", entry.BalanceAfter)
			require.NotNil(t, entry.Category)
			assert.Equal(t, strings.ToLower(tt.category), *entry.Category)
		})
	}
}

func TestWalletPurchaseDescriptionRequired(t *testing.T) {
	svc := newTestWalletService(newFakeWalletRepo(activeWallet(1, "100", "500")))

	_, err := svc.Purchase(context.Background(), 1, &dto.PurchaseRequest{Amount: dec("5"), Category: "canteen", Description: "  "})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Contains(t, err.Error(), "Description is required")

	_, err = svc.Purchase(context.Background(), 1, &dto.PurchaseRequest{Amount: dec("5"), Category: "canteen", Description: "ab"})
	require.ErrorIs(t, err, apperrors.ErrValidationFailed)
	assert.Contains(t, err.Error(), "between 3 and 200")
}

func TestWalletBalanceNeverNegativeUnderConcurrency(t *testing.T) {
	repo := newFakeWalletRepo(activeWallet(1, "100", "0"))
	svc := newTestWalletService(repo)

	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := svc.Purchase(context.Background(), 1, &dto.PurchaseRequest{Amount: dec("30"), Category: "canteen", Description: "Lunch"})
			errs <- err
		}()
	}

	succeeded := 0
	for i := 0; i < 10; i++ {
		if err := <-errs; err == nil {
			succeeded++
		} else {
			assert.ErrorIs(t, err, apperrors.ErrInsufficientBalance)
		}
	}

	assert.Equal(t, 3, succeeded)
	w, err := svc.GetWallet(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, dec("10").Equal(w.CurrentBalance))
}

func TestWalletBulkTopupReportsEachWallet(t *testing.T) {
	frozen := activeWallet(2, "0", "500")
	frozen.Status = models.WalletFrozen
	repo := newFakeWalletRepo(activeWallet(1, "0", "500"), frozen)
	svc := newTestWalletService(repo)

	resp, err := svc.BulkTopup(context.Background(), &dto.BulkTopupRequest{
		Items: []dto.BulkTopupItem{
			{WalletID: 1, Amount: dec("100")},
			{WalletID: 2, Amount: dec("100")},
			{WalletID: 3, Amount: dec("100")},
			{WalletID: 1, Amount: dec("0")},
		},
		Reference: "TERM1",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, resp.Succeeded)
	assert.Equal(t, 3, resp.Failed)
	require.Len(t, resp.Results, 4)
	assert.True(t, resp.Results[0].Success)
	assert.True(t, dec("100").Equal(*resp.Results[0].NewBalance))
	assert.Equal(t, apperrors.ErrWalletInactive.Error(), resp.Results[1].Error)
	assert.Equal(t, apperrors.ErrWalletNotFound.Error(), resp.Results[2].Error)
	assert.False(t, resp.Results[3].Success)
	assert.Equal(t, "TERM1-1", repo.ledger[0].Reference)
}

func TestWalletBulkTopupLimits(t *testing.T) {
	svc := NewWalletService(newFakeWalletRepo(), WalletLimits{BulkTopupMaxWallets: 2})

	_, err := svc.BulkTopup(context.Background(), &dto.BulkTopupRequest{})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	items := []dto.BulkTopupItem{{WalletID: 1, Amount: dec("1")}, {WalletID: 2, Amount: dec("1")}, {WalletID: 3, Amount: dec("1")}}
	_, err = svc.BulkTopup(context.Background(), &dto.BulkTopupRequest{Items: items})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestWalletCreateUsesDefaults(t *testing.T) {
	repo := newFakeWalletRepo()
	svc := newTestWalletService(repo)

	w, err := svc.CreateWallet(context.Background(), 55)
	require.NoError(t, err)
	assert.Equal(t, int64(55), w.StudentID)
	assert.True(t, strings.HasPrefix(w.WalletID, "WAL-"))
	assert.Len(t, w.WalletID, len("WAL-")+12)
	assert.True(t, dec("500").Equal(w.DailySpendingLimit))
	assert.True(t, dec("50").Equal(w.LowBalanceThreshold))
	assert.Equal(t, models.WalletActive, w.Status)

	_, err = svc.CreateWallet(context.Background(), 55)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestWalletBalance(t *testing.T) {
	repo := newFakeWalletRepo(activeWallet(1, "45", "500"))
	repo.spent[1] = dec("12")
	svc := newTestWalletService(repo)

	bal, err := svc.GetBalance(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, dec("45").Equal(bal.CurrentBalance))
	assert.True(t, dec("12").Equal(bal.SpentToday))
	assert.True(t, bal.IsLowBalance)
	assert.Equal(t, "active", bal.Status)

	_, err = svc.GetBalance(context.Background(), 9)
	assert.ErrorIs(t, err, apperrors.ErrWalletNotFound)
}

func TestWalletStatement(t *testing.T) {
	repo := newFakeWalletRepo(activeWallet(1, "0", "0"))
	repo.wallets[1].TotalDeposits = decimal.Zero
	svc := newTestWalletService(repo)
	ctx := context.Background()

	_, err := svc.Topup(ctx, 1, &dto.TopupRequest{Amount: dec("200")})
	require.NoError(t, err)
	_, err = svc.Purchase(ctx, 1, &dto.PurchaseRequest{Amount: dec("35"), Category: "canteen", Description: "Lunch"})
	require.NoError(t, err)
	_, err = svc.Topup(ctx, 1, &dto.TopupRequest{Amount: dec("15")})
	require.NoError(t, err)

	// move the first top-up into the previous period
	repo.ledger[0].CreatedAt = time.Now().AddDate(0, 0, -10)
	from := time.Now().AddDate(0, 0, -1)

	stmt, err := svc.GetStatement(ctx, 1, &from, nil)
	require.NoError(t, err)
	assert.True(t, dec("200").Equal(stmt.OpeningBalance))
	assert.True(t, dec("180").Equal(stmt.ClosingBalance))
	assert.True(t, dec("15").Equal(stmt.TotalDeposits))
	assert.True(t, dec("35").Equal(stmt.TotalWithdrawals))
	assert.Len(t, stmt.Transactions, 2)

	to := from.AddDate(0, 0, -5)
	_, err = svc.GetStatement(ctx, 1, &from, &to)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
