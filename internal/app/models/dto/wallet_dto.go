package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateWalletRequest opens a wallet for a student
type CreateWalletRequest struct {
	StudentID int64 `json:"studentId" binding:"required,gt=0" example:"12"`
}

// TopupRequest adds money to a wallet
type TopupRequest struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"250"`
	Reference   string          `json:"reference" binding:"omitempty,max=100"`
	Description string          `json:"description" binding:"omitempty,max=200"`
}

// PurchaseRequest spends money from a wallet
type PurchaseRequest struct {
	Amount      decimal.Decimal `json:"amount" swaggertype:"number" example:"12.50"`
	Category    string          `json:"category" example:"canteen"`
	Description string          `json:"description" example:"Lunch"`
}

// BulkTopupItem is one wallet of a bulk top-up
type BulkTopupItem struct {
	WalletID int64           `json:"walletId" binding:"required,gt=0"`
	Amount   decimal.Decimal `json:"amount" swaggertype:"number"`
}

// BulkTopupRequest tops up many wallets at once
type BulkTopupRequest struct {
	Items       []BulkTopupItem `json:"items" binding:"required,min=1,dive"`
	Reference   string          `json:"reference" binding:"omitempty,max=100"`
	Description string          `json:"description" binding:"omitempty,max=200"`
}

// BulkTopupResult reports the outcome for one wallet
type BulkTopupResult struct {
	WalletID   int64            `json:"walletId"`
	Success    bool             `json:"success"`
	NewBalance *decimal.Decimal `json:"newBalance,omitempty" swaggertype:"number"`
	Error      string           `json:"error,omitempty"`
}

// BulkTopupResponse summarizes a bulk top-up
type BulkTopupResponse struct {
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Results   []BulkTopupResult `json:"results"`
}

// WalletBalanceResponse is the balance view of a wallet
type WalletBalanceResponse struct {
	WalletID            string          `json:"walletId"`
	CurrentBalance      decimal.Decimal `json:"currentBalance" swaggertype:"number"`
	DailySpendingLimit  decimal.Decimal `json:"dailySpendingLimit" swaggertype:"number"`
	SpentToday          decimal.Decimal `json:"spentToday" swaggertype:"number"`
	LowBalanceThreshold decimal.Decimal `json:"lowBalanceThreshold" swaggertype:"number"`
	IsLowBalance        bool            `json:"isLowBalance"`
	Status              string          `json:"status"`
}

// StatementQuery bounds a wallet statement
type StatementQuery struct {
	From *time.Time `form:"from" time_format:"2006-01-02"`
	To   *time.Time `form:"to" time_format:"2006-01-02"`
}
