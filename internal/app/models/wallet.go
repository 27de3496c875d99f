package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WalletStatus is the lifecycle state of a student wallet
type WalletStatus string

const (
	WalletActive WalletStatus = "active"
	WalletFrozen WalletStatus = "frozen"
	WalletClosed WalletStatus = "closed"
)

// TransactionType distinguishes ledger rows
type TransactionType string

const (
	TransactionTopup    TransactionType = "topup"
	TransactionPurchase TransactionType = "purchase"
)

// StudentWallet is a prepaid balance students spend at school.
type StudentWallet struct {
	ID                  int64           `db:"id" json:"id"`
	WalletID            string          `db:"wallet_id" json:"walletId"`
	StudentID           int64           `db:"student_id" json:"studentId"`
	CurrentBalance      decimal.Decimal `db:"current_balance" json:"currentBalance"`
	TotalDeposits       decimal.Decimal `db:"total_deposits" json:"totalDeposits"`
	TotalWithdrawals    decimal.Decimal `db:"total_withdrawals" json:"totalWithdrawals"`
	DailySpendingLimit  decimal.Decimal `db:"daily_spending_limit" json:"dailySpendingLimit"`
	LowBalanceThreshold decimal.Decimal `db:"low_balance_threshold" json:"lowBalanceThreshold"`
	Status              WalletStatus    `db:"status" json:"status"`
	CreatedAt           time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time       `db:"updated_at" json:"updatedAt"`

	Student *Student `json:"student,omitempty"`
}

// IsLowBalance reports whether the balance is at or below the threshold.
func (w *StudentWallet) IsLowBalance() bool {
	return w.CurrentBalance.LessThanOrEqual(w.LowBalanceThreshold)
}

// WalletTransaction is an immutable ledger row.
type WalletTransaction struct {
	ID              int64           `db:"id" json:"id"`
	WalletID        int64           `db:"wallet_id" json:"walletId"`
	TransactionType TransactionType `db:"transaction_type" json:"transactionType"`
	Amount          decimal.Decimal `db:"amount" json:"amount"`
	BalanceBefore   decimal.Decimal `db:"balance_before" json:"balanceBefore"`
	BalanceAfter    decimal.Decimal `db:"balance_after" json:"balanceAfter"`
	Category        *string         `db:"category" json:"category,omitempty"`
	Description     string          `db:"description" json:"description"`
	Reference       string          `db:"reference" json:"reference"`
	CreatedAt       time.Time       `db:"created_at" json:"createdAt"`
}

// WalletStatement summarizes a wallet over a period.
type WalletStatement struct {
	Wallet           *StudentWallet       `json:"wallet"`
	From             time.Time            `json:"from"`
	To               time.Time            `json:"to"`
	OpeningBalance   decimal.Decimal      `json:"openingBalance"`
	ClosingBalance   decimal.Decimal      `json:"closingBalance"`
	TotalDeposits    decimal.Decimal      `json:"totalDeposits"`
	TotalWithdrawals decimal.Decimal      `json:"totalWithdrawals"`
	Transactions     []*WalletTransaction `json:"transactions"`
}
