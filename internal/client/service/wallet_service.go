package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yigit/schooladmin/internal/client/api"
	"github.com/yigit/schooladmin/internal/client/domain"
	"github.com/yigit/schooladmin/internal/client/mapper"
	"github.com/yigit/schooladmin/internal/pkg/validation"
)

// WalletRepository is the part of the API repository the wallet service uses
type WalletRepository interface {
	CreateWallet(ctx context.Context, studentID int64) (*api.Envelope, error)
	GetWallet(ctx context.Context, id int64) (*api.Envelope, error)
	GetWalletBalance(ctx context.Context, id int64) (*api.Envelope, error)
	GetWalletTransactions(ctx context.Context, id int64, page, size int) (*api.Envelope, error)
	GetWalletStatement(ctx context.Context, id int64, from, to time.Time) (*api.Envelope, error)
	TopupWallet(ctx context.Context, id int64, payload any) (*api.Envelope, error)
	PurchaseFromWallet(ctx context.Context, id int64, payload any) (*api.Envelope, error)
	BulkTopup(ctx context.Context, payload any) (*api.Envelope, error)
}

// TopupData is the input of a top-up
type TopupData struct {
	Amount      decimal.Decimal
	Reference   string
	Description string
}

// PurchaseData is the input of a purchase
type PurchaseData struct {
	Amount      decimal.Decimal
	Category    string
	Description string
}

// Balance is the balance view of a wallet
type Balance struct {
	WalletID            string
	CurrentBalance      decimal.Decimal
	DailySpendingLimit  decimal.Decimal
	SpentToday          decimal.Decimal
	LowBalanceThreshold decimal.Decimal
	IsLowBalance        bool
	Status              string
}

// RemainingToday is what can still be spent today. A zero limit means unlimited
// and returns the balance.
func (b Balance) RemainingToday() decimal.Decimal {
	if b.DailySpendingLimit.IsZero() {
		return b.CurrentBalance
	}
	rest := b.DailySpendingLimit.Sub(b.SpentToday)
	if rest.IsNegative() {
		rest = decimal.Zero
	}
	return decimal.Min(rest, b.CurrentBalance)
}

// Statement summarizes a wallet over a period
type Statement struct {
	OpeningBalance   decimal.Decimal
	ClosingBalance   decimal.Decimal
	TotalDeposits    decimal.Decimal
	TotalWithdrawals decimal.Decimal
	Transactions     []domain.WalletTransaction
}

// TransactionPage is one page of the wallet ledger
type TransactionPage struct {
	Transactions []domain.WalletTransaction
	Pagination   domain.Pagination
}

// BulkTopupOutcome reports a bulk top-up
type BulkTopupOutcome struct {
	Succeeded int
	Failed    int
	Failures  map[int64]string
}

// WalletService manages student wallets
type WalletService struct {
	repo     WalletRepository
	maxTopup decimal.Decimal
}

// NewWalletService creates a WalletService. A zero maxTopup uses the server default.
func NewWalletService(repo WalletRepository, maxTopup decimal.Decimal) *WalletService {
	if !maxTopup.IsPositive() {
		maxTopup = validation.DefaultMaxTopup
	}
	return &WalletService{repo: repo, maxTopup: maxTopup}
}

// ValidateTopupData checks a top-up before it is sent
func (s *WalletService) ValidateTopupData(data TopupData) validation.Result {
	return validation.ValidateTopup(data.Amount, s.maxTopup)
}

// ValidatePurchaseData checks a purchase before it is sent
func (s *WalletService) ValidatePurchaseData(data PurchaseData) validation.Result {
	return validation.ValidatePurchase(data.Amount, data.Category, data.Description)
}

// Create opens a wallet for a student
func (s *WalletService) Create(ctx context.Context, studentID int64) Result[domain.Wallet] {
	env, err := s.repo.CreateWallet(ctx, studentID)
	if err != nil {
		return Fail[domain.Wallet](err, "Failed to create wallet")
	}
	w, err := decodeOne(env, mapper.WalletToDomain)
	if err != nil {
		return Fail[domain.Wallet](err, "Failed to create wallet")
	}
	return Ok(w)
}

// Get returns a wallet
func (s *WalletService) Get(ctx context.Context, id int64) Result[domain.Wallet] {
	env, err := s.repo.GetWallet(ctx, id)
	if err != nil {
		return Fail[domain.Wallet](err, "Failed to fetch wallet")
	}
	w, err := decodeOne(env, mapper.WalletToDomain)
	if err != nil {
		return Fail[domain.Wallet](err, "Failed to fetch wallet")
	}
	return Ok(w)
}

// GetBalance returns the balance view of a wallet
func (s *WalletService) GetBalance(ctx context.Context, id int64) Result[Balance] {
	env, err := s.repo.GetWalletBalance(ctx, id)
	if err != nil {
		return Fail[Balance](err, "Failed to fetch wallet balance")
	}
	b, err := decodeOne(env, func(o mapper.Object) Balance {
		return Balance{
			WalletID:            o.String("walletId"),
			CurrentBalance:      o.Decimal("currentBalance"),
			DailySpendingLimit:  o.Decimal("dailySpendingLimit"),
			SpentToday:          o.Decimal("spentToday"),
			LowBalanceThreshold: o.Decimal("lowBalanceThreshold"),
			IsLowBalance:        o.Bool("isLowBalance"),
			Status:              o.String("status"),
		}
	})
	if err != nil {
		return Fail[Balance](err, "Failed to fetch wallet balance")
	}
	return Ok(b)
}

// GetTransactions returns one page of the ledger, newest first
func (s *WalletService) GetTransactions(ctx context.Context, id int64, page, size int) Result[TransactionPage] {
	env, err := s.repo.GetWalletTransactions(ctx, id, page, size)
	if err != nil {
		return Fail[TransactionPage](err, "Failed to fetch wallet transactions")
	}
	txs, err := decodeMany(env, mapper.WalletTransactionToDomain)
	if err != nil {
		return Fail[TransactionPage](err, "Failed to fetch wallet transactions")
	}
	result := TransactionPage{Transactions: txs}
	if meta, err := mapper.DecodeObject(env.Meta); err == nil {
		result.Pagination = mapper.PaginationToDomain(meta)
	}
	return Ok(result)
}

// GetStatement returns a statement. Zero dates use the current month.
func (s *WalletService) GetStatement(ctx context.Context, id int64, from, to time.Time) Result[Statement] {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return Invalid[Statement]("End date must not be before start date")
	}
	env, err := s.repo.GetWalletStatement(ctx, id, from, to)
	if err != nil {
		return Fail[Statement](err, "Failed to fetch wallet statement")
	}
	st, err := decodeOne(env, func(o mapper.Object) Statement {
		return Statement{
			OpeningBalance:   o.Decimal("openingBalance"),
			ClosingBalance:   o.Decimal("closingBalance"),
			TotalDeposits:    o.Decimal("totalDeposits"),
			TotalWithdrawals: o.Decimal("totalWithdrawals"),
			Transactions:     mapper.MapList(o.List("transactions"), mapper.WalletTransactionToDomain),
		}
	})
	if err != nil {
		return Fail[Statement](err, "Failed to fetch wallet statement")
	}
	return Ok(st)
}

// Topup validates and sends a top-up
func (s *WalletService) Topup(ctx context.Context, id int64, data TopupData) Result[domain.WalletTransaction] {
	if v := s.ValidateTopupData(data); !v.Valid {
		return Invalid[domain.WalletTransaction](v.Error)
	}
	payload := map[string]any{"amount": data.Amount, "reference": data.Reference, "description": data.Description}
	env, err := s.repo.TopupWallet(ctx, id, payload)
	if err != nil {
		return Fail[domain.WalletTransaction](err, "Failed to top up wallet")
	}
	tx, err := decodeOne(env, mapper.WalletTransactionToDomain)
	if err != nil {
		return Fail[domain.WalletTransaction](err, "Failed to top up wallet")
	}
	return OkWithMessage(tx, "Wallet topped up")
}

// Purchase validates and sends a purchase
func (s *WalletService) Purchase(ctx context.Context, id int64, data PurchaseData) Result[domain.WalletTransaction] {
	if v := s.ValidatePurchaseData(data); !v.Valid {
		return Invalid[domain.WalletTransaction](v.Error)
	}
	payload := map[string]any{"amount": data.Amount, "category": data.Category, "description": data.Description}
	env, err := s.repo.PurchaseFromWallet(ctx, id, payload)
	if err != nil {
		return Fail[domain.WalletTransaction](err, "Failed to record purchase")
	}
	tx, err := decodeOne(env, mapper.WalletTransactionToDomain)
	if err != nil {
		return Fail[domain.WalletTransaction](err, "Failed to record purchase")
	}
	return OkWithMessage(tx, "Purchase recorded")
}

// BulkTopup tops up many wallets with the same reference. Every amount is
// validated first; one invalid amount rejects the whole batch.
func (s *WalletService) BulkTopup(ctx context.Context, amounts map[int64]decimal.Decimal, reference, description string) Result[BulkTopupOutcome] {
	if len(amounts) == 0 {
		return Invalid[BulkTopupOutcome]("At least one wallet is required")
	}
	items := make([]map[string]any, 0, len(amounts))
	for walletID, amount := range amounts {
		if v := s.ValidateTopupData(TopupData{Amount: amount}); !v.Valid {
			return Invalid[BulkTopupOutcome](v.Error)
		}
		items = append(items, map[string]any{"walletId": walletID, "amount": amount})
	}

	env, err := s.repo.BulkTopup(ctx, map[string]any{"items": items, "reference": reference, "description": description})
	if err != nil {
		return Fail[BulkTopupOutcome](err, "Bulk top-up failed")
	}
	outcome, err := decodeOne(env, func(o mapper.Object) BulkTopupOutcome {
		out := BulkTopupOutcome{Succeeded: o.Int("succeeded"), Failed: o.Int("failed"), Failures: map[int64]string{}}
		for _, r := range o.List("results") {
			if !r.Bool("success") {
				out.Failures[r.Int64("walletId")] = r.String("error")
			}
		}
		return out
	})
	if err != nil {
		return Fail[BulkTopupOutcome](err, "Bulk top-up failed")
	}
	return Ok(outcome)
}
