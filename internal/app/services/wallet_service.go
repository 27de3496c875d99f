package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
	"github.com/yigit/schooladmin/internal/pkg/logger"
	"github.com/yigit/schooladmin/internal/pkg/validation"
)

// WalletRepository is the storage used by WalletService
type WalletRepository interface {
	Create(ctx context.Context, w *models.StudentWallet) error
	GetByID(ctx context.Context, id int64) (*models.StudentWallet, error)
	SpentOn(ctx context.Context, walletID int64, day time.Time) (decimal.Decimal, error)
	Apply(ctx context.Context, walletID int64, decide repositories.LedgerDecision) (*models.WalletTransaction, *models.StudentWallet, error)
	ListTransactions(ctx context.Context, walletID int64, page, size int) ([]*models.WalletTransaction, dto.PaginationInfo, error)
	TransactionsBetween(ctx context.Context, walletID int64, from, to time.Time) ([]*models.WalletTransaction, error)
	BalanceBefore(ctx context.Context, walletID int64, t time.Time) (decimal.Decimal, error)
}

// WalletLimits configures wallet rules
type WalletLimits struct {
	MaxTopup            decimal.Decimal
	DefaultDailyLimit   decimal.Decimal
	DefaultLowBalance   decimal.Decimal
	BulkTopupMaxWallets int
}

// WalletService defines the interface for student wallet operations
type WalletService interface {
	CreateWallet(ctx context.Context, studentID int64) (*models.StudentWallet, error)
	GetWallet(ctx context.Context, id int64) (*models.StudentWallet, error)
	GetBalance(ctx context.Context, id int64) (*dto.WalletBalanceResponse, error)
	Topup(ctx context.Context, id int64, req *dto.TopupRequest) (*models.WalletTransaction, error)
	Purchase(ctx context.Context, id int64, req *dto.PurchaseRequest) (*models.WalletTransaction, error)
	BulkTopup(ctx context.Context, req *dto.BulkTopupRequest) (*dto.BulkTopupResponse, error)
	GetTransactions(ctx context.Context, id int64, page, size int) ([]*models.WalletTransaction, dto.PaginationInfo, error)
	GetStatement(ctx context.Context, id int64, from, to *time.Time) (*models.WalletStatement, error)
}

// walletServiceImpl implements WalletService
type walletServiceImpl struct {
	repo   WalletRepository
	limits WalletLimits
	now    func() time.Time
}

// NewWalletService creates a new WalletService
func NewWalletService(repo WalletRepository, limits WalletLimits) WalletService {
	if limits.MaxTopup.IsZero() {
		limits.MaxTopup = validation.DefaultMaxTopup
	}
	if limits.BulkTopupMaxWallets <= 0 {
		limits.BulkTopupMaxWallets = 500
	}
	return &walletServiceImpl{repo: repo, limits: limits, now: time.Now}
}

func (s *walletServiceImpl) CreateWallet(ctx context.Context, studentID int64) (*models.StudentWallet, error) {
	if studentID <= 0 {
		return nil, fmt.Errorf("%w: student ID must be positive", apperrors.ErrValidationFailed)
	}
	w := &models.StudentWallet{
		WalletID:            newWalletNumber(),
		StudentID:           studentID,
		DailySpendingLimit:  s.limits.DefaultDailyLimit,
		LowBalanceThreshold: s.limits.DefaultLowBalance,
		Status:              models.WalletActive,
	}
	if err := s.repo.Create(ctx, w); err != nil {
		return nil, err
	}
	logger.Info().Int64("studentId", studentID).Str("walletId", w.WalletID).Msg("Wallet created")
	return s.repo.GetByID(ctx, w.ID)
}

func (s *walletServiceImpl) GetWallet(ctx context.Context, id int64) (*models.StudentWallet, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: wallet ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *walletServiceImpl) GetBalance(ctx context.Context, id int64) (*dto.WalletBalanceResponse, error) {
	w, err := s.GetWallet(ctx, id)
	if err != nil {
		return nil, err
	}
	spent, err := s.repo.SpentOn(ctx, id, s.now())
	if err != nil {
		return nil, err
	}
	return &dto.WalletBalanceResponse{
		WalletID:            w.WalletID,
		CurrentBalance:      w.CurrentBalance,
		DailySpendingLimit:  w.DailySpendingLimit,
		SpentToday:          spent,
		LowBalanceThreshold: w.LowBalanceThreshold,
		IsLowBalance:        w.IsLowBalance(),
		Status:              string(w.Status),
	}, nil
}

func (s *walletServiceImpl) Topup(ctx context.Context, id int64, req *dto.TopupRequest) (*models.WalletTransaction, error) {
	if res := validation.ValidateTopup(req.Amount, s.limits.MaxTopup); !res.Valid {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidationFailed, res.Error)
	}
	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = newReference("TOP")
	}
	description := strings.TrimSpace(req.Description)
	if description == "" {
		description = "Wallet top-up"
	}

	entry, wallet, err := s.repo.Apply(ctx, id, func(w *models.StudentWallet, _ decimal.Decimal) (*models.WalletTransaction, error) {
		if w.Status != models.WalletActive {
			return nil, apperrors.ErrWalletInactive
		}
		return &models.WalletTransaction{
			TransactionType: models.TransactionTopup,
			Amount:          req.Amount,
			Description:     description,
			Reference:       reference,
		}, nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("walletId", id).Str("amount", entry.Amount.String()).Str("balance", wallet.CurrentBalance.String()).Msg("Wallet topped up")
	return entry, nil
}

func (s *walletServiceImpl) Purchase(ctx context.Context, id int64, req *dto.PurchaseRequest) (*models.WalletTransaction, error) {
	if res := validation.ValidatePurchase(req.Amount, req.Category, req.Description); !res.Valid {
		return nil, fmt.Errorf("%w: %s", apperrors.ErrValidationFailed, res.Error)
	}
	category := strings.ToLower(strings.TrimSpace(req.Category))
	description := strings.TrimSpace(req.Description)

	entry, wallet, err := s.repo.Apply(ctx, id, func(w *models.StudentWallet, spentToday decimal.Decimal) (*models.WalletTransaction, error) {
		if w.Status != models.WalletActive {
			return nil, apperrors.ErrWalletInactive
		}
		if w.CurrentBalance.LessThan(req.Amount) {
			return nil, apperrors.ErrInsufficientBalance
		}
		if w.DailySpendingLimit.IsPositive() && spentToday.Add(req.Amount).GreaterThan(w.DailySpendingLimit) {
			return nil, apperrors.ErrDailyLimitExceeded
		}
		return &models.WalletTransaction{
			TransactionType: models.TransactionPurchase,
			Amount:          req.Amount,
			Category:        &category,
			Description:     description,
			Reference:       newReference("PUR"),
		}, nil
	})
	if err != nil {
		return nil, err
	}

	event := logger.Info()
	if wallet.IsLowBalance() {
		event = logger.Warn().Bool("lowBalance", true)
	}
	event.Int64("walletId", id).Str("amount", entry.Amount.String()).Str("balance", wallet.CurrentBalance.String()).Msg("Wallet purchase recorded")
	return entry, nil
}

// BulkTopup tops up each wallet independently. One failing wallet does not stop the others.
func (s *walletServiceImpl) BulkTopup(ctx context.Context, req *dto.BulkTopupRequest) (*dto.BulkTopupResponse, error) {
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: at least one wallet is required", apperrors.ErrValidationFailed)
	}
	if len(req.Items) > s.limits.BulkTopupMaxWallets {
		return nil, fmt.Errorf("%w: at most %d wallets per bulk top-up", apperrors.ErrValidationFailed, s.limits.BulkTopupMaxWallets)
	}

	reference := strings.TrimSpace(req.Reference)
	if reference == "" {
		reference = newReference("BULK")
	}

	resp := &dto.BulkTopupResponse{Results: make([]dto.BulkTopupResult, 0, len(req.Items))}
	for i, item := range req.Items {
		result := dto.BulkTopupResult{WalletID: item.WalletID}
		entry, err := s.Topup(ctx, item.WalletID, &dto.TopupRequest{
			Amount:      item.Amount,
			Reference:   fmt.Sprintf("%s-%d", reference, i+1),
			Description: req.Description,
		})
		if err != nil {
			result.Error = err.Error()
			resp.Failed++
		} else {
			balance := entry.BalanceAfter
			result.Success = true
			result.NewBalance = &balance
			resp.Succeeded++
		}
		resp.Results = append(resp.Results, result)
	}

	logger.Info().Int("succeeded", resp.Succeeded).Int("failed", resp.Failed).Msg("Bulk top-up finished")
	return resp, nil
}

func (s *walletServiceImpl) GetTransactions(ctx context.Context, id int64, page, size int) ([]*models.WalletTransaction, dto.PaginationInfo, error) {
	if _, err := s.GetWallet(ctx, id); err != nil {
		return nil, dto.PaginationInfo{}, err
	}
	return s.repo.ListTransactions(ctx, id, page, size)
}

// GetStatement summarizes the ledger between from and to inclusive. The
// period defaults to the current calendar month.
func (s *walletServiceImpl) GetStatement(ctx context.Context, id int64, from, to *time.Time) (*models.WalletStatement, error) {
	w, err := s.GetWallet(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	start := helpers.StartOfMonth(now)
	if from != nil {
		start = *from
	}
	end := now
	if to != nil {
		end = *to
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: 'to' must not be before 'from'", apperrors.ErrValidationFailed)
	}
	// inclusive end day
	endExclusive := helpers.StartOfDay(end).AddDate(0, 0, 1)

	opening, err := s.repo.BalanceBefore(ctx, id, start)
	if err != nil {
		return nil, err
	}
	txs, err := s.repo.TransactionsBetween(ctx, id, start, endExclusive)
	if err != nil {
		return nil, err
	}

	stmt := &models.WalletStatement{
		Wallet:           w,
		From:             start,
		To:               end,
		OpeningBalance:   opening,
		ClosingBalance:   opening,
		TotalDeposits:    decimal.Zero,
		TotalWithdrawals: decimal.Zero,
		Transactions:     txs,
	}
	for _, t := range txs {
		switch t.TransactionType {
		case models.TransactionTopup:
			stmt.TotalDeposits = stmt.TotalDeposits.Add(t.Amount)
		case models.TransactionPurchase:
			stmt.TotalWithdrawals = stmt.TotalWithdrawals.Add(t.Amount)
		}
		stmt.ClosingBalance = t.BalanceAfter
	}
	return stmt, nil
}

func newWalletNumber() string {
	return "WAL-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func newReference(prefix string) string {
	return prefix + "-" + strings.ToUpper(uuid.NewString()[:8])
}
