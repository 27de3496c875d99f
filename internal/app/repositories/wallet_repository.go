package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/dberrors"
	"github.com/yigit/schooladmin/internal/pkg/helpers"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// LedgerDecision inspects a locked wallet and the amount already spent today
// and returns the ledger row to record. Returning an error aborts the transaction.
type LedgerDecision func(wallet *models.StudentWallet, spentToday decimal.Decimal) (*models.WalletTransaction, error)

// WalletRepository handles database operations for student wallets and their ledger
type WalletRepository struct {
	db *pgxpool.Pool
	tx TxRunner
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *pgxpool.Pool, tx TxRunner) *WalletRepository {
	return &WalletRepository{db: db, tx: tx}
}

var walletColumns = []string{
	"w.id", "w.wallet_id", "w.student_id", "w.current_balance", "w.total_deposits", "w.total_withdrawals",
	"w.daily_spending_limit", "w.low_balance_threshold", "w.status", "w.created_at", "w.updated_at",
	"s.first_name", "s.last_name", "s.gender",
}

func (r *WalletRepository) selectQuery() squirrel.SelectBuilder {
	return psql.Select(walletColumns...).
		From("student_wallets w").
		Join("students s ON w.student_id = s.id")
}

func scanWallet(row pgx.Row) (*models.StudentWallet, error) {
	var w models.StudentWallet
	student := &models.Student{}
	err := row.Scan(
		&w.ID, &w.WalletID, &w.StudentID, &w.CurrentBalance, &w.TotalDeposits, &w.TotalWithdrawals,
		&w.DailySpendingLimit, &w.LowBalanceThreshold, &w.Status, &w.CreatedAt, &w.UpdatedAt,
		&student.FirstName, &student.LastName, &student.Gender,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrWalletNotFound
		}
		return nil, err
	}
	student.ID = w.StudentID
	w.Student = student
	return &w, nil
}

// GetByID retrieves a wallet with its student
func (r *WalletRepository) GetByID(ctx context.Context, id int64) (*models.StudentWallet, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"w.id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building get wallet SQL")
		return nil, err
	}
	return scanWallet(r.db.QueryRow(ctx, sql, args...))
}

// Create opens a wallet for a student
func (r *WalletRepository) Create(ctx context.Context, w *models.StudentWallet) error {
	sql, args, err := psql.Insert("student_wallets").
		Columns("wallet_id", "student_id", "daily_spending_limit", "low_balance_threshold", "status").
		Values(w.WalletID, w.StudentID, w.DailySpendingLimit, w.LowBalanceThreshold, w.Status).
		Suffix("RETURNING id, current_balance, total_deposits, total_withdrawals, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create wallet SQL")
		return err
	}

	err = r.db.QueryRow(ctx, sql, args...).Scan(&w.ID, &w.CurrentBalance, &w.TotalDeposits, &w.TotalWithdrawals, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if dberrors.IsDuplicateKeyError(err) {
			return apperrors.NewConflictError("student already has a wallet")
		}
		if dberrors.IsForeignKeyViolation(err) {
			return apperrors.NewResourceNotFoundError("student not found")
		}
		logger.Error().Err(err).Int64("studentId", w.StudentID).Msg("Error executing create wallet query")
		return fmt.Errorf("error creating wallet: %w", err)
	}
	return nil
}

// SpentOn sums the purchases of a wallet on the calendar day of day
func (r *WalletRepository) SpentOn(ctx context.Context, walletID int64, day time.Time) (decimal.Decimal, error) {
	return spentOn(ctx, r.db, walletID, day)
}

func spentOn(ctx context.Context, q querier, walletID int64, day time.Time) (decimal.Decimal, error) {
	start := helpers.StartOfDay(day)
	sql, args, err := psql.Select("COALESCE(SUM(amount), 0)").
		From("wallet_transactions").
		Where(squirrel.Eq{"wallet_id": walletID, "transaction_type": models.TransactionPurchase}).
		Where(squirrel.GtOrEq{"created_at": start}).
		Where(squirrel.Lt{"created_at": start.AddDate(0, 0, 1)}).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building daily spend SQL")
		return decimal.Zero, err
	}

	var spent decimal.Decimal
	if err := q.QueryRow(ctx, sql, args...).Scan(&spent); err != nil {
		logger.Error().Err(err).Int64("walletId", walletID).Msg("Error executing daily spend query")
		return decimal.Zero, fmt.Errorf("error summing daily spend: %w", err)
	}
	return spent, nil
}

// Apply locks the wallet row, asks decide for the ledger row and persists it
// together with the new wallet balance and totals, all in one transaction.
func (r *WalletRepository) Apply(ctx context.Context, walletID int64, decide LedgerDecision) (*models.WalletTransaction, *models.StudentWallet, error) {
	var (
		entry  *models.WalletTransaction
		wallet *models.StudentWallet
	)

	err := r.tx.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		sql, args, err := r.selectQuery().Where(squirrel.Eq{"w.id": walletID}).Suffix("FOR UPDATE OF w").ToSql()
		if err != nil {
			return err
		}
		wallet, err = scanWallet(tx.QueryRow(ctx, sql, args...))
		if err != nil {
			return err
		}

		spent, err := spentOn(ctx, tx, walletID, time.Now())
		if err != nil {
			return err
		}

		entry, err = decide(wallet, spent)
		if err != nil {
			return err
		}
		entry.WalletID = wallet.ID
		entry.BalanceBefore = wallet.CurrentBalance

		switch entry.TransactionType {
		case models.TransactionTopup:
			wallet.CurrentBalance = wallet.CurrentBalance.Add(entry.Amount)
			wallet.TotalDeposits = wallet.TotalDeposits.Add(entry.Amount)
		case models.TransactionPurchase:
			wallet.CurrentBalance = wallet.CurrentBalance.Sub(entry.Amount)
			wallet.TotalWithdrawals = wallet.TotalWithdrawals.Add(entry.Amount)
		default:
			return fmt.Errorf("%w: unknown transaction type %q", apperrors.ErrValidationFailed, entry.TransactionType)
		}
		entry.BalanceAfter = wallet.CurrentBalance

		insertSQL, insertArgs, err := psql.Insert("wallet_transactions").
			Columns("wallet_id", "transaction_type", "amount", "balance_before", "balance_after", "category", "description", "reference").
			Values(entry.WalletID, entry.TransactionType, entry.Amount, entry.BalanceBefore, entry.BalanceAfter, entry.Category, entry.Description, entry.Reference).
			Suffix("RETURNING id, created_at").
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, insertSQL, insertArgs...).Scan(&entry.ID, &entry.CreatedAt); err != nil {
			return fmt.Errorf("error recording wallet transaction: %w", err)
		}

		updateSQL, updateArgs, err := psql.Update("student_wallets").
			Set("current_balance", wallet.CurrentBalance).
			Set("total_deposits", wallet.TotalDeposits).
			Set("total_withdrawals", wallet.TotalWithdrawals).
			Set("updated_at", squirrel.Expr("NOW()")).
			Where(squirrel.Eq{"id": wallet.ID}).
			Suffix("RETURNING updated_at").
			ToSql()
		if err != nil {
			return err
		}
		if err := tx.QueryRow(ctx, updateSQL, updateArgs...).Scan(&wallet.UpdatedAt); err != nil {
			return fmt.Errorf("error updating wallet balance: %w", err)
		}
		return nil
	})
	if err != nil {
		if !isWalletRuleError(err) {
			logger.Error().Err(err).Int64("walletId", walletID).Msg("Error applying wallet transaction")
		}
		return nil, nil, err
	}
	return entry, wallet, nil
}

func isWalletRuleError(err error) bool {
	return errors.Is(err, apperrors.ErrWalletNotFound) ||
		errors.Is(err, apperrors.ErrWalletInactive) ||
		errors.Is(err, apperrors.ErrInsufficientBalance) ||
		errors.Is(err, apperrors.ErrDailyLimitExceeded) ||
		errors.Is(err, apperrors.ErrValidationFailed)
}

func scanWalletTransaction(row pgx.Row) (*models.WalletTransaction, error) {
	var t models.WalletTransaction
	err := row.Scan(&t.ID, &t.WalletID, &t.TransactionType, &t.Amount, &t.BalanceBefore, &t.BalanceAfter,
		&t.Category, &t.Description, &t.Reference, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func transactionsQuery() squirrel.SelectBuilder {
	return psql.Select("id", "wallet_id", "transaction_type", "amount", "balance_before", "balance_after",
		"category", "description", "reference", "created_at").
		From("wallet_transactions")
}

// ListTransactions retrieves a page of ledger rows, newest first
func (r *WalletRepository) ListTransactions(ctx context.Context, walletID int64, page, size int) ([]*models.WalletTransaction, dto.PaginationInfo, error) {
	var totalItems int64
	countSQL, countArgs, err := psql.Select("count(*)").From("wallet_transactions").Where(squirrel.Eq{"wallet_id": walletID}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count wallet transactions SQL")
		return nil, dto.PaginationInfo{}, err
	}
	if err := r.db.QueryRow(ctx, countSQL, countArgs...).Scan(&totalItems); err != nil {
		logger.Error().Err(err).Msg("Error executing count wallet transactions query")
		return nil, dto.PaginationInfo{}, fmt.Errorf("error counting wallet transactions: %w", err)
	}

	pagination := helpers.NewPaginationInfo(totalItems, page, size)
	if totalItems == 0 {
		return []*models.WalletTransaction{}, pagination, nil
	}

	offset, limit := helpers.CalculateOffsetLimit(page, size)
	sql, args, err := transactionsQuery().
		Where(squirrel.Eq{"wallet_id": walletID}).
		OrderBy("created_at DESC", "id DESC").
		Limit(uint64(limit)).Offset(offset).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list wallet transactions SQL")
		return nil, dto.PaginationInfo{}, err
	}

	txs, err := r.queryTransactions(ctx, sql, args...)
	if err != nil {
		return nil, pagination, err
	}
	return txs, pagination, nil
}

// TransactionsBetween retrieves ledger rows created in [from, to), oldest first
func (r *WalletRepository) TransactionsBetween(ctx context.Context, walletID int64, from, to time.Time) ([]*models.WalletTransaction, error) {
	sql, args, err := transactionsQuery().
		Where(squirrel.Eq{"wallet_id": walletID}).
		Where(squirrel.GtOrEq{"created_at": from}).
		Where(squirrel.Lt{"created_at": to}).
		OrderBy("created_at ASC", "id ASC").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building wallet statement SQL")
		return nil, err
	}
	return r.queryTransactions(ctx, sql, args...)
}

// BalanceBefore returns the balance after the last ledger row created before t, zero when none
func (r *WalletRepository) BalanceBefore(ctx context.Context, walletID int64, t time.Time) (decimal.Decimal, error) {
	sql, args, err := psql.Select("balance_after").
		From("wallet_transactions").
		Where(squirrel.Eq{"wallet_id": walletID}).
		Where(squirrel.Lt{"created_at": t}).
		OrderBy("created_at DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building opening balance SQL")
		return decimal.Zero, err
	}

	var balance decimal.Decimal
	if err := r.db.QueryRow(ctx, sql, args...).Scan(&balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		logger.Error().Err(err).Int64("walletId", walletID).Msg("Error executing opening balance query")
		return decimal.Zero, fmt.Errorf("error reading opening balance: %w", err)
	}
	return balance, nil
}

func (r *WalletRepository) queryTransactions(ctx context.Context, sql string, args ...any) ([]*models.WalletTransaction, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing wallet transactions query")
		return nil, fmt.Errorf("error listing wallet transactions: %w", err)
	}
	defer rows.Close()

	txs := make([]*models.WalletTransaction, 0)
	for rows.Next() {
		t, err := scanWalletTransaction(rows)
		if err != nil {
			logger.Error().Err(err).Msg("Error scanning wallet transaction row")
			return nil, err
		}
		txs = append(txs, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database iteration error: %w", err)
	}
	return txs, nil
}
