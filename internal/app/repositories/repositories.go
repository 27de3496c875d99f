package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/schooladmin/internal/db"
)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner runs a function inside a database transaction
type TxRunner interface {
	WithTransaction(ctx context.Context, fn db.TransactionFn) error
}

// psql is the statement builder shared by all repositories
var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// Repositories holds all the repository instances
type Repositories struct {
	FeeTypeRepository       *FeeTypeRepository
	FeeDefinitionRepository *FeeDefinitionRepository
	FeeAssignmentRepository *FeeAssignmentRepository
	PaymentItemRepository   *PaymentItemRepository
	WalletRepository        *WalletRepository
	ClassRepository         *ClassRepository
	DivisionRepository      *DivisionRepository
	EnrollmentRepository    *EnrollmentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	pool := database.Pool
	return &Repositories{
		FeeTypeRepository:       NewFeeTypeRepository(pool),
		FeeDefinitionRepository: NewFeeDefinitionRepository(pool),
		FeeAssignmentRepository: NewFeeAssignmentRepository(pool),
		PaymentItemRepository:   NewPaymentItemRepository(pool),
		WalletRepository:        NewWalletRepository(pool, database),
		ClassRepository:         NewClassRepository(pool),
		DivisionRepository:      NewDivisionRepository(pool),
		EnrollmentRepository:    NewEnrollmentRepository(pool),
	}
}

var _ querier = (*pgxpool.Pool)(nil)
