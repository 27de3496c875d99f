package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func ptr[T any](v T) *T {
	return &v
}

// fakeWalletRepo keeps wallets and ledger rows in memory and applies
// decisions under a mutex like the row lock of the real repository.
type fakeWalletRepo struct {
	mu      sync.Mutex
	wallets map[int64]*models.StudentWallet
	ledger  []*models.WalletTransaction
	spent   map[int64]decimal.Decimal
	nextID  int64
}

func newFakeWalletRepo(wallets ...*models.StudentWallet) *fakeWalletRepo {
	r := &fakeWalletRepo{wallets: map[int64]*models.StudentWallet{}, spent: map[int64]decimal.Decimal{}}
	for _, w := range wallets {
		r.wallets[w.ID] = w
	}
	return r
}

func (r *fakeWalletRepo) Create(_ context.Context, w *models.StudentWallet) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.wallets {
		if existing.StudentID == w.StudentID {
			return apperrors.NewConflictError("student already has a wallet")
		}
	}
	r.nextID++
	w.ID = 100 + r.nextID
	copied := *w
	r.wallets[w.ID] = &copied
	return nil
}

func (r *fakeWalletRepo) GetByID(_ context.Context, id int64) (*models.StudentWallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.wallets[id]
	if !ok {
		return nil, apperrors.ErrWalletNotFound
	}
	copied := *w
	return &copied, nil
}

func (r *fakeWalletRepo) SpentOn(_ context.Context, walletID int64, _ time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spent[walletID], nil
}

func (r *fakeWalletRepo) Apply(_ context.Context, walletID int64, decide repositories.LedgerDecision) (*models.WalletTransaction, *models.StudentWallet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	w, ok := r.wallets[walletID]
	if !ok {
		return nil, nil, apperrors.ErrWalletNotFound
	}
	entry, err := decide(w, r.spent[walletID])
	if err != nil {
		return nil, nil, err
	}

	entry.WalletID = walletID
	entry.BalanceBefore = w.CurrentBalance
	switch entry.TransactionType {
	case models.TransactionTopup:
		w.CurrentBalance = w.CurrentBalance.Add(entry.Amount)
		w.TotalDeposits = w.TotalDeposits.Add(entry.Amount)
	case models.TransactionPurchase:
		w.CurrentBalance = w.CurrentBalance.Sub(entry.Amount)
		w.TotalWithdrawals = w.TotalWithdrawals.Add(entry.Amount)
		r.spent[walletID] = r.spent[walletID].Add(entry.Amount)
	}
	entry.BalanceAfter = w.CurrentBalance
	entry.ID = int64(len(r.ledger) + 1)
	entry.CreatedAt = time.Now()
	r.ledger = append(r.ledger, entry)

	copied := *w
	return entry, &copied, nil
}

func (r *fakeWalletRepo) ListTransactions(_ context.Context, walletID int64, page, size int) ([]*models.WalletTransaction, dto.PaginationInfo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WalletTransaction
	for i := len(r.ledger) - 1; i >= 0; i-- {
		if r.ledger[i].WalletID == walletID {
			out = append(out, r.ledger[i])
		}
	}
	return out, dto.PaginationInfo{CurrentPage: page, PageSize: size, TotalPages: 1, TotalItems: int64(len(out))}, nil
}

func (r *fakeWalletRepo) TransactionsBetween(_ context.Context, walletID int64, from, to time.Time) ([]*models.WalletTransaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.WalletTransaction
	for _, t := range r.ledger {
		if t.WalletID == walletID && !t.CreatedAt.Before(from) && t.CreatedAt.Before(to) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *fakeWalletRepo) BalanceBefore(_ context.Context, walletID int64, t time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	balance := decimal.Zero
	for _, tx := range r.ledger {
		if tx.WalletID == walletID && tx.CreatedAt.Before(t) {
			balance = tx.BalanceAfter
		}
	}
	return balance, nil
}

type fakePaymentItemRepo struct {
	items   map[int64]*models.PaymentItem
	updates int
}

func (r *fakePaymentItemRepo) List(_ context.Context, params repositories.PaymentItemListParams) ([]*models.PaymentItem, dto.PaginationInfo, error) {
	var out []*models.PaymentItem
	for _, it := range r.items {
		if params.Status != "" && it.Status != params.Status {
			continue
		}
		out = append(out, it)
	}
	return out, dto.PaginationInfo{CurrentPage: 1, TotalPages: 1, PageSize: params.Size, TotalItems: int64(len(out))}, nil
}

func (r *fakePaymentItemRepo) GetByID(_ context.Context, id int64) (*models.PaymentItem, error) {
	it, ok := r.items[id]
	if !ok {
		return nil, apperrors.ErrPaymentItemNotFound
	}
	copied := *it
	return &copied, nil
}

func (r *fakePaymentItemRepo) ListBySchedule(_ context.Context, scheduleID int64) ([]*models.PaymentItem, error) {
	var out []*models.PaymentItem
	for _, it := range r.items {
		if it.PaymentScheduleID == scheduleID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (r *fakePaymentItemRepo) UpdateStatus(_ context.Context, id int64, status models.PaymentStatus, paidAmount *decimal.Decimal) error {
	it, ok := r.items[id]
	if !ok {
		return apperrors.ErrPaymentItemNotFound
	}
	r.updates++
	it.Status = status
	if paidAmount != nil {
		it.PaidAmount = *paidAmount
	}
	return nil
}

type fakeAssignmentRepo struct {
	assignments []*models.FeeAssignment
	lastFilter  repositories.FeeAssignmentFilter
	created     *models.FeeAssignment
}

func (r *fakeAssignmentRepo) List(_ context.Context, filter repositories.FeeAssignmentFilter) ([]*models.FeeAssignment, error) {
	r.lastFilter = filter
	return r.assignments, nil
}

func (r *fakeAssignmentRepo) GetByID(_ context.Context, id int64) (*models.FeeAssignment, error) {
	if r.created != nil && r.created.ID == id {
		return r.created, nil
	}
	for _, a := range r.assignments {
		if a.ID == id {
			return a, nil
		}
	}
	return nil, apperrors.ErrFeeAssignmentNotFound
}

func (r *fakeAssignmentRepo) Create(_ context.Context, fa *models.FeeAssignment) error {
	fa.ID = 42
	r.created = fa
	return nil
}

func (r *fakeAssignmentRepo) Delete(_ context.Context, id int64) error {
	if _, err := r.GetByID(context.Background(), id); err != nil {
		return err
	}
	return nil
}

type fakeSchoolRepo struct {
	classes map[int64]*repositories.ClassWithCount
	stops   map[int64]*models.BusStop
	riders  map[int64]int
}

func (r *fakeSchoolRepo) List(_ context.Context) ([]*repositories.ClassWithCount, error) {
	var out []*repositories.ClassWithCount
	for _, c := range r.classes {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeSchoolRepo) GetByID(_ context.Context, id int64) (*repositories.ClassWithCount, error) {
	c, ok := r.classes[id]
	if !ok {
		return nil, apperrors.ErrClassNotFound
	}
	return c, nil
}

func (r *fakeSchoolRepo) GetBusStop(_ context.Context, id int64) (*models.BusStop, int, error) {
	s, ok := r.stops[id]
	if !ok {
		return nil, 0, apperrors.ErrBusStopNotFound
	}
	return s, r.riders[id], nil
}

type fakeFeeTypeRepo struct {
	types map[int64]*models.FeeType
}

func (r *fakeFeeTypeRepo) Create(_ context.Context, ft *models.FeeType) error {
	for _, existing := range r.types {
		if existing.Code == ft.Code {
			return apperrors.ErrFeeTypeAlreadyExists
		}
	}
	ft.ID = int64(len(r.types) + 1)
	r.types[ft.ID] = ft
	return nil
}

func (r *fakeFeeTypeRepo) GetByID(_ context.Context, id int64) (*models.FeeType, error) {
	ft, ok := r.types[id]
	if !ok {
		return nil, apperrors.ErrFeeTypeNotFound
	}
	return ft, nil
}

func (r *fakeFeeTypeRepo) List(_ context.Context, _ *bool) ([]*models.FeeType, error) {
	var out []*models.FeeType
	for _, ft := range r.types {
		out = append(out, ft)
	}
	return out, nil
}

func (r *fakeFeeTypeRepo) Update(_ context.Context, ft *models.FeeType) error {
	r.types[ft.ID] = ft
	return nil
}

func (r *fakeFeeTypeRepo) Delete(_ context.Context, id int64) error {
	delete(r.types, id)
	return nil
}

type fakeFeeDefinitionRepo struct {
	defs       map[int64]*models.FeeDefinition
	lastParams repositories.FeeDefinitionListParams
}

func (r *fakeFeeDefinitionRepo) Create(_ context.Context, fd *models.FeeDefinition) error {
	fd.ID = int64(len(r.defs) + 1)
	r.defs[fd.ID] = fd
	return nil
}

func (r *fakeFeeDefinitionRepo) GetByID(_ context.Context, id int64) (*models.FeeDefinition, error) {
	fd, ok := r.defs[id]
	if !ok {
		return nil, apperrors.ErrFeeDefinitionNotFound
	}
	copied := *fd
	return &copied, nil
}

func (r *fakeFeeDefinitionRepo) List(_ context.Context, params repositories.FeeDefinitionListParams) ([]*models.FeeDefinition, dto.PaginationInfo, error) {
	r.lastParams = params
	return nil, dto.PaginationInfo{}, nil
}

func (r *fakeFeeDefinitionRepo) Update(_ context.Context, fd *models.FeeDefinition) error {
	r.defs[fd.ID] = fd
	return nil
}

func (r *fakeFeeDefinitionRepo) Delete(_ context.Context, id int64) error {
	delete(r.defs, id)
	return nil
}

type fakeDivisionRepo struct {
	divisions   map[int64]*models.Division
	enrollments map[int64]int
	deleted     []int64
}

func (r *fakeDivisionRepo) List(_ context.Context, classID int64) ([]*models.Division, error) {
	var out []*models.Division
	for _, d := range r.divisions {
		if classID == 0 || d.ClassID == classID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeDivisionRepo) GetByID(_ context.Context, id int64) (*models.Division, error) {
	d, ok := r.divisions[id]
	if !ok {
		return nil, apperrors.ErrDivisionNotFound
	}
	copied := *d
	return &copied, nil
}

func (r *fakeDivisionRepo) Create(_ context.Context, d *models.Division) error {
	d.ID = int64(len(r.divisions) + 1)
	r.divisions[d.ID] = d
	return nil
}

func (r *fakeDivisionRepo) Update(_ context.Context, d *models.Division) error {
	r.divisions[d.ID] = d
	return nil
}

func (r *fakeDivisionRepo) CountEnrollments(_ context.Context, id int64) (int, error) {
	return r.enrollments[id], nil
}

func (r *fakeDivisionRepo) Delete(_ context.Context, id int64) error {
	r.deleted = append(r.deleted, id)
	delete(r.divisions, id)
	return nil
}
