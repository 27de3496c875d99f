package api

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// CreateWallet opens a wallet for a student
func (r *Repository) CreateWallet(ctx context.Context, studentID int64) (*Envelope, error) {
	return r.post(ctx, "/student-wallets", map[string]int64{"studentId": studentID})
}

// GetWallet fetches a wallet with its student
func (r *Repository) GetWallet(ctx context.Context, id int64) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/student-wallets/%d", id), nil)
}

// GetWalletBalance fetches the balance view of a wallet
func (r *Repository) GetWalletBalance(ctx context.Context, id int64) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/student-wallets/%d/balance", id), nil)
}

// GetWalletTransactions fetches one page of the wallet ledger
func (r *Repository) GetWalletTransactions(ctx context.Context, id int64, page, size int) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/student-wallets/%d/transactions", id), pageQuery(page, size))
}

// GetWalletStatement fetches a statement. Zero dates use the server default.
func (r *Repository) GetWalletStatement(ctx context.Context, id int64, from, to time.Time) (*Envelope, error) {
	q := url.Values{}
	if !from.IsZero() {
		q.Set("from", from.Format(time.DateOnly))
	}
	if !to.IsZero() {
		q.Set("to", to.Format(time.DateOnly))
	}
	return r.get(ctx, fmt.Sprintf("/student-wallets/%d/statement", id), q)
}

// TopupWallet adds money to a wallet
func (r *Repository) TopupWallet(ctx context.Context, id int64, payload any) (*Envelope, error) {
	return r.post(ctx, fmt.Sprintf("/student-wallets/%d/topup", id), payload)
}

// PurchaseFromWallet spends money from a wallet
func (r *Repository) PurchaseFromWallet(ctx context.Context, id int64, payload any) (*Envelope, error) {
	return r.post(ctx, fmt.Sprintf("/student-wallets/%d/purchase", id), payload)
}

// BulkTopup tops up many wallets
func (r *Repository) BulkTopup(ctx context.Context, payload any) (*Envelope, error) {
	return r.post(ctx, "/student-wallets/bulk-topup", payload)
}
