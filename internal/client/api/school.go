package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ListClasses lists classes with their headcount
func (r *Repository) ListClasses(ctx context.Context) (*Envelope, error) {
	return r.get(ctx, "/classes", nil)
}

// GetClass fetches one class
func (r *Repository) GetClass(ctx context.Context, id int64) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/classes/%d", id), nil)
}

// ListEnrollments lists enrollments, optionally of one class or division
func (r *Repository) ListEnrollments(ctx context.Context, classID, divisionID int64) (*Envelope, error) {
	q := url.Values{}
	if classID > 0 {
		q.Set("classId", strconv.FormatInt(classID, 10))
	}
	if divisionID > 0 {
		q.Set("divisionId", strconv.FormatInt(divisionID, 10))
	}
	return r.get(ctx, "/enrollments", q)
}

// ListDivisions lists divisions, optionally of one class
func (r *Repository) ListDivisions(ctx context.Context, classID int64) (*Envelope, error) {
	q := url.Values{}
	if classID > 0 {
		q.Set("classId", strconv.FormatInt(classID, 10))
	}
	return r.get(ctx, "/divisions", q)
}

// GetDivision fetches one division
func (r *Repository) GetDivision(ctx context.Context, id int64) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/divisions/%d", id), nil)
}

// CreateDivision creates a division
func (r *Repository) CreateDivision(ctx context.Context, payload any) (*Envelope, error) {
	return r.post(ctx, "/divisions", payload)
}

// UpdateDivision updates a division
func (r *Repository) UpdateDivision(ctx context.Context, id int64, payload any) (*Envelope, error) {
	return r.put(ctx, fmt.Sprintf("/divisions/%d", id), payload)
}

// DeleteDivision deletes a division
func (r *Repository) DeleteDivision(ctx context.Context, id int64) error {
	return r.delete(ctx, fmt.Sprintf("/divisions/%d", id))
}
