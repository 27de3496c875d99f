package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// ListFeeTypes lists fee types, optionally only active or inactive ones
func (r *Repository) ListFeeTypes(ctx context.Context, active *bool) (*Envelope, error) {
	q := url.Values{}
	if active != nil {
		q.Set("active", strconv.FormatBool(*active))
	}
	return r.get(ctx, "/fee-types", q)
}

// GetFeeType fetches one fee type
func (r *Repository) GetFeeType(ctx context.Context, id int64) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/fee-types/%d", id), nil)
}

// CreateFeeType creates a fee type
func (r *Repository) CreateFeeType(ctx context.Context, payload any) (*Envelope, error) {
	return r.post(ctx, "/fee-types", payload)
}

// UpdateFeeType updates a fee type
func (r *Repository) UpdateFeeType(ctx context.Context, id int64, payload any) (*Envelope, error) {
	return r.put(ctx, fmt.Sprintf("/fee-types/%d", id), payload)
}

// DeleteFeeType deletes a fee type
func (r *Repository) DeleteFeeType(ctx context.Context, id int64) error {
	return r.delete(ctx, fmt.Sprintf("/fee-types/%d", id))
}

// ListFeeDefinitions lists fee definitions. query may carry typeId, frequency, page and size.
func (r *Repository) ListFeeDefinitions(ctx context.Context, query url.Values) (*Envelope, error) {
	return r.get(ctx, "/fee-definitions", query)
}

// GetFeeDefinition fetches one fee definition
func (r *Repository) GetFeeDefinition(ctx context.Context, id int64) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/fee-definitions/%d", id), nil)
}

// CreateFeeDefinition creates a fee definition
func (r *Repository) CreateFeeDefinition(ctx context.Context, payload any) (*Envelope, error) {
	return r.post(ctx, "/fee-definitions", payload)
}

// UpdateFeeDefinition updates a fee definition
func (r *Repository) UpdateFeeDefinition(ctx context.Context, id int64, payload any) (*Envelope, error) {
	return r.put(ctx, fmt.Sprintf("/fee-definitions/%d", id), payload)
}

// DeleteFeeDefinition deletes a fee definition
func (r *Repository) DeleteFeeDefinition(ctx context.Context, id int64) error {
	return r.delete(ctx, fmt.Sprintf("/fee-definitions/%d", id))
}

// ListFeeAssignments lists assignments. filter is "class", "bus_stop", "student" or empty;
// entityID narrows to one entity when positive.
func (r *Repository) ListFeeAssignments(ctx context.Context, filter string, entityID int64) (*Envelope, error) {
	q := url.Values{}
	if filter != "" {
		q.Set("filter", filter)
	}
	if entityID > 0 {
		q.Set("entityId", strconv.FormatInt(entityID, 10))
	}
	return r.get(ctx, "/fee-assignments", q)
}

// CreateFeeAssignment creates an assignment
func (r *Repository) CreateFeeAssignment(ctx context.Context, payload any) (*Envelope, error) {
	return r.post(ctx, "/fee-assignments", payload)
}

// DeleteFeeAssignment deletes an assignment
func (r *Repository) DeleteFeeAssignment(ctx context.Context, id int64) error {
	return r.delete(ctx, fmt.Sprintf("/fee-assignments/%d", id))
}

// ClassFeeSummary fetches the server computed fee summary of a class
func (r *Repository) ClassFeeSummary(ctx context.Context, classID int64) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/classes/%d/fee-summary", classID), nil)
}

// BusStopFeeSummary fetches the server computed fee summary of a bus stop
func (r *Repository) BusStopFeeSummary(ctx context.Context, busStopID int64) (*Envelope, error) {
	return r.get(ctx, fmt.Sprintf("/bus-stops/%d/fee-summary", busStopID), nil)
}
