package services

import (
	"context"
	"fmt"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

// FeeAssignmentRepository is the storage used by FeeAssignmentService
type FeeAssignmentRepository interface {
	List(ctx context.Context, filter repositories.FeeAssignmentFilter) ([]*models.FeeAssignment, error)
	GetByID(ctx context.Context, id int64) (*models.FeeAssignment, error)
	Create(ctx context.Context, fa *models.FeeAssignment) error
	Delete(ctx context.Context, id int64) error
}

// FeeAssignmentService defines the interface for fee assignment operations
type FeeAssignmentService interface {
	ListFeeAssignments(ctx context.Context, filter *dto.FeeAssignmentFilter) ([]*models.FeeAssignment, error)
	CreateFeeAssignment(ctx context.Context, req *dto.CreateFeeAssignmentRequest) (*models.FeeAssignment, error)
	DeleteFeeAssignment(ctx context.Context, id int64) error
}

// feeAssignmentServiceImpl implements FeeAssignmentService
type feeAssignmentServiceImpl struct {
	repo FeeAssignmentRepository
}

// NewFeeAssignmentService creates a new FeeAssignmentService
func NewFeeAssignmentService(repo FeeAssignmentRepository) FeeAssignmentService {
	return &feeAssignmentServiceImpl{repo: repo}
}

// ListFeeAssignments lists assignments with their fee populated. An entity ID
// without a filter is rejected since it is ambiguous.
func (s *feeAssignmentServiceImpl) ListFeeAssignments(ctx context.Context, filter *dto.FeeAssignmentFilter) ([]*models.FeeAssignment, error) {
	var f repositories.FeeAssignmentFilter
	if filter != nil {
		if filter.Filter != "" {
			target, ok := models.ParseAssignmentTarget(filter.Filter)
			if !ok {
				return nil, fmt.Errorf("%w: filter must be class, bus_stop or student", apperrors.ErrValidationFailed)
			}
			f.Target = target
		}
		if filter.EntityID > 0 && f.Target == "" {
			return nil, fmt.Errorf("%w: entityId requires a filter", apperrors.ErrValidationFailed)
		}
		f.EntityID = filter.EntityID
	}

	assignments, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error listing fee assignments: %w", err)
	}
	return assignments, nil
}

func (s *feeAssignmentServiceImpl) CreateFeeAssignment(ctx context.Context, req *dto.CreateFeeAssignmentRequest) (*models.FeeAssignment, error) {
	targets := 0
	for _, id := range []*int64{req.ClassID, req.BusStopID, req.StudentID} {
		if id != nil {
			targets++
		}
	}
	if targets != 1 {
		return nil, fmt.Errorf("%w: exactly one of class_id, bus_stop_id and student_id must be set", apperrors.ErrValidationFailed)
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: end_date must not be before start_date", apperrors.ErrValidationFailed)
	}

	fa := &models.FeeAssignment{
		FeeDefinitionID: req.FeeDefinitionID,
		ClassID:         req.ClassID,
		BusStopID:       req.BusStopID,
		StudentID:       req.StudentID,
		Priority:        req.Priority,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
	}
	if err := s.repo.Create(ctx, fa); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, fa.ID)
}

func (s *feeAssignmentServiceImpl) DeleteFeeAssignment(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: fee assignment ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.repo.Delete(ctx, id)
}
