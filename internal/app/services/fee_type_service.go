package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/validation"
)

// FeeTypeRepository is the storage used by FeeTypeService
type FeeTypeRepository interface {
	Create(ctx context.Context, ft *models.FeeType) error
	GetByID(ctx context.Context, id int64) (*models.FeeType, error)
	List(ctx context.Context, active *bool) ([]*models.FeeType, error)
	Update(ctx context.Context, ft *models.FeeType) error
	Delete(ctx context.Context, id int64) error
}

// FeeTypeService defines the interface for fee type operations
type FeeTypeService interface {
	ListFeeTypes(ctx context.Context, active *bool) ([]*models.FeeType, error)
	GetFeeType(ctx context.Context, id int64) (*models.FeeType, error)
	CreateFeeType(ctx context.Context, req *dto.CreateFeeTypeRequest) (*models.FeeType, error)
	UpdateFeeType(ctx context.Context, id int64, req *dto.UpdateFeeTypeRequest) (*models.FeeType, error)
	DeleteFeeType(ctx context.Context, id int64) error
}

// feeTypeServiceImpl implements FeeTypeService
type feeTypeServiceImpl struct {
	repo FeeTypeRepository
}

// NewFeeTypeService creates a new FeeTypeService
func NewFeeTypeService(repo FeeTypeRepository) FeeTypeService {
	return &feeTypeServiceImpl{repo: repo}
}

func (s *feeTypeServiceImpl) ListFeeTypes(ctx context.Context, active *bool) ([]*models.FeeType, error) {
	types, err := s.repo.List(ctx, active)
	if err != nil {
		return nil, fmt.Errorf("error listing fee types: %w", err)
	}
	return types, nil
}

func (s *feeTypeServiceImpl) GetFeeType(ctx context.Context, id int64) (*models.FeeType, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: fee type ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.repo.GetByID(ctx, id)
}

// CreateFeeType uppercases the code before validating it. New types are active unless stated otherwise.
func (s *feeTypeServiceImpl) CreateFeeType(ctx context.Context, req *dto.CreateFeeTypeRequest) (*models.FeeType, error) {
	code := strings.ToUpper(strings.TrimSpace(req.Code))
	if !validation.IsFeeTypeCode(code) {
		return nil, fmt.Errorf("%w: code must contain only letters, digits and underscores", apperrors.ErrValidationFailed)
	}
	name := strings.TrimSpace(req.Name)
	if !validation.NewStringValidation(name).WithMaxLength(validation.NameMaxLength).Validate() {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidationFailed)
	}

	ft := &models.FeeType{Code: code, Name: name, Active: true}
	if req.Active != nil {
		ft.Active = *req.Active
	}
	if err := s.repo.Create(ctx, ft); err != nil {
		return nil, err
	}
	return ft, nil
}

func (s *feeTypeServiceImpl) UpdateFeeType(ctx context.Context, id int64, req *dto.UpdateFeeTypeRequest) (*models.FeeType, error) {
	existing, err := s.GetFeeType(ctx, id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if !validation.NewStringValidation(name).WithMaxLength(validation.NameMaxLength).Validate() {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidationFailed)
	}
	existing.Name = name
	if req.Active != nil {
		existing.Active = *req.Active
	}
	if err := s.repo.Update(ctx, existing); err != nil {
		return nil, err
	}
	return existing, nil
}

func (s *feeTypeServiceImpl) DeleteFeeType(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: fee type ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.repo.Delete(ctx, id)
}
