package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/feecalc"
	"github.com/yigit/schooladmin/internal/pkg/logger"
	"github.com/yigit/schooladmin/internal/pkg/validation"
)

// DefaultCurrency is used when a definition omits its currency
const DefaultCurrency = "INR"

// FeeDefinitionRepository is the storage used by FeeDefinitionService
type FeeDefinitionRepository interface {
	Create(ctx context.Context, fd *models.FeeDefinition) error
	GetByID(ctx context.Context, id int64) (*models.FeeDefinition, error)
	List(ctx context.Context, params repositories.FeeDefinitionListParams) ([]*models.FeeDefinition, dto.PaginationInfo, error)
	Update(ctx context.Context, fd *models.FeeDefinition) error
	Delete(ctx context.Context, id int64) error
}

// FeeDefinitionService defines the interface for fee definition operations
type FeeDefinitionService interface {
	ListFeeDefinitions(ctx context.Context, params repositories.FeeDefinitionListParams) ([]*models.FeeDefinition, dto.PaginationInfo, error)
	GetFeeDefinition(ctx context.Context, id int64) (*models.FeeDefinition, error)
	CreateFeeDefinition(ctx context.Context, req *dto.FeeDefinitionRequest) (*models.FeeDefinition, error)
	UpdateFeeDefinition(ctx context.Context, id int64, req *dto.FeeDefinitionRequest) (*models.FeeDefinition, error)
	DeleteFeeDefinition(ctx context.Context, id int64) error
}

// feeDefinitionServiceImpl implements FeeDefinitionService
type feeDefinitionServiceImpl struct {
	repo     FeeDefinitionRepository
	typeRepo FeeTypeRepository
}

// NewFeeDefinitionService creates a new FeeDefinitionService
func NewFeeDefinitionService(repo FeeDefinitionRepository, typeRepo FeeTypeRepository) FeeDefinitionService {
	return &feeDefinitionServiceImpl{repo: repo, typeRepo: typeRepo}
}

func (s *feeDefinitionServiceImpl) ListFeeDefinitions(ctx context.Context, params repositories.FeeDefinitionListParams) ([]*models.FeeDefinition, dto.PaginationInfo, error) {
	if params.Frequency != "" {
		freq, ok := normalizeFrequency(params.Frequency)
		if !ok {
			return nil, dto.PaginationInfo{}, fmt.Errorf("%w: unknown frequency %q", apperrors.ErrValidationFailed, params.Frequency)
		}
		params.Frequency = string(freq)
	}
	return s.repo.List(ctx, params)
}

func (s *feeDefinitionServiceImpl) GetFeeDefinition(ctx context.Context, id int64) (*models.FeeDefinition, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: fee definition ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *feeDefinitionServiceImpl) CreateFeeDefinition(ctx context.Context, req *dto.FeeDefinitionRequest) (*models.FeeDefinition, error) {
	fd := &models.FeeDefinition{}
	if err := s.apply(ctx, fd, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, fd); err != nil {
		return nil, err
	}
	s.warnOnExcess(fd)
	return fd, nil
}

func (s *feeDefinitionServiceImpl) UpdateFeeDefinition(ctx context.Context, id int64, req *dto.FeeDefinitionRequest) (*models.FeeDefinition, error) {
	fd, err := s.GetFeeDefinition(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(ctx, fd, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, fd); err != nil {
		return nil, err
	}
	s.warnOnExcess(fd)
	return fd, nil
}

func (s *feeDefinitionServiceImpl) DeleteFeeDefinition(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: fee definition ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.repo.Delete(ctx, id)
}

// apply validates req and copies it onto fd, resolving the fee type
func (s *feeDefinitionServiceImpl) apply(ctx context.Context, fd *models.FeeDefinition, req *dto.FeeDefinitionRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrValidationFailed)
	}
	if req.BaseAmount.IsNegative() {
		return fmt.Errorf("%w: base_amount cannot be negative", apperrors.ErrValidationFailed)
	}
	freq, ok := normalizeFrequency(string(req.Frequency))
	if !ok {
		return fmt.Errorf("%w: frequency must be one of monthly, quarterly, term, yearly, one_time", apperrors.ErrValidationFailed)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}
	if !validation.CompiledPatterns.Currency.MatchString(currency) {
		return fmt.Errorf("%w: currency must be a three letter code", apperrors.ErrValidationFailed)
	}

	installments := make([]models.Installment, 0, len(req.Installments))
	for i, inst := range req.Installments {
		if inst.Amount.IsNegative() {
			return fmt.Errorf("%w: installment %d amount cannot be negative", apperrors.ErrValidationFailed, i+1)
		}
		label := strings.TrimSpace(inst.Label)
		if label == "" {
			label = fmt.Sprintf("Installment %d", i+1)
		}
		installments = append(installments, models.Installment{Label: label, Amount: inst.Amount, DueDate: inst.DueDate})
	}

	fd.Type = nil
	if req.TypeID != nil {
		ft, err := s.typeRepo.GetByID(ctx, *req.TypeID)
		if err != nil {
			return err
		}
		fd.Type = ft
	}

	fd.Name = name
	fd.TypeID = req.TypeID
	fd.BaseAmount = req.BaseAmount
	fd.Frequency = freq
	fd.Currency = currency
	fd.Description = req.Description
	fd.Installments = installments
	return nil
}

// warnOnExcess logs definitions whose installments add up to more than the base amount.
// Such definitions are accepted and reported as installment excess in fee summaries.
func (s *feeDefinitionServiceImpl) warnOnExcess(fd *models.FeeDefinition) {
	excess := feecalc.InstallmentExcess(*fd.ToCalc(), 1)
	if excess.IsPositive() {
		logger.Warn().
			Int64("feeDefinitionId", fd.ID).
			Str("baseAmount", fd.BaseAmount.String()).
			Str("installmentTotal", fd.InstallmentTotal().String()).
			Msg("Installments exceed the base amount")
	}
}

// normalizeFrequency accepts canonical frequencies and their aliases and rejects anything else
func normalizeFrequency(raw string) (feecalc.Frequency, bool) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	if trimmed == "" {
		return "", false
	}
	freq := feecalc.ParseFrequency(trimmed)
	if freq == feecalc.FrequencyOneTime && trimmed != string(feecalc.FrequencyOneTime) && trimmed != "one-time" {
		return "", false
	}
	return freq, true
}
