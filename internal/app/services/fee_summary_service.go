package services

import (
	"context"
	"fmt"
	"time"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/feecalc"
	"github.com/yigit/schooladmin/internal/pkg/logger"
)

// SchoolRepository provides classes and bus stops with their headcounts
type SchoolRepository interface {
	List(ctx context.Context) ([]*repositories.ClassWithCount, error)
	GetByID(ctx context.Context, id int64) (*repositories.ClassWithCount, error)
	GetBusStop(ctx context.Context, id int64) (*models.BusStop, int, error)
}

// FeeSummaryService computes fee revenue summaries
type FeeSummaryService interface {
	ClassFeeSummary(ctx context.Context, classID int64) (*dto.FeeSummaryResponse, error)
	BusStopFeeSummary(ctx context.Context, busStopID int64) (*dto.FeeSummaryResponse, error)
}

// feeSummaryServiceImpl implements FeeSummaryService
type feeSummaryServiceImpl struct {
	schoolRepo     SchoolRepository
	assignmentRepo FeeAssignmentRepository
	table          feecalc.MultiplierTable
	now            func() time.Time
}

// NewFeeSummaryService creates a new FeeSummaryService annualizing term fees with termsPerYear
func NewFeeSummaryService(schoolRepo SchoolRepository, assignmentRepo FeeAssignmentRepository, termsPerYear int) FeeSummaryService {
	return &feeSummaryServiceImpl{
		schoolRepo:     schoolRepo,
		assignmentRepo: assignmentRepo,
		table:          feecalc.MultipliersWithTerms(termsPerYear),
		now:            time.Now,
	}
}

func (s *feeSummaryServiceImpl) ClassFeeSummary(ctx context.Context, classID int64) (*dto.FeeSummaryResponse, error) {
	if classID <= 0 {
		return nil, fmt.Errorf("%w: class ID must be positive", apperrors.ErrValidationFailed)
	}
	class, err := s.schoolRepo.GetByID(ctx, classID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, models.TargetClass, classID, class.Class.Name, class.StudentCount)
}

func (s *feeSummaryServiceImpl) BusStopFeeSummary(ctx context.Context, busStopID int64) (*dto.FeeSummaryResponse, error) {
	if busStopID <= 0 {
		return nil, fmt.Errorf("%w: bus stop ID must be positive", apperrors.ErrValidationFailed)
	}
	stop, count, err := s.schoolRepo.GetBusStop(ctx, busStopID)
	if err != nil {
		return nil, err
	}
	return s.summarize(ctx, models.TargetBusStop, busStopID, stop.Name, count)
}

func (s *feeSummaryServiceImpl) summarize(ctx context.Context, target models.AssignmentTarget, id int64, name string, students int) (*dto.FeeSummaryResponse, error) {
	today := s.now()
	assignments, err := s.assignmentRepo.List(ctx, repositories.FeeAssignmentFilter{
		Target:   target,
		EntityID: id,
		ActiveOn: &today,
	})
	if err != nil {
		return nil, fmt.Errorf("error loading fee assignments: %w", err)
	}

	summary := feecalc.Aggregate(models.ToCalcAssignments(assignments), students, s.table)
	if summary.InstallmentExcess.IsPositive() {
		logger.Warn().
			Str("target", string(target)).
			Int64("id", id).
			Str("excess", summary.InstallmentExcess.String()).
			Msg("Fee installments exceed base amounts")
	}

	return &dto.FeeSummaryResponse{
		EntityType: string(target),
		EntityID:   id,
		EntityName: name,
		Summary:    summary,
		FeeTypes:   summary.FeeTypes(),
	}, nil
}
