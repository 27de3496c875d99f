package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

// EnrollmentRepository is the storage used for enrollment listings
type EnrollmentRepository interface {
	List(ctx context.Context, filter repositories.EnrollmentFilter) ([]*models.Enrollment, error)
}

// DivisionRepository is the storage used by DivisionService
type DivisionRepository interface {
	List(ctx context.Context, classID int64) ([]*models.Division, error)
	GetByID(ctx context.Context, id int64) (*models.Division, error)
	Create(ctx context.Context, d *models.Division) error
	Update(ctx context.Context, d *models.Division) error
	CountEnrollments(ctx context.Context, id int64) (int, error)
	Delete(ctx context.Context, id int64) error
}

// ClassService defines the interface for class and enrollment reads
type ClassService interface {
	ListClasses(ctx context.Context) ([]dto.ClassResponse, error)
	GetClass(ctx context.Context, id int64) (*dto.ClassResponse, error)
	ListEnrollments(ctx context.Context, filter *dto.EnrollmentFilter) ([]*models.Enrollment, error)
}

// DivisionService defines the interface for division operations
type DivisionService interface {
	ListDivisions(ctx context.Context, classID int64) ([]*models.Division, error)
	GetDivision(ctx context.Context, id int64) (*models.Division, error)
	CreateDivision(ctx context.Context, req *dto.DivisionRequest) (*models.Division, error)
	UpdateDivision(ctx context.Context, id int64, req *dto.DivisionRequest) (*models.Division, error)
	DeleteDivision(ctx context.Context, id int64) error
}

// classServiceImpl implements ClassService
type classServiceImpl struct {
	classRepo      SchoolRepository
	enrollmentRepo EnrollmentRepository
}

// NewClassService creates a new ClassService
func NewClassService(classRepo SchoolRepository, enrollmentRepo EnrollmentRepository) ClassService {
	return &classServiceImpl{classRepo: classRepo, enrollmentRepo: enrollmentRepo}
}

func toClassResponse(c *repositories.ClassWithCount) dto.ClassResponse {
	return dto.ClassResponse{
		ID:           c.Class.ID,
		Name:         c.Class.Name,
		GradeLevel:   c.Class.GradeLevel,
		Capacity:     c.Class.Capacity,
		StudentCount: c.StudentCount,
	}
}

func (s *classServiceImpl) ListClasses(ctx context.Context) ([]dto.ClassResponse, error) {
	classes, err := s.classRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("error listing classes: %w", err)
	}
	out := make([]dto.ClassResponse, 0, len(classes))
	for _, c := range classes {
		out = append(out, toClassResponse(c))
	}
	return out, nil
}

func (s *classServiceImpl) GetClass(ctx context.Context, id int64) (*dto.ClassResponse, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: class ID must be positive", apperrors.ErrValidationFailed)
	}
	c, err := s.classRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toClassResponse(c)
	return &resp, nil
}

func (s *classServiceImpl) ListEnrollments(ctx context.Context, filter *dto.EnrollmentFilter) ([]*models.Enrollment, error) {
	var f repositories.EnrollmentFilter
	if filter != nil {
		f = repositories.EnrollmentFilter{ClassID: filter.ClassID, DivisionID: filter.DivisionID, Status: filter.Status}
	}
	enrollments, err := s.enrollmentRepo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("error listing enrollments: %w", err)
	}
	return enrollments, nil
}

// divisionServiceImpl implements DivisionService
type divisionServiceImpl struct {
	repo DivisionRepository
}

// NewDivisionService creates a new DivisionService
func NewDivisionService(repo DivisionRepository) DivisionService {
	return &divisionServiceImpl{repo: repo}
}

func (s *divisionServiceImpl) ListDivisions(ctx context.Context, classID int64) ([]*models.Division, error) {
	return s.repo.List(ctx, classID)
}

func (s *divisionServiceImpl) GetDivision(ctx context.Context, id int64) (*models.Division, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: division ID must be positive", apperrors.ErrValidationFailed)
	}
	return s.repo.GetByID(ctx, id)
}

func (s *divisionServiceImpl) CreateDivision(ctx context.Context, req *dto.DivisionRequest) (*models.Division, error) {
	d := &models.Division{}
	if err := applyDivision(d, req); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, d.ID)
}

func (s *divisionServiceImpl) UpdateDivision(ctx context.Context, id int64, req *dto.DivisionRequest) (*models.Division, error) {
	d, err := s.GetDivision(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyDivision(d, req); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// DeleteDivision refuses to delete a division that still has enrollments
func (s *divisionServiceImpl) DeleteDivision(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: division ID must be positive", apperrors.ErrValidationFailed)
	}
	count, err := s.repo.CountEnrollments(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return apperrors.ErrDivisionHasStudents
	}
	return s.repo.Delete(ctx, id)
}

func applyDivision(d *models.Division, req *dto.DivisionRequest) error {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return fmt.Errorf("%w: name is required", apperrors.ErrValidationFailed)
	}
	if req.ClassID <= 0 {
		return fmt.Errorf("%w: class_id must be positive", apperrors.ErrValidationFailed)
	}
	if req.Capacity < 0 {
		return fmt.Errorf("%w: capacity cannot be negative", apperrors.ErrValidationFailed)
	}
	d.Name = name
	d.ClassID = req.ClassID
	d.Capacity = req.Capacity
	d.ClassTeacher = req.ClassTeacher
	return nil
}
