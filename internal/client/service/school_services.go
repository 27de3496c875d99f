package service

import (
	"context"
	"strings"
	"sync"

	"github.com/yigit/schooladmin/internal/client/api"
	"github.com/yigit/schooladmin/internal/client/domain"
	"github.com/yigit/schooladmin/internal/client/mapper"
)

// SchoolRepository is the part of the API repository the class and division services use
type SchoolRepository interface {
	ListClasses(ctx context.Context) (*api.Envelope, error)
	GetClass(ctx context.Context, id int64) (*api.Envelope, error)
	ListEnrollments(ctx context.Context, classID, divisionID int64) (*api.Envelope, error)
	ListDivisions(ctx context.Context, classID int64) (*api.Envelope, error)
	GetDivision(ctx context.Context, id int64) (*api.Envelope, error)
	CreateDivision(ctx context.Context, payload any) (*api.Envelope, error)
	UpdateDivision(ctx context.Context, id int64, payload any) (*api.Envelope, error)
	DeleteDivision(ctx context.Context, id int64) error
}

// Sub-fetch names reported in ClassData.Failed
const (
	FetchClasses     = "classes"
	FetchDivisions   = "divisions"
	FetchEnrollments = "enrollments"
)

// ClassData is everything needed to build class metrics. Failed lists the
// sub-fetches that did not succeed; their slices are empty.
type ClassData struct {
	Classes     []domain.Class
	Divisions   []domain.Division
	Enrollments []domain.Enrollment
	Failed      []string
}

// ClassService reads classes and their enrollments
type ClassService struct {
	repo SchoolRepository
}

// NewClassService creates a ClassService
func NewClassService(repo SchoolRepository) *ClassService {
	return &ClassService{repo: repo}
}

// ListClasses returns all classes with headcounts
func (s *ClassService) ListClasses(ctx context.Context) Result[[]domain.Class] {
	env, err := s.repo.ListClasses(ctx)
	if err != nil {
		return Fail[[]domain.Class](err, "Failed to fetch classes")
	}
	classes, err := decodeMany(env, mapper.ClassToDomain)
	if err != nil {
		return Fail[[]domain.Class](err, "Failed to fetch classes")
	}
	return Ok(classes)
}

// ListEnrollments returns enrollments, optionally of one class
func (s *ClassService) ListEnrollments(ctx context.Context, classID int64) Result[[]domain.Enrollment] {
	env, err := s.repo.ListEnrollments(ctx, classID, 0)
	if err != nil {
		return Fail[[]domain.Enrollment](err, "Failed to fetch enrollments")
	}
	enrollments, err := decodeMany(env, mapper.EnrollmentToDomain)
	if err != nil {
		return Fail[[]domain.Enrollment](err, "Failed to fetch enrollments")
	}
	return Ok(enrollments)
}

// GetAllClassData fetches classes, divisions and enrollments in parallel.
// It succeeds when at least one sub-fetch does; the message then names the
// ones that failed.
func (s *ClassService) GetAllClassData(ctx context.Context) Result[ClassData] {
	var (
		wg     sync.WaitGroup
		mu     sync.Mutex
		data   ClassData
		errs   []error
		failed []string
	)
	record := func(name string, err error) {
		mu.Lock()
		defer mu.Unlock()
		failed = append(failed, name)
		errs = append(errs, err)
	}

	wg.Add(3)
	go func() {
		defer wg.Done()
		env, err := s.repo.ListClasses(ctx)
		if err == nil {
			var classes []domain.Class
			if classes, err = decodeMany(env, mapper.ClassToDomain); err == nil {
				data.Classes = classes
				return
			}
		}
		record(FetchClasses, err)
	}()
	go func() {
		defer wg.Done()
		env, err := s.repo.ListDivisions(ctx, 0)
		if err == nil {
			var divisions []domain.Division
			if divisions, err = decodeMany(env, mapper.DivisionToDomain); err == nil {
				data.Divisions = divisions
				return
			}
		}
		record(FetchDivisions, err)
	}()
	go func() {
		defer wg.Done()
		env, err := s.repo.ListEnrollments(ctx, 0, 0)
		if err == nil {
			var enrollments []domain.Enrollment
			if enrollments, err = decodeMany(env, mapper.EnrollmentToDomain); err == nil {
				data.Enrollments = enrollments
				return
			}
		}
		record(FetchEnrollments, err)
	}()
	wg.Wait()

	if len(failed) == 3 {
		return Fail[ClassData](errs[0], "Failed to fetch class data")
	}
	if data.Classes == nil {
		data.Classes = []domain.Class{}
	}
	if data.Divisions == nil {
		data.Divisions = []domain.Division{}
	}
	if data.Enrollments == nil {
		data.Enrollments = []domain.Enrollment{}
	}
	if len(failed) > 0 {
		data.Failed = sortedFetches(failed)
		return OkWithMessage(data, "Some data could not be loaded: "+strings.Join(data.Failed, ", "))
	}
	return Ok(data)
}

// sortedFetches orders failures as classes, divisions, enrollments
func sortedFetches(failed []string) []string {
	out := make([]string, 0, len(failed))
	for _, name := range []string{FetchClasses, FetchDivisions, FetchEnrollments} {
		for _, f := range failed {
			if f == name {
				out = append(out, name)
			}
		}
	}
	return out
}

// DivisionService manages divisions
type DivisionService struct {
	repo SchoolRepository
}

// NewDivisionService creates a DivisionService
func NewDivisionService(repo SchoolRepository) *DivisionService {
	return &DivisionService{repo: repo}
}

// List returns divisions, optionally of one class
func (s *DivisionService) List(ctx context.Context, classID int64) Result[[]domain.Division] {
	env, err := s.repo.ListDivisions(ctx, classID)
	if err != nil {
		return Fail[[]domain.Division](err, "Failed to fetch divisions")
	}
	divisions, err := decodeMany(env, mapper.DivisionToDomain)
	if err != nil {
		return Fail[[]domain.Division](err, "Failed to fetch divisions")
	}
	return Ok(divisions)
}

// ListEnrollments returns the enrollments of one division
func (s *DivisionService) ListEnrollments(ctx context.Context, divisionID int64) Result[[]domain.Enrollment] {
	env, err := s.repo.ListEnrollments(ctx, 0, divisionID)
	if err != nil {
		return Fail[[]domain.Enrollment](err, "Failed to fetch enrollments")
	}
	enrollments, err := decodeMany(env, mapper.EnrollmentToDomain)
	if err != nil {
		return Fail[[]domain.Enrollment](err, "Failed to fetch enrollments")
	}
	return Ok(enrollments)
}

// Save creates the division when ID is zero and updates it otherwise
func (s *DivisionService) Save(ctx context.Context, d domain.Division) Result[domain.Division] {
	if strings.TrimSpace(d.Name) == "" {
		return Invalid[domain.Division]("Division name is required")
	}
	if d.ClassID <= 0 {
		return Invalid[domain.Division]("Class is required")
	}
	if d.Capacity < 0 {
		return Invalid[domain.Division]("Capacity cannot be negative")
	}

	var (
		env *api.Envelope
		err error
	)
	if d.ID == 0 {
		env, err = s.repo.CreateDivision(ctx, mapper.DivisionToAPI(d))
	} else {
		env, err = s.repo.UpdateDivision(ctx, d.ID, mapper.DivisionToAPI(d))
	}
	if err != nil {
		return Fail[domain.Division](err, "Failed to save division")
	}
	saved, err := decodeOne(env, mapper.DivisionToDomain)
	if err != nil {
		return Fail[domain.Division](err, "Failed to save division")
	}
	return Ok(saved)
}

// Delete removes a division without students
func (s *DivisionService) Delete(ctx context.Context, id int64) Result[bool] {
	if err := s.repo.DeleteDivision(ctx, id); err != nil {
		return Fail[bool](err, "Failed to delete division")
	}
	return Ok(true)
}
