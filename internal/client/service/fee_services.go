package service

import (
	"context"
	"net/url"
	"strconv"

	"github.com/yigit/schooladmin/internal/client/api"
	"github.com/yigit/schooladmin/internal/client/domain"
	"github.com/yigit/schooladmin/internal/client/mapper"
	"github.com/yigit/schooladmin/internal/pkg/feecalc"
	"github.com/yigit/schooladmin/internal/pkg/validation"
)

// FeeRepository is the part of the API repository the fee services use
type FeeRepository interface {
	ListFeeTypes(ctx context.Context, active *bool) (*api.Envelope, error)
	GetFeeType(ctx context.Context, id int64) (*api.Envelope, error)
	CreateFeeType(ctx context.Context, payload any) (*api.Envelope, error)
	UpdateFeeType(ctx context.Context, id int64, payload any) (*api.Envelope, error)
	DeleteFeeType(ctx context.Context, id int64) error
	ListFeeDefinitions(ctx context.Context, query url.Values) (*api.Envelope, error)
	GetFeeDefinition(ctx context.Context, id int64) (*api.Envelope, error)
	CreateFeeDefinition(ctx context.Context, payload any) (*api.Envelope, error)
	UpdateFeeDefinition(ctx context.Context, id int64, payload any) (*api.Envelope, error)
	DeleteFeeDefinition(ctx context.Context, id int64) error
	ListFeeAssignments(ctx context.Context, filter string, entityID int64) (*api.Envelope, error)
	CreateFeeAssignment(ctx context.Context, payload any) (*api.Envelope, error)
	DeleteFeeAssignment(ctx context.Context, id int64) error
	ClassFeeSummary(ctx context.Context, classID int64) (*api.Envelope, error)
	BusStopFeeSummary(ctx context.Context, busStopID int64) (*api.Envelope, error)
}

func decodeOne[T any](env *api.Envelope, fn func(mapper.Object) T) (T, error) {
	var zero T
	obj, err := mapper.DecodeObject(env.Data)
	if err != nil {
		return zero, err
	}
	return fn(obj), nil
}

func decodeMany[T any](env *api.Envelope, fn func(mapper.Object) T) ([]T, error) {
	items, err := mapper.DecodeList(env.Data)
	if err != nil {
		return nil, err
	}
	return mapper.MapList(items, fn), nil
}

// definitionPageSize is the largest page the server accepts
const definitionPageSize = 100

// listAllFeeDefinitions walks every page of the fee definition listing. It
// stops at meta.pagination.totalPages, or at the first short page when the
// response has no pagination block.
func listAllFeeDefinitions(ctx context.Context, repo FeeRepository, query url.Values) ([]domain.FeeDefinition, error) {
	q := url.Values{}
	for k, v := range query {
		q[k] = append([]string(nil), v...)
	}
	q.Set("size", strconv.Itoa(definitionPageSize))

	var all []domain.FeeDefinition
	for page := 1; ; page++ {
		q.Set("page", strconv.Itoa(page))
		env, err := repo.ListFeeDefinitions(ctx, q)
		if err != nil {
			return nil, err
		}
		defs, err := decodeMany(env, mapper.FeeDefinitionToDomain)
		if err != nil {
			return nil, err
		}
		all = append(all, defs...)

		var pages domain.Pagination
		if len(env.Meta) > 0 {
			meta, err := mapper.DecodeObject(env.Meta)
			if err != nil {
				return nil, err
			}
			pages = mapper.PaginationToDomain(meta)
		}
		if len(defs) == 0 {
			return all, nil
		}
		if pages.TotalPages > 0 {
			if page >= pages.TotalPages {
				return all, nil
			}
		} else if len(defs) < definitionPageSize {
			return all, nil
		}
	}
}

// FeeTypeService manages fee types
type FeeTypeService struct {
	repo FeeRepository
}

// NewFeeTypeService creates a FeeTypeService
func NewFeeTypeService(repo FeeRepository) *FeeTypeService {
	return &FeeTypeService{repo: repo}
}

// List returns fee types, optionally filtered by active flag
func (s *FeeTypeService) List(ctx context.Context, active *bool) Result[[]domain.FeeType] {
	env, err := s.repo.ListFeeTypes(ctx, active)
	if err != nil {
		return Fail[[]domain.FeeType](err, "Failed to fetch fee types")
	}
	types, err := decodeMany(env, mapper.FeeTypeToDomain)
	if err != nil {
		return Fail[[]domain.FeeType](err, "Failed to fetch fee types")
	}
	return Ok(types)
}

// Get returns one fee type
func (s *FeeTypeService) Get(ctx context.Context, id int64) Result[domain.FeeType] {
	env, err := s.repo.GetFeeType(ctx, id)
	if err != nil {
		return Fail[domain.FeeType](err, "Failed to fetch fee type")
	}
	ft, err := decodeOne(env, mapper.FeeTypeToDomain)
	if err != nil {
		return Fail[domain.FeeType](err, "Failed to fetch fee type")
	}
	return Ok(ft)
}

// Create validates the code and creates a fee type
func (s *FeeTypeService) Create(ctx context.Context, ft domain.FeeType) Result[domain.FeeType] {
	if !validation.IsFeeTypeCode(ft.Code) {
		return Invalid[domain.FeeType]("Code must contain only uppercase letters, digits and underscores")
	}
	if !validation.NewStringValidation(ft.Name).WithMinLength(validation.NameMinLength).WithMaxLength(validation.NameMaxLength).Validate() {
		return Invalid[domain.FeeType]("Name must be between 2 and 100 characters")
	}
	env, err := s.repo.CreateFeeType(ctx, mapper.FeeTypeToAPI(ft))
	if err != nil {
		return Fail[domain.FeeType](err, "Failed to create fee type")
	}
	created, err := decodeOne(env, mapper.FeeTypeToDomain)
	if err != nil {
		return Fail[domain.FeeType](err, "Failed to create fee type")
	}
	return OkWithMessage(created, "Fee type created")
}

// Update changes the name and active flag of a fee type
func (s *FeeTypeService) Update(ctx context.Context, ft domain.FeeType) Result[domain.FeeType] {
	payload := map[string]any{"name": ft.Name, "active": ft.Active}
	env, err := s.repo.UpdateFeeType(ctx, ft.ID, payload)
	if err != nil {
		return Fail[domain.FeeType](err, "Failed to update fee type")
	}
	updated, err := decodeOne(env, mapper.FeeTypeToDomain)
	if err != nil {
		return Fail[domain.FeeType](err, "Failed to update fee type")
	}
	return Ok(updated)
}

// Delete removes a fee type
func (s *FeeTypeService) Delete(ctx context.Context, id int64) Result[bool] {
	if err := s.repo.DeleteFeeType(ctx, id); err != nil {
		return Fail[bool](err, "Failed to delete fee type")
	}
	return OkWithMessage(true, "Fee type deleted")
}

// FeeDefinitionService manages fee definitions
type FeeDefinitionService struct {
	repo FeeRepository
}

// NewFeeDefinitionService creates a FeeDefinitionService
func NewFeeDefinitionService(repo FeeRepository) *FeeDefinitionService {
	return &FeeDefinitionService{repo: repo}
}

// List returns fee definitions, optionally of one type
func (s *FeeDefinitionService) List(ctx context.Context, typeID int64) Result[[]domain.FeeDefinition] {
	q := url.Values{}
	if typeID > 0 {
		q.Set("typeId", strconv.FormatInt(typeID, 10))
	}
	defs, err := listAllFeeDefinitions(ctx, s.repo, q)
	if err != nil {
		return Fail[[]domain.FeeDefinition](err, "Failed to fetch fee definitions")
	}
	return Ok(defs)
}

// Get returns one fee definition
func (s *FeeDefinitionService) Get(ctx context.Context, id int64) Result[domain.FeeDefinition] {
	env, err := s.repo.GetFeeDefinition(ctx, id)
	if err != nil {
		return Fail[domain.FeeDefinition](err, "Failed to fetch fee definition")
	}
	fd, err := decodeOne(env, mapper.FeeDefinitionToDomain)
	if err != nil {
		return Fail[domain.FeeDefinition](err, "Failed to fetch fee definition")
	}
	return Ok(fd)
}

// Save creates the definition when ID is zero and updates it otherwise.
// Installments adding up to more than the base amount are accepted with a warning message.
func (s *FeeDefinitionService) Save(ctx context.Context, fd domain.FeeDefinition) Result[domain.FeeDefinition] {
	if fd.BaseAmount.IsNegative() {
		return Invalid[domain.FeeDefinition]("Base amount cannot be negative")
	}
	if fd.Frequency == "" {
		fd.Frequency = feecalc.FrequencyOneTime
	}

	var (
		env *api.Envelope
		err error
	)
	if fd.ID == 0 {
		env, err = s.repo.CreateFeeDefinition(ctx, mapper.FeeDefinitionToAPI(fd))
	} else {
		env, err = s.repo.UpdateFeeDefinition(ctx, fd.ID, mapper.FeeDefinitionToAPI(fd))
	}
	if err != nil {
		return Fail[domain.FeeDefinition](err, "Failed to save fee definition")
	}
	saved, err := decodeOne(env, mapper.FeeDefinitionToDomain)
	if err != nil {
		return Fail[domain.FeeDefinition](err, "Failed to save fee definition")
	}

	if excess := feecalc.InstallmentExcess(*saved.ToCalc(), 1); excess.IsPositive() {
		return OkWithMessage(saved, "Installments exceed the base amount by "+excess.StringFixed(2))
	}
	return Ok(saved)
}

// Delete removes a fee definition
func (s *FeeDefinitionService) Delete(ctx context.Context, id int64) Result[bool] {
	if err := s.repo.DeleteFeeDefinition(ctx, id); err != nil {
		return Fail[bool](err, "Failed to delete fee definition")
	}
	return Ok(true)
}

// FeeAssignmentService manages fee assignments
type FeeAssignmentService struct {
	repo FeeRepository
}

// NewFeeAssignmentService creates a FeeAssignmentService
func NewFeeAssignmentService(repo FeeRepository) *FeeAssignmentService {
	return &FeeAssignmentService{repo: repo}
}

// List returns assignments for "class", "bus_stop", "student" or all when filter is empty
func (s *FeeAssignmentService) List(ctx context.Context, filter string, entityID int64) Result[[]domain.FeeAssignment] {
	env, err := s.repo.ListFeeAssignments(ctx, filter, entityID)
	if err != nil {
		return Fail[[]domain.FeeAssignment](err, "Failed to fetch fee assignments")
	}
	assignments, err := decodeMany(env, mapper.FeeAssignmentToDomain)
	if err != nil {
		return Fail[[]domain.FeeAssignment](err, "Failed to fetch fee assignments")
	}
	return Ok(assignments)
}

// Create assigns a fee to exactly one target
func (s *FeeAssignmentService) Create(ctx context.Context, fa domain.FeeAssignment) Result[domain.FeeAssignment] {
	targets := 0
	for _, id := range []*int64{fa.ClassID, fa.BusStopID, fa.StudentID} {
		if id != nil {
			targets++
		}
	}
	if targets != 1 {
		return Invalid[domain.FeeAssignment]("Exactly one of class, bus stop or student must be set")
	}
	if fa.Fee == nil || fa.Fee.ID <= 0 {
		return Invalid[domain.FeeAssignment]("A fee definition is required")
	}

	env, err := s.repo.CreateFeeAssignment(ctx, mapper.FeeAssignmentToAPI(fa))
	if err != nil {
		return Fail[domain.FeeAssignment](err, "Failed to create fee assignment")
	}
	created, err := decodeOne(env, mapper.FeeAssignmentToDomain)
	if err != nil {
		return Fail[domain.FeeAssignment](err, "Failed to create fee assignment")
	}
	return Ok(created)
}

// Delete removes an assignment
func (s *FeeAssignmentService) Delete(ctx context.Context, id int64) Result[bool] {
	if err := s.repo.DeleteFeeAssignment(ctx, id); err != nil {
		return Fail[bool](err, "Failed to delete fee assignment")
	}
	return Ok(true)
}

// ClassSummary fetches the server computed summary of a class
func (s *FeeAssignmentService) ClassSummary(ctx context.Context, classID int64) Result[domain.FeeSummary] {
	env, err := s.repo.ClassFeeSummary(ctx, classID)
	if err != nil {
		return Fail[domain.FeeSummary](err, "Failed to fetch class fee summary")
	}
	return decodeSummary(env)
}

// BusStopSummary fetches the server computed summary of a bus stop
func (s *FeeAssignmentService) BusStopSummary(ctx context.Context, busStopID int64) Result[domain.FeeSummary] {
	env, err := s.repo.BusStopFeeSummary(ctx, busStopID)
	if err != nil {
		return Fail[domain.FeeSummary](err, "Failed to fetch bus stop fee summary")
	}
	return decodeSummary(env)
}
