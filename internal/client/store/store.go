package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/schooladmin/internal/client/domain"
	"github.com/yigit/schooladmin/internal/client/service"
)

// State is the lifecycle of a store
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StatePopulated State = "populated"
	StateError     State = "error"
)

// ClassDataSource fetches everything the class store needs
type ClassDataSource interface {
	GetAllClassData(ctx context.Context) service.Result[service.ClassData]
}

// ClassSnapshot is a consistent copy of the class store
type ClassSnapshot struct {
	State       State
	Error       string
	Warning     string
	Classes     []domain.Class
	Divisions   []domain.Division
	Enrollments []domain.Enrollment
	Metrics     map[string]ClassMetrics
	LoadedAt    time.Time
}

// ClassStore holds classes, divisions, enrollments and per-class metrics.
// Only the most recent Fetch may publish its result.
type ClassStore struct {
	source ClassDataSource
	logger zerolog.Logger
	now    func() time.Time

	mu   sync.RWMutex
	seq  uint64
	snap ClassSnapshot
}

// NewClassStore creates an idle ClassStore
func NewClassStore(source ClassDataSource, lgr zerolog.Logger) *ClassStore {
	return &ClassStore{
		source: source,
		logger: lgr,
		now:    time.Now,
		snap:   ClassSnapshot{State: StateIdle},
	}
}

// Fetch loads class data and recomputes metrics. It returns the state the
// store is in afterwards; a superseded fetch leaves the store untouched.
func (s *ClassStore) Fetch(ctx context.Context) State {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.snap.State = StateLoading
	s.snap.Error = ""
	s.mu.Unlock()

	res := s.source.GetAllClassData(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		s.logger.Debug().Uint64("seq", seq).Msg("Discarding superseded class fetch")
		return s.snap.State
	}

	if !res.Success {
		s.snap.State = StateError
		s.snap.Error = res.Error
		return s.snap.State
	}

	now := s.now()
	s.snap = ClassSnapshot{
		State:       StatePopulated,
		Warning:     res.Message,
		Classes:     res.Data.Classes,
		Divisions:   res.Data.Divisions,
		Enrollments: res.Data.Enrollments,
		Metrics:     ComputeClassMetrics(res.Data.Classes, res.Data.Enrollments, now, s.logger),
		LoadedAt:    now,
	}
	return s.snap.State
}

// Snapshot returns a copy of the current contents. Callers may modify it.
func (s *ClassStore) Snapshot() ClassSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Classes = slices.Clone(snap.Classes)
	snap.Divisions = slices.Clone(snap.Divisions)
	snap.Enrollments = slices.Clone(snap.Enrollments)
	if snap.Metrics != nil {
		snap.Metrics = make(map[string]ClassMetrics, len(s.snap.Metrics))
		for k, m := range s.snap.Metrics {
			snap.Metrics[k] = m.clone()
		}
	}
	return snap
}

// State returns the current state
func (s *ClassStore) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.State
}

// Metrics returns the metrics of a class by name, ignoring case
func (s *ClassStore) Metrics(className string) (ClassMetrics, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.snap.Metrics[classKey(className)]
	return m.clone(), ok
}

// Invalidate drops cached data and returns to idle. Fetches still in
// flight will not publish.
func (s *ClassStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.snap = ClassSnapshot{State: StateIdle}
}

// DivisionLister lists the divisions of a class
type DivisionLister interface {
	List(ctx context.Context, classID int64) service.Result[[]domain.Division]
}

// EnrollmentLister lists the enrollments of a class
type EnrollmentLister interface {
	ListEnrollments(ctx context.Context, classID int64) service.Result[[]domain.Enrollment]
}

// DivisionSnapshot is a consistent copy of the division store
type DivisionSnapshot struct {
	State     State
	Error     string
	ClassID   int64
	Divisions []domain.Division
	Metrics   map[int64]DivisionMetrics
}

// DivisionStore holds the divisions of one class and their metrics
type DivisionStore struct {
	divisions   DivisionLister
	enrollments EnrollmentLister

	mu   sync.RWMutex
	seq  uint64
	snap DivisionSnapshot
}

// NewDivisionStore creates an idle DivisionStore
func NewDivisionStore(divisions DivisionLister, enrollments EnrollmentLister) *DivisionStore {
	return &DivisionStore{
		divisions:   divisions,
		enrollments: enrollments,
		snap:        DivisionSnapshot{State: StateIdle},
	}
}

// Fetch loads the divisions and enrollments of classID
func (s *DivisionStore) Fetch(ctx context.Context, classID int64) State {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.snap.State = StateLoading
	s.snap.Error = ""
	s.mu.Unlock()

	divisions := s.divisions.List(ctx, classID)
	var enrollments service.Result[[]domain.Enrollment]
	if divisions.Success {
		enrollments = s.enrollments.ListEnrollments(ctx, classID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return s.snap.State
	}

	switch {
	case !divisions.Success:
		s.snap.State, s.snap.Error = StateError, divisions.Error
	case !enrollments.Success:
		s.snap.State, s.snap.Error = StateError, enrollments.Error
	default:
		s.snap = DivisionSnapshot{
			State:     StatePopulated,
			ClassID:   classID,
			Divisions: divisions.Data,
			Metrics:   ComputeDivisionMetrics(divisions.Data, enrollments.Data),
		}
	}
	return s.snap.State
}

// Snapshot returns a copy of the current contents
func (s *DivisionStore) Snapshot() DivisionSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := s.snap
	snap.Divisions = slices.Clone(snap.Divisions)
	if snap.Metrics != nil {
		snap.Metrics = make(map[int64]DivisionMetrics, len(s.snap.Metrics))
		for k, m := range s.snap.Metrics {
			snap.Metrics[k] = m.clone()
		}
	}
	return snap
}

// Invalidate drops cached data and returns to idle
func (s *DivisionStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.snap = DivisionSnapshot{State: StateIdle}
}
