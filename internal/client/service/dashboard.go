package service

import (
	"context"
	"encoding/json"

	"golang.org/x/sync/errgroup"

	"github.com/yigit/schooladmin/internal/client/api"
	"github.com/yigit/schooladmin/internal/client/domain"
	"github.com/yigit/schooladmin/internal/client/mapper"
	"github.com/yigit/schooladmin/internal/pkg/feecalc"
)

func decodeSummary(env *api.Envelope) Result[domain.FeeSummary] {
	var summary domain.FeeSummary
	if err := json.Unmarshal(env.Data, &summary); err != nil {
		return Fail[domain.FeeSummary](err, "Failed to read fee summary")
	}
	return Ok(summary)
}

// FeeDashboard is the joined fee data of one entity with its aggregation
type FeeDashboard struct {
	FeeTypes    []domain.FeeType
	Definitions []domain.FeeDefinition
	Assignments []domain.FeeAssignment
	Summary     feecalc.Summary
}

// DashboardQuery selects the assignments to aggregate
type DashboardQuery struct {
	Filter       string
	EntityID     int64
	StudentCount int
}

// FeeDashboardService joins fee types, definitions and assignments and aggregates them
type FeeDashboardService struct {
	repo  FeeRepository
	table feecalc.MultiplierTable
}

// NewFeeDashboardService creates a FeeDashboardService annualizing term fees
// with termsPerYear. Non-positive values use the default.
func NewFeeDashboardService(repo FeeRepository, termsPerYear int) *FeeDashboardService {
	table := feecalc.DefaultMultipliers()
	if termsPerYear > 0 {
		table = feecalc.MultipliersWithTerms(termsPerYear)
	}
	return &FeeDashboardService{repo: repo, table: table}
}

// Load fetches the three collections concurrently. The first failure fails
// the whole load.
func (s *FeeDashboardService) Load(ctx context.Context, q DashboardQuery) Result[FeeDashboard] {
	var (
		types       []domain.FeeType
		definitions []domain.FeeDefinition
		assignments []domain.FeeAssignment
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		env, err := s.repo.ListFeeTypes(gctx, nil)
		if err != nil {
			return err
		}
		types, err = decodeMany(env, mapper.FeeTypeToDomain)
		return err
	})
	g.Go(func() error {
		var err error
		definitions, err = listAllFeeDefinitions(gctx, s.repo, nil)
		return err
	})
	g.Go(func() error {
		env, err := s.repo.ListFeeAssignments(gctx, q.Filter, q.EntityID)
		if err != nil {
			return err
		}
		assignments, err = decodeMany(env, mapper.FeeAssignmentToDomain)
		return err
	})
	if err := g.Wait(); err != nil {
		return Fail[FeeDashboard](err, "Failed to load fee data")
	}

	assignments = JoinAssignments(assignments, definitions, types)
	calc := make([]feecalc.Assignment, 0, len(assignments))
	for _, a := range assignments {
		calc = append(calc, feecalc.Assignment{ID: a.ID, Priority: a.Priority, Fee: a.Fee.ToCalc()})
	}

	return Ok(FeeDashboard{
		FeeTypes:    types,
		Definitions: definitions,
		Assignments: assignments,
		Summary:     feecalc.Aggregate(calc, q.StudentCount, s.table),
	})
}

// JoinAssignments fills the fee of every assignment from definitions and the
// fee type from types, so a fee given only by id still aggregates correctly.
func JoinAssignments(assignments []domain.FeeAssignment, definitions []domain.FeeDefinition, types []domain.FeeType) []domain.FeeAssignment {
	defByID := make(map[int64]domain.FeeDefinition, len(definitions))
	for _, d := range definitions {
		defByID[d.ID] = d
	}
	typeByID := make(map[int64]domain.FeeType, len(types))
	for _, t := range types {
		typeByID[t.ID] = t
	}

	out := make([]domain.FeeAssignment, len(assignments))
	for i, a := range assignments {
		if a.Fee != nil {
			if def, ok := defByID[a.Fee.ID]; ok && (a.Fee.Name == "" || a.Fee.BaseAmount.IsZero()) {
				fee := def
				a.Fee = &fee
			} else {
				fee := *a.Fee
				a.Fee = &fee
			}
			if a.Fee.Type != nil && a.Fee.Type.Name == "" {
				if t, ok := typeByID[a.Fee.Type.ID]; ok {
					ft := t
					a.Fee.Type = &ft
				}
			}
		}
		out[i] = a
	}
	return out
}
