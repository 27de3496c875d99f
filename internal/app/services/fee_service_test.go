package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
	"github.com/yigit/schooladmin/internal/pkg/feecalc"
)

func TestCreateFeeType(t *testing.T) {
	repo := &fakeFeeTypeRepo{types: map[int64]*models.FeeType{}}
	svc := NewFeeTypeService(repo)

	ft, err := svc.CreateFeeType(context.Background(), &dto.CreateFeeTypeRequest{Code: " tuition ", Name: "Tuition"})
	require.NoError(t, err)
	assert.Equal(t, "TUITION", ft.Code)
	assert.True(t, ft.Active)

	_, err = svc.CreateFeeType(context.Background(), &dto.CreateFeeTypeRequest{Code: "TUITION", Name: "Again"})
	assert.ErrorIs(t, err, apperrors.ErrFeeTypeAlreadyExists)

	_, err = svc.CreateFeeType(context.Background(), &dto.CreateFeeTypeRequest{Code: "BAD CODE!", Name: "Bad"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestUpdateFeeTypeKeepsCode(t *testing.T) {
	repo := &fakeFeeTypeRepo{types: map[int64]*models.FeeType{1: {ID: 1, Code: "BUS", Name: "Bus", Active: true}}}
	svc := NewFeeTypeService(repo)

	ft, err := svc.UpdateFeeType(context.Background(), 1, &dto.UpdateFeeTypeRequest{Name: "Transport", Active: ptr(false)})
	require.NoError(t, err)
	assert.Equal(t, "BUS", ft.Code)
	assert.Equal(t, "Transport", ft.Name)
	assert.False(t, ft.Active)
}

func newFeeDefinitionService() (FeeDefinitionService, *fakeFeeDefinitionRepo) {
	types := &fakeFeeTypeRepo{types: map[int64]*models.FeeType{1: {ID: 1, Code: "TUITION", Name: "Tuition", Active: true}}}
	defs := &fakeFeeDefinitionRepo{defs: map[int64]*models.FeeDefinition{}}
	return NewFeeDefinitionService(defs, types), defs
}

func TestCreateFeeDefinition(t *testing.T) {
	svc, _ := newFeeDefinitionService()

	fd, err := svc.CreateFeeDefinition(context.Background(), &dto.FeeDefinitionRequest{
		Name:       "Tuition 2025",
		TypeID:     ptr(int64(1)),
		BaseAmount: dec("1000"),
		Frequency:  "Annual",
		Installments: []dto.InstallmentRequest{
			{Amount: dec("600")},
			{Label: "Second", Amount: dec("600")},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, feecalc.FrequencyYearly, fd.Frequency)
	assert.Equal(t, DefaultCurrency, fd.Currency)
	require.NotNil(t, fd.Type)
	assert.Equal(t, "Tuition", fd.Type.Name)
	require.Len(t, fd.Installments, 2)
	assert.Equal(t, "Installment 1", fd.Installments[0].Label)
	// installments above the base amount are accepted
	assert.True(t, dec("1200").Equal(fd.InstallmentTotal()))
}

func TestCreateFeeDefinitionValidation(t *testing.T) {
	svc, _ := newFeeDefinitionService()

	tests := []struct {
		name    string
		req     dto.FeeDefinitionRequest
		wantErr error
	}{
		{"missing name", dto.FeeDefinitionRequest{BaseAmount: dec("1"), Frequency: "monthly"}, apperrors.ErrValidationFailed},
		{"negative amount", dto.FeeDefinitionRequest{Name: "Bus", BaseAmount: dec("-1"), Frequency: "monthly"}, apperrors.ErrValidationFailed},
		{"unknown frequency", dto.FeeDefinitionRequest{Name: "Bus", BaseAmount: dec("1"), Frequency: "fortnightly"}, apperrors.ErrValidationFailed},
		{"bad currency", dto.FeeDefinitionRequest{Name: "Bus", BaseAmount: dec("1"), Frequency: "monthly", Currency: "RUPEES"}, apperrors.ErrValidationFailed},
		{"unknown type", dto.FeeDefinitionRequest{Name: "Bus", BaseAmount: dec("1"), Frequency: "monthly", TypeID: ptr(int64(9))}, apperrors.ErrFeeTypeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateFeeDefinition(context.Background(), &tt.req)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestListFeeDefinitionsNormalizesFrequency(t *testing.T) {
	svc, repo := newFeeDefinitionService()

	_, _, err := svc.ListFeeDefinitions(context.Background(), repositories.FeeDefinitionListParams{Frequency: "termly"})
	require.NoError(t, err)
	assert.Equal(t, "term", repo.lastParams.Frequency)

	_, _, err = svc.ListFeeDefinitions(context.Background(), repositories.FeeDefinitionListParams{Frequency: "weekly"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestNormalizeFrequency(t *testing.T) {
	for raw, want := range map[string]feecalc.Frequency{
		"monthly":  feecalc.FrequencyMonthly,
		"per_term": feecalc.FrequencyTerm,
		"ANNUALLY": feecalc.FrequencyYearly,
		"one_time": feecalc.FrequencyOneTime,
		"one-time": feecalc.FrequencyOneTime,
	} {
		got, ok := normalizeFrequency(raw)
		assert.True(t, ok, raw)
		assert.Equal(t, want, got, raw)
	}
	for _, raw := range []string{"", "weekly", "sometimes"} {
		_, ok := normalizeFrequency(raw)
		assert.False(t, ok, raw)
	}
}

func TestCreateFeeAssignment(t *testing.T) {
	repo := &fakeAssignmentRepo{}
	svc := NewFeeAssignmentService(repo)
	start := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, -1, 0)

	_, err := svc.CreateFeeAssignment(context.Background(), &dto.CreateFeeAssignmentRequest{FeeDefinitionID: 1})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.CreateFeeAssignment(context.Background(), &dto.CreateFeeAssignmentRequest{FeeDefinitionID: 1, ClassID: ptr(int64(1)), BusStopID: ptr(int64(2))})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.CreateFeeAssignment(context.Background(), &dto.CreateFeeAssignmentRequest{FeeDefinitionID: 1, ClassID: ptr(int64(1)), StartDate: &start, EndDate: &end})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	fa, err := svc.CreateFeeAssignment(context.Background(), &dto.CreateFeeAssignmentRequest{FeeDefinitionID: 1, BusStopID: ptr(int64(2)), Priority: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(42), fa.ID)
	assert.Equal(t, models.TargetBusStop, fa.Target())
}

func TestListFeeAssignmentsFilter(t *testing.T) {
	repo := &fakeAssignmentRepo{}
	svc := NewFeeAssignmentService(repo)

	_, err := svc.ListFeeAssignments(context.Background(), &dto.FeeAssignmentFilter{Filter: "bus_stop", EntityID: 3})
	require.NoError(t, err)
	assert.Equal(t, models.TargetBusStop, repo.lastFilter.Target)
	assert.Equal(t, int64(3), repo.lastFilter.EntityID)

	_, err = svc.ListFeeAssignments(context.Background(), &dto.FeeAssignmentFilter{EntityID: 3})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	_, err = svc.ListFeeAssignments(context.Background(), &dto.FeeAssignmentFilter{Filter: "school"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func feeAssignment(id int64, name, typeName, amount string, freq feecalc.Frequency) *models.FeeAssignment {
	fd := &models.FeeDefinition{ID: id, Name: name, BaseAmount: dec(amount), Frequency: freq}
	if typeName != "" {
		fd.Type = &models.FeeType{Name: typeName}
	}
	return &models.FeeAssignment{ID: id, FeeDefinitionID: id, Fee: fd}
}

func TestClassFeeSummary(t *testing.T) {
	school := &fakeSchoolRepo{classes: map[int64]*repositories.ClassWithCount{
		1: {Class: &models.Class{ID: 1, Name: "Grade 5"}, StudentCount: 20},
	}}
	assignments := &fakeAssignmentRepo{assignments: []*models.FeeAssignment{
		feeAssignment(1, "Tuition", "Tuition", "1000", feecalc.FrequencyMonthly),
		feeAssignment(2, "Lab", "Tuition", "300", feecalc.FrequencyTerm),
		feeAssignment(3, "Admission", "", "5000", feecalc.FrequencyOneTime),
		{ID: 4, FeeDefinitionID: 4},
	}}
	svc := NewFeeSummaryService(school, assignments, 2)

	resp, err := svc.ClassFeeSummary(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, "class", resp.EntityType)
	assert.Equal(t, "Grade 5", resp.EntityName)
	assert.Equal(t, models.TargetClass, assignments.lastFilter.Target)
	require.NotNil(t, assignments.lastFilter.ActiveOn)

	s := resp.Summary
	assert.Equal(t, 3, s.AssignmentCount)
	// 12000 + 600 + 5000 per student
	assert.True(t, dec("17600").Equal(s.PerStudent.Revenue), s.PerStudent.Revenue.String())
	assert.True(t, dec("352000").Equal(s.Totals.Revenue), s.Totals.Revenue.String())
	assert.True(t, dec("20000").Equal(s.Totals.Monthly))
	assert.True(t, dec("6000").Equal(s.Totals.Yearly)) // per-term amount, not annualized
	assert.True(t, dec("100000").Equal(s.Totals.OneTime))

	require.Len(t, resp.FeeTypes, 2)
	assert.Equal(t, "Tuition", resp.FeeTypes[0].Name)
	assert.True(t, dec("252000").Equal(resp.FeeTypes[0].TotalAmount))
	assert.Equal(t, feecalc.OtherFeeType, resp.FeeTypes[1].Name)
}

func TestBusStopFeeSummaryWithoutRiders(t *testing.T) {
	school := &fakeSchoolRepo{stops: map[int64]*models.BusStop{7: {ID: 7, Name: "Market Road"}}, riders: map[int64]int{}}
	assignments := &fakeAssignmentRepo{assignments: []*models.FeeAssignment{
		feeAssignment(1, "Bus", "Transport", "800", feecalc.FrequencyMonthly),
	}}
	svc := NewFeeSummaryService(school, assignments, 3)

	resp, err := svc.BusStopFeeSummary(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, resp.Summary.Totals.Revenue.IsZero())
	assert.True(t, resp.Summary.ByFeeType["Transport"].TotalAmount.IsZero())
	assert.True(t, dec("800").Equal(resp.Summary.PerStudent.Monthly))

	_, err = svc.BusStopFeeSummary(context.Background(), 8)
	assert.ErrorIs(t, err, apperrors.ErrBusStopNotFound)
}
