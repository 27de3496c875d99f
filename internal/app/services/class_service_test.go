package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/app/models/dto"
	"github.com/yigit/schooladmin/internal/app/repositories"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

func TestGetClassIncludesHeadcount(t *testing.T) {
	school := &fakeSchoolRepo{classes: map[int64]*repositories.ClassWithCount{
		3: {Class: &models.Class{ID: 3, Name: "Grade 3", GradeLevel: 3, Capacity: 40}, StudentCount: 31},
	}}
	svc := NewClassService(school, nil)

	c, err := svc.GetClass(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, dto.ClassResponse{ID: 3, Name: "Grade 3", GradeLevel: 3, Capacity: 40, StudentCount: 31}, *c)

	_, err = svc.GetClass(context.Background(), 4)
	assert.ErrorIs(t, err, apperrors.ErrClassNotFound)
}

func TestDeleteDivision(t *testing.T) {
	repo := &fakeDivisionRepo{
		divisions:   map[int64]*models.Division{1: {ID: 1, ClassID: 3, Name: "A"}, 2: {ID: 2, ClassID: 3, Name: "B"}},
		enrollments: map[int64]int{1: 12},
	}
	svc := NewDivisionService(repo)

	err := svc.DeleteDivision(context.Background(), 1)
	assert.ErrorIs(t, err, apperrors.ErrDivisionHasStudents)

	require.NoError(t, svc.DeleteDivision(context.Background(), 2))
	assert.Equal(t, []int64{2}, repo.deleted)
}

func TestCreateDivision(t *testing.T) {
	repo := &fakeDivisionRepo{divisions: map[int64]*models.Division{}}
	svc := NewDivisionService(repo)

	d, err := svc.CreateDivision(context.Background(), &dto.DivisionRequest{Name: "  C ", ClassID: 3, Capacity: 35})
	require.NoError(t, err)
	assert.Equal(t, "C", d.Name)
	assert.Equal(t, int64(3), d.ClassID)

	_, err = svc.CreateDivision(context.Background(), &dto.DivisionRequest{Name: " ", ClassID: 3})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}
