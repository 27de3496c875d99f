package seed

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

type fakeFeeTypes struct {
	codes map[string]bool
	fail  string
}

func (f *fakeFeeTypes) Create(_ context.Context, ft *models.FeeType) error {
	if ft.Code == f.fail {
		return errors.New("connection reset")
	}
	if f.codes[ft.Code] {
		return apperrors.ErrFeeTypeAlreadyExists
	}
	f.codes[ft.Code] = true
	return nil
}

func TestCreateDefaultDataIsIdempotent(t *testing.T) {
	repo := &fakeFeeTypes{codes: map[string]bool{"TUITION": true}}

	require.NoError(t, CreateDefaultData(context.Background(), repo, zerolog.Nop()))
	assert.Len(t, repo.codes, len(DefaultFeeTypes))

	require.NoError(t, CreateDefaultData(context.Background(), repo, zerolog.Nop()))
	assert.Len(t, repo.codes, len(DefaultFeeTypes))
}

func TestCreateDefaultDataCollectsFailures(t *testing.T) {
	repo := &fakeFeeTypes{codes: map[string]bool{}, fail: "EXAM"}

	err := CreateDefaultData(context.Background(), repo, zerolog.Nop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Len(t, repo.codes, len(DefaultFeeTypes)-1)
}
