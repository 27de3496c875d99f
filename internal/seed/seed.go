package seed

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/yigit/schooladmin/internal/app/models"
	"github.com/yigit/schooladmin/internal/pkg/apperrors"
)

// FeeTypeCreator is the part of the fee type repository the seeder needs
type FeeTypeCreator interface {
	Create(ctx context.Context, ft *models.FeeType) error
}

// DefaultFeeTypes are created on first start so fee definitions can be
// entered right away.
var DefaultFeeTypes = []models.FeeType{
	{Code: "TUITION", Name: "Tuition Fee", Active: true},
	{Code: "ADMISSION", Name: "Admission Fee", Active: true},
	{Code: "TRANSPORT", Name: "Transport Fee", Active: true},
	{Code: "EXAM", Name: "Examination Fee", Active: true},
	{Code: "ACTIVITY", Name: "Activity Fee", Active: true},
}

// CreateDefaultData creates the default fee types that do not exist yet.
// Existing codes are left untouched; other failures are collected and returned together.
func CreateDefaultData(ctx context.Context, feeTypes FeeTypeCreator, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default fee types...")

	var finalErr error
	created := 0
	for _, def := range DefaultFeeTypes {
		ft := def
		err := feeTypes.Create(ctx, &ft)
		switch {
		case err == nil:
			created++
		case errors.Is(err, apperrors.ErrFeeTypeAlreadyExists):
		default:
			lgr.Error().Err(err).Str("code", ft.Code).Msg("Error creating default fee type")
			finalErr = errors.Join(finalErr, err)
		}
	}

	lgr.Info().Int("created", created).Msg("Default fee types checked")
	return finalErr
}
