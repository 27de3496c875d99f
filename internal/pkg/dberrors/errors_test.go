package dberrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestPgErrorClassification(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "fee_types_code_key"}
	fk := &pgconn.PgError{Code: "23503"}
	wrapped := fmt.Errorf("insert fee type: %w", dup)

	assert.True(t, IsDuplicateKeyError(wrapped))
	assert.True(t, IsDuplicateConstraintError(wrapped, "fee_types_code_key"))
	assert.False(t, IsDuplicateConstraintError(wrapped, "other_key"))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsForeignKeyViolation(dup))
	assert.False(t, IsDuplicateKeyError(errors.New("boom")))
}
