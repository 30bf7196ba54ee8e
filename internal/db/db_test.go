package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
)

func TestConstraintHelpers(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	check := &pgconn.PgError{Code: "23514"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsUniqueViolation(fk))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.True(t, IsCheckViolation(check))
	assert.False(t, IsCheckViolation(errors.New("boom")))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, IsNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, IsNoRows(errors.New("other")))
}

func TestRejectedValue(t *testing.T) {
	check := fmt.Errorf("insert inventory transaction: %w", &pgconn.PgError{Code: "23514"})
	overflow := &pgconn.PgError{Code: "22003"}
	other := errors.New("conn reset")

	assert.ErrorIs(t, RejectedValue(check), apperr.ErrBadRequest)
	assert.ErrorIs(t, RejectedValue(overflow), apperr.ErrBadRequest)
	assert.Same(t, other, RejectedValue(other))
	assert.NoError(t, RejectedValue(nil))
}
