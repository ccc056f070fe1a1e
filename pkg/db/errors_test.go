package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	pgxErr := &pgconn.PgError{Code: "23505", ConstraintName: "clients_user_name_key"}
	assert.True(t, IsUniqueViolation(fmt.Errorf("insert: %w", pgxErr), ""))
	assert.True(t, IsUniqueViolation(pgxErr, "clients_user_name_key"))
	assert.False(t, IsUniqueViolation(pgxErr, "clients_singleton_idx"))

	pqErr := &pq.Error{Code: "23505", Constraint: "clients_singleton_idx"}
	assert.True(t, IsUniqueViolation(pqErr, "clients_singleton_idx"))

	fk := &pgconn.PgError{Code: "23503"}
	assert.False(t, IsUniqueViolation(fk, ""))

	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: clients.user_name"), ""))
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: clients.user_name"), "clients.user_name"))
	assert.False(t, IsUniqueViolation(errors.New("boom"), ""))
	assert.False(t, IsUniqueViolation(nil, ""))
}
