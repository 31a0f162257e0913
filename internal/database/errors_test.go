package database_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/keyurdhanani/store-management-project/internal/database"
	"github.com/keyurdhanani/store-management-project/internal/ledger"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantRetryable bool
	}{
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, wantRetryable: true},
		{name: "serialization", err: &pgconn.PgError{Code: "40001"}, wantRetryable: true},
		{name: "lock timeout", err: &pgconn.PgError{Code: "55P03"}, wantRetryable: true},
		{name: "wrapped lock timeout", err: fmt.Errorf("locking stock: %w", &pgconn.PgError{Code: "55P03"}), wantRetryable: true},
		{name: "unique violation", err: &pgconn.PgError{Code: "23505"}},
		{name: "plain error", err: errors.New("boom")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := database.Classify(tt.err)

			assert.Equal(t, tt.wantRetryable, errors.Is(got, ledger.ErrRetryable))
			assert.ErrorIs(t, got, tt.err)
		})
	}

	assert.NoError(t, database.Classify(nil))
}

func TestViolations(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	fk := &pgconn.PgError{Code: "23503"}
	check := &pgconn.PgError{Code: "23514"}

	assert.True(t, database.IsUniqueViolation(unique))
	assert.False(t, database.IsUniqueViolation(fk))
	assert.True(t, database.IsForeignKeyViolation(fk))
	assert.True(t, database.IsCheckViolation(check))
	assert.False(t, database.IsCheckViolation(errors.New("x")))
}
