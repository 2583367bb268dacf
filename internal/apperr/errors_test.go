package apperr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsMatchesByKind(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", NotFound("income %d not found", 7))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrValidation))
	assert.Equal(t, KindNotFound, KindOf(err))
	assert.Equal(t, "wrapped: income 7 not found", err.Error())
}

func TestKindOfUntyped(t *testing.T) {
	assert.Equal(t, KindStorage, KindOf(errors.New("boom")))
}

func TestFromStore(t *testing.T) {
	tests := []struct {
		name      string
		in        error
		kind      Kind
		retryable bool
	}{
		{"record not found", gorm.ErrRecordNotFound, KindNotFound, false},
		{"duplicated key", gorm.ErrDuplicatedKey, KindConflict, false},
		{"deadline", context.DeadlineExceeded, KindStorage, true},
		{"pg unique", &pgconn.PgError{Code: "23505"}, KindConflict, false},
		{"pg serialization", &pgconn.PgError{Code: "40001"}, KindStorage, true},
		{"pg deadlock", &pgconn.PgError{Code: "40P01"}, KindStorage, true},
		{"pg numeric overflow", &pgconn.PgError{Code: "22003"}, KindValidation, false},
		{"other", errors.New("disk full"), KindStorage, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FromStore(fmt.Errorf("query: %w", tt.in), "bank account")
			assert.Equal(t, tt.kind, KindOf(err))
			assert.Equal(t, tt.retryable, IsRetryable(err))
		})
	}
}

func TestFromStorePassesTypedErrors(t *testing.T) {
	in := Validation("amount", "amount must be positive")
	assert.Same(t, in, FromStore(in, "income"))
	assert.Nil(t, FromStore(nil, "income"))
}
