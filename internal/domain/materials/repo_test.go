package materials

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestCreateError(t *testing.T) {
	unique := &pgconn.PgError{Code: "23505", ConstraintName: "materials_pkey"}

	tests := []struct {
		name    string
		err     error
		wantDup bool
	}{
		{"unique violation", unique, true},
		{"wrapped unique violation", fmt.Errorf("scan: %w", unique), true},
		{"other pg error", &pgconn.PgError{Code: "23502"}, false},
		{"plain error", errors.New("connection reset"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := createError("M1", tt.err)
			if got := errors.Is(err, ErrDuplicate); got != tt.wantDup {
				t.Errorf("errors.Is(ErrDuplicate) = %v, want %v (err=%v)", got, tt.wantDup, err)
			}
			if !tt.wantDup && err != tt.err {
				t.Errorf("non-duplicate error must pass through unchanged, got %v", err)
			}
		})
	}
}
