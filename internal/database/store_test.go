// internal/database/store_test.go
package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsPackNotFound(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{
			name: "structured raise_exception with known message",
			err:  &pgconn.PgError{Code: "P0001", Message: "Credit pack not found"},
			want: true,
		},
		{
			name: "wrapped PgError",
			err:  fmt.Errorf("purchase_credits: %w", &pgconn.PgError{Code: "P0001", Message: "Credit pack not found"}),
			want: true,
		},
		{
			name: "raise_exception with a different message",
			err:  &pgconn.PgError{Code: "P0001", Message: "Insufficient credits"},
			want: false,
		},
		{
			name: "other SQLSTATE carrying the text",
			err:  &pgconn.PgError{Code: "23503", Message: "Credit pack not found"},
			want: false,
		},
		{
			name: "plain error carrying the text (minimum contract)",
			err:  errors.New(`ERROR: Credit pack not found (SQLSTATE P0001)`),
			want: true,
		},
		{
			name: "unrelated error",
			err:  errors.New("connection reset by peer"),
			want: false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, isPackNotFound(tc.err))
		})
	}
}
