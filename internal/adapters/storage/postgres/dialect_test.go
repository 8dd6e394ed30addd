package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	got := Dialect{}.Rebind(`SELECT * FROM r WHERE a = ? AND (b = ? OR c > ?) LIMIT ?`)
	assert.Equal(t, `SELECT * FROM r WHERE a = $1 AND (b = $2 OR c > $3) LIMIT $4`, got)

	assert.Equal(t, `SELECT 1`, Dialect{}.Rebind(`SELECT 1`))
}

func TestIsUniqueViolation(t *testing.T) {
	d := Dialect{}
	wrapped := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, d.IsUniqueViolation(wrapped))
	assert.False(t, d.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, d.IsUniqueViolation(errors.New("boom")))
}
