package postgres

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

type Dialect struct{}

func (Dialect) Name() string { return "postgres" }

// Rebind pasa de '?' a $1, $2, ...
func (Dialect) Rebind(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func (Dialect) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func (Dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			nickname TEXT NOT NULL,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pets (
			id BIGSERIAL PRIMARY KEY,
			species TEXT NOT NULL,
			nickname TEXT NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at BIGINT NOT NULL,
			updated_at BIGINT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id),
			pet_id BIGINT NOT NULL REFERENCES pets(id),
			registered_at BIGINT NOT NULL,
			released_at BIGINT NOT NULL,
			released BOOLEAN NOT NULL DEFAULT FALSE,
			CHECK (released_at >= registered_at)
		)`,
		`CREATE UNIQUE INDEX IF NOT EXISTS registrations_one_active_per_pet
			ON registrations (pet_id) WHERE NOT released`,
		`CREATE INDEX IF NOT EXISTS registrations_user_idx
			ON registrations (user_id, registered_at DESC, id)`,
		`CREATE INDEX IF NOT EXISTS registrations_pet_idx
			ON registrations (pet_id, registered_at DESC, id)`,
	}
}
