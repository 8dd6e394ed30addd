package sqlite

import (
	"errors"

	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

type Dialect struct{}

func (Dialect) Name() string { return "sqlite" }

func (Dialect) Rebind(query string) string { return query }

func (Dialect) IsUniqueViolation(err error) bool {
	var sqliteErr *msqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3lib.SQLITE_CONSTRAINT_UNIQUE, sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

func (Dialect) Schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			nickname TEXT NOT NULL,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS pets (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			species TEXT NOT NULL,
			nickname TEXT NOT NULL,
			image_url TEXT NOT NULL DEFAULT '',
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at INTEGER NOT NULL,
			updated_at INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS registrations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id INTEGER NOT NULL REFERENCES users(id),
			pet_id INTEGER NOT NULL REFERENCES pets(id),
			registered_at INTEGER NOT NULL,
			released_at INTEGER NOT NULL,
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
