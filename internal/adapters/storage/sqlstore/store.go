// Package sqlstore implementa los repositorios de users, pets y registrations sobre
// database/sql. Postgres y SQLite comparten las consultas; lo que cambia entre motores
// (placeholders, DDL, detección de violación de unicidad) vive en Dialect.
package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"pet-guardianship/internal/platform/apperr"
)

// Dialect encapsula las diferencias entre motores.
type Dialect interface {
	Name() string
	// Rebind traduce los placeholders '?' al formato del driver.
	Rebind(query string) string
	IsUniqueViolation(err error) bool
	// Schema son las sentencias DDL idempotentes (CREATE ... IF NOT EXISTS).
	Schema() []string
}

type Store struct {
	db *sql.DB
	d  Dialect
}

func New(db *sql.DB, d Dialect) *Store {
	return &Store{db: db, d: d}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Dialect() Dialect { return s.d }

// Migrate aplica el schema. Es idempotente.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range s.d.Schema() {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("%s migrate: %w", s.d.Name(), err)
		}
	}
	return nil
}

func (s *Store) Health(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperr.Unavailable(err)
	}
	return nil
}

func (s *Store) Users() *UserRepo { return &UserRepo{s: s} }

func (s *Store) Pets() *PetRepo { return &PetRepo{s: s} }

func (s *Store) Registrations() *RegistrationRepo { return &RegistrationRepo{s: s} }

func (s *Store) q(query string) string { return s.d.Rebind(query) }

// unavailable clasifica fallas del driver. Lo que ya viene clasificado pasa tal cual.
func unavailable(err error) error {
	if err == nil {
		return nil
	}
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return err
	}
	return apperr.Unavailable(err)
}

// Los timestamps se guardan como microsegundos unix en BIGINT/INTEGER: comparación
// numérica idéntica en ambos motores.
func toMicros(t time.Time) int64 { return t.UTC().UnixMicro() }

func fromMicros(v int64) time.Time { return time.UnixMicro(v).UTC() }
