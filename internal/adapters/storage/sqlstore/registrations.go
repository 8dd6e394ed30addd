package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/domain/registrations"
	"pet-guardianship/internal/platform/apperr"
)

// RegistrationRepo es el ledger sobre SQL. La invariante de un guardián activo por
// mascota la sostiene el índice único parcial registrations_one_active_per_pet.
type RegistrationRepo struct {
	s *Store
}

const regColumns = `r.id, r.user_id, r.pet_id, r.registered_at, r.released_at, r.released`

// Insert es una sola escritura condicional: solo inserta si user y pet existen sin baja.
// Dos inserts concurrentes para la misma mascota chocan en el índice único.
func (r *RegistrationRepo) Insert(ctx context.Context, petID, userID int64, at time.Time) (registrations.Registration, error) {
	ts := toMicros(at)
	var id int64
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		INSERT INTO registrations (user_id, pet_id, registered_at, released_at, released)
		SELECT ?, ?, ?, ?, FALSE
		WHERE EXISTS (SELECT 1 FROM users WHERE id = ? AND NOT deleted)
		  AND EXISTS (SELECT 1 FROM pets WHERE id = ? AND NOT deleted)
		RETURNING id`),
		userID, petID, ts, ts, userID, petID,
	).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return registrations.Registration{}, apperr.NotFound("pet %d or user %d not found", petID, userID)
	case err != nil && r.s.d.IsUniqueViolation(err):
		return registrations.Registration{}, apperr.Conflict("pet already has an active guardian")
	case err != nil:
		return registrations.Registration{}, unavailable(err)
	}

	return registrations.Registration{
		ID:           id,
		UserID:       userID,
		PetID:        petID,
		RegisteredAt: fromMicros(ts),
		ReleasedAt:   fromMicros(ts),
	}, nil
}

// Release marca released en una transacción y cuenta las filas afectadas antes de confirmar.
func (r *RegistrationRepo) Release(ctx context.Context, petID, userID int64, at time.Time) (reg registrations.Registration, err error) {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return registrations.Registration{}, unavailable(err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	ts := toMicros(at)
	rows, err := tx.QueryContext(ctx, r.s.q(`
		UPDATE registrations
		SET released = TRUE,
		    released_at = CASE WHEN registered_at > ? THEN registered_at ELSE ? END
		WHERE pet_id = ? AND user_id = ? AND NOT released
		RETURNING id`),
		ts, ts, petID, userID,
	)
	if err != nil {
		return registrations.Registration{}, unavailable(err)
	}
	ids := make([]int64, 0, 1)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return registrations.Registration{}, unavailable(err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return registrations.Registration{}, unavailable(err)
	}
	_ = rows.Close()

	switch {
	case len(ids) == 0:
		return registrations.Registration{}, apperr.NotFound("no active registration for pet %d and user %d", petID, userID)
	case len(ids) > 1:
		return registrations.Registration{}, apperr.Inconsistency(nil, "release of pet %d affected %d rows", petID, len(ids))
	}

	row := tx.QueryRowContext(ctx, r.s.q(`SELECT `+regColumns+` FROM registrations r WHERE r.id = ?`), ids[0])
	reg, err = scanRegistration(row)
	if err != nil {
		return registrations.Registration{}, unavailable(err)
	}
	if err = tx.Commit(); err != nil {
		return registrations.Registration{}, unavailable(err)
	}
	return reg, nil
}

func (r *RegistrationRepo) ActiveByPet(ctx context.Context, petID int64) (registrations.Registration, bool, error) {
	rows, err := r.s.db.QueryContext(ctx, r.s.q(`
		SELECT `+regColumns+` FROM registrations r
		WHERE r.pet_id = ? AND NOT r.released`), petID)
	if err != nil {
		return registrations.Registration{}, false, unavailable(err)
	}
	defer rows.Close()

	found := make([]registrations.Registration, 0, 1)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return registrations.Registration{}, false, unavailable(err)
		}
		found = append(found, reg)
	}
	if err := rows.Err(); err != nil {
		return registrations.Registration{}, false, unavailable(err)
	}

	switch len(found) {
	case 0:
		return registrations.Registration{}, false, nil
	case 1:
		return found[0], true, nil
	default:
		return registrations.Registration{}, false, apperr.Inconsistency(nil, "pet %d has %d active registrations", petID, len(found))
	}
}

func (r *RegistrationRepo) PetsByUser(ctx context.Context, userID int64, activeOnly bool, w paging.Window) ([]registrations.PetEntry, error) {
	q := newQuery(`SELECT ` + regColumns + `,
		p.id, p.species, p.nickname, p.image_url, p.deleted, p.created_at, p.updated_at
		FROM registrations r
		JOIN pets p ON p.id = r.pet_id
		WHERE NOT p.deleted`)
	q.where(`r.user_id = ?`, userID)
	if activeOnly {
		q.where(`NOT r.released`)
	}
	q.page(w)

	rows, err := r.s.db.QueryContext(ctx, r.s.q(q.sql()), q.args...)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	out := make([]registrations.PetEntry, 0)
	for rows.Next() {
		var (
			e                              registrations.PetEntry
			regAt, relAt, created, updated int64
		)
		err := rows.Scan(
			&e.Registration.ID, &e.Registration.UserID, &e.Registration.PetID, &regAt, &relAt, &e.Registration.Released,
			&e.Pet.ID, &e.Pet.Species, &e.Pet.Nickname, &e.Pet.ImageURL, &e.Pet.Deleted, &created, &updated,
		)
		if err != nil {
			return nil, unavailable(err)
		}
		e.Registration.RegisteredAt = fromMicros(regAt)
		e.Registration.ReleasedAt = fromMicros(relAt)
		e.Pet.CreatedAt = fromMicros(created)
		e.Pet.UpdatedAt = fromMicros(updated)
		out = append(out, e)
	}
	return out, unavailable(rows.Err())
}

func (r *RegistrationRepo) UsersByPet(ctx context.Context, petID int64, w paging.Window) ([]registrations.UserEntry, error) {
	q := newQuery(`SELECT ` + regColumns + `,
		u.id, u.nickname, u.deleted, u.created_at, u.updated_at
		FROM registrations r
		JOIN users u ON u.id = r.user_id
		WHERE NOT u.deleted`)
	q.where(`r.pet_id = ?`, petID)
	q.page(w)

	rows, err := r.s.db.QueryContext(ctx, r.s.q(q.sql()), q.args...)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	out := make([]registrations.UserEntry, 0)
	for rows.Next() {
		var (
			e                              registrations.UserEntry
			regAt, relAt, created, updated int64
		)
		err := rows.Scan(
			&e.Registration.ID, &e.Registration.UserID, &e.Registration.PetID, &regAt, &relAt, &e.Registration.Released,
			&e.User.ID, &e.User.Nickname, &e.User.Deleted, &created, &updated,
		)
		if err != nil {
			return nil, unavailable(err)
		}
		e.Registration.RegisteredAt = fromMicros(regAt)
		e.Registration.ReleasedAt = fromMicros(relAt)
		e.User.CreatedAt = fromMicros(created)
		e.User.UpdatedAt = fromMicros(updated)
		out = append(out, e)
	}
	return out, unavailable(rows.Err())
}

func (r *RegistrationRepo) List(ctx context.Context, f registrations.Filter, w paging.Window) ([]registrations.Registration, error) {
	q := newQuery(`SELECT ` + regColumns + ` FROM registrations r WHERE TRUE`)
	if f.PetID != nil {
		q.where(`r.pet_id = ?`, *f.PetID)
	}
	if f.UserID != nil {
		q.where(`r.user_id = ?`, *f.UserID)
	}
	if f.Released != nil {
		q.where(`r.released = ?`, *f.Released)
	}
	q.page(w)

	rows, err := r.s.db.QueryContext(ctx, r.s.q(q.sql()), q.args...)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	out := make([]registrations.Registration, 0)
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, unavailable(err)
		}
		out = append(out, reg)
	}
	return out, unavailable(rows.Err())
}

func scanRegistration(sc scanner) (registrations.Registration, error) {
	var (
		reg          registrations.Registration
		regAt, relAt int64
	)
	if err := sc.Scan(&reg.ID, &reg.UserID, &reg.PetID, &regAt, &relAt, &reg.Released); err != nil {
		return registrations.Registration{}, err
	}
	reg.RegisteredAt = fromMicros(regAt)
	reg.ReleasedAt = fromMicros(relAt)
	return reg, nil
}

// query arma consultas del ledger a partir de fragmentos fijos; los valores siempre van
// como parámetros.
type query struct {
	base  string
	conds []string
	tail  string
	args  []any
}

func newQuery(base string) *query { return &query{base: base} }

func (q *query) where(cond string, args ...any) {
	q.conds = append(q.conds, cond)
	q.args = append(q.args, args...)
}

// page agrega el keyset después del cursor (registro más nuevo primero, empate por id
// ascendente), el orden y la ventana.
func (q *query) page(w paging.Window) {
	if w.HasAfter {
		q.where(`(r.registered_at < (SELECT c.registered_at FROM registrations c WHERE c.id = ?)
			OR (r.registered_at = (SELECT c.registered_at FROM registrations c WHERE c.id = ?) AND r.id > ?))`,
			w.After, w.After, w.After)
	}
	q.tail = ` ORDER BY r.registered_at DESC, r.id ASC LIMIT ? OFFSET ?`
	q.args = append(q.args, w.Fetch(), w.Offset)
}

func (q *query) sql() string {
	var b strings.Builder
	b.WriteString(q.base)
	for _, c := range q.conds {
		b.WriteString(" AND ")
		b.WriteString(c)
	}
	b.WriteString(q.tail)
	return b.String()
}
