package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/domain/pets"
	"pet-guardianship/internal/domain/users"
	"pet-guardianship/internal/platform/apperr"
)

// -------------------------
// users
// -------------------------

type UserRepo struct {
	s *Store
}

const userColumns = `id, nickname, deleted, created_at, updated_at`

func (r *UserRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		INSERT INTO users (nickname, deleted, created_at, updated_at)
		VALUES (?, FALSE, ?, ?)
		RETURNING id`),
		u.Nickname, toMicros(u.CreatedAt), toMicros(u.UpdatedAt),
	).Scan(&u.ID)
	if err != nil {
		return users.User{}, unavailable(err)
	}
	u.CreatedAt = fromMicros(toMicros(u.CreatedAt))
	u.UpdatedAt = fromMicros(toMicros(u.UpdatedAt))
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.q(`SELECT `+userColumns+` FROM users WHERE id = ?`), id)
	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return users.User{}, apperr.NotFound("user %d not found", id)
	}
	if err != nil {
		return users.User{}, unavailable(err)
	}
	return u, nil
}

func (r *UserRepo) Update(ctx context.Context, u users.User) error {
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		UPDATE users SET nickname = ?, updated_at = ?
		WHERE id = ? AND NOT deleted`),
		u.Nickname, toMicros(u.UpdatedAt), u.ID,
	)
	return affectedOne(res, err, "user", u.ID)
}

func (r *UserRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		UPDATE users SET deleted = TRUE, updated_at = ?
		WHERE id = ? AND NOT deleted`),
		toMicros(at), id,
	)
	return affectedOne(res, err, "user", id)
}

func (r *UserRepo) List(ctx context.Context, w paging.Window) ([]users.User, error) {
	query, args := entityPage(`SELECT `+userColumns+` FROM users WHERE NOT deleted`, w)
	rows, err := r.s.db.QueryContext(ctx, r.s.q(query), args...)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	out := make([]users.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, unavailable(err)
		}
		out = append(out, u)
	}
	return out, unavailable(rows.Err())
}

// -------------------------
// pets
// -------------------------

type PetRepo struct {
	s *Store
}

const petColumns = `id, species, nickname, image_url, deleted, created_at, updated_at`

func (r *PetRepo) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	err := r.s.db.QueryRowContext(ctx, r.s.q(`
		INSERT INTO pets (species, nickname, image_url, deleted, created_at, updated_at)
		VALUES (?, ?, ?, FALSE, ?, ?)
		RETURNING id`),
		p.Species, p.Nickname, p.ImageURL, toMicros(p.CreatedAt), toMicros(p.UpdatedAt),
	).Scan(&p.ID)
	if err != nil {
		return pets.Pet{}, unavailable(err)
	}
	p.CreatedAt = fromMicros(toMicros(p.CreatedAt))
	p.UpdatedAt = fromMicros(toMicros(p.UpdatedAt))
	return p, nil
}

func (r *PetRepo) GetByID(ctx context.Context, id int64) (pets.Pet, error) {
	row := r.s.db.QueryRowContext(ctx, r.s.q(`SELECT `+petColumns+` FROM pets WHERE id = ?`), id)
	p, err := scanPet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return pets.Pet{}, apperr.NotFound("pet %d not found", id)
	}
	if err != nil {
		return pets.Pet{}, unavailable(err)
	}
	return p, nil
}

func (r *PetRepo) Update(ctx context.Context, p pets.Pet) error {
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		UPDATE pets SET species = ?, nickname = ?, image_url = ?, updated_at = ?
		WHERE id = ? AND NOT deleted`),
		p.Species, p.Nickname, p.ImageURL, toMicros(p.UpdatedAt), p.ID,
	)
	return affectedOne(res, err, "pet", p.ID)
}

func (r *PetRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	res, err := r.s.db.ExecContext(ctx, r.s.q(`
		UPDATE pets SET deleted = TRUE, updated_at = ?
		WHERE id = ? AND NOT deleted`),
		toMicros(at), id,
	)
	return affectedOne(res, err, "pet", id)
}

func (r *PetRepo) List(ctx context.Context, w paging.Window) ([]pets.Pet, error) {
	query, args := entityPage(`SELECT `+petColumns+` FROM pets WHERE NOT deleted`, w)
	rows, err := r.s.db.QueryContext(ctx, r.s.q(query), args...)
	if err != nil {
		return nil, unavailable(err)
	}
	defer rows.Close()

	out := make([]pets.Pet, 0)
	for rows.Next() {
		p, err := scanPet(rows)
		if err != nil {
			return nil, unavailable(err)
		}
		out = append(out, p)
	}
	return out, unavailable(rows.Err())
}

// -------------------------
// helpers
// -------------------------

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(sc scanner) (users.User, error) {
	var (
		u                users.User
		created, updated int64
	)
	if err := sc.Scan(&u.ID, &u.Nickname, &u.Deleted, &created, &updated); err != nil {
		return users.User{}, err
	}
	u.CreatedAt = fromMicros(created)
	u.UpdatedAt = fromMicros(updated)
	return u, nil
}

func scanPet(sc scanner) (pets.Pet, error) {
	var (
		p                pets.Pet
		created, updated int64
	)
	if err := sc.Scan(&p.ID, &p.Species, &p.Nickname, &p.ImageURL, &p.Deleted, &created, &updated); err != nil {
		return pets.Pet{}, err
	}
	p.CreatedAt = fromMicros(created)
	p.UpdatedAt = fromMicros(updated)
	return p, nil
}

// entityPage agrega keyset por id ascendente, orden y ventana a una consulta de entidades.
func entityPage(base string, w paging.Window) (string, []any) {
	args := make([]any, 0, 3)
	if w.HasAfter {
		base += ` AND id > ?`
		args = append(args, w.After)
	}
	base += ` ORDER BY id ASC LIMIT ? OFFSET ?`
	args = append(args, w.Fetch(), w.Offset)
	return base, args
}

func affectedOne(res sql.Result, err error, entity string, id int64) error {
	if err != nil {
		return unavailable(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return unavailable(err)
	}
	if n == 0 {
		return apperr.NotFound("%s %d not found", entity, id)
	}
	return nil
}
