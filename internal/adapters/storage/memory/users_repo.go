package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/domain/users"
	"pet-guardianship/internal/platform/apperr"
)

type UserRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]users.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{
		byID: make(map[int64]users.User),
	}
}

func (r *UserRepo) Create(ctx context.Context, u users.User) (users.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	u.ID = r.nextID
	r.byID[u.ID] = u
	return u, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id int64) (users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return users.User{}, apperr.NotFound("user %d not found", id)
	}
	return u, nil
}

func (r *UserRepo) Update(ctx context.Context, u users.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[u.ID]
	if !ok || cur.Deleted {
		return apperr.NotFound("user %d not found", u.ID)
	}
	u.Deleted = false
	u.CreatedAt = cur.CreatedAt
	r.byID[u.ID] = u
	return nil
}

func (r *UserRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok || cur.Deleted {
		return apperr.NotFound("user %d not found", id)
	}
	cur.Deleted = true
	cur.UpdatedAt = at
	r.byID[id] = cur
	return nil
}

func (r *UserRepo) List(ctx context.Context, w paging.Window) ([]users.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]users.User, 0)
	for _, u := range r.byID {
		if u.Deleted {
			continue
		}
		if w.HasAfter && u.ID <= w.After {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return slice(out, w), nil
}

// get lo usa el repo de registraciones para los joins.
func (r *UserRepo) get(id int64) (users.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	return u, ok
}
