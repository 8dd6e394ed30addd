package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/domain/pets"
	"pet-guardianship/internal/platform/apperr"
)

type PetRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]pets.Pet
}

func NewPetRepo() *PetRepo {
	return &PetRepo{
		byID: make(map[int64]pets.Pet),
	}
}

func (r *PetRepo) Create(ctx context.Context, p pets.Pet) (pets.Pet, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	p.ID = r.nextID
	r.byID[p.ID] = p
	return p, nil
}

func (r *PetRepo) GetByID(ctx context.Context, id int64) (pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.byID[id]
	if !ok {
		return pets.Pet{}, apperr.NotFound("pet %d not found", id)
	}
	return p, nil
}

func (r *PetRepo) Update(ctx context.Context, p pets.Pet) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[p.ID]
	if !ok || cur.Deleted {
		return apperr.NotFound("pet %d not found", p.ID)
	}
	p.Deleted = false
	p.CreatedAt = cur.CreatedAt
	r.byID[p.ID] = p
	return nil
}

func (r *PetRepo) SoftDelete(ctx context.Context, id int64, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cur, ok := r.byID[id]
	if !ok || cur.Deleted {
		return apperr.NotFound("pet %d not found", id)
	}
	cur.Deleted = true
	cur.UpdatedAt = at
	r.byID[id] = cur
	return nil
}

func (r *PetRepo) List(ctx context.Context, w paging.Window) ([]pets.Pet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pets.Pet, 0)
	for _, p := range r.byID {
		if p.Deleted {
			continue
		}
		if w.HasAfter && p.ID <= w.After {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return slice(out, w), nil
}

func (r *PetRepo) get(id int64) (pets.Pet, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}
