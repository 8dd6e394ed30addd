package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/domain/registrations"
	"pet-guardianship/internal/platform/apperr"
)

// RegistrationRepo es el ledger en memoria. El chequeo de guardián activo y el insert
// corren bajo el mismo lock, que en un solo proceso cumple el rol del índice único parcial.
type RegistrationRepo struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]registrations.Registration
	active map[int64]int64 // pet_id -> registration id activa

	users *UserRepo
	pets  *PetRepo
}

func NewRegistrationRepo(u *UserRepo, p *PetRepo) *RegistrationRepo {
	return &RegistrationRepo{
		byID:   make(map[int64]registrations.Registration),
		active: make(map[int64]int64),
		users:  u,
		pets:   p,
	}
}

func (r *RegistrationRepo) Insert(ctx context.Context, petID, userID int64, at time.Time) (registrations.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if u, ok := r.users.get(userID); !ok || u.Deleted {
		return registrations.Registration{}, apperr.NotFound("user %d not found", userID)
	}
	if p, ok := r.pets.get(petID); !ok || p.Deleted {
		return registrations.Registration{}, apperr.NotFound("pet %d not found", petID)
	}
	if _, taken := r.active[petID]; taken {
		return registrations.Registration{}, apperr.Conflict("pet already has an active guardian")
	}

	r.nextID++
	reg := registrations.Registration{
		ID:           r.nextID,
		UserID:       userID,
		PetID:        petID,
		RegisteredAt: at,
		ReleasedAt:   at,
	}
	r.byID[reg.ID] = reg
	r.active[petID] = reg.ID
	return reg, nil
}

func (r *RegistrationRepo) Release(ctx context.Context, petID, userID int64, at time.Time) (registrations.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	matches := make([]int64, 0, 1)
	for id, reg := range r.byID {
		if reg.PetID == petID && reg.UserID == userID && !reg.Released {
			matches = append(matches, id)
		}
	}
	switch {
	case len(matches) == 0:
		return registrations.Registration{}, apperr.NotFound("no active registration for pet %d and user %d", petID, userID)
	case len(matches) > 1:
		return registrations.Registration{}, apperr.Inconsistency(nil, "pet %d has %d active registrations", petID, len(matches))
	}

	reg := r.byID[matches[0]]
	reg.Released = true
	reg.ReleasedAt = at
	if at.Before(reg.RegisteredAt) {
		reg.ReleasedAt = reg.RegisteredAt
	}
	r.byID[reg.ID] = reg
	delete(r.active, petID)
	return reg, nil
}

func (r *RegistrationRepo) ActiveByPet(ctx context.Context, petID int64) (registrations.Registration, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.active[petID]
	if !ok {
		return registrations.Registration{}, false, nil
	}
	return r.byID[id], true, nil
}

func (r *RegistrationRepo) PetsByUser(ctx context.Context, userID int64, activeOnly bool, w paging.Window) ([]registrations.PetEntry, error) {
	f := registrations.ByUserID(userID)
	if activeOnly {
		f = f.And(registrations.ByReleased(false))
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.page(f, w)
	out := make([]registrations.PetEntry, 0, len(rows))
	for _, reg := range rows {
		p, ok := r.pets.get(reg.PetID)
		if !ok || p.Deleted {
			continue
		}
		out = append(out, registrations.PetEntry{Registration: reg, Pet: p})
	}
	return slice(out, w), nil
}

func (r *RegistrationRepo) UsersByPet(ctx context.Context, petID int64, w paging.Window) ([]registrations.UserEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.page(registrations.ByPetID(petID), w)
	out := make([]registrations.UserEntry, 0, len(rows))
	for _, reg := range rows {
		u, ok := r.users.get(reg.UserID)
		if !ok || u.Deleted {
			continue
		}
		out = append(out, registrations.UserEntry{Registration: reg, User: u})
	}
	return slice(out, w), nil
}

func (r *RegistrationRepo) List(ctx context.Context, f registrations.Filter, w paging.Window) ([]registrations.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return slice(r.page(f, w), w), nil
}

// page filtra, ordena (más nueva primero) y corta después del cursor. Offset y límite
// los aplica el caller, después de descartar filas con la otra entidad dada de baja.
func (r *RegistrationRepo) page(f registrations.Filter, w paging.Window) []registrations.Registration {
	out := make([]registrations.Registration, 0)
	for _, reg := range r.byID {
		if f.Match(reg) {
			out = append(out, reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return registrations.NewerFirst(out[i], out[j]) })

	if !w.HasAfter {
		return out
	}
	cursor, ok := r.byID[w.After]
	if !ok {
		return []registrations.Registration{}
	}
	after := out[:0]
	for _, reg := range out {
		if registrations.NewerFirst(cursor, reg) {
			after = append(after, reg)
		}
	}
	return after
}
