package registrations

import (
	"time"

	"pet-guardianship/internal/domain/pets"
	"pet-guardianship/internal/domain/users"
)

// Registration es un registro del ledger: un usuario es guardián de una mascota desde
// RegisteredAt. Mientras está activo ReleasedAt == RegisteredAt; la única mutación
// permitida es Released false -> true.
type Registration struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	PetID        int64     `json:"pet_id"`
	RegisteredAt time.Time `json:"registered_at"`
	ReleasedAt   time.Time `json:"released_at"`
	Released     bool      `json:"released"`
}

func (r Registration) Active() bool { return !r.Released }

// PetEntry es una registración vista desde el usuario: la mascota se resuelve al estado actual.
type PetEntry struct {
	Registration Registration
	Pet          pets.Pet
}

// UserEntry es la vista simétrica desde la mascota.
type UserEntry struct {
	Registration Registration
	User         users.User
}

// Guardian es el resultado de currentGuardianOf. User nil = sin guardián activo.
type Guardian struct {
	Registration *Registration
	User         *users.User
}

// Filter es el set cerrado de predicados del listado de registros.
// Campos nil no filtran.
type Filter struct {
	PetID    *int64
	UserID   *int64
	Released *bool
}

func ByPetID(id int64) Filter { return Filter{PetID: &id} }

func ByUserID(id int64) Filter { return Filter{UserID: &id} }

func ByReleased(released bool) Filter { return Filter{Released: &released} }

// And combina filtros; el de la derecha pisa los campos que define.
func (f Filter) And(o Filter) Filter {
	if o.PetID != nil {
		f.PetID = o.PetID
	}
	if o.UserID != nil {
		f.UserID = o.UserID
	}
	if o.Released != nil {
		f.Released = o.Released
	}
	return f
}

func (f Filter) Match(r Registration) bool {
	if f.PetID != nil && r.PetID != *f.PetID {
		return false
	}
	if f.UserID != nil && r.UserID != *f.UserID {
		return false
	}
	if f.Released != nil && r.Released != *f.Released {
		return false
	}
	return true
}

// NewerFirst es el orden de todas las listas del ledger: registración más nueva primero,
// empate por id ascendente.
func NewerFirst(a, b Registration) bool {
	if !a.RegisteredAt.Equal(b.RegisteredAt) {
		return a.RegisteredAt.After(b.RegisteredAt)
	}
	return a.ID < b.ID
}
