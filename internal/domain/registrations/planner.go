package registrations

import (
	"context"
	"strconv"

	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/domain/pets"
	"pet-guardianship/internal/domain/users"
	"pet-guardianship/internal/platform/apperr"
	"pet-guardianship/internal/platform/cache"
)

// Consultas de historial. Todas pasan por el cache (read / writeAndReturn) y quedan
// indexadas bajo el tag de la vista más los tags de las entidades que devuelven, así
// un cambio de nickname o una baja lógica también las invalida.

// CurrentGuardianOf devuelve el usuario detrás de la registración activa de la mascota.
// Un guardián dado de baja sigue siendo el guardián: la baja no libera.
func (s *Service) CurrentGuardianOf(ctx context.Context, petID int64) (Guardian, error) {
	key := cache.NewKey(GuardianTag(petID), nil)
	tags := func(g Guardian) []string {
		out := []string{pets.Tag(petID)}
		if g.User != nil {
			out = append(out, users.Tag(g.User.ID))
		}
		return out
	}

	return cache.Remember(ctx, s.cache, key, s.ttl, tags, func(ctx context.Context) (Guardian, error) {
		if err := s.requirePet(ctx, petID); err != nil {
			return Guardian{}, err
		}
		reg, ok, err := s.repo.ActiveByPet(ctx, petID)
		if err != nil {
			return Guardian{}, err
		}
		if !ok {
			return Guardian{}, nil
		}
		u, found, err := s.users.Lookup(ctx, reg.UserID)
		if err != nil {
			return Guardian{}, err
		}
		if !found {
			return Guardian{}, apperr.Inconsistency(nil, "registration %d references missing user %d", reg.ID, reg.UserID)
		}
		return Guardian{Registration: &reg, User: &u}, nil
	})
}

// ActivePetsOf lista las mascotas con registración activa del usuario, la más nueva primero.
func (s *Service) ActivePetsOf(ctx context.Context, userID int64, req paging.Request) (paging.Connection[PetEntry], error) {
	return s.petsOf(ctx, ActivePetsTag(userID), userID, true, req)
}

// PetsEverGuardedBy lista todas las registraciones del usuario, activas o liberadas.
// Los datos de la mascota son los actuales, no los del momento de la registración.
func (s *Service) PetsEverGuardedBy(ctx context.Context, userID int64, req paging.Request) (paging.Connection[PetEntry], error) {
	return s.petsOf(ctx, UserHistoryTag(userID), userID, false, req)
}

// GuardiansEverOf es la vista simétrica desde la mascota.
func (s *Service) GuardiansEverOf(ctx context.Context, petID int64, req paging.Request) (paging.Connection[UserEntry], error) {
	w, err := paging.Normalize(req, paging.TagRegistration, s.page)
	if err != nil {
		return paging.Connection[UserEntry]{}, err
	}

	key := cache.NewKey(PetHistoryTag(petID), windowParams(w))
	tags := func(c paging.Connection[UserEntry]) []string {
		out := []string{pets.Tag(petID)}
		for _, e := range c.Edges {
			out = append(out, users.Tag(e.Node.User.ID))
		}
		return out
	}

	return cache.Remember(ctx, s.cache, key, s.ttl, tags, func(ctx context.Context) (paging.Connection[UserEntry], error) {
		if err := s.requirePet(ctx, petID); err != nil {
			return paging.Connection[UserEntry]{}, err
		}
		rows, err := s.repo.UsersByPet(ctx, petID, w)
		if err != nil {
			return paging.Connection[UserEntry]{}, err
		}
		return paging.BuildFor(rows, w, func(e UserEntry) string {
			return paging.Encode(e.Registration.ID, paging.TagRegistration)
		}), nil
	})
}

func (s *Service) petsOf(ctx context.Context, tag string, userID int64, activeOnly bool, req paging.Request) (paging.Connection[PetEntry], error) {
	w, err := paging.Normalize(req, paging.TagRegistration, s.page)
	if err != nil {
		return paging.Connection[PetEntry]{}, err
	}

	key := cache.NewKey(tag, windowParams(w))
	tags := func(c paging.Connection[PetEntry]) []string {
		out := []string{users.Tag(userID)}
		for _, e := range c.Edges {
			out = append(out, pets.Tag(e.Node.Pet.ID))
		}
		return out
	}

	return cache.Remember(ctx, s.cache, key, s.ttl, tags, func(ctx context.Context) (paging.Connection[PetEntry], error) {
		if err := s.requireUser(ctx, userID); err != nil {
			return paging.Connection[PetEntry]{}, err
		}
		rows, err := s.repo.PetsByUser(ctx, userID, activeOnly, w)
		if err != nil {
			return paging.Connection[PetEntry]{}, err
		}
		return paging.BuildFor(rows, w, func(e PetEntry) string {
			return paging.Encode(e.Registration.ID, paging.TagRegistration)
		}), nil
	})
}

// requirePet/requireUser: la entidad ancla tiene que existir (dada de baja vale).
func (s *Service) requirePet(ctx context.Context, petID int64) error {
	_, ok, err := s.pets.Lookup(ctx, petID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("pet %d not found", petID)
	}
	return nil
}

func (s *Service) requireUser(ctx context.Context, userID int64) error {
	_, ok, err := s.users.Lookup(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("user %d not found", userID)
	}
	return nil
}

func windowParams(w paging.Window) map[string]string {
	p := map[string]string{
		"limit":     strconv.Itoa(w.Limit),
		"offset":    strconv.Itoa(w.Offset),
		"lookahead": strconv.FormatBool(w.Lookahead),
	}
	if w.HasAfter {
		p["after"] = strconv.FormatInt(w.After, 10)
	}
	return p
}
