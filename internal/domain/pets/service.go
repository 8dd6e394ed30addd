package pets

import (
	"context"
	"errors"
	"strconv"
	"time"

	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/platform/apperr"
	"pet-guardianship/internal/platform/cache"
	"pet-guardianship/internal/platform/logger"
)

type Service struct {
	repo  Repository
	cache cache.Store
	page  paging.Options
	now   func() time.Time
}

func NewService(repo Repository, c cache.Store, page paging.Options) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	return &Service{
		repo:  repo,
		cache: c,
		page:  page,
		now:   time.Now,
	}
}

// Tag es el tag de cache de las vistas que incluyen a esta mascota.
func Tag(id int64) string { return "pet:" + strconv.FormatInt(id, 10) }

type CreateInput struct {
	Species  string
	Nickname string
	ImageURL string
}

func (s *Service) Create(ctx context.Context, in CreateInput) (Pet, error) {
	species, err := normalizeBounded("species", in.Species, MaxSpeciesLen)
	if err != nil {
		return Pet{}, err
	}
	nick, err := normalizeBounded("nickname", in.Nickname, MaxNicknameLen)
	if err != nil {
		return Pet{}, err
	}
	img, err := normalizeImageURL(in.ImageURL)
	if err != nil {
		return Pet{}, err
	}

	now := s.now().UTC()
	return s.repo.Create(ctx, Pet{
		Species:   species,
		Nickname:  nick,
		ImageURL:  img,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Get devuelve la mascota si existe y no está dada de baja.
func (s *Service) Get(ctx context.Context, id int64) (Pet, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Pet{}, err
	}
	if p.Deleted {
		return Pet{}, apperr.NotFound("pet %d not found", id)
	}
	return p, nil
}

// UpdateInput usa punteros para PATCH real: nil = no tocar.
type UpdateInput struct {
	Species  *string
	Nickname *string
	ImageURL *string
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (Pet, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return Pet{}, err
	}

	if in.Species != nil {
		v, err := normalizeBounded("species", *in.Species, MaxSpeciesLen)
		if err != nil {
			return Pet{}, err
		}
		p.Species = v
	}
	if in.Nickname != nil {
		v, err := normalizeBounded("nickname", *in.Nickname, MaxNicknameLen)
		if err != nil {
			return Pet{}, err
		}
		p.Nickname = v
	}
	if in.ImageURL != nil {
		v, err := normalizeImageURL(*in.ImageURL)
		if err != nil {
			return Pet{}, err
		}
		p.ImageURL = v
	}

	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, p); err != nil {
		return Pet{}, err
	}
	s.invalidate(ctx, id)
	return p, nil
}

// Delete es baja lógica. La registración activa (si hay) no se libera.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) List(ctx context.Context, req paging.Request) (paging.Connection[Pet], error) {
	w, err := paging.Normalize(req, paging.TagPet, s.page)
	if err != nil {
		return paging.Connection[Pet]{}, err
	}
	rows, err := s.repo.List(ctx, w)
	if err != nil {
		return paging.Connection[Pet]{}, err
	}
	return paging.BuildFor(rows, w, func(p Pet) string { return paging.Encode(p.ID, paging.TagPet) }), nil
}

// Lookup es el get(id) que consume el ledger: incluye dadas de baja, ok=false si no existe.
func (s *Service) Lookup(ctx context.Context, id int64) (Pet, bool, error) {
	p, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return Pet{}, false, nil
	}
	if err != nil {
		return Pet{}, false, err
	}
	return p, true, nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok, err := s.Lookup(ctx, id)
	return ok, err
}

func (s *Service) IsDeleted(ctx context.Context, id int64) (bool, error) {
	p, ok, err := s.Lookup(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	return p.Deleted, nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, Tag(id)); err != nil {
		logger.FromContext(ctx).Warn("cache invalidation failed", map[string]any{
			"pet_id": id,
			"error":  err.Error(),
		})
	}
}
