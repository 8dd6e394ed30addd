package users

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

// Tag es el tag de cache de las vistas que incluyen a este usuario.
func Tag(id int64) string { return "user:" + strconv.FormatInt(id, 10) }

func (s *Service) Create(ctx context.Context, nickname string) (User, error) {
	nick, err := normalizeNickname(nickname)
	if err != nil {
		return User{}, err
	}
	now := s.now().UTC()
	return s.repo.Create(ctx, User{
		Nickname:  nick,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// Get devuelve el usuario si existe y no está dado de baja.
func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if u.Deleted {
		return User{}, apperr.NotFound("user %d not found", id)
	}
	return u, nil
}

func (s *Service) UpdateNickname(ctx context.Context, id int64, nickname string) (User, error) {
	nick, err := normalizeNickname(nickname)
	if err != nil {
		return User{}, err
	}
	u, err := s.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	u.Nickname = nick
	u.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, u); err != nil {
		return User{}, err
	}
	s.invalidate(ctx, id)
	return u, nil
}

// Delete es baja lógica. No libera las registraciones activas del usuario.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id, s.now().UTC()); err != nil {
		return err
	}
	s.invalidate(ctx, id)
	return nil
}

func (s *Service) List(ctx context.Context, req paging.Request) (paging.Connection[User], error) {
	w, err := paging.Normalize(req, paging.TagUser, s.page)
	if err != nil {
		return paging.Connection[User]{}, err
	}
	rows, err := s.repo.List(ctx, w)
	if err != nil {
		return paging.Connection[User]{}, err
	}
	return paging.BuildFor(rows, w, func(u User) string { return paging.Encode(u.ID, paging.TagUser) }), nil
}

// Lookup es el get(id) que consume el ledger: incluye dados de baja, ok=false si no existe.
func (s *Service) Lookup(ctx context.Context, id int64) (User, bool, error) {
	u, err := s.repo.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		return User{}, false, nil
	}
	if err != nil {
		return User{}, false, err
	}
	return u, true, nil
}

func (s *Service) Exists(ctx context.Context, id int64) (bool, error) {
	_, ok, err := s.Lookup(ctx, id)
	return ok, err
}

func (s *Service) IsDeleted(ctx context.Context, id int64) (bool, error) {
	u, ok, err := s.Lookup(ctx, id)
	if err != nil || !ok {
		return false, err
	}
	return u.Deleted, nil
}

func (s *Service) invalidate(ctx context.Context, id int64) {
	if err := s.cache.Invalidate(ctx, Tag(id)); err != nil {
		logger.FromContext(ctx).Warn("cache invalidation failed", map[string]any{
			"user_id": id,
			"error":   err.Error(),
		})
	}
}
