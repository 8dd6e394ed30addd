package registrations

import (
	"context"
	"errors"
	"strconv"
	"time"

	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/domain/pets"
	"pet-guardianship/internal/domain/users"
	"pet-guardianship/internal/platform/apperr"
	"pet-guardianship/internal/platform/cache"
	"pet-guardianship/internal/platform/logger"
	"pet-guardianship/internal/platform/metrics"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// UserLookup es el get(id) de usuarios que consume el ledger (incluye dados de baja).
type UserLookup interface {
	Lookup(ctx context.Context, id int64) (users.User, bool, error)
}

// PetLookup es el get(id) de mascotas que consume el ledger (incluye dadas de baja).
type PetLookup interface {
	Lookup(ctx context.Context, id int64) (pets.Pet, bool, error)
}

type Options struct {
	Page     paging.Options
	CacheTTL time.Duration
	Metrics  *metrics.Metrics
	// Now reemplaza el reloj (tests).
	Now func() time.Time
}

type Service struct {
	repo    Repository
	users   UserLookup
	pets    PetLookup
	cache   cache.Store
	ttl     time.Duration
	page    paging.Options
	metrics *metrics.Metrics
	tracer  trace.Tracer
	now     func() time.Time
}

func NewService(repo Repository, u UserLookup, p PetLookup, c cache.Store, opts Options) *Service {
	if c == nil {
		c = cache.Noop{}
	}
	m := opts.Metrics
	if m == nil {
		m = metrics.Noop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Service{
		repo:    repo,
		users:   u,
		pets:    p,
		cache:   c,
		ttl:     opts.CacheTTL,
		page:    opts.Page,
		metrics: m,
		tracer:  otel.Tracer("pet-guardianship/registrations"),
		now:     now,
	}
}

// Tags de cache de las vistas del planner.
func GuardianTag(petID int64) string     { return "guardian:pet:" + strconv.FormatInt(petID, 10) }
func ActivePetsTag(userID int64) string  { return "active:user:" + strconv.FormatInt(userID, 10) }
func UserHistoryTag(userID int64) string { return "history:user:" + strconv.FormatInt(userID, 10) }
func PetHistoryTag(petID int64) string   { return "history:pet:" + strconv.FormatInt(petID, 10) }

// Register crea la registración activa de userID sobre petID.
// La verificación previa solo mejora el mensaje de error; la invariante de un guardián
// activo la garantiza la escritura condicional del repo.
func (s *Service) Register(ctx context.Context, petID, userID int64) (Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registrations.Register", trace.WithAttributes(
		attribute.Int64("pet.id", petID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	if err := s.requireActive(ctx, petID, userID); err != nil {
		s.metrics.Registrations.WithLabelValues(resultOf(err)).Inc()
		return Registration{}, s.fail(ctx, span, err)
	}

	start := time.Now()
	reg, err := s.repo.Insert(ctx, petID, userID, s.now().UTC())
	s.metrics.WriteDuration.WithLabelValues("register").Observe(msSince(start))
	if err != nil {
		s.metrics.Registrations.WithLabelValues(resultOf(err)).Inc()
		return Registration{}, s.fail(ctx, span, err)
	}
	s.metrics.Registrations.WithLabelValues(metrics.ResultCreated).Inc()
	span.SetAttributes(attribute.Int64("registration.id", reg.ID))

	s.invalidate(ctx, petID, userID)

	logger.FromContext(ctx).Info("pet registered", map[string]any{
		"registration_id": reg.ID,
		"pet_id":          petID,
		"user_id":         userID,
	})
	return reg, nil
}

// Unregister libera la registración activa (petID, userID). Sin fila activa que coincida
// devuelve NotFound, sea cual sea la causa (otro guardián, ids inexistentes, carrera perdida).
func (s *Service) Unregister(ctx context.Context, petID, userID int64) (Registration, error) {
	ctx, span := s.tracer.Start(ctx, "registrations.Unregister", trace.WithAttributes(
		attribute.Int64("pet.id", petID),
		attribute.Int64("user.id", userID),
	))
	defer span.End()

	start := time.Now()
	reg, err := s.repo.Release(ctx, petID, userID, s.now().UTC())
	s.metrics.WriteDuration.WithLabelValues("unregister").Observe(msSince(start))
	if err != nil {
		s.metrics.Releases.WithLabelValues(resultOf(err)).Inc()
		return Registration{}, s.fail(ctx, span, err)
	}
	s.metrics.Releases.WithLabelValues(metrics.ResultReleased).Inc()

	s.invalidate(ctx, petID, userID)

	logger.FromContext(ctx).Info("pet released", map[string]any{
		"registration_id": reg.ID,
		"pet_id":          petID,
		"user_id":         userID,
	})
	return reg, nil
}

// List es el listado genérico de registros por predicados cerrados.
func (s *Service) List(ctx context.Context, f Filter, req paging.Request) (paging.Connection[Registration], error) {
	w, err := paging.Normalize(req, paging.TagRegistration, s.page)
	if err != nil {
		return paging.Connection[Registration]{}, err
	}
	rows, err := s.repo.List(ctx, f, w)
	if err != nil {
		return paging.Connection[Registration]{}, err
	}
	return paging.BuildFor(rows, w, func(r Registration) string {
		return paging.Encode(r.ID, paging.TagRegistration)
	}), nil
}

func (s *Service) requireActive(ctx context.Context, petID, userID int64) error {
	p, ok, err := s.pets.Lookup(ctx, petID)
	if err != nil {
		return err
	}
	if !ok || p.Deleted {
		return apperr.NotFound("pet %d not found", petID)
	}

	u, ok, err := s.users.Lookup(ctx, userID)
	if err != nil {
		return err
	}
	if !ok || u.Deleted {
		return apperr.NotFound("user %d not found", userID)
	}
	return nil
}

// invalidate corre antes de devolver al caller. Si falla, la escritura ya está hecha:
// se loguea y se cuenta, el TTL acota la vista vieja.
func (s *Service) invalidate(ctx context.Context, petID, userID int64) {
	err := s.cache.Invalidate(ctx,
		GuardianTag(petID),
		ActivePetsTag(userID),
		UserHistoryTag(userID),
		PetHistoryTag(petID),
	)
	if err == nil {
		return
	}
	s.metrics.CacheInvalidationFails.Inc()
	logger.FromContext(ctx).Error("cache invalidation failed", map[string]any{
		"pet_id":  petID,
		"user_id": userID,
		"error":   err.Error(),
	})
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error) error {
	if errors.Is(err, apperr.ErrInternalInconsistency) {
		s.metrics.Inconsistencies.Inc()
		span.RecordError(err)
		logger.FromContext(ctx).Error("ledger invariant violated", map[string]any{
			"error": err.Error(),
		})
	}
	span.SetStatus(codes.Error, string(apperr.KindOf(err)))
	return err
}

func resultOf(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindConflict:
		return metrics.ResultConflict
	case apperr.KindNotFound:
		return metrics.ResultNotFound
	case apperr.KindInternalInconsistency:
		return metrics.ResultInconsistency
	default:
		return metrics.ResultError
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
