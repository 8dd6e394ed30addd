package router

import (
	"context"
	"net/http"
	"time"

	memcache "pet-guardianship/internal/adapters/cache/memory"
	mem "pet-guardianship/internal/adapters/storage/memory"
	"pet-guardianship/internal/adapters/storage/sqlstore"
	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/domain/pets"
	"pet-guardianship/internal/domain/registrations"
	"pet-guardianship/internal/domain/users"
	"pet-guardianship/internal/middleware"
	"pet-guardianship/internal/platform/cache"
	"pet-guardianship/internal/platform/config"
	"pet-guardianship/internal/platform/logger"
	"pet-guardianship/internal/platform/metrics"
	"pet-guardianship/internal/platform/respond"

	_ "pet-guardianship/docs"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
)

// HealthChecker lo implementan el store SQL y el cache redis.
type HealthChecker interface {
	Health(ctx context.Context) error
}

type Options struct {
	Config config.Config

	// Opcional: si viene, usa el store SQL (Postgres o SQLite). Si no, in-memory.
	Store *sqlstore.Store

	// Opcional: si no viene, cache in-process (o ninguno con CACHE_TTL=0).
	Cache cache.Store

	Logger logger.Logger

	// Opcional: registry para /metrics. Si no viene, uno nuevo por router.
	Registry *prometheus.Registry
}

func NewRouter(opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}
	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	m := metrics.New(reg)

	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID(log))
	r.Use(middleware.AccessLog(m))
	r.Use(middleware.Recover)

	var (
		userRepo users.Repository
		petRepo  pets.Repository
		regRepo  registrations.Repository
		checks   []HealthChecker
	)

	if opts.Store != nil {
		userRepo = opts.Store.Users()
		petRepo = opts.Store.Pets()
		regRepo = opts.Store.Registrations()
		checks = append(checks, opts.Store)
	} else {
		ur := mem.NewUserRepo()
		pr := mem.NewPetRepo()
		userRepo, petRepo = ur, pr
		regRepo = mem.NewRegistrationRepo(ur, pr)
	}

	c := opts.Cache
	switch {
	case opts.Config.CacheTTL <= 0:
		c = cache.Noop{}
	case c == nil:
		c = memcache.New()
	}
	if hc, ok := c.(HealthChecker); ok {
		checks = append(checks, hc)
	}

	pageSize := opts.Config.PageSizeDefault
	if pageSize <= 0 {
		pageSize = 20
	}
	page := paging.Options{
		DefaultSize: pageSize,
		Lookahead:   opts.Config.PageLookahead,
	}

	// Services por módulo
	usersSvc := users.NewService(userRepo, c, page)
	petsSvc := pets.NewService(petRepo, c, page)
	regsSvc := registrations.NewService(regRepo, usersSvc, petsSvc, c, registrations.Options{
		Page:     page,
		CacheTTL: opts.Config.CacheTTL,
		Metrics:  m,
	})

	r.Get("/health", healthHandler(checks))
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Rutas por módulo
	users.RegisterRoutes(r, usersSvc)
	pets.RegisterRoutes(r, petsSvc)
	registrations.RegisterRoutes(r, regsSvc)

	return r
}

func healthHandler(checks []HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		for _, hc := range checks {
			if err := hc.Health(ctx); err != nil {
				respond.Error(w, r, err)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}
}
