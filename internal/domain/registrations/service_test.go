package registrations_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	memcache "pet-guardianship/internal/adapters/cache/memory"
	"pet-guardianship/internal/adapters/storage/memory"
	"pet-guardianship/internal/domain/paging"
	"pet-guardianship/internal/domain/pets"
	"pet-guardianship/internal/domain/registrations"
	"pet-guardianship/internal/domain/users"
	"pet-guardianship/internal/platform/apperr"
	"pet-guardianship/internal/platform/cache"
	"pet-guardianship/internal/platform/metrics"
)

// stepClock avanza un segundo por lectura, así cada registración tiene su propio instante.
type stepClock struct{ n atomic.Int64 }

func (c *stepClock) Now() time.Time {
	return time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC).Add(time.Duration(c.n.Add(1)) * time.Second)
}

type env struct {
	users   *users.Service
	pets    *pets.Service
	regs    *registrations.Service
	cache   cache.Store
	metrics *metrics.Metrics
}

type envOpts struct {
	cache     cache.Store
	lookahead bool
}

func newEnv(t *testing.T, o envOpts) env {
	t.Helper()
	c := o.cache
	if c == nil {
		c = memcache.New()
	}
	page := paging.Options{DefaultSize: 20, Lookahead: o.lookahead}

	ur := memory.NewUserRepo()
	pr := memory.NewPetRepo()
	usvc := users.NewService(ur, c, page)
	psvc := pets.NewService(pr, c, page)

	m := metrics.New(prometheus.NewRegistry())
	clock := &stepClock{}
	rsvc := registrations.NewService(memory.NewRegistrationRepo(ur, pr), usvc, psvc, c, registrations.Options{
		Page:     page,
		CacheTTL: time.Minute,
		Metrics:  m,
		Now:      clock.Now,
	})
	return env{users: usvc, pets: psvc, regs: rsvc, cache: c, metrics: m}
}

func (e env) user(t *testing.T, nick string) users.User {
	t.Helper()
	u, err := e.users.Create(context.Background(), nick)
	require.NoError(t, err)
	return u
}

func (e env) pet(t *testing.T, nick string) pets.Pet {
	t.Helper()
	p, err := e.pets.Create(context.Background(), pets.CreateInput{Species: "dog", Nickname: nick})
	require.NoError(t, err)
	return p
}

func TestRegister_ConcurrentCallersSingleWinner(t *testing.T) {
	e := newEnv(t, envOpts{lookahead: true})
	ctx := context.Background()
	pet := e.pet(t, "rex")

	const n = 16
	contenders := make([]users.User, n)
	for i := range contenders {
		contenders[i] = e.user(t, "u")
	}

	results := make([]error, n)
	var g errgroup.Group
	for i := range contenders {
		g.Go(func() error {
			_, results[i] = e.regs.Register(ctx, pet.ID, contenders[i].ID)
			return nil
		})
	}
	require.NoError(t, g.Wait())

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, apperr.ErrConflict)
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, float64(1), testutil.ToFloat64(e.metrics.Registrations.WithLabelValues(metrics.ResultCreated)))
	assert.Equal(t, float64(n-1), testutil.ToFloat64(e.metrics.Registrations.WithLabelValues(metrics.ResultConflict)))
}

func TestRegister_LineageReuse(t *testing.T) {
	e := newEnv(t, envOpts{lookahead: true})
	ctx := context.Background()
	pet, u1, u2 := e.pet(t, "rex"), e.user(t, "ana"), e.user(t, "beto")

	_, err := e.regs.Register(ctx, pet.ID, u1.ID)
	require.NoError(t, err)

	_, err = e.regs.Register(ctx, pet.ID, u2.ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = e.regs.Unregister(ctx, pet.ID, u1.ID)
	require.NoError(t, err)

	reg, err := e.regs.Register(ctx, pet.ID, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, u2.ID, reg.UserID)
	assert.False(t, reg.Released)
}

func TestRegister_RequiresLiveEntities(t *testing.T) {
	e := newEnv(t, envOpts{lookahead: true})
	ctx := context.Background()
	pet, u := e.pet(t, "rex"), e.user(t, "ana")

	_, err := e.regs.Register(ctx, 999, u.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.regs.Register(ctx, pet.ID, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	require.NoError(t, e.users.Delete(ctx, u.ID))
	_, err = e.regs.Register(ctx, pet.ID, u.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUnregister_WithoutActiveIsNotFound(t *testing.T) {
	e := newEnv(t, envOpts{lookahead: true})
	ctx := context.Background()
	pet, u1, u2 := e.pet(t, "rex"), e.user(t, "ana"), e.user(t, "beto")

	_, err := e.regs.Unregister(ctx, pet.ID, u1.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = e.regs.Register(ctx, pet.ID, u1.ID)
	require.NoError(t, err)

	// el guardián activo es otro usuario
	_, err = e.regs.Unregister(ctx, pet.ID, u2.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, float64(2), testutil.ToFloat64(e.metrics.Releases.WithLabelValues(metrics.ResultNotFound)))
}

func TestPetsEverGuardedBy_NewestFirst(t *testing.T) {
	e := newEnv(t, envOpts{lookahead: true})
	ctx := context.Background()
	u := e.user(t, "ana")
	p1, p2 := e.pet(t, "uno"), e.pet(t, "dos")

	_, err := e.regs.Register(ctx, p1.ID, u.ID)
	require.NoError(t, err)
	_, err = e.regs.Unregister(ctx, p1.ID, u.ID)
	require.NoError(t, err)
	_, err = e.regs.Register(ctx, p2.ID, u.ID)
	require.NoError(t, err)

	conn, err := e.regs.PetsEverGuardedBy(ctx, u.ID, paging.Request{First: 10})
	require.NoError(t, err)
	require.Len(t, conn.Edges, 2)

	assert.Equal(t, p2.ID, conn.Edges[0].Node.Pet.ID)
	assert.False(t, conn.Edges[0].Node.Registration.Released)
	assert.Equal(t, p1.ID, conn.Edges[1].Node.Pet.ID)
	assert.True(t, conn.Edges[1].Node.Registration.Released)
	assert.False(t, conn.Edges[1].Node.Registration.ReleasedAt.Before(conn.Edges[1].Node.Registration.RegisteredAt))

	active, err := e.regs.ActivePetsOf(ctx, u.ID, paging.Request{First: 10})
	require.NoError(t, err)
	require.Len(t, active.Edges, 1)
	assert.Equal(t, p2.ID, active.Edges[0].Node.Pet.ID)

	guardians, err := e.regs.GuardiansEverOf(ctx, p1.ID, paging.Request{First: 10})
	require.NoError(t, err)
	require.Len(t, guardians.Edges, 1)
	assert.Equal(t, u.ID, guardians.Edges[0].Node.User.ID)

	_, err = e.regs.PetsEverGuardedBy(ctx, 999, paging.Request{})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestCurrentGuardianOf_DeletedGuardianStays(t *testing.T) {
	e := newEnv(t, envOpts{lookahead: true})
	ctx := context.Background()
	pet, u := e.pet(t, "rex"), e.user(t, "ana")

	g, err := e.regs.CurrentGuardianOf(ctx, pet.ID)
	require.NoError(t, err)
	assert.Nil(t, g.User)

	_, err = e.regs.Register(ctx, pet.ID, u.ID)
	require.NoError(t, err)

	// la vista "sin guardián" quedó cacheada; el register la invalidó
	g, err = e.regs.CurrentGuardianOf(ctx, pet.ID)
	require.NoError(t, err)
	require.NotNil(t, g.User)
	assert.Equal(t, u.ID, g.User.ID)

	require.NoError(t, e.users.Delete(ctx, u.ID))

	g, err = e.regs.CurrentGuardianOf(ctx, pet.ID)
	require.NoError(t, err)
	require.NotNil(t, g.User)
	assert.Equal(t, u.ID, g.User.ID)
	assert.True(t, g.User.Deleted)

	// la baja del usuario no liberó la mascota
	_, err = e.regs.Register(ctx, pet.ID, e.user(t, "beto").ID)
	assert.ErrorIs(t, err, apperr.ErrConflict)

	_, err = e.regs.CurrentGuardianOf(ctx, 999)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestActivePetsOf_CursorPagination(t *testing.T) {
	e := newEnv(t, envOpts{lookahead: true})
	ctx := context.Background()
	u := e.user(t, "ana")
	for _, n := range []string{"a", "b", "c", "d"} {
		_, err := e.regs.Register(ctx, e.pet(t, n).ID, u.ID)
		require.NoError(t, err)
	}

	page1, err := e.regs.ActivePetsOf(ctx, u.ID, paging.Request{PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page1.Edges, 2)
	assert.True(t, page1.PageInfo.HasNextPage)
	assert.Equal(t, "d", page1.Edges[0].Node.Pet.Nickname)

	page2, err := e.regs.ActivePetsOf(ctx, u.ID, paging.Request{PageSize: 2, After: page1.PageInfo.EndCursor})
	require.NoError(t, err)
	require.Len(t, page2.Edges, 2)
	assert.False(t, page2.PageInfo.HasNextPage)
	assert.Equal(t, "b", page2.Edges[0].Node.Pet.Nickname)
	assert.Equal(t, "a", page2.Edges[1].Node.Pet.Nickname)

	_, err = e.regs.ActivePetsOf(ctx, u.ID, paging.Request{After: paging.Encode(1, paging.TagPet)})
	assert.ErrorIs(t, err, apperr.ErrBadRequest)
}

func TestActivePetsOf_CountHeuristic(t *testing.T) {
	e := newEnv(t, envOpts{lookahead: false})
	ctx := context.Background()
	u := e.user(t, "ana")
	for i := 0; i < 4; i++ {
		_, err := e.regs.Register(ctx, e.pet(t, "p").ID, u.ID)
		require.NoError(t, err)
	}

	page1, err := e.regs.ActivePetsOf(ctx, u.ID, paging.Request{PageSize: 2})
	require.NoError(t, err)
	page2, err := e.regs.ActivePetsOf(ctx, u.ID, paging.Request{PageSize: 2, After: page1.PageInfo.EndCursor})
	require.NoError(t, err)
	require.Len(t, page2.Edges, 2)
	// página llena: la heurística reporta más aunque no haya
	assert.True(t, page2.PageInfo.HasNextPage)

	page3, err := e.regs.ActivePetsOf(ctx, u.ID, paging.Request{PageSize: 2, After: page2.PageInfo.EndCursor})
	require.NoError(t, err)
	assert.Empty(t, page3.Edges)
	assert.False(t, page3.PageInfo.HasNextPage)
}

func TestHistory_EntityChangeInvalidatesView(t *testing.T) {
	e := newEnv(t, envOpts{lookahead: true})
	ctx := context.Background()
	pet, u := e.pet(t, "rex"), e.user(t, "ana")
	_, err := e.regs.Register(ctx, pet.ID, u.ID)
	require.NoError(t, err)

	conn, err := e.regs.PetsEverGuardedBy(ctx, u.ID, paging.Request{})
	require.NoError(t, err)
	require.Len(t, conn.Edges, 1)
	assert.Equal(t, "rex", conn.Edges[0].Node.Pet.Nickname)

	nick := "rexy"
	_, err = e.pets.Update(ctx, pet.ID, pets.UpdateInput{Nickname: &nick})
	require.NoError(t, err)

	conn, err = e.regs.PetsEverGuardedBy(ctx, u.ID, paging.Request{})
	require.NoError(t, err)
	assert.Equal(t, "rexy", conn.Edges[0].Node.Pet.Nickname)

	require.NoError(t, e.pets.Delete(ctx, pet.ID))
	conn, err = e.regs.PetsEverGuardedBy(ctx, u.ID, paging.Request{})
	require.NoError(t, err)
	assert.Empty(t, conn.Edges)
}

type failingCache struct{ cache.Noop }

func (failingCache) Invalidate(context.Context, ...string) error { return errors.New("cache down") }

func TestRegister_InvalidationFailureDoesNotFail(t *testing.T) {
	e := newEnv(t, envOpts{cache: failingCache{}, lookahead: true})
	ctx := context.Background()
	pet, u := e.pet(t, "rex"), e.user(t, "ana")

	_, err := e.regs.Register(ctx, pet.ID, u.ID)
	require.NoError(t, err)
	_, err = e.regs.Unregister(ctx, pet.ID, u.ID)
	require.NoError(t, err)

	assert.Equal(t, float64(2), testutil.ToFloat64(e.metrics.CacheInvalidationFails))
}

func TestList_ByClosedPredicates(t *testing.T) {
	e := newEnv(t, envOpts{lookahead: true})
	ctx := context.Background()
	u := e.user(t, "ana")
	p1, p2 := e.pet(t, "uno"), e.pet(t, "dos")

	_, err := e.regs.Register(ctx, p1.ID, u.ID)
	require.NoError(t, err)
	_, err = e.regs.Unregister(ctx, p1.ID, u.ID)
	require.NoError(t, err)
	_, err = e.regs.Register(ctx, p2.ID, u.ID)
	require.NoError(t, err)

	released, err := e.regs.List(ctx, registrations.ByUserID(u.ID).And(registrations.ByReleased(true)), paging.Request{})
	require.NoError(t, err)
	require.Len(t, released.Edges, 1)
	assert.Equal(t, p1.ID, released.Edges[0].Node.PetID)

	byPet, err := e.regs.List(ctx, registrations.ByPetID(p2.ID), paging.Request{})
	require.NoError(t, err)
	require.Len(t, byPet.Edges, 1)
	assert.True(t, byPet.Edges[0].Node.Active())

	all, err := e.regs.List(ctx, registrations.Filter{}, paging.Request{First: 1})
	require.NoError(t, err)
	require.Len(t, all.Edges, 1)
	assert.True(t, all.PageInfo.HasNextPage)
}
