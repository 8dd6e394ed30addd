// Package cache define el contrato cache-aside que usa el planner de historial.
// El cache es una optimización: un fallo de lectura cuenta como miss y un fallo de
// escritura se loguea y se ignora. Nunca cambia el resultado de una operación.
package cache

import (
	"context"
	"encoding/json"
	"net/url"
	"time"

	"pet-guardianship/internal/platform/logger"
)

// Key identifica una vista cacheada: un tag (familia de vistas) + parámetros de la consulta.
type Key struct {
	Tag    string
	Params url.Values
}

func NewKey(tag string, params map[string]string) Key {
	v := url.Values{}
	for k, p := range params {
		v.Set(k, p)
	}
	return Key{Tag: tag, Params: v}
}

// String es canónico: url.Values.Encode ordena por clave.
func (k Key) String() string {
	if len(k.Params) == 0 {
		return k.Tag
	}
	return k.Tag + "?" + k.Params.Encode()
}

// Store es el colaborador read / writeAndReturn / invalidate.
// Write indexa la entrada bajo key.Tag y bajo cada tag extra, para que Invalidate(tag)
// la encuentre.
//
// Epoch es un contador que avanza con cada Invalidate. Quien carga una vista toma el epoch
// antes de ir al store y se lo pasa a Write: si alguno de los tags de la entrada se invalidó
// después de ese epoch, Write la descarta (stored=false) en vez de cachear datos viejos.
type Store interface {
	Read(ctx context.Context, key Key) ([]byte, bool, error)
	Epoch(ctx context.Context) (uint64, error)
	Write(ctx context.Context, key Key, value []byte, ttl time.Duration, since uint64, tags ...string) (bool, error)
	Invalidate(ctx context.Context, tags ...string) error
}

// WriteAndReturn serializa value, lo guarda y lo devuelve tal cual.
// since es el epoch tomado antes de cargar value.
func WriteAndReturn[T any](ctx context.Context, s Store, key Key, value T, ttl time.Duration, since uint64, tags ...string) T {
	if s == nil || ttl <= 0 {
		return value
	}
	raw, err := json.Marshal(value)
	if err != nil {
		logger.FromContext(ctx).Warn("cache encode failed", map[string]any{"key": key.String(), "error": err.Error()})
		return value
	}
	stored, err := s.Write(ctx, key, raw, ttl, since, tags...)
	if err != nil {
		logger.FromContext(ctx).Warn("cache write failed", map[string]any{"key": key.String(), "error": err.Error()})
		return value
	}
	if !stored {
		logger.FromContext(ctx).Debug("cache write skipped: invalidated during load", map[string]any{"key": key.String()})
	}
	return value
}

// Read devuelve la vista cacheada si existe y decodifica bien.
func Read[T any](ctx context.Context, s Store, key Key) (T, bool) {
	var zero T
	if s == nil {
		return zero, false
	}
	raw, ok, err := s.Read(ctx, key)
	if err != nil {
		logger.FromContext(ctx).Warn("cache read failed", map[string]any{"key": key.String(), "error": err.Error()})
		return zero, false
	}
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return zero, false
	}
	return out, true
}

// Remember es el cache-aside completo: read, y si no hay, load + writeAndReturn.
// tags calcula los tags extra a partir del valor cargado (p.ej. las entidades devueltas).
func Remember[T any](
	ctx context.Context,
	s Store,
	key Key,
	ttl time.Duration,
	tags func(T) []string,
	load func(ctx context.Context) (T, error),
) (T, error) {
	if v, ok := Read[T](ctx, s, key); ok {
		return v, nil
	}
	if s == nil || ttl <= 0 {
		return load(ctx)
	}

	since, err := s.Epoch(ctx)
	if err != nil {
		// Sin epoch no se puede saber si la carga queda vieja: no se cachea.
		logger.FromContext(ctx).Warn("cache epoch failed", map[string]any{"key": key.String(), "error": err.Error()})
		return load(ctx)
	}

	v, err := load(ctx)
	if err != nil {
		return v, err
	}
	var extra []string
	if tags != nil {
		extra = tags(v)
	}
	return WriteAndReturn(ctx, s, key, v, ttl, since, extra...), nil
}

// Noop no guarda nada. Se usa cuando CACHE_TTL=0.
type Noop struct{}

func (Noop) Read(context.Context, Key) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Epoch(context.Context) (uint64, error) { return 0, nil }
func (Noop) Write(context.Context, Key, []byte, time.Duration, uint64, ...string) (bool, error) {
	return false, nil
}
func (Noop) Invalidate(context.Context, ...string) error { return nil }
