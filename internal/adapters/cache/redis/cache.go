package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"pet-guardianship/internal/platform/cache"
)

const (
	// Prefijos de claves en redis.
	entryKeyPrefix       = "guardianship:cache:"
	tagKeyPrefix         = "guardianship:tag:"
	invalidatedKeyPrefix = "guardianship:invalidated:"
	epochKey             = "guardianship:epoch"
)

// markTTL acota cuánto vive la marca de invalidación de un tag. Tiene que superar la
// duración de cualquier lectura (acotada por los timeouts HTTP).
const markTTL = 10 * time.Minute

// Cache implementa cache.Store sobre redis: cada entrada es un string con TTL y cada tag
// es un SET con las claves que indexa. Sirve para varias instancias compartiendo cache.
type Cache struct {
	client *redis.Client
}

var _ cache.Store = (*Cache)(nil)

// Open parsea la URL, hace ping y devuelve el cache listo.
func Open(ctx context.Context, url string) (*Cache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return New(client), nil
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) Read(ctx context.Context, key cache.Key) ([]byte, bool, error) {
	raw, err := c.client.Get(ctx, entryKeyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (c *Cache) Epoch(ctx context.Context) (uint64, error) {
	n, err := c.client.Get(ctx, epochKey).Uint64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// Write guarda la entrada y la agrega a los SETs de sus tags en una transacción.
// Hace WATCH de las marcas de invalidación de esos tags: si alguna es posterior a since,
// o cambia antes del EXEC, la entrada no se guarda.
func (c *Cache) Write(ctx context.Context, key cache.Key, value []byte, ttl time.Duration, since uint64, tags ...string) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	k := entryKeyPrefix + key.String()
	all := withTag(key.Tag, tags)
	marks := make([]string, len(all))
	for i, tag := range all {
		marks[i] = invalidatedKeyPrefix + tag
	}

	stored := false
	err := c.client.Watch(ctx, func(tx *redis.Tx) error {
		vals, err := tx.MGet(ctx, marks...).Result()
		if err != nil {
			return err
		}
		for _, v := range vals {
			if v == nil {
				continue
			}
			raw, _ := v.(string)
			n, err := strconv.ParseUint(raw, 10, 64)
			if err != nil || n > since {
				return nil
			}
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, value, ttl)
			for _, tag := range all {
				pipe.SAdd(ctx, tagKeyPrefix+tag, k)
				pipe.Expire(ctx, tagKeyPrefix+tag, ttl)
			}
			return nil
		})
		if err == nil {
			stored = true
		}
		return err
	}, marks...)
	if errors.Is(err, redis.TxFailedErr) {
		return false, nil
	}
	return stored, err
}

// Invalidate avanza el epoch, marca cada tag con él y recién después borra las entradas
// indexadas bajo el tag, y el tag mismo.
func (c *Cache) Invalidate(ctx context.Context, tags ...string) error {
	epoch, err := c.client.Incr(ctx, epochKey).Uint64()
	if err != nil {
		return fmt.Errorf("invalidate: epoch: %w", err)
	}
	for _, tag := range tags {
		if tag == "" {
			continue
		}
		if err := c.client.Set(ctx, invalidatedKeyPrefix+tag, epoch, markTTL).Err(); err != nil {
			return fmt.Errorf("invalidate %s: %w", tag, err)
		}

		setKey := tagKeyPrefix + tag
		members, err := c.client.SMembers(ctx, setKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("invalidate %s: %w", tag, err)
		}

		pipe := c.client.TxPipeline()
		if len(members) > 0 {
			pipe.Del(ctx, members...)
		}
		pipe.Del(ctx, setKey)
		if _, err := pipe.Exec(ctx); err != nil {
			return fmt.Errorf("invalidate %s: %w", tag, err)
		}
	}
	return nil
}

// Health hace ping al servidor.
func (c *Cache) Health(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close cierra el cliente.
func (c *Cache) Close() error {
	return c.client.Close()
}

func withTag(tag string, extra []string) []string {
	out := make([]string, 0, len(extra)+1)
	for _, t := range append([]string{tag}, extra...) {
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
