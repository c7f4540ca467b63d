package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"medibill/internal/models"
)

// WebhookDeduper tracks webhook payloads already applied, so provider
// redeliveries can be answered without re-entering the reconciler. Seen only
// reads; a payload is recorded via Mark once its handler succeeded, so a
// retry after a transient failure still reaches the reconciler. The
// reconciler's own already-paid check remains the correctness backstop.
type WebhookDeduper interface {
	Seen(ctx context.Context, key string) (bool, error)
	Mark(ctx context.Context, key string) error
}

type redisWebhookDeduper struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (d *redisWebhookDeduper) Seen(ctx context.Context, key string) (bool, error) {
	n, err := d.client.Exists(ctx, d.prefix+":"+key).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (d *redisWebhookDeduper) Mark(ctx context.Context, key string) error {
	return d.client.Set(ctx, d.prefix+":"+key, "1", d.ttl).Err()
}

type memoryWebhookDeduper struct {
	mu     sync.Mutex
	seen   map[string]time.Time
	ttl    time.Duration
	nextGC time.Time
}

func newMemoryWebhookDeduper(ttl time.Duration) *memoryWebhookDeduper {
	now := time.Now()
	return &memoryWebhookDeduper{
		seen:   make(map[string]time.Time),
		ttl:    ttl,
		nextGC: now.Add(ttl),
	}
}

func (d *memoryWebhookDeduper) Seen(_ context.Context, key string) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	exp, ok := d.seen[key]
	return ok && exp.After(time.Now()), nil
}

func (d *memoryWebhookDeduper) Mark(_ context.Context, key string) error {
	now := time.Now()

	d.mu.Lock()
	defer d.mu.Unlock()

	d.seen[key] = now.Add(d.ttl)
	if now.After(d.nextGC) {
		for k, exp := range d.seen {
			if exp.Before(now) {
				delete(d.seen, k)
			}
		}
		d.nextGC = now.Add(d.ttl)
	}
	return nil
}

// NewWebhookDeduper builds a Redis deduper and falls back to in-memory on failure.
func NewWebhookDeduper(addr, pass string, db int, ttl time.Duration) (WebhookDeduper, error) {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if addr == "" {
		return newMemoryWebhookDeduper(ttl), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: pass,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return newMemoryWebhookDeduper(ttl), err
	}

	return &redisWebhookDeduper{
		client: client,
		prefix: "payment:webhook",
		ttl:    ttl,
	}, nil
}

// PaymentWebhookDedup short-circuits byte-identical redeliveries of a gateway
// callback, keyed by the payload digest. The key is committed only after the
// handler answered 2xx; a delivery the reconciler could not apply stays
// unmarked so the provider's retry is processed again.
func PaymentWebhookDedup(deduper WebhookDeduper) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if deduper == nil {
				return next(c)
			}

			req := c.Request()
			if req.Body == nil {
				return next(c)
			}

			rawBody, err := io.ReadAll(req.Body)
			if err != nil {
				return next(c)
			}
			req.Body = io.NopCloser(bytes.NewBuffer(rawBody))
			if len(rawBody) == 0 {
				return next(c)
			}

			digest := sha256.Sum256(rawBody)
			key := hex.EncodeToString(digest[:])

			isDuplicate, err := deduper.Seen(req.Context(), key)
			if err == nil && isDuplicate {
				return c.JSON(http.StatusOK, models.APIResponse{
					Error:   0,
					Message: "duplicate delivery ignored",
					Data:    nil,
				})
			}

			handlerErr := next(c)
			if handlerErr == nil && c.Response().Status < http.StatusMultipleChoices {
				_ = deduper.Mark(req.Context(), key)
			}
			return handlerErr
		}
	}
}
