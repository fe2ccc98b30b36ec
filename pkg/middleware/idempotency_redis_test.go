package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"roomallot/pkg/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*RedisIdempotencyStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisIdempotencyStore(client, ttl, logger.Nop()), mr
}

func TestRedisIdempotencyStore_RoundTrip(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	defer store.Stop()

	_, found := store.Get("k")
	assert.False(t, found)

	store.Set("k", &CachedResponse{
		StatusCode: http.StatusCreated,
		Headers:    http.Header{"Content-Type": []string{"application/json"}},
		Body:       []byte(`{"data":{"index":0}}`),
	})

	got, found := store.Get("k")
	require.True(t, found)
	assert.Equal(t, http.StatusCreated, got.StatusCode)
	assert.Equal(t, "application/json", got.Headers.Get("Content-Type"))
	assert.JSONEq(t, `{"data":{"index":0}}`, string(got.Body))

	mr.FastForward(2 * time.Minute)
	_, found = store.Get("k")
	assert.False(t, found)
}

func TestRedisIdempotencyStore_UnavailableIsMiss(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	defer store.Stop()

	mr.Close()

	store.Set("k", &CachedResponse{StatusCode: http.StatusOK})
	_, found := store.Get("k")
	assert.False(t, found)
}

func TestIdempotency_WithRedisStore(t *testing.T) {
	store, _ := newRedisStore(t, time.Minute)
	defer store.Stop()

	var calls atomic.Int32
	h := Idempotency(store)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusCreated)
	}))

	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings", nil)
		req.Header.Set(IdempotencyKeyHeader, "same")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	}
	assert.Equal(t, int32(1), calls.Load())
}
