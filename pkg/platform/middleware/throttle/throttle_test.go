package throttle

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiter(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	t.Run("burst then reject", func(t *testing.T) {
		l := New(60, 2, WithClock(clock))
		assert.True(t, l.Allow("a"))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
		assert.True(t, l.Allow("b"), "keys are isolated")
	})

	t.Run("refills over time", func(t *testing.T) {
		current := now
		l := New(60, 1, WithClock(func() time.Time { return current }))
		assert.True(t, l.Allow("a"))
		assert.False(t, l.Allow("a"))
		current = current.Add(time.Second)
		assert.True(t, l.Allow("a"))
	})

	t.Run("prunes idle visitors", func(t *testing.T) {
		current := now
		l := New(60, 1, WithClock(func() time.Time { return current }), WithIdleTTL(time.Minute))
		l.Allow("a")
		current = current.Add(2 * time.Minute)
		l.Allow("b")
		assert.Len(t, l.visitors, 1)
	})
}

func TestMiddlewareReturns429(t *testing.T) {
	l := New(60, 1)
	h := l.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	first := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "192.0.2.10:1234"
	h.ServeHTTP(first, req)
	assert.Equal(t, http.StatusCreated, first.Code)

	second := httptest.NewRecorder()
	h.ServeHTTP(second, req)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}
