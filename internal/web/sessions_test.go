package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/duskroseSouthAfrica/sheetdash/internal/engine"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(maxSize int, ttl time.Duration) (*lruCache[string], *fakeClock) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := newLRUCache[string](maxSize, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")

	// Touch a so b becomes the oldest.
	_, ok := c.Get("a")
	require.True(t, ok)
	c.Set("c", "3")

	assert.Equal(t, 2, c.Len())
	_, ok = c.Get("b")
	assert.False(t, ok, "b should have been evicted")
	v, ok := c.Get("a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)
}

func TestLRUCache_SetReplaces(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("a", "1")
	c.Set("a", "2")

	assert.Equal(t, 1, c.Len())
	v, _ := c.Get("a")
	assert.Equal(t, "2", v)
}

func TestLRUCache_Expiry(t *testing.T) {
	c, clock := newTestCache(4, time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")

	clock.advance(50 * time.Second)
	_, ok := c.Get("a") // refreshes a
	require.True(t, ok)

	clock.advance(30 * time.Second)
	_, ok = c.Get("b")
	assert.False(t, ok, "b should have expired")
	_, ok = c.Get("a")
	assert.True(t, ok, "a was refreshed by Get")

	clock.advance(2 * time.Minute)
	assert.Equal(t, 1, c.CleanExpired())
	assert.Equal(t, 0, c.Len())
}

func TestLRUCache_Delete(t *testing.T) {
	c, _ := newTestCache(2, time.Hour)
	c.Set("a", "1")
	c.Delete("a")
	c.Delete("missing")
	assert.Equal(t, 0, c.Len())
}

func TestSessionStore_FromRequest(t *testing.T) {
	store := newSessionStore(4, time.Hour)
	sess := engine.NewSession(newSessionID(), "ledger.csv", 10, &engine.Dataset{}, nil)
	store.save(sess)

	rec := httptest.NewRecorder()
	setSessionCookie(rec, sess.ID)
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(cookies[0])
	got, ok := store.fromRequest(req)
	require.True(t, ok)
	assert.Same(t, sess, got)

	// Saving a copy replaces the stored session under the same id.
	next := sess.WithRows([]int{0, 1})
	store.save(next)
	got, _ = store.fromRequest(req)
	assert.Same(t, next, got)

	req = httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: sessionCookie, Value: newSessionID()})
	_, ok = store.fromRequest(req)
	assert.False(t, ok, "unknown id")

	_, ok = store.fromRequest(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok, "no cookie")
}

func TestSessionStore_JanitorStopsOnCancel(t *testing.T) {
	store := newSessionStore(4, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.janitor(ctx, time.Millisecond) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
