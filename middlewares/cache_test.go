package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"rsvpapp/utils"
)

func cacheTestServer(t *testing.T) (*gin.Engine, *redis.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	r := gin.New()
	r.Use(ResponseCache(rdb, time.Minute))

	hits := 0
	r.GET("/events", func(c *gin.Context) {
		hits++
		c.JSON(200, gin.H{"hits": hits})
	})
	r.GET("/events/:id", func(c *gin.Context) {
		hits++
		c.JSON(200, gin.H{"id": c.Param("id"), "hits": hits})
	})
	r.GET("/events/my-events", func(c *gin.Context) {
		hits++
		c.JSON(200, gin.H{"hits": hits})
	})
	return r, rdb
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestResponseCache_HitServesStoredBody(t *testing.T) {
	r, _ := cacheTestServer(t)

	first := get(r, "/events")
	if first.Code != 200 {
		t.Fatalf("first GET: %d", first.Code)
	}
	if got := first.Header().Get("X-Cache"); got != "MISS" {
		t.Errorf("first X-Cache = %q, want MISS", got)
	}

	second := get(r, "/events")
	if got := second.Header().Get("X-Cache"); got != "HIT" {
		t.Errorf("second X-Cache = %q, want HIT", got)
	}
	if first.Body.String() != second.Body.String() {
		t.Errorf("cached body differs: %q vs %q", first.Body.String(), second.Body.String())
	}
}

func TestResponseCache_QueryVariantsAreSeparate(t *testing.T) {
	r, _ := cacheTestServer(t)

	a := get(r, "/events?page=1")
	b := get(r, "/events?page=2")
	if a.Body.String() == b.Body.String() {
		t.Error("different queries served the same cached body")
	}
}

func TestResponseCache_PerUserListingNotCached(t *testing.T) {
	r, _ := cacheTestServer(t)

	a := get(r, "/events/my-events")
	b := get(r, "/events/my-events")
	if a.Body.String() == b.Body.String() {
		t.Error("per-user listing was served from cache")
	}
	if got := b.Header().Get("X-Cache"); got != "" {
		t.Errorf("X-Cache = %q, want unset", got)
	}
}

func TestResponseCache_InvalidationRestoresFreshness(t *testing.T) {
	r, rdb := cacheTestServer(t)

	first := get(r, "/events/7")
	if got := get(r, "/events/7"); got.Body.String() != first.Body.String() {
		t.Fatal("expected cached body before invalidation")
	}

	// Purge the way the write path does.
	utils.NewCacheInvalidator(rdb).PurgeEvent(t.Context(), 7)

	fresh := get(r, "/events/7")
	if fresh.Body.String() == first.Body.String() {
		t.Error("stale body served after invalidation")
	}
}
