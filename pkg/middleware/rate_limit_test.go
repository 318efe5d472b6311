package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// limiters are cached per key in a package global, so every test pins its
// own subject to stay independent of the others
func limitedRouter(sub string, rps float64, burst int) *gin.Engine {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": sub})
		c.Next()
	})
	r.Use(RateLimitMiddleware(rps, burst))
	r.GET("/x", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	return r
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	r := limitedRouter("rl-allow", 10, 2) // generous rate
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/x", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	// very low rate to force rejections
	r := limitedRouter("rl-block", 0.5, 1)

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest("GET", "/x", nil))
	require.Equal(t, http.StatusOK, w1.Code)

	// immediate second request exceeds the bucket
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("GET", "/x", nil))
	require.Equal(t, http.StatusTooManyRequests, w2.Code)

	// half a second replenishes one token
	time.Sleep(600 * time.Millisecond)
	w3 := httptest.NewRecorder()
	r.ServeHTTP(w3, httptest.NewRequest("GET", "/x", nil))
	require.Equal(t, http.StatusOK, w3.Code)
}

func TestRateLimitMiddleware_FallsBackToClientIP(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/ip", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	w1 := httptest.NewRecorder()
	r.ServeHTTP(w1, httptest.NewRequest("GET", "/ip", nil))
	require.Equal(t, http.StatusOK, w1.Code)

	// same IP, immediate second request => rejected
	w2 := httptest.NewRecorder()
	r.ServeHTTP(w2, httptest.NewRequest("GET", "/ip", nil))
	require.Equal(t, http.StatusTooManyRequests, w2.Code)
}
