package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() { gin.SetMode(gin.TestMode) }

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(mw...)
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"request_id": c.GetString(ctxRequestID),
			"real_ip":    c.GetString(ctxRealIP),
		})
	})
	return r
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newEngine(RequestIDMiddleware())

	t.Run("Generated", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		id := w.Header().Get(HeaderRequestID)
		_, err := uuid.Parse(id)
		require.NoError(t, err)
		assert.Contains(t, w.Body.String(), id)
	})

	t.Run("Reused", func(t *testing.T) {
		want := uuid.New().String()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(HeaderRequestID, want)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Header().Get(HeaderRequestID))
	})

	t.Run("GarbageReplaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set(HeaderRequestID, "<script>")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.NotEqual(t, "<script>", w.Header().Get(HeaderRequestID))
	})
}

func TestRealIP(t *testing.T) {
	r := newEngine(RealIP())

	cases := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{"Cloudflare", map[string]string{"CF-Connecting-IP": "203.0.113.7", "X-Forwarded-For": "198.51.100.1"}, "203.0.113.7"},
		{"ForwardedLeftMost", map[string]string{"X-Forwarded-For": "198.51.100.1, 10.0.0.1"}, "198.51.100.1"},
		{"InvalidHeadersFallBack", map[string]string{"CF-Connecting-IP": "nope", "X-Forwarded-For": "nope"}, "192.0.2.1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Contains(t, w.Body.String(), `"real_ip":"`+tc.want+`"`)
		})
	}
}

func TestAccessLog(t *testing.T) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetOutput(&buf)
	logger.SetFormatter(&logrus.JSONFormatter{})

	r := newEngine(RequestIDMiddleware(), RealIP(), AccessLog(logger))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	out := buf.String()
	assert.Contains(t, out, `"path":"/ping"`)
	assert.Contains(t, out, `"status":200`)
	assert.Contains(t, out, w.Header().Get(HeaderRequestID))
}
