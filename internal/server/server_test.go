package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"electro-shop/internal/config"
	"electro-shop/internal/events"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubDatabase reports a fixed health status; no route under test touches
// the pool.
type stubDatabase struct {
	status string
	closed bool
}

func (d *stubDatabase) DB() *sql.DB { return nil }

func (d *stubDatabase) Health(ctx context.Context) map[string]string {
	return map[string]string{"status": d.status}
}

func (d *stubDatabase) Close() error {
	d.closed = true
	return nil
}

func newTestServer(t *testing.T, db *stubDatabase) (*Server, string) {
	t.Helper()

	uploadDir := t.TempDir()
	mr := miniredis.RunT(t)

	cfg := &config.Config{
		Server:    config.ServerConfig{Port: "0", Env: "production", AllowedOrigins: []string{"http://localhost:5173"}},
		RateLimit: config.RateLimitConfig{Requests: 2, Window: time.Minute},
		JWT:       config.JWTConfig{Secret: "server-test-secret"},
		Upload:    config.UploadConfig{Dir: uploadDir},
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewServer(cfg, zap.NewNop(), db, client, events.NoopPublisher{}), uploadDir
}

func serve(s *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	db := &stubDatabase{status: "up"}
	s, _ := newTestServer(t, db)

	for _, path := range []string{"/health", "/api/health"} {
		rec := serve(s, "GET", path, "")
		require.Equal(t, http.StatusOK, rec.Code, path)

		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "up", body["status"])
	}

	db.status = "down"
	assert.Equal(t, http.StatusServiceUnavailable, serve(s, "GET", "/health", "").Code)
}

func TestUnknownRouteIsJSON(t *testing.T) {
	s, _ := newTestServer(t, &stubDatabase{status: "up"})

	rec := serve(s, "GET", "/api/nothing-here", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")
	assert.Contains(t, rec.Body.String(), "/api/nothing-here")
}

func TestUploadedImagesAreServed(t *testing.T) {
	s, dir := newTestServer(t, &stubDatabase{status: "up"})

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "products", "3"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "products", "3", "a.png"), []byte("png-bytes"), 0o644))

	rec := serve(s, "GET", "/assets/imgs/products/3/a.png", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "png-bytes", rec.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(s, "GET", "/assets/imgs/products/3/missing.png", "").Code)

	for _, dirPath := range []string{"/assets/imgs/", "/assets/imgs/products/", "/assets/imgs/products/3/"} {
		rec := serve(s, "GET", dirPath, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, dirPath)
		assert.NotContains(t, rec.Body.String(), "a.png", dirPath)
	}
}

func TestLoginIsRateLimited(t *testing.T) {
	s, _ := newTestServer(t, &stubDatabase{status: "up"})

	// Invalid bodies are rejected before any lookup but still count.
	for i := 0; i < 2; i++ {
		rec := serve(s, "POST", "/api/users/login", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	}

	rec := serve(s, "POST", "/api/users/login", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	// Password recovery keeps its own counter.
	rec = serve(s, "POST", "/api/users/forgot-password", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s, _ := newTestServer(t, &stubDatabase{status: "up"})

	assert.Equal(t, http.StatusUnauthorized, serve(s, "GET", "/api/users/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, serve(s, "PATCH", "/api/users/1/role", `{"userRole":"admin"}`).Code)
}

func TestCloseReleasesResources(t *testing.T) {
	db := &stubDatabase{status: "up"}
	s, _ := newTestServer(t, db)

	require.NoError(t, s.PingRedis(context.Background()))
	require.NoError(t, s.Close())

	assert.True(t, db.closed)
	assert.Error(t, s.PingRedis(context.Background()))
}
