package main

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-marketplace-backend/internal/common/config"
	nftredis "nft-marketplace-backend/internal/features/nft/repository/redis"
	nftservice "nft-marketplace-backend/internal/features/nft/service"
	"nft-marketplace-backend/internal/features/nft/storage"
	userredis "nft-marketplace-backend/internal/features/user/repository/redis"
	userservice "nft-marketplace-backend/internal/features/user/service"
)

type probeFunc func(ctx context.Context) error

func (f probeFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func newTestRouter(t *testing.T, probes map[string]HealthChecker) (http.Handler, string) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{}
	cfg.Server.Origin = "http://localhost:3000"
	cfg.Server.UploadDir = t.TempDir()
	cfg.Server.AvatarDir = t.TempDir()
	cfg.Server.MaxUploadBytes = 1 << 20

	userSvc := userservice.NewUserService(
		userredis.NewUserRepository(client),
		storage.NewImageStore(cfg.Server.AvatarDir, "/avatars"),
	)
	nftSvc := nftservice.NewNFTService(
		nftredis.NewRedisNFTRepository(client),
		storage.NewImageStore(cfg.Server.UploadDir, "/nfts"),
		nil,
	)
	return setupRouter(cfg, userSvc, nftSvc, probes), cfg.Server.UploadDir
}

func TestHealth(t *testing.T) {
	r, _ := newTestRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), serviceName)
}

func TestReady(t *testing.T) {
	healthy := map[string]HealthChecker{"redis": probeFunc(func(context.Context) error { return nil })}
	r, _ := newTestRouter(t, healthy)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	broken := map[string]HealthChecker{"redis": probeFunc(func(context.Context) error { return errors.New("down") })}
	r, _ = newTestRouter(t, broken)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "redis unavailable")
}

func TestStaticImagesAndRoutes(t *testing.T) {
	r, dir := newTestRouter(t, nil)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.png"), []byte("png"), 0o644))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nfts/a.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/nft/user?address=0x52908400098527886e0f7030069857d2e4169ee7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"nfts":[]}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/profile/upload-avatar", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code, "avatar route is mounted")
}
