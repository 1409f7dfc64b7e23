package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nft-marketplace-backend/internal/common/middleware"
	"nft-marketplace-backend/internal/features/nft/storage"
	"nft-marketplace-backend/internal/features/user/models"
	redisrepo "nft-marketplace-backend/internal/features/user/repository/redis"
	"nft-marketplace-backend/internal/features/user/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Errors())
	avatars := storage.NewImageStore(t.TempDir(), "/avatars")
	NewUserHandler(service.NewUserService(redisrepo.NewUserRepository(client), avatars), 1<<20).RegisterRoutes(r.Group("/api"))
	return r
}

func postJSON(r http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestConnectWalletEndpoint(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(r, "/api/auth/connect-wallet", map[string]string{
		"walletAddress": "0x52908400098527886E0F7030069857D2E4169EE7",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.ConnectWalletResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "0x52908400098527886e0f7030069857d2e4169ee7", resp.User.WalletAddress)
	assert.False(t, resp.User.CreatedAt.IsZero())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/0x52908400098527886e0f7030069857d2e4169ee7", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestConnectWalletRequiresAddress(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(r, "/api/auth/connect-wallet", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp middleware.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VALIDATION_ERROR", string(resp.Code))
	assert.NotEmpty(t, resp.Error)
}

func TestConnectWalletRejectsMalformedAddress(t *testing.T) {
	r := newTestRouter(t)

	w := postJSON(r, "/api/auth/connect-wallet", map[string]string{"walletAddress": "0x1234...5678"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func postAvatar(t *testing.T, r http.Handler, walletAddress string, avatar []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if walletAddress != "" {
		require.NoError(t, mw.WriteField("walletAddress", walletAddress))
	}
	if avatar != nil {
		part, err := mw.CreateFormFile("avatar", "me.png")
		require.NoError(t, err)
		_, err = part.Write(avatar)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/profile/upload-avatar", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestUploadAvatarEndpoint(t *testing.T) {
	r := newTestRouter(t)
	addr := "0x52908400098527886e0f7030069857d2e4169ee7"

	w := postAvatar(t, r, addr, pngHeader)
	assert.Equal(t, http.StatusNotFound, w.Code, "unknown wallet")

	require.Equal(t, http.StatusOK, postJSON(r, "/api/auth/connect-wallet", map[string]string{"walletAddress": addr}).Code)

	w = postAvatar(t, r, addr, pngHeader)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp models.UploadAvatarResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Regexp(t, `^/avatars/`+addr+`_\d+\.png$`, resp.AvatarURL)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/users/"+addr, nil))
	var user models.User
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, resp.AvatarURL, user.AvatarURL)
}

func TestUploadAvatarRequiresFields(t *testing.T) {
	r := newTestRouter(t)
	addr := "0x52908400098527886e0f7030069857d2e4169ee7"

	assert.Equal(t, http.StatusBadRequest, postAvatar(t, r, addr, nil).Code)
	assert.Equal(t, http.StatusBadRequest, postAvatar(t, r, "", pngHeader).Code)

	require.Equal(t, http.StatusOK, postJSON(r, "/api/auth/connect-wallet", map[string]string{"walletAddress": addr}).Code)
	assert.Equal(t, http.StatusBadRequest, postAvatar(t, r, addr, []byte("plain text, not an image")).Code)
}
