package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "nft-marketplace-backend/internal/common/errors"
	redisrepo "nft-marketplace-backend/internal/features/user/repository/redis"
)

type memAvatars struct {
	saved   []string
	removed []string
	err     error
}

func (m *memAvatars) Save(name string, _ []byte) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	url := "/avatars/" + name + ".png"
	m.saved = append(m.saved, url)
	return url, nil
}

func (m *memAvatars) Remove(url string) error {
	m.removed = append(m.removed, url)
	return nil
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func newTestService(t *testing.T) (*userService, *fakeClock) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	svc := NewUserService(redisrepo.NewUserRepository(client), &memAvatars{}).(*userService)
	svc.now = clock.now
	return svc, clock
}

func TestConnectWalletIsIdempotent(t *testing.T) {
	svc, clock := newTestService(t)
	ctx := context.Background()
	mixed := "0x52908400098527886E0F7030069857D2E4169EE7"

	first, err := svc.ConnectWallet(ctx, mixed)
	require.NoError(t, err)
	assert.Equal(t, "0x52908400098527886e0f7030069857d2e4169ee7", first.WalletAddress)

	clock.t = clock.t.Add(24 * time.Hour)
	second, err := svc.ConnectWallet(ctx, mixed)
	require.NoError(t, err)

	assert.Equal(t, first.WalletAddress, second.WalletAddress)
	assert.True(t, second.CreatedAt.Equal(first.CreatedAt))
	assert.True(t, second.LastLogin.After(first.LastLogin))
}

func TestConnectWalletRejectsBadAddress(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.ConnectWallet(context.Background(), "0x1234...5678")
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}

func TestGetUserNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.GetUser(context.Background(), "0x0000000000000000000000000000000000000001")
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err))
}

func TestUploadAvatar(t *testing.T) {
	svc, clock := newTestService(t)
	avatars := svc.avatars.(*memAvatars)
	ctx := context.Background()
	addr := "0x52908400098527886e0f7030069857d2e4169ee7"
	png := []byte{0x89, 'P', 'N', 'G'}

	_, err := svc.UploadAvatar(ctx, addr, png)
	assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.CodeOf(err), "wallet must have connected first")
	assert.Empty(t, avatars.saved)

	_, err = svc.ConnectWallet(ctx, addr)
	require.NoError(t, err)

	user, err := svc.UploadAvatar(ctx, "0x52908400098527886E0F7030069857D2E4169EE7", png)
	require.NoError(t, err)
	first := "/avatars/" + addr + "_1704067200000.png"
	assert.Equal(t, first, user.AvatarURL)

	clock.t = clock.t.Add(time.Second)
	user, err = svc.UploadAvatar(ctx, addr, png)
	require.NoError(t, err)
	assert.NotEqual(t, first, user.AvatarURL)
	assert.Equal(t, []string{first}, avatars.removed, "replaced avatar is removed")

	got, err := svc.GetUser(ctx, addr)
	require.NoError(t, err)
	assert.Equal(t, user.AvatarURL, got.AvatarURL)
}

func TestUploadAvatarValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.UploadAvatar(ctx, "nope", []byte{1})
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))

	_, err = svc.UploadAvatar(ctx, "0x52908400098527886e0f7030069857d2e4169ee7", nil)
	assert.Equal(t, apperrors.ErrCodeValidation, apperrors.CodeOf(err))
}
