package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/qs3c/edu_referral_server/internal/model/dto"
	"github.com/qs3c/edu_referral_server/internal/pkg/session"
	"github.com/qs3c/edu_referral_server/internal/repository"
	"github.com/qs3c/edu_referral_server/internal/testutil"
)

func setupAdminService(t *testing.T) (*AdminService, *miniredis.Miniredis, func()) {
	t.Helper()

	db := testutil.SetupTestDB(t)
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	service := NewAdminService(
		repository.NewAdminRepository(db),
		session.NewStore(rdb, time.Hour),
		zap.NewNop(),
	)

	cleanup := func() {
		rdb.Close()
		mr.Close()
		testutil.CleanupTestDB(t, db)
	}

	return service, mr, cleanup
}

func TestAdminService_EnsureAdmin(t *testing.T) {
	service, _, cleanup := setupAdminService(t)
	defer cleanup()

	ctx := context.Background()
	created, err := service.EnsureAdmin(ctx, "root", "s3cret!")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = service.EnsureAdmin(ctx, "root", "other")
	require.NoError(t, err)
	assert.False(t, created)

	_, err = service.EnsureAdmin(ctx, "", "x")
	assert.ErrorIs(t, err, ErrMissingField)
}

func TestAdminService_LoginAuthenticateLogout(t *testing.T) {
	service, _, cleanup := setupAdminService(t)
	defer cleanup()

	ctx := context.Background()
	_, err := service.EnsureAdmin(ctx, "root", "s3cret!")
	require.NoError(t, err)

	resp, err := service.Login(ctx, &dto.AdminLoginRequest{Username: "root", Password: "s3cret!"})
	require.NoError(t, err)
	assert.Len(t, resp.SessionToken, 64)
	assert.NotEmpty(t, resp.ExpiresAt)

	id, err := service.Authenticate(ctx, resp.SessionToken)
	require.NoError(t, err)
	assert.NotZero(t, id)

	require.NoError(t, service.Logout(ctx, resp.SessionToken))
	_, err = service.Authenticate(ctx, resp.SessionToken)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}

func TestAdminService_Login_WrongPassword(t *testing.T) {
	service, _, cleanup := setupAdminService(t)
	defer cleanup()

	ctx := context.Background()
	_, err := service.EnsureAdmin(ctx, "root", "s3cret!")
	require.NoError(t, err)

	_, err = service.Login(ctx, &dto.AdminLoginRequest{Username: "root", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = service.Login(ctx, &dto.AdminLoginRequest{Username: "ghost", Password: "nope"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminService_SessionExpires(t *testing.T) {
	service, mr, cleanup := setupAdminService(t)
	defer cleanup()

	ctx := context.Background()
	_, err := service.EnsureAdmin(ctx, "root", "s3cret!")
	require.NoError(t, err)

	resp, err := service.Login(ctx, &dto.AdminLoginRequest{Username: "root", Password: "s3cret!"})
	require.NoError(t, err)

	mr.FastForward(time.Hour + time.Second)

	_, err = service.Authenticate(ctx, resp.SessionToken)
	assert.ErrorIs(t, err, ErrSessionInvalid)
}
