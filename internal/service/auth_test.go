package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"ContactHub/config"
	"ContactHub/internal/cache"
	"ContactHub/internal/model/dto"
	"ContactHub/internal/repository"
	pkgerrors "ContactHub/pkg/errors"
	"ContactHub/pkg/token"
)

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}

func newAuthService(t *testing.T) (*AuthService, repository.UserStore) {
	t.Helper()
	config.Cfg.JWTSecret = "test-secret"
	config.Cfg.JWTExpireMinutes = 15
	config.Cfg.JWTRefreshDays = 7
	config.Cfg.BcryptCost = bcrypt.MinCost
	require.NoError(t, token.Init())

	users := repository.NewMemoryUserStore()
	return NewAuthService(users, cache.NewMemoryTokenRegistry()), users
}

var adaRegistration = dto.RegisterRequest{
	FirstName: "Ada",
	LastName:  "Lovelace",
	Email:     "ada@example.com",
	Password:  "analytical-engine",
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc, _ := newAuthService(t)

	resp, err := svc.Register(context.Background(), adaRegistration)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, 15*60, resp.ExpiresIn)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Equal(t, "user", resp.User.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _ := newAuthService(t)

	_, err := svc.Register(context.Background(), adaRegistration)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), adaRegistration)
	assert.ErrorIs(t, err, pkgerrors.EmailAlreadyExists)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService(t)

	short := adaRegistration
	short.Password = "short"
	_, err := svc.Register(context.Background(), short)
	assert.ErrorIs(t, err, pkgerrors.InvalidInput)

	badEmail := adaRegistration
	badEmail.Email = "ada"
	_, err = svc.Register(context.Background(), badEmail)
	assert.ErrorIs(t, err, pkgerrors.InvalidInput)
}

func TestLogin(t *testing.T) {
	svc, users := newAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, adaRegistration)
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, pkgerrors.InvalidCredentials)

	_, err = svc.Login(ctx, dto.LoginRequest{Email: "nobody@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, pkgerrors.InvalidCredentials)

	resp, err := svc.Login(ctx, dto.LoginRequest{Email: "ada@example.com", Password: "analytical-engine"})
	require.NoError(t, err)
	require.NotNil(t, resp.User.LastLoginAt)

	stored, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.NotNil(t, stored.LastLoginAt)
}

func TestRefreshRotatesTokens(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	first, err := svc.Register(ctx, adaRegistration)
	require.NoError(t, err)

	second, err := svc.Refresh(ctx, dto.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// 旧的 refresh token 已被消费
	_, err = svc.Refresh(ctx, dto.RefreshTokenRequest{RefreshToken: first.RefreshToken})
	assert.ErrorIs(t, err, pkgerrors.InvalidToken)

	_, err = svc.Refresh(ctx, dto.RefreshTokenRequest{RefreshToken: second.AccessToken})
	assert.ErrorIs(t, err, pkgerrors.InvalidToken)
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	svc, _ := newAuthService(t)
	ctx := context.Background()

	resp, err := svc.Register(ctx, adaRegistration)
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, resp.User.ID))

	_, err = svc.Refresh(ctx, dto.RefreshTokenRequest{RefreshToken: resp.RefreshToken})
	assert.ErrorIs(t, err, pkgerrors.InvalidToken)
}

func TestProfile(t *testing.T) {
	auth, users := newAuthService(t)
	ctx := context.Background()

	resp, err := auth.Register(ctx, adaRegistration)
	require.NoError(t, err)

	svc := NewUserService(users)
	profile, err := svc.Profile(ctx, resp.User.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", profile.FirstName)

	_, err = svc.Profile(ctx, "999")
	assert.ErrorIs(t, err, pkgerrors.UserNotFound)

	_, err = svc.Profile(ctx, "abc")
	assert.ErrorIs(t, err, pkgerrors.InvalidUserID)
}
