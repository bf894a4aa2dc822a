package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
	"otlobha/menuhub/pkg/crypto"
	jwtpkg "otlobha/menuhub/pkg/jwt"
)

func newTestAuthService(t *testing.T) (AuthService, *fakeUserRepo, *jwtpkg.Manager) {
	t.Helper()
	userRepo := newFakeUserRepo()
	manager := jwtpkg.NewManager("test-signing-key", "menuhub-test", 15*time.Minute, 24*time.Hour, 15*time.Minute)
	svc := NewAuthService(userRepo, repository.NewMemoryStateStore(), manager, 15*time.Minute, 24*time.Hour)
	return svc, userRepo, manager
}

func seedUser(t *testing.T, userRepo *fakeUserRepo, phone, password string, requiresPasswordChange bool) *model.User {
	t.Helper()
	hash := ""
	if password != "" {
		var err error
		hash, err = crypto.HashPassword(password)
		require.NoError(t, err)
	}
	user := &model.User{
		Phone:                  phone,
		PasswordHash:           hash,
		Role:                   model.RoleRestaurantOwner,
		IsActive:               true,
		RequiresPasswordChange: requiresPasswordChange,
	}
	require.NoError(t, userRepo.Create(context.Background(), user))
	return user
}

func TestAuthService_Register(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	result, err := svc.Register(context.Background(), "+201001234567", "s3cret-pass", "Omar", "Hassan", "")
	require.NoError(t, err)
	assert.Equal(t, model.RoleRestaurantOwner, result.User.Role, "role defaults to owner")
	require.NotNil(t, result.Tokens)
	assert.NotEmpty(t, result.Tokens.AccessToken)
	assert.NotEmpty(t, result.Tokens.RefreshToken)

	_, err = svc.Register(context.Background(), "+201001234567", "another", "", "", "")
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthService_Login(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		svc, userRepo, _ := newTestAuthService(t)
		seedUser(t, userRepo, "+201001234567", "s3cret-pass", false)

		result, err := svc.Login(context.Background(), "+201001234567", "s3cret-pass")
		require.NoError(t, err)
		require.NotNil(t, result.Tokens)
		assert.False(t, result.RequiresPasswordSetup)
	})

	t.Run("wrong password and unknown phone are indistinguishable", func(t *testing.T) {
		svc, userRepo, _ := newTestAuthService(t)
		seedUser(t, userRepo, "+201001234567", "s3cret-pass", false)

		_, err := svc.Login(context.Background(), "+201001234567", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = svc.Login(context.Background(), "+209999999999", "s3cret-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("disabled account", func(t *testing.T) {
		svc, userRepo, _ := newTestAuthService(t)
		user := seedUser(t, userRepo, "+201001234567", "s3cret-pass", false)
		userRepo.mu.Lock()
		disabled := userRepo.users[user.ID]
		disabled.IsActive = false
		userRepo.users[user.ID] = disabled
		userRepo.mu.Unlock()

		_, err := svc.Login(context.Background(), "+201001234567", "s3cret-pass")
		assert.ErrorIs(t, err, ErrUserDisabled)
	})

	t.Run("empty password rejected for normal accounts", func(t *testing.T) {
		svc, userRepo, _ := newTestAuthService(t)
		seedUser(t, userRepo, "+201001234567", "s3cret-pass", false)

		_, err := svc.Login(context.Background(), "+201001234567", "")
		assert.ErrorIs(t, err, ErrPasswordRequired)
	})

	t.Run("bootstrap login yields only a setup token", func(t *testing.T) {
		svc, userRepo, manager := newTestAuthService(t)
		seedUser(t, userRepo, "+201001234567", "", true)

		result, err := svc.Login(context.Background(), "+201001234567", "")
		require.NoError(t, err)
		assert.True(t, result.RequiresPasswordSetup)
		assert.Nil(t, result.Tokens, "no access or refresh token until a password is set")
		require.NotEmpty(t, result.SetupToken)

		claims, err := manager.Validate(result.SetupToken)
		require.NoError(t, err)
		assert.Equal(t, jwtpkg.TokenTypeSetup, claims.TokenType)
	})
}

func TestAuthService_SetPassword(t *testing.T) {
	t.Run("setup token is single use", func(t *testing.T) {
		svc, userRepo, manager := newTestAuthService(t)
		user := seedUser(t, userRepo, "+201001234567", "", true)

		login, err := svc.Login(context.Background(), "+201001234567", "")
		require.NoError(t, err)
		claims, err := manager.Validate(login.SetupToken)
		require.NoError(t, err)

		result, err := svc.SetPassword(context.Background(), user.ID, claims.ID, claims.ExpiresAt.Time, "new-pass-123", "new-pass-123")
		require.NoError(t, err)
		require.NotNil(t, result.Tokens)
		assert.False(t, result.User.RequiresPasswordChange)

		// Replaying the same token fails; first consumer won.
		_, err = svc.SetPassword(context.Background(), user.ID, claims.ID, claims.ExpiresAt.Time, "other-pass", "other-pass")
		assert.ErrorIs(t, err, ErrSetupTokenConsumed)

		// The account now behaves like any other.
		_, err = svc.Login(context.Background(), "+201001234567", "new-pass-123")
		assert.NoError(t, err)
		_, err = svc.Login(context.Background(), "+201001234567", "")
		assert.ErrorIs(t, err, ErrPasswordRequired)
	})

	t.Run("confirmation must match", func(t *testing.T) {
		svc, userRepo, _ := newTestAuthService(t)
		user := seedUser(t, userRepo, "+201001234567", "", true)

		_, err := svc.SetPassword(context.Background(), user.ID, "jti", time.Now().Add(time.Minute), "one", "two")
		assert.ErrorIs(t, err, ErrPasswordMismatch)
	})
}

func TestAuthService_Refresh(t *testing.T) {
	t.Run("rotation revokes the presented token", func(t *testing.T) {
		svc, userRepo, _ := newTestAuthService(t)
		seedUser(t, userRepo, "+201001234567", "s3cret-pass", false)

		login, err := svc.Login(context.Background(), "+201001234567", "s3cret-pass")
		require.NoError(t, err)

		rotated, err := svc.Refresh(context.Background(), login.Tokens.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, login.Tokens.RefreshToken, rotated.RefreshToken)

		_, err = svc.Refresh(context.Background(), login.Tokens.RefreshToken)
		assert.ErrorIs(t, err, ErrRefreshTokenInvalid)

		_, err = svc.Refresh(context.Background(), rotated.RefreshToken)
		assert.NoError(t, err, "the rotated token is live")
	})

	t.Run("access tokens are not refresh tokens", func(t *testing.T) {
		svc, userRepo, _ := newTestAuthService(t)
		seedUser(t, userRepo, "+201001234567", "s3cret-pass", false)

		login, err := svc.Login(context.Background(), "+201001234567", "s3cret-pass")
		require.NoError(t, err)

		_, err = svc.Refresh(context.Background(), login.Tokens.AccessToken)
		assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
	})

	t.Run("logout revokes", func(t *testing.T) {
		svc, userRepo, _ := newTestAuthService(t)
		seedUser(t, userRepo, "+201001234567", "s3cret-pass", false)

		login, err := svc.Login(context.Background(), "+201001234567", "s3cret-pass")
		require.NoError(t, err)

		require.NoError(t, svc.Logout(context.Background(), login.Tokens.RefreshToken))
		_, err = svc.Refresh(context.Background(), login.Tokens.RefreshToken)
		assert.ErrorIs(t, err, ErrRefreshTokenInvalid)
	})
}
