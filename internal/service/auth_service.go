package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/repository"
	"otlobha/menuhub/pkg/crypto"
	jwtpkg "otlobha/menuhub/pkg/jwt"
)

const (
	refreshKeyPrefix       = "refresh:"
	setupConsumedKeyPrefix = "setup:consumed:"
)

// TokenSet represents the tokens returned after authentication.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// LoginResult carries either a full token set or, for accounts flagged for
// password setup, only the short-lived setup token.
type LoginResult struct {
	User                  *model.User `json:"user"`
	Tokens                *TokenSet   `json:"tokens,omitempty"`
	SetupToken            string      `json:"setup_token,omitempty"`
	RequiresPasswordSetup bool        `json:"requires_password_setup"`
}

type AuthService interface {
	Register(ctx context.Context, phone, password, firstName, lastName string, role model.UserRole) (*LoginResult, error)
	// Login with an empty password is permitted only when the account is
	// flagged requires_password_change; it yields a single-use setup token
	// accepted solely by SetPassword.
	Login(ctx context.Context, phone, password string) (*LoginResult, error)
	// SetPassword consumes a setup token (by JTI) or serves an authenticated
	// password change, then issues fresh tokens.
	SetPassword(ctx context.Context, userID uuid.UUID, setupJTI string, setupExpiry time.Time, password, confirm string) (*LoginResult, error)
	Refresh(ctx context.Context, refreshToken string) (*TokenSet, error)
	Logout(ctx context.Context, refreshToken string) error
}

type authService struct {
	userRepo   repository.UserRepository
	stateStore repository.StateStore
	jwtManager *jwtpkg.Manager
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewAuthService(
	userRepo repository.UserRepository,
	stateStore repository.StateStore,
	jwtManager *jwtpkg.Manager,
	accessTTL, refreshTTL time.Duration,
) AuthService {
	return &authService{
		userRepo:   userRepo,
		stateStore: stateStore,
		jwtManager: jwtManager,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

func (s *authService) issueTokens(ctx context.Context, user *model.User) (*TokenSet, error) {
	access, err := s.jwtManager.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	refresh, claims, err := s.jwtManager.GenerateRefreshToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}
	// Allow-list the refresh JTI so logout and rotation can revoke it.
	if err := s.stateStore.Set(ctx, refreshKeyPrefix+claims.ID, []byte(user.ID.String()), s.refreshTTL); err != nil {
		return nil, err
	}
	return &TokenSet{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
	}, nil
}

func (s *authService) Register(ctx context.Context, phone, password, firstName, lastName string, role model.UserRole) (*LoginResult, error) {
	if _, err := s.userRepo.GetByPhone(ctx, phone); err == nil {
		return nil, ErrUserAlreadyExists
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if role == "" {
		role = model.RoleRestaurantOwner
	}
	user := &model.User{
		Phone:        phone,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
		Role:         role,
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Tokens: tokens}, nil
}

func (s *authService) Login(ctx context.Context, phone, password string) (*LoginResult, error) {
	user, err := s.userRepo.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	if strings.TrimSpace(password) == "" {
		// Password-less bootstrap: only for accounts still awaiting their
		// first password, and only good for setting one.
		if !user.RequiresPasswordChange {
			return nil, ErrPasswordRequired
		}
		setupToken, _, err := s.jwtManager.GenerateSetupToken(user.ID, string(user.Role))
		if err != nil {
			return nil, err
		}
		return &LoginResult{
			User:                  user,
			SetupToken:            setupToken,
			RequiresPasswordSetup: true,
		}, nil
	}

	if !crypto.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Tokens: tokens}, nil
}

func (s *authService) SetPassword(ctx context.Context, userID uuid.UUID, setupJTI string, setupExpiry time.Time, password, confirm string) (*LoginResult, error) {
	if password != confirm {
		return nil, ErrPasswordMismatch
	}

	if setupJTI != "" {
		// Single-use: first consumer wins, replays are rejected.
		ttl := time.Until(setupExpiry)
		if ttl <= 0 {
			ttl = time.Minute
		}
		won, err := s.stateStore.SetNX(ctx, setupConsumedKeyPrefix+setupJTI, []byte("1"), ttl)
		if err != nil {
			return nil, err
		}
		if !won {
			return nil, ErrSetupTokenConsumed
		}
	}

	hash, err := crypto.HashPassword(password)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.SetPassword(ctx, userID, hash); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	tokens, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}
	return &LoginResult{User: user, Tokens: tokens}, nil
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (*TokenSet, error) {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return nil, ErrRefreshTokenInvalid
	}

	val, err := s.stateStore.Get(ctx, refreshKeyPrefix+claims.ID)
	if err != nil {
		return nil, err
	}
	if val == nil {
		return nil, ErrRefreshTokenInvalid
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, ErrRefreshTokenInvalid
	}
	if !user.IsActive {
		return nil, ErrUserDisabled
	}

	// Rotate: revoke the presented token before issuing the next pair.
	if err := s.stateStore.Delete(ctx, refreshKeyPrefix+claims.ID); err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *authService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwtManager.Validate(refreshToken)
	if err != nil || claims.TokenType != jwtpkg.TokenTypeRefresh {
		return ErrRefreshTokenInvalid
	}
	return s.stateStore.Delete(ctx, refreshKeyPrefix+claims.ID)
}

var _ AuthService = (*authService)(nil)
