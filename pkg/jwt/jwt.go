package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type TokenType string

const (
	TokenTypeAccess  TokenType = "access"
	TokenTypeRefresh TokenType = "refresh"
	// TokenTypeSetup is the short-lived single-use token issued by the
	// password-less bootstrap login; only the set-password endpoint accepts it.
	TokenTypeSetup TokenType = "setup"
)

// Claims extends jwt.RegisteredClaims with custom fields.
type Claims struct {
	jwt.RegisteredClaims
	TokenType TokenType `json:"token_type"`
	Role      string    `json:"role"`
}

type Manager struct {
	signingKey      []byte
	issuer          string
	accessTokenTTL  time.Duration
	refreshTokenTTL time.Duration
	setupTokenTTL   time.Duration
}

func NewManager(signingKey string, issuer string, accessTTL, refreshTTL, setupTTL time.Duration) *Manager {
	return &Manager{
		signingKey:      []byte(signingKey),
		issuer:          issuer,
		accessTokenTTL:  accessTTL,
		refreshTokenTTL: refreshTTL,
		setupTokenTTL:   setupTTL,
	}
}

func (m *Manager) generate(userID uuid.UUID, role string, tokenType TokenType, ttl time.Duration) (string, *Claims, error) {
	now := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
		TokenType: tokenType,
		Role:      role,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.signingKey)
	if err != nil {
		return "", nil, err
	}
	return signed, &claims, nil
}

// GenerateAccessToken creates a signed JWT access token for a given user.
func (m *Manager) GenerateAccessToken(userID uuid.UUID, role string) (string, error) {
	signed, _, err := m.generate(userID, role, TokenTypeAccess, m.accessTokenTTL)
	return signed, err
}

// GenerateRefreshToken creates a signed JWT refresh token.
// Returns the token and claims; callers store claims.ID in the StateStore
// as an allow-list entry so refresh tokens can be revoked.
func (m *Manager) GenerateRefreshToken(userID uuid.UUID, role string) (string, *Claims, error) {
	return m.generate(userID, role, TokenTypeRefresh, m.refreshTokenTTL)
}

// GenerateSetupToken creates the bootstrap password-setup token. Deliberately
// much shorter-lived than an access token and single-use (claims.ID is marked
// consumed when spent).
func (m *Manager) GenerateSetupToken(userID uuid.UUID, role string) (string, *Claims, error) {
	return m.generate(userID, role, TokenTypeSetup, m.setupTokenTTL)
}

// Validate parses and validates a token string, returning claims.
func (m *Manager) Validate(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}

	if claims.Issuer != m.issuer {
		return nil, errors.New("invalid issuer")
	}

	return claims, nil
}
