package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"otlobha/menuhub/internal/model"
	"otlobha/menuhub/internal/service"
	jwtpkg "otlobha/menuhub/pkg/jwt"
	"otlobha/menuhub/pkg/response"
)

const (
	ContextKeyUserClaims   = "user_claims"
	ContextKeyTenant       = "tenant"
	ContextKeySubscription = "subscription"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false
	}
	return parts[1], true
}

// JWTAuth authenticates a request with an access token.
func JWTAuth(jwtManager *jwtpkg.Manager) gin.HandlerFunc {
	return requireTokenType(jwtManager, jwtpkg.TokenTypeAccess)
}

// SetupAuth accepts only the short-lived password-setup token. Used solely by
// the set-password endpoint; setup tokens are rejected everywhere else.
func SetupAuth(jwtManager *jwtpkg.Manager) gin.HandlerFunc {
	return requireTokenType(jwtManager, jwtpkg.TokenTypeSetup)
}

func requireTokenType(jwtManager *jwtpkg.Manager, tokenType jwtpkg.TokenType) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			response.Unauthorized(c, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtManager.Validate(token)
		if err != nil {
			response.Unauthorized(c, "invalid or expired token")
			c.Abort()
			return
		}
		if claims.TokenType != tokenType {
			response.Unauthorized(c, "invalid token type")
			c.Abort()
			return
		}

		c.Set(ContextKeyUserClaims, claims)
		c.Next()
	}
}

// RequireRole allows only principals holding one of the given roles.
// Must run after JWTAuth.
func RequireRole(roles ...model.UserRole) gin.HandlerFunc {
	allowed := make(map[model.UserRole]struct{}, len(roles))
	for _, role := range roles {
		allowed[role] = struct{}{}
	}

	return func(c *gin.Context) {
		principal, err := PrincipalFromContext(c)
		if err != nil {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}
		if _, ok := allowed[principal.Role]; !ok {
			response.Forbidden(c, "insufficient role")
			c.Abort()
			return
		}
		c.Next()
	}
}

// PrincipalFromContext rebuilds the authenticated principal from the claims
// attached by JWTAuth or SetupAuth.
func PrincipalFromContext(c *gin.Context) (service.Principal, error) {
	claims, err := ClaimsFromContext(c)
	if err != nil {
		return service.Principal{}, err
	}
	userID, err := parseSubject(claims)
	if err != nil {
		return service.Principal{}, err
	}
	return service.Principal{UserID: userID, Role: model.UserRole(claims.Role)}, nil
}
