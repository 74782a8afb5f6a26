package middleware

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/teashop-backend/internal/app/model"
	"github.com/ikkim/teashop-backend/internal/app/service"
	"github.com/ikkim/teashop-backend/internal/errors"
	"github.com/ikkim/teashop-backend/pkg/util"
)

// Context keys for user information
const (
	PrincipalKey = "principal"
	UserIDKey    = "user_id"
	UsernameKey  = "username"
	UserRoleKey  = "user_role"
	TokenKey     = "token"
)

// Principal is the authenticated caller.
type Principal struct {
	UserID   uint
	Username string
	Role     model.UserRole
}

// Authorize is the explicit role check. A nil principal is unauthenticated.
func Authorize(p *Principal, required model.UserRole) error {
	if p == nil {
		return service.ErrUnauthenticated
	}
	if required != "" && p.Role != required {
		return service.ErrForbidden
	}
	return nil
}

// RevocationChecker reports whether a token was revoked at logout.
type RevocationChecker interface {
	IsRevoked(ctx context.Context, token string) (bool, error)
}

type AuthMiddleware struct {
	jwtSecret string
	revoked   RevocationChecker
}

// NewAuthMiddleware builds the JWT middleware. revoked may be nil.
func NewAuthMiddleware(jwtSecret string, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		revoked:   revoked,
	}
}

// bearerToken reads "Authorization: Bearer <token>". ok is false when the
// header is present but malformed.
func bearerToken(c *gin.Context) (token string, ok bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", true
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate validates the access token (required). Browsers cannot set
// headers on a websocket upgrade, so ?token= is accepted as a fallback.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := bearerToken(c)
		if !ok {
			log.Warn("Invalid authorization header format", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Malformed authorization header")
			return
		}
		if token == "" {
			token = c.Query("token")
		}
		if token == "" {
			log.Warn("Missing authorization header", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "Login required")
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Warn("Token validation failed", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			switch {
			case stderrors.Is(err, util.ErrExpiredToken):
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenExpired, "Session has expired")
			case stderrors.Is(err, service.ErrTokenRevoked):
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenRevoked, "Session has been logged out")
			default:
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthTokenInvalid, "Invalid authentication token")
			}
			return
		}

		setPrincipal(c, claims, token)

		log.Debug("User authenticated successfully", map[string]interface{}{
			"user_id": claims.UserID,
			"role":    claims.Role,
		})
		c.Next()
	}
}

// OptionalAuthenticate attaches the principal when a valid token is present
// and otherwise lets the request through as a guest.
func (m *AuthMiddleware) OptionalAuthenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)

		token, ok := bearerToken(c)
		if !ok || token == "" {
			log.Debug("No usable authorization header - continuing as guest", map[string]interface{}{
				"path": c.Request.URL.Path,
			})
			c.Next()
			return
		}

		claims, err := m.verify(c, token)
		if err != nil {
			log.Debug("Token validation failed - continuing as guest", map[string]interface{}{
				"path":  c.Request.URL.Path,
				"error": err.Error(),
			})
			c.Next()
			return
		}

		setPrincipal(c, claims, token)
		c.Next()
	}
}

func (m *AuthMiddleware) verify(c *gin.Context, token string) (*util.Claims, error) {
	claims, err := util.ValidateToken(token, m.jwtSecret)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != util.TokenTypeAccess {
		return nil, util.ErrInvalidToken
	}

	if m.revoked != nil {
		revoked, err := m.revoked.IsRevoked(c.Request.Context(), token)
		if err != nil {
			// Redis outage: accept the signed token rather than lock everyone out.
			GetLoggerFromContext(c).Error("Failed to check token blacklist", err)
		} else if revoked {
			return nil, service.ErrTokenRevoked
		}
	}
	return claims, nil
}

func setPrincipal(c *gin.Context, claims *util.Claims, token string) {
	p := &Principal{
		UserID:   claims.UserID,
		Username: claims.Username,
		Role:     model.UserRole(claims.Role),
	}
	c.Set(PrincipalKey, p)
	c.Set(UserIDKey, p.UserID)
	c.Set(UsernameKey, p.Username)
	c.Set(UserRoleKey, p.Role)
	c.Set(TokenKey, token)
}

// RequireRole rejects callers whose role is not role. It must run after Authenticate.
func (m *AuthMiddleware) RequireRole(role model.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		log := GetLoggerFromContext(c)
		p, _ := GetPrincipal(c)

		if err := Authorize(p, role); err != nil {
			if stderrors.Is(err, service.ErrUnauthenticated) {
				errors.AbortWithError(c, http.StatusUnauthorized, errors.AuthUnauthorized, "Login required")
				return
			}
			log.Warn("Insufficient permissions", map[string]interface{}{
				"user_id":       p.UserID,
				"user_role":     p.Role,
				"required_role": role,
				"path":          c.Request.URL.Path,
			})
			errors.AbortWithError(c, http.StatusForbidden, errors.AuthzAdminOnly, "You do not have access to this resource")
			return
		}
		c.Next()
	}
}

// GetPrincipal extracts the authenticated caller from context
func GetPrincipal(c *gin.Context) (*Principal, bool) {
	v, exists := c.Get(PrincipalKey)
	if !exists {
		return nil, false
	}
	p, ok := v.(*Principal)
	return p, ok
}

// GetUserID extracts user ID from context
func GetUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	return userID.(uint), true
}

// OptionalUserID is nil for guests.
func OptionalUserID(c *gin.Context) *uint {
	if id, ok := GetUserID(c); ok {
		return &id
	}
	return nil
}

// GetUserRole extracts user role from context
func GetUserRole(c *gin.Context) (model.UserRole, bool) {
	role, exists := c.Get(UserRoleKey)
	if !exists {
		return "", false
	}
	return role.(model.UserRole), true
}

// GetToken returns the raw access token the request was authenticated with.
func GetToken(c *gin.Context) string {
	return c.GetString(TokenKey)
}
