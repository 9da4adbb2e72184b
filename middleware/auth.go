package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/hermione06/cafeteria-management-system/auth"
	"github.com/hermione06/cafeteria-management-system/models"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type Claims struct {
	UserID    uint            `json:"user_id"`
	Username  string          `json:"username"`
	Role      models.UserRole `json:"role"`
	TokenType string          `json:"token_type"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a short-lived signed JWT for API calls.
func GenerateAccessToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	return generateToken(user, TokenTypeAccess, secret, ttl)
}

// GenerateRefreshToken creates a long-lived signed JWT that can only be
// exchanged for a new access token.
func GenerateRefreshToken(user *models.User, secret string, ttl time.Duration) (string, error) {
	return generateToken(user, TokenTypeRefresh, secret, ttl)
}

func generateToken(user *models.User, tokenType, secret string, ttl time.Duration) (string, error) {
	claims := Claims{
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates a signed JWT and returns its claims.
func ParseToken(tokenStr, secret string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenUnverifiable
	}
	return claims, nil
}

// AuthRequired validates the bearer token and injects claims into the
// request context. Refresh tokens are rejected here: they only work on
// the token refresh endpoint.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, secret)
		if !ok {
			return
		}
		if claims.TokenType != TokenTypeAccess {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Access token required"})
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

// RefreshRequired validates a refresh token for the token exchange
// endpoint.
func RefreshRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := bearerClaims(c, secret)
		if !ok {
			return
		}
		if claims.TokenType != TokenTypeRefresh {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Refresh token required"})
			c.Abort()
			return
		}
		setClaims(c, claims)
		c.Next()
	}
}

func bearerClaims(c *gin.Context, secret string) (*Claims, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required (Bearer <token>)"})
		c.Abort()
		return nil, false
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	claims, err := ParseToken(tokenStr, secret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired token"})
		c.Abort()
		return nil, false
	}
	return claims, true
}

func setClaims(c *gin.Context, claims *Claims) {
	c.Set("userID", claims.UserID)
	c.Set("username", claims.Username)
	c.Set("role", string(claims.Role))
}

// RoleRequired enforces that the caller has one of the allowed roles.
func RoleRequired(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleVal, exists := c.Get("role")
		if !exists {
			c.JSON(http.StatusForbidden, gin.H{"error": "Role not found in context"})
			c.Abort()
			return
		}
		callerRole := models.UserRole(roleVal.(string))
		for _, r := range roles {
			if callerRole == r {
				c.Next()
				return
			}
		}
		c.JSON(http.StatusForbidden, gin.H{
			"error": "Access denied. Required role(s): " + rolesString(roles),
		})
		c.Abort()
	}
}

func rolesString(roles []models.UserRole) string {
	s := ""
	for i, r := range roles {
		if i > 0 {
			s += ", "
		}
		s += string(r)
	}
	return s
}

// GetAuthContext builds the caller identity used by the service layer.
func GetAuthContext(c *gin.Context) auth.Context {
	return auth.Context{UserID: GetUserID(c), Role: GetRole(c)}
}

// GetUserID extracts the caller user ID from context.
func GetUserID(c *gin.Context) uint {
	val, _ := c.Get("userID")
	id, _ := val.(uint)
	return id
}

// GetRole extracts the caller role from context.
func GetRole(c *gin.Context) models.UserRole {
	val, _ := c.Get("role")
	role, _ := val.(string)
	return models.UserRole(role)
}
