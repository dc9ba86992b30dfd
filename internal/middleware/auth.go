package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"gorm.io/gorm"
)

// Context key under which the resolved user is stored.
const userContextKey = "currentUser"

// GetJWTSecret returns the shared secret used to verify identity tokens.
func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// Authenticate verifies the bearer identity token and resolves the verified
// email to a registered user. Resolution is fail-closed: a valid token for
// an unregistered email is rejected — users are provisioned by an
// administrator, never on first sight.
//
// On success the user's name is synced from the token and an empty division
// is defaulted, then the user is stored in the gin context.
func Authenticate(users repository.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := extractToken(c)
		if !ok {
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		email, _ := claims["email"].(string)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Token missing email"))
			return
		}

		// The provider may not include a display name — fall back to the
		// email prefix.
		name, _ := claims["name"].(string)
		if name == "" {
			name = strings.SplitN(email, "@", 2)[0]
		}

		user, err := users.GetByEmail(c.Request.Context(), email)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden,
					"User is not registered in the system. Please contact the administrator."))
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to resolve user"))
			return
		}

		// Keep the registry in sync with the identity provider.
		dirty := false
		if user.Name != name {
			user.Name = name
			dirty = true
		}
		if strings.TrimSpace(user.Division) == "" {
			user.Division = model.DefaultDivision
			dirty = true
		}
		if dirty {
			if err := users.Update(c.Request.Context(), user); err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Failed to sync user"))
				return
			}
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// RequireAdmin rejects requests from non-admin users. Must run after
// Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authentication required"))
			return
		}
		if user.Role != model.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "Admin access required"))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user resolved by Authenticate.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}

// extractToken pulls the bearer token from the cookie or the Authorization
// header, aborting with 401 when absent or malformed.
func extractToken(c *gin.Context) (string, bool) {
	if tokenString, err := c.Cookie("access_token"); err == nil && tokenString != "" {
		return tokenString, true
	}

	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
		return "", false
	}
	return parts[1], true
}
