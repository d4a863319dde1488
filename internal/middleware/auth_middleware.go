package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/nishmithavg/eventease/internal/helpers"
	"github.com/nishmithavg/eventease/internal/models"
)

const userContextKey = "current_user"

// CurrentUser returns the user attached by RequireAuth or OptionalAuth.
// The second result is false for anonymous callers.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	value, exists := c.Get(userContextKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*models.User)
	return user, ok
}

func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

func resolveUser(c *gin.Context) (*models.User, int, string) {
	if os.Getenv("JWT_SECRET") == "" {
		return nil, http.StatusInternalServerError, "JWT_SECRET is not configured."
	}

	tokenString := bearerToken(c)
	if tokenString == "" {
		return nil, http.StatusUnauthorized, "No token provided."
	}

	userID, err := helpers.ParseToken(tokenString)
	if err != nil {
		return nil, http.StatusUnauthorized, "Invalid or expired token."
	}

	db := GetDB(c)
	if db == nil {
		return nil, http.StatusInternalServerError, "Database connection not found."
	}

	var user models.User
	if err := db.Where("id = ?", userID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, http.StatusNotFound, "User not found."
		}
		return nil, http.StatusInternalServerError, "Error retrieving user."
	}

	if user.IsBlocked {
		return nil, http.StatusForbidden, "User account is blocked."
	}

	return &user, 0, ""
}

// RequireAuth verifies the bearer token, resolves the user and attaches
// it to the request context.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, status, message := resolveUser(c)
		if user == nil {
			helpers.RespondWithError(c, status, message)
			c.Abort()
			return
		}
		c.Set(userContextKey, user)
		c.Next()
	}
}

// OptionalAuth runs the same checks as RequireAuth but lets the request
// through anonymously when any of them fail. Used where authenticated
// and anonymous callers see different results, e.g. block-aware listing.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, _, _ := resolveUser(c)
		if user != nil {
			c.Set(userContextKey, user)
		}
		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || user.Role != models.RoleAdmin {
			helpers.RespondWithError(c, http.StatusForbidden, "Admin access required.")
			c.Abort()
			return
		}
		c.Next()
	}
}

func OrganizerOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok || user.Role != models.RoleOrganizer {
			helpers.RespondWithError(c, http.StatusForbidden, "Organizer access required.")
			c.Abort()
			return
		}
		c.Next()
	}
}
