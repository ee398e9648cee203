package auth

import (
	"errors"
	"net/http"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// StaffMiddleware lets only staff accounts through. Behind AuthMiddleware it
// reuses the stored user ID; on its own it reads the bearer token itself.
func StaffMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessionUser(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		var user models.User
		err := database.DB.Select("id", "is_staff").First(&user, userID).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account no longer exists"})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
			return
		case !user.IsStaff:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Staff access required"})
			return
		}

		c.Set("userID", user.ID)
		c.Next()
	}
}

// sessionUser returns the user set by AuthMiddleware, or the one named by a
// valid session token.
func sessionUser(c *gin.Context) (uint, bool) {
	if id, ok := c.Get("userID"); ok {
		return id.(uint), true
	}
	tokenString, ok := bearerToken(c)
	if !ok {
		return 0, false
	}
	userID, err := jwt.ParseToken(tokenString, jwt.PurposeSession)
	if err != nil {
		return 0, false
	}
	return userID, true
}
