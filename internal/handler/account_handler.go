package handler

import (
	"crypto/sha256"
	"encoding/hex"
	"log"
	"net/http"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// ChangePasswordInput is the body of PUT /users/me/password.
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required" example:"password123"`
	NewPassword string `json:"new_password" binding:"required,min=8" example:"password456"`
}

// PasswordResetInput asks for a reset token for an account.
type PasswordResetInput struct {
	Email string `json:"email" binding:"required,email" example:"test@example.com"`
}

// PasswordResetResponse carries the reset token when the account exists.
type PasswordResetResponse struct {
	Message    string `json:"message"`
	ResetToken string `json:"reset_token,omitempty"`
}

// PasswordResetConfirmInput sets a new password with a reset token.
type PasswordResetConfirmInput struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8" example:"password456"`
}

// EmailChangeInput is the body of PUT /users/me/email.
type EmailChangeInput struct {
	Email string `json:"email" binding:"required,email" example:"new@example.com"`
}

// EmailChangeResponse carries the token that confirms the new address.
type EmailChangeResponse struct {
	Message      string `json:"message"`
	ConfirmToken string `json:"confirm_token"`
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Replaces the authenticated user's password after checking the current one.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ChangePasswordInput true "Passwords"
// @Success      200  {object}  map[string]string "{"message": "Password changed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /users/me/password [put]
func ChangePassword(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, viewerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.OldPassword)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		return
	}

	if !setPassword(c, &user, input.NewPassword) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// RequestPasswordReset godoc
// @Summary      Request a password reset
// @Description  Issues a reset token for the active account with this email. The answer looks the same whether or not such an account exists, except for the token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body PasswordResetInput true "Account email"
// @Success      200  {object}  PasswordResetResponse
// @Failure      400  {object}  ErrorResponse
// @Router       /auth/password-reset [post]
func RequestPasswordReset(c *gin.Context) {
	var input PasswordResetInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp := PasswordResetResponse{Message: "If the account exists, a reset link has been issued"}

	var user models.User
	if err := database.DB.Where("email = ? AND is_active = ?", input.Email, true).First(&user).Error; err != nil {
		c.JSON(http.StatusOK, resp)
		return
	}

	token, err := jwt.GenerateResetToken(user.ID, passwordStamp(user.PasswordHash))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	log.Printf("user %d requested a password reset", user.ID)

	resp.ResetToken = token
	c.JSON(http.StatusOK, resp)
}

// ConfirmPasswordReset godoc
// @Summary      Set a new password with a reset token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body PasswordResetConfirmInput true "Token and new password"
// @Success      200  {object}  map[string]string "{"message": "Password changed"}"
// @Failure      400  {object}  ErrorResponse
// @Router       /auth/password-reset/confirm [post]
func ConfirmPasswordReset(c *gin.Context) {
	var input PasswordResetConfirmInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	claims, err := jwt.ParseClaims(input.Token, jwt.PurposeReset)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, claims.UserID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}
	// The stamp changes with the password, so each token works once.
	if claims.Stamp != passwordStamp(user.PasswordHash) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired reset token"})
		return
	}

	if !setPassword(c, &user, input.NewPassword) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}

// RequestEmailChange godoc
// @Summary      Request an email change
// @Description  Issues the token that confirms the new address. The address is not changed until the token is used.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body EmailChangeInput true "New email"
// @Success      202  {object}  EmailChangeResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Email taken"
// @Router       /users/me/email [put]
func RequestEmailChange(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)

	var input EmailChangeInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if emailTaken(input.Email, viewerID) {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		return
	}

	token, err := jwt.GenerateEmailChangeToken(viewerID, input.Email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	log.Printf("user %d requested an email change, confirm path /api/v1/users/me/email/confirm/%s", viewerID, token)

	c.JSON(http.StatusAccepted, EmailChangeResponse{Message: "Confirm the new address to finish", ConfirmToken: token})
}

// ConfirmEmailChange godoc
// @Summary      Confirm an email change
// @Description  Switches the authenticated user to the address the token was issued for. Inactive accounts still holding that address are removed.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        token  path      string  true  "Email change token"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Email taken"
// @Router       /users/me/email/confirm/{token} [get]
func ConfirmEmailChange(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)

	claims, err := jwt.ParseClaims(c.Param("token"), jwt.PurposeEmail)
	if err != nil || claims.UserID != viewerID || claims.Email == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired email change token"})
		return
	}
	if emailTaken(claims.Email, viewerID) {
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, viewerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	// Registrations that were never activated give the address up.
	if err := database.DB.Unscoped().Where("email = ? AND is_active = ? AND id <> ?", claims.Email, false, viewerID).Delete(&models.User{}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change email"})
		return
	}
	if err := database.DB.Model(&user).Update("email", claims.Email).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to change email"})
		return
	}
	user.Email = claims.Email

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// setPassword hashes and stores password, writing the error response itself.
func setPassword(c *gin.Context, user *models.User, password string) bool {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return false
	}
	if err := database.DB.Model(user).Update("password_hash", string(hashed)).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save password"})
		return false
	}
	user.PasswordHash = string(hashed)
	return true
}

// emailTaken reports whether an active account other than userID uses email.
func emailTaken(email string, userID uint) bool {
	var n int64
	database.DB.Model(&models.User{}).Where("email = ? AND is_active = ? AND id <> ?", email, true, userID).Count(&n)
	return n > 0
}

// passwordStamp identifies the current password hash without exposing it.
func passwordStamp(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}
