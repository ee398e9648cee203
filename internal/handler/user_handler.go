package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/intimate"
	"socialnet/backend/internal/models"
	"socialnet/backend/pkg/jwt"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// region --- DTOs ---

// RegisterInput defines the structure for user registration.
type RegisterInput struct {
	Email       string `json:"email" binding:"required,email" example:"test@example.com"`
	AccountName string `json:"account_name" binding:"required,max=30" example:"testuser"`
	Password    string `json:"password" binding:"required,min=8" example:"password123"`
}

// RegisterResponse is returned after a successful registration. The
// activation token has to be sent to GET /auth/activate/{token}.
type RegisterResponse struct {
	ID              uint   `json:"id" example:"1"`
	ActivationToken string `json:"activation_token"`
}

// LoginInput defines the structure for user login.
type LoginInput struct {
	Login    string `json:"login" binding:"required" example:"testuser"`
	Password string `json:"password" binding:"required" example:"password123"`
}

// UpdateProfileInput defines the editable profile fields.
type UpdateProfileInput struct {
	AccountName string `json:"account_name" binding:"required,max=30" example:"testuser"`
	FirstName   string `json:"first_name" binding:"max=30" example:"Taro"`
	LastName    string `json:"last_name" binding:"max=150" example:"Yamada"`
	Job         string `json:"job" binding:"max=30" example:"engineer"`
}

// IntimateStatusResponse describes the intimate relation between the viewer
// and the profile being viewed.
type IntimateStatusResponse struct {
	RequestDone bool `json:"request_done"` // the viewer has asked the target
	Incoming    bool `json:"incoming"`     // the target has asked the viewer
	Accepted    bool `json:"accepted"`
	Rejected    bool `json:"rejected"`
}

// PublicUserResponse defines the structure for a user's public profile.
type PublicUserResponse struct {
	ID             uint                    `json:"id" example:"1"`
	AccountName    string                  `json:"account_name" example:"testuser"`
	FullName       string                  `json:"full_name" example:"Taro Yamada"`
	Job            string                  `json:"job" example:"engineer"`
	ImageURL       string                  `json:"image_url" example:"/api/v1/users/1/image"`
	FollowsCount   int64                   `json:"follows_count"`
	FollowersCount int64                   `json:"followers_count"`
	IsFollowing    bool                    `json:"is_following"`
	Intimate       *IntimateStatusResponse `json:"intimate,omitempty"`
}

// PrivateUserResponse defines the structure for the authenticated user's own profile.
type PrivateUserResponse struct {
	ID             uint      `json:"id" example:"1"`
	Email          string    `json:"email" example:"test@example.com"`
	AccountName    string    `json:"account_name" example:"testuser"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	Job            string    `json:"job"`
	ImageKey       string    `json:"image_key"`
	ImageURL       string    `json:"image_url"`
	DateJoined     time.Time `json:"date_joined"`
	FollowsCount   int64     `json:"follows_count"`
	FollowersCount int64     `json:"followers_count"`
}

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// endregion

// region --- Auth Handlers ---

// RegisterUser godoc
// @Summary      Register a new user
// @Description  Creates an inactive user and returns the token needed to activate it.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body RegisterInput true "Registration Info"
// @Success      201  {object}  RegisterResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /auth/register [post]
func RegisterUser(c *gin.Context) {
	var input RegisterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var existingUser models.User
	if err := database.DB.Where("email = ? OR account_name = ?", input.Email, input.AccountName).First(&existingUser).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Email or account name already exists"})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	user := models.User{
		Email:        input.Email,
		AccountName:  input.AccountName,
		ImageKey:     models.DefaultImageKey,
		PasswordHash: string(hashedPassword),
		IsActive:     false,
		DateJoined:   time.Now(),
	}
	if err := database.DB.Create(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}

	token, err := jwt.GenerateActivationToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}
	log.Printf("user %d registered, activation path /api/v1/auth/activate/%s", user.ID, token)

	c.JSON(http.StatusCreated, RegisterResponse{ID: user.ID, ActivationToken: token})
}

// ActivateUser godoc
// @Summary      Activate a registered user
// @Description  Activates the account the token was issued for.
// @Tags         auth
// @Produce      json
// @Param        token  path      string  true  "Activation token"
// @Success      200  {object}  map[string]string "{"message": "Account activated"}"
// @Failure      400  {object}  ErrorResponse
// @Router       /auth/activate/{token} [get]
func ActivateUser(c *gin.Context) {
	userID, err := jwt.ParseToken(c.Param("token"), jwt.PurposeActivate)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired activation token"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid or expired activation token"})
		return
	}
	if user.IsActive {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Account already active"})
		return
	}

	if err := database.DB.Model(&user).Update("is_active", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to activate account"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account activated"})
}

// LoginUser godoc
// @Summary      Log in a user
// @Description  Authenticates a user with email/account name and password, and returns a new token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        input body LoginInput true "Login Info"
// @Success      200  {object}  map[string]string "{"token": "..."}"
// @Failure      400  {object}  ErrorResponse "Invalid input"
// @Failure      401  {object}  ErrorResponse "Invalid credentials"
// @Failure      403  {object}  ErrorResponse "Account not activated"
// @Failure      500  {object}  ErrorResponse "Internal server error"
// @Router       /auth/login [post]
func LoginUser(c *gin.Context) {
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.Where("email = ? OR account_name = ?", input.Login, input.Login).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !user.IsActive {
		c.JSON(http.StatusForbidden, gin.H{"error": "Account not activated"})
		return
	}

	token, err := jwt.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token})
}

// endregion

// region --- User Handlers ---

// UserHandler serves the profile endpoints that show the viewer's relation
// to other users.
type UserHandler struct {
	Intimates *intimate.Manager
}

// SearchUsers godoc
// @Summary      Search for users
// @Description  Searches for active users by account name with pagination.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        q     query     string  false  "Search query for account name"
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[PublicUserResponse]
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /users [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	searchQuery := c.Query("q")
	page, limit := pageParams(c)

	// Don't show the viewer in the search results
	query := database.DB.Where("id <> ? AND is_active = ?", viewerID, true).Order("account_name")
	if searchQuery != "" {
		query = query.Where("LOWER(account_name) LIKE LOWER(?)", "%"+searchQuery+"%")
	}

	users, err := Paginate[models.User](query, page, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}

	c.JSON(http.StatusOK, mapPage(users, func(u models.User) PublicUserResponse {
		return h.buildPublicUserResponse(c.Request.Context(), u, viewerID)
	}))
}

// GetUserByID godoc
// @Summary      Get user by ID
// @Description  Retrieves the public profile for a specific user, including follow and intimate status.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  PublicUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/{id} [get]
func (h *UserHandler) GetUserByID(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	targetUserID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// If target is the same as viewer, redirect to /me
	if viewerID == targetUserID {
		GetMe(c)
		return
	}

	var targetUser models.User
	if err := database.DB.First(&targetUser, targetUserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, h.buildPublicUserResponse(c.Request.Context(), targetUser, viewerID))
}

// GetMe godoc
// @Summary      Get current user's info
// @Description  Retrieves the private profile for the currently authenticated user.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /users/me [get]
func GetMe(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)

	var user models.User
	if err := database.DB.First(&user, viewerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// UpdateMe godoc
// @Summary      Update current user's profile
// @Description  Updates the account name, names and job of the authenticated user.
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body UpdateProfileInput true "Profile"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      409  {object}  ErrorResponse "Account name taken"
// @Router       /users/me [put]
func UpdateMe(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)

	var input UpdateProfileInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var taken int64
	database.DB.Model(&models.User{}).Where("account_name = ? AND id <> ?", input.AccountName, viewerID).Count(&taken)
	if taken > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "Account name already exists"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, viewerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	err := database.DB.Model(&user).Updates(map[string]any{
		"account_name": input.AccountName,
		"first_name":   input.FirstName,
		"last_name":    input.LastName,
		"job":          input.Job,
	}).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update profile"})
		return
	}
	user.AccountName = input.AccountName
	user.FirstName = input.FirstName
	user.LastName = input.LastName
	user.Job = input.Job

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// endregion

// region --- Helpers ---

// parseIDParam reads a numeric path parameter and writes a 400 if it is not one.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func followCounts(userID uint) (follows, followers int64) {
	database.DB.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&follows)
	database.DB.Model(&models.Follow{}).Where("followee_id = ?", userID).Count(&followers)
	return follows, followers
}

func (h *UserHandler) buildPublicUserResponse(ctx context.Context, targetUser models.User, viewerID uint) PublicUserResponse {
	followsCount, followersCount := followCounts(targetUser.ID)

	var following int64
	database.DB.Model(&models.Follow{}).Where("follower_id = ? AND followee_id = ?", viewerID, targetUser.ID).Count(&following)

	return PublicUserResponse{
		ID:             targetUser.ID,
		AccountName:    targetUser.DisplayName(),
		FullName:       targetUser.FullName(),
		Job:            targetUser.Job,
		ImageURL:       imageURL(targetUser.ID),
		FollowsCount:   followsCount,
		FollowersCount: followersCount,
		IsFollowing:    following > 0,
		Intimate:       h.intimateStatus(ctx, viewerID, targetUser.ID),
	}
}

// intimateStatus is nil when the viewer looks at their own profile or the
// status could not be read.
func (h *UserHandler) intimateStatus(ctx context.Context, viewerID, targetID uint) *IntimateStatusResponse {
	if viewerID == 0 || viewerID == targetID {
		return nil
	}

	rec, err := h.Intimates.Between(ctx, viewerID, targetID)
	if errors.Is(err, intimate.ErrNotFound) {
		return &IntimateStatusResponse{}
	}
	if err != nil {
		log.Printf("intimate status %d->%d: %v", viewerID, targetID, err)
		return nil
	}

	return &IntimateStatusResponse{
		RequestDone: rec.SenderID == viewerID && rec.Request,
		Incoming:    rec.SenderID == targetID && rec.Request,
		Accepted:    rec.Accepted(),
		Rejected:    rec.Reject,
	}
}

func buildPrivateUserResponse(user models.User) PrivateUserResponse {
	followsCount, followersCount := followCounts(user.ID)

	return PrivateUserResponse{
		ID:             user.ID,
		Email:          user.Email,
		AccountName:    user.AccountName,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Job:            user.Job,
		ImageKey:       user.ImageKey,
		ImageURL:       imageURL(user.ID),
		DateJoined:     user.DateJoined,
		FollowsCount:   followsCount,
		FollowersCount: followersCount,
	}
}

// endregion
