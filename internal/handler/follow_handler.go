package handler

import (
	"net/http"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/clause"
)

// FollowUser godoc
// @Summary      Follow a user
// @Description  Starts following another user. Following twice is a no-op.
// @Tags         follow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      201  {object}  map[string]string "{"message": "Followed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Target user not found"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/follow [post]
func FollowUser(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	targetUserID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if viewerID == targetUserID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot follow yourself"})
		return
	}

	var target models.User
	if err := database.DB.Select("id").First(&target, targetUserID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	follow := models.Follow{FollowerID: viewerID, FolloweeID: targetUserID}
	err := database.DB.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&follow).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to follow user"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Followed"})
}

// UnfollowUser godoc
// @Summary      Unfollow a user
// @Tags         follow
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Target User ID"
// @Success      200  {object}  map[string]string "{"message": "Unfollowed"}"
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "Not following"
// @Failure      500  {object}  ErrorResponse
// @Router       /users/{id}/follow [delete]
func UnfollowUser(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	targetUserID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := database.DB.Where("follower_id = ? AND followee_id = ?", viewerID, targetUserID).Delete(&models.Follow{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to unfollow user"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not following this user"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Unfollowed"})
}

// GetFollows godoc
// @Summary      List followed users
// @Description  Users the authenticated user follows, most recent first.
// @Tags         follow
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[PublicUserResponse]
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /users/me/follows [get]
func (h *UserHandler) GetFollows(c *gin.Context) {
	h.listFollows(c, "follower_id", "Followee")
}

// GetFollowers godoc
// @Summary      List followers
// @Description  Users following the authenticated user, most recent first.
// @Tags         follow
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[PublicUserResponse]
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /users/me/followers [get]
func (h *UserHandler) GetFollowers(c *gin.Context) {
	h.listFollows(c, "followee_id", "Follower")
}

// listFollows pages through Follow rows where column is the viewer and
// returns the user on the other side.
func (h *UserHandler) listFollows(c *gin.Context, column, other string) {
	viewerID := c.MustGet("userID").(uint)
	page, limit := pageParams(c)

	query := database.DB.Where(column+" = ?", viewerID).Order("created_at DESC")
	follows, err := Paginate[models.Follow](query, page, limit, other)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch follows"})
		return
	}

	c.JSON(http.StatusOK, mapPage(follows, func(f models.Follow) PublicUserResponse {
		u := f.Followee
		if other == "Follower" {
			u = f.Follower
		}
		return h.buildPublicUserResponse(c.Request.Context(), u, viewerID)
	}))
}
