package handler

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"
	"socialnet/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

const (
	maxImageSize  = 5 << 20
	imageURLTTL   = 15 * time.Minute
	imageFormName = "image"
)

// ImageStore is where profile pictures are kept.
type ImageStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Remove(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (*url.URL, error)
}

// ImageHandler serves profile pictures. With a nil Store every endpoint
// answers 503.
type ImageHandler struct {
	Store ImageStore
}

// imageURL is the API path that redirects to the picture of userID.
func imageURL(userID uint) string {
	return fmt.Sprintf("/api/v1/users/%d/image", userID)
}

// UploadImage godoc
// @Summary      Upload profile picture
// @Description  Replaces the authenticated user's picture. Only jpg, jpeg and png files are accepted.
// @Tags         users
// @Accept       multipart/form-data
// @Produce      json
// @Security     BearerAuth
// @Param        image formData  file  true  "Picture"
// @Success      200  {object}  PrivateUserResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /users/me/image [put]
func (h *ImageHandler) UploadImage(c *gin.Context) {
	if !h.available(c) {
		return
	}
	viewerID := c.MustGet("userID").(uint)

	file, err := c.FormFile(imageFormName)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "An 'image' file is required"})
		return
	}
	if file.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image is too large"})
		return
	}

	var user models.User
	if err := database.DB.First(&user, viewerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	contentType, err := storage.ImageContentType(file.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only jpg, jpeg and png images are allowed"})
		return
	}
	key, err := storage.ImageKey(user.ID, user.AccountName, file.Filename, time.Now())
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	defer f.Close()

	ctx := c.Request.Context()
	if err := h.Store.Put(ctx, key, contentType, f, file.Size); err != nil {
		log.Printf("image upload for user %d: %v", viewerID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to store image"})
		return
	}

	oldKey := user.ImageKey
	if err := database.DB.Model(&user).Update("image_key", key).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save image"})
		return
	}
	user.ImageKey = key
	h.removeOld(ctx, oldKey)

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// DeleteImage godoc
// @Summary      Remove profile picture
// @Description  Resets the authenticated user's picture to the default one.
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  PrivateUserResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /users/me/image [delete]
func (h *ImageHandler) DeleteImage(c *gin.Context) {
	if !h.available(c) {
		return
	}
	viewerID := c.MustGet("userID").(uint)

	var user models.User
	if err := database.DB.First(&user, viewerID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	oldKey := user.ImageKey
	if err := database.DB.Model(&user).Update("image_key", models.DefaultImageKey).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reset image"})
		return
	}
	user.ImageKey = models.DefaultImageKey
	h.removeOld(c.Request.Context(), oldKey)

	c.JSON(http.StatusOK, buildPrivateUserResponse(user))
}

// GetImage godoc
// @Summary      Get profile picture
// @Description  Redirects to a short-lived download URL of the user's picture.
// @Tags         users
// @Param        id   path      int  true  "User ID"
// @Success      302
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      503  {object}  ErrorResponse
// @Router       /users/{id}/image [get]
func (h *ImageHandler) GetImage(c *gin.Context) {
	if !h.available(c) {
		return
	}
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var user models.User
	if err := database.DB.Select("id", "image_key").First(&user, userID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	u, err := h.Store.PresignGet(c.Request.Context(), user.ImageKey, imageURLTTL)
	if err != nil {
		log.Printf("presign %s: %v", user.ImageKey, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to get image"})
		return
	}

	c.Redirect(http.StatusFound, u.String())
}

func (h *ImageHandler) available(c *gin.Context) bool {
	if h.Store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Image storage is not configured"})
		return false
	}
	return true
}

// removeOld deletes a replaced picture. The default picture is shared and
// never removed.
func (h *ImageHandler) removeOld(ctx context.Context, key string) {
	if key == "" || key == models.DefaultImageKey {
		return
	}
	if err := h.Store.Remove(ctx, key); err != nil {
		log.Printf("remove old image %s: %v", key, err)
	}
}
