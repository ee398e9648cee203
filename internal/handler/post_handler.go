package handler

import (
	"errors"
	"net/http"
	"time"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// PostInput is the body for creating or editing a post.
type PostInput struct {
	Content string `json:"content" binding:"required,max=1000" example:"Hello"`
}

// CommentInput is the body for commenting on a post.
type CommentInput struct {
	Content string `json:"content" binding:"required,max=150" example:"Nice"`
}

// AuthorResponse is the compact user shown next to content.
type AuthorResponse struct {
	ID          uint   `json:"id"`
	AccountName string `json:"account_name"`
	ImageURL    string `json:"image_url"`
}

// CommentResponse is a single comment.
type CommentResponse struct {
	ID        uint           `json:"id"`
	Author    AuthorResponse `json:"author"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

// PostResponse is a post with its comments, when loaded.
type PostResponse struct {
	ID        uint              `json:"id"`
	Author    AuthorResponse    `json:"author"`
	Content   string            `json:"content"`
	Likes     int               `json:"likes"`
	Dislikes  int               `json:"dislikes"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Comments  []CommentResponse `json:"comments,omitempty"`
}

// GetFeed godoc
// @Summary      Home feed
// @Description  Posts by the authenticated user and the users they follow, newest first.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[PostResponse]
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /posts [get]
func GetFeed(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	page, limit := pageParams(c)

	followees := database.DB.Model(&models.Follow{}).Select("followee_id").Where("follower_id = ?", viewerID)
	query := database.DB.
		Where("author_id = ? OR author_id IN (?)", viewerID, followees).
		Order("created_at DESC, id DESC")

	posts, err := Paginate[models.Post](query, page, limit, "Author")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch feed"})
		return
	}

	c.JSON(http.StatusOK, mapPage(posts, buildPostResponse))
}

// CreatePost godoc
// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body PostInput true "Post"
// @Success      201  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      500  {object}  ErrorResponse
// @Router       /posts [post]
func CreatePost(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)

	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	post := models.Post{AuthorID: viewerID, Content: input.Content}
	if err := database.DB.Create(&post).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create post"})
		return
	}
	database.DB.First(&post.Author, viewerID)

	c.JSON(http.StatusCreated, buildPostResponse(post))
}

// UpdatePost godoc
// @Summary      Edit a post
// @Description  Only the author can edit a post.
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int        true  "Post ID"
// @Param        input body      PostInput  true  "Post"
// @Success      200  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [put]
func UpdatePost(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input PostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := database.DB.Preload("Author").First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if post.AuthorID != viewerID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Only the author can edit this post"})
		return
	}

	if err := database.DB.Model(&post).Update("content", input.Content).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update post"})
		return
	}
	post.Content = input.Content

	c.JSON(http.StatusOK, buildPostResponse(post))
}

// GetPost godoc
// @Summary      Get a post
// @Description  Returns a post with its comments, oldest comment first.
// @Tags         posts
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Post ID"
// @Success      200  {object}  PostResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id} [get]
func GetPost(c *gin.Context) {
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var post models.Post
	err := database.DB.
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Comments.Author").
		First(&post, postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch post"})
		return
	}

	c.JSON(http.StatusOK, buildPostResponse(post))
}

// CreateComment godoc
// @Summary      Comment on a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int           true  "Post ID"
// @Param        input body      CommentInput  true  "Comment"
// @Success      201  {object}  CommentResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /posts/{id}/comments [post]
func CreateComment(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	postID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input CommentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var post models.Post
	if err := database.DB.Select("id").First(&post, postID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Post not found"})
		return
	}

	comment := models.Comment{PostID: post.ID, AuthorID: viewerID, Content: input.Content}
	if err := database.DB.Create(&comment).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create comment"})
		return
	}
	database.DB.First(&comment.Author, viewerID)

	c.JSON(http.StatusCreated, buildCommentResponse(comment))
}

func buildAuthorResponse(u models.User) AuthorResponse {
	return AuthorResponse{ID: u.ID, AccountName: u.DisplayName(), ImageURL: imageURL(u.ID)}
}

func buildCommentResponse(cm models.Comment) CommentResponse {
	return CommentResponse{
		ID:        cm.ID,
		Author:    buildAuthorResponse(cm.Author),
		Content:   cm.Content,
		CreatedAt: cm.CreatedAt,
	}
}

func buildPostResponse(p models.Post) PostResponse {
	resp := PostResponse{
		ID:        p.ID,
		Author:    buildAuthorResponse(p.Author),
		Content:   p.Content,
		Likes:     p.Likes,
		Dislikes:  p.Dislikes,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	for _, cm := range p.Comments {
		resp.Comments = append(resp.Comments, buildCommentResponse(cm))
	}
	return resp
}
