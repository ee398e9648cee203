package handler

import (
	"net/http"
	"time"

	"socialnet/backend/internal/database"
	"socialnet/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ArticleInput is the body for publishing an article.
type ArticleInput struct {
	Title string `json:"title" binding:"required,max=255" example:"Welcome"`
	Body  string `json:"body" binding:"required" example:"First article"`
}

// ArticleResponse is a published article.
type ArticleResponse struct {
	ID        uint           `json:"id"`
	Author    AuthorResponse `json:"author"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	CreatedAt time.Time      `json:"created_at"`
	Mine      bool           `json:"mine"`
}

// GetArticles godoc
// @Summary      List articles
// @Description  Public. With a token, the viewer's own articles are flagged as mine.
// @Tags         articles
// @Produce      json
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[ArticleResponse]
// @Failure      500   {object}  ErrorResponse
// @Router       /articles [get]
func GetArticles(c *gin.Context) {
	page, limit := pageParams(c)

	query := database.DB.Order("created_at DESC, id DESC")
	articles, err := Paginate[models.Article](query, page, limit, "Author")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch articles"})
		return
	}

	viewerID := c.GetUint("userID")
	c.JSON(http.StatusOK, mapPage(articles, func(a models.Article) ArticleResponse {
		return buildArticleResponse(a, viewerID)
	}))
}

// GetArticle godoc
// @Summary      Get an article
// @Tags         articles
// @Produce      json
// @Param        id   path      int  true  "Article ID"
// @Success      200  {object}  ArticleResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /articles/{id} [get]
func GetArticle(c *gin.Context) {
	articleID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var article models.Article
	if err := database.DB.Preload("Author").First(&article, articleID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Article not found"})
		return
	}

	c.JSON(http.StatusOK, buildArticleResponse(article, c.GetUint("userID")))
}

// CreateArticle godoc
// @Summary      Publish an article
// @Description  Staff only.
// @Tags         articles
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ArticleInput true "Article"
// @Success      201  {object}  ArticleResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      403  {object}  ErrorResponse
// @Router       /articles [post]
func CreateArticle(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)

	var input ArticleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	article := models.Article{AuthorID: viewerID, Title: input.Title, Body: input.Body}
	if err := database.DB.Create(&article).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create article"})
		return
	}
	database.DB.First(&article.Author, viewerID)

	c.JSON(http.StatusCreated, buildArticleResponse(article, viewerID))
}

// buildArticleResponse flags the articles written by viewerID. Anonymous
// viewers have ID 0.
func buildArticleResponse(a models.Article, viewerID uint) ArticleResponse {
	return ArticleResponse{
		ID:        a.ID,
		Author:    buildAuthorResponse(a.Author),
		Title:     a.Title,
		Body:      a.Body,
		CreatedAt: a.CreatedAt,
		Mine:      viewerID != 0 && a.AuthorID == viewerID,
	}
}
