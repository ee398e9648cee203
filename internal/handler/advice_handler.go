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

// SeekInput is the body for asking a question.
type SeekInput struct {
	Content string `json:"content" binding:"required,max=1000" example:"How do I ..."`
}

// AdviceInput is the body for answering a question.
type AdviceInput struct {
	Content string `json:"content" binding:"required,max=1000" example:"Try ..."`
}

type AdviceResponse struct {
	ID        uint           `json:"id"`
	Author    AuthorResponse `json:"author"`
	Content   string         `json:"content"`
	CreatedAt time.Time      `json:"created_at"`
}

type SeekResponse struct {
	ID          uint             `json:"id"`
	Author      AuthorResponse   `json:"author"`
	Content     string           `json:"content"`
	CreatedAt   time.Time        `json:"created_at"`
	AdviceCount int              `json:"advice_count"`
	Advices     []AdviceResponse `json:"advices,omitempty"`
}

// GetSeeks godoc
// @Summary      List questions
// @Tags         seeks
// @Produce      json
// @Security     BearerAuth
// @Param        page  query     int     false  "Page number" default(1)
// @Param        limit query     int     false  "Items per page" default(10)
// @Success      200   {object}  PaginatedResponse[SeekResponse]
// @Failure      401   {object}  ErrorResponse
// @Failure      500   {object}  ErrorResponse
// @Router       /seeks [get]
func GetSeeks(c *gin.Context) {
	page, limit := pageParams(c)

	query := database.DB.Order("created_at DESC, id DESC")
	seeks, err := Paginate[models.Seek](query, page, limit, "Author", "Advices")
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch seeks"})
		return
	}

	c.JSON(http.StatusOK, mapPage(seeks, func(s models.Seek) SeekResponse {
		resp := buildSeekResponse(s)
		resp.Advices = nil
		return resp
	}))
}

// GetSeek godoc
// @Summary      Get a question with its advices
// @Tags         seeks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      int  true  "Seek ID"
// @Success      200  {object}  SeekResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /seeks/{id} [get]
func GetSeek(c *gin.Context) {
	seekID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var seek models.Seek
	err := database.DB.
		Preload("Author").
		Preload("Advices", func(db *gorm.DB) *gorm.DB { return db.Order("created_at, id") }).
		Preload("Advices.Author").
		First(&seek, seekID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seek not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch seek"})
		return
	}

	c.JSON(http.StatusOK, buildSeekResponse(seek))
}

// CreateSeek godoc
// @Summary      Ask a question
// @Tags         seeks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body SeekInput true "Question"
// @Success      201  {object}  SeekResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /seeks [post]
func CreateSeek(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)

	var input SeekInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	seek := models.Seek{AuthorID: viewerID, Content: input.Content}
	if err := database.DB.Create(&seek).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create seek"})
		return
	}
	database.DB.First(&seek.Author, viewerID)

	c.JSON(http.StatusCreated, buildSeekResponse(seek))
}

// CreateAdvice godoc
// @Summary      Answer a question
// @Tags         seeks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      int          true  "Seek ID"
// @Param        input body      AdviceInput  true  "Advice"
// @Success      201  {object}  AdviceResponse
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /seeks/{id}/advices [post]
func CreateAdvice(c *gin.Context) {
	viewerID := c.MustGet("userID").(uint)
	seekID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input AdviceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var seek models.Seek
	if err := database.DB.Select("id").First(&seek, seekID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Seek not found"})
		return
	}

	advice := models.Advice{SeekID: seek.ID, AuthorID: viewerID, Content: input.Content}
	if err := database.DB.Create(&advice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create advice"})
		return
	}
	database.DB.First(&advice.Author, viewerID)

	c.JSON(http.StatusCreated, buildAdviceResponse(advice))
}

func buildAdviceResponse(a models.Advice) AdviceResponse {
	return AdviceResponse{
		ID:        a.ID,
		Author:    buildAuthorResponse(a.Author),
		Content:   a.Content,
		CreatedAt: a.CreatedAt,
	}
}

func buildSeekResponse(s models.Seek) SeekResponse {
	resp := SeekResponse{
		ID:          s.ID,
		Author:      buildAuthorResponse(s.Author),
		Content:     s.Content,
		CreatedAt:   s.CreatedAt,
		AdviceCount: len(s.Advices),
	}
	for _, a := range s.Advices {
		resp.Advices = append(resp.Advices, buildAdviceResponse(a))
	}
	return resp
}
