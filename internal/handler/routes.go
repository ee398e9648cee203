package handler

import (
	"time"

	"socialnet/backend/internal/auth"
	"socialnet/backend/internal/hub"
	"socialnet/backend/internal/intimate"
	"socialnet/backend/internal/ratelimit"

	"github.com/gin-gonic/gin"
)

// Deps are the services the handlers need besides the database.
type Deps struct {
	Intimates *intimate.Manager
	Hub       *hub.Hub
	// Limiter may be nil, in which case requests are not rate limited.
	Limiter       *ratelimit.Limiter
	RequestLimit  int64
	RequestWindow time.Duration
	// Images may be nil; the image endpoints then answer 503.
	Images ImageStore
}

// RegisterRoutes mounts every API route on api, usually the /api/v1 group.
func RegisterRoutes(api *gin.RouterGroup, deps Deps) {
	users := &UserHandler{Intimates: deps.Intimates}
	intimates := &IntimateHandler{Manager: deps.Intimates}
	events := &EventsHandler{Hub: deps.Hub}
	images := &ImageHandler{Store: deps.Images}

	// Auth routes
	authRoutes := api.Group("/auth")
	{
		authRoutes.POST("/register", RegisterUser)
		authRoutes.GET("/activate/:token", ActivateUser)
		authRoutes.POST("/login", LoginUser)
		authRoutes.POST("/password-reset", RequestPasswordReset)
		authRoutes.POST("/password-reset/confirm", ConfirmPasswordReset)
	}

	// Picture redirects are public so they can be used in <img> tags.
	api.GET("/users/:id/image", images.GetImage)

	// User routes (protected)
	userRoutes := api.Group("/users")
	userRoutes.Use(auth.AuthMiddleware())
	{
		userRoutes.GET("", users.SearchUsers)
		userRoutes.GET("/me", GetMe)
		userRoutes.PUT("/me", UpdateMe)
		userRoutes.PUT("/me/password", ChangePassword)
		userRoutes.PUT("/me/email", RequestEmailChange)
		userRoutes.GET("/me/email/confirm/:token", ConfirmEmailChange)
		userRoutes.PUT("/me/image", images.UploadImage)
		userRoutes.DELETE("/me/image", images.DeleteImage)
		userRoutes.GET("/me/follows", users.GetFollows)
		userRoutes.GET("/me/followers", users.GetFollowers)
		userRoutes.GET("/me/events", events.StreamEvents)
		userRoutes.GET("/:id", users.GetUserByID)
		userRoutes.POST("/:id/follow", FollowUser)
		userRoutes.DELETE("/:id/follow", UnfollowUser)
	}

	// Intimate routes (protected)
	intimateRoutes := api.Group("/intimates")
	intimateRoutes.Use(auth.AuthMiddleware())
	{
		sendRequest := []gin.HandlerFunc{intimates.SendRequest}
		if deps.Limiter != nil {
			sendRequest = append([]gin.HandlerFunc{
				deps.Limiter.PerUser("intimate-request", deps.RequestLimit, deps.RequestWindow),
			}, sendRequest...)
		}

		intimateRoutes.GET("/me", intimates.GetMyIntimates)
		intimateRoutes.POST("/:id/request", sendRequest...)
		intimateRoutes.POST("/:id/approve", intimates.ApproveRequest)
		intimateRoutes.POST("/:id/reject", intimates.RejectRequest)
		intimateRoutes.POST("/:id/cancel", intimates.CancelRequest)
	}

	// Post routes (protected)
	postRoutes := api.Group("/posts")
	postRoutes.Use(auth.AuthMiddleware())
	{
		postRoutes.GET("", GetFeed)
		postRoutes.POST("", CreatePost)
		postRoutes.GET("/:id", GetPost)
		postRoutes.PUT("/:id", UpdatePost)
		postRoutes.POST("/:id/comments", CreateComment)
	}

	// Articles are public; publishing is staff only.
	articleRoutes := api.Group("/articles")
	{
		articleRoutes.GET("", auth.OptionalAuthMiddleware(), GetArticles)
		articleRoutes.GET("/:id", auth.OptionalAuthMiddleware(), GetArticle)
		articleRoutes.POST("", auth.AuthMiddleware(), auth.StaffMiddleware(), CreateArticle)
	}

	// Seek routes (protected)
	seekRoutes := api.Group("/seeks")
	seekRoutes.Use(auth.AuthMiddleware())
	{
		seekRoutes.GET("", GetSeeks)
		seekRoutes.POST("", CreateSeek)
		seekRoutes.GET("/:id", GetSeek)
		seekRoutes.POST("/:id/advices", CreateAdvice)
	}
}
