package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"releaf-service/config"
	"releaf-service/internal/auth"
	"releaf-service/internal/redisclient"
	"releaf-service/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	authService       *service.AuthService
	userService       *service.UserService
	postService       *service.PostService
	rewardService     *service.RewardService
	redemptionService *service.RedemptionService
	tokens            *auth.Manager
	redis             *redisclient.Client
	cfg               *config.Config
}

// NewHandler creates a new HTTP handler
func NewHandler(
	authService *service.AuthService,
	userService *service.UserService,
	postService *service.PostService,
	rewardService *service.RewardService,
	redemptionService *service.RedemptionService,
	tokens *auth.Manager,
	redis *redisclient.Client,
	cfg *config.Config,
) *Handler {
	return &Handler{
		authService:       authService,
		userService:       userService,
		postService:       postService,
		rewardService:     rewardService,
		redemptionService: redemptionService,
		tokens:            tokens,
		redis:             redis,
		cfg:               cfg,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.Static("/uploads", h.cfg.Uploads.Dir)

	api := router.Group("/api")
	api.Use(rateLimitMiddleware(h.redis, h.cfg.Limits))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", h.register)
		authGroup.POST("/login", h.login)
		authGroup.POST("/refresh", h.refresh)
	}

	rewards := api.Group("/rewards")
	{
		rewards.GET("", h.listRewards)
		rewards.GET("/history", authRequired(h.tokens), h.redemptionHistory)
		rewards.GET("/:id", h.getReward)
		rewards.POST("/redeem", authRequired(h.tokens), h.redeem)
	}

	posts := api.Group("/posts")
	{
		posts.POST("", authRequired(h.tokens), h.createPost)
		posts.GET("", h.listPosts)
		posts.GET("/home/feed", h.homeFeed)
		posts.GET("/:id", h.getPost)
		posts.DELETE("/:id", authRequired(h.tokens), h.deletePost)
	}

	users := api.Group("/users")
	{
		users.POST("/tags/follow", authRequired(h.tokens), h.followTag)
		users.DELETE("/tags/follow", authRequired(h.tokens), h.unfollowTag)
		users.GET("/:id", h.getProfile)
		users.PUT("/:id", authRequired(h.tokens), h.updateProfile)
		users.POST("/:id/follow", authRequired(h.tokens), h.followUser)
		users.DELETE("/:id/follow", authRequired(h.tokens), h.unfollowUser)
		users.GET("/:id/followers", h.listFollowers)
		users.GET("/:id/following", h.listFollowing)
		users.GET("/:id/posts", h.listUserPosts)
		users.GET("/:id/followed-tags", h.listFollowedTags)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respondError maps domain errors to status codes. Business-rule failures
// are 4xx; only PrincipalNotFound and unknown faults surface as 500, and
// storage detail never leaks to the caller.
func respondError(c *gin.Context, err error) {
	code := service.ErrorCode(err)

	status := http.StatusBadRequest
	switch {
	case errors.Is(err, service.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, service.ErrForbidden):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrNotFound), errors.Is(err, service.ErrRewardNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrUserExists),
		errors.Is(err, service.ErrUsernameTaken),
		errors.Is(err, service.ErrAlreadyExists):
		status = http.StatusConflict
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrInsufficientFunds):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrPrincipalNotFound):
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Account state inconsistency, please contact support",
			"error":   code,
		})
		return
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Internal server error",
			"error":   "internal",
		})
		return
	}

	c.JSON(status, gin.H{
		"message": err.Error(),
		"error":   code,
	})
}

func pagination(c *gin.Context) (limit, offset int) {
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}
