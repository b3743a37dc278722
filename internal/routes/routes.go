package routes

import (
	"github.com/damoang/angple-messenger/internal/handler"
	"github.com/damoang/angple-messenger/internal/middleware"
	"github.com/damoang/angple-messenger/pkg/jwt"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Handlers groups the HTTP handlers mounted by Setup
type Handlers struct {
	Conversation *handler.ConversationHandler
	Message      *handler.MessageHandler
	Attachment   *handler.AttachmentHandler
	Member       *handler.MemberHandler
	Notification *handler.NotificationHandler
	WS           *handler.WSHandler
	Health       *handler.HealthHandler
}

// Options route level limits. RedisClient may be nil (limits disabled).
type Options struct {
	RedisClient            *redis.Client
	SendRateLimitPerMinute int
}

// Setup configures all API routes
func Setup(router *gin.Engine, h Handlers, jwtManager *jwt.Manager, opts Options) {
	middleware.RegisterValidators()

	if h.Health != nil {
		router.GET("/health", h.Health.Check)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	auth := middleware.JWTAuth(jwtManager)

	if h.WS != nil {
		router.GET("/ws/messages", auth, h.WS.Connect)
	}

	api := router.Group("/api/v1", auth)

	// 대화
	conversations := api.Group("/conversations")
	conversations.GET("", h.Conversation.List)
	conversations.POST("", h.Conversation.Start)
	conversations.GET("/:id/messages", h.Conversation.Open)

	// 메시지
	messages := api.Group("/messages")
	messages.POST("", middleware.RateLimitPerUser(opts.RedisClient, opts.SendRateLimitPerMinute), h.Message.Send)
	messages.POST("/:id/reactions", h.Message.React)
	messages.DELETE("/:id", h.Message.Unsend)
	if h.Attachment != nil {
		messages.POST("/attachments", h.Attachment.Upload)
	}

	api.GET("/users/:id/summary", h.Member.GetUserSummary)

	if h.Notification != nil {
		api.GET("/notifications", h.Notification.GetList)
	}
}
