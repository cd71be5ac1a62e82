package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hzlou/assistant-platform/internal/common"
	"github.com/hzlou/assistant-platform/internal/httpapi/handlers"
	"github.com/hzlou/assistant-platform/internal/httpapi/middleware"
)

func NewRouter(h *handlers.Handler, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Logger())
	r.Use(middleware.Recovery(log))
	r.Use(middleware.RequestID())

	r.NoRoute(func(c *gin.Context) {
		common.Fail(c, http.StatusNotFound, 40400, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		common.Fail(c, http.StatusMethodNotAllowed, 40500, "method not allowed")
	})

	api := r.Group("/api")
	api.POST("/register", h.Register)
	api.POST("/login", h.Login)

	authed := api.Group("/")
	authed.Use(middleware.AuthRequired(h.Auth))
	authed.GET("/verify-token", h.VerifyToken)

	authed.GET("/conversations", h.ListConversations)
	authed.POST("/conversations", h.CreateConversation)
	authed.GET("/conversations/:conversation_id", h.GetConversation)
	authed.DELETE("/conversations/:conversation_id", h.DeleteConversation)
	authed.GET("/conversations/:conversation_id/feedbacks", h.ConversationFeedbacks)

	authed.POST("/chat", h.SendMessage)
	authed.POST("/speech", h.SpeechTranscribe)
	authed.GET("/speech/history", h.SpeechHistory)

	authed.POST("/feedback", h.AddFeedback)
	authed.GET("/recommendations", h.GetRecommendations)
	authed.POST("/knowledge", h.AddKnowledge)
	authed.GET("/topics", h.TopTopics)

	return r
}
