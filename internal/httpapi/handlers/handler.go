package handlers

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hzlou/assistant-platform/internal/ai"
	"github.com/hzlou/assistant-platform/internal/auth"
	"github.com/hzlou/assistant-platform/internal/chat"
	"github.com/hzlou/assistant-platform/internal/config"
	"github.com/hzlou/assistant-platform/internal/feedback"
	"github.com/hzlou/assistant-platform/internal/httpapi/middleware"
	"github.com/hzlou/assistant-platform/internal/speech"
)

type Handler struct {
	Auth     *auth.Service
	Chat     *chat.Service
	Feedback *feedback.Service
	Speech   *speech.Service
	Registry *ai.Registry
	Cfg      *config.Config
	Log      *zap.Logger
}

func NewHandler(cfg *config.Config, authSvc *auth.Service, chatSvc *chat.Service,
	fbSvc *feedback.Service, speechSvc *speech.Service, registry *ai.Registry, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{
		Auth:     authSvc,
		Chat:     chatSvc,
		Feedback: fbSvc,
		Speech:   speechSvc,
		Registry: registry,
		Cfg:      cfg,
		Log:      log,
	}
}

func userIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(middleware.UserIDKey)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok
}
