package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hzlou/assistant-platform/internal/auth"
	"github.com/hzlou/assistant-platform/internal/common"
)

const welcomeMessage = "Hello! I'm your assistant. How can I help you today?"

type registerReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Nickname string `json:"nickname"`
}

func (h *Handler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "username and password required")
		return
	}

	user, token, err := h.Auth.Register(req.Username, req.Password, req.Nickname)
	if err != nil {
		if errors.Is(err, auth.ErrDuplicateUsername) {
			common.Fail(c, http.StatusBadRequest, 10010, "username already exists")
			return
		}
		h.Log.Error("register failed", zap.String("username", req.Username), zap.Error(err))
		common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		return
	}

	// every new account starts with a greeted conversation
	conv := h.Chat.Create(user.ID, "")
	h.Chat.AddMessage(user.ID, conv.ID, "assistant", welcomeMessage)

	common.OK(c, gin.H{
		"token": token.Value,
		"user":  user,
	})
}

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10001, "username and password required")
		return
	}

	user, token, err := h.Auth.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			common.Fail(c, http.StatusUnauthorized, 10011, "user not found")
		case errors.Is(err, auth.ErrWrongPassword):
			common.Fail(c, http.StatusUnauthorized, 10012, "wrong password")
		default:
			h.Log.Error("login failed", zap.String("username", req.Username), zap.Error(err))
			common.Fail(c, http.StatusInternalServerError, 50001, "internal error")
		}
		return
	}

	common.OK(c, gin.H{
		"token": token.Value,
		"user":  user,
	})
}

// VerifyToken only runs behind AuthRequired, so reaching it means the token
// is good; it returns the resolved user.
func (h *Handler) VerifyToken(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	user, ok := h.Auth.GetUser(uid)
	if !ok {
		common.Fail(c, http.StatusNotFound, 40401, "user not found")
		return
	}
	common.OK(c, gin.H{"valid": true, "user": user})
}
