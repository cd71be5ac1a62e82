package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hzlou/assistant-platform/internal/common"
)

type speechReq struct {
	Audio string `json:"audio" binding:"required"`
}

func (h *Handler) SpeechTranscribe(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req speechReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10006, "audio data required")
		return
	}

	text, err := h.Speech.Transcribe(req.Audio, uid)
	if err != nil {
		h.Log.Warn("speech decode failed", zap.String("user_id", uid), zap.Error(err))
		common.Fail(c, http.StatusBadRequest, 10007, "invalid audio payload")
		return
	}
	common.OK(c, gin.H{"text": text})
}

func (h *Handler) SpeechHistory(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	common.OK(c, gin.H{"history": h.Speech.History(uid, limit)})
}
