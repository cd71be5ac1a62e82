package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hzlou/assistant-platform/internal/common"
)

// unavailableReply stands in for the assistant when the completion call fails.
const unavailableReply = "Sorry, the assistant is temporarily unavailable. Please try again later."

const titleRunes = 20

func (h *Handler) ListConversations(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	common.OK(c, gin.H{"conversations": h.Chat.List(uid)})
}

func (h *Handler) GetConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	conv, ok := h.Chat.Get(uid, c.Param("conversation_id"))
	if !ok {
		common.Fail(c, http.StatusNotFound, 40402, "conversation not found")
		return
	}
	common.OK(c, gin.H{"conversation": conv})
}

func (h *Handler) DeleteConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	if !h.Chat.Delete(uid, c.Param("conversation_id")) {
		common.Fail(c, http.StatusNotFound, 40402, "conversation not found")
		return
	}
	common.OK(c, gin.H{"deleted": true})
}

type createConversationReq struct {
	Title string `json:"title"`
}

func (h *Handler) CreateConversation(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req createConversationReq
	_ = c.ShouldBindJSON(&req) // allow empty body

	conv := h.Chat.Create(uid, req.Title)
	h.Chat.AddMessage(uid, conv.ID, "assistant", welcomeMessage)

	conv, _ = h.Chat.Get(uid, conv.ID)
	common.OK(c, gin.H{"conversation": conv})
}

type sendMessageReq struct {
	Message        string `json:"message" binding:"required"`
	ConversationID string `json:"conversation_id"`
	Topic          string `json:"topic"`
}

// SendMessage is the main chat turn: append the user message, forward the
// history to the completion provider, append the reply, and return ranked
// recommendations alongside it.
func (h *Handler) SendMessage(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req sendMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10002, "message required")
		return
	}

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = h.Chat.Create(uid, "").ID
	} else if _, ok := h.Chat.Get(uid, conversationID); !ok {
		common.Fail(c, http.StatusNotFound, 40402, "conversation not found")
		return
	}

	h.Chat.AddMessage(uid, conversationID, "user", req.Message)
	history := h.Chat.MessagesForAPI(uid, conversationID)

	if req.Topic != "" {
		h.Feedback.RecordTopicInterest(uid, req.Topic, 1)
	}

	reply := unavailableReply
	provider, err := h.Registry.Get(h.Cfg.AIProvider)
	if err != nil {
		h.Log.Error("provider lookup failed", zap.String("provider", h.Cfg.AIProvider), zap.Error(err))
	} else if text, err := provider.Chat(c.Request.Context(), history); err != nil {
		h.Log.Warn("completion call failed",
			zap.String("conversation_id", conversationID), zap.Error(err))
	} else {
		reply = text
	}

	h.Chat.AddMessage(uid, conversationID, "assistant", reply)

	// first exchange names the conversation after the opening question
	if len(history) <= 2 {
		h.Chat.SetTitle(uid, conversationID, deriveTitle(req.Message))
	}

	conv, _ := h.Chat.Get(uid, conversationID)
	title := ""
	if conv != nil {
		title = conv.Title
	}

	common.OK(c, gin.H{
		"conversation_id": conversationID,
		"title":           title,
		"response":        reply,
		"recommendations": h.Feedback.Recommendations(uid, req.Topic, 0),
	})
}

func deriveTitle(message string) string {
	r := []rune(message)
	if len(r) <= titleRunes {
		return message
	}
	return string(r[:titleRunes]) + "..."
}
