package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/hzlou/assistant-platform/internal/common"
)

type addFeedbackReq struct {
	ConversationID string `json:"conversation_id" binding:"required"`
	MessageID      string `json:"message_id" binding:"required"`
	Rating         *int   `json:"rating" binding:"required"`
	Comment        string `json:"comment"`
}

func (h *Handler) AddFeedback(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req addFeedbackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10003, "conversation_id, message_id and rating required")
		return
	}
	// the rating range is enforced here, not in the engine
	if *req.Rating < 1 || *req.Rating > 5 {
		common.Fail(c, http.StatusBadRequest, 10004, "rating must be between 1 and 5")
		return
	}

	fb := h.Feedback.AddFeedback(uid, req.ConversationID, req.MessageID, *req.Rating, req.Comment)
	common.OK(c, gin.H{"feedback": fb})
}

func (h *Handler) GetRecommendations(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	count, _ := strconv.Atoi(c.Query("count"))
	recs := h.Feedback.Recommendations(uid, c.Query("topic"), count)
	common.OK(c, gin.H{"recommendations": recs})
}

type addKnowledgeReq struct {
	Topic   string `json:"topic" binding:"required"`
	Content string `json:"content" binding:"required"`
}

func (h *Handler) AddKnowledge(c *gin.Context) {
	uid, ok := userIDFromContext(c)
	if !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}

	var req addKnowledgeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		common.Fail(c, http.StatusBadRequest, 10005, "topic and content required")
		return
	}

	entry, err := h.Feedback.AddKnowledge(req.Topic, req.Content, fmt.Sprintf("user_%s", uid))
	if err != nil {
		common.Fail(c, http.StatusBadRequest, 10005, "topic and content required")
		return
	}
	common.OK(c, gin.H{"knowledge": entry})
}

func (h *Handler) ConversationFeedbacks(c *gin.Context) {
	if _, ok := userIDFromContext(c); !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	fbs := h.Feedback.FeedbacksByConversation(c.Param("conversation_id"))
	common.OK(c, gin.H{"feedbacks": fbs})
}

func (h *Handler) TopTopics(c *gin.Context) {
	if _, ok := userIDFromContext(c); !ok {
		common.Fail(c, http.StatusUnauthorized, 40101, "unauthorized")
		return
	}
	count, _ := strconv.Atoi(c.Query("count"))
	if count <= 0 {
		count = 5
	}
	common.OK(c, gin.H{"topics": h.Feedback.MostCommonTopics(count)})
}
