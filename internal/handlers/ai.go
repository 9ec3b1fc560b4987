package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"spacenow/internal/assistant"
)

// askRequest is the POST /api/ai/ask body. Context is a pointer so a
// missing object can be told apart from an empty one.
type askRequest struct {
	Question string                  `json:"question"`
	Context  *assistant.EventContext `json:"context"`
}

// AIAsk handles POST /api/ai/ask. The assistant itself never fails;
// unconfigured or failing upstream yields a canned educational answer.
func (h *Handler) AIAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Question == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question is required and must be a string"})
		return
	}
	if req.Context == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "context is required and must be an object"})
		return
	}

	answer := h.assistant.Ask(c.Request.Context(), req.Question, *req.Context)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"response":  answer,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// AIHealth handles GET /api/ai/health.
func (h *Handler) AIHealth(c *gin.Context) {
	configured := h.assistant.Configured()
	message := "Cohere API is configured and ready"
	if !configured {
		message = "Cohere API is NOT configured. Set SPACENOW_COHERE_API_KEY"
	}
	c.JSON(http.StatusOK, gin.H{
		"success":          true,
		"cohereConfigured": configured,
		"message":          message,
	})
}
