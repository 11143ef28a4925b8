package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Handler serves the chat proxy endpoint
type Handler struct {
	completer Completer
	logger    zerolog.Logger
}

// NewHandler creates a chat handler backed by completer
func NewHandler(completer Completer, logger zerolog.Logger) *Handler {
	return &Handler{completer: completer, logger: logger}
}

// Register mounts the handler on a router group
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/chat", h.Chat)
}

type chatRequest struct {
	Messages []Message `json:"messages" binding:"required,min=1"`
}

// @Summary Chat with NamiBot
// @Description Forwards a conversation to the LLM provider with the NamiBot system prompt
// @Tags chat
// @Accept json
// @Produce json
// @Param request body Request true "Conversation so far"
// @Success 200 {object} Reply
// @Failure 400 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/chat [post]
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid messages"})
		return
	}

	completion, err := h.completer.Complete(c.Request.Context(), req.Messages)
	if err != nil {
		var providerErr *ProviderError
		switch {
		case errors.Is(err, ErrMissingAPIKey):
			h.logger.Error().Msg("GROQ_API_KEY not set")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "GROQ_API_KEY not set",
				"setup": "Please add GROQ_API_KEY to .env",
			})
		case errors.As(err, &providerErr):
			h.logger.Warn().Int("status", providerErr.StatusCode).Msg("Provider returned an error")
			c.JSON(providerErr.StatusCode, gin.H{
				"error":   "Groq API Error",
				"details": providerErr.Details,
			})
		default:
			h.logger.Error().Err(err).Msg("Chat completion failed")
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":   "Internal server error",
				"details": err.Error(),
			})
		}
		return
	}

	c.JSON(http.StatusOK, Reply{
		ID:       ulid.Make().String(),
		Role:     "assistant",
		Content:  completion.Content,
		Provider: ProviderName,
		Usage:    completion.Usage,
		Model:    completion.Model,
	})
}
