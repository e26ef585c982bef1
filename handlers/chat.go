package handlers

import (
	"net/http"

	"fixit/middleware"
	"fixit/models"
	"fixit/services/chat"
	"fixit/utils"

	"github.com/gin-gonic/gin"
)

// ChatHandler serves conversations and messages.
type ChatHandler struct {
	ChatService chat.ChatService
}

func NewChatHandler(svc chat.ChatService) *ChatHandler {
	return &ChatHandler{ChatService: svc}
}

// StartConversationHandler handles POST /api/conversations. The caller's own
// side of the pair is taken from the session.
func (h *ChatHandler) StartConversationHandler(c *gin.Context) {
	actorID, role := middleware.ActorFrom(c)
	var req models.StartConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body: %v", err))
		return
	}
	switch role {
	case models.RoleCustomer:
		req.CustomerID = actorID
	case models.RoleProvider:
		req.ProviderID = actorID
	}

	conv, err := h.ChatService.GetOrCreate(c.Request.Context(), actorID, req.CustomerID, req.ProviderID, models.DisplayMetadata{})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv.ViewFor(actorID))
}

// ListConversationsHandler handles GET /api/conversations.
func (h *ChatHandler) ListConversationsHandler(c *gin.Context) {
	actorID, role := middleware.ActorFrom(c)
	c.JSON(http.StatusOK, gin.H{"conversations": h.ChatService.ConversationsFor(actorID, role)})
}

// GetConversationHandler handles GET /api/conversations/:id.
func (h *ChatHandler) GetConversationHandler(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	view, err := h.ChatService.Get(c.Request.Context(), actorID, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// SendMessageHandler handles POST /api/conversations/:id/messages.
func (h *ChatHandler) SendMessageHandler(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body: %v", err))
		return
	}
	msg, err := h.ChatService.AppendMessage(c.Request.Context(), c.Param("id"), actorID, req.Text)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// MarkReadHandler handles POST /api/conversations/:id/read.
func (h *ChatHandler) MarkReadHandler(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	if err := h.ChatService.MarkRead(c.Request.Context(), c.Param("id"), actorID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
