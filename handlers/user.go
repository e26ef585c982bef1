package handlers

import (
	"net/http"

	"fixit/middleware"
	"fixit/models"
	"fixit/services/user"
	"fixit/utils"

	"github.com/gin-gonic/gin"
)

// UserHandler serves the current actor's profile and the provider directory.
type UserHandler struct {
	UserService user.UserService
}

func NewUserHandler(svc user.UserService) *UserHandler {
	return &UserHandler{UserService: svc}
}

// GetMeHandler handles GET /api/me.
func (h *UserHandler) GetMeHandler(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	actor, err := h.UserService.GetActor(c.Request.Context(), actorID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.SessionEvent{Actor: actor, Route: models.RouteFor(actor)})
}

// UpdateMeHandler handles PATCH /api/me.
func (h *UserHandler) UpdateMeHandler(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	var patch models.ProfilePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid request body: %v", err))
		return
	}
	actor, err := h.UserService.UpdateProfile(c.Request.Context(), actorID, patch)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, actor)
}

// ListProvidersHandler handles GET /api/providers.
func (h *UserHandler) ListProvidersHandler(c *gin.Context) {
	var filter models.ProviderFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.RespondError(c, utils.NewValidationError("invalid filter: %v", err))
		return
	}
	providers, err := h.UserService.ListProviders(c.Request.Context(), filter)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": providers})
}

// GetProviderHandler handles GET /api/providers/:id.
func (h *UserHandler) GetProviderHandler(c *gin.Context) {
	profile, err := h.UserService.GetProvider(c.Request.Context(), c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, profile)
}
