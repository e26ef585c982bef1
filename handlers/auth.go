package handlers

import (
	"net/http"

	"fixit/middleware"
	"fixit/models"
	"fixit/services/user"
	"fixit/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuthHandler serves sign-up, sign-in and sign-out.
type AuthHandler struct {
	UserService user.UserService
}

func NewAuthHandler(svc user.UserService) *AuthHandler {
	return &AuthHandler{UserService: svc}
}

// SignUpHandler handles POST /api/auth/signup.
func (h *AuthHandler) SignUpHandler(c *gin.Context) {
	var req models.SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		getLogger(c).Debug("Invalid sign-up payload", zap.Error(err))
		utils.RespondError(c, utils.NewValidationError("invalid request body: %v", err))
		return
	}
	resp, err := h.UserService.SignUp(c.Request.Context(), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// SignInHandler handles POST /api/auth/signin.
func (h *AuthHandler) SignInHandler(c *gin.Context) {
	var req models.SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, utils.NewValidationError("email and password are required"))
		return
	}
	resp, err := h.UserService.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SignOutHandler handles POST /api/auth/signout.
func (h *AuthHandler) SignOutHandler(c *gin.Context) {
	actorID, _ := middleware.ActorFrom(c)
	if err := h.UserService.SignOut(c.Request.Context(), actorID); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Signed out", "route": models.RouteOnboarding})
}
