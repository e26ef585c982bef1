package handlers

import (
	"errors"
	"net/http"
	"strings"

	"fixit/middleware"
	"fixit/models"
	"fixit/services/storage"
	"fixit/services/user"
	"fixit/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxAvatarBytes = 5 << 20

// StorageHandler handles profile picture uploads.
type StorageHandler struct {
	StorageSvc  storage.StorageService
	UserService user.UserService
}

func NewStorageHandler(svc storage.StorageService, users user.UserService) *StorageHandler {
	return &StorageHandler{StorageSvc: svc, UserService: users}
}

// UploadAvatarHandler handles POST /api/me/avatar (multipart field "avatar").
func (h *StorageHandler) UploadAvatarHandler(c *gin.Context) {
	logger := getLogger(c)
	actorID, _ := middleware.ActorFrom(c)

	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("avatar file not provided"))
		return
	}
	if fileHeader.Size > maxAvatarBytes {
		utils.RespondError(c, utils.NewValidationError("avatar must be smaller than 5MB"))
		return
	}
	if ct := fileHeader.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		utils.RespondError(c, utils.NewValidationError("avatar must be an image"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		utils.RespondError(c, utils.NewValidationError("failed to read uploaded file"))
		return
	}
	defer file.Close()

	url, err := h.StorageSvc.UploadAvatar(c.Request.Context(), actorID, file)
	if err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			utils.RespondError(c, utils.NewRemoteUnavailable("avatar uploads are not configured", err))
			return
		}
		logger.Error("Avatar upload failed", zap.String("actorID", actorID), zap.Error(err))
		utils.RespondError(c, utils.NewRemoteUnavailable("failed to upload avatar", err))
		return
	}

	actor, err := h.UserService.UpdateProfile(c.Request.Context(), actorID, models.ProfilePatch{AvatarURL: &url})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, actor)
}
