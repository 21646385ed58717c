package handler

import (
	"github.com/gin-gonic/gin"

	"scholar-sync-api/internal/domain/repository"
	"scholar-sync-api/internal/interfaces/http/dto"
)

// ProfileHandler 用户档案处理器
type ProfileHandler struct {
	profiles repository.ProfileRepository
}

// NewProfileHandler 创建用户档案处理器
func NewProfileHandler(profiles repository.ProfileRepository) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// Me 获取当前用户档案
// @Summary 获取当前用户档案
// @Tags Profile
// @Produce json
// @Success 200 {object} dto.Response[entity.Profile]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/me [get]
func (h *ProfileHandler) Me(c *gin.Context) {
	userID, _ := requester(c)

	profile, err := h.profiles.GetByID(c.Request.Context(), userID)
	if err != nil {
		dto.InternalError(c, err.Error())
		return
	}
	if profile == nil {
		dto.NotFound(c, "profile not found")
		return
	}
	dto.Success(c, profile)
}
