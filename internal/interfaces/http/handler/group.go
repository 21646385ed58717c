// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"scholar-sync-api/internal/application/docs"
	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/interfaces/http/dto"
)

// GroupHandler 文档组处理器
type GroupHandler struct {
	svc *docs.Service
}

// NewGroupHandler 创建文档组处理器
func NewGroupHandler(svc *docs.Service) *GroupHandler {
	return &GroupHandler{svc: svc}
}

// Create 创建文档组并上传首个版本
// @Summary 创建文档组
// @Description 通过 multipart 表单创建文档组并上传首个文件版本
// @Tags Groups
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "标题"
// @Param scope formData string false "可见范围 local/global"
// @Param human_description formData string false "人工描述"
// @Param file formData file true "文件"
// @Success 201 {object} dto.Response[dto.UploadResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/groups [post]
func (h *GroupHandler) Create(c *gin.Context) {
	var form dto.CreateGroupForm
	if err := c.ShouldBind(&form); err != nil {
		dto.BadRequest(c, "invalid form: "+err.Error())
		return
	}

	fileName, mimeType, data, err := readUpload(c)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	userID, universityID := requester(c)
	group, doc, err := h.svc.CreateGroup(c.Request.Context(), docs.UploadInput{
		Title:                 form.Title,
		Scope:                 entity.GroupScope(form.Scope),
		HumanDescription:      form.HumanDescription,
		FileName:              fileName,
		MimeType:              mimeType,
		Data:                  data,
		RequesterID:           userID,
		RequesterUniversityID: universityID,
	})
	if err != nil {
		dto.InternalError(c, err.Error())
		return
	}

	dto.Created(c, dto.UploadResponse{
		Group:    dto.FromGroup(group),
		Document: dto.FromDocument(doc),
	})
}

// AddVersion 追加新版本
// @Summary 上传新版本
// @Description 为已有文档组上传新版本，新版本立即成为生效版本
// @Tags Groups
// @Accept multipart/form-data
// @Produce json
// @Param gid path string true "文档组 ID"
// @Param human_description formData string false "人工描述"
// @Param file formData file true "文件"
// @Success 201 {object} dto.Response[dto.DocumentResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/groups/{gid}/versions [post]
func (h *GroupHandler) AddVersion(c *gin.Context) {
	var form dto.AddVersionForm
	if err := c.ShouldBind(&form); err != nil {
		dto.BadRequest(c, "invalid form: "+err.Error())
		return
	}

	fileName, mimeType, data, err := readUpload(c)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	userID, universityID := requester(c)
	doc, err := h.svc.AddVersion(c.Request.Context(), c.Param("gid"), docs.UploadInput{
		HumanDescription:      form.HumanDescription,
		FileName:              fileName,
		MimeType:              mimeType,
		Data:                  data,
		RequesterID:           userID,
		RequesterUniversityID: universityID,
	})
	if err != nil {
		switch {
		case errors.Is(err, docs.ErrGroupNotFound):
			dto.NotFound(c, err.Error())
		case errors.Is(err, docs.ErrNotGroupOwner):
			dto.Forbidden(c, err.Error())
		default:
			dto.InternalError(c, err.Error())
		}
		return
	}

	dto.Created(c, dto.FromDocument(doc))
}

// ListMine 获取请求者的文档组
// @Summary 我的文档组
// @Description 获取请求者创建的或所属学校的文档组
// @Tags Groups
// @Produce json
// @Success 200 {object} dto.Response[[]dto.GroupResponse]
// @Router /v1/groups/mine [get]
func (h *GroupHandler) ListMine(c *gin.Context) {
	userID, universityID := requester(c)
	groups, err := h.svc.ListMine(c.Request.Context(), userID, universityID)
	if err != nil {
		dto.InternalError(c, err.Error())
		return
	}
	dto.Success(c, dto.FromGroups(groups))
}

// Get 获取单个文档组
// @Summary 获取文档组
// @Tags Groups
// @Produce json
// @Param gid path string true "文档组 ID"
// @Success 200 {object} dto.Response[dto.GroupResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/groups/{gid} [get]
func (h *GroupHandler) Get(c *gin.Context) {
	group, err := h.svc.GetGroup(c.Request.Context(), c.Param("gid"))
	if err != nil {
		if errors.Is(err, docs.ErrGroupNotFound) {
			dto.NotFound(c, err.Error())
			return
		}
		dto.InternalError(c, err.Error())
		return
	}
	dto.Success(c, dto.FromGroup(group))
}
