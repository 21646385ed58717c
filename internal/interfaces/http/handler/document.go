// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"scholar-sync-api/internal/application/docs"
	"scholar-sync-api/internal/interfaces/http/dto"
)

// DocumentHandler 文档处理器
type DocumentHandler struct {
	svc *docs.Service
}

// NewDocumentHandler 创建文档处理器
func NewDocumentHandler(svc *docs.Service) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// ListVisible 获取对请求者可见的文档
// @Summary 可见文档列表
// @Description 获取对请求者可见的各文档组当前生效且已就绪的版本
// @Tags Documents
// @Produce json
// @Success 200 {object} dto.Response[[]dto.DocumentResponse]
// @Router /v1/documents/visible [get]
func (h *DocumentHandler) ListVisible(c *gin.Context) {
	userID, universityID := requester(c)
	documents, err := h.svc.ListVisibleActive(c.Request.Context(), userID, universityID)
	if err != nil {
		dto.InternalError(c, err.Error())
		return
	}

	out := dto.FromDocuments(documents)
	for _, doc := range out {
		doc.IsActive = true
	}
	dto.Success(c, out)
}

// DownloadURL 签发文档的限时下载地址
// @Summary 获取下载地址
// @Tags Documents
// @Produce json
// @Param did path string true "文档 ID"
// @Success 200 {object} dto.Response[dto.DownloadURLResponse]
// @Failure 403 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/documents/{did}/download-url [get]
func (h *DocumentHandler) DownloadURL(c *gin.Context) {
	userID, universityID := requester(c)
	url, err := h.svc.DownloadURL(c.Request.Context(), c.Param("did"), userID, universityID)
	if err != nil {
		switch {
		case errors.Is(err, docs.ErrDocumentNotFound), errors.Is(err, docs.ErrGroupNotFound):
			dto.NotFound(c, err.Error())
		case errors.Is(err, docs.ErrDocumentNotVisible):
			dto.Forbidden(c, err.Error())
		default:
			dto.InternalError(c, err.Error())
		}
		return
	}
	dto.Success(c, dto.DownloadURLResponse{URL: url})
}

// Get 获取单个文档版本
// @Summary 获取文档
// @Tags Documents
// @Produce json
// @Param did path string true "文档 ID"
// @Success 200 {object} dto.Response[dto.DocumentResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/documents/{did} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	doc, err := h.svc.GetDocument(c.Request.Context(), c.Param("did"))
	if err != nil {
		if errors.Is(err, docs.ErrDocumentNotFound) {
			dto.NotFound(c, err.Error())
			return
		}
		dto.InternalError(c, err.Error())
		return
	}
	dto.Success(c, dto.FromDocument(doc))
}
