// Package handler 提供 HTTP 请求处理器
package handler

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"scholar-sync-api/internal/application/notify"
	"scholar-sync-api/internal/domain/repository"
	"scholar-sync-api/internal/interfaces/http/dto"
)

// NotificationHandler 通知处理器
type NotificationHandler struct {
	svc *notify.Service
}

// NewNotificationHandler 创建通知处理器
func NewNotificationHandler(svc *notify.Service) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// List 获取通知列表
// @Summary 通知列表
// @Description 分页获取请求者的站内通知，默认按创建时间倒序
// @Tags Notifications
// @Produce json
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param sort_by query string false "排序字段（created_at/is_read/type）"
// @Param order query string false "排序方向（asc/desc）"
// @Success 200 {object} dto.Response[[]dto.NotificationResponse]
// @Router /v1/notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	userID, _ := requester(c)

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	pagination := repository.NewPagination(page, pageSize)

	order := repository.SortOrderDesc
	if strings.EqualFold(c.Query("order"), "asc") {
		order = repository.SortOrderAsc
	}
	sort := repository.NewSort(c.DefaultQuery("sort_by", "created_at"), order)

	result, err := h.svc.List(c.Request.Context(), userID, pagination, sort)
	if err != nil {
		dto.InternalError(c, err.Error())
		return
	}

	dto.SuccessWithPage(c, dto.FromNotifications(result.Items),
		dto.NewPageMeta(result.Page, result.PageSize, int(result.Total)))
}

// MarkRead 标记单条通知已读
// @Summary 标记已读
// @Tags Notifications
// @Produce json
// @Param nid path string true "通知 ID"
// @Success 204
// @Router /v1/notifications/{nid}/read [post]
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, _ := requester(c)
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("nid"), userID); err != nil {
		dto.InternalError(c, err.Error())
		return
	}
	dto.NoContent(c)
}

// MarkAllRead 标记全部通知已读
// @Summary 全部标记已读
// @Tags Notifications
// @Produce json
// @Success 204
// @Router /v1/notifications/read-all [post]
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, _ := requester(c)
	if err := h.svc.MarkAllRead(c.Request.Context(), userID); err != nil {
		dto.InternalError(c, err.Error())
		return
	}
	dto.NoContent(c)
}
