// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"scholar-sync-api/internal/domain/entity"
)

// NotificationResponse 站内通知响应
type NotificationResponse struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Title      string    `json:"title"`
	Message    string    `json:"message,omitempty"`
	RelatedIDs []string  `json:"related_ids,omitempty"`
	IsRead     bool      `json:"is_read"`
	CreatedAt  time.Time `json:"created_at"`
}

// FromNotification 将通知实体转换为响应
func FromNotification(n *entity.Notification) *NotificationResponse {
	if n == nil {
		return nil
	}
	return &NotificationResponse{
		ID:         n.ID,
		Type:       string(n.Type),
		Title:      n.Title,
		Message:    n.Message,
		RelatedIDs: []string(n.RelatedIDs),
		IsRead:     n.IsRead,
		CreatedAt:  n.CreatedAt,
	}
}

// FromNotifications 批量转换
func FromNotifications(items []*entity.Notification) []*NotificationResponse {
	out := make([]*NotificationResponse, 0, len(items))
	for _, n := range items {
		if resp := FromNotification(n); resp != nil {
			out = append(out, resp)
		}
	}
	return out
}
