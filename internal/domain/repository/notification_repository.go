// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"scholar-sync-api/internal/domain/entity"
)

// NotificationRepository 通知仓储接口
type NotificationRepository interface {
	// Create 创建通知
	Create(ctx context.Context, notification *entity.Notification) error

	// ListByUser 获取用户通知列表，默认按创建时间倒序
	ListByUser(ctx context.Context, userID string, pagination Pagination, sort Sort) (*PagedResult[*entity.Notification], error)

	// MarkRead 标记单条通知已读
	MarkRead(ctx context.Context, id, userID string) error

	// MarkAllRead 标记用户全部通知已读
	MarkAllRead(ctx context.Context, userID string) error
}
