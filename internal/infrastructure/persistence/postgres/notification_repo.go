// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/domain/repository"
)

// NotificationRepository 通知仓储实现
type NotificationRepository struct {
	client *Client
}

// NewNotificationRepository 创建通知仓储
func NewNotificationRepository(client *Client) *NotificationRepository {
	return &NotificationRepository{client: client}
}

// Create 创建通知
func (r *NotificationRepository) Create(ctx context.Context, notification *entity.Notification) error {
	ctx, span := tracer.Start(ctx, "postgres.NotificationRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(notification).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create notification: %w", err)
	}
	return nil
}

// notificationSortFields 允许排序的列，键为对外暴露的字段名
var notificationSortFields = map[string]string{
	"created_at": "created_at",
	"is_read":    "is_read",
	"type":       "type",
}

// notificationOrderClause 将排序参数规整为安全的 ORDER BY 子句。
// 未知字段回落到 created_at，未指定方向时倒序。
func notificationOrderClause(sort repository.Sort) string {
	field, ok := notificationSortFields[sort.Field]
	if !ok {
		field = "created_at"
	}
	order := "DESC"
	if sort.Order == repository.SortOrderAsc {
		order = "ASC"
	}
	return field + " " + order
}

// ListByUser 获取用户通知列表
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string, pagination repository.Pagination, sort repository.Sort) (*repository.PagedResult[*entity.Notification], error) {
	ctx, span := tracer.Start(ctx, "postgres.NotificationRepository.ListByUser")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Notification{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count notifications: %w", err)
	}

	var notifications []*entity.Notification
	if err := query.Order(notificationOrderClause(sort)).
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&notifications).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	return repository.NewPagedResult(notifications, total, pagination), nil
}

// MarkRead 标记单条通知已读
func (r *NotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	ctx, span := tracer.Start(ctx, "postgres.NotificationRepository.MarkRead")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

// MarkAllRead 标记用户全部通知已读
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	ctx, span := tracer.Start(ctx, "postgres.NotificationRepository.MarkAllRead")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark all notifications read: %w", err)
	}
	return nil
}
