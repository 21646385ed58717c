// Package notify 实现站内通知的写入与事件发布
package notify

import (
	"context"

	"github.com/google/uuid"

	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/domain/repository"
	"scholar-sync-api/internal/infrastructure/messaging"
	"scholar-sync-api/pkg/logger"
)

// Service 通知服务。
// Emit 是尽力而为的：落库失败、事件发布失败都只记日志，
// 不向调用方传播错误，保证通知不影响主流程。
type Service struct {
	repo     repository.NotificationRepository
	producer *messaging.Producer
}

// NewService 创建通知服务
func NewService(repo repository.NotificationRepository, producer *messaging.Producer) *Service {
	return &Service{
		repo:     repo,
		producer: producer,
	}
}

// Emit 写入站内通知并发布通知事件
func (s *Service) Emit(ctx context.Context, userID string, typ entity.NotificationType, title, message string, relatedIDs []string) {
	if s == nil || userID == "" {
		return
	}

	notification := entity.NewNotification(userID, typ, title, message, relatedIDs)
	notification.ID = uuid.NewString()

	if s.repo != nil {
		if err := s.repo.Create(ctx, notification); err != nil {
			logger.Warn(ctx, "failed to persist notification", "user_id", userID, "type", string(typ), "error", err.Error())
		}
	}

	if s.producer != nil {
		_, err := s.producer.PublishNotification(ctx, &messaging.NotificationMessage{
			NotificationID:   notification.ID,
			UserID:           userID,
			NotificationType: string(typ),
			Title:            title,
			Message:          message,
			RelatedIDs:       relatedIDs,
		})
		if err != nil {
			logger.Warn(ctx, "failed to publish notification event", "user_id", userID, "error", err.Error())
		}
	}
}

// List 分页获取用户通知
func (s *Service) List(ctx context.Context, userID string, pagination repository.Pagination, sort repository.Sort) (*repository.PagedResult[*entity.Notification], error) {
	return s.repo.ListByUser(ctx, userID, pagination, sort)
}

// MarkRead 标记单条通知已读
func (s *Service) MarkRead(ctx context.Context, id, userID string) error {
	return s.repo.MarkRead(ctx, id, userID)
}

// MarkAllRead 标记全部通知已读
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
