// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"scholar-sync-api/internal/domain/entity"
)

// Visibility 检索可见性上下文
// 可见规则：scope=global，或 created_by=UserID，或 university_id=UniversityID
type Visibility struct {
	UserID       string
	UniversityID *string
}

// DocumentRepository 文档仓储接口
type DocumentRepository interface {
	// Create 创建文档版本
	Create(ctx context.Context, doc *entity.Document) error

	// GetByID 根据 ID 获取文档
	GetByID(ctx context.Context, id string) (*entity.Document, error)

	// NextUploaded 获取最早一条待处理文档（status=uploaded），队列为空时返回 (nil, nil)
	NextUploaded(ctx context.Context) (*entity.Document, error)

	// UpdateStatus 更新文档状态
	UpdateStatus(ctx context.Context, id string, status entity.DocumentStatus) error

	// MarkReady 标记文档处理完成（status=ready 且 is_embedded=true）
	MarkReady(ctx context.Context, id string) error

	// UpdateAIDescription 更新 AI 描述
	UpdateAIDescription(ctx context.Context, id, description string) error

	// MaxVersionNumber 获取文档组内最大版本号，无版本时返回 0
	MaxVersionNumber(ctx context.Context, groupID string) (int, error)

	// ListVisibleActive 获取对请求者可见的各文档组当前生效且已就绪的版本
	ListVisibleActive(ctx context.Context, vis Visibility) ([]*entity.Document, error)
}
