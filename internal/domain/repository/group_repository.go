// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"scholar-sync-api/internal/domain/entity"
)

// DocumentGroupRepository 文档组仓储接口
type DocumentGroupRepository interface {
	// Create 创建文档组
	Create(ctx context.Context, group *entity.DocumentGroup) error

	// GetByID 根据 ID 获取文档组
	GetByID(ctx context.Context, id string) (*entity.DocumentGroup, error)

	// GetByIDs 批量获取文档组
	GetByIDs(ctx context.Context, ids []string) ([]*entity.DocumentGroup, error)

	// SetActiveDocument 设置当前生效版本
	SetActiveDocument(ctx context.Context, groupID, documentID string) error

	// UpdateAIDescription 更新组级 AI 描述
	UpdateAIDescription(ctx context.Context, id, description string) error

	// ListMine 获取请求者创建的或所属学校的文档组
	ListMine(ctx context.Context, vis Visibility) ([]*entity.DocumentGroup, error)

	// SearchTitles 标题大小写不敏感子串匹配，仅返回对请求者可见的组
	SearchTitles(ctx context.Context, query string, vis Visibility) ([]*entity.DocumentGroup, error)
}
