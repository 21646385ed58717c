// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"scholar-sync-api/internal/domain/entity"
)

// ChunkRepository 切片仓储接口
type ChunkRepository interface {
	// Create 创建切片
	Create(ctx context.Context, chunk *entity.Chunk) error

	// GroupIDsByContent 内容大小写不敏感子串匹配，返回命中切片所属的文档组 ID（去重）
	GroupIDsByContent(ctx context.Context, query string) ([]string, error)
}
