// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"scholar-sync-api/internal/domain/entity"
)

// ChunkRepository 切片仓储实现
type ChunkRepository struct {
	client *Client
}

// NewChunkRepository 创建切片仓储
func NewChunkRepository(client *Client) *ChunkRepository {
	return &ChunkRepository{client: client}
}

// Create 创建切片
func (r *ChunkRepository) Create(ctx context.Context, chunk *entity.Chunk) error {
	ctx, span := tracer.Start(ctx, "postgres.ChunkRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(chunk).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create chunk: %w", err)
	}
	return nil
}

// GroupIDsByContent 内容大小写不敏感子串匹配，返回命中切片所属的文档组 ID
func (r *ChunkRepository) GroupIDsByContent(ctx context.Context, query string) ([]string, error) {
	ctx, span := tracer.Start(ctx, "postgres.ChunkRepository.GroupIDsByContent")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var groupIDs []string
	if err := db.Model(&entity.Chunk{}).
		Joins("JOIN documents ON documents.id = chunks.document_id").
		Where("chunks.text_content ILIKE ?", containsPattern(query)).
		Distinct().
		Pluck("documents.group_id", &groupIDs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to match chunk content: %w", err)
	}
	return groupIDs, nil
}
