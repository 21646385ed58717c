// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/domain/repository"
)

// DocumentGroupRepository 文档组仓储实现
type DocumentGroupRepository struct {
	client *Client
}

// NewDocumentGroupRepository 创建文档组仓储
func NewDocumentGroupRepository(client *Client) *DocumentGroupRepository {
	return &DocumentGroupRepository{client: client}
}

// Create 创建文档组
func (r *DocumentGroupRepository) Create(ctx context.Context, group *entity.DocumentGroup) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentGroupRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(group).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create document group: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取文档组
func (r *DocumentGroupRepository) GetByID(ctx context.Context, id string) (*entity.DocumentGroup, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentGroupRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var group entity.DocumentGroup
	if err := db.First(&group, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get document group: %w", err)
	}
	return &group, nil
}

// GetByIDs 批量获取文档组
func (r *DocumentGroupRepository) GetByIDs(ctx context.Context, ids []string) ([]*entity.DocumentGroup, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentGroupRepository.GetByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}

	db := getDB(ctx, r.client.db)
	var groups []*entity.DocumentGroup
	if err := db.Where("id IN ?", ids).Find(&groups).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get document groups: %w", err)
	}
	return groups, nil
}

// SetActiveDocument 设置当前生效版本
func (r *DocumentGroupRepository) SetActiveDocument(ctx context.Context, groupID, documentID string) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentGroupRepository.SetActiveDocument")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.DocumentGroup{}).
		Where("id = ?", groupID).
		Update("active_document_id", documentID).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to set active document: %w", err)
	}
	return nil
}

// UpdateAIDescription 更新组级 AI 描述
func (r *DocumentGroupRepository) UpdateAIDescription(ctx context.Context, id, description string) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentGroupRepository.UpdateAIDescription")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.DocumentGroup{}).
		Where("id = ?", id).
		Update("ai_description", description).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update group ai description: %w", err)
	}
	return nil
}

// ListMine 获取请求者创建的或所属学校的文档组
func (r *DocumentGroupRepository) ListMine(ctx context.Context, vis repository.Visibility) ([]*entity.DocumentGroup, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentGroupRepository.ListMine")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.DocumentGroup{})
	if vis.UniversityID != nil {
		query = query.Where("created_by = ? OR university_id = ?", vis.UserID, *vis.UniversityID)
	} else {
		query = query.Where("created_by = ?", vis.UserID)
	}

	var groups []*entity.DocumentGroup
	if err := query.Order("created_at DESC").Find(&groups).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list document groups: %w", err)
	}
	return groups, nil
}

// SearchTitles 标题大小写不敏感子串匹配，仅返回对请求者可见的组
func (r *DocumentGroupRepository) SearchTitles(ctx context.Context, query string, vis repository.Visibility) ([]*entity.DocumentGroup, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentGroupRepository.SearchTitles")
	defer span.End()

	db := getDB(ctx, r.client.db)
	q := db.Model(&entity.DocumentGroup{}).
		Where("title ILIKE ?", containsPattern(query))
	q = applyVisibility(q, "document_groups", vis)

	var groups []*entity.DocumentGroup
	if err := q.Find(&groups).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search group titles: %w", err)
	}
	return groups, nil
}
