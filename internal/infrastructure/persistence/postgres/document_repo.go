// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/domain/repository"
)

// DocumentRepository 文档仓储实现
type DocumentRepository struct {
	client *Client
}

// NewDocumentRepository 创建文档仓储
func NewDocumentRepository(client *Client) *DocumentRepository {
	return &DocumentRepository{client: client}
}

// Create 创建文档版本
func (r *DocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(doc).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create document: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取文档
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*entity.Document, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var doc entity.Document
	if err := db.First(&doc, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// NextUploaded 获取最早一条待处理文档，队列为空时返回 (nil, nil)
func (r *DocumentRepository) NextUploaded(ctx context.Context) (*entity.Document, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.NextUploaded")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var doc entity.Document
	if err := db.Where("status = ?", entity.DocumentStatusUploaded).
		Order("created_at ASC").
		First(&doc).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get next uploaded document: %w", err)
	}
	return &doc, nil
}

// UpdateStatus 更新文档状态
func (r *DocumentRepository) UpdateStatus(ctx context.Context, id string, status entity.DocumentStatus) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.UpdateStatus")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Document{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update document status: %w", err)
	}
	return nil
}

// MarkReady 标记文档处理完成
func (r *DocumentRepository) MarkReady(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.MarkReady")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Document{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":      entity.DocumentStatusReady,
			"is_embedded": true,
		}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to mark document ready: %w", err)
	}
	return nil
}

// UpdateAIDescription 更新 AI 描述
func (r *DocumentRepository) UpdateAIDescription(ctx context.Context, id, description string) error {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.UpdateAIDescription")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Model(&entity.Document{}).
		Where("id = ?", id).
		Update("ai_description", description).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update document ai description: %w", err)
	}
	return nil
}

// MaxVersionNumber 获取文档组内最大版本号，无版本时返回 0
func (r *DocumentRepository) MaxVersionNumber(ctx context.Context, groupID string) (int, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.MaxVersionNumber")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var max int
	if err := db.Model(&entity.Document{}).
		Where("group_id = ?", groupID).
		Select("COALESCE(MAX(version_number), 0)").
		Scan(&max).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to get max version number: %w", err)
	}
	return max, nil
}

// ListVisibleActive 获取对请求者可见的各文档组当前生效且已就绪的版本
func (r *DocumentRepository) ListVisibleActive(ctx context.Context, vis repository.Visibility) ([]*entity.Document, error) {
	ctx, span := tracer.Start(ctx, "postgres.DocumentRepository.ListVisibleActive")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Document{}).
		Joins("JOIN document_groups g ON g.active_document_id = documents.id").
		Where("documents.status = ?", entity.DocumentStatusReady)
	query = applyVisibility(query, "g", vis)

	var docs []*entity.Document
	if err := query.Order("documents.created_at DESC").Find(&docs).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list visible documents: %w", err)
	}
	return docs, nil
}

// applyVisibility 追加可见性过滤：global 或本人创建或同校
func applyVisibility(query *gorm.DB, alias string, vis repository.Visibility) *gorm.DB {
	if vis.UniversityID != nil {
		return query.Where(
			fmt.Sprintf("%s.scope = ? OR %s.created_by = ? OR %s.university_id = ?", alias, alias, alias),
			entity.GroupScopeGlobal, vis.UserID, *vis.UniversityID,
		)
	}
	return query.Where(
		fmt.Sprintf("%s.scope = ? OR %s.created_by = ?", alias, alias),
		entity.GroupScopeGlobal, vis.UserID,
	)
}
