// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"scholar-sync-api/internal/domain/entity"
)

// ProfileRepository 用户档案仓储实现
type ProfileRepository struct {
	client *Client
}

// NewProfileRepository 创建用户档案仓储
func NewProfileRepository(client *Client) *ProfileRepository {
	return &ProfileRepository{client: client}
}

// GetByID 根据用户 ID 获取档案
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	ctx, span := tracer.Start(ctx, "postgres.ProfileRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var profile entity.Profile
	if err := db.First(&profile, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &profile, nil
}
