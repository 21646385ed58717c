// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"scholar-sync-api/internal/domain/entity"
)

// ProfileRepository 用户档案仓储接口
type ProfileRepository interface {
	// GetByID 根据用户 ID 获取档案
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
}
