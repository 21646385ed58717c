// Package entity 定义领域实体
package entity

import (
	"time"
)

// UserRole 用户角色
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleFaculty UserRole = "faculty"
	UserRoleStudent UserRole = "student"
)

// Profile 用户档案，检索可见性判断依赖 university_id
type Profile struct {
	ID           string    `json:"id" gorm:"type:uuid;primaryKey"`
	UniversityID *string   `json:"university_id,omitempty" gorm:"type:uuid;index"`
	Role         UserRole  `json:"role,omitempty" gorm:"type:varchar(64)"`
	DisplayName  string    `json:"display_name,omitempty" gorm:"type:varchar(255)"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Profile) TableName() string {
	return "profiles"
}
