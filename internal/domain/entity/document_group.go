// Package entity 定义领域实体
package entity

import (
	"time"
)

// GroupScope 文档组可见范围
type GroupScope string

const (
	GroupScopeLocal  GroupScope = "local"
	GroupScopeGlobal GroupScope = "global"
)

// DocumentGroup 文档组实体，聚合同一份资料的全部版本
type DocumentGroup struct {
	ID               string     `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Title            string     `json:"title" gorm:"type:varchar(512);not null"`
	Scope            GroupScope `json:"scope" gorm:"type:varchar(32);index;default:'local'"`
	UniversityID     *string    `json:"university_id,omitempty" gorm:"type:uuid;index"`
	CreatedBy        string     `json:"created_by" gorm:"type:uuid;index;not null"`
	ActiveDocumentID *string    `json:"active_document_id,omitempty" gorm:"type:uuid"`
	AIDescription    string     `json:"ai_description,omitempty" gorm:"column:ai_description;type:text"`
	CreatedAt        time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (DocumentGroup) TableName() string {
	return "document_groups"
}

// NewDocumentGroup 创建新文档组
func NewDocumentGroup(title string, scope GroupScope, universityID *string, createdBy string) *DocumentGroup {
	now := time.Now()
	return &DocumentGroup{
		Title:        title,
		Scope:        scope,
		UniversityID: universityID,
		CreatedBy:    createdBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// SetActiveDocument 指定当前生效的版本
func (g *DocumentGroup) SetActiveDocument(documentID string) {
	g.ActiveDocumentID = &documentID
	g.UpdatedAt = time.Now()
}
