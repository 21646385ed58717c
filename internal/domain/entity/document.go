// Package entity 定义领域实体
package entity

import (
	"time"
)

// DocumentStatus 文档处理状态
type DocumentStatus string

const (
	DocumentStatusUploaded   DocumentStatus = "uploaded"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusReady      DocumentStatus = "ready"
)

// Document 文档版本实体，一个版本对应对象存储中的一个文件
type Document struct {
	ID               string         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	GroupID          string         `json:"group_id" gorm:"type:uuid;index;not null"`
	VersionNumber    int            `json:"version_number" gorm:"not null;default:1"`
	FileName         string         `json:"file_name" gorm:"type:varchar(512);not null"`
	FilePath         string         `json:"file_path" gorm:"type:varchar(1024);not null"`
	MimeType         string         `json:"mime_type,omitempty" gorm:"type:varchar(128)"`
	HumanDescription string         `json:"human_description,omitempty" gorm:"type:text"`
	AIDescription    string         `json:"ai_description,omitempty" gorm:"column:ai_description;type:text"`
	Status           DocumentStatus `json:"status" gorm:"type:varchar(32);index;default:'uploaded'"`
	IsEmbedded       bool           `json:"is_embedded" gorm:"default:false"`
	CreatedAt        time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt        time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName 指定表名
func (Document) TableName() string {
	return "documents"
}

// NewDocument 创建新文档版本
func NewDocument(groupID string, versionNumber int, fileName, filePath, mimeType string) *Document {
	now := time.Now()
	return &Document{
		GroupID:       groupID,
		VersionNumber: versionNumber,
		FileName:      fileName,
		FilePath:      filePath,
		MimeType:      mimeType,
		Status:        DocumentStatusUploaded,
		IsEmbedded:    false,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

// IsReady 检查文档是否处理完成
func (d *Document) IsReady() bool {
	return d.Status == DocumentStatusReady
}
