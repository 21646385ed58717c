// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/lib/pq"
)

// NotificationType 通知类型
type NotificationType string

const (
	NotificationTypeFileProcessing NotificationType = "file_processing"
	NotificationTypeFileReady      NotificationType = "file_ready"
)

// Notification 站内通知
type Notification struct {
	ID         string           `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserID     string           `json:"user_id" gorm:"type:uuid;index;not null"`
	Type       NotificationType `json:"type" gorm:"type:varchar(64);not null"`
	Title      string           `json:"title" gorm:"type:varchar(255);not null"`
	Message    string           `json:"message,omitempty" gorm:"type:text"`
	RelatedIDs pq.StringArray   `json:"related_ids,omitempty" gorm:"type:text[]"`
	IsRead     bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt  time.Time        `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Notification) TableName() string {
	return "notifications"
}

// NewNotification 创建新通知
func NewNotification(userID string, typ NotificationType, title, message string, relatedIDs []string) *Notification {
	return &Notification{
		UserID:     userID,
		Type:       typ,
		Title:      title,
		Message:    message,
		RelatedIDs: pq.StringArray(relatedIDs),
		IsRead:     false,
		CreatedAt:  time.Now(),
	}
}
