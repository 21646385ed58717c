// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"scholar-sync-api/internal/domain/entity"
)

// DocumentResponse 文档版本响应
type DocumentResponse struct {
	ID               string    `json:"id"`
	GroupID          string    `json:"group_id"`
	VersionNumber    int       `json:"version_number"`
	FileName         string    `json:"file_name"`
	MimeType         string    `json:"mime_type,omitempty"`
	HumanDescription string    `json:"human_description,omitempty"`
	AIDescription    string    `json:"ai_description,omitempty"`
	Status           string    `json:"status"`
	IsEmbedded       bool      `json:"is_embedded"`
	IsActive         bool      `json:"is_active,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// DownloadURLResponse 限时下载地址响应
type DownloadURLResponse struct {
	URL string `json:"url"`
}

// FromDocument 将文档实体转换为响应
func FromDocument(doc *entity.Document) *DocumentResponse {
	if doc == nil {
		return nil
	}
	return &DocumentResponse{
		ID:               doc.ID,
		GroupID:          doc.GroupID,
		VersionNumber:    doc.VersionNumber,
		FileName:         doc.FileName,
		MimeType:         doc.MimeType,
		HumanDescription: doc.HumanDescription,
		AIDescription:    doc.AIDescription,
		Status:           string(doc.Status),
		IsEmbedded:       doc.IsEmbedded,
		CreatedAt:        doc.CreatedAt,
		UpdatedAt:        doc.UpdatedAt,
	}
}

// FromDocuments 批量转换
func FromDocuments(docs []*entity.Document) []*DocumentResponse {
	out := make([]*DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		if resp := FromDocument(doc); resp != nil {
			out = append(out, resp)
		}
	}
	return out
}
