// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"time"

	"scholar-sync-api/internal/domain/entity"
)

// CreateGroupForm 创建文档组的 multipart 表单字段（文件字段名为 file）
type CreateGroupForm struct {
	Title            string `form:"title" binding:"required"`
	Scope            string `form:"scope,omitempty"`
	HumanDescription string `form:"human_description,omitempty"`
}

// AddVersionForm 追加版本的 multipart 表单字段（文件字段名为 file）
type AddVersionForm struct {
	HumanDescription string `form:"human_description,omitempty"`
}

// GroupResponse 文档组响应
type GroupResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Scope            string    `json:"scope"`
	UniversityID     *string   `json:"university_id,omitempty"`
	CreatedBy        string    `json:"created_by"`
	ActiveDocumentID *string   `json:"active_document_id,omitempty"`
	AIDescription    string    `json:"ai_description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UploadResponse 上传响应：组与新建的版本
type UploadResponse struct {
	Group    *GroupResponse    `json:"group"`
	Document *DocumentResponse `json:"document"`
}

// FromGroup 将文档组实体转换为响应
func FromGroup(group *entity.DocumentGroup) *GroupResponse {
	if group == nil {
		return nil
	}
	return &GroupResponse{
		ID:               group.ID,
		Title:            group.Title,
		Scope:            string(group.Scope),
		UniversityID:     group.UniversityID,
		CreatedBy:        group.CreatedBy,
		ActiveDocumentID: group.ActiveDocumentID,
		AIDescription:    group.AIDescription,
		CreatedAt:        group.CreatedAt,
		UpdatedAt:        group.UpdatedAt,
	}
}

// FromGroups 批量转换
func FromGroups(groups []*entity.DocumentGroup) []*GroupResponse {
	out := make([]*GroupResponse, 0, len(groups))
	for _, group := range groups {
		if resp := FromGroup(group); resp != nil {
			out = append(out, resp)
		}
	}
	return out
}
