// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"scholar-sync-api/internal/application/retrieval"
)

// SearchRequest 检索请求
type SearchRequest struct {
	Query string `json:"query" binding:"required"`
	Mode  string `json:"mode,omitempty"`
	TopK  int    `json:"top_k,omitempty"`
}

// SearchResultItem 单条检索结果
type SearchResultItem struct {
	GroupID          string   `json:"group_id"`
	Title            string   `json:"title"`
	Scope            string   `json:"scope"`
	AIDescription    string   `json:"ai_description,omitempty"`
	ActiveDocumentID string   `json:"active_document_id,omitempty"`
	FileName         string   `json:"file_name,omitempty"`
	VersionNumber    int      `json:"version_number,omitempty"`
	DocumentStatus   string   `json:"document_status,omitempty"`
	Similarity       *float64 `json:"similarity,omitempty"`
}

// SearchResponse 检索响应
type SearchResponse struct {
	Mode           string             `json:"mode"`
	FallbackReason string             `json:"fallback_reason,omitempty"`
	Results        []SearchResultItem `json:"results"`
}

// FromSearchOutput 将引擎输出转换为响应
func FromSearchOutput(out *retrieval.SearchOutput) *SearchResponse {
	if out == nil {
		return &SearchResponse{Results: []SearchResultItem{}}
	}
	items := make([]SearchResultItem, 0, len(out.Results))
	for _, r := range out.Results {
		items = append(items, SearchResultItem{
			GroupID:          r.GroupID,
			Title:            r.Title,
			Scope:            r.Scope,
			AIDescription:    r.AIDescription,
			ActiveDocumentID: r.ActiveDocumentID,
			FileName:         r.FileName,
			VersionNumber:    r.VersionNumber,
			DocumentStatus:   r.DocumentStatus,
			Similarity:       r.Similarity,
		})
	}
	return &SearchResponse{
		Mode:           string(out.Mode),
		FallbackReason: out.FallbackReason,
		Results:        items,
	}
}
