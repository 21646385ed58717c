// Package entity 定义领域实体
package entity

import (
	"time"
)

// Chunk 文档切片，chunk_index 在同一文档内从 0 开始连续递增
type Chunk struct {
	ID          string    `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DocumentID  string    `json:"document_id" gorm:"type:uuid;index;not null"`
	ChunkIndex  int       `json:"chunk_index" gorm:"not null"`
	TextContent string    `json:"text_content" gorm:"type:text;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName 指定表名
func (Chunk) TableName() string {
	return "chunks"
}

// NewChunk 创建新切片
func NewChunk(documentID string, index int, text string) *Chunk {
	return &Chunk{
		DocumentID:  documentID,
		ChunkIndex:  index,
		TextContent: text,
		CreatedAt:   time.Now(),
	}
}
