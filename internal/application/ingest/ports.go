package ingest

import (
	"context"

	"scholar-sync-api/internal/domain/entity"
)

// BlobStore 定义摄取管线对对象存储的最小依赖（port）。
type BlobStore interface {
	Download(ctx context.Context, path string) ([]byte, error)
}

// TextExtractor 定义文本提取依赖（port）。
// ok=false 表示文件类型不支持（非错误）。
type TextExtractor interface {
	Extract(ctx context.Context, fileName, mimeType string, data []byte) (string, bool, error)
}

// ChunkVector 待写入向量存储的切片向量
type ChunkVector struct {
	ID         string
	Vector     []float32
	ChunkID    string
	DocumentID string
	GroupID    string
	ModelName  string
	ChunkIndex int
}

// VectorWriter 定义向量存储写入依赖（port），由 Milvus 适配器实现。
type VectorWriter interface {
	InsertEmbedding(ctx context.Context, vec *ChunkVector) error
}

// Notifier 定义通知发送依赖（port）。实现必须尽力而为：失败只记日志，不向上传播。
type Notifier interface {
	Emit(ctx context.Context, userID string, typ entity.NotificationType, title, message string, relatedIDs []string)
}
