package retrieval

import "context"

// VectorStore 定义应用层对“向量存储/检索”的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Milvus）。
type VectorStore interface {
	EnsureCollection(ctx context.Context) error
	MatchGroups(ctx context.Context, vector []float32, topK int) ([]GroupMatch, error)
}

// GroupMatch 向量检索命中，按相关度降序返回
type GroupMatch struct {
	GroupID string
	Score   float32
}
