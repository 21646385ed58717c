package milvus

import (
	"context"

	"scholar-sync-api/internal/application/ingest"
	"scholar-sync-api/internal/application/retrieval"
)

// RetrievalVectorStore 把 Milvus 仓储适配为检索引擎的 VectorStore
type RetrievalVectorStore struct {
	repo *Repository
}

// NewRetrievalVectorStore 创建检索侧适配器
func NewRetrievalVectorStore(repo *Repository) *RetrievalVectorStore {
	return &RetrievalVectorStore{repo: repo}
}

var _ retrieval.VectorStore = (*RetrievalVectorStore)(nil)

func (s *RetrievalVectorStore) EnsureCollection(ctx context.Context) error {
	if s == nil || s.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return s.repo.EnsureChunkEmbeddingsCollection(ctx)
}

func (s *RetrievalVectorStore) MatchGroups(ctx context.Context, vector []float32, topK int) ([]retrieval.GroupMatch, error) {
	if s == nil || s.repo == nil {
		return nil, retrieval.ErrVectorDisabled
	}

	out, err := s.repo.MatchGroups(ctx, vector, topK)
	if err != nil {
		return nil, err
	}

	matches := make([]retrieval.GroupMatch, 0, len(out))
	for _, m := range out {
		if m == nil {
			continue
		}
		matches = append(matches, retrieval.GroupMatch{
			GroupID: m.GroupID,
			Score:   m.Score,
		})
	}
	return matches, nil
}

// IngestVectorWriter 把 Milvus 仓储适配为摄取管线的 VectorWriter
type IngestVectorWriter struct {
	repo *Repository
}

// NewIngestVectorWriter 创建摄取侧适配器
func NewIngestVectorWriter(repo *Repository) *IngestVectorWriter {
	return &IngestVectorWriter{repo: repo}
}

var _ ingest.VectorWriter = (*IngestVectorWriter)(nil)

func (w *IngestVectorWriter) InsertEmbedding(ctx context.Context, vec *ingest.ChunkVector) error {
	if w == nil || w.repo == nil {
		return retrieval.ErrVectorDisabled
	}
	return w.repo.InsertEmbedding(ctx, &ChunkEmbedding{
		ID:         vec.ID,
		Vector:     vec.Vector,
		ChunkID:    vec.ChunkID,
		DocumentID: vec.DocumentID,
		GroupID:    vec.GroupID,
		ModelName:  vec.ModelName,
		ChunkIndex: int64(vec.ChunkIndex),
	})
}
