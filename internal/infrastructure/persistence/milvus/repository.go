// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"scholar-sync-api/pkg/metrics"
)

// Repository 向量检索仓储
type Repository struct {
	client *Client
}

// NewRepository 创建向量检索仓储
func NewRepository(client *Client) *Repository {
	return &Repository{client: client}
}

// GroupMatch 按切片命中折算出的文档组匹配结果
type GroupMatch struct {
	GroupID    string
	Score      float32
	ChunkID    string
	DocumentID string
}

// CreateCollection 创建集合
func (r *Repository) CreateCollection(ctx context.Context, schema *entity.Schema) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateCollection",
		trace.WithAttributes(attribute.String("collection", schema.CollectionName)))
	defer span.End()

	collName := r.client.CollectionName(schema.CollectionName)
	schema.CollectionName = collName

	err := r.client.milvus.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create collection: %w", err)
	}

	return nil
}

// CreateIndex 创建 HNSW 索引
func (r *Repository) CreateIndex(ctx context.Context, collection string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.CreateIndex",
		trace.WithAttributes(attribute.String("collection", collection)))
	defer span.End()

	collName := r.client.CollectionName(collection)

	idx, err := entity.NewIndexHNSW(
		entity.COSINE,
		r.client.config.HNSWM,
		r.client.config.HNSWEfConstruction,
	)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = r.client.milvus.CreateIndex(ctx, collName, "vector", idx, false)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create index: %w", err)
	}

	return nil
}

// InsertEmbedding 插入单条切片向量（摄取管线逐切片调用）
func (r *Repository) InsertEmbedding(ctx context.Context, emb *ChunkEmbedding) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.InsertEmbedding",
		trace.WithAttributes(
			attribute.String("chunk_id", emb.ChunkID),
			attribute.String("document_id", emb.DocumentID),
		))
	defer span.End()

	collName := r.client.CollectionName(CollectionChunkEmbeddings)

	idCol := entity.NewColumnVarChar("id", []string{emb.ID})
	vectorCol := entity.NewColumnFloatVector("vector", VectorDimension, [][]float32{emb.Vector})
	chunkCol := entity.NewColumnVarChar("chunk_id", []string{emb.ChunkID})
	docCol := entity.NewColumnVarChar("document_id", []string{emb.DocumentID})
	groupCol := entity.NewColumnVarChar("group_id", []string{emb.GroupID})
	modelCol := entity.NewColumnVarChar("model_name", []string{emb.ModelName})
	indexCol := entity.NewColumnInt64("chunk_index", []int64{emb.ChunkIndex})

	_, err := r.client.milvus.Insert(ctx, collName, "",
		idCol, vectorCol, chunkCol, docCol, groupCol, modelCol, indexCol)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to insert embedding: %w", err)
	}

	return nil
}

// MatchGroups 向量检索，按 Milvus 返回顺序给出 (group_id, score) 命中列表
func (r *Repository) MatchGroups(ctx context.Context, vector []float32, topK int) ([]*GroupMatch, error) {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return nil, fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.MatchGroups",
		trace.WithAttributes(attribute.Int("top_k", topK)))
	defer span.End()

	collName := r.client.CollectionName(CollectionChunkEmbeddings)
	start := time.Now()

	sp, err := entity.NewIndexHNSWSearchParam(128)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to create search param: %w", err)
	}

	results, err := r.client.milvus.Search(ctx,
		collName,
		nil,
		"",
		[]string{"group_id", "chunk_id", "document_id"},
		[]entity.Vector{entity.FloatVector(vector)},
		"vector",
		entity.COSINE,
		topK,
		sp,
	)
	metrics.MilvusSearchDuration.WithLabelValues(CollectionChunkEmbeddings).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.MilvusSearchTotal.WithLabelValues(CollectionChunkEmbeddings, "error").Inc()
		span.RecordError(err)
		return nil, fmt.Errorf("failed to search: %w", err)
	}
	metrics.MilvusSearchTotal.WithLabelValues(CollectionChunkEmbeddings, "ok").Inc()

	var matches []*GroupMatch
	for _, result := range results {
		for i := 0; i < result.ResultCount; i++ {
			m := &GroupMatch{
				Score: result.Scores[i],
			}

			if groupCol, ok := result.Fields.GetColumn("group_id").(*entity.ColumnVarChar); ok {
				m.GroupID = groupCol.Data()[i]
			}
			if chunkCol, ok := result.Fields.GetColumn("chunk_id").(*entity.ColumnVarChar); ok {
				m.ChunkID = chunkCol.Data()[i]
			}
			if docCol, ok := result.Fields.GetColumn("document_id").(*entity.ColumnVarChar); ok {
				m.DocumentID = docCol.Data()[i]
			}

			matches = append(matches, m)
		}
	}

	span.SetAttributes(attribute.Int("result_count", len(matches)))
	return matches, nil
}

// DeleteByDocument 删除文档的全部切片向量
func (r *Repository) DeleteByDocument(ctx context.Context, documentID string) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}
	ctx, span := tracer.Start(ctx, "milvus.DeleteByDocument",
		trace.WithAttributes(attribute.String("document_id", documentID)))
	defer span.End()

	collName := r.client.CollectionName(CollectionChunkEmbeddings)
	filter := fmt.Sprintf(`document_id == "%s"`, documentID)

	if err := r.client.milvus.Delete(ctx, collName, "", filter); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete embeddings: %w", err)
	}
	return nil
}

// EnsureChunkEmbeddingsCollection 确保 chunk_embeddings 集合与索引可用（不存在则创建）。
// 约束：不会做 drop/rebuild 等破坏性操作。
func (r *Repository) EnsureChunkEmbeddingsCollection(ctx context.Context) error {
	if r == nil || r.client == nil || r.client.milvus == nil {
		return fmt.Errorf("milvus client not configured")
	}

	exists, err := r.client.HasCollection(ctx, CollectionChunkEmbeddings)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.CreateCollection(ctx, ChunkEmbeddingsSchema()); err != nil {
			return err
		}
		// 新建集合时创建索引；若失败，允许后续由运维介入。
		_ = r.CreateIndex(ctx, CollectionChunkEmbeddings)
	}

	// 尝试确保集合已加载（若已加载，Milvus 会返回成功）
	return r.client.LoadCollection(ctx, CollectionChunkEmbeddings)
}
