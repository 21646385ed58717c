// Package milvus 提供 Milvus 向量数据库访问层实现
package milvus

import (
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
)

const (
	// CollectionChunkEmbeddings 文档切片向量集合
	CollectionChunkEmbeddings = "chunk_embeddings"

	// VectorDimension 向量维度（text-embedding-004）
	VectorDimension = 768
)

// ChunkEmbeddingsSchema 切片向量 Collection Schema
// chunk_id/document_id/group_id 为冗余字段，检索时无需回表即可按组聚合
func ChunkEmbeddingsSchema() *entity.Schema {
	return &entity.Schema{
		CollectionName: CollectionChunkEmbeddings,
		Description:    "Document chunk embeddings for semantic group retrieval",
		Fields: []*entity.Field{
			{
				Name:       "id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "vector",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": "768",
				},
			},
			{
				Name:     "chunk_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "document_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "group_id",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "model_name",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "chunk_index",
				DataType: entity.FieldTypeInt64,
			},
		},
	}
}

// ChunkEmbedding 切片向量数据结构
type ChunkEmbedding struct {
	ID         string    `json:"id"`
	Vector     []float32 `json:"vector"`
	ChunkID    string    `json:"chunk_id"`
	DocumentID string    `json:"document_id"`
	GroupID    string    `json:"group_id"`
	ModelName  string    `json:"model_name"`
	ChunkIndex int64     `json:"chunk_index"`
}
