package ingest

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/google/uuid"

	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/domain/repository"
	"scholar-sync-api/pkg/logger"
	"scholar-sync-api/pkg/metrics"
)

// 切片处理阶段标识
const (
	StageChunkInsert  = "chunk_insert"
	StageEmbed        = "embed"
	StageVectorInsert = "vector_insert"
)

// ChunkFailure 单个切片的失败记录
type ChunkFailure struct {
	Index int
	Stage string
	Err   error
}

// Report 单个文档的摄取结果汇总。
// 下载失败以外的任何局部失败都不回滚：已写入的切片和向量保持原样。
type Report struct {
	DocumentID          string
	DownloadFailed      bool
	Unsupported         bool
	DescriptionFallback bool
	ChunkCount          int
	Indexed             int
	Failures            []ChunkFailure
}

// Pipeline 文档摄取管线
type Pipeline struct {
	docs      repository.DocumentRepository
	groups    repository.DocumentGroupRepository
	chunks    repository.ChunkRepository
	blob      BlobStore
	extractor TextExtractor
	describer *DescriptionGenerator
	embedder  embedding.Embedder
	vector    VectorWriter
	notifier  Notifier

	embedModel   string
	chunkSize    int
	chunkOverlap int
}

// PipelineConfig 管线装配参数
type PipelineConfig struct {
	Docs      repository.DocumentRepository
	Groups    repository.DocumentGroupRepository
	Chunks    repository.ChunkRepository
	Blob      BlobStore
	Extractor TextExtractor
	Describer *DescriptionGenerator
	Embedder  embedding.Embedder
	Vector    VectorWriter
	Notifier  Notifier

	EmbedModel   string
	ChunkSize    int
	ChunkOverlap int
}

// NewPipeline 创建摄取管线
func NewPipeline(cfg PipelineConfig) *Pipeline {
	size := cfg.ChunkSize
	if size <= 0 {
		size = DefaultChunkSize
	}
	overlap := cfg.ChunkOverlap
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	return &Pipeline{
		docs:         cfg.Docs,
		groups:       cfg.Groups,
		chunks:       cfg.Chunks,
		blob:         cfg.Blob,
		extractor:    cfg.Extractor,
		describer:    cfg.Describer,
		embedder:     cfg.Embedder,
		vector:       cfg.Vector,
		notifier:     cfg.Notifier,
		embedModel:   cfg.EmbedModel,
		chunkSize:    size,
		chunkOverlap: overlap,
	}
}

// Process 处理单个文档。
// 只有下载失败会把状态回滚到 uploaded 并中止；其后的所有失败都按切片记录并继续。
func (p *Pipeline) Process(ctx context.Context, doc *entity.Document) (*Report, error) {
	ctx = logger.WithContext(ctx, logger.DocumentIDKey, doc.ID)
	ctx = logger.WithContext(ctx, logger.GroupIDKey, doc.GroupID)
	start := time.Now()

	report := &Report{DocumentID: doc.ID}

	// 1. 置为 processing 并通知上传者
	if err := p.docs.UpdateStatus(ctx, doc.ID, entity.DocumentStatusProcessing); err != nil {
		return report, fmt.Errorf("failed to mark document processing: %w", err)
	}
	logger.Info(ctx, "document processing started", "file_name", doc.FileName)

	uploaderID := p.resolveUploader(ctx, doc.GroupID)
	safeName := html.EscapeString(doc.FileName)
	if uploaderID != "" {
		p.notifier.Emit(ctx, uploaderID, entity.NotificationTypeFileProcessing,
			"Document processing started",
			fmt.Sprintf("<strong>%s</strong> is being analysed and indexed. This may take a moment.", safeName),
			[]string{doc.ID, doc.GroupID},
		)
	}

	// 2. 下载文件，失败则回滚状态并中止，不产生任何写入
	data, err := p.blob.Download(ctx, doc.FilePath)
	if err != nil {
		logger.Error(ctx, "document download failed, rolling back to uploaded", err, "file_path", doc.FilePath)
		if rbErr := p.docs.UpdateStatus(ctx, doc.ID, entity.DocumentStatusUploaded); rbErr != nil {
			logger.Error(ctx, "status rollback failed", rbErr)
		}
		report.DownloadFailed = true
		metrics.IngestDocumentsTotal.WithLabelValues("download_failed").Inc()
		return report, nil
	}

	// 3. 提取文本；解析错误视同空文本继续
	text, supported, err := p.extractor.Extract(ctx, doc.FileName, doc.MimeType, data)
	if err != nil {
		logger.Error(ctx, "text extraction failed, continuing with empty text", err)
		text = ""
	}
	report.Unsupported = !supported

	if len([]rune(text)) == 0 || allWhitespace(text) {
		// 无可索引内容：直接就绪，is_embedded 保持 false
		if err := p.docs.UpdateStatus(ctx, doc.ID, entity.DocumentStatusReady); err != nil {
			logger.Error(ctx, "failed to mark document ready", err)
		}
		if uploaderID != "" {
			p.notifier.Emit(ctx, uploaderID, entity.NotificationTypeFileReady,
				"Document ready",
				fmt.Sprintf("<strong>%s</strong> has been uploaded (no text content to index).", safeName),
				[]string{doc.ID, doc.GroupID},
			)
		}
		metrics.IngestDocumentsTotal.WithLabelValues("completed").Inc()
		return report, nil
	}

	// 4. 生成 AI 描述，失败回退人工描述；文档与组各存一份
	description, generated := p.describer.Describe(ctx, doc.HumanDescription, text)
	report.DescriptionFallback = !generated
	if generated {
		if err := p.docs.UpdateAIDescription(ctx, doc.ID, description); err != nil {
			logger.Error(ctx, "failed to save document ai description", err)
		}
		if err := p.groups.UpdateAIDescription(ctx, doc.GroupID, description); err != nil {
			logger.Error(ctx, "failed to save group ai description", err)
		}
	}

	// 5. 切片
	pieces := ChunkText(text, p.chunkSize, p.chunkOverlap)
	report.ChunkCount = len(pieces)
	if len(pieces) == 0 {
		if err := p.docs.UpdateStatus(ctx, doc.ID, entity.DocumentStatusReady); err != nil {
			logger.Error(ctx, "failed to mark document ready", err)
		}
		metrics.IngestDocumentsTotal.WithLabelValues("completed").Inc()
		return report, nil
	}

	// 6. 逐切片：落库 -> 嵌入 -> 写入向量存储，任何一步失败都只跳过该切片
	logger.Info(ctx, "embedding chunks", "count", len(pieces))
	for idx, content := range pieces {
		outcome := p.processChunk(ctx, doc, idx, content)
		if outcome != nil {
			report.Failures = append(report.Failures, *outcome)
			continue
		}
		report.Indexed++
	}

	// 7. 无条件置为 ready + is_embedded=true，即使部分切片失败
	if err := p.docs.MarkReady(ctx, doc.ID); err != nil {
		logger.Error(ctx, "failed to mark document ready", err)
	}

	// 8. 通知上传者
	if uploaderID != "" {
		p.notifier.Emit(ctx, uploaderID, entity.NotificationTypeFileReady,
			"Document ready",
			fmt.Sprintf("<strong>%s</strong> has been processed and is now searchable.", safeName),
			[]string{doc.ID, doc.GroupID},
		)
	}

	metrics.IngestDocumentsTotal.WithLabelValues("completed").Inc()
	metrics.IngestDuration.WithLabelValues(doc.MimeType).Observe(time.Since(start).Seconds())
	logger.Info(ctx, "document ingestion finished",
		"chunks", report.ChunkCount,
		"indexed", report.Indexed,
		"failures", len(report.Failures),
	)
	return report, nil
}

// processChunk 处理单个切片，失败时返回失败记录
func (p *Pipeline) processChunk(ctx context.Context, doc *entity.Document, idx int, content string) *ChunkFailure {
	chunk := entity.NewChunk(doc.ID, idx, content)
	chunk.ID = uuid.NewString()

	if err := p.chunks.Create(ctx, chunk); err != nil {
		logger.Error(ctx, "chunk insert failed, skipping embedding", err, "chunk_index", idx)
		metrics.IngestChunksTotal.WithLabelValues("insert_failed").Inc()
		return &ChunkFailure{Index: idx, Stage: StageChunkInsert, Err: err}
	}

	// 每个切片单独调用一次嵌入
	vectors, err := p.embedder.EmbedStrings(ctx, []string{content})
	if err != nil || len(vectors) == 0 {
		if err == nil {
			err = fmt.Errorf("empty embedding result")
		}
		logger.Error(ctx, "chunk embedding failed", err, "chunk_index", idx)
		metrics.IngestChunksTotal.WithLabelValues("embed_failed").Inc()
		return &ChunkFailure{Index: idx, Stage: StageEmbed, Err: err}
	}

	vec := make([]float32, 0, len(vectors[0]))
	for _, x := range vectors[0] {
		vec = append(vec, float32(x))
	}

	if err := p.vector.InsertEmbedding(ctx, &ChunkVector{
		ID:         uuid.NewString(),
		Vector:     vec,
		ChunkID:    chunk.ID,
		DocumentID: doc.ID,
		GroupID:    doc.GroupID,
		ModelName:  p.embedModel,
		ChunkIndex: idx,
	}); err != nil {
		logger.Error(ctx, "vector insert failed", err, "chunk_index", idx)
		metrics.IngestChunksTotal.WithLabelValues("vector_failed").Inc()
		return &ChunkFailure{Index: idx, Stage: StageVectorInsert, Err: err}
	}

	metrics.IngestChunksTotal.WithLabelValues("indexed").Inc()
	return nil
}

// resolveUploader 通过文档组解析上传者，失败时返回空串（仅跳过通知）
func (p *Pipeline) resolveUploader(ctx context.Context, groupID string) string {
	group, err := p.groups.GetByID(ctx, groupID)
	if err != nil || group == nil {
		if err != nil {
			logger.Warn(ctx, "failed to resolve uploader", "error", err.Error())
		}
		return ""
	}
	return group.CreatedBy
}

func allWhitespace(s string) bool {
	for _, r := range s {
		if r != ' ' && r != '\t' && r != '\n' && r != '\r' {
			return false
		}
	}
	return true
}
