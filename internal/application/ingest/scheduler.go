package ingest

import (
	"context"
	"sync"
	"time"

	"scholar-sync-api/internal/domain/repository"
	"scholar-sync-api/pkg/logger"
	"scholar-sync-api/pkg/metrics"
)

// DefaultPollInterval 轮询间隔
const DefaultPollInterval = 30 * time.Second

// Scheduler 摄取调度器：固定间隔轮询，一个周期最多处理一篇文档。
// 单实例假设：不做抢占租约，多实例部署可能重复处理同一文档。
type Scheduler struct {
	docs     repository.DocumentRepository
	pipeline *Pipeline
	interval time.Duration

	stopOnce sync.Once
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewScheduler 创建调度器
func NewScheduler(docs repository.DocumentRepository, pipeline *Pipeline, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Scheduler{
		docs:     docs,
		pipeline: pipeline,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start 启动轮询循环，阻塞直到 ctx 取消或 Stop 被调用
func (s *Scheduler) Start(ctx context.Context) {
	defer close(s.doneCh)

	logger.Info(ctx, "ingest scheduler started", "interval", s.interval.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// 启动后立即执行一轮，避免冷启动等待一个完整间隔
	s.runCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "ingest scheduler stopped", "reason", ctx.Err().Error())
			return
		case <-s.stopCh:
			logger.Info(ctx, "ingest scheduler stopped", "reason", "stop requested")
			return
		case <-ticker.C:
			s.runCycle(ctx)
		}
	}
}

// Stop 请求停止并等待循环退出
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	<-s.doneCh
}

// runCycle 执行一轮：取最旧的 uploaded 文档并处理。
// 任何 panic 都被吞掉并记录，循环继续。
func (s *Scheduler) runCycle(ctx context.Context) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, "ingest cycle panicked", nil, "panic", r)
			metrics.IngestDocumentsTotal.WithLabelValues("panic").Inc()
		}
	}()

	doc, err := s.docs.NextUploaded(ctx)
	if err != nil {
		logger.Error(ctx, "failed to poll for uploaded documents", err)
		return
	}
	if doc == nil {
		return
	}

	report, err := s.pipeline.Process(ctx, doc)
	if err != nil {
		logger.Error(ctx, "document processing failed", err, "document_id", doc.ID)
		return
	}
	if report.DownloadFailed {
		logger.Warn(ctx, "document requeued after download failure", "document_id", doc.ID)
	}
}
