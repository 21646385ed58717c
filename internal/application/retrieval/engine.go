// Package retrieval 实现文档组检索引擎：HyDE 语义检索 + 文本检索回退
package retrieval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/embedding"

	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/domain/repository"
	"scholar-sync-api/pkg/logger"
	"scholar-sync-api/pkg/metrics"
)

const (
	defaultTopK = 10
	maxTopK     = 50

	summaryCachePrefix = "search:group_summary:"
	defaultSummaryTTL  = 5 * time.Minute
)

// SummaryCache 组摘要的读穿缓存依赖，由 Redis 实现
type SummaryCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
}

// Engine 检索引擎。
// 语义模式：HyDE 短语扩展 -> 逐短语嵌入与向量召回 -> 首见去重 -> 可见性过滤，
// 结果为空时自动回退文本模式；文本模式：切片内容与组标题的子串匹配。
type Engine struct {
	phrases  *PhraseGenerator
	embedder embedding.Embedder
	vector   VectorStore

	groups repository.DocumentGroupRepository
	docs   repository.DocumentRepository
	chunks repository.ChunkRepository

	cache      SummaryCache
	summaryTTL time.Duration
}

// EngineConfig 引擎装配参数
type EngineConfig struct {
	Phrases  *PhraseGenerator
	Embedder embedding.Embedder
	Vector   VectorStore

	Groups repository.DocumentGroupRepository
	Docs   repository.DocumentRepository
	Chunks repository.ChunkRepository

	Cache      SummaryCache
	SummaryTTL time.Duration
}

// NewEngine 创建检索引擎
func NewEngine(cfg EngineConfig) *Engine {
	ttl := cfg.SummaryTTL
	if ttl <= 0 {
		ttl = defaultSummaryTTL
	}
	return &Engine{
		phrases:    cfg.Phrases,
		embedder:   cfg.Embedder,
		vector:     cfg.Vector,
		groups:     cfg.Groups,
		docs:       cfg.Docs,
		chunks:     cfg.Chunks,
		cache:      cfg.Cache,
		summaryTTL: ttl,
	}
}

// SemanticEnabled 向量检索能力是否可用
func (e *Engine) SemanticEnabled() bool {
	return e != nil && e.embedder != nil && e.vector != nil
}

// Search 执行检索
func (e *Engine) Search(ctx context.Context, in SearchInput) (*SearchOutput, error) {
	in.Query = strings.TrimSpace(in.Query)
	if in.Query == "" {
		return nil, ErrEmptyQuery
	}
	if in.TopK <= 0 {
		in.TopK = defaultTopK
	}
	if in.TopK > maxTopK {
		in.TopK = maxTopK
	}
	if in.Mode == "" {
		in.Mode = ModeSemantic
	}

	vis := repository.Visibility{
		UserID:       in.RequesterID,
		UniversityID: in.RequesterUniversityID,
	}

	if in.Mode == ModeText {
		results, err := e.textSearch(ctx, in.Query, vis)
		if err != nil {
			metrics.SearchRequestsTotal.WithLabelValues(string(ModeText), "error").Inc()
			return nil, err
		}
		metrics.SearchRequestsTotal.WithLabelValues(string(ModeText), "ok").Inc()
		metrics.SearchResultsCount.WithLabelValues(string(ModeText)).Observe(float64(len(results)))
		return &SearchOutput{Mode: ModeText, Results: results}, nil
	}

	results, reason := e.semanticSearch(ctx, in, vis)
	if len(results) > 0 {
		metrics.SearchRequestsTotal.WithLabelValues(string(ModeSemantic), "ok").Inc()
		metrics.SearchResultsCount.WithLabelValues(string(ModeSemantic)).Observe(float64(len(results)))
		return &SearchOutput{Mode: ModeSemantic, Results: results}, nil
	}

	// 语义检索为空（含所有短语嵌入失败的情况），用同一查询回退文本模式
	if reason == "" {
		reason = "semantic search returned no results"
	}
	logger.Info(ctx, "falling back to text search", "reason", reason)
	fallback, err := e.textSearch(ctx, in.Query, vis)
	if err != nil {
		metrics.SearchRequestsTotal.WithLabelValues(string(ModeSemantic), "error").Inc()
		return nil, err
	}
	metrics.SearchRequestsTotal.WithLabelValues(string(ModeSemantic), "fallback").Inc()
	metrics.SearchResultsCount.WithLabelValues(string(ModeText)).Observe(float64(len(fallback)))
	return &SearchOutput{Mode: ModeText, Results: fallback, FallbackReason: reason}, nil
}

// semanticSearch HyDE 语义召回，返回可见结果与（失败时的）回退原因
func (e *Engine) semanticSearch(ctx context.Context, in SearchInput, vis repository.Visibility) ([]GroupSummary, string) {
	if !e.SemanticEnabled() {
		return nil, ErrVectorDisabled.Error()
	}
	if err := e.vector.EnsureCollection(ctx); err != nil {
		return nil, err.Error()
	}

	phrases := e.phrases.Phrases(ctx, in.Query)

	// 首见去重：同一组在多个短语的召回中出现时，只保留最先出现的相似度
	sims := make(map[string]float64)
	order := make([]string, 0, in.TopK)
	embedFailures := 0

	for _, phrase := range phrases {
		vec, err := e.embedQuery(ctx, phrase)
		if err != nil {
			embedFailures++
			logger.Warn(ctx, "phrase embedding failed, skipping phrase", "error", err.Error())
			continue
		}

		matches, err := e.vector.MatchGroups(ctx, vec, in.TopK)
		if err != nil {
			logger.Warn(ctx, "vector lookup failed, skipping phrase", "error", err.Error())
			continue
		}

		for _, m := range matches {
			id := strings.TrimSpace(m.GroupID)
			if id == "" {
				continue
			}
			if _, seen := sims[id]; seen {
				continue
			}
			sims[id] = float64(m.Score) // COSINE 指标下 score 即余弦相似度，越大越相关
			order = append(order, id)
		}
	}

	if embedFailures == len(phrases) {
		return nil, "all phrase embeddings failed"
	}

	results := make([]GroupSummary, 0, len(order))
	for _, id := range order {
		summary, err := e.resolveSummary(ctx, id)
		if err != nil || summary == nil {
			if err != nil {
				logger.Warn(ctx, "failed to resolve group summary", "group_id", id, "error", err.Error())
			}
			continue
		}
		if !visible(summary, vis) {
			continue
		}
		score := sims[id]
		summary.Similarity = &score
		results = append(results, *summary)
	}
	return results, ""
}

// textSearch 文本模式：切片内容命中在前，组标题命中在后，按组去重
func (e *Engine) textSearch(ctx context.Context, query string, vis repository.Visibility) ([]GroupSummary, error) {
	var results []GroupSummary
	seen := make(map[string]struct{})

	groupIDs, err := e.chunks.GroupIDsByContent(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunk contents: %w", err)
	}
	for _, id := range groupIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		summary, err := e.resolveSummary(ctx, id)
		if err != nil || summary == nil {
			continue
		}
		if !visible(summary, vis) {
			continue
		}
		results = append(results, *summary)
	}

	titleGroups, err := e.groups.SearchTitles(ctx, query, vis)
	if err != nil {
		return nil, fmt.Errorf("failed to search group titles: %w", err)
	}
	for _, group := range titleGroups {
		if group == nil {
			continue
		}
		if _, ok := seen[group.ID]; ok {
			continue
		}
		seen[group.ID] = struct{}{}

		summary, err := e.resolveSummary(ctx, group.ID)
		if err != nil || summary == nil {
			continue
		}
		results = append(results, *summary)
	}
	return results, nil
}

// resolveSummary 解析组摘要（含当前生效版本的元数据），经 Redis 读穿缓存
func (e *Engine) resolveSummary(ctx context.Context, groupID string) (*GroupSummary, error) {
	load := func() (interface{}, error) {
		return e.loadSummary(ctx, groupID)
	}

	if e.cache == nil {
		summary, err := e.loadSummary(ctx, groupID)
		if err != nil {
			return nil, err
		}
		return summary, nil
	}

	data, err := e.cache.GetOrLoadSafe(ctx, summaryCachePrefix+groupID, e.summaryTTL, load)
	if err != nil {
		return nil, err
	}
	var summary GroupSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return nil, fmt.Errorf("failed to decode cached group summary: %w", err)
	}
	if summary.GroupID == "" {
		return nil, nil
	}
	return &summary, nil
}

// loadSummary 从数据库加载组摘要；组不存在时返回 (nil, nil)
func (e *Engine) loadSummary(ctx context.Context, groupID string) (*GroupSummary, error) {
	group, err := e.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, nil
	}

	summary := &GroupSummary{
		GroupID:       group.ID,
		Title:         group.Title,
		Scope:         string(group.Scope),
		CreatedBy:     group.CreatedBy,
		UniversityID:  group.UniversityID,
		AIDescription: group.AIDescription,
	}

	if group.ActiveDocumentID != nil && *group.ActiveDocumentID != "" {
		summary.ActiveDocumentID = *group.ActiveDocumentID
		doc, err := e.docs.GetByID(ctx, *group.ActiveDocumentID)
		if err == nil && doc != nil {
			summary.FileName = doc.FileName
			summary.VersionNumber = doc.VersionNumber
			summary.DocumentStatus = string(doc.Status)
			if summary.AIDescription == "" {
				summary.AIDescription = doc.AIDescription
			}
		}
	}
	return summary, nil
}

// embedQuery 嵌入单条查询文本
func (e *Engine) embedQuery(ctx context.Context, text string) ([]float32, error) {
	v64, err := e.embedder.EmbedStrings(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(v64) == 0 || len(v64[0]) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}
	out := make([]float32, 0, len(v64[0]))
	for _, x := range v64[0] {
		out = append(out, float32(x))
	}
	return out, nil
}

// visible 可见性判定：全局组、请求者创建的组、同校的组
func visible(s *GroupSummary, vis repository.Visibility) bool {
	if s.Scope == string(entity.GroupScopeGlobal) {
		return true
	}
	if s.CreatedBy == vis.UserID {
		return true
	}
	if vis.UniversityID != nil && s.UniversityID != nil && *s.UniversityID == *vis.UniversityID {
		return true
	}
	return false
}
