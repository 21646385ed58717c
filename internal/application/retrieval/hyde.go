package retrieval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"scholar-sync-api/pkg/logger"
	"scholar-sync-api/pkg/metrics"
)

const (
	// phraseDelimiter 假设短语之间的固定分隔符
	phraseDelimiter = "|||"

	// defaultPhraseCount HyDE 扩展的短语数量
	defaultPhraseCount = 3
)

// PhraseGenerator 基于 ChatModel 做 HyDE 查询扩展：
// 为查询生成若干条“假设答案”短语，嵌入后检索真实文档。
type PhraseGenerator struct {
	chatModel   model.BaseChatModel
	provider    string
	modelName   string
	phraseCount int
}

// NewPhraseGenerator 创建 HyDE 短语生成器
func NewPhraseGenerator(chatModel model.BaseChatModel, provider, modelName string, phraseCount int) *PhraseGenerator {
	if phraseCount <= 0 {
		phraseCount = defaultPhraseCount
	}
	return &PhraseGenerator{
		chatModel:   chatModel,
		provider:    provider,
		modelName:   modelName,
		phraseCount: phraseCount,
	}
}

// Phrases 为查询生成假设短语。
// 生成失败或解析不出任何短语时，回退为仅包含原始查询的单元素切片。
func (g *PhraseGenerator) Phrases(ctx context.Context, query string) []string {
	fallback := []string{query}
	if g == nil || g.chatModel == nil {
		return fallback
	}

	prompt := fmt.Sprintf(
		"You are a search assistant for an academic document library. "+
			"Given a user query, write exactly %d short hypothetical passages "+
			"(one sentence each) that an ideal matching document would contain. "+
			"Separate the passages with the token %s and output nothing else.\n\n"+
			"Query: %s",
		g.phraseCount, phraseDelimiter, query,
	)

	start := time.Now()
	out, err := g.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(prompt),
	})
	metrics.LLMCallDuration.WithLabelValues(g.provider, g.modelName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(g.provider, g.modelName, "error").Inc()
		logger.Warn(ctx, "hypothetical phrase generation failed, using raw query", "error", err.Error())
		return fallback
	}
	metrics.LLMCallTotal.WithLabelValues(g.provider, g.modelName, "ok").Inc()

	phrases := parsePhrases(out.Content)
	if len(phrases) == 0 {
		return fallback
	}
	return phrases
}

// parsePhrases 按分隔符拆分模型输出，丢弃空白片段
func parsePhrases(raw string) []string {
	var phrases []string
	for _, part := range strings.Split(raw, phraseDelimiter) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		phrases = append(phrases, part)
	}
	return phrases
}
