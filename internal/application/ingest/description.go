package ingest

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

// descriptionExcerptChars 参与生成的正文摘录上限（rune）
const descriptionExcerptChars = 2000

// DescriptionGenerator 基于 ChatModel 生成文档的 AI 描述
type DescriptionGenerator struct {
	chatModel model.BaseChatModel
	provider  string
	modelName string
}

// NewDescriptionGenerator 创建描述生成器
func NewDescriptionGenerator(chatModel model.BaseChatModel, provider, modelName string) *DescriptionGenerator {
	return &DescriptionGenerator{
		chatModel: chatModel,
		provider:  provider,
		modelName: modelName,
	}
}

// Describe 生成 AI 描述；任何失败都回退为人工描述，第二个返回值标记是否实际生成
func (g *DescriptionGenerator) Describe(ctx context.Context, humanDescription, text string) (string, bool) {
	if g == nil || g.chatModel == nil {
		return humanDescription, false
	}

	excerpt := []rune(text)
	if len(excerpt) > descriptionExcerptChars {
		excerpt = excerpt[:descriptionExcerptChars]
	}

	prompt := fmt.Sprintf(
		"You are an academic document assistant. "+
			"Given the human-written description and an excerpt from the document, "+
			"write a concise, informative AI-generated description (2-4 sentences) "+
			"that captures the document's academic purpose, topic, and key details.\n\n"+
			"Human description: %s\n\n"+
			"Document excerpt (first 2000 chars):\n%s\n\n"+
			"AI description:",
		humanDescription, string(excerpt),
	)

	start := time.Now()
	out, err := g.chatModel.Generate(ctx, []*schema.Message{
		schema.UserMessage(prompt),
	})
	metrics.LLMCallDuration.WithLabelValues(g.provider, g.modelName).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallTotal.WithLabelValues(g.provider, g.modelName, "error").Inc()
		logger.Warn(ctx, "ai description generation failed, falling back to human description", "error", err.Error())
		return humanDescription, false
	}
	metrics.LLMCallTotal.WithLabelValues(g.provider, g.modelName, "ok").Inc()

	description := strings.TrimSpace(out.Content)
	if description == "" {
		return humanDescription, false
	}
	return description, true
}
