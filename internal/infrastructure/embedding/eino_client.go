package embedding

import (
	"context"
	"fmt"

	"scholar-sync-api/internal/config"

	"github.com/cloudwego/eino-ext/components/embedding/openai"
	"github.com/cloudwego/eino/components/embedding"
)

// NewEinoEmbedder 创建基于 Eino 的 Embedder。
// provider 为 selfhosted 时走自托管 HTTP 服务，其余走 OpenAI 兼容接口。
func NewEinoEmbedder(ctx context.Context, cfg *config.EmbeddingConfig) (embedding.Embedder, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("embedding endpoint is required")
	}

	if cfg.Provider == "selfhosted" {
		return &selfHostedEmbedder{client: NewClient(cfg)}, nil
	}

	// 使用 Eino 的 OpenAI 适配器
	embedder, err := openai.NewEmbedder(ctx, &openai.EmbeddingConfig{
		APIKey:  cfg.APIKey,
		BaseURL: cfg.Endpoint,
		Model:   cfg.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino embedder: %w", err)
	}

	return embedder, nil
}

// selfHostedEmbedder 将自托管 HTTP 客户端适配为 Eino Embedder
type selfHostedEmbedder struct {
	client *Client
}

func (e *selfHostedEmbedder) EmbedStrings(ctx context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	vectors, err := e.client.Embed(ctx, texts)
	if err != nil {
		return nil, err
	}

	result := make([][]float64, len(vectors))
	for i, v := range vectors {
		row := make([]float64, len(v))
		for j, x := range v {
			row[j] = float64(x)
		}
		result[i] = row
	}
	return result, nil
}
