// Package messaging 提供基于 Redis Stream 的消息发布实现
package messaging

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"scholar-sync-api/pkg/metrics"
)

var tracer = otel.Tracer("messaging")

// Producer 消息生产者
type Producer struct {
	client *redis.Client
	maxLen int64
}

// NewProducer 创建消息生产者
func NewProducer(client *redis.Client, maxLen int64) *Producer {
	if maxLen <= 0 {
		maxLen = 10000
	}
	return &Producer{
		client: client,
		maxLen: maxLen,
	}
}

// Publish 发布消息到指定流
func (p *Producer) Publish(ctx context.Context, stream Stream, msg *Message) (string, error) {
	ctx, span := tracer.Start(ctx, "producer.Publish",
		trace.WithAttributes(
			attribute.String("stream", string(stream)),
			attribute.String("message.id", msg.ID),
			attribute.String("message.type", msg.Type),
		))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	result, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: string(stream),
		MaxLen: p.maxLen,
		Approx: true,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()

	if err != nil {
		metrics.RedisStreamPublished.WithLabelValues(string(stream), "error").Inc()
		span.RecordError(err)
		return "", fmt.Errorf("failed to publish message: %w", err)
	}
	metrics.RedisStreamPublished.WithLabelValues(string(stream), "ok").Inc()

	span.SetAttributes(attribute.String("stream.message_id", result))
	return result, nil
}

// PublishNotification 发布通知事件，供外部推送通道（站内信、邮件）消费
func (p *Producer) PublishNotification(ctx context.Context, event *NotificationMessage) (string, error) {
	msg, err := NewMessage(event.NotificationID, "notification", event.UserID, event)
	if err != nil {
		return "", err
	}

	msg.SetMetadata("notification_type", event.NotificationType)
	return p.Publish(ctx, StreamNotify, msg)
}

// NotificationMessage 通知事件消息
type NotificationMessage struct {
	NotificationID   string   `json:"notification_id"`
	UserID           string   `json:"user_id"`
	NotificationType string   `json:"notification_type"`
	Title            string   `json:"title"`
	Message          string   `json:"message"`
	RelatedIDs       []string `json:"related_ids,omitempty"`
}
