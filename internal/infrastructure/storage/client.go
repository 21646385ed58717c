// Package storage 提供对象存储访问层实现（HTTP 对象接口）
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"scholar-sync-api/internal/config"
)

var tracer = otel.Tracer("storage")

// Client 对象存储客户端。
// 约定对象接口：GET/POST {endpoint}/object/{bucket}/{path}，Bearer 鉴权。
type Client struct {
	endpoint  string
	bucket    string
	accessKey string
	http      *http.Client
}

// NewClient 创建对象存储客户端
func NewClient(cfg config.StorageConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		endpoint:  strings.TrimRight(cfg.Endpoint, "/"),
		bucket:    cfg.Bucket,
		accessKey: cfg.AccessKey,
		http:      &http.Client{Timeout: timeout},
	}
}

// Download 下载对象内容
func (c *Client) Download(ctx context.Context, path string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "storage.Download",
		trace.WithAttributes(
			attribute.String("storage.bucket", c.bucket),
			attribute.String("storage.path", path),
		))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.objectURL(path), nil)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to build download request: %w", err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to download object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("failed to download object: unexpected status %d", resp.StatusCode)
		span.RecordError(err)
		return nil, err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	span.SetAttributes(attribute.Int("storage.bytes", len(data)))
	return data, nil
}

// Upload 上传对象内容
func (c *Client) Upload(ctx context.Context, path, contentType string, data []byte) error {
	ctx, span := tracer.Start(ctx, "storage.Upload",
		trace.WithAttributes(
			attribute.String("storage.bucket", c.bucket),
			attribute.String("storage.path", path),
			attribute.Int("storage.bytes", len(data)),
		))
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.objectURL(path), bytes.NewReader(data))
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to build upload request: %w", err)
	}
	c.authorize(req)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to upload object: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		err := fmt.Errorf("failed to upload object: unexpected status %d", resp.StatusCode)
		span.RecordError(err)
		return err
	}
	return nil
}

// SignURL 申请对象的限时签名下载地址
func (c *Client) SignURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	ctx, span := tracer.Start(ctx, "storage.SignURL",
		trace.WithAttributes(
			attribute.String("storage.bucket", c.bucket),
			attribute.String("storage.path", path),
		))
	defer span.End()

	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	body := strings.NewReader(fmt.Sprintf(`{"expiresIn":%d}`, int(expiresIn.Seconds())))
	url := fmt.Sprintf("%s/object/sign/%s/%s", c.endpoint, c.bucket, strings.TrimLeft(path, "/"))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to build sign request: %w", err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to sign object url: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("failed to sign object url: unexpected status %d", resp.StatusCode)
		span.RecordError(err)
		return "", err
	}

	var signed struct {
		SignedURL string `json:"signedURL"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&signed); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to decode sign response: %w", err)
	}
	if signed.SignedURL == "" {
		return "", fmt.Errorf("failed to sign object url: empty signed url")
	}
	return c.endpoint + "/" + strings.TrimLeft(signed.SignedURL, "/"), nil
}

func (c *Client) objectURL(path string) string {
	return fmt.Sprintf("%s/object/%s/%s", c.endpoint, c.bucket, strings.TrimLeft(path, "/"))
}

func (c *Client) authorize(req *http.Request) {
	if c.accessKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessKey)
	}
}
