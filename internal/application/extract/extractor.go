// Package extract 提供文档文本提取能力
package extract

import (
	"context"
	"path/filepath"
	"strings"
)

// MIME 类型常量
const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// Extractor 按文件类型分发的文本提取器
type Extractor struct{}

// NewExtractor 创建文本提取器
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract 提取文档纯文本
// 返回值 ok=false 表示文件类型不支持（非错误），此时文本为空
func (e *Extractor) Extract(ctx context.Context, fileName, mimeType string, data []byte) (string, bool, error) {
	switch detectKind(fileName, mimeType) {
	case "pdf":
		text, err := extractPDF(data)
		if err != nil {
			return "", true, err
		}
		return text, true, nil
	case "docx":
		text, err := extractDOCX(data)
		if err != nil {
			return "", true, err
		}
		return text, true, nil
	default:
		return "", false, nil
	}
}

// detectKind 依据 MIME 优先、扩展名兜底识别文件类型
func detectKind(fileName, mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case MimePDF:
		return "pdf"
	case MimeDOCX:
		return "docx"
	}

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "pdf"
	case ".docx":
		return "docx"
	}
	return ""
}
