// Package ingest 实现文档摄取管线（轮询、提取、切片、嵌入、落库、通知）
package ingest

import "strings"

const (
	// DefaultChunkSize 单个切片最大字符数（rune）
	DefaultChunkSize = 500
	// DefaultChunkOverlap 长段落硬切时的重叠字符数
	DefaultChunkOverlap = 50
)

// ChunkText 段落感知的贪心切片。
// 段落以 "\n" 分隔；超长段落按 size 硬切，窗口间回退 overlap 个字符；
// 重叠只发生在硬切窗口之间，普通段落打包不引入重叠。
// 输出顺序即原文顺序，相同输入产出完全一致。
func ChunkText(text string, size, overlap int) []string {
	if size <= 0 {
		size = DefaultChunkSize
	}
	if overlap < 0 || overlap >= size {
		overlap = 0
	}

	var chunks []string
	current := ""

	for _, para := range strings.Split(text, "\n") {
		para = strings.TrimSpace(para)
		if para == "" {
			continue
		}

		runes := []rune(para)
		if len([]rune(current))+len(runes)+1 <= size {
			if current != "" {
				current = current + "\n" + para
			} else {
				current = para
			}
			continue
		}

		// 放不下：先冲刷缓冲，超长段落按窗口硬切，尾段作为新缓冲
		if current != "" {
			chunks = append(chunks, current)
		}
		for len(runes) > size {
			chunks = append(chunks, string(runes[:size]))
			runes = runes[size-overlap:]
		}
		current = string(runes)
	}

	if current != "" {
		chunks = append(chunks, current)
	}
	return chunks
}
