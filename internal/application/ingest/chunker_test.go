package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkText_Empty(t *testing.T) {
	assert.Empty(t, ChunkText("", 100, 10))
	assert.Empty(t, ChunkText("\n\n\n", 100, 10))
	assert.Empty(t, ChunkText("   \n\t\n  ", 100, 10))
}

func TestChunkText_SingleShortParagraph(t *testing.T) {
	chunks := ChunkText("hello world", 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "hello world", chunks[0])
}

func TestChunkText_PacksParagraphsUpToSize(t *testing.T) {
	text := "aaa\nbbb\nccc"
	chunks := ChunkText(text, 100, 10)
	require.Len(t, chunks, 1)
	assert.Equal(t, "aaa\nbbb\nccc", chunks[0])
}

func TestChunkText_FlushesWhenParagraphDoesNotFit(t *testing.T) {
	// "aaaa" 与 "bbbb" 合并需要 9 个字符（含换行），超出 size=8
	chunks := ChunkText("aaaa\nbbbb", 8, 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa", chunks[0])
	assert.Equal(t, "bbbb", chunks[1])
}

func TestChunkText_HardSplitWithOverlap(t *testing.T) {
	// 15 个字符、size=10、overlap=2：窗口 [0:10]，尾段从 8 开始
	text := "abcdefghijklmno"
	chunks := ChunkText(text, 10, 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, "abcdefghij", chunks[0])
	assert.Equal(t, "ijklmno", chunks[1])
}

func TestChunkText_HardSplitPreservesOrderAfterBufferedText(t *testing.T) {
	// 缓冲中的短段落必须先于超长段落的硬切窗口输出
	long := strings.Repeat("x", 25)
	chunks := ChunkText("intro\n"+long, 10, 2)
	require.GreaterOrEqual(t, len(chunks), 3)
	assert.Equal(t, "intro", chunks[0])
	assert.Equal(t, strings.Repeat("x", 10), chunks[1])
}

func TestChunkText_OverlapOnlyBetweenHardSplitWindows(t *testing.T) {
	// 普通段落打包之间不引入重叠
	chunks := ChunkText("aaaa\nbbbb\ncccc", 9, 3)
	require.Len(t, chunks, 2)
	assert.Equal(t, "aaaa\nbbbb", chunks[0])
	assert.Equal(t, "cccc", chunks[1])
}

func TestChunkText_RuneBased(t *testing.T) {
	// 多字节字符按 rune 计数，不得切断字符
	text := strings.Repeat("你", 15)
	chunks := ChunkText(text, 10, 2)
	require.Len(t, chunks, 2)
	assert.Equal(t, strings.Repeat("你", 10), chunks[0])
	assert.Equal(t, strings.Repeat("你", 7), chunks[1])
}

func TestChunkText_Deterministic(t *testing.T) {
	text := "first paragraph\n" + strings.Repeat("y", 120) + "\nlast paragraph"
	a := ChunkText(text, 50, 10)
	b := ChunkText(text, 50, 10)
	assert.Equal(t, a, b)
}

func TestChunkText_InvalidOverlapDisabled(t *testing.T) {
	// overlap >= size 时退化为无重叠硬切
	text := strings.Repeat("z", 25)
	chunks := ChunkText(text, 10, 10)
	require.Len(t, chunks, 3)
	assert.Equal(t, strings.Repeat("z", 10), chunks[0])
	assert.Equal(t, strings.Repeat("z", 10), chunks[1])
	assert.Equal(t, strings.Repeat("z", 5), chunks[2])
}

func TestChunkText_DefaultsWhenSizeNonPositive(t *testing.T) {
	text := strings.Repeat("w", DefaultChunkSize+100)
	chunks := ChunkText(text, 0, 0)
	require.NotEmpty(t, chunks)
	assert.Equal(t, DefaultChunkSize, len([]rune(chunks[0])))
}
