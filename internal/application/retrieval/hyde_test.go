package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeChatModel 返回固定内容或错误的 ChatModel
type fakeChatModel struct {
	content string
	err     error
}

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("not implemented")
}

func TestParsePhrases(t *testing.T) {
	phrases := parsePhrases("first passage ||| second passage ||| third passage")
	require.Len(t, phrases, 3)
	assert.Equal(t, "first passage", phrases[0])
	assert.Equal(t, "second passage", phrases[1])
	assert.Equal(t, "third passage", phrases[2])
}

func TestParsePhrases_DropsEmptySegments(t *testing.T) {
	phrases := parsePhrases("|||one|||   |||two|||")
	require.Len(t, phrases, 2)
	assert.Equal(t, []string{"one", "two"}, phrases)
}

func TestParsePhrases_NoDelimiter(t *testing.T) {
	phrases := parsePhrases("just a single answer")
	require.Len(t, phrases, 1)
	assert.Equal(t, "just a single answer", phrases[0])
}

func TestParsePhrases_Blank(t *testing.T) {
	assert.Empty(t, parsePhrases(""))
	assert.Empty(t, parsePhrases("   ||| \t |||"))
}

func TestPhrases_NilModelFallsBackToQuery(t *testing.T) {
	g := NewPhraseGenerator(nil, "gemini", "test-model", 3)
	phrases := g.Phrases(context.Background(), "neural networks")
	assert.Equal(t, []string{"neural networks"}, phrases)
}

func TestPhrases_GenerateErrorFallsBackToQuery(t *testing.T) {
	g := NewPhraseGenerator(&fakeChatModel{err: errors.New("provider down")}, "gemini", "test-model", 3)
	phrases := g.Phrases(context.Background(), "graph theory")
	assert.Equal(t, []string{"graph theory"}, phrases)
}

func TestPhrases_EmptyOutputFallsBackToQuery(t *testing.T) {
	g := NewPhraseGenerator(&fakeChatModel{content: " ||| "}, "gemini", "test-model", 3)
	phrases := g.Phrases(context.Background(), "linear algebra")
	assert.Equal(t, []string{"linear algebra"}, phrases)
}

func TestPhrases_ParsesModelOutput(t *testing.T) {
	g := NewPhraseGenerator(&fakeChatModel{content: "a|||b|||c"}, "gemini", "test-model", 3)
	phrases := g.Phrases(context.Background(), "databases")
	assert.Equal(t, []string{"a", "b", "c"}, phrases)
}
