package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cloudwego/eino/components/embedding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/domain/repository"
)

// fakeEmbedder 逐次调用可配置结果的 Embedder
type fakeEmbedder struct {
	calls int
	// errOn 第 n 次调用（从 1 开始）返回错误，0 表示全部成功
	errOn int
	// failAll 所有调用都失败
	failAll bool
}

func (f *fakeEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	f.calls++
	if f.failAll || (f.errOn > 0 && f.calls == f.errOn) {
		return nil, errors.New("embedding unavailable")
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.1, 0.2, 0.3}
	}
	return out, nil
}

// fakeVectorStore 每次 MatchGroups 按序返回预置批次
type fakeVectorStore struct {
	batches [][]GroupMatch
	call    int
	err     error
}

func (f *fakeVectorStore) EnsureCollection(context.Context) error { return nil }

func (f *fakeVectorStore) MatchGroups(_ context.Context, _ []float32, _ int) ([]GroupMatch, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.call >= len(f.batches) {
		return nil, nil
	}
	batch := f.batches[f.call]
	f.call++
	return batch, nil
}

// fakeGroupRepo 内存文档组仓储
type fakeGroupRepo struct {
	groups map[string]*entity.DocumentGroup
}

func (f *fakeGroupRepo) Create(context.Context, *entity.DocumentGroup) error { return nil }

func (f *fakeGroupRepo) GetByID(_ context.Context, id string) (*entity.DocumentGroup, error) {
	return f.groups[id], nil
}

func (f *fakeGroupRepo) GetByIDs(_ context.Context, ids []string) ([]*entity.DocumentGroup, error) {
	var out []*entity.DocumentGroup
	for _, id := range ids {
		if g, ok := f.groups[id]; ok {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGroupRepo) SetActiveDocument(context.Context, string, string) error { return nil }

func (f *fakeGroupRepo) UpdateAIDescription(context.Context, string, string) error { return nil }

func (f *fakeGroupRepo) ListMine(context.Context, repository.Visibility) ([]*entity.DocumentGroup, error) {
	return nil, nil
}

func (f *fakeGroupRepo) SearchTitles(_ context.Context, query string, vis repository.Visibility) ([]*entity.DocumentGroup, error) {
	var out []*entity.DocumentGroup
	for _, g := range f.groups {
		if !strings.Contains(strings.ToLower(g.Title), strings.ToLower(query)) {
			continue
		}
		if g.Scope != entity.GroupScopeGlobal && g.CreatedBy != vis.UserID {
			if vis.UniversityID == nil || g.UniversityID == nil || *g.UniversityID != *vis.UniversityID {
				continue
			}
		}
		out = append(out, g)
	}
	return out, nil
}

// fakeDocRepo 内存文档仓储（检索只用 GetByID）
type fakeDocRepo struct {
	docs map[string]*entity.Document
}

func (f *fakeDocRepo) Create(context.Context, *entity.Document) error { return nil }

func (f *fakeDocRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	return f.docs[id], nil
}

func (f *fakeDocRepo) NextUploaded(context.Context) (*entity.Document, error) { return nil, nil }

func (f *fakeDocRepo) UpdateStatus(context.Context, string, entity.DocumentStatus) error { return nil }

func (f *fakeDocRepo) MarkReady(context.Context, string) error { return nil }

func (f *fakeDocRepo) UpdateAIDescription(context.Context, string, string) error { return nil }

func (f *fakeDocRepo) MaxVersionNumber(context.Context, string) (int, error) { return 0, nil }

func (f *fakeDocRepo) ListVisibleActive(context.Context, repository.Visibility) ([]*entity.Document, error) {
	return nil, nil
}

// fakeChunkRepo 内容匹配返回固定组 ID
type fakeChunkRepo struct {
	groupIDs []string
}

func (f *fakeChunkRepo) Create(context.Context, *entity.Chunk) error { return nil }

func (f *fakeChunkRepo) GroupIDsByContent(context.Context, string) ([]string, error) {
	return f.groupIDs, nil
}

func strPtr(s string) *string { return &s }

func globalGroup(id, title string) *entity.DocumentGroup {
	return &entity.DocumentGroup{ID: id, Title: title, Scope: entity.GroupScopeGlobal, CreatedBy: "someone-else"}
}

func newTestEngine(vector VectorStore, embedder embedding.Embedder, groups *fakeGroupRepo, docs *fakeDocRepo, chunks *fakeChunkRepo) *Engine {
	return NewEngine(EngineConfig{
		Phrases:  NewPhraseGenerator(&fakeChatModel{content: "p1|||p2"}, "test", "test", 2),
		Embedder: embedder,
		Vector:   vector,
		Groups:   groups,
		Docs:     docs,
		Chunks:   chunks,
	})
}

func TestSearch_EmptyQuery(t *testing.T) {
	e := NewEngine(EngineConfig{})
	_, err := e.Search(context.Background(), SearchInput{Query: "   "})
	assert.ErrorIs(t, err, ErrEmptyQuery)
}

func TestSearch_SemanticFirstSeenDedup(t *testing.T) {
	// 同一组被两个短语召回：保留先出现的相似度，后出现的更高分被忽略
	vector := &fakeVectorStore{batches: [][]GroupMatch{
		{{GroupID: "g1", Score: 0.5}},
		{{GroupID: "g1", Score: 0.9}, {GroupID: "g2", Score: 0.3}},
	}}
	groups := &fakeGroupRepo{groups: map[string]*entity.DocumentGroup{
		"g1": globalGroup("g1", "Algebra notes"),
		"g2": globalGroup("g2", "Calculus notes"),
	}}
	e := newTestEngine(vector, &fakeEmbedder{}, groups, &fakeDocRepo{}, &fakeChunkRepo{})

	out, err := e.Search(context.Background(), SearchInput{Query: "math", RequesterID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, ModeSemantic, out.Mode)
	require.Len(t, out.Results, 2)

	assert.Equal(t, "g1", out.Results[0].GroupID)
	require.NotNil(t, out.Results[0].Similarity)
	assert.InDelta(t, 0.5, *out.Results[0].Similarity, 1e-6)

	assert.Equal(t, "g2", out.Results[1].GroupID)
	require.NotNil(t, out.Results[1].Similarity)
	assert.InDelta(t, 0.3, *out.Results[1].Similarity, 1e-6)
}

func TestSearch_SemanticSimilarityIsScorePassthrough(t *testing.T) {
	// 向量召回返回的余弦相似度原样透出，接近 1 表示高度相关
	vector := &fakeVectorStore{batches: [][]GroupMatch{
		{{GroupID: "g1", Score: 0.97}},
	}}
	groups := &fakeGroupRepo{groups: map[string]*entity.DocumentGroup{
		"g1": globalGroup("g1", "Topology notes"),
	}}
	e := newTestEngine(vector, &fakeEmbedder{}, groups, &fakeDocRepo{}, &fakeChunkRepo{})

	out, err := e.Search(context.Background(), SearchInput{Query: "topology", RequesterID: "u1"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	require.NotNil(t, out.Results[0].Similarity)
	assert.InDelta(t, 0.97, *out.Results[0].Similarity, 1e-6)
}

func TestSearch_SemanticVisibilityFilter(t *testing.T) {
	uni := strPtr("uni-1")
	otherUni := strPtr("uni-2")
	vector := &fakeVectorStore{batches: [][]GroupMatch{
		{
			{GroupID: "global", Score: 0.1},
			{GroupID: "own", Score: 0.2},
			{GroupID: "same-uni", Score: 0.3},
			{GroupID: "other-uni", Score: 0.4},
		},
	}}
	groups := &fakeGroupRepo{groups: map[string]*entity.DocumentGroup{
		"global":    globalGroup("global", "Global"),
		"own":       {ID: "own", Title: "Own", Scope: entity.GroupScopeLocal, CreatedBy: "u1", UniversityID: otherUni},
		"same-uni":  {ID: "same-uni", Title: "Same", Scope: entity.GroupScopeLocal, CreatedBy: "other", UniversityID: uni},
		"other-uni": {ID: "other-uni", Title: "Other", Scope: entity.GroupScopeLocal, CreatedBy: "other", UniversityID: otherUni},
	}}
	e := newTestEngine(vector, &fakeEmbedder{}, groups, &fakeDocRepo{}, &fakeChunkRepo{})

	out, err := e.Search(context.Background(), SearchInput{
		Query:                 "anything",
		RequesterID:           "u1",
		RequesterUniversityID: uni,
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 3)

	ids := []string{out.Results[0].GroupID, out.Results[1].GroupID, out.Results[2].GroupID}
	assert.Equal(t, []string{"global", "own", "same-uni"}, ids)
}

func TestSearch_AllEmbeddingsFailFallsBackToText(t *testing.T) {
	groups := &fakeGroupRepo{groups: map[string]*entity.DocumentGroup{
		"g1": globalGroup("g1", "Quantum mechanics"),
	}}
	e := newTestEngine(&fakeVectorStore{}, &fakeEmbedder{failAll: true}, groups, &fakeDocRepo{}, &fakeChunkRepo{groupIDs: []string{"g1"}})

	out, err := e.Search(context.Background(), SearchInput{Query: "quantum", RequesterID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, ModeText, out.Mode)
	assert.Equal(t, "all phrase embeddings failed", out.FallbackReason)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "g1", out.Results[0].GroupID)
	assert.Nil(t, out.Results[0].Similarity)
}

func TestSearch_EmptySemanticResultFallsBackToText(t *testing.T) {
	groups := &fakeGroupRepo{groups: map[string]*entity.DocumentGroup{
		"g1": globalGroup("g1", "Organic chemistry"),
	}}
	e := newTestEngine(&fakeVectorStore{}, &fakeEmbedder{}, groups, &fakeDocRepo{}, &fakeChunkRepo{})

	out, err := e.Search(context.Background(), SearchInput{Query: "chemistry", RequesterID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, ModeText, out.Mode)
	assert.NotEmpty(t, out.FallbackReason)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "g1", out.Results[0].GroupID)
}

func TestSearch_VectorDisabledFallsBackToText(t *testing.T) {
	groups := &fakeGroupRepo{groups: map[string]*entity.DocumentGroup{}}
	e := NewEngine(EngineConfig{
		Phrases: NewPhraseGenerator(nil, "test", "test", 3),
		Groups:  groups,
		Docs:    &fakeDocRepo{},
		Chunks:  &fakeChunkRepo{},
	})
	require.False(t, e.SemanticEnabled())

	out, err := e.Search(context.Background(), SearchInput{Query: "anything", RequesterID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, ModeText, out.Mode)
	assert.Equal(t, ErrVectorDisabled.Error(), out.FallbackReason)
}

func TestSearch_TextModeChunkHitsBeforeTitleHits(t *testing.T) {
	groups := &fakeGroupRepo{groups: map[string]*entity.DocumentGroup{
		"chunk-hit": globalGroup("chunk-hit", "Unrelated title"),
		"title-hit": globalGroup("title-hit", "Linear algebra"),
	}}
	e := newTestEngine(&fakeVectorStore{}, &fakeEmbedder{}, groups, &fakeDocRepo{}, &fakeChunkRepo{groupIDs: []string{"chunk-hit"}})

	out, err := e.Search(context.Background(), SearchInput{
		Query:       "algebra",
		Mode:        ModeText,
		RequesterID: "u1",
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 2)
	assert.Equal(t, "chunk-hit", out.Results[0].GroupID)
	assert.Equal(t, "title-hit", out.Results[1].GroupID)
}

func TestSearch_TextModeDedupAcrossSources(t *testing.T) {
	// 同一组同时命中切片与标题时只出现一次
	groups := &fakeGroupRepo{groups: map[string]*entity.DocumentGroup{
		"g1": globalGroup("g1", "Graph theory"),
	}}
	e := newTestEngine(&fakeVectorStore{}, &fakeEmbedder{}, groups, &fakeDocRepo{}, &fakeChunkRepo{groupIDs: []string{"g1", "g1"}})

	out, err := e.Search(context.Background(), SearchInput{
		Query:       "graph",
		Mode:        ModeText,
		RequesterID: "u1",
	})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "g1", out.Results[0].GroupID)
}

func TestSearch_SummaryIncludesActiveDocument(t *testing.T) {
	docID := "doc-7"
	group := globalGroup("g1", "Thermodynamics")
	group.ActiveDocumentID = &docID
	groups := &fakeGroupRepo{groups: map[string]*entity.DocumentGroup{"g1": group}}
	docs := &fakeDocRepo{docs: map[string]*entity.Document{
		docID: {
			ID:            docID,
			GroupID:       "g1",
			VersionNumber: 3,
			FileName:      "thermo-v3.pdf",
			Status:        entity.DocumentStatusReady,
			AIDescription: "Lecture notes on thermodynamics.",
		},
	}}
	vector := &fakeVectorStore{batches: [][]GroupMatch{{{GroupID: "g1", Score: 0.2}}}}
	e := newTestEngine(vector, &fakeEmbedder{}, groups, docs, &fakeChunkRepo{})

	out, err := e.Search(context.Background(), SearchInput{Query: "entropy", RequesterID: "u1"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)

	got := out.Results[0]
	assert.Equal(t, docID, got.ActiveDocumentID)
	assert.Equal(t, "thermo-v3.pdf", got.FileName)
	assert.Equal(t, 3, got.VersionNumber)
	assert.Equal(t, string(entity.DocumentStatusReady), got.DocumentStatus)
	assert.Equal(t, "Lecture notes on thermodynamics.", got.AIDescription)
}

func TestSearch_UnknownGroupSkipped(t *testing.T) {
	vector := &fakeVectorStore{batches: [][]GroupMatch{
		{{GroupID: "missing", Score: 0.1}, {GroupID: "g1", Score: 0.2}},
	}}
	groups := &fakeGroupRepo{groups: map[string]*entity.DocumentGroup{
		"g1": globalGroup("g1", "Statistics"),
	}}
	e := newTestEngine(vector, &fakeEmbedder{}, groups, &fakeDocRepo{}, &fakeChunkRepo{})

	out, err := e.Search(context.Background(), SearchInput{Query: "stats", RequesterID: "u1"})
	require.NoError(t, err)
	require.Len(t, out.Results, 1)
	assert.Equal(t, "g1", out.Results[0].GroupID)
}
