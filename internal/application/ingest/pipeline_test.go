package ingest

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

// stubDocRepo 记录状态流转的文档仓储
type stubDocRepo struct {
	statuses   []entity.DocumentStatus
	readyIDs   []string
	aiDescribe []string
}

func (s *stubDocRepo) Create(context.Context, *entity.Document) error { return nil }

func (s *stubDocRepo) GetByID(context.Context, string) (*entity.Document, error) { return nil, nil }

func (s *stubDocRepo) NextUploaded(context.Context) (*entity.Document, error) { return nil, nil }

func (s *stubDocRepo) UpdateStatus(_ context.Context, _ string, status entity.DocumentStatus) error {
	s.statuses = append(s.statuses, status)
	return nil
}

func (s *stubDocRepo) MarkReady(_ context.Context, id string) error {
	s.readyIDs = append(s.readyIDs, id)
	return nil
}

func (s *stubDocRepo) UpdateAIDescription(_ context.Context, _ string, description string) error {
	s.aiDescribe = append(s.aiDescribe, description)
	return nil
}

func (s *stubDocRepo) MaxVersionNumber(context.Context, string) (int, error) { return 0, nil }

func (s *stubDocRepo) ListVisibleActive(context.Context, repository.Visibility) ([]*entity.Document, error) {
	return nil, nil
}

// stubGroupRepo 提供上传者解析
type stubGroupRepo struct {
	group *entity.DocumentGroup
}

func (s *stubGroupRepo) Create(context.Context, *entity.DocumentGroup) error { return nil }

func (s *stubGroupRepo) GetByID(context.Context, string) (*entity.DocumentGroup, error) {
	return s.group, nil
}

func (s *stubGroupRepo) GetByIDs(context.Context, []string) ([]*entity.DocumentGroup, error) {
	return nil, nil
}

func (s *stubGroupRepo) SetActiveDocument(context.Context, string, string) error { return nil }

func (s *stubGroupRepo) UpdateAIDescription(context.Context, string, string) error { return nil }

func (s *stubGroupRepo) ListMine(context.Context, repository.Visibility) ([]*entity.DocumentGroup, error) {
	return nil, nil
}

func (s *stubGroupRepo) SearchTitles(context.Context, string, repository.Visibility) ([]*entity.DocumentGroup, error) {
	return nil, nil
}

// stubChunkRepo 可对指定下标注入失败
type stubChunkRepo struct {
	created []*entity.Chunk
	failOn  map[int]bool
}

func (s *stubChunkRepo) Create(_ context.Context, chunk *entity.Chunk) error {
	if s.failOn[chunk.ChunkIndex] {
		return errors.New("insert failed")
	}
	s.created = append(s.created, chunk)
	return nil
}

func (s *stubChunkRepo) GroupIDsByContent(context.Context, string) ([]string, error) {
	return nil, nil
}

// stubBlob 固定内容或错误
type stubBlob struct {
	data []byte
	err  error
}

func (s *stubBlob) Download(context.Context, string) ([]byte, error) {
	return s.data, s.err
}

// stubExtractor 返回固定文本
type stubExtractor struct {
	text      string
	supported bool
	err       error
}

func (s *stubExtractor) Extract(context.Context, string, string, []byte) (string, bool, error) {
	return s.text, s.supported, s.err
}

// stubEmbedder 可对指定调用次序注入失败
type stubEmbedder struct {
	calls  int
	failOn map[int]bool
}

func (s *stubEmbedder) EmbedStrings(_ context.Context, texts []string, _ ...embedding.Option) ([][]float64, error) {
	s.calls++
	if s.failOn[s.calls] {
		return nil, errors.New("embed failed")
	}
	out := make([][]float64, len(texts))
	for i := range texts {
		out[i] = []float64{0.5, 0.5}
	}
	return out, nil
}

// stubVectorWriter 记录写入，支持失败注入
type stubVectorWriter struct {
	inserted []*ChunkVector
	failOn   map[int]bool
}

func (s *stubVectorWriter) InsertEmbedding(_ context.Context, vec *ChunkVector) error {
	if s.failOn[vec.ChunkIndex] {
		return errors.New("vector insert failed")
	}
	s.inserted = append(s.inserted, vec)
	return nil
}

// stubNotifier 记录发出的通知
type stubNotifier struct {
	emitted []emittedNotification
}

type emittedNotification struct {
	UserID  string
	Type    entity.NotificationType
	Title   string
	Message string
	Related []string
}

func (s *stubNotifier) Emit(_ context.Context, userID string, typ entity.NotificationType, title, message string, relatedIDs []string) {
	s.emitted = append(s.emitted, emittedNotification{
		UserID: userID, Type: typ, Title: title, Message: message, Related: relatedIDs,
	})
}

type pipelineFixture struct {
	docs     *stubDocRepo
	groups   *stubGroupRepo
	chunks   *stubChunkRepo
	blob     *stubBlob
	extract  *stubExtractor
	embedder *stubEmbedder
	vector   *stubVectorWriter
	notifier *stubNotifier
	pipeline *Pipeline
}

func newFixture(blob *stubBlob, extract *stubExtractor) *pipelineFixture {
	f := &pipelineFixture{
		docs:     &stubDocRepo{},
		groups:   &stubGroupRepo{group: &entity.DocumentGroup{ID: "g1", CreatedBy: "uploader-1"}},
		chunks:   &stubChunkRepo{},
		blob:     blob,
		extract:  extract,
		embedder: &stubEmbedder{},
		vector:   &stubVectorWriter{},
		notifier: &stubNotifier{},
	}
	f.pipeline = NewPipeline(PipelineConfig{
		Docs:         f.docs,
		Groups:       f.groups,
		Chunks:       f.chunks,
		Blob:         blob,
		Extractor:    extract,
		Describer:    NewDescriptionGenerator(nil, "test", "test"),
		Embedder:     f.embedder,
		Vector:       f.vector,
		Notifier:     f.notifier,
		EmbedModel:   "test-embedding",
		ChunkSize:    50,
		ChunkOverlap: 5,
	})
	return f
}

func testDocument() *entity.Document {
	return &entity.Document{
		ID:       "doc-1",
		GroupID:  "g1",
		FileName: "notes.pdf",
		FilePath: "uni/g1/notes.pdf",
		MimeType: "application/pdf",
		Status:   entity.DocumentStatusUploaded,
	}
}

func TestProcess_DownloadFailureRollsBackToUploaded(t *testing.T) {
	f := newFixture(&stubBlob{err: errors.New("storage unreachable")}, &stubExtractor{})

	report, err := f.pipeline.Process(context.Background(), testDocument())
	require.NoError(t, err)
	assert.True(t, report.DownloadFailed)

	// processing -> 回滚 uploaded，不触达 MarkReady
	require.Len(t, f.docs.statuses, 2)
	assert.Equal(t, entity.DocumentStatusProcessing, f.docs.statuses[0])
	assert.Equal(t, entity.DocumentStatusUploaded, f.docs.statuses[1])
	assert.Empty(t, f.docs.readyIDs)
	assert.Empty(t, f.chunks.created)
	assert.Empty(t, f.vector.inserted)

	// 只发出开始处理的通知
	require.Len(t, f.notifier.emitted, 1)
	assert.Equal(t, entity.NotificationTypeFileProcessing, f.notifier.emitted[0].Type)
}

func TestProcess_EmptyTextMarksReadyWithoutEmbedding(t *testing.T) {
	f := newFixture(&stubBlob{data: []byte("binary")}, &stubExtractor{text: "", supported: false})

	report, err := f.pipeline.Process(context.Background(), testDocument())
	require.NoError(t, err)
	assert.True(t, report.Unsupported)
	assert.Zero(t, report.ChunkCount)

	// ready 经 UpdateStatus 写入（is_embedded 保持 false），而非 MarkReady
	require.Len(t, f.docs.statuses, 2)
	assert.Equal(t, entity.DocumentStatusReady, f.docs.statuses[1])
	assert.Empty(t, f.docs.readyIDs)
	assert.Empty(t, f.chunks.created)

	require.Len(t, f.notifier.emitted, 2)
	ready := f.notifier.emitted[1]
	assert.Equal(t, entity.NotificationTypeFileReady, ready.Type)
	assert.Contains(t, ready.Message, "no text content to index")
}

func TestProcess_HappyPathIndexesAllChunks(t *testing.T) {
	text := "first paragraph about matrices\nsecond paragraph about vectors"
	f := newFixture(&stubBlob{data: []byte("pdf-bytes")}, &stubExtractor{text: text, supported: true})

	report, err := f.pipeline.Process(context.Background(), testDocument())
	require.NoError(t, err)
	assert.False(t, report.DownloadFailed)
	assert.Equal(t, report.ChunkCount, report.Indexed)
	assert.Empty(t, report.Failures)
	require.NotZero(t, report.ChunkCount)

	assert.Len(t, f.chunks.created, report.ChunkCount)
	assert.Len(t, f.vector.inserted, report.ChunkCount)
	assert.Equal(t, []string{"doc-1"}, f.docs.readyIDs)

	// 向量记录携带文档与组上下文
	first := f.vector.inserted[0]
	assert.Equal(t, "doc-1", first.DocumentID)
	assert.Equal(t, "g1", first.GroupID)
	assert.Equal(t, "test-embedding", first.ModelName)
	assert.Equal(t, 0, first.ChunkIndex)

	// 通知：开始 + 就绪
	require.Len(t, f.notifier.emitted, 2)
	assert.Equal(t, "uploader-1", f.notifier.emitted[0].UserID)
	assert.Contains(t, f.notifier.emitted[0].Message, "being analysed and indexed")
	assert.Contains(t, f.notifier.emitted[1].Message, "processed and is now searchable")
	assert.Equal(t, []string{"doc-1", "g1"}, f.notifier.emitted[1].Related)
}

func TestProcess_PartialChunkFailuresStillMarkReady(t *testing.T) {
	text := strings.Join([]string{
		strings.Repeat("a", 40),
		strings.Repeat("b", 40),
		strings.Repeat("c", 40),
	}, "\n")
	f := newFixture(&stubBlob{data: []byte("x")}, &stubExtractor{text: text, supported: true})
	f.chunks.failOn = map[int]bool{1: true}

	report, err := f.pipeline.Process(context.Background(), testDocument())
	require.NoError(t, err)
	assert.Equal(t, 3, report.ChunkCount)
	assert.Equal(t, 2, report.Indexed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, 1, report.Failures[0].Index)
	assert.Equal(t, StageChunkInsert, report.Failures[0].Stage)

	// 部分失败不阻止就绪
	assert.Equal(t, []string{"doc-1"}, f.docs.readyIDs)
}

func TestProcess_EmbedFailureSkipsChunk(t *testing.T) {
	text := strings.Repeat("a", 40) + "\n" + strings.Repeat("b", 40)
	f := newFixture(&stubBlob{data: []byte("x")}, &stubExtractor{text: text, supported: true})
	f.embedder.failOn = map[int]bool{1: true}

	report, err := f.pipeline.Process(context.Background(), testDocument())
	require.NoError(t, err)
	assert.Equal(t, 2, report.ChunkCount)
	assert.Equal(t, 1, report.Indexed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, StageEmbed, report.Failures[0].Stage)

	// 落库成功但嵌入失败的切片保留在数据库，不写向量
	assert.Len(t, f.chunks.created, 2)
	assert.Len(t, f.vector.inserted, 1)
}

func TestProcess_VectorInsertFailureSkipsChunk(t *testing.T) {
	text := strings.Repeat("a", 40) + "\n" + strings.Repeat("b", 40)
	f := newFixture(&stubBlob{data: []byte("x")}, &stubExtractor{text: text, supported: true})
	f.vector.failOn = map[int]bool{0: true}

	report, err := f.pipeline.Process(context.Background(), testDocument())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Indexed)
	require.Len(t, report.Failures, 1)
	assert.Equal(t, StageVectorInsert, report.Failures[0].Stage)
	assert.Equal(t, 0, report.Failures[0].Index)
	assert.Equal(t, []string{"doc-1"}, f.docs.readyIDs)
}

func TestProcess_ExtractorErrorTreatedAsEmptyText(t *testing.T) {
	f := newFixture(&stubBlob{data: []byte("x")}, &stubExtractor{err: errors.New("corrupt file"), supported: true})

	report, err := f.pipeline.Process(context.Background(), testDocument())
	require.NoError(t, err)
	assert.Zero(t, report.ChunkCount)
	require.Len(t, f.docs.statuses, 2)
	assert.Equal(t, entity.DocumentStatusReady, f.docs.statuses[1])
}

func TestProcess_DescriptionFallbackWithoutChatModel(t *testing.T) {
	f := newFixture(&stubBlob{data: []byte("x")}, &stubExtractor{text: "some academic content", supported: true})

	report, err := f.pipeline.Process(context.Background(), testDocument())
	require.NoError(t, err)
	assert.True(t, report.DescriptionFallback)
	assert.Empty(t, f.docs.aiDescribe)
}

func TestProcess_FileNameEscapedInNotifications(t *testing.T) {
	doc := testDocument()
	doc.FileName = `<script>alert("x")</script>.pdf`
	f := newFixture(&stubBlob{data: []byte("x")}, &stubExtractor{text: "content", supported: true})

	_, err := f.pipeline.Process(context.Background(), doc)
	require.NoError(t, err)
	require.NotEmpty(t, f.notifier.emitted)
	assert.NotContains(t, f.notifier.emitted[0].Message, "<script>")
	assert.Contains(t, f.notifier.emitted[0].Message, "&lt;script&gt;")
}
