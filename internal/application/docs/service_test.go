package docs

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/domain/repository"
)

type memDocRepo struct {
	created    []*entity.Document
	existing   *entity.Document
	maxVersion int
}

func (m *memDocRepo) Create(_ context.Context, doc *entity.Document) error {
	m.created = append(m.created, doc)
	return nil
}

func (m *memDocRepo) GetByID(_ context.Context, id string) (*entity.Document, error) {
	if m.existing != nil && m.existing.ID == id {
		return m.existing, nil
	}
	return nil, nil
}

func (m *memDocRepo) NextUploaded(context.Context) (*entity.Document, error) { return nil, nil }

func (m *memDocRepo) UpdateStatus(context.Context, string, entity.DocumentStatus) error { return nil }

func (m *memDocRepo) MarkReady(context.Context, string) error { return nil }

func (m *memDocRepo) UpdateAIDescription(context.Context, string, string) error { return nil }

func (m *memDocRepo) MaxVersionNumber(context.Context, string) (int, error) {
	return m.maxVersion, nil
}

func (m *memDocRepo) ListVisibleActive(context.Context, repository.Visibility) ([]*entity.Document, error) {
	return nil, nil
}

type memGroupRepo struct {
	created  []*entity.DocumentGroup
	existing *entity.DocumentGroup
	active   map[string]string
}

func (m *memGroupRepo) Create(_ context.Context, group *entity.DocumentGroup) error {
	m.created = append(m.created, group)
	return nil
}

func (m *memGroupRepo) GetByID(context.Context, string) (*entity.DocumentGroup, error) {
	return m.existing, nil
}

func (m *memGroupRepo) GetByIDs(context.Context, []string) ([]*entity.DocumentGroup, error) {
	return nil, nil
}

func (m *memGroupRepo) SetActiveDocument(_ context.Context, groupID, documentID string) error {
	if m.active == nil {
		m.active = make(map[string]string)
	}
	m.active[groupID] = documentID
	return nil
}

func (m *memGroupRepo) UpdateAIDescription(context.Context, string, string) error { return nil }

func (m *memGroupRepo) ListMine(context.Context, repository.Visibility) ([]*entity.DocumentGroup, error) {
	return nil, nil
}

func (m *memGroupRepo) SearchTitles(context.Context, string, repository.Visibility) ([]*entity.DocumentGroup, error) {
	return nil, nil
}

type memBlob struct {
	uploads map[string][]byte
	err     error
}

func (m *memBlob) Upload(_ context.Context, path, _ string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	if m.uploads == nil {
		m.uploads = make(map[string][]byte)
	}
	m.uploads[path] = data
	return nil
}

func (m *memBlob) SignURL(_ context.Context, path string, _ time.Duration) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return "https://storage.example/signed/" + path, nil
}

type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type memInvalidator struct {
	groupIDs []string
}

func (m *memInvalidator) InvalidateGroup(_ context.Context, groupID string) error {
	m.groupIDs = append(m.groupIDs, groupID)
	return nil
}

func newTestService(docs *memDocRepo, groups *memGroupRepo, blob *memBlob, inv *memInvalidator) *Service {
	return NewService(docs, groups, blob, passthroughTx{}, inv)
}

func TestCreateGroup(t *testing.T) {
	uni := "uni-1"
	docs := &memDocRepo{}
	groups := &memGroupRepo{}
	blob := &memBlob{}
	inv := &memInvalidator{}
	svc := newTestService(docs, groups, blob, inv)

	group, doc, err := svc.CreateGroup(context.Background(), UploadInput{
		Title:                 "  Calculus Notes  ",
		Scope:                 entity.GroupScopeLocal,
		HumanDescription:      "first semester",
		FileName:              "calc.pdf",
		MimeType:              "application/pdf",
		Data:                  []byte("pdf"),
		RequesterID:           "u1",
		RequesterUniversityID: &uni,
	})
	require.NoError(t, err)

	assert.Equal(t, "Calculus Notes", group.Title)
	assert.Equal(t, entity.GroupScopeLocal, group.Scope)
	assert.Equal(t, "u1", group.CreatedBy)
	require.NotNil(t, group.ActiveDocumentID)
	assert.Equal(t, doc.ID, *group.ActiveDocumentID)

	assert.Equal(t, 1, doc.VersionNumber)
	assert.Equal(t, entity.DocumentStatusUploaded, doc.Status)
	assert.Equal(t, "first semester", doc.HumanDescription)
	assert.True(t, strings.HasPrefix(doc.FilePath, "uni-1/"+group.ID+"/"))
	assert.True(t, strings.HasSuffix(doc.FilePath, "_calc.pdf"))

	require.Len(t, groups.created, 1)
	require.Len(t, docs.created, 1)
	assert.Equal(t, doc.ID, groups.active[group.ID])
	assert.Contains(t, blob.uploads, doc.FilePath)
	assert.Equal(t, []string{group.ID}, inv.groupIDs)
}

func TestCreateGroup_EmptyTitle(t *testing.T) {
	svc := newTestService(&memDocRepo{}, &memGroupRepo{}, &memBlob{}, &memInvalidator{})
	_, _, err := svc.CreateGroup(context.Background(), UploadInput{Title: "   "})
	require.Error(t, err)
}

func TestCreateGroup_InvalidScopeDefaultsToLocal(t *testing.T) {
	svc := newTestService(&memDocRepo{}, &memGroupRepo{}, &memBlob{}, &memInvalidator{})
	group, _, err := svc.CreateGroup(context.Background(), UploadInput{
		Title:       "T",
		Scope:       entity.GroupScope("everyone"),
		RequesterID: "u1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.GroupScopeLocal, group.Scope)
}

func TestCreateGroup_SharedPathWithoutUniversity(t *testing.T) {
	svc := newTestService(&memDocRepo{}, &memGroupRepo{}, &memBlob{}, &memInvalidator{})
	_, doc, err := svc.CreateGroup(context.Background(), UploadInput{
		Title:       "Global paper",
		Scope:       entity.GroupScopeGlobal,
		FileName:    "paper.pdf",
		RequesterID: "u1",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(doc.FilePath, "shared/"))
}

func TestCreateGroup_UploadFailureAbortsBeforeDB(t *testing.T) {
	docs := &memDocRepo{}
	groups := &memGroupRepo{}
	svc := newTestService(docs, groups, &memBlob{err: errors.New("storage down")}, &memInvalidator{})

	_, _, err := svc.CreateGroup(context.Background(), UploadInput{
		Title:       "T",
		RequesterID: "u1",
	})
	require.Error(t, err)
	assert.Empty(t, groups.created)
	assert.Empty(t, docs.created)
}

func TestAddVersion_OwnerOnly(t *testing.T) {
	groups := &memGroupRepo{existing: &entity.DocumentGroup{ID: "g1", CreatedBy: "owner"}}
	svc := newTestService(&memDocRepo{}, groups, &memBlob{}, &memInvalidator{})

	_, err := svc.AddVersion(context.Background(), "g1", UploadInput{RequesterID: "intruder"})
	assert.ErrorIs(t, err, ErrNotGroupOwner)
}

func TestAddVersion_GroupNotFound(t *testing.T) {
	svc := newTestService(&memDocRepo{}, &memGroupRepo{}, &memBlob{}, &memInvalidator{})
	_, err := svc.AddVersion(context.Background(), "missing", UploadInput{RequesterID: "u1"})
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestAddVersion_IncrementsVersionAndActivates(t *testing.T) {
	uni := "uni-9"
	docs := &memDocRepo{maxVersion: 4}
	groups := &memGroupRepo{existing: &entity.DocumentGroup{ID: "g1", CreatedBy: "owner", UniversityID: &uni}}
	inv := &memInvalidator{}
	svc := newTestService(docs, groups, &memBlob{}, inv)

	doc, err := svc.AddVersion(context.Background(), "g1", UploadInput{
		FileName:    "notes v2.pdf",
		RequesterID: "owner",
	})
	require.NoError(t, err)
	assert.Equal(t, 5, doc.VersionNumber)
	assert.True(t, strings.HasPrefix(doc.FilePath, "uni-9/g1/v5_"))
	assert.Equal(t, doc.ID, groups.active["g1"])
	assert.Equal(t, []string{"g1"}, inv.groupIDs)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "a_b_c.pdf", sanitizeFileName("a/b\\c.pdf"))
	assert.Equal(t, "document", sanitizeFileName("   "))
	assert.Equal(t, "plain.pdf", sanitizeFileName("plain.pdf"))
}

func TestDownloadURL_OwnerGetsSignedURL(t *testing.T) {
	docs := &memDocRepo{existing: &entity.Document{ID: "d1", GroupID: "g1", FilePath: "uni-1/g1/calc.pdf"}}
	groups := &memGroupRepo{existing: &entity.DocumentGroup{ID: "g1", CreatedBy: "owner"}}
	svc := newTestService(docs, groups, &memBlob{}, &memInvalidator{})

	url, err := svc.DownloadURL(context.Background(), "d1", "owner", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://storage.example/signed/uni-1/g1/calc.pdf", url)
}

func TestDownloadURL_NotVisible(t *testing.T) {
	otherUni := "uni-2"
	docUni := "uni-1"
	docs := &memDocRepo{existing: &entity.Document{ID: "d1", GroupID: "g1", FilePath: "p"}}
	groups := &memGroupRepo{existing: &entity.DocumentGroup{
		ID:           "g1",
		Scope:        entity.GroupScopeLocal,
		CreatedBy:    "owner",
		UniversityID: &docUni,
	}}
	svc := newTestService(docs, groups, &memBlob{}, &memInvalidator{})

	_, err := svc.DownloadURL(context.Background(), "d1", "stranger", &otherUni)
	assert.ErrorIs(t, err, ErrDocumentNotVisible)
}

func TestDownloadURL_GlobalVisibleToAnyone(t *testing.T) {
	docs := &memDocRepo{existing: &entity.Document{ID: "d1", GroupID: "g1", FilePath: "p"}}
	groups := &memGroupRepo{existing: &entity.DocumentGroup{ID: "g1", Scope: entity.GroupScopeGlobal, CreatedBy: "owner"}}
	svc := newTestService(docs, groups, &memBlob{}, &memInvalidator{})

	_, err := svc.DownloadURL(context.Background(), "d1", "stranger", nil)
	require.NoError(t, err)
}

func TestDownloadURL_DocumentNotFound(t *testing.T) {
	svc := newTestService(&memDocRepo{}, &memGroupRepo{}, &memBlob{}, &memInvalidator{})
	_, err := svc.DownloadURL(context.Background(), "missing", "u1", nil)
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestGetGroup_NotFound(t *testing.T) {
	svc := newTestService(&memDocRepo{}, &memGroupRepo{}, &memBlob{}, &memInvalidator{})
	_, err := svc.GetGroup(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrGroupNotFound)
}

func TestGetDocument_NotFound(t *testing.T) {
	svc := newTestService(&memDocRepo{}, &memGroupRepo{}, &memBlob{}, &memInvalidator{})
	_, err := svc.GetDocument(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}
