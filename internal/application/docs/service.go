// Package docs 实现文档库的上传与查询用例
package docs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"scholar-sync-api/internal/domain/entity"
	"scholar-sync-api/internal/domain/repository"
	"scholar-sync-api/pkg/logger"
)

// BlobStore 对象存储依赖
type BlobStore interface {
	Upload(ctx context.Context, path, contentType string, data []byte) error
	SignURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
}

// GroupCacheInvalidator 组摘要缓存失效依赖
type GroupCacheInvalidator interface {
	InvalidateGroup(ctx context.Context, groupID string) error
}

// Service 文档库服务
type Service struct {
	docs   repository.DocumentRepository
	groups repository.DocumentGroupRepository
	blob   BlobStore
	tx     repository.Transactor
	cache  GroupCacheInvalidator
}

// NewService 创建文档库服务
func NewService(
	docs repository.DocumentRepository,
	groups repository.DocumentGroupRepository,
	blob BlobStore,
	tx repository.Transactor,
	cache GroupCacheInvalidator,
) *Service {
	return &Service{
		docs:   docs,
		groups: groups,
		blob:   blob,
		tx:     tx,
		cache:  cache,
	}
}

// UploadInput 上传参数
type UploadInput struct {
	Title            string
	Scope            entity.GroupScope
	HumanDescription string
	FileName         string
	MimeType         string
	Data             []byte

	RequesterID           string
	RequesterUniversityID *string
}

// CreateGroup 创建文档组并上传首个版本。
// 新版本立即成为组的生效版本，不等待摄取完成。
func (s *Service) CreateGroup(ctx context.Context, in UploadInput) (*entity.DocumentGroup, *entity.Document, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, nil, fmt.Errorf("title is required")
	}
	if in.Scope != entity.GroupScopeLocal && in.Scope != entity.GroupScopeGlobal {
		in.Scope = entity.GroupScopeLocal
	}

	group := entity.NewDocumentGroup(strings.TrimSpace(in.Title), in.Scope, in.RequesterUniversityID, in.RequesterID)
	group.ID = uuid.NewString()

	doc := entity.NewDocument(group.ID, 1, in.FileName, s.buildFilePath(in.RequesterUniversityID, group.ID, 1, in.FileName), in.MimeType)
	doc.ID = uuid.NewString()
	doc.HumanDescription = in.HumanDescription

	if err := s.blob.Upload(ctx, doc.FilePath, in.MimeType, in.Data); err != nil {
		return nil, nil, fmt.Errorf("failed to upload file: %w", err)
	}

	err := s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.groups.Create(txCtx, group); err != nil {
			return err
		}
		if err := s.docs.Create(txCtx, doc); err != nil {
			return err
		}
		return s.groups.SetActiveDocument(txCtx, group.ID, doc.ID)
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create document group: %w", err)
	}

	group.SetActiveDocument(doc.ID)
	s.invalidate(ctx, group.ID)
	logger.Info(ctx, "document group created", "group_id", group.ID, "document_id", doc.ID)
	return group, doc, nil
}

// AddVersion 上传新版本。只有组的创建者可以追加版本；
// 版本号取组内最大版本号加一，并立即设为生效版本。
func (s *Service) AddVersion(ctx context.Context, groupID string, in UploadInput) (*entity.Document, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if group.CreatedBy != in.RequesterID {
		return nil, ErrNotGroupOwner
	}

	maxVersion, err := s.docs.MaxVersionNumber(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve version number: %w", err)
	}
	version := maxVersion + 1

	doc := entity.NewDocument(groupID, version, in.FileName, s.buildFilePath(group.UniversityID, groupID, version, in.FileName), in.MimeType)
	doc.ID = uuid.NewString()
	doc.HumanDescription = in.HumanDescription

	if err := s.blob.Upload(ctx, doc.FilePath, in.MimeType, in.Data); err != nil {
		return nil, fmt.Errorf("failed to upload file: %w", err)
	}

	err = s.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.docs.Create(txCtx, doc); err != nil {
			return err
		}
		return s.groups.SetActiveDocument(txCtx, groupID, doc.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to add document version: %w", err)
	}

	s.invalidate(ctx, groupID)
	logger.Info(ctx, "document version added", "group_id", groupID, "document_id", doc.ID, "version", version)
	return doc, nil
}

// ListMine 获取请求者创建的或所属学校的文档组
func (s *Service) ListMine(ctx context.Context, requesterID string, universityID *string) ([]*entity.DocumentGroup, error) {
	return s.groups.ListMine(ctx, repository.Visibility{UserID: requesterID, UniversityID: universityID})
}

// ListVisibleActive 获取对请求者可见的各组当前生效且已就绪的版本
func (s *Service) ListVisibleActive(ctx context.Context, requesterID string, universityID *string) ([]*entity.Document, error) {
	return s.docs.ListVisibleActive(ctx, repository.Visibility{UserID: requesterID, UniversityID: universityID})
}

// GetGroup 获取单个文档组
func (s *Service) GetGroup(ctx context.Context, id string) (*entity.DocumentGroup, error) {
	group, err := s.groups.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group == nil {
		return nil, ErrGroupNotFound
	}
	return group, nil
}

// GetDocument 获取单个文档版本
func (s *Service) GetDocument(ctx context.Context, id string) (*entity.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	return doc, nil
}

// downloadURLTTL 签名下载地址的有效期
const downloadURLTTL = 15 * time.Minute

// DownloadURL 为可见文档签发限时下载地址
func (s *Service) DownloadURL(ctx context.Context, docID string, requesterID string, universityID *string) (string, error) {
	doc, err := s.GetDocument(ctx, docID)
	if err != nil {
		return "", err
	}
	group, err := s.groups.GetByID(ctx, doc.GroupID)
	if err != nil {
		return "", err
	}
	if group == nil || !groupVisibleTo(group, requesterID, universityID) {
		return "", ErrDocumentNotVisible
	}

	url, err := s.blob.SignURL(ctx, doc.FilePath, downloadURLTTL)
	if err != nil {
		return "", fmt.Errorf("failed to sign download url: %w", err)
	}
	return url, nil
}

// groupVisibleTo 可见性规则：全局共享、创建者本人或同校
func groupVisibleTo(group *entity.DocumentGroup, requesterID string, universityID *string) bool {
	if group.Scope == entity.GroupScopeGlobal {
		return true
	}
	if group.CreatedBy == requesterID {
		return true
	}
	if universityID != nil && group.UniversityID != nil && *group.UniversityID == *universityID {
		return true
	}
	return false
}

// buildFilePath 生成对象存储路径：{university_id}/{group_id}/v{n}_{uuid}_{file_name}
func (s *Service) buildFilePath(universityID *string, groupID string, version int, fileName string) string {
	uni := "shared"
	if universityID != nil && *universityID != "" {
		uni = *universityID
	}
	name := sanitizeFileName(fileName)
	if version <= 1 {
		return fmt.Sprintf("%s/%s/%s_%s", uni, groupID, uuid.NewString(), name)
	}
	return fmt.Sprintf("%s/%s/v%d_%s_%s", uni, groupID, version, uuid.NewString(), name)
}

// sanitizeFileName 去除路径分隔符，避免对象键逃逸
func sanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.TrimSpace(name)
	if name == "" {
		name = "document"
	}
	return name
}

func (s *Service) invalidate(ctx context.Context, groupID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateGroup(ctx, groupID); err != nil {
		logger.Warn(ctx, "failed to invalidate group cache", "group_id", groupID, "error", err.Error())
	}
}
