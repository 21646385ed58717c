package docs

import "errors"

var (
	// ErrGroupNotFound 文档组不存在
	ErrGroupNotFound = errors.New("document group not found")

	// ErrDocumentNotFound 文档不存在
	ErrDocumentNotFound = errors.New("document not found")

	// ErrNotGroupOwner 仅组创建者可以追加版本
	ErrNotGroupOwner = errors.New("only the group owner can add versions")

	// ErrDocumentNotVisible 文档对请求者不可见
	ErrDocumentNotVisible = errors.New("document is not visible to the requester")
)
