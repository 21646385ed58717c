package handler

import (
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"
)

// maxUploadBytes 单个上传文件大小上限
const maxUploadBytes = 20 << 20

// requester 从认证中间件注入的上下文解析请求者
func requester(c *gin.Context) (string, *string) {
	userID := c.GetString("user_id")
	var universityID *string
	if v := c.GetString("university_id"); v != "" {
		universityID = &v
	}
	return userID, universityID
}

// readUpload 读取 multipart 表单中的 file 字段
func readUpload(c *gin.Context) (string, string, []byte, error) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return "", "", nil, fmt.Errorf("file field is required")
	}
	if fileHeader.Size > maxUploadBytes {
		return "", "", nil, fmt.Errorf("file exceeds %d bytes", maxUploadBytes)
	}

	data, err := readFileHeader(fileHeader)
	if err != nil {
		return "", "", nil, err
	}
	return fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data, nil
}

func readFileHeader(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("file exceeds %d bytes", maxUploadBytes)
	}
	return data, nil
}
