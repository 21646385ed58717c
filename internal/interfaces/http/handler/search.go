// Package handler 提供 HTTP 请求处理器
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"scholar-sync-api/internal/application/retrieval"
	"scholar-sync-api/internal/interfaces/http/dto"
)

// defaultMaxQueryChars 查询长度上限（rune）
const defaultMaxQueryChars = 512

// SearchHandler 检索处理器
type SearchHandler struct {
	engine        *retrieval.Engine
	maxQueryChars int
}

// NewSearchHandler 创建检索处理器
func NewSearchHandler(engine *retrieval.Engine, maxQueryChars int) *SearchHandler {
	if maxQueryChars <= 0 {
		maxQueryChars = defaultMaxQueryChars
	}
	return &SearchHandler{
		engine:        engine,
		maxQueryChars: maxQueryChars,
	}
}

// Search 检索文档组
// @Summary 检索文档组
// @Description 语义模式走 HyDE + 向量检索，结果为空时自动回退文本模式
// @Tags Search
// @Accept json
// @Produce json
// @Param body body dto.SearchRequest true "检索请求"
// @Success 200 {object} dto.Response[dto.SearchResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/search [post]
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	if len([]rune(req.Query)) > h.maxQueryChars {
		dto.BadRequest(c, "query too long")
		return
	}

	mode := retrieval.Mode(req.Mode)
	if mode != retrieval.ModeText {
		mode = retrieval.ModeSemantic
	}

	userID, universityID := requester(c)
	out, err := h.engine.Search(c.Request.Context(), retrieval.SearchInput{
		Query:                 req.Query,
		Mode:                  mode,
		RequesterID:           userID,
		RequesterUniversityID: universityID,
		TopK:                  req.TopK,
	})
	if err != nil {
		if errors.Is(err, retrieval.ErrEmptyQuery) {
			dto.BadRequest(c, "query must not be empty")
			return
		}
		dto.InternalError(c, err.Error())
		return
	}

	dto.Success(c, dto.FromSearchOutput(out))
}
