package retrieval

// Mode 检索模式
type Mode string

const (
	// ModeSemantic HyDE + 向量检索，空结果自动回退文本模式
	ModeSemantic Mode = "semantic"
	// ModeText 大小写不敏感子串匹配，无进一步回退
	ModeText Mode = "text"
)

// SearchInput 检索输入
type SearchInput struct {
	Query string
	Mode  Mode

	// 请求者上下文，用于可见性过滤
	RequesterID           string
	RequesterUniversityID *string

	// TopK 每个 HyDE 短语的向量召回数量，0 表示默认值
	TopK int
}

// GroupSummary 检索结果：一个文档组及其当前生效版本的摘要
type GroupSummary struct {
	GroupID          string  `json:"group_id"`
	Title            string  `json:"title"`
	Scope            string  `json:"scope"`
	CreatedBy        string  `json:"created_by"`
	UniversityID     *string `json:"university_id,omitempty"`
	AIDescription    string  `json:"ai_description,omitempty"`
	ActiveDocumentID string  `json:"active_document_id,omitempty"`
	FileName         string  `json:"file_name,omitempty"`
	VersionNumber    int     `json:"version_number,omitempty"`
	DocumentStatus   string  `json:"document_status,omitempty"`

	// Similarity 语义模式下的相似度；文本模式为 nil
	Similarity *float64 `json:"similarity,omitempty"`
}

// SearchOutput 检索输出
type SearchOutput struct {
	// Mode 实际生效的模式（语义检索可能回退为 text）
	Mode    Mode           `json:"mode"`
	Results []GroupSummary `json:"results"`

	// FallbackReason 语义模式回退文本模式时的原因说明
	FallbackReason string `json:"fallback_reason,omitempty"`
}
