package types

import "time"

// DocumentMetadata 简历文档的元数据
type DocumentMetadata struct {
	SourceFileURL string    `json:"source_file_url"`
	Filename      string    `json:"filename"`
	UploadedAt    time.Time `json:"uploaded_at"`
	ContentLength int       `json:"content_length"`
	// AIProcessed 标记模型提取是否成功，解析降级时为false
	AIProcessed bool `json:"ai_processed"`
}

// ResumeDocument 持久化的简历文档
// 每个成功的摄取请求恰好产生一个文档；组装完成后不可变，只写一次
type ResumeDocument struct {
	ID           string `json:"id"`
	PartitionKey string `json:"partition_key"`
	Tags         string `json:"tags"`

	PersonalInfo    PersonalInfo     `json:"personal_info"`
	TechnicalSkills []TechnicalSkill `json:"technical_skills"`
	SoftSkills      []string         `json:"soft_skills"`
	Experience      Experience       `json:"experience"`
	Certifications  []string         `json:"certifications"`

	// SearchableText 所有可检索文本字段的小写扁平化拼接
	// 存储层的查询是子串包含匹配而非全文索引，因此必须在写入时预先展平
	SearchableText string `json:"searchable_text"`

	Metadata DocumentMetadata `json:"metadata"`
}
