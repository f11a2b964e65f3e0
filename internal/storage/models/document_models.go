package models

import (
	"encoding/json"
	"fmt"
	"time"

	"resume-ingest-go/internal/types"

	"gorm.io/datatypes"
)

// ResumeDocumentRecord 简历文档表
// 主键为(doc_id, partition_key)复合键，文档主体以JSON列整体存储，
// 检索相关字段单独提升为列以便建立索引
type ResumeDocumentRecord struct {
	DocID        string `gorm:"column:doc_id;type:varchar(36);primaryKey"`
	PartitionKey string `gorm:"column:partition_key;type:varchar(64);primaryKey"`

	// SearchableText 写入时预先展平的小写检索文本
	SearchableText string `gorm:"column:searchable_text;type:text"`

	Tags        string    `gorm:"column:tags;type:varchar(255)"`
	Filename    string    `gorm:"column:filename;type:varchar(255)"`
	AIProcessed bool      `gorm:"column:ai_processed"`
	UploadedAt  time.Time `gorm:"column:uploaded_at;index"`

	// Document 完整的文档JSON，读取路径的唯一数据来源
	Document datatypes.JSON `gorm:"column:document;type:json"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName 指定表名
func (ResumeDocumentRecord) TableName() string {
	return "resume_documents"
}

// NewResumeDocumentRecord 把业务文档转换为数据库记录
func NewResumeDocumentRecord(doc *types.ResumeDocument) (*ResumeDocumentRecord, error) {
	if doc == nil {
		return nil, fmt.Errorf("文档不能为空")
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("序列化文档失败: %w", err)
	}

	return &ResumeDocumentRecord{
		DocID:          doc.ID,
		PartitionKey:   doc.PartitionKey,
		SearchableText: doc.SearchableText,
		Tags:           doc.Tags,
		Filename:       doc.Metadata.Filename,
		AIProcessed:    doc.Metadata.AIProcessed,
		UploadedAt:     doc.Metadata.UploadedAt,
		Document:       datatypes.JSON(raw),
	}, nil
}

// ToDocument 从记录的JSON列还原业务文档
func (r *ResumeDocumentRecord) ToDocument() (*types.ResumeDocument, error) {
	var doc types.ResumeDocument
	if err := json.Unmarshal(r.Document, &doc); err != nil {
		return nil, fmt.Errorf("反序列化文档失败 (doc_id=%s): %w", r.DocID, err)
	}
	return &doc, nil
}
