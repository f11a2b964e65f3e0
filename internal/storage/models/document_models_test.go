package models

import (
	"testing"
	"time"

	"resume-ingest-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewResumeDocumentRecord 验证检索相关字段被正确提升为独立列
func TestNewResumeDocumentRecord(t *testing.T) {
	uploadedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	doc := &types.ResumeDocument{
		ID:             "doc-123",
		PartitionKey:   "active",
		Tags:           "backend",
		SearchableText: "zhang san go mysql",
		Metadata: types.DocumentMetadata{
			SourceFileURL: "https://example.com/resume.pdf",
			Filename:      "resume.pdf",
			UploadedAt:    uploadedAt,
			ContentLength: 2048,
			AIProcessed:   true,
		},
	}
	doc.PersonalInfo.Name = "Zhang San"
	doc.TechnicalSkills = []types.TechnicalSkill{
		{Skill: "Go", Proficiency: "精通", Years: 5.5},
		{Skill: "MySQL", Proficiency: "熟练", Years: 3},
	}

	record, err := NewResumeDocumentRecord(doc)
	require.NoError(t, err)

	assert.Equal(t, "doc-123", record.DocID)
	assert.Equal(t, "active", record.PartitionKey)
	assert.Equal(t, "zhang san go mysql", record.SearchableText)
	assert.Equal(t, "backend", record.Tags)
	assert.Equal(t, "resume.pdf", record.Filename)
	assert.True(t, record.AIProcessed)
	assert.Equal(t, uploadedAt, record.UploadedAt)

	// JSON列能完整还原文档
	restored, err := record.ToDocument()
	require.NoError(t, err)
	assert.Equal(t, doc.ID, restored.ID)
	assert.Equal(t, "Zhang San", restored.PersonalInfo.Name)
	assert.Equal(t, doc.Metadata.SourceFileURL, restored.Metadata.SourceFileURL)
	// 技能顺序和浮点年限不能在序列化中丢失
	assert.Equal(t, doc.TechnicalSkills, restored.TechnicalSkills)
}

// TestNewResumeDocumentRecordNilDoc 验证空文档返回错误
func TestNewResumeDocumentRecordNilDoc(t *testing.T) {
	_, err := NewResumeDocumentRecord(nil)
	require.Error(t, err)
}

// TestToDocumentCorruptJSON 验证损坏的JSON列返回错误而不是panic
func TestToDocumentCorruptJSON(t *testing.T) {
	record := &ResumeDocumentRecord{DocID: "bad", Document: []byte("{损坏")}
	_, err := record.ToDocument()
	require.Error(t, err)
}
