package processor

import (
	"testing"
	"time"

	"resume-ingest-go/internal/constants"
	"resume-ingest-go/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCandidateInfo() *types.CandidateInfo {
	return &types.CandidateInfo{
		PersonalInfo: types.PersonalInfo{
			Name:     "John Doe",
			Email:    "john@example.com",
			Location: "Shanghai",
		},
		TechnicalSkills: []types.TechnicalSkill{
			{Skill: "Python", Proficiency: "expert", Years: 5},
			{Skill: "Go", Proficiency: "advanced", Years: 3},
		},
		SoftSkills: []string{"Leadership", "Communication"},
		Experience: types.Experience{
			TotalYears:  8,
			CurrentRole: "Senior Engineer",
			Industries:  []string{"FinTech", "E-Commerce"},
		},
		Certifications: []string{"AWS SAA"},
	}
}

// TestAssembleBasicFields 验证组装出的文档字段与输入一致
func TestAssembleBasicFields(t *testing.T) {
	fixedTime := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	assembler := NewDocumentAssembler("active",
		WithClock(func() time.Time { return fixedTime }),
		WithIDGenerator(func() string { return "fixed-id" }),
	)

	doc := assembler.Assemble("https://cdn.example.com/resumes/john_doe.pdf", "engineering,senior", sampleCandidateInfo(), true, 1024)

	assert.Equal(t, "fixed-id", doc.ID)
	assert.Equal(t, "active", doc.PartitionKey)
	assert.Equal(t, "engineering,senior", doc.Tags)
	assert.Equal(t, "John Doe", doc.PersonalInfo.Name)
	assert.Equal(t, "john_doe.pdf", doc.Metadata.Filename)
	assert.Equal(t, "https://cdn.example.com/resumes/john_doe.pdf", doc.Metadata.SourceFileURL)
	assert.Equal(t, fixedTime, doc.Metadata.UploadedAt)
	assert.Equal(t, 1024, doc.Metadata.ContentLength)
	assert.True(t, doc.Metadata.AIProcessed)
}

// TestAssembleGeneratesUniqueIDs 验证重复摄取同一份简历产生不同的文档ID
func TestAssembleGeneratesUniqueIDs(t *testing.T) {
	assembler := NewDocumentAssembler("active")
	info := sampleCandidateInfo()

	first := assembler.Assemble("https://example.com/a.pdf", "", info, true, 100)
	second := assembler.Assemble("https://example.com/a.pdf", "", info, true, 100)

	assert.NotEqual(t, first.ID, second.ID, "每次摄取必须生成全新的文档ID")
	// 除ID和时间戳外其余字段应完全一致
	assert.Equal(t, first.SearchableText, second.SearchableText)
	assert.Equal(t, first.PersonalInfo, second.PersonalInfo)
}

// TestAssembleWithNilInfo 验证空候选人信息时组装不会失败
func TestAssembleWithNilInfo(t *testing.T) {
	assembler := NewDocumentAssembler("")

	doc := assembler.Assemble("", "", nil, false, 0)

	require.NotNil(t, doc)
	assert.Equal(t, constants.DefaultPartitionKey, doc.PartitionKey)
	assert.Equal(t, constants.UnknownFilename, doc.Metadata.Filename)
	assert.False(t, doc.Metadata.AIProcessed)
	assert.Equal(t, "", doc.SearchableText)
	assert.NotNil(t, doc.TechnicalSkills)
	assert.NotNil(t, doc.SoftSkills)
}

// TestBuildSearchableText 验证检索文本的展平规则：小写、固定顺序、空白折叠
func TestBuildSearchableText(t *testing.T) {
	text := BuildSearchableText(sampleCandidateInfo())

	assert.Equal(t, "john doe python go leadership communication senior engineer fintech e-commerce", text)
}

// TestBuildSearchableTextSkipsEmptyFields 验证空字段不会在检索文本中留下多余空格
func TestBuildSearchableTextSkipsEmptyFields(t *testing.T) {
	info := types.NewEmptyCandidateInfo()
	info.PersonalInfo.Name = "Alice"
	info.Experience.Industries = []string{"Gaming"}

	assert.Equal(t, "alice gaming", BuildSearchableText(info))
}

// TestFilenameFromURL 验证文件名派生规则
func TestFilenameFromURL(t *testing.T) {
	assert.Equal(t, "resume.pdf", FilenameFromURL("https://example.com/files/resume.pdf"))
	assert.Equal(t, "resume.pdf", FilenameFromURL("https://example.com/files/resume.pdf?sig=abc123"))
	assert.Equal(t, constants.UnknownFilename, FilenameFromURL(""))
	assert.Equal(t, constants.UnknownFilename, FilenameFromURL("https://example.com/"))
	assert.Equal(t, constants.UnknownFilename, FilenameFromURL("https://example.com"))
	assert.Equal(t, constants.UnknownFilename, FilenameFromURL("://无法解析的URL"))
}
