package processor

import (
	"net/url"
	"path"
	"strings"
	"time"

	"resume-ingest-go/internal/constants"
	"resume-ingest-go/internal/types"

	"github.com/gofrs/uuid/v5"
)

// DocumentAssembler 将提取结果组装为可持久化的简历文档
// 纯本地计算阶段，不做任何I/O，不会失败
type DocumentAssembler struct {
	partitionKey string

	// 测试时可替换的时钟与ID生成器
	now   func() time.Time
	newID func() string
}

// AssemblerOption 组装器的配置选项
type AssemblerOption func(*DocumentAssembler)

// WithClock 注入自定义时钟
func WithClock(now func() time.Time) AssemblerOption {
	return func(a *DocumentAssembler) {
		if now != nil {
			a.now = now
		}
	}
}

// WithIDGenerator 注入自定义文档ID生成器
func WithIDGenerator(newID func() string) AssemblerOption {
	return func(a *DocumentAssembler) {
		if newID != nil {
			a.newID = newID
		}
	}
}

// NewDocumentAssembler 创建文档组装器
// partitionKey为空时使用默认分区键，当前所有文档落在同一个分区
func NewDocumentAssembler(partitionKey string, options ...AssemblerOption) *DocumentAssembler {
	if strings.TrimSpace(partitionKey) == "" {
		partitionKey = constants.DefaultPartitionKey
	}

	assembler := &DocumentAssembler{
		partitionKey: partitionKey,
		now:          func() time.Time { return time.Now().UTC() },
		newID:        func() string { return uuid.Must(uuid.NewV7()).String() },
	}

	for _, opt := range options {
		opt(assembler)
	}

	return assembler
}

// Assemble 从候选人信息与请求元数据组装一份新文档
// 每次调用生成全新的UUIDv7文档ID：同一份简历重复摄取会产生多个文档，去重不在本层职责内
func (a *DocumentAssembler) Assemble(fileURL string, tags string, info *types.CandidateInfo, aiProcessed bool, contentLength int) *types.ResumeDocument {
	if info == nil {
		info = types.NewEmptyCandidateInfo()
	}

	return &types.ResumeDocument{
		ID:           a.newID(),
		PartitionKey: a.partitionKey,
		Tags:         tags,

		PersonalInfo:    info.PersonalInfo,
		TechnicalSkills: info.TechnicalSkills,
		SoftSkills:      info.SoftSkills,
		Experience:      info.Experience,
		Certifications:  info.Certifications,

		SearchableText: BuildSearchableText(info),

		Metadata: types.DocumentMetadata{
			SourceFileURL: fileURL,
			Filename:      FilenameFromURL(fileURL),
			UploadedAt:    a.now(),
			ContentLength: contentLength,
			AIProcessed:   aiProcessed,
		},
	}
}

// BuildSearchableText 把可检索字段展平为一个小写的空格分隔字符串
// 取值顺序固定：姓名、技术技能名、软技能、当前职位、行业
func BuildSearchableText(info *types.CandidateInfo) string {
	parts := make([]string, 0, 2+len(info.TechnicalSkills)+len(info.SoftSkills)+len(info.Experience.Industries))

	parts = append(parts, info.PersonalInfo.Name)
	for _, skill := range info.TechnicalSkills {
		parts = append(parts, skill.Skill)
	}
	parts = append(parts, info.SoftSkills...)
	parts = append(parts, info.Experience.CurrentRole)
	parts = append(parts, info.Experience.Industries...)

	// strings.Fields 同时消除空字段与多余空白
	joined := strings.ToLower(strings.Join(parts, " "))
	return strings.Join(strings.Fields(joined), " ")
}

// FilenameFromURL 从文件URL中取最后一段路径作为文件名
// URL为空、无法解析或没有路径段时使用占位文件名
func FilenameFromURL(fileURL string) string {
	if strings.TrimSpace(fileURL) == "" {
		return constants.UnknownFilename
	}

	parsed, err := url.Parse(fileURL)
	if err != nil {
		return constants.UnknownFilename
	}

	segment := path.Base(parsed.Path)
	if segment == "" || segment == "." || segment == "/" {
		return constants.UnknownFilename
	}
	return segment
}
