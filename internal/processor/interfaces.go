package processor

import (
	"context"

	"resume-ingest-go/internal/types"
)

// PDFTextExtractor 从PDF字节流提取纯文本
type PDFTextExtractor interface {
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, map[string]interface{}, error)
}

// CandidateInfoExtractor 从简历文本提取结构化候选人信息
// 服务级失败返回错误；输出不可解析时降级为空结构，不返回错误
type CandidateInfoExtractor interface {
	ExtractCandidate(ctx context.Context, text string) (*types.ExtractionResult, error)
}

// DocumentStore 持久化组装好的简历文档
type DocumentStore interface {
	UpsertResumeDocument(ctx context.Context, doc *types.ResumeDocument) error
}

// ExtractionCache 按文本内容缓存提取结果
// Get未命中时返回(nil, nil)；缓存故障由实现方降级处理，不阻断管线
type ExtractionCache interface {
	GetExtractionResult(ctx context.Context, text string) (*types.ExtractionResult, error)
	SetExtractionResult(ctx context.Context, text string, result *types.ExtractionResult) error
}
