package processor

import (
	"context"
	"encoding/base64"

	"resume-ingest-go/internal/logger"
	"resume-ingest-go/internal/tracing"
	"resume-ingest-go/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var ingestTracer = otel.Tracer("resume-ingest-go/processor")

// IngestInput 一次摄取请求的输入
type IngestInput struct {
	FileURL           string
	FileContentBase64 string
	Tags              string
}

// IngestResult 一次成功摄取的产物
type IngestResult struct {
	Document   *types.ResumeDocument
	TextLength int
}

// ResumeIngestor 简历摄取管线的编排器
// 严格顺序执行各阶段，单个请求内没有并行或流水线重叠；
// 每个成功请求恰好写入一个文档，任何阶段失败都不产生写入
type ResumeIngestor struct {
	pdfExtractor PDFTextExtractor
	llmExtractor CandidateInfoExtractor
	assembler    *DocumentAssembler
	store        DocumentStore

	// cache 可为nil，此时每次都调用模型
	cache ExtractionCache
}

// NewResumeIngestor 创建摄取编排器，所有组件在构造时注入
func NewResumeIngestor(
	pdfExtractor PDFTextExtractor,
	llmExtractor CandidateInfoExtractor,
	assembler *DocumentAssembler,
	store DocumentStore,
	cache ExtractionCache,
) *ResumeIngestor {
	return &ResumeIngestor{
		pdfExtractor: pdfExtractor,
		llmExtractor: llmExtractor,
		assembler:    assembler,
		store:        store,
		cache:        cache,
	}
}

// Ingest 执行完整的摄取管线：解码 -> 提取文本 -> 模型提取 -> 组装 -> 写入
// 返回的错误携带分类基础错误，HTTP层据此映射状态码
func (ri *ResumeIngestor) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	ctx, span := ingestTracer.Start(ctx, "ResumeIngestor.Ingest",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	span.SetAttributes(
		attribute.String("ingest.file_url", tracing.SafeAttributeValue("file_url", input.FileURL, tracing.DefaultMaxLength)),
		attribute.Int("ingest.payload_base64_length", len(input.FileContentBase64)),
	)

	// 阶段1: Base64解码
	pdfBytes, err := ri.decodePayload(input)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}

	// 阶段2: PDF文本提取
	text, meta, err := ri.pdfExtractor.ExtractTextFromBytes(ctx, pdfBytes, input.FileURL)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypePDF)
		return nil, NewUnreadableDocumentError(input.FileURL, err.Error())
	}
	if pageCount, ok := meta["page_count"].(int); ok {
		span.SetAttributes(attribute.Int("ingest.page_count", pageCount))
	}
	span.SetAttributes(attribute.Int("ingest.text_length", len(text)))

	// 阶段3: 结构化提取，优先查缓存
	// 空文本同样交给模型，由模型返回空结构，保持管线各阶段职责单一
	extraction := ri.lookupCache(ctx, text)
	if extraction == nil {
		extraction, err = ri.llmExtractor.ExtractCandidate(ctx, text)
		if err != nil {
			tracing.RecordError(span, err, tracing.ErrorTypeLLM)
			return nil, NewExtractionServiceError(input.FileURL, err.Error())
		}
		ri.storeCache(ctx, text, extraction)
	}
	span.SetAttributes(attribute.Bool("ingest.ai_processed", extraction.AIProcessed))

	// 阶段4: 文档组装，本地计算不会失败
	doc := ri.assembler.Assemble(input.FileURL, input.Tags, extraction.Info, extraction.AIProcessed, len(text))

	// 阶段5: 持久化，每个成功请求恰好一次写入
	if err := ri.store.UpsertResumeDocument(ctx, doc); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeDB)
		return nil, NewStorageError(input.FileURL, err.Error())
	}

	span.SetAttributes(attribute.String("ingest.document_id", doc.ID))
	span.SetStatus(codes.Ok, "")

	logger.Ctx(ctx).Info().
		Str("document_id", doc.ID).
		Str("filename", doc.Metadata.Filename).
		Int("text_length", len(text)).
		Bool("ai_processed", extraction.AIProcessed).
		Msg("简历摄取完成")

	return &IngestResult{
		Document:   doc,
		TextLength: len(text),
	}, nil
}

// decodePayload 校验并解码请求中的Base64文件内容
func (ri *ResumeIngestor) decodePayload(input IngestInput) ([]byte, error) {
	if input.FileContentBase64 == "" {
		return nil, NewInvalidPayloadError(input.FileURL, "file_content为空")
	}

	pdfBytes, err := base64.StdEncoding.DecodeString(input.FileContentBase64)
	if err != nil {
		return nil, NewInvalidPayloadError(input.FileURL, "file_content不是合法的Base64: "+err.Error())
	}
	if len(pdfBytes) == 0 {
		return nil, NewInvalidPayloadError(input.FileURL, "file_content解码后为空")
	}
	return pdfBytes, nil
}

// lookupCache 查询提取缓存，任何缓存故障都按未命中处理
func (ri *ResumeIngestor) lookupCache(ctx context.Context, text string) *types.ExtractionResult {
	if ri.cache == nil || text == "" {
		return nil
	}

	cached, err := ri.cache.GetExtractionResult(ctx, text)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("查询提取缓存失败，回退到模型调用")
		return nil
	}
	return cached
}

// storeCache 写入提取缓存，只缓存模型成功解析的结果
// 降级结果不缓存：缓存一次解析失败会把后续同文本的请求也钉死在降级路径上
func (ri *ResumeIngestor) storeCache(ctx context.Context, text string, result *types.ExtractionResult) {
	if ri.cache == nil || text == "" || result == nil || !result.AIProcessed {
		return
	}

	if err := ri.cache.SetExtractionResult(ctx, text, result); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Msg("写入提取缓存失败")
	}
}
