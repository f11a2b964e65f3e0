package handler

import (
	"context"
	"errors"
	"strconv"

	"resume-ingest-go/internal/config"
	"resume-ingest-go/internal/logger"
	"resume-ingest-go/internal/processor"
	"resume-ingest-go/internal/storage"
	"resume-ingest-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"gorm.io/gorm"
)

// IngestHandler 简历摄取HTTP处理器
type IngestHandler struct {
	cfg      *config.Config
	storage  *storage.Storage
	ingestor *processor.ResumeIngestor
}

// NewIngestHandler 创建简历摄取处理器
func NewIngestHandler(cfg *config.Config, storage *storage.Storage, ingestor *processor.ResumeIngestor) *IngestHandler {
	return &IngestHandler{
		cfg:      cfg,
		storage:  storage,
		ingestor: ingestor,
	}
}

// IngestRequest 简历摄取请求体
type IngestRequest struct {
	FileURL     string `json:"file_url"`
	FileContent string `json:"file_content"`
	Tags        string `json:"tags"`
}

// IngestResponse 简历摄取成功响应
type IngestResponse struct {
	Status              string               `json:"status"`
	FileURL             string               `json:"file_url"`
	Tags                string               `json:"tags"`
	ExtractedTextLength int                  `json:"extracted_text_length"`
	DocumentID          string               `json:"document_id"`
	AIProcessed         bool                 `json:"ai_processed"`
	CandidateInfo       *types.CandidateInfo `json:"candidate_info"`
	Message             string               `json:"message"`
}

// HandleIngest 处理简历摄取请求
// 请求体格式错误返回400；管线错误按分类映射状态码
func (h *IngestHandler) HandleIngest(c context.Context, ctx *app.RequestContext) {
	var req IngestRequest
	if err := ctx.BindAndValidate(&req); err != nil {
		logger.Ctx(c).Warn().Err(err).Msg("解析摄取请求体失败")
		ctx.JSON(consts.StatusBadRequest, utils.H{"status": "error", "message": "请求体格式错误: " + err.Error()})
		return
	}

	result, err := h.ingestor.Ingest(c, processor.IngestInput{
		FileURL:           req.FileURL,
		FileContentBase64: req.FileContent,
		Tags:              req.Tags,
	})
	if err != nil {
		status := mapIngestError(err)
		logger.Ctx(c).Error().
			Err(err).
			Int("status", status).
			Str("file_url", req.FileURL).
			Msg("简历摄取失败")
		ctx.JSON(status, utils.H{"status": "error", "message": err.Error()})
		return
	}

	doc := result.Document
	ctx.JSON(consts.StatusOK, IngestResponse{
		Status:              "success",
		FileURL:             req.FileURL,
		Tags:                req.Tags,
		ExtractedTextLength: result.TextLength,
		DocumentID:          doc.ID,
		AIProcessed:         doc.Metadata.AIProcessed,
		CandidateInfo: &types.CandidateInfo{
			PersonalInfo:    doc.PersonalInfo,
			TechnicalSkills: doc.TechnicalSkills,
			SoftSkills:      doc.SoftSkills,
			Experience:      doc.Experience,
			Certifications:  doc.Certifications,
		},
		Message: "简历摄取成功",
	})
}

// HandleGetResume 按文档ID查询简历文档
func (h *IngestHandler) HandleGetResume(c context.Context, ctx *app.RequestContext) {
	docID := ctx.Param("id")
	if docID == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"status": "error", "message": "缺少文档ID"})
		return
	}

	doc, err := h.storage.MySQL.GetResumeDocument(c, docID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(consts.StatusNotFound, utils.H{"status": "error", "message": "文档不存在"})
			return
		}
		logger.Ctx(c).Error().Err(err).Str("doc_id", docID).Msg("查询简历文档失败")
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"status": "error", "message": "文档存储不可用"})
		return
	}

	ctx.JSON(consts.StatusOK, doc)
}

// HandleSearchResumes 按关键词检索简历文档
// 匹配在写入时预展平的小写检索文本列
func (h *IngestHandler) HandleSearchResumes(c context.Context, ctx *app.RequestContext) {
	query := ctx.Query("q")
	if query == "" {
		ctx.JSON(consts.StatusBadRequest, utils.H{"status": "error", "message": "缺少查询参数q"})
		return
	}

	limit := 20
	if limitStr := ctx.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	docs, err := h.storage.MySQL.SearchResumeDocuments(c, query, limit)
	if err != nil {
		logger.Ctx(c).Error().Err(err).Str("query", query).Msg("检索简历文档失败")
		ctx.JSON(consts.StatusServiceUnavailable, utils.H{"status": "error", "message": "文档存储不可用"})
		return
	}

	ctx.JSON(consts.StatusOK, utils.H{
		"query":   query,
		"count":   len(docs),
		"results": docs,
	})
}

// mapIngestError 把管线错误分类映射为HTTP状态码
func mapIngestError(err error) int {
	switch {
	case errors.Is(err, processor.ErrInvalidPayload):
		return consts.StatusBadRequest
	case errors.Is(err, processor.ErrUnreadableDocument):
		return consts.StatusUnprocessableEntity
	case errors.Is(err, processor.ErrExtractionService):
		return consts.StatusBadGateway
	case errors.Is(err, processor.ErrStorageUnavailable):
		return consts.StatusServiceUnavailable
	default:
		return consts.StatusInternalServerError
	}
}
