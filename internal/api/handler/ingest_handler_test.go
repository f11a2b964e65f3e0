package handler

import (
	"fmt"
	"testing"

	"resume-ingest-go/internal/processor"

	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/stretchr/testify/assert"
)

// TestMapIngestError 验证管线错误到HTTP状态码的映射
func TestMapIngestError(t *testing.T) {
	assert.Equal(t, consts.StatusBadRequest, mapIngestError(processor.NewInvalidPayloadError("", "空内容")))
	assert.Equal(t, consts.StatusUnprocessableEntity, mapIngestError(processor.NewUnreadableDocumentError("a.pdf", "加密文档")))
	assert.Equal(t, consts.StatusBadGateway, mapIngestError(processor.NewExtractionServiceError("a.pdf", "超时")))
	assert.Equal(t, consts.StatusServiceUnavailable, mapIngestError(processor.NewStorageError("a.pdf", "连接拒绝")))
	assert.Equal(t, consts.StatusInternalServerError, mapIngestError(fmt.Errorf("未分类错误")))
}
