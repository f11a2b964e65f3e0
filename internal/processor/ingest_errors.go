package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型，HTTP层按此分类映射状态码
var (
	ErrInvalidPayload     = errors.New("请求载荷无效")
	ErrUnreadableDocument = errors.New("PDF文档无法解析")
	ErrExtractionService  = errors.New("模型提取服务调用失败")
	ErrStorageUnavailable = errors.New("文档存储不可用")
)

// IngestError 包含详细错误信息的自定义错误
type IngestError struct {
	FileURL string
	Op      string
	BaseErr error
	Detail  string
}

func (e *IngestError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 文件:%s): %s", e.BaseErr, e.Op, e.FileURL, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 文件:%s)", e.BaseErr, e.Op, e.FileURL)
}

func (e *IngestError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *IngestError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewInvalidPayloadError(fileURL, detail string) error {
	return &IngestError{
		FileURL: fileURL,
		Op:      "decode",
		BaseErr: ErrInvalidPayload,
		Detail:  detail,
	}
}

func NewUnreadableDocumentError(fileURL, detail string) error {
	return &IngestError{
		FileURL: fileURL,
		Op:      "parse",
		BaseErr: ErrUnreadableDocument,
		Detail:  detail,
	}
}

func NewExtractionServiceError(fileURL, detail string) error {
	return &IngestError{
		FileURL: fileURL,
		Op:      "extract",
		BaseErr: ErrExtractionService,
		Detail:  detail,
	}
}

func NewStorageError(fileURL, detail string) error {
	return &IngestError{
		FileURL: fileURL,
		Op:      "store",
		BaseErr: ErrStorageUnavailable,
		Detail:  detail,
	}
}
