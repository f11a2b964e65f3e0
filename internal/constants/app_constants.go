package constants

const (
	// DefaultPartitionKey 文档集合的固定分区键值
	// 所有文档写入同一逻辑分区，每个文档拥有独立生成的标识符，写入互不竞争
	DefaultPartitionKey = "active"

	// UnknownFilename URL无法解析出文件名时使用的占位符
	UnknownFilename = "unknown.pdf"

	// PageSeparator PDF逐页文本拼接时使用的分隔符
	PageSeparator = "\n"
)

const (
	// ExtractionCacheKeyPrefix 提取结果缓存键前缀，后接提取文本的MD5
	ExtractionCacheKeyPrefix = "resume_ingest:extraction_cache:"
)
