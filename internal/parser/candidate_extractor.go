package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"regexp"
	"strings"
	"time"

	"resume-ingest-go/internal/types"

	"github.com/cloudwego/eino/components/model"
	einoschema "github.com/cloudwego/eino/schema"
)

// defaultExtractionPrompt 固定的系统指令，描述目标schema与输出格式
const defaultExtractionPrompt = `你是一个简历信息提取助手。请从用户提供的简历文本中提取结构化的候选人信息。

严格按照以下JSON结构输出，不要输出任何解释性文字，不要使用Markdown代码块：
{
  "personal_info": {"name": "姓名", "email": "邮箱", "location": "所在地"},
  "technical_skills": [{"skill": "技能名称", "proficiency": "熟练程度", "years": 使用年限数字}],
  "soft_skills": ["软技能"],
  "experience": {"total_years": 总工作年限数字, "current_role": "当前职位", "industries": ["所属行业"]},
  "certifications": ["证书名称"]
}

规则：
1. 文本中缺失的字段使用空字符串、0或空数组，不要省略键。
2. years和total_years必须是数字，不要带单位。
3. technical_skills按简历中出现的顺序排列。
4. 只输出JSON对象本身。`

// CandidateExtractor 使用LLM从简历文本中提取结构化候选人信息
type CandidateExtractor struct {
	// LLM模型接口
	llmModel model.ChatModel

	// 提示词模板
	promptTemplate string

	// 单次提取调用超时
	extractionTimeout time.Duration

	logger *log.Logger
}

// CandidateExtractorOption 提取器的配置选项
type CandidateExtractorOption func(*CandidateExtractor)

// WithCustomPromptTemplate 设置自定义提示词模板
func WithCustomPromptTemplate(template string) CandidateExtractorOption {
	return func(c *CandidateExtractor) {
		if template != "" {
			c.promptTemplate = template
		}
	}
}

// WithExtractionTimeout 设置单次提取调用超时
func WithExtractionTimeout(timeout time.Duration) CandidateExtractorOption {
	return func(c *CandidateExtractor) {
		if timeout > 0 {
			c.extractionTimeout = timeout
		}
	}
}

// NewCandidateExtractor 创建新的候选人信息提取器
func NewCandidateExtractor(llmModel model.ChatModel, logger *log.Logger, options ...CandidateExtractorOption) *CandidateExtractor {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	extractor := &CandidateExtractor{
		llmModel:          llmModel,
		promptTemplate:    defaultExtractionPrompt,
		extractionTimeout: 60 * time.Second,
		logger:            logger,
	}

	// 应用选项
	for _, opt := range options {
		opt(extractor)
	}

	return extractor
}

// ExtractCandidate 对简历文本执行一次结构化提取
// 模型调用失败（网络/认证/配额）时返回错误，由调用方映射为服务错误；
// 模型调用成功但输出无法解析时不返回错误，而是降级为默认空结构（AIProcessed=false）。
// 不在内部重试：重试策略属于外部协作方。
func (c *CandidateExtractor) ExtractCandidate(ctx context.Context, text string) (*types.ExtractionResult, error) {
	response, err := c.callLLM(ctx, c.promptTemplate, text)
	if err != nil {
		return nil, fmt.Errorf("LLM调用失败: %w", err)
	}

	return c.ParseCandidateResponse(response), nil
}

// callLLM 调用LLM处理提示词，单次同步调用
func (c *CandidateExtractor) callLLM(ctx context.Context, systemContent string, userContent string) (string, error) {
	// 创建消息列表，包含系统提示和用户提示
	messages := []*einoschema.Message{
		{Role: "system", Content: systemContent}, // 固定的提取指令
		{Role: "user", Content: userContent},     // 实际的简历文本
	}

	c.logger.Printf("[CandidateExtractor] User Prompt: %.50s...", userContent)

	// 创建带超时的上下文，继承上游的取消信号
	callCtx, cancel := context.WithTimeout(ctx, c.extractionTimeout)
	defer cancel()

	response, err := c.llmModel.Generate(callCtx, messages)
	if err != nil {
		c.logger.Printf("[CandidateExtractor] LLM call error: %v", err)
		return "", fmt.Errorf("LLM Generate failed: %w", err)
	}

	c.logger.Printf("[CandidateExtractor] LLM Response: %.50s", response.Content)
	return response.Content, nil
}

// ParseCandidateResponse 解析LLM响应为结构化候选人信息
// 防御性解析：任何解码失败都返回默认空结构并标记AIProcessed=false，
// 绝不让一次失败的提取丢掉整份简历的上传
func (c *CandidateExtractor) ParseCandidateResponse(response string) *types.ExtractionResult {
	// 提取JSON部分（防止LLM返回的不是纯JSON）
	jsonStr := extractJSON(response)
	if jsonStr == "" {
		// 记录原始响应以供调试
		c.logger.Printf("无法从LLM响应中提取有效的JSON。原始响应: %.200s", response)
		return types.NewFallbackExtractionResult(response)
	}

	// 解析JSON
	info := types.NewEmptyCandidateInfo()
	if err := json.Unmarshal([]byte(jsonStr), info); err != nil {
		c.logger.Printf("解析JSON失败: %v。JSON片段: %.200s", err, jsonStr)
		return types.NewFallbackExtractionResult(response)
	}

	// 切片字段保持非nil，保证序列化后为[]而不是null
	if info.TechnicalSkills == nil {
		info.TechnicalSkills = []types.TechnicalSkill{}
	}
	if info.SoftSkills == nil {
		info.SoftSkills = []string{}
	}
	if info.Experience.Industries == nil {
		info.Experience.Industries = []string{}
	}
	if info.Certifications == nil {
		info.Certifications = []string{}
	}

	return &types.ExtractionResult{
		Info:        info,
		AIProcessed: true,
		RawResponse: response,
	}
}

var (
	// ```json ... ``` 代码块
	fencedJSONRe = regexp.MustCompile("(?s)```json\\s*(\\{.*?\\})\\s*```")
	// 无语言标记的代码块
	fencedPlainRe = regexp.MustCompile("(?s)```\\s*(\\{.*?\\})\\s*```")
)

// extractJSON 从文本中提取JSON
func extractJSON(text string) string {
	// 裸JSON对象直接透传，不做任何切片
	// 字符串值里允许出现{和}，任何基于括号计数的扫描在这里都会截错位置
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return trimmed
	}

	// 尝试使用正则表达式提取 ```json ... ``` 代码块中的内容
	if matches := fencedJSONRe.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}
	if matches := fencedPlainRe.FindStringSubmatch(text); len(matches) > 1 {
		return strings.TrimSpace(matches[1])
	}

	// 回退：取第一个{到最后一个}的切片
	// 防御模型在指令之外添加的前后缀说明文字
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return ""
	}
	return strings.TrimSpace(text[start : end+1])
}
