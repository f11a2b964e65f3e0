package parser

import (
	"context"
	"fmt"
	"io"
	"log"
	"testing"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试用LLM模型模拟器
type MockLLMModel struct {
	// 模拟响应
	mockResponse string
	// 用于测试的错误
	Err error
	// 用于测试的调用次数
	CallCount int
}

// Generate 实现model.ChatModel接口
func (m *MockLLMModel) Generate(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.Message, error) {
	m.CallCount++
	if m.Err != nil {
		return nil, m.Err
	}
	return &schema.Message{
		Role:    "assistant",
		Content: m.mockResponse,
	}, nil
}

// Stream 实现model.ChatModel接口
func (m *MockLLMModel) Stream(ctx context.Context, messages []*schema.Message, options ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	// 测试中不需要流式响应
	return nil, nil
}

// BindTools 实现model.ChatModel接口
func (m *MockLLMModel) BindTools(tools []*schema.ToolInfo) error {
	return nil
}

const validCandidateJSON = `{
	"personal_info": {"name": "张三", "email": "zhangsan@example.com", "location": "北京"},
	"technical_skills": [
		{"skill": "Go", "proficiency": "精通", "years": 5},
		{"skill": "Python", "proficiency": "熟练", "years": 3}
	],
	"soft_skills": ["沟通能力", "团队协作"],
	"experience": {"total_years": 6, "current_role": "后端开发工程师", "industries": ["互联网"]},
	"certifications": ["PMP"]
}`

func newTestExtractor(mock *MockLLMModel) *CandidateExtractor {
	return NewCandidateExtractor(mock, log.New(io.Discard, "", 0))
}

// TestExtractCandidateWithPlainJSON 验证模型直接输出纯JSON时能正确解析
func TestExtractCandidateWithPlainJSON(t *testing.T) {
	mockLLM := &MockLLMModel{mockResponse: validCandidateJSON}
	extractor := newTestExtractor(mockLLM)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := extractor.ExtractCandidate(ctx, "张三的简历文本")
	require.NoError(t, err, "合法JSON响应不应返回错误")
	require.NotNil(t, result)

	assert.True(t, result.AIProcessed, "解析成功时应标记AIProcessed")
	assert.Equal(t, "张三", result.Info.PersonalInfo.Name)
	assert.Equal(t, "zhangsan@example.com", result.Info.PersonalInfo.Email)
	require.Len(t, result.Info.TechnicalSkills, 2)
	assert.Equal(t, "Go", result.Info.TechnicalSkills[0].Skill)
	assert.Equal(t, float64(5), result.Info.TechnicalSkills[0].Years)
	assert.Equal(t, float64(6), result.Info.Experience.TotalYears)
	assert.Equal(t, 1, mockLLM.CallCount)
}

// TestExtractCandidateWithFencedJSON 验证模型输出带Markdown代码块和说明文字时仍能提取JSON
func TestExtractCandidateWithFencedJSON(t *testing.T) {
	mockLLM := &MockLLMModel{
		mockResponse: "好的，以下是提取结果：\n```json\n" + validCandidateJSON + "\n```\n希望对你有帮助。",
	}
	extractor := newTestExtractor(mockLLM)

	result, err := extractor.ExtractCandidate(context.Background(), "张三的简历文本")
	require.NoError(t, err)

	assert.True(t, result.AIProcessed)
	assert.Equal(t, "张三", result.Info.PersonalInfo.Name)
}

// TestExtractCandidateWithSurroundingProse 验证无代码块但有前后缀文字时的括号扫描回退
func TestExtractCandidateWithSurroundingProse(t *testing.T) {
	mockLLM := &MockLLMModel{
		mockResponse: "提取结果如下 " + validCandidateJSON + " 以上。",
	}
	extractor := newTestExtractor(mockLLM)

	result, err := extractor.ExtractCandidate(context.Background(), "张三的简历文本")
	require.NoError(t, err)

	assert.True(t, result.AIProcessed)
	assert.Equal(t, "后端开发工程师", result.Info.Experience.CurrentRole)
}

// TestExtractCandidateBareJSONWithBracesInStrings 验证字符串值含大括号的裸JSON原样透传
// 裸JSON透传不允许任何切片：字符串里的{}不是结构字符
func TestExtractCandidateBareJSONWithBracesInStrings(t *testing.T) {
	response := `{"personal_info": {"name": "Jo}hn", "email": "", "location": "a{b}c"}, "soft_skills": ["{沟通}"]}`
	extractor := newTestExtractor(&MockLLMModel{mockResponse: response})

	result := extractor.ParseCandidateResponse(response)
	require.True(t, result.AIProcessed, "裸合法JSON必须解析成功，不能被括号截断")

	assert.Equal(t, "Jo}hn", result.Info.PersonalInfo.Name)
	assert.Equal(t, "a{b}c", result.Info.PersonalInfo.Location)
	require.Len(t, result.Info.SoftSkills, 1)
	assert.Equal(t, "{沟通}", result.Info.SoftSkills[0])
}

// TestExtractCandidateFallbackOnGarbage 验证完全无法解析的响应降级为默认空结构而不是报错
func TestExtractCandidateFallbackOnGarbage(t *testing.T) {
	mockLLM := &MockLLMModel{mockResponse: "抱歉，我无法处理这份简历。"}
	extractor := newTestExtractor(mockLLM)

	result, err := extractor.ExtractCandidate(context.Background(), "一些文本")
	require.NoError(t, err, "解析失败不应返回错误，而是降级")
	require.NotNil(t, result)

	assert.False(t, result.AIProcessed, "降级结果应标记AIProcessed=false")
	assert.Equal(t, "", result.Info.PersonalInfo.Name)
	assert.NotNil(t, result.Info.TechnicalSkills, "切片字段应为空切片而非nil")
	assert.Empty(t, result.Info.TechnicalSkills)
	assert.Equal(t, "抱歉，我无法处理这份简历。", result.RawResponse, "降级时应保留原始响应")
}

// TestExtractCandidateFallbackOnUnbalancedBraces 验证括号不平衡的输出按降级处理
func TestExtractCandidateFallbackOnUnbalancedBraces(t *testing.T) {
	mockLLM := &MockLLMModel{mockResponse: `{"personal_info": {"name": "张三"`}
	extractor := newTestExtractor(mockLLM)

	result, err := extractor.ExtractCandidate(context.Background(), "一些文本")
	require.NoError(t, err)
	assert.False(t, result.AIProcessed)
}

// TestExtractCandidateServiceError 验证模型调用失败时错误向上传播
func TestExtractCandidateServiceError(t *testing.T) {
	mockLLM := &MockLLMModel{Err: fmt.Errorf("connection refused")}
	extractor := newTestExtractor(mockLLM)

	result, err := extractor.ExtractCandidate(context.Background(), "一些文本")
	require.Error(t, err, "服务级失败必须返回错误而不是降级")
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "connection refused")
}

// TestParseCandidateResponsePartialFields 验证缺失字段使用零值填充
func TestParseCandidateResponsePartialFields(t *testing.T) {
	extractor := newTestExtractor(&MockLLMModel{})

	result := extractor.ParseCandidateResponse(`{"personal_info": {"name": "李四"}}`)
	require.True(t, result.AIProcessed)

	assert.Equal(t, "李四", result.Info.PersonalInfo.Name)
	assert.Equal(t, "", result.Info.PersonalInfo.Email)
	assert.NotNil(t, result.Info.SoftSkills)
	assert.NotNil(t, result.Info.Certifications)
	assert.NotNil(t, result.Info.Experience.Industries)
	assert.Equal(t, float64(0), result.Info.Experience.TotalYears)
}

// TestExtractJSON 验证JSON提取的各种边界输入
func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, extractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, extractJSON("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":{"b":2}}`, extractJSON(`前缀 {"a":{"b":2}} 后缀`))
	assert.Equal(t, "", extractJSON("没有任何JSON"))
	assert.Equal(t, "", extractJSON(`{"未闭合": {`))

	// 裸JSON原样返回，字符串值里的大括号不影响边界
	bareWithBraces := `{"name": "Jo}hn", "note": "{x}"}`
	assert.Equal(t, bareWithBraces, extractJSON(bareWithBraces))
}
