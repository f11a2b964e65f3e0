package types

// PersonalInfo 候选人基本信息，所有字段均为可选，缺失时保持空字符串
type PersonalInfo struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Location string `json:"location"`
}

// TechnicalSkill 技术技能条目
type TechnicalSkill struct {
	Skill       string  `json:"skill"`
	Proficiency string  `json:"proficiency"`
	Years       float64 `json:"years"`
}

// Experience 工作经验信息
type Experience struct {
	TotalYears  float64  `json:"total_years"`
	CurrentRole string   `json:"current_role"`
	Industries  []string `json:"industries"`
}

// CandidateInfo LLM从简历文本中提取的结构化候选人信息
// 约定：该结构永远不会缺失，只会稀疏——模型未返回的字段保持零值
type CandidateInfo struct {
	PersonalInfo    PersonalInfo     `json:"personal_info"`
	TechnicalSkills []TechnicalSkill `json:"technical_skills"`
	SoftSkills      []string         `json:"soft_skills"`
	Experience      Experience       `json:"experience"`
	Certifications  []string         `json:"certifications"`
}

// NewEmptyCandidateInfo 返回一个全空的CandidateInfo
// 切片字段初始化为空切片而非nil，保证序列化后为[]而不是null
func NewEmptyCandidateInfo() *CandidateInfo {
	return &CandidateInfo{
		TechnicalSkills: []TechnicalSkill{},
		SoftSkills:      []string{},
		Experience: Experience{
			Industries: []string{},
		},
		Certifications: []string{},
	}
}

// ExtractionResult 结构化提取的显式结果类型
// AIProcessed标志由类型系统保证被正确设置：解析成功为true，
// 任何解码失败都会降级为默认空结构并置为false，而不是向上抛错
type ExtractionResult struct {
	Info *CandidateInfo
	// AIProcessed 模型输出是否被成功解析为结构化数据
	AIProcessed bool
	// RawResponse 模型的原始文本响应，供诊断日志使用
	RawResponse string
}

// NewFallbackExtractionResult 构造解析失败时的兜底结果
func NewFallbackExtractionResult(rawResponse string) *ExtractionResult {
	return &ExtractionResult{
		Info:        NewEmptyCandidateInfo(),
		AIProcessed: false,
		RawResponse: rawResponse,
	}
}
