package types

import "time"

// Sentence 分句结果，Index 为在原文中的顺序
type Sentence struct {
	Text  string `json:"text"`
	Index int    `json:"index"`
}

// Severity is the presented label of a risk finding.
type Severity string

const (
	SeverityCritical Severity = "Critical Risk"
	SeverityHigh     Severity = "High Risk"
	SeverityCaution  Severity = "Caution"
)

type RiskFinding struct {
	Severity    Severity `json:"type"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
}

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// AnalysisResult 合同分析结果，API 与 PDF 报告共用
type AnalysisResult struct {
	Status          string           `json:"status"`
	Summary         string           `json:"summary"`
	RiskLevel       string           `json:"risk_level"`
	RiskEmoji       string           `json:"risk_emoji"`
	Risks           []RiskFinding    `json:"risks"`
	RiskySentences  []string         `json:"risky_sentences"`
	DetectedClauses map[string]int   `json:"detected_clauses"`
	HeatmapData     []HeatmapDataset `json:"heatmap_data"`
	Warnings        []string         `json:"warnings,omitempty"`
	Error           string           `json:"error,omitempty"`
}

// Failed builds the error-tagged result returned across the analyze boundary.
func Failed(msg string) *AnalysisResult {
	return &AnalysisResult{Status: StatusError, Error: msg}
}

// OK reports whether the result is a complete analysis.
func (r *AnalysisResult) OK() bool {
	return r != nil && r.Status == StatusSuccess && r.Error == ""
}

// ContractRecord 持久化后返回给前端的合同分析记录
type ContractRecord struct {
	DocID      string          `json:"doc_id"`
	FileName   string          `json:"file_name"`
	RiskLevel  string          `json:"risk_level"`
	RiskScore  float64         `json:"risk_score"`
	UploadedAt time.Time       `json:"uploaded_at"`
	Analysis   *AnalysisResult `json:"analysis,omitempty"`
}

// FindingHit 风险条款检索结果
type FindingHit struct {
	DocID       string   `json:"doc_id"`
	FileName    string   `json:"file_name"`
	Severity    Severity `json:"type"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Score       float64  `json:"score"`
}

type SearchRequest struct {
	Query    string `json:"query" binding:"required"`
	Severity string `json:"severity,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}
