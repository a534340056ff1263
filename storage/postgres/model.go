package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"workguard/types"
)

// ContractAnalysis 对应数据库里的 contracts 表，一份上传合同一条记录
type ContractAnalysis struct {
	// DocID 不使用 gorm.Model 的自增 ID，而是手动指定的 UUID
	DocID     string  `gorm:"column:doc_id;primaryKey;type:uuid"`
	FileName  string  `gorm:"column:file_name;type:varchar(255);not null;index"`
	RiskLevel string  `gorm:"column:risk_level;type:varchar(20);index"`
	RiskScore float64 `gorm:"column:risk_score"` // 风险句数量
	// AnalysisData 完整的分析结果 JSON
	AnalysisData string `gorm:"column:analysis_data;type:text"`

	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
}

// TableName 强制指定表名
func (ContractAnalysis) TableName() string {
	return "contracts"
}

// NewContractAnalysis flattens a successful result into a row.
func NewContractAnalysis(docID, fileName string, result *types.AnalysisResult) (*ContractAnalysis, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode analysis: %w", err)
	}
	return &ContractAnalysis{
		DocID:        docID,
		FileName:     fileName,
		RiskLevel:    result.RiskLevel,
		RiskScore:    float64(len(result.RiskySentences)),
		AnalysisData: string(data),
	}, nil
}

// Record converts the row back; the stored analysis is decoded only when
// withAnalysis is set.
func (c *ContractAnalysis) Record(withAnalysis bool) (*types.ContractRecord, error) {
	rec := &types.ContractRecord{
		DocID:      c.DocID,
		FileName:   c.FileName,
		RiskLevel:  c.RiskLevel,
		RiskScore:  c.RiskScore,
		UploadedAt: c.CreatedAt,
	}
	if withAnalysis && c.AnalysisData != "" {
		var result types.AnalysisResult
		if err := json.Unmarshal([]byte(c.AnalysisData), &result); err != nil {
			return nil, fmt.Errorf("decode analysis %s: %w", c.DocID, err)
		}
		rec.Analysis = &result
	}
	return rec, nil
}
