package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"workguard/logic/analysis/risk"
	"workguard/storage/postgres"
	"workguard/types"
)

var (
	ErrNotFound       = errors.New("contract not found")
	ErrSearchDisabled = errors.New("finding search is not configured")
	ErrNotAnalyzed    = errors.New("only successful analyses can be saved")
)

const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

type ContractStore interface {
	Create(ctx context.Context, contract *postgres.ContractAnalysis) error
	GetByDocID(ctx context.Context, docID string) (*postgres.ContractAnalysis, error)
	List(ctx context.Context, limit int) ([]postgres.ContractAnalysis, error)
	Delete(ctx context.Context, docID string) (int64, error)
	DeleteBefore(ctx context.Context, before time.Time) ([]string, error)
}

type FindingIndex interface {
	Store(ctx context.Context, docID, fileName string, findings []types.RiskFinding) error
	DeleteByDocID(ctx context.Context, docIDs ...string) error
	Search(ctx context.Context, query, severity string, topK int) ([]types.FindingHit, error)
}

// ReportService 保存、查询和清理合同分析记录。findings 为 nil 时不建立检索索引。
type ReportService struct {
	store    ContractStore
	findings FindingIndex
	log      *zap.Logger
}

func NewReportService(store ContractStore, findings FindingIndex, log *zap.Logger) *ReportService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportService{store: store, findings: findings, log: log.Named("report")}
}

// Save 持久化分析结果并索引全部风险句；索引失败时回滚数据库记录
func (s *ReportService) Save(ctx context.Context, fileName string, result *types.AnalysisResult) (*types.ContractRecord, error) {
	if !result.OK() {
		return nil, ErrNotAnalyzed
	}

	// 生成全局唯一的 DocID
	docID := uuid.New().String()
	row, err := postgres.NewContractAnalysis(docID, fileName, result)
	if err != nil {
		return nil, err
	}
	if err := s.store.Create(ctx, row); err != nil {
		return nil, fmt.Errorf("save contract: %w", err)
	}

	if s.findings != nil {
		findings := make([]types.RiskFinding, 0, len(result.RiskySentences))
		for _, sentence := range result.RiskySentences {
			findings = append(findings, risk.Finding(sentence))
		}
		if err := s.findings.Store(ctx, docID, fileName, findings); err != nil {
			s.log.Warn("index findings failed, rolling back", zap.String("doc_id", docID), zap.Error(err))
			if _, delErr := s.store.Delete(ctx, docID); delErr != nil {
				s.log.Error("rollback failed", zap.String("doc_id", docID), zap.Error(delErr))
			}
			return nil, fmt.Errorf("index findings: %w", err)
		}
	}

	s.log.Info("contract saved",
		zap.String("doc_id", docID),
		zap.String("file", fileName),
		zap.String("risk_level", row.RiskLevel))
	return row.Record(false)
}

func (s *ReportService) Get(ctx context.Context, docID string) (*types.ContractRecord, error) {
	if _, err := uuid.Parse(docID); err != nil {
		return nil, ErrNotFound
	}
	row, err := s.store.GetByDocID(ctx, docID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return row.Record(true)
}

// List 最近上传的记录，不含分析详情
func (s *ReportService) List(ctx context.Context, limit int) ([]types.ContractRecord, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}
	rows, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := make([]types.ContractRecord, 0, len(rows))
	for i := range rows {
		rec, err := rows[i].Record(false)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

func (s *ReportService) Delete(ctx context.Context, docID string) error {
	if _, err := uuid.Parse(docID); err != nil {
		return ErrNotFound
	}
	n, err := s.store.Delete(ctx, docID)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	if s.findings != nil {
		if err := s.findings.DeleteByDocID(ctx, docID); err != nil {
			s.log.Warn("delete findings failed", zap.String("doc_id", docID), zap.Error(err))
		}
	}
	return nil
}

func (s *ReportService) Search(ctx context.Context, req types.SearchRequest) ([]types.FindingHit, error) {
	if s.findings == nil {
		return nil, ErrSearchDisabled
	}
	limit := req.Limit
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	return s.findings.Search(ctx, req.Query, req.Severity, limit)
}

// Purge 删除 before 之前上传的记录及其索引，返回删除条数
func (s *ReportService) Purge(ctx context.Context, before time.Time) (int, error) {
	ids, err := s.store.DeleteBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("purge contracts: %w", err)
	}
	if len(ids) > 0 && s.findings != nil {
		if err := s.findings.DeleteByDocID(ctx, ids...); err != nil {
			return len(ids), fmt.Errorf("purge findings: %w", err)
		}
	}
	return len(ids), nil
}
