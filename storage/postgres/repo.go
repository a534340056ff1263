package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// ContractRepo 封装对 contracts 表的所有操作
type ContractRepo struct {
	db *gorm.DB
}

// NewContractRepo 构造函数
func NewContractRepo(db *gorm.DB) *ContractRepo {
	return &ContractRepo{db: db}
}

// Create 创建新合同分析记录
func (r *ContractRepo) Create(ctx context.Context, contract *ContractAnalysis) error {
	// WithContext 允许你在超时的时候取消数据库操作
	return r.db.WithContext(ctx).Create(contract).Error
}

// GetByDocID 根据 UUID 查询分析详情，不存在时返回 gorm.ErrRecordNotFound
func (r *ContractRepo) GetByDocID(ctx context.Context, docID string) (*ContractAnalysis, error) {
	var contract ContractAnalysis
	err := r.db.WithContext(ctx).
		Where("doc_id = ?", docID).
		First(&contract).Error
	if err != nil {
		return nil, err
	}
	return &contract, nil
}

// List 按上传时间倒序列出记录，不加载分析 JSON
func (r *ContractRepo) List(ctx context.Context, limit int) ([]ContractAnalysis, error) {
	var results []ContractAnalysis
	err := r.db.WithContext(ctx).
		Omit("analysis_data").
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error
	return results, err
}

// Delete 返回实际删除的行数，0 表示记录不存在
func (r *ContractRepo) Delete(ctx context.Context, id string) (int64, error) {
	result := r.db.WithContext(ctx).Where("doc_id = ?", id).Delete(&ContractAnalysis{})
	return result.RowsAffected, result.Error
}

// DeleteBefore 定时任务用，删除 before 之前上传的记录并返回其 DocID
func (r *ContractRepo) DeleteBefore(ctx context.Context, before time.Time) ([]string, error) {
	var ids []string
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ContractAnalysis{}).
			Where("created_at < ?", before).
			Pluck("doc_id", &ids).Error; err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		return tx.Where("doc_id IN ?", ids).Delete(&ContractAnalysis{}).Error
	})
	if err != nil {
		return nil, err
	}
	return ids, nil
}
