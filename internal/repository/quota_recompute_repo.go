package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
)

// QuotaRecomputeRepository 配额重算记录数据访问接口
type QuotaRecomputeRepository interface {
	Create(ctx context.Context, record *model.QuotaRecompute) error
	ListRecent(ctx context.Context, limit int) ([]model.QuotaRecompute, error)
}

type quotaRecomputeRepo struct {
	db *gorm.DB
}

func NewQuotaRecomputeRepo(db *gorm.DB) QuotaRecomputeRepository {
	return &quotaRecomputeRepo{db: db}
}

func (r *quotaRecomputeRepo) Create(ctx context.Context, record *model.QuotaRecompute) error {
	return r.db.WithContext(ctx).Create(record).Error
}

func (r *quotaRecomputeRepo) ListRecent(ctx context.Context, limit int) ([]model.QuotaRecompute, error) {
	var records []model.QuotaRecompute
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	return records, err
}
