package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
)

// ActivityRepository 操作日志数据访问接口
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	List(ctx context.Context, offset, limit int) ([]model.Activity, int64, error)
}

type activityRepo struct {
	db *gorm.DB
}

func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepo) List(ctx context.Context, offset, limit int) ([]model.Activity, int64, error) {
	var activities []model.Activity
	var total int64

	if err := r.db.WithContext(ctx).Model(&model.Activity{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&activities).Error
	return activities, total, err
}
