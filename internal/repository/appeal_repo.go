package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	pkgerrors "github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/errors"
)

// AppealRepository 申诉数据访问接口
type AppealRepository interface {
	Create(ctx context.Context, appeal *model.Appeal) error
	GetByID(ctx context.Context, id string) (*model.Appeal, error)
	ListByUser(ctx context.Context, userID string) ([]model.Appeal, error)
	List(ctx context.Context, status string, offset, limit int) ([]model.Appeal, int64, error)
	DecidePending(ctx context.Context, id, status string, adminResponse *string, decidedBy string) error
	MarkRead(ctx context.Context, id string) error
}

type appealRepo struct {
	db *gorm.DB
}

func NewAppealRepo(db *gorm.DB) AppealRepository {
	return &appealRepo{db: db}
}

func (r *appealRepo) Create(ctx context.Context, appeal *model.Appeal) error {
	return r.db.WithContext(ctx).Create(appeal).Error
}

func (r *appealRepo) GetByID(ctx context.Context, id string) (*model.Appeal, error) {
	var appeal model.Appeal
	err := r.db.WithContext(ctx).
		Preload("Schedule").
		Preload("Schedule.Room").
		Preload("Schedule.SubjectGroup").
		Preload("Schedule.SubjectGroup.Subject").
		Preload("User").
		Where("appeal_id = ?", id).
		First(&appeal).Error
	if err != nil {
		return nil, err
	}
	return &appeal, nil
}

func (r *appealRepo) ListByUser(ctx context.Context, userID string) ([]model.Appeal, error) {
	var appeals []model.Appeal
	err := r.db.WithContext(ctx).
		Preload("Schedule").
		Preload("Schedule.Room").
		Preload("Schedule.SubjectGroup").
		Preload("Schedule.SubjectGroup.Subject").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&appeals).Error
	return appeals, err
}

func (r *appealRepo) List(ctx context.Context, status string, offset, limit int) ([]model.Appeal, int64, error) {
	var appeals []model.Appeal
	var total int64

	query := r.db.WithContext(ctx).Model(&model.Appeal{})
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Preload("Schedule").
		Preload("Schedule.Room").
		Preload("Schedule.SubjectGroup").
		Preload("Schedule.SubjectGroup.Subject").
		Preload("User").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&appeals).Error
	return appeals, total, err
}

// DecidePending 对 PENDING 状态的申诉落终态
// 条件更新保证终态不可二次改写：已决的申诉 RowsAffected 为 0，返回 ErrAppealDecided
func (r *appealRepo) DecidePending(ctx context.Context, id, status string, adminResponse *string, decidedBy string) error {
	result := r.db.WithContext(ctx).Model(&model.Appeal{}).
		Where("appeal_id = ? AND status = ?", id, model.AppealStatusPending).
		Updates(map[string]interface{}{
			"status":         status,
			"admin_response": adminResponse,
			"updated_by":     decidedBy,
			"version":        gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrAppealDecided
	}
	return nil
}

func (r *appealRepo) MarkRead(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&model.Appeal{}).
		Where("appeal_id = ?", id).
		Update("is_read", true).Error
}
