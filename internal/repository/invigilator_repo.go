package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	pkgerrors "github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/errors"
)

// InvigilatorRepository 监考人员数据访问接口
//
// AdjustAssignedQuota 是 assigned_quota 的唯一写入口径（配额重算除外），
// 数据库侧用 GREATEST(... , 0) 保证不会减成负数。
type InvigilatorRepository interface {
	Create(ctx context.Context, inv *model.Invigilator) error
	GetByID(ctx context.Context, id string) (*model.Invigilator, error)
	GetByUserID(ctx context.Context, userID string) (*model.Invigilator, error)
	GetByProfessorID(ctx context.Context, professorID string) (*model.Invigilator, error)
	ListByType(ctx context.Context, invType string) ([]model.Invigilator, error)
	ListByDepartmentAndType(ctx context.Context, departmentID, invType string) ([]model.Invigilator, error)
	ListByDepartment(ctx context.Context, departmentID string) ([]model.Invigilator, error)
	ExistsByNameInDepartment(ctx context.Context, name, departmentID, invType string) (bool, error)
	AdjustAssignedQuota(ctx context.Context, id string, delta int) error
	SetQuota(ctx context.Context, id string, quota, assignedQuota int) error
	Delete(ctx context.Context, id string, expectedVersion int, deletedBy string) error
}

type invigilatorRepo struct {
	db *gorm.DB
}

func NewInvigilatorRepo(db *gorm.DB) InvigilatorRepository {
	return &invigilatorRepo{db: db}
}

func (r *invigilatorRepo) Create(ctx context.Context, inv *model.Invigilator) error {
	return r.db.WithContext(ctx).Create(inv).Error
}

func (r *invigilatorRepo) GetByID(ctx context.Context, id string) (*model.Invigilator, error) {
	var inv model.Invigilator
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("invigilator_id = ?", id).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invigilatorRepo) GetByUserID(ctx context.Context, userID string) (*model.Invigilator, error) {
	var inv model.Invigilator
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("user_id = ?", userID).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *invigilatorRepo) GetByProfessorID(ctx context.Context, professorID string) (*model.Invigilator, error) {
	var inv model.Invigilator
	err := r.db.WithContext(ctx).
		Where("professor_id = ?", professorID).
		First(&inv).Error
	if err != nil {
		return nil, err
	}
	return &inv, nil
}

// ListByType 按类型列出监考人员
// 固定按 created_at、invigilator_id 排序：配额余量逐个分配时的枚举顺序即这里的顺序
func (r *invigilatorRepo) ListByType(ctx context.Context, invType string) ([]model.Invigilator, error) {
	var invs []model.Invigilator
	err := r.db.WithContext(ctx).
		Where("type = ?", invType).
		Order("created_at ASC, invigilator_id ASC").
		Find(&invs).Error
	return invs, err
}

func (r *invigilatorRepo) ListByDepartmentAndType(ctx context.Context, departmentID, invType string) ([]model.Invigilator, error) {
	var invs []model.Invigilator
	err := r.db.WithContext(ctx).
		Where("department_id = ? AND type = ?", departmentID, invType).
		Order("created_at ASC, invigilator_id ASC").
		Find(&invs).Error
	return invs, err
}

func (r *invigilatorRepo) ListByDepartment(ctx context.Context, departmentID string) ([]model.Invigilator, error) {
	var invs []model.Invigilator
	err := r.db.WithContext(ctx).
		Where("department_id = ?", departmentID).
		Order("created_at ASC, invigilator_id ASC").
		Find(&invs).Error
	return invs, err
}

func (r *invigilatorRepo) ExistsByNameInDepartment(ctx context.Context, name, departmentID, invType string) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Invigilator{}).
		Where("LOWER(name) = LOWER(?) AND department_id = ? AND type = ?", name, departmentID, invType).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AdjustAssignedQuota 原子调整 assigned_quota（下限 0）
func (r *invigilatorRepo) AdjustAssignedQuota(ctx context.Context, id string, delta int) error {
	return r.db.WithContext(ctx).Model(&model.Invigilator{}).
		Where("invigilator_id = ?", id).
		Updates(map[string]interface{}{
			"assigned_quota": gorm.Expr("GREATEST(assigned_quota + ?, 0)", delta),
			"version":        gorm.Expr("version + 1"),
		}).Error
}

// SetQuota 配额重算专用：直接写入 quota 并重置 assigned_quota
func (r *invigilatorRepo) SetQuota(ctx context.Context, id string, quota, assignedQuota int) error {
	return r.db.WithContext(ctx).Model(&model.Invigilator{}).
		Where("invigilator_id = ?", id).
		Updates(map[string]interface{}{
			"quota":          quota,
			"assigned_quota": assignedQuota,
			"version":        gorm.Expr("version + 1"),
		}).Error
}

// Delete 软删除监考人员，带版本条件：
// 读取快照后若 assigned_quota 被并发认领改动（版本号随之 +1），删除落空并返回 ErrOptimisticLock
func (r *invigilatorRepo) Delete(ctx context.Context, id string, expectedVersion int, deletedBy string) error {
	result := r.db.WithContext(ctx).Model(&model.Invigilator{}).
		Where("invigilator_id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"version":    expectedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return r.db.WithContext(ctx).
		Where("invigilator_id = ?", id).
		Delete(&model.Invigilator{}).Error
}
