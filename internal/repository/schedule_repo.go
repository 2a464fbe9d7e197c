package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	pkgerrors "github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/errors"
)

// ScheduleRepository 监考场次数据访问接口
//
// ClaimOpen 是并发认领的裁决点：条件更新只命中 invigilator_id IS NULL 的行，
// 同一场次的两个并发认领恰有一个成功，落败方收到 ErrSlotTaken。
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *model.Schedule) error
	GetByID(ctx context.Context, id string) (*model.Schedule, error)
	ListOpen(ctx context.Context, from time.Time) ([]model.Schedule, error)
	ListByInvigilator(ctx context.Context, invigilatorID string) ([]model.Schedule, error)
	List(ctx context.Context, offset, limit int) ([]model.Schedule, int64, error)
	Count(ctx context.Context) (int64, error)
	CountByDepartment(ctx context.Context, departmentID string) (int64, error)
	CountByInvigilator(ctx context.Context, invigilatorID string) (int64, error)
	ClaimOpen(ctx context.Context, scheduleID, invigilatorID string, updatedBy string) error
	SetInvigilator(ctx context.Context, scheduleID string, invigilatorID *string, expectedVersion int, updatedBy string) error
	SetNote(ctx context.Context, scheduleID, note string, updatedBy string) error
	TransferOwnership(ctx context.Context, fromInvigilatorID, toInvigilatorID string) (int64, error)
	Delete(ctx context.Context, id string, expectedVersion int) error
}

type scheduleRepo struct {
	db *gorm.DB
}

func NewScheduleRepo(db *gorm.DB) ScheduleRepository {
	return &scheduleRepo{db: db}
}

func (r *scheduleRepo) Create(ctx context.Context, schedule *model.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

func (r *scheduleRepo) GetByID(ctx context.Context, id string) (*model.Schedule, error) {
	var schedule model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("SubjectGroup").
		Preload("SubjectGroup.Subject").
		Preload("SubjectGroup.AdditionalProfessors").
		Preload("Invigilator").
		Where("schedule_id = ?", id).
		First(&schedule).Error
	if err != nil {
		return nil, err
	}
	return &schedule, nil
}

// ListOpen 列出所有未认领的未来场次
// 资格过滤（院系/通识课/任课教师/配额）在 Service 层完成
func (r *scheduleRepo) ListOpen(ctx context.Context, from time.Time) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("SubjectGroup").
		Preload("SubjectGroup.Subject").
		Preload("SubjectGroup.AdditionalProfessors").
		Where("invigilator_id IS NULL AND date >= ?", from).
		Order("date ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) ListByInvigilator(ctx context.Context, invigilatorID string) ([]model.Schedule, error) {
	var schedules []model.Schedule
	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("SubjectGroup").
		Preload("SubjectGroup.Subject").
		Where("invigilator_id = ?", invigilatorID).
		Order("date ASC, start_time ASC").
		Find(&schedules).Error
	return schedules, err
}

func (r *scheduleRepo) List(ctx context.Context, offset, limit int) ([]model.Schedule, int64, error) {
	var schedules []model.Schedule
	var total int64

	if err := r.db.WithContext(ctx).Model(&model.Schedule{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := r.db.WithContext(ctx).
		Preload("Room").
		Preload("SubjectGroup").
		Preload("SubjectGroup.Subject").
		Preload("Invigilator").
		Order("date ASC, start_time ASC").
		Offset(offset).Limit(limit).
		Find(&schedules).Error
	return schedules, total, err
}

func (r *scheduleRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Schedule{}).Count(&n).Error
	return n, err
}

// CountByDepartment 统计归属某院系的场次数（经教学班 → 课程 → 院系）
func (r *scheduleRepo) CountByDepartment(ctx context.Context, departmentID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Schedule{}).
		Joins("JOIN subject_groups ON subject_groups.subject_group_id = schedules.subject_group_id").
		Joins("JOIN subjects ON subjects.subject_id = subject_groups.subject_id").
		Where("subjects.department_id = ? AND schedules.deleted_at IS NULL", departmentID).
		Count(&n).Error
	return n, err
}

func (r *scheduleRepo) CountByInvigilator(ctx context.Context, invigilatorID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("invigilator_id = ?", invigilatorID).
		Count(&n).Error
	return n, err
}

// ClaimOpen 原子认领：
//   - 仅命中仍开放（invigilator_id IS NULL）的行，首个提交事务者胜出
//   - department_quota 减 1（下限 0）
//   - quota_filled 以减扣前的值判定（<= 1 即本次消耗掉最后一个名额）
//
// SET 表达式在 PostgreSQL 中按旧行取值，故 quota_filled 的判定天然是减扣前语义。
func (r *scheduleRepo) ClaimOpen(ctx context.Context, scheduleID, invigilatorID string, updatedBy string) error {
	result := r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("schedule_id = ? AND invigilator_id IS NULL", scheduleID).
		Updates(map[string]interface{}{
			"invigilator_id":   invigilatorID,
			"department_quota": gorm.Expr("GREATEST(department_quota - 1, 0)"),
			"quota_filled":     gorm.Expr("department_quota <= 1"),
			"updated_by":       updatedBy,
			"version":          gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrSlotTaken
	}
	return nil
}

// SetInvigilator 改写场次的监考人（改派/撤销专用，不动 department_quota）
// 带版本条件：快照读取后若场次已被并发修改，更新落空并返回 ErrOptimisticLock
func (r *scheduleRepo) SetInvigilator(ctx context.Context, scheduleID string, invigilatorID *string, expectedVersion int, updatedBy string) error {
	result := r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("schedule_id = ? AND version = ?", scheduleID, expectedVersion).
		Updates(map[string]interface{}{
			"invigilator_id": invigilatorID,
			"updated_by":     updatedBy,
			"version":        expectedVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}

// SetNote 写入场次批注（申诉批准后的备注）
func (r *scheduleRepo) SetNote(ctx context.Context, scheduleID, note string, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("schedule_id = ?", scheduleID).
		Updates(map[string]interface{}{
			"note":       note,
			"updated_by": updatedBy,
			"version":    gorm.Expr("version + 1"),
		}).Error
}

// TransferOwnership 批量转移场次归属（合并专用），返回转移行数
func (r *scheduleRepo) TransferOwnership(ctx context.Context, fromInvigilatorID, toInvigilatorID string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.Schedule{}).
		Where("invigilator_id = ?", fromInvigilatorID).
		Updates(map[string]interface{}{
			"invigilator_id": toInvigilatorID,
			"version":        gorm.Expr("version + 1"),
		})
	return result.RowsAffected, result.Error
}

// Delete 软删除场次，带版本条件：快照读取后被并发认领/改派则删除落空
func (r *scheduleRepo) Delete(ctx context.Context, id string, expectedVersion int) error {
	result := r.db.WithContext(ctx).
		Where("schedule_id = ? AND version = ?", id, expectedVersion).
		Delete(&model.Schedule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	return nil
}
