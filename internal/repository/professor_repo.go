package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
)

// ProfessorRepository 教师数据访问接口
type ProfessorRepository interface {
	Create(ctx context.Context, prof *model.Professor) error
	GetByID(ctx context.Context, id string) (*model.Professor, error)
	List(ctx context.Context) ([]model.Professor, error)
	Count(ctx context.Context) (int64, error)
	CountByDepartment(ctx context.Context, departmentID string) (int64, error)
}

type professorRepo struct {
	db *gorm.DB
}

func NewProfessorRepo(db *gorm.DB) ProfessorRepository {
	return &professorRepo{db: db}
}

func (r *professorRepo) Create(ctx context.Context, prof *model.Professor) error {
	return r.db.WithContext(ctx).Create(prof).Error
}

func (r *professorRepo) GetByID(ctx context.Context, id string) (*model.Professor, error) {
	var prof model.Professor
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("professor_id = ?", id).
		First(&prof).Error
	if err != nil {
		return nil, err
	}
	return &prof, nil
}

func (r *professorRepo) List(ctx context.Context) ([]model.Professor, error) {
	var profs []model.Professor
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("name ASC").
		Find(&profs).Error
	return profs, err
}

func (r *professorRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Professor{}).Count(&n).Error
	return n, err
}

func (r *professorRepo) CountByDepartment(ctx context.Context, departmentID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Professor{}).
		Where("department_id = ?", departmentID).
		Count(&n).Error
	return n, err
}
