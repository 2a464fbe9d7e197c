package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
)

// SubjectRepository 课程数据访问接口
type SubjectRepository interface {
	Create(ctx context.Context, subject *model.Subject) error
	GetByID(ctx context.Context, id string) (*model.Subject, error)
	GetByCode(ctx context.Context, code string) (*model.Subject, error)
	List(ctx context.Context) ([]model.Subject, error)
}

// SubjectGroupRepository 教学班数据访问接口
type SubjectGroupRepository interface {
	Create(ctx context.Context, group *model.SubjectGroup) error
	GetByID(ctx context.Context, id string) (*model.SubjectGroup, error)
	ListBySubject(ctx context.Context, subjectID string) ([]model.SubjectGroup, error)
}

type subjectRepo struct {
	db *gorm.DB
}

func NewSubjectRepo(db *gorm.DB) SubjectRepository {
	return &subjectRepo{db: db}
}

func (r *subjectRepo) Create(ctx context.Context, subject *model.Subject) error {
	return r.db.WithContext(ctx).Create(subject).Error
}

func (r *subjectRepo) GetByID(ctx context.Context, id string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).
		Preload("Department").
		Where("subject_id = ?", id).
		First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) GetByCode(ctx context.Context, code string) (*model.Subject, error) {
	var subject model.Subject
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&subject).Error
	if err != nil {
		return nil, err
	}
	return &subject, nil
}

func (r *subjectRepo) List(ctx context.Context) ([]model.Subject, error) {
	var subjects []model.Subject
	err := r.db.WithContext(ctx).
		Preload("Department").
		Order("code ASC").
		Find(&subjects).Error
	return subjects, err
}

type subjectGroupRepo struct {
	db *gorm.DB
}

func NewSubjectGroupRepo(db *gorm.DB) SubjectGroupRepository {
	return &subjectGroupRepo{db: db}
}

func (r *subjectGroupRepo) Create(ctx context.Context, group *model.SubjectGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// GetByID 取教学班及其完整授课信息（主讲 + 协讲），供任课教师资格判定使用
func (r *subjectGroupRepo) GetByID(ctx context.Context, id string) (*model.SubjectGroup, error) {
	var group model.SubjectGroup
	err := r.db.WithContext(ctx).
		Preload("Subject").
		Preload("Subject.Department").
		Preload("Professor").
		Preload("AdditionalProfessors").
		Where("subject_group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *subjectGroupRepo) ListBySubject(ctx context.Context, subjectID string) ([]model.SubjectGroup, error) {
	var groups []model.SubjectGroup
	err := r.db.WithContext(ctx).
		Preload("Professor").
		Preload("AdditionalProfessors").
		Where("subject_id = ?", subjectID).
		Order("group_number ASC").
		Find(&groups).Error
	return groups, err
}
