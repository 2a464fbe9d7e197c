package repository

import (
	"context"

	"gorm.io/gorm"
)

// TxManager 事务管理接口
// fn 收到的是绑定在同一事务上的 Repository 聚合；fn 返回错误即整体回滚。
// 台账（认领/改派/合并）与操作日志必须经由它保证同事务提交。
type TxManager interface {
	Transaction(ctx context.Context, fn func(tx *Repository) error) error
}

// Repository 所有 Repository 的聚合入口
type Repository struct {
	Tx             TxManager
	User           UserRepository
	Department     DepartmentRepository
	Professor      ProfessorRepository
	Invigilator    InvigilatorRepository
	Room           RoomRepository
	Subject        SubjectRepository
	SubjectGroup   SubjectGroupRepository
	Schedule       ScheduleRepository
	Appeal         AppealRepository
	Activity       ActivityRepository
	QuotaRecompute QuotaRecomputeRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		Tx:             &gormTxManager{db: db},
		User:           NewUserRepo(db),
		Department:     NewDepartmentRepo(db),
		Professor:      NewProfessorRepo(db),
		Invigilator:    NewInvigilatorRepo(db),
		Room:           NewRoomRepo(db),
		Subject:        NewSubjectRepo(db),
		SubjectGroup:   NewSubjectGroupRepo(db),
		Schedule:       NewScheduleRepo(db),
		Appeal:         NewAppealRepo(db),
		Activity:       NewActivityRepo(db),
		QuotaRecompute: NewQuotaRecomputeRepo(db),
	}
}

// ── GORM 事务实现 ──

type gormTxManager struct {
	db *gorm.DB
}

func (m *gormTxManager) Transaction(ctx context.Context, fn func(tx *Repository) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}
