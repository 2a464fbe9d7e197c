package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/config"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/repository"
	pkgerrors "github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/errors"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/realtime"
)

// ── 台账模块业务错误 ──

var (
	ErrScheduleNotFound    = errors.New("监考场次不存在")
	ErrInvigilatorNotFound = errors.New("监考人员不存在")
	ErrProfessorNotFound   = errors.New("教师不存在")
	ErrNoInvigilatorRecord = errors.New("当前用户没有关联的监考人员档案")
	ErrRoomNotFound        = errors.New("考场不存在")
	ErrSubjectGroupMissing = errors.New("教学班不存在")
)

// professorIDPrefix 指派请求中引用尚未建档教师的前缀标记
const professorIDPrefix = "prof_"

// AssignmentService 监考台账业务接口
//
// 所有改变"谁监考哪一场"的操作都走这里，并满足：
//   - 场次归属与 assigned_quota 在同一事务内变更
//   - 归属改写带版本条件，快照过期的改派/撤销/删除返回 ErrOptimisticLock
//   - 同一事务内写入一条操作日志
//   - 提交成功后发布实时事件（fire-and-forget）
type AssignmentService interface {
	// CreateSchedule 新增监考场次（管理员）
	CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	// GetSchedule 场次详情
	GetSchedule(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	// ListSchedules 全部场次（分页，管理员）
	ListSchedules(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error)
	// ListAvailable 当前用户可认领的开放场次（同日同时段去重）
	ListAvailable(ctx context.Context, userID string) ([]dto.AvailableScheduleResponse, error)
	// MySchedule 当前用户已认领的场次
	MySchedule(ctx context.Context, userID string) ([]dto.ScheduleResponse, error)
	// Claim 自助认领：资格校验 + 原子抢占，首个提交者胜出
	Claim(ctx context.Context, scheduleID, userID string) (*dto.ScheduleResponse, error)
	// Assign 管理员指派/改派；invigilatorID 支持 prof_ 前缀按需建档
	Assign(ctx context.Context, scheduleID string, req *dto.AssignScheduleRequest, callerID string) (*dto.ScheduleResponse, error)
	// Unassign 撤销指派，场次回到开放状态
	Unassign(ctx context.Context, scheduleID, callerID string) error
	// BulkAssign 批量指派，逐条执行并汇总结果
	BulkAssign(ctx context.Context, req *dto.BulkAssignRequest, callerID string) (*dto.BulkAssignResponse, error)
	// DeleteSchedule 删除场次；已被认领时同步回退认领人的已分配配额
	DeleteSchedule(ctx context.Context, scheduleID, callerID string) error
}

type assignmentService struct {
	cfg       *config.Config
	repo      *repository.Repository
	publisher realtime.Publisher
	logger    *zap.Logger
}

// NewAssignmentService 创建 AssignmentService 实例
func NewAssignmentService(
	cfg *config.Config,
	repo *repository.Repository,
	publisher realtime.Publisher,
	logger *zap.Logger,
) AssignmentService {
	return &assignmentService{
		cfg:       cfg,
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// ════════════════════════════════════════════════════════════
// 场次 CRUD
// ════════════════════════════════════════════════════════════

func (s *assignmentService) CreateSchedule(ctx context.Context, req *dto.CreateScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	if _, err := s.repo.Room.GetByID(ctx, req.RoomID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRoomNotFound
		}
		s.logger.Error("查询考场失败", zap.Error(err))
		return nil, err
	}

	group, err := s.repo.SubjectGroup.GetByID(ctx, req.SubjectGroupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSubjectGroupMissing
		}
		s.logger.Error("查询教学班失败", zap.Error(err))
		return nil, err
	}

	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, fmt.Errorf("日期格式错误: %w", err)
	}
	startTime, err := parseClock(date, req.StartTime)
	if err != nil {
		return nil, fmt.Errorf("开始时间格式错误: %w", err)
	}
	endTime, err := parseClock(date, req.EndTime)
	if err != nil {
		return nil, fmt.Errorf("结束时间格式错误: %w", err)
	}

	schedule := &model.Schedule{
		Date:            date,
		StartTime:       startTime,
		EndTime:         endTime,
		TimeOption:      req.TimeOption,
		RoomID:          req.RoomID,
		SubjectGroupID:  req.SubjectGroupID,
		DepartmentQuota: req.DepartmentQuota,
		QuotaFilled:     req.DepartmentQuota <= 0,
		Priority:        req.Priority,
	}
	// 通识课标记来自课程，建场时冗余一份快照
	if group.Subject != nil {
		schedule.IsGenEd = group.Subject.IsGenEd
	}
	schedule.CreatedBy = &callerID

	if err := s.repo.Schedule.Create(ctx, schedule); err != nil {
		s.logger.Error("创建场次失败", zap.Error(err))
		return nil, err
	}

	return s.GetSchedule(ctx, schedule.ScheduleID)
}

func (s *assignmentService) GetSchedule(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询场次失败", zap.Error(err))
		return nil, err
	}
	resp := toScheduleResponse(schedule)
	return &resp, nil
}

func (s *assignmentService) ListSchedules(ctx context.Context, req *dto.ScheduleListRequest) ([]dto.ScheduleResponse, int64, error) {
	schedules, total, err := s.repo.Schedule.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询场次列表失败", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		out = append(out, toScheduleResponse(&schedules[i]))
	}
	return out, total, nil
}

// ════════════════════════════════════════════════════════════
// 可认领列表 / 我的监考
// ════════════════════════════════════════════════════════════

func (s *assignmentService) ListAvailable(ctx context.Context, userID string) ([]dto.AvailableScheduleResponse, error) {
	inv, err := s.invigilatorByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.repo.Schedule.ListOpen(ctx, startOfDay(time.Now()))
	if err != nil {
		s.logger.Error("查询开放场次失败", zap.Error(err))
		return nil, err
	}

	// 同日同时段只展示一条，SameSlotCount 记录折叠数量
	type bucket struct {
		first *model.Schedule
		count int
	}
	order := make([]string, 0)
	buckets := make(map[string]*bucket)
	for i := range schedules {
		sched := &schedules[i]
		if !evaluateClaim(inv, sched, sched.SubjectGroup).eligible {
			continue
		}
		key := sched.TimeSlotKey()
		if b, ok := buckets[key]; ok {
			b.count++
			continue
		}
		buckets[key] = &bucket{first: sched, count: 1}
		order = append(order, key)
	}

	out := make([]dto.AvailableScheduleResponse, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		out = append(out, dto.AvailableScheduleResponse{
			ScheduleResponse: toScheduleResponse(b.first),
			SameSlotCount:    b.count,
		})
	}
	return out, nil
}

func (s *assignmentService) MySchedule(ctx context.Context, userID string) ([]dto.ScheduleResponse, error) {
	inv, err := s.invigilatorByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	schedules, err := s.repo.Schedule.ListByInvigilator(ctx, inv.InvigilatorID)
	if err != nil {
		s.logger.Error("查询我的监考失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		out = append(out, toScheduleResponse(&schedules[i]))
	}
	return out, nil
}

// ════════════════════════════════════════════════════════════
// Claim — 自助认领
// ════════════════════════════════════════════════════════════

func (s *assignmentService) Claim(ctx context.Context, scheduleID, userID string) (*dto.ScheduleResponse, error) {
	inv, err := s.invigilatorByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询场次失败", zap.Error(err))
		return nil, err
	}

	// 资格预检（事务外）；真正的并发裁决在 ClaimOpen 的条件更新上
	if !evaluateClaim(inv, schedule, schedule.SubjectGroup).eligible {
		return nil, claimError(inv, schedule, schedule.SubjectGroup)
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Schedule.ClaimOpen(ctx, scheduleID, inv.InvigilatorID, userID); err != nil {
			return err
		}
		if err := tx.Invigilator.AdjustAssignedQuota(ctx, inv.InvigilatorID, 1); err != nil {
			return err
		}
		return tx.Activity.Create(ctx, &model.Activity{
			Type:        model.ActivityUpdate,
			Description: fmt.Sprintf("%s 认领了 %s 的监考场次", inv.Name, schedule.Date.Format("2006-01-02")),
			UserID:      &userID,
		})
	})
	if err != nil {
		if errors.Is(err, pkgerrors.ErrSlotTaken) {
			return nil, err
		}
		s.logger.Error("认领场次失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	s.publisher.Publish(ctx, realtime.RoomAdmin, realtime.EventScheduleAssigned, map[string]string{
		"schedule_id":    scheduleID,
		"invigilator_id": inv.InvigilatorID,
	})

	return s.GetSchedule(ctx, scheduleID)
}

// ════════════════════════════════════════════════════════════
// Assign / Unassign — 管理员指派
// ════════════════════════════════════════════════════════════

func (s *assignmentService) Assign(ctx context.Context, scheduleID string, req *dto.AssignScheduleRequest, callerID string) (*dto.ScheduleResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询场次失败", zap.Error(err))
		return nil, err
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		target, seeded, err := s.resolveInvigilator(ctx, tx, req.InvigilatorID)
		if err != nil {
			return err
		}

		// 改派到同一人是幂等操作
		if schedule.InvigilatorID != nil && *schedule.InvigilatorID == target.InvigilatorID {
			return nil
		}

		// 以快照版本为条件先裁决场次归属：并发改派/认领已抢先提交时这里落空，
		// 配额调整不会基于过期的旧认领人执行
		if err := tx.Schedule.SetInvigilator(ctx, scheduleID, &target.InvigilatorID, schedule.Version, callerID); err != nil {
			return err
		}

		// 回退旧认领人的已分配配额
		if schedule.InvigilatorID != nil {
			if err := tx.Invigilator.AdjustAssignedQuota(ctx, *schedule.InvigilatorID, -1); err != nil {
				return err
			}
		}

		// 按需建档时 assigned_quota 已按 1 初始化，避免二次累加
		if !seeded {
			if err := tx.Invigilator.AdjustAssignedQuota(ctx, target.InvigilatorID, 1); err != nil {
				return err
			}
		}

		return tx.Activity.Create(ctx, &model.Activity{
			Type:        model.ActivityUpdate,
			Description: fmt.Sprintf("管理员将 %s 的监考场次指派给 %s", schedule.Date.Format("2006-01-02"), target.Name),
			UserID:      &callerID,
		})
	})
	if err != nil {
		if errors.Is(err, ErrInvigilatorNotFound) || errors.Is(err, ErrProfessorNotFound) ||
			errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		s.logger.Error("指派场次失败", zap.String("schedule_id", scheduleID), zap.Error(err))
		return nil, err
	}

	s.publisher.Publish(ctx, realtime.RoomAdmin, realtime.EventScheduleAssigned, map[string]string{
		"schedule_id": scheduleID,
	})

	return s.GetSchedule(ctx, scheduleID)
}

// resolveInvigilator 解析指派目标
// "prof_<教师ID>" 表示教师尚未建档：按默认教师配额补建监考人员记录，
// assigned_quota 直接按 1 初始化（本次指派即其第一场）
func (s *assignmentService) resolveInvigilator(ctx context.Context, tx *repository.Repository, rawID string) (*model.Invigilator, bool, error) {
	if !strings.HasPrefix(rawID, professorIDPrefix) {
		inv, err := tx.Invigilator.GetByID(ctx, rawID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, false, ErrInvigilatorNotFound
			}
			return nil, false, err
		}
		return inv, false, nil
	}

	professorID := strings.TrimPrefix(rawID, professorIDPrefix)

	// 已有档案则直接复用
	if inv, err := tx.Invigilator.GetByProfessorID(ctx, professorID); err == nil {
		return inv, false, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	prof, err := tx.Professor.GetByID(ctx, professorID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, false, ErrProfessorNotFound
		}
		return nil, false, err
	}

	inv := &model.Invigilator{
		Name:          prof.Name,
		Type:          model.InvigilatorTypeProfessor,
		DepartmentID:  prof.DepartmentID,
		ProfessorID:   &prof.ProfessorID,
		Quota:         s.cfg.Quota.ProfessorDefault,
		AssignedQuota: 1,
	}
	if err := tx.Invigilator.Create(ctx, inv); err != nil {
		return nil, false, err
	}

	s.logger.Info("按需补建教师监考档案",
		zap.String("professor_id", professorID),
		zap.String("invigilator_id", inv.InvigilatorID),
	)
	return inv, true, nil
}

func (s *assignmentService) Unassign(ctx context.Context, scheduleID, callerID string) error {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		s.logger.Error("查询场次失败", zap.Error(err))
		return err
	}
	if schedule.InvigilatorID == nil {
		return nil // 本就开放，幂等
	}
	prevID := *schedule.InvigilatorID

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Schedule.SetInvigilator(ctx, scheduleID, nil, schedule.Version, callerID); err != nil {
			return err
		}
		if err := tx.Invigilator.AdjustAssignedQuota(ctx, prevID, -1); err != nil {
			return err
		}
		return tx.Activity.Create(ctx, &model.Activity{
			Type:        model.ActivityUpdate,
			Description: fmt.Sprintf("管理员撤销了 %s 的监考指派", schedule.Date.Format("2006-01-02")),
			UserID:      &callerID,
		})
	})
	if err != nil && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		s.logger.Error("撤销指派失败", zap.String("schedule_id", scheduleID), zap.Error(err))
	}
	return err
}

func (s *assignmentService) BulkAssign(ctx context.Context, req *dto.BulkAssignRequest, callerID string) (*dto.BulkAssignResponse, error) {
	resp := &dto.BulkAssignResponse{}
	for _, item := range req.Assignments {
		_, err := s.Assign(ctx, item.ScheduleID, &dto.AssignScheduleRequest{InvigilatorID: item.InvigilatorID}, callerID)
		if err != nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, fmt.Sprintf("%s: %v", item.ScheduleID, err))
			continue
		}
		resp.Succeeded++
	}
	return resp, nil
}

func (s *assignmentService) DeleteSchedule(ctx context.Context, scheduleID, callerID string) error {
	schedule, err := s.repo.Schedule.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrScheduleNotFound
		}
		s.logger.Error("查询场次失败", zap.Error(err))
		return err
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		// 版本条件删除先行：快照后被并发认领/改派时整体回滚，配额回退跟着作废
		if err := tx.Schedule.Delete(ctx, scheduleID, schedule.Version); err != nil {
			return err
		}
		if schedule.InvigilatorID != nil {
			if err := tx.Invigilator.AdjustAssignedQuota(ctx, *schedule.InvigilatorID, -1); err != nil {
				return err
			}
		}
		return tx.Activity.Create(ctx, &model.Activity{
			Type:        model.ActivityDelete,
			Description: fmt.Sprintf("删除了 %s 的监考场次", schedule.Date.Format("2006-01-02")),
			UserID:      &callerID,
		})
	})
	if err != nil && !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		s.logger.Error("删除场次失败", zap.String("schedule_id", scheduleID), zap.Error(err))
	}
	return err
}

// ── 辅助函数 ──

func (s *assignmentService) invigilatorByUser(ctx context.Context, userID string) (*model.Invigilator, error) {
	inv, err := s.repo.Invigilator.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoInvigilatorRecord
		}
		s.logger.Error("查询监考档案失败", zap.Error(err))
		return nil, err
	}
	return inv, nil
}

// parseClock 解析 "15:04" 或 "15:04:05" 的钟点，落在 date 当天
func parseClock(date time.Time, clock string) (time.Time, error) {
	layout := "15:04"
	if strings.Count(clock, ":") == 2 {
		layout = "15:04:05"
	}
	t, err := time.Parse(layout, clock)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(date.Year(), date.Month(), date.Day(), t.Hour(), t.Minute(), t.Second(), 0, date.Location()), nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// toScheduleResponse 模型 → 响应 DTO
func toScheduleResponse(s *model.Schedule) dto.ScheduleResponse {
	resp := dto.ScheduleResponse{
		ID:              s.ScheduleID,
		Date:            s.Date.Format("2006-01-02"),
		StartTime:       s.StartTime.Format("15:04"),
		EndTime:         s.EndTime.Format("15:04"),
		TimeOption:      s.TimeOption,
		DepartmentQuota: s.DepartmentQuota,
		QuotaFilled:     s.QuotaFilled,
		Priority:        s.Priority,
		IsGenEd:         s.IsGenEd,
		Note:            s.Note,
		CreatedAt:       s.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if s.Room != nil {
		resp.Room = &dto.RoomBrief{
			ID:         s.Room.RoomID,
			Building:   s.Room.Building,
			RoomNumber: s.Room.RoomNumber,
		}
	}
	if s.SubjectGroup != nil {
		resp.GroupNumber = s.SubjectGroup.GroupNumber
		if s.SubjectGroup.Subject != nil {
			resp.Subject = &dto.SubjectBrief{
				ID:      s.SubjectGroup.Subject.SubjectID,
				Code:    s.SubjectGroup.Subject.Code,
				Name:    s.SubjectGroup.Subject.Name,
				IsGenEd: s.SubjectGroup.Subject.IsGenEd,
			}
		}
	}
	if s.Invigilator != nil {
		resp.Invigilator = &dto.InvigilatorBrief{
			ID:   s.Invigilator.InvigilatorID,
			Name: s.Invigilator.Name,
			Type: s.Invigilator.Type,
		}
	}
	return resp
}
