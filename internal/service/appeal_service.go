package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/repository"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/realtime"
)

// ── 申诉模块业务错误 ──

var (
	ErrAppealNotFound         = errors.New("申诉不存在")
	ErrNotSlotOwner           = errors.New("只能对自己认领的场次提出申诉")
	ErrAdminResponseRequired  = errors.New("驳回申诉时必须填写处理意见")
	ErrPreferredDatesRequired = errors.New("申请更换日期时必须提供备选日期")
)

// AppealService 申诉业务接口
//
// 状态机：PENDING → APPROVED | REJECTED，终态不可再变更。
// 裁决本身不改动台账：批准仅在场次上留下批注，实际改派仍由
// 管理员通过 AssignmentService 执行。
type AppealService interface {
	// Create 提交申诉（仅限自己认领的场次）
	Create(ctx context.Context, req *dto.CreateAppealRequest, userID string) (*dto.AppealResponse, error)
	// MyAppeals 当前用户的申诉列表
	MyAppeals(ctx context.Context, userID string) ([]dto.AppealResponse, error)
	// List 申诉列表（管理员，可按状态过滤）
	List(ctx context.Context, req *dto.AppealListRequest) ([]dto.AppealResponse, int64, error)
	// Get 申诉详情
	Get(ctx context.Context, id string) (*dto.AppealResponse, error)
	// Decide 裁决（管理员）：驳回必须附处理意见
	Decide(ctx context.Context, id string, req *dto.DecideAppealRequest, adminID string) (*dto.AppealResponse, error)
	// MarkRead 标记申诉结果已读（申请人）
	MarkRead(ctx context.Context, id, userID string) error
}

type appealService struct {
	repo      *repository.Repository
	publisher realtime.Publisher
	logger    *zap.Logger
}

// NewAppealService 创建 AppealService 实例
func NewAppealService(repo *repository.Repository, publisher realtime.Publisher, logger *zap.Logger) AppealService {
	return &appealService{repo: repo, publisher: publisher, logger: logger}
}

func (s *appealService) Create(ctx context.Context, req *dto.CreateAppealRequest, userID string) (*dto.AppealResponse, error) {
	schedule, err := s.repo.Schedule.GetByID(ctx, req.ScheduleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("查询场次失败", zap.Error(err))
		return nil, err
	}

	// 申请人必须是该场次当前的认领人
	inv, err := s.repo.Invigilator.GetByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotSlotOwner
		}
		s.logger.Error("查询监考档案失败", zap.Error(err))
		return nil, err
	}
	if schedule.InvigilatorID == nil || *schedule.InvigilatorID != inv.InvigilatorID {
		return nil, ErrNotSlotOwner
	}

	if req.Type == model.AppealTypeChangeDate && len(req.PreferredDates) == 0 {
		return nil, ErrPreferredDatesRequired
	}

	dates, err := parseDates(req.PreferredDates)
	if err != nil {
		return nil, err
	}

	appeal := &model.Appeal{
		ScheduleID:     req.ScheduleID,
		UserID:         userID,
		Type:           req.Type,
		Reason:         req.Reason,
		PreferredDates: dates,
		Status:         model.AppealStatusPending,
	}
	appeal.CreatedBy = &userID

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.Appeal.Create(ctx, appeal); err != nil {
			return err
		}
		return tx.Activity.Create(ctx, &model.Activity{
			Type:        model.ActivityCreate,
			Description: fmt.Sprintf("提交了 %s 场次的申诉（%s）", schedule.Date.Format("2006-01-02"), req.Type),
			UserID:      &userID,
		})
	})
	if err != nil {
		s.logger.Error("创建申诉失败", zap.Error(err))
		return nil, err
	}

	// 通知管理员频道有新申诉
	s.publisher.Publish(ctx, realtime.RoomAdmin, realtime.EventNewAppeal, map[string]string{
		"appeal_id":   appeal.AppealID,
		"schedule_id": appeal.ScheduleID,
		"type":        appeal.Type,
	})

	return s.Get(ctx, appeal.AppealID)
}

func (s *appealService) MyAppeals(ctx context.Context, userID string) ([]dto.AppealResponse, error) {
	appeals, err := s.repo.Appeal.ListByUser(ctx, userID)
	if err != nil {
		s.logger.Error("查询我的申诉失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.AppealResponse, 0, len(appeals))
	for i := range appeals {
		out = append(out, toAppealResponse(&appeals[i]))
	}
	return out, nil
}

func (s *appealService) List(ctx context.Context, req *dto.AppealListRequest) ([]dto.AppealResponse, int64, error) {
	appeals, total, err := s.repo.Appeal.List(ctx, req.Status, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询申诉列表失败", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.AppealResponse, 0, len(appeals))
	for i := range appeals {
		out = append(out, toAppealResponse(&appeals[i]))
	}
	return out, total, nil
}

func (s *appealService) Get(ctx context.Context, id string) (*dto.AppealResponse, error) {
	appeal, err := s.repo.Appeal.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppealNotFound
		}
		s.logger.Error("查询申诉失败", zap.Error(err))
		return nil, err
	}
	resp := toAppealResponse(appeal)
	return &resp, nil
}

func (s *appealService) Decide(ctx context.Context, id string, req *dto.DecideAppealRequest, adminID string) (*dto.AppealResponse, error) {
	appeal, err := s.repo.Appeal.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAppealNotFound
		}
		s.logger.Error("查询申诉失败", zap.Error(err))
		return nil, err
	}

	if req.Status == model.AppealStatusRejected &&
		(req.AdminResponse == nil || *req.AdminResponse == "") {
		return nil, ErrAdminResponseRequired
	}

	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		// 条件更新只命中 PENDING 行，终态天然不可二次裁决
		if err := tx.Appeal.DecidePending(ctx, id, req.Status, req.AdminResponse, adminID); err != nil {
			return err
		}

		// 批准仅在场次上留下批注，不改动台账
		if req.Status == model.AppealStatusApproved {
			note := appealNote(appeal)
			if err := tx.Schedule.SetNote(ctx, appeal.ScheduleID, note, adminID); err != nil {
				return err
			}
		}

		return tx.Activity.Create(ctx, &model.Activity{
			Type:        model.ActivityUpdate,
			Description: fmt.Sprintf("申诉 %s 已处理：%s", id, req.Status),
			UserID:      &adminID,
		})
	})
	if err != nil {
		s.logger.Error("裁决申诉失败", zap.String("appeal_id", id), zap.Error(err))
		return nil, err
	}

	// 通知申请人裁决结果（以用户 ID 为房间）
	s.publisher.Publish(ctx, appeal.UserID, realtime.EventAppealUpdated, map[string]string{
		"appeal_id": id,
		"status":    req.Status,
	})

	return s.Get(ctx, id)
}

func (s *appealService) MarkRead(ctx context.Context, id, userID string) error {
	appeal, err := s.repo.Appeal.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAppealNotFound
		}
		s.logger.Error("查询申诉失败", zap.Error(err))
		return err
	}
	if appeal.UserID != userID {
		return ErrAppealNotFound
	}
	return s.repo.Appeal.MarkRead(ctx, id)
}

// ── 辅助函数 ──

// appealNote 生成批准后写入场次的批注文本
func appealNote(a *model.Appeal) string {
	switch a.Type {
	case model.AppealTypeChangeDate:
		if len(a.PreferredDates) > 0 {
			return fmt.Sprintf("申诉已批准：申请更换日期，首选 %s", a.PreferredDates[0].Format("2006-01-02"))
		}
		return "申诉已批准：申请更换日期"
	case model.AppealTypeFindReplacement:
		return "申诉已批准：等待安排替补监考"
	default:
		return "申诉已批准"
	}
}

func parseDates(raw []string) (model.DateArray, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	dates := make(model.DateArray, 0, len(raw))
	for _, d := range raw {
		t, err := time.Parse("2006-01-02", d)
		if err != nil {
			return nil, fmt.Errorf("备选日期格式错误: %w", err)
		}
		dates = append(dates, t)
	}
	return dates, nil
}

// toAppealResponse 模型 → 响应 DTO
func toAppealResponse(a *model.Appeal) dto.AppealResponse {
	resp := dto.AppealResponse{
		ID:            a.AppealID,
		UserID:        a.UserID,
		Type:          a.Type,
		Reason:        a.Reason,
		Status:        a.Status,
		AdminResponse: a.AdminResponse,
		IsRead:        a.IsRead,
		CreatedAt:     a.CreatedAt.Format("2006-01-02 15:04:05"),
		UpdatedAt:     a.UpdatedAt.Format("2006-01-02 15:04:05"),
	}
	for _, d := range a.PreferredDates {
		resp.PreferredDates = append(resp.PreferredDates, d.Format("2006-01-02"))
	}
	if a.Schedule != nil {
		sched := toScheduleResponse(a.Schedule)
		resp.Schedule = &sched
	}
	if a.User != nil {
		resp.UserName = a.User.Name
	}
	return resp
}
