package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/config"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/repository"
	pkgerrors "github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/errors"
)

// ── 监考员模块业务错误 ──

var (
	ErrDuplicateInvigilator = errors.New("该院系下已存在同名监考人员")
	ErrMergeSelf            = errors.New("不能将监考人员与自身合并")
)

// InvigilatorService 监考人员业务接口
type InvigilatorService interface {
	// Create 新增监考人员（配额缺省取类型默认值）
	Create(ctx context.Context, req *dto.CreateInvigilatorRequest, callerID string) (*dto.InvigilatorResponse, error)
	// Get 监考人员详情
	Get(ctx context.Context, id string) (*dto.InvigilatorResponse, error)
	// List 监考人员列表（可按院系/类型过滤）
	List(ctx context.Context, req *dto.InvigilatorListRequest) ([]dto.InvigilatorResponse, error)
	// Merge 合并重复建档：source 名下全部场次转移给 target，
	// target 继承 source 的已分配配额，source 软删除
	Merge(ctx context.Context, req *dto.MergeInvigilatorRequest, callerID string) (*dto.MergeInvigilatorResponse, error)
}

type invigilatorService struct {
	cfg    *config.Config
	repo   *repository.Repository
	logger *zap.Logger
}

// NewInvigilatorService 创建 InvigilatorService 实例
func NewInvigilatorService(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) InvigilatorService {
	return &invigilatorService{cfg: cfg, repo: repo, logger: logger}
}

func (s *invigilatorService) Create(ctx context.Context, req *dto.CreateInvigilatorRequest, callerID string) (*dto.InvigilatorResponse, error) {
	if _, err := s.repo.Department.GetByID(ctx, req.DepartmentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.Error(err))
		return nil, err
	}

	// 同院系同名视为重复建档（大小写不敏感）
	exists, err := s.repo.Invigilator.ExistsByNameInDepartment(ctx, req.Name, req.DepartmentID, req.Type)
	if err != nil {
		s.logger.Error("查询重名失败", zap.Error(err))
		return nil, err
	}
	if exists {
		return nil, ErrDuplicateInvigilator
	}

	quota := s.defaultQuota(req.Type)
	if req.Quota != nil {
		quota = *req.Quota
	}

	inv := &model.Invigilator{
		Name:         req.Name,
		Type:         req.Type,
		DepartmentID: req.DepartmentID,
		Quota:        quota,
	}
	inv.CreatedBy = &callerID

	if err := s.repo.Invigilator.Create(ctx, inv); err != nil {
		s.logger.Error("创建监考人员失败", zap.Error(err))
		return nil, err
	}

	return s.Get(ctx, inv.InvigilatorID)
}

func (s *invigilatorService) Get(ctx context.Context, id string) (*dto.InvigilatorResponse, error) {
	inv, err := s.repo.Invigilator.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvigilatorNotFound
		}
		s.logger.Error("查询监考人员失败", zap.Error(err))
		return nil, err
	}
	resp := toInvigilatorResponse(inv)
	return &resp, nil
}

func (s *invigilatorService) List(ctx context.Context, req *dto.InvigilatorListRequest) ([]dto.InvigilatorResponse, error) {
	var (
		invs []model.Invigilator
		err  error
	)
	switch {
	case req.DepartmentID != "" && req.Type != "":
		invs, err = s.repo.Invigilator.ListByDepartmentAndType(ctx, req.DepartmentID, req.Type)
	case req.DepartmentID != "":
		invs, err = s.repo.Invigilator.ListByDepartment(ctx, req.DepartmentID)
	default:
		invType := req.Type
		if invType == "" {
			professors, perr := s.repo.Invigilator.ListByType(ctx, model.InvigilatorTypeProfessor)
			if perr != nil {
				s.logger.Error("查询监考人员列表失败", zap.Error(perr))
				return nil, perr
			}
			staff, serr := s.repo.Invigilator.ListByType(ctx, model.InvigilatorTypeStaff)
			if serr != nil {
				s.logger.Error("查询监考人员列表失败", zap.Error(serr))
				return nil, serr
			}
			invs = append(professors, staff...)
		} else {
			invs, err = s.repo.Invigilator.ListByType(ctx, invType)
		}
	}
	if err != nil {
		s.logger.Error("查询监考人员列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.InvigilatorResponse, 0, len(invs))
	for i := range invs {
		out = append(out, toInvigilatorResponse(&invs[i]))
	}
	return out, nil
}

// ════════════════════════════════════════════════════════════
// Merge — 合并重复建档
// ════════════════════════════════════════════════════════════

func (s *invigilatorService) Merge(ctx context.Context, req *dto.MergeInvigilatorRequest, callerID string) (*dto.MergeInvigilatorResponse, error) {
	if req.SourceID == req.TargetID {
		return nil, ErrMergeSelf
	}

	target, err := s.repo.Invigilator.GetByID(ctx, req.TargetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvigilatorNotFound
		}
		s.logger.Error("查询合并目标失败", zap.Error(err))
		return nil, err
	}

	var transferred int64
	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		// 1. 事务内读取 source：assigned_quota 与 version 必须是最新值，
		//    事务外的快照拿去继承会把并发认领/撤销的变更漏掉
		source, err := tx.Invigilator.GetByID(ctx, req.SourceID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrInvigilatorNotFound
			}
			return err
		}

		// 2. source 名下全部场次改挂 target
		n, err := tx.Schedule.TransferOwnership(ctx, source.InvigilatorID, target.InvigilatorID)
		if err != nil {
			return err
		}
		transferred = n

		// 3. target 继承 source 的已分配配额：转移过来的场次仍然占额
		if source.AssignedQuota > 0 {
			if err := tx.Invigilator.AdjustAssignedQuota(ctx, target.InvigilatorID, source.AssignedQuota); err != nil {
				return err
			}
		}

		// 4. source 按版本条件软删除；读取后又被并发认领改动时落空，整体回滚
		if err := tx.Invigilator.Delete(ctx, source.InvigilatorID, source.Version, callerID); err != nil {
			return err
		}

		return tx.Activity.Create(ctx, &model.Activity{
			Type:        model.ActivityUpdate,
			Description: fmt.Sprintf("合并监考人员：%s → %s，转移 %d 个场次", source.Name, target.Name, transferred),
			UserID:      &callerID,
		})
	})
	if err != nil {
		if errors.Is(err, ErrInvigilatorNotFound) || errors.Is(err, pkgerrors.ErrOptimisticLock) {
			return nil, err
		}
		s.logger.Error("合并监考人员失败",
			zap.String("source_id", req.SourceID),
			zap.String("target_id", req.TargetID),
			zap.Error(err),
		)
		return nil, err
	}

	merged, err := s.repo.Invigilator.GetByID(ctx, target.InvigilatorID)
	if err != nil {
		s.logger.Error("查询合并结果失败", zap.Error(err))
		return nil, err
	}

	return &dto.MergeInvigilatorResponse{
		TargetID:        merged.InvigilatorID,
		TransferredSlot: transferred,
		AssignedQuota:   merged.AssignedQuota,
	}, nil
}

// ── 辅助函数 ──

func (s *invigilatorService) defaultQuota(invType string) int {
	if invType == model.InvigilatorTypeProfessor {
		return s.cfg.Quota.ProfessorDefault
	}
	return s.cfg.Quota.StaffDefault
}

// toInvigilatorResponse 模型 → 响应 DTO
func toInvigilatorResponse(inv *model.Invigilator) dto.InvigilatorResponse {
	remaining := inv.Quota - inv.AssignedQuota
	if remaining < 0 {
		remaining = 0
	}
	resp := dto.InvigilatorResponse{
		ID:            inv.InvigilatorID,
		Name:          inv.Name,
		Type:          inv.Type,
		ProfessorID:   inv.ProfessorID,
		Quota:         inv.Quota,
		AssignedQuota: inv.AssignedQuota,
		Remaining:     remaining,
		CreatedAt:     inv.CreatedAt.Format("2006-01-02 15:04:05"),
	}
	if inv.Department != nil {
		resp.Department = &dto.DepartmentBrief{
			ID:   inv.Department.DepartmentID,
			Name: inv.Department.Name,
			Code: inv.Department.Code,
		}
	}
	return resp
}
