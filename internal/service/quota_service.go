package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/model"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/repository"
)

// ── 配额模块业务错误 ──

var ErrDepartmentNotFound = errors.New("院系不存在")

// QuotaService 配额计算业务接口
//
// 分配算法：
//  1. professorQuota = floor(总场次 / 教师人数)，教师人数为 0 时取 0
//  2. remaining = 总场次 − professorQuota × 教师人数
//  3. staffBaseQuota = floor(remaining / 职工人数)，职工人数为 0 时取 0
//  4. 余数按固定枚举序（created_at ASC, invigilator_id ASC）逐人 +1，
//     分给前 leftover 名职工；职工人数为 0 时余数记录在案但不分配
type QuotaService interface {
	// Preview 预览分配方案，不落库
	Preview(ctx context.Context, departmentID string) (*dto.QuotaPlanResponse, error)
	// Recompute 破坏性重算：范围内所有人的 quota 重置为新值、assigned_quota 清零，
	// 与版本记录在同一事务内提交
	Recompute(ctx context.Context, req *dto.RecomputeQuotaRequest, callerID string) (*dto.QuotaPlanResponse, error)
	// History 重算历史
	History(ctx context.Context, limit int) ([]dto.QuotaRecomputeRecordResponse, error)
}

type quotaService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewQuotaService 创建 QuotaService 实例
func NewQuotaService(repo *repository.Repository, logger *zap.Logger) QuotaService {
	return &quotaService{repo: repo, logger: logger}
}

// quotaPlan 纯计算结果
type quotaPlan struct {
	totalSlots     int
	professorCount int
	staffCount     int
	professorQuota int
	staffBaseQuota int
	leftover       int
}

// computeQuotaPlan 纯函数：由总场次与两类人数推导配额方案
func computeQuotaPlan(totalSlots, professorCount, staffCount int) quotaPlan {
	plan := quotaPlan{
		totalSlots:     totalSlots,
		professorCount: professorCount,
		staffCount:     staffCount,
	}

	if professorCount > 0 {
		plan.professorQuota = totalSlots / professorCount
	}
	remaining := totalSlots - plan.professorQuota*professorCount

	if staffCount > 0 {
		plan.staffBaseQuota = remaining / staffCount
		plan.leftover = remaining - plan.staffBaseQuota*staffCount
	} else {
		// 没有职工时余数无处可分，原样记录
		plan.leftover = remaining
	}
	return plan
}

// gather 收集范围内的场次数与人员名单（名单已按固定枚举序排序）
func (s *quotaService) gather(ctx context.Context, departmentID string) (quotaPlan, []model.Invigilator, []model.Invigilator, *model.Department, error) {
	var (
		dept       *model.Department
		totalSlots int64
		professors []model.Invigilator
		staff      []model.Invigilator
		err        error
	)

	if departmentID != "" {
		dept, err = s.repo.Department.GetByID(ctx, departmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return quotaPlan{}, nil, nil, nil, ErrDepartmentNotFound
			}
			s.logger.Error("查询院系失败", zap.Error(err))
			return quotaPlan{}, nil, nil, nil, err
		}
		totalSlots, err = s.repo.Schedule.CountByDepartment(ctx, departmentID)
		if err == nil {
			professors, err = s.repo.Invigilator.ListByDepartmentAndType(ctx, departmentID, model.InvigilatorTypeProfessor)
		}
		if err == nil {
			staff, err = s.repo.Invigilator.ListByDepartmentAndType(ctx, departmentID, model.InvigilatorTypeStaff)
		}
	} else {
		totalSlots, err = s.repo.Schedule.Count(ctx)
		if err == nil {
			professors, err = s.repo.Invigilator.ListByType(ctx, model.InvigilatorTypeProfessor)
		}
		if err == nil {
			staff, err = s.repo.Invigilator.ListByType(ctx, model.InvigilatorTypeStaff)
		}
	}
	if err != nil {
		s.logger.Error("收集配额重算数据失败", zap.Error(err))
		return quotaPlan{}, nil, nil, nil, err
	}

	plan := computeQuotaPlan(int(totalSlots), len(professors), len(staff))
	return plan, professors, staff, dept, nil
}

func (s *quotaService) Preview(ctx context.Context, departmentID string) (*dto.QuotaPlanResponse, error) {
	plan, _, _, dept, err := s.gather(ctx, departmentID)
	if err != nil {
		return nil, err
	}
	return toQuotaPlanResponse(plan, dept), nil
}

func (s *quotaService) Recompute(ctx context.Context, req *dto.RecomputeQuotaRequest, callerID string) (*dto.QuotaPlanResponse, error) {
	plan, professors, staff, dept, err := s.gather(ctx, req.DepartmentID)
	if err != nil {
		return nil, err
	}

	// 人数为零不是错误：配额全部取 0，版本记录照常落一行
	scope := model.QuotaScopeGlobal
	var deptID *string
	if dept != nil {
		scope = model.QuotaScopeDepartment
		deptID = &dept.DepartmentID
	}

	// 全部写入在同一事务内：中途失败不会留下新旧混杂的配额
	err = s.repo.Tx.Transaction(ctx, func(tx *repository.Repository) error {
		for _, p := range professors {
			if err := tx.Invigilator.SetQuota(ctx, p.InvigilatorID, plan.professorQuota, 0); err != nil {
				return err
			}
		}
		// 余数按固定枚举序分给前 leftover 名职工
		extra := plan.leftover
		if plan.staffCount == 0 {
			extra = 0
		}
		for i, st := range staff {
			quota := plan.staffBaseQuota
			if i < extra {
				quota++
			}
			if err := tx.Invigilator.SetQuota(ctx, st.InvigilatorID, quota, 0); err != nil {
				return err
			}
		}

		record := &model.QuotaRecompute{
			Scope:          scope,
			DepartmentID:   deptID,
			TotalSlots:     plan.totalSlots,
			ProfessorCount: plan.professorCount,
			StaffCount:     plan.staffCount,
			ProfessorQuota: plan.professorQuota,
			StaffBaseQuota: plan.staffBaseQuota,
			Leftover:       plan.leftover,
			RunBy:          &callerID,
		}
		if err := tx.QuotaRecompute.Create(ctx, record); err != nil {
			return err
		}

		return tx.Activity.Create(ctx, &model.Activity{
			Type:        model.ActivityUpdate,
			Description: "配额重算完成，所有已分配配额已清零",
			UserID:      &callerID,
		})
	})
	if err != nil {
		s.logger.Error("配额重算失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("配额重算完成",
		zap.String("scope", scope),
		zap.Int("total_slots", plan.totalSlots),
		zap.Int("professor_quota", plan.professorQuota),
		zap.Int("staff_base_quota", plan.staffBaseQuota),
		zap.Int("leftover", plan.leftover),
	)
	return toQuotaPlanResponse(plan, dept), nil
}

func (s *quotaService) History(ctx context.Context, limit int) ([]dto.QuotaRecomputeRecordResponse, error) {
	if limit <= 0 {
		limit = 20
	}
	records, err := s.repo.QuotaRecompute.ListRecent(ctx, limit)
	if err != nil {
		s.logger.Error("查询重算历史失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.QuotaRecomputeRecordResponse, 0, len(records))
	for _, r := range records {
		item := dto.QuotaRecomputeRecordResponse{
			ID:             r.RecomputeID,
			Scope:          r.Scope,
			TotalSlots:     r.TotalSlots,
			ProfessorCount: r.ProfessorCount,
			StaffCount:     r.StaffCount,
			ProfessorQuota: r.ProfessorQuota,
			StaffBaseQuota: r.StaffBaseQuota,
			Leftover:       r.Leftover,
			CreatedAt:      r.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if r.DepartmentID != nil {
			item.DepartmentID = *r.DepartmentID
		}
		if r.RunBy != nil {
			item.RunBy = *r.RunBy
		}
		out = append(out, item)
	}
	return out, nil
}

func toQuotaPlanResponse(plan quotaPlan, dept *model.Department) *dto.QuotaPlanResponse {
	resp := &dto.QuotaPlanResponse{
		Scope:          "GLOBAL",
		TotalSlots:     plan.totalSlots,
		ProfessorCount: plan.professorCount,
		StaffCount:     plan.staffCount,
		ProfessorQuota: plan.professorQuota,
		StaffBaseQuota: plan.staffBaseQuota,
		Leftover:       plan.leftover,
	}
	if dept != nil {
		resp.Scope = "DEPARTMENT"
		resp.Department = &dto.DepartmentBrief{
			ID:   dept.DepartmentID,
			Name: dept.Name,
			Code: dept.Code,
		}
	}
	return resp
}
