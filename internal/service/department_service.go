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

var ErrDepartmentCodeTaken = errors.New("该院系代码已存在")

// DepartmentService 院系业务接口
type DepartmentService interface {
	Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error)
	Get(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error)
	List(ctx context.Context, includeInactive bool) ([]dto.DepartmentDetailResponse, error)
}

type departmentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewDepartmentService 创建 DepartmentService 实例
func NewDepartmentService(repo *repository.Repository, logger *zap.Logger) DepartmentService {
	return &departmentService{repo: repo, logger: logger}
}

func (s *departmentService) Create(ctx context.Context, req *dto.CreateDepartmentRequest, callerID string) (*dto.DepartmentDetailResponse, error) {
	if _, err := s.repo.Department.GetByCode(ctx, req.Code); err == nil {
		return nil, ErrDepartmentCodeTaken
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询院系失败", zap.Error(err))
		return nil, err
	}

	dept := &model.Department{
		Name:     req.Name,
		Code:     req.Code,
		IsActive: true,
	}
	dept.CreatedBy = &callerID

	if err := s.repo.Department.Create(ctx, dept); err != nil {
		s.logger.Error("创建院系失败", zap.Error(err))
		return nil, err
	}

	resp := toDepartmentDetail(dept)
	return &resp, nil
}

func (s *departmentService) Get(ctx context.Context, id string) (*dto.DepartmentDetailResponse, error) {
	dept, err := s.repo.Department.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrDepartmentNotFound
		}
		s.logger.Error("查询院系失败", zap.Error(err))
		return nil, err
	}
	resp := toDepartmentDetail(dept)
	return &resp, nil
}

func (s *departmentService) List(ctx context.Context, includeInactive bool) ([]dto.DepartmentDetailResponse, error) {
	depts, err := s.repo.Department.List(ctx, includeInactive)
	if err != nil {
		s.logger.Error("查询院系列表失败", zap.Error(err))
		return nil, err
	}

	out := make([]dto.DepartmentDetailResponse, 0, len(depts))
	for i := range depts {
		out = append(out, toDepartmentDetail(&depts[i]))
	}
	return out, nil
}

func toDepartmentDetail(d *model.Department) dto.DepartmentDetailResponse {
	return dto.DepartmentDetailResponse{
		ID:        d.DepartmentID,
		Name:      d.Name,
		Code:      d.Code,
		IsActive:  d.IsActive,
		CreatedAt: d.CreatedAt.Format("2006-01-02 15:04:05"),
	}
}
