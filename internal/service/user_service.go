package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/repository"
)

// UserService 用户管理业务接口（管理员）
type UserService interface {
	List(ctx context.Context, req *dto.PaginationRequest) ([]dto.UserResponse, int64, error)
	UpdateRole(ctx context.Context, userID string, req *dto.UpdateUserRoleRequest, callerID string) (*dto.UserResponse, error)
	// ListActivities 操作日志列表
	ListActivities(ctx context.Context, req *dto.PaginationRequest) ([]dto.ActivityResponse, int64, error)
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) List(ctx context.Context, req *dto.PaginationRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, total, nil
}

func (s *userService) UpdateRole(ctx context.Context, userID string, req *dto.UpdateUserRoleRequest, callerID string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}

	user.Role = req.Role
	user.UpdatedBy = &callerID
	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户角色失败", zap.Error(err))
		return nil, err
	}

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) ListActivities(ctx context.Context, req *dto.PaginationRequest) ([]dto.ActivityResponse, int64, error) {
	activities, total, err := s.repo.Activity.List(ctx, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询操作日志失败", zap.Error(err))
		return nil, 0, err
	}

	out := make([]dto.ActivityResponse, 0, len(activities))
	for _, a := range activities {
		out = append(out, dto.ActivityResponse{
			ID:          a.ActivityID,
			Type:        a.Type,
			Description: a.Description,
			UserID:      a.UserID,
			CreatedAt:   a.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return out, total, nil
}
