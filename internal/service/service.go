package service

import (
	"go.uber.org/zap"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/config"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/repository"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/jwt"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/realtime"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth        AuthService
	User        UserService
	Department  DepartmentService
	Invigilator InvigilatorService
	Quota       QuotaService
	Assignment  AssignmentService
	Appeal      AppealService
	Import      ImportService
	Export      ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	publisher realtime.Publisher,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:        NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:        NewUserService(repo, logger),
		Department:  NewDepartmentService(repo, logger),
		Invigilator: NewInvigilatorService(cfg, repo, logger),
		Quota:       NewQuotaService(repo, logger),
		Assignment:  NewAssignmentService(cfg, repo, publisher, logger),
		Appeal:      NewAppealService(repo, publisher, logger),
		Import:      NewImportService(cfg, repo, logger),
		Export:      NewExportService(repo, logger),
	}
}
