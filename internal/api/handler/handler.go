package handler

import "github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth        *AuthHandler
	User        *UserHandler
	Department  *DepartmentHandler
	Invigilator *InvigilatorHandler
	Quota       *QuotaHandler
	Schedule    *ScheduleHandler
	Appeal      *AppealHandler
	Import      *ImportHandler
	Export      *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		User:        NewUserHandler(svc.User),
		Department:  NewDepartmentHandler(svc.Department),
		Invigilator: NewInvigilatorHandler(svc.Invigilator),
		Quota:       NewQuotaHandler(svc.Quota),
		Schedule:    NewScheduleHandler(svc.Assignment),
		Appeal:      NewAppealHandler(svc.Appeal),
		Import:      NewImportHandler(svc.Import),
		Export:      NewExportHandler(svc.Export),
	}
}
