package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/service"
	pkgerrors "github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/errors"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/response"
)

// AppealHandler 申诉模块 HTTP 处理器
type AppealHandler struct {
	appealSvc service.AppealService
}

// NewAppealHandler 创建 AppealHandler
func NewAppealHandler(appealSvc service.AppealService) *AppealHandler {
	return &AppealHandler{appealSvc: appealSvc}
}

// Create 提交申诉
// POST /api/v1/appeals
func (h *AppealHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	appeal, err := h.appealSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScheduleNotFound):
			response.NotFound(c, 16001, "场次不存在")
		case errors.Is(err, service.ErrNoInvigilatorRecord):
			response.NotFound(c, 16007, "当前用户没有监考档案")
		case errors.Is(err, service.ErrNotSlotOwner):
			response.Forbidden(c, 17002, "只能对自己认领的场次提出申诉")
		case errors.Is(err, service.ErrPreferredDatesRequired):
			response.BadRequest(c, 17004, "申请更换日期时必须提供备选日期")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, appeal)
}

// My 当前用户的申诉列表
// GET /api/v1/appeals/my
func (h *AppealHandler) My(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.appealSvc.MyAppeals(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// List 申诉列表（管理员）
// GET /api/v1/appeals?status=PENDING
func (h *AppealHandler) List(c *gin.Context) {
	var req dto.AppealListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.appealSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 申诉详情（管理员）
// GET /api/v1/appeals/:id
func (h *AppealHandler) Get(c *gin.Context) {
	appeal, err := h.appealSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrAppealNotFound) {
			response.NotFound(c, 17001, "申诉不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, appeal)
}

// Decide 裁决申诉（管理员）
// PUT /api/v1/appeals/:id/decide
func (h *AppealHandler) Decide(c *gin.Context) {
	adminID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DecideAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	appeal, err := h.appealSvc.Decide(c.Request.Context(), c.Param("id"), &req, adminID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAppealNotFound):
			response.NotFound(c, 17001, "申诉不存在")
		case errors.Is(err, service.ErrAdminResponseRequired):
			response.BadRequest(c, 17003, "驳回申诉时必须填写处理意见")
		case errors.Is(err, pkgerrors.ErrAppealDecided):
			response.Conflict(c, 17005, "该申诉已处理完毕，不可重复裁决")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, appeal)
}

// MarkRead 标记申诉结果已读
// PUT /api/v1/appeals/:id/read
func (h *AppealHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.appealSvc.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, service.ErrAppealNotFound) {
			response.NotFound(c, 17001, "申诉不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, nil)
}
