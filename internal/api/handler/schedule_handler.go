package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/service"
	pkgerrors "github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/errors"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/response"
)

// ScheduleHandler 监考场次模块 HTTP 处理器
type ScheduleHandler struct {
	assignSvc service.AssignmentService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(assignSvc service.AssignmentService) *ScheduleHandler {
	return &ScheduleHandler{assignSvc: assignSvc}
}

// Create 创建监考场次（管理员）
// POST /api/v1/schedules
func (h *ScheduleHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sched, err := h.assignSvc.CreateSchedule(c.Request.Context(), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRoomNotFound):
			response.NotFound(c, 16008, "考场不存在")
		case errors.Is(err, service.ErrSubjectGroupMissing):
			response.NotFound(c, 16009, "教学班不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, sched)
}

// Get 场次详情
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) Get(c *gin.Context) {
	sched, err := h.assignSvc.GetSchedule(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrScheduleNotFound) {
			response.NotFound(c, 16001, "场次不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, sched)
}

// List 场次列表（管理员）
// GET /api/v1/schedules
func (h *ScheduleHandler) List(c *gin.Context) {
	var req dto.ScheduleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, total, err := h.assignSvc.ListSchedules(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Available 当前用户可认领的开放场次
// GET /api/v1/schedules/available
func (h *ScheduleHandler) Available(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.assignSvc.ListAvailable(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoInvigilatorRecord) {
			response.NotFound(c, 16007, "当前用户没有监考档案")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// My 当前用户已认领的场次
// GET /api/v1/schedules/my
func (h *ScheduleHandler) My(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	list, err := h.assignSvc.MySchedule(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNoInvigilatorRecord) {
			response.NotFound(c, 16007, "当前用户没有监考档案")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// Claim 认领开放场次
// POST /api/v1/schedules/:id/claim
func (h *ScheduleHandler) Claim(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	sched, err := h.assignSvc.Claim(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.handleClaimError(c, err)
		return
	}

	response.OK(c, sched)
}

// Assign 指派或改派场次（管理员）
// PUT /api/v1/schedules/:id/assign
func (h *ScheduleHandler) Assign(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.AssignScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	sched, err := h.assignSvc.Assign(c.Request.Context(), c.Param("id"), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrScheduleNotFound):
			response.NotFound(c, 16001, "场次不存在")
		case errors.Is(err, service.ErrInvigilatorNotFound):
			response.NotFound(c, 14001, "监考人员不存在")
		case errors.Is(err, service.ErrProfessorNotFound):
			response.NotFound(c, 16010, "教师不存在")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			response.Conflict(c, 16011, "场次已被并发修改，请重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, sched)
}

// Unassign 取消指派（管理员）
// DELETE /api/v1/schedules/:id/assign
func (h *ScheduleHandler) Unassign(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.assignSvc.Unassign(c.Request.Context(), c.Param("id"), callerID); err != nil {
		switch {
		case errors.Is(err, service.ErrScheduleNotFound):
			response.NotFound(c, 16001, "场次不存在")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			response.Conflict(c, 16011, "场次已被并发修改，请重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

// BulkAssign 批量指派（管理员）
// POST /api/v1/schedules/bulk-assign
func (h *ScheduleHandler) BulkAssign(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.BulkAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.assignSvc.BulkAssign(c.Request.Context(), &req, callerID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, result)
}

// Delete 删除场次（管理员）
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) Delete(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.assignSvc.DeleteSchedule(c.Request.Context(), c.Param("id"), callerID); err != nil {
		switch {
		case errors.Is(err, service.ErrScheduleNotFound):
			response.NotFound(c, 16001, "场次不存在")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			response.Conflict(c, 16011, "场次已被并发修改，请重试")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, nil)
}

func (h *ScheduleHandler) handleClaimError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrScheduleNotFound):
		response.NotFound(c, 16001, "场次不存在")
	case errors.Is(err, service.ErrNoInvigilatorRecord):
		response.NotFound(c, 16007, "当前用户没有监考档案")
	case errors.Is(err, pkgerrors.ErrSlotTaken):
		response.Conflict(c, 16002, "该场次刚被他人认领")
	case errors.Is(err, service.ErrSlotNotOpen):
		response.Conflict(c, 16005, "该场次已不可认领")
	case errors.Is(err, service.ErrQuotaExceeded):
		response.BadRequest(c, 16004, "个人配额已用尽")
	case errors.Is(err, service.ErrDeptQuotaEmpty):
		response.BadRequest(c, 16006, "该场次院系名额已用尽")
	case errors.Is(err, service.ErrNotEligible):
		response.Forbidden(c, 16003, "不符合该场次的认领条件")
	default:
		response.InternalError(c)
	}
}
