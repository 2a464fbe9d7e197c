package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/service"
	pkgerrors "github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/errors"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/response"
)

// InvigilatorHandler 监考人员模块 HTTP 处理器
type InvigilatorHandler struct {
	invSvc service.InvigilatorService
}

// NewInvigilatorHandler 创建 InvigilatorHandler
func NewInvigilatorHandler(invSvc service.InvigilatorService) *InvigilatorHandler {
	return &InvigilatorHandler{invSvc: invSvc}
}

// Create 建档监考人员（管理员）
// POST /api/v1/invigilators
func (h *InvigilatorHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateInvigilatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	inv, err := h.invSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDepartmentNotFound):
			response.NotFound(c, 13001, "院系不存在")
		case errors.Is(err, service.ErrDuplicateInvigilator):
			response.Conflict(c, 14002, "该院系下已存在同名监考人员")
		default:
			response.InternalError(c)
		}
		return
	}

	response.Created(c, inv)
}

// Get 监考人员详情
// GET /api/v1/invigilators/:id
func (h *InvigilatorHandler) Get(c *gin.Context) {
	inv, err := h.invSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrInvigilatorNotFound) {
			response.NotFound(c, 14001, "监考人员不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, inv)
}

// List 监考人员列表
// GET /api/v1/invigilators?department_id=xxx&type=staff
func (h *InvigilatorHandler) List(c *gin.Context) {
	var req dto.InvigilatorListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	list, err := h.invSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, list)
}

// Merge 合并重复建档（管理员）
// POST /api/v1/invigilators/merge
func (h *InvigilatorHandler) Merge(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.MergeInvigilatorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.invSvc.Merge(c.Request.Context(), &req, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMergeSelf):
			response.BadRequest(c, 14003, "不能将监考人员与自身合并")
		case errors.Is(err, pkgerrors.ErrOptimisticLock):
			response.Conflict(c, 14004, "合并来源正被并发修改，请重试")
		case errors.Is(err, service.ErrInvigilatorNotFound):
			response.NotFound(c, 14001, "监考人员不存在")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
