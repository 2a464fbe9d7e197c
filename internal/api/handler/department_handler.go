package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/service"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/response"
)

// DepartmentHandler 院系模块 HTTP 处理器
type DepartmentHandler struct {
	deptSvc service.DepartmentService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(deptSvc service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{deptSvc: deptSvc}
}

// Create 创建院系（管理员）
// POST /api/v1/departments
func (h *DepartmentHandler) Create(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateDepartmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	dept, err := h.deptSvc.Create(c.Request.Context(), &req, callerID)
	if err != nil {
		if errors.Is(err, service.ErrDepartmentCodeTaken) {
			response.Conflict(c, 13002, "该院系代码已存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.Created(c, dept)
}

// Get 院系详情
// GET /api/v1/departments/:id
func (h *DepartmentHandler) Get(c *gin.Context) {
	dept, err := h.deptSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrDepartmentNotFound) {
			response.NotFound(c, 13001, "院系不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, dept)
}

// List 院系列表
// GET /api/v1/departments?include_inactive=true
func (h *DepartmentHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"

	depts, err := h.deptSvc.List(c.Request.Context(), includeInactive)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, depts)
}
