package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/dto"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/service"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/response"
)

// QuotaHandler 配额模块 HTTP 处理器
type QuotaHandler struct {
	quotaSvc service.QuotaService
}

// NewQuotaHandler 创建 QuotaHandler
func NewQuotaHandler(quotaSvc service.QuotaService) *QuotaHandler {
	return &QuotaHandler{quotaSvc: quotaSvc}
}

// Preview 试算配额分配方案（不落库）
// GET /api/v1/quota/preview?department_id=xxx
func (h *QuotaHandler) Preview(c *gin.Context) {
	plan, err := h.quotaSvc.Preview(c.Request.Context(), c.Query("department_id"))
	if err != nil {
		h.handleQuotaError(c, err)
		return
	}

	response.OK(c, plan)
}

// Recompute 执行配额重算（管理员）
// POST /api/v1/quota/recompute
func (h *QuotaHandler) Recompute(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.RecomputeQuotaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	plan, err := h.quotaSvc.Recompute(c.Request.Context(), &req, callerID)
	if err != nil {
		h.handleQuotaError(c, err)
		return
	}

	response.OK(c, plan)
}

// History 配额重算历史
// GET /api/v1/quota/history?limit=20
func (h *QuotaHandler) History(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 100 {
		response.BadRequest(c, 10001, "limit 参数无效")
		return
	}

	records, err := h.quotaSvc.History(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, records)
}

func (h *QuotaHandler) handleQuotaError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 13001, "院系不存在")
	default:
		response.InternalError(c)
	}
}
