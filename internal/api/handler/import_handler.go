package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/service"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/response"
)

// maxRosterSize 名册上传大小上限（5MB）
const maxRosterSize = 5 << 20

// ImportHandler 导入模块 HTTP 处理器
type ImportHandler struct {
	importSvc service.ImportService
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(importSvc service.ImportService) *ImportHandler {
	return &ImportHandler{importSvc: importSvc}
}

// ImportStaffRoster 上传职工名册（管理员）
// POST /api/v1/import/staff  (multipart/form-data, 字段名 file)
func (h *ImportHandler) ImportStaffRoster(c *gin.Context) {
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, 10001, "缺少上传文件")
		return
	}
	if fileHeader.Size > maxRosterSize {
		response.BadRequest(c, 18003, "名册文件过大")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		response.BadRequest(c, 18001, "名册文件无法读取")
		return
	}
	defer f.Close()

	result, err := h.importSvc.ImportStaffRoster(c.Request.Context(), f, callerID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImportInvalidFile):
			response.BadRequest(c, 18001, "名册文件无法解析，请使用 .xlsx 格式")
		case errors.Is(err, service.ErrImportEmptyFile):
			response.BadRequest(c, 18002, "名册文件没有任何数据行")
		default:
			response.InternalError(c)
		}
		return
	}

	response.OK(c, result)
}
