package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Watthachai/kmitl-exam-invigilator-sub001/internal/service"
	"github.com/Watthachai/kmitl-exam-invigilator-sub001/pkg/response"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeICS  = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// SchedulesXLSX 导出监考台账 Excel（管理员）
// GET /api/v1/export/schedules
func (h *ExportHandler) SchedulesXLSX(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportSchedulesXLSX(c.Request.Context())
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, filename, contentTypeXLSX, buf.Bytes())
}

// MyScheduleICS 导出个人监考日历
// GET /api/v1/export/my-schedule.ics
func (h *ExportHandler) MyScheduleICS(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportMyScheduleICS(c.Request.Context(), userID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	writeDownload(c, filename, contentTypeICS, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoSchedules):
		response.NotFound(c, 19001, "没有可导出的监考场次")
	case errors.Is(err, service.ErrNoInvigilatorRecord):
		response.NotFound(c, 16007, "当前用户没有监考档案")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}

// writeDownload 设置文件下载响应头并写出内容
func writeDownload(c *gin.Context, filename, contentType string, data []byte) {
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, contentType, data)
}
