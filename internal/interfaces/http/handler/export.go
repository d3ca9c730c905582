package handler

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"storybook-builder-api/internal/application/export"
	"storybook-builder-api/internal/application/studio"
	"storybook-builder-api/internal/interfaces/http/dto"
)

// ExportHandler 绘本导出
type ExportHandler struct {
	svc *studio.Service
}

// NewExportHandler 创建导出处理器
func NewExportHandler(svc *studio.Service) *ExportHandler {
	return &ExportHandler{svc: svc}
}

// Export 导出绘本
// @Summary 导出 HTML 或 PDF
// @Description 按规范顺序导出；pdf 以附件形式下载
// @Tags Export
// @Produce text/html
// @Produce application/pdf
// @Param sid path string true "会话 ID"
// @Param format query string false "html|pdf" default(html)
// @Success 200 {file} file
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/export [get]
func (h *ExportHandler) Export(c *gin.Context) {
	format, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	doc, err := h.svc.Export(c.Request.Context(), sessionID(c), format)
	if err != nil {
		writeError(c, err)
		return
	}

	if doc.Filename != "" {
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Filename))
	}
	c.Data(http.StatusOK, doc.ContentType, doc.Body)
}
