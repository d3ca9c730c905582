package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"storybook-builder-api/internal/application/studio"
	"storybook-builder-api/internal/interfaces/http/dto"
)

// PreviewHandler 预览编辑、改写与插画生成
type PreviewHandler struct {
	svc *studio.Service
}

// NewPreviewHandler 创建预览处理器
func NewPreviewHandler(svc *studio.Service) *PreviewHandler {
	return &PreviewHandler{svc: svc}
}

// UpdatePreview 编辑预览正文或插画提示词
// @Summary 更新预览
// @Tags Preview
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.UpdatePreviewRequest true "更新字段"
// @Success 200 {object} dto.Response[dto.PreviewResponse]
// @Router /v1/sessions/{sid}/preview [put]
func (h *PreviewHandler) UpdatePreview(c *gin.Context) {
	var req dto.UpdatePreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	preview, err := h.svc.UpdatePreview(c.Request.Context(), sessionID(c), studio.PreviewUpdate{
		Text:        req.Text,
		ImagePrompt: req.ImagePrompt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, dto.ToPreviewResponse(preview))
}

// ClearPreview 清空预览
func (h *PreviewHandler) ClearPreview(c *gin.Context) {
	if err := h.svc.ClearPreview(c.Request.Context(), sessionID(c)); err != nil {
		writeError(c, err)
		return
	}
	dto.NoContent(c)
}

// CorrectGrammar 修正预览正文
// @Summary 语法修正
// @Description 单轮请求，不携带对话历史；失败时预览保持不变
// @Tags Preview
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.PreviewResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/preview/grammar [post]
func (h *PreviewHandler) CorrectGrammar(c *gin.Context) {
	preview, err := h.svc.CorrectGrammar(c.Request.Context(), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, dto.ToPreviewResponse(preview))
}

// ChangeStyle 改写预览正文风格
func (h *PreviewHandler) ChangeStyle(c *gin.Context) {
	preview, err := h.svc.ChangeStyle(c.Request.Context(), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, dto.ToPreviewResponse(preview))
}

// GenerateImage 生成预览插画
// @Summary 生成插画
// @Description prompt 为空时使用预览提示词；已有页面时附加一致性说明
// @Tags Preview
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.GenerateImageRequest false "提示词覆盖"
// @Success 200 {object} dto.Response[dto.PreviewResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/preview/image [post]
func (h *PreviewHandler) GenerateImage(c *gin.Context) {
	var req dto.GenerateImageRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	preview, err := h.svc.GenerateImage(c.Request.Context(), sessionID(c), studio.ImageRequest{
		Prompt:      req.Prompt,
		OverlayText: req.OverlayText,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, dto.ToPreviewResponse(preview))
}
