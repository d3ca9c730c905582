package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storybook-builder-api/internal/application/gateway"
	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/internal/domain/service"
	"storybook-builder-api/internal/interfaces/http/dto"
	"storybook-builder-api/pkg/logger"
)

// GatewayHandler assistant gateway 的 /chat 与 /generate-image
//
// 错误统一以 {"detail": "..."} 返回，请求体非法时 422，其余 500。
type GatewayHandler struct {
	svc *gateway.Service
}

// NewGatewayHandler 创建 gateway 处理器
func NewGatewayHandler(svc *gateway.Service) *GatewayHandler {
	return &GatewayHandler{svc: svc}
}

func workflowContext(c *gin.Context) {
	wf := service.NormalizeWorkflow(c.GetHeader(service.WorkflowHeader))
	c.Request = c.Request.WithContext(service.WithWorkflow(c.Request.Context(), wf))
}

func detail(c *gin.Context, status int, err error) {
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "gateway request failed", err, "route", c.FullPath())
	}
	_ = c.Error(err)
	c.JSON(status, dto.DetailError{Detail: err.Error()})
}

// Chat 对话补全
// @Summary 对话补全
// @Tags Gateway
// @Accept json
// @Produce json
// @Param body body dto.ChatRequest true "消息列表"
// @Success 200 {object} dto.ChatResponse
// @Failure 422 {object} dto.DetailError
// @Failure 500 {object} dto.DetailError
// @Router /chat [post]
func (h *GatewayHandler) Chat(c *gin.Context) {
	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err)
		return
	}
	workflowContext(c)

	messages := make([]entity.ChatMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, entity.ChatMessage{Role: entity.Role(m.Role), Content: m.Content})
	}

	reply, err := h.svc.Chat(c.Request.Context(), messages)
	if err != nil {
		detail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, dto.ChatResponse{Reply: reply})
}

// GenerateImage 插画生成
// @Summary 插画生成
// @Tags Gateway
// @Accept json
// @Produce json
// @Param body body dto.ImageRequest true "提示词"
// @Success 200 {object} dto.ImageResponse
// @Failure 422 {object} dto.DetailError
// @Failure 500 {object} dto.DetailError
// @Router /generate-image [post]
func (h *GatewayHandler) GenerateImage(c *gin.Context) {
	var req dto.ImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		detail(c, http.StatusUnprocessableEntity, err)
		return
	}
	workflowContext(c)

	url, err := h.svc.GenerateImage(c.Request.Context(), req.Prompt)
	if err != nil {
		detail(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, dto.ImageResponse{ImageURL: url})
}
