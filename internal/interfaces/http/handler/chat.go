package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"storybook-builder-api/internal/application/reply"
	"storybook-builder-api/internal/application/studio"
	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/internal/interfaces/http/dto"
)

// ChatHandler 对话与回复解析处理器
type ChatHandler struct {
	svc *studio.Service
}

// NewChatHandler 创建对话处理器
func NewChatHandler(svc *studio.Service) *ChatHandler {
	return &ChatHandler{svc: svc}
}

// ListTurns 获取对话记录
// @Summary 对话记录，为空时附带提示语
// @Tags Chat
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.TranscriptResponse]
// @Router /v1/sessions/{sid}/turns [get]
func (h *ChatHandler) ListTurns(c *gin.Context) {
	sid := sessionID(c)
	turns, err := h.svc.Transcript(c.Request.Context(), sid)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := &dto.TranscriptResponse{
		Turns:   dto.ToTurnResponses(turns),
		Pending: pendingOf(h.svc, sid),
	}
	if len(turns) == 0 {
		resp.Placeholder = h.svc.ChatPlaceholder()
	}
	dto.Success(c, resp)
}

// SendMessage 发送消息
// @Summary 发送用户消息并获取助手回复
// @Description 后端不可达时对话记录中追加失败标记，返回 502
// @Tags Chat
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.SendMessageRequest true "消息"
// @Success 200 {object} dto.Response[dto.TurnResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/messages [post]
func (h *ChatHandler) SendMessage(c *gin.Context) {
	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	sid := sessionID(c)
	turn, err := h.svc.SendMessage(c.Request.Context(), sid, req.Message)
	if err != nil {
		writeError(c, err)
		return
	}

	turns, err := h.svc.Transcript(c.Request.Context(), sid)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := dto.ToTurnResponses([]entity.ChatTurn{turn})[0]
	resp.Index = len(turns) - 1
	dto.Success(c, resp)
}

// InterpretTurn 解析助手回复并填入预览
// @Summary 解析对话轮次
// @Tags Chat
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param idx path int true "轮次序号"
// @Param body body dto.InterpretTurnRequest false "解析模式 strict|loose"
// @Success 200 {object} dto.Response[dto.InterpretResponse]
// @Router /v1/sessions/{sid}/turns/{idx}/interpret [post]
func (h *ChatHandler) InterpretTurn(c *gin.Context) {
	idx, ok := parseIndex(c.Param("idx"))
	if !ok {
		dto.BadRequest(c, "turn index must be a non-negative integer")
		return
	}

	var req dto.InterpretTurnRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	mode, err := reply.ParseMode(req.Mode)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	parsed, preview, err := h.svc.InterpretTurn(c.Request.Context(), sessionID(c), idx, mode)
	if err != nil {
		writeError(c, err)
		return
	}

	p := dto.ToPreviewResponse(preview)
	dto.Success(c, &dto.InterpretResponse{
		Story:       parsed.Story,
		ImagePrompt: parsed.ImagePrompt,
		Outcome:     reply.Outcome(parsed),
		Preview:     &p,
	})
}

// Interpret 无状态解析任意文本
func (h *ChatHandler) Interpret(c *gin.Context) {
	var req dto.InterpretTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	mode, err := reply.ParseMode(req.Mode)
	if err != nil {
		dto.BadRequest(c, err.Error())
		return
	}

	parsed := h.svc.Interpret(req.Text, mode)
	dto.Success(c, &dto.InterpretResponse{
		Story:       parsed.Story,
		ImagePrompt: parsed.ImagePrompt,
		Outcome:     reply.Outcome(parsed),
	})
}
