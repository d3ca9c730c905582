package handler

import (
	"github.com/gin-gonic/gin"

	"storybook-builder-api/internal/application/studio"
	"storybook-builder-api/internal/interfaces/http/dto"
)

// SessionHandler 创作会话处理器
type SessionHandler struct {
	svc *studio.Service
}

// NewSessionHandler 创建会话处理器
func NewSessionHandler(svc *studio.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// CreateSession 创建会话
// @Summary 创建创作会话
// @Tags Sessions
// @Produce json
// @Success 201 {object} dto.Response[dto.SessionResponse]
// @Router /v1/sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	sess, err := h.svc.CreateSession(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Created(c, dto.ToSessionResponse(sess, nil, h.svc.ChatPlaceholder()))
}

// GetSession 获取会话
// @Summary 获取会话完整视图
// @Tags Sessions
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.SessionResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	sid := sessionID(c)
	sess, err := h.svc.GetSession(c.Request.Context(), sid)
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, dto.ToSessionResponse(sess, pendingOf(h.svc, sid), h.svc.ChatPlaceholder()))
}

// DeleteSession 结束会话
// @Summary 结束会话，页面随之丢弃
// @Tags Sessions
// @Param sid path string true "会话 ID"
// @Success 204
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid} [delete]
func (h *SessionHandler) DeleteSession(c *gin.Context) {
	if err := h.svc.DeleteSession(c.Request.Context(), sessionID(c)); err != nil {
		writeError(c, err)
		return
	}
	dto.NoContent(c)
}
