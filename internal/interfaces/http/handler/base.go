// Package handler 提供 HTTP 请求处理器
package handler

import (
	stderrors "errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"storybook-builder-api/internal/application/export"
	"storybook-builder-api/internal/application/studio"
	"storybook-builder-api/internal/domain/service"
	"storybook-builder-api/internal/interfaces/http/dto"
	"storybook-builder-api/internal/interfaces/http/middleware"
	"storybook-builder-api/pkg/errors"
	"storybook-builder-api/pkg/logger"
)

// toAppError 把应用层错误映射为带 HTTP 状态的 AppError
func toAppError(err error) *errors.AppError {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}

	switch {
	case stderrors.Is(err, studio.ErrSessionNotFound):
		return errors.ErrSessionNotFound.WithError(err)
	case stderrors.Is(err, studio.ErrPageNotFound):
		return errors.ErrPageNotFound.WithDetail(err.Error())
	case stderrors.Is(err, studio.ErrTurnNotFound):
		return errors.ErrTurnNotFound.WithDetail(err.Error())
	case stderrors.Is(err, studio.ErrNotInterpretable):
		return errors.ErrNotInterpretable.WithDetail(err.Error())
	case stderrors.Is(err, studio.ErrIncompletePage):
		return errors.ErrIncompletePage
	case stderrors.Is(err, studio.ErrEmptyBook):
		return errors.ErrEmptyBook
	case stderrors.Is(err, studio.ErrMissingInput),
		stderrors.Is(err, studio.ErrInvalidOrder),
		stderrors.Is(err, export.ErrUnsupportedFormat):
		return errors.ErrInvalidParam.WithDetail(err.Error())
	case stderrors.Is(err, studio.ErrActionInFlight):
		return errors.ErrActionInFlight.WithDetail(err.Error())
	case stderrors.Is(err, service.ErrAssistantTripped):
		return errors.ErrBackendTripped.WithError(err)
	case stderrors.Is(err, studio.ErrChatFailed):
		return errors.ErrChatFailed.WithError(err)
	case stderrors.Is(err, studio.ErrImageFailed):
		return errors.ErrImageFailed.WithError(err)
	case stderrors.Is(err, studio.ErrGrammarFailed),
		stderrors.Is(err, studio.ErrStyleFailed):
		return errors.ErrBackendDown.WithDetail(err.Error()).WithError(err)
	case stderrors.Is(err, service.ErrAssistantUnavailable):
		return errors.ErrBackendDown.WithError(err)
	default:
		return errors.ErrInternalError.WithError(err)
	}
}

// writeError 写错误响应，5xx 记录错误日志
func writeError(c *gin.Context, err error) {
	appErr := toAppError(err)
	if appErr.HTTPStatus >= 500 {
		logger.Error(c.Request.Context(), "request failed", err,
			"code", string(appErr.Code),
			"route", c.FullPath(),
		)
	}
	_ = c.Error(err)
	dto.AppError(c, appErr)
}

func sessionID(c *gin.Context) string {
	return c.Param(middleware.SessionParam)
}

func pendingOf(svc *studio.Service, sid string) []string {
	actions := svc.Pending(sid)
	out := make([]string, 0, len(actions))
	for _, a := range actions {
		out = append(out, string(a))
	}
	return out
}

func parseIndex(raw string) (int, bool) {
	idx, err := strconv.Atoi(raw)
	if err != nil || idx < 0 {
		return 0, false
	}
	return idx, true
}

func withMoved(book dto.BookResponse, moved bool) dto.BookResponse {
	book.Moved = &moved
	return book
}
