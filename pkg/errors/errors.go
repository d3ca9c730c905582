// Package errors 提供统一的错误定义
package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorCode 错误码类型
type ErrorCode string

// 预定义错误码
const (
	// 通用错误 (1xxx)
	CodeSuccess            ErrorCode = "0"
	CodeUnknown            ErrorCode = "1000"
	CodeInvalidParam       ErrorCode = "1001"
	CodeNotFound           ErrorCode = "1004"
	CodeConflict           ErrorCode = "1005"
	CodeTooManyRequests    ErrorCode = "1006"
	CodeInternalError      ErrorCode = "1007"
	CodeServiceUnavailable ErrorCode = "1008"

	// 资源错误 (3xxx)
	CodeSessionNotFound ErrorCode = "3001"
	CodePageNotFound    ErrorCode = "3002"
	CodeTurnNotFound    ErrorCode = "3003"

	// 业务错误 (4xxx)
	CodeIncompletePage        ErrorCode = "4001"
	CodeEmptyBook             ErrorCode = "4002"
	CodeActionInFlight        ErrorCode = "4003"
	CodeChatFailed            ErrorCode = "4004"
	CodeImageGenerationFailed ErrorCode = "4005"
	CodeExportFailed          ErrorCode = "4006"
	CodeNotInterpretable      ErrorCode = "4007"

	// 外部服务错误 (5xxx)
	CodeCacheError         ErrorCode = "5002"
	CodeBackendUnavailable ErrorCode = "5005"
	CodeBackendCircuitOpen ErrorCode = "5006"
)

// AppError 应用错误
type AppError struct {
	Code       ErrorCode `json:"code"`
	Message    string    `json:"message"`
	Detail     string    `json:"detail,omitempty"`
	HTTPStatus int       `json:"-"`
	Err        error     `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap 返回底层错误
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail 添加详细信息（返回副本，避免污染预定义错误）
func (e *AppError) WithDetail(detail string) *AppError {
	cp := *e
	cp.Detail = detail
	return &cp
}

// WithError 添加底层错误（返回副本）
func (e *AppError) WithError(err error) *AppError {
	cp := *e
	cp.Err = err
	return &cp
}

// New 创建新的应用错误
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
	}
}

// Wrap 包装错误
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: codeToHTTPStatus(code),
		Err:        err,
	}
}

// codeToHTTPStatus 错误码转 HTTP 状态码
func codeToHTTPStatus(code ErrorCode) int {
	switch code {
	case CodeSuccess:
		return http.StatusOK
	case CodeInvalidParam, CodeIncompletePage, CodeEmptyBook, CodeNotInterpretable:
		return http.StatusBadRequest
	case CodeNotFound, CodeSessionNotFound, CodePageNotFound, CodeTurnNotFound:
		return http.StatusNotFound
	case CodeConflict, CodeActionInFlight:
		return http.StatusConflict
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	case CodeBackendUnavailable, CodeChatFailed, CodeImageGenerationFailed:
		return http.StatusBadGateway
	case CodeServiceUnavailable, CodeBackendCircuitOpen:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// 预定义错误
var (
	ErrInvalidParam       = New(CodeInvalidParam, "invalid parameter")
	ErrNotFound           = New(CodeNotFound, "resource not found")
	ErrConflict           = New(CodeConflict, "resource conflict")
	ErrTooManyRequests    = New(CodeTooManyRequests, "too many requests")
	ErrInternalError      = New(CodeInternalError, "internal server error")
	ErrServiceUnavailable = New(CodeServiceUnavailable, "service unavailable")

	ErrSessionNotFound = New(CodeSessionNotFound, "session not found")
	ErrPageNotFound    = New(CodePageNotFound, "page not found")
	ErrTurnNotFound    = New(CodeTurnNotFound, "turn not found")

	ErrIncompletePage   = New(CodeIncompletePage, "Please add both an image and text before saving the page.")
	ErrEmptyBook        = New(CodeEmptyBook, "Please add some pages to your book first!")
	ErrActionInFlight   = New(CodeActionInFlight, "action already in progress")
	ErrChatFailed       = New(CodeChatFailed, "Could not reach assistant")
	ErrImageFailed      = New(CodeImageGenerationFailed, "Image generation failed.")
	ErrExportFailed     = New(CodeExportFailed, "export failed")
	ErrBackendDown      = New(CodeBackendUnavailable, "backend unavailable")
	ErrBackendTripped   = New(CodeBackendCircuitOpen, "backend temporarily unavailable")
	ErrNotInterpretable = New(CodeNotInterpretable, "turn cannot be interpreted")
)

// IsAppError 检查是否为 AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError 将错误转换为 AppError
func AsAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, CodeUnknown, "unknown error")
}

// HasCode 判断错误链中是否包含指定错误码
func HasCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return false
	}
	return appErr.Code == code
}
