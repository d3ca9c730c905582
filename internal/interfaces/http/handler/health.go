package handler

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// Checker 就绪检查项
type Checker interface {
	HealthCheck(ctx context.Context) error
}

// CheckerFunc 函数形式的 Checker
type CheckerFunc func(ctx context.Context) error

// HealthCheck 实现 Checker
func (f CheckerFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version  string
	required map[string]Checker
	optional map[string]Checker
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:  version,
		required: make(map[string]Checker),
		optional: make(map[string]Checker),
	}
}

// Require 注册必需检查项，失败时不就绪
func (h *HealthHandler) Require(name string, c Checker) *HealthHandler {
	if c != nil {
		h.required[name] = c
	}
	return h
}

// Observe 注册可选检查项，失败时仅标记 degraded
func (h *HealthHandler) Observe(name string, c Checker) *HealthHandler {
	if c != nil {
		h.optional[name] = c
	}
	return h
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

type readinessCheck struct {
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
	LatencyMs int64  `json:"latency_ms"`
}

type readinessResponse struct {
	Status string                     `json:"status"`
	Checks map[string]*readinessCheck `json:"checks,omitempty"`
}

// Health 健康检查接口
// @Summary 健康检查
// @Description 检查服务健康状态
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Ready 就绪检查接口
// @Summary 就绪检查
// @Description 检查服务是否可以接收流量
// @Tags System
// @Produce json
// @Success 200 {object} readinessResponse
// @Failure 503 {object} readinessResponse
// @Router /ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]*readinessCheck, len(h.required)+len(h.optional))
	ready := true

	for _, name := range sortedKeys(h.required) {
		res := run(ctx, h.required[name])
		if res.Error != "" {
			res.Status = "error"
			ready = false
		}
		checks[name] = res
	}
	for _, name := range sortedKeys(h.optional) {
		res := run(ctx, h.optional[name])
		if res.Error != "" {
			res.Status = "degraded"
		}
		checks[name] = res
	}

	resp := readinessResponse{Status: "ok", Checks: checks}
	if !ready {
		resp.Status = "not_ready"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Live 存活检查接口
// @Summary 存活检查
// @Tags System
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

func run(ctx context.Context, c Checker) *readinessCheck {
	start := time.Now()
	err := c.HealthCheck(ctx)
	res := &readinessCheck{Status: "ok", LatencyMs: time.Since(start).Milliseconds()}
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func sortedKeys(m map[string]Checker) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
