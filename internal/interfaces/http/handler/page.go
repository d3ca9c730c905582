package handler

import (
	"github.com/gin-gonic/gin"

	"storybook-builder-api/internal/application/sequencer"
	"storybook-builder-api/internal/application/studio"
	"storybook-builder-api/internal/interfaces/http/dto"
)

// PageHandler 页面确认与排序
type PageHandler struct {
	svc *studio.Service
}

// NewPageHandler 创建页面处理器
func NewPageHandler(svc *studio.Service) *PageHandler {
	return &PageHandler{svc: svc}
}

func bookResponse(b studio.Book) dto.BookResponse {
	return dto.ToBookResponse(b.Pages, b.Board)
}

// ListPages 获取页面
// @Summary 页面规范顺序与可视排列
// @Tags Pages
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 200 {object} dto.Response[dto.BookResponse]
// @Router /v1/sessions/{sid}/pages [get]
func (h *PageHandler) ListPages(c *gin.Context) {
	book, err := h.svc.ListPages(c.Request.Context(), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, bookResponse(book))
}

// SavePage 把预览保存为页面
// @Summary 保存页面
// @Description 预览必须同时有插画与正文；成功后预览被清空
// @Tags Pages
// @Produce json
// @Param sid path string true "会话 ID"
// @Success 201 {object} dto.Response[dto.SavePageResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/pages [post]
func (h *PageHandler) SavePage(c *gin.Context) {
	page, book, err := h.svc.SavePage(c.Request.Context(), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Created(c, &dto.SavePageResponse{
		Page:         dto.ToPageResponse(page),
		BookResponse: bookResponse(book),
	})
}

// RemovePage 删除页面
func (h *PageHandler) RemovePage(c *gin.Context) {
	book, err := h.svc.RemovePage(c.Request.Context(), sessionID(c), c.Param("pid"))
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, bookResponse(book))
}

// BeginDrag 标记拖拽中的页面
func (h *PageHandler) BeginDrag(c *gin.Context) {
	var req dto.DragRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	book, err := h.svc.BeginDrag(c.Request.Context(), sessionID(c), req.PageID)
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, bookResponse(book))
}

// EndDrag 取消拖拽
func (h *PageHandler) EndDrag(c *gin.Context) {
	book, err := h.svc.EndDrag(c.Request.Context(), sessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, bookResponse(book))
}

// DropPage 放置页面
// @Summary 按指针位置放置
// @Description 指针在目标纵向中点之上时插到目标之前，否则之后；id 无法解析时 moved=false
// @Tags Pages
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.DropRequest true "放置事件"
// @Success 200 {object} dto.Response[dto.BookResponse]
// @Router /v1/sessions/{sid}/pages/drop [post]
func (h *PageHandler) DropPage(c *gin.Context) {
	var req dto.DropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, moved, err := h.svc.DropPage(c.Request.Context(), sessionID(c), studio.DropRequest{
		DraggedID: req.DraggedID,
		Target: sequencer.DropTarget{
			TargetID:     req.TargetID,
			PointerY:     req.PointerY,
			TargetTop:    req.TargetTop,
			TargetHeight: req.TargetHeight,
		},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, withMoved(bookResponse(book), moved))
}

// MovePage 指定前后位置移动页面
func (h *PageHandler) MovePage(c *gin.Context) {
	var req dto.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, moved, err := h.svc.MovePage(c.Request.Context(), sessionID(c), req.DraggedID, req.TargetID, req.InsertBefore)
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, withMoved(bookResponse(book), moved))
}

// ReorderPages 整体重排
// @Summary 按完整 id 列表重排
// @Tags Pages
// @Accept json
// @Produce json
// @Param sid path string true "会话 ID"
// @Param body body dto.ReorderRequest true "新顺序"
// @Success 200 {object} dto.Response[dto.BookResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Router /v1/sessions/{sid}/pages/order [put]
func (h *PageHandler) ReorderPages(c *gin.Context) {
	var req dto.ReorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	book, err := h.svc.ReorderPages(c.Request.Context(), sessionID(c), req.PageIDs)
	if err != nil {
		writeError(c, err)
		return
	}
	dto.Success(c, bookResponse(book))
}
