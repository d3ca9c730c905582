package dto

import (
	"time"

	"storybook-builder-api/internal/domain/entity"
)

// TurnResponse 对话轮次
type TurnResponse struct {
	Index     int    `json:"index"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Failed    bool   `json:"failed,omitempty"`
	CreatedAt string `json:"created_at"`
}

// PreviewResponse 待确认页草稿
type PreviewResponse struct {
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
	ImageURL    string `json:"image_url"`
}

// PageResponse 已确认页面
type PageResponse struct {
	ID          string `json:"id"`
	Image       string `json:"image"`
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt,omitempty"`
}

// BoardElementResponse 排版面板上的可视元素
type BoardElementResponse struct {
	ID        string `json:"id"`
	ImageSrc  string `json:"image_src"`
	Text      string `json:"text"`
	Draggable bool   `json:"draggable"`
	Dragging  bool   `json:"dragging"`
}

// BookResponse 页面规范顺序与可视排列
type BookResponse struct {
	Pages []*PageResponse         `json:"pages"`
	Board []*BoardElementResponse `json:"board"`
	// Moved 仅在移动类请求中返回
	Moved *bool `json:"moved,omitempty"`
}

// SessionResponse 会话完整视图
type SessionResponse struct {
	ID         string          `json:"id"`
	Transcript []*TurnResponse `json:"transcript"`
	// Placeholder 对话为空时展示的提示语
	Placeholder string          `json:"placeholder,omitempty"`
	Preview     PreviewResponse `json:"preview"`
	BookResponse
	// Pending 尚未完成的后端请求（chat/grammar/style/image）
	Pending   []string `json:"pending"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

// TranscriptResponse 对话记录
type TranscriptResponse struct {
	Turns       []*TurnResponse `json:"turns"`
	Placeholder string          `json:"placeholder,omitempty"`
	Pending     []string        `json:"pending"`
}

// SendMessageRequest 发送消息请求
type SendMessageRequest struct {
	Message string `json:"message" binding:"required"`
}

// InterpretTurnRequest 解析对话轮次请求，body 可省略
type InterpretTurnRequest struct {
	Mode string `json:"mode"`
}

// InterpretTextRequest 无状态解析请求
type InterpretTextRequest struct {
	Text string `json:"text" binding:"required"`
	Mode string `json:"mode"`
}

// InterpretResponse 解析结果
type InterpretResponse struct {
	Story       string           `json:"story"`
	ImagePrompt string           `json:"image_prompt"`
	Outcome     string           `json:"outcome"`
	Preview     *PreviewResponse `json:"preview,omitempty"`
}

// UpdatePreviewRequest 预览部分更新，缺省字段不修改
type UpdatePreviewRequest struct {
	Text        *string `json:"text"`
	ImagePrompt *string `json:"image_prompt"`
}

// GenerateImageRequest 插画生成请求
type GenerateImageRequest struct {
	Prompt      string `json:"prompt"`
	OverlayText bool   `json:"overlay_text"`
}

// SavePageResponse 保存页面结果
type SavePageResponse struct {
	Page *PageResponse `json:"page"`
	BookResponse
}

// DragRequest 开始拖拽
type DragRequest struct {
	PageID string `json:"page_id" binding:"required"`
}

// DropRequest 放置事件；dragged_id 为空时使用已开始拖拽的页面
type DropRequest struct {
	DraggedID    string  `json:"dragged_id"`
	TargetID     string  `json:"target_id"`
	PointerY     float64 `json:"pointer_y"`
	TargetTop    float64 `json:"target_top"`
	TargetHeight float64 `json:"target_height"`
}

// MoveRequest 直接指定前后位置的移动
type MoveRequest struct {
	DraggedID    string `json:"dragged_id" binding:"required"`
	TargetID     string `json:"target_id"`
	InsertBefore bool   `json:"insert_before"`
}

// ReorderRequest 整体重排
type ReorderRequest struct {
	PageIDs []string `json:"page_ids" binding:"required"`
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// ToTurnResponses 转换对话记录
func ToTurnResponses(turns []entity.ChatTurn) []*TurnResponse {
	out := make([]*TurnResponse, 0, len(turns))
	for i, t := range turns {
		out = append(out, &TurnResponse{
			Index:     i,
			Role:      string(t.Role),
			Content:   t.Content,
			Failed:    t.Failed,
			CreatedAt: formatTime(t.CreatedAt),
		})
	}
	return out
}

// ToPreviewResponse 转换预览
func ToPreviewResponse(p entity.Preview) PreviewResponse {
	return PreviewResponse{
		Text:        p.Text,
		ImagePrompt: p.ImagePrompt,
		ImageURL:    p.ImageURL,
	}
}

// ToPageResponse 转换页面
func ToPageResponse(p entity.Page) *PageResponse {
	return &PageResponse{
		ID:          p.ID,
		Image:       p.Image,
		Text:        p.Text,
		ImagePrompt: p.ImagePrompt,
	}
}

// ToBookResponse 转换页面顺序与可视排列
func ToBookResponse(pages []entity.Page, board []entity.BoardElement) BookResponse {
	out := BookResponse{
		Pages: make([]*PageResponse, 0, len(pages)),
		Board: make([]*BoardElementResponse, 0, len(board)),
	}
	for _, p := range pages {
		out.Pages = append(out.Pages, ToPageResponse(p))
	}
	for _, el := range board {
		out.Board = append(out.Board, &BoardElementResponse{
			ID:        el.ID,
			ImageSrc:  el.ImageSrc,
			Text:      el.Text,
			Draggable: el.Draggable,
			Dragging:  el.Dragging,
		})
	}
	return out
}

// ToSessionResponse 转换会话；placeholder 仅在对话为空时返回
func ToSessionResponse(s *entity.Session, pending []string, placeholder string) *SessionResponse {
	resp := &SessionResponse{
		ID:           s.ID,
		Transcript:   ToTurnResponses(s.Transcript),
		Preview:      ToPreviewResponse(s.Preview),
		BookResponse: ToBookResponse(s.Pages, s.Board),
		Pending:      pending,
		CreatedAt:    formatTime(s.CreatedAt),
		UpdatedAt:    formatTime(s.UpdatedAt),
	}
	if len(s.Transcript) == 0 {
		resp.Placeholder = placeholder
	}
	if resp.Pending == nil {
		resp.Pending = []string{}
	}
	return resp
}
