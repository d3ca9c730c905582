package entity

import (
	"slices"
	"time"
)

// Preview 当前待确认页的草稿
type Preview struct {
	Text        string `json:"text"`
	ImagePrompt string `json:"image_prompt"`
	ImageURL    string `json:"image_url"`
	// ImageSourcePrompt 生成当前预览图时使用的提示词
	ImageSourcePrompt string `json:"image_source_prompt,omitempty"`
}

// Clear 清空草稿
func (p *Preview) Clear() {
	*p = Preview{}
}

// Session 一次绘本创作会话
type Session struct {
	ID         string         `json:"id"`
	Transcript []ChatTurn     `json:"transcript"`
	Preview    Preview        `json:"preview"`
	Pages      []Page         `json:"pages"`
	Board      []BoardElement `json:"board"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// NewSession 创建空会话
func NewSession(id string) *Session {
	now := time.Now()
	return &Session{
		ID:         id,
		Transcript: []ChatTurn{},
		Pages:      []Page{},
		Board:      []BoardElement{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// Touch 更新修改时间
func (s *Session) Touch() {
	s.UpdatedAt = time.Now()
}

// Clone 深拷贝会话，用于在锁外持有快照
func (s *Session) Clone() *Session {
	cp := *s
	cp.Transcript = slices.Clone(s.Transcript)
	cp.Pages = slices.Clone(s.Pages)
	cp.Board = slices.Clone(s.Board)
	return &cp
}
