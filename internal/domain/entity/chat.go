// Package entity 定义领域实体
package entity

import "time"

// Role 对话角色枚举
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// FailedReplyMarker 助手不可达时写入对话记录的占位内容
const FailedReplyMarker = "[Error: Could not reach assistant]"

// ChatTurn 对话记录中的一轮
type ChatTurn struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Failed    bool      `json:"failed,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// NewChatTurn 创建一轮对话
func NewChatTurn(role Role, content string) ChatTurn {
	return ChatTurn{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// NewFailedTurn 创建失败标记轮次，它只用于展示，不会再发给后端
func NewFailedTurn() ChatTurn {
	turn := NewChatTurn(RoleAssistant, FailedReplyMarker)
	turn.Failed = true
	return turn
}

// Interpretable 是否可以作为故事草稿解析
func (t ChatTurn) Interpretable() bool {
	return t.Role == RoleAssistant && !t.Failed
}

// ChatMessage 发往后端的消息
type ChatMessage struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History 返回发往后端的完整历史，失败标记轮次被排除
func History(transcript []ChatTurn) []ChatMessage {
	msgs := make([]ChatMessage, 0, len(transcript))
	for _, t := range transcript {
		if t.Failed {
			continue
		}
		msgs = append(msgs, ChatMessage{Role: t.Role, Content: t.Content})
	}
	return msgs
}
