package dto

// ChatMessage gateway /chat 的单条消息
type ChatMessage struct {
	Role    string `json:"role" binding:"required,oneof=system user assistant"`
	Content string `json:"content"`
}

// ChatRequest POST /chat 请求体
type ChatRequest struct {
	Messages []ChatMessage `json:"messages" binding:"required,dive"`
}

// ChatResponse POST /chat 响应体
type ChatResponse struct {
	Reply string `json:"reply"`
}

// ImageRequest POST /generate-image 请求体
type ImageRequest struct {
	Prompt string `json:"prompt" binding:"required"`
}

// ImageResponse POST /generate-image 响应体
type ImageResponse struct {
	ImageURL string `json:"image_url"`
}

// DetailError gateway 错误响应体
type DetailError struct {
	Detail string `json:"detail"`
}
