package studio

import "strings"

const (
	// GrammarSystemPrompt 语法修正的系统提示词
	GrammarSystemPrompt = "You are a helpful editor. Correct the grammar and spelling of the following text, but do not change its meaning or style."
	// StyleSystemPrompt 改写风格的系统提示词
	StyleSystemPrompt = "You are a creative writing assistant. Rewrite the following story text in a different style (e.g., more poetic, more playful, or more descriptive), but keep the meaning."
)

// ConsistencyNote 汇总已有页面的插画提示词，提醒模型保持角色与画风一致
//
// 没有已保存页面时返回空串。每个页面都占一项，提示词为空时保留 "- " 占位。
func ConsistencyNote(previousPrompts []string, pageCount int) string {
	if pageCount == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Previous images in this book featured:")
	for _, p := range previousPrompts {
		b.WriteString(" - ")
		b.WriteString(p)
	}
	b.WriteString("\nPlease keep the character(s) and style consistent.")
	return b.String()
}

// WithConsistencyNote 在提示词前加上一致性说明
func WithConsistencyNote(note, prompt string) string {
	if note == "" {
		return prompt
	}
	return note + "\n" + prompt
}

// OverlayPrompt 要求插画中直接排入正文
func OverlayPrompt(basePrompt, storyText string) string {
	return basePrompt + "\n\nPlease create a beautiful, storybook-style illustration. Overlay the following text on the image in a clear, child-friendly font: \"" +
		storyText + "\". The text should be easy to read and integrated into the scene if possible."
}
