package reply

import (
	"fmt"
	"strings"
)

// Mode 解析模式
type Mode string

const (
	// ModeStrict 要求 "Story Text:" / "Image Prompt:" 标签
	ModeStrict Mode = "strict"
	// ModeLoose 回复未按约定格式时的启发式提取
	ModeLoose Mode = "loose"
)

// ParseMode 解析模式字符串，空串视为 strict
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeStrict:
		return ModeStrict, nil
	case ModeLoose:
		return ModeLoose, nil
	default:
		return "", fmt.Errorf("unknown interpret mode %q", s)
	}
}

// Interpret 按模式解析回复。两种模式之间没有自动回退。
func Interpret(text string, mode Mode) ParsedReply {
	if mode != ModeLoose {
		return ParseAssistantReply(text)
	}

	prompt, _ := ExtractIllustrationPrompt(text)
	return ParsedReply{
		Story:       ExtractMainStoryText(text),
		ImagePrompt: prompt,
	}
}

// Outcome 解析结果分类，用于指标
func Outcome(p ParsedReply) string {
	switch {
	case p.Story != "" && p.ImagePrompt != "":
		return "full"
	case p.Empty():
		return "empty"
	default:
		return "partial"
	}
}
