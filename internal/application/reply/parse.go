// Package reply 把助手的自由文本回复解析为故事正文与插画提示词。
//
// 解析基于正则启发式，永不报错：格式不符时返回空字段。
package reply

import (
	"regexp"
	"strings"

	"storybook-builder-api/internal/application/storyutil"
)

// MaxIllustrationPromptRunes 宽松模式下插画描述的最大长度
const MaxIllustrationPromptRunes = 400

// minDashSegmentRunes 末尾 --- 片段需超过的长度
const minDashSegmentRunes = 40

var (
	storySection  = regexp.MustCompile(`(?is)Story Text:\s*(.*?)\n\s*Image Prompt:`)
	promptSection = regexp.MustCompile(`(?is)Image Prompt:\s*(.*)`)

	storyNoise  = regexp.MustCompile(`(?i)image|prompt|"`)
	promptNoise = regexp.MustCompile(`(?i)overlay|instruction`)

	quotedBlock       = regexp.MustCompile(`"([^"]{20,})"`)
	illustrationLabel = regexp.MustCompile(`(?is)illustration description[^:]*:(.+)`)
)

// ParsedReply 解析结果
type ParsedReply struct {
	Story       string `json:"story"`
	ImagePrompt string `json:"image_prompt"`
}

// Empty 两个字段均为空
func (p ParsedReply) Empty() bool {
	return p.Story == "" && p.ImagePrompt == ""
}

// ParseAssistantReply 按 "Story Text:" / "Image Prompt:" 两段标签解析回复
func ParseAssistantReply(text string) ParsedReply {
	var out ParsedReply

	if m := storySection.FindStringSubmatch(text); m != nil {
		out.Story = storyutil.DropLines(strings.TrimSpace(m[1]), storyNoise)
	}

	if m := promptSection.FindStringSubmatch(text); m != nil {
		region := m[1]
		out.ImagePrompt = storyutil.DropLines(region, promptNoise)
		if out.ImagePrompt == "" {
			out.ImagePrompt = strings.TrimSpace(region)
		}
	}

	return out
}

// ExtractMainStoryText 从未按标签组织的回复中猜测正文
//
// 依次尝试：首个至少 20 字符的引号块；最后一个 --- 之后超过 40 字符的片段；原文。
func ExtractMainStoryText(text string) string {
	if m := quotedBlock.FindStringSubmatch(text); m != nil {
		return m[1]
	}

	segments := strings.Split(text, "---")
	tail := strings.TrimSpace(segments[len(segments)-1])
	if storyutil.RuneLen(tail) > minDashSegmentRunes {
		return tail
	}

	return text
}

// ExtractIllustrationPrompt 提取 "illustration description...:" 之后的第一行非空内容
func ExtractIllustrationPrompt(text string) (string, bool) {
	m := illustrationLabel.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	line, ok := storyutil.FirstNonEmptyLine(m[1])
	if !ok {
		return "", false
	}
	return storyutil.TruncateByRunes(line, MaxIllustrationPromptRunes), true
}
