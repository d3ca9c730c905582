// Package storyutil 提供绘本应用层内部共享的文本工具函数。
package storyutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// TruncateByRunes 按 rune 数量截断字符串。
func TruncateByRunes(s string, maxRunes int) string {
	if maxRunes <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	n := 0
	for i := range s {
		if n == maxRunes {
			return s[:i]
		}
		n++
	}
	return s
}

// RuneLen 返回字符串的 rune 数量。
func RuneLen(s string) int {
	return utf8.RuneCountInString(s)
}

// DropLines 按 \n 切行，丢弃匹配 re 的行，其余行以单个空格拼接并 trim。
func DropLines(s string, re *regexp.Regexp) string {
	lines := strings.Split(s, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if re.MatchString(line) {
			continue
		}
		kept = append(kept, line)
	}
	return strings.TrimSpace(strings.Join(kept, " "))
}

// FirstNonEmptyLine 返回第一条长度不为 0 的行（不做 trim）。
func FirstNonEmptyLine(s string) (string, bool) {
	for _, line := range strings.Split(s, "\n") {
		if line != "" {
			return line, true
		}
	}
	return "", false
}

// StripWrappingQuote 去掉开头的一个 " 与结尾的一个 "。
func StripWrappingQuote(s string) string {
	s = strings.TrimPrefix(s, `"`)
	return strings.TrimSuffix(s, `"`)
}
