// Package export 把绘本页面按规范顺序渲染为可打印的 HTML 或分页 PDF。
package export

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storybook-builder-api/internal/domain/entity"
)

// Format 导出格式
type Format string

const (
	FormatHTML Format = "html"
	FormatPDF  Format = "pdf"
)

var (
	// ErrEmptyBook 没有任何页面
	ErrEmptyBook = errors.New("book has no pages")
	// ErrUnsupportedFormat 未注册的导出格式
	ErrUnsupportedFormat = errors.New("unsupported export format")
)

// ParseFormat 解析格式字符串，空串视为 html
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatHTML:
		return FormatHTML, nil
	case FormatPDF:
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// Document 渲染结果
type Document struct {
	Format      Format
	ContentType string
	// Filename 非空时作为附件下载
	Filename string
	Body     []byte
}

// Renderer 单一格式的渲染器，页面以不透明的 {image, text} 对使用
type Renderer interface {
	Format() Format
	Render(ctx context.Context, pages []entity.Page) (*Document, error)
}

// Registry 按格式分发渲染
type Registry struct {
	renderers map[Format]Renderer
}

// NewRegistry 创建渲染器注册表
func NewRegistry(renderers ...Renderer) *Registry {
	r := &Registry{renderers: make(map[Format]Renderer, len(renderers))}
	for _, rd := range renderers {
		r.renderers[rd.Format()] = rd
	}
	return r
}

// Render 渲染指定格式，页面为空时返回 ErrEmptyBook
func (r *Registry) Render(ctx context.Context, format Format, pages []entity.Page) (*Document, error) {
	if len(pages) == 0 {
		return nil, ErrEmptyBook
	}
	rd, ok := r.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return rd.Render(ctx, pages)
}
