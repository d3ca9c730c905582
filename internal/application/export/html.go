package export

import (
	"bytes"
	"context"
	"html/template"
	"strings"

	"storybook-builder-api/internal/domain/entity"
)

const bookTemplate = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: 'Inter', sans-serif; background: #f8f8f8; color: #222; margin: 0; padding: 0; }
.book-container { max-width: 900px; margin: 0 auto; padding: 30px 10px; }
.print-btn { display: block; margin: 30px auto 40px auto; background: #1DB954; color: #fff; border: none; border-radius: 8px; padding: 1rem 2.5rem; font-size: 1.2rem; font-weight: 600; cursor: pointer; }
.page { background: #fff; border-radius: 12px; box-shadow: 0 4px 16px rgba(0,0,0,0.08); margin-bottom: 40px; padding: 30px 20px; display: flex; flex-direction: column; align-items: center; page-break-after: always; }
.page img { max-width: 100%; border-radius: 8px; margin-bottom: 18px; }
.page-text { font-size: 1.25rem; line-height: 1.6; text-align: center; }
@media (min-width: 700px) {
  .page img { max-width: 60%; }
  .page-text { max-width: 80%; margin: 0 auto; }
}
@media print { .print-btn { display: none; } }
</style>
</head>
<body>
<div class="book-container">
<button class="print-btn" onclick="window.print()">Print to PDF</button>
{{- range .Pages}}
<div class="page" id="{{.ID}}">
{{- if .Image}}
<img src="{{.Image}}" alt="Book page image">
{{- end}}
<div class="page-text">{{.Text}}</div>
</div>
{{- end}}
</div>
</body>
</html>
`

var bookTmpl = template.Must(template.New("book").Parse(bookTemplate))

type htmlPage struct {
	ID    string
	Image template.URL
	Text  string
}

// HTMLRenderer 生成带打印按钮的可浏览文档
type HTMLRenderer struct {
	title string
}

// NewHTMLRenderer 创建 HTML 渲染器
func NewHTMLRenderer(title string) *HTMLRenderer {
	if title == "" {
		title = "Your Book - Export"
	}
	return &HTMLRenderer{title: title}
}

func (r *HTMLRenderer) Format() Format { return FormatHTML }

func (r *HTMLRenderer) Render(_ context.Context, pages []entity.Page) (*Document, error) {
	view := struct {
		Title string
		Pages []htmlPage
	}{Title: r.title, Pages: make([]htmlPage, 0, len(pages))}

	for _, p := range pages {
		view.Pages = append(view.Pages, htmlPage{ID: p.ID, Image: imageSrc(p.Image), Text: p.Text})
	}

	var buf bytes.Buffer
	if err := bookTmpl.Execute(&buf, view); err != nil {
		return nil, err
	}
	return &Document{
		Format:      FormatHTML,
		ContentType: "text/html; charset=utf-8",
		Body:        buf.Bytes(),
	}, nil
}

// imageSrc 只放行 http(s) 与 data:image 地址，其余替换为空
func imageSrc(src string) template.URL {
	lower := strings.ToLower(strings.TrimSpace(src))
	switch {
	case strings.HasPrefix(lower, "https://"), strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "data:image/"):
		return template.URL(strings.TrimSpace(src))
	default:
		return ""
	}
}
