package export

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/go-pdf/fpdf"

	"storybook-builder-api/internal/domain/entity"
	"storybook-builder-api/pkg/logger"
)

const (
	pdfMarginInch   = 1.0
	pdfTextGapInch  = 0.3
	pdfLineSpacing  = 1.6
	pointsPerInch   = 72.0
	pdfMaxImageFrac = 0.65

	coreFontFamily = "Helvetica"
	utf8FontFamily = "StoryBody"
)

// PDFRenderer 生成 US Letter 纵向、1 英寸页边距的分页 PDF，每页一张插画加正文。
//
// 默认使用内置 Helvetica，正文只能表示 cp1252 字符；
// 通过 WithUTF8Font 注册 TrueType 字体后可输出中日韩文字等任意 Unicode 正文。
type PDFRenderer struct {
	fetcher  ImageFetcher
	fontSize float64
	filename string
	utf8Font []byte
}

// NewPDFRenderer 创建 PDF 渲染器
func NewPDFRenderer(fetcher ImageFetcher, fontSize float64, filename string) *PDFRenderer {
	if fontSize <= 0 {
		fontSize = 18
	}
	if filename == "" {
		filename = "my-storybook.pdf"
	}
	return &PDFRenderer{fetcher: fetcher, fontSize: fontSize, filename: filename}
}

// WithUTF8Font 读取 TrueType 字体文件用于正文，path 为空时保持内置字体
func (r *PDFRenderer) WithUTF8Font(path string) (*PDFRenderer, error) {
	if path == "" {
		return r, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read pdf font: %w", err)
	}
	if len(data) == 0 {
		return nil, errors.New("read pdf font: empty font file " + path)
	}
	r.utf8Font = data
	return r, nil
}

func (r *PDFRenderer) Format() Format { return FormatPDF }

func (r *PDFRenderer) Render(ctx context.Context, pages []entity.Page) (*Document, error) {
	pdf := fpdf.New("P", "in", "Letter", "")
	pdf.SetMargins(pdfMarginInch, pdfMarginInch, pdfMarginInch)
	pdf.SetAutoPageBreak(true, pdfMarginInch)
	pdf.SetTitle("My Storybook", true)

	family, tr := r.bodyFont(pdf)
	if err := pdf.Error(); err != nil {
		return nil, fmt.Errorf("load pdf font: %w", err)
	}
	pageW, pageH := pdf.GetPageSize()
	printableW := pageW - 2*pdfMarginInch
	maxImageH := (pageH - 2*pdfMarginInch) * pdfMaxImageFrac
	lineH := r.fontSize / pointsPerInch * pdfLineSpacing

	for i, p := range pages {
		pdf.AddPage()
		y := pdfMarginInch

		if h, ok := r.placeImage(ctx, pdf, i, p, printableW, maxImageH); ok {
			y += h + pdfTextGapInch
		}

		pdf.SetY(y)
		pdf.SetFont(family, "", r.fontSize)
		pdf.MultiCell(printableW, lineH, tr(p.Text), "", "C", false)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return &Document{
		Format:      FormatPDF,
		ContentType: "application/pdf",
		Filename:    r.filename,
		Body:        buf.Bytes(),
	}, nil
}

// bodyFont 返回正文字体族与文本转换函数
func (r *PDFRenderer) bodyFont(pdf *fpdf.Fpdf) (string, func(string) string) {
	if len(r.utf8Font) > 0 {
		pdf.AddUTF8FontFromBytes(utf8FontFamily, "", r.utf8Font)
		return utf8FontFamily, func(s string) string { return s }
	}
	return coreFontFamily, pdf.UnicodeTranslatorFromDescriptor("")
}

// placeImage 把插画按可打印宽度等比缩放后居中放置，返回占用高度
//
// 图片不可用（过期链接、格式不支持）时跳过图片，页面仍保留正文。
func (r *PDFRenderer) placeImage(ctx context.Context, pdf *fpdf.Fpdf, index int, p entity.Page, maxW, maxH float64) (float64, bool) {
	if r.fetcher == nil || p.Image == "" {
		return 0, false
	}

	data, err := r.fetcher.Fetch(ctx, p.Image)
	if err != nil {
		logger.Warn(ctx, "skip page image in pdf export", "page_id", p.ID, "error", err.Error())
		return 0, false
	}
	imageType, ok := fpdfImageType(data)
	if !ok {
		logger.Warn(ctx, "skip page image with unsupported type", "page_id", p.ID)
		return 0, false
	}

	name := fmt.Sprintf("page-image-%d", index)
	opts := fpdf.ImageOptions{ImageType: imageType, ReadDpi: false}
	info := pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if info == nil || !pdf.Ok() || info.Width() <= 0 {
		logger.Warn(ctx, "skip undecodable page image", "page_id", p.ID)
		pdf.ClearError()
		return 0, false
	}

	w := maxW
	h := w * info.Height() / info.Width()
	if h > maxH {
		h = maxH
		w = h * info.Width() / info.Height()
	}
	x := pdfMarginInch + (maxW-w)/2
	pdf.ImageOptions(name, x, pdfMarginInch, w, h, false, opts, 0, "")
	return h, true
}

// fpdfImageType 按内容嗅探 fpdf 支持的图片类型
func fpdfImageType(data []byte) (string, bool) {
	switch http.DetectContentType(data) {
	case "image/png":
		return "PNG", true
	case "image/jpeg":
		return "JPG", true
	case "image/gif":
		return "GIF", true
	default:
		return "", false
	}
}
