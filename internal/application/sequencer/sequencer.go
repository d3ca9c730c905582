// Package sequencer 维护绘本页面的有序集合，并与拖拽产生的可视排列保持一致。
//
// 顺序以可视排列为准：每次移动之后，页面序列都从排列自上而下重新推导，
// 而不是在页面切片上做增量拼接。
package sequencer

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/google/uuid"

	"storybook-builder-api/internal/application/storyutil"
	"storybook-builder-api/internal/domain/entity"
)

// PageIDPrefix 页面 id 前缀
const PageIDPrefix = "page-"

var (
	// ErrIncompletePage 图片或正文缺失
	ErrIncompletePage = errors.New("page requires both an image and text")
	// ErrDuplicatePage 页面 id 已存在
	ErrDuplicatePage = errors.New("page already exists")
	// ErrInvalidOrder 整体排序请求不是当前页面的一个排列
	ErrInvalidOrder = errors.New("order must list every page exactly once")
)

// NewPage 规范化正文并构造页面
//
// 正文先 trim，再去掉开头与结尾各一个双引号；规范化前后为空都会被拒绝。
func NewPage(image, text, imagePrompt string) (entity.Page, error) {
	image = strings.TrimSpace(image)
	if image == "" || strings.TrimSpace(text) == "" {
		return entity.Page{}, ErrIncompletePage
	}

	text = storyutil.StripWrappingQuote(strings.TrimSpace(text))
	if text == "" {
		return entity.Page{}, ErrIncompletePage
	}

	return entity.Page{
		ID:          PageIDPrefix + uuid.NewString(),
		Image:       image,
		Text:        text,
		ImagePrompt: strings.TrimSpace(imagePrompt),
	}, nil
}

// Sequencer 页面序列与可视排列
type Sequencer struct {
	pages []entity.Page
	board Board
}

// New 以会话中已有的页面与排列构造
func New(pages []entity.Page, board Board) *Sequencer {
	if board == nil {
		board = NewMemoryBoard(nil)
	}
	return &Sequencer{
		pages: slices.Clone(pages),
		board: board,
	}
}

// Board 返回可视排列
func (s *Sequencer) Board() Board {
	return s.board
}

// Append 数据步骤：校验并追加到序列末尾，返回更新后的顺序
//
// 调用方需紧接着调用 Sync，使可视排列登记新页面。
func (s *Sequencer) Append(p entity.Page) ([]entity.Page, error) {
	if p.Image == "" || p.Text == "" {
		return nil, ErrIncompletePage
	}
	if slices.ContainsFunc(s.pages, func(existing entity.Page) bool { return existing.ID == p.ID }) {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePage, p.ID)
	}

	s.pages = append(s.pages, p)
	return s.CanonicalOrder(), nil
}

// Sync 可视步骤：为尚无元素的页面在排列末尾创建可拖拽元素，可重复调用
func (s *Sequencer) Sync() int {
	added := 0
	for _, p := range s.pages {
		if s.board.Has(p.ID) {
			continue
		}
		s.board.Add(entity.ElementFor(p))
		added++
	}
	return added
}

// Reorder 把 draggedID 移到 targetID 之前或之后，targetID 为空表示放到容器上（移到末尾）
//
// 任一 id 无法解析时不做任何修改。返回值表示是否发生了移动。
func (s *Sequencer) Reorder(draggedID, targetID string, insertBefore bool) ([]entity.Page, bool) {
	if !s.board.Move(draggedID, targetID, insertBefore) {
		return s.CanonicalOrder(), false
	}
	s.rederive()
	return s.CanonicalOrder(), true
}

// Arrange 按给定 id 顺序整体重排，ids 必须恰好覆盖当前全部页面
func (s *Sequencer) Arrange(ids []string) ([]entity.Page, error) {
	if len(ids) != len(s.pages) {
		return nil, ErrInvalidOrder
	}
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || !s.board.Has(id) {
			return nil, ErrInvalidOrder
		}
		seen[id] = struct{}{}
	}

	// 依次放到容器上，最终顺序即 ids 顺序
	for _, id := range ids {
		s.board.Move(id, "", false)
	}
	s.rederive()
	return s.CanonicalOrder(), nil
}

// Remove 同时从排列与序列中移除页面
func (s *Sequencer) Remove(id string) ([]entity.Page, bool) {
	if !s.board.Remove(id) {
		return s.CanonicalOrder(), false
	}
	s.rederive()
	return s.CanonicalOrder(), true
}

// CanonicalOrder 当前序列的副本，导出只使用这个顺序
func (s *Sequencer) CanonicalOrder() []entity.Page {
	out := slices.Clone(s.pages)
	if out == nil {
		out = []entity.Page{}
	}
	return out
}

// rederive 自上而下遍历排列重建页面序列
func (s *Sequencer) rederive() {
	elements := s.board.Elements()
	pages := make([]entity.Page, 0, len(elements))
	for _, el := range elements {
		pages = append(pages, el.Page())
	}
	s.pages = pages
}
