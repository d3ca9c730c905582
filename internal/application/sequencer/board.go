package sequencer

import (
	"slices"

	"storybook-builder-api/internal/domain/entity"
)

// Board 页面的可视排列，是页面顺序的唯一事实来源
type Board interface {
	// Elements 自上而下返回元素副本
	Elements() []entity.BoardElement
	Has(id string) bool
	// Add 追加到末尾
	Add(el entity.BoardElement)
	// Move 把 draggedID 移到 targetID 之前或之后；targetID 为空时移到末尾
	Move(draggedID, targetID string, before bool) bool
	Remove(id string) bool
	// SetDragging 标记正在拖拽的元素，其余元素的标记被清除；id 为空时全部清除
	SetDragging(id string) bool
	// Dragging 返回当前被标记的元素 id
	Dragging() (string, bool)
}

// MemoryBoard 基于切片的 Board 实现
type MemoryBoard struct {
	elements []entity.BoardElement
}

// NewMemoryBoard 以已有元素初始化
func NewMemoryBoard(elements []entity.BoardElement) *MemoryBoard {
	return &MemoryBoard{elements: slices.Clone(elements)}
}

func (b *MemoryBoard) Elements() []entity.BoardElement {
	out := slices.Clone(b.elements)
	if out == nil {
		out = []entity.BoardElement{}
	}
	return out
}

func (b *MemoryBoard) Has(id string) bool {
	return b.indexOf(id) >= 0
}

func (b *MemoryBoard) Add(el entity.BoardElement) {
	b.elements = append(b.elements, el)
}

func (b *MemoryBoard) Move(draggedID, targetID string, before bool) bool {
	from := b.indexOf(draggedID)
	if from < 0 || draggedID == targetID {
		return false
	}
	if targetID != "" && b.indexOf(targetID) < 0 {
		return false
	}

	el := b.elements[from]
	b.elements = slices.Delete(b.elements, from, from+1)

	if targetID == "" {
		b.elements = append(b.elements, el)
		return true
	}

	to := b.indexOf(targetID)
	if !before {
		to++
	}
	b.elements = slices.Insert(b.elements, to, el)
	return true
}

func (b *MemoryBoard) Remove(id string) bool {
	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	b.elements = slices.Delete(b.elements, i, i+1)
	return true
}

func (b *MemoryBoard) SetDragging(id string) bool {
	if id != "" && b.indexOf(id) < 0 {
		return false
	}
	for i := range b.elements {
		b.elements[i].Dragging = b.elements[i].ID == id
	}
	return true
}

func (b *MemoryBoard) Dragging() (string, bool) {
	for _, el := range b.elements {
		if el.Dragging {
			return el.ID, true
		}
	}
	return "", false
}

func (b *MemoryBoard) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(b.elements, func(el entity.BoardElement) bool { return el.ID == id })
}
