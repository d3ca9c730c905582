package sequencer

import "storybook-builder-api/internal/domain/entity"

// DropEffect 拖拽经过目标时提示的放置效果
const DropEffect = "move"

// DropTarget 一次放置事件
//
// TargetID 为空表示放在容器本身上。坐标与目标元素包围盒使用同一坐标系。
type DropTarget struct {
	TargetID     string  `json:"target_id"`
	PointerY     float64 `json:"pointer_y"`
	TargetTop    float64 `json:"target_top"`
	TargetHeight float64 `json:"target_height"`
}

// InsertBefore 指针位于目标包围盒纵向中点之上时放在目标之前
func (t DropTarget) InsertBefore() bool {
	return t.PointerY < t.TargetTop+t.TargetHeight/2
}

// BeginDrag 记录被拖拽的元素并做可视标记
func (s *Sequencer) BeginDrag(id string) bool {
	if id == "" {
		return false
	}
	return s.board.SetDragging(id)
}

// DragOver 经过放置目标时调用，返回应提示的放置效果
func (s *Sequencer) DragOver() string {
	return DropEffect
}

// Drop 把当前拖拽中的元素放到目标处并重新推导顺序
//
// 没有拖拽中的元素或目标无法解析时不做修改。
func (s *Sequencer) Drop(target DropTarget) ([]entity.Page, bool) {
	dragged, ok := s.board.Dragging()
	if !ok {
		return s.CanonicalOrder(), false
	}
	return s.Reorder(dragged, target.TargetID, target.InsertBefore())
}

// EndDrag 清除拖拽标记
func (s *Sequencer) EndDrag() {
	s.board.SetDragging("")
}
