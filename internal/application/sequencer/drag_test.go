package sequencer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDropTarget_InsertBefore(t *testing.T) {
	box := DropTarget{TargetID: "a", TargetTop: 100, TargetHeight: 50}

	box.PointerY = 110
	assert.True(t, box.InsertBefore())

	box.PointerY = 125
	assert.False(t, box.InsertBefore(), "midpoint lands after")

	box.PointerY = 149
	assert.False(t, box.InsertBefore())
}

func TestDragProtocol(t *testing.T) {
	s := newSequencer(t, "a", "b", "c")

	require.True(t, s.BeginDrag("c"))
	dragged, ok := s.Board().Dragging()
	require.True(t, ok)
	assert.Equal(t, "c", dragged)

	assert.Equal(t, "move", s.DragOver())

	order, moved := s.Drop(DropTarget{TargetID: "a", PointerY: 5, TargetTop: 0, TargetHeight: 40})
	assert.True(t, moved)
	assert.Equal(t, []string{"c", "a", "b"}, ids(order))

	s.EndDrag()
	_, ok = s.Board().Dragging()
	assert.False(t, ok)
	for _, el := range s.Board().Elements() {
		assert.False(t, el.Dragging)
	}
}

func TestDrop_LowerHalfLandsAfter(t *testing.T) {
	s := newSequencer(t, "a", "b", "c")
	require.True(t, s.BeginDrag("a"))

	order, moved := s.Drop(DropTarget{TargetID: "b", PointerY: 130, TargetTop: 100, TargetHeight: 40})
	assert.True(t, moved)
	assert.Equal(t, []string{"b", "a", "c"}, ids(order))
}

func TestDrop_OnContainerAppends(t *testing.T) {
	s := newSequencer(t, "a", "b", "c")
	require.True(t, s.BeginDrag("a"))

	order, moved := s.Drop(DropTarget{})
	assert.True(t, moved)
	assert.Equal(t, []string{"b", "c", "a"}, ids(order))
}

func TestDrop_WithoutDragIsNoop(t *testing.T) {
	s := newSequencer(t, "a", "b")

	order, moved := s.Drop(DropTarget{TargetID: "a"})
	assert.False(t, moved)
	assert.Equal(t, []string{"a", "b"}, ids(order))
}

func TestBeginDrag_UnknownElement(t *testing.T) {
	s := newSequencer(t, "a", "b")

	assert.False(t, s.BeginDrag("zzz"))
	assert.False(t, s.BeginDrag(""))
	_, ok := s.Board().Dragging()
	assert.False(t, ok)
}

func TestBeginDrag_MovesMarkBetweenElements(t *testing.T) {
	s := newSequencer(t, "a", "b")
	require.True(t, s.BeginDrag("a"))
	require.True(t, s.BeginDrag("b"))

	marked := 0
	for _, el := range s.Board().Elements() {
		if el.Dragging {
			marked++
			assert.Equal(t, "b", el.ID)
		}
	}
	assert.Equal(t, 1, marked)
}

func TestDrop_KeepsDraggingMarkOnMovedElement(t *testing.T) {
	s := newSequencer(t, "a", "b")
	require.True(t, s.BeginDrag("a"))
	_, moved := s.Drop(DropTarget{})
	require.True(t, moved)

	dragged, ok := s.Board().Dragging()
	assert.True(t, ok)
	assert.Equal(t, "a", dragged)
}
