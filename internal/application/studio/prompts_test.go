package studio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConsistencyNote(t *testing.T) {
	tests := []struct {
		name      string
		prompts   []string
		pageCount int
		want      string
	}{
		{name: "no pages", want: ""},
		{
			name:      "one entry per page",
			prompts:   []string{"a fox", "a fox in snow"},
			pageCount: 2,
			want:      "Previous images in this book featured: - a fox - a fox in snow\nPlease keep the character(s) and style consistent.",
		},
		{
			name:      "empty prompt keeps its entry",
			prompts:   []string{"a fox", ""},
			pageCount: 2,
			want:      "Previous images in this book featured: - a fox - \nPlease keep the character(s) and style consistent.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConsistencyNote(tt.prompts, tt.pageCount))
		})
	}
}

func TestWithConsistencyNote(t *testing.T) {
	assert.Equal(t, "a fox", WithConsistencyNote("", "a fox"))
	assert.Equal(t, "note\na fox", WithConsistencyNote("note", "a fox"))
}
