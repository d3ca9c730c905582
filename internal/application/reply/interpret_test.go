package reply

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModeStrict, m)

	m, err = ParseMode(" LOOSE ")
	require.NoError(t, err)
	assert.Equal(t, ModeLoose, m)

	_, err = ParseMode("fuzzy")
	assert.Error(t, err)
}

func TestInterpret_StrictDoesNotFallBack(t *testing.T) {
	text := `The bear said "Let us go find the honey tree together today." Illustration description: a bear and a tree`

	strict := Interpret(text, ModeStrict)
	assert.True(t, strict.Empty())
	assert.Equal(t, "empty", Outcome(strict))

	loose := Interpret(text, ModeLoose)
	assert.Equal(t, "Let us go find the honey tree together today.", loose.Story)
	assert.Equal(t, " a bear and a tree", loose.ImagePrompt)
	assert.Equal(t, "full", Outcome(loose))
}

func TestInterpret_LooseWithoutLabel(t *testing.T) {
	got := Interpret("just a short note", ModeLoose)
	assert.Equal(t, "just a short note", got.Story)
	assert.Empty(t, got.ImagePrompt)
	assert.Equal(t, "partial", Outcome(got))
}
