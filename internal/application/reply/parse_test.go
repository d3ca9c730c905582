package reply

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAssistantReply(t *testing.T) {
	cases := []struct {
		name   string
		text   string
		story  string
		prompt string
	}{
		{
			name:   "well formed",
			text:   "Story Text:\nBenny the bear found a shiny red balloon.\nImage Prompt:\nA small brown bear holding a red balloon in a meadow",
			story:  "Benny the bear found a shiny red balloon.",
			prompt: "A small brown bear holding a red balloon in a meadow",
		},
		{
			name:   "case insensitive markers",
			text:   "story text: Mia sailed away.\nIMAGE PROMPT: a girl on a paper boat",
			story:  "Mia sailed away.",
			prompt: "a girl on a paper boat",
		},
		{
			name:   "multi line story joined with spaces",
			text:   "Story Text:\nLine one.\nLine two.\n\nImage Prompt:\nA fox",
			story:  "Line one. Line two.",
			prompt: "A fox",
		},
		{
			name:   "story lines with leakage dropped",
			text:   "Story Text:\nThe owl hooted.\nHere is the image prompt you asked for\n\"Quoted aside\"\nThe moon rose.\nImage Prompt:\nAn owl under the moon",
			story:  "The owl hooted. The moon rose.",
			prompt: "An owl under the moon",
		},
		{
			name:   "prompt lines with overlay dropped",
			text:   "Story Text:\nA frog jumped.\nImage Prompt:\nA green frog mid-jump\nOverlay the text in a fun font\nFollow these instructions carefully\nwatercolor style",
			story:  "A frog jumped.",
			prompt: "A green frog mid-jump watercolor style",
		},
		{
			name:   "prompt filtered to nothing falls back to raw region",
			text:   "Story Text:\nA frog jumped.\nImage Prompt:\n  Overlay text: A frog  \n",
			story:  "A frog jumped.",
			prompt: "Overlay text: A frog",
		},
		{
			name:   "missing story marker",
			text:   "Here you go!\nImage Prompt: a cat",
			story:  "",
			prompt: "a cat",
		},
		{
			name:   "missing prompt marker",
			text:   "Story Text:\nA cat napped in the sun.",
			story:  "",
			prompt: "",
		},
		{
			name:   "markers on the same line yield no story",
			text:   "Story Text: a cat Image Prompt: a dog",
			story:  "",
			prompt: "a dog",
		},
		{
			name:   "empty story section",
			text:   "Story Text:\n\nImage Prompt:\nA tree",
			story:  "",
			prompt: "A tree",
		},
		{
			name:   "empty prompt section",
			text:   "Story Text:\nA tree grew.\nImage Prompt:   \n  ",
			story:  "A tree grew.",
			prompt: "",
		},
		{
			name:   "prompt region runs to end of text",
			text:   "Story Text:\nA hen.\nImage Prompt: one\nImage Prompt: two",
			story:  "A hen.",
			prompt: "one Image Prompt: two",
		},
		{
			name:   "empty input",
			text:   "",
			story:  "",
			prompt: "",
		},
		{
			name:   "crlf line endings",
			text:   "Story Text:\r\nA duck swam.\r\nImage Prompt:\r\nA yellow duck",
			story:  "A duck swam.",
			prompt: "A yellow duck",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseAssistantReply(tc.text)
			assert.Equal(t, tc.story, got.Story)
			assert.Equal(t, tc.prompt, got.ImagePrompt)
		})
	}
}

func TestParseAssistantReply_RoundTrip(t *testing.T) {
	stories := []string{
		"Once upon a time a rabbit lived in a hole.",
		"  Padded story with spaces.  ",
		"Ünïcode stôry with émojis 🐰",
	}
	prompts := []string{
		"A rabbit in a cozy burrow, soft pastel colors",
		"  trailing and leading whitespace  ",
		"A castle\nwith towers",
	}

	for _, s := range stories {
		for _, p := range prompts {
			got := ParseAssistantReply("Story Text:\n" + s + "\nImage Prompt:\n" + p)
			assert.Equal(t, strings.TrimSpace(s), got.Story)
			assert.Equal(t, strings.Join(strings.Fields(strings.ReplaceAll(strings.TrimSpace(p), "\n", " ")), " "), got.ImagePrompt)
		}
	}
}

func TestParseAssistantReply_PromptNeverEmptyWhenContentPresent(t *testing.T) {
	inputs := []string{
		"Image Prompt: overlay",
		"Image Prompt:\nINSTRUCTION one\noverlay two",
		"Story Text:\nx\nImage Prompt:\nOverlay",
	}
	for _, in := range inputs {
		assert.NotEmpty(t, ParseAssistantReply(in).ImagePrompt, in)
	}
}

func TestParseAssistantReply_NeverPanics(t *testing.T) {
	inputs := []string{
		"Story Text:",
		"Image Prompt:",
		"Story Text:Image Prompt:",
		"\n\n\n",
		"\"\"\"",
		"Story Text:\nImage Prompt:\nStory Text:\nImage Prompt:",
		string([]byte{0xff, 0xfe, 0xfd}),
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { ParseAssistantReply(in) }, in)
	}
}

func TestExtractMainStoryText(t *testing.T) {
	cases := []struct {
		name string
		text string
		want string
	}{
		{
			name: "quoted block",
			text: `He said "This is a long enough quoted passage right here."`,
			want: "This is a long enough quoted passage right here.",
		},
		{
			name: "trailing dash segment",
			text: "intro --- This trailing segment is definitely more than forty characters long.",
			want: "This trailing segment is definitely more than forty characters long.",
		},
		{
			name: "short quote ignored",
			text: `A "short" quote --- and a tail that is comfortably longer than forty characters`,
			want: "and a tail that is comfortably longer than forty characters",
		},
		{
			name: "first quoted run wins",
			text: `"First quoted run of enough length." then "Second quoted run of enough length."`,
			want: "First quoted run of enough length.",
		},
		{
			name: "quoted run may span lines",
			text: "\"The kitten purred\nand fell asleep softly\"",
			want: "The kitten purred\nand fell asleep softly",
		},
		{
			name: "short tail returns input unchanged",
			text: "intro --- short tail",
			want: "intro --- short tail",
		},
		{
			name: "exactly forty characters is not enough",
			text: "x ---" + strings.Repeat("a", 40),
			want: "x ---" + strings.Repeat("a", 40),
		},
		{
			name: "no separator and long text returns trimmed whole",
			text: "  " + strings.Repeat("b", 41) + "  ",
			want: strings.Repeat("b", 41),
		},
		{
			name: "empty",
			text: "",
			want: "",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractMainStoryText(tc.text))
		})
	}
}

func TestExtractIllustrationPrompt(t *testing.T) {
	t.Run("label absent", func(t *testing.T) {
		_, ok := ExtractIllustrationPrompt("no label here: at all")
		assert.False(t, ok)
	})

	t.Run("first line after label", func(t *testing.T) {
		got, ok := ExtractIllustrationPrompt("Illustration Description for page 1:\n\nA fox in the snow\nSecond line")
		assert.True(t, ok)
		assert.Equal(t, "A fox in the snow", got)
	})

	t.Run("same line content keeps leading space", func(t *testing.T) {
		got, ok := ExtractIllustrationPrompt("illustration description: A whale")
		assert.True(t, ok)
		assert.Equal(t, " A whale", got)
	})

	t.Run("truncated to 400 runes", func(t *testing.T) {
		long := strings.Repeat("é", 450)
		got, ok := ExtractIllustrationPrompt("Illustration description:" + long)
		assert.True(t, ok)
		assert.Equal(t, strings.Repeat("é", MaxIllustrationPromptRunes), got)
	})

	t.Run("nothing but blank lines", func(t *testing.T) {
		_, ok := ExtractIllustrationPrompt("Illustration description:\n\n")
		assert.False(t, ok)
	})
}
