package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("STORYBOOK_TEST_HOST", "redis.internal")

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"set variable", "host: ${STORYBOOK_TEST_HOST}", "host: redis.internal"},
		{"set variable ignores default", "host: ${STORYBOOK_TEST_HOST:localhost}", "host: redis.internal"},
		{"unset uses default", "port: ${STORYBOOK_TEST_UNSET:6379}", "port: 6379"},
		{"unset empty default", "key: ${STORYBOOK_TEST_UNSET:}", "key: "},
		{"unset without default kept", "key: ${STORYBOOK_TEST_UNSET}", "key: ${STORYBOOK_TEST_UNSET}"},
		{"default with colon", "url: ${STORYBOOK_TEST_UNSET:http://localhost:8000}", "url: http://localhost:8000"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, expandEnv(tc.in))
		})
	}
}

func TestLoadFrom_MergesEnvFileAndDefaults(t *testing.T) {
	dir := t.TempDir()
	base := `
app:
  name: storybook-test
backend:
  base_url: ${STORYBOOK_TEST_BACKEND:http://gateway:8000}
session:
  store: memory
`
	override := `
session:
  ttl: 30m
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(base), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.test.yaml"), []byte(override), 0o644))
	t.Setenv("APP_ENV", "test")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "storybook-test", cfg.App.Name)
	assert.Equal(t, "http://gateway:8000", cfg.Backend.BaseURL)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "memory", cfg.Session.Store)

	// 未在文件中出现的字段走默认值
	assert.Equal(t, 60*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, "gpt-4", cfg.LLM.Providers["openai"].Model)
	assert.Equal(t, 512, cfg.LLM.Providers["openai"].MaxTokens)
	assert.InDelta(t, 0.8, cfg.LLM.Providers["openai"].Temperature, 1e-9)
	assert.Equal(t, "dall-e-3", cfg.Image.Model)
	assert.Equal(t, "1024x1024", cfg.Image.Size)
	assert.Equal(t, "my-storybook.pdf", cfg.Export.PDFFilename)
	assert.Equal(t, "Your Book - Export", cfg.Export.Title)
}

func TestLoadFrom_MissingBaseFile(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config.yaml")
}
