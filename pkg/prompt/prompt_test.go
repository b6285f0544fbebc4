package prompt_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/okonma/valet/pkg/prompt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemplate(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "system_prompt.tmpl", "You are {{.config.persona}}. Input: {{.user_input}}")

	b := prompt.New(path, nil)

	out, err := b.Render(map[string]any{
		"user_input": "hi",
		"config":     map[string]any{"persona": "a valet"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You are a valet. Input: hi", out)
}

func TestRender_MissingFile(t *testing.T) {
	b := prompt.New(filepath.Join(t.TempDir(), "absent.tmpl"), nil)

	_, err := b.Render(map[string]any{"user_input": "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, prompt.ErrNotFound)
}

func TestLoad_MissingSystemTemplate(t *testing.T) {
	b := prompt.New(filepath.Join(t.TempDir(), "absent.tmpl"), nil)

	err := b.Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, prompt.ErrNotFound)
}

func TestRenderUser_FallbackWithoutTemplate(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "system_prompt.tmpl", "sys")

	b := prompt.New(path, nil)
	require.NoError(t, b.Load())

	out, err := b.RenderUser(map[string]any{"user_input": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "hi", out)
}

func TestRenderUser_WithTemplate(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "system_prompt.tmpl", "sys")
	writeTemplate(t, dir, prompt.UserTemplateName, "Q: {{.user_input}}")

	b := prompt.New(path, nil)
	require.NoError(t, b.Load())

	out, err := b.RenderUser(map[string]any{"user_input": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "Q: hi", out)
}

func TestRenderUser_TemplateAppearsLater(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "system_prompt.tmpl", "sys")

	b := prompt.New(path, nil)
	require.NoError(t, b.Load())

	out, err := b.RenderUser(map[string]any{"user_input": "raw"})
	require.NoError(t, err)
	assert.Equal(t, "raw", out)

	// The optional template can be dropped in while the process runs.
	writeTemplate(t, dir, prompt.UserTemplateName, "wrapped({{.user_input}})")

	out, err = b.RenderUser(map[string]any{"user_input": "raw"})
	require.NoError(t, err)
	assert.Equal(t, "wrapped(raw)", out)
}

func TestCheckAndReload_Monotonic(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "system_prompt.tmpl", "v1")

	b := prompt.New(path, nil)
	require.NoError(t, b.Load())

	info, err := os.Stat(path)
	require.NoError(t, err)
	mod := info.ModTime()

	// Same mtime: no reload.
	require.NoError(t, os.Chtimes(path, mod, mod))
	assert.False(t, b.CheckAndReload())

	// Strictly later mtime: reload picks up the new content.
	require.NoError(t, os.WriteFile(path, []byte("v2"), 0o600))
	require.NoError(t, os.Chtimes(path, mod, mod.Add(time.Hour)))
	assert.True(t, b.CheckAndReload())

	out, err := b.Render(map[string]any{})
	require.NoError(t, err)
	assert.Equal(t, "v2", out)
}

func TestCheckAndReload_FailureRetainsPrevious(t *testing.T) {
	dir := t.TempDir()
	path := writeTemplate(t, dir, "system_prompt.tmpl", "good {{.user_input}}")

	b := prompt.New(path, nil)
	require.NoError(t, b.Load())

	info, err := os.Stat(path)
	require.NoError(t, err)

	// A syntactically broken edit at a later mtime must not replace the last
	// good template.
	require.NoError(t, os.WriteFile(path, []byte("broken {{.user_input"), 0o600))
	require.NoError(t, os.Chtimes(path, info.ModTime(), info.ModTime().Add(time.Hour)))

	assert.False(t, b.CheckAndReload())

	out, err := b.Render(map[string]any{"user_input": "hi"})
	require.NoError(t, err)
	assert.Equal(t, "good hi", out)
}

func TestCheckAndReload_MissingFile(t *testing.T) {
	b := prompt.New(filepath.Join(t.TempDir(), "absent.tmpl"), nil)
	assert.False(t, b.CheckAndReload())
}
