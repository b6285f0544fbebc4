package logctl_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/okonma/valet/pkg/logctl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestDefaults(t *testing.T) {
	m := logctl.New(io.Discard)

	st := m.Status()
	assert.Equal(t, "info", st.Root)
	assert.Equal(t, "info", st.Components["prompt"])
	assert.Equal(t, "info", st.Components["config"])
	assert.Equal(t, "warn", st.Components["http"])
}

func TestApplyDefaults_Idempotent(t *testing.T) {
	m := logctl.New(io.Discard)

	before := m.Status()
	m.ApplyDefaults()
	m.ApplyDefaults()
	assert.Equal(t, before, m.Status())
}

func TestSetLevel_LowersRoot(t *testing.T) {
	m := logctl.New(io.Discard)

	// Opening a component wider than the root threshold drags the root down
	// with it, otherwise its messages would be dropped at the root.
	msg, err := m.SetLevel("http", zapcore.DebugLevel)
	require.NoError(t, err)
	assert.Contains(t, msg, "root threshold lowered")

	st := m.Status()
	assert.Equal(t, "debug", st.Root)
	assert.Equal(t, "debug", st.Components["http"])
}

func TestSetLevel_NeverRaisesRoot(t *testing.T) {
	m := logctl.New(io.Discard)

	_, err := m.SetLevel("prompt", zapcore.ErrorLevel)
	require.NoError(t, err)

	st := m.Status()
	assert.Equal(t, "info", st.Root)
	assert.Equal(t, "error", st.Components["prompt"])
}

func TestSetLevel_RootInvariant(t *testing.T) {
	m := logctl.New(io.Discard)

	_, err := m.SetLevel("prompt", zapcore.WarnLevel)
	require.NoError(t, err)
	_, err = m.SetLevel("session", zapcore.DebugLevel)
	require.NoError(t, err)
	_, err = m.SetLevel("http", zapcore.ErrorLevel)
	require.NoError(t, err)

	// After any sequence of SetLevel calls the root is never stricter than
	// the most verbose component.
	st := m.Status()
	for name, lvl := range st.Components {
		parsed, perr := zapcore.ParseLevel(lvl)
		require.NoError(t, perr)
		assert.LessOrEqual(t, m.RootLevel(), parsed, "component %s", name)
	}
}

func TestSetLevel_All(t *testing.T) {
	m := logctl.New(io.Discard)

	msg, err := m.SetLevel(logctl.All, zapcore.DebugLevel)
	require.NoError(t, err)
	assert.Contains(t, msg, "All components")

	st := m.Status()
	assert.Equal(t, "debug", st.Root)
	for name, lvl := range st.Components {
		assert.Equal(t, "debug", lvl, "component %s", name)
	}
}

func TestSetLevel_UnknownComponent(t *testing.T) {
	m := logctl.New(io.Discard)

	before := m.Status()

	_, err := m.SetLevel("bogus", zapcore.DebugLevel)
	require.Error(t, err)
	assert.ErrorIs(t, err, logctl.ErrUnknownComponent)

	// Nothing changed.
	assert.Equal(t, before, m.Status())
}

func TestLogger_GatedByComponentAndRoot(t *testing.T) {
	var buf bytes.Buffer
	m := logctl.New(&buf)

	lg := m.Logger("app.prompt")

	lg.Debug("hidden")
	assert.NotContains(t, buf.String(), "hidden")

	lg.Info("visible")
	assert.Contains(t, buf.String(), "visible")

	// Opening the component retroactively affects loggers already handed out.
	_, err := m.SetLevel("prompt", zapcore.DebugLevel)
	require.NoError(t, err)

	lg.Debug("now-visible")
	assert.Contains(t, buf.String(), "now-visible")
}

func TestLogger_UncuratedCategoryRegistered(t *testing.T) {
	m := logctl.New(io.Discard)

	m.Logger("ad.hoc")
	assert.Contains(t, m.AllLoggers(), "ad.hoc")
}

func TestAllLoggers_IncludesCuratedCategories(t *testing.T) {
	m := logctl.New(io.Discard)

	all := m.AllLoggers()
	assert.Contains(t, all, "app.prompt")
	assert.Contains(t, all, "llm.client")
	assert.Contains(t, all, "llm.wire")
}

func TestUIComponents_Sorted(t *testing.T) {
	m := logctl.New(io.Discard)

	infos := m.UIComponents()
	require.NotEmpty(t, infos)

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
		assert.NotEmpty(t, info.Description)
	}
	assert.IsIncreasing(t, names)
	assert.Contains(t, names, "http")
}
