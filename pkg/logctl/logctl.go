// Package logctl owns logger construction and runtime verbosity control.
//
// Loggers are organized in two layers. Every logger belongs to a fine-grained
// category (e.g. "app.config", "llm.wire") with its own atomic level, and a
// curated set of components maps user-facing names (e.g. "http") onto one or
// more categories for coarse-grained control. A shared root threshold gates
// all categories: a message is emitted only when it clears both its
// category's level and the root level. SetLevel keeps the hierarchy
// consistent by lowering the root whenever a component is opened wider than
// it.
package logctl

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrUnknownComponent reports a SetLevel call with a name outside the
// curated registry.
var ErrUnknownComponent = errors.New("unknown log component")

// All is the pseudo-component that expands to every curated component.
const All = "all"

type componentDef struct {
	defaultLevel zapcore.Level
	description  string
	categories   []string
}

// components is the curated registry exposed for UI controls. Every category
// belongs to at most one component.
var components = map[string]componentDef{
	"prompt": {
		defaultLevel: zapcore.InfoLevel,
		description:  "Prompt assembly and dispatch logs",
		categories:   []string{"app.prompt"},
	},
	"config": {
		defaultLevel: zapcore.InfoLevel,
		description:  "Configuration loading and hot reload",
		categories:   []string{"app.config"},
	},
	"template": {
		defaultLevel: zapcore.InfoLevel,
		description:  "Template loading and hot reload",
		categories:   []string{"app.template"},
	},
	"session": {
		defaultLevel: zapcore.InfoLevel,
		description:  "Session memory activity",
		categories:   []string{"app.session"},
	},
	"http": {
		defaultLevel: zapcore.WarnLevel,
		description:  "LLM API request/response logs",
		categories:   []string{"llm.client", "llm.wire"},
	},
}

// noisyDefaults silences chatty categories at construction regardless of
// their component's default. They stay quiet until a component covering them
// is explicitly opened.
var noisyDefaults = map[string]zapcore.Level{
	"llm.wire": zapcore.WarnLevel,
}

// Manager builds category loggers over a shared sink and mediates all level
// changes.
type Manager struct {
	mu         sync.Mutex
	enc        zapcore.Encoder
	ws         zapcore.WriteSyncer
	root       zap.AtomicLevel
	categories map[string]zap.AtomicLevel
	loggers    map[string]*zap.Logger
}

// New creates a Manager writing console-encoded lines to w (os.Stderr when
// nil) with the root threshold at Info, and applies the curated component
// defaults followed by the noisy-category overrides.
func New(w io.Writer) *Manager {
	if w == nil {
		w = os.Stderr
	}

	m := &Manager{
		enc:        zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		ws:         zapcore.AddSync(w),
		root:       zap.NewAtomicLevelAt(zapcore.InfoLevel),
		categories: make(map[string]zap.AtomicLevel),
		loggers:    make(map[string]*zap.Logger),
	}
	m.ApplyDefaults()

	return m
}

// ApplyDefaults sets every curated component's categories to the component's
// default level, then applies the noisy-category overrides. It is idempotent
// and safe to call repeatedly.
func (m *Manager) ApplyDefaults() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, def := range components {
		for _, cat := range def.categories {
			m.categoryLevel(cat).SetLevel(def.defaultLevel)
		}
	}
	for cat, lvl := range noisyDefaults {
		m.categoryLevel(cat).SetLevel(lvl)
	}
}

// categoryLevel returns the atomic level for a category, registering it at
// Info on first use. Callers must hold m.mu.
func (m *Manager) categoryLevel(category string) zap.AtomicLevel {
	lvl, ok := m.categories[category]
	if !ok {
		lvl = zap.NewAtomicLevelAt(zapcore.InfoLevel)
		m.categories[category] = lvl
	}
	return lvl
}

// Logger returns the named logger for a category. Emission is gated on both
// the category's level and the shared root threshold, so later SetLevel
// calls affect loggers already handed out.
func (m *Manager) Logger(category string) *zap.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()

	if lg, ok := m.loggers[category]; ok {
		return lg
	}

	lvl := m.categoryLevel(category)
	root := m.root
	gate := zap.LevelEnablerFunc(func(l zapcore.Level) bool {
		return lvl.Enabled(l) && root.Enabled(l)
	})

	lg := zap.New(zapcore.NewCore(m.enc, m.ws, gate)).Named(category)
	m.loggers[category] = lg

	return lg
}

// SetLevel sets the level for a curated component (or All) and returns a
// confirmation message for UI display. If the requested level is more
// verbose than the current root threshold, the root is lowered first so the
// component's messages are not dropped at the root. An unrecognized
// component name fails with ErrUnknownComponent and changes nothing.
func (m *Manager) SetLevel(component string, level zapcore.Level) (string, error) {
	var targets []string
	if component == All {
		targets = componentNames()
	} else {
		if _, ok := components[component]; !ok {
			return "", fmt.Errorf("logctl: %w: %q", ErrUnknownComponent, component)
		}
		targets = []string{component}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	rootAdjusted := false
	if level < m.root.Level() {
		m.root.SetLevel(level)
		rootAdjusted = true
	}

	for _, name := range targets {
		for _, cat := range components[name].categories {
			m.categoryLevel(cat).SetLevel(level)
		}
	}

	msg := fmt.Sprintf("Component %q set to %s", component, level)
	if component == All {
		msg = fmt.Sprintf("All components set to %s", level)
	}
	if rootAdjusted {
		msg += fmt.Sprintf(" (root threshold lowered to %s)", level)
	}

	return msg, nil
}

// Status reports the root level plus one representative level per curated
// component. SetLevel keeps all categories within a component in lock-step,
// so the first category is an accurate summary.
type Status struct {
	Root       string
	Components map[string]string
}

// Status returns the current root and per-component levels.
func (m *Manager) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Status{
		Root:       m.root.Level().String(),
		Components: make(map[string]string, len(components)),
	}
	for name, def := range components {
		st.Components[name] = m.categoryLevel(def.categories[0]).Level().String()
	}

	return st
}

// ComponentInfo describes one curated component for UI controls.
type ComponentInfo struct {
	Name        string
	Default     zapcore.Level
	Description string
}

// UIComponents returns the curated components sorted by name.
func (m *Manager) UIComponents() []ComponentInfo {
	infos := make([]ComponentInfo, 0, len(components))
	for name, def := range components {
		infos = append(infos, ComponentInfo{
			Name:        name,
			Default:     def.defaultLevel,
			Description: def.description,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })

	return infos
}

// AllLoggers returns every logger category registered so far, curated or
// not, in sorted order.
func (m *Manager) AllLoggers() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	cats := make([]string, 0, len(m.categories))
	for cat := range m.categories {
		cats = append(cats, cat)
	}
	sort.Strings(cats)

	return cats
}

// RootLevel returns the current root threshold.
func (m *Manager) RootLevel() zapcore.Level {
	return m.root.Level()
}

func componentNames() []string {
	names := make([]string, 0, len(components))
	for name := range components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
