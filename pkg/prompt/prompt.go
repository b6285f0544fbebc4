// Package prompt renders the assistant's prompt templates with hot reload.
//
// A Builder owns two independent template slots: the system template
// (required) and an optional user template living next to it as
// user_prompt.tmpl. Each slot tracks its own file modification time and is
// reloaded when the file changes; a mid-run reload failure keeps the last
// good template.
//
// Templates are text/template sources. The assistant supplies two variables:
// "user_input" (the raw input string) and "config" (the full configuration
// mapping), so a template can write {{.user_input}} or
// {{.config.system_prompt}}.
package prompt

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"text/template"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound reports a missing required template file.
var ErrNotFound = errors.New("template file not found")

// UserTemplateName is the fixed file name of the optional user template,
// resolved as a sibling of the system template.
const UserTemplateName = "user_prompt.tmpl"

// slot is one template file with its cached parse and last-observed mtime.
type slot struct {
	path    string
	tmpl    *template.Template
	lastMod time.Time
}

// load parses the slot's file and records its modification time.
func (s *slot) load() error {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("prompt: %s: %w", s.path, ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("prompt: stat %s: %w", s.path, err)
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("prompt: read %s: %w", s.path, err)
	}

	tmpl, err := template.New(filepath.Base(s.path)).Option("missingkey=zero").Parse(string(data))
	if err != nil {
		return fmt.Errorf("prompt: parse %s: %w", s.path, err)
	}

	s.tmpl = tmpl
	s.lastMod = info.ModTime()
	return nil
}

// checkAndReload reloads the slot if its file's mtime is strictly later than
// the last recorded one (or if nothing was loaded yet). A missing file and a
// failed reload both report false; a failed reload keeps the previous parse.
func (s *slot) checkAndReload(logger *zap.Logger) bool {
	info, err := os.Stat(s.path)
	if err != nil {
		return false
	}

	if s.tmpl != nil && !info.ModTime().After(s.lastMod) {
		return false
	}

	if err := s.load(); err != nil {
		logger.Warn("template reload failed, keeping previous",
			zap.String("path", s.path),
			zap.Error(err))
		return false
	}
	return true
}

// render executes the slot's template with the given variables.
func (s *slot) render(vars map[string]any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.Execute(&b, vars); err != nil {
		return "", fmt.Errorf("prompt: render %s: %w", s.path, err)
	}
	return b.String(), nil
}

// Builder loads and renders the system and user templates.
type Builder struct {
	system slot
	user   slot
	logger *zap.Logger
}

// New creates a Builder for the system template at systemPath. The user
// template is expected at user_prompt.tmpl in the same directory. A nil
// logger disables logging.
func New(systemPath string, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		system: slot{path: systemPath},
		user:   slot{path: filepath.Join(filepath.Dir(systemPath), UserTemplateName)},
		logger: logger,
	}
}

// Path returns the system template path.
func (b *Builder) Path() string { return b.system.path }

// Load parses the system template, failing with ErrNotFound if the file is
// absent. The user template is loaded opportunistically: its absence is not
// an error.
func (b *Builder) Load() error {
	if err := b.system.load(); err != nil {
		return err
	}

	if _, err := os.Stat(b.user.path); err == nil {
		if err := b.user.load(); err != nil {
			return err
		}
	}
	return nil
}

// CheckAndReload reloads the system template if its file changed, reporting
// whether a reload happened. Reload failures are absorbed and the last good
// template retained. The user template is checked separately by RenderUser.
func (b *Builder) CheckAndReload() bool {
	reloaded := b.system.checkAndReload(b.logger)
	if reloaded {
		b.logger.Info("system template reloaded", zap.String("path", b.system.path))
	}
	return reloaded
}

// Render renders the system template with the given variables, loading it
// first if it was never loaded.
func (b *Builder) Render(vars map[string]any) (string, error) {
	if b.system.tmpl == nil {
		if err := b.system.load(); err != nil {
			return "", err
		}
	}
	return b.system.render(vars)
}

// RenderUser renders the user template with the given variables, checking it
// for changes first. If no user template file exists, the raw "user_input"
// variable is returned unchanged so deployments without one behave like the
// plain pass-through case.
func (b *Builder) RenderUser(vars map[string]any) (string, error) {
	b.user.checkAndReload(b.logger)

	if b.user.tmpl == nil {
		input, _ := vars["user_input"].(string)
		return input, nil
	}
	return b.user.render(vars)
}
