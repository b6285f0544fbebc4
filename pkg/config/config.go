// Package config loads the assistant's YAML settings document and tracks the
// file for hot reload. The document is an open key-value mapping: a small set
// of keys is validated and given typed accessors, everything else passes
// through opaquely as chat-completion call parameters.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Error kinds reported by Load. Callers discriminate with errors.Is.
var (
	ErrNotFound   = errors.New("config file not found")
	ErrValidation = errors.New("invalid configuration")
)

// reservedKeys are consumed by the assistant itself and never forwarded as
// call parameters.
var reservedKeys = map[string]struct{}{
	"model":         {},
	"system_prompt": {},
}

// requiredView is the typed projection of the document that validation runs
// against. Temperature and MaxTokens are pointers so that zero values still
// count as present.
type requiredView struct {
	Model        string   `yaml:"model" validate:"required"`
	Temperature  *float64 `yaml:"temperature" validate:"required"`
	MaxTokens    *int     `yaml:"max_tokens" validate:"required"`
	SystemPrompt string   `yaml:"system_prompt"`
}

var validate = newValidator()

// newValidator builds a validator that reports fields by their yaml key name.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Document is an immutable snapshot of a successfully loaded configuration.
type Document struct {
	Model        string
	Temperature  float64
	MaxTokens    int
	SystemPrompt string

	raw map[string]any
}

// Raw returns a copy of the full document mapping.
func (d *Document) Raw() map[string]any {
	cp := make(map[string]any, len(d.raw))
	for k, v := range d.raw {
		cp[k] = v
	}
	return cp
}

// Params returns a copy of every document key except the reserved ones
// (model, system_prompt). The values are opaque: temperature, max_tokens, and
// any provider-specific key pass through unvalidated.
func (d *Document) Params() map[string]any {
	params := make(map[string]any, len(d.raw))
	for k, v := range d.raw {
		if _, reserved := reservedKeys[k]; reserved {
			continue
		}
		params[k] = v
	}
	return params
}

// Loader reads the settings document from a fixed path and tracks the file's
// modification time for reload detection. A failed load never replaces a
// previously successful one.
type Loader struct {
	path   string
	logger *zap.Logger

	doc     *Document
	lastMod time.Time
}

// New creates a Loader for the document at path. A nil logger disables
// logging.
func New(path string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{path: path, logger: logger}
}

// Path returns the watched file path.
func (l *Loader) Path() string { return l.path }

// Load reads and validates the document, replacing the cached snapshot and
// recording the file's modification time on success. A missing file wraps
// ErrNotFound; a missing required key wraps ErrValidation.
func (l *Loader) Load() (*Document, error) {
	info, err := os.Stat(l.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: %s: %w", l.path, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("config: stat %s: %w", l.path, err)
	}

	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", l.path, err)
	}

	doc, err := parse(data)
	if err != nil {
		return nil, err
	}

	l.doc = doc
	l.lastMod = info.ModTime()

	l.logger.Debug("configuration loaded",
		zap.String("path", l.path),
		zap.String("model", doc.Model))

	return doc, nil
}

// parse decodes and validates a document.
func parse(data []byte) (*Document, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}

	var view requiredView
	if err := yaml.Unmarshal(data, &view); err != nil {
		return nil, fmt.Errorf("config: %w: %v", ErrValidation, err)
	}

	if err := validate.Struct(view); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return nil, fmt.Errorf("config: %w: missing required key %q", ErrValidation, verrs[0].Field())
		}
		return nil, fmt.Errorf("config: %w: %v", ErrValidation, err)
	}

	return &Document{
		Model:        view.Model,
		Temperature:  *view.Temperature,
		MaxTokens:    *view.MaxTokens,
		SystemPrompt: view.SystemPrompt,
		raw:          raw,
	}, nil
}

// CheckAndReload reloads the document if the file's modification time is
// strictly later than the last recorded one (or if nothing was loaded yet).
// It reports whether a reload happened along with the current snapshot.
//
// A missing file or a failed reload is absorbed: the previous snapshot is
// retained so a transient editing state of the file cannot take down a
// running session.
func (l *Loader) CheckAndReload() (bool, *Document) {
	info, err := os.Stat(l.path)
	if err != nil {
		return false, l.doc
	}

	if l.doc != nil && !info.ModTime().After(l.lastMod) {
		return false, l.doc
	}

	doc, err := l.Load()
	if err != nil {
		l.logger.Warn("config reload failed, keeping previous",
			zap.String("path", l.path),
			zap.Error(err))
		return false, l.doc
	}

	return true, doc
}

// Get returns the cached document, performing an initial Load if nothing was
// loaded yet.
func (l *Loader) Get() (*Document, error) {
	if l.doc == nil {
		return l.Load()
	}
	return l.doc, nil
}
