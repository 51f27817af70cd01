package view

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// ErrPageNotFound is returned when no loaded template matches a page name.
var ErrPageNotFound = errors.New("page not found")

// Positions renders the modules at a position. *module.Registry satisfies it.
type Positions interface {
	Render(ctx context.Context, position string) (string, error)
}

// Sanitize modes accepted by PolicyFor.
const (
	SanitizeNone   = "none"
	SanitizeUGC    = "ugc"
	SanitizeStrict = "strict"
)

// PolicyFor returns the bluemonday policy for mode, or nil for "none".
func PolicyFor(mode string) (*bluemonday.Policy, error) {
	switch mode {
	case "", SanitizeNone:
		return nil, nil
	case SanitizeUGC:
		return bluemonday.UGCPolicy(), nil
	case SanitizeStrict:
		return bluemonday.StrictPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown sanitize mode %q", mode)
	}
}

// Engine renders page templates whose @module directives pull fragments
// from a module registry.
type Engine struct {
	positions Positions
	policy    *bluemonday.Policy
	logger    *zap.Logger

	mu sync.RWMutex
	// base is never executed so it can be cloned per render.
	base  *template.Template
	pages []string
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithPolicy sanitizes module output before it is inlined. nil disables
// sanitization.
func WithPolicy(p *bluemonday.Policy) EngineOption {
	return func(e *Engine) { e.policy = p }
}

// WithEngineLogger sets the logger.
func WithEngineLogger(logger *zap.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewEngine creates an engine with no pages loaded.
func NewEngine(positions Positions, opts ...EngineOption) *Engine {
	e := &Engine{
		positions: positions,
		logger:    zap.NewNop(),
		base:      template.New("").Funcs(placeholderFuncs()),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// placeholderFuncs declares the functions templates may call. They are
// replaced with request bound versions before execution.
func placeholderFuncs() template.FuncMap {
	return template.FuncMap{
		"module": func(string) (template.HTML, error) {
			return "", errors.New("module called outside a render")
		},
	}
}

// Load parses every file in fsys matching the doublestar pattern. Each
// template is named by its slash separated path.
func (e *Engine) Load(fsys fs.FS, pattern string) error {
	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return fmt.Errorf("invalid template pattern %q: %w", pattern, err)
	}
	sort.Strings(matches)

	for _, name := range matches {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("failed to read template %s: %w", name, err)
		}
		if err := e.Parse(name, string(data)); err != nil {
			return err
		}
	}

	e.logger.Info("Templates loaded",
		zap.String("pattern", pattern),
		zap.Int("count", len(matches)),
	)
	return nil
}

// Parse adds a template named name after expanding its directives.
func (e *Engine) Parse(name, src string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.base.New(name).Parse(ExpandDirectives(src)); err != nil {
		return fmt.Errorf("failed to parse template %s: %w", name, err)
	}
	e.pages = append(e.pages, name)
	return nil
}

// Reload replaces every page with those matching pattern in fsys. The
// current pages stay in use when loading fails.
func (e *Engine) Reload(fsys fs.FS, pattern string) error {
	next := NewEngine(e.positions, WithPolicy(e.policy), WithEngineLogger(e.logger))
	if err := next.Load(fsys, pattern); err != nil {
		return err
	}

	e.mu.Lock()
	e.base, e.pages = next.base, next.pages
	e.mu.Unlock()
	return nil
}

// Pages returns the loaded template names in load order.
func (e *Engine) Pages() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string(nil), e.pages...)
}

// Lookup resolves a page name to a loaded template, trying name and then
// name with an .html suffix.
func (e *Engine) Lookup(name string) (string, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return lookup(e.base, name)
}

func lookup(base *template.Template, name string) (string, bool) {
	name = strings.TrimPrefix(name, "/")
	if name == "" {
		name = "index"
	}
	for _, candidate := range []string{name, name + ".html"} {
		if base.Lookup(candidate) != nil {
			return candidate, true
		}
	}
	return "", false
}

// Render executes the page called name with data and writes the result to
// w. Nothing is written when rendering fails.
func (e *Engine) Render(ctx context.Context, w io.Writer, name string, data any) error {
	e.mu.RLock()
	page, ok := lookup(e.base, name)
	if !ok {
		e.mu.RUnlock()
		return fmt.Errorf("%w: %s", ErrPageNotFound, name)
	}
	tmpl, err := e.base.Clone()
	e.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to clone templates: %w", err)
	}
	tmpl.Funcs(template.FuncMap{
		"module": func(position string) (template.HTML, error) {
			return e.Fragment(ctx, position)
		},
	})

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, data); err != nil {
		return fmt.Errorf("failed to render page %s: %w", page, err)
	}

	_, err = buf.WriteTo(w)
	return err
}

// Fragment renders a single position, sanitized when a policy is set.
func (e *Engine) Fragment(ctx context.Context, position string) (template.HTML, error) {
	out, err := e.positions.Render(ctx, position)
	if err != nil {
		return "", err
	}
	if e.policy != nil {
		out = e.policy.Sanitize(out)
	}
	return template.HTML(out), nil
}
