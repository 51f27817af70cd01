package modules

import (
	"context"
	"fmt"
	"html/template"
	"strings"
)

// Fragment renders an html/template source. The template sees the args
// the module was registered with as its data.
type Fragment struct {
	Settings
	tmpl *template.Template
	data map[string]any
}

// NewFragment builds a Fragment from args: position and template are
// required.
func NewFragment(args map[string]any, defaults Defaults) (*Fragment, error) {
	settings, err := parseSettings(args, defaults)
	if err != nil {
		return nil, err
	}
	src, err := getString(args, "template", true)
	if err != nil {
		return nil, err
	}

	tmpl, err := template.New(settings.position).Option("missingkey=zero").Parse(src)
	if err != nil {
		return nil, fmt.Errorf("invalid template: %w", err)
	}
	return &Fragment{Settings: settings, tmpl: tmpl, data: args}, nil
}

func (f *Fragment) Render(ctx context.Context, args any) (string, error) {
	data := any(f.data)
	if args != nil {
		data = args
	}

	var sb strings.Builder
	if err := f.tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("execute fragment: %w", err)
	}
	return sb.String(), nil
}
