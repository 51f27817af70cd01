package modules

import (
	"context"
)

// Static renders a fixed HTML string.
type Static struct {
	Settings
	html string
}

// NewStatic builds a Static from args: position (required), html, and the
// common settings.
func NewStatic(args map[string]any, defaults Defaults) (*Static, error) {
	settings, err := parseSettings(args, defaults)
	if err != nil {
		return nil, err
	}
	html, err := getString(args, "html", false)
	if err != nil {
		return nil, err
	}
	return &Static{Settings: settings, html: html}, nil
}

func (s *Static) Render(ctx context.Context, args any) (string, error) {
	return s.html, nil
}
