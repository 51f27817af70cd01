// Package view renders page templates that embed module positions.
//
// Templates use the @module('position') directive, which is rewritten into
// a html/template action before parsing. At render time the action calls
// the module registry with the request context and inlines its output as
// trusted HTML, optionally passed through a bluemonday policy first.
//
// Example Usage:
//
//	engine := view.NewEngine(registry, view.WithPolicy(bluemonday.UGCPolicy()))
//	if err := engine.Load(os.DirFS("views"), "**/*.html"); err != nil {
//		return err
//	}
//	err := engine.Render(ctx, w, "home", data)
package view
