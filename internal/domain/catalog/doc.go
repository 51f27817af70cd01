// Package catalog maps module type identifiers to factories so module
// groups can be declared in configuration and registered at boot.
//
// Example Usage:
//
//	cat := catalog.New()
//	cat.Register("header", func(args map[string]any) (module.Module, error) {
//		return &HeaderModule{}, nil
//	})
//	err := cat.RegisterGroup(registry, groups, "layout")
package catalog
