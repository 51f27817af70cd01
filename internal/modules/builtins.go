package modules

import (
	"github.com/GriffinCanCode/modulekit/internal/domain/catalog"
	"github.com/GriffinCanCode/modulekit/internal/domain/module"
)

// Identifiers of the built-in module types.
const (
	TypeStatic   = "static"
	TypeFragment = "fragment"
	TypeRemote   = "remote"
	TypeScript   = "script"
)

// RegisterBuiltins adds the built-in module types to cat. Remote modules
// share client.
func RegisterBuiltins(cat *catalog.Catalog, client *Client, defaults Defaults) error {
	builtins := map[string]catalog.Factory{
		TypeStatic: func(args map[string]any) (module.Module, error) {
			return NewStatic(args, defaults)
		},
		TypeFragment: func(args map[string]any) (module.Module, error) {
			return NewFragment(args, defaults)
		},
		TypeRemote: func(args map[string]any) (module.Module, error) {
			return NewRemote(client, args, defaults)
		},
		TypeScript: func(args map[string]any) (module.Module, error) {
			return NewScript(args, defaults)
		},
	}

	for _, id := range []string{TypeStatic, TypeFragment, TypeRemote, TypeScript} {
		if err := cat.Register(id, builtins[id]); err != nil {
			return err
		}
	}
	return nil
}
