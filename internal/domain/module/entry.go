package module

// Pair registers a module together with the args passed to its Render.
type Pair struct {
	Module Module
	Args   any
}

// With builds a Pair.
func With(m Module, args any) Pair {
	return Pair{Module: m, Args: args}
}

// Entry is one registration. Position and Priority are resolved once, when
// the module is registered.
type Entry struct {
	ID       string `json:"id"`
	Position string `json:"position"`
	Priority int    `json:"priority"`
	TypeName string `json:"type"`
	Module   Module `json:"-"`
	Args     any    `json:"-"`
}

// Stats summarizes registry contents.
type Stats struct {
	Positions int  `json:"positions"`
	Modules   int  `json:"modules"`
	Sorted    bool `json:"sorted"`
}
