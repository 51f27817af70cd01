package resilience

import "sync"

// Group lazily creates one breaker per name, all sharing the same settings.
type Group struct {
	settings Settings
	breakers sync.Map // name -> *Breaker
}

// NewGroup creates an empty breaker group.
func NewGroup(settings Settings) *Group {
	return &Group{settings: settings}
}

// Get returns the breaker for name, creating it on first use.
func (g *Group) Get(name string) *Breaker {
	if b, ok := g.breakers.Load(name); ok {
		return b.(*Breaker)
	}
	b, _ := g.breakers.LoadOrStore(name, New(name, g.settings))
	return b.(*Breaker)
}

// States returns the current state of every breaker created so far.
func (g *Group) States() map[string]State {
	states := make(map[string]State)
	g.breakers.Range(func(key, value interface{}) bool {
		states[key.(string)] = value.(*Breaker).State()
		return true
	})
	return states
}
