package module

import "time"

// Observer receives render events, e.g. for metrics.
type Observer interface {
	PositionRendered(position string, duration time.Duration)
	CacheHit(position string)
	CacheMiss(position string)
	ModuleFailed(position, typeName string)
}

type nopObserver struct{}

func (nopObserver) PositionRendered(string, time.Duration) {}
func (nopObserver) CacheHit(string)                        {}
func (nopObserver) CacheMiss(string)                       {}
func (nopObserver) ModuleFailed(string, string)            {}
