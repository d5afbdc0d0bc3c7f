package resilience

import "golang.org/x/sync/singleflight"

// Group collapses concurrent calls for the same key into one and hands every
// caller the same typed result.
type Group[T any] struct {
	g singleflight.Group
}

// Do runs fn once per in-flight key. shared reports whether the result was
// produced for another caller. Nothing is remembered once fn returns, so a
// failed call is retried by the next Do.
func (g *Group[T]) Do(key string, fn func() (T, error)) (T, error, bool) {
	out, err, shared := g.g.Do(key, func() (any, error) {
		return fn()
	})
	value, _ := out.(T)
	return value, err, shared
}
