package config

import "sync"

// Resolver reads a named configuration value. The default is returned
// only when the key is absent.
type Resolver interface {
	Get(key, def string) string
}

// Map is a static Resolver.
type Map map[string]string

// Get implements Resolver.
func (m Map) Get(key, def string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return def
}

// The Func type is an adapter to allow the use of ordinary functions
// as Resolver.
type Func func(key, def string) string

// Get calls f(key, def).
func (f Func) Get(key, def string) string { return f(key, def) }

// Overlay returns a Resolver that answers from overrides first and falls
// back to base. A nil base falls back to Default at lookup time.
//
//	mixin.NewSluggable(config.Overlay(nil, config.Map{
//		config.KeySlugField: "permalink",
//	}))
func Overlay(base Resolver, overrides Map) Resolver {
	return Func(func(key, def string) string {
		if v, ok := overrides[key]; ok {
			return v
		}
		if base == nil {
			return Default().Get(key, def)
		}
		return base.Get(key, def)
	})
}

var (
	defaultMu  sync.RWMutex
	defaultRes Resolver
)

// Default returns the process-wide resolver. Unless replaced with
// SetDefault, it is a Config holding the embedded defaults and the
// MODELKIT_ environment overrides.
func Default() Resolver {
	defaultMu.RLock()
	r := defaultRes
	defaultMu.RUnlock()
	if r != nil {
		return r
	}
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultRes == nil {
		c, err := New()
		if err != nil {
			// The embedded defaults are part of the build.
			panic(err)
		}
		defaultRes = c
	}
	return defaultRes
}

// SetDefault replaces the process-wide resolver and returns the previous
// one. Passing nil restores the built-in configuration on next use.
func SetDefault(r Resolver) Resolver {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultRes
	defaultRes = r
	return prev
}
