// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package db

import (
	"fmt"
	"sync"
)

// Factory creates a client for a named backend.
type Factory func(cfg *Config) (Client, error)

var (
	factories   = map[string]Factory{}
	factoriesMu sync.RWMutex
)

// RegisterBackend registers a factory function for a named backend.
// Backend packages call this from init(). This function is goroutine-safe.
func RegisterBackend(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// resolveBackend returns the effective backend name, defaulting to "sqlite".
func resolveBackend(cfg *Config) string {
	if cfg == nil || cfg.Backend == "" {
		return "sqlite"
	}
	return cfg.Backend
}

// Open creates a client for the configured backend.
func Open(cfg *Config) (Client, error) {
	backend := resolveBackend(cfg)

	factoriesMu.RLock()
	factory, ok := factories[backend]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported database backend: %q", backend)
	}

	return factory(cfg)
}
