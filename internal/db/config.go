// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package db

// Config selects and parameterizes a database backend.
type Config struct {
	// Backend names the registered backend, defaulting to "sqlite".
	// The "memory" backend serves browser-only development where no
	// native engine is present.
	Backend string `mapstructure:"backend"`

	// Path is the database file path for file-backed backends. The
	// memory backend ignores it.
	Path string `mapstructure:"path"`
}
