// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package sqlite

import "github.com/mosaic-dev/mosaic/internal/db"

func init() {
	db.RegisterBackend("sqlite", func(cfg *db.Config) (db.Client, error) {
		path := "mosaic.db"
		if cfg != nil && cfg.Path != "" {
			path = cfg.Path
		}
		return NewClient(path)
	})
}
