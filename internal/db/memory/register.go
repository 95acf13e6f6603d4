// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package memory

import "github.com/mosaic-dev/mosaic/internal/db"

func init() {
	db.RegisterBackend("memory", func(_ *db.Config) (db.Client, error) {
		return New(), nil
	})
}
