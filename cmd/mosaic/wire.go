// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Mosaic Contributors

package main

import (
	"github.com/mosaic-dev/mosaic/internal/config"
	"github.com/mosaic-dev/mosaic/internal/db"
	_ "github.com/mosaic-dev/mosaic/internal/db/memory" // register memory backend
	_ "github.com/mosaic-dev/mosaic/internal/db/sqlite" // register sqlite backend
	mosaicerr "github.com/mosaic-dev/mosaic/pkg/errors"
)

// openClient resolves configuration and opens the configured backend.
// The caller owns the returned client and must close it.
func openClient() (db.Client, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	client, err := db.Open(&cfg.Storage)
	if err != nil {
		return nil, nil, mosaicerr.Wrap(err, mosaicerr.CodeDBOpenFailure, "opening database",
			mosaicerr.FieldBackend(cfg.Storage.Backend))
	}
	return client, cfg, nil
}
