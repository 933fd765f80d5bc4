// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package main

import (
	"fmt"

	"github.com/tomtom215/bookrec/internal/config"
	"github.com/tomtom215/bookrec/internal/logging"
	"github.com/tomtom215/bookrec/internal/recommend"
	"github.com/tomtom215/bookrec/internal/upstream"
)

// pipeline holds the wired recommendation components.
type pipeline struct {
	updater  *recommend.Updater
	provider *recommend.Provider
}

// newPipeline builds storage, engine and updater over the configured
// upstream services. The provider shares the updater's engine.
func newPipeline(cfg *config.Config) (*pipeline, error) {
	logger := logging.WithComponent("recommend")
	recCfg := cfg.Recommend.ToRecommendConfig()

	storage := recommend.NewCoefficientsStorage(logger)
	engine, err := recommend.NewEngine(recCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	updater, err := recommend.NewUpdater(
		recCfg,
		storage,
		engine,
		upstream.NewCatalogSource(&cfg.Catalog),
		upstream.NewReservationSource(&cfg.Reservations),
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("create updater: %w", err)
	}

	return &pipeline{
		updater:  updater,
		provider: updater.Provider(),
	}, nil
}
