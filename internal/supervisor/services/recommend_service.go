// Bookrec - Book Recommendation Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/bookrec

package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/bookrec/internal/metrics"
	"github.com/tomtom215/bookrec/internal/recommend"
)

// Ticker is satisfied by *recommend.Updater.
type Ticker interface {
	Tick(ctx context.Context) (recommend.TickResult, error)
}

// UpdaterServiceConfig holds the schedule of the updater service.
type UpdaterServiceConfig struct {
	// TickInterval is the time between ticks. Default: 10s
	TickInterval time.Duration

	// AbortOnError stops the service for good on the first failed tick.
	// When false the error is returned and suture restarts the service.
	AbortOnError bool
}

// UpdaterService runs the updater under supervision.
type UpdaterService struct {
	updater Ticker
	config  UpdaterServiceConfig
	logger  zerolog.Logger
	name    string
}

// NewUpdaterService creates the updater service.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewUpdaterService(updater Ticker, cfg UpdaterServiceConfig, logger zerolog.Logger) *UpdaterService {
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = 10 * time.Second
	}
	return &UpdaterService{
		updater: updater,
		config:  cfg,
		logger:  logger.With().Str("service", "updater").Logger(),
		name:    "updater-service",
	}
}

// Serve implements suture.Service. The first tick runs immediately.
func (s *UpdaterService) Serve(ctx context.Context) error {
	s.logger.Info().
		Dur("tick_interval", s.config.TickInterval).
		Bool("abort_on_error", s.config.AbortOnError).
		Msg("updater service starting")

	metrics.SetUpdaterRunning(true)
	defer metrics.SetUpdaterRunning(false)

	if err := s.tick(ctx); err != nil {
		return err
	}

	ticker := time.NewTicker(s.config.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("updater service shutting down")
			return ctx.Err()

		case <-ticker.C:
			if err := s.tick(ctx); err != nil {
				return err
			}
		}
	}
}

func (s *UpdaterService) tick(ctx context.Context) error {
	result, err := s.updater.Tick(ctx)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		// Shutdown interrupted the tick.
		return ctx.Err()
	}

	if s.config.AbortOnError {
		s.logger.Error().Err(err).
			Int("tick_number", result.IntervalNo).
			Msg("tick failed, stopping updater; serving stale recommendations")
		return suture.ErrDoNotRestart
	}

	s.logger.Warn().Err(err).
		Int("tick_number", result.IntervalNo).
		Msg("tick failed, updater will be restarted")
	return fmt.Errorf("tick %d: %w", result.IntervalNo, err)
}

// String returns the service name for logging.
func (s *UpdaterService) String() string {
	return s.name
}
